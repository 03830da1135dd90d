// Package persistence opens the bun database the identity store runs on
// and applies its migrations.
package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-identity"
	gopersistence "github.com/goliatone/go-persistence-bun"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/schema"
)

const (
	// DriverSQLite embedded sqlite through sqliteshim
	DriverSQLite = "sqlite"
	// DriverPostgres postgres through the pgx stdlib driver
	DriverPostgres = "postgres"
	// DefaultPingTimeout bounds the connection check when none is configured
	DefaultPingTimeout = 5 * time.Second
)

// Options is a static Config, handy for tests and embedding
type Options struct {
	Driver         string
	DSN            string
	Database       string
	Debug          bool
	PingTimeout    time.Duration
	OtelIdentifier string
}

var _ gopersistence.Config = Options{}

func (o Options) GetDebug() bool {
	return o.Debug
}

func (o Options) GetDriver() string {
	return o.Driver
}

func (o Options) GetServer() string {
	return o.DSN
}

func (o Options) GetDatabase() string {
	return o.Database
}

func (o Options) GetPingTimeout() time.Duration {
	if o.PingTimeout <= 0 {
		return DefaultPingTimeout
	}
	return o.PingTimeout
}

func (o Options) GetOtelIdentifier() string {
	return o.OtelIdentifier
}

// Open connects using cfg, runs the embedded migrations through a
// persistence client and returns the client's bun.DB. GetServer holds the
// driver DSN. When GetDebug is set every query is also logged to logger.
func Open(ctx context.Context, cfg gopersistence.Config, logger identity.Logger) (*bun.DB, error) {
	if logger == nil {
		logger = identity.NewZapLogger(nil)
	}

	sqldb, dialect, err := openSQL(cfg.GetDriver(), cfg.GetServer())
	if err != nil {
		return nil, err
	}

	gopersistence.RegisterModel((*identity.Account)(nil))

	client, err := gopersistence.New(cfg, sqldb, dialect)
	if err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("connect %s: %w", cfg.GetDriver(), err)
	}

	client.SetLogger(func(format string, a ...any) {
		logger.Debug(strings.TrimSpace(fmt.Sprintf(format, a...)))
	})

	client.RegisterSQLMigrations(identity.GetMigrationsFS())
	if err := client.Migrate(ctx); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	if report := client.Report(); report != nil && !report.IsZero() {
		logger.Info("migrations applied", "group", report.String())
	}

	db, ok := client.DB().(*bun.DB)
	if !ok {
		_ = sqldb.Close()
		return nil, errors.New("persistence client did not return a *bun.DB")
	}

	if cfg.GetDebug() {
		db.AddQueryHook(NewQueryLogger(logger))
	}

	return db, nil
}

func openSQL(driver, dsn string) (*sql.DB, schema.Dialect, error) {
	switch driver {
	case DriverSQLite, "":
		sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		// in-memory databases live as long as their connection
		sqldb.SetMaxOpenConns(1)
		return sqldb, sqlitedialect.New(), nil
	case DriverPostgres:
		cfg, err := pgx.ParseConfig(dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("parse postgres dsn: %w", err)
		}
		sqldb := stdlib.OpenDB(*cfg)
		sqldb.SetConnMaxIdleTime(5 * time.Minute)
		return sqldb, pgdialect.New(), nil
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// QueryLogger is a bun.QueryHook that logs queries at debug level and
// failed ones at warn level.
type QueryLogger struct {
	logger identity.Logger
}

var _ bun.QueryHook = (*QueryLogger)(nil)

// NewQueryLogger returns a hook writing to logger
func NewQueryLogger(logger identity.Logger) *QueryLogger {
	if logger == nil {
		logger = identity.NewZapLogger(nil)
	}
	return &QueryLogger{logger: logger}
}

func (h *QueryLogger) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *QueryLogger) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	elapsed := time.Since(event.StartTime)
	if event.Err != nil && !errors.Is(event.Err, sql.ErrNoRows) {
		h.logger.Warn("query failed", "query", event.Query, "duration", elapsed, "error", event.Err)
		return
	}
	h.logger.Debug("query", "query", event.Query, "duration", elapsed)
}
