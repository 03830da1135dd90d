package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	validation "github.com/go-ozzo/ozzo-validation"
	persistence "github.com/goliatone/go-persistence-bun"
)

const (
	// DriverSQLite selects the embedded sqlite store
	DriverSQLite = "sqlite"
	// DriverPostgres selects postgres through pgx
	DriverPostgres = "postgres"
)

// Config is the process configuration read from the environment. It
// satisfies identity.Config and the go-persistence-bun client Config.
type Config struct {
	SigningKey         string `env:"JWT_SECRET"`
	TokenExpiration    int    `env:"TOKEN_EXPIRATION_HOURS" envDefault:"288"`
	PasswordHashCost   int    `env:"PASSWORD_HASH_COST" envDefault:"10"`
	DefaultPhoneRegion string `env:"PHONE_DEFAULT_REGION" envDefault:"AU"`
	DeterministicIDs   bool   `env:"DETERMINISTIC_IDS" envDefault:"false"`

	DBDriver         string        `env:"DB_DRIVER" envDefault:"sqlite"`
	DBDSN            string        `env:"DB_DSN" envDefault:"file:identity.db?cache=shared"`
	DBName           string        `env:"DB_NAME" envDefault:"identity"`
	DBDebug          bool          `env:"DB_DEBUG" envDefault:"false"`
	DBPingTimeout    time.Duration `env:"DB_PING_TIMEOUT" envDefault:"5s"`
	DBOtelIdentifier string        `env:"DB_OTEL_IDENTIFIER"`

	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads the configuration from the process environment
func Load() (Config, error) {
	return parse(env.Options{})
}

// LoadFrom reads the configuration from environ instead of the process
// environment
func LoadFrom(environ map[string]string) (Config, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks required values and ranges
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.SigningKey, validation.Required),
		validation.Field(&c.TokenExpiration, validation.Required, validation.Min(1)),
		validation.Field(&c.PasswordHashCost, validation.Required, validation.Min(4), validation.Max(31)),
		validation.Field(&c.DefaultPhoneRegion, validation.Required, validation.Length(2, 2)),
		validation.Field(&c.DBDriver, validation.Required, validation.In(DriverSQLite, DriverPostgres)),
		validation.Field(&c.DBDSN, validation.Required),
		validation.Field(&c.DBPingTimeout, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.HTTPAddr, validation.Required),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
	)
}

var _ persistence.Config = Config{}

func (c Config) GetDebug() bool {
	return c.DBDebug
}

func (c Config) GetDriver() string {
	return c.DBDriver
}

// GetServer returns the driver DSN
func (c Config) GetServer() string {
	return c.DBDSN
}

func (c Config) GetDatabase() string {
	return c.DBName
}

func (c Config) GetPingTimeout() time.Duration {
	return c.DBPingTimeout
}

func (c Config) GetOtelIdentifier() string {
	return c.DBOtelIdentifier
}

func (c Config) GetSigningKey() string {
	return c.SigningKey
}

func (c Config) GetTokenExpiration() int {
	return c.TokenExpiration
}

func (c Config) GetPasswordHashCost() int {
	return c.PasswordHashCost
}

func (c Config) GetDefaultPhoneRegion() string {
	return c.DefaultPhoneRegion
}
