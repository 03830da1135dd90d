package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-identity"
	"github.com/goliatone/go-identity/config"
	"github.com/goliatone/go-identity/persistence"
	"github.com/goliatone/go-router"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("identityd stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := identity.NewZapLogger(logger)

	db, err := persistence.Open(ctx, cfg, log.With("component", "db"))
	if err != nil {
		return err
	}
	defer db.Close()

	repo := identity.NewRepositoryManager(db)
	repo.MustValidate()

	phones := identity.NewPhoneNormalizer(cfg.GetDefaultPhoneRegion())

	lifecycle := identity.NewAccountLifecycle(
		repo.Accounts(),
		identity.NewBcryptHasher(cfg.GetPasswordHashCost()),
		identity.WithPhoneNormalizer(phones),
		identity.WithLifecycleLogger(log),
		identity.WithDeterministicIDs(cfg.DeterministicIDs),
	)

	auther := identity.NewAuthenticator(lifecycle, cfg).WithLogger(log)
	guard := identity.NewRoleGuard(auther.TokenService(), lifecycle).WithLogger(log)
	accounts := identity.NewAccountService(repo,
		identity.WithAccountServicePhones(phones),
		identity.WithAccountServiceLogger(log),
	)

	srv := router.NewFiberAdapter(func(_ *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			AppName:               "identityd",
			DisableStartupMessage: true,
			ReadTimeout:           10 * time.Second,
			WriteTimeout:          10 * time.Second,
		}))
	})

	identity.RegisterRoutes(srv.Router(),
		identity.WithAuthenticator(auther),
		identity.WithGuard(guard),
		identity.WithAccountService(accounts),
		identity.WithControllerLogger(log),
	)

	errc := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		errc <- srv.Serve(cfg.HTTPAddr)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}
