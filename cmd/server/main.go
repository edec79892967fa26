package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/durga1023/ContactUsRepository/internal/api"
	"github.com/durga1023/ContactUsRepository/internal/app"
	"github.com/durga1023/ContactUsRepository/internal/cache"
	"github.com/durga1023/ContactUsRepository/internal/captcha"
	"github.com/durga1023/ContactUsRepository/internal/database"
	"github.com/durga1023/ContactUsRepository/internal/middleware"
	"github.com/durga1023/ContactUsRepository/internal/secrets"
	"github.com/durga1023/ContactUsRepository/pkg/logger"
	"github.com/durga1023/ContactUsRepository/pkg/mail"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("contactform-server", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)

	var configPath string
	fs.StringVar(&configPath, "config", "", "Path to configuration directory or file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadApplicationConfig(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := app.ConfigureLogging(cfg.Server.LogLevel); err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	defer logger.Sync() // best effort

	log := logger.WithModule("bootstrap")

	source, err := buildSecretSource(ctx, cfg)
	if err != nil {
		return err
	}

	db, err := initialiseDatabase(ctx, cfg, source)
	if err != nil {
		return err
	}
	defer closeDatabase(db, log)

	verifier, err := captcha.NewRecaptchaVerifier(cfg.Captcha.VerifierConfig(), source)
	if err != nil {
		return fmt.Errorf("initialise captcha verifier: %w", err)
	}

	mailer, err := mail.NewSMTPMailer(cfg.Email.SMTPSettings())
	if err != nil {
		return fmt.Errorf("initialise mailer: %w", err)
	}

	rateStore := buildRateStore(cfg, log)

	router, err := api.NewRouter(db, verifier, cfg, rateStore, mailer)
	if err != nil {
		return fmt.Errorf("build router: %w", err)
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	if err, ok := <-serverErr; ok && err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	log.Info("server stopped gracefully")
	return nil
}

func loadApplicationConfig(path string) (*app.Config, error) {
	switch {
	case strings.TrimSpace(path) == "":
		return app.LoadConfig()
	default:
		info, err := os.Stat(path)
		if err == nil {
			if info.IsDir() {
				return app.LoadConfig(path)
			}
			return app.LoadConfig(filepath.Dir(path))
		}
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config path %q does not exist", path)
		}
		return nil, fmt.Errorf("stat config path: %w", err)
	}
}

func buildSecretSource(ctx context.Context, cfg *app.Config) (secrets.Source, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Secrets.Provider)) {
	case "aws":
		source, err := secrets.NewAWSSource(ctx, cfg.Secrets.Region)
		if err != nil {
			return nil, fmt.Errorf("initialise aws secret source: %w", err)
		}
		return source, nil
	default:
		return secrets.NewStaticSource(cfg.Secrets.Values), nil
	}
}

func initialiseDatabase(ctx context.Context, cfg *app.Config, source secrets.Source) (*gorm.DB, error) {
	dbCfg, err := convertDatabaseConfig(ctx, cfg, source)
	if err != nil {
		return nil, err
	}

	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	logger.WithModule("database").Info("database connected",
		zap.String("driver", strings.ToLower(strings.TrimSpace(dbCfg.Driver))))

	return db, nil
}

func convertDatabaseConfig(ctx context.Context, cfg *app.Config, source secrets.Source) (database.Config, error) {
	dbCfg := database.Config{
		Driver: strings.ToLower(strings.TrimSpace(cfg.Database.Driver)),
		Path:   strings.TrimSpace(cfg.Database.Path),
		DSN:    strings.TrimSpace(cfg.Database.DSN),
	}

	// The DSN may live next to the CAPTCHA secret in the managed store.
	if key := strings.TrimSpace(cfg.Database.DSNSecretKey); key != "" {
		dsn, err := source.Fetch(ctx, cfg.Captcha.SecretName, key)
		if err != nil {
			return dbCfg, fmt.Errorf("fetch database dsn secret: %w", err)
		}
		dbCfg.DSN = dsn
	}

	switch dbCfg.Driver {
	case "", "sqlite":
		dbCfg.Driver = "sqlite"
	case "postgres", "postgresql":
		dbCfg.Driver = "postgres"
		dbCfg.Host = strings.TrimSpace(cfg.Database.Postgres.Host)
		dbCfg.Port = cfg.Database.Postgres.Port
		dbCfg.Name = strings.TrimSpace(cfg.Database.Postgres.Database)
		dbCfg.User = strings.TrimSpace(cfg.Database.Postgres.Username)
		dbCfg.Password = strings.TrimSpace(cfg.Database.Postgres.Password)
	case "mysql":
		dbCfg.Host = strings.TrimSpace(cfg.Database.MySQL.Host)
		dbCfg.Port = cfg.Database.MySQL.Port
		dbCfg.Name = strings.TrimSpace(cfg.Database.MySQL.Database)
		dbCfg.User = strings.TrimSpace(cfg.Database.MySQL.Username)
		dbCfg.Password = strings.TrimSpace(cfg.Database.MySQL.Password)
	default:
		// Leave driver as-is to surface unsupported driver error during open.
	}

	return dbCfg, nil
}

func buildRateStore(cfg *app.Config, log *zap.Logger) middleware.RateStore {
	if cfg.RateLimit.Redis.Enabled {
		store, err := cache.NewRedisStore(cache.RedisConfig{
			Address:  cfg.RateLimit.Redis.Address,
			Username: cfg.RateLimit.Redis.Username,
			Password: cfg.RateLimit.Redis.Password,
			DB:       cfg.RateLimit.Redis.DB,
			TLS:      cfg.RateLimit.Redis.TLS,
			Timeout:  cfg.RateLimit.Redis.Timeout,
		})
		if err != nil {
			log.Warn("redis unavailable; falling back to in-memory rate limiting", zap.Error(err))
		} else {
			log.Info("redis connected", zap.String("addr", cfg.RateLimit.Redis.Address))
			return middleware.NewRedisRateStore(store)
		}
	}

	return middleware.NewMemoryRateStore()
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	if db == nil {
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("failed to obtain underlying sql DB for closing", zap.Error(err))
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Warn("failed to close database", zap.Error(err))
	}
}
