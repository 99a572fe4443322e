package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"accounts/internal/config"
	"accounts/internal/domain"
	"accounts/internal/mail"
	"accounts/internal/observability/logging"
	"accounts/internal/observability/metrics"
	"accounts/internal/service"
	impl "accounts/internal/service/impl"
	"accounts/internal/store"
	httpx "accounts/internal/transport/http"
	"accounts/pkg/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "dev"
	}

	logger := logging.NewLogger(logging.Config{
		ServiceName: "accounts",
		Environment: env,
		Level:       os.Getenv("LOG_LEVEL"),
	})
	slog.SetDefault(logger)

	logger.Info("starting service")

	cfg := config.Load()
	metrics.MustRegister("accounts")

	gdb, err := db.OpenGorm(db.Config{DSN: cfg.DatabaseURL, LogSQL: env == "dev"})
	if err != nil {
		logger.Error("gorm open", "error", err)
		os.Exit(1)
	}

	st := store.New(gdb)
	if err := st.AutoMigrate(); err != nil {
		logger.Error("automigrate", "error", err)
		os.Exit(1)
	}

	var mailer mail.Mailer
	if cfg.SMTPAddr != "" {
		mailer = mail.NewSMTPMailer(cfg.SMTPAddr, cfg.SMTPFrom, cfg.ActivationURL)
	} else {
		logger.Warn("SMTP_ADDR not set, activation mails are logged only")
		mailer = &mail.LogMailer{ActivationURL: cfg.ActivationURL}
	}

	pw := impl.NewPasswordServiceBcrypt()
	ts := impl.NewTokenServiceHS256(impl.TokenConfig{
		Issuer:     cfg.Issuer,
		Audience:   cfg.Audience,
		TTL:        cfg.TokenTTL,
		SigningKey: []byte(cfg.SigningKey),
	})
	us := impl.NewUserServiceImpl(st, pw, mailer)
	as := impl.NewAuthServiceImpl(st, pw)

	if cfg.SeedUsers > 0 {
		if err := seedUsers(context.Background(), st, pw, cfg.SeedUsers); err != nil {
			logger.Error("seed users", "error", err)
			os.Exit(1)
		}
		logger.Info("seeded users", "count", cfg.SeedUsers)
	}

	handler := httpx.NewRouter(httpx.NewHandler(us, as, ts, pw), httpx.RouterConfig{
		CORSOrigins: cfg.CORSOrigins,
		RateLimit:   cfg.RateLimit,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("accounts service listening", "addr", srv.Addr, "issuer", cfg.Issuer)
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// seedUsers creates n active accounts (user1..usern) for dev environments.
// Accounts that already exist are left alone.
func seedUsers(ctx context.Context, st *store.Store, pw service.PasswordService, n int) error {
	hash, err := pw.Hash("P4ssword")
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	for i := 1; i <= n; i++ {
		email := fmt.Sprintf("user%d@mail.com", i)
		if _, err := st.Users().GetByEmail(ctx, email); err == nil {
			continue
		}
		u := &domain.User{
			Username:  fmt.Sprintf("user%d", i),
			Email:     email,
			Password:  hash,
			Inactive:  false,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := st.Users().Create(ctx, u); err != nil {
			return err
		}
	}
	return nil
}
