package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"

	adapthttp "portal/internal/adapter/http"
	"portal/internal/adapter/postgres"
	"portal/internal/app"
	"portal/internal/config"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config", "err", err)
		os.Exit(1)
	}

	if cfg.DatabaseURL == "" {
		log.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	db, err := postgres.Open(cfg.DatabaseURL)
	if err != nil {
		log.Error("db open", "err", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	sessionSvc := app.NewSessionService([]byte(cfg.SessionSecret), cfg.TokenTTL, cfg.RefreshThreshold, log)
	authSvc := app.NewAuthService(db, sessionSvc, log)
	issueSvc := app.NewIssueService(db)

	if cfg.BootstrapEnabled() {
		if err := authSvc.CreateInitialUser(context.Background(), cfg.BootstrapEmail, cfg.BootstrapPassword); err != nil {
			log.Error("bootstrap user", "err", err)
			os.Exit(1)
		}
	}

	var sso *adapthttp.SSO
	if cfg.SSOEnabled() {
		sso, err = adapthttp.NewSSO(context.Background(), cfg.OIDCIssuer, cfg.OIDCClientID, cfg.OIDCClientSecret, cfg.OIDCRedirectURL)
		if err != nil {
			log.Error("oidc provider", "err", err)
			os.Exit(1)
		}
	}

	h := adapthttp.New(authSvc, sessionSvc, issueSvc, sso, cfg.Production(), log).Handler()
	log.Info("listening", "addr", cfg.Addr, "env", cfg.Env, "sso", cfg.SSOEnabled())
	if err := http.ListenAndServe(cfg.Addr, h); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server", "err", err)
		os.Exit(1)
	}
}
