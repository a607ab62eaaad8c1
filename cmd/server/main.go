// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/tomtom215/watchstats/internal/api"
	"github.com/tomtom215/watchstats/internal/auth"
	"github.com/tomtom215/watchstats/internal/config"
	"github.com/tomtom215/watchstats/internal/credential"
	"github.com/tomtom215/watchstats/internal/logging"
	"github.com/tomtom215/watchstats/internal/metrics"
	"github.com/tomtom215/watchstats/internal/secrets"
	"github.com/tomtom215/watchstats/internal/supervisor"
	"github.com/tomtom215/watchstats/internal/supervisor/services"
	"github.com/tomtom215/watchstats/internal/tracker"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	})
	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)

	logging.Info().
		Str("version", version).
		Str("addr", cfg.Server.Addr()).
		Str("data_dir", cfg.Storage.DataDir).
		Str("session_store", cfg.Storage.SessionStore).
		Str("cache_store", cfg.Cache.Store).
		Msg("Starting Watchstats")

	if cfg.ShouldWarnAboutCORS() {
		logging.Warn().Msg("CORS allows any origin; set CORS_ORIGINS to the dashboard origin in production")
	}

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Server stopped with an error")
	}
	logging.Info().Msg("Application stopped gracefully")
}

func run(cfg *config.Config) error {
	st, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	secretStore, err := secrets.Open(cfg.Storage.SecretsPath, credential.Default())
	if err != nil {
		return err
	}
	if secretStore.SetupCompleted() {
		logging.Info().Bool("login_enabled", secretStore.LoginEnabled()).Msg("Setup state loaded")
	} else {
		logging.Warn().Str("setup_path", cfg.Server.SetupPath).Msg("Setup has not been completed; the dashboard will redirect to the setup wizard")
	}

	trackerClient, err := tracker.New(tracker.Config{
		BaseURL:         cfg.Tracker.BaseURL,
		ClientID:        cfg.Tracker.ClientID,
		Username:        trackerUsername(secretStore, cfg.Tracker.Username),
		RateLimit:       cfg.Tracker.RateLimit,
		Burst:           cfg.Tracker.Burst,
		Timeout:         cfg.Tracker.Timeout,
		BreakerFailures: cfg.Tracker.BreakerFailures,
		BreakerTimeout:  cfg.Tracker.BreakerTimeout,
	})
	if err != nil {
		return err
	}

	sessions := auth.NewSessionMiddleware(st.sessions, &auth.SessionMiddlewareConfig{
		CookieName:     cfg.Security.SessionCookieName,
		SessionTTL:     cfg.Security.SessionTTL,
		SlidingSession: true,
		CookieSecure:   cfg.Security.SessionCookieSecure,
		CookieSameSite: http.SameSiteLaxMode,
		GateEnabled:    secretStore.LoginEnabled,
		Unauthorized:   api.Unauthorized,
	})

	lockout := auth.NewLockoutManager(nil, &auth.LockoutConfig{
		Enabled:                  cfg.Security.Lockout.Enabled,
		MaxAttempts:              cfg.Security.Lockout.MaxAttempts,
		LockoutDuration:          cfg.Security.Lockout.Duration,
		MaxLockoutDuration:       cfg.Security.Lockout.MaxDuration,
		EnableExponentialBackoff: cfg.Security.Lockout.IncrementalLockout,
	})

	handler, err := api.NewHandler(api.Deps{
		Config:   cfg,
		Secrets:  secretStore,
		Sessions: sessions,
		Lockout:  lockout,
		Cache:    st.cache,
		Tracker:  trackerClient,
	})
	if err != nil {
		return err
	}
	router := api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFromSecurity(&cfg.Security)))

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})

	tasks := []services.Task{
		services.SessionCleanupTask(st.sessions),
		services.LockoutCleanupTask(lockout),
	}
	if st.db != nil {
		tasks = append(tasks, services.StorageGCTask(st.db))
	}
	tree.AddMaintenanceService(services.NewJanitorService(cfg.Security.SessionCleanupInterval, tasks...))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Msg("Starting supervisor tree")
	err = tree.Serve(ctx)

	if unstopped, reportErr := tree.UnstoppedServiceReport(); reportErr == nil {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
		}
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// trackerUsername prefers the username saved by the setup wizard over the
// configured one, so a reconfigure takes effect without a restart.
func trackerUsername(store *secrets.Store, fallback string) func() string {
	return func() string {
		if name := store.TrackerUsername(); name != "" {
			return name
		}
		return fallback
	}
}
