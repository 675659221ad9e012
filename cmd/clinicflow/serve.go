package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain"
	v1 "github.com/dmehra2102/prod-golang-projects/clinicflow/internal/handler/v1"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/pkg/metrics"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/pkg/tracer"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func serveCmd() *cobra.Command {
	var adminEmail string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(adminEmail)
		},
	}
	cmd.Flags().StringVar(&adminEmail, "bootstrap-admin", "",
		"create this admin account on startup if missing (password from BOOTSTRAP_ADMIN_PASSWORD)")
	return cmd
}

func runServe(adminEmail string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracer, err := tracer.Init(ctx, cfg.Tracing, cfg.App)
	if err != nil {
		return fmt.Errorf("initialising tracer: %w", err)
	}

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.close()

	if adminEmail != "" {
		if err := bootstrapAdmin(ctx, a, adminEmail); err != nil {
			return err
		}
	}

	router := v1.NewRouter(v1.RouterConfig{
		Handler:        v1.NewHandler(a.services, cfg.Reports, log),
		Authenticator:  a.auth,
		Store:          a.store,
		Metrics:        a.metrics,
		MetricsHandler: metrics.MetricsHandler(),
		CORS:           cfg.CORS,
		RateLimit:      cfg.RateLimit,
		Log:            log,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server",
			zap.String("addr", srv.Addr),
			zap.String("store", cfg.Store.Driver),
			zap.String("env", cfg.App.Environment),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", zap.Error(err))
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Error("tracer shutdown", zap.Error(err))
	}
	log.Info("server stopped")
	return nil
}

func bootstrapAdmin(ctx context.Context, a *app, email string) error {
	password := os.Getenv("BOOTSTRAP_ADMIN_PASSWORD")
	if password == "" {
		return errors.New("BOOTSTRAP_ADMIN_PASSWORD must be set with --bootstrap-admin")
	}
	_, err := a.auth.CreateUser(ctx, email, password, "Administrator", domain.RoleAdmin, nil)
	switch {
	case errors.Is(err, domain.ErrEmailTaken):
		a.log.Info("bootstrap admin already exists", zap.String("email", email))
		return nil
	case err != nil:
		return fmt.Errorf("creating bootstrap admin: %w", err)
	}
	a.log.Info("bootstrap admin created", zap.String("email", email))
	return nil
}
