package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/config"
	v1 "github.com/dmehra2102/prod-golang-projects/clinicflow/internal/handler/v1"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/service"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/store"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/store/memory"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/store/postgres"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/pkg/auth"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/pkg/cache"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/pkg/database"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/pkg/events"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/pkg/logger"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/pkg/metrics"
	"go.uber.org/zap"
)

const poolStatsInterval = 15 * time.Second

// app owns every long-lived component of a running process. close releases
// them in reverse order of construction.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	store   store.Store
	metrics *metrics.Collector
	audit   *service.AuditService
	auth    *service.AuthService

	services v1.Services
	closers  []func() error
}

func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("building logger: %w", err)
	}
	return cfg, logger.WithService(log, cfg.App), nil
}

func openStore(ctx context.Context, cfg *config.Config, m *metrics.Collector, log *zap.Logger) (store.Store, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		log.Warn("using in-memory store, data is lost on shutdown")
		return memory.New(), nil
	default:
		db, err := database.Connect(cfg.Database, log)
		if err != nil {
			return nil, err
		}
		if cfg.Database.AutoMigrate {
			if err := database.Migrate(db, log); err != nil {
				return nil, err
			}
		}
		st := postgres.New(db, m, log)
		go st.ReportPoolStats(ctx, poolStatsInterval)
		return st, nil
	}
}

func newApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log, metrics: metrics.NewCollector(cfg.App.Name)}

	st, err := openStore(ctx, cfg, a.metrics, log)
	if err != nil {
		return nil, err
	}
	a.store = st
	a.closers = append(a.closers, st.Close)

	var revoker service.TokenRevoker = cache.NewLocalRevoker()
	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			a.close()
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		revoker = cache.NewRedisRevoker(client)
	}

	var publisher service.EventPublisher = service.NoopPublisher{}
	if cfg.Kafka.Enabled {
		kp := events.NewKafkaPublisher(cfg.Kafka, log)
		a.closers = append(a.closers, kp.Close)
		publisher = kp
	}

	a.audit = service.NewAuditService(st, a.metrics, log)
	a.closers = append(a.closers, func() error {
		a.audit.Shutdown()
		return nil
	})

	a.auth = service.NewAuthService(st, auth.NewJWTManager(cfg.JWT), revoker, a.audit, log)

	deps := service.Deps{
		Store:   st,
		Audit:   a.audit,
		Events:  publisher,
		Metrics: a.metrics,
		Log:     log,
	}
	a.services = v1.Services{
		Auth:       a.auth,
		Patients:   service.NewPatientService(deps),
		Doctors:    service.NewDoctorService(deps),
		Scheduling: service.NewSchedulingService(deps),
		Visits:     service.NewVisitService(deps),
		Pharmacy:   service.NewPharmacyService(deps, cfg.Reports.LowStockThreshold),
		Billing: service.NewBillingService(deps, service.BillingConfig{
			ConsultationFee: cfg.Billing.ConsultationFee,
			Currency:        cfg.Billing.Currency,
		}),
		Reports: service.NewReportService(deps),
	}
	return a, nil
}

func (a *app) close() {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		a.log.Error("shutdown", zap.Error(err))
	}
}
