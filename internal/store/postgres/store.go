// Package postgres implements store.Store on gorm and PostgreSQL. Workflow
// transactions run at READ COMMITTED and serialise on explicit row locks
// (SELECT ... FOR UPDATE) taken on the parent rows.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/doctor"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/invoice"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/medication"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/prescription"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/room"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/visit"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/store"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/pkg/metrics"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const uniqueViolation = "23505"

var _ store.Store = (*Store)(nil)

type Store struct {
	db      *gorm.DB
	metrics *metrics.Collector
	tracer  trace.Tracer
	log     *zap.Logger
}

func New(db *gorm.DB, m *metrics.Collector, log *zap.Logger) *Store {
	return &Store{
		db:      db,
		metrics: m,
		tracer:  otel.Tracer("clinicflow/store/postgres"),
		log:     log,
	}
}

func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	ctx, span := s.tracer.Start(ctx, "store.transaction")
	defer span.End()

	start := time.Now()
	err := s.db.WithContext(ctx).Transaction(func(gtx *gorm.DB) error {
		return fn(ctx, &tx{db: gtx})
	})

	outcome := "commit"
	if err != nil {
		outcome = "rollback"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if s.metrics != nil {
		s.metrics.DBTransactionDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	}
	return err
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("getting underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("getting underlying sql.DB: %w", err)
	}
	if s.metrics != nil {
		s.metrics.DBConnections.Set(0)
	}
	return sqlDB.Close()
}

// ReportPoolStats copies connection pool statistics into the metrics collector
// until ctx is cancelled.
func (s *Store) ReportPoolStats(ctx context.Context, every time.Duration) {
	if s.metrics == nil {
		return
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		s.log.Warn("pool stats unavailable", zap.Error(err))
		return
	}

	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.metrics.DBConnections.Set(float64(sqlDB.Stats().OpenConnections))
		}
	}
}

type tx struct {
	db *gorm.DB
}

func (x *tx) Patients() patient.Repository { return patientRepo{x.db} }
func (x *tx) Doctors() doctor.Repository { return doctorRepo{x.db} }
func (x *tx) Rooms() room.Repository { return roomRepo{x.db} }
func (x *tx) Appointments() appointment.Repository { return appointmentRepo{x.db} }
func (x *tx) Visits() visit.Repository { return visitRepo{x.db} }
func (x *tx) Medications() medication.Repository { return medicationRepo{x.db} }
func (x *tx) Prescriptions() prescription.Repository { return prescriptionRepo{x.db} }
func (x *tx) Invoices() invoice.Repository { return invoiceRepo{x.db} }
func (x *tx) Payments() invoice.PaymentRepository { return paymentRepo{x.db} }
func (x *tx) Users() domain.UserRepository { return userRepo{x.db} }
func (x *tx) AuditLogs() domain.AuditRepository { return auditRepo{x.db} }

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// first loads one row by primary key and maps a missing row to a NotFoundError.
func first[T any](ctx context.Context, db *gorm.DB, resource string, id uuid.UUID) (*T, error) {
	var v T
	if err := db.WithContext(ctx).First(&v, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFound(resource, id)
		}
		return nil, fmt.Errorf("loading %s %s: %w", resource, id, err)
	}
	return &v, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// paged runs a count and a page query over the same filtered scope.
func paged[T any](ctx context.Context, scope *gorm.DB, order string, page, pageSize int) ([]*T, int64, error) {
	var total int64
	if err := scope.WithContext(ctx).Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting rows: %w", err)
	}

	items := []*T{}
	err := scope.WithContext(ctx).Session(&gorm.Session{}).
		Order(order).
		Offset(store.Offset(page, pageSize)).
		Limit(pageSize).
		Find(&items).Error
	if err != nil {
		return nil, 0, fmt.Errorf("listing rows: %w", err)
	}
	return items, total, nil
}
