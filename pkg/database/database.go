package database

import (
	"fmt"
	"time"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/config"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/doctor"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/invoice"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/medication"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/prescription"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/room"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/visit"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func Connect(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: gormlogger.New(zap.NewStdLog(log.Named("gorm")), gormlogger.Config{
			SlowThreshold:             cfg.SlowQueryThreshold,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		PrepareStmt:                              true,
		DisableForeignKeyConstraintWhenMigrating: false,
		DisableAutomaticPing:                     false,
		NowFunc:                                  func() time.Time { return time.Now().UTC() },
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: false,
	}), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}

// Schemas are the logical namespaces the models live in.
var Schemas = []string{"clinical", "pharmacy", "billing", "auth", "audit"}

// Models lists every persisted entity in dependency order.
func Models() []any {
	return []any{
		&domain.User{},
		&domain.AuditLog{},
		&patient.Patient{},
		&doctor.Doctor{},
		&room.Room{},
		&appointment.Appointment{},
		&visit.Visit{},
		&medication.Medication{},
		&prescription.Prescription{},
		&invoice.Invoice{},
		&invoice.Payment{},
	}
}

func Migrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")
	start := time.Now()

	for _, schema := range Schemas {
		if err := db.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schema)).Error; err != nil {
			return fmt.Errorf("creating schema %s: %w", schema, err)
		}
	}

	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto-migrating models: %w", err)
	}

	if err := createConstraints(db); err != nil {
		return fmt.Errorf("creating constraints: %w", err)
	}

	createIndexes(db, log)

	log.Info("migrations completed", zap.Duration("duration", time.Since(start)))
	return nil
}

// createConstraints adds the checks and foreign keys gorm tags cannot express.
// Every statement is idempotent.
func createConstraints(db *gorm.DB) error {
	stmts := []struct {
		table string
		name  string
		def   string
	}{
		{"clinical.appointments", "chk_appointments_time_range", "CHECK (start_time < end_time)"},
		{"clinical.appointments", "fk_appointments_patient", "FOREIGN KEY (patient_id) REFERENCES clinical.patients(id)"},
		{"clinical.appointments", "fk_appointments_doctor", "FOREIGN KEY (doctor_id) REFERENCES clinical.doctors(id)"},
		{"clinical.appointments", "fk_appointments_room", "FOREIGN KEY (room_id) REFERENCES clinical.rooms(id)"},
		{"clinical.visits", "fk_visits_appointment", "FOREIGN KEY (appointment_id) REFERENCES clinical.appointments(id)"},
		{"pharmacy.medications", "chk_medications_unit_price", "CHECK (unit_price >= 0)"},
		{"pharmacy.prescriptions", "fk_prescriptions_visit", "FOREIGN KEY (visit_id) REFERENCES clinical.visits(id)"},
		{"pharmacy.prescriptions", "fk_prescriptions_medication", "FOREIGN KEY (medication_id) REFERENCES pharmacy.medications(id)"},
		{"billing.invoices", "fk_invoices_visit", "FOREIGN KEY (visit_id) REFERENCES clinical.visits(id)"},
		{"billing.payments", "fk_payments_invoice", "FOREIGN KEY (invoice_id) REFERENCES billing.invoices(id)"},
	}

	for _, s := range stmts {
		query := fmt.Sprintf(`DO $$ BEGIN
	IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '%s') THEN
		ALTER TABLE %s ADD CONSTRAINT %s %s;
	END IF;
END $$`, s.name, s.table, s.name, s.def)
		if err := db.Exec(query).Error; err != nil {
			return fmt.Errorf("adding %s: %w", s.name, err)
		}
	}
	return nil
}

func createIndexes(db *gorm.DB, log *zap.Logger) {
	indexes := []struct {
		name  string
		query string
	}{
		// Overlap checks filter on resource + day and skip cancelled rows
		{
			name:  "idx_appointments_doctor_day",
			query: `CREATE INDEX IF NOT EXISTS idx_appointments_doctor_day ON clinical.appointments (doctor_id, appt_date, start_time) WHERE status <> 'CANCELLED'`,
		},
		{
			name:  "idx_appointments_room_day",
			query: `CREATE INDEX IF NOT EXISTS idx_appointments_room_day ON clinical.appointments (room_id, appt_date, start_time) WHERE status <> 'CANCELLED'`,
		},
		{
			name:  "idx_appointments_upcoming",
			query: `CREATE INDEX IF NOT EXISTS idx_appointments_upcoming ON clinical.appointments (appt_date, start_time) WHERE status = 'SCHEDULED'`,
		},
		// Patient search: GIN index for name search
		{
			name:  "idx_patients_name_trgm",
			query: `CREATE INDEX IF NOT EXISTS idx_patients_name_trgm ON clinical.patients USING gin ((lower(first_name) || ' ' || lower(last_name)) gin_trgm_ops)`,
		},
		{
			name:  "idx_medications_stock",
			query: `CREATE INDEX IF NOT EXISTS idx_medications_stock ON pharmacy.medications (stock_qty)`,
		},
	}

	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS pg_trgm").Error; err != nil {
		log.Warn("pg_trgm extension unavailable", zap.Error(err))
	}

	for _, idx := range indexes {
		if err := db.Exec(idx.query).Error; err != nil {
			// indexes are an optimisation; a missing one must not block startup
			log.Warn("creating index failed", zap.String("index", idx.name), zap.Error(err))
		}
	}
}
