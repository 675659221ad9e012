package postgres_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
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
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/service"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/store"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/store/postgres"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/pkg/database"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/pkg/metrics"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var admin = domain.Caller{UserID: uuid.New(), Role: domain.RoleAdmin}

// openStore connects to CLINICFLOW_TEST_DATABASE_DSN, migrates and empties
// every table.
func openStore(t *testing.T) (*postgres.Store, *metrics.Collector) {
	t.Helper()
	dsn := os.Getenv("CLINICFLOW_TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("CLINICFLOW_TEST_DATABASE_DSN not set")
	}

	db, err := gorm.Open(pgdriver.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, zap.NewNop()))
	require.NoError(t, db.Exec(`TRUNCATE billing.payments, billing.invoices, pharmacy.prescriptions,
		pharmacy.medications, clinical.visits, clinical.appointments, clinical.rooms,
		clinical.doctors, clinical.patients, auth.users, audit.logs CASCADE`).Error)

	m := metrics.NewCollectorWith(prometheus.NewRegistry(), "test")
	st := postgres.New(db, m, zap.NewNop())
	t.Cleanup(func() { _ = st.Close() })
	return st, m
}

type seed struct {
	patientID, doctorID, roomID uuid.UUID
}

func seedRegistry(t *testing.T, st store.Store) seed {
	t.Helper()
	s := seed{patientID: uuid.New(), doctorID: uuid.New(), roomID: uuid.New()}
	err := st.WithTransaction(context.Background(), func(ctx context.Context, tx store.Tx) error {
		if err := tx.Patients().Create(ctx, &patient.Patient{
			ID: s.patientID, FirstName: "Asha", LastName: "Rao",
			DateOfBirth: time.Date(1990, 3, 1, 0, 0, 0, 0, time.UTC), Sex: patient.SexFemale,
		}); err != nil {
			return err
		}
		if err := tx.Doctors().Create(ctx, &doctor.Doctor{ID: s.doctorID, FirstName: "Vikram", LastName: "Sen"}); err != nil {
			return err
		}
		return tx.Rooms().Create(ctx, &room.Room{ID: s.roomID, Name: "Room " + s.roomID.String()[:8]})
	})
	require.NoError(t, err)
	return s
}

func slotCmd(t *testing.T, s seed, start, end string) *appointment.CreateAppointmentCommand {
	t.Helper()
	d, err := appointment.ParseDate("2024-01-05")
	require.NoError(t, err)
	st, err := appointment.ParseClock(start)
	require.NoError(t, err)
	en, err := appointment.ParseClock(end)
	require.NoError(t, err)
	return &appointment.CreateAppointmentCommand{
		PatientID: s.patientID, DoctorID: s.doctorID, RoomID: s.roomID,
		Date: d, StartTime: st, EndTime: en,
	}
}

func TestPostgres_ConcurrentDoubleBooking(t *testing.T) {
	st, m := openStore(t)
	s := seedRegistry(t, st)
	svc := service.NewSchedulingService(service.Deps{Store: st, Metrics: m, Log: zap.NewNop()})

	cmd := slotCmd(t, s, "10:00", "10:30")
	const attempts = 6
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ScheduleAppointment(context.Background(), cmd, admin)
			if err != nil && !errors.Is(err, appointment.ErrAppointmentConflict) {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, succeeded)

	_, err := svc.ScheduleAppointment(context.Background(), slotCmd(t, s, "10:30", "11:00"), admin)
	require.NoError(t, err)
}

func TestPostgres_WorkflowRoundTrip(t *testing.T) {
	st, m := openStore(t)
	s := seedRegistry(t, st)
	deps := service.Deps{Store: st, Metrics: m, Log: zap.NewNop()}
	ctx := context.Background()

	a, err := service.NewSchedulingService(deps).ScheduleAppointment(ctx, slotCmd(t, s, "09:00", "09:30"), admin)
	require.NoError(t, err)

	v, err := service.NewVisitService(deps).CompleteAppointment(ctx, a.ID, &visit.CompleteAppointmentCommand{Diagnosis: "flu"}, admin)
	require.NoError(t, err)
	_, err = service.NewVisitService(deps).CompleteAppointment(ctx, a.ID, &visit.CompleteAppointmentCommand{}, admin)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	medID := uuid.New()
	require.NoError(t, st.WithTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		return tx.Medications().Create(ctx, &medication.Medication{
			ID: medID, Name: "Amoxicillin " + medID.String()[:8], StockQty: 20, UnitPrice: decimal.RequireFromString("12.50"),
		})
	}))

	pharmacy := service.NewPharmacyService(deps, 5)
	_, err = pharmacy.Prescribe(ctx, &prescription.CreatePrescriptionCommand{VisitID: v.ID, MedicationID: medID, Quantity: 5}, admin)
	require.NoError(t, err)
	_, err = pharmacy.Prescribe(ctx, &prescription.CreatePrescriptionCommand{VisitID: v.ID, MedicationID: medID, Quantity: 20}, admin)
	assert.ErrorIs(t, err, medication.ErrInsufficientStock)

	med, err := pharmacy.GetMedication(ctx, medID)
	require.NoError(t, err)
	assert.Equal(t, 15, med.StockQty)

	billing := service.NewBillingService(deps, service.BillingConfig{ConsultationFee: decimal.NewFromInt(100)})
	inv, err := billing.GenerateInvoice(ctx, &invoice.GenerateInvoiceCommand{VisitID: v.ID}, admin)
	require.NoError(t, err)
	assert.Equal(t, "162.50", inv.TotalAmount.StringFixed(2))

	_, err = billing.GenerateInvoice(ctx, &invoice.GenerateInvoiceCommand{VisitID: v.ID}, admin)
	assert.ErrorIs(t, err, invoice.ErrDuplicateInvoice)

	r, err := billing.RecordPayment(ctx, &invoice.RecordPaymentCommand{InvoiceID: inv.ID, Amount: decimal.NewFromInt(200), Method: invoice.MethodCard}, admin)
	require.NoError(t, err)
	assert.True(t, r.Invoice.Paid)
	assert.Equal(t, "200.00", r.TotalPaid.StringFixed(2))
}

func TestPostgres_UniqueInvoicePerVisitIsEnforced(t *testing.T) {
	st, _ := openStore(t)
	s := seedRegistry(t, st)
	ctx := context.Background()

	slot := slotCmd(t, s, "08:00", "08:30")
	visitID := uuid.New()
	require.NoError(t, st.WithTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		apptID := uuid.New()
		if err := tx.Appointments().Create(ctx, &appointment.Appointment{
			ID: apptID, PatientID: s.patientID, DoctorID: s.doctorID, RoomID: s.roomID,
			Date: slot.Date, StartTime: slot.StartTime, EndTime: slot.EndTime,
			Status: appointment.StatusCompleted,
		}); err != nil {
			return err
		}
		return tx.Visits().Create(ctx, &visit.Visit{ID: visitID, AppointmentID: apptID, PatientID: s.patientID, DoctorID: s.doctorID, VisitDate: slot.Date})
	}))

	create := func() error {
		return st.WithTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
			return tx.Invoices().Create(ctx, &invoice.Invoice{
				ID: uuid.New(), VisitID: visitID, PatientID: s.patientID, Currency: "INR",
			})
		})
	}
	require.NoError(t, create())

	err := create()
	var dup *invoice.DuplicateInvoiceError
	require.True(t, errors.As(err, &dup), "got %v", err)
	assert.Equal(t, visitID, dup.VisitID)
}
