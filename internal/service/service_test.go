package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/doctor"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/medication"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/room"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/visit"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/store"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/store/memory"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/pkg/metrics"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	admin        = domain.Caller{UserID: uuid.New(), Role: domain.RoleAdmin, RequestID: "test"}
	receptionist = domain.Caller{UserID: uuid.New(), Role: domain.RoleReceptionist}
	pharmacist   = domain.Caller{UserID: uuid.New(), Role: domain.RolePharmacist}
	cashier      = domain.Caller{UserID: uuid.New(), Role: domain.RoleCashier}
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []domain.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.EventType, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type fixture struct {
	t          *testing.T
	store      *memory.Store
	events     *recordingPublisher
	audit      *AuditService
	flushAudit func()
	deps       Deps

	patientID uuid.UUID
	doctorID  uuid.UUID
	roomID    uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st := memory.New()
	m := metrics.NewCollectorWith(prometheus.NewRegistry(), "test")
	log := zap.NewNop()
	audit := newAuditService(st, m, log, 100)
	flush := sync.OnceFunc(audit.Shutdown)
	t.Cleanup(flush)

	f := &fixture{
		t:          t,
		store:      st,
		events:     &recordingPublisher{},
		audit:      audit,
		flushAudit: flush,
	}
	f.deps = Deps{Store: st, Audit: audit, Events: f.events, Metrics: m, Log: log}

	f.patientID = f.addPatient("Asha", "Rao")
	f.doctorID = f.addDoctor("Vikram", "Sen")
	f.roomID = f.addRoom("Room 1")
	return f
}

func (f *fixture) tx(fn func(ctx context.Context, tx store.Tx) error) {
	f.t.Helper()
	require.NoError(f.t, f.store.WithTransaction(context.Background(), fn))
}

func (f *fixture) addPatient(first, last string) uuid.UUID {
	p := &patient.Patient{
		ID:          uuid.New(),
		FirstName:   first,
		LastName:    last,
		DateOfBirth: time.Date(1990, 3, 1, 0, 0, 0, 0, time.UTC),
		Sex:         patient.SexFemale,
	}
	f.tx(func(ctx context.Context, tx store.Tx) error { return tx.Patients().Create(ctx, p) })
	return p.ID
}

func (f *fixture) addDoctor(first, last string) uuid.UUID {
	d := &doctor.Doctor{ID: uuid.New(), FirstName: first, LastName: last, Specialization: "General"}
	f.tx(func(ctx context.Context, tx store.Tx) error { return tx.Doctors().Create(ctx, d) })
	return d.ID
}

func (f *fixture) addRoom(name string) uuid.UUID {
	r := &room.Room{ID: uuid.New(), Name: name}
	f.tx(func(ctx context.Context, tx store.Tx) error { return tx.Rooms().Create(ctx, r) })
	return r.ID
}

func (f *fixture) addMedication(name string, stock int, price string) uuid.UUID {
	m := &medication.Medication{ID: uuid.New(), Name: name, StockQty: stock, UnitPrice: decimal.RequireFromString(price)}
	f.tx(func(ctx context.Context, tx store.Tx) error { return tx.Medications().Create(ctx, m) })
	return m.ID
}

func (f *fixture) stockOf(id uuid.UUID) int {
	var qty int
	f.tx(func(ctx context.Context, tx store.Tx) error {
		m, err := tx.Medications().GetByID(ctx, id)
		if err != nil {
			return err
		}
		qty = m.StockQty
		return nil
	})
	return qty
}

func (f *fixture) scheduling() *SchedulingService { return NewSchedulingService(f.deps) }

func (f *fixture) visits() *VisitService { return NewVisitService(f.deps) }

func (f *fixture) pharmacy() *PharmacyService { return NewPharmacyService(f.deps, 10) }

func (f *fixture) billing(fee string) *BillingService {
	return NewBillingService(f.deps, BillingConfig{ConsultationFee: decimal.RequireFromString(fee)})
}

func (f *fixture) bookCmd(date, start, end string) *appointment.CreateAppointmentCommand {
	f.t.Helper()
	d, err := appointment.ParseDate(date)
	require.NoError(f.t, err)
	s, err := appointment.ParseClock(start)
	require.NoError(f.t, err)
	e, err := appointment.ParseClock(end)
	require.NoError(f.t, err)
	return &appointment.CreateAppointmentCommand{
		PatientID: f.patientID,
		DoctorID:  f.doctorID,
		RoomID:    f.roomID,
		Date:      d,
		StartTime: s,
		EndTime:   e,
	}
}

func (f *fixture) book(date, start, end string) *appointment.Appointment {
	f.t.Helper()
	a, err := f.scheduling().ScheduleAppointment(context.Background(), f.bookCmd(date, start, end), admin)
	require.NoError(f.t, err)
	return a
}

// visit books and completes an appointment in the given slot.
func (f *fixture) visit(start, end string) *visit.Visit {
	f.t.Helper()
	a := f.book("2024-01-05", start, end)
	v, err := f.visits().CompleteAppointment(context.Background(), a.ID, &visit.CompleteAppointmentCommand{Diagnosis: "flu"}, admin)
	require.NoError(f.t, err)
	return v
}

func requireValidation(t *testing.T, err error) *ValidationError {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
	return verr
}
