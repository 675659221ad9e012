package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/appointment"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleAppointment_DoctorBoundaryScenario(t *testing.T) {
	f := newFixture(t)
	svc := f.scheduling()
	ctx := context.Background()

	first := f.book("2024-01-05", "10:00", "10:30")
	assert.Equal(t, appointment.StatusScheduled, first.Status)

	// Different room, same doctor: the doctor is the conflicting resource.
	cmd := f.bookCmd("2024-01-05", "10:15", "10:45")
	cmd.RoomID = f.addRoom("Room 2")
	_, err := svc.ScheduleAppointment(ctx, cmd, admin)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appointment.ErrAppointmentConflict))

	var conflict *appointment.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "doctor", conflict.Resource)
	assert.Equal(t, f.doctorID, conflict.ResourceID)
	assert.Equal(t, first.ID, conflict.AppointmentID)
	assert.Contains(t, err.Error(), "2024-01-05 10:00-10:30")

	// Half-open: starting exactly when the first one ends is fine.
	_, err = svc.ScheduleAppointment(ctx, f.bookCmd("2024-01-05", "10:30", "11:00"), admin)
	require.NoError(t, err)
}

func TestScheduleAppointment_RoomConflict(t *testing.T) {
	f := newFixture(t)
	f.book("2024-01-05", "10:00", "10:30")

	cmd := f.bookCmd("2024-01-05", "10:10", "10:20")
	cmd.DoctorID = f.addDoctor("Meera", "Iyer")
	_, err := f.scheduling().ScheduleAppointment(context.Background(), cmd, receptionist)

	var conflict *appointment.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "room", conflict.Resource)
	assert.Equal(t, f.roomID, conflict.ResourceID)
}

func TestScheduleAppointment_OtherDateOrResourcesDoNotConflict(t *testing.T) {
	f := newFixture(t)
	f.book("2024-01-05", "10:00", "10:30")
	f.book("2024-01-06", "10:00", "10:30")

	cmd := f.bookCmd("2024-01-05", "10:00", "10:30")
	cmd.DoctorID = f.addDoctor("Meera", "Iyer")
	cmd.RoomID = f.addRoom("Room 2")
	_, err := f.scheduling().ScheduleAppointment(context.Background(), cmd, admin)
	require.NoError(t, err)
}

func TestScheduleAppointment_CancelledSlotIsFree(t *testing.T) {
	f := newFixture(t)
	svc := f.scheduling()
	ctx := context.Background()

	a := f.book("2024-01-05", "10:00", "10:30")
	cancelled, err := svc.CancelAppointment(ctx, a.ID, &appointment.CancelAppointmentCommand{Reason: "patient called"}, receptionist)
	require.NoError(t, err)
	assert.Equal(t, appointment.StatusCancelled, cancelled.Status)
	assert.Equal(t, "patient called", cancelled.CancellationReason)

	_, err = svc.ScheduleAppointment(ctx, f.bookCmd("2024-01-05", "10:00", "10:30"), admin)
	require.NoError(t, err)

	_, err = svc.CancelAppointment(ctx, a.ID, &appointment.CancelAppointmentCommand{}, admin)
	assert.True(t, errors.Is(err, domain.ErrInvalidState))
}

func TestScheduleAppointment_Validation(t *testing.T) {
	f := newFixture(t)
	svc := f.scheduling()

	cmd := f.bookCmd("2024-01-05", "11:00", "10:00")
	cmd.PatientID = uuid.Nil
	_, err := svc.ScheduleAppointment(context.Background(), cmd, admin)
	verr := requireValidation(t, err)
	assert.Contains(t, verr.Fields, "patient_id is required")
	assert.Len(t, verr.Fields, 2)

	_, err = svc.ScheduleAppointment(context.Background(), f.bookCmd("2024-01-05", "10:00", "10:00"), admin)
	requireValidation(t, err)
}

func TestScheduleAppointment_UnknownReferences(t *testing.T) {
	f := newFixture(t)
	svc := f.scheduling()
	ctx := context.Background()

	for name, mutate := range map[string]func(*appointment.CreateAppointmentCommand){
		"patient": func(c *appointment.CreateAppointmentCommand) { c.PatientID = uuid.New() },
		"doctor":  func(c *appointment.CreateAppointmentCommand) { c.DoctorID = uuid.New() },
		"room":    func(c *appointment.CreateAppointmentCommand) { c.RoomID = uuid.New() },
	} {
		t.Run(name, func(t *testing.T) {
			cmd := f.bookCmd("2024-01-05", "10:00", "10:30")
			mutate(cmd)
			_, err := svc.ScheduleAppointment(ctx, cmd, admin)
			var nf *domain.NotFoundError
			require.True(t, errors.As(err, &nf))
			assert.Equal(t, name, nf.Resource)
		})
	}

	page, err := svc.ListAppointments(ctx, &appointment.ListAppointmentsQuery{})
	require.NoError(t, err)
	assert.Zero(t, page.TotalCount, "rejected bookings must not leave rows behind")
}

func TestScheduleAppointment_RoleGate(t *testing.T) {
	f := newFixture(t)
	_, err := f.scheduling().ScheduleAppointment(context.Background(), f.bookCmd("2024-01-05", "10:00", "10:30"), cashier)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestScheduleAppointment_ConcurrentDoubleBooking(t *testing.T) {
	f := newFixture(t)
	svc := f.scheduling()

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Each attempt overlaps every other one on the same doctor and room.
			start := []string{"10:00", "10:05", "10:10", "10:15"}[i%4]
			_, err := svc.ScheduleAppointment(context.Background(), f.bookCmd("2024-01-05", start, "10:30"), admin)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, appointment.ErrAppointmentConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, conflicts)

	page, err := svc.ListAppointments(context.Background(), &appointment.ListAppointmentsQuery{DoctorID: &f.doctorID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.TotalCount)
}

func TestScheduleAppointment_NeverOverlapsForDoctor(t *testing.T) {
	f := newFixture(t)
	svc := f.scheduling()
	ctx := context.Background()

	slots := [][2]string{
		{"09:00", "09:30"}, {"09:15", "09:45"}, {"09:30", "10:00"}, {"09:45", "10:15"},
		{"10:00", "11:00"}, {"10:30", "10:45"}, {"11:00", "11:15"}, {"08:00", "12:00"},
	}
	for _, s := range slots {
		_, _ = svc.ScheduleAppointment(ctx, f.bookCmd("2024-01-05", s[0], s[1]), admin)
	}

	page, err := svc.ListAppointments(ctx, &appointment.ListAppointmentsQuery{DoctorID: &f.doctorID, PageSize: 100})
	require.NoError(t, err)
	require.NotEmpty(t, page.Appointments)
	for i, a := range page.Appointments {
		for _, b := range page.Appointments[i+1:] {
			assert.False(t, a.Slot().Overlaps(b.Slot()), "%s overlaps %s", a.Slot(), b.Slot())
		}
	}
}

func TestScheduleAppointment_EmitsEventAndAudit(t *testing.T) {
	f := newFixture(t)
	a := f.book("2024-01-05", "10:00", "10:30")

	assert.Equal(t, []domain.EventType{domain.EventAppointmentScheduled}, f.events.types())
	assert.Equal(t, a.ID, f.events.events[0].AggregateID)

	f.flushAudit()
	logs := f.store.AuditLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, "appointment", logs[0].ResourceType)
	assert.Equal(t, a.ID.String(), logs[0].ResourceID)
	assert.Equal(t, domain.ActionCreate, logs[0].Action)
}

func TestScheduleAppointment_PublishFailureDoesNotFail(t *testing.T) {
	f := newFixture(t)
	f.events.err = errors.New("broker down")

	_, err := f.scheduling().ScheduleAppointment(context.Background(), f.bookCmd("2024-01-05", "10:00", "10:30"), admin)
	require.NoError(t, err)
}

func TestListAppointments_FiltersAndOrder(t *testing.T) {
	f := newFixture(t)
	svc := f.scheduling()
	ctx := context.Background()

	f.book("2024-01-05", "11:00", "11:30")
	f.book("2024-01-05", "09:00", "09:30")
	latest := f.book("2024-01-07", "09:00", "09:30")

	page, err := svc.ListAppointments(ctx, &appointment.ListAppointmentsQuery{})
	require.NoError(t, err)
	require.Len(t, page.Appointments, 3)
	assert.Equal(t, latest.ID, page.Appointments[0].ID, "newest date first")
	assert.Equal(t, "09:00", appointment.FormatClock(page.Appointments[1].StartTime))
	assert.Equal(t, "11:00", appointment.FormatClock(page.Appointments[2].StartTime))

	bad := appointment.Status("DONE")
	_, err = svc.ListAppointments(ctx, &appointment.ListAppointmentsQuery{Status: &bad})
	requireValidation(t, err)

	got, err := svc.GetAppointment(ctx, latest.ID)
	require.NoError(t, err)
	assert.Equal(t, latest.ID, got.ID)

	_, err = svc.GetAppointment(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
