package service

import (
	"context"
	"errors"
	"testing"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/visit"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteAppointment_Twice(t *testing.T) {
	f := newFixture(t)
	svc := f.visits()
	ctx := context.Background()

	a := f.book("2024-01-05", "10:00", "10:30")
	hr := 72
	v, err := svc.CompleteAppointment(ctx, a.ID, &visit.CompleteAppointmentCommand{
		Diagnosis: "  seasonal flu ",
		Vitals:    &visit.Vitals{HeartRateBPM: &hr},
	}, admin)
	require.NoError(t, err)
	assert.Equal(t, a.ID, v.AppointmentID)
	assert.Equal(t, f.patientID, v.PatientID)
	assert.Equal(t, f.doctorID, v.DoctorID)
	assert.Equal(t, "seasonal flu", v.Diagnosis)
	assert.True(t, appointment.SameDate(a.Date, v.VisitDate))

	got, err := f.scheduling().GetAppointment(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, appointment.StatusCompleted, got.Status)
	assert.NotNil(t, got.CompletedAt)

	_, err = svc.CompleteAppointment(ctx, a.ID, &visit.CompleteAppointmentCommand{Diagnosis: "again"}, admin)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidState))

	var stateErr *domain.InvalidStateError
	require.True(t, errors.As(err, &stateErr))
	assert.Equal(t, "COMPLETED", stateErr.From)

	page, err := svc.ListVisits(ctx, &visit.ListVisitsQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.TotalCount, "second completion must not add a visit")
}

func TestCompleteAppointment_Cancelled(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.book("2024-01-05", "10:00", "10:30")
	_, err := f.scheduling().CancelAppointment(ctx, a.ID, &appointment.CancelAppointmentCommand{}, admin)
	require.NoError(t, err)

	_, err = f.visits().CompleteAppointment(ctx, a.ID, &visit.CompleteAppointmentCommand{}, admin)
	assert.True(t, errors.Is(err, domain.ErrInvalidState))
}

func TestCompleteAppointment_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.visits().CompleteAppointment(context.Background(), uuid.New(), &visit.CompleteAppointmentCommand{}, admin)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCompleteAppointment_DoctorOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.book("2024-01-05", "10:00", "10:30")

	otherDoctor := f.addDoctor("Meera", "Iyer")
	stranger := domain.Caller{UserID: uuid.New(), Role: domain.RoleDoctor, DoctorID: &otherDoctor}
	_, err := f.visits().CompleteAppointment(ctx, a.ID, &visit.CompleteAppointmentCommand{}, stranger)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := f.scheduling().GetAppointment(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, appointment.StatusScheduled, got.Status)

	owner := domain.Caller{UserID: uuid.New(), Role: domain.RoleDoctor, DoctorID: &f.doctorID}
	_, err = f.visits().CompleteAppointment(ctx, a.ID, &visit.CompleteAppointmentCommand{}, owner)
	require.NoError(t, err)

	_, err = f.visits().CompleteAppointment(ctx, a.ID, &visit.CompleteAppointmentCommand{}, pharmacist)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCompleteAppointment_RejectsBadVitals(t *testing.T) {
	f := newFixture(t)
	a := f.book("2024-01-05", "10:00", "10:30")

	spo2 := 140.0
	_, err := f.visits().CompleteAppointment(context.Background(), a.ID, &visit.CompleteAppointmentCommand{
		Vitals: &visit.Vitals{OxygenSaturation: &spo2},
	}, admin)
	requireValidation(t, err)
}

func TestCompleteAppointment_Events(t *testing.T) {
	f := newFixture(t)
	v := f.visit("10:00", "10:30")

	types := f.events.types()
	require.Len(t, types, 2)
	assert.Equal(t, domain.EventAppointmentCompleted, types[1])

	got, err := f.visits().GetVisit(context.Background(), v.ID)
	require.NoError(t, err)
	assert.Equal(t, "flu", got.Diagnosis)
}
