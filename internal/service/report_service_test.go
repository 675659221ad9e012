package service

import (
	"context"
	"testing"
	"time"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/appointment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpcomingAppointments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	now := time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC)
	svc := NewReportService(f.deps)
	svc.now = func() time.Time { return now }

	f.book("2024-01-04", "10:00", "10:30") // yesterday
	later := f.book("2024-01-12", "09:00", "09:30")
	f.book("2024-01-13", "09:00", "09:30") // beyond the window
	today := f.book("2024-01-05", "15:00", "15:30")
	cancelled := f.book("2024-01-06", "09:00", "09:30")
	_, err := f.scheduling().CancelAppointment(ctx, cancelled.ID, &appointment.CancelAppointmentCommand{}, admin)
	require.NoError(t, err)

	rows, err := svc.UpcomingAppointments(ctx, 7)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, today.ID, rows[0].ID)
	assert.Equal(t, later.ID, rows[1].ID)
	assert.Equal(t, "Asha Rao", rows[0].PatientName)
	assert.Equal(t, "Vikram Sen", rows[0].DoctorName)
	assert.Equal(t, "Room 1", rows[0].RoomName)

	_, err = svc.UpcomingAppointments(ctx, -1)
	requireValidation(t, err)
}

func TestLowStock(t *testing.T) {
	f := newFixture(t)
	svc := NewReportService(f.deps)

	f.addMedication("Plenty", 100, "1.00")
	f.addMedication("Scarce", 2, "1.00")
	f.addMedication("Low", 15, "1.00")
	f.addMedication("AtThreshold", 20, "1.00")

	rows, err := svc.LowStock(context.Background(), 20)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Scarce", rows[0].Name)
	assert.Equal(t, "Low", rows[1].Name)
}
