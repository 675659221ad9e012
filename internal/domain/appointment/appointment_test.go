package appointment

import (
	"errors"
	"testing"
	"time"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func mustSlot(t *testing.T, date, start, end string) Slot {
	t.Helper()
	d, err := ParseDate(date)
	require.NoError(t, err)
	s, err := ParseClock(start)
	require.NoError(t, err)
	e, err := ParseClock(end)
	require.NoError(t, err)
	return Slot{Date: d, Start: s, End: e}
}

func TestSlotOverlaps(t *testing.T) {
	base := mustSlot(t, "2024-01-05", "10:00", "10:30")

	tests := []struct {
		name  string
		other Slot
		want  bool
	}{
		{"partial overlap", mustSlot(t, "2024-01-05", "10:15", "10:45"), true},
		{"contained", mustSlot(t, "2024-01-05", "10:05", "10:10"), true},
		{"containing", mustSlot(t, "2024-01-05", "09:00", "11:00"), true},
		{"identical", mustSlot(t, "2024-01-05", "10:00", "10:30"), true},
		{"touching after", mustSlot(t, "2024-01-05", "10:30", "11:00"), false},
		{"touching before", mustSlot(t, "2024-01-05", "09:30", "10:00"), false},
		{"other day", mustSlot(t, "2024-01-06", "10:00", "10:30"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Overlaps(tt.other))
			assert.Equal(t, tt.want, tt.other.Overlaps(base), "overlap must be symmetric")
		})
	}
}

func TestSlotValid(t *testing.T) {
	assert.True(t, mustSlot(t, "2024-01-05", "10:00", "10:30").Valid())
	assert.False(t, mustSlot(t, "2024-01-05", "10:30", "10:30").Valid())
	assert.False(t, mustSlot(t, "2024-01-05", "11:00", "10:30").Valid())
}

func TestParseClock(t *testing.T) {
	c, err := ParseClock("09:45")
	require.NoError(t, err)
	assert.Equal(t, datatypes.NewTime(9, 45, 0, 0), c)
	assert.Equal(t, "09:45", FormatClock(c))

	c, err = ParseClock("17:05:30")
	require.NoError(t, err)
	assert.Equal(t, "17:05:30", FormatClock(c))

	_, err = ParseClock("25:00")
	assert.Error(t, err)
	_, err = ParseClock("noon")
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-05")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-05", FormatDate(d))

	_, err = ParseDate("05/01/2024")
	assert.Error(t, err)
}

func TestCompareDates(t *testing.T) {
	a := DateOf(time.Date(2024, 1, 5, 23, 0, 0, 0, time.UTC))
	b := DateOf(time.Date(2024, 1, 6, 1, 0, 0, 0, time.UTC))
	assert.Equal(t, -1, CompareDates(a, b))
	assert.Equal(t, 1, CompareDates(b, a))
	assert.Equal(t, 0, CompareDates(a, a))
	assert.True(t, SameDate(a, DateOf(time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC))))
}

func TestAppointmentTransitions(t *testing.T) {
	now := time.Now()

	a := &Appointment{ID: uuid.New(), Status: StatusScheduled}
	require.NoError(t, a.Complete(now))
	assert.Equal(t, StatusCompleted, a.Status)
	assert.NotNil(t, a.CompletedAt)

	err := a.Complete(now)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidState))

	var stateErr *domain.InvalidStateError
	require.True(t, errors.As(err, &stateErr))
	assert.Equal(t, "COMPLETED", stateErr.From)
	assert.Equal(t, a.ID, stateErr.ID)

	err = a.Cancel("patient called", now)
	assert.True(t, errors.Is(err, domain.ErrInvalidState))

	b := &Appointment{ID: uuid.New(), Status: StatusScheduled}
	require.NoError(t, b.Cancel("patient called", now))
	assert.Equal(t, StatusCancelled, b.Status)
	assert.False(t, b.Blocks())
	assert.Equal(t, "patient called", b.CancellationReason)
	assert.True(t, errors.Is(b.Complete(now), domain.ErrInvalidState))
}

func TestConflictErrorMessage(t *testing.T) {
	doctorID := uuid.New()
	apptID := uuid.New()
	err := error(&ConflictError{
		Resource:      "doctor",
		ResourceID:    doctorID,
		AppointmentID: apptID,
		Slot:          mustSlot(t, "2024-01-05", "10:00", "10:30"),
	})

	assert.True(t, errors.Is(err, ErrAppointmentConflict))
	assert.Contains(t, err.Error(), doctorID.String())
	assert.Contains(t, err.Error(), "2024-01-05 10:00-10:30")
	assert.Contains(t, err.Error(), apptID.String())
}
