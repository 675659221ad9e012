package service

import (
	"context"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/medication"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/store"
	"github.com/google/uuid"
)

const maxReportDays = 90

// UpcomingAppointment is a scheduled appointment with display names resolved.
type UpcomingAppointment struct {
	*appointment.Appointment
	PatientName string `json:"patient_name"`
	DoctorName  string `json:"doctor_name"`
	RoomName    string `json:"room_name"`
}

// ReportService serves the read-only front-desk and pharmacy reports.
type ReportService struct {
	base
}

func NewReportService(d Deps) *ReportService {
	return &ReportService{base: newBase(d)}
}

// UpcomingAppointments lists SCHEDULED appointments from today through
// today plus days, ordered by date and start time.
func (s *ReportService) UpcomingAppointments(ctx context.Context, days int) ([]UpcomingAppointment, error) {
	if days < 0 || days > maxReportDays {
		return nil, &ValidationError{Fields: []string{"days must be between 0 and 90"}}
	}

	today := s.now()
	from := appointment.DateOf(today)
	to := appointment.DateOf(today.AddDate(0, 0, days))

	var out []UpcomingAppointment
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		appts, err := tx.Appointments().ListScheduledBetween(ctx, from, to)
		if err != nil {
			return err
		}

		patients := map[uuid.UUID]string{}
		doctors := map[uuid.UUID]string{}
		rooms := map[uuid.UUID]string{}

		out = make([]UpcomingAppointment, 0, len(appts))
		for _, a := range appts {
			row := UpcomingAppointment{Appointment: a}

			name, ok := patients[a.PatientID]
			if !ok {
				p, err := tx.Patients().GetByID(ctx, a.PatientID)
				if err != nil {
					return err
				}
				name = p.FullName()
				patients[a.PatientID] = name
			}
			row.PatientName = name

			name, ok = doctors[a.DoctorID]
			if !ok {
				d, err := tx.Doctors().GetByID(ctx, a.DoctorID)
				if err != nil {
					return err
				}
				name = d.FullName()
				doctors[a.DoctorID] = name
			}
			row.DoctorName = name

			name, ok = rooms[a.RoomID]
			if !ok {
				r, err := tx.Rooms().GetByID(ctx, a.RoomID)
				if err != nil {
					return err
				}
				name = r.Name
				rooms[a.RoomID] = name
			}
			row.RoomName = name

			out = append(out, row)
		}
		return nil
	})
	return out, err
}

// LowStock lists medications with fewer than threshold units, lowest first.
func (s *ReportService) LowStock(ctx context.Context, threshold int) ([]*medication.Medication, error) {
	if threshold < 0 {
		return nil, &ValidationError{Fields: []string{"threshold must not be negative"}}
	}

	var out []*medication.Medication
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		out, err = tx.Medications().ListBelowStock(ctx, threshold)
		return err
	})
	return out, err
}
