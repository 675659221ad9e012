package service

import (
	"context"
	"strings"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/visit"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/store"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// VisitService turns a scheduled appointment into a clinical visit.
type VisitService struct {
	base
}

func NewVisitService(d Deps) *VisitService {
	return &VisitService{base: newBase(d)}
}

// CompleteAppointment marks the appointment COMPLETED and records the visit
// in the same transaction. Completing twice fails with InvalidStateError.
func (s *VisitService) CompleteAppointment(ctx context.Context, appointmentID uuid.UUID, cmd *visit.CompleteAppointmentCommand, caller domain.Caller) (v *visit.Visit, err error) {
	ctx, span := startSpan(ctx, "VisitService.CompleteAppointment")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("appointment_id", appointmentID.String()))

	if err := authorize(caller, domain.RoleAdmin, domain.RoleDoctor); err != nil {
		return nil, err
	}
	if err := validateVitals(cmd.Vitals); err != nil {
		return nil, err
	}

	err = s.store.WithTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		a, err := tx.Appointments().GetForUpdate(ctx, appointmentID)
		if err != nil {
			return err
		}

		// Doctors may only complete their own appointments.
		if caller.Role == domain.RoleDoctor && (caller.DoctorID == nil || *caller.DoctorID != a.DoctorID) {
			return ErrForbidden
		}

		now := s.now()
		if err := a.Complete(now); err != nil {
			return err
		}
		if err := tx.Appointments().UpdateStatus(ctx, a); err != nil {
			return err
		}

		v = &visit.Visit{
			ID:            uuid.New(),
			AppointmentID: a.ID,
			PatientID:     a.PatientID,
			DoctorID:      a.DoctorID,
			VisitDate:     a.Date,
			Diagnosis:     strings.TrimSpace(cmd.Diagnosis),
			Notes:         strings.TrimSpace(cmd.Notes),
			Vitals:        cmd.Vitals,
			CreatedBy:     caller.UserID,
		}
		return tx.Visits().Create(ctx, v)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.AppointmentsTotal.WithLabelValues("completed").Inc()
	s.record(ctx, AuditEntry{
		Caller:       caller,
		Action:       domain.ActionUpdate,
		ResourceType: "appointment",
		ResourceID:   appointmentID,
		Changes:      map[string]string{"status": string(appointment.StatusCompleted)},
	})
	s.record(ctx, AuditEntry{
		Caller:       caller,
		Action:       domain.ActionCreate,
		ResourceType: "visit",
		ResourceID:   v.ID,
	})
	s.publish(ctx, domain.NewEvent(domain.EventAppointmentCompleted, appointmentID, caller.UserID, map[string]string{
		"visit_id":   v.ID.String(),
		"patient_id": v.PatientID.String(),
		"doctor_id":  v.DoctorID.String(),
	}))

	s.log.Info("appointment completed",
		zap.String("appointment_id", appointmentID.String()),
		zap.String("visit_id", v.ID.String()),
	)
	return v, nil
}

func (s *VisitService) GetVisit(ctx context.Context, id uuid.UUID) (*visit.Visit, error) {
	var v *visit.Visit
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		v, err = tx.Visits().GetByID(ctx, id)
		return err
	})
	return v, err
}

func (s *VisitService) ListVisits(ctx context.Context, q *visit.ListVisitsQuery) (*visit.PagedVisits, error) {
	q.Page, q.PageSize = store.NormalizePage(q.Page, q.PageSize)

	var out *visit.PagedVisits
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		out, err = tx.Visits().List(ctx, q)
		return err
	})
	return out, err
}

func validateVitals(vt *visit.Vitals) error {
	if vt == nil {
		return nil
	}
	var v validation
	if vt.BloodPressureSystolic != nil {
		v.check(*vt.BloodPressureSystolic > 0 && *vt.BloodPressureSystolic < 300, "vitals.bp_systolic is out of range")
	}
	if vt.BloodPressureDiastolic != nil {
		v.check(*vt.BloodPressureDiastolic > 0 && *vt.BloodPressureDiastolic < 200, "vitals.bp_diastolic is out of range")
	}
	if vt.HeartRateBPM != nil {
		v.check(*vt.HeartRateBPM > 0 && *vt.HeartRateBPM < 300, "vitals.heart_rate_bpm is out of range")
	}
	if vt.TemperatureCelsius != nil {
		v.check(*vt.TemperatureCelsius > 25 && *vt.TemperatureCelsius < 45, "vitals.temperature_celsius is out of range")
	}
	if vt.OxygenSaturation != nil {
		v.check(*vt.OxygenSaturation >= 0 && *vt.OxygenSaturation <= 100, "vitals.oxygen_saturation must be between 0 and 100")
	}
	return v.err()
}
