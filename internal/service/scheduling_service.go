package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/store"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// SchedulingService books and cancels appointments. A doctor or a room is
// never held by two non-cancelled appointments whose slots overlap.
type SchedulingService struct {
	base
}

func NewSchedulingService(d Deps) *SchedulingService {
	return &SchedulingService{base: newBase(d)}
}

func (s *SchedulingService) ScheduleAppointment(ctx context.Context, cmd *appointment.CreateAppointmentCommand, caller domain.Caller) (a *appointment.Appointment, err error) {
	ctx, span := startSpan(ctx, "SchedulingService.ScheduleAppointment")
	defer func() { endSpan(span, err) }()

	if err := authorize(caller, domain.RoleAdmin, domain.RoleReceptionist, domain.RoleDoctor); err != nil {
		return nil, err
	}
	if err := validateSchedule(cmd); err != nil {
		return nil, err
	}

	slot := appointment.Slot{Date: cmd.Date, Start: cmd.StartTime, End: cmd.EndTime}
	span.SetAttributes(
		attribute.String("doctor_id", cmd.DoctorID.String()),
		attribute.String("room_id", cmd.RoomID.String()),
		attribute.String("slot", slot.String()),
	)

	err = s.store.WithTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		if _, err := tx.Patients().GetByID(ctx, cmd.PatientID); err != nil {
			return err
		}

		// Lock order is always doctor then room so two bookings never
		// wait on each other's locks.
		if _, err := tx.Doctors().GetForUpdate(ctx, cmd.DoctorID); err != nil {
			return err
		}
		if _, err := tx.Rooms().GetForUpdate(ctx, cmd.RoomID); err != nil {
			return err
		}

		if err := ensureFree(ctx, tx, "doctor", cmd.DoctorID, appointment.OverlapQuery{DoctorID: &cmd.DoctorID, Slot: slot}); err != nil {
			return err
		}
		if err := ensureFree(ctx, tx, "room", cmd.RoomID, appointment.OverlapQuery{RoomID: &cmd.RoomID, Slot: slot}); err != nil {
			return err
		}

		a = &appointment.Appointment{
			ID:        uuid.New(),
			PatientID: cmd.PatientID,
			DoctorID:  cmd.DoctorID,
			RoomID:    cmd.RoomID,
			Date:      cmd.Date,
			StartTime: cmd.StartTime,
			EndTime:   cmd.EndTime,
			Status:    appointment.StatusScheduled,
			Notes:     strings.TrimSpace(cmd.Notes),
			CreatedBy: caller.UserID,
		}
		return tx.Appointments().Create(ctx, a)
	})
	if err != nil {
		if errors.Is(err, appointment.ErrAppointmentConflict) {
			s.metrics.AppointmentsTotal.WithLabelValues("conflict").Inc()
			s.log.Info("appointment rejected", zap.Error(err))
		}
		return nil, err
	}

	s.metrics.AppointmentsTotal.WithLabelValues("scheduled").Inc()
	s.record(ctx, AuditEntry{
		Caller:       caller,
		Action:       domain.ActionCreate,
		ResourceType: "appointment",
		ResourceID:   a.ID,
	})
	s.publish(ctx, domain.NewEvent(domain.EventAppointmentScheduled, a.ID, caller.UserID, appointmentPayload(a)))

	s.log.Info("appointment scheduled",
		zap.String("appointment_id", a.ID.String()),
		zap.String("doctor_id", a.DoctorID.String()),
		zap.String("room_id", a.RoomID.String()),
		zap.Stringer("slot", slot),
	)
	return a, nil
}

// ensureFree fails with a *appointment.ConflictError naming the earliest
// blocking appointment of the resource.
func ensureFree(ctx context.Context, tx store.Tx, resource string, resourceID uuid.UUID, q appointment.OverlapQuery) error {
	clashes, err := tx.Appointments().FindOverlapping(ctx, q)
	if err != nil {
		return err
	}
	if len(clashes) == 0 {
		return nil
	}
	hit := clashes[0]
	return &appointment.ConflictError{
		Resource:      resource,
		ResourceID:    resourceID,
		AppointmentID: hit.ID,
		Slot:          hit.Slot(),
	}
}

func (s *SchedulingService) GetAppointment(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	var a *appointment.Appointment
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		a, err = tx.Appointments().GetByID(ctx, id)
		return err
	})
	return a, err
}

func (s *SchedulingService) ListAppointments(ctx context.Context, q *appointment.ListAppointmentsQuery) (*appointment.PagedAppointments, error) {
	q.Page, q.PageSize = store.NormalizePage(q.Page, q.PageSize)
	if q.Status != nil && !q.Status.IsValid() {
		return nil, &ValidationError{Fields: []string{"status must be one of SCHEDULED, COMPLETED, CANCELLED"}}
	}

	var out *appointment.PagedAppointments
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		out, err = tx.Appointments().List(ctx, q)
		return err
	})
	return out, err
}

// CancelAppointment moves a SCHEDULED appointment to CANCELLED, which frees
// its doctor and room for new bookings.
func (s *SchedulingService) CancelAppointment(ctx context.Context, id uuid.UUID, cmd *appointment.CancelAppointmentCommand, caller domain.Caller) (a *appointment.Appointment, err error) {
	ctx, span := startSpan(ctx, "SchedulingService.CancelAppointment")
	defer func() { endSpan(span, err) }()

	if err := authorize(caller, domain.RoleAdmin, domain.RoleReceptionist, domain.RoleDoctor); err != nil {
		return nil, err
	}

	err = s.store.WithTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		a, err = tx.Appointments().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := a.Cancel(strings.TrimSpace(cmd.Reason), s.now()); err != nil {
			return err
		}
		return tx.Appointments().UpdateStatus(ctx, a)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.AppointmentsTotal.WithLabelValues("cancelled").Inc()
	s.record(ctx, AuditEntry{
		Caller:       caller,
		Action:       domain.ActionUpdate,
		ResourceType: "appointment",
		ResourceID:   id,
		Changes:      map[string]string{"status": string(a.Status), "reason": a.CancellationReason},
	})
	s.publish(ctx, domain.NewEvent(domain.EventAppointmentCancelled, a.ID, caller.UserID, appointmentPayload(a)))

	return a, nil
}

func validateSchedule(cmd *appointment.CreateAppointmentCommand) error {
	var v validation

	v.check(cmd.PatientID != uuid.Nil, "patient_id is required")
	v.check(cmd.DoctorID != uuid.Nil, "doctor_id is required")
	v.check(cmd.RoomID != uuid.Nil, "room_id is required")
	v.check(!time.Time(cmd.Date).IsZero(), "date is required")
	v.check(cmd.StartTime < cmd.EndTime, appointment.ErrInvalidTimeRange.Error())

	return v.err()
}

func appointmentPayload(a *appointment.Appointment) map[string]string {
	return map[string]string{
		"patient_id": a.PatientID.String(),
		"doctor_id":  a.DoctorID.String(),
		"room_id":    a.RoomID.String(),
		"slot":       a.Slot().String(),
		"status":     string(a.Status),
	}
}
