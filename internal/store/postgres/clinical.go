package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/doctor"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/room"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/visit"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/store"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type patientRepo struct{ db *gorm.DB }

func (r patientRepo) Create(ctx context.Context, p *patient.Patient) error {
	ensureID(&p.ID)
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("inserting patient: %w", err)
	}
	return nil
}

func (r patientRepo) GetByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	return first[patient.Patient](ctx, r.db, "patient", id)
}

func (r patientRepo) List(ctx context.Context, q *patient.ListPatientsQuery) (*patient.PagedPatients, error) {
	scope := r.db.Model(&patient.Patient{})
	if s := strings.TrimSpace(q.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		scope = scope.Where("LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?", like, like)
	}

	items, total, err := paged[patient.Patient](ctx, scope, "last_name, first_name", q.Page, q.PageSize)
	if err != nil {
		return nil, fmt.Errorf("listing patients: %w", err)
	}
	return &patient.PagedPatients{
		Patients:   items,
		TotalCount: total,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: store.TotalPages(total, q.PageSize),
	}, nil
}

type doctorRepo struct{ db *gorm.DB }

func (r doctorRepo) Create(ctx context.Context, d *doctor.Doctor) error {
	ensureID(&d.ID)
	if err := r.db.WithContext(ctx).Create(d).Error; err != nil {
		return fmt.Errorf("inserting doctor: %w", err)
	}
	return nil
}

func (r doctorRepo) GetByID(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error) {
	return first[doctor.Doctor](ctx, r.db, "doctor", id)
}

func (r doctorRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error) {
	return first[doctor.Doctor](ctx, forUpdate(r.db), "doctor", id)
}

func (r doctorRepo) List(ctx context.Context) ([]*doctor.Doctor, error) {
	out := []*doctor.Doctor{}
	if err := r.db.WithContext(ctx).Order("last_name, first_name").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("listing doctors: %w", err)
	}
	return out, nil
}

type roomRepo struct{ db *gorm.DB }

func (r roomRepo) Create(ctx context.Context, rm *room.Room) error {
	ensureID(&rm.ID)
	if err := r.db.WithContext(ctx).Create(rm).Error; err != nil {
		if isUniqueViolation(err) {
			return room.ErrRoomNameTaken
		}
		return fmt.Errorf("inserting room: %w", err)
	}
	return nil
}

func (r roomRepo) GetByID(ctx context.Context, id uuid.UUID) (*room.Room, error) {
	return first[room.Room](ctx, r.db, "room", id)
}

func (r roomRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*room.Room, error) {
	return first[room.Room](ctx, forUpdate(r.db), "room", id)
}

func (r roomRepo) List(ctx context.Context) ([]*room.Room, error) {
	out := []*room.Room{}
	if err := r.db.WithContext(ctx).Order("name").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("listing rooms: %w", err)
	}
	return out, nil
}

type appointmentRepo struct{ db *gorm.DB }

func (r appointmentRepo) Create(ctx context.Context, a *appointment.Appointment) error {
	ensureID(&a.ID)
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("inserting appointment: %w", err)
	}
	return nil
}

func (r appointmentRepo) GetByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	return first[appointment.Appointment](ctx, r.db, "appointment", id)
}

func (r appointmentRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	return first[appointment.Appointment](ctx, forUpdate(r.db), "appointment", id)
}

func (r appointmentRepo) UpdateStatus(ctx context.Context, a *appointment.Appointment) error {
	res := r.db.WithContext(ctx).Model(a).Select(
		"status", "cancelled_at", "cancellation_reason", "completed_at", "updated_at",
	).Updates(a)
	if res.Error != nil {
		return fmt.Errorf("updating appointment %s: %w", a.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NewNotFound("appointment", a.ID)
	}
	return nil
}

func (r appointmentRepo) FindOverlapping(ctx context.Context, q appointment.OverlapQuery) ([]*appointment.Appointment, error) {
	scope := r.db.WithContext(ctx).
		Where("appt_date = ?", q.Slot.Date).
		Where("status <> ?", appointment.StatusCancelled).
		// half-open [start, end): touching boundaries are not a clash
		Where("start_time < ? AND end_time > ?", q.Slot.End, q.Slot.Start)

	switch {
	case q.DoctorID != nil:
		scope = scope.Where("doctor_id = ?", *q.DoctorID)
	case q.RoomID != nil:
		scope = scope.Where("room_id = ?", *q.RoomID)
	default:
		return nil, errors.New("overlap query needs a doctor or a room")
	}

	out := []*appointment.Appointment{}
	if err := scope.Order("start_time").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("finding overlapping appointments: %w", err)
	}
	return out, nil
}

func (r appointmentRepo) List(ctx context.Context, q *appointment.ListAppointmentsQuery) (*appointment.PagedAppointments, error) {
	scope := r.db.Model(&appointment.Appointment{})
	if q.PatientID != nil {
		scope = scope.Where("patient_id = ?", *q.PatientID)
	}
	if q.DoctorID != nil {
		scope = scope.Where("doctor_id = ?", *q.DoctorID)
	}
	if q.RoomID != nil {
		scope = scope.Where("room_id = ?", *q.RoomID)
	}
	if q.Status != nil {
		scope = scope.Where("status = ?", *q.Status)
	}
	if q.DateFrom != nil {
		scope = scope.Where("appt_date >= ?", *q.DateFrom)
	}
	if q.DateTo != nil {
		scope = scope.Where("appt_date <= ?", *q.DateTo)
	}

	items, total, err := paged[appointment.Appointment](ctx, scope, "appt_date DESC, start_time", q.Page, q.PageSize)
	if err != nil {
		return nil, fmt.Errorf("listing appointments: %w", err)
	}
	return &appointment.PagedAppointments{
		Appointments: items,
		TotalCount:   total,
		Page:         q.Page,
		PageSize:     q.PageSize,
		TotalPages:   store.TotalPages(total, q.PageSize),
	}, nil
}

func (r appointmentRepo) ListScheduledBetween(ctx context.Context, from, to datatypes.Date) ([]*appointment.Appointment, error) {
	out := []*appointment.Appointment{}
	err := r.db.WithContext(ctx).
		Where("status = ?", appointment.StatusScheduled).
		Where("appt_date BETWEEN ? AND ?", from, to).
		Order("appt_date, start_time").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("listing scheduled appointments: %w", err)
	}
	return out, nil
}

type visitRepo struct{ db *gorm.DB }

func (r visitRepo) Create(ctx context.Context, v *visit.Visit) error {
	ensureID(&v.ID)
	if err := r.db.WithContext(ctx).Create(v).Error; err != nil {
		return fmt.Errorf("inserting visit: %w", err)
	}
	return nil
}

func (r visitRepo) GetByID(ctx context.Context, id uuid.UUID) (*visit.Visit, error) {
	return first[visit.Visit](ctx, r.db, "visit", id)
}

func (r visitRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*visit.Visit, error) {
	return first[visit.Visit](ctx, forUpdate(r.db), "visit", id)
}

func (r visitRepo) GetByAppointmentID(ctx context.Context, appointmentID uuid.UUID) (*visit.Visit, error) {
	var v visit.Visit
	err := r.db.WithContext(ctx).Where("appointment_id = ?", appointmentID).First(&v).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFound("visit for appointment", appointmentID)
		}
		return nil, fmt.Errorf("loading visit for appointment %s: %w", appointmentID, err)
	}
	return &v, nil
}

func (r visitRepo) List(ctx context.Context, q *visit.ListVisitsQuery) (*visit.PagedVisits, error) {
	scope := r.db.Model(&visit.Visit{})
	if q.PatientID != nil {
		scope = scope.Where("patient_id = ?", *q.PatientID)
	}
	if q.DoctorID != nil {
		scope = scope.Where("doctor_id = ?", *q.DoctorID)
	}
	if q.Uninvoiced {
		scope = scope.Where("NOT EXISTS (SELECT 1 FROM billing.invoices i WHERE i.visit_id = clinical.visits.id)")
	}

	items, total, err := paged[visit.Visit](ctx, scope, "visit_date DESC, created_at DESC", q.Page, q.PageSize)
	if err != nil {
		return nil, fmt.Errorf("listing visits: %w", err)
	}
	return &visit.PagedVisits{
		Visits:     items,
		TotalCount: total,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: store.TotalPages(total, q.PageSize),
	}, nil
}
