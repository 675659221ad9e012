package service

import (
	"context"
	"strings"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/doctor"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/room"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DoctorService maintains the doctor and room registers.
type DoctorService struct {
	base
}

func NewDoctorService(d Deps) *DoctorService {
	return &DoctorService{base: newBase(d)}
}

func (s *DoctorService) CreateDoctor(ctx context.Context, cmd *doctor.CreateDoctorCommand, caller domain.Caller) (d *doctor.Doctor, err error) {
	ctx, span := startSpan(ctx, "DoctorService.CreateDoctor")
	defer func() { endSpan(span, err) }()

	if err := authorize(caller, domain.RoleAdmin); err != nil {
		return nil, err
	}

	var v validation
	v.check(strings.TrimSpace(cmd.FirstName) != "", "first_name is required")
	v.check(strings.TrimSpace(cmd.LastName) != "", "last_name is required")
	if err := v.err(); err != nil {
		return nil, err
	}

	d = &doctor.Doctor{
		ID:             uuid.New(),
		FirstName:      strings.TrimSpace(cmd.FirstName),
		LastName:       strings.TrimSpace(cmd.LastName),
		Specialization: strings.TrimSpace(cmd.Specialization),
		Phone:          strings.TrimSpace(cmd.Phone),
		Email:          strings.ToLower(strings.TrimSpace(cmd.Email)),
	}

	err = s.store.WithTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		return tx.Doctors().Create(ctx, d)
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, AuditEntry{Caller: caller, Action: domain.ActionCreate, ResourceType: "doctor", ResourceID: d.ID})
	s.log.Info("doctor created", zap.String("doctor_id", d.ID.String()))
	return d, nil
}

func (s *DoctorService) GetDoctor(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error) {
	var d *doctor.Doctor
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		d, err = tx.Doctors().GetByID(ctx, id)
		return err
	})
	return d, err
}

func (s *DoctorService) ListDoctors(ctx context.Context) ([]*doctor.Doctor, error) {
	var out []*doctor.Doctor
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		out, err = tx.Doctors().List(ctx)
		return err
	})
	return out, err
}

func (s *DoctorService) CreateRoom(ctx context.Context, name string, caller domain.Caller) (r *room.Room, err error) {
	ctx, span := startSpan(ctx, "DoctorService.CreateRoom")
	defer func() { endSpan(span, err) }()

	if err := authorize(caller, domain.RoleAdmin); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Fields: []string{"name is required"}}
	}

	r = &room.Room{ID: uuid.New(), Name: name}
	err = s.store.WithTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		return tx.Rooms().Create(ctx, r)
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, AuditEntry{Caller: caller, Action: domain.ActionCreate, ResourceType: "room", ResourceID: r.ID})
	return r, nil
}

func (s *DoctorService) ListRooms(ctx context.Context) ([]*room.Room, error) {
	var out []*room.Room
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		out, err = tx.Rooms().List(ctx)
		return err
	})
	return out, err
}
