package service

import (
	"context"
	"strings"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PatientService struct {
	base
}

func NewPatientService(d Deps) *PatientService {
	return &PatientService{base: newBase(d)}
}

func (s *PatientService) CreatePatient(ctx context.Context, cmd *patient.CreatePatientCommand, caller domain.Caller) (p *patient.Patient, err error) {
	ctx, span := startSpan(ctx, "PatientService.CreatePatient")
	defer func() { endSpan(span, err) }()

	if err := authorize(caller, domain.RoleAdmin, domain.RoleReceptionist, domain.RoleDoctor); err != nil {
		return nil, err
	}
	if err := s.validateCreateCommand(cmd); err != nil {
		return nil, err
	}

	p = &patient.Patient{
		ID:          uuid.New(),
		FirstName:   strings.TrimSpace(cmd.FirstName),
		LastName:    strings.TrimSpace(cmd.LastName),
		DateOfBirth: cmd.DateOfBirth,
		Sex:         cmd.Sex,
		Phone:       strings.TrimSpace(cmd.Phone),
		Email:       strings.ToLower(strings.TrimSpace(cmd.Email)),
	}

	err = s.store.WithTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		return tx.Patients().Create(ctx, p)
	})
	if err != nil {
		s.log.Error("failed to create patient", zap.Error(err))
		return nil, err
	}

	s.metrics.PatientsCreatedTotal.Inc()
	s.record(ctx, AuditEntry{
		Caller:       caller,
		Action:       domain.ActionCreate,
		ResourceType: "patient",
		ResourceID:   p.ID,
	})

	s.log.Info("patient created",
		zap.String("patient_id", p.ID.String()),
		zap.String("created_by", caller.UserID.String()),
	)

	return p, nil
}

func (s *PatientService) GetPatient(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	var p *patient.Patient
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		p, err = tx.Patients().GetByID(ctx, id)
		return err
	})
	return p, err
}

func (s *PatientService) ListPatients(ctx context.Context, q *patient.ListPatientsQuery) (*patient.PagedPatients, error) {
	q.Page, q.PageSize = store.NormalizePage(q.Page, q.PageSize)

	var out *patient.PagedPatients
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		out, err = tx.Patients().List(ctx, q)
		return err
	})
	return out, err
}

func (s *PatientService) validateCreateCommand(cmd *patient.CreatePatientCommand) error {
	var v validation

	v.check(strings.TrimSpace(cmd.FirstName) != "", "first_name is required")
	v.check(strings.TrimSpace(cmd.LastName) != "", "last_name is required")
	v.check(!cmd.DateOfBirth.IsZero(), "date_of_birth is required")
	v.check(!cmd.DateOfBirth.After(s.now()), patient.ErrInvalidDateOfBirth.Error())
	v.check(cmd.Sex.IsValid(), patient.ErrInvalidSex.Error())

	return v.err()
}
