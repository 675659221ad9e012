package service

import (
	"context"
	"errors"
	"strings"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/medication"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/prescription"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/store"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// PharmacyService owns the medication inventory and prescriptions. Stock is
// only decremented together with the prescription that consumed it.
type PharmacyService struct {
	base
	lowStockThreshold int
}

func NewPharmacyService(d Deps, lowStockThreshold int) *PharmacyService {
	return &PharmacyService{base: newBase(d), lowStockThreshold: lowStockThreshold}
}

func (s *PharmacyService) CreateMedication(ctx context.Context, cmd *medication.CreateMedicationCommand, caller domain.Caller) (m *medication.Medication, err error) {
	ctx, span := startSpan(ctx, "PharmacyService.CreateMedication")
	defer func() { endSpan(span, err) }()

	if err := authorize(caller, domain.RoleAdmin, domain.RolePharmacist); err != nil {
		return nil, err
	}

	var v validation
	v.check(strings.TrimSpace(cmd.Name) != "", "name is required")
	v.check(cmd.StockQty >= 0, "stock_qty must not be negative")
	v.check(!cmd.UnitPrice.IsNegative(), "unit_price must not be negative")
	if err := v.err(); err != nil {
		return nil, err
	}

	m = &medication.Medication{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(cmd.Name),
		StockQty:  cmd.StockQty,
		UnitPrice: cmd.UnitPrice.Round(2),
	}
	err = s.store.WithTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		return tx.Medications().Create(ctx, m)
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, AuditEntry{
		Caller:       caller,
		Action:       domain.ActionCreate,
		ResourceType: "medication",
		ResourceID:   m.ID,
	})
	s.log.Info("medication added", zap.String("medication_id", m.ID.String()), zap.String("name", m.Name))
	return m, nil
}

func (s *PharmacyService) GetMedication(ctx context.Context, id uuid.UUID) (*medication.Medication, error) {
	var m *medication.Medication
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		m, err = tx.Medications().GetByID(ctx, id)
		return err
	})
	return m, err
}

// ListMedications returns the inventory ordered by name.
func (s *PharmacyService) ListMedications(ctx context.Context) ([]*medication.Medication, error) {
	var out []*medication.Medication
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		out, err = tx.Medications().List(ctx)
		return err
	})
	return out, err
}

func (s *PharmacyService) RestockMedication(ctx context.Context, id uuid.UUID, quantity int, caller domain.Caller) (m *medication.Medication, err error) {
	ctx, span := startSpan(ctx, "PharmacyService.RestockMedication")
	defer func() { endSpan(span, err) }()

	if err := authorize(caller, domain.RoleAdmin, domain.RolePharmacist); err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, &ValidationError{Fields: []string{"quantity must be greater than zero"}}
	}

	err = s.store.WithTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		m, err = tx.Medications().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		m.Restock(quantity)
		return tx.Medications().UpdateStock(ctx, m)
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, AuditEntry{
		Caller:       caller,
		Action:       domain.ActionUpdate,
		ResourceType: "medication",
		ResourceID:   id,
		Changes:      map[string]int{"restocked": quantity, "stock_qty": m.StockQty},
	})
	s.log.Info("medication restocked",
		zap.String("medication_id", id.String()),
		zap.Int("quantity", quantity),
		zap.Int("stock_qty", m.StockQty),
	)
	return m, nil
}

// Prescribe checks stock, writes the prescription and decrements stock in one
// transaction. On InsufficientStockError the stock is left untouched.
func (s *PharmacyService) Prescribe(ctx context.Context, cmd *prescription.CreatePrescriptionCommand, caller domain.Caller) (p *prescription.Prescription, err error) {
	ctx, span := startSpan(ctx, "PharmacyService.Prescribe")
	defer func() { endSpan(span, err) }()

	if err := authorize(caller, domain.RoleAdmin, domain.RoleDoctor); err != nil {
		return nil, err
	}

	var v validation
	v.check(cmd.VisitID != uuid.Nil, "visit_id is required")
	v.check(cmd.MedicationID != uuid.Nil, "medication_id is required")
	v.check(cmd.Quantity > 0, "quantity must be greater than zero")
	if err := v.err(); err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("visit_id", cmd.VisitID.String()),
		attribute.String("medication_id", cmd.MedicationID.String()),
		attribute.Int("quantity", cmd.Quantity),
	)

	var (
		med        *medication.Medication
		crossedLow bool
	)
	err = s.store.WithTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		if _, err := tx.Visits().GetByID(ctx, cmd.VisitID); err != nil {
			return err
		}

		var err error
		med, err = tx.Medications().GetForUpdate(ctx, cmd.MedicationID)
		if err != nil {
			return err
		}

		wasLow := med.IsLowStock(s.lowStockThreshold)
		if err := med.Dispense(cmd.Quantity); err != nil {
			return err
		}
		crossedLow = !wasLow && med.IsLowStock(s.lowStockThreshold)

		p = &prescription.Prescription{
			ID:           uuid.New(),
			VisitID:      cmd.VisitID,
			MedicationID: med.ID,
			Quantity:     cmd.Quantity,
			Dosage:       strings.TrimSpace(cmd.Dosage),
			UnitPrice:    med.UnitPrice,
			CreatedBy:    caller.UserID,
		}
		if err := tx.Prescriptions().Create(ctx, p); err != nil {
			return err
		}
		return tx.Medications().UpdateStock(ctx, med)
	})
	if err != nil {
		var stockErr *medication.InsufficientStockError
		if errors.As(err, &stockErr) {
			s.metrics.StockRejections.Inc()
			s.log.Info("prescription rejected",
				zap.String("medication_id", stockErr.MedicationID.String()),
				zap.Int("requested", stockErr.Requested),
				zap.Int("available", stockErr.Available),
			)
		}
		return nil, err
	}

	s.metrics.PrescriptionsIssued.Inc()
	s.record(ctx, AuditEntry{
		Caller:       caller,
		Action:       domain.ActionCreate,
		ResourceType: "prescription",
		ResourceID:   p.ID,
		Changes:      map[string]any{"medication_id": med.ID, "quantity": p.Quantity, "stock_qty": med.StockQty},
	})

	events := []domain.Event{domain.NewEvent(domain.EventPrescriptionCreated, p.ID, caller.UserID, map[string]any{
		"visit_id":      p.VisitID.String(),
		"medication_id": p.MedicationID.String(),
		"quantity":      p.Quantity,
	})}
	if crossedLow {
		s.log.Warn("medication below low-stock threshold",
			zap.String("medication_id", med.ID.String()),
			zap.String("name", med.Name),
			zap.Int("stock_qty", med.StockQty),
		)
		events = append(events, domain.NewEvent(domain.EventMedicationLowStock, med.ID, caller.UserID, map[string]any{
			"name":      med.Name,
			"stock_qty": med.StockQty,
			"threshold": s.lowStockThreshold,
		}))
	}
	s.publish(ctx, events...)

	return p, nil
}

func (s *PharmacyService) ListPrescriptions(ctx context.Context, q *prescription.ListPrescriptionsQuery) (*prescription.PagedPrescriptions, error) {
	q.Page, q.PageSize = store.NormalizePage(q.Page, q.PageSize)

	var out *prescription.PagedPrescriptions
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		out, err = tx.Prescriptions().List(ctx, q)
		return err
	})
	return out, err
}
