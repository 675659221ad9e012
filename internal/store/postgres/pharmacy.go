package postgres

import (
	"context"
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/medication"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/prescription"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/store"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type medicationRepo struct{ db *gorm.DB }

func (r medicationRepo) Create(ctx context.Context, m *medication.Medication) error {
	ensureID(&m.ID)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return medication.ErrMedicationNameTaken
		}
		return fmt.Errorf("inserting medication: %w", err)
	}
	return nil
}

func (r medicationRepo) GetByID(ctx context.Context, id uuid.UUID) (*medication.Medication, error) {
	return first[medication.Medication](ctx, r.db, "medication", id)
}

func (r medicationRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*medication.Medication, error) {
	return first[medication.Medication](ctx, forUpdate(r.db), "medication", id)
}

func (r medicationRepo) UpdateStock(ctx context.Context, m *medication.Medication) error {
	res := r.db.WithContext(ctx).Model(m).Select("stock_qty", "updated_at").Updates(m)
	if res.Error != nil {
		return fmt.Errorf("updating stock of medication %s: %w", m.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NewNotFound("medication", m.ID)
	}
	return nil
}

func (r medicationRepo) List(ctx context.Context) ([]*medication.Medication, error) {
	out := []*medication.Medication{}
	if err := r.db.WithContext(ctx).Order("med_name").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("listing medications: %w", err)
	}
	return out, nil
}

func (r medicationRepo) ListBelowStock(ctx context.Context, threshold int) ([]*medication.Medication, error) {
	out := []*medication.Medication{}
	err := r.db.WithContext(ctx).
		Where("stock_qty < ?", threshold).
		Order("stock_qty, med_name").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("listing low-stock medications: %w", err)
	}
	return out, nil
}

type prescriptionRepo struct{ db *gorm.DB }

func (r prescriptionRepo) Create(ctx context.Context, p *prescription.Prescription) error {
	ensureID(&p.ID)
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("inserting prescription: %w", err)
	}
	return nil
}

func (r prescriptionRepo) GetByID(ctx context.Context, id uuid.UUID) (*prescription.Prescription, error) {
	return first[prescription.Prescription](ctx, r.db, "prescription", id)
}

func (r prescriptionRepo) ListByVisit(ctx context.Context, visitID uuid.UUID) ([]*prescription.Prescription, error) {
	out := []*prescription.Prescription{}
	err := r.db.WithContext(ctx).Where("visit_id = ?", visitID).Order("created_at").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("listing prescriptions of visit %s: %w", visitID, err)
	}
	return out, nil
}

func (r prescriptionRepo) List(ctx context.Context, q *prescription.ListPrescriptionsQuery) (*prescription.PagedPrescriptions, error) {
	scope := r.db.Model(&prescription.Prescription{})
	if q.VisitID != nil {
		scope = scope.Where("visit_id = ?", *q.VisitID)
	}

	items, total, err := paged[prescription.Prescription](ctx, scope, "created_at DESC", q.Page, q.PageSize)
	if err != nil {
		return nil, fmt.Errorf("listing prescriptions: %w", err)
	}
	return &prescription.PagedPrescriptions{
		Prescriptions: items,
		TotalCount:    total,
		Page:          q.Page,
		PageSize:      q.PageSize,
		TotalPages:    store.TotalPages(total, q.PageSize),
	}, nil
}
