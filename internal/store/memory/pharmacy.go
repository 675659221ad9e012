package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/medication"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/prescription"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/store"
	"github.com/google/uuid"
)

type medicationRepo struct{ t *tables }

func (r medicationRepo) Create(_ context.Context, m *medication.Medication) error {
	for _, existing := range r.t.medications {
		if existing.Name == m.Name {
			return medication.ErrMedicationNameTaken
		}
	}
	ensureID(&m.ID)
	m.CreatedAt = r.t.stamp()
	m.UpdatedAt = m.CreatedAt
	r.t.medications[m.ID] = copyOf(m)
	return nil
}

func (r medicationRepo) GetByID(_ context.Context, id uuid.UUID) (*medication.Medication, error) {
	return get(r.t.medications, "medication", id)
}

func (r medicationRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*medication.Medication, error) {
	return r.GetByID(ctx, id)
}

func (r medicationRepo) UpdateStock(_ context.Context, m *medication.Medication) error {
	existing, ok := r.t.medications[m.ID]
	if !ok {
		return fmt.Errorf("updating stock of medication %s: no such row", m.ID)
	}
	if m.StockQty < 0 {
		return fmt.Errorf("updating stock of medication %s: negative quantity %d", m.ID, m.StockQty)
	}
	updated := copyOf(existing)
	updated.StockQty = m.StockQty
	updated.UpdatedAt = r.t.stamp()
	r.t.medications[m.ID] = updated
	m.UpdatedAt = updated.UpdatedAt
	return nil
}

func (r medicationRepo) List(_ context.Context) ([]*medication.Medication, error) {
	out := make([]*medication.Medication, 0, len(r.t.medications))
	for _, m := range r.t.medications {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return copies(out), nil
}

func (r medicationRepo) ListBelowStock(_ context.Context, threshold int) ([]*medication.Medication, error) {
	var out []*medication.Medication
	for _, m := range r.t.medications {
		if m.IsLowStock(threshold) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StockQty != out[j].StockQty {
			return out[i].StockQty < out[j].StockQty
		}
		return out[i].Name < out[j].Name
	})
	return copies(out), nil
}

type prescriptionRepo struct{ t *tables }

func (r prescriptionRepo) Create(_ context.Context, p *prescription.Prescription) error {
	ensureID(&p.ID)
	p.CreatedAt = r.t.stamp()
	r.t.prescriptions[p.ID] = copyOf(p)
	return nil
}

func (r prescriptionRepo) GetByID(_ context.Context, id uuid.UUID) (*prescription.Prescription, error) {
	return get(r.t.prescriptions, "prescription", id)
}

func (r prescriptionRepo) ListByVisit(_ context.Context, visitID uuid.UUID) ([]*prescription.Prescription, error) {
	var out []*prescription.Prescription
	for _, p := range r.t.prescriptions {
		if p.VisitID == visitID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return copies(out), nil
}

func (r prescriptionRepo) List(_ context.Context, q *prescription.ListPrescriptionsQuery) (*prescription.PagedPrescriptions, error) {
	var matched []*prescription.Prescription
	for _, p := range r.t.prescriptions {
		if q.VisitID != nil && p.VisitID != *q.VisitID {
			continue
		}
		matched = append(matched, p)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	items, total := paginate(matched, q.Page, q.PageSize)
	return &prescription.PagedPrescriptions{
		Prescriptions: items,
		TotalCount:    total,
		Page:          q.Page,
		PageSize:      q.PageSize,
		TotalPages:    store.TotalPages(total, q.PageSize),
	}, nil
}
