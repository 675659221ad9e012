package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/invoice"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type invoiceRepo struct{ t *tables }

func (r invoiceRepo) Create(_ context.Context, inv *invoice.Invoice) error {
	for _, existing := range r.t.invoices {
		if existing.VisitID == inv.VisitID {
			return &invoice.DuplicateInvoiceError{VisitID: inv.VisitID, InvoiceID: existing.ID}
		}
	}
	ensureID(&inv.ID)
	inv.CreatedAt = r.t.stamp()
	inv.UpdatedAt = inv.CreatedAt
	r.t.invoices[inv.ID] = copyOf(inv)
	return nil
}

func (r invoiceRepo) GetByID(_ context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	return get(r.t.invoices, "invoice", id)
}

func (r invoiceRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	return r.GetByID(ctx, id)
}

func (r invoiceRepo) GetByVisitID(_ context.Context, visitID uuid.UUID) (*invoice.Invoice, error) {
	for _, inv := range r.t.invoices {
		if inv.VisitID == visitID {
			return copyOf(inv), nil
		}
	}
	return nil, domain.NewNotFound("invoice for visit", visitID)
}

func (r invoiceRepo) MarkPaid(_ context.Context, inv *invoice.Invoice) error {
	existing, ok := r.t.invoices[inv.ID]
	if !ok {
		return fmt.Errorf("marking invoice %s paid: no such row", inv.ID)
	}
	updated := copyOf(existing)
	updated.Paid = inv.Paid
	updated.PaidAt = inv.PaidAt
	updated.UpdatedAt = r.t.stamp()
	r.t.invoices[inv.ID] = updated
	inv.UpdatedAt = updated.UpdatedAt
	return nil
}

func (r invoiceRepo) List(_ context.Context, q *invoice.ListInvoicesQuery) (*invoice.PagedInvoices, error) {
	var matched []*invoice.Invoice
	for _, inv := range r.t.invoices {
		if q.PatientID != nil && inv.PatientID != *q.PatientID {
			continue
		}
		if q.Paid != nil && inv.Paid != *q.Paid {
			continue
		}
		matched = append(matched, inv)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	items, total := paginate(matched, q.Page, q.PageSize)
	return &invoice.PagedInvoices{
		Invoices:   items,
		TotalCount: total,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: store.TotalPages(total, q.PageSize),
	}, nil
}

type paymentRepo struct{ t *tables }

func (r paymentRepo) Create(_ context.Context, p *invoice.Payment) error {
	ensureID(&p.ID)
	p.CreatedAt = r.t.stamp()
	r.t.payments[p.ID] = copyOf(p)
	return nil
}

func (r paymentRepo) ListByInvoice(_ context.Context, invoiceID uuid.UUID) ([]*invoice.Payment, error) {
	var out []*invoice.Payment
	for _, p := range r.t.payments {
		if p.InvoiceID == invoiceID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return copies(out), nil
}

func (r paymentRepo) SumByInvoice(_ context.Context, invoiceID uuid.UUID) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, p := range r.t.payments {
		if p.InvoiceID == invoiceID {
			sum = sum.Add(p.Amount)
		}
	}
	return sum, nil
}

func (r paymentRepo) List(_ context.Context, page, pageSize int) ([]*invoice.Payment, int64, error) {
	all := make([]*invoice.Payment, 0, len(r.t.payments))
	for _, p := range r.t.payments {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	items, total := paginate(all, page, pageSize)
	return items, total, nil
}
