package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/invoice"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type invoiceRepo struct{ db *gorm.DB }

func (r invoiceRepo) Create(ctx context.Context, inv *invoice.Invoice) error {
	ensureID(&inv.ID)
	err := r.db.WithContext(ctx).Create(inv).Error
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		// The failed insert aborted the transaction, so the existing id
		// cannot be read back here.
		return &invoice.DuplicateInvoiceError{VisitID: inv.VisitID}
	}
	return fmt.Errorf("inserting invoice: %w", err)
}

func (r invoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	return first[invoice.Invoice](ctx, r.db, "invoice", id)
}

func (r invoiceRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	return first[invoice.Invoice](ctx, forUpdate(r.db), "invoice", id)
}

func (r invoiceRepo) GetByVisitID(ctx context.Context, visitID uuid.UUID) (*invoice.Invoice, error) {
	var inv invoice.Invoice
	err := r.db.WithContext(ctx).Where("visit_id = ?", visitID).First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFound("invoice for visit", visitID)
		}
		return nil, fmt.Errorf("loading invoice for visit %s: %w", visitID, err)
	}
	return &inv, nil
}

func (r invoiceRepo) MarkPaid(ctx context.Context, inv *invoice.Invoice) error {
	res := r.db.WithContext(ctx).Model(inv).Select("paid", "paid_at", "updated_at").Updates(inv)
	if res.Error != nil {
		return fmt.Errorf("marking invoice %s paid: %w", inv.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NewNotFound("invoice", inv.ID)
	}
	return nil
}

func (r invoiceRepo) List(ctx context.Context, q *invoice.ListInvoicesQuery) (*invoice.PagedInvoices, error) {
	scope := r.db.Model(&invoice.Invoice{})
	if q.PatientID != nil {
		scope = scope.Where("patient_id = ?", *q.PatientID)
	}
	if q.Paid != nil {
		scope = scope.Where("paid = ?", *q.Paid)
	}

	items, total, err := paged[invoice.Invoice](ctx, scope, "created_at DESC", q.Page, q.PageSize)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	return &invoice.PagedInvoices{
		Invoices:   items,
		TotalCount: total,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: store.TotalPages(total, q.PageSize),
	}, nil
}

type paymentRepo struct{ db *gorm.DB }

func (r paymentRepo) Create(ctx context.Context, p *invoice.Payment) error {
	ensureID(&p.ID)
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("inserting payment: %w", err)
	}
	return nil
}

func (r paymentRepo) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*invoice.Payment, error) {
	out := []*invoice.Payment{}
	err := r.db.WithContext(ctx).Where("invoice_id = ?", invoiceID).Order("created_at").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("listing payments of invoice %s: %w", invoiceID, err)
	}
	return out, nil
}

func (r paymentRepo) SumByInvoice(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.WithContext(ctx).Model(&invoice.Payment{}).
		Where("invoice_id = ?", invoiceID).
		Select("COALESCE(SUM(amount), 0)").
		Row().Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("summing payments of invoice %s: %w", invoiceID, err)
	}
	return sum, nil
}

func (r paymentRepo) List(ctx context.Context, page, pageSize int) ([]*invoice.Payment, int64, error) {
	items, total, err := paged[invoice.Payment](ctx, r.db.Model(&invoice.Payment{}), "created_at DESC", page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("listing payments: %w", err)
	}
	return items, total, nil
}
