package invoice

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Repository interface {
	// Create returns a *DuplicateInvoiceError when the visit is already invoiced.
	Create(ctx context.Context, inv *Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// GetForUpdate loads the invoice and holds a row lock until the transaction ends.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Invoice, error)

	GetByVisitID(ctx context.Context, visitID uuid.UUID) (*Invoice, error)

	// MarkPaid persists Paid and PaidAt.
	MarkPaid(ctx context.Context, inv *Invoice) error

	List(ctx context.Context, q *ListInvoicesQuery) (*PagedInvoices, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, p *Payment) error
	ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*Payment, error)

	// SumByInvoice returns the cumulative amount paid against the invoice.
	SumByInvoice(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error)

	// List returns all payments newest first.
	List(ctx context.Context, page, pageSize int) ([]*Payment, int64, error)
}
