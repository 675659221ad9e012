package service

import (
	"context"
	"strings"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/invoice"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/visit"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// BillingConfig is the pricing applied to new invoices.
type BillingConfig struct {
	ConsultationFee decimal.Decimal
	Currency        string
}

// BillingService invoices visits and records payments against invoices.
type BillingService struct {
	base
	cfg BillingConfig
}

func NewBillingService(d Deps, cfg BillingConfig) *BillingService {
	if cfg.Currency == "" {
		cfg.Currency = "INR"
	}
	return &BillingService{base: newBase(d), cfg: cfg}
}

// GenerateInvoice bills a visit once. The total is the sum of quantity times
// the medication's current unit price over the visit's prescriptions, plus
// the consultation fee.
func (s *BillingService) GenerateInvoice(ctx context.Context, cmd *invoice.GenerateInvoiceCommand, caller domain.Caller) (inv *invoice.Invoice, err error) {
	ctx, span := startSpan(ctx, "BillingService.GenerateInvoice")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("visit_id", cmd.VisitID.String()))

	if err := authorize(caller, domain.RoleAdmin, domain.RoleCashier, domain.RoleReceptionist); err != nil {
		return nil, err
	}
	if cmd.VisitID == uuid.Nil {
		return nil, &ValidationError{Fields: []string{"visit_id is required"}}
	}

	err = s.store.WithTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		v, err := tx.Visits().GetForUpdate(ctx, cmd.VisitID)
		if err != nil {
			return err
		}

		existing, err := tx.Invoices().GetByVisitID(ctx, v.ID)
		if err != nil && !isNotFound(err) {
			return err
		}
		if existing != nil {
			return &invoice.DuplicateInvoiceError{VisitID: v.ID, InvoiceID: existing.ID}
		}

		items, err := tx.Prescriptions().ListByVisit(ctx, v.ID)
		if err != nil {
			return err
		}
		medTotal := decimal.Zero
		for _, p := range items {
			med, err := tx.Medications().GetByID(ctx, p.MedicationID)
			if err != nil {
				return err
			}
			medTotal = medTotal.Add(med.UnitPrice.Mul(decimal.NewFromInt(int64(p.Quantity))))
		}

		fee := s.cfg.ConsultationFee.Round(2)
		inv = &invoice.Invoice{
			ID:              uuid.New(),
			VisitID:         v.ID,
			PatientID:       v.PatientID,
			ConsultationFee: fee,
			MedicationTotal: medTotal.Round(2),
			TotalAmount:     fee.Add(medTotal).Round(2),
			Currency:        s.cfg.Currency,
			CreatedBy:       caller.UserID,
		}
		// Nothing to collect on a zero total.
		inv.Settle(decimal.Zero, s.now())

		return tx.Invoices().Create(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.InvoicesGenerated.Inc()
	s.record(ctx, AuditEntry{
		Caller:       caller,
		Action:       domain.ActionCreate,
		ResourceType: "invoice",
		ResourceID:   inv.ID,
		Changes:      map[string]string{"visit_id": inv.VisitID.String(), "total_amount": inv.TotalAmount.StringFixed(2)},
	})
	s.publish(ctx, domain.NewEvent(domain.EventInvoiceGenerated, inv.ID, caller.UserID, map[string]string{
		"visit_id":     inv.VisitID.String(),
		"patient_id":   inv.PatientID.String(),
		"total_amount": inv.TotalAmount.StringFixed(2),
		"currency":     inv.Currency,
	}))

	s.log.Info("invoice generated",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("visit_id", inv.VisitID.String()),
		zap.String("total_amount", inv.TotalAmount.StringFixed(2)),
	)
	return inv, nil
}

// RecordPayment stores a payment and flips the invoice to paid once the
// cumulative amount reaches the total. Overpayment and payments against an
// already paid invoice are accepted.
func (s *BillingService) RecordPayment(ctx context.Context, cmd *invoice.RecordPaymentCommand, caller domain.Caller) (r *invoice.Receipt, err error) {
	ctx, span := startSpan(ctx, "BillingService.RecordPayment")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("invoice_id", cmd.InvoiceID.String()))

	if err := authorize(caller, domain.RoleAdmin, domain.RoleCashier, domain.RoleReceptionist); err != nil {
		return nil, err
	}

	// Stored amounts carry two decimals; validate what will be stored.
	amount := cmd.Amount.Round(2)

	var v validation
	v.check(cmd.InvoiceID != uuid.Nil, "invoice_id is required")
	v.check(amount.IsPositive(), "amount must be at least 0.01")
	v.check(cmd.Method.IsValid(), "method must be one of CASH, CARD, UPI")
	if err := v.err(); err != nil {
		return nil, err
	}

	err = s.store.WithTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		inv, err := tx.Invoices().GetForUpdate(ctx, cmd.InvoiceID)
		if err != nil {
			return err
		}

		p := &invoice.Payment{
			ID:         uuid.New(),
			InvoiceID:  inv.ID,
			Amount:     amount,
			Method:     cmd.Method,
			Reference:  strings.TrimSpace(cmd.Reference),
			ReceivedBy: caller.UserID,
		}
		if err := tx.Payments().Create(ctx, p); err != nil {
			return err
		}

		paid, err := tx.Payments().SumByInvoice(ctx, inv.ID)
		if err != nil {
			return err
		}

		r = &invoice.Receipt{Payment: p, Invoice: inv, TotalPaid: paid}
		if inv.Settle(paid, s.now()) {
			r.Settled = true
			return tx.Invoices().MarkPaid(ctx, inv)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.PaymentsRecorded.WithLabelValues(string(cmd.Method)).Inc()
	s.record(ctx, AuditEntry{
		Caller:       caller,
		Action:       domain.ActionCreate,
		ResourceType: "payment",
		ResourceID:   r.Payment.ID,
		Changes:      map[string]string{"invoice_id": r.Invoice.ID.String(), "amount": r.Payment.Amount.StringFixed(2), "method": string(r.Payment.Method)},
	})

	events := []domain.Event{domain.NewEvent(domain.EventPaymentRecorded, r.Invoice.ID, caller.UserID, map[string]string{
		"payment_id": r.Payment.ID.String(),
		"amount":     r.Payment.Amount.StringFixed(2),
		"method":     string(r.Payment.Method),
		"total_paid": r.TotalPaid.StringFixed(2),
	})}
	if r.Settled {
		s.metrics.InvoicesPaid.Inc()
		events = append(events, domain.NewEvent(domain.EventInvoicePaid, r.Invoice.ID, caller.UserID, map[string]string{
			"total_amount": r.Invoice.TotalAmount.StringFixed(2),
			"total_paid":   r.TotalPaid.StringFixed(2),
		}))
	}
	s.publish(ctx, events...)

	s.log.Info("payment recorded",
		zap.String("invoice_id", r.Invoice.ID.String()),
		zap.String("payment_id", r.Payment.ID.String()),
		zap.String("amount", r.Payment.Amount.StringFixed(2)),
		zap.Bool("invoice_paid", r.Invoice.Paid),
	)
	return r, nil
}

// GetInvoice returns the invoice with its payments and the amount still due.
func (s *BillingService) GetInvoice(ctx context.Context, id uuid.UUID) (*invoice.Statement, error) {
	var st *invoice.Statement
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		inv, err := tx.Invoices().GetByID(ctx, id)
		if err != nil {
			return err
		}
		payments, err := tx.Payments().ListByInvoice(ctx, id)
		if err != nil {
			return err
		}

		paid := decimal.Zero
		for _, p := range payments {
			paid = paid.Add(p.Amount)
		}
		due := inv.TotalAmount.Sub(paid)
		if due.IsNegative() {
			due = decimal.Zero
		}
		st = &invoice.Statement{Invoice: inv, Payments: payments, AmountDue: due, TotalPaid: paid}
		return nil
	})
	return st, err
}

func (s *BillingService) ListInvoices(ctx context.Context, q *invoice.ListInvoicesQuery) (*invoice.PagedInvoices, error) {
	q.Page, q.PageSize = store.NormalizePage(q.Page, q.PageSize)

	var out *invoice.PagedInvoices
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		out, err = tx.Invoices().List(ctx, q)
		return err
	})
	return out, err
}

// ListUninvoicedVisits returns visits that still need an invoice, newest first.
func (s *BillingService) ListUninvoicedVisits(ctx context.Context, page, pageSize int) (*visit.PagedVisits, error) {
	q := &visit.ListVisitsQuery{Uninvoiced: true}
	q.Page, q.PageSize = store.NormalizePage(page, pageSize)

	var out *visit.PagedVisits
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		out, err = tx.Visits().List(ctx, q)
		return err
	})
	return out, err
}

func (s *BillingService) ListPayments(ctx context.Context, page, pageSize int) (*invoice.PagedPayments, error) {
	page, pageSize = store.NormalizePage(page, pageSize)

	out := &invoice.PagedPayments{Page: page, PageSize: pageSize}
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		out.Payments, out.TotalCount, err = tx.Payments().List(ctx, page, pageSize)
		return err
	})
	if err != nil {
		return nil, err
	}
	out.TotalPages = store.TotalPages(out.TotalCount, pageSize)
	return out, nil
}
