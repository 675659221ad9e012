package service

import (
	"context"
	"errors"
	"testing"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/invoice"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/prescription"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func (f *fixture) prescribe(visitID, medID uuid.UUID, qty int) {
	f.t.Helper()
	_, err := f.pharmacy().Prescribe(context.Background(), &prescription.CreatePrescriptionCommand{
		VisitID: visitID, MedicationID: medID, Quantity: qty,
	}, admin)
	require.NoError(f.t, err)
}

func TestGenerateInvoice_TotalAndDuplicate(t *testing.T) {
	f := newFixture(t)
	svc := f.billing("150")
	ctx := context.Background()

	v := f.visit("10:00", "10:30")
	f.prescribe(v.ID, f.addMedication("Amoxicillin", 50, "12.50"), 4)
	f.prescribe(v.ID, f.addMedication("Paracetamol", 50, "1.75"), 3)

	inv, err := svc.GenerateInvoice(ctx, &invoice.GenerateInvoiceCommand{VisitID: v.ID}, cashier)
	require.NoError(t, err)
	assert.Equal(t, "55.25", inv.MedicationTotal.StringFixed(2))
	assert.Equal(t, "150.00", inv.ConsultationFee.StringFixed(2))
	assert.Equal(t, "205.25", inv.TotalAmount.StringFixed(2))
	assert.Equal(t, f.patientID, inv.PatientID)
	assert.False(t, inv.Paid)

	_, err = svc.GenerateInvoice(ctx, &invoice.GenerateInvoiceCommand{VisitID: v.ID}, cashier)
	require.Error(t, err)
	assert.True(t, errors.Is(err, invoice.ErrDuplicateInvoice))

	var dup *invoice.DuplicateInvoiceError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, v.ID, dup.VisitID)
	assert.Equal(t, inv.ID, dup.InvoiceID)

	page, err := svc.ListInvoices(ctx, &invoice.ListInvoicesQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.TotalCount)
}

func TestGenerateInvoice_NoPrescriptionsNoFee(t *testing.T) {
	f := newFixture(t)
	v := f.visit("10:00", "10:30")

	inv, err := f.billing("0").GenerateInvoice(context.Background(), &invoice.GenerateInvoiceCommand{VisitID: v.ID}, admin)
	require.NoError(t, err)
	assert.True(t, inv.TotalAmount.IsZero())
	assert.True(t, inv.Paid, "nothing to collect")
	assert.NotNil(t, inv.PaidAt)
}

func TestGenerateInvoice_Errors(t *testing.T) {
	f := newFixture(t)
	svc := f.billing("0")
	ctx := context.Background()

	_, err := svc.GenerateInvoice(ctx, &invoice.GenerateInvoiceCommand{VisitID: uuid.New()}, admin)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.GenerateInvoice(ctx, &invoice.GenerateInvoiceCommand{}, admin)
	requireValidation(t, err)

	_, err = svc.GenerateInvoice(ctx, &invoice.GenerateInvoiceCommand{VisitID: uuid.New()}, pharmacist)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestRecordPayment_FlipsPaidOnceAndAcceptsOverpayment(t *testing.T) {
	f := newFixture(t)
	svc := f.billing("100")
	ctx := context.Background()

	v := f.visit("10:00", "10:30")
	inv, err := svc.GenerateInvoice(ctx, &invoice.GenerateInvoiceCommand{VisitID: v.ID}, cashier)
	require.NoError(t, err)

	r, err := svc.RecordPayment(ctx, &invoice.RecordPaymentCommand{InvoiceID: inv.ID, Amount: money("40"), Method: invoice.MethodCash}, cashier)
	require.NoError(t, err)
	assert.False(t, r.Invoice.Paid)
	assert.False(t, r.Settled)
	assert.Equal(t, "40.00", r.TotalPaid.StringFixed(2))

	r, err = svc.RecordPayment(ctx, &invoice.RecordPaymentCommand{InvoiceID: inv.ID, Amount: money("60"), Method: invoice.MethodUPI, Reference: "upi-123"}, cashier)
	require.NoError(t, err)
	assert.True(t, r.Invoice.Paid)
	assert.True(t, r.Settled)
	require.NotNil(t, r.Invoice.PaidAt)
	paidAt := *r.Invoice.PaidAt

	// Payments after settlement are still recorded and never unset paid.
	r, err = svc.RecordPayment(ctx, &invoice.RecordPaymentCommand{InvoiceID: inv.ID, Amount: money("25"), Method: invoice.MethodCard}, cashier)
	require.NoError(t, err)
	assert.True(t, r.Invoice.Paid)
	assert.False(t, r.Settled)
	assert.Equal(t, "125.00", r.TotalPaid.StringFixed(2))

	st, err := svc.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.True(t, st.Invoice.Paid)
	assert.Equal(t, paidAt, *st.Invoice.PaidAt)
	assert.Len(t, st.Payments, 3)
	assert.Equal(t, "125.00", st.TotalPaid.StringFixed(2))
	assert.True(t, st.AmountDue.IsZero())

	var paidEvents int
	for _, typ := range f.events.types() {
		if typ == domain.EventInvoicePaid {
			paidEvents++
		}
	}
	assert.Equal(t, 1, paidEvents)

	payments, err := svc.ListPayments(ctx, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, payments.TotalCount)
	assert.Len(t, payments.Payments, 2)
	assert.Equal(t, 2, payments.TotalPages)
}

func TestRecordPayment_Validation(t *testing.T) {
	f := newFixture(t)
	svc := f.billing("100")
	ctx := context.Background()

	v := f.visit("10:00", "10:30")
	inv, err := svc.GenerateInvoice(ctx, &invoice.GenerateInvoiceCommand{VisitID: v.ID}, cashier)
	require.NoError(t, err)

	_, err = svc.RecordPayment(ctx, &invoice.RecordPaymentCommand{InvoiceID: inv.ID, Amount: money("0"), Method: invoice.MethodCash}, cashier)
	requireValidation(t, err)
	_, err = svc.RecordPayment(ctx, &invoice.RecordPaymentCommand{InvoiceID: inv.ID, Amount: money("-5"), Method: invoice.MethodCash}, cashier)
	requireValidation(t, err)
	_, err = svc.RecordPayment(ctx, &invoice.RecordPaymentCommand{InvoiceID: inv.ID, Amount: money("5"), Method: "CHEQUE"}, cashier)
	requireValidation(t, err)
	// Rounds to 0.00 before it is stored.
	_, err = svc.RecordPayment(ctx, &invoice.RecordPaymentCommand{InvoiceID: inv.ID, Amount: money("0.004"), Method: invoice.MethodCash}, cashier)
	requireValidation(t, err)

	_, err = svc.RecordPayment(ctx, &invoice.RecordPaymentCommand{InvoiceID: uuid.New(), Amount: money("5"), Method: invoice.MethodCash}, cashier)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	st, err := svc.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Empty(t, st.Payments)
	assert.Equal(t, "100.00", st.AmountDue.StringFixed(2))

	r, err := svc.RecordPayment(ctx, &invoice.RecordPaymentCommand{InvoiceID: inv.ID, Amount: money("0.005"), Method: invoice.MethodCash}, cashier)
	require.NoError(t, err)
	assert.Equal(t, "0.01", r.Payment.Amount.StringFixed(2))
}

func TestListUninvoicedVisits(t *testing.T) {
	f := newFixture(t)
	svc := f.billing("10")
	ctx := context.Background()

	billed := f.visit("10:00", "10:30")
	pending := f.visit("11:00", "11:30")

	_, err := svc.GenerateInvoice(ctx, &invoice.GenerateInvoiceCommand{VisitID: billed.ID}, cashier)
	require.NoError(t, err)

	page, err := svc.ListUninvoicedVisits(ctx, 1, 20)
	require.NoError(t, err)
	require.Len(t, page.Visits, 1)
	assert.Equal(t, pending.ID, page.Visits[0].ID)
}
