package invoice

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSettle(t *testing.T) {
	now := time.Now()
	inv := &Invoice{TotalAmount: decimal.RequireFromString("500.00")}

	assert.False(t, inv.Settle(decimal.RequireFromString("499.99"), now))
	assert.False(t, inv.Paid)

	assert.True(t, inv.Settle(decimal.RequireFromString("500"), now))
	assert.True(t, inv.Paid)
	assert.NotNil(t, inv.PaidAt)

	// already paid: no second flip
	assert.False(t, inv.Settle(decimal.RequireFromString("900"), now))
}

func TestSettle_ZeroTotal(t *testing.T) {
	inv := &Invoice{TotalAmount: decimal.Zero}
	assert.True(t, inv.Settle(decimal.Zero, time.Now()))
}

func TestMethodIsValid(t *testing.T) {
	assert.True(t, MethodCash.IsValid())
	assert.True(t, MethodUPI.IsValid())
	assert.False(t, Method("CHEQUE").IsValid())
	assert.False(t, Method("cash").IsValid())
}

func TestDuplicateInvoiceError(t *testing.T) {
	visitID, invID := uuid.New(), uuid.New()

	err := error(&DuplicateInvoiceError{VisitID: visitID, InvoiceID: invID})
	assert.True(t, errors.Is(err, ErrDuplicateInvoice))
	assert.Contains(t, err.Error(), invID.String())

	err = &DuplicateInvoiceError{VisitID: visitID}
	assert.Equal(t, "visit "+visitID.String()+" already has an invoice", err.Error())
}
