package medication

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispense(t *testing.T) {
	m := &Medication{ID: uuid.New(), Name: "Paracetamol 500mg", StockQty: 10}

	require.NoError(t, m.Dispense(4))
	assert.Equal(t, 6, m.StockQty)

	require.NoError(t, m.Dispense(6))
	assert.Equal(t, 0, m.StockQty)

	err := m.Dispense(1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientStock))
	assert.Equal(t, 0, m.StockQty)

	var stockErr *InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, 1, stockErr.Requested)
	assert.Equal(t, 0, stockErr.Available)
	assert.Contains(t, err.Error(), "Paracetamol 500mg")
}

func TestLowStock(t *testing.T) {
	m := &Medication{StockQty: 19}
	assert.True(t, m.IsLowStock(20))
	m.Restock(1)
	assert.False(t, m.IsLowStock(20))
}
