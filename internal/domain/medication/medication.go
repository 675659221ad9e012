package medication

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Medication struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Name      string          `gorm:"column:med_name;type:varchar(200);uniqueIndex;not null" json:"name"`
	StockQty  int             `gorm:"column:stock_qty;not null;default:0;check:stock_qty >= 0" json:"stock_qty"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null" json:"unit_price"`
}

func (Medication) TableName() string {
	return "pharmacy.medications"
}

// Dispense removes quantity units from stock. Stock never goes negative.
func (m *Medication) Dispense(quantity int) error {
	if quantity > m.StockQty {
		return &InsufficientStockError{
			MedicationID: m.ID,
			Name:         m.Name,
			Requested:    quantity,
			Available:    m.StockQty,
		}
	}
	m.StockQty -= quantity
	return nil
}

func (m *Medication) Restock(quantity int) {
	m.StockQty += quantity
}

func (m *Medication) IsLowStock(threshold int) bool {
	return m.StockQty < threshold
}

type CreateMedicationCommand struct {
	Name      string
	StockQty  int
	UnitPrice decimal.Decimal
}
