package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stock representa la existencia actual de un producto en una bodega.
// Clave compuesta (ProductID, WarehouseID); Quantity nunca baja de cero.
type Stock struct {
	ProductID   string
	WarehouseID string
	Quantity    decimal.Decimal
	UpdatedAt   time.Time
}
