package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase representa la cabecera de una compra a proveedor.
type Purchase struct {
	ID          string
	SupplierID  string
	UserID      string
	WarehouseID string
	Status      string // PENDIENTE | COMPLETADA | ANULADA
	Total       decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PurchaseItem representa una línea de una compra.
type PurchaseItem struct {
	ID         string
	PurchaseID string
	ProductID  string
	Quantity   decimal.Decimal
	UnitPrice  decimal.Decimal
	Subtotal   decimal.Decimal
	Position   int
}
