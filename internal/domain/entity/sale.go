package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de ventas y compras.
const (
	StatusPendiente  = "PENDIENTE"
	StatusCompletada = "COMPLETADA"
	StatusAnulada    = "ANULADA"
)

// Sale representa la cabecera de una venta.
// Total se calcula una sola vez al crear y se persiste; cambios de estado
// posteriores no vuelven a tocar el stock.
type Sale struct {
	ID          string
	UserID      string
	WarehouseID string
	Status      string // PENDIENTE | COMPLETADA | ANULADA
	Total       decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SaleItem representa una línea de una venta, en el orden dado por el llamador.
type SaleItem struct {
	ID        string
	SaleID    string
	ProductID string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
	Position  int // orden de inserción
}
