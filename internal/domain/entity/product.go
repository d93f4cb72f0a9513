package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o SKU del catálogo.
// El stock no vive aquí: se maneja por bodega en Stock.
type Product struct {
	ID          string
	SKU         string // código único
	Name        string
	Description string
	CategoryID  string          // opcional
	Price       decimal.Decimal // precio de venta
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
