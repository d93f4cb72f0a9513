package dto

import "github.com/shopspring/decimal"

// StockAdjustRequest body para POST /api/stock/increase y /api/stock/decrease.
type StockAdjustRequest struct {
	ProductID   string          `json:"product_id"`
	WarehouseID string          `json:"warehouse_id"`
	Amount      decimal.Decimal `json:"amount"`
}

// CreateStockRequest body para POST /api/stock (creación explícita de una fila de stock).
type CreateStockRequest struct {
	ProductID   string          `json:"product_id"`
	WarehouseID string          `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// StockResponse fila de stock en respuestas.
type StockResponse struct {
	ProductID   string          `json:"product_id"`
	WarehouseID string          `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	UpdatedAt   string          `json:"updated_at"`
}
