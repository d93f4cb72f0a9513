package dto

import "github.com/shopspring/decimal"

// LineItemRequest línea de venta o compra (producto, cantidad, precio unitario).
// UnitPrice es puntero para distinguir "omitido" (se usa el precio de catálogo
// del producto) de un cero explícito (línea sin costo, p.ej. promoción).
type LineItemRequest struct {
	ProductID string           `json:"product_id"`
	Quantity  decimal.Decimal  `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

// CreateSaleRequest body para POST /api/sales.
// WarehouseID: bodega de la cual se descuenta el inventario; si va vacío se usa
// la bodega por defecto configurada (SALES_DEFAULT_WAREHOUSE_ID).
type CreateSaleRequest struct {
	WarehouseID string            `json:"warehouse_id,omitempty"`
	Items       []LineItemRequest `json:"items"`
}

// UpdateStatusRequest body para PATCH /api/sales/:id/status y /api/purchases/:id/status.
type UpdateStatusRequest struct {
	Status string `json:"status"` // PENDIENTE | COMPLETADA | ANULADA
}

// SaleResponse venta con detalle.
type SaleResponse struct {
	ID          string             `json:"id"`
	UserID      string             `json:"user_id"`
	WarehouseID string             `json:"warehouse_id"`
	Status      string             `json:"status"`
	Total       decimal.Decimal    `json:"total"`
	CreatedAt   string             `json:"created_at"`
	Items       []LineItemResponse `json:"items"`
}

// LineItemResponse línea de detalle en la respuesta.
type LineItemResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}
