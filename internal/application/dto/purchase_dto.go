package dto

import "github.com/shopspring/decimal"

// CreatePurchaseRequest body para POST /api/purchases.
// WarehouseID: bodega destino; si va vacío se usa la configurada por defecto.
type CreatePurchaseRequest struct {
	SupplierID  string            `json:"supplier_id"`
	WarehouseID string            `json:"warehouse_id,omitempty"`
	Items       []LineItemRequest `json:"items"`
}

// PurchaseResponse compra con detalle.
type PurchaseResponse struct {
	ID          string             `json:"id"`
	SupplierID  string             `json:"supplier_id"`
	UserID      string             `json:"user_id"`
	WarehouseID string             `json:"warehouse_id"`
	Status      string             `json:"status"`
	Total       decimal.Decimal    `json:"total"`
	CreatedAt   string             `json:"created_at"`
	Items       []LineItemResponse `json:"items"`
}
