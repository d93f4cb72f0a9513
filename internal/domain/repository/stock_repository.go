package repository

import "github.com/jortega/erp-inventario/internal/domain/entity"

// StockRepository define el puerto para consultar/actualizar stock por producto+bodega.
// Usado dentro de transacciones para garantizar consistencia.
type StockRepository interface {
	// Get devuelve nil, nil si no existe la fila (el llamador decide si eso es error).
	Get(productID, warehouseID string) (*entity.Stock, error)
	Upsert(stock *entity.Stock) error
	// GetForUpdate bloquea la fila para update (SELECT FOR UPDATE). nil, nil si no existe.
	GetForUpdate(productID, warehouseID string) (*entity.Stock, error)
	ListByWarehouse(warehouseID string, limit, offset int) ([]*entity.Stock, error)
}
