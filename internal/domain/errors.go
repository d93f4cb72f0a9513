package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrStockNotFound      = errors.New("stock no encontrado")
	ErrNoWarehouse        = errors.New("no hay bodega disponible")
)

// StockError identifica el producto y la bodega que causaron un fallo de stock.
// Envuelve uno de los centinelas (ErrInsufficientStock, ErrStockNotFound) para
// que los llamadores discriminen con errors.Is en lugar de comparar mensajes.
type StockError struct {
	Err         error
	ProductID   string
	WarehouseID string
}

func (e *StockError) Error() string {
	return fmt.Sprintf("%s: producto %s (bodega %s)", e.Err.Error(), e.ProductID, e.WarehouseID)
}

func (e *StockError) Unwrap() error { return e.Err }

// NewStockError construye el error con el centinela y las referencias.
func NewStockError(sentinel error, productID, warehouseID string) *StockError {
	return &StockError{Err: sentinel, ProductID: productID, WarehouseID: warehouseID}
}
