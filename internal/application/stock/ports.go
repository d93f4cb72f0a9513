package stock

import (
	"context"

	"github.com/jortega/erp-inventario/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando un
// repositorio de stock atado a esa tx. Garantiza que el read-modify-write de
// la cantidad sea atómico (sin lost updates entre llamadores concurrentes).
type TxRunner interface {
	Run(ctx context.Context, fn func(stockRepo repository.StockRepository) error) error
}
