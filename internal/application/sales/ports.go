package sales

import (
	"context"

	"github.com/jortega/erp-inventario/internal/domain/repository"
)

// SalesTxRunner ejecuta una función dentro de una transacción que incluye
// repos de stock y de ventas. Si fn retorna error se hace rollback completo:
// ni cabecera, ni líneas, ni descuentos de stock quedan visibles.
type SalesTxRunner interface {
	RunSale(ctx context.Context, fn func(
		stockRepo repository.StockRepository,
		saleRepo repository.SaleRepository,
	) error) error
}
