package purchases

import (
	"context"

	"github.com/jortega/erp-inventario/internal/domain/repository"
)

// PurchaseTxRunner ejecuta una función dentro de una transacción que incluye
// repos de stock y de compras, con commit/rollback atómico.
type PurchaseTxRunner interface {
	RunPurchase(ctx context.Context, fn func(
		stockRepo repository.StockRepository,
		purchaseRepo repository.PurchaseRepository,
	) error) error
}
