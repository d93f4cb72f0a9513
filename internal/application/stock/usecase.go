package stock

import (
	"context"
	"time"

	"github.com/jortega/erp-inventario/internal/domain"
	"github.com/jortega/erp-inventario/internal/domain/entity"
	"github.com/jortega/erp-inventario/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// AdjustStockUseCase expone las primitivas de ajuste manual de stock:
// Increase exige que la fila exista; Decrease exige cantidad suficiente.
// Ambas ejecutan el read-modify-write bajo bloqueo de fila (SELECT FOR UPDATE).
type AdjustStockUseCase struct {
	txRunner      TxRunner
	stockRepo     repository.StockRepository
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
}

// NewAdjustStockUseCase construye el caso de uso.
func NewAdjustStockUseCase(
	txRunner TxRunner,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
) *AdjustStockUseCase {
	return &AdjustStockUseCase{
		txRunner:      txRunner,
		stockRepo:     stockRepo,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
	}
}

// Increase suma amount al stock de (productID, warehouseID). La fila debe existir;
// si no, retorna StockError envolviendo ErrStockNotFound.
func (uc *AdjustStockUseCase) Increase(ctx context.Context, productID, warehouseID string, amount decimal.Decimal) (*entity.Stock, error) {
	if productID == "" || warehouseID == "" || !amount.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	var updated *entity.Stock
	err := uc.txRunner.Run(ctx, func(stockRepo repository.StockRepository) error {
		s, err := stockRepo.GetForUpdate(productID, warehouseID)
		if err != nil {
			return err
		}
		if s == nil {
			return domain.NewStockError(domain.ErrStockNotFound, productID, warehouseID)
		}
		s.Quantity = s.Quantity.Add(amount)
		s.UpdatedAt = time.Now()
		if err := stockRepo.Upsert(s); err != nil {
			return err
		}
		updated = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Decrease resta amount del stock de (productID, warehouseID). Falla con
// ErrStockNotFound si la fila no existe y con ErrInsufficientStock si la
// cantidad actual es menor que amount. Nunca deja la cantidad negativa.
func (uc *AdjustStockUseCase) Decrease(ctx context.Context, productID, warehouseID string, amount decimal.Decimal) (*entity.Stock, error) {
	if productID == "" || warehouseID == "" || !amount.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	var updated *entity.Stock
	err := uc.txRunner.Run(ctx, func(stockRepo repository.StockRepository) error {
		s, err := stockRepo.GetForUpdate(productID, warehouseID)
		if err != nil {
			return err
		}
		if s == nil {
			return domain.NewStockError(domain.ErrStockNotFound, productID, warehouseID)
		}
		if s.Quantity.LessThan(amount) {
			return domain.NewStockError(domain.ErrInsufficientStock, productID, warehouseID)
		}
		s.Quantity = s.Quantity.Sub(amount)
		s.UpdatedAt = time.Now()
		if err := stockRepo.Upsert(s); err != nil {
			return err
		}
		updated = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// CreateStock crea una fila de stock de forma explícita (alta inicial sin compra).
// Valida que producto y bodega existan y que no haya ya una fila para el par.
func (uc *AdjustStockUseCase) CreateStock(ctx context.Context, productID, warehouseID string, quantity decimal.Decimal) (*entity.Stock, error) {
	if productID == "" || warehouseID == "" || quantity.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	product, err := uc.productRepo.GetByID(productID)
	if err != nil || product == nil {
		return nil, domain.ErrNotFound
	}
	wh, err := uc.warehouseRepo.GetByID(warehouseID)
	if err != nil || wh == nil {
		return nil, domain.ErrNotFound
	}
	existing, err := uc.stockRepo.Get(productID, warehouseID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	s := &entity.Stock{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Quantity:    quantity,
		UpdatedAt:   time.Now(),
	}
	if err := uc.stockRepo.Upsert(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Get devuelve la fila de stock de (productID, warehouseID) o ErrStockNotFound.
func (uc *AdjustStockUseCase) Get(ctx context.Context, productID, warehouseID string) (*entity.Stock, error) {
	s, err := uc.stockRepo.Get(productID, warehouseID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.NewStockError(domain.ErrStockNotFound, productID, warehouseID)
	}
	return s, nil
}

// ListByWarehouse lista el stock de una bodega con paginación.
func (uc *AdjustStockUseCase) ListByWarehouse(ctx context.Context, warehouseID string, limit, offset int) ([]*entity.Stock, error) {
	if warehouseID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.stockRepo.ListByWarehouse(warehouseID, limit, offset)
}
