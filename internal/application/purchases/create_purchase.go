package purchases

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jortega/erp-inventario/internal/application/dto"
	"github.com/jortega/erp-inventario/internal/domain"
	"github.com/jortega/erp-inventario/internal/domain/entity"
	"github.com/jortega/erp-inventario/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// CreatePurchaseUseCase crea una compra e incrementa el inventario en una sola
// transacción. A diferencia de la venta no hay verificación de suficiencia:
// las compras solo suman, y crean la fila de stock si el par
// (producto, bodega) todavía no existe.
type CreatePurchaseUseCase struct {
	txRunner           PurchaseTxRunner
	purchaseRepo       repository.PurchaseRepository
	productRepo        repository.ProductRepository
	supplierRepo       repository.SupplierRepository
	warehouseRepo      repository.WarehouseRepository
	defaultWarehouseID string
}

// NewCreatePurchaseUseCase construye el caso de uso.
func NewCreatePurchaseUseCase(
	txRunner PurchaseTxRunner,
	purchaseRepo repository.PurchaseRepository,
	productRepo repository.ProductRepository,
	supplierRepo repository.SupplierRepository,
	warehouseRepo repository.WarehouseRepository,
	defaultWarehouseID string,
) *CreatePurchaseUseCase {
	return &CreatePurchaseUseCase{
		txRunner:           txRunner,
		purchaseRepo:       purchaseRepo,
		productRepo:        productRepo,
		supplierRepo:       supplierRepo,
		warehouseRepo:      warehouseRepo,
		defaultWarehouseID: defaultWarehouseID,
	}
}

// CreatePurchase valida la entrada, resuelve la bodega destino (petición o
// configurada; sin bodega la operación falla con ErrNoWarehouse), calcula el
// total y ejecuta la transacción: cabecera, y por cada línea incremento del
// stock con bloqueo de fila o creación de la fila si no existe.
func (uc *CreatePurchaseUseCase) CreatePurchase(ctx context.Context, userID string, in dto.CreatePurchaseRequest) (*dto.PurchaseResponse, error) {
	if userID == "" || in.SupplierID == "" || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}

	supplier, err := uc.supplierRepo.GetByID(in.SupplierID)
	if err != nil || supplier == nil {
		return nil, domain.ErrNotFound
	}

	// Bodega destino: explícita o la configurada. Sin bodega no hay destino posible.
	warehouseID := in.WarehouseID
	if warehouseID == "" {
		warehouseID = uc.defaultWarehouseID
	}
	if warehouseID == "" {
		return nil, domain.ErrNoWarehouse
	}
	wh, err := uc.warehouseRepo.GetByID(warehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, domain.ErrNotFound
	}

	// Misma regla de precios que la venta: sin unit_price se usa el precio de
	// catálogo, un cero explícito se respeta.
	prices := make([]decimal.Decimal, len(in.Items))
	for i := range in.Items {
		item := &in.Items[i]
		if item.ProductID == "" || !item.Quantity.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		if item.UnitPrice != nil && item.UnitPrice.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		product, err := uc.productRepo.GetByID(item.ProductID)
		if err != nil || product == nil {
			return nil, domain.ErrNotFound
		}
		if item.UnitPrice != nil {
			prices[i] = *item.UnitPrice
		} else {
			prices[i] = product.Price
		}
	}

	var total decimal.Decimal
	for i, item := range in.Items {
		total = total.Add(item.Quantity.Mul(prices[i]))
	}

	now := time.Now()
	purchase := &entity.Purchase{
		ID:          uuid.New().String(),
		SupplierID:  in.SupplierID,
		UserID:      userID,
		WarehouseID: warehouseID,
		Status:      entity.StatusPendiente,
		Total:       total,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	var items []*entity.PurchaseItem

	err = uc.txRunner.RunPurchase(ctx, func(
		stockRepo repository.StockRepository,
		purchaseRepo repository.PurchaseRepository,
	) error {
		if err := purchaseRepo.Create(purchase); err != nil {
			return err
		}
		for i, item := range in.Items {
			s, err := stockRepo.GetForUpdate(item.ProductID, warehouseID)
			if err != nil {
				return err
			}
			if s == nil {
				// Primera compra del producto en esta bodega: se crea la fila
				s = &entity.Stock{
					ProductID:   item.ProductID,
					WarehouseID: warehouseID,
					Quantity:    item.Quantity,
				}
			} else {
				s.Quantity = s.Quantity.Add(item.Quantity)
			}
			s.UpdatedAt = now
			if err := stockRepo.Upsert(s); err != nil {
				return err
			}
			purchaseItem := &entity.PurchaseItem{
				ID:         uuid.New().String(),
				PurchaseID: purchase.ID,
				ProductID:  item.ProductID,
				Quantity:   item.Quantity,
				UnitPrice:  prices[i],
				Subtotal:   item.Quantity.Mul(prices[i]),
				Position:   i,
			}
			if err := purchaseRepo.CreateItem(purchaseItem); err != nil {
				return err
			}
			items = append(items, purchaseItem)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toPurchaseResponse(purchase, items), nil
}

// GetPurchase obtiene una compra por ID con su detalle completo.
func (uc *CreatePurchaseUseCase) GetPurchase(ctx context.Context, id string) (*dto.PurchaseResponse, error) {
	purchase, err := uc.purchaseRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if purchase == nil {
		return nil, domain.ErrNotFound
	}
	items, err := uc.purchaseRepo.GetItems(id)
	if err != nil {
		return nil, err
	}
	return toPurchaseResponse(purchase, items), nil
}

// ListPurchases lista compras con paginación.
func (uc *CreatePurchaseUseCase) ListPurchases(ctx context.Context, limit, offset int) ([]*dto.PurchaseResponse, error) {
	list, err := uc.purchaseRepo.List(limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.PurchaseResponse, 0, len(list))
	for _, p := range list {
		out = append(out, toPurchaseResponse(p, nil))
	}
	return out, nil
}

// UpdateStatus cambia el estado de la compra sin tocar el stock.
func (uc *CreatePurchaseUseCase) UpdateStatus(ctx context.Context, id, status string) error {
	switch status {
	case entity.StatusPendiente, entity.StatusCompletada, entity.StatusAnulada:
	default:
		return domain.ErrInvalidInput
	}
	purchase, err := uc.purchaseRepo.GetByID(id)
	if err != nil {
		return err
	}
	if purchase == nil {
		return domain.ErrNotFound
	}
	return uc.purchaseRepo.UpdateStatus(id, status)
}

// DeletePurchase elimina la compra y sus líneas sin revertir el stock sumado.
func (uc *CreatePurchaseUseCase) DeletePurchase(ctx context.Context, id string) error {
	purchase, err := uc.purchaseRepo.GetByID(id)
	if err != nil {
		return err
	}
	if purchase == nil {
		return domain.ErrNotFound
	}
	return uc.purchaseRepo.Delete(id)
}

func toPurchaseResponse(purchase *entity.Purchase, items []*entity.PurchaseItem) *dto.PurchaseResponse {
	resp := &dto.PurchaseResponse{
		ID:          purchase.ID,
		SupplierID:  purchase.SupplierID,
		UserID:      purchase.UserID,
		WarehouseID: purchase.WarehouseID,
		Status:      purchase.Status,
		Total:       purchase.Total,
		CreatedAt:   purchase.CreatedAt.Format(time.RFC3339),
		Items:       make([]dto.LineItemResponse, 0, len(items)),
	}
	for _, it := range items {
		resp.Items = append(resp.Items, dto.LineItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Subtotal:  it.Subtotal,
		})
	}
	return resp
}
