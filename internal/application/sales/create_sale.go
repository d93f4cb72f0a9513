package sales

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

// CreateSaleUseCase crea una venta y descuenta el inventario en una sola transacción.
// Por cada línea: bloquea la fila de stock (SELECT FOR UPDATE), verifica que la
// cantidad alcance, descuenta y persiste la línea. Cualquier fallo revierte todo.
type CreateSaleUseCase struct {
	txRunner           SalesTxRunner
	saleRepo           repository.SaleRepository
	productRepo        repository.ProductRepository
	warehouseRepo      repository.WarehouseRepository
	defaultWarehouseID string
}

// NewCreateSaleUseCase construye el caso de uso. defaultWarehouseID puede ir
// vacío; en ese caso toda venta debe traer warehouse_id explícito.
func NewCreateSaleUseCase(
	txRunner SalesTxRunner,
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
	defaultWarehouseID string,
) *CreateSaleUseCase {
	return &CreateSaleUseCase{
		txRunner:           txRunner,
		saleRepo:           saleRepo,
		productRepo:        productRepo,
		warehouseRepo:      warehouseRepo,
		defaultWarehouseID: defaultWarehouseID,
	}
}

// resolveWarehouse aplica la política de bodega: la de la petición, o la
// configurada por defecto. Nunca elige una bodega arbitraria.
func (uc *CreateSaleUseCase) resolveWarehouse(requested string) (string, error) {
	warehouseID := requested
	if warehouseID == "" {
		warehouseID = uc.defaultWarehouseID
	}
	if warehouseID == "" {
		return "", domain.ErrNoWarehouse
	}
	wh, err := uc.warehouseRepo.GetByID(warehouseID)
	if err != nil {
		return "", err
	}
	if wh == nil {
		return "", domain.ErrNotFound
	}
	return warehouseID, nil
}

// CreateSale valida la entrada, calcula el total y ejecuta la transacción:
// cabecera en PENDIENTE, luego por cada línea (en el orden del llamador)
// bloqueo de stock, verificación de suficiencia, descuento y línea persistida.
// Si alguna línea no tiene stock suficiente retorna StockError con el producto
// ofensor y nada queda aplicado.
func (uc *CreateSaleUseCase) CreateSale(ctx context.Context, userID string, in dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	if userID == "" || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}

	warehouseID, err := uc.resolveWarehouse(in.WarehouseID)
	if err != nil {
		return nil, err
	}

	// Validar productos y resolver precios (fuera de la tx, solo lectura).
	// Sin unit_price la línea toma el precio de catálogo; un cero explícito
	// se respeta (línea sin costo).
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

	// Total = Σ(cantidad × precio unitario), calculado una sola vez y persistido.
	var total decimal.Decimal
	for i, item := range in.Items {
		total = total.Add(item.Quantity.Mul(prices[i]))
	}

	now := time.Now()
	sale := &entity.Sale{
		ID:          uuid.New().String(),
		UserID:      userID,
		WarehouseID: warehouseID,
		Status:      entity.StatusPendiente,
		Total:       total,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	var items []*entity.SaleItem

	err = uc.txRunner.RunSale(ctx, func(
		stockRepo repository.StockRepository,
		saleRepo repository.SaleRepository,
	) error {
		if err := saleRepo.Create(sale); err != nil {
			return err
		}
		for i, item := range in.Items {
			// Bloquea la fila de stock; sin fila o sin cantidad = venta completa rechazada
			s, err := stockRepo.GetForUpdate(item.ProductID, warehouseID)
			if err != nil {
				return err
			}
			if s == nil || s.Quantity.LessThan(item.Quantity) {
				return domain.NewStockError(domain.ErrInsufficientStock, item.ProductID, warehouseID)
			}
			s.Quantity = s.Quantity.Sub(item.Quantity)
			s.UpdatedAt = now
			if err := stockRepo.Upsert(s); err != nil {
				return err
			}
			saleItem := &entity.SaleItem{
				ID:        uuid.New().String(),
				SaleID:    sale.ID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: prices[i],
				Subtotal:  item.Quantity.Mul(prices[i]),
				Position:  i,
			}
			if err := saleRepo.CreateItem(saleItem); err != nil {
				return err
			}
			items = append(items, saleItem)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toSaleResponse(sale, items), nil
}

// GetSale obtiene una venta por ID con su detalle completo.
func (uc *CreateSaleUseCase) GetSale(ctx context.Context, id string) (*dto.SaleResponse, error) {
	sale, err := uc.saleRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	items, err := uc.saleRepo.GetItems(id)
	if err != nil {
		return nil, err
	}
	return toSaleResponse(sale, items), nil
}

// ListSales lista ventas con paginación.
func (uc *CreateSaleUseCase) ListSales(ctx context.Context, limit, offset int) ([]*dto.SaleResponse, error) {
	list, err := uc.saleRepo.List(limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.SaleResponse, 0, len(list))
	for _, sale := range list {
		out = append(out, toSaleResponse(sale, nil))
	}
	return out, nil
}

// UpdateStatus cambia el estado de la venta. Las transiciones de estado no
// vuelven a tocar el stock: anular una venta no repone inventario.
func (uc *CreateSaleUseCase) UpdateStatus(ctx context.Context, id, status string) error {
	switch status {
	case entity.StatusPendiente, entity.StatusCompletada, entity.StatusAnulada:
	default:
		return domain.ErrInvalidInput
	}
	sale, err := uc.saleRepo.GetByID(id)
	if err != nil {
		return err
	}
	if sale == nil {
		return domain.ErrNotFound
	}
	return uc.saleRepo.UpdateStatus(id, status)
}

// DeleteSale elimina la venta y sus líneas. Borrado puro de registros: el
// stock descontado no se restaura (las correcciones van por /api/stock).
func (uc *CreateSaleUseCase) DeleteSale(ctx context.Context, id string) error {
	sale, err := uc.saleRepo.GetByID(id)
	if err != nil {
		return err
	}
	if sale == nil {
		return domain.ErrNotFound
	}
	return uc.saleRepo.Delete(id)
}

func toSaleResponse(sale *entity.Sale, items []*entity.SaleItem) *dto.SaleResponse {
	resp := &dto.SaleResponse{
		ID:          sale.ID,
		UserID:      sale.UserID,
		WarehouseID: sale.WarehouseID,
		Status:      sale.Status,
		Total:       sale.Total,
		CreatedAt:   sale.CreatedAt.Format(time.RFC3339),
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
