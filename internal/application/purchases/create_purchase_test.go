package purchases_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jortega/erp-inventario/internal/application/dto"
	"github.com/jortega/erp-inventario/internal/application/purchases"
	"github.com/jortega/erp-inventario/internal/domain"
	"github.com/jortega/erp-inventario/internal/domain/entity"
	"github.com/jortega/erp-inventario/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria. El TxRunner clona el estado y solo lo publica en commit,
// replicando la semántica de rollback de la transacción real.
// ──────────────────────────────────────────────────────────────────────────────

type memState struct {
	stock     map[string]*entity.Stock
	purchases map[string]*entity.Purchase
	items     map[string][]*entity.PurchaseItem
}

func newMemState() *memState {
	return &memState{
		stock:     make(map[string]*entity.Stock),
		purchases: make(map[string]*entity.Purchase),
		items:     make(map[string][]*entity.PurchaseItem),
	}
}

func (s *memState) clone() *memState {
	c := newMemState()
	for k, v := range s.stock {
		cp := *v
		c.stock[k] = &cp
	}
	for k, v := range s.purchases {
		cp := *v
		c.purchases[k] = &cp
	}
	for k, v := range s.items {
		for _, it := range v {
			cp := *it
			c.items[k] = append(c.items[k], &cp)
		}
	}
	return c
}

func stockKey(productID, warehouseID string) string { return productID + "|" + warehouseID }

// precio construye el puntero de unit_price de las peticiones.
func precio(n int64) *decimal.Decimal {
	d := decimal.NewFromInt(n)
	return &d
}

type memStockRepo struct{ st *memState }

func (r *memStockRepo) Get(productID, warehouseID string) (*entity.Stock, error) {
	s, ok := r.st.stock[stockKey(productID, warehouseID)]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *memStockRepo) GetForUpdate(productID, warehouseID string) (*entity.Stock, error) {
	return r.Get(productID, warehouseID)
}

func (r *memStockRepo) Upsert(s *entity.Stock) error {
	cp := *s
	r.st.stock[stockKey(s.ProductID, s.WarehouseID)] = &cp
	return nil
}

func (r *memStockRepo) ListByWarehouse(warehouseID string, limit, offset int) ([]*entity.Stock, error) {
	var out []*entity.Stock
	for _, s := range r.st.stock {
		if s.WarehouseID == warehouseID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memPurchaseRepo struct{ st *memState }

func (r *memPurchaseRepo) Create(p *entity.Purchase) error {
	cp := *p
	r.st.purchases[p.ID] = &cp
	return nil
}

func (r *memPurchaseRepo) CreateItem(item *entity.PurchaseItem) error {
	cp := *item
	r.st.items[item.PurchaseID] = append(r.st.items[item.PurchaseID], &cp)
	return nil
}

func (r *memPurchaseRepo) GetByID(id string) (*entity.Purchase, error) {
	p, ok := r.st.purchases[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *memPurchaseRepo) GetItems(purchaseID string) ([]*entity.PurchaseItem, error) {
	return r.st.items[purchaseID], nil
}

func (r *memPurchaseRepo) UpdateStatus(id, status string) error {
	if p, ok := r.st.purchases[id]; ok {
		p.Status = status
	}
	return nil
}

func (r *memPurchaseRepo) List(limit, offset int) ([]*entity.Purchase, error) {
	var out []*entity.Purchase
	for _, p := range r.st.purchases {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memPurchaseRepo) Delete(id string) error {
	delete(r.st.purchases, id)
	delete(r.st.items, id)
	return nil
}

type memTxRunner struct{ st *memState }

func (t *memTxRunner) RunPurchase(_ context.Context, fn func(repository.StockRepository, repository.PurchaseRepository) error) error {
	work := t.st.clone()
	if err := fn(&memStockRepo{st: work}, &memPurchaseRepo{st: work}); err != nil {
		return err
	}
	*t.st = *work
	return nil
}

type memProductRepo struct{ products map[string]*entity.Product }

func (r *memProductRepo) Create(*entity.Product) error { return nil }
func (r *memProductRepo) GetByID(id string) (*entity.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	return p, nil
}
func (r *memProductRepo) GetBySKU(string) (*entity.Product, error)         { return nil, nil }
func (r *memProductRepo) Update(*entity.Product) error                     { return nil }
func (r *memProductRepo) List(string, int, int) ([]*entity.Product, error) { return nil, nil }
func (r *memProductRepo) Delete(string) error                              { return nil }

type memSupplierRepo struct{ suppliers map[string]*entity.Supplier }

func (r *memSupplierRepo) Create(*entity.Supplier) error { return nil }
func (r *memSupplierRepo) GetByID(id string) (*entity.Supplier, error) {
	s, ok := r.suppliers[id]
	if !ok {
		return nil, nil
	}
	return s, nil
}
func (r *memSupplierRepo) Update(*entity.Supplier) error             { return nil }
func (r *memSupplierRepo) List(int, int) ([]*entity.Supplier, error) { return nil, nil }
func (r *memSupplierRepo) Delete(string) error                       { return nil }

type memWarehouseRepo struct{ warehouses map[string]*entity.Warehouse }

func (r *memWarehouseRepo) Create(*entity.Warehouse) error { return nil }
func (r *memWarehouseRepo) GetByID(id string) (*entity.Warehouse, error) {
	w, ok := r.warehouses[id]
	if !ok {
		return nil, nil
	}
	return w, nil
}
func (r *memWarehouseRepo) Update(*entity.Warehouse) error             { return nil }
func (r *memWarehouseRepo) List(int, int) ([]*entity.Warehouse, error) { return nil, nil }
func (r *memWarehouseRepo) Delete(string) error                        { return nil }

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

const (
	bodegaNorte   = "wh-norte"
	prodTeclado   = "prod-teclado"
	prodMonitor   = "prod-monitor"
	provAcme      = "sup-acme"
	testComprador = "user-bodeguero-1"
)

type purchaseFixture struct {
	state *memState
	uc    *purchases.CreatePurchaseUseCase
}

// newPurchaseFixture prepara un proveedor, una bodega y dos productos; solo el
// teclado tiene fila de stock previa (20 unidades).
func newPurchaseFixture(defaultWarehouseID string) *purchaseFixture {
	state := newMemState()
	state.stock[stockKey(prodTeclado, bodegaNorte)] = &entity.Stock{
		ProductID: prodTeclado, WarehouseID: bodegaNorte,
		Quantity: decimal.NewFromInt(20), UpdatedAt: time.Now(),
	}

	products := map[string]*entity.Product{
		prodTeclado: {ID: prodTeclado, SKU: "TEC-01", Name: "Teclado", Price: decimal.NewFromInt(40)},
		prodMonitor: {ID: prodMonitor, SKU: "MON-01", Name: "Monitor", Price: decimal.NewFromInt(300)},
	}
	suppliers := map[string]*entity.Supplier{
		provAcme: {ID: provAcme, Name: "ACME S.A.S.", TaxID: "900111222"},
	}
	warehouses := map[string]*entity.Warehouse{
		bodegaNorte: {ID: bodegaNorte, Name: "Bodega Norte"},
	}

	uc := purchases.NewCreatePurchaseUseCase(
		&memTxRunner{st: state},
		&memPurchaseRepo{st: state},
		&memProductRepo{products: products},
		&memSupplierRepo{suppliers: suppliers},
		&memWarehouseRepo{warehouses: warehouses},
		defaultWarehouseID,
	)
	return &purchaseFixture{state: state, uc: uc}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests CreatePurchase
// ──────────────────────────────────────────────────────────────────────────────

func TestCreatePurchase_IncrementaStockExistente(t *testing.T) {
	f := newPurchaseFixture("")

	out, err := f.uc.CreatePurchase(context.Background(), testComprador, dto.CreatePurchaseRequest{
		SupplierID:  provAcme,
		WarehouseID: bodegaNorte,
		Items: []dto.LineItemRequest{
			{ProductID: prodTeclado, Quantity: decimal.NewFromInt(30), UnitPrice: precio(35)},
		},
	})
	require.NoError(t, err)

	// Total = 30 × 35 = 1050
	assert.True(t, decimal.NewFromInt(1050).Equal(out.Total))
	assert.Equal(t, entity.StatusPendiente, out.Status)

	s := f.state.stock[stockKey(prodTeclado, bodegaNorte)]
	require.NotNil(t, s)
	assert.True(t, decimal.NewFromInt(50).Equal(s.Quantity), "20 + 30 comprados")
}

func TestCreatePurchase_CreaFilaDeStockSiNoExiste(t *testing.T) {
	f := newPurchaseFixture("")

	_, err := f.uc.CreatePurchase(context.Background(), testComprador, dto.CreatePurchaseRequest{
		SupplierID:  provAcme,
		WarehouseID: bodegaNorte,
		Items: []dto.LineItemRequest{
			{ProductID: prodMonitor, Quantity: decimal.NewFromInt(5), UnitPrice: precio(280)},
		},
	})
	require.NoError(t, err)

	s := f.state.stock[stockKey(prodMonitor, bodegaNorte)]
	require.NotNil(t, s, "la primera compra debe crear la fila de stock")
	assert.True(t, decimal.NewFromInt(5).Equal(s.Quantity))
}

func TestCreatePurchase_VariasLineasEnOrden(t *testing.T) {
	f := newPurchaseFixture("")

	out, err := f.uc.CreatePurchase(context.Background(), testComprador, dto.CreatePurchaseRequest{
		SupplierID:  provAcme,
		WarehouseID: bodegaNorte,
		Items: []dto.LineItemRequest{
			{ProductID: prodMonitor, Quantity: decimal.NewFromInt(2), UnitPrice: precio(300)},
			{ProductID: prodTeclado, Quantity: decimal.NewFromInt(10), UnitPrice: precio(40)},
		},
	})
	require.NoError(t, err)

	require.Len(t, out.Items, 2)
	assert.Equal(t, prodMonitor, out.Items[0].ProductID, "las líneas conservan el orden del llamador")
	assert.Equal(t, prodTeclado, out.Items[1].ProductID)
	assert.True(t, decimal.NewFromInt(1000).Equal(out.Total), "2×300 + 10×40")
}

func TestCreatePurchase_ProveedorInexistente_Retorna_ErrNotFound(t *testing.T) {
	f := newPurchaseFixture("")

	_, err := f.uc.CreatePurchase(context.Background(), testComprador, dto.CreatePurchaseRequest{
		SupplierID:  "sup-fantasma",
		WarehouseID: bodegaNorte,
		Items: []dto.LineItemRequest{
			{ProductID: prodTeclado, Quantity: decimal.NewFromInt(1), UnitPrice: precio(40)},
		},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, f.state.purchases)
}

func TestCreatePurchase_SinBodegaNiDefecto_Retorna_ErrNoWarehouse(t *testing.T) {
	f := newPurchaseFixture("")

	_, err := f.uc.CreatePurchase(context.Background(), testComprador, dto.CreatePurchaseRequest{
		SupplierID: provAcme,
		Items: []dto.LineItemRequest{
			{ProductID: prodTeclado, Quantity: decimal.NewFromInt(1), UnitPrice: precio(40)},
		},
	})
	assert.ErrorIs(t, err, domain.ErrNoWarehouse)
}

func TestCreatePurchase_UsaBodegaPorDefecto(t *testing.T) {
	f := newPurchaseFixture(bodegaNorte)

	out, err := f.uc.CreatePurchase(context.Background(), testComprador, dto.CreatePurchaseRequest{
		SupplierID: provAcme,
		Items: []dto.LineItemRequest{
			{ProductID: prodTeclado, Quantity: decimal.NewFromInt(1), UnitPrice: precio(40)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, bodegaNorte, out.WarehouseID)
}

func TestCreatePurchase_SinPrecioUnitario_TomaPrecioDelCatalogo(t *testing.T) {
	f := newPurchaseFixture("")

	out, err := f.uc.CreatePurchase(context.Background(), testComprador, dto.CreatePurchaseRequest{
		SupplierID:  provAcme,
		WarehouseID: bodegaNorte,
		Items: []dto.LineItemRequest{
			{ProductID: prodTeclado, Quantity: decimal.NewFromInt(2)}, // sin unit_price
		},
	})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(80).Equal(out.Total), "2 × precio de catálogo (40)")
}

func TestCreatePurchase_PrecioCeroExplicito_CompraSinCosto(t *testing.T) {
	f := newPurchaseFixture("")

	// Un cero explícito no cae al precio de catálogo: mercancía en consignación
	// o bonificada entra con costo cero.
	out, err := f.uc.CreatePurchase(context.Background(), testComprador, dto.CreatePurchaseRequest{
		SupplierID:  provAcme,
		WarehouseID: bodegaNorte,
		Items: []dto.LineItemRequest{
			{ProductID: prodMonitor, Quantity: decimal.NewFromInt(5), UnitPrice: precio(0)},
		},
	})
	require.NoError(t, err)

	assert.True(t, out.Total.IsZero(), "total esperado 0 (5 × 0), fue %s", out.Total)

	// El inventario sube igual aunque la compra no tenga costo
	s := f.state.stock[stockKey(prodMonitor, bodegaNorte)]
	require.NotNil(t, s)
	assert.True(t, decimal.NewFromInt(5).Equal(s.Quantity))
}

func TestUpdateStatus_CompletarNoTocaStock(t *testing.T) {
	f := newPurchaseFixture("")

	out, err := f.uc.CreatePurchase(context.Background(), testComprador, dto.CreatePurchaseRequest{
		SupplierID:  provAcme,
		WarehouseID: bodegaNorte,
		Items: []dto.LineItemRequest{
			{ProductID: prodTeclado, Quantity: decimal.NewFromInt(10), UnitPrice: precio(40)},
		},
	})
	require.NoError(t, err)

	require.NoError(t, f.uc.UpdateStatus(context.Background(), out.ID, entity.StatusCompletada))

	s := f.state.stock[stockKey(prodTeclado, bodegaNorte)]
	assert.True(t, decimal.NewFromInt(30).Equal(s.Quantity),
		"el cambio de estado no debe volver a sumar stock")
	assert.Equal(t, entity.StatusCompletada, f.state.purchases[out.ID].Status)
}

func TestDeletePurchase_NoRevierteStock(t *testing.T) {
	f := newPurchaseFixture("")

	out, err := f.uc.CreatePurchase(context.Background(), testComprador, dto.CreatePurchaseRequest{
		SupplierID:  provAcme,
		WarehouseID: bodegaNorte,
		Items: []dto.LineItemRequest{
			{ProductID: prodTeclado, Quantity: decimal.NewFromInt(10), UnitPrice: precio(40)},
		},
	})
	require.NoError(t, err)

	require.NoError(t, f.uc.DeletePurchase(context.Background(), out.ID))

	assert.Empty(t, f.state.purchases)
	s := f.state.stock[stockKey(prodTeclado, bodegaNorte)]
	assert.True(t, decimal.NewFromInt(30).Equal(s.Quantity),
		"borrar la compra no revierte el stock sumado")
}
