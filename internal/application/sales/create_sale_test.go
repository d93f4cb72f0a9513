package sales_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jortega/erp-inventario/internal/application/dto"
	"github.com/jortega/erp-inventario/internal/application/sales"
	"github.com/jortega/erp-inventario/internal/domain"
	"github.com/jortega/erp-inventario/internal/domain/entity"
	"github.com/jortega/erp-inventario/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria con semántica transaccional: cada RunSale acumula sus
// escrituras en un overlay y las aplica al estado confirmado solo en commit.
// Un error descarta el overlay completo, igual que un ROLLBACK.
// GetForUpdate toma un mutex por fila y relee el estado confirmado, igual que
// SELECT ... FOR UPDATE: quien llega segundo ve lo que el primero confirmó.
// ──────────────────────────────────────────────────────────────────────────────

type memState struct {
	stock map[string]*entity.Stock // key: productID|warehouseID
	sales map[string]*entity.Sale
	items map[string][]*entity.SaleItem
}

func newMemState() *memState {
	return &memState{
		stock: make(map[string]*entity.Stock),
		sales: make(map[string]*entity.Sale),
		items: make(map[string][]*entity.SaleItem),
	}
}

func stockKey(productID, warehouseID string) string { return productID + "|" + warehouseID }

// precio construye el puntero de unit_price de las peticiones.
func precio(n int64) *decimal.Decimal {
	d := decimal.NewFromInt(n)
	return &d
}

type memTxRunner struct {
	st       *memState
	commitMu sync.Mutex // protege el estado confirmado
	locksMu  sync.Mutex
	rowLocks map[string]*sync.Mutex
}

func newMemTxRunner(st *memState) *memTxRunner {
	return &memTxRunner{st: st, rowLocks: make(map[string]*sync.Mutex)}
}

func (t *memTxRunner) rowLock(key string) *sync.Mutex {
	t.locksMu.Lock()
	defer t.locksMu.Unlock()
	mu, ok := t.rowLocks[key]
	if !ok {
		mu = &sync.Mutex{}
		t.rowLocks[key] = mu
	}
	return mu
}

func (t *memTxRunner) RunSale(_ context.Context, fn func(repository.StockRepository, repository.SaleRepository) error) error {
	tx := &memTx{
		runner: t,
		stock:  make(map[string]*entity.Stock),
		sales:  make(map[string]*entity.Sale),
		items:  make(map[string][]*entity.SaleItem),
		held:   make(map[string]*sync.Mutex),
	}
	defer tx.release()
	if err := fn(&txStockRepo{tx: tx}, &txSaleRepo{tx: tx}); err != nil {
		return err
	}
	tx.commit()
	return nil
}

// memTx overlay de escrituras de una transacción y sus bloqueos de fila.
type memTx struct {
	runner *memTxRunner
	stock  map[string]*entity.Stock
	sales  map[string]*entity.Sale
	items  map[string][]*entity.SaleItem
	held   map[string]*sync.Mutex
}

func (tx *memTx) lockRow(key string) {
	if _, ok := tx.held[key]; ok {
		return
	}
	mu := tx.runner.rowLock(key)
	mu.Lock()
	tx.held[key] = mu
}

func (tx *memTx) committedStock(key string) *entity.Stock {
	tx.runner.commitMu.Lock()
	defer tx.runner.commitMu.Unlock()
	s, ok := tx.runner.st.stock[key]
	if !ok {
		return nil
	}
	cp := *s
	return &cp
}

func (tx *memTx) commit() {
	r := tx.runner
	r.commitMu.Lock()
	for k, v := range tx.stock {
		cp := *v
		r.st.stock[k] = &cp
	}
	for k, v := range tx.sales {
		cp := *v
		r.st.sales[k] = &cp
	}
	for k, v := range tx.items {
		for _, it := range v {
			cp := *it
			r.st.items[k] = append(r.st.items[k], &cp)
		}
	}
	r.commitMu.Unlock()
}

func (tx *memTx) release() {
	for _, mu := range tx.held {
		mu.Unlock()
	}
	tx.held = make(map[string]*sync.Mutex)
}

type txStockRepo struct{ tx *memTx }

func (r *txStockRepo) Get(productID, warehouseID string) (*entity.Stock, error) {
	key := stockKey(productID, warehouseID)
	if s, ok := r.tx.stock[key]; ok {
		cp := *s
		return &cp, nil
	}
	return r.tx.committedStock(key), nil
}

func (r *txStockRepo) GetForUpdate(productID, warehouseID string) (*entity.Stock, error) {
	r.tx.lockRow(stockKey(productID, warehouseID))
	return r.Get(productID, warehouseID)
}

func (r *txStockRepo) Upsert(s *entity.Stock) error {
	cp := *s
	r.tx.stock[stockKey(s.ProductID, s.WarehouseID)] = &cp
	return nil
}

func (r *txStockRepo) ListByWarehouse(string, int, int) ([]*entity.Stock, error) {
	return nil, nil // no se usa dentro de la transacción
}

type txSaleRepo struct{ tx *memTx }

func (r *txSaleRepo) Create(sale *entity.Sale) error {
	cp := *sale
	r.tx.sales[sale.ID] = &cp
	return nil
}

func (r *txSaleRepo) CreateItem(item *entity.SaleItem) error {
	cp := *item
	r.tx.items[item.SaleID] = append(r.tx.items[item.SaleID], &cp)
	return nil
}

func (r *txSaleRepo) GetByID(id string) (*entity.Sale, error) {
	if s, ok := r.tx.sales[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (r *txSaleRepo) GetItems(saleID string) ([]*entity.SaleItem, error) {
	return r.tx.items[saleID], nil
}

func (r *txSaleRepo) UpdateStatus(id, status string) error {
	if s, ok := r.tx.sales[id]; ok {
		s.Status = status
	}
	return nil
}

func (r *txSaleRepo) List(int, int) ([]*entity.Sale, error) { return nil, nil }

func (r *txSaleRepo) Delete(id string) error {
	delete(r.tx.sales, id)
	delete(r.tx.items, id)
	return nil
}

// memSaleRepo opera directo sobre el estado confirmado; es el repo que el caso
// de uso recibe para las operaciones fuera de transacción.
type memSaleRepo struct{ st *memState }

func (r *memSaleRepo) Create(sale *entity.Sale) error {
	cp := *sale
	r.st.sales[sale.ID] = &cp
	return nil
}

func (r *memSaleRepo) CreateItem(item *entity.SaleItem) error {
	cp := *item
	r.st.items[item.SaleID] = append(r.st.items[item.SaleID], &cp)
	return nil
}

func (r *memSaleRepo) GetByID(id string) (*entity.Sale, error) {
	s, ok := r.st.sales[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *memSaleRepo) GetItems(saleID string) ([]*entity.SaleItem, error) {
	return r.st.items[saleID], nil
}

func (r *memSaleRepo) UpdateStatus(id, status string) error {
	if s, ok := r.st.sales[id]; ok {
		s.Status = status
	}
	return nil
}

func (r *memSaleRepo) List(limit, offset int) ([]*entity.Sale, error) {
	var out []*entity.Sale
	for _, s := range r.st.sales {
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memSaleRepo) Delete(id string) error {
	delete(r.st.sales, id)
	delete(r.st.items, id)
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
func (r *memProductRepo) GetBySKU(string) (*entity.Product, error) { return nil, nil }
func (r *memProductRepo) Update(*entity.Product) error             { return nil }
func (r *memProductRepo) List(string, int, int) ([]*entity.Product, error) {
	return nil, nil
}
func (r *memProductRepo) Delete(string) error { return nil }

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
	bodegaCentral = "wh-central"
	prodLaptop    = "prod-laptop"
	prodMouse     = "prod-mouse"
	testVendedor  = "user-vendedor-1"
)

type saleFixture struct {
	state *memState
	uc    *sales.CreateSaleUseCase
}

// newSaleFixture prepara dos productos con stock en la bodega central:
// 10 laptops a $1500 y 50 mouse a $25.
func newSaleFixture(defaultWarehouseID string) *saleFixture {
	state := newMemState()
	state.stock[stockKey(prodLaptop, bodegaCentral)] = &entity.Stock{
		ProductID: prodLaptop, WarehouseID: bodegaCentral,
		Quantity: decimal.NewFromInt(10), UpdatedAt: time.Now(),
	}
	state.stock[stockKey(prodMouse, bodegaCentral)] = &entity.Stock{
		ProductID: prodMouse, WarehouseID: bodegaCentral,
		Quantity: decimal.NewFromInt(50), UpdatedAt: time.Now(),
	}

	products := map[string]*entity.Product{
		prodLaptop: {ID: prodLaptop, SKU: "LAP-01", Name: "Laptop", Price: decimal.NewFromInt(1500)},
		prodMouse:  {ID: prodMouse, SKU: "MOU-01", Name: "Mouse", Price: decimal.NewFromInt(25)},
	}
	warehouses := map[string]*entity.Warehouse{
		bodegaCentral: {ID: bodegaCentral, Name: "Bodega Central"},
	}

	uc := sales.NewCreateSaleUseCase(
		newMemTxRunner(state),
		&memSaleRepo{st: state},
		&memProductRepo{products: products},
		&memWarehouseRepo{warehouses: warehouses},
		defaultWarehouseID,
	)
	return &saleFixture{state: state, uc: uc}
}

func (f *saleFixture) stockQty(t *testing.T, productID string) decimal.Decimal {
	t.Helper()
	s, ok := f.state.stock[stockKey(productID, bodegaCentral)]
	require.True(t, ok, "debe existir la fila de stock de %s", productID)
	return s.Quantity
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests CreateSale
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateSale_DescuentaStockYPersisteDetalle(t *testing.T) {
	f := newSaleFixture("")

	out, err := f.uc.CreateSale(context.Background(), testVendedor, dto.CreateSaleRequest{
		WarehouseID: bodegaCentral,
		Items: []dto.LineItemRequest{
			{ProductID: prodLaptop, Quantity: decimal.NewFromInt(2), UnitPrice: precio(1500)},
			{ProductID: prodMouse, Quantity: decimal.NewFromInt(3), UnitPrice: precio(25)},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, out)

	// Total = 2×1500 + 3×25 = 3075
	assert.True(t, decimal.NewFromInt(3075).Equal(out.Total), "total esperado 3075, fue %s", out.Total)
	assert.Equal(t, entity.StatusPendiente, out.Status)
	assert.Equal(t, testVendedor, out.UserID)

	// Stock descontado
	assert.True(t, decimal.NewFromInt(8).Equal(f.stockQty(t, prodLaptop)))
	assert.True(t, decimal.NewFromInt(47).Equal(f.stockQty(t, prodMouse)))

	// Líneas en el orden del llamador
	require.Len(t, out.Items, 2)
	assert.Equal(t, prodLaptop, out.Items[0].ProductID)
	assert.Equal(t, prodMouse, out.Items[1].ProductID)

	// Cabecera y líneas persistidas
	assert.Len(t, f.state.sales, 1)
	assert.Len(t, f.state.items[out.ID], 2)
}

func TestCreateSale_StockInsuficiente_RollbackCompleto(t *testing.T) {
	f := newSaleFixture("")

	// La primera línea alcanza; la segunda pide 100 mouse y solo hay 50.
	_, err := f.uc.CreateSale(context.Background(), testVendedor, dto.CreateSaleRequest{
		WarehouseID: bodegaCentral,
		Items: []dto.LineItemRequest{
			{ProductID: prodLaptop, Quantity: decimal.NewFromInt(1), UnitPrice: precio(1500)},
			{ProductID: prodMouse, Quantity: decimal.NewFromInt(100), UnitPrice: precio(25)},
		},
	})
	require.Error(t, err)

	// Error tipado con el producto ofensor
	var stockErr *domain.StockError
	require.ErrorAs(t, err, &stockErr, "debe retornar StockError")
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.Equal(t, prodMouse, stockErr.ProductID)
	assert.Equal(t, bodegaCentral, stockErr.WarehouseID)

	// Rollback total: ni la primera línea quedó aplicada, ni hay venta persistida
	assert.True(t, decimal.NewFromInt(10).Equal(f.stockQty(t, prodLaptop)),
		"el descuento de la primera línea debe revertirse")
	assert.True(t, decimal.NewFromInt(50).Equal(f.stockQty(t, prodMouse)))
	assert.Empty(t, f.state.sales, "no debe quedar cabecera de venta")
	assert.Empty(t, f.state.items)
}

func TestCreateSale_SinFilaDeStock_RechazaVenta(t *testing.T) {
	f := newSaleFixture("")
	delete(f.state.stock, stockKey(prodMouse, bodegaCentral))

	_, err := f.uc.CreateSale(context.Background(), testVendedor, dto.CreateSaleRequest{
		WarehouseID: bodegaCentral,
		Items: []dto.LineItemRequest{
			{ProductID: prodMouse, Quantity: decimal.NewFromInt(1), UnitPrice: precio(25)},
		},
	})
	require.Error(t, err)

	// Sin fila de stock la venta se trata como stock insuficiente
	var stockErr *domain.StockError
	require.ErrorAs(t, err, &stockErr)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.Empty(t, f.state.sales)
}

func TestCreateSale_SinBodegaNiDefecto_Retorna_ErrNoWarehouse(t *testing.T) {
	f := newSaleFixture("") // sin bodega por defecto

	_, err := f.uc.CreateSale(context.Background(), testVendedor, dto.CreateSaleRequest{
		Items: []dto.LineItemRequest{
			{ProductID: prodLaptop, Quantity: decimal.NewFromInt(1), UnitPrice: precio(1500)},
		},
	})
	assert.ErrorIs(t, err, domain.ErrNoWarehouse,
		"sin warehouse_id en la petición ni bodega configurada la venta debe fallar")
}

func TestCreateSale_UsaBodegaPorDefecto(t *testing.T) {
	f := newSaleFixture(bodegaCentral)

	out, err := f.uc.CreateSale(context.Background(), testVendedor, dto.CreateSaleRequest{
		Items: []dto.LineItemRequest{
			{ProductID: prodLaptop, Quantity: decimal.NewFromInt(1), UnitPrice: precio(1500)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, bodegaCentral, out.WarehouseID)
	assert.True(t, decimal.NewFromInt(9).Equal(f.stockQty(t, prodLaptop)))
}

func TestCreateSale_SinPrecioUnitario_TomaPrecioDelCatalogo(t *testing.T) {
	f := newSaleFixture("")

	out, err := f.uc.CreateSale(context.Background(), testVendedor, dto.CreateSaleRequest{
		WarehouseID: bodegaCentral,
		Items: []dto.LineItemRequest{
			{ProductID: prodMouse, Quantity: decimal.NewFromInt(2)}, // sin unit_price
		},
	})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(50).Equal(out.Total), "2 × precio de catálogo (25)")
}

func TestCreateSale_PrecioCeroExplicito_LineaSinCosto(t *testing.T) {
	f := newSaleFixture("")

	// Un cero explícito no es "precio omitido": la línea vale exactamente cero.
	out, err := f.uc.CreateSale(context.Background(), testVendedor, dto.CreateSaleRequest{
		WarehouseID: bodegaCentral,
		Items: []dto.LineItemRequest{
			{ProductID: prodMouse, Quantity: decimal.NewFromInt(2), UnitPrice: precio(0)},
		},
	})
	require.NoError(t, err)

	assert.True(t, out.Total.IsZero(), "total esperado 0 (2 × 0), fue %s", out.Total)
	require.Len(t, out.Items, 1)
	assert.True(t, out.Items[0].UnitPrice.IsZero())
	assert.True(t, out.Items[0].Subtotal.IsZero())

	// El stock se descuenta igual aunque la línea no tenga costo
	assert.True(t, decimal.NewFromInt(48).Equal(f.stockQty(t, prodMouse)))
}

func TestCreateSale_PrecioNegativo_Retorna_ErrInvalidInput(t *testing.T) {
	f := newSaleFixture("")

	_, err := f.uc.CreateSale(context.Background(), testVendedor, dto.CreateSaleRequest{
		WarehouseID: bodegaCentral,
		Items: []dto.LineItemRequest{
			{ProductID: prodMouse, Quantity: decimal.NewFromInt(1), UnitPrice: precio(-25)},
		},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreateSale_ItemsVacios_Retorna_ErrInvalidInput(t *testing.T) {
	f := newSaleFixture("")
	_, err := f.uc.CreateSale(context.Background(), testVendedor, dto.CreateSaleRequest{
		WarehouseID: bodegaCentral,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreateSale_CantidadNoPositiva_Retorna_ErrInvalidInput(t *testing.T) {
	f := newSaleFixture("")
	_, err := f.uc.CreateSale(context.Background(), testVendedor, dto.CreateSaleRequest{
		WarehouseID: bodegaCentral,
		Items: []dto.LineItemRequest{
			{ProductID: prodMouse, Quantity: decimal.Zero, UnitPrice: precio(25)},
		},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests de concurrencia: dos ventas compiten por el mismo stock
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateSale_VentasConcurrentes_SoloUnaGana(t *testing.T) {
	f := newSaleFixture("")

	// Hay 10 laptops; dos ventas de 6 cada una no caben ambas.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.uc.CreateSale(context.Background(), testVendedor, dto.CreateSaleRequest{
				WarehouseID: bodegaCentral,
				Items: []dto.LineItemRequest{
					{ProductID: prodLaptop, Quantity: decimal.NewFromInt(6), UnitPrice: precio(1500)},
				},
			})
		}(i)
	}
	wg.Wait()

	var exitosas, fallidas int
	for _, err := range errs {
		if err == nil {
			exitosas++
			continue
		}
		fallidas++
		assert.True(t, errors.Is(err, domain.ErrInsufficientStock),
			"la venta perdedora debe fallar por stock insuficiente, no por otra causa")
	}
	assert.Equal(t, 1, exitosas, "exactamente una venta debe completarse")
	assert.Equal(t, 1, fallidas)

	assert.True(t, decimal.NewFromInt(4).Equal(f.stockQty(t, prodLaptop)), "10 − 6 = 4")
	assert.Len(t, f.state.sales, 1, "solo la venta ganadora queda persistida")
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests de ciclo de vida: los cambios de estado y el borrado nunca tocan stock
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdateStatus_AnularNoReponeStock(t *testing.T) {
	f := newSaleFixture("")

	out, err := f.uc.CreateSale(context.Background(), testVendedor, dto.CreateSaleRequest{
		WarehouseID: bodegaCentral,
		Items: []dto.LineItemRequest{
			{ProductID: prodLaptop, Quantity: decimal.NewFromInt(4), UnitPrice: precio(1500)},
		},
	})
	require.NoError(t, err)
	require.True(t, decimal.NewFromInt(6).Equal(f.stockQty(t, prodLaptop)))

	require.NoError(t, f.uc.UpdateStatus(context.Background(), out.ID, entity.StatusAnulada))

	sale := f.state.sales[out.ID]
	assert.Equal(t, entity.StatusAnulada, sale.Status)
	assert.True(t, decimal.NewFromInt(6).Equal(f.stockQty(t, prodLaptop)),
		"anular la venta no debe reponer inventario")
}

func TestUpdateStatus_EstadoInvalido_Retorna_ErrInvalidInput(t *testing.T) {
	f := newSaleFixture("")
	err := f.uc.UpdateStatus(context.Background(), "venta-x", "DEVUELTA")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDeleteSale_NoRestauraStock(t *testing.T) {
	f := newSaleFixture("")

	out, err := f.uc.CreateSale(context.Background(), testVendedor, dto.CreateSaleRequest{
		WarehouseID: bodegaCentral,
		Items: []dto.LineItemRequest{
			{ProductID: prodMouse, Quantity: decimal.NewFromInt(10), UnitPrice: precio(25)},
		},
	})
	require.NoError(t, err)

	require.NoError(t, f.uc.DeleteSale(context.Background(), out.ID))

	assert.Empty(t, f.state.sales, "la cabecera debe desaparecer")
	assert.Empty(t, f.state.items[out.ID], "las líneas deben desaparecer")
	assert.True(t, decimal.NewFromInt(40).Equal(f.stockQty(t, prodMouse)),
		"el borrado es puro registro: el stock descontado no vuelve")
}

func TestDeleteSale_Inexistente_Retorna_ErrNotFound(t *testing.T) {
	f := newSaleFixture("")
	err := f.uc.DeleteSale(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
