package stock_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jortega/erp-inventario/internal/application/stock"
	"github.com/jortega/erp-inventario/internal/domain"
	"github.com/jortega/erp-inventario/internal/domain/entity"
	"github.com/jortega/erp-inventario/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

func stockKey(productID, warehouseID string) string { return productID + "|" + warehouseID }

type memStockRepo struct{ rows map[string]*entity.Stock }

func newMemStockRepo() *memStockRepo {
	return &memStockRepo{rows: make(map[string]*entity.Stock)}
}

func (r *memStockRepo) Get(productID, warehouseID string) (*entity.Stock, error) {
	s, ok := r.rows[stockKey(productID, warehouseID)]
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
	r.rows[stockKey(s.ProductID, s.WarehouseID)] = &cp
	return nil
}

func (r *memStockRepo) ListByWarehouse(warehouseID string, limit, offset int) ([]*entity.Stock, error) {
	var out []*entity.Stock
	for _, s := range r.rows {
		if s.WarehouseID == warehouseID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

// memTxRunner pasa el repo tal cual: los ajustes son de una sola fila y el
// caso de uso no necesita rollback multi-paso en estos escenarios.
type memTxRunner struct{ repo *memStockRepo }

func (t *memTxRunner) Run(_ context.Context, fn func(repository.StockRepository) error) error {
	return fn(t.repo)
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
	bodegaSur = "wh-sur"
	prodCable = "prod-cable"
)

func newAdjustFixture() (*stock.AdjustStockUseCase, *memStockRepo) {
	repo := newMemStockRepo()
	repo.rows[stockKey(prodCable, bodegaSur)] = &entity.Stock{
		ProductID: prodCable, WarehouseID: bodegaSur,
		Quantity: decimal.NewFromInt(12), UpdatedAt: time.Now(),
	}
	products := map[string]*entity.Product{
		prodCable: {ID: prodCable, SKU: "CAB-01", Name: "Cable HDMI", Price: decimal.NewFromInt(10)},
	}
	warehouses := map[string]*entity.Warehouse{
		bodegaSur: {ID: bodegaSur, Name: "Bodega Sur"},
	}
	uc := stock.NewAdjustStockUseCase(
		&memTxRunner{repo: repo}, repo,
		&memProductRepo{products: products},
		&memWarehouseRepo{warehouses: warehouses},
	)
	return uc, repo
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Increase / Decrease
// ──────────────────────────────────────────────────────────────────────────────

func TestIncrease_SumaCantidad(t *testing.T) {
	uc, _ := newAdjustFixture()

	out, err := uc.Increase(context.Background(), prodCable, bodegaSur, decimal.NewFromInt(8))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(20).Equal(out.Quantity), "12 + 8")
}

func TestIncrease_FilaInexistente_Retorna_ErrStockNotFound(t *testing.T) {
	uc, _ := newAdjustFixture()

	_, err := uc.Increase(context.Background(), "prod-fantasma", bodegaSur, decimal.NewFromInt(1))
	require.Error(t, err)

	var stockErr *domain.StockError
	require.ErrorAs(t, err, &stockErr)
	assert.True(t, errors.Is(err, domain.ErrStockNotFound))
	assert.Equal(t, "prod-fantasma", stockErr.ProductID)
}

func TestIncrease_MontoNoPositivo_Retorna_ErrInvalidInput(t *testing.T) {
	uc, _ := newAdjustFixture()

	_, err := uc.Increase(context.Background(), prodCable, bodegaSur, decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Increase(context.Background(), prodCable, bodegaSur, decimal.NewFromInt(-5))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDecrease_RestaCantidad(t *testing.T) {
	uc, _ := newAdjustFixture()

	out, err := uc.Decrease(context.Background(), prodCable, bodegaSur, decimal.NewFromInt(12))
	require.NoError(t, err)
	assert.True(t, out.Quantity.IsZero(), "bajar a exactamente cero es válido")
}

func TestDecrease_CantidadInsuficiente_Retorna_ErrInsufficientStock(t *testing.T) {
	uc, repo := newAdjustFixture()

	_, err := uc.Decrease(context.Background(), prodCable, bodegaSur, decimal.NewFromInt(13))
	require.Error(t, err)

	var stockErr *domain.StockError
	require.ErrorAs(t, err, &stockErr)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	// La cantidad no debe cambiar ni quedar negativa
	s, _ := repo.Get(prodCable, bodegaSur)
	assert.True(t, decimal.NewFromInt(12).Equal(s.Quantity))
}

func TestDecrease_FilaInexistente_Retorna_ErrStockNotFound(t *testing.T) {
	uc, _ := newAdjustFixture()

	_, err := uc.Decrease(context.Background(), "prod-fantasma", bodegaSur, decimal.NewFromInt(1))
	assert.True(t, errors.Is(err, domain.ErrStockNotFound))
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests CreateStock / Get
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateStock_AltaInicial(t *testing.T) {
	uc, repo := newAdjustFixture()
	delete(repo.rows, stockKey(prodCable, bodegaSur))

	out, err := uc.CreateStock(context.Background(), prodCable, bodegaSur, decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(100).Equal(out.Quantity))
}

func TestCreateStock_ParYaExistente_Retorna_ErrDuplicate(t *testing.T) {
	uc, _ := newAdjustFixture()

	_, err := uc.CreateStock(context.Background(), prodCable, bodegaSur, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestCreateStock_ProductoInexistente_Retorna_ErrNotFound(t *testing.T) {
	uc, _ := newAdjustFixture()

	_, err := uc.CreateStock(context.Background(), "prod-fantasma", bodegaSur, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGet_FilaInexistente_Retorna_ErrStockNotFound(t *testing.T) {
	uc, _ := newAdjustFixture()

	_, err := uc.Get(context.Background(), prodCable, "wh-fantasma")
	assert.True(t, errors.Is(err, domain.ErrStockNotFound))
}
