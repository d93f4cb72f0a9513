package repository

import "github.com/jortega/erp-inventario/internal/domain/entity"

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	GetBySKU(sku string) (*entity.Product, error)
	Update(product *entity.Product) error
	// List filtra por nombre normalizado (normalizedQuery vacío = sin filtro).
	List(normalizedQuery string, limit, offset int) ([]*entity.Product, error)
	Delete(id string) error
}
