package repository

import "github.com/jortega/erp-inventario/internal/domain/entity"

// SaleRepository define el puerto de persistencia para Sale y sus líneas.
type SaleRepository interface {
	Create(sale *entity.Sale) error
	CreateItem(item *entity.SaleItem) error
	GetByID(id string) (*entity.Sale, error)
	// GetItems devuelve las líneas en el orden de inserción (position ASC).
	GetItems(saleID string) ([]*entity.SaleItem, error)
	UpdateStatus(id, status string) error
	List(limit, offset int) ([]*entity.Sale, error)
	// Delete elimina cabecera y líneas (cascade). No restaura stock.
	Delete(id string) error
}
