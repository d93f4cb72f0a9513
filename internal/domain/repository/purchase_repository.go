package repository

import "github.com/jortega/erp-inventario/internal/domain/entity"

// PurchaseRepository define el puerto de persistencia para Purchase y sus líneas.
type PurchaseRepository interface {
	Create(purchase *entity.Purchase) error
	CreateItem(item *entity.PurchaseItem) error
	GetByID(id string) (*entity.Purchase, error)
	GetItems(purchaseID string) ([]*entity.PurchaseItem, error)
	UpdateStatus(id, status string) error
	List(limit, offset int) ([]*entity.Purchase, error)
	Delete(id string) error
}
