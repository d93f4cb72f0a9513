package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jortega/erp-inventario/internal/application/auth"
	"github.com/jortega/erp-inventario/internal/application/purchases"
	"github.com/jortega/erp-inventario/internal/application/sales"
	"github.com/jortega/erp-inventario/internal/application/stock"
	"github.com/jortega/erp-inventario/internal/application/usecase"
	"github.com/jortega/erp-inventario/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC      *usecase.ProductUseCase
	CategoryUC     *usecase.CategoryUseCase
	SupplierUC     *usecase.SupplierUseCase
	WarehouseUC    *usecase.WarehouseUseCase
	StockUC        *stock.AdjustStockUseCase
	CreateSale     *sales.CreateSaleUseCase
	ExportSale     *sales.ExportSaleUseCase
	CreatePurchase *purchases.CreatePurchaseUseCase
	AuthUC         *auth.AuthUseCase
	JWTSecret      string
}

// Router registra las rutas de la API.
//
// RBAC por grupo:
//   - catálogos: lectura para todos los roles, escritura admin/bodeguero
//   - stock y compras: admin/bodeguero
//   - ventas: admin/vendedor (borrado solo admin)
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth: login público, registro solo admin
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	anyRole := RequireRole(entity.RoleAdmin, entity.RoleBodeguero, entity.RoleVendedor)
	warehouseStaff := RequireRole(entity.RoleAdmin, entity.RoleBodeguero)
	salesStaff := RequireRole(entity.RoleAdmin, entity.RoleVendedor)
	adminOnly := RequireRole(entity.RoleAdmin)

	protected.Post("/auth/register", adminOnly, authHandler.Register)

	// Products
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Get("/", anyRole, productHandler.List)
	products.Get("/:id", anyRole, productHandler.GetByID)
	products.Post("/", warehouseStaff, productHandler.Create)
	products.Put("/:id", warehouseStaff, productHandler.Update)
	products.Delete("/:id", adminOnly, productHandler.Delete)

	// Categories
	categories := protected.Group("/categories")
	categoryHandler := NewCategoryHandler(deps.CategoryUC)
	categories.Get("/", anyRole, categoryHandler.List)
	categories.Get("/:id", anyRole, categoryHandler.GetByID)
	categories.Post("/", warehouseStaff, categoryHandler.Create)
	categories.Put("/:id", warehouseStaff, categoryHandler.Update)
	categories.Delete("/:id", adminOnly, categoryHandler.Delete)

	// Suppliers
	suppliers := protected.Group("/suppliers")
	supplierHandler := NewSupplierHandler(deps.SupplierUC)
	suppliers.Get("/", warehouseStaff, supplierHandler.List)
	suppliers.Get("/:id", warehouseStaff, supplierHandler.GetByID)
	suppliers.Post("/", warehouseStaff, supplierHandler.Create)
	suppliers.Put("/:id", warehouseStaff, supplierHandler.Update)
	suppliers.Delete("/:id", adminOnly, supplierHandler.Delete)

	// Warehouses
	warehouses := protected.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	warehouses.Get("/", anyRole, warehouseHandler.List)
	warehouses.Get("/:id", anyRole, warehouseHandler.GetByID)
	warehouses.Post("/", adminOnly, warehouseHandler.Create)
	warehouses.Put("/:id", adminOnly, warehouseHandler.Update)
	warehouses.Delete("/:id", adminOnly, warehouseHandler.Delete)

	// Stock (consulta y ajuste manual)
	stockGroup := protected.Group("/stock")
	stockHandler := NewStockHandler(deps.StockUC)
	stockGroup.Post("/", warehouseStaff, stockHandler.Create)
	stockGroup.Post("/increase", warehouseStaff, stockHandler.Increase)
	stockGroup.Post("/decrease", warehouseStaff, stockHandler.Decrease)
	stockGroup.Get("/:warehouseId", anyRole, stockHandler.ListByWarehouse)
	stockGroup.Get("/:warehouseId/:productId", anyRole, stockHandler.Get)

	// Sales
	salesGroup := protected.Group("/sales")
	saleHandler := NewSaleHandler(deps.CreateSale, deps.ExportSale)
	salesGroup.Post("/", salesStaff, saleHandler.Create)
	salesGroup.Get("/", salesStaff, saleHandler.List)
	salesGroup.Get("/:id", salesStaff, saleHandler.GetByID)
	salesGroup.Get("/:id/receipt", salesStaff, saleHandler.Receipt)
	salesGroup.Get("/:id/xml", salesStaff, saleHandler.XML)
	salesGroup.Patch("/:id/status", salesStaff, saleHandler.UpdateStatus)
	salesGroup.Delete("/:id", adminOnly, saleHandler.Delete)

	// Purchases
	purchasesGroup := protected.Group("/purchases")
	purchaseHandler := NewPurchaseHandler(deps.CreatePurchase)
	purchasesGroup.Post("/", warehouseStaff, purchaseHandler.Create)
	purchasesGroup.Get("/", warehouseStaff, purchaseHandler.List)
	purchasesGroup.Get("/:id", warehouseStaff, purchaseHandler.GetByID)
	purchasesGroup.Patch("/:id/status", warehouseStaff, purchaseHandler.UpdateStatus)
	purchasesGroup.Delete("/:id", adminOnly, purchaseHandler.Delete)
}
