package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jortega/erp-inventario/internal/application/auth"
	"github.com/jortega/erp-inventario/internal/application/purchases"
	"github.com/jortega/erp-inventario/internal/application/sales"
	"github.com/jortega/erp-inventario/internal/application/stock"
	"github.com/jortega/erp-inventario/internal/application/usecase"
	infrapdf "github.com/jortega/erp-inventario/internal/infrastructure/pdf"
	"github.com/jortega/erp-inventario/internal/infrastructure/postgres"
	"github.com/jortega/erp-inventario/internal/infrastructure/xmlexport"
	httpRouter "github.com/jortega/erp-inventario/internal/interfaces/http"
	"github.com/jortega/erp-inventario/pkg/config"
	"github.com/jortega/erp-inventario/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	supplierRepo := postgres.NewSupplierRepository(pool)
	warehouseRepo := postgres.NewWarehouseRepository(pool)
	stockRepo := postgres.NewStockRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool)
	purchaseRepo := postgres.NewPurchaseRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	productUC := usecase.NewProductUseCase(productRepo, categoryRepo)
	categoryUC := usecase.NewCategoryUseCase(categoryRepo)
	supplierUC := usecase.NewSupplierUseCase(supplierRepo)
	warehouseUC := usecase.NewWarehouseUseCase(warehouseRepo)

	stockUC := stock.NewAdjustStockUseCase(txRunner, stockRepo, productRepo, warehouseRepo)
	createSaleUC := sales.NewCreateSaleUseCase(
		txRunner, saleRepo, productRepo, warehouseRepo, cfg.Sales.DefaultWarehouseID,
	)
	createPurchaseUC := purchases.NewCreatePurchaseUseCase(
		txRunner, purchaseRepo, productRepo, supplierRepo, warehouseRepo, cfg.Sales.DefaultWarehouseID,
	)

	// Comprobantes: PDF (Maroto) y XML (etree)
	receiptGen := infrapdf.NewReceiptGenerator(cfg.App.Name)
	xmlExporter := xmlexport.NewSaleExporter()
	exportSaleUC := sales.NewExportSaleUseCase(
		saleRepo, productRepo, warehouseRepo, userRepo, receiptGen, xmlExporter,
	)

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    cfg.App.Name,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:      productUC,
		CategoryUC:     categoryUC,
		SupplierUC:     supplierUC,
		WarehouseUC:    warehouseUC,
		StockUC:        stockUC,
		CreateSale:     createSaleUC,
		ExportSale:     exportSaleUC,
		CreatePurchase: createPurchaseUC,
		AuthUC:         authUC,
		JWTSecret:      cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
