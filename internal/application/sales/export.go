package sales

import (
	"context"

	"github.com/jortega/erp-inventario/internal/domain"
	"github.com/jortega/erp-inventario/internal/domain/entity"
	"github.com/jortega/erp-inventario/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// ReceiptLine es una línea de venta enriquecida con el nombre del producto,
// lista para renderizar en el comprobante.
type ReceiptLine struct {
	ProductName string
	SKU         string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
}

// ReceiptData reúne todo lo que el comprobante (PDF o XML) necesita.
type ReceiptData struct {
	Sale          *entity.Sale
	WarehouseName string
	SellerName    string
	Lines         []ReceiptLine
}

// ReceiptPDFGenerator genera el comprobante de venta en PDF.
type ReceiptPDFGenerator interface {
	GenerateReceiptPDF(ctx context.Context, data *ReceiptData) ([]byte, error)
}

// SaleXMLExporter serializa la venta como documento XML.
type SaleXMLExporter interface {
	ExportSale(data *ReceiptData) ([]byte, error)
}

// ExportSaleUseCase arma el comprobante de una venta (PDF o XML) a partir de
// la cabecera, sus líneas y los catálogos relacionados.
type ExportSaleUseCase struct {
	saleRepo      repository.SaleRepository
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	userRepo      repository.UserRepository
	pdfGen        ReceiptPDFGenerator
	xmlExporter   SaleXMLExporter
}

// NewExportSaleUseCase construye el caso de uso de exportación.
func NewExportSaleUseCase(
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
	userRepo repository.UserRepository,
	pdfGen ReceiptPDFGenerator,
	xmlExporter SaleXMLExporter,
) *ExportSaleUseCase {
	return &ExportSaleUseCase{
		saleRepo:      saleRepo,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		userRepo:      userRepo,
		pdfGen:        pdfGen,
		xmlExporter:   xmlExporter,
	}
}

// Receipt genera el PDF del comprobante de la venta.
func (uc *ExportSaleUseCase) Receipt(ctx context.Context, saleID string) ([]byte, error) {
	data, err := uc.buildReceiptData(saleID)
	if err != nil {
		return nil, err
	}
	return uc.pdfGen.GenerateReceiptPDF(ctx, data)
}

// XML genera la representación XML de la venta.
func (uc *ExportSaleUseCase) XML(ctx context.Context, saleID string) ([]byte, error) {
	data, err := uc.buildReceiptData(saleID)
	if err != nil {
		return nil, err
	}
	return uc.xmlExporter.ExportSale(data)
}

func (uc *ExportSaleUseCase) buildReceiptData(saleID string) (*ReceiptData, error) {
	sale, err := uc.saleRepo.GetByID(saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	items, err := uc.saleRepo.GetItems(saleID)
	if err != nil {
		return nil, err
	}

	data := &ReceiptData{Sale: sale, Lines: make([]ReceiptLine, 0, len(items))}

	if wh, err := uc.warehouseRepo.GetByID(sale.WarehouseID); err == nil && wh != nil {
		data.WarehouseName = wh.Name
	}
	if seller, err := uc.userRepo.GetByID(sale.UserID); err == nil && seller != nil {
		data.SellerName = seller.Name
	}

	for _, it := range items {
		line := ReceiptLine{
			ProductName: it.ProductID, // fallback si el producto ya no existe
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Subtotal:    it.Subtotal,
		}
		if p, err := uc.productRepo.GetByID(it.ProductID); err == nil && p != nil {
			line.ProductName = p.Name
			line.SKU = p.SKU
		}
		data.Lines = append(data.Lines, line)
	}
	return data, nil
}
