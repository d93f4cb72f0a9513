package xmlexport_test

import (
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jortega/erp-inventario/internal/application/sales"
	"github.com/jortega/erp-inventario/internal/domain/entity"
	"github.com/jortega/erp-inventario/internal/infrastructure/xmlexport"
)

func TestExportSale_DocumentoCompleto(t *testing.T) {
	exporter := xmlexport.NewSaleExporter()

	data := &sales.ReceiptData{
		Sale: &entity.Sale{
			ID:          "venta-001",
			UserID:      "user-1",
			WarehouseID: "wh-1",
			Status:      entity.StatusCompletada,
			Total:       decimal.NewFromInt(3075),
			CreatedAt:   time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC),
		},
		WarehouseName: "Bodega Central",
		SellerName:    "Ana Vendedora",
		Lines: []sales.ReceiptLine{
			{ProductName: "Laptop", SKU: "LAP-01", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(1500), Subtotal: decimal.NewFromInt(3000)},
			{ProductName: "Mouse", SKU: "MOU-01", Quantity: decimal.NewFromInt(3), UnitPrice: decimal.NewFromInt(25), Subtotal: decimal.NewFromInt(75)},
		},
	}

	out, err := exporter.ExportSale(data)
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(out), "la salida debe ser XML válido")

	root := doc.Root()
	require.NotNil(t, root)
	assert.Equal(t, "venta", root.Tag)
	assert.Equal(t, "venta-001", root.SelectAttrValue("id", ""))
	assert.Equal(t, entity.StatusCompletada, root.SelectAttrValue("estado", ""))

	assert.Equal(t, "Bodega Central", root.SelectElement("bodega").Text())
	assert.Equal(t, "Ana Vendedora", root.SelectElement("vendedor").Text())
	assert.Equal(t, "3075.00", root.SelectElement("total").Text())

	lineas := root.SelectElement("lineas").SelectElements("linea")
	require.Len(t, lineas, 2)

	// Las líneas salen en orden de inserción
	assert.Equal(t, "0", lineas[0].SelectAttrValue("posicion", ""))
	assert.Equal(t, "Laptop", lineas[0].SelectElement("producto").Text())
	assert.Equal(t, "LAP-01", lineas[0].SelectElement("producto").SelectAttrValue("sku", ""))
	assert.Equal(t, "2", lineas[0].SelectElement("cantidad").Text())
	assert.Equal(t, "3000.00", lineas[0].SelectElement("subtotal").Text())

	assert.Equal(t, "1", lineas[1].SelectAttrValue("posicion", ""))
	assert.Equal(t, "Mouse", lineas[1].SelectElement("producto").Text())
}

func TestExportSale_VentaVacia_RetornaError(t *testing.T) {
	exporter := xmlexport.NewSaleExporter()

	_, err := exporter.ExportSale(nil)
	assert.Error(t, err)

	_, err = exporter.ExportSale(&sales.ReceiptData{})
	assert.Error(t, err)
}
