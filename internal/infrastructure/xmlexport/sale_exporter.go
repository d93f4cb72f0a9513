// Package xmlexport serializa ventas como documentos XML para integraciones
// contables externas.
package xmlexport

import (
	"fmt"

	"github.com/beevik/etree"
	"github.com/jortega/erp-inventario/internal/application/sales"
)

// SaleExporter implementa sales.SaleXMLExporter usando etree.
type SaleExporter struct{}

// NewSaleExporter construye el exportador.
func NewSaleExporter() *SaleExporter {
	return &SaleExporter{}
}

var _ sales.SaleXMLExporter = (*SaleExporter)(nil)

// ExportSale genera el documento:
//
//	<venta id="..." estado="...">
//	  <fecha>RFC3339</fecha>
//	  <bodega>...</bodega>
//	  <vendedor>...</vendedor>
//	  <lineas>
//	    <linea posicion="0"> <producto sku="..."/> <cantidad/> <precioUnitario/> <subtotal/> </linea>
//	  </lineas>
//	  <total>...</total>
//	</venta>
func (e *SaleExporter) ExportSale(data *sales.ReceiptData) ([]byte, error) {
	if data == nil || data.Sale == nil {
		return nil, fmt.Errorf("xmlexport: venta vacía")
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("venta")
	root.CreateAttr("id", data.Sale.ID)
	root.CreateAttr("estado", data.Sale.Status)

	root.CreateElement("fecha").SetText(data.Sale.CreatedAt.Format("2006-01-02T15:04:05-07:00"))

	bodega := root.CreateElement("bodega")
	bodega.CreateAttr("id", data.Sale.WarehouseID)
	bodega.SetText(data.WarehouseName)

	vendedor := root.CreateElement("vendedor")
	vendedor.CreateAttr("id", data.Sale.UserID)
	vendedor.SetText(data.SellerName)

	lineas := root.CreateElement("lineas")
	for i, l := range data.Lines {
		linea := lineas.CreateElement("linea")
		linea.CreateAttr("posicion", fmt.Sprintf("%d", i))

		producto := linea.CreateElement("producto")
		producto.CreateAttr("sku", l.SKU)
		producto.SetText(l.ProductName)

		linea.CreateElement("cantidad").SetText(l.Quantity.String())
		linea.CreateElement("precioUnitario").SetText(l.UnitPrice.StringFixed(2))
		linea.CreateElement("subtotal").SetText(l.Subtotal.StringFixed(2))
	}

	root.CreateElement("total").SetText(data.Sale.Total.StringFixed(2))

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("xmlexport: serializar venta: %w", err)
	}
	return out, nil
}
