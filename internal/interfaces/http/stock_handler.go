package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jortega/erp-inventario/internal/application/dto"
	"github.com/jortega/erp-inventario/internal/application/stock"
	"github.com/jortega/erp-inventario/internal/domain/entity"
)

// StockHandler maneja consulta y ajuste manual de stock (protegido).
type StockHandler struct {
	uc *stock.AdjustStockUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *stock.AdjustStockUseCase) *StockHandler {
	return &StockHandler{uc: uc}
}

// Create godoc
// @Summary      Crear fila de stock (alta inicial)
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateStockRequest  true  "product_id, warehouse_id, quantity"
// @Success      201   {object}  dto.StockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock [post]
func (h *StockHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.CreateStock(c.Context(), in.ProductID, in.WarehouseID, in.Quantity)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toStockResponse(out))
}

// Increase godoc
// @Summary      Incrementar stock
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockAdjustRequest  true  "product_id, warehouse_id, amount"
// @Success      200   {object}  dto.StockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stock/increase [post]
func (h *StockHandler) Increase(c *fiber.Ctx) error {
	var in dto.StockAdjustRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Increase(c.Context(), in.ProductID, in.WarehouseID, in.Amount)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(toStockResponse(out))
}

// Decrease godoc
// @Summary      Decrementar stock
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockAdjustRequest  true  "product_id, warehouse_id, amount"
// @Success      200   {object}  dto.StockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/decrease [post]
func (h *StockHandler) Decrease(c *fiber.Ctx) error {
	var in dto.StockAdjustRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Decrease(c.Context(), in.ProductID, in.WarehouseID, in.Amount)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(toStockResponse(out))
}

// Get godoc
// @Summary      Consultar stock de un producto en una bodega
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        warehouseId  path  string  true  "ID de la bodega"
// @Param        productId    path  string  true  "ID del producto"
// @Success      200  {object}  dto.StockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/{warehouseId}/{productId} [get]
func (h *StockHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.Context(), c.Params("productId"), c.Params("warehouseId"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(toStockResponse(out))
}

// ListByWarehouse godoc
// @Summary      Listar stock de una bodega
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        warehouseId  path   string  true  "ID de la bodega"
// @Param        limit        query  int  false  "Límite"   default(20)
// @Param        offset       query  int  false  "Offset"   default(0)
// @Success      200  {array}  dto.StockResponse
// @Router       /api/stock/{warehouseId} [get]
func (h *StockHandler) ListByWarehouse(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	list, err := h.uc.ListByWarehouse(c.Context(), c.Params("warehouseId"), limit, offset)
	if err != nil {
		return errorJSON(c, err)
	}
	out := make([]dto.StockResponse, 0, len(list))
	for _, s := range list {
		out = append(out, toStockResponse(s))
	}
	return c.JSON(out)
}

func toStockResponse(s *entity.Stock) dto.StockResponse {
	return dto.StockResponse{
		ProductID:   s.ProductID,
		WarehouseID: s.WarehouseID,
		Quantity:    s.Quantity,
		UpdatedAt:   s.UpdatedAt.Format(time.RFC3339),
	}
}
