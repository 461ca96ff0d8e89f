package handler

import (
	"net/http"

	"b2bportal/internal/dto"
	"b2bportal/internal/service"

	"github.com/gin-gonic/gin"
)

// OrdersHandler serves the staff order surface.
type OrdersHandler struct {
	orders service.OrderService
	export service.ExportService
}

func NewOrdersHandler(orders service.OrderService, export service.ExportService) *OrdersHandler {
	return &OrdersHandler{orders: orders, export: export}
}

// NewCount godoc
// @Summary      Number of orders waiting in status New
// @Tags         staff
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.NewOrderCountResponse
// @Failure      403 {object} apierror.APIError
// @Router       /v1/staff/orders/new-count [get]
func (h *OrdersHandler) NewCount(c *gin.Context) {
	n, err := h.orders.NewOrderCount(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewOrderCountResponse{Count: n})
}

// List godoc
// @Summary      List orders
// @Tags         staff
// @Produce      json
// @Security     BearerAuth
// @Param        status query string false "New, Done or all" default(New)
// @Param        page   query int    false "Page"             default(1)
// @Param        limit  query int    false "Page size"        default(50)
// @Success      200 {object} dto.OrderListResponse
// @Router       /v1/staff/orders [get]
func (h *OrdersHandler) List(c *gin.Context) {
	var filter dto.OrderFilter
	if !bindForm(c, &filter) {
		return
	}
	resp, err := h.orders.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Order detail with line totals
// @Tags         staff
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Order ID"
// @Success      200 {object} dto.OrderResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/staff/orders/{id} [get]
func (h *OrdersHandler) Get(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// MarkDone godoc
// @Summary      Mark an order as handled
// @Tags         staff
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Order ID"
// @Success      200 {object} dto.OrderResponse
// @Failure      404 {object} apierror.APIError
// @Failure      409 {object} apierror.APIError
// @Router       /v1/staff/orders/{id}/done [patch]
func (h *OrdersHandler) MarkDone(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.orders.MarkDone(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Export godoc
// @Summary      Rewrite the purchase sheet with open-order demand
// @Tags         staff
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.ExportResponse
// @Failure      503 {object} apierror.APIError
// @Router       /v1/staff/orders/export [post]
func (h *OrdersHandler) Export(c *gin.Context) {
	resp, err := h.export.ExportPurchases(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
