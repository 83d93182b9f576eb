package opsserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	ordershttpmapper "github.com/Apurer/reseller-ops-api/internal/domains/orders/adapters/http/mapper"
	ordersports "github.com/Apurer/reseller-ops-api/internal/domains/orders/ports"
)

// OrdersAPI wires HTTP transport with the SPEI validation workflow.
type OrdersAPI struct {
	service ordersports.Service
}

func NewOrdersAPI(service ordersports.Service) OrdersAPI {
	return OrdersAPI{service: service}
}

// Get /api/orders
// Lists orders newest first, optionally filtered by status and priority
func (api *OrdersAPI) ListOrders(c *gin.Context) {
	var filter ordershttpmapper.Filter
	if err := c.ShouldBindQuery(&filter); err != nil {
		respondBindingError(c, err)
		return
	}
	orders, err := api.service.List(c.Request.Context(), filter.ToListInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordershttpmapper.FromProjections(orders))
}

// Get /api/orders/summary
func (api *OrdersAPI) Summary(c *gin.Context) {
	summary, err := api.service.Summary(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordershttpmapper.FromSummary(summary))
}

// Get /api/orders/:orderId
func (api *OrdersAPI) GetOrder(c *gin.Context) {
	order, err := api.service.Get(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordershttpmapper.FromProjection(order))
}

// Post /api/orders
// Places an order and routes it into validation
func (api *OrdersAPI) PlaceOrder(c *gin.Context) {
	var payload ordershttpmapper.PlaceOrder
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindingError(c, err)
		return
	}
	order, err := api.service.PlaceOrder(c.Request.Context(), ordershttpmapper.ToPlaceOrderInput(payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ordershttpmapper.FromProjection(order))
}

// Post /api/orders/:orderId/approve
func (api *OrdersAPI) ApproveOrder(c *gin.Context) {
	payload, ok := bindDecision(c)
	if !ok {
		return
	}
	order, err := api.service.Approve(c.Request.Context(), ordershttpmapper.ToDecisionInput(c.Param("orderId"), payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordershttpmapper.FromProjection(order))
}

// Post /api/orders/:orderId/reject
func (api *OrdersAPI) RejectOrder(c *gin.Context) {
	payload, ok := bindDecision(c)
	if !ok {
		return
	}
	order, err := api.service.Reject(c.Request.Context(), ordershttpmapper.ToDecisionInput(c.Param("orderId"), payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordershttpmapper.FromProjection(order))
}

// bindDecision accepts an empty body as an empty decision.
func bindDecision(c *gin.Context) (ordershttpmapper.DecisionRequest, bool) {
	var payload ordershttpmapper.DecisionRequest
	if c.Request.ContentLength == 0 {
		return payload, true
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindingError(c, err)
		return payload, false
	}
	return payload, true
}
