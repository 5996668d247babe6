package handler

import (
	"marketplace-backoffice/internal/adapter/http/dto"
	"marketplace-backoffice/internal/adapter/http/middleware"
	"marketplace-backoffice/internal/core/domain"
	"marketplace-backoffice/internal/core/ports"
	"marketplace-backoffice/pkg/apperror"
	"marketplace-backoffice/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OrderHandler handles order workflow endpoints.
type OrderHandler struct {
	orderSvc ports.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderSvc ports.OrderService) *OrderHandler {
	return &OrderHandler{orderSvc: orderSvc}
}

// Create handles POST /api/v1/orders.
func (h *OrderHandler) Create(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		response.Error(c, apperror.ErrMissingField("product_id"))
		return
	}

	order, err := h.orderSvc.Create(c.Request.Context(), actor, productID, req.Quantity)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toOrderResponse(order))
}

// Advance handles PUT /api/v1/orders/:id/advance.
func (h *OrderHandler) Advance(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.ErrMissingField("id"))
		return
	}

	order, err := h.orderSvc.Advance(c.Request.Context(), actor, orderID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toOrderResponse(order))
}

// Approve handles PUT /api/v1/orders/:id/approve.
func (h *OrderHandler) Approve(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.ErrMissingField("id"))
		return
	}

	// The notes body is optional entirely.
	var req dto.ApproveOrderRequest
	_ = c.ShouldBindJSON(&req)

	order, err := h.orderSvc.Approve(c.Request.Context(), actor, orderID, req.Notes)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toOrderResponse(order))
}

// Reject handles PUT /api/v1/orders/:id/reject.
func (h *OrderHandler) Reject(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.ErrMissingField("id"))
		return
	}

	var req dto.RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.ErrMissingField("reason"))
		return
	}
	dto.SanitizeStruct(&req)

	order, err := h.orderSvc.Reject(c.Request.Context(), actor, orderID, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toOrderResponse(order))
}

// List handles GET /api/v1/orders.
func (h *OrderHandler) List(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	page, pageSize := pageQuery(c)
	params := ports.OrderListParams{Page: page, PageSize: pageSize}
	if s := c.Query("status"); s != "" {
		status := domain.OrderStatus(s)
		params.Status = &status
	}

	orders, total, err := h.orderSvc.List(c.Request.Context(), actor, params)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		items = append(items, toOrderResponse(&orders[i]))
	}

	response.OK(c, dto.ListResponse[dto.OrderResponse]{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	})
}
