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

// ProductHandler handles product workflow endpoints.
type ProductHandler struct {
	productSvc ports.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(productSvc ports.ProductService) *ProductHandler {
	return &ProductHandler{productSvc: productSvc}
}

// Submit handles POST /api/v1/products.
func (h *ProductHandler) Submit(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.SubmitProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	product, err := h.productSvc.Submit(c.Request.Context(), actor, ports.SubmitProductRequest{
		Name:        req.Name,
		SKU:         req.SKU,
		Description: req.Description,
		BasePrice:   req.BasePrice,
		GSTRate:     req.GSTRate,
		Stock:       req.Stock,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toProductResponse(product))
}

// Approve handles PUT /api/v1/products/:id/approve.
func (h *ProductHandler) Approve(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.ErrMissingField("id"))
		return
	}

	var req dto.ApproveProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	if req.Margin == nil {
		response.Error(c, apperror.ErrMissingField("margin"))
		return
	}

	product, err := h.productSvc.Approve(c.Request.Context(), actor, productID, *req.Margin)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toProductResponse(product))
}

// Reject handles PUT /api/v1/products/:id/reject.
func (h *ProductHandler) Reject(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
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

	product, err := h.productSvc.Reject(c.Request.Context(), actor, productID, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toProductResponse(product))
}

// List handles GET /api/v1/products.
func (h *ProductHandler) List(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	page, pageSize := pageQuery(c)
	params := ports.ProductListParams{Page: page, PageSize: pageSize}
	if s := c.Query("status"); s != "" {
		status := domain.ProductStatus(s)
		params.Status = &status
	}

	products, total, err := h.productSvc.List(c.Request.Context(), actor, params)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, toProductResponse(&products[i]))
	}

	response.OK(c, dto.ListResponse[dto.ProductResponse]{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	})
}
