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

// PayoutHandler handles payout settlement endpoints.
type PayoutHandler struct {
	payoutSvc ports.PayoutService
}

// NewPayoutHandler creates a new PayoutHandler.
func NewPayoutHandler(payoutSvc ports.PayoutService) *PayoutHandler {
	return &PayoutHandler{payoutSvc: payoutSvc}
}

// MarkPaid handles PUT /api/v1/payouts/:id/pay.
func (h *PayoutHandler) MarkPaid(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	payoutID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.ErrMissingField("id"))
		return
	}

	var req dto.MarkPayoutPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	payout, err := h.payoutSvc.MarkPaid(c.Request.Context(), actor, payoutID, req.Amount, domain.PayoutMode(req.Mode))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toPayoutResponse(payout))
}

// List handles GET /api/v1/payouts.
func (h *PayoutHandler) List(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	page, pageSize := pageQuery(c)
	params := ports.PayoutListParams{Page: page, PageSize: pageSize}
	if s := c.Query("status"); s != "" {
		status := domain.PayoutStatus(s)
		params.Status = &status
	}

	payouts, total, err := h.payoutSvc.List(c.Request.Context(), actor, params)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.PayoutResponse, 0, len(payouts))
	for i := range payouts {
		items = append(items, toPayoutResponse(&payouts[i]))
	}

	response.OK(c, dto.ListResponse[dto.PayoutResponse]{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	})
}
