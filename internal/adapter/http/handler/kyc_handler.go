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

// KYCHandler handles KYC workflow endpoints.
type KYCHandler struct {
	kycSvc ports.KYCService
}

// NewKYCHandler creates a new KYCHandler.
func NewKYCHandler(kycSvc ports.KYCService) *KYCHandler {
	return &KYCHandler{kycSvc: kycSvc}
}

// Submit handles POST /api/v1/kyc.
func (h *KYCHandler) Submit(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.SubmitKYCRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.ErrMissingField("documents"))
		return
	}

	sub, err := h.kycSvc.Submit(c.Request.Context(), actor, req.Documents)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toKYCResponse(sub))
}

// Approve handles PUT /api/v1/kyc/:id/approve.
func (h *KYCHandler) Approve(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	submissionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.ErrMissingField("id"))
		return
	}

	// Body is optional: suppliers are approved without a plan. The
	// service enforces that sellers carry one.
	var req dto.ApproveKYCRequest
	_ = c.ShouldBindJSON(&req)

	var plan *domain.Plan
	if req.Plan != nil {
		p := domain.Plan(*req.Plan)
		plan = &p
	}

	sub, err := h.kycSvc.Approve(c.Request.Context(), actor, submissionID, plan)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toKYCResponse(sub))
}

// Reject handles PUT /api/v1/kyc/:id/reject.
func (h *KYCHandler) Reject(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	submissionID, err := uuid.Parse(c.Param("id"))
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

	sub, err := h.kycSvc.Reject(c.Request.Context(), actor, submissionID, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toKYCResponse(sub))
}

// List handles GET /api/v1/kyc.
func (h *KYCHandler) List(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	page, pageSize := pageQuery(c)
	params := ports.KYCListParams{Page: page, PageSize: pageSize}
	if s := c.Query("status"); s != "" {
		status := domain.KYCStatus(s)
		params.Status = &status
	}

	subs, total, err := h.kycSvc.List(c.Request.Context(), actor, params)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.KYCResponse, 0, len(subs))
	for i := range subs {
		items = append(items, toKYCResponse(&subs[i]))
	}

	response.OK(c, dto.ListResponse[dto.KYCResponse]{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	})
}
