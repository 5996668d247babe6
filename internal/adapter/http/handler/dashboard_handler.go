package handler

import (
	"marketplace-backoffice/internal/adapter/http/dto"
	"marketplace-backoffice/internal/core/domain"
	"marketplace-backoffice/internal/core/ports"
	"marketplace-backoffice/pkg/apperror"
	"marketplace-backoffice/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DashboardHandler handles admin projection endpoints.
type DashboardHandler struct {
	projectionSvc  ports.ProjectionService
	transitionRepo ports.TransitionRepository
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(projectionSvc ports.ProjectionService, transitionRepo ports.TransitionRepository) *DashboardHandler {
	return &DashboardHandler{projectionSvc: projectionSvc, transitionRepo: transitionRepo}
}

// Summary handles GET /api/v1/dashboard/summary.
func (h *DashboardHandler) Summary(c *gin.Context) {
	summary, err := h.projectionSvc.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, summary)
}

// Transitions handles GET /api/v1/dashboard/transitions/:entity/:id,
// the audit trail of a single entity.
func (h *DashboardHandler) Transitions(c *gin.Context) {
	entityType := domain.EntityType(c.Param("entity"))
	switch entityType {
	case domain.EntityUser, domain.EntityProduct, domain.EntityOrder, domain.EntityKYC, domain.EntityPayout:
	default:
		response.Error(c, apperror.ErrMissingField("entity"))
		return
	}

	entityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.ErrMissingField("id"))
		return
	}

	records, err := h.transitionRepo.ListByEntity(c.Request.Context(), entityType, entityID)
	if err != nil {
		response.Error(c, apperror.ErrDatabaseError(err))
		return
	}

	items := make([]dto.TransitionResponse, 0, len(records))
	for i := range records {
		items = append(items, toTransitionResponse(&records[i]))
	}
	response.OK(c, items)
}
