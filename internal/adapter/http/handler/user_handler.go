package handler

import (
	"context"

	"marketplace-backoffice/internal/adapter/http/dto"
	"marketplace-backoffice/internal/adapter/http/middleware"
	"marketplace-backoffice/internal/core/domain"
	"marketplace-backoffice/internal/core/ports"
	"marketplace-backoffice/pkg/apperror"
	"marketplace-backoffice/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UserHandler handles administrative account endpoints.
type UserHandler struct {
	userAdminSvc ports.UserAdminService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userAdminSvc ports.UserAdminService) *UserHandler {
	return &UserHandler{userAdminSvc: userAdminSvc}
}

// Block handles PUT /api/v1/users/:id/block.
func (h *UserHandler) Block(c *gin.Context) {
	h.moveStatus(c, h.userAdminSvc.Block)
}

// Unblock handles PUT /api/v1/users/:id/unblock.
func (h *UserHandler) Unblock(c *gin.Context) {
	h.moveStatus(c, h.userAdminSvc.Unblock)
}

func (h *UserHandler) moveStatus(c *gin.Context, op func(context.Context, ports.Actor, uuid.UUID, *string) (*domain.User, error)) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.ErrMissingField("id"))
		return
	}

	// The reason body is optional entirely.
	var req dto.BlockUserRequest
	_ = c.ShouldBindJSON(&req)
	dto.SanitizeStruct(&req)

	user, err := op(c.Request.Context(), actor, userID, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toUserResponse(user))
}

// Delete handles DELETE /api/v1/users/:id.
func (h *UserHandler) Delete(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.ErrMissingField("id"))
		return
	}

	if err := h.userAdminSvc.Delete(c.Request.Context(), actor, userID); err != nil {
		response.Error(c, err)
		return
	}

	response.OKWithMessage(c, "account deleted", nil)
}

// ResetPassword handles POST /api/v1/users/:id/reset-password.
func (h *UserHandler) ResetPassword(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.ErrMissingField("id"))
		return
	}

	if err := h.userAdminSvc.ResetPassword(c.Request.Context(), actor, userID); err != nil {
		response.Error(c, err)
		return
	}

	response.OKWithMessage(c, "password reset", nil)
}
