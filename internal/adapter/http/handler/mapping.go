package handler

import (
	"math"
	"strconv"
	"time"

	"marketplace-backoffice/internal/adapter/http/dto"
	"marketplace-backoffice/internal/core/domain"

	"github.com/gin-gonic/gin"
)

const timeFormat = "2006-01-02T15:04:05Z07:00"

func fmtTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(timeFormat)
	return &s
}

// pageQuery reads and clamps pagination query parameters.
func pageQuery(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

func totalPages(total int64, pageSize int) int {
	return int(math.Ceil(float64(total) / float64(pageSize)))
}

func toUserResponse(u *domain.User) dto.UserResponse {
	resp := dto.UserResponse{
		ID:                 u.ID.String(),
		Name:               u.Name,
		Email:              u.Email,
		Phone:              u.Phone,
		Role:               string(u.Role),
		Status:             string(u.Status),
		KYCStatus:          string(u.KYCStatus),
		StatusReason:       u.StatusReason,
		MustChangePassword: u.MustChangePassword,
		CreatedAt:          u.CreatedAt.Format(timeFormat),
	}
	if u.Plan != nil {
		s := string(*u.Plan)
		resp.Plan = &s
	}
	return resp
}

func toProductResponse(p *domain.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:              p.ID.String(),
		SupplierID:      p.SupplierID.String(),
		Name:            p.Name,
		SKU:             p.SKU,
		Description:     p.Description,
		BasePrice:       p.BasePrice,
		GSTRate:         p.GSTRate,
		Stock:           p.Stock,
		Status:          string(p.Status),
		Margin:          p.Margin,
		FinalPrice:      p.FinalPrice,
		RejectionReason: p.RejectionReason,
		ApprovedAt:      fmtTimePtr(p.ApprovedAt),
		CreatedAt:       p.CreatedAt.Format(timeFormat),
	}
}

func toKYCResponse(k *domain.KYCSubmission) dto.KYCResponse {
	return dto.KYCResponse{
		ID:              k.ID.String(),
		UserID:          k.UserID.String(),
		Documents:       k.Documents,
		Status:          string(k.Status),
		RejectionReason: k.RejectionReason,
		ReviewedAt:      fmtTimePtr(k.ReviewedAt),
		CreatedAt:       k.CreatedAt.Format(timeFormat),
	}
}

func toOrderResponse(o *domain.Order) dto.OrderResponse {
	return dto.OrderResponse{
		ID:              o.ID.String(),
		ProductID:       o.ProductID.String(),
		SellerID:        o.SellerID.String(),
		SupplierID:      o.SupplierID.String(),
		Quantity:        o.Quantity,
		TotalAmount:     o.TotalAmount,
		Status:          string(o.Status),
		AdminNotes:      o.AdminNotes,
		RejectionReason: o.RejectionReason,
		CreatedAt:       o.CreatedAt.Format(timeFormat),
	}
}

func toPayoutResponse(p *domain.Payout) dto.PayoutResponse {
	resp := dto.PayoutResponse{
		ID:            p.ID.String(),
		OrderID:       p.OrderID.String(),
		ProductID:     p.ProductID.String(),
		SupplierID:    p.SupplierID.String(),
		PayableAmount: p.PayableAmount,
		PaidAmount:    p.PaidAmount,
		Status:        string(p.Status),
		PaidAt:        fmtTimePtr(p.PaidAt),
		CreatedAt:     p.CreatedAt.Format(timeFormat),
	}
	if p.Mode != nil {
		s := string(*p.Mode)
		resp.Mode = &s
	}
	return resp
}

func toTransitionResponse(rec *domain.TransitionRecord) dto.TransitionResponse {
	return dto.TransitionResponse{
		ID:         rec.ID.String(),
		EntityType: string(rec.EntityType),
		EntityID:   rec.EntityID.String(),
		FromStatus: rec.FromStatus,
		ToStatus:   rec.ToStatus,
		ActorID:    rec.ActorID.String(),
		ActorRole:  string(rec.ActorRole),
		Reason:     rec.Reason,
		CreatedAt:  rec.CreatedAt.Format(timeFormat),
	}
}
