package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace-backoffice/internal/core/domain"
	"marketplace-backoffice/internal/core/ports"
	"marketplace-backoffice/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PayoutServiceImpl implements ports.PayoutService.
type PayoutServiceImpl struct {
	payoutRepo     ports.PayoutRepository
	transitionRepo ports.TransitionRepository
	notifier       ports.NoticePublisher
	log            zerolog.Logger
}

// NewPayoutService creates a new PayoutServiceImpl.
func NewPayoutService(
	payoutRepo ports.PayoutRepository,
	transitionRepo ports.TransitionRepository,
	notifier ports.NoticePublisher,
	log zerolog.Logger,
) *PayoutServiceImpl {
	return &PayoutServiceImpl{
		payoutRepo:     payoutRepo,
		transitionRepo: transitionRepo,
		notifier:       notifier,
		log:            log,
	}
}

// MarkPaid settles a pending payout with the given amount and mode.
func (s *PayoutServiceImpl) MarkPaid(ctx context.Context, actor ports.Actor, payoutID uuid.UUID, amount int64, mode domain.PayoutMode) (*domain.Payout, error) {
	if !domain.Can(actor.Role, domain.ActionMarkPayoutPaid) {
		return nil, apperror.ErrInsufficientRole()
	}
	if amount <= 0 {
		return nil, apperror.Validation("amount must be positive")
	}
	switch mode {
	case domain.PayoutModeBankTransfer, domain.PayoutModeUPI, domain.PayoutModeManual:
	default:
		return nil, apperror.Validation("unknown payout mode")
	}

	payout, err := s.payoutRepo.GetByID(ctx, payoutID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get payout: %w", err))
	}
	if payout == nil {
		return nil, apperror.ErrNotFound("payout")
	}

	stepErr := domain.StepPayout(payout.Status, domain.PayoutStatusPaid, actor.Role)
	switch {
	case errors.Is(stepErr, domain.ErrInvalidTransition):
		return nil, apperror.ErrInvalidTransition("payout", string(payout.Status), string(domain.PayoutStatusPaid))
	case errors.Is(stepErr, domain.ErrInsufficientRole):
		return nil, apperror.ErrInsufficientRole()
	}

	paidAt := time.Now().UTC()
	swapped, err := s.payoutRepo.MarkPaid(ctx, payoutID, amount, mode, paidAt)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("mark payout paid: %w", err))
	}
	if !swapped {
		current, err := s.payoutRepo.GetByID(ctx, payoutID)
		if err != nil || current == nil {
			return nil, apperror.ErrInvalidTransition("payout", "unknown", string(domain.PayoutStatusPaid))
		}
		return nil, apperror.ErrInvalidTransition("payout", string(current.Status), string(domain.PayoutStatusPaid))
	}

	rec := domain.NewTransitionRecord(domain.EntityPayout, payoutID, string(domain.PayoutStatusPending), string(domain.PayoutStatusPaid), actor.ID, actor.Role, nil)
	if err := s.transitionRepo.Append(ctx, rec); err != nil {
		s.log.Warn().Err(err).Str("payout_id", payoutID.String()).Msg("transition append failed")
	}

	s.notify(ctx, domain.NewNotice(domain.NoticePayoutUpdated, domain.EntityPayout, payoutID))

	payout.Status = domain.PayoutStatusPaid
	payout.PaidAmount = amount
	payout.Mode = &mode
	payout.PaidAt = &paidAt
	return payout, nil
}

// List returns payouts visible to the actor. Suppliers only see their
// own payouts.
func (s *PayoutServiceImpl) List(ctx context.Context, actor ports.Actor, params ports.PayoutListParams) ([]domain.Payout, int64, error) {
	if actor.Role == domain.RoleSupplier {
		supplierID := actor.ID
		params.SupplierID = &supplierID
	}
	normalizePage(&params.Page, &params.PageSize)

	payouts, total, err := s.payoutRepo.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.ErrDatabaseError(fmt.Errorf("list payouts: %w", err))
	}
	return payouts, total, nil
}

func (s *PayoutServiceImpl) notify(ctx context.Context, notice domain.Notice) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, notice); err != nil {
		s.log.Warn().Err(err).Str("kind", string(notice.Kind)).Msg("notice publish failed")
	}
}
