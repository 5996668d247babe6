package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"marketplace-backoffice/internal/core/domain"
	"marketplace-backoffice/internal/core/ports"
	"marketplace-backoffice/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// KYCServiceImpl implements ports.KYCService.
type KYCServiceImpl struct {
	kycRepo        ports.KYCRepository
	userRepo       ports.UserRepository
	transitionRepo ports.TransitionRepository
	tx             ports.Transactor
	notifier       ports.NoticePublisher
	log            zerolog.Logger
}

// NewKYCService creates a new KYCServiceImpl.
func NewKYCService(
	kycRepo ports.KYCRepository,
	userRepo ports.UserRepository,
	transitionRepo ports.TransitionRepository,
	tx ports.Transactor,
	notifier ports.NoticePublisher,
	log zerolog.Logger,
) *KYCServiceImpl {
	return &KYCServiceImpl{
		kycRepo:        kycRepo,
		userRepo:       userRepo,
		transitionRepo: transitionRepo,
		tx:             tx,
		notifier:       notifier,
		log:            log,
	}
}

// Submit records the actor's KYC documents. One submission per user;
// a repeat submission while one exists is a conflict.
func (s *KYCServiceImpl) Submit(ctx context.Context, actor ports.Actor, documents json.RawMessage) (*domain.KYCSubmission, error) {
	if !domain.Can(actor.Role, domain.ActionSubmitKYC) {
		return nil, apperror.ErrInsufficientRole()
	}
	if len(documents) == 0 {
		return nil, apperror.ErrMissingField("documents")
	}

	existing, err := s.kycRepo.GetByUserID(ctx, actor.ID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("check existing submission: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrDuplicateSubmission("kyc submission")
	}

	now := time.Now().UTC()
	sub := &domain.KYCSubmission{
		ID:        uuid.New(),
		UserID:    actor.ID,
		Documents: documents,
		Status:    domain.KYCStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.kycRepo.Create(ctx, sub); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("create submission: %w", err))
	}
	return sub, nil
}

// Approve reviews a pending submission. Sellers must be assigned a
// plan at approval; the user's KYC status and account status move in
// the same operation (pending accounts activate on KYC approval).
func (s *KYCServiceImpl) Approve(ctx context.Context, actor ports.Actor, submissionID uuid.UUID, plan *domain.Plan) (*domain.KYCSubmission, error) {
	sub, user, err := s.getForReview(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	if err := s.step(sub, domain.KYCStatusApproved, actor.Role); err != nil {
		return nil, err
	}

	if user.Role == domain.RoleSeller {
		if plan == nil {
			return nil, apperror.ErrMissingField("plan")
		}
		if !domain.ValidPlan(*plan) {
			return nil, apperror.Validation("unknown plan")
		}
	} else {
		plan = nil // plans only apply to sellers
	}

	// The review and the user-record updates commit together: an
	// approved submission with a pending user record must not be
	// observable.
	reviewedAt := time.Now().UTC()
	var swapped bool
	err = s.tx.WithinTx(ctx, func(r ports.TxRepos) error {
		var txErr error
		swapped, txErr = r.KYC.Review(ctx, submissionID, domain.KYCStatusApproved, nil, reviewedAt)
		if txErr != nil {
			return fmt.Errorf("review submission: %w", txErr)
		}
		if !swapped {
			return nil
		}
		if _, txErr = r.Users.UpdateKYCStatus(ctx, user.ID, domain.KYCStatusPending, domain.KYCStatusApproved, plan); txErr != nil {
			return fmt.Errorf("update user kyc status: %w", txErr)
		}
		// A pending account activates once its KYC is approved.
		if user.Status == domain.UserStatusPending {
			if _, txErr = r.Users.UpdateStatus(ctx, user.ID, domain.UserStatusPending, domain.UserStatusActive, nil); txErr != nil {
				return fmt.Errorf("activate user: %w", txErr)
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if !swapped {
		return nil, s.staleReview(ctx, submissionID, domain.KYCStatusApproved)
	}

	sub.Status = domain.KYCStatusApproved
	sub.ReviewedAt = &reviewedAt

	s.record(ctx, sub.ID, domain.KYCStatusPending, domain.KYCStatusApproved, actor, nil)
	s.notify(ctx, domain.NewNotice(domain.NoticeKYCApproved, domain.EntityKYC, sub.ID))
	return sub, nil
}

// Reject reviews a pending submission with a mandatory reason.
func (s *KYCServiceImpl) Reject(ctx context.Context, actor ports.Actor, submissionID uuid.UUID, reason string) (*domain.KYCSubmission, error) {
	if reason == "" {
		return nil, apperror.ErrMissingField("reason")
	}

	sub, user, err := s.getForReview(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	if err := s.step(sub, domain.KYCStatusRejected, actor.Role); err != nil {
		return nil, err
	}

	reviewedAt := time.Now().UTC()
	var swapped bool
	err = s.tx.WithinTx(ctx, func(r ports.TxRepos) error {
		var txErr error
		swapped, txErr = r.KYC.Review(ctx, submissionID, domain.KYCStatusRejected, &reason, reviewedAt)
		if txErr != nil {
			return fmt.Errorf("review submission: %w", txErr)
		}
		if !swapped {
			return nil
		}
		if _, txErr = r.Users.UpdateKYCStatus(ctx, user.ID, domain.KYCStatusPending, domain.KYCStatusRejected, nil); txErr != nil {
			return fmt.Errorf("update user kyc status: %w", txErr)
		}
		return nil
	})
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if !swapped {
		return nil, s.staleReview(ctx, submissionID, domain.KYCStatusRejected)
	}

	sub.Status = domain.KYCStatusRejected
	sub.RejectionReason = &reason
	sub.ReviewedAt = &reviewedAt

	s.record(ctx, sub.ID, domain.KYCStatusPending, domain.KYCStatusRejected, actor, &reason)
	s.notify(ctx, domain.NewNotice(domain.NoticeKYCRejected, domain.EntityKYC, sub.ID))
	return sub, nil
}

// List returns KYC submissions. Non-admin actors only see their own.
func (s *KYCServiceImpl) List(ctx context.Context, actor ports.Actor, params ports.KYCListParams) ([]domain.KYCSubmission, int64, error) {
	if !actor.Role.IsAdmin() {
		sub, err := s.kycRepo.GetByUserID(ctx, actor.ID)
		if err != nil {
			return nil, 0, apperror.ErrDatabaseError(fmt.Errorf("get own submission: %w", err))
		}
		if sub == nil {
			return nil, 0, nil
		}
		return []domain.KYCSubmission{*sub}, 1, nil
	}

	normalizePage(&params.Page, &params.PageSize)
	subs, total, err := s.kycRepo.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.ErrDatabaseError(fmt.Errorf("list submissions: %w", err))
	}
	return subs, total, nil
}

func (s *KYCServiceImpl) getForReview(ctx context.Context, id uuid.UUID) (*domain.KYCSubmission, *domain.User, error) {
	sub, err := s.kycRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, apperror.ErrDatabaseError(fmt.Errorf("get submission: %w", err))
	}
	if sub == nil {
		return nil, nil, apperror.ErrNotFound("kyc submission")
	}
	user, err := s.userRepo.GetByID(ctx, sub.UserID)
	if err != nil {
		return nil, nil, apperror.ErrDatabaseError(fmt.Errorf("get submitter: %w", err))
	}
	if user == nil {
		return nil, nil, apperror.ErrNotFound("user")
	}
	return sub, user, nil
}

func (s *KYCServiceImpl) step(sub *domain.KYCSubmission, to domain.KYCStatus, role domain.Role) error {
	err := domain.StepKYC(sub.Status, to, role)
	switch {
	case errors.Is(err, domain.ErrInvalidTransition):
		return apperror.ErrInvalidTransition("kyc submission", string(sub.Status), string(to))
	case errors.Is(err, domain.ErrInsufficientRole):
		return apperror.ErrInsufficientRole()
	}
	return nil
}

func (s *KYCServiceImpl) staleReview(ctx context.Context, id uuid.UUID, to domain.KYCStatus) error {
	current, err := s.kycRepo.GetByID(ctx, id)
	if err != nil || current == nil {
		return apperror.ErrInvalidTransition("kyc submission", "unknown", string(to))
	}
	return apperror.ErrInvalidTransition("kyc submission", string(current.Status), string(to))
}

func (s *KYCServiceImpl) record(ctx context.Context, id uuid.UUID, from, to domain.KYCStatus, actor ports.Actor, reason *string) {
	rec := domain.NewTransitionRecord(domain.EntityKYC, id, string(from), string(to), actor.ID, actor.Role, reason)
	if err := s.transitionRepo.Append(ctx, rec); err != nil {
		s.log.Warn().Err(err).Str("submission_id", id.String()).Msg("transition append failed")
	}
}

func (s *KYCServiceImpl) notify(ctx context.Context, n domain.Notice) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, n); err != nil {
		s.log.Warn().Err(err).Str("kind", string(n.Kind)).Msg("notice publish failed")
	}
}
