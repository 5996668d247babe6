package service

import (
	"context"
	"errors"
	"fmt"

	"marketplace-backoffice/internal/core/domain"
	"marketplace-backoffice/internal/core/ports"
	"marketplace-backoffice/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// UserAdminServiceImpl implements ports.UserAdminService.
type UserAdminServiceImpl struct {
	userRepo       ports.UserRepository
	hashSvc        ports.HashService
	transitionRepo ports.TransitionRepository
	log            zerolog.Logger
}

// NewUserAdminService creates a new UserAdminServiceImpl.
func NewUserAdminService(
	userRepo ports.UserRepository,
	hashSvc ports.HashService,
	transitionRepo ports.TransitionRepository,
	log zerolog.Logger,
) *UserAdminServiceImpl {
	return &UserAdminServiceImpl{
		userRepo:       userRepo,
		hashSvc:        hashSvc,
		transitionRepo: transitionRepo,
		log:            log,
	}
}

// Block moves an active account to blocked.
func (s *UserAdminServiceImpl) Block(ctx context.Context, actor ports.Actor, userID uuid.UUID, reason *string) (*domain.User, error) {
	return s.moveStatus(ctx, actor, userID, domain.UserStatusBlocked, reason)
}

// Unblock moves a blocked account back to active.
func (s *UserAdminServiceImpl) Unblock(ctx context.Context, actor ports.Actor, userID uuid.UUID, reason *string) (*domain.User, error) {
	return s.moveStatus(ctx, actor, userID, domain.UserStatusActive, reason)
}

func (s *UserAdminServiceImpl) moveStatus(ctx context.Context, actor ports.Actor, userID uuid.UUID, to domain.UserStatus, reason *string) (*domain.User, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	stepErr := domain.StepUser(user.Status, to, actor.Role)
	switch {
	case errors.Is(stepErr, domain.ErrInvalidTransition):
		return nil, apperror.ErrInvalidTransition("user", string(user.Status), string(to))
	case errors.Is(stepErr, domain.ErrInsufficientRole):
		return nil, apperror.ErrInsufficientRole()
	}

	swapped, err := s.userRepo.UpdateStatus(ctx, userID, user.Status, to, reason)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("update user status: %w", err))
	}
	if !swapped {
		current, err := s.userRepo.GetByID(ctx, userID)
		if err != nil || current == nil {
			return nil, apperror.ErrInvalidTransition("user", "unknown", string(to))
		}
		return nil, apperror.ErrInvalidTransition("user", string(current.Status), string(to))
	}

	s.record(ctx, userID, user.Status, to, actor, reason)

	user.Status = to
	if reason != nil {
		user.StatusReason = reason
	}
	return user, nil
}

// Delete hard-removes a non-active account. Active accounts must be
// blocked first.
func (s *UserAdminServiceImpl) Delete(ctx context.Context, actor ports.Actor, userID uuid.UUID) error {
	if !domain.Can(actor.Role, domain.ActionDeleteUser) {
		return apperror.ErrInsufficientRole()
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	if !user.IsDeletable() {
		return apperror.Validation("active accounts cannot be deleted")
	}

	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("delete user: %w", err))
	}

	s.log.Info().
		Str("user_id", userID.String()).
		Str("actor_id", actor.ID.String()).
		Msg("account deleted")
	return nil
}

// ResetPassword replaces the credential with the account's phone
// number and forces a password change on next login.
func (s *UserAdminServiceImpl) ResetPassword(ctx context.Context, actor ports.Actor, userID uuid.UUID) error {
	if !domain.Can(actor.Role, domain.ActionResetPassword) {
		return apperror.ErrInsufficientRole()
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}

	hash, err := s.hashSvc.Hash(user.Phone)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("hash reset credential: %w", err))
	}

	if err := s.userRepo.ResetCredential(ctx, userID, hash, true); err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("reset credential: %w", err))
	}

	s.log.Info().
		Str("user_id", userID.String()).
		Str("actor_id", actor.ID.String()).
		Msg("password reset")
	return nil
}

func (s *UserAdminServiceImpl) getUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get user: %w", err))
	}
	if user == nil {
		return nil, apperror.ErrNotFound("user")
	}
	return user, nil
}

func (s *UserAdminServiceImpl) record(ctx context.Context, id uuid.UUID, from, to domain.UserStatus, actor ports.Actor, reason *string) {
	rec := domain.NewTransitionRecord(domain.EntityUser, id, string(from), string(to), actor.ID, actor.Role, reason)
	if err := s.transitionRepo.Append(ctx, rec); err != nil {
		s.log.Warn().Err(err).Str("user_id", id.String()).Msg("transition append failed")
	}
}
