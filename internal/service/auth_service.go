package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"marketplace-backoffice/internal/core/domain"
	"marketplace-backoffice/internal/core/ports"
	"marketplace-backoffice/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AuthServiceImpl implements ports.AuthService.
type AuthServiceImpl struct {
	userRepo ports.UserRepository
	hashSvc  ports.HashService
	tokenSvc ports.TokenService
	notifier ports.NoticePublisher
	log      zerolog.Logger
}

// NewAuthService creates a new AuthServiceImpl.
func NewAuthService(
	userRepo ports.UserRepository,
	hashSvc ports.HashService,
	tokenSvc ports.TokenService,
	notifier ports.NoticePublisher,
	log zerolog.Logger,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		userRepo: userRepo,
		hashSvc:  hashSvc,
		tokenSvc: tokenSvc,
		notifier: notifier,
		log:      log,
	}
}

// Register creates a seller or supplier account in pending state.
// Admin accounts are provisioned out of band, never through this path.
func (s *AuthServiceImpl) Register(ctx context.Context, req ports.RegisterRequest) (*domain.User, error) {
	if req.Role != domain.RoleSeller && req.Role != domain.RoleSupplier {
		return nil, apperror.Validation("role must be seller or supplier")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("check email: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrDuplicateSubmission("user")
	}

	hash, err := s.hashSvc.Hash(req.Password)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("hash password: %w", err))
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New(),
		Name:         req.Name,
		Email:        email,
		Phone:        req.Phone,
		PasswordHash: hash,
		Role:         req.Role,
		Status:       domain.UserStatusPending,
		KYCStatus:    domain.KYCStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("create user: %w", err))
	}

	if user.Role == domain.RoleSeller {
		s.notify(ctx, domain.NewNotice(domain.NoticeNewSellerRegistered, domain.EntityUser, user.ID))
	}

	s.log.Info().
		Str("user_id", user.ID.String()).
		Str("role", string(user.Role)).
		Msg("account registered")
	return user, nil
}

// Login verifies credentials and issues a JWT.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (string, time.Time, *domain.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", time.Time{}, nil, apperror.ErrDatabaseError(fmt.Errorf("lookup user: %w", err))
	}
	if user == nil {
		return "", time.Time{}, nil, apperror.ErrInvalidCredentials()
	}

	ok, err := s.hashSvc.Verify(password, user.PasswordHash)
	if err != nil {
		return "", time.Time{}, nil, apperror.InternalError(fmt.Errorf("verify password: %w", err))
	}
	if !ok {
		return "", time.Time{}, nil, apperror.ErrInvalidCredentials()
	}

	switch user.Status {
	case domain.UserStatusBlocked:
		return "", time.Time{}, nil, apperror.ErrAccountBlocked()
	case domain.UserStatusRejected:
		return "", time.Time{}, nil, apperror.ErrAccountNotActive()
	}

	token, expiry, err := s.tokenSvc.Generate(user.ID, user.Role)
	if err != nil {
		return "", time.Time{}, nil, apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}

	return token, expiry, user, nil
}

func (s *AuthServiceImpl) notify(ctx context.Context, n domain.Notice) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, n); err != nil {
		s.log.Warn().Err(err).Str("kind", string(n.Kind)).Msg("notice publish failed")
	}
}
