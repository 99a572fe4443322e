package impl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"accounts/internal/domain"
	"accounts/internal/dto"
	"accounts/internal/mail"
	"accounts/internal/observability/metrics"
	"accounts/internal/pagination"
	"accounts/internal/service"
	"accounts/internal/store"
	"accounts/internal/validation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserServiceImpl struct {
	store     *store.Store
	passwords service.PasswordService
	mailer    mail.Mailer
}

func NewUserServiceImpl(st *store.Store, passwords service.PasswordService, mailer mail.Mailer) *UserServiceImpl {
	return &UserServiceImpl{store: st, passwords: passwords, mailer: mailer}
}

// Register creates an inactive account with a fresh activation token and
// dispatches the activation mail inside the same transaction. A mail failure
// rolls the row back so no account ever exists with an unreachable token.
// Any client-supplied inactive hint is ignored.
func (s *UserServiceImpl) Register(ctx context.Context, r dto.RegisterRequest) error {
	result := "success"
	defer func() {
		metrics.RegistrationsTotal.WithLabelValues(result).Inc()
	}()

	var hash string
	if r.Password != "" {
		h, err := s.passwords.Hash(r.Password)
		if err != nil {
			result = "failure"
			return err
		}
		hash = h
	}

	token := uuid.NewString()
	now := time.Now().UTC()

	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		u := &domain.User{
			Username:        r.Username,
			Email:           r.Email,
			Password:        hash,
			Inactive:        true,
			ActivationToken: &token,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := tx.Users().Create(ctx, u); err != nil {
			return err
		}
		if err := s.mailer.SendActivation(ctx, u.Email, token); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrEmailFailure, err)
		}
		return nil
	})
	if err != nil {
		result = "failure"
		// Lost the uniqueness race: the store's constraint decided the winner.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewValidationError(map[string]string{"email": "EMAIL_IN_USE"})
		}
		return err
	}

	slog.Info("user registered", "email", r.Email)
	return nil
}

// Activate consumes the one-time token. A token that never existed and a
// token already consumed are indistinguishable by design.
func (s *UserServiceImpl) Activate(ctx context.Context, token string) error {
	result := "success"
	defer func() {
		metrics.ActivationsTotal.WithLabelValues(result).Inc()
	}()

	u, err := s.store.Users().GetByActivationToken(ctx, token)
	if err != nil {
		result = "failure"
		if errors.Is(err, store.ErrRecordNotFound) {
			return domain.ErrInvalidActivationToken
		}
		return err
	}

	if err := s.store.Users().ClearActivation(ctx, u.ID); err != nil {
		result = "failure"
		return err
	}

	slog.Info("account activated", "user_id", u.ID)
	return nil
}

// Update applies profile fields to the target account. Only the owner may
// update; there is no role or admin override. Ownership is checked before
// the patch, so an unauthorized caller gets forbidden regardless of body.
func (s *UserServiceImpl) Update(ctx context.Context, callerID, targetID uint, r dto.UserUpdateRequest) error {
	if callerID == 0 || callerID != targetID {
		return domain.ErrUnauthorizedUserUpdate
	}
	if fields := validation.UserUpdate(r); fields != nil {
		return domain.NewValidationError(fields)
	}
	return s.store.Users().UpdateUsername(ctx, targetID, r.Username)
}

// List returns a page of active accounts. The caller's own row is excluded
// when excludeID is set, so an authenticated user never sees themself.
func (s *UserServiceImpl) List(ctx context.Context, page pagination.Page, excludeID uint) (dto.UserPage, error) {
	users, count, err := s.store.Users().FindActivePage(ctx, page.Offset(), page.Size, excludeID)
	if err != nil {
		return dto.UserPage{}, err
	}

	content := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		content = append(content, dto.UserResponse{ID: u.ID, Username: u.Username, Email: u.Email})
	}

	return dto.UserPage{
		Content:    content,
		Page:       page.Page,
		Size:       page.Size,
		TotalPages: page.TotalPages(count),
	}, nil
}

func (s *UserServiceImpl) Get(ctx context.Context, id uint) (dto.UserResponse, error) {
	u, err := s.store.Users().GetActiveByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return dto.UserResponse{}, domain.ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}
	return dto.UserResponse{ID: u.ID, Username: u.Username, Email: u.Email}, nil
}

func (s *UserServiceImpl) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.store.Users().GetByEmail(ctx, email)
}
