package service

import (
	"context"

	"accounts/internal/domain"
	"accounts/internal/dto"
	"accounts/internal/pagination"
)

// UserService drives the account lifecycle: registration with activation
// mail, token consumption, the public directory, and self-service update.
type UserService interface {
	// Register persists a new inactive account and dispatches the activation
	// email as one atomic unit; a failed dispatch rolls the account back.
	Register(ctx context.Context, r dto.RegisterRequest) error
	// Activate consumes a one-time activation token. Unknown and already
	// consumed tokens are indistinguishable and both fail.
	Activate(ctx context.Context, token string) error
	// Update applies profile fields to the target account. Only the account
	// owner may update; callerID zero means no authenticated identity.
	Update(ctx context.Context, callerID, targetID uint, r dto.UserUpdateRequest) error
	// List returns a page of active accounts, excluding excludeID when set.
	List(ctx context.Context, page pagination.Page, excludeID uint) (dto.UserPage, error)
	// Get returns one active account; inactive accounts are invisible.
	Get(ctx context.Context, id uint) (dto.UserResponse, error)
	// FindByEmail is used by the basic-auth gate and the email uniqueness rule.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
}
