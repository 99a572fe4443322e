package service

import (
	"context"

	"accounts/internal/domain"
)

type AuthService interface {
	// Authenticate verifies credentials against the stored hash. Unknown
	// email and wrong password fail identically; a correct password on an
	// inactive account fails with a distinct forbidden error.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
}
