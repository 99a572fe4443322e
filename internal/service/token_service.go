package service

import (
	"context"

	"accounts/internal/domain"
)

type TokenService interface {
	// Issue mints a signed bearer token bound to the user's id.
	Issue(ctx context.Context, user *domain.User) (string, error)
	// Verify parses a bearer token back into a user id, rejecting tampered,
	// malformed and expired tokens.
	Verify(ctx context.Context, token string) (uint, error)
}
