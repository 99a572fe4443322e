package impl

import (
	"context"

	"accounts/internal/domain"
	"accounts/internal/observability/metrics"
	"accounts/internal/service"
	"accounts/internal/store"
)

type AuthServiceImpl struct {
	store     *store.Store
	passwords service.PasswordService
}

func NewAuthServiceImpl(st *store.Store, passwords service.PasswordService) *AuthServiceImpl {
	return &AuthServiceImpl{store: st, passwords: passwords}
}

// Authenticate verifies the credentials. Unknown email and wrong password
// produce the same failure so callers cannot enumerate accounts; an inactive
// account with a correct password fails with a distinct forbidden error.
func (a *AuthServiceImpl) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	result := "success"
	defer func() {
		metrics.LoginsTotal.WithLabelValues(result).Inc()
	}()

	u, err := a.store.Users().GetByEmail(ctx, email)
	if err != nil {
		result = "failure"
		return nil, domain.ErrAuthenticationFailure
	}
	if !a.passwords.Verify(password, u.Password) {
		result = "failure"
		return nil, domain.ErrAuthenticationFailure
	}
	if u.Inactive {
		result = "failure"
		return nil, domain.ErrInactiveAccount
	}
	return u, nil
}
