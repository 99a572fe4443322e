package impl

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"accounts/internal/domain"
	"accounts/internal/observability/metrics"
	"accounts/internal/observability/middleware"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenConfig struct {
	Issuer     string
	Audience   string
	TTL        time.Duration // 0 disables the exp claim
	SigningKey []byte        // HS256 secret
}

// TokenServiceHS256 signs and verifies bearer tokens with a process-wide
// secret injected at startup.
type TokenServiceHS256 struct {
	cfg TokenConfig
}

func NewTokenServiceHS256(cfg TokenConfig) *TokenServiceHS256 {
	return &TokenServiceHS256{cfg: cfg}
}

func (t *TokenServiceHS256) Issue(ctx context.Context, user *domain.User) (string, error) {
	result := "success"
	defer func() {
		metrics.TokensIssuedTotal.WithLabelValues(result).Inc()
	}()

	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Issuer:   t.cfg.Issuer,
		Subject:  strconv.FormatUint(uint64(user.ID), 10),
		Audience: jwt.ClaimStrings{t.cfg.Audience},
		IssuedAt: jwt.NewNumericDate(now),
		ID:       uuid.NewString(),
	}
	if t.cfg.TTL > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(t.cfg.TTL))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.cfg.SigningKey)
	if err != nil {
		result = "failure"
		return "", err
	}

	reqID := middleware.RequestIDFromContext(ctx)
	slog.Info("issued token", "user_id", user.ID, "request_id", reqID)
	return signed, nil
}

func (t *TokenServiceHS256) Verify(ctx context.Context, token string) (uint, error) {
	claims := &jwt.RegisteredClaims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	tok, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return t.cfg.SigningKey, nil
	})
	if err != nil || !tok.Valid {
		return 0, domain.ErrInvalidToken
	}
	if claims.Issuer != t.cfg.Issuer {
		return 0, domain.ErrInvalidToken
	}
	if !containsAudience(claims.Audience, t.cfg.Audience) {
		return 0, domain.ErrInvalidToken
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidToken
	}
	return uint(id), nil
}

func containsAudience(aud jwt.ClaimStrings, expected string) bool {
	for _, a := range aud {
		if a == expected {
			return true
		}
	}
	return false
}
