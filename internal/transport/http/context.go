package http

import (
	"context"

	"accounts/internal/pagination"
)

// Identity is the caller resolved by one of the authorization schemes. The
// gate attaches it to the request context and never rejects by itself;
// handlers decide whether an identity is required.
type Identity struct {
	ID uint
}

type identityKey struct{}

func withIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the caller identity, or nil when no scheme
// resolved one.
func IdentityFromContext(ctx context.Context) *Identity {
	if id, ok := ctx.Value(identityKey{}).(Identity); ok {
		return &id
	}
	return nil
}

type paginationKey struct{}

func withPagination(ctx context.Context, p pagination.Page) context.Context {
	return context.WithValue(ctx, paginationKey{}, p)
}

func paginationFromContext(ctx context.Context) pagination.Page {
	if p, ok := ctx.Value(paginationKey{}).(pagination.Page); ok {
		return p
	}
	return pagination.Page{Page: 0, Size: pagination.DefaultSize}
}
