package auth

import (
	"context"
	"strings"
	"time"

	"github.com/prestobr/authd/internal/common"
)

type ctxKey int

const principalKey ctxKey = 0

// PrincipalFromHeader resolves the raw Authorization header value to a
// principal. A missing header, a missing "Bearer " prefix, or an invalid or
// expired token all degrade to anonymous (nil, false). Route gates, not
// this function, reject anonymous access to protected endpoints.
func (c *Codec) PrincipalFromHeader(header string, now time.Time) (*Principal, bool) {
	if !strings.HasPrefix(header, common.BearerPrefix) {
		return nil, false
	}

	p, err := c.Verify(strings.TrimPrefix(header, common.BearerPrefix), now)
	if err != nil {
		return nil, false
	}
	return p, true
}

// WithPrincipal returns a child context carrying the principal.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom extracts the principal injected by the auth middleware.
// ok is false for anonymous requests.
func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok && p != nil
}
