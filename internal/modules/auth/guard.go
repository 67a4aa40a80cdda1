// README: Token guard: issuance, authentication, and logout revocation.
package auth

import (
	"context"
	"errors"
	"time"

	"swiftcab/internal/config"
	"swiftcab/internal/modules/account"
)

type Guard struct {
	secret    []byte
	ttl       time.Duration
	accounts  account.Store
	blacklist Blacklist
	// requireResolved rejects valid tokens whose account no longer
	// exists. When false the captain path is lenient: Authenticate
	// returns nil claims-resolved account and the caller must guard.
	requireResolved bool
}

func NewGuard(cfg config.AuthConfig, accounts account.Store, blacklist Blacklist) *Guard {
	return &Guard{
		secret:          []byte(cfg.JWTSecret),
		ttl:             cfg.TokenTTL,
		accounts:        accounts,
		blacklist:       blacklist,
		requireResolved: cfg.RequireResolved,
	}
}

// TokenTTL is the lifetime stamped into issued tokens.
func (g *Guard) TokenTTL() time.Duration { return g.ttl }

// IssueToken produces a stateless signed token; no session record is
// written at issuance.
func (g *Guard) IssueToken(a *account.Account) (string, error) {
	return signToken(g.secret, a.ID, string(a.Role), g.ttl)
}

// Authenticate verifies signature and expiry, rejects revoked tokens,
// and resolves the embedded account. The returned claims are non-nil
// on success even when the lenient path yields a nil account.
func (g *Guard) Authenticate(ctx context.Context, token string) (*account.Account, *Claims, error) {
	if token == "" {
		return nil, nil, ErrUnauthorized
	}
	claims, err := parseToken(g.secret, token)
	if err != nil {
		return nil, nil, ErrUnauthorized
	}
	revoked, err := g.blacklist.Contains(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	if revoked {
		return nil, nil, ErrUnauthorized
	}

	a, err := g.accounts.GetByID(ctx, claims.ID())
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			if !g.requireResolved && claims.Role == string(account.RoleCaptain) {
				return nil, claims, nil
			}
			return nil, nil, ErrUnauthorized
		}
		return nil, nil, err
	}
	return a, claims, nil
}

// Revoke adds the token to the blacklist with a TTL matching its
// remaining validity. Unparseable tokens are ignored; revoking twice
// leaves the token revoked with no error.
func (g *Guard) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	ttl := g.ttl
	if claims, err := parseToken(g.secret, token); err == nil && claims.ExpiresAt != nil {
		if remaining := time.Until(claims.ExpiresAt.Time); remaining > 0 {
			ttl = remaining
		}
	}
	return g.blacklist.Revoke(ctx, token, ttl)
}
