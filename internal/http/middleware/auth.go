// README: JWT auth middleware; token from cookie or Authorization header.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"swiftcab/internal/modules/account"
	"swiftcab/internal/modules/auth"
)

// Context keys set by Auth for downstream handlers.
const (
	CtxAccount = "account"
	CtxClaims  = "claims"
	CtxToken   = "token"
)

// CookieName is where login plants the token; the Authorization
// header works interchangeably.
const CookieName = "token"

// ExtractToken prefers the cookie and falls back to a bearer header.
func ExtractToken(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	h := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(h, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return ""
}

// Auth authenticates the request and stashes the resolved account
// (which may be nil under lenient captain auth), claims, and the raw
// token. Rejects with 401 otherwise.
func Auth(guard *auth.Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ExtractToken(c.Request)
		a, claims, err := guard.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if a != nil {
			c.Set(CtxAccount, a)
		}
		c.Set(CtxClaims, claims)
		c.Set(CtxToken, token)
		c.Next()
	}
}

// RequireRole gates a route group on the token's role claim. Must run
// after Auth.
func RequireRole(role account.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := ClaimsFrom(c)
		if claims == nil || claims.Role != string(role) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

// AccountFrom returns the resolved account, nil under lenient captain
// auth or when Auth did not run.
func AccountFrom(c *gin.Context) *account.Account {
	if v, ok := c.Get(CtxAccount); ok {
		return v.(*account.Account)
	}
	return nil
}

func ClaimsFrom(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(CtxClaims); ok {
		return v.(*auth.Claims)
	}
	return nil
}

func TokenFrom(c *gin.Context) string {
	if v, ok := c.Get(CtxToken); ok {
		return v.(string)
	}
	return ""
}
