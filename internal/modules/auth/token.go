// README: Signed bearer tokens embedding account id and role.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"swiftcab/internal/types"
)

var ErrUnauthorized = errors.New("unauthorized")

type Claims struct {
	AccountID string `json:"sub"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) ID() types.ID { return types.ID(c.AccountID) }

func signToken(secret []byte, accountID types.ID, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		AccountID: string(accountID),
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    "swiftcab",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func parseToken(secret []byte, raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrUnauthorized
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrUnauthorized
	}
	return claims, nil
}
