package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/tdex-network/custodyd/internal/core/domain"
	"github.com/tdex-network/custodyd/internal/core/ports"
)

type claimsKey struct{}

// Claims are the claims of an access token. Subject is the account the
// bearer acts as, Admin grants host-admin authority.
type Claims struct {
	jwt.StandardClaims
	Admin bool `json:"admin,omitempty"`
}

// ContextWithClaims returns a copy of ctx carrying the given claims.
func ContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFromContext returns the claims carried by ctx, if any.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*Claims)
	return claims, ok && claims != nil
}

type Authorizer struct {
	secret []byte
}

// NewAuthorizer returns an HS256 JWT implementation of ports.Authorizer.
func NewAuthorizer(secret string) (*Authorizer, error) {
	if len(secret) <= 0 {
		return nil, fmt.Errorf("missing auth secret")
	}
	return &Authorizer{[]byte(secret)}, nil
}

var _ ports.Authorizer = (*Authorizer)(nil)

func (a *Authorizer) RequireAuth(ctx context.Context, account string) error {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return fmt.Errorf("%w: missing access token", domain.ErrUnauthorized)
	}
	if claims.Subject != account {
		return fmt.Errorf(
			"%w: token is not valid for account %s", domain.ErrUnauthorized, account,
		)
	}
	return nil
}

func (a *Authorizer) RequireAdmin(ctx context.Context) error {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return fmt.Errorf("%w: missing access token", domain.ErrUnauthorized)
	}
	if !claims.Admin {
		return fmt.Errorf("%w: admin token required", domain.ErrUnauthorized)
	}
	return nil
}

// ParseToken verifies the signature and the time claims of the given token.
func (a *Authorizer) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(
		tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
			}
			return a.secret, nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnauthorized, err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("%w: invalid access token", domain.ErrUnauthorized)
	}
	if len(claims.Subject) <= 0 && !claims.Admin {
		return nil, fmt.Errorf("%w: token has no subject", domain.ErrUnauthorized)
	}
	return claims, nil
}

// IssueToken returns a signed token for the given account. A zero ttl means
// the token never expires.
func (a *Authorizer) IssueToken(
	account string, admin bool, ttl time.Duration,
) (string, error) {
	if len(account) > 0 {
		if err := domain.ValidateName(account); err != nil {
			return "", err
		}
	}
	if len(account) <= 0 && !admin {
		return "", fmt.Errorf("%w: missing token subject", domain.ErrInvalidInput)
	}

	now := time.Now()
	claims := Claims{
		StandardClaims: jwt.StandardClaims{
			Subject:  account,
			IssuedAt: now.Unix(),
		},
		Admin: admin,
	}
	if ttl > 0 {
		claims.ExpiresAt = now.Add(ttl).Unix()
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}
