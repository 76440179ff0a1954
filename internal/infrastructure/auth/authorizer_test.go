package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/custodyd/internal/core/domain"
	"github.com/tdex-network/custodyd/internal/infrastructure/auth"
)

const secret = "supersecret"

func TestAuthorizer(t *testing.T) {
	authorizer, err := auth.NewAuthorizer(secret)
	require.NoError(t, err)

	aliceToken, err := authorizer.IssueToken("alice", false, time.Hour)
	require.NoError(t, err)
	adminToken, err := authorizer.IssueToken("", true, 0)
	require.NoError(t, err)

	claims, err := authorizer.ParseToken(aliceToken)
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Subject)
	require.False(t, claims.Admin)
	aliceCtx := auth.ContextWithClaims(context.Background(), claims)

	claims, err = authorizer.ParseToken(adminToken)
	require.NoError(t, err)
	require.True(t, claims.Admin)
	adminCtx := auth.ContextWithClaims(context.Background(), claims)

	require.NoError(t, authorizer.RequireAuth(aliceCtx, "alice"))
	require.ErrorIs(t, authorizer.RequireAuth(aliceCtx, "bob"), domain.ErrUnauthorized)
	require.ErrorIs(t, authorizer.RequireAdmin(aliceCtx), domain.ErrUnauthorized)

	require.NoError(t, authorizer.RequireAdmin(adminCtx))
	require.ErrorIs(t, authorizer.RequireAuth(adminCtx, "alice"), domain.ErrUnauthorized)

	ctx := context.Background()
	require.ErrorIs(t, authorizer.RequireAuth(ctx, "alice"), domain.ErrUnauthorized)
	require.ErrorIs(t, authorizer.RequireAdmin(ctx), domain.ErrUnauthorized)
}

func TestFailingParseToken(t *testing.T) {
	authorizer, err := auth.NewAuthorizer(secret)
	require.NoError(t, err)
	other, err := auth.NewAuthorizer("othersecret")
	require.NoError(t, err)

	otherToken, err := other.IssueToken("alice", false, 0)
	require.NoError(t, err)

	expiredToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		StandardClaims: jwt.StandardClaims{
			Subject:   "alice",
			ExpiresAt: time.Now().Add(-time.Minute).Unix(),
		},
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	noSubjectToken, err := jwt.NewWithClaims(
		jwt.SigningMethodHS256, auth.Claims{},
	).SignedString([]byte(secret))
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, auth.Claims{
		StandardClaims: jwt.StandardClaims{Subject: "alice"},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"malformed", "not.a.token"},
		{"wrong_secret", otherToken},
		{"expired", expiredToken},
		{"missing_subject", noSubjectToken},
		{"unsigned", noneToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := authorizer.ParseToken(tt.token)
			require.ErrorIs(t, err, domain.ErrUnauthorized)
		})
	}
}

func TestFailingIssueToken(t *testing.T) {
	authorizer, err := auth.NewAuthorizer(secret)
	require.NoError(t, err)

	_, err = authorizer.IssueToken("", false, 0)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = authorizer.IssueToken("Invalid", false, 0)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = auth.NewAuthorizer("")
	require.Error(t, err)
}
