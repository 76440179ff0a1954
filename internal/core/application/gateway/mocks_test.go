package gateway_test

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/tdex-network/custodyd/internal/core/domain"
)

type adminKey struct{}

func adminContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, adminKey{}, true)
}

type mockAuthorizer struct {
	mock.Mock
}

// newMockAuthorizer returns an authorizer that grants authority over the
// given accounts, and admin authority to contexts built with adminContext.
func newMockAuthorizer(accounts ...string) *mockAuthorizer {
	m := &mockAuthorizer{}
	for _, account := range accounts {
		m.On("RequireAuth", mock.Anything, account).Return(nil)
	}
	m.On("RequireAuth", mock.Anything, mock.Anything).Return(domain.ErrUnauthorized)
	m.On("RequireAdmin", mock.MatchedBy(func(ctx context.Context) bool {
		return ctx.Value(adminKey{}) != nil
	})).Return(nil)
	m.On("RequireAdmin", mock.Anything).Return(domain.ErrUnauthorized)
	return m
}

func (m *mockAuthorizer) RequireAuth(ctx context.Context, account string) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *mockAuthorizer) RequireAdmin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
