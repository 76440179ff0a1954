package ports

import "context"

// Authorizer verifies the credentials carried by the context.
type Authorizer interface {
	// RequireAuth returns domain.ErrUnauthorized if the context does not
	// prove the authority of the given account.
	RequireAuth(ctx context.Context, account string) error
	// RequireAdmin returns domain.ErrUnauthorized if the context does not
	// carry the host admin authority.
	RequireAdmin(ctx context.Context) error
}
