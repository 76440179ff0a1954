package domain

import "context"

// AccountRepository is the abstraction for any kind of database intended to
// persist ledger Accounts.
type AccountRepository interface {
	// GetAccount returns the account with the given id or ErrAccountNotFound.
	GetAccount(ctx context.Context, id string) (*Account, error)
	// SaveAccount inserts or updates the given account.
	SaveAccount(ctx context.Context, account Account) error
	// DeleteAccount removes the account with the given id, if any.
	DeleteAccount(ctx context.Context, id string) error
	// ListAccounts returns the stored accounts sorted by id.
	ListAccounts(ctx context.Context, page *Page) ([]Account, error)
}
