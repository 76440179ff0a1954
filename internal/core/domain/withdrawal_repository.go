package domain

import "context"

// WithdrawalRepository is the abstraction for any kind of database intended
// to persist Withdrawals.
type WithdrawalRepository interface {
	AddWithdrawal(ctx context.Context, withdrawal Withdrawal) (uint64, error)
	ListWithdrawalsForAccount(
		ctx context.Context, account string, page *Page,
	) ([]Withdrawal, error)
	ListAllWithdrawals(ctx context.Context, page *Page) ([]Withdrawal, error)
}
