package domain

import "context"

// DepositRepository is the abstraction for any kind of database intended to
// persist Deposits.
type DepositRepository interface {
	// AddDeposit adds the given deposit to the repository and returns its
	// assigned id.
	AddDeposit(ctx context.Context, deposit Deposit) (uint64, error)
	// ListDepositsForAccount returns the deposits credited to the given
	// account.
	ListDepositsForAccount(
		ctx context.Context, account string, page *Page,
	) ([]Deposit, error)
	// ListAllDeposits returns all deposits.
	ListAllDeposits(ctx context.Context, page *Page) ([]Deposit, error)
}
