package ports

import (
	"context"

	"github.com/tdex-network/custodyd/internal/core/domain"
)

// RepoManager interface defines the methods for accounts, escrows, history
// and the release outbox.
type RepoManager interface {
	AccountRepository() domain.AccountRepository
	EscrowRepository() domain.EscrowRepository
	DepositRepository() domain.DepositRepository
	WithdrawalRepository() domain.WithdrawalRepository
	ReleaseRepository() domain.ReleaseRepository
	AllowRepository() domain.AllowRepository

	Close()

	// RunTransaction executes the given handler as a single step. All changes
	// made through the repositories with the handler's context are committed
	// only if the handler returns no error, otherwise they are discarded.
	// Write steps are serialized. A handler invoked with a context that already
	// carries a transaction joins it.
	RunTransaction(
		ctx context.Context,
		readOnly bool,
		handler func(ctx context.Context) (interface{}, error),
	) (interface{}, error)
}
