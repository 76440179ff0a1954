package inmemory

import (
	"context"
	"sync"

	"github.com/tdex-network/custodyd/internal/core/domain"
)

type depositInmemoryStore struct {
	deposits []domain.Deposit
	locker   *sync.RWMutex
}

// journal must be called with the store locked.
func (s *depositInmemoryStore) journal(ctx context.Context) {
	count := len(s.deposits)
	recordUndo(ctx, func() {
		s.locker.Lock()
		defer s.locker.Unlock()
		s.deposits = s.deposits[:count]
	})
}

type depositRepositoryImpl struct {
	store *depositInmemoryStore
}

// NewDepositRepositoryImpl returns a new inmemory DepositRepository
// implementation.
func NewDepositRepositoryImpl(store *depositInmemoryStore) domain.DepositRepository {
	return &depositRepositoryImpl{store}
}

func (r depositRepositoryImpl) AddDeposit(
	ctx context.Context, deposit domain.Deposit,
) (uint64, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	r.store.journal(ctx)

	deposit.ID = uint64(len(r.store.deposits) + 1)
	r.store.deposits = append(r.store.deposits, deposit)
	return deposit.ID, nil
}

func (r depositRepositoryImpl) ListDepositsForAccount(
	_ context.Context, account string, page *domain.Page,
) ([]domain.Deposit, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	deposits := make([]domain.Deposit, 0)
	for _, d := range r.store.deposits {
		if d.Account == account {
			deposits = append(deposits, d)
		}
	}
	start, end := paginate(len(deposits), page)
	return deposits[start:end], nil
}

func (r depositRepositoryImpl) ListAllDeposits(
	_ context.Context, page *domain.Page,
) ([]domain.Deposit, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	start, end := paginate(len(r.store.deposits), page)
	return append([]domain.Deposit{}, r.store.deposits[start:end]...), nil
}
