package inmemory

import (
	"context"
	"sync"

	"github.com/tdex-network/custodyd/internal/core/domain"
)

type withdrawalInmemoryStore struct {
	withdrawals []domain.Withdrawal
	locker      *sync.RWMutex
}

// journal must be called with the store locked.
func (s *withdrawalInmemoryStore) journal(ctx context.Context) {
	count := len(s.withdrawals)
	recordUndo(ctx, func() {
		s.locker.Lock()
		defer s.locker.Unlock()
		s.withdrawals = s.withdrawals[:count]
	})
}

type withdrawalRepositoryImpl struct {
	store *withdrawalInmemoryStore
}

// NewWithdrawalRepositoryImpl returns a new inmemory WithdrawalRepository
// implementation.
func NewWithdrawalRepositoryImpl(
	store *withdrawalInmemoryStore,
) domain.WithdrawalRepository {
	return &withdrawalRepositoryImpl{store}
}

func (r withdrawalRepositoryImpl) AddWithdrawal(
	ctx context.Context, withdrawal domain.Withdrawal,
) (uint64, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	r.store.journal(ctx)

	withdrawal.ID = uint64(len(r.store.withdrawals) + 1)
	r.store.withdrawals = append(r.store.withdrawals, withdrawal)
	return withdrawal.ID, nil
}

func (r withdrawalRepositoryImpl) ListWithdrawalsForAccount(
	_ context.Context, account string, page *domain.Page,
) ([]domain.Withdrawal, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	withdrawals := make([]domain.Withdrawal, 0)
	for _, w := range r.store.withdrawals {
		if w.Account == account {
			withdrawals = append(withdrawals, w)
		}
	}
	start, end := paginate(len(withdrawals), page)
	return withdrawals[start:end], nil
}

func (r withdrawalRepositoryImpl) ListAllWithdrawals(
	_ context.Context, page *domain.Page,
) ([]domain.Withdrawal, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	start, end := paginate(len(r.store.withdrawals), page)
	return append([]domain.Withdrawal{}, r.store.withdrawals[start:end]...), nil
}
