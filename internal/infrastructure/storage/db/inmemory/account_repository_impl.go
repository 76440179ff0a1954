package inmemory

import (
	"context"
	"sync"
	"time"

	"github.com/tdex-network/custodyd/internal/core/domain"
)

type accountInmemoryStore struct {
	accounts map[string]domain.Account
	locker   *sync.RWMutex
}

// journal must be called with the store locked.
func (s *accountInmemoryStore) journal(ctx context.Context, id string) {
	prev, existed := s.accounts[id]
	recordUndo(ctx, func() {
		s.locker.Lock()
		defer s.locker.Unlock()
		if existed {
			s.accounts[id] = prev
			return
		}
		delete(s.accounts, id)
	})
}

type accountRepositoryImpl struct {
	store *accountInmemoryStore
}

// NewAccountRepositoryImpl returns a new inmemory AccountRepository
// implementation.
func NewAccountRepositoryImpl(store *accountInmemoryStore) domain.AccountRepository {
	return &accountRepositoryImpl{store}
}

func (r accountRepositoryImpl) GetAccount(
	_ context.Context, id string,
) (*domain.Account, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	account, ok := r.store.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	account.Assets = account.Assets.Clone()
	return &account, nil
}

func (r accountRepositoryImpl) SaveAccount(
	ctx context.Context, account domain.Account,
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	r.store.journal(ctx, account.ID)

	account.Assets = account.Assets.Clone()
	account.UpdatedAt = time.Now().Unix()
	r.store.accounts[account.ID] = account
	return nil
}

func (r accountRepositoryImpl) DeleteAccount(ctx context.Context, id string) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	r.store.journal(ctx, id)

	delete(r.store.accounts, id)
	return nil
}

func (r accountRepositoryImpl) ListAccounts(
	_ context.Context, page *domain.Page,
) ([]domain.Account, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	keys := sortedKeys(r.store.accounts)
	start, end := paginate(len(keys), page)

	accounts := make([]domain.Account, 0, end-start)
	for _, k := range keys[start:end] {
		account := r.store.accounts[k]
		account.Assets = account.Assets.Clone()
		accounts = append(accounts, account)
	}
	return accounts, nil
}
