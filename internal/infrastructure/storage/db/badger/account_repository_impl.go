package dbbadger

import (
	"context"
	"time"

	"github.com/tdex-network/custodyd/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

type accountRepositoryImpl struct {
	store *badgerhold.Store
}

// NewAccountRepositoryImpl returns a new badger implementation of the
// domain.AccountRepository.
func NewAccountRepositoryImpl(store *badgerhold.Store) domain.AccountRepository {
	return accountRepositoryImpl{store}
}

func (a accountRepositoryImpl) GetAccount(
	ctx context.Context, id string,
) (*domain.Account, error) {
	var account domain.Account
	var err error
	if tx := getTx(ctx); tx != nil {
		err = a.store.TxGet(tx, id, &account)
	} else {
		err = a.store.Get(id, &account)
	}
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

func (a accountRepositoryImpl) SaveAccount(
	ctx context.Context, account domain.Account,
) error {
	account.UpdatedAt = time.Now().Unix()
	if tx := getTx(ctx); tx != nil {
		return a.store.TxUpsert(tx, account.ID, &account)
	}
	return a.store.Upsert(account.ID, &account)
}

func (a accountRepositoryImpl) DeleteAccount(
	ctx context.Context, id string,
) error {
	var err error
	if tx := getTx(ctx); tx != nil {
		err = a.store.TxDelete(tx, id, domain.Account{})
	} else {
		err = a.store.Delete(id, domain.Account{})
	}
	if err != nil && err != badgerhold.ErrNotFound {
		return err
	}
	return nil
}

func (a accountRepositoryImpl) ListAccounts(
	ctx context.Context, page *domain.Page,
) ([]domain.Account, error) {
	var accounts []domain.Account
	query := pageQuery(nil, "ID", page)

	var err error
	if tx := getTx(ctx); tx != nil {
		err = a.store.TxFind(tx, &accounts, query)
	} else {
		err = a.store.Find(&accounts, query)
	}
	if err != nil {
		return nil, err
	}
	return accounts, nil
}
