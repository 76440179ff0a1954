package dbbadger

import (
	"context"

	"github.com/tdex-network/custodyd/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

type depositRepositoryImpl struct {
	store *badgerhold.Store
}

// NewDepositRepositoryImpl initialize a badger implementation of the
// domain.DepositRepository.
func NewDepositRepositoryImpl(store *badgerhold.Store) domain.DepositRepository {
	return depositRepositoryImpl{store}
}

func (d depositRepositoryImpl) AddDeposit(
	ctx context.Context, deposit domain.Deposit,
) (uint64, error) {
	return insertWithNextID(
		ctx, d.store, depositSequenceKey, func(id uint64) interface{} {
			deposit.ID = id
			return &deposit
		},
	)
}

func (d depositRepositoryImpl) ListDepositsForAccount(
	ctx context.Context, account string, page *domain.Page,
) ([]domain.Deposit, error) {
	query := badgerhold.Where("Account").Eq(account)
	return d.findDeposits(ctx, pageQuery(query, "ID", page))
}

func (d depositRepositoryImpl) ListAllDeposits(
	ctx context.Context, page *domain.Page,
) ([]domain.Deposit, error) {
	return d.findDeposits(ctx, pageQuery(nil, "ID", page))
}

func (d depositRepositoryImpl) findDeposits(
	ctx context.Context, query *badgerhold.Query,
) ([]domain.Deposit, error) {
	var deposits []domain.Deposit
	var err error
	if tx := getTx(ctx); tx != nil {
		err = d.store.TxFind(tx, &deposits, query)
	} else {
		err = d.store.Find(&deposits, query)
	}
	if err != nil {
		return nil, err
	}
	return deposits, nil
}
