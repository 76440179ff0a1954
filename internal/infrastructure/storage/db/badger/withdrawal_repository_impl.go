package dbbadger

import (
	"context"

	"github.com/tdex-network/custodyd/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

type withdrawalRepositoryImpl struct {
	store *badgerhold.Store
}

// NewWithdrawalRepositoryImpl initialize a badger implementation of the
// domain.WithdrawalRepository.
func NewWithdrawalRepositoryImpl(
	store *badgerhold.Store,
) domain.WithdrawalRepository {
	return withdrawalRepositoryImpl{store}
}

func (w withdrawalRepositoryImpl) AddWithdrawal(
	ctx context.Context, withdrawal domain.Withdrawal,
) (uint64, error) {
	return insertWithNextID(
		ctx, w.store, withdrawalSequenceKey, func(id uint64) interface{} {
			withdrawal.ID = id
			return &withdrawal
		},
	)
}

func (w withdrawalRepositoryImpl) ListWithdrawalsForAccount(
	ctx context.Context, account string, page *domain.Page,
) ([]domain.Withdrawal, error) {
	query := badgerhold.Where("Account").Eq(account)
	return w.findWithdrawals(ctx, pageQuery(query, "ID", page))
}

func (w withdrawalRepositoryImpl) ListAllWithdrawals(
	ctx context.Context, page *domain.Page,
) ([]domain.Withdrawal, error) {
	return w.findWithdrawals(ctx, pageQuery(nil, "ID", page))
}

func (w withdrawalRepositoryImpl) findWithdrawals(
	ctx context.Context, query *badgerhold.Query,
) ([]domain.Withdrawal, error) {
	var withdrawals []domain.Withdrawal
	var err error
	if tx := getTx(ctx); tx != nil {
		err = w.store.TxFind(tx, &withdrawals, query)
	} else {
		err = w.store.Find(&withdrawals, query)
	}
	if err != nil {
		return nil, err
	}
	return withdrawals, nil
}
