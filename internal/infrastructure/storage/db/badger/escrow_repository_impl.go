package dbbadger

import (
	"context"
	"fmt"

	"github.com/tdex-network/custodyd/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const escrowGlobalKey = "escrow_global"

type escrowRepositoryImpl struct {
	store *badgerhold.Store
}

// NewEscrowRepositoryImpl returns a new badger implementation of the
// domain.EscrowRepository.
func NewEscrowRepositoryImpl(store *badgerhold.Store) domain.EscrowRepository {
	return escrowRepositoryImpl{store}
}

func (e escrowRepositoryImpl) NextEscrowID(ctx context.Context) (uint64, error) {
	tx := getTx(ctx)
	if tx == nil {
		return 0, fmt.Errorf("escrow counter must be incremented within a step")
	}

	global := domain.EscrowGlobal{}
	if err := e.store.TxGet(tx, escrowGlobalKey, &global); err != nil {
		if err != badgerhold.ErrNotFound {
			return 0, err
		}
	}

	id := global.Next()
	if err := e.store.TxUpsert(tx, escrowGlobalKey, &global); err != nil {
		return 0, err
	}
	return id, nil
}

func (e escrowRepositoryImpl) AddEscrow(
	ctx context.Context, escrow domain.Escrow,
) error {
	var err error
	if tx := getTx(ctx); tx != nil {
		err = e.store.TxInsert(tx, escrow.ID, &escrow)
	} else {
		err = e.store.Insert(escrow.ID, &escrow)
	}
	if err != nil {
		if err == badgerhold.ErrKeyExists {
			return fmt.Errorf("escrow with id %d already exists", escrow.ID)
		}
		return err
	}
	return nil
}

func (e escrowRepositoryImpl) GetEscrow(
	ctx context.Context, id uint64,
) (*domain.Escrow, error) {
	var escrow domain.Escrow
	var err error
	if tx := getTx(ctx); tx != nil {
		err = e.store.TxGet(tx, id, &escrow)
	} else {
		err = e.store.Get(id, &escrow)
	}
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("%w: %d", domain.ErrEscrowNotFound, id)
		}
		return nil, err
	}
	return &escrow, nil
}

func (e escrowRepositoryImpl) DeleteEscrow(ctx context.Context, id uint64) error {
	var err error
	if tx := getTx(ctx); tx != nil {
		err = e.store.TxDelete(tx, id, domain.Escrow{})
	} else {
		err = e.store.Delete(id, domain.Escrow{})
	}
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return fmt.Errorf("%w: %d", domain.ErrEscrowNotFound, id)
		}
		return err
	}
	return nil
}

func (e escrowRepositoryImpl) GetEscrowsByFrom(
	ctx context.Context, from string,
) ([]domain.Escrow, error) {
	query := badgerhold.Where("From").Eq(from).Index("From")
	return e.findEscrows(ctx, query.SortBy("ID"))
}

func (e escrowRepositoryImpl) GetEscrowsByTo(
	ctx context.Context, to string,
) ([]domain.Escrow, error) {
	query := badgerhold.Where("To").Eq(to).Index("To")
	return e.findEscrows(ctx, query.SortBy("ID"))
}

func (e escrowRepositoryImpl) GetExpiredEscrows(
	ctx context.Context, now int64,
) ([]domain.Escrow, error) {
	query := badgerhold.Where("Expiry").Le(now)
	return e.findEscrows(ctx, query.SortBy("ID"))
}

func (e escrowRepositoryImpl) ListEscrows(
	ctx context.Context, page *domain.Page,
) ([]domain.Escrow, error) {
	return e.findEscrows(ctx, pageQuery(nil, "ID", page))
}

func (e escrowRepositoryImpl) findEscrows(
	ctx context.Context, query *badgerhold.Query,
) ([]domain.Escrow, error) {
	var escrows []domain.Escrow
	var err error
	if tx := getTx(ctx); tx != nil {
		err = e.store.TxFind(tx, &escrows, query)
	} else {
		err = e.store.Find(&escrows, query)
	}
	if err != nil {
		return nil, err
	}
	return escrows, nil
}
