package dbbadger

import (
	"context"

	"github.com/tdex-network/custodyd/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const allowConfigKey = "allow_config"

type allowRepositoryImpl struct {
	store *badgerhold.Store
}

// NewAllowRepositoryImpl returns a new badger implementation of the
// domain.AllowRepository.
func NewAllowRepositoryImpl(store *badgerhold.Store) domain.AllowRepository {
	return allowRepositoryImpl{store}
}

func (a allowRepositoryImpl) GetConfig(
	ctx context.Context,
) (*domain.AllowConfig, error) {
	var config domain.AllowConfig
	var err error
	if tx := getTx(ctx); tx != nil {
		err = a.store.TxGet(tx, allowConfigKey, &config)
	} else {
		err = a.store.Get(allowConfigKey, &config)
	}
	if err != nil && err != badgerhold.ErrNotFound {
		return nil, err
	}
	return &config, nil
}

func (a allowRepositoryImpl) SaveConfig(
	ctx context.Context, config domain.AllowConfig,
) error {
	if tx := getTx(ctx); tx != nil {
		return a.store.TxUpsert(tx, allowConfigKey, &config)
	}
	return a.store.Upsert(allowConfigKey, &config)
}

func (a allowRepositoryImpl) GetEntry(
	ctx context.Context, kind domain.AllowKind, name string,
) (*domain.AllowEntry, error) {
	key := domain.AllowEntry{Name: name, Kind: kind}.Key()

	var entry domain.AllowEntry
	var err error
	if tx := getTx(ctx); tx != nil {
		err = a.store.TxGet(tx, key, &entry)
	} else {
		err = a.store.Get(key, &entry)
	}
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (a allowRepositoryImpl) SaveEntry(
	ctx context.Context, entry domain.AllowEntry,
) error {
	if tx := getTx(ctx); tx != nil {
		return a.store.TxUpsert(tx, entry.Key(), &entry)
	}
	return a.store.Upsert(entry.Key(), &entry)
}

func (a allowRepositoryImpl) ListEntries(
	ctx context.Context, kind domain.AllowKind,
) ([]domain.AllowEntry, error) {
	query := badgerhold.Where("Kind").Eq(kind).Index("Kind").SortBy("Name")

	var entries []domain.AllowEntry
	var err error
	if tx := getTx(ctx); tx != nil {
		err = a.store.TxFind(tx, &entries, query)
	} else {
		err = a.store.Find(&entries, query)
	}
	if err != nil {
		return nil, err
	}
	return entries, nil
}
