package dbbadger

import (
	"context"
	"fmt"

	"github.com/tdex-network/custodyd/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

type releaseRepositoryImpl struct {
	store *badgerhold.Store
}

// NewReleaseRepositoryImpl returns a new badger implementation of the
// domain.ReleaseRepository.
func NewReleaseRepositoryImpl(store *badgerhold.Store) domain.ReleaseRepository {
	return releaseRepositoryImpl{store}
}

func (r releaseRepositoryImpl) AddRelease(
	ctx context.Context, release domain.Release,
) (uint64, error) {
	return insertWithNextID(
		ctx, r.store, releaseSequenceKey, func(id uint64) interface{} {
			release.ID = id
			return &release
		},
	)
}

func (r releaseRepositoryImpl) GetRelease(
	ctx context.Context, id uint64,
) (*domain.Release, error) {
	var release domain.Release
	var err error
	if tx := getTx(ctx); tx != nil {
		err = r.store.TxGet(tx, id, &release)
	} else {
		err = r.store.Get(id, &release)
	}
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("release %w: %d", domain.ErrNotFound, id)
		}
		return nil, err
	}
	return &release, nil
}

func (r releaseRepositoryImpl) GetPendingReleases(
	ctx context.Context, limit int,
) ([]domain.Release, error) {
	query := badgerhold.Where("Status").Eq(domain.ReleaseStatusPending).
		SortBy("ID")
	if limit > 0 {
		query = query.Limit(limit)
	}
	releases, err := r.findReleases(ctx, query)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(releases) > limit {
		releases = releases[:limit]
	}
	return releases, nil
}

func (r releaseRepositoryImpl) UpdateRelease(
	ctx context.Context, id uint64,
	updateFn func(r *domain.Release) (*domain.Release, error),
) error {
	release, err := r.GetRelease(ctx, id)
	if err != nil {
		return err
	}

	updatedRelease, err := updateFn(release)
	if err != nil {
		return err
	}

	if tx := getTx(ctx); tx != nil {
		return r.store.TxUpdate(tx, id, updatedRelease)
	}
	return r.store.Update(id, updatedRelease)
}

func (r releaseRepositoryImpl) ListReleases(
	ctx context.Context, page *domain.Page,
) ([]domain.Release, error) {
	return r.findReleases(ctx, pageQuery(nil, "ID", page))
}

func (r releaseRepositoryImpl) findReleases(
	ctx context.Context, query *badgerhold.Query,
) ([]domain.Release, error) {
	var releases []domain.Release
	var err error
	if tx := getTx(ctx); tx != nil {
		err = r.store.TxFind(tx, &releases, query)
	} else {
		err = r.store.Find(&releases, query)
	}
	if err != nil {
		return nil, err
	}
	return releases, nil
}
