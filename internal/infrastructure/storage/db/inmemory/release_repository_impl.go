package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tdex-network/custodyd/internal/core/domain"
)

type releaseInmemoryStore struct {
	releases map[uint64]domain.Release
	lastID   uint64
	locker   *sync.RWMutex
}

// journal must be called with the store locked.
func (s *releaseInmemoryStore) journal(ctx context.Context, id uint64) {
	prev, existed := s.releases[id]
	lastID := s.lastID
	recordUndo(ctx, func() {
		s.locker.Lock()
		defer s.locker.Unlock()
		s.lastID = lastID
		if existed {
			s.releases[id] = prev
			return
		}
		delete(s.releases, id)
	})
}

type releaseRepositoryImpl struct {
	store *releaseInmemoryStore
}

// NewReleaseRepositoryImpl returns a new inmemory ReleaseRepository
// implementation.
func NewReleaseRepositoryImpl(store *releaseInmemoryStore) domain.ReleaseRepository {
	return &releaseRepositoryImpl{store}
}

func (r releaseRepositoryImpl) AddRelease(
	ctx context.Context, release domain.Release,
) (uint64, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	r.store.journal(ctx, r.store.lastID+1)
	r.store.lastID++
	release.ID = r.store.lastID
	r.store.releases[release.ID] = release
	return release.ID, nil
}

func (r releaseRepositoryImpl) GetRelease(
	_ context.Context, id uint64,
) (*domain.Release, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	release, ok := r.store.releases[id]
	if !ok {
		return nil, fmt.Errorf("release %w: %d", domain.ErrNotFound, id)
	}
	return &release, nil
}

func (r releaseRepositoryImpl) GetPendingReleases(
	_ context.Context, limit int,
) ([]domain.Release, error) {
	releases := r.sorted(func(rr domain.Release) bool { return rr.IsPending() })
	if limit > 0 && len(releases) > limit {
		releases = releases[:limit]
	}
	return releases, nil
}

func (r releaseRepositoryImpl) UpdateRelease(
	ctx context.Context, id uint64,
	updateFn func(r *domain.Release) (*domain.Release, error),
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	release, ok := r.store.releases[id]
	if !ok {
		return fmt.Errorf("release %w: %d", domain.ErrNotFound, id)
	}

	updatedRelease, err := updateFn(&release)
	if err != nil {
		return err
	}
	r.store.journal(ctx, id)
	r.store.releases[id] = *updatedRelease
	return nil
}

func (r releaseRepositoryImpl) ListReleases(
	_ context.Context, page *domain.Page,
) ([]domain.Release, error) {
	releases := r.sorted(func(domain.Release) bool { return true })
	start, end := paginate(len(releases), page)
	return releases[start:end], nil
}

func (r releaseRepositoryImpl) sorted(
	match func(r domain.Release) bool,
) []domain.Release {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	releases := make([]domain.Release, 0)
	for _, rr := range r.store.releases {
		if match(rr) {
			releases = append(releases, rr)
		}
	}
	sort.Slice(releases, func(i, j int) bool { return releases[i].ID < releases[j].ID })
	return releases
}
