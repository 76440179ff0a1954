package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/tdex-network/custodyd/internal/core/domain"
)

type allowInmemoryStore struct {
	config  domain.AllowConfig
	entries map[string]domain.AllowEntry
	locker  *sync.RWMutex
}

// journal must be called with the store locked.
func (s *allowInmemoryStore) journal(ctx context.Context, key string) {
	prev, existed := s.entries[key]
	recordUndo(ctx, func() {
		s.locker.Lock()
		defer s.locker.Unlock()
		if existed {
			s.entries[key] = prev
			return
		}
		delete(s.entries, key)
	})
}

type allowRepositoryImpl struct {
	store *allowInmemoryStore
}

// NewAllowRepositoryImpl returns a new inmemory AllowRepository
// implementation.
func NewAllowRepositoryImpl(store *allowInmemoryStore) domain.AllowRepository {
	return &allowRepositoryImpl{store}
}

func (r allowRepositoryImpl) GetConfig(
	_ context.Context,
) (*domain.AllowConfig, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	config := r.store.config
	return &config, nil
}

func (r allowRepositoryImpl) SaveConfig(
	ctx context.Context, config domain.AllowConfig,
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	prev := r.store.config
	recordUndo(ctx, func() {
		r.store.locker.Lock()
		defer r.store.locker.Unlock()
		r.store.config = prev
	})

	r.store.config = config
	return nil
}

func (r allowRepositoryImpl) GetEntry(
	_ context.Context, kind domain.AllowKind, name string,
) (*domain.AllowEntry, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	entry, ok := r.store.entries[domain.AllowEntry{Name: name, Kind: kind}.Key()]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

func (r allowRepositoryImpl) SaveEntry(
	ctx context.Context, entry domain.AllowEntry,
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	r.store.journal(ctx, entry.Key())

	r.store.entries[entry.Key()] = entry
	return nil
}

func (r allowRepositoryImpl) ListEntries(
	_ context.Context, kind domain.AllowKind,
) ([]domain.AllowEntry, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	entries := make([]domain.AllowEntry, 0)
	for _, e := range r.store.entries {
		if e.Kind == kind {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}
