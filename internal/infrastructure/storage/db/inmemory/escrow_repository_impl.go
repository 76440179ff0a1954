package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tdex-network/custodyd/internal/core/domain"
)

type escrowInmemoryStore struct {
	escrows map[uint64]domain.Escrow
	global  domain.EscrowGlobal
	locker  *sync.RWMutex
}

// journal must be called with the store locked.
func (s *escrowInmemoryStore) journal(ctx context.Context, id uint64) {
	prev, existed := s.escrows[id]
	recordUndo(ctx, func() {
		s.locker.Lock()
		defer s.locker.Unlock()
		if existed {
			s.escrows[id] = prev
			return
		}
		delete(s.escrows, id)
	})
}

type escrowRepositoryImpl struct {
	store *escrowInmemoryStore
}

// NewEscrowRepositoryImpl returns a new inmemory EscrowRepository
// implementation.
func NewEscrowRepositoryImpl(store *escrowInmemoryStore) domain.EscrowRepository {
	return &escrowRepositoryImpl{store}
}

func (r escrowRepositoryImpl) NextEscrowID(ctx context.Context) (uint64, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	prev := r.store.global
	recordUndo(ctx, func() {
		r.store.locker.Lock()
		defer r.store.locker.Unlock()
		r.store.global = prev
	})
	return r.store.global.Next(), nil
}

func (r escrowRepositoryImpl) AddEscrow(
	ctx context.Context, escrow domain.Escrow,
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	if _, ok := r.store.escrows[escrow.ID]; ok {
		return fmt.Errorf("escrow with id %d already exists", escrow.ID)
	}
	r.store.journal(ctx, escrow.ID)
	r.store.escrows[escrow.ID] = escrow
	return nil
}

func (r escrowRepositoryImpl) GetEscrow(
	_ context.Context, id uint64,
) (*domain.Escrow, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	escrow, ok := r.store.escrows[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", domain.ErrEscrowNotFound, id)
	}
	return &escrow, nil
}

func (r escrowRepositoryImpl) DeleteEscrow(ctx context.Context, id uint64) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	if _, ok := r.store.escrows[id]; !ok {
		return fmt.Errorf("%w: %d", domain.ErrEscrowNotFound, id)
	}
	r.store.journal(ctx, id)
	delete(r.store.escrows, id)
	return nil
}

func (r escrowRepositoryImpl) GetEscrowsByFrom(
	_ context.Context, from string,
) ([]domain.Escrow, error) {
	return r.filter(func(e domain.Escrow) bool { return e.From == from }), nil
}

func (r escrowRepositoryImpl) GetEscrowsByTo(
	_ context.Context, to string,
) ([]domain.Escrow, error) {
	return r.filter(func(e domain.Escrow) bool { return e.To == to }), nil
}

func (r escrowRepositoryImpl) GetExpiredEscrows(
	_ context.Context, now int64,
) ([]domain.Escrow, error) {
	return r.filter(func(e domain.Escrow) bool { return e.Expiry <= now }), nil
}

func (r escrowRepositoryImpl) ListEscrows(
	_ context.Context, page *domain.Page,
) ([]domain.Escrow, error) {
	escrows := r.filter(func(domain.Escrow) bool { return true })
	start, end := paginate(len(escrows), page)
	return escrows[start:end], nil
}

func (r escrowRepositoryImpl) filter(
	match func(e domain.Escrow) bool,
) []domain.Escrow {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	escrows := make([]domain.Escrow, 0)
	for _, e := range r.store.escrows {
		if match(e) {
			escrows = append(escrows, e)
		}
	}
	sort.Slice(escrows, func(i, j int) bool { return escrows[i].ID < escrows[j].ID })
	return escrows
}
