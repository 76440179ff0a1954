package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/tdex-network/custodyd/internal/core/domain"
	"github.com/tdex-network/custodyd/internal/core/ports"
)

type stepKey struct{}

// journal collects the undo functions of the writes made within a step, so
// that a failed step can bring the stores back to the state they had when it
// started.
type journal struct {
	undoFns []func()
}

func (j *journal) rollback() {
	for i := len(j.undoFns) - 1; i >= 0; i-- {
		j.undoFns[i]()
	}
}

// recordUndo adds undo to the journal of the step running with ctx, if any.
// Writes made outside of a step are not journaled.
func recordUndo(ctx context.Context, undo func()) {
	if j, ok := ctx.Value(stepKey{}).(*journal); ok && j != nil {
		j.undoFns = append(j.undoFns, undo)
	}
}

type repoManager struct {
	// serializes steps
	lock *sync.Mutex

	accountStore    *accountInmemoryStore
	escrowStore     *escrowInmemoryStore
	depositStore    *depositInmemoryStore
	withdrawalStore *withdrawalInmemoryStore
	releaseStore    *releaseInmemoryStore
	allowStore      *allowInmemoryStore

	accountRepository    domain.AccountRepository
	escrowRepository     domain.EscrowRepository
	depositRepository    domain.DepositRepository
	withdrawalRepository domain.WithdrawalRepository
	releaseRepository    domain.ReleaseRepository
	allowRepository      domain.AllowRepository
}

// NewRepoManager returns a RepoManager whose state lives only in memory.
func NewRepoManager() ports.RepoManager {
	accountStore := &accountInmemoryStore{
		accounts: map[string]domain.Account{},
		locker:   &sync.RWMutex{},
	}
	escrowStore := &escrowInmemoryStore{
		escrows: map[uint64]domain.Escrow{},
		locker:  &sync.RWMutex{},
	}
	depositStore := &depositInmemoryStore{
		locker: &sync.RWMutex{},
	}
	withdrawalStore := &withdrawalInmemoryStore{
		locker: &sync.RWMutex{},
	}
	releaseStore := &releaseInmemoryStore{
		releases: map[uint64]domain.Release{},
		locker:   &sync.RWMutex{},
	}
	allowStore := &allowInmemoryStore{
		entries: map[string]domain.AllowEntry{},
		locker:  &sync.RWMutex{},
	}

	return &repoManager{
		lock:                 &sync.Mutex{},
		accountStore:         accountStore,
		escrowStore:          escrowStore,
		depositStore:         depositStore,
		withdrawalStore:      withdrawalStore,
		releaseStore:         releaseStore,
		allowStore:           allowStore,
		accountRepository:    NewAccountRepositoryImpl(accountStore),
		escrowRepository:     NewEscrowRepositoryImpl(escrowStore),
		depositRepository:    NewDepositRepositoryImpl(depositStore),
		withdrawalRepository: NewWithdrawalRepositoryImpl(withdrawalStore),
		releaseRepository:    NewReleaseRepositoryImpl(releaseStore),
		allowRepository:      NewAllowRepositoryImpl(allowStore),
	}
}

func (r *repoManager) AccountRepository() domain.AccountRepository {
	return r.accountRepository
}

func (r *repoManager) EscrowRepository() domain.EscrowRepository {
	return r.escrowRepository
}

func (r *repoManager) DepositRepository() domain.DepositRepository {
	return r.depositRepository
}

func (r *repoManager) WithdrawalRepository() domain.WithdrawalRepository {
	return r.withdrawalRepository
}

func (r *repoManager) ReleaseRepository() domain.ReleaseRepository {
	return r.releaseRepository
}

func (r *repoManager) AllowRepository() domain.AllowRepository {
	return r.allowRepository
}

func (r *repoManager) Close() {}

func (r *repoManager) RunTransaction(
	ctx context.Context,
	readOnly bool,
	handler func(ctx context.Context) (interface{}, error),
) (interface{}, error) {
	if ctx.Value(stepKey{}) != nil {
		return handler(ctx)
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	if readOnly {
		return handler(context.WithValue(ctx, stepKey{}, (*journal)(nil)))
	}

	j := &journal{}
	res, err := handler(context.WithValue(ctx, stepKey{}, j))
	if err != nil {
		j.rollback()
		return nil, err
	}
	return res, nil
}

func paginate(length int, page *domain.Page) (int, int) {
	if page == nil {
		return 0, length
	}
	start := page.Offset()
	if start > length {
		start = length
	}
	end := start + page.Size
	if end > length {
		end = length
	}
	return start, end
}

func sortedKeys(m map[string]domain.Account) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
