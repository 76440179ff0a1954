package dbbadger

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/custodyd/internal/core/domain"
	"github.com/tdex-network/custodyd/internal/core/ports"
	"github.com/timshannon/badgerhold/v4"
)

type txKey struct{}

type repoManager struct {
	store *badgerhold.Store
	// serializes write steps
	lock *sync.Mutex

	accountRepository    domain.AccountRepository
	escrowRepository     domain.EscrowRepository
	depositRepository    domain.DepositRepository
	withdrawalRepository domain.WithdrawalRepository
	releaseRepository    domain.ReleaseRepository
	allowRepository      domain.AllowRepository
}

// NewRepoManager opens (or creates if not exists) the badger store in the
// given directory. An empty baseDbDir makes the store live only in memory.
func NewRepoManager(
	baseDbDir string, logger badger.Logger,
) (ports.RepoManager, error) {
	var ledgerDir string
	if len(baseDbDir) > 0 {
		ledgerDir = filepath.Join(baseDbDir, "ledger")
	}

	store, err := createDb(ledgerDir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening ledger db: %w", err)
	}

	return &repoManager{
		store:                store,
		lock:                 &sync.Mutex{},
		accountRepository:    NewAccountRepositoryImpl(store),
		escrowRepository:     NewEscrowRepositoryImpl(store),
		depositRepository:    NewDepositRepositoryImpl(store),
		withdrawalRepository: NewWithdrawalRepositoryImpl(store),
		releaseRepository:    NewReleaseRepositoryImpl(store),
		allowRepository:      NewAllowRepositoryImpl(store),
	}, nil
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

func (r *repoManager) Close() {
	if err := r.store.Close(); err != nil {
		log.WithError(err).Warn("error while closing ledger db")
	}
}

func (r *repoManager) RunTransaction(
	ctx context.Context,
	readOnly bool,
	handler func(ctx context.Context) (interface{}, error),
) (interface{}, error) {
	if getTx(ctx) != nil {
		return handler(ctx)
	}

	if !readOnly {
		r.lock.Lock()
		defer r.lock.Unlock()
	}

	tx := r.store.Badger().NewTransaction(!readOnly)
	defer tx.Discard()

	res, err := handler(context.WithValue(ctx, txKey{}, tx))
	if err != nil {
		return nil, err
	}

	if !readOnly {
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("committing step: %w", err)
		}
	}
	return res, nil
}

func getTx(ctx context.Context) *badger.Txn {
	if tx, ok := ctx.Value(txKey{}).(*badger.Txn); ok {
		return tx
	}
	return nil
}

func createDb(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	isInMemory := len(dbDir) <= 0

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger

	if isInMemory {
		opts.InMemory = true
	} else {
		opts.Compression = options.ZSTD
	}

	db, err := badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
	if err != nil {
		return nil, err
	}

	if !isInMemory {
		ticker := time.NewTicker(30 * time.Minute)

		go func() {
			for {
				<-ticker.C
				if err := db.Badger().RunValueLogGC(0.5); err != nil &&
					err != badger.ErrNoRewrite {
					log.Error(err)
				}
			}
		}()
	}

	return db, nil
}

func pageQuery(query *badgerhold.Query, sortField string, page *domain.Page) *badgerhold.Query {
	if query == nil {
		query = &badgerhold.Query{}
	}
	query = query.SortBy(sortField)
	if page != nil {
		query = query.Skip(page.Offset()).Limit(page.Size)
	}
	return query
}
