package dbbadger

import (
	"context"

	"github.com/dgraph-io/badger/v3"
	"github.com/timshannon/badgerhold/v4"
)

const (
	depositSequenceKey    = "deposit_sequence"
	withdrawalSequenceKey = "withdrawal_sequence"
	releaseSequenceKey    = "release_sequence"
)

// sequence is the persisted counter of the ids of a record type.
type sequence struct {
	Value uint64
}

// insertWithNextID stores the record returned by withID under the next value
// of the counter at seqKey and returns it. Ids start from 1.
func insertWithNextID(
	ctx context.Context, store *badgerhold.Store, seqKey string,
	withID func(id uint64) interface{},
) (uint64, error) {
	if tx := getTx(ctx); tx != nil {
		return txInsertWithNextID(tx, store, seqKey, withID)
	}

	var id uint64
	err := store.Badger().Update(func(tx *badger.Txn) error {
		var err error
		id, err = txInsertWithNextID(tx, store, seqKey, withID)
		return err
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func txInsertWithNextID(
	tx *badger.Txn, store *badgerhold.Store, seqKey string,
	withID func(id uint64) interface{},
) (uint64, error) {
	seq := sequence{}
	if err := store.TxGet(tx, seqKey, &seq); err != nil {
		if err != badgerhold.ErrNotFound {
			return 0, err
		}
	}
	seq.Value++

	if err := store.TxUpsert(tx, seqKey, &seq); err != nil {
		return 0, err
	}
	if err := store.TxInsert(tx, seq.Value, withID(seq.Value)); err != nil {
		return 0, err
	}
	return seq.Value, nil
}
