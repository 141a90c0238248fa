package bolt

import (
	"context"
	"fmt"

	"github.com/riskibarqy/f1-draft/internal/domain/state"
	"go.etcd.io/bbolt"
)

// HistoryRepository keeps undo snapshots keyed by an increasing sequence and
// trims the oldest entries past limit.
type HistoryRepository struct {
	db    *bbolt.DB
	limit int
}

func NewHistoryRepository(d *DB, limit int) *HistoryRepository {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &HistoryRepository{db: d.db, limit: limit}
}

func (r *HistoryRepository) Push(_ context.Context, snapshot state.Snapshot) error {
	data, err := state.Encode(snapshot)
	if err != nil {
		return fmt.Errorf("encode history snapshot: %w", err)
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(historyBucket))
		seq, err := bucket.NextSequence()
		if err != nil {
			return fmt.Errorf("next history sequence: %w", err)
		}
		if err := bucket.Put(sequenceKey(seq), data); err != nil {
			return fmt.Errorf("put history snapshot: %w", err)
		}

		excess := countKeys(bucket) - r.limit
		var stale [][]byte
		c := bucket.Cursor()
		for k, _ := c.First(); k != nil && len(stale) < excess; k, _ = c.Next() {
			stale = append(stale, append([]byte(nil), k...))
		}
		for _, k := range stale {
			if err := bucket.Delete(k); err != nil {
				return fmt.Errorf("trim history: %w", err)
			}
		}
		return nil
	})
}

func (r *HistoryRepository) Pop(_ context.Context) (state.Snapshot, bool, error) {
	var (
		snapshot state.Snapshot
		found    bool
	)
	err := r.db.Update(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(historyBucket)).Cursor()
		k, data := c.Last()
		if k == nil {
			return nil
		}
		// bbolt memory is only valid inside the transaction.
		decoded, err := state.Decode(append([]byte(nil), data...))
		if err != nil {
			return fmt.Errorf("decode history snapshot: %w", err)
		}
		if err := c.Delete(); err != nil {
			return fmt.Errorf("delete history snapshot: %w", err)
		}
		snapshot, found = decoded, true
		return nil
	})
	if err != nil {
		return state.Snapshot{}, false, err
	}
	return snapshot, found, nil
}

func (r *HistoryRepository) Len(_ context.Context) (int, error) {
	n := 0
	err := r.db.View(func(tx *bbolt.Tx) error {
		n = countKeys(tx.Bucket([]byte(historyBucket)))
		return nil
	})
	return n, err
}

func countKeys(bucket *bbolt.Bucket) int {
	n := 0
	c := bucket.Cursor()
	for k, _ := c.First(); k != nil; k, _ = c.Next() {
		n++
	}
	return n
}
