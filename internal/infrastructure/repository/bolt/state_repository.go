package bolt

import (
	"context"
	"fmt"

	"github.com/riskibarqy/f1-draft/internal/domain/state"
	"go.etcd.io/bbolt"
)

type StateRepository struct {
	db *bbolt.DB
}

func NewStateRepository(d *DB) *StateRepository {
	return &StateRepository{db: d.db}
}

func (r *StateRepository) Load(_ context.Context) (state.Snapshot, bool, error) {
	var (
		snapshot state.Snapshot
		found    bool
	)
	err := r.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(snapshotBucket)).Get([]byte(currentKey))
		if data == nil {
			return nil
		}
		decoded, err := state.Decode(append([]byte(nil), data...))
		if err != nil {
			return err
		}
		snapshot, found = decoded, true
		return nil
	})
	if err != nil {
		return state.Snapshot{}, false, fmt.Errorf("load local snapshot: %w", err)
	}
	return snapshot, found, nil
}

func (r *StateRepository) Save(_ context.Context, snapshot state.Snapshot) error {
	data, err := state.Encode(snapshot)
	if err != nil {
		return fmt.Errorf("encode local snapshot: %w", err)
	}
	return r.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(snapshotBucket)).Put([]byte(currentKey), data)
	})
}
