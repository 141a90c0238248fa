package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/f1-draft/internal/domain/state"
)

type StateRepository struct {
	mu     sync.RWMutex
	item   state.Snapshot
	exists bool
}

func NewStateRepository() *StateRepository {
	return &StateRepository{}
}

// NewSeededStateRepository starts from snapshot instead of an empty league.
func NewSeededStateRepository(snapshot state.Snapshot) *StateRepository {
	snapshot.Normalize()
	return &StateRepository{item: snapshot.Clone(), exists: true}
}

func (r *StateRepository) Load(_ context.Context) (state.Snapshot, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.exists {
		return state.Snapshot{}, false, nil
	}
	return r.item.Clone(), true, nil
}

func (r *StateRepository) Save(_ context.Context, snapshot state.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.item = snapshot.Clone()
	r.exists = true
	return nil
}
