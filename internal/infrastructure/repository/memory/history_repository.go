package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/f1-draft/internal/domain/state"
)

const DefaultHistoryLimit = 50

// HistoryRepository keeps the most recent snapshots for undo, dropping the
// oldest once limit is reached.
type HistoryRepository struct {
	mu    sync.Mutex
	limit int
	items []state.Snapshot
}

func NewHistoryRepository(limit int) *HistoryRepository {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &HistoryRepository{limit: limit}
}

func (r *HistoryRepository) Push(_ context.Context, snapshot state.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = append(r.items, snapshot.Clone())
	if over := len(r.items) - r.limit; over > 0 {
		r.items = append([]state.Snapshot(nil), r.items[over:]...)
	}
	return nil
}

func (r *HistoryRepository) Pop(_ context.Context) (state.Snapshot, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.items) == 0 {
		return state.Snapshot{}, false, nil
	}
	last := r.items[len(r.items)-1]
	r.items = r.items[:len(r.items)-1]
	return last, true, nil
}

func (r *HistoryRepository) Len(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.items), nil
}
