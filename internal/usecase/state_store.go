package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/riskibarqy/f1-draft/internal/domain/state"
	"github.com/riskibarqy/f1-draft/internal/platform/logging"
)

// StateStore serializes read-modify-write cycles on the league snapshot
// within this process. Across processes the last save wins.
type StateStore struct {
	repo    state.Repository
	history state.HistoryRepository
	logger  *logging.Logger
	now     func() time.Time

	mu        sync.Mutex
	listeners []func(ctx context.Context, snapshot state.Snapshot)
}

func NewStateStore(repo state.Repository, history state.HistoryRepository, logger *logging.Logger) *StateStore {
	if logger == nil {
		logger = logging.Default()
	}
	return &StateStore{
		repo:    repo,
		history: history,
		logger:  logger,
		now:     time.Now,
	}
}

// OnSave registers a listener called after every successful save.
func (s *StateStore) OnSave(fn func(ctx context.Context, snapshot state.Snapshot)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Snapshot returns a private copy of the current state.
func (s *StateStore) Snapshot(ctx context.Context) (state.Snapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StateStore.Snapshot")
	defer span.End()

	snapshot, err := s.load(ctx)
	if err != nil {
		return state.Snapshot{}, err
	}
	return snapshot, nil
}

// Update applies fn to a copy of the state and saves the result. When fn
// returns an error nothing is saved.
func (s *StateStore) Update(ctx context.Context, fn func(snapshot *state.Snapshot) error) (state.Snapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StateStore.Update")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load(ctx)
	if err != nil {
		return state.Snapshot{}, err
	}

	next := current.Clone()
	if err := fn(&next); err != nil {
		return state.Snapshot{}, err
	}

	if s.history != nil {
		if err := s.history.Push(ctx, current); err != nil {
			s.logger.WarnContext(ctx, "push state history failed", "error", err)
		}
	}

	return s.saveLocked(ctx, next)
}

// Restore replaces the current state with the most recent history entry.
func (s *StateStore) Restore(ctx context.Context) (state.Snapshot, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StateStore.Restore")
	defer span.End()

	if s.history == nil {
		return state.Snapshot{}, false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load(ctx)
	if err != nil {
		return state.Snapshot{}, false, err
	}

	prev, ok, err := s.history.Pop(ctx)
	if err != nil {
		return state.Snapshot{}, false, fmt.Errorf("%w: pop state history: %v", ErrDependencyUnavailable, err)
	}
	if !ok {
		return state.Snapshot{}, false, nil
	}
	prev.Normalize()
	// Versions keep increasing so remote readers see the restore as a new write.
	prev.Version = current.Version

	saved, err := s.saveLocked(ctx, prev)
	if err != nil {
		return state.Snapshot{}, false, err
	}
	return saved, true, nil
}

func (s *StateStore) load(ctx context.Context) (state.Snapshot, error) {
	snapshot, exists, err := s.repo.Load(ctx)
	if err != nil {
		return state.Snapshot{}, fmt.Errorf("%w: load state: %v", ErrDependencyUnavailable, err)
	}
	if !exists {
		return state.Empty(), nil
	}
	snapshot.Normalize()
	return snapshot.Clone(), nil
}

func (s *StateStore) saveLocked(ctx context.Context, next state.Snapshot) (state.Snapshot, error) {
	next.Normalize()
	next.Version++
	next.UpdatedAt = s.now().UTC()

	if err := s.repo.Save(ctx, next); err != nil {
		return state.Snapshot{}, fmt.Errorf("%w: save state: %v", ErrDependencyUnavailable, err)
	}

	for _, fn := range s.listeners {
		fn(ctx, next)
	}
	return next.Clone(), nil
}
