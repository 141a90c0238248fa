package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/f1-draft/internal/domain/state"
	"github.com/riskibarqy/f1-draft/internal/domain/user"
	"github.com/riskibarqy/f1-draft/internal/platform/logging"
)

type HistoryService struct {
	store  *StateStore
	logger *logging.Logger
}

func NewHistoryService(store *StateStore, logger *logging.Logger) *HistoryService {
	if logger == nil {
		logger = logging.Default()
	}
	return &HistoryService{store: store, logger: logger}
}

// Undo restores the snapshot saved before the most recent change.
func (s *HistoryService) Undo(ctx context.Context, actor user.Principal) (state.Snapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.HistoryService.Undo")
	defer span.End()

	current, err := s.store.Snapshot(ctx)
	if err != nil {
		return state.Snapshot{}, err
	}
	if err := requireAdmin(current, actor); err != nil {
		return state.Snapshot{}, err
	}

	restored, ok, err := s.store.Restore(ctx)
	if err != nil {
		return state.Snapshot{}, fmt.Errorf("undo: %w", err)
	}
	if !ok {
		return state.Snapshot{}, fmt.Errorf("%w: nothing to undo", ErrNotFound)
	}

	s.logger.InfoContext(ctx, "state restored from history", "actor_id", actor.UserID, "version", restored.Version)
	return restored, nil
}
