package state

import (
	"context"
	"errors"
)

// ErrUnavailable marks transient failures of a backing store.
var ErrUnavailable = errors.New("state store unavailable")

// Repository persists the whole snapshot. Save fully replaces what is stored.
type Repository interface {
	Load(ctx context.Context) (Snapshot, bool, error)
	Save(ctx context.Context, snapshot Snapshot) error
}

// HistoryRepository is a bounded stack of prior snapshots used for undo.
type HistoryRepository interface {
	Push(ctx context.Context, snapshot Snapshot) error
	Pop(ctx context.Context) (Snapshot, bool, error)
	Len(ctx context.Context) (int, error)
}
