package redis

import (
	"context"
	"errors"
	"fmt"

	crerr "github.com/cockroachdb/errors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/riskibarqy/f1-draft/internal/domain/state"
)

const DefaultStateKey = "f1draft:state"

// StateRepository keeps the whole snapshot under a single key.
type StateRepository struct {
	client goredis.Cmdable
	key    string
}

func NewStateRepository(client goredis.Cmdable, key string) *StateRepository {
	if key == "" {
		key = DefaultStateKey
	}
	return &StateRepository{client: client, key: key}
}

func (r *StateRepository) Load(ctx context.Context) (state.Snapshot, bool, error) {
	raw, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return state.Snapshot{}, false, nil
	}
	if err != nil {
		return state.Snapshot{}, false, crerr.Mark(fmt.Errorf("get state key=%s: %w", r.key, err), state.ErrUnavailable)
	}

	snapshot, err := state.Decode(raw)
	if err != nil {
		return state.Snapshot{}, false, fmt.Errorf("decode state key=%s: %w", r.key, err)
	}
	return snapshot, true, nil
}

func (r *StateRepository) Save(ctx context.Context, snapshot state.Snapshot) error {
	raw, err := state.Encode(snapshot)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key, raw, 0).Err(); err != nil {
		return crerr.Mark(fmt.Errorf("set state key=%s: %w", r.key, err), state.ErrUnavailable)
	}
	return nil
}
