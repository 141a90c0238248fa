package failover

import (
	"context"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/f1-draft/internal/domain/state"
	"github.com/riskibarqy/f1-draft/internal/platform/logging"
	"github.com/riskibarqy/f1-draft/internal/platform/resilience"
)

// StateRepository writes every snapshot locally and mirrors it to a remote
// store while the remote is healthy. Remote failures never fail a save.
type StateRepository struct {
	local   state.Repository
	remote  state.Repository
	breaker *resilience.CircuitBreaker
	logger  *logging.Logger
}

func NewStateRepository(local, remote state.Repository, breaker *resilience.CircuitBreaker, logger *logging.Logger) *StateRepository {
	if logger == nil {
		logger = logging.Default()
	}
	r := &StateRepository{
		local:   local,
		remote:  remote,
		breaker: breaker,
		logger:  logger,
	}
	if breaker != nil {
		breaker.OnStateChange(func(from, to resilience.CircuitState) {
			logger.Warn("remote state store circuit changed", "from", from, "to", to)
		})
	}
	return r
}

// Load prefers the remote snapshot when it is newer than the local one and
// refreshes the local copy with it.
func (r *StateRepository) Load(ctx context.Context) (state.Snapshot, bool, error) {
	local, hasLocal, err := r.local.Load(ctx)
	if err != nil {
		return state.Snapshot{}, false, err
	}
	if r.remote == nil {
		return local, hasLocal, nil
	}

	var (
		remote    state.Snapshot
		hasRemote bool
	)
	err = r.breaker.Execute(func() error {
		var loadErr error
		remote, hasRemote, loadErr = r.remote.Load(ctx)
		return loadErr
	})
	if err != nil {
		r.logRemoteError(ctx, "load", err)
		return local, hasLocal, nil
	}
	if !hasRemote || (hasLocal && remote.Version <= local.Version) {
		return local, hasLocal, nil
	}

	if err := r.local.Save(ctx, remote); err != nil {
		r.logger.WarnContext(ctx, "refresh local state from remote failed", "error", err)
	}
	return remote, true, nil
}

func (r *StateRepository) Save(ctx context.Context, snapshot state.Snapshot) error {
	if err := r.local.Save(ctx, snapshot); err != nil {
		return err
	}
	if r.remote == nil {
		return nil
	}

	err := r.breaker.Execute(func() error {
		return r.remote.Save(ctx, snapshot)
	})
	if err != nil {
		r.logRemoteError(ctx, "save", err)
	}
	return nil
}

func (r *StateRepository) logRemoteError(ctx context.Context, op string, err error) {
	switch {
	case crerr.Is(err, resilience.ErrCircuitOpen):
		r.logger.DebugContext(ctx, "remote state store skipped, circuit open", "op", op)
	case crerr.Is(err, state.ErrUnavailable):
		r.logger.WarnContext(ctx, "remote state store unavailable, using local copy", "op", op, "error", err)
	default:
		r.logger.ErrorContext(ctx, "remote state store failed", "op", op, "error", err)
	}
}
