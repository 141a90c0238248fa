package app

import (
	"context"
	"errors"
	"time"

	"github.com/riskibarqy/f1-draft/internal/config"
	"github.com/riskibarqy/f1-draft/internal/domain/state"
	"github.com/riskibarqy/f1-draft/internal/infrastructure/repository/bolt"
	"github.com/riskibarqy/f1-draft/internal/infrastructure/repository/failover"
	"github.com/riskibarqy/f1-draft/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/f1-draft/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/f1-draft/internal/infrastructure/repository/redis"
	"github.com/riskibarqy/f1-draft/internal/platform/logging"
	"github.com/riskibarqy/f1-draft/internal/platform/resilience"
)

const connectTimeout = 5 * time.Second

type storage struct {
	state   state.Repository
	history state.HistoryRepository
	closers []func() error
}

func (s storage) close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// openStorage pairs the local store (bolt file or memory) with the configured
// remote backend. History always stays local.
func openStorage(ctx context.Context, cfg config.Config, logger *logging.Logger) (storage, error) {
	var out storage

	var local state.Repository
	if cfg.LocalStatePath != "" {
		db, err := bolt.Open(cfg.LocalStatePath)
		if err != nil {
			return storage{}, err
		}
		out.closers = append(out.closers, db.Close)
		local = bolt.NewStateRepository(db)
		out.history = bolt.NewHistoryRepository(db, cfg.StateHistoryLimit)
		logger.Info("local state file opened", "path", cfg.LocalStatePath)
	} else {
		local = memory.NewStateRepository()
		out.history = memory.NewHistoryRepository(cfg.StateHistoryLimit)
	}

	remote, err := openRemote(ctx, cfg, logger, &out)
	if err != nil {
		_ = out.close()
		return storage{}, err
	}
	if remote == nil {
		out.state = local
		return out, nil
	}

	breaker := resilience.NewCircuitBreakerFromConfig(resilience.CircuitBreakerConfig{
		Enabled:          cfg.RemoteCircuitEnabled,
		FailureThreshold: cfg.RemoteCircuitFailureCount,
		OpenTimeout:      cfg.RemoteCircuitOpenTimeout,
		HalfOpenMaxReq:   cfg.RemoteCircuitHalfOpenMaxReq,
	})
	out.state = failover.NewStateRepository(local, remote, breaker, logger)
	return out, nil
}

// openRemote only warns when the backend is unreachable at startup; the
// failover store keeps serving from the local copy until it recovers.
func openRemote(ctx context.Context, cfg config.Config, logger *logging.Logger, out *storage) (state.Repository, error) {
	switch cfg.StateBackend {
	case config.BackendPostgres:
		db, err := openPostgres(cfg)
		if err != nil {
			return nil, err
		}
		out.closers = append(out.closers, db.Close)

		pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			logger.Warn("postgres ping failed", "db", databaseName(cfg.DBURL), "error", err)
		}
		logger.Info("remote state backend ready", "backend", cfg.StateBackend, "db", databaseName(cfg.DBURL))
		return postgres.NewStateRepository(db, cfg.LeagueKey), nil
	case config.BackendRedis:
		client := redis.NewClient(redis.ClientConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		out.closers = append(out.closers, client.Close)

		pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			logger.Warn("redis ping failed", "addr", cfg.RedisAddr, "error", err)
		}
		logger.Info("remote state backend ready", "backend", cfg.StateBackend, "addr", cfg.RedisAddr)
		return redis.NewStateRepository(client, cfg.RedisStateKey), nil
	default:
		return nil, nil
	}
}
