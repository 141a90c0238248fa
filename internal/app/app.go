package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/riskibarqy/f1-draft/internal/config"
	"github.com/riskibarqy/f1-draft/internal/domain/draft"
	"github.com/riskibarqy/f1-draft/internal/domain/driver"
	"github.com/riskibarqy/f1-draft/internal/infrastructure/scheduler"
	"github.com/riskibarqy/f1-draft/internal/interfaces/httpapi"
	"github.com/riskibarqy/f1-draft/internal/platform/id"
	"github.com/riskibarqy/f1-draft/internal/platform/logging"
	"github.com/riskibarqy/f1-draft/internal/usecase"
)

// App owns the HTTP server, the deadline scheduler and the storage handles
// they depend on.
type App struct {
	Server    *http.Server
	Scheduler *scheduler.DeadlineScheduler

	closers []func() error
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	storage, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	store := usecase.NewStateStore(storage.state, storage.history, logger)
	services := NewServices(store, cfg, logger)

	deadlines, err := scheduler.NewDeadlineScheduler(scheduler.Config{
		Spec:     cfg.DeadlineCheckSpec,
		Location: cfg.DeadlineLocation,
	}, services.Calendar, logger)
	if err != nil {
		_ = storage.close()
		return nil, fmt.Errorf("build deadline scheduler: %w", err)
	}

	handler := httpapi.NewHandler(services, driver.DefaultRoster(), logger)
	router := httpapi.NewRouter(handler, services.Users, logger, cfg.CORSAllowedOrigins)

	return &App{
		Server: &http.Server{
			Addr:         cfg.HTTPAddr,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		Scheduler: deadlines,
		closers:   []func() error{storage.close},
	}, nil
}

// NewServices builds the use cases over one state store.
func NewServices(store *usecase.StateStore, cfg config.Config, logger *logging.Logger) httpapi.Services {
	roster := driver.DefaultRoster()
	rules := draft.DefaultRules()
	rules.ReverseChiltonTurnOrder = cfg.DraftReverseChiltonOrder

	location := cfg.DeadlineLocation
	ids := id.NewTimestampGenerator()

	cacheTTL := cfg.CacheTTL
	if !cfg.CacheEnabled {
		cacheTTL = 0
	}

	scoring := usecase.NewScoringService(store, rules, cfg.ScoringWorkers, logger)
	return httpapi.Services{
		Users:     usecase.NewUserService(store, ids, logger),
		Calendar:  usecase.NewCalendarService(store, ids, location, logger),
		Drafts:    usecase.NewDraftService(store, roster, rules, location, logger),
		Bonuses:   usecase.NewBonusService(store, roster, location, logger),
		Results:   usecase.NewResultsService(store, scoring, roster, logger),
		Scoring:   scoring,
		Standings: usecase.NewStandingsService(store, scoring, rules, cacheTTL, logger),
		History:   usecase.NewHistoryService(store, logger),
	}
}

// Start runs the deadline scheduler. The caller serves Server.
func (a *App) Start() {
	a.Scheduler.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if err := a.Server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
	}
	a.Scheduler.Stop(ctx)
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
