package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/riskibarqy/f1-draft/internal/platform/logging"
)

const DefaultDeadlineSpec = "@every 10s"

// DeadlineAdvancer closes drafting races whose deadline has passed.
type DeadlineAdvancer interface {
	AdvanceDeadlines(ctx context.Context, now time.Time) (bool, error)
}

type Config struct {
	Spec     string
	Location *time.Location
	// Timeout bounds a single tick.
	Timeout time.Duration
}

type DeadlineScheduler struct {
	c       *cron.Cron
	cfg     Config
	target  DeadlineAdvancer
	logger  *logging.Logger
	now     func() time.Time
	entryID cron.EntryID
}

func NewDeadlineScheduler(cfg Config, target DeadlineAdvancer, logger *logging.Logger) (*DeadlineScheduler, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Spec == "" {
		cfg.Spec = DefaultDeadlineSpec
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	s := &DeadlineScheduler{
		c: cron.New(
			cron.WithLocation(cfg.Location),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		cfg:    cfg,
		target: target,
		logger: logger.With("component", "deadline_scheduler"),
		now:    time.Now,
	}

	entryID, err := s.c.AddFunc(cfg.Spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
		defer cancel()
		s.Tick(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid deadline schedule %q: %w", cfg.Spec, err)
	}
	s.entryID = entryID
	return s, nil
}

// Tick runs one deadline check. It reports whether a race was closed.
func (s *DeadlineScheduler) Tick(ctx context.Context) bool {
	changed, err := s.target.AdvanceDeadlines(ctx, s.now().In(s.cfg.Location))
	if err != nil {
		s.logger.ErrorContext(ctx, "advance draft deadlines failed", "error", err)
		return false
	}
	if changed {
		s.logger.InfoContext(ctx, "draft deadline passed, calendar advanced")
	}
	return changed
}

func (s *DeadlineScheduler) Start() {
	s.logger.Info("starting deadline scheduler", "spec", s.cfg.Spec, "location", s.cfg.Location.String())
	s.c.Start()
}

// Stop halts the schedule and waits for a running tick or ctx, whichever ends first.
func (s *DeadlineScheduler) Stop(ctx context.Context) {
	done := s.c.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("deadline scheduler stop timed out")
	}
}

// Next reports when the next tick is due.
func (s *DeadlineScheduler) Next() time.Time {
	return s.c.Entry(s.entryID).Next
}
