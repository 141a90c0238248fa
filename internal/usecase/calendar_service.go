package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/f1-draft/internal/domain/race"
	"github.com/riskibarqy/f1-draft/internal/domain/state"
	"github.com/riskibarqy/f1-draft/internal/domain/user"
	"github.com/riskibarqy/f1-draft/internal/platform/id"
	"github.com/riskibarqy/f1-draft/internal/platform/logging"
)

var errNoChange = errors.New("no change")

type CalendarService struct {
	store    *StateStore
	ids      id.Generator
	location *time.Location
	now      func() time.Time
	logger   *logging.Logger
}

func NewCalendarService(store *StateStore, ids id.Generator, location *time.Location, logger *logging.Logger) *CalendarService {
	if logger == nil {
		logger = logging.Default()
	}
	if location == nil {
		location = time.UTC
	}
	return &CalendarService{
		store:    store,
		ids:      ids,
		location: location,
		now:      time.Now,
		logger:   logger,
	}
}

type SaveRaceInput struct {
	ID           int64
	Name         string
	Date         string
	DeadlineDate string
	DeadlineTime string
	Status       string
}

// List returns the calendar in date order.
func (s *CalendarService) List(ctx context.Context) ([]race.Race, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CalendarService.List")
	defer span.End()

	snapshot, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := []race.Race(snapshot.RaceCalendar.Clone())
	race.SortByDate(out)
	return out, nil
}

// SaveRace creates the race when input.ID is zero, otherwise updates it.
func (s *CalendarService) SaveRace(ctx context.Context, actor user.Principal, input SaveRaceInput) (race.Race, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CalendarService.SaveRace")
	defer span.End()

	status, err := race.ParseStatus(input.Status)
	if err != nil {
		return race.Race{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	deadlineTime := strings.TrimSpace(input.DeadlineTime)
	if deadlineTime == "" {
		deadlineTime = race.DefaultDeadlineTime
	}
	item := race.Race{
		ID:           input.ID,
		Name:         strings.TrimSpace(input.Name),
		Date:         strings.TrimSpace(input.Date),
		DeadlineDate: strings.TrimSpace(input.DeadlineDate),
		DeadlineTime: deadlineTime,
		Status:       status,
	}

	var saved race.Race
	_, err = s.store.Update(ctx, func(snapshot *state.Snapshot) error {
		if err := requireAdmin(*snapshot, actor); err != nil {
			return err
		}
		if item.ID == 0 {
			item.ID = s.ids.NextID()
		} else if _, _, ok := snapshot.RaceCalendar.Find(item.ID); !ok {
			return fmt.Errorf("%w: race=%d", ErrNotFound, item.ID)
		}
		if err := item.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}

		snapshot.RaceCalendar = snapshot.RaceCalendar.Upsert(item)
		saved, _, _ = snapshot.RaceCalendar.Find(item.ID)
		return nil
	})
	if err != nil {
		return race.Race{}, fmt.Errorf("save race: %w", err)
	}

	s.logger.InfoContext(ctx, "race saved", "race_id", saved.ID, "status", saved.Status)
	return saved, nil
}

func (s *CalendarService) DeleteRace(ctx context.Context, actor user.Principal, raceID int64) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.CalendarService.DeleteRace")
	defer span.End()

	_, err := s.store.Update(ctx, func(snapshot *state.Snapshot) error {
		if err := requireAdmin(*snapshot, actor); err != nil {
			return err
		}
		if _, _, ok := snapshot.RaceCalendar.Find(raceID); !ok {
			return fmt.Errorf("%w: race=%d", ErrNotFound, raceID)
		}
		snapshot.RaceCalendar = snapshot.RaceCalendar.Remove(raceID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete race: %w", err)
	}
	return nil
}

// CurrentDraftRace returns the drafting race, promoting the earliest
// upcoming race when none is drafting.
func (s *CalendarService) CurrentDraftRace(ctx context.Context) (race.Race, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CalendarService.CurrentDraftRace")
	defer span.End()

	snapshot, err := s.store.Snapshot(ctx)
	if err != nil {
		return race.Race{}, err
	}
	if current, _, ok := snapshot.RaceCalendar.Drafting(); ok {
		return current, nil
	}

	var current race.Race
	_, err = s.store.Update(ctx, func(snapshot *state.Snapshot) error {
		r, found, _ := snapshot.RaceCalendar.EnsureDrafting()
		if !found {
			return fmt.Errorf("%w: no upcoming race", ErrNotFound)
		}
		current = r
		return nil
	})
	if err != nil {
		return race.Race{}, err
	}

	s.logger.InfoContext(ctx, "race promoted to drafting", "race_id", current.ID)
	return current, nil
}

// AdvanceDeadlines completes drafting races whose deadline has passed and
// promotes the next upcoming race. It saves only when something changed.
func (s *CalendarService) AdvanceDeadlines(ctx context.Context, now time.Time) (bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CalendarService.AdvanceDeadlines")
	defer span.End()

	snapshot, err := s.store.Snapshot(ctx)
	if err != nil {
		return false, err
	}
	probe := snapshot.RaceCalendar.Clone()
	if !probe.CloseExpired(now, s.location) {
		return false, nil
	}

	changed := false
	_, err = s.store.Update(ctx, func(snapshot *state.Snapshot) error {
		changed = snapshot.RaceCalendar.CloseExpired(now, s.location)
		if !changed {
			return errNoChange
		}
		return nil
	})
	if errors.Is(err, errNoChange) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("advance deadlines: %w", err)
	}

	if current, _, ok := probe.Drafting(); ok {
		s.logger.InfoContext(ctx, "draft window advanced", "drafting_race_id", current.ID)
	} else {
		s.logger.InfoContext(ctx, "draft window closed", "drafting_race_id", nil)
	}
	return changed, nil
}

// CanDraft reports whether picks for raceID are still accepted at now (zero
// means the current time). Races missing from the calendar are not blocked.
func (s *CalendarService) CanDraft(ctx context.Context, raceID int64, now time.Time) (bool, error) {
	if now.IsZero() {
		now = s.now()
	}
	snapshot, err := s.store.Snapshot(ctx)
	if err != nil {
		return false, err
	}
	return canDraft(snapshot, raceID, now, s.location), nil
}

func canDraft(snapshot state.Snapshot, raceID int64, now time.Time, loc *time.Location) bool {
	r, _, ok := snapshot.RaceCalendar.Find(raceID)
	if !ok {
		return true
	}
	if r.Status == race.StatusCompleted {
		return false
	}
	deadline, ok := r.Deadline(loc)
	if !ok {
		return true
	}
	return now.Before(deadline)
}
