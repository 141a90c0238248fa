package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/f1-draft/internal/domain/bonus"
	"github.com/riskibarqy/f1-draft/internal/domain/driver"
	"github.com/riskibarqy/f1-draft/internal/domain/state"
	"github.com/riskibarqy/f1-draft/internal/domain/user"
	"github.com/riskibarqy/f1-draft/internal/platform/logging"
)

type BonusService struct {
	store    *StateStore
	roster   driver.Roster
	location *time.Location
	now      func() time.Time
	logger   *logging.Logger
}

func NewBonusService(store *StateStore, roster driver.Roster, location *time.Location, logger *logging.Logger) *BonusService {
	if logger == nil {
		logger = logging.Default()
	}
	if location == nil {
		location = time.UTC
	}
	return &BonusService{
		store:    store,
		roster:   roster,
		location: location,
		now:      time.Now,
		logger:   logger,
	}
}

type BonusView struct {
	bonus.Picks
	Submitted bool `json:"submitted"`
}

func (s *BonusService) GetBonusPicks(ctx context.Context, userID, raceID int64) (BonusView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BonusService.GetBonusPicks")
	defer span.End()

	snapshot, err := s.store.Snapshot(ctx)
	if err != nil {
		return BonusView{}, err
	}
	return BonusView{
		Picks:     snapshot.BonusPicks.Picks(userID, raceID),
		Submitted: snapshot.Submissions.Bonus.Submitted(raceID, userID),
	}, nil
}

// SavePolePick stores the pole guess; a nil driverID clears it.
func (s *BonusService) SavePolePick(ctx context.Context, actor user.Principal, raceID int64, driverID *int) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.BonusService.SavePolePick")
	defer span.End()

	if driverID != nil && !s.roster.Contains(*driverID) {
		return fmt.Errorf("%w: unknown driver %d", ErrInvalidInput, *driverID)
	}

	_, err := s.store.Update(ctx, func(snapshot *state.Snapshot) error {
		if err := requireOpenRace(*snapshot, actor, raceID, s.now(), s.location); err != nil {
			return err
		}
		snapshot.BonusPicks.SetPole(actor.UserID, raceID, driverID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save pole pick: %w", err)
	}
	return nil
}

// SaveTop5Pick stores up to five ordered guesses. Zero entries are empty slots.
func (s *BonusService) SaveTop5Pick(ctx context.Context, actor user.Principal, raceID int64, driverIDs []int) ([]int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BonusService.SaveTop5Pick")
	defer span.End()

	if len(driverIDs) > bonus.MaxTop5Picks {
		driverIDs = driverIDs[:bonus.MaxTop5Picks]
	}
	seen := make(map[int]struct{}, len(driverIDs))
	for _, id := range driverIDs {
		if id == 0 {
			continue
		}
		if !s.roster.Contains(id) {
			return nil, fmt.Errorf("%w: unknown driver %d", ErrInvalidInput, id)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: driver %d picked twice", ErrInvalidInput, id)
		}
		seen[id] = struct{}{}
	}

	_, err := s.store.Update(ctx, func(snapshot *state.Snapshot) error {
		if err := requireOpenRace(*snapshot, actor, raceID, s.now(), s.location); err != nil {
			return err
		}
		if err := snapshot.BonusPicks.SetTop5(actor.UserID, raceID, driverIDs); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("save top5 pick: %w", err)
	}
	return append([]int(nil), driverIDs...), nil
}

func (s *BonusService) SubmitBonuses(ctx context.Context, actor user.Principal, raceID int64) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.BonusService.SubmitBonuses")
	defer span.End()

	_, err := s.store.Update(ctx, func(snapshot *state.Snapshot) error {
		if err := requireOpenRace(*snapshot, actor, raceID, s.now(), s.location); err != nil {
			return err
		}
		snapshot.Submissions.Bonus.Mark(raceID, actor.UserID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("submit bonuses: %w", err)
	}

	s.logger.InfoContext(ctx, "bonus picks submitted", "user_id", actor.UserID, "race_id", raceID)
	return nil
}
