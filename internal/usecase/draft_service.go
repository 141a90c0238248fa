package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/f1-draft/internal/domain/draft"
	"github.com/riskibarqy/f1-draft/internal/domain/driver"
	"github.com/riskibarqy/f1-draft/internal/domain/state"
	"github.com/riskibarqy/f1-draft/internal/domain/user"
	"github.com/riskibarqy/f1-draft/internal/platform/logging"
)

type DraftService struct {
	store    *StateStore
	roster   driver.Roster
	rules    draft.Rules
	location *time.Location
	now      func() time.Time
	logger   *logging.Logger
}

func NewDraftService(store *StateStore, roster driver.Roster, rules draft.Rules, location *time.Location, logger *logging.Logger) *DraftService {
	if logger == nil {
		logger = logging.Default()
	}
	if location == nil {
		location = time.UTC
	}
	return &DraftService{
		store:    store,
		roster:   roster,
		rules:    rules,
		location: location,
		now:      time.Now,
		logger:   logger,
	}
}

// GetRanking returns the stored ranking, else the user's most recent one for
// the variant, else roster order.
func (s *DraftService) GetRanking(ctx context.Context, userID int64, variant draft.Variant, raceID int64) ([]int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.GetRanking")
	defer span.End()

	snapshot, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.effectiveRanking(snapshot, userID, variant, raceID), nil
}

func (s *DraftService) effectiveRanking(snapshot state.Snapshot, userID int64, variant draft.Variant, raceID int64) []int {
	if ids, ok := snapshot.UserRankings.Get(variant, userID, raceID); ok && len(ids) > 0 {
		return append([]int(nil), ids...)
	}
	if ids, ok := snapshot.UserRankings.Latest(variant, userID); ok && len(ids) > 0 {
		return append([]int(nil), ids...)
	}
	return s.roster.IDs()
}

func (s *DraftService) SaveRanking(ctx context.Context, actor user.Principal, variant draft.Variant, raceID int64, driverIDs []int) ([]int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.SaveRanking")
	defer span.End()

	if err := draft.ValidateRanking(driverIDs, s.roster.IDs()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	_, err := s.store.Update(ctx, func(snapshot *state.Snapshot) error {
		if err := s.requireOpenRace(*snapshot, actor, raceID); err != nil {
			return err
		}
		snapshot.UserRankings.Set(variant, actor.UserID, raceID, driverIDs)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("save ranking: %w", err)
	}
	return append([]int(nil), driverIDs...), nil
}

// SubmitDraft opts the user into scoring for raceID. The current grojean
// ranking is stored so the submission is pinned even if it was never edited.
// The chilton ranking is not pinned: a user who never saved one for raceID
// takes no chilton picks, even though GetRanking offers a default order.
func (s *DraftService) SubmitDraft(ctx context.Context, actor user.Principal, raceID int64) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.SubmitDraft")
	defer span.End()

	_, err := s.store.Update(ctx, func(snapshot *state.Snapshot) error {
		if err := s.requireOpenRace(*snapshot, actor, raceID); err != nil {
			return err
		}
		ranking := s.effectiveRanking(*snapshot, actor.UserID, draft.VariantGrojean, raceID)
		snapshot.UserRankings.Set(draft.VariantGrojean, actor.UserID, raceID, ranking)
		snapshot.Submissions.Draft.Mark(raceID, actor.UserID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("submit draft: %w", err)
	}

	s.logger.InfoContext(ctx, "draft submitted", "user_id", actor.UserID, "race_id", raceID)
	return nil
}

// ResolvePicks runs the snake draft against the current state.
func (s *DraftService) ResolvePicks(ctx context.Context, variant draft.Variant, raceID int64) ([]draft.Pick, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.ResolvePicks")
	defer span.End()

	snapshot, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if _, _, ok := snapshot.RaceCalendar.Find(raceID); !ok {
		s.logger.WarnContext(ctx, "resolving picks for race missing from calendar", "race_id", raceID, "variant", variant)
	}
	return ResolvePicks(snapshot, variant, raceID, resolveOptionsFor(s.rules, variant, draftTurnOrder(snapshot, raceID))), nil
}

// UserPicks returns the user's resolved picks for both variants.
func (s *DraftService) UserPicks(ctx context.Context, userID, raceID int64) (map[draft.Variant][]draft.Pick, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.UserPicks")
	defer span.End()

	snapshot, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[draft.Variant][]draft.Pick, 2)
	for _, variant := range draft.Variants() {
		picks := ResolvePicks(snapshot, variant, raceID, resolveOptionsFor(s.rules, variant, draftTurnOrder(snapshot, raceID)))
		out[variant] = PicksForUser(picks, userID)
	}
	return out, nil
}

// requireOpenRace checks the actor exists and the race still accepts picks.
func (s *DraftService) requireOpenRace(snapshot state.Snapshot, actor user.Principal, raceID int64) error {
	return requireOpenRace(snapshot, actor, raceID, s.now(), s.location)
}

func requireOpenRace(snapshot state.Snapshot, actor user.Principal, raceID int64, now time.Time, loc *time.Location) error {
	if _, _, ok := user.Find(snapshot.Users, actor.UserID); !ok {
		return fmt.Errorf("%w: unknown user=%d", ErrUnauthorized, actor.UserID)
	}
	if _, _, ok := snapshot.RaceCalendar.Find(raceID); !ok {
		return fmt.Errorf("%w: race=%d", ErrNotFound, raceID)
	}
	if !canDraft(snapshot, raceID, now, loc) {
		return fmt.Errorf("%w: draft window closed for race=%d", ErrConflict, raceID)
	}
	return nil
}
