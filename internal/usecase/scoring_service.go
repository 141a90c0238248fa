package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/f1-draft/internal/domain/draft"
	"github.com/riskibarqy/f1-draft/internal/domain/race"
	"github.com/riskibarqy/f1-draft/internal/domain/standing"
	"github.com/riskibarqy/f1-draft/internal/domain/state"
	"github.com/riskibarqy/f1-draft/internal/domain/user"
	"github.com/riskibarqy/f1-draft/internal/platform/logging"
)

const defaultScoringWorkers = 4

// ScoringService turns published results into per-user race standings.
type ScoringService struct {
	store   *StateStore
	rules   draft.Rules
	workers int
	logger  *logging.Logger
}

func NewScoringService(store *StateStore, rules draft.Rules, workers int, logger *logging.Logger) *ScoringService {
	if logger == nil {
		logger = logging.Default()
	}
	if workers <= 0 {
		workers = defaultScoringWorkers
	}
	return &ScoringService{
		store:   store,
		rules:   rules,
		workers: workers,
		logger:  logger,
	}
}

// ScoreRace recomputes and stores every user's standing for result.RaceID.
// Re-running it on unchanged input stores identical standings.
func (s *ScoringService) ScoreRace(ctx context.Context, result race.Result) (map[int64]standing.Standing, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.ScoreRace")
	defer span.End()

	var out map[int64]standing.Standing
	_, err := s.store.Update(ctx, func(snapshot *state.Snapshot) error {
		rows, err := s.scoreInto(ctx, snapshot, result)
		if err != nil {
			return err
		}
		out = rows
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ScorePublished rescores a race from its stored result.
func (s *ScoringService) ScorePublished(ctx context.Context, actor user.Principal, raceID int64) (map[int64]standing.Standing, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.ScorePublished")
	defer span.End()

	var out map[int64]standing.Standing
	_, err := s.store.Update(ctx, func(snapshot *state.Snapshot) error {
		if err := requireAdmin(*snapshot, actor); err != nil {
			return err
		}
		result, ok := snapshot.Result(raceID)
		if !ok {
			return fmt.Errorf("%w: no published result for race=%d", ErrNotFound, raceID)
		}
		rows, err := s.scoreInto(ctx, snapshot, result)
		if err != nil {
			return err
		}
		out = rows
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ScoringService) scoreInto(ctx context.Context, snapshot *state.Snapshot, result race.Result) (map[int64]standing.Standing, error) {
	if _, _, ok := snapshot.RaceCalendar.Find(result.RaceID); !ok {
		s.logger.WarnContext(ctx, "skip scoring for race missing from calendar", "race_id", result.RaceID)
		return nil, fmt.Errorf("%w: %w: race=%d", ErrNotFound, standing.ErrRaceNotFound, result.RaceID)
	}

	rows, err := s.computeStandings(ctx, *snapshot, result)
	if err != nil {
		return nil, err
	}
	snapshot.Standings.ReplaceRace(result.RaceID, rows)

	s.logger.InfoContext(ctx, "race scored", "race_id", result.RaceID, "users", len(rows))
	return rows, nil
}

// computeStandings scores every user concurrently against a read-only snapshot.
// Picks are resolved in the turn order recorded with the result.
func (s *ScoringService) computeStandings(ctx context.Context, snapshot state.Snapshot, result race.Result) (map[int64]standing.Standing, error) {
	turnOrder := result.TurnOrder
	if len(turnOrder) == 0 {
		turnOrder = draftTurnOrder(snapshot, result.RaceID)
	}
	picks := make(map[draft.Variant][]draft.Pick, 2)
	for _, variant := range draft.Variants() {
		picks[variant] = ResolvePicks(snapshot, variant, result.RaceID, resolveOptionsFor(s.rules, variant, turnOrder))
	}
	top5 := result.Top5()

	rows := make(map[int64]standing.Standing, len(snapshot.Users))
	if len(snapshot.Users) == 0 {
		return rows, nil
	}

	workers := s.workers
	if workers > len(snapshot.Users) {
		workers = len(snapshot.Users)
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create scoring pool: %w", err)
	}
	defer pool.Release()

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, u := range snapshot.Users {
		userID := u.ID
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			row := scoreUser(snapshot, result, top5, userID, picks, s.rules)
			mu.Lock()
			rows[userID] = row
			mu.Unlock()
		}); err != nil {
			wg.Done()
			wg.Wait()
			return nil, fmt.Errorf("submit scoring task: %w", err)
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

// scoreUser computes one user's standing. Draft points need a draft
// submission and bonus points need a bonus submission.
func scoreUser(
	snapshot state.Snapshot,
	result race.Result,
	top5 []int,
	userID int64,
	picks map[draft.Variant][]draft.Pick,
	rules draft.Rules,
) standing.Standing {
	var grojean, chilton, pole, top5Bonus int

	if snapshot.Submissions.Draft.Submitted(result.RaceID, userID) {
		grojean = variantPoints(result, PicksForUser(picks[draft.VariantGrojean], userID), draft.VariantGrojean, rules)
		chilton = variantPoints(result, PicksForUser(picks[draft.VariantChilton], userID), draft.VariantChilton, rules)
	}

	if snapshot.Submissions.Bonus.Submitted(result.RaceID, userID) {
		if guess, ok := snapshot.BonusPicks.PoleGuess(userID, result.RaceID); ok {
			pole = rules.PolePoints(guess, result.Pole)
		}
		top5Bonus = rules.Top5Points(snapshot.BonusPicks.Top5Guess(userID, result.RaceID), top5)
	}

	return standing.New(grojean, chilton, pole, top5Bonus)
}

func variantPoints(result race.Result, picks []draft.Pick, variant draft.Variant, rules draft.Rules) int {
	total := 0
	for _, p := range picks {
		total += rules.Points(variant, race.Classify(result, p.DriverID))
	}
	return total
}

func requireAdmin(snapshot state.Snapshot, actor user.Principal) error {
	if actor.UserID == 0 {
		return ErrUnauthorized
	}
	if !snapshot.IsAdmin(actor.UserID) {
		return fmt.Errorf("%w: admin only", ErrForbidden)
	}
	return nil
}
