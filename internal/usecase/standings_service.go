package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/riskibarqy/f1-draft/internal/domain/bonus"
	"github.com/riskibarqy/f1-draft/internal/domain/draft"
	"github.com/riskibarqy/f1-draft/internal/domain/race"
	"github.com/riskibarqy/f1-draft/internal/domain/standing"
	"github.com/riskibarqy/f1-draft/internal/domain/state"
	"github.com/riskibarqy/f1-draft/internal/domain/user"
	"github.com/riskibarqy/f1-draft/internal/platform/cache"
	"github.com/riskibarqy/f1-draft/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
)

const standingsCachePrefix = "standings:"

type StandingsService struct {
	store   *StateStore
	scoring *ScoringService
	rules   draft.Rules
	cache   *cache.Store[[]standing.Row]
	logger  *logging.Logger
}

// NewStandingsService wires an aggregate cache keyed by snapshot version.
// Entries for older versions are purged on every local save. A ttl <= 0
// disables caching.
func NewStandingsService(store *StateStore, scoring *ScoringService, rules draft.Rules, ttl time.Duration, logger *logging.Logger) *StandingsService {
	if logger == nil {
		logger = logging.Default()
	}
	s := &StandingsService{
		store:   store,
		scoring: scoring,
		rules:   rules,
		logger:  logger,
	}
	if ttl > 0 {
		s.cache = cache.NewStore[[]standing.Row](ttl)
		store.OnSave(func(ctx context.Context, _ state.Snapshot) {
			s.cache.DeletePrefix(ctx, standingsCachePrefix)
		})
	}
	return s
}

// Aggregate returns the standings table for one race or the whole season.
func (s *StandingsService) Aggregate(ctx context.Context, filter standing.Filter) ([]standing.Row, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.Aggregate")
	defer span.End()

	snapshot, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache == nil {
		return aggregateStandings(snapshot, filter)
	}

	rows, err := s.cache.GetOrLoad(ctx, standingsCacheKey(snapshot, filter), func(context.Context) ([]standing.Row, error) {
		return aggregateStandings(snapshot, filter)
	})
	if err != nil {
		return nil, err
	}
	return append([]standing.Row(nil), rows...), nil
}

// standingsCacheKey ties cached rows to one saved snapshot, so rows computed
// from an older snapshot are never served for a newer one, whichever
// process wrote it.
func standingsCacheKey(snapshot state.Snapshot, filter standing.Filter) string {
	return fmt.Sprintf("%sv%d:%d:%s", standingsCachePrefix, snapshot.Version, snapshot.UpdatedAt.UnixNano(), filter.String())
}

// RaceStandings is Aggregate for a single race.
func (s *StandingsService) RaceStandings(ctx context.Context, raceID int64) ([]standing.Row, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.RaceStandings")
	defer span.End()

	if raceID <= 0 {
		return nil, fmt.Errorf("%w: race id is required", ErrInvalidInput)
	}
	return s.Aggregate(ctx, standing.ForRace(raceID))
}

// aggregateStandings builds one row per live user. The all-races view sums
// every recorded race and adds season adjustments to the total only.
func aggregateStandings(snapshot state.Snapshot, filter standing.Filter) ([]standing.Row, error) {
	totals := make(map[int64]standing.Standing, len(snapshot.Users))

	if filter.All {
		for _, raceID := range snapshot.Standings.RaceIDs() {
			for userID, row := range snapshot.Standings[raceID] {
				totals[userID] = totals[userID].Add(row)
			}
		}
	} else {
		rows, ok := snapshot.Standings.Race(filter.RaceID)
		if !ok {
			if _, _, known := snapshot.RaceCalendar.Find(filter.RaceID); !known {
				return nil, fmt.Errorf("%w: %w: race=%d", ErrNotFound, standing.ErrRaceNotFound, filter.RaceID)
			}
			return nil, fmt.Errorf("%w: %w: race=%d", ErrNotFound, standing.ErrRaceUnscored, filter.RaceID)
		}
		for userID, row := range rows {
			totals[userID] = row
		}
	}

	out := make([]standing.Row, 0, len(snapshot.Users))
	for _, u := range snapshot.Users {
		sum := totals[u.ID]
		total := sum.Total
		if filter.All {
			total += snapshot.SeasonAdjustments[u.ID]
		}
		out = append(out, standing.Row{
			UserID:    u.ID,
			Username:  u.Username,
			Avatar:    u.Avatar,
			Draft:     sum.Draft(),
			PoleBonus: sum.PoleBonus,
			Top5Bonus: sum.Top5Bonus,
			Total:     total,
		})
	}
	standing.SortRows(out)
	return out, nil
}

func (s *StandingsService) SetSeasonAdjustment(ctx context.Context, actor user.Principal, userID int64, delta int) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.SetSeasonAdjustment")
	defer span.End()

	_, err := s.store.Update(ctx, func(snapshot *state.Snapshot) error {
		if err := requireAdmin(*snapshot, actor); err != nil {
			return err
		}
		if _, _, ok := user.Find(snapshot.Users, userID); !ok {
			return fmt.Errorf("%w: user=%d", ErrNotFound, userID)
		}
		if delta == 0 {
			delete(snapshot.SeasonAdjustments, userID)
			return nil
		}
		snapshot.SeasonAdjustments[userID] = delta
		return nil
	})
	if err != nil {
		return fmt.Errorf("set season adjustment: %w", err)
	}
	return nil
}

type SeasonSummary struct {
	RacesPublished int            `json:"racesPublished"`
	Leader         *standing.Row  `json:"leader"`
	LatestRace     *race.Race     `json:"latestRace"`
	LatestRows     []standing.Row `json:"latestStandings"`
	Adjustments    map[int64]int  `json:"adjustments"`
}

// SeasonSummary reports the published race count, the season leader and the
// standings of the most recently completed scored race.
func (s *StandingsService) SeasonSummary(ctx context.Context) (SeasonSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.SeasonSummary")
	defer span.End()

	snapshot, err := s.store.Snapshot(ctx)
	if err != nil {
		return SeasonSummary{}, err
	}

	out := SeasonSummary{
		RacesPublished: len(snapshot.Races),
		Adjustments:    map[int64]int(snapshot.SeasonAdjustments),
	}
	if len(snapshot.Races) == 0 {
		return out, nil
	}

	rows, err := aggregateStandings(snapshot, standing.AllRaces())
	if err != nil {
		return SeasonSummary{}, err
	}
	if len(rows) > 0 {
		leader := rows[0]
		out.Leader = &leader
	}

	if latest, ok := snapshot.RaceCalendar.LatestCompleted(); ok {
		if _, published := snapshot.Result(latest.ID); published {
			latestRows, err := aggregateStandings(snapshot, standing.ForRace(latest.ID))
			switch {
			case err == nil:
				out.LatestRace = &latest
				out.LatestRows = latestRows
			case !errors.Is(err, ErrNotFound):
				return SeasonSummary{}, err
			}
		}
	}

	return out, nil
}

// RaceLogEntry is one published race from a user's point of view.
type RaceLogEntry struct {
	Race     race.Race          `json:"race"`
	Grojean  []draft.Pick       `json:"grojeanPicks"`
	Chilton  []draft.Pick       `json:"chiltonPicks"`
	Bonus    bonus.Picks        `json:"bonus"`
	Top5     []int              `json:"actualTop5"`
	Pole     *int               `json:"actualPole"`
	Standing *standing.Standing `json:"standing"`
}

// UserRaceLog lists every calendar race with a published result in date order.
func (s *StandingsService) UserRaceLog(ctx context.Context, userID int64) ([]RaceLogEntry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.UserRaceLog")
	defer span.End()

	snapshot, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if _, _, ok := user.Find(snapshot.Users, userID); !ok {
		return nil, fmt.Errorf("%w: user=%d", ErrNotFound, userID)
	}

	races := snapshot.RaceCalendar.Clone()
	race.SortByDate(races)

	out := make([]RaceLogEntry, 0, len(snapshot.Races))
	for _, r := range races {
		result, ok := snapshot.Result(r.ID)
		if !ok {
			continue
		}
		turnOrder := draftTurnOrder(snapshot, r.ID)
		entry := RaceLogEntry{
			Race: r,
			Grojean: PicksForUser(
				ResolvePicks(snapshot, draft.VariantGrojean, r.ID, resolveOptionsFor(s.rules, draft.VariantGrojean, turnOrder)), userID),
			Chilton: PicksForUser(
				ResolvePicks(snapshot, draft.VariantChilton, r.ID, resolveOptionsFor(s.rules, draft.VariantChilton, turnOrder)), userID),
			Bonus: snapshot.BonusPicks.Picks(userID, r.ID),
			Top5:  result.Top5(),
			Pole:  result.Pole,
		}
		if row, ok := snapshot.Standings[r.ID][userID]; ok {
			entry.Standing = &row
		}
		out = append(out, entry)
	}
	return out, nil
}

// RescoreSeason recomputes standings for every published race that is still on the calendar.
func (s *StandingsService) RescoreSeason(ctx context.Context, actor user.Principal) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.RescoreSeason")
	defer span.End()

	type scored struct {
		raceID int64
		rows   map[int64]standing.Standing
	}

	count := 0
	_, err := s.store.Update(ctx, func(snapshot *state.Snapshot) error {
		if err := requireAdmin(*snapshot, actor); err != nil {
			return err
		}

		view := *snapshot
		p := pool.NewWithResults[scored]().WithErrors().WithContext(ctx).WithMaxGoroutines(s.scoring.workers)
		for _, result := range snapshot.Races {
			if _, _, ok := view.RaceCalendar.Find(result.RaceID); !ok {
				s.logger.WarnContext(ctx, "skip rescoring race missing from calendar", "race_id", result.RaceID)
				continue
			}
			result := result
			p.Go(func(ctx context.Context) (scored, error) {
				rows, err := s.scoring.computeStandings(ctx, view, result)
				if err != nil {
					return scored{}, fmt.Errorf("race=%d: %w", result.RaceID, err)
				}
				return scored{raceID: result.RaceID, rows: rows}, nil
			})
		}

		results, err := p.Wait()
		if err != nil {
			return fmt.Errorf("rescore season: %w", err)
		}
		for _, r := range results {
			snapshot.Standings.ReplaceRace(r.raceID, r.rows)
		}
		count = len(results)
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.InfoContext(ctx, "season rescored", "races", count)
	return count, nil
}
