package usecase

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/riskibarqy/f1-draft/internal/domain/driver"
	"github.com/riskibarqy/f1-draft/internal/domain/race"
	"github.com/riskibarqy/f1-draft/internal/domain/standing"
	"github.com/riskibarqy/f1-draft/internal/domain/state"
	"github.com/riskibarqy/f1-draft/internal/domain/user"
	"github.com/riskibarqy/f1-draft/internal/platform/logging"
)

const (
	ResultsFormatText = "text"
	ResultsFormatHTML = "html"
)

type ResultsService struct {
	store   *StateStore
	scoring *ScoringService
	roster  driver.Roster
	logger  *logging.Logger
}

func NewResultsService(store *StateStore, scoring *ScoringService, roster driver.Roster, logger *logging.Logger) *ResultsService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ResultsService{
		store:   store,
		scoring: scoring,
		roster:  roster,
		logger:  logger,
	}
}

// Parse turns pasted classification data into a result draft for review.
func (s *ResultsService) Parse(ctx context.Context, format, content string) (ParsedResults, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResultsService.Parse")
	defer span.End()

	if strings.TrimSpace(content) == "" {
		return ParsedResults{}, fmt.Errorf("%w: results content is required", ErrInvalidInput)
	}

	logger := s.logger.With("format", format)
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", ResultsFormatText:
		return ParseResultsText(content, s.roster, logger)
	case ResultsFormatHTML:
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
		if err != nil {
			return ParsedResults{}, fmt.Errorf("%w: parse html: %v", ErrInvalidInput, err)
		}
		return ParseResultsHTML(doc, s.roster, logger)
	default:
		return ParsedResults{}, fmt.Errorf("%w: unsupported results format %q", ErrInvalidInput, format)
	}
}

type PublishResultsInput struct {
	// RaceID defaults to the most recently completed calendar race.
	RaceID   int64
	Results  map[int]int
	Statuses map[int]race.FinishStatus
	Times    map[int]string
	Pole     *int
}

type PublishResultsOutput struct {
	Result      race.Result                 `json:"result"`
	Standings   map[int64]standing.Standing `json:"standings"`
	Promoted    *race.Race                  `json:"promoted"`
	Republished bool                        `json:"republished"`
}

// PublishResults stores the result, completes the race, promotes the next
// race, scores the race and rotates the turn order in one save. Publishing
// again for the same race replaces the result and rescores it without
// rotating.
func (s *ResultsService) PublishResults(ctx context.Context, actor user.Principal, input PublishResultsInput) (PublishResultsOutput, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResultsService.PublishResults")
	defer span.End()

	result := race.Result{
		RaceID:   input.RaceID,
		Results:  input.Results,
		Statuses: input.Statuses,
		Times:    input.Times,
		Pole:     input.Pole,
	}
	if result.Statuses == nil {
		result.Statuses = map[int]race.FinishStatus{}
	}
	if result.Times == nil {
		result.Times = map[int]string{}
	}
	if err := result.Validate(); err != nil {
		return PublishResultsOutput{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	for _, driverID := range result.Results {
		if !s.roster.Contains(driverID) {
			return PublishResultsOutput{}, fmt.Errorf("%w: unknown driver %d", ErrInvalidInput, driverID)
		}
	}
	if result.Pole != nil && !s.roster.Contains(*result.Pole) {
		return PublishResultsOutput{}, fmt.Errorf("%w: unknown pole driver %d", ErrInvalidInput, *result.Pole)
	}

	var out PublishResultsOutput
	_, err := s.store.Update(ctx, func(snapshot *state.Snapshot) error {
		if err := requireAdmin(*snapshot, actor); err != nil {
			return err
		}

		var target race.Race
		if result.RaceID == 0 {
			latest, ok := snapshot.RaceCalendar.LatestCompleted()
			if !ok {
				return fmt.Errorf("%w: no completed race to publish results for", ErrNotFound)
			}
			target = latest
		} else {
			found, _, ok := snapshot.RaceCalendar.Find(result.RaceID)
			if !ok {
				return fmt.Errorf("%w: %w: race=%d", ErrNotFound, standing.ErrRaceNotFound, result.RaceID)
			}
			target = found
		}
		result.RaceID = target.ID
		result.Name = target.Name
		result.Date = target.Date

		// A corrected result keeps the turn order of the first publish and
		// does not rotate again.
		previous, _, republish := race.FindResult(snapshot.Races, target.ID)
		if republish && len(previous.TurnOrder) > 0 {
			result.TurnOrder = slices.Clone(previous.TurnOrder)
		} else {
			result.TurnOrder = slices.Clone([]int64(snapshot.TurnOrder))
		}

		snapshot.Races = race.UpsertResult(snapshot.Races, result)
		if next, promoted := snapshot.RaceCalendar.Complete(target.ID); promoted {
			out.Promoted = &next
		}

		rows, err := s.scoring.scoreInto(ctx, snapshot, result)
		if err != nil {
			return err
		}
		if !republish {
			snapshot.TurnOrder = snapshot.TurnOrder.Rotate()
		}
		out.Result = result.Clone()
		out.Standings = rows
		out.Republished = republish
		return nil
	})
	if err != nil {
		return PublishResultsOutput{}, fmt.Errorf("publish results: %w", err)
	}

	s.logger.InfoContext(ctx, "race results published",
		"race_id", out.Result.RaceID,
		"positions", len(out.Result.Results),
		"has_pole", out.Result.Pole != nil,
		"republished", out.Republished,
	)
	return out, nil
}

func (s *ResultsService) GetResult(ctx context.Context, raceID int64) (race.Result, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResultsService.GetResult")
	defer span.End()

	snapshot, err := s.store.Snapshot(ctx)
	if err != nil {
		return race.Result{}, err
	}
	result, ok := snapshot.Result(raceID)
	if !ok {
		return race.Result{}, fmt.Errorf("%w: no published result for race=%d", ErrNotFound, raceID)
	}
	return result, nil
}

// ClassifyDriver exposes the finish classification for a published race.
func (s *ResultsService) ClassifyDriver(ctx context.Context, raceID int64, driverID int) (race.Finish, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResultsService.ClassifyDriver")
	defer span.End()

	if !s.roster.Contains(driverID) {
		return race.Finish{}, fmt.Errorf("%w: driver=%d", ErrNotFound, driverID)
	}
	result, err := s.GetResult(ctx, raceID)
	if err != nil {
		return race.Finish{}, err
	}
	return race.Classify(result, driverID), nil
}
