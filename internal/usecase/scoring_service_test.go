package usecase

import (
	"errors"
	"reflect"
	"testing"

	"github.com/riskibarqy/f1-draft/internal/domain/draft"
	"github.com/riskibarqy/f1-draft/internal/domain/race"
	"github.com/riskibarqy/f1-draft/internal/domain/standing"
	"github.com/riskibarqy/f1-draft/internal/domain/state"
	"github.com/riskibarqy/f1-draft/internal/platform/logging"
)

func scoredSnapshot() state.Snapshot {
	snapshot := seedSnapshot()
	submitDraft(&snapshot, userAlice, raceImola, draft.VariantGrojean, ranking(7, 1, 2, 3))
	submitDraft(&snapshot, userBob, raceImola, draft.VariantGrojean, ranking(1, 7, 2, 3))
	submitDraft(&snapshot, userAlice, raceImola, draft.VariantChilton,
		ranking(1, 2, 3, 4, 5, 6, 7, 8, 10, 11, 13, 14, 15, 16, 17, 18, 19, 20, 12, 9))
	submitDraft(&snapshot, userBob, raceImola, draft.VariantChilton, ranking())

	pole := 7
	snapshot.BonusPicks.SetPole(userAlice, raceImola, &pole)
	_ = snapshot.BonusPicks.SetTop5(userAlice, raceImola, []int{7, 1, 5, 0, 3})
	snapshot.Submissions.Bonus.Mark(raceImola, userAlice)

	// Bob's guesses are stored but never submitted.
	snapshot.BonusPicks.SetPole(userBob, raceImola, &pole)
	_ = snapshot.BonusPicks.SetTop5(userBob, raceImola, []int{7, 1, 8, 5, 3})
	return snapshot
}

func TestScoringService_ScoreRace(t *testing.T) {
	store, _ := newTestStore(t, scoredSnapshot())
	svc := NewScoringService(store, draft.DefaultRules(), 2, logging.NewNop())

	got, err := svc.ScoreRace(t.Context(), imolaResult())
	if err != nil {
		t.Fatalf("score race: %v", err)
	}

	want := map[int64]standing.Standing{
		userAlice: standing.New(36, 18, 2, 7),
		userBob:   standing.New(19, 0, 0, 0),
		userCarol: standing.New(0, 0, 0, 0),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected standings:\n got=%+v\nwant=%+v", got, want)
	}
	if got[userAlice].Total != 63 {
		t.Fatalf("expected alice total 63, got %d", got[userAlice].Total)
	}

	snapshot, err := store.Snapshot(t.Context())
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	stored, ok := snapshot.Standings.Race(raceImola)
	if !ok || !reflect.DeepEqual(stored, want) {
		t.Fatalf("standings were not stored: %+v", stored)
	}
}

func TestScoringService_ConcreteTwoUserScenario(t *testing.T) {
	snapshot := seedSnapshot()
	submitDraft(&snapshot, userAlice, raceImola, draft.VariantGrojean, ranking(7, 1))
	submitDraft(&snapshot, userBob, raceImola, draft.VariantGrojean, ranking(1, 7))
	store, _ := newTestStore(t, snapshot)
	svc := NewScoringService(store, draft.DefaultRules(), 0, logging.NewNop())

	got, err := svc.ScoreRace(t.Context(), race.Result{RaceID: raceImola, Results: map[int]int{1: 7, 2: 1}})
	if err != nil {
		t.Fatalf("score race: %v", err)
	}
	if got[userAlice].Grojean != 20 {
		t.Fatalf("expected alice grojean 20, got %d", got[userAlice].Grojean)
	}
	if got[userBob].Grojean != 19 {
		t.Fatalf("expected bob grojean 19, got %d", got[userBob].Grojean)
	}
}

func TestScoringService_ScoreRaceIsIdempotent(t *testing.T) {
	store, _ := newTestStore(t, scoredSnapshot())
	svc := NewScoringService(store, draft.DefaultRules(), 3, logging.NewNop())

	first, err := svc.ScoreRace(t.Context(), imolaResult())
	if err != nil {
		t.Fatalf("first score: %v", err)
	}
	second, err := svc.ScoreRace(t.Context(), imolaResult())
	if err != nil {
		t.Fatalf("second score: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("rescoring changed standings:\n first=%+v\nsecond=%+v", first, second)
	}
}

func TestScoringService_WrongPoleGuessScoresNothing(t *testing.T) {
	snapshot := seedSnapshot()
	guess := 1
	snapshot.BonusPicks.SetPole(userAlice, raceImola, &guess)
	snapshot.Submissions.Bonus.Mark(raceImola, userAlice)
	store, _ := newTestStore(t, snapshot)
	svc := NewScoringService(store, draft.DefaultRules(), 1, logging.NewNop())

	got, err := svc.ScoreRace(t.Context(), imolaResult())
	if err != nil {
		t.Fatalf("score race: %v", err)
	}
	if got[userAlice].PoleBonus != 0 {
		t.Fatalf("expected no pole bonus, got %d", got[userAlice].PoleBonus)
	}

	noPole := imolaResult()
	noPole.Pole = nil
	got, err = svc.ScoreRace(t.Context(), noPole)
	if err != nil {
		t.Fatalf("score race without pole: %v", err)
	}
	if got[userAlice].PoleBonus != 0 {
		t.Fatalf("a missing pole must never match, got %d", got[userAlice].PoleBonus)
	}
}

func TestScoringService_RaceMissingFromCalendar(t *testing.T) {
	store, _ := newTestStore(t, scoredSnapshot())
	svc := NewScoringService(store, draft.DefaultRules(), 1, logging.NewNop())

	result := imolaResult()
	result.RaceID = 999
	_, err := svc.ScoreRace(t.Context(), result)
	if !errors.Is(err, ErrNotFound) || !errors.Is(err, standing.ErrRaceNotFound) {
		t.Fatalf("expected race not found, got %v", err)
	}

	snapshot, _ := store.Snapshot(t.Context())
	if len(snapshot.Standings) != 0 {
		t.Fatalf("expected no standings stored, got %+v", snapshot.Standings)
	}
}

func TestScoringService_ScorePublishedRequiresAdmin(t *testing.T) {
	snapshot := scoredSnapshot()
	snapshot.Races = race.UpsertResult(snapshot.Races, imolaResult())
	store, _ := newTestStore(t, snapshot)
	svc := NewScoringService(store, draft.DefaultRules(), 1, logging.NewNop())

	if _, err := svc.ScorePublished(t.Context(), bob, raceImola); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	got, err := svc.ScorePublished(t.Context(), alice, raceImola)
	if err != nil {
		t.Fatalf("score published: %v", err)
	}
	if got[userAlice].Total != 63 {
		t.Fatalf("expected alice total 63, got %d", got[userAlice].Total)
	}
	if _, err := svc.ScorePublished(t.Context(), alice, raceMonaco); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unpublished race, got %v", err)
	}
}
