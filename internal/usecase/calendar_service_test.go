package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/f1-draft/internal/domain/race"
	"github.com/riskibarqy/f1-draft/internal/domain/state"
	"github.com/riskibarqy/f1-draft/internal/platform/logging"
)

func newCalendarService(t *testing.T, snapshot state.Snapshot) (*CalendarService, *StateStore) {
	t.Helper()
	store, _ := newTestStore(t, snapshot)
	return NewCalendarService(store, &sequenceIDs{next: 500}, time.UTC, logging.NewNop()), store
}

func TestCalendarService_SaveRace(t *testing.T) {
	svc, _ := newCalendarService(t, seedSnapshot())

	created, err := svc.SaveRace(t.Context(), alice, SaveRaceInput{
		Name:         "Canada",
		Date:         "2099-06-15",
		DeadlineDate: "2099-06-14",
	})
	if err != nil {
		t.Fatalf("create race: %v", err)
	}
	if created.ID != 501 || created.DeadlineTime != race.DefaultDeadlineTime || created.Status != race.StatusUpcoming {
		t.Fatalf("unexpected created race: %+v", created)
	}

	updated, err := svc.SaveRace(t.Context(), alice, SaveRaceInput{
		ID:           raceSpain,
		Name:         "Barcelona",
		Date:         "2099-06-01",
		DeadlineDate: "2099-05-31",
		Status:       "drafting",
	})
	if err != nil {
		t.Fatalf("update race: %v", err)
	}
	if updated.Name != "Barcelona" || updated.Status != race.StatusDrafting {
		t.Fatalf("unexpected updated race: %+v", updated)
	}

	races, err := svc.List(t.Context())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	drafting := 0
	for _, r := range races {
		if r.Status == race.StatusDrafting {
			drafting++
		}
	}
	if drafting != 1 {
		t.Fatalf("expected exactly one drafting race, got %d", drafting)
	}
	if races[0].ID != raceImola || races[len(races)-1].ID != created.ID {
		t.Fatalf("expected date order, got %+v", races)
	}
}

func TestCalendarService_SaveRace_Errors(t *testing.T) {
	svc, _ := newCalendarService(t, seedSnapshot())

	input := SaveRaceInput{Name: "Canada", Date: "2099-06-15", DeadlineDate: "2099-06-14"}
	if _, err := svc.SaveRace(t.Context(), bob, input); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	input.Status = "postponed"
	if _, err := svc.SaveRace(t.Context(), alice, input); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for status, got %v", err)
	}

	input.Status = ""
	input.Date = "15/06/2099"
	if _, err := svc.SaveRace(t.Context(), alice, input); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for date, got %v", err)
	}

	input.Date = "2099-06-15"
	input.ID = 404
	if _, err := svc.SaveRace(t.Context(), alice, input); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCalendarService_DeleteRace(t *testing.T) {
	svc, store := newCalendarService(t, seedSnapshot())

	if err := svc.DeleteRace(t.Context(), alice, raceSpain); err != nil {
		t.Fatalf("delete race: %v", err)
	}
	saved, _ := store.Snapshot(t.Context())
	if _, _, ok := saved.RaceCalendar.Find(raceSpain); ok {
		t.Fatalf("race still present")
	}
	if err := svc.DeleteRace(t.Context(), alice, raceSpain); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCalendarService_CurrentDraftRacePromotes(t *testing.T) {
	snapshot := seedSnapshot()
	snapshot.RaceCalendar[0].Status = race.StatusCompleted
	svc, store := newCalendarService(t, snapshot)

	current, err := svc.CurrentDraftRace(t.Context())
	if err != nil {
		t.Fatalf("current draft race: %v", err)
	}
	if current.ID != raceMonaco {
		t.Fatalf("expected monaco, got %+v", current)
	}
	saved, _ := store.Snapshot(t.Context())
	if r, _, _ := saved.RaceCalendar.Drafting(); r.ID != raceMonaco {
		t.Fatalf("promotion was not persisted: %+v", saved.RaceCalendar)
	}

	for i := range snapshot.RaceCalendar {
		snapshot.RaceCalendar[i].Status = race.StatusCompleted
	}
	done, _ := newCalendarService(t, snapshot)
	if _, err := done.CurrentDraftRace(t.Context()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCalendarService_AdvanceDeadlines(t *testing.T) {
	svc, store := newCalendarService(t, seedSnapshot())

	early := time.Date(2099, 5, 17, 11, 59, 0, 0, time.UTC)
	changed, err := svc.AdvanceDeadlines(t.Context(), early)
	if err != nil || changed {
		t.Fatalf("nothing should change before the deadline: changed=%v err=%v", changed, err)
	}
	before, _ := store.Snapshot(t.Context())

	late := time.Date(2099, 5, 17, 12, 0, 0, 0, time.UTC)
	changed, err = svc.AdvanceDeadlines(t.Context(), late)
	if err != nil || !changed {
		t.Fatalf("expected deadline to close imola: changed=%v err=%v", changed, err)
	}

	saved, _ := store.Snapshot(t.Context())
	if saved.Version != before.Version+1 {
		t.Fatalf("expected a single save, version %d -> %d", before.Version, saved.Version)
	}
	if r, _, _ := saved.RaceCalendar.Find(raceImola); r.Status != race.StatusCompleted {
		t.Fatalf("expected imola completed, got %s", r.Status)
	}
	if r, _, _ := saved.RaceCalendar.Drafting(); r.ID != raceMonaco {
		t.Fatalf("expected monaco drafting, got %+v", r)
	}

	changed, err = svc.AdvanceDeadlines(t.Context(), late)
	if err != nil || changed {
		t.Fatalf("second pass should be a no-op: changed=%v err=%v", changed, err)
	}
}

func TestCalendarService_CanDraft(t *testing.T) {
	snapshot := seedSnapshot()
	snapshot.RaceCalendar[2].Status = race.StatusCompleted
	svc, _ := newCalendarService(t, snapshot)

	open := time.Date(2099, 5, 17, 11, 0, 0, 0, time.UTC)
	closed := time.Date(2099, 5, 17, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		raceID int64
		now    time.Time
		want   bool
	}{
		{name: "before deadline", raceID: raceImola, now: open, want: true},
		{name: "at deadline", raceID: raceImola, now: closed, want: false},
		{name: "completed", raceID: raceSpain, now: open, want: false},
		{name: "unknown race", raceID: 999, now: closed, want: true},
	}
	for _, tc := range cases {
		got, err := svc.CanDraft(t.Context(), tc.raceID, tc.now)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}
}
