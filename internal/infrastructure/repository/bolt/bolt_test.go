package bolt

import (
	"path/filepath"
	"testing"

	"github.com/riskibarqy/f1-draft/internal/domain/race"
	"github.com/riskibarqy/f1-draft/internal/domain/state"
	"github.com/riskibarqy/f1-draft/internal/domain/user"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "nested", "league.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestStateRepository_RoundTrip(t *testing.T) {
	repo := NewStateRepository(openTestDB(t))

	if _, ok, err := repo.Load(t.Context()); err != nil || ok {
		t.Fatalf("expected no snapshot yet, ok=%v err=%v", ok, err)
	}

	snapshot := state.Empty()
	snapshot.Users = []user.User{{ID: 1, Username: "alice", IsAdmin: true}}
	snapshot.RaceCalendar = race.Calendar{{ID: 100, Name: "Imola", Date: "2025-05-18", DeadlineDate: "2025-05-17", Status: race.StatusDrafting}}
	snapshot.Version = 3
	if err := repo.Save(t.Context(), snapshot); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, ok, err := repo.Load(t.Context())
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if got.Version != 3 || got.Users[0].Username != "alice" || got.RaceCalendar[0].Name != "Imola" {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
}

func TestStateRepository_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "league.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	snapshot := state.Empty()
	snapshot.Version = 11
	if err := NewStateRepository(db).Save(t.Context(), snapshot); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, ok, err := NewStateRepository(reopened).Load(t.Context())
	if err != nil || !ok || got.Version != 11 {
		t.Fatalf("unexpected reload: version=%d ok=%v err=%v", got.Version, ok, err)
	}
}

func TestHistoryRepository_PushPopAndTrim(t *testing.T) {
	repo := NewHistoryRepository(openTestDB(t), 3)

	for v := int64(1); v <= 5; v++ {
		snapshot := state.Empty()
		snapshot.Version = v
		if err := repo.Push(t.Context(), snapshot); err != nil {
			t.Fatalf("push %d: %v", v, err)
		}
	}

	if n, err := repo.Len(t.Context()); err != nil || n != 3 {
		t.Fatalf("expected 3 entries, got %d err=%v", n, err)
	}
	for _, want := range []int64{5, 4, 3} {
		got, ok, err := repo.Pop(t.Context())
		if err != nil || !ok || got.Version != want {
			t.Fatalf("expected version %d, got %d ok=%v err=%v", want, got.Version, ok, err)
		}
	}
	if _, ok, err := repo.Pop(t.Context()); err != nil || ok {
		t.Fatalf("expected empty history, ok=%v err=%v", ok, err)
	}
}
