package memory

import (
	"testing"

	"github.com/riskibarqy/f1-draft/internal/domain/state"
	"github.com/riskibarqy/f1-draft/internal/domain/user"
)

func TestStateRepository_LoadReturnsCopy(t *testing.T) {
	repo := NewStateRepository()
	if _, ok, err := repo.Load(t.Context()); err != nil || ok {
		t.Fatalf("expected empty repository, ok=%v err=%v", ok, err)
	}

	snapshot := state.Empty()
	snapshot.Users = append(snapshot.Users, user.User{ID: 1, Username: "alice"})
	if err := repo.Save(t.Context(), snapshot); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, ok, err := repo.Load(t.Context())
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	loaded.Users[0].Username = "mutated"

	again, _, _ := repo.Load(t.Context())
	if again.Users[0].Username != "alice" {
		t.Fatalf("stored snapshot was mutated through a loaded copy")
	}
}

func TestHistoryRepository_DropsOldest(t *testing.T) {
	repo := NewHistoryRepository(2)
	for v := int64(1); v <= 3; v++ {
		snapshot := state.Empty()
		snapshot.Version = v
		if err := repo.Push(t.Context(), snapshot); err != nil {
			t.Fatalf("push: %v", err)
		}
	}

	if n, _ := repo.Len(t.Context()); n != 2 {
		t.Fatalf("expected 2 entries, got %d", n)
	}
	for _, want := range []int64{3, 2} {
		got, ok, err := repo.Pop(t.Context())
		if err != nil || !ok || got.Version != want {
			t.Fatalf("expected version %d, got %d ok=%v err=%v", want, got.Version, ok, err)
		}
	}
	if _, ok, _ := repo.Pop(t.Context()); ok {
		t.Fatalf("expected empty history")
	}
}
