package user

import (
	"slices"
	"testing"
)

func TestTurnOrder_Normalize(t *testing.T) {
	users := []User{{ID: 1, Username: "a"}, {ID: 2, Username: "b"}, {ID: 3, Username: "c"}}

	got := TurnOrder{3, 99, 1, 3}.Normalize(users)
	want := TurnOrder{3, 1, 2}
	if !slices.Equal(got, want) {
		t.Fatalf("unexpected normalized order: got=%v want=%v", got, want)
	}
}

func TestTurnOrder_Rotate(t *testing.T) {
	got := TurnOrder{1, 2, 3}.Rotate()
	if !slices.Equal(got, TurnOrder{2, 3, 1}) {
		t.Fatalf("unexpected rotation: %v", got)
	}

	single := TurnOrder{7}.Rotate()
	if !slices.Equal(single, TurnOrder{7}) {
		t.Fatalf("single-user rotation changed order: %v", single)
	}
}

func TestValidatePermutation(t *testing.T) {
	users := []User{{ID: 1, Username: "a"}, {ID: 2, Username: "b"}}

	if err := ValidatePermutation([]int64{2, 1}, users); err != nil {
		t.Fatalf("expected valid permutation, got %v", err)
	}
	if err := ValidatePermutation([]int64{1, 1}, users); err == nil {
		t.Fatalf("expected duplicate error")
	}
	if err := ValidatePermutation([]int64{1, 3}, users); err == nil {
		t.Fatalf("expected unknown id error")
	}
	if err := ValidatePermutation([]int64{1}, users); err == nil {
		t.Fatalf("expected length error")
	}
}

func TestUsernameTaken_CaseInsensitive(t *testing.T) {
	users := []User{{ID: 1, Username: "Lando"}}
	if !UsernameTaken(users, "lando") {
		t.Fatalf("expected case-insensitive collision")
	}
	if UsernameTaken(users, "oscar") {
		t.Fatalf("unexpected collision")
	}
}
