package usecase

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/riskibarqy/f1-draft/internal/domain/draft"
	"github.com/riskibarqy/f1-draft/internal/domain/driver"
	"github.com/riskibarqy/f1-draft/internal/domain/state"
)

func TestResolvePicks_SnakeOrderAndPreferences(t *testing.T) {
	snapshot := seedSnapshot()
	submitDraft(&snapshot, userAlice, raceImola, draft.VariantGrojean, ranking(7, 1, 2, 3))
	submitDraft(&snapshot, userBob, raceImola, draft.VariantGrojean, ranking(1, 7, 2, 3))

	picks := ResolvePicks(snapshot, draft.VariantGrojean, raceImola, ResolveOptions{Rounds: 2})

	want := []draft.Pick{
		{UserID: userAlice, DriverID: 7, Round: 1, PickNumber: 1},
		{UserID: userBob, DriverID: 1, Round: 1, PickNumber: 2},
		{UserID: userBob, DriverID: 2, Round: 2, PickNumber: 3},
		{UserID: userAlice, DriverID: 3, Round: 2, PickNumber: 4},
	}
	if !reflect.DeepEqual(picks, want) {
		t.Fatalf("unexpected picks:\n got=%+v\nwant=%+v", picks, want)
	}
}

func TestResolvePicks_ChiltonScansFromTheBack(t *testing.T) {
	snapshot := seedSnapshot()
	submitDraft(&snapshot, userAlice, raceImola, draft.VariantChilton, ranking(7, 1))

	picks := ResolvePicks(snapshot, draft.VariantChilton, raceImola, ResolveOptions{Rounds: 2})
	if len(picks) != 2 || picks[0].DriverID != 20 || picks[1].DriverID != 19 {
		t.Fatalf("expected the two least preferred drivers, got %+v", picks)
	}
}

func TestResolvePicks_SkipsUnsubmittedUsers(t *testing.T) {
	snapshot := seedSnapshot()
	submitDraft(&snapshot, userAlice, raceImola, draft.VariantGrojean, ranking(7))
	snapshot.UserRankings.Set(draft.VariantGrojean, userBob, raceImola, ranking(1))

	picks := ResolvePicks(snapshot, draft.VariantGrojean, raceImola, ResolveOptions{Rounds: 2})
	for _, p := range picks {
		if p.UserID == userBob {
			t.Fatalf("bob did not submit but got a pick: %+v", p)
		}
	}
	if len(picks) != 2 {
		t.Fatalf("expected 2 picks, got %d", len(picks))
	}
}

func TestResolvePicks_NoFallbackWhenRankingExhausted(t *testing.T) {
	snapshot := seedSnapshot()
	submitDraft(&snapshot, userAlice, raceImola, draft.VariantGrojean, []int{7})
	submitDraft(&snapshot, userBob, raceImola, draft.VariantGrojean, []int{7})

	picks := ResolvePicks(snapshot, draft.VariantGrojean, raceImola, ResolveOptions{Rounds: 2})
	if len(picks) != 1 || picks[0].UserID != userAlice || picks[0].DriverID != 7 {
		t.Fatalf("expected a single pick for alice, got %+v", picks)
	}
}

func TestResolvePicks_EmptyWhenNobodySubmitted(t *testing.T) {
	picks := ResolvePicks(seedSnapshot(), draft.VariantGrojean, raceImola, ResolveOptions{})
	if picks == nil || len(picks) != 0 {
		t.Fatalf("expected empty non-nil picks, got %#v", picks)
	}
}

func TestResolvePicks_ReverseUserOrder(t *testing.T) {
	snapshot := seedSnapshot()
	submitDraft(&snapshot, userAlice, raceImola, draft.VariantChilton, ranking(1, 2))
	submitDraft(&snapshot, userBob, raceImola, draft.VariantChilton, ranking(1, 2))

	picks := ResolvePicks(snapshot, draft.VariantChilton, raceImola, ResolveOptions{Rounds: 2, ReverseUserOrder: true})
	if picks[0].UserID != userBob || picks[1].UserID != userAlice || picks[2].UserID != userAlice || picks[3].UserID != userBob {
		t.Fatalf("unexpected reversed snake order: %+v", picks)
	}
}

func TestResolvePicks_RandomizedInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	ids := driver.DefaultRoster().IDs()

	for iter := 0; iter < 200; iter++ {
		snapshot := seedSnapshot()
		order := append([]int64(nil), snapshot.TurnOrder...)
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		snapshot.TurnOrder = order

		eligible := 0
		for _, u := range snapshot.Users {
			if rng.Intn(4) == 0 {
				continue
			}
			eligible++
			prefs := append([]int(nil), ids...)
			rng.Shuffle(len(prefs), func(i, j int) { prefs[i], prefs[j] = prefs[j], prefs[i] })
			prefs = prefs[:rng.Intn(len(prefs))+1]
			for _, variant := range draft.Variants() {
				submitDraft(&snapshot, u.ID, raceImola, variant, prefs)
			}
		}

		for _, variant := range draft.Variants() {
			before := snapshot.Clone()
			first := ResolvePicks(snapshot, variant, raceImola, ResolveOptions{Rounds: 2})
			second := ResolvePicks(snapshot, variant, raceImola, ResolveOptions{Rounds: 2})

			if !reflect.DeepEqual(first, second) {
				t.Fatalf("iteration %d: resolution is not deterministic", iter)
			}
			if !reflect.DeepEqual(before, snapshot) {
				t.Fatalf("iteration %d: resolution modified the snapshot", iter)
			}
			if len(first) > 2*eligible {
				t.Fatalf("iteration %d: %d picks for %d eligible users", iter, len(first), eligible)
			}
			assertNoDuplicateDrivers(t, first)
		}
	}
}

func TestEligibleUsers_OrphanSubmittersFollowTurnOrder(t *testing.T) {
	snapshot := state.Empty()
	snapshot.TurnOrder = []int64{5, 3}
	snapshot.Submissions.Draft.Mark(raceImola, 9)
	snapshot.Submissions.Draft.Mark(raceImola, 3)
	snapshot.Submissions.Draft.Mark(raceImola, 5)
	snapshot.Submissions.Draft.Mark(raceImola, 7)

	got := eligibleUsers(snapshot, raceImola, snapshot.TurnOrder)
	want := []int64{5, 3, 7, 9}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected order: got=%v want=%v", got, want)
	}
}

func assertNoDuplicateDrivers(t *testing.T, picks []draft.Pick) {
	t.Helper()
	seen := make(map[int]struct{}, len(picks))
	for _, p := range picks {
		if _, dup := seen[p.DriverID]; dup {
			t.Fatalf("driver %d assigned twice: %+v", p.DriverID, picks)
		}
		seen[p.DriverID] = struct{}{}
	}
}
