package usecase

import (
	"testing"

	"github.com/riskibarqy/f1-draft/internal/domain/draft"
	"github.com/riskibarqy/f1-draft/internal/domain/driver"
	"github.com/riskibarqy/f1-draft/internal/domain/race"
	"github.com/riskibarqy/f1-draft/internal/domain/state"
	"github.com/riskibarqy/f1-draft/internal/domain/user"
	"github.com/riskibarqy/f1-draft/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/f1-draft/internal/platform/logging"
)

const (
	userAlice int64 = 1
	userBob   int64 = 2
	userCarol int64 = 3

	raceImola  int64 = 100
	raceMonaco int64 = 101
	raceSpain  int64 = 102
)

var (
	alice = user.Principal{UserID: userAlice, IsAdmin: true}
	bob   = user.Principal{UserID: userBob}
)

type sequenceIDs struct{ next int64 }

func (s *sequenceIDs) NextID() int64 {
	s.next++
	return s.next
}

func seedSnapshot() state.Snapshot {
	snapshot := state.Empty()
	snapshot.Users = []user.User{
		{ID: userAlice, Username: "alice", Avatar: "🏎️", IsAdmin: true},
		{ID: userBob, Username: "bob", Avatar: "🏁"},
		{ID: userCarol, Username: "carol", Avatar: "🚦"},
	}
	snapshot.TurnOrder = user.TurnOrder{userAlice, userBob, userCarol}
	snapshot.RaceCalendar = race.Calendar{
		{ID: raceImola, Name: "Imola", Date: "2099-05-18", DeadlineDate: "2099-05-17", DeadlineTime: "12:00", Status: race.StatusDrafting},
		{ID: raceMonaco, Name: "Monaco", Date: "2099-05-25", DeadlineDate: "2099-05-24", DeadlineTime: "12:00", Status: race.StatusUpcoming},
		{ID: raceSpain, Name: "Spain", Date: "2099-06-01", DeadlineDate: "2099-05-31", DeadlineTime: "12:00", Status: race.StatusUpcoming},
	}
	return snapshot
}

func newTestStore(t *testing.T, snapshot state.Snapshot) (*StateStore, *memory.StateRepository) {
	t.Helper()
	repo := memory.NewSeededStateRepository(snapshot)
	return NewStateStore(repo, memory.NewHistoryRepository(0), logging.NewNop()), repo
}

// ranking puts first at the top and the rest of the roster after it in id order.
func ranking(first ...int) []int {
	out := append([]int(nil), first...)
	seen := make(map[int]struct{}, len(first))
	for _, id := range first {
		seen[id] = struct{}{}
	}
	for _, id := range driver.DefaultRoster().IDs() {
		if _, ok := seen[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

func submitDraft(snapshot *state.Snapshot, userID, raceID int64, variant draft.Variant, ids []int) {
	snapshot.UserRankings.Set(variant, userID, raceID, ids)
	snapshot.Submissions.Draft.Mark(raceID, userID)
}

func imolaResult() race.Result {
	pole := 7
	return race.Result{
		RaceID:   raceImola,
		Name:     "Imola",
		Date:     "2099-05-18",
		Results:  map[int]int{1: 7, 2: 1, 3: 8, 4: 5, 5: 3, 19: 12, 20: 9},
		Statuses: map[int]race.FinishStatus{12: race.StatusClassifiedDNF, 9: race.StatusNonClassifiedDNF, 20: race.StatusDidNotStart},
		Times:    map[int]string{},
		Pole:     &pole,
	}
}
