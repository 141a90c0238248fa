package state

import (
	"slices"
	"time"

	"github.com/riskibarqy/f1-draft/internal/domain/bonus"
	"github.com/riskibarqy/f1-draft/internal/domain/draft"
	"github.com/riskibarqy/f1-draft/internal/domain/race"
	"github.com/riskibarqy/f1-draft/internal/domain/standing"
	"github.com/riskibarqy/f1-draft/internal/domain/user"
)

// Snapshot is the whole league state. It is loaded, mutated and saved as a
// unit; concurrent writers resolve by last write wins.
type Snapshot struct {
	Users             []user.User          `json:"users"`
	TurnOrder         user.TurnOrder       `json:"turnOrder"`
	RaceCalendar      race.Calendar        `json:"raceCalendar"`
	Races             []race.Result        `json:"races"`
	UserRankings      draft.Rankings       `json:"userRankings"`
	Submissions       draft.Submissions    `json:"submissions"`
	BonusPicks        bonus.Book           `json:"bonusPicks"`
	Standings         standing.Book        `json:"standings"`
	SeasonAdjustments standing.Adjustments `json:"seasonAdjustments"`
	Version           int64                `json:"version"`
	UpdatedAt         time.Time            `json:"updatedAt"`
}

func Empty() Snapshot {
	s := Snapshot{}
	s.Normalize()
	return s
}

// Normalize fills nil collections and prunes the turn order against the user list.
func (s *Snapshot) Normalize() {
	if s.Users == nil {
		s.Users = []user.User{}
	}
	if s.RaceCalendar == nil {
		s.RaceCalendar = race.Calendar{}
	}
	if s.Races == nil {
		s.Races = []race.Result{}
	}
	if s.UserRankings == nil {
		s.UserRankings = draft.Rankings{}
	}
	if s.Submissions.Draft == nil {
		s.Submissions.Draft = draft.Flags{}
	}
	if s.Submissions.Bonus == nil {
		s.Submissions.Bonus = draft.Flags{}
	}
	if s.BonusPicks.Pole == nil || s.BonusPicks.Top5 == nil {
		fresh := bonus.NewBook()
		if s.BonusPicks.Pole == nil {
			s.BonusPicks.Pole = fresh.Pole
		}
		if s.BonusPicks.Top5 == nil {
			s.BonusPicks.Top5 = fresh.Top5
		}
	}
	if s.Standings == nil {
		s.Standings = standing.Book{}
	}
	if s.SeasonAdjustments == nil {
		s.SeasonAdjustments = standing.Adjustments{}
	}
	s.TurnOrder = s.TurnOrder.Normalize(s.Users)
}

func (s Snapshot) Clone() Snapshot {
	out := s
	out.Users = slices.Clone(s.Users)
	out.TurnOrder = slices.Clone(s.TurnOrder)
	out.RaceCalendar = s.RaceCalendar.Clone()
	out.Races = make([]race.Result, 0, len(s.Races))
	for _, r := range s.Races {
		out.Races = append(out.Races, r.Clone())
	}
	out.UserRankings = s.UserRankings.Clone()
	out.Submissions = s.Submissions.Clone()
	out.BonusPicks = s.BonusPicks.Clone()
	out.Standings = s.Standings.Clone()
	out.SeasonAdjustments = make(standing.Adjustments, len(s.SeasonAdjustments))
	for k, v := range s.SeasonAdjustments {
		out.SeasonAdjustments[k] = v
	}
	return out
}

// IsAdmin reports whether the user has the admin flag or heads the turn order.
func (s Snapshot) IsAdmin(userID int64) bool {
	u, _, ok := user.Find(s.Users, userID)
	if !ok {
		return false
	}
	if u.IsAdmin {
		return true
	}
	order := s.TurnOrder.Normalize(s.Users)
	return len(order) > 0 && order[0] == userID
}

// AdminCount counts users that pass IsAdmin.
func (s Snapshot) AdminCount() int {
	n := 0
	for _, u := range s.Users {
		if s.IsAdmin(u.ID) {
			n++
		}
	}
	return n
}

// RemoveUser deletes the user and every record that references them.
func (s *Snapshot) RemoveUser(userID int64) {
	s.Users = slices.DeleteFunc(s.Users, func(u user.User) bool { return u.ID == userID })
	s.TurnOrder = s.TurnOrder.Remove(userID)
	s.UserRankings.RemoveUser(userID)
	s.Submissions.Draft.RemoveUser(userID)
	s.Submissions.Bonus.RemoveUser(userID)
	s.BonusPicks.RemoveUser(userID)
	s.Standings.RemoveUser(userID)
	delete(s.SeasonAdjustments, userID)
}

func (s Snapshot) Result(raceID int64) (race.Result, bool) {
	r, _, ok := race.FindResult(s.Races, raceID)
	return r, ok
}
