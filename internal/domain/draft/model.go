package draft

import (
	"errors"
	"fmt"
	"maps"
	"strings"
)

var (
	ErrUnknownVariant = errors.New("unknown draft variant")
	ErrInvalidRanking = errors.New("invalid driver ranking")
)

// Variant selects how a draft's picks are scored.
type Variant string

const (
	// VariantGrojean rewards high finishing positions.
	VariantGrojean Variant = "grojean"
	// VariantChilton rewards low finishing positions; rankings are scanned in reverse.
	VariantChilton Variant = "chilton"
)

func Variants() []Variant {
	return []Variant{VariantGrojean, VariantChilton}
}

func ParseVariant(v string) (Variant, error) {
	switch Variant(strings.ToLower(strings.TrimSpace(v))) {
	case VariantGrojean:
		return VariantGrojean, nil
	case VariantChilton:
		return VariantChilton, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownVariant, v)
	}
}

// Pick is one driver assignment produced by the snake draft.
type Pick struct {
	UserID     int64 `json:"userId"`
	DriverID   int   `json:"driverId"`
	Round      int   `json:"round"`
	PickNumber int   `json:"pickNumber"`
}

// Rankings holds preference orders keyed by variant, user id and race id.
type Rankings map[Variant]map[int64]map[int64][]int

func (r Rankings) Get(variant Variant, userID, raceID int64) ([]int, bool) {
	ids, ok := r[variant][userID][raceID]
	return ids, ok
}

// Latest returns the user's ranking for the highest race id stored under variant.
func (r Rankings) Latest(variant Variant, userID int64) ([]int, bool) {
	byRace := r[variant][userID]
	var (
		bestID int64
		best   []int
		found  bool
	)
	for raceID, ids := range byRace {
		if !found || raceID > bestID {
			bestID, best, found = raceID, ids, true
		}
	}
	return best, found
}

func (r Rankings) Set(variant Variant, userID, raceID int64, ids []int) {
	if r[variant] == nil {
		r[variant] = make(map[int64]map[int64][]int)
	}
	if r[variant][userID] == nil {
		r[variant][userID] = make(map[int64][]int)
	}
	r[variant][userID][raceID] = append([]int(nil), ids...)
}

func (r Rankings) RemoveUser(userID int64) {
	for _, byUser := range r {
		delete(byUser, userID)
	}
}

func (r Rankings) Clone() Rankings {
	out := make(Rankings, len(r))
	for variant, byUser := range r {
		users := make(map[int64]map[int64][]int, len(byUser))
		for userID, byRace := range byUser {
			races := make(map[int64][]int, len(byRace))
			for raceID, ids := range byRace {
				races[raceID] = append([]int(nil), ids...)
			}
			users[userID] = races
		}
		out[variant] = users
	}
	return out
}

// Flags records per race which users have submitted.
type Flags map[int64]map[int64]bool

func (f Flags) Submitted(raceID, userID int64) bool {
	return f[raceID][userID]
}

func (f Flags) Mark(raceID, userID int64) {
	if f[raceID] == nil {
		f[raceID] = make(map[int64]bool)
	}
	f[raceID][userID] = true
}

func (f Flags) RemoveUser(userID int64) {
	for _, byUser := range f {
		delete(byUser, userID)
	}
}

func (f Flags) Clone() Flags {
	out := make(Flags, len(f))
	for raceID, byUser := range f {
		out[raceID] = maps.Clone(byUser)
	}
	return out
}

// Submissions gates scoring: unsubmitted drafts or bonuses earn nothing.
type Submissions struct {
	Draft Flags `json:"draft"`
	Bonus Flags `json:"bonus"`
}

func NewSubmissions() Submissions {
	return Submissions{Draft: Flags{}, Bonus: Flags{}}
}

func (s Submissions) Clone() Submissions {
	return Submissions{Draft: s.Draft.Clone(), Bonus: s.Bonus.Clone()}
}

// ValidateRanking requires ids to be a permutation of the roster ids.
func ValidateRanking(ids []int, rosterIDs []int) error {
	if len(ids) != len(rosterIDs) {
		return fmt.Errorf("%w: expected %d drivers, got %d", ErrInvalidRanking, len(rosterIDs), len(ids))
	}
	known := make(map[int]struct{}, len(rosterIDs))
	for _, id := range rosterIDs {
		known[id] = struct{}{}
	}
	seen := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			return fmt.Errorf("%w: unknown driver %d", ErrInvalidRanking, id)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: driver %d listed twice", ErrInvalidRanking, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
