package standing

import (
	"errors"
	"fmt"
	"maps"
	"sort"
	"strconv"
	"strings"
)

var (
	ErrRaceNotFound = errors.New("race not found in calendar")
	ErrRaceUnscored = errors.New("race has no recorded standings")
)

// Standing is one user's score for one race.
type Standing struct {
	Grojean   int `json:"grojeanPoints"`
	Chilton   int `json:"chiltonPoints"`
	PoleBonus int `json:"poleBonus"`
	Top5Bonus int `json:"top5Bonus"`
	Total     int `json:"total"`
}

func New(grojean, chilton, pole, top5 int) Standing {
	return Standing{
		Grojean:   grojean,
		Chilton:   chilton,
		PoleBonus: pole,
		Top5Bonus: top5,
		Total:     grojean + chilton + pole + top5,
	}
}

// Draft combines both variants.
func (s Standing) Draft() int {
	return s.Grojean + s.Chilton
}

func (s Standing) Add(o Standing) Standing {
	return Standing{
		Grojean:   s.Grojean + o.Grojean,
		Chilton:   s.Chilton + o.Chilton,
		PoleBonus: s.PoleBonus + o.PoleBonus,
		Top5Bonus: s.Top5Bonus + o.Top5Bonus,
		Total:     s.Total + o.Total,
	}
}

// Book holds standings keyed by race id then user id.
type Book map[int64]map[int64]Standing

func (b Book) Race(raceID int64) (map[int64]Standing, bool) {
	rows, ok := b[raceID]
	return rows, ok
}

// ReplaceRace overwrites every standing recorded for raceID.
func (b Book) ReplaceRace(raceID int64, rows map[int64]Standing) {
	b[raceID] = maps.Clone(rows)
}

func (b Book) RemoveUser(userID int64) {
	for _, byUser := range b {
		delete(byUser, userID)
	}
}

func (b Book) RaceIDs() []int64 {
	out := make([]int64, 0, len(b))
	for raceID := range b {
		out = append(out, raceID)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (b Book) Clone() Book {
	out := make(Book, len(b))
	for raceID, byUser := range b {
		out[raceID] = maps.Clone(byUser)
	}
	return out
}

// Adjustments are manual per-user season deltas applied to the all-races total.
type Adjustments map[int64]int

// Row is one line of a standings table.
type Row struct {
	Rank      int    `json:"rank"`
	UserID    int64  `json:"userId"`
	Username  string `json:"username"`
	Avatar    string `json:"avatar"`
	Draft     int    `json:"draft"`
	PoleBonus int    `json:"poleBonus"`
	Top5Bonus int    `json:"top5Bonus"`
	Total     int    `json:"total"`
}

// SortRows orders by total descending then username ascending and numbers the rows.
func SortRows(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Total != rows[j].Total {
			return rows[i].Total > rows[j].Total
		}
		return rows[i].Username < rows[j].Username
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
}

// Filter selects either the season aggregate or a single race.
type Filter struct {
	All    bool
	RaceID int64
}

func AllRaces() Filter           { return Filter{All: true} }
func ForRace(raceID int64) Filter { return Filter{RaceID: raceID} }

func (f Filter) String() string {
	if f.All {
		return "all"
	}
	return strconv.FormatInt(f.RaceID, 10)
}

// ParseFilter accepts "all" (or empty) or a race id.
func ParseFilter(v string) (Filter, error) {
	v = strings.TrimSpace(v)
	if v == "" || strings.EqualFold(v, "all") {
		return AllRaces(), nil
	}
	raceID, err := strconv.ParseInt(v, 10, 64)
	if err != nil || raceID <= 0 {
		return Filter{}, fmt.Errorf("invalid standings filter %q", v)
	}
	return ForRace(raceID), nil
}
