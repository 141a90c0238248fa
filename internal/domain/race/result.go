package race

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"
)

const MaxPosition = 20

var (
	ErrDuplicateDriver = errors.New("duplicate driver in race results")
	ErrInvalidPosition = errors.New("invalid finishing position")
	ErrEmptyResults    = errors.New("race results are empty")
)

// FinishStatus annotates a driver's result. The zero value means a normal finish.
type FinishStatus string

const (
	StatusNone             FinishStatus = ""
	StatusDidNotStart      FinishStatus = "DNS"
	StatusClassifiedDNF    FinishStatus = "C,DNF"
	StatusNonClassifiedDNF FinishStatus = "NC,DNF"
	// StatusDNF is the generic marker used by older data; unplaced it counts as non-classified.
	StatusDNF FinishStatus = "DNF"
)

func ParseFinishStatus(v string) (FinishStatus, error) {
	switch FinishStatus(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(v), " ", ""))) {
	case StatusNone:
		return StatusNone, nil
	case StatusDidNotStart:
		return StatusDidNotStart, nil
	case StatusClassifiedDNF:
		return StatusClassifiedDNF, nil
	case StatusNonClassifiedDNF:
		return StatusNonClassifiedDNF, nil
	case StatusDNF:
		return StatusDNF, nil
	default:
		return "", fmt.Errorf("invalid finish status %q", v)
	}
}

// Result is the published outcome of a calendar race, keyed by the calendar id.
// TurnOrder is the user turn order the race was drafted under, captured on
// first publish.
type Result struct {
	RaceID    int64                `json:"id"`
	Name      string               `json:"name,omitempty"`
	Date      string               `json:"date,omitempty"`
	Results   map[int]int          `json:"results"`
	Statuses  map[int]FinishStatus `json:"statuses"`
	Times     map[int]string       `json:"times"`
	Pole      *int                 `json:"pole"`
	TurnOrder []int64              `json:"turnOrder,omitempty"`
}

// Validate rejects out-of-range positions and drivers listed more than once.
func (r Result) Validate() error {
	if len(r.Results) == 0 {
		return ErrEmptyResults
	}
	seen := make(map[int]int, len(r.Results))
	for _, pos := range r.Positions() {
		if pos < 1 || pos > MaxPosition {
			return fmt.Errorf("%w: %d", ErrInvalidPosition, pos)
		}
		driverID := r.Results[pos]
		if prev, dup := seen[driverID]; dup {
			return fmt.Errorf("%w: driver %d at positions %d and %d", ErrDuplicateDriver, driverID, prev, pos)
		}
		seen[driverID] = pos
	}
	return nil
}

// Positions returns the occupied positions in ascending order.
func (r Result) Positions() []int {
	out := make([]int, 0, len(r.Results))
	for pos := range r.Results {
		out = append(out, pos)
	}
	sort.Ints(out)
	return out
}

// Top5 lists the drivers in positions 1..5 in order, skipping empty positions.
func (r Result) Top5() []int {
	out := make([]int, 0, 5)
	for pos := 1; pos <= 5; pos++ {
		if driverID, ok := r.Results[pos]; ok && driverID > 0 {
			out = append(out, driverID)
		}
	}
	return out
}

func (r Result) Clone() Result {
	out := r
	out.Results = maps.Clone(r.Results)
	out.Statuses = maps.Clone(r.Statuses)
	out.Times = maps.Clone(r.Times)
	out.TurnOrder = slices.Clone(r.TurnOrder)
	if r.Pole != nil {
		pole := *r.Pole
		out.Pole = &pole
	}
	return out
}

func FindResult(results []Result, raceID int64) (Result, int, bool) {
	for i, r := range results {
		if r.RaceID == raceID {
			return r, i, true
		}
	}
	return Result{}, -1, false
}

// UpsertResult replaces the result with the same race id or appends it.
func UpsertResult(results []Result, r Result) []Result {
	if _, idx, ok := FindResult(results, r.RaceID); ok {
		out := append([]Result(nil), results...)
		out[idx] = r
		return out
	}
	return append(append([]Result(nil), results...), r)
}
