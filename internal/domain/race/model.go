package race

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type Status string

const (
	StatusUpcoming  Status = "upcoming"
	StatusDrafting  Status = "drafting"
	StatusCompleted Status = "completed"
)

const (
	dateLayout          = "2006-01-02"
	deadlineLayout      = "2006-01-02T15:04"
	DefaultDeadlineTime = "00:00"
)

func ParseStatus(v string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(v))) {
	case "", StatusUpcoming:
		return StatusUpcoming, nil
	case StatusDrafting:
		return StatusDrafting, nil
	case StatusCompleted:
		return StatusCompleted, nil
	default:
		return "", fmt.Errorf("invalid race status %q", v)
	}
}

// Race is a calendar entry. Dates are kept as YYYY-MM-DD strings and the
// deadline time as HH:MM, interpreted in the league's configured location.
type Race struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Date         string `json:"date"`
	DeadlineDate string `json:"deadlineDate"`
	DeadlineTime string `json:"deadlineTime"`
	Status       Status `json:"status"`
}

func (r Race) Validate() error {
	if r.ID <= 0 {
		return fmt.Errorf("race id must be > 0")
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("race name is required")
	}
	if _, err := time.Parse(dateLayout, r.Date); err != nil {
		return fmt.Errorf("invalid race date %q: %w", r.Date, err)
	}
	if _, err := time.Parse(dateLayout, r.DeadlineDate); err != nil {
		return fmt.Errorf("invalid deadline date %q: %w", r.DeadlineDate, err)
	}
	if r.DeadlineTime != "" {
		if _, err := time.Parse("15:04", r.DeadlineTime); err != nil {
			return fmt.Errorf("invalid deadline time %q: %w", r.DeadlineTime, err)
		}
	}
	if _, err := ParseStatus(string(r.Status)); err != nil {
		return err
	}
	return nil
}

// IsUpcoming treats an unset status as upcoming.
func (r Race) IsUpcoming() bool {
	return r.Status == StatusUpcoming || r.Status == ""
}

// Deadline combines the deadline date and time (default 00:00) in loc.
func (r Race) Deadline(loc *time.Location) (time.Time, bool) {
	if strings.TrimSpace(r.DeadlineDate) == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	clock := strings.TrimSpace(r.DeadlineTime)
	if clock == "" {
		clock = DefaultDeadlineTime
	}
	ts, err := time.ParseInLocation(deadlineLayout, r.DeadlineDate+"T"+clock, loc)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

func (r Race) sortKey() (time.Time, bool) {
	raw := r.Date
	if strings.TrimSpace(raw) == "" {
		raw = r.DeadlineDate
	}
	ts, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

func (r Race) deadlineKey() (time.Time, bool) {
	raw := r.DeadlineDate
	if strings.TrimSpace(raw) == "" {
		raw = r.Date
	}
	ts, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// SortByDate orders races chronologically; unparseable dates go last and ties keep id order.
func SortByDate(races []Race) {
	sort.SliceStable(races, func(i, j int) bool {
		return lessByKey(races[i], races[j], Race.sortKey)
	})
}

func lessByKey(a, b Race, key func(Race) (time.Time, bool)) bool {
	ak, aok := key(a)
	bk, bok := key(b)
	if aok != bok {
		return aok
	}
	if aok && !ak.Equal(bk) {
		return ak.Before(bk)
	}
	return a.ID < b.ID
}
