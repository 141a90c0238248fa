package bonus

import (
	"errors"
	"fmt"
	"maps"
)

const MaxTop5Picks = 5

var ErrTooManyPicks = errors.New("too many top-5 picks")

// Book stores every user's bonus guesses, keyed by user id then race id.
type Book struct {
	Pole map[int64]map[int64]int   `json:"pole"`
	Top5 map[int64]map[int64][]int `json:"top5"`
}

func NewBook() Book {
	return Book{
		Pole: make(map[int64]map[int64]int),
		Top5: make(map[int64]map[int64][]int),
	}
}

// Picks is one user's guesses for one race.
type Picks struct {
	Pole *int  `json:"pole"`
	Top5 []int `json:"top5"`
}

func (b Book) PoleGuess(userID, raceID int64) (int, bool) {
	id, ok := b.Pole[userID][raceID]
	return id, ok && id > 0
}

func (b Book) Top5Guess(userID, raceID int64) []int {
	return b.Top5[userID][raceID]
}

func (b Book) Picks(userID, raceID int64) Picks {
	out := Picks{Top5: append([]int(nil), b.Top5Guess(userID, raceID)...)}
	if id, ok := b.PoleGuess(userID, raceID); ok {
		out.Pole = &id
	}
	return out
}

// SetPole stores the pole guess; nil clears it.
func (b *Book) SetPole(userID, raceID int64, driverID *int) {
	if b.Pole == nil {
		b.Pole = make(map[int64]map[int64]int)
	}
	if driverID == nil {
		delete(b.Pole[userID], raceID)
		return
	}
	if b.Pole[userID] == nil {
		b.Pole[userID] = make(map[int64]int)
	}
	b.Pole[userID][raceID] = *driverID
}

func (b *Book) SetTop5(userID, raceID int64, driverIDs []int) error {
	if len(driverIDs) > MaxTop5Picks {
		return fmt.Errorf("%w: got %d", ErrTooManyPicks, len(driverIDs))
	}
	if b.Top5 == nil {
		b.Top5 = make(map[int64]map[int64][]int)
	}
	if b.Top5[userID] == nil {
		b.Top5[userID] = make(map[int64][]int)
	}
	b.Top5[userID][raceID] = append([]int(nil), driverIDs...)
	return nil
}

func (b Book) RemoveUser(userID int64) {
	delete(b.Pole, userID)
	delete(b.Top5, userID)
}

func (b Book) Clone() Book {
	out := NewBook()
	for userID, byRace := range b.Pole {
		out.Pole[userID] = maps.Clone(byRace)
	}
	for userID, byRace := range b.Top5 {
		races := make(map[int64][]int, len(byRace))
		for raceID, ids := range byRace {
			races[raceID] = append([]int(nil), ids...)
		}
		out.Top5[userID] = races
	}
	return out
}
