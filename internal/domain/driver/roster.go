package driver

import (
	"fmt"
	"strings"
)

// Roster is the fixed, ordered driver list for a season.
type Roster struct {
	drivers []Driver
	byID    map[int]Driver
}

func NewRoster(drivers []Driver) (Roster, error) {
	byID := make(map[int]Driver, len(drivers))
	for _, d := range drivers {
		if err := d.Validate(); err != nil {
			return Roster{}, err
		}
		if _, exists := byID[d.ID]; exists {
			return Roster{}, fmt.Errorf("duplicate driver id %d", d.ID)
		}
		byID[d.ID] = d
	}

	return Roster{
		drivers: append([]Driver(nil), drivers...),
		byID:    byID,
	}, nil
}

// DefaultRoster returns the 2025 grid, ids 1..20.
func DefaultRoster() Roster {
	roster, err := NewRoster([]Driver{
		{ID: 1, Name: "Max Verstappen", Team: "Red Bull"},
		{ID: 2, Name: "Yuki Tsunoda", Team: "Red Bull"},
		{ID: 3, Name: "George Russell", Team: "Mercedes"},
		{ID: 4, Name: "Kimi Antonelli", Team: "Mercedes"},
		{ID: 5, Name: "Charles Leclerc", Team: "Ferrari"},
		{ID: 6, Name: "Lewis Hamilton", Team: "Ferrari"},
		{ID: 7, Name: "Lando Norris", Team: "McLaren"},
		{ID: 8, Name: "Oscar Piastri", Team: "McLaren"},
		{ID: 9, Name: "Fernando Alonso", Team: "Aston Martin"},
		{ID: 10, Name: "Lance Stroll", Team: "Aston Martin"},
		{ID: 11, Name: "Pierre Gasly", Team: "Alpine"},
		{ID: 12, Name: "Franco Colapinto", Team: "Alpine"},
		{ID: 13, Name: "Esteban Ocon", Team: "Haas"},
		{ID: 14, Name: "Oliver Bearman", Team: "Haas"},
		{ID: 15, Name: "Nico Hulkenberg", Team: "Sauber"},
		{ID: 16, Name: "Gabriel Bortoleto", Team: "Sauber"},
		{ID: 17, Name: "Alex Albon", Team: "Williams"},
		{ID: 18, Name: "Carlos Sainz", Team: "Williams"},
		{ID: 19, Name: "Liam Lawson", Team: "Racing Bulls"},
		{ID: 20, Name: "Isack Hadjar", Team: "Racing Bulls"},
	})
	if err != nil {
		panic(err)
	}
	return roster
}

func (r Roster) List() []Driver {
	return append([]Driver(nil), r.drivers...)
}

// IDs returns driver ids in roster order, which is the identity ranking.
func (r Roster) IDs() []int {
	out := make([]int, 0, len(r.drivers))
	for _, d := range r.drivers {
		out = append(out, d.ID)
	}
	return out
}

func (r Roster) Len() int {
	return len(r.drivers)
}

func (r Roster) Get(id int) (Driver, bool) {
	d, ok := r.byID[id]
	return d, ok
}

func (r Roster) Contains(id int) bool {
	_, ok := r.byID[id]
	return ok
}

// FindByName matches a free-form name against full, first or last names.
// An exact full-name match always wins over a partial one.
func (r Roster) FindByName(name string) (Driver, bool) {
	search := strings.ToLower(strings.Join(strings.Fields(name), " "))
	if search == "" {
		return Driver{}, false
	}

	for _, d := range r.drivers {
		if strings.ToLower(d.Name) == search {
			return d, true
		}
	}
	for _, d := range r.drivers {
		first := strings.ToLower(d.FirstName())
		last := strings.ToLower(d.LastName())
		if (first != "" && strings.Contains(search, first)) || (last != "" && strings.Contains(search, last)) {
			return d, true
		}
	}

	return Driver{}, false
}
