package user

import "fmt"

// TurnOrder is the ordered sequence of user ids used for draft rounds.
type TurnOrder []int64

// Normalize prunes stale ids and duplicates, then appends live users missing
// from the order in user-list order.
func (o TurnOrder) Normalize(users []User) TurnOrder {
	live := make(map[int64]struct{}, len(users))
	for _, u := range users {
		live[u.ID] = struct{}{}
	}

	out := make(TurnOrder, 0, len(users))
	seen := make(map[int64]struct{}, len(users))
	for _, id := range o {
		if _, ok := live[id]; !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	for _, u := range users {
		if _, ok := seen[u.ID]; ok {
			continue
		}
		seen[u.ID] = struct{}{}
		out = append(out, u.ID)
	}

	return out
}

func (o TurnOrder) IndexOf(id int64) int {
	for i, v := range o {
		if v == id {
			return i
		}
	}
	return -1
}

func (o TurnOrder) Remove(id int64) TurnOrder {
	out := make(TurnOrder, 0, len(o))
	for _, v := range o {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// Rotate moves the first user to the end.
func (o TurnOrder) Rotate() TurnOrder {
	if len(o) < 2 {
		return append(TurnOrder(nil), o...)
	}
	out := make(TurnOrder, 0, len(o))
	out = append(out, o[1:]...)
	return append(out, o[0])
}

// ValidatePermutation checks that order covers exactly the given users.
func ValidatePermutation(order []int64, users []User) error {
	if len(order) != len(users) {
		return fmt.Errorf("turn order must contain %d users, got %d", len(users), len(order))
	}
	live := make(map[int64]struct{}, len(users))
	for _, u := range users {
		live[u.ID] = struct{}{}
	}
	seen := make(map[int64]struct{}, len(order))
	for _, id := range order {
		if _, ok := live[id]; !ok {
			return fmt.Errorf("unknown user id %d in turn order", id)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("duplicate user id %d in turn order", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
