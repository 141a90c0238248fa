package race

import "time"

// Calendar is the ordered list of race entries. Methods mutate in place and
// keep at most one race in the drafting state.
type Calendar []Race

func (c Calendar) Find(id int64) (Race, int, bool) {
	for i, r := range c {
		if r.ID == id {
			return r, i, true
		}
	}
	return Race{}, -1, false
}

func (c Calendar) Drafting() (Race, int, bool) {
	for i, r := range c {
		if r.Status == StatusDrafting {
			return r, i, true
		}
	}
	return Race{}, -1, false
}

// PromoteNext opens the earliest-dated upcoming race other than exclude.
func (c Calendar) PromoteNext(exclude int64) (Race, bool) {
	best := -1
	for i, r := range c {
		if !r.IsUpcoming() || r.ID == exclude {
			continue
		}
		if best < 0 || lessByKey(r, c[best], Race.sortKey) {
			best = i
		}
	}
	if best < 0 {
		return Race{}, false
	}
	c[best].Status = StatusDrafting
	return c[best], true
}

// EnsureDrafting promotes the earliest upcoming race when none is drafting.
func (c Calendar) EnsureDrafting() (Race, bool, bool) {
	if r, _, ok := c.Drafting(); ok {
		return r, true, false
	}
	promoted, ok := c.PromoteNext(0)
	return promoted, ok, ok
}

// Upsert stores r and enforces the single-drafting rule: a drafting save
// demotes the other drafting race; an upcoming save opens r when nothing drafts.
func (c Calendar) Upsert(r Race) Calendar {
	out := c
	if _, idx, ok := out.Find(r.ID); ok {
		out[idx] = r
	} else {
		out = append(out, r)
	}

	switch r.Status {
	case StatusDrafting:
		for i := range out {
			if out[i].ID != r.ID && out[i].Status == StatusDrafting {
				out[i].Status = StatusUpcoming
			}
		}
	case StatusUpcoming, "":
		if _, _, drafting := out.Drafting(); !drafting {
			_, idx, _ := out.Find(r.ID)
			out[idx].Status = StatusDrafting
		}
	}

	return out
}

func (c Calendar) Remove(id int64) Calendar {
	out := make(Calendar, 0, len(c))
	for _, r := range c {
		if r.ID != id {
			out = append(out, r)
		}
	}
	return out
}

// Complete marks the race completed and opens the next upcoming race unless
// another race is already drafting.
func (c Calendar) Complete(id int64) (Race, bool) {
	_, idx, ok := c.Find(id)
	if !ok {
		return Race{}, false
	}
	c[idx].Status = StatusCompleted
	if _, _, drafting := c.Drafting(); drafting {
		return Race{}, false
	}
	return c.PromoteNext(id)
}

// CloseExpired completes every drafting race whose deadline has passed and
// promotes the next upcoming race. It reports whether anything changed.
func (c Calendar) CloseExpired(now time.Time, loc *time.Location) bool {
	changed := false
	for i := range c {
		if c[i].Status != StatusDrafting {
			continue
		}
		deadline, ok := c[i].Deadline(loc)
		if !ok || now.Before(deadline) {
			continue
		}
		c[i].Status = StatusCompleted
		changed = true
		c.PromoteNext(c[i].ID)
	}
	return changed
}

// LatestCompleted returns the completed race with the latest deadline date.
func (c Calendar) LatestCompleted() (Race, bool) {
	best := -1
	for i, r := range c {
		if r.Status != StatusCompleted {
			continue
		}
		if best < 0 || lessByKey(c[best], r, Race.deadlineKey) {
			best = i
		}
	}
	if best < 0 {
		return Race{}, false
	}
	return c[best], true
}

func (c Calendar) Clone() Calendar {
	return append(Calendar(nil), c...)
}
