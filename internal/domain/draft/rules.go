package draft

import "github.com/riskibarqy/f1-draft/internal/domain/race"

// Rules holds the scoring constants for a league.
type Rules struct {
	Rounds               int
	GrojeanBase          int
	NonClassifiedPenalty int
	DidNotStartPoints    int
	PoleBonus            int
	Top5Presence         int
	Top5Exact            int
	Top5Length           int

	// ReverseChiltonTurnOrder also reverses the user order for chilton drafts.
	ReverseChiltonTurnOrder bool
}

func DefaultRules() Rules {
	return Rules{
		Rounds:               2,
		GrojeanBase:          race.MaxPosition + 1,
		NonClassifiedPenalty: -1,
		DidNotStartPoints:    0,
		PoleBonus:            2,
		Top5Presence:         1,
		Top5Exact:            1,
		Top5Length:           5,
	}
}

// Points scores one pick's finish for the given variant.
func (r Rules) Points(variant Variant, f race.Finish) int {
	switch f.Kind {
	case race.FinishDidNotStart:
		return r.DidNotStartPoints
	case race.FinishNonClassifiedDNF:
		return r.NonClassifiedPenalty
	case race.FinishPlaced, race.FinishClassifiedDNF:
		if variant == VariantChilton {
			return f.Position
		}
		return r.GrojeanBase - f.Position
	default:
		return 0
	}
}

// PolePoints awards the pole bonus for an exact guess. A missing pole never matches.
func (r Rules) PolePoints(guess int, actual *int) int {
	if guess <= 0 || actual == nil || *actual != guess {
		return 0
	}
	return r.PoleBonus
}

// Top5Points scores predicted against the actual top five. Zero entries in
// predicted are empty slots.
func (r Rules) Top5Points(predicted, actual []int) int {
	index := make(map[int]int, len(actual))
	for i, driverID := range actual {
		if _, seen := index[driverID]; !seen {
			index[driverID] = i
		}
	}

	points := 0
	for i, driverID := range predicted {
		if i >= r.Top5Length {
			break
		}
		if driverID <= 0 {
			continue
		}
		at, ok := index[driverID]
		if !ok {
			continue
		}
		points += r.Top5Presence
		if at == i {
			points += r.Top5Exact
		}
	}
	return points
}
