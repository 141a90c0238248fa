package usecase

import (
	"slices"
	"sort"

	"github.com/riskibarqy/f1-draft/internal/domain/draft"
	"github.com/riskibarqy/f1-draft/internal/domain/state"
)

// ResolveOptions tunes pick resolution.
type ResolveOptions struct {
	Rounds int

	// ReverseUserOrder reverses the round-one user order before drafting.
	ReverseUserOrder bool

	// TurnOrder overrides the snapshot's current turn order when set.
	TurnOrder []int64
}

func resolveOptionsFor(rules draft.Rules, variant draft.Variant, turnOrder []int64) ResolveOptions {
	return ResolveOptions{
		Rounds:           rules.Rounds,
		ReverseUserOrder: rules.ReverseChiltonTurnOrder && variant == draft.VariantChilton,
		TurnOrder:        turnOrder,
	}
}

// draftTurnOrder is the order the draft for raceID ran under: the order
// recorded with its published result, or the live order before publishing.
func draftTurnOrder(snapshot state.Snapshot, raceID int64) []int64 {
	if result, ok := snapshot.Result(raceID); ok && len(result.TurnOrder) > 0 {
		return result.TurnOrder
	}
	return snapshot.TurnOrder
}

// ResolvePicks runs the snake draft for one variant and race over the
// submitted users. It reads snapshot without modifying it, never assigns a
// driver twice and leaves a user without a pick when their ranking runs out.
func ResolvePicks(snapshot state.Snapshot, variant draft.Variant, raceID int64, opts ResolveOptions) []draft.Pick {
	rounds := opts.Rounds
	if rounds <= 0 {
		rounds = draft.DefaultRules().Rounds
	}

	turnOrder := opts.TurnOrder
	if len(turnOrder) == 0 {
		turnOrder = snapshot.TurnOrder
	}
	order := eligibleUsers(snapshot, raceID, turnOrder)
	if len(order) == 0 {
		return []draft.Pick{}
	}
	if opts.ReverseUserOrder {
		slices.Reverse(order)
	}

	claimed := make(map[int]struct{}, len(order)*rounds)
	picks := make([]draft.Pick, 0, len(order)*rounds)

	for round := 1; round <= rounds; round++ {
		roundOrder := order
		if round%2 == 0 {
			roundOrder = slices.Clone(order)
			slices.Reverse(roundOrder)
		}

		for _, userID := range roundOrder {
			ranking, _ := snapshot.UserRankings.Get(variant, userID, raceID)
			driverID, ok := firstUnclaimed(ranking, variant == draft.VariantChilton, claimed)
			if !ok {
				continue
			}
			claimed[driverID] = struct{}{}
			picks = append(picks, draft.Pick{
				UserID:     userID,
				DriverID:   driverID,
				Round:      round,
				PickNumber: len(picks) + 1,
			})
		}
	}

	return picks
}

// eligibleUsers returns the users who submitted a draft for raceID, in turn
// order. Submitters missing from the turn order follow, ordered by id.
func eligibleUsers(snapshot state.Snapshot, raceID int64, turnOrder []int64) []int64 {
	submitted := snapshot.Submissions.Draft[raceID]
	if len(submitted) == 0 {
		return nil
	}

	position := make(map[int64]int, len(turnOrder))
	for i, userID := range turnOrder {
		if _, seen := position[userID]; !seen {
			position[userID] = i
		}
	}

	out := make([]int64, 0, len(submitted))
	for userID, ok := range submitted {
		if ok {
			out = append(out, userID)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		pi, iok := position[out[i]]
		pj, jok := position[out[j]]
		if iok != jok {
			return iok
		}
		if iok && pi != pj {
			return pi < pj
		}
		return out[i] < out[j]
	})
	return out
}

func firstUnclaimed(ranking []int, reversed bool, claimed map[int]struct{}) (int, bool) {
	for i := range ranking {
		idx := i
		if reversed {
			idx = len(ranking) - 1 - i
		}
		driverID := ranking[idx]
		if driverID <= 0 {
			continue
		}
		if _, taken := claimed[driverID]; taken {
			continue
		}
		return driverID, true
	}
	return 0, false
}

// PicksForUser filters picks to one user in pick order.
func PicksForUser(picks []draft.Pick, userID int64) []draft.Pick {
	out := make([]draft.Pick, 0, 2)
	for _, p := range picks {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out
}
