package race

// FinishKind tags the variant held by a Finish.
type FinishKind uint8

const (
	FinishUnknown FinishKind = iota
	FinishPlaced
	FinishClassifiedDNF
	FinishNonClassifiedDNF
	FinishDidNotStart
)

func (k FinishKind) String() string {
	switch k {
	case FinishPlaced:
		return "finished"
	case FinishClassifiedDNF:
		return "classified_dnf"
	case FinishNonClassifiedDNF:
		return "non_classified_dnf"
	case FinishDidNotStart:
		return "did_not_start"
	default:
		return "unknown"
	}
}

// Finish is the normalized outcome for one driver. Position is only
// meaningful for FinishPlaced and FinishClassifiedDNF.
type Finish struct {
	Kind     FinishKind
	Position int
}

func Finished(position int) Finish      { return Finish{Kind: FinishPlaced, Position: position} }
func ClassifiedDNF(position int) Finish { return Finish{Kind: FinishClassifiedDNF, Position: position} }
func NonClassifiedDNF() Finish          { return Finish{Kind: FinishNonClassifiedDNF} }
func DidNotStart() Finish               { return Finish{Kind: FinishDidNotStart} }
func Unknown() Finish                   { return Finish{} }

// HasPosition reports whether the finish carries a scoring position.
func (f Finish) HasPosition() bool {
	return f.Kind == FinishPlaced || f.Kind == FinishClassifiedDNF
}

// Classify finds driverID in positions 1..MaxPosition and applies its status.
// A driver with no position falls back to the status alone.
func Classify(result Result, driverID int) Finish {
	status := result.Statuses[driverID]

	for pos := 1; pos <= MaxPosition; pos++ {
		if id, ok := result.Results[pos]; !ok || id != driverID {
			continue
		}
		switch status {
		case StatusClassifiedDNF:
			return ClassifiedDNF(pos)
		case StatusNonClassifiedDNF:
			return NonClassifiedDNF()
		case StatusDidNotStart:
			return DidNotStart()
		default:
			return Finished(pos)
		}
	}

	switch status {
	case StatusNonClassifiedDNF, StatusDNF:
		return NonClassifiedDNF()
	case StatusDidNotStart:
		return DidNotStart()
	default:
		return Unknown()
	}
}
