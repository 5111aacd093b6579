package moderation

// Outcome is the explicit result of applying an Action. Decisions on reviews
// that are already resolved are no-ops with their own outcome.
type Outcome int

const (
	OutcomeApproved Outcome = iota + 1
	OutcomeRejected
	OutcomeAlreadyApproved
	OutcomeNotFound
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApproved:
		return "approved"
	case OutcomeRejected:
		return "rejected"
	case OutcomeAlreadyApproved:
		return "already_approved"
	case OutcomeNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Changed reports whether the outcome mutated the store.
func (o Outcome) Changed() bool {
	return o == OutcomeApproved || o == OutcomeRejected
}
