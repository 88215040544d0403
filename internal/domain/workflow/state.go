package workflow

// State represents a workflow state in the application lifecycle
type State string

const (
	StateDraft                   State = "DRAFT"
	StateSubmitted               State = "SUBMITTED"
	StateInReview                State = "IN_REVIEW"
	StateRejected                State = "REJECTED"
	StateReferredToMinister      State = "REFERRED_TO_MINISTER"
	StatePendingMinisterApproval State = "PENDING_MINISTER_APPROVAL"
	StateApproved                State = "APPROVED"
	StateArchived                State = "ARCHIVED"
)

var validStates = map[State]bool{
	StateDraft:                   true,
	StateSubmitted:               true,
	StateInReview:                true,
	StateRejected:                true,
	StateReferredToMinister:      true,
	StatePendingMinisterApproval: true,
	StateApproved:                true,
	StateArchived:                true,
}

// Rejected is not terminal, the requester can still resubmit. Approved is a
// legacy parking state, rows only leave it through the archival sweep.
var terminalStates = map[State]bool{
	StateArchived: true,
}

// IsTerminal returns true if the state is a terminal state (no further transitions allowed)
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a valid workflow state
func (s State) IsValid() bool {
	return validStates[s]
}
