package workflow

import (
	domainwf "github.com/ProFiveCK/nr-travel-webapp-sub000/internal/domain/workflow"
)

// BuildApprovalStateMachine creates a state machine configured for the
// travel approval workflow
func BuildApprovalStateMachine(initialState domainwf.State) domainwf.StateMachine {
	builder := domainwf.NewBuilder()

	// DRAFT state transitions
	builder.Configure(domainwf.StateDraft).
		Permit(domainwf.TriggerSubmit, domainwf.StateSubmitted)

	// SUBMITTED state transitions
	builder.Configure(domainwf.StateSubmitted).
		Permit(domainwf.TriggerReject, domainwf.StateRejected).
		Permit(domainwf.TriggerRequestInfo, domainwf.StateInReview).
		Permit(domainwf.TriggerRefer, domainwf.StateReferredToMinister).
		Permit(domainwf.TriggerApproveDirect, domainwf.StateArchived)

	// IN_REVIEW state transitions, request_info may repeat
	builder.Configure(domainwf.StateInReview).
		Permit(domainwf.TriggerReject, domainwf.StateRejected).
		Permit(domainwf.TriggerRequestInfo, domainwf.StateInReview).
		Permit(domainwf.TriggerRefer, domainwf.StateReferredToMinister).
		Permit(domainwf.TriggerApproveDirect, domainwf.StateArchived)

	// REFERRED_TO_MINISTER state transitions
	builder.Configure(domainwf.StateReferredToMinister).
		Permit(domainwf.TriggerMinisterApprove, domainwf.StateArchived).
		Permit(domainwf.TriggerMinisterReject, domainwf.StateRejected)

	// PENDING_MINISTER_APPROVAL is an older spelling of the referred status
	// still present in stored rows, it accepts the same ministerial triggers
	builder.Configure(domainwf.StatePendingMinisterApproval).
		Permit(domainwf.TriggerMinisterApprove, domainwf.StateArchived).
		Permit(domainwf.TriggerMinisterReject, domainwf.StateRejected)

	// REJECTED state transitions, the original requester may try again
	builder.Configure(domainwf.StateRejected).
		Permit(domainwf.TriggerResubmit, domainwf.StateSubmitted)

	// APPROVED is a legacy parking status, rows leave it only through the
	// archival sweep. ARCHIVED is terminal. Neither has outgoing transitions.

	return builder.Build(initialState)
}
