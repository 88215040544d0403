package workflow

import (
	"fmt"
	"strings"

	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/domain/entity"
	domainwf "github.com/ProFiveCK/nr-travel-webapp-sub000/internal/domain/workflow"
)

// Action is a decision verb as it appears on the wire. Each action maps to
// exactly one state machine trigger.
type Action string

const (
	ActionSubmit          Action = "submit"
	ActionReject          Action = "reject"
	ActionRequestInfo     Action = "request_info"
	ActionRefer           Action = "refer"
	ActionApproveDirect   Action = "approve_direct"
	ActionMinisterApprove Action = "minister_approve"
	ActionMinisterReject  Action = "minister_reject"
	ActionResubmit        Action = "resubmit"
)

var actionTriggers = map[Action]domainwf.Trigger{
	ActionSubmit:          domainwf.TriggerSubmit,
	ActionReject:          domainwf.TriggerReject,
	ActionRequestInfo:     domainwf.TriggerRequestInfo,
	ActionRefer:           domainwf.TriggerRefer,
	ActionApproveDirect:   domainwf.TriggerApproveDirect,
	ActionMinisterApprove: domainwf.TriggerMinisterApprove,
	ActionMinisterReject:  domainwf.TriggerMinisterReject,
	ActionResubmit:        domainwf.TriggerResubmit,
}

var actionLogEntries = map[Action]string{
	ActionSubmit:          entity.LogActionSubmitted,
	ActionResubmit:        entity.LogActionSubmitted,
	ActionReject:          entity.LogActionRejected,
	ActionRequestInfo:     entity.LogActionRequestInfo,
	ActionRefer:           entity.LogActionReferred,
	ActionApproveDirect:   entity.LogActionApproved,
	ActionMinisterApprove: entity.LogActionMinisterApproved,
	ActionMinisterReject:  entity.LogActionMinisterRejected,
}

// ParseAction normalizes and validates a wire action string
func ParseAction(s string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := actionTriggers[a]; !ok {
		return "", fmt.Errorf("%w: unknown action %q", ErrValidationFailed, s)
	}
	return a, nil
}

// Trigger returns the state machine trigger for the action
func (a Action) Trigger() domainwf.Trigger {
	return actionTriggers[a]
}

// LogAction returns the approval log action recorded for the action
func (a Action) LogAction() string {
	return actionLogEntries[a]
}

// String returns the string representation of the action
func (a Action) String() string {
	return string(a)
}

// Payload carries the action-specific input of a decision. Actions that
// need no input accept a nil payload.
type Payload interface {
	isPayload()
}

// SubmitPayload accompanies submit and resubmit. Both actions validate the
// application content rather than the payload.
type SubmitPayload struct{}

// ReferPayload carries the minister address a referral is sent to. It
// overwrites the minister email stored on the application.
type ReferPayload struct {
	MinisterEmail string
}

// ApprovePayload carries the approval justification. Required and non-empty
// for approve_direct, optional for minister_approve.
type ApprovePayload struct {
	Justification string
}

// RejectPayload carries the optional rejection reason.
type RejectPayload struct {
	Reason string
}

// RequestInfoPayload carries the question sent back to the requester.
type RequestInfoPayload struct {
	Question string
}

func (SubmitPayload) isPayload()      {}
func (ReferPayload) isPayload()       {}
func (ApprovePayload) isPayload()     {}
func (RejectPayload) isPayload()      {}
func (RequestInfoPayload) isPayload() {}
