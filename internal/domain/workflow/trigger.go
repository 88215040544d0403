package workflow

// Trigger represents an event that can cause a state transition
type Trigger string

const (
	TriggerSubmit          Trigger = "SUBMIT"
	TriggerReject          Trigger = "REJECT"
	TriggerRequestInfo     Trigger = "REQUEST_INFO"
	TriggerRefer           Trigger = "REFER"
	TriggerApproveDirect   Trigger = "APPROVE_DIRECT"
	TriggerMinisterApprove Trigger = "MINISTER_APPROVE"
	TriggerMinisterReject  Trigger = "MINISTER_REJECT"
	TriggerResubmit        Trigger = "RESUBMIT"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
