package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/domain/entity"
	domainwf "github.com/ProFiveCK/nr-travel-webapp-sub000/internal/domain/workflow"
	"github.com/ProFiveCK/nr-travel-webapp-sub000/pkg/utils"
)

// Engine computes approval transitions. It is free of I/O: the caller loads
// the application, hands it in, and persists the returned copy. Exactly one
// log entry is produced per successful transition.
type Engine struct {
	now                   func() time.Time
	applicantSubmitNotice bool
}

// EngineOption configures the engine
type EngineOption func(*Engine)

// WithClock overrides the engine clock, used in tests
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// WithApplicantSubmissionNotice controls whether submissions notify the
// requester in addition to the reviewer group
func WithApplicantSubmissionNotice(enabled bool) EngineOption {
	return func(e *Engine) {
		e.applicantSubmitNotice = enabled
	}
}

// NewEngine creates a new transition engine
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		now:                   time.Now,
		applicantSubmitNotice: true,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Command is one decision to apply to an application
type Command struct {
	Actor   entity.Actor
	Action  Action
	Payload Payload
}

// Result is the outcome of a successful transition: a mutated copy of the
// application, the log entry appended to it, and the notification fan-out.
// The input application is never modified.
type Result struct {
	Application *entity.Application
	Entry       entity.ApprovalLogEntry
	FromStatus  string
	ToStatus    string
	Fanout      []Fanout
}

// Transition applies a command to an application. Status and action are
// checked against the transition table first, then the command is validated,
// and only then is the copy mutated. All timestamps written by a single
// transition come from one clock reading.
func (e *Engine) Transition(ctx context.Context, app *entity.Application, cmd Command) (*Result, error) {
	if app == nil {
		return nil, fmt.Errorf("application cannot be nil")
	}

	from := domainwf.State(app.Status)
	if !from.IsValid() {
		return nil, fmt.Errorf("%w: %s", domainwf.ErrInvalidState, app.Status)
	}

	machine := BuildApprovalStateMachine(from)
	trigger := cmd.Action.Trigger()
	if trigger == "" || !machine.CanFire(trigger) {
		return nil, fmt.Errorf("%w: action %s in status %s", domainwf.ErrInvalidTransition, cmd.Action, app.Status)
	}

	if err := validateCommand(app, cmd); err != nil {
		return nil, err
	}

	if err := machine.Fire(ctx, trigger); err != nil {
		return nil, err
	}
	to := machine.State()

	now := e.now()
	next := app.Clone()
	next.Status = to.String()
	next.UpdatedAt = now
	applyActionEffects(next, cmd, now)
	next.RecomputeTotals()

	entry := entity.ApprovalLogEntry{
		ApplicationID: app.ID,
		Action:        cmd.Action.LogAction(),
		ActorID:       cmd.Actor.ID,
		ActorName:     cmd.Actor.Name,
		ActorEmail:    cmd.Actor.Email,
		Note:          payloadNote(cmd),
		CreatedAt:     now,
	}
	next.AppendLog(entry)

	return &Result{
		Application: next,
		Entry:       entry,
		FromStatus:  from.String(),
		ToStatus:    to.String(),
		Fanout:      e.computeFanout(cmd),
	}, nil
}

// validateCommand checks the payload and, for submissions, the application
// content. Failures abort the transition before any mutation.
func validateCommand(app *entity.Application, cmd Command) error {
	switch cmd.Action {
	case ActionSubmit, ActionResubmit:
		switch cmd.Payload.(type) {
		case nil, SubmitPayload:
		default:
			return payloadMismatch(cmd)
		}
		if cmd.Action == ActionSubmit {
			return validateSubmission(app)
		}
		return nil

	case ActionRefer:
		p, ok := cmd.Payload.(ReferPayload)
		if !ok {
			return payloadMismatch(cmd)
		}
		if !utils.ValidateEmail(p.MinisterEmail) {
			return fmt.Errorf("%w: referral requires a valid minister email address", ErrValidationFailed)
		}
		return nil

	case ActionApproveDirect:
		p, ok := cmd.Payload.(ApprovePayload)
		if !ok {
			return payloadMismatch(cmd)
		}
		if isBlank(p.Justification) {
			return fmt.Errorf("%w: direct approval requires a justification note", ErrValidationFailed)
		}
		return nil

	case ActionMinisterApprove:
		switch cmd.Payload.(type) {
		case nil, ApprovePayload:
			return nil
		}
		return payloadMismatch(cmd)

	case ActionReject, ActionMinisterReject:
		switch cmd.Payload.(type) {
		case nil, RejectPayload:
			return nil
		}
		return payloadMismatch(cmd)

	case ActionRequestInfo:
		switch cmd.Payload.(type) {
		case nil, RequestInfoPayload:
			return nil
		}
		return payloadMismatch(cmd)
	}

	return fmt.Errorf("%w: unknown action %q", ErrValidationFailed, cmd.Action)
}

// validateSubmission checks the application fields a submission depends on
func validateSubmission(app *entity.Application) error {
	if app.StartDate.IsZero() || app.EndDate.IsZero() {
		return fmt.Errorf("%w: travel start and end dates are required", ErrValidationFailed)
	}
	if app.EndDate.Before(app.StartDate) {
		return fmt.Errorf("%w: travel end date is before the start date", ErrValidationFailed)
	}
	if !utils.ValidateEmail(app.MinisterEmail) {
		return fmt.Errorf("%w: minister email is missing or not a valid address", ErrValidationFailed)
	}
	if !utils.ValidateEmail(app.HODEmail) {
		return fmt.Errorf("%w: head of department email is missing or not a valid address", ErrValidationFailed)
	}
	return nil
}

// applyActionEffects mutates the cloned application with the per-action
// side effects beyond the status change itself
func applyActionEffects(app *entity.Application, cmd Command, now time.Time) {
	switch cmd.Action {
	case ActionSubmit, ActionResubmit:
		t := now
		app.SubmittedAt = &t
		app.DecidedAt = nil
		app.CurrentReviewerID = nil

	case ActionRequestInfo:
		id := cmd.Actor.ID
		app.CurrentReviewerID = &id

	case ActionRefer:
		p := cmd.Payload.(ReferPayload)
		app.MinisterEmail = p.MinisterEmail
		id := cmd.Actor.ID
		app.CurrentReviewerID = &id

	case ActionReject, ActionMinisterReject:
		t := now
		app.DecidedAt = &t
		id := cmd.Actor.ID
		app.CurrentReviewerID = &id

	case ActionApproveDirect, ActionMinisterApprove:
		t := now
		app.DecidedAt = &t
		app.ArchivedAt = &t
		id := cmd.Actor.ID
		app.CurrentReviewerID = &id
	}
}

// payloadNote extracts the note recorded in the approval log
func payloadNote(cmd Command) string {
	switch p := cmd.Payload.(type) {
	case ReferPayload:
		return p.MinisterEmail
	case ApprovePayload:
		return p.Justification
	case RejectPayload:
		return p.Reason
	case RequestInfoPayload:
		return p.Question
	}
	if cmd.Action == ActionResubmit {
		return "resubmitted by user"
	}
	return ""
}

func payloadMismatch(cmd Command) error {
	return fmt.Errorf("%w: payload does not match action %s", ErrValidationFailed, cmd.Action)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
