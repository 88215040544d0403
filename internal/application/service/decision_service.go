package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/application/dispatcher"
	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/application/port"
	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/application/workflow"
	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/domain/entity"
	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/domain/event"
)

// DecideInput is the raw decision request as it arrives from the transport
// layer. The service parses it into a typed engine command.
type DecideInput struct {
	Action        string `json:"action"`
	Note          string `json:"note"`
	MinisterEmail string `json:"minister_email"`
}

// DecisionService runs workflow decisions against applications. It owns the
// load, permission gate, transition and persist sequence; the transition
// rules themselves live in the engine.
type DecisionService interface {
	Decide(ctx context.Context, actor entity.Actor, applicationID string, input DecideInput) (*entity.Application, error)
	ReviewerQueue(ctx context.Context, actor entity.Actor) ([]*entity.Application, error)
	MinisterQueue(ctx context.Context, actor entity.Actor) ([]*entity.Application, error)
}

type decisionServiceImpl struct {
	appRepo    port.ApplicationRepository
	engine     *workflow.Engine
	txManager  port.TransactionManager
	dispatcher dispatcher.Dispatcher
	logger     Logger
}

// NewDecisionService creates a new DecisionService
func NewDecisionService(
	appRepo port.ApplicationRepository,
	engine *workflow.Engine,
	txManager port.TransactionManager,
	disp dispatcher.Dispatcher,
	logger Logger,
) DecisionService {
	return &decisionServiceImpl{
		appRepo:    appRepo,
		engine:     engine,
		txManager:  txManager,
		dispatcher: disp,
		logger:     logger,
	}
}

// Decide applies one workflow action to an application. The write is guarded
// by the application version; when a concurrent decision wins the race the
// attempt is retried once against the fresh state, so an action that is
// still valid (for example a second request_info) succeeds while a stale one
// surfaces ErrInvalidTransition.
func (s *decisionServiceImpl) Decide(ctx context.Context, actor entity.Actor, applicationID string, input DecideInput) (*entity.Application, error) {
	action, err := workflow.ParseAction(input.Action)
	if err != nil {
		return nil, err
	}

	app, err := s.loadVisible(ctx, actor, applicationID)
	if err != nil {
		return nil, err
	}

	if err := roleGate(actor, action, app); err != nil {
		return nil, err
	}

	cmd := workflow.Command{
		Actor:   actor,
		Action:  action,
		Payload: buildPayload(action, input),
	}

	result, err := s.transitionAndPersist(ctx, app, cmd)
	if errors.Is(err, port.ErrVersionConflict) {
		s.logger.Info("Concurrent decision detected, retrying against fresh state",
			"application_id", applicationID, "action", action)

		app, err = s.loadVisible(ctx, actor, applicationID)
		if err != nil {
			return nil, err
		}
		result, err = s.transitionAndPersist(ctx, app, cmd)
		if errors.Is(err, port.ErrVersionConflict) {
			return nil, fmt.Errorf("%w: application was decided concurrently", ErrConflict)
		}
	}
	if err != nil {
		return nil, err
	}

	s.dispatcher.DispatchAsync(ctx, event.NewEvent(event.TypeApplicationTransitioned, result.Application.ID, transitionPayload(actor, result)))
	if result.ToStatus == entity.StatusArchived {
		s.dispatcher.DispatchAsync(ctx, event.NewEvent(event.TypeApplicationArchived, result.Application.ID, map[string]interface{}{
			"action":      result.Entry.Action,
			"actor_id":    actor.ID,
			"total_cost":  result.Application.TotalCost,
			"event_title": result.Application.EventTitle,
		}))
	}

	s.logger.Info("Decision applied",
		"application_id", result.Application.ID,
		"action", action,
		"from_status", result.FromStatus,
		"to_status", result.ToStatus,
		"actor_id", actor.ID,
	)
	return result.Application, nil
}

// ReviewerQueue lists applications awaiting reviewer action
func (s *decisionServiceImpl) ReviewerQueue(ctx context.Context, actor entity.Actor) ([]*entity.Application, error) {
	if !actor.CanReview() {
		return nil, ErrForbidden
	}

	apps, err := s.appRepo.ListByStatuses(ctx, entity.ReviewQueueStatuses)
	if err != nil {
		s.logger.Error("Failed to list reviewer queue", "error", err)
		return nil, fmt.Errorf("list reviewer queue: %w", err)
	}
	return apps, nil
}

// MinisterQueue lists applications awaiting ministerial decision. Both
// spellings of the referred status are included.
func (s *decisionServiceImpl) MinisterQueue(ctx context.Context, actor entity.Actor) ([]*entity.Application, error) {
	if !actor.HasAnyRole(entity.RoleMinister, entity.RoleAdmin) {
		return nil, ErrForbidden
	}

	apps, err := s.appRepo.ListByStatuses(ctx, entity.MinisterQueueStatuses)
	if err != nil {
		s.logger.Error("Failed to list minister queue", "error", err)
		return nil, fmt.Errorf("list minister queue: %w", err)
	}
	return apps, nil
}

// transitionAndPersist runs the engine against the loaded application and
// persists the outcome with a compare-and-swap on the loaded version.
func (s *decisionServiceImpl) transitionAndPersist(ctx context.Context, app *entity.Application, cmd workflow.Command) (*workflow.Result, error) {
	result, err := s.engine.Transition(ctx, app, cmd)
	if err != nil {
		return nil, err
	}

	result.Application.Version = app.Version + 1
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.appRepo.CompareAndSwap(txCtx, app.ID, app.Version, result.Application, &result.Entry)
	})
	if err != nil {
		if errors.Is(err, port.ErrVersionConflict) {
			return nil, err
		}
		s.logger.Error("Failed to persist decision", "error", err, "application_id", app.ID)
		return nil, fmt.Errorf("persist decision: %w", err)
	}
	return result, nil
}

func (s *decisionServiceImpl) loadVisible(ctx context.Context, actor entity.Actor, id string) (*entity.Application, error) {
	app, err := s.appRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get application", "error", err, "application_id", id)
		return nil, fmt.Errorf("get application: %w", err)
	}
	if app == nil || !canRead(actor, app) {
		return nil, ErrNotFound
	}
	return app, nil
}

// roleGate checks that the actor may attempt the action at all. Whether the
// action fits the current status is the engine's call, not ours.
func roleGate(actor entity.Actor, action workflow.Action, app *entity.Application) error {
	switch action {
	case workflow.ActionSubmit, workflow.ActionResubmit:
		if app.RequesterID != actor.ID || !actor.HasRole(entity.RoleUser) {
			return ErrForbidden
		}
	case workflow.ActionReject, workflow.ActionRequestInfo, workflow.ActionRefer, workflow.ActionApproveDirect:
		if !actor.CanReview() {
			return ErrForbidden
		}
	case workflow.ActionMinisterApprove, workflow.ActionMinisterReject:
		if !actor.HasRole(entity.RoleMinister) {
			return ErrForbidden
		}
	default:
		return ErrForbidden
	}
	return nil
}

// buildPayload maps the flat request fields onto the typed payload for the
// parsed action
func buildPayload(action workflow.Action, input DecideInput) workflow.Payload {
	switch action {
	case workflow.ActionSubmit, workflow.ActionResubmit:
		return workflow.SubmitPayload{}
	case workflow.ActionRefer:
		email := input.MinisterEmail
		if email == "" {
			email = input.Note
		}
		return workflow.ReferPayload{MinisterEmail: email}
	case workflow.ActionApproveDirect, workflow.ActionMinisterApprove:
		return workflow.ApprovePayload{Justification: input.Note}
	case workflow.ActionReject, workflow.ActionMinisterReject:
		return workflow.RejectPayload{Reason: input.Note}
	case workflow.ActionRequestInfo:
		return workflow.RequestInfoPayload{Question: input.Note}
	}
	return nil
}

// transitionPayload flattens a transition result for the event bus
func transitionPayload(actor entity.Actor, result *workflow.Result) map[string]interface{} {
	fanout := make([]map[string]interface{}, 0, len(result.Fanout))
	for _, f := range result.Fanout {
		fanout = append(fanout, map[string]interface{}{
			"recipient":    f.Recipient,
			"template_key": f.TemplateKey,
			"note":         f.Note,
		})
	}

	return map[string]interface{}{
		"action":      result.Entry.Action,
		"from_status": result.FromStatus,
		"to_status":   result.ToStatus,
		"event_title": result.Application.EventTitle,
		"actor_name":  actor.Name,
		"actor_email": actor.Email,
		"fanout":      fanout,
	}
}
