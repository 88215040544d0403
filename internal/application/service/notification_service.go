package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/application/port"
	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/domain/entity"
	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/domain/event"
)

// NotificationService turns transition events into pending outbox rows. The
// rows name recipient kinds, not addresses; the outbox worker resolves the
// actual addresses at send time.
type NotificationService interface {
	// HandleTransitioned is the dispatcher handler for transition events
	HandleTransitioned(ctx context.Context, evt *event.Event) error
}

type notificationServiceImpl struct {
	notificationRepo port.NotificationRepository
	logger           Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(notificationRepo port.NotificationRepository, logger Logger) NotificationService {
	return &notificationServiceImpl{
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// HandleTransitioned expands the fan-out carried by a transition event into
// one PENDING outbox row per recipient. A row that cannot be written does
// not block the remaining rows.
func (s *notificationServiceImpl) HandleTransitioned(ctx context.Context, evt *event.Event) error {
	fanout, ok := evt.Payload["fanout"].([]map[string]interface{})
	if !ok || len(fanout) == 0 {
		return nil
	}

	now := time.Now()
	eventTitle := evt.GetPayloadString("event_title")
	actorName := evt.GetPayloadString("actor_name")
	actorEmail := evt.GetPayloadString("actor_email")

	var firstErr error
	created := 0

	for _, f := range fanout {
		rec := &entity.NotificationRecord{
			ID:            uuid.NewString(),
			ApplicationID: evt.ApplicationID,
			RecipientKind: stringValue(f, "recipient"),
			TemplateKey:   stringValue(f, "template_key"),
			EventTitle:    eventTitle,
			ActorName:     actorName,
			ActorEmail:    actorEmail,
			Note:          stringValue(f, "note"),
			Status:        entity.NotificationStatusPending,
			NextRetryAt:   now,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		if rec.RecipientKind == "" || rec.TemplateKey == "" {
			s.logger.Error("Skipping malformed fan-out entry",
				"application_id", evt.ApplicationID, "entry", f)
			continue
		}

		if err := s.notificationRepo.Create(ctx, rec); err != nil {
			s.logger.Error("Failed to enqueue notification",
				"error", err,
				"application_id", evt.ApplicationID,
				"recipient", rec.RecipientKind,
				"template_key", rec.TemplateKey,
			)
			if firstErr == nil {
				firstErr = fmt.Errorf("enqueue notification: %w", err)
			}
			continue
		}
		created++
	}

	if created > 0 {
		s.logger.Info("Notifications enqueued",
			"application_id", evt.ApplicationID,
			"count", created,
		)
	}
	return firstErr
}

func stringValue(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
