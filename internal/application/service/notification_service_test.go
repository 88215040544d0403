package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/domain/entity"
	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/domain/event"
)

type mockNotificationRepo struct {
	createFunc           func(ctx context.Context, rec *entity.NotificationRecord) error
	getPendingFunc       func(ctx context.Context, now time.Time, limit int) ([]*entity.NotificationRecord, error)
	markSentFunc         func(ctx context.Context, id string, sentAt time.Time) error
	rescheduleFunc       func(ctx context.Context, id string, attempts int, nextRetryAt time.Time, lastError string) error
	markFailedFunc       func(ctx context.Context, id string, attempts int, lastError string) error
	deleteSentBeforeFunc func(ctx context.Context, cutoff time.Time) (int64, error)
}

func (m *mockNotificationRepo) Create(ctx context.Context, rec *entity.NotificationRecord) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, rec)
	}
	return nil
}

func (m *mockNotificationRepo) GetPending(ctx context.Context, now time.Time, limit int) ([]*entity.NotificationRecord, error) {
	if m.getPendingFunc != nil {
		return m.getPendingFunc(ctx, now, limit)
	}
	return []*entity.NotificationRecord{}, nil
}

func (m *mockNotificationRepo) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	if m.markSentFunc != nil {
		return m.markSentFunc(ctx, id, sentAt)
	}
	return nil
}

func (m *mockNotificationRepo) Reschedule(ctx context.Context, id string, attempts int, nextRetryAt time.Time, lastError string) error {
	if m.rescheduleFunc != nil {
		return m.rescheduleFunc(ctx, id, attempts, nextRetryAt, lastError)
	}
	return nil
}

func (m *mockNotificationRepo) MarkFailed(ctx context.Context, id string, attempts int, lastError string) error {
	if m.markFailedFunc != nil {
		return m.markFailedFunc(ctx, id, attempts, lastError)
	}
	return nil
}

func (m *mockNotificationRepo) DeleteSentBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if m.deleteSentBeforeFunc != nil {
		return m.deleteSentBeforeFunc(ctx, cutoff)
	}
	return 0, nil
}

func transitionEvent(fanout []map[string]interface{}) *event.Event {
	return event.NewEvent(event.TypeApplicationTransitioned, "app-1", map[string]interface{}{
		"action":      entity.LogActionSubmitted,
		"from_status": entity.StatusDraft,
		"to_status":   entity.StatusSubmitted,
		"event_title": "Regional statistics workshop",
		"actor_name":  testRequester.Name,
		"actor_email": testRequester.Email,
		"fanout":      fanout,
	})
}

func TestNotificationService_HandleTransitioned(t *testing.T) {
	var created []*entity.NotificationRecord
	repo := &mockNotificationRepo{
		createFunc: func(ctx context.Context, rec *entity.NotificationRecord) error {
			created = append(created, rec)
			return nil
		},
	}

	svc := NewNotificationService(repo, &mockLogger{})

	evt := transitionEvent([]map[string]interface{}{
		{"recipient": entity.RecipientRequester, "template_key": entity.TemplateApplicationSubmitted, "note": ""},
		{"recipient": entity.RecipientReviewers, "template_key": entity.TemplateApplicationSubmittedReviewer, "note": ""},
	})

	if err := svc.HandleTransitioned(context.Background(), evt); err != nil {
		t.Fatalf("HandleTransitioned() failed: %v", err)
	}

	if len(created) != 2 {
		t.Fatalf("outbox rows = %d, want 2", len(created))
	}

	first := created[0]
	if first.ID == "" {
		t.Error("outbox row id not assigned")
	}
	if first.ApplicationID != "app-1" {
		t.Errorf("ApplicationID = %v, want app-1", first.ApplicationID)
	}
	if first.Status != entity.NotificationStatusPending {
		t.Errorf("Status = %v, want PENDING", first.Status)
	}
	if first.RecipientKind != entity.RecipientRequester {
		t.Errorf("RecipientKind = %v, want REQUESTER", first.RecipientKind)
	}
	if first.EventTitle != "Regional statistics workshop" {
		t.Errorf("EventTitle = %v, not carried from the event", first.EventTitle)
	}
	if first.Attempts != 0 {
		t.Errorf("Attempts = %d, want 0", first.Attempts)
	}
	if first.NextRetryAt.IsZero() {
		t.Error("NextRetryAt not set, row would never become due")
	}

	if created[1].RecipientKind != entity.RecipientReviewers {
		t.Errorf("second row recipient = %v, want REVIEWERS", created[1].RecipientKind)
	}
}

func TestNotificationService_HandleTransitioned_EmptyFanout(t *testing.T) {
	repo := &mockNotificationRepo{
		createFunc: func(ctx context.Context, rec *entity.NotificationRecord) error {
			t.Error("Create called for an event without fan-out")
			return nil
		},
	}

	svc := NewNotificationService(repo, &mockLogger{})

	if err := svc.HandleTransitioned(context.Background(), transitionEvent(nil)); err != nil {
		t.Errorf("HandleTransitioned() failed: %v", err)
	}
}

func TestNotificationService_HandleTransitioned_RowFailureDoesNotBlockOthers(t *testing.T) {
	var created []*entity.NotificationRecord
	calls := 0
	repo := &mockNotificationRepo{
		createFunc: func(ctx context.Context, rec *entity.NotificationRecord) error {
			calls++
			if calls == 1 {
				return errors.New("disk full")
			}
			created = append(created, rec)
			return nil
		},
	}

	svc := NewNotificationService(repo, &mockLogger{})

	evt := transitionEvent([]map[string]interface{}{
		{"recipient": entity.RecipientRequester, "template_key": entity.TemplateApplicationSubmitted, "note": ""},
		{"recipient": entity.RecipientReviewers, "template_key": entity.TemplateApplicationSubmittedReviewer, "note": ""},
	})

	err := svc.HandleTransitioned(context.Background(), evt)
	if err == nil {
		t.Error("HandleTransitioned() should surface the row failure")
	}
	if len(created) != 1 {
		t.Errorf("surviving rows = %d, want 1", len(created))
	}
}

func TestNotificationService_HandleTransitioned_SkipsMalformedEntries(t *testing.T) {
	var created []*entity.NotificationRecord
	repo := &mockNotificationRepo{
		createFunc: func(ctx context.Context, rec *entity.NotificationRecord) error {
			created = append(created, rec)
			return nil
		},
	}

	svc := NewNotificationService(repo, &mockLogger{})

	evt := transitionEvent([]map[string]interface{}{
		{"recipient": "", "template_key": entity.TemplateApplicationSubmitted},
		{"recipient": entity.RecipientMinister, "template_key": entity.TemplateApplicationReferred, "note": "minister@example.gov"},
	})

	if err := svc.HandleTransitioned(context.Background(), evt); err != nil {
		t.Fatalf("HandleTransitioned() failed: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("outbox rows = %d, want 1", len(created))
	}
	if created[0].Note != "minister@example.gov" {
		t.Errorf("Note = %v, not carried from the fan-out", created[0].Note)
	}
}
