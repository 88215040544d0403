package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/application/port"
	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/domain/entity"
)

const (
	baseRetryDelay = 30 * time.Second
	maxRetryDelay  = 10 * time.Minute
)

// OutboxWorkerConfig holds configuration for the delivery worker
type OutboxWorkerConfig struct {
	PollInterval time.Duration
	BatchSize    int
	SendTimeout  time.Duration
	MaxAttempts  int
}

// DefaultOutboxWorkerConfig returns default configuration
func DefaultOutboxWorkerConfig() OutboxWorkerConfig {
	return OutboxWorkerConfig{
		PollInterval: 10 * time.Second,
		BatchSize:    20,
		SendTimeout:  15 * time.Second,
		MaxAttempts:  3,
	}
}

// OutboxWorker polls the notification outbox and delivers due rows by
// email. Recipient kinds are resolved to concrete addresses at send time so
// reviewer membership and minister addresses are always current. A row that
// keeps failing is retried with exponential backoff until the attempt
// budget is spent, then dead-lettered.
type OutboxWorker struct {
	config OutboxWorkerConfig

	notificationRepo port.NotificationRepository
	applicationRepo  port.ApplicationRepository
	userRepo         port.UserRepository
	mailer           port.Mailer
	renderer         *Renderer
	logger           *zap.Logger

	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
	isRunning   bool
	sentCount   int
	failedCount int
}

// NewOutboxWorker creates a new delivery worker
func NewOutboxWorker(
	config OutboxWorkerConfig,
	notificationRepo port.NotificationRepository,
	applicationRepo port.ApplicationRepository,
	userRepo port.UserRepository,
	mailer port.Mailer,
	renderer *Renderer,
	logger *zap.Logger,
) *OutboxWorker {
	return &OutboxWorker{
		config:           config,
		notificationRepo: notificationRepo,
		applicationRepo:  applicationRepo,
		userRepo:         userRepo,
		mailer:           mailer,
		renderer:         renderer,
		logger:           logger,
	}
}

// Start begins the worker polling loop
func (w *OutboxWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.isRunning {
		w.mu.Unlock()
		return fmt.Errorf("outbox worker already running")
	}

	w.ctx, w.cancel = context.WithCancel(ctx)
	w.isRunning = true
	w.mu.Unlock()

	w.logger.Info("OutboxWorker started",
		zap.Duration("poll_interval", w.config.PollInterval),
		zap.Int("batch_size", w.config.BatchSize),
		zap.Int("max_attempts", w.config.MaxAttempts))

	go w.pollLoop()

	return nil
}

// Stop gracefully terminates the worker
func (w *OutboxWorker) Stop() error {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return nil
	}

	w.isRunning = false
	sent, failed := w.sentCount, w.failedCount
	w.mu.Unlock()

	if w.cancel != nil {
		w.cancel()
	}

	w.logger.Info("OutboxWorker stopped",
		zap.Int("sent_count", sent),
		zap.Int("failed_count", failed))

	return nil
}

// Name returns the worker name for identification
func (w *OutboxWorker) Name() string {
	return "OutboxWorker"
}

func (w *OutboxWorker) pollLoop() {
	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			w.logger.Debug("Poll loop context cancelled")
			return

		case <-ticker.C:
			if err := w.ProcessDue(w.ctx); err != nil {
				w.logger.Error("Failed to process due notifications", zap.Error(err))
			}
		}
	}
}

// ProcessDue delivers one batch of due outbox rows. A failure on one row
// never blocks the rest of the batch.
func (w *OutboxWorker) ProcessDue(ctx context.Context) error {
	now := time.Now()
	records, err := w.notificationRepo.GetPending(ctx, now, w.config.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to get pending notifications: %w", err)
	}

	if len(records) == 0 {
		return nil
	}

	w.logger.Debug("Processing due notifications", zap.Int("count", len(records)))

	for _, rec := range records {
		if err := w.deliver(ctx, rec); err != nil {
			w.logger.Warn("Failed to deliver notification",
				zap.String("notification_id", rec.ID),
				zap.String("recipient_kind", rec.RecipientKind),
				zap.Error(err))

			w.mu.Lock()
			w.failedCount++
			w.mu.Unlock()
		} else {
			w.mu.Lock()
			w.sentCount++
			w.mu.Unlock()
		}
	}

	return nil
}

func (w *OutboxWorker) deliver(ctx context.Context, rec *entity.NotificationRecord) error {
	recipients, err := w.resolveRecipients(ctx, rec)
	if err != nil {
		return w.recordFailure(ctx, rec, err)
	}
	if len(recipients) == 0 {
		// Nobody to send to and nobody will appear on retry
		err := fmt.Errorf("no recipients resolved for kind %s", rec.RecipientKind)
		if markErr := w.notificationRepo.MarkFailed(ctx, rec.ID, rec.Attempts+1, err.Error()); markErr != nil {
			w.logger.Error("Failed to dead-letter notification",
				zap.String("notification_id", rec.ID), zap.Error(markErr))
		}
		return err
	}

	subject, body, err := w.renderer.Render(rec)
	if err != nil {
		// Template problems are permanent, retrying cannot fix them
		if markErr := w.notificationRepo.MarkFailed(ctx, rec.ID, rec.Attempts+1, err.Error()); markErr != nil {
			w.logger.Error("Failed to dead-letter notification",
				zap.String("notification_id", rec.ID), zap.Error(markErr))
		}
		return err
	}

	sendCtx, cancel := context.WithTimeout(ctx, w.config.SendTimeout)
	defer cancel()

	if err := w.mailer.Send(sendCtx, port.MailMessage{
		To:      recipients,
		Subject: subject,
		Body:    body,
	}); err != nil {
		return w.recordFailure(ctx, rec, err)
	}

	if err := w.notificationRepo.MarkSent(ctx, rec.ID, time.Now()); err != nil {
		return fmt.Errorf("failed to mark notification sent: %w", err)
	}

	w.logger.Info("Notification delivered",
		zap.String("notification_id", rec.ID),
		zap.String("application_id", rec.ApplicationID),
		zap.String("template_key", rec.TemplateKey),
		zap.Int("recipients", len(recipients)))

	return nil
}

// resolveRecipients maps the stored recipient kind to concrete addresses
func (w *OutboxWorker) resolveRecipients(ctx context.Context, rec *entity.NotificationRecord) ([]string, error) {
	switch rec.RecipientKind {
	case entity.RecipientRequester:
		app, err := w.applicationRepo.GetByID(ctx, rec.ApplicationID)
		if err != nil {
			return nil, fmt.Errorf("failed to load application: %w", err)
		}
		if app == nil || app.RequesterEmail == "" {
			return nil, nil
		}
		return []string{app.RequesterEmail}, nil

	case entity.RecipientMinister:
		app, err := w.applicationRepo.GetByID(ctx, rec.ApplicationID)
		if err != nil {
			return nil, fmt.Errorf("failed to load application: %w", err)
		}
		if app == nil || app.MinisterEmail == "" {
			return nil, nil
		}
		return []string{app.MinisterEmail}, nil

	case entity.RecipientReviewers:
		var addresses []string
		seen := make(map[string]bool)
		for _, role := range []string{entity.RoleReviewer, entity.RoleAdmin} {
			users, err := w.userRepo.ListByRole(ctx, role)
			if err != nil {
				return nil, fmt.Errorf("failed to list %s users: %w", role, err)
			}
			for _, u := range users {
				if u.Email == "" || seen[u.Email] {
					continue
				}
				seen[u.Email] = true
				addresses = append(addresses, u.Email)
			}
		}
		return addresses, nil
	}

	return nil, fmt.Errorf("unknown recipient kind %q", rec.RecipientKind)
}

// recordFailure reschedules the row with backoff or dead-letters it once
// the attempt budget is spent
func (w *OutboxWorker) recordFailure(ctx context.Context, rec *entity.NotificationRecord, cause error) error {
	attempts := rec.Attempts + 1

	if attempts >= w.config.MaxAttempts {
		if err := w.notificationRepo.MarkFailed(ctx, rec.ID, attempts, cause.Error()); err != nil {
			w.logger.Error("Failed to dead-letter notification",
				zap.String("notification_id", rec.ID), zap.Error(err))
		}
		w.logger.Warn("Notification dead-lettered",
			zap.String("notification_id", rec.ID),
			zap.Int("attempts", attempts),
			zap.Error(cause))
		return cause
	}

	nextRetryAt := time.Now().Add(retryDelay(attempts))
	if err := w.notificationRepo.Reschedule(ctx, rec.ID, attempts, nextRetryAt, cause.Error()); err != nil {
		w.logger.Error("Failed to reschedule notification",
			zap.String("notification_id", rec.ID), zap.Error(err))
	}

	w.logger.Info("Notification rescheduled",
		zap.String("notification_id", rec.ID),
		zap.Int("attempts", attempts),
		zap.Time("next_retry_at", nextRetryAt),
		zap.Error(cause))

	return cause
}

// retryDelay returns the exponential backoff delay for the given attempt
// count, capped at maxRetryDelay
func retryDelay(attempts int) time.Duration {
	delay := time.Duration(1<<uint(attempts-1)) * baseRetryDelay
	if delay > maxRetryDelay {
		return maxRetryDelay
	}
	return delay
}
