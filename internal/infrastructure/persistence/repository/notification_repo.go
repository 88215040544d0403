package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/application/port"
	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/domain/entity"
	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// NotificationRepository implements port.NotificationRepository against the
// notification_outbox table.
type NotificationRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *sqlite.DB, logger *zap.Logger) port.NotificationRepository {
	return &NotificationRepository{
		db:     db,
		logger: logger,
	}
}

// Create persists a new PENDING outbox row
func (r *NotificationRepository) Create(ctx context.Context, rec *entity.NotificationRecord) error {
	now := time.Now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	query := `
		INSERT INTO notification_outbox (
			id, application_id, recipient_kind, template_key, event_title,
			actor_name, actor_email, note, status, attempts, next_retry_at,
			last_error, sent_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Executor(ctx).ExecContext(ctx, query,
		rec.ID,
		rec.ApplicationID,
		rec.RecipientKind,
		rec.TemplateKey,
		rec.EventTitle,
		rec.ActorName,
		rec.ActorEmail,
		rec.Note,
		rec.Status,
		rec.Attempts,
		rec.NextRetryAt,
		rec.LastError,
		nullTime(rec.SentAt),
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create notification record",
			zap.String("application_id", rec.ApplicationID), zap.Error(err))
		return fmt.Errorf("failed to create notification record: %w", err)
	}

	return nil
}

// GetPending retrieves PENDING rows due at the given time, oldest first
func (r *NotificationRepository) GetPending(ctx context.Context, now time.Time, limit int) ([]*entity.NotificationRecord, error) {
	query := `
		SELECT id, application_id, recipient_kind, template_key, event_title,
			actor_name, actor_email, note, status, attempts, next_retry_at,
			last_error, sent_at, created_at, updated_at
		FROM notification_outbox
		WHERE status = ? AND next_retry_at <= ?
		ORDER BY next_retry_at ASC
		LIMIT ?
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, entity.NotificationStatusPending, now, limit)
	if err != nil {
		r.logger.Error("Failed to get pending notifications", zap.Error(err))
		return nil, fmt.Errorf("failed to get pending notifications: %w", err)
	}
	defer rows.Close()

	var records []*entity.NotificationRecord
	for rows.Next() {
		var rec entity.NotificationRecord
		var sentAt sql.NullTime
		if err := rows.Scan(
			&rec.ID,
			&rec.ApplicationID,
			&rec.RecipientKind,
			&rec.TemplateKey,
			&rec.EventTitle,
			&rec.ActorName,
			&rec.ActorEmail,
			&rec.Note,
			&rec.Status,
			&rec.Attempts,
			&rec.NextRetryAt,
			&rec.LastError,
			&sentAt,
			&rec.CreatedAt,
			&rec.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan notification record: %w", err)
		}
		if sentAt.Valid {
			rec.SentAt = &sentAt.Time
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notification records: %w", err)
	}

	return records, nil
}

// MarkSent marks a row SENT
func (r *NotificationRepository) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	query := `
		UPDATE notification_outbox
		SET status = ?, sent_at = ?, last_error = '', updated_at = ?
		WHERE id = ?
	`

	_, err := r.db.Executor(ctx).ExecContext(ctx, query,
		entity.NotificationStatusSent, sentAt, time.Now(), id)
	if err != nil {
		r.logger.Error("Failed to mark notification sent", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to mark notification sent: %w", err)
	}

	return nil
}

// Reschedule records a failed attempt and keeps the row PENDING until
// nextRetryAt
func (r *NotificationRepository) Reschedule(ctx context.Context, id string, attempts int, nextRetryAt time.Time, lastError string) error {
	query := `
		UPDATE notification_outbox
		SET attempts = ?, next_retry_at = ?, last_error = ?, updated_at = ?
		WHERE id = ?
	`

	_, err := r.db.Executor(ctx).ExecContext(ctx, query,
		attempts, nextRetryAt, lastError, time.Now(), id)
	if err != nil {
		r.logger.Error("Failed to reschedule notification", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to reschedule notification: %w", err)
	}

	return nil
}

// MarkFailed dead-letters a row after the retry budget is spent
func (r *NotificationRepository) MarkFailed(ctx context.Context, id string, attempts int, lastError string) error {
	query := `
		UPDATE notification_outbox
		SET status = ?, attempts = ?, last_error = ?, updated_at = ?
		WHERE id = ?
	`

	_, err := r.db.Executor(ctx).ExecContext(ctx, query,
		entity.NotificationStatusFailed, attempts, lastError, time.Now(), id)
	if err != nil {
		r.logger.Error("Failed to mark notification failed", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to mark notification failed: %w", err)
	}

	return nil
}

// DeleteSentBefore removes SENT rows older than the cutoff and returns the
// number of rows removed
func (r *NotificationRepository) DeleteSentBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		DELETE FROM notification_outbox
		WHERE status = ? AND sent_at IS NOT NULL AND sent_at < ?
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		entity.NotificationStatusSent, cutoff)
	if err != nil {
		r.logger.Error("Failed to delete sent notifications", zap.Error(err))
		return 0, fmt.Errorf("failed to delete sent notifications: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return affected, nil
}

// Verify interface compliance
var _ port.NotificationRepository = (*NotificationRepository)(nil)
