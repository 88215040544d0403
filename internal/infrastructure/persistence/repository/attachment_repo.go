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

// AttachmentRepository implements port.AttachmentRepository
type AttachmentRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewAttachmentRepository creates a new attachment repository
func NewAttachmentRepository(db *sqlite.DB, logger *zap.Logger) port.AttachmentRepository {
	return &AttachmentRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new attachment record
func (r *AttachmentRepository) Create(ctx context.Context, att *entity.Attachment) error {
	if att.UploadedAt.IsZero() {
		att.UploadedAt = time.Now()
	}

	query := `
		INSERT INTO attachments (
			id, application_id, kind, file_name, file_path, mime_type,
			size_bytes, uploader_id, uploaded_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Executor(ctx).ExecContext(ctx, query,
		att.ID,
		att.ApplicationID,
		att.Kind,
		att.FileName,
		att.FilePath,
		att.MimeType,
		att.SizeBytes,
		att.UploaderID,
		att.UploadedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create attachment", zap.String("id", att.ID), zap.Error(err))
		return fmt.Errorf("failed to create attachment: %w", err)
	}

	return nil
}

// GetByID retrieves an attachment by ID
func (r *AttachmentRepository) GetByID(ctx context.Context, id string) (*entity.Attachment, error) {
	query := `
		SELECT id, application_id, kind, file_name, file_path, mime_type,
			size_bytes, uploader_id, uploaded_at
		FROM attachments
		WHERE id = ?
	`

	var att entity.Attachment
	err := r.db.Executor(ctx).QueryRowContext(ctx, query, id).Scan(
		&att.ID,
		&att.ApplicationID,
		&att.Kind,
		&att.FileName,
		&att.FilePath,
		&att.MimeType,
		&att.SizeBytes,
		&att.UploaderID,
		&att.UploadedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get attachment by ID", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get attachment: %w", err)
	}

	return &att, nil
}

// ListByApplicationID retrieves all attachments of an application, oldest
// upload first
func (r *AttachmentRepository) ListByApplicationID(ctx context.Context, applicationID string) ([]*entity.Attachment, error) {
	query := `
		SELECT id, application_id, kind, file_name, file_path, mime_type,
			size_bytes, uploader_id, uploaded_at
		FROM attachments
		WHERE application_id = ?
		ORDER BY uploaded_at ASC, id ASC
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, applicationID)
	if err != nil {
		r.logger.Error("Failed to list attachments",
			zap.String("application_id", applicationID), zap.Error(err))
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}
	defer rows.Close()

	var attachments []*entity.Attachment
	for rows.Next() {
		var att entity.Attachment
		if err := rows.Scan(
			&att.ID,
			&att.ApplicationID,
			&att.Kind,
			&att.FileName,
			&att.FilePath,
			&att.MimeType,
			&att.SizeBytes,
			&att.UploaderID,
			&att.UploadedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan attachment: %w", err)
		}
		attachments = append(attachments, &att)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attachments: %w", err)
	}

	return attachments, nil
}

// Verify interface compliance
var _ port.AttachmentRepository = (*AttachmentRepository)(nil)
