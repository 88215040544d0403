package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/application/port"
	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/domain/entity"
	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// applicationColumns is the column list shared by every SELECT on the
// applications table. Scan order in scanApplication must match.
const applicationColumns = `
	id, requester_id, requester_name, requester_email, department_code,
	event_title, event_reason, start_date, end_date, traveller_count,
	minister_email, hod_email, travellers, expenses, attachments_provided,
	total_cost, status, current_reviewer_id, submitted_at, decided_at,
	archived_at, version, created_at, updated_at`

// ApplicationRepository implements port.ApplicationRepository
type ApplicationRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db *sqlite.DB, logger *zap.Logger) port.ApplicationRepository {
	return &ApplicationRepository{
		db:     db,
		logger: logger,
	}
}

// Create persists a new application
func (r *ApplicationRepository) Create(ctx context.Context, app *entity.Application) error {
	travellers, expenses, provided, err := marshalApplicationJSON(app)
	if err != nil {
		return err
	}

	now := time.Now()
	if app.CreatedAt.IsZero() {
		app.CreatedAt = now
	}
	app.UpdatedAt = now

	query := `
		INSERT INTO applications (
			id, requester_id, requester_name, requester_email, department_code,
			event_title, event_reason, start_date, end_date, traveller_count,
			minister_email, hod_email, travellers, expenses, attachments_provided,
			total_cost, status, current_reviewer_id, submitted_at, decided_at,
			archived_at, version, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Executor(ctx).ExecContext(ctx, query,
		app.ID,
		app.RequesterID,
		app.RequesterName,
		app.RequesterEmail,
		app.DepartmentCode,
		app.EventTitle,
		app.EventReason,
		app.StartDate,
		app.EndDate,
		app.TravellerCount,
		app.MinisterEmail,
		app.HODEmail,
		travellers,
		expenses,
		provided,
		app.TotalCost,
		app.Status,
		nullString(app.CurrentReviewerID),
		nullTime(app.SubmittedAt),
		nullTime(app.DecidedAt),
		nullTime(app.ArchivedAt),
		app.Version,
		app.CreatedAt,
		app.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create application", zap.String("id", app.ID), zap.Error(err))
		return fmt.Errorf("failed to create application: %w", err)
	}

	return nil
}

// GetByID retrieves an application together with its approval log
func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (*entity.Application, error) {
	query := `SELECT` + applicationColumns + `
		FROM applications
		WHERE id = ?
	`

	app, err := scanApplication(r.db.Executor(ctx).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get application by ID", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	log, err := r.GetLog(ctx, id)
	if err != nil {
		return nil, err
	}
	app.ApprovalLog = log

	return app, nil
}

// Update persists content changes, guarded by app.Version. State fields
// (status, decision timestamps) are deliberately left out, they only move
// through CompareAndSwap.
func (r *ApplicationRepository) Update(ctx context.Context, app *entity.Application) error {
	travellers, expenses, provided, err := marshalApplicationJSON(app)
	if err != nil {
		return err
	}

	now := time.Now()

	query := `
		UPDATE applications SET
			department_code = ?, event_title = ?, event_reason = ?,
			start_date = ?, end_date = ?, traveller_count = ?,
			minister_email = ?, hod_email = ?, travellers = ?, expenses = ?,
			attachments_provided = ?, total_cost = ?, updated_at = ?,
			version = version + 1
		WHERE id = ? AND version = ?
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		app.DepartmentCode,
		app.EventTitle,
		app.EventReason,
		app.StartDate,
		app.EndDate,
		app.TravellerCount,
		app.MinisterEmail,
		app.HODEmail,
		travellers,
		expenses,
		provided,
		app.TotalCost,
		now,
		app.ID,
		app.Version,
	)
	if err != nil {
		r.logger.Error("Failed to update application", zap.String("id", app.ID), zap.Error(err))
		return fmt.Errorf("failed to update application: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return port.ErrVersionConflict
	}

	app.Version++
	app.UpdatedAt = now
	return nil
}

// CompareAndSwap persists a transition outcome and appends its log entry,
// guarded by expectedVersion. Both writes run in one transaction, the
// caller's when there is one.
func (r *ApplicationRepository) CompareAndSwap(ctx context.Context, id string, expectedVersion int64, app *entity.Application, entry *entity.ApprovalLogEntry) error {
	travellers, expenses, provided, err := marshalApplicationJSON(app)
	if err != nil {
		return err
	}

	now := time.Now()
	newVersion := expectedVersion + 1

	return r.db.WithTransaction(ctx, func(ctx context.Context) error {
		query := `
			UPDATE applications SET
				department_code = ?, event_title = ?, event_reason = ?,
				start_date = ?, end_date = ?, traveller_count = ?,
				minister_email = ?, hod_email = ?, travellers = ?, expenses = ?,
				attachments_provided = ?, total_cost = ?, status = ?,
				current_reviewer_id = ?, submitted_at = ?, decided_at = ?,
				archived_at = ?, updated_at = ?, version = ?
			WHERE id = ? AND version = ?
		`

		result, err := r.db.Executor(ctx).ExecContext(ctx, query,
			app.DepartmentCode,
			app.EventTitle,
			app.EventReason,
			app.StartDate,
			app.EndDate,
			app.TravellerCount,
			app.MinisterEmail,
			app.HODEmail,
			travellers,
			expenses,
			provided,
			app.TotalCost,
			app.Status,
			nullString(app.CurrentReviewerID),
			nullTime(app.SubmittedAt),
			nullTime(app.DecidedAt),
			nullTime(app.ArchivedAt),
			now,
			newVersion,
			id,
			expectedVersion,
		)
		if err != nil {
			r.logger.Error("Failed to apply transition", zap.String("id", id), zap.Error(err))
			return fmt.Errorf("failed to apply transition: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected == 0 {
			return port.ErrVersionConflict
		}

		logQuery := `
			INSERT INTO approval_log (
				application_id, action, actor_id, actor_name, actor_email, note, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?)
		`

		logResult, err := r.db.Executor(ctx).ExecContext(ctx, logQuery,
			entry.ApplicationID,
			entry.Action,
			entry.ActorID,
			entry.ActorName,
			entry.ActorEmail,
			entry.Note,
			entry.CreatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to append approval log entry",
				zap.String("application_id", entry.ApplicationID), zap.Error(err))
			return fmt.Errorf("failed to append approval log entry: %w", err)
		}

		entryID, err := logResult.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}

		entry.ID = entryID
		app.Version = newVersion
		app.UpdatedAt = now
		return nil
	})
}

// ListByRequester retrieves all applications created by a requester, newest
// first
func (r *ApplicationRepository) ListByRequester(ctx context.Context, requesterID string) ([]*entity.Application, error) {
	query := `SELECT` + applicationColumns + `
		FROM applications
		WHERE requester_id = ?
		ORDER BY created_at DESC
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, requesterID)
	if err != nil {
		r.logger.Error("Failed to list applications by requester",
			zap.String("requester_id", requesterID), zap.Error(err))
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	return collectApplications(rows)
}

// ListByStatuses retrieves applications in any of the given statuses, in
// queue order (oldest submission first)
func (r *ApplicationRepository) ListByStatuses(ctx context.Context, statuses []string) ([]*entity.Application, error) {
	if len(statuses) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(statuses)), ", ")
	query := fmt.Sprintf(`SELECT`+applicationColumns+`
		FROM applications
		WHERE status IN (%s)
		ORDER BY submitted_at ASC, created_at ASC
	`, placeholders)

	args := make([]interface{}, len(statuses))
	for i, s := range statuses {
		args[i] = s
	}

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list applications by statuses",
			zap.Strings("statuses", statuses), zap.Error(err))
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	return collectApplications(rows)
}

// ListDecidedBetween retrieves applications decided in [from, to), oldest
// decision first
func (r *ApplicationRepository) ListDecidedBetween(ctx context.Context, from, to time.Time) ([]*entity.Application, error) {
	query := `SELECT` + applicationColumns + `
		FROM applications
		WHERE decided_at IS NOT NULL AND decided_at >= ? AND decided_at < ?
		ORDER BY decided_at ASC
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, from, to)
	if err != nil {
		r.logger.Error("Failed to list decided applications", zap.Error(err))
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	return collectApplications(rows)
}

// GetLog retrieves the approval log of an application, oldest first
func (r *ApplicationRepository) GetLog(ctx context.Context, applicationID string) ([]entity.ApprovalLogEntry, error) {
	query := `
		SELECT id, application_id, action, actor_id, actor_name, actor_email, note, created_at
		FROM approval_log
		WHERE application_id = ?
		ORDER BY id ASC
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, applicationID)
	if err != nil {
		r.logger.Error("Failed to get approval log",
			zap.String("application_id", applicationID), zap.Error(err))
		return nil, fmt.Errorf("failed to get approval log: %w", err)
	}
	defer rows.Close()

	var entries []entity.ApprovalLogEntry
	for rows.Next() {
		var entry entity.ApprovalLogEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.ApplicationID,
			&entry.Action,
			&entry.ActorID,
			&entry.ActorName,
			&entry.ActorEmail,
			&entry.Note,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan approval log entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate approval log: %w", err)
	}

	return entries, nil
}

// ArchiveLegacyApproved moves rows parked in the legacy APPROVED status to
// ARCHIVED and returns the number of rows moved
func (r *ApplicationRepository) ArchiveLegacyApproved(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE applications
		SET status = ?, archived_at = ?, updated_at = ?, version = version + 1
		WHERE status = ?
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		entity.StatusArchived,
		now,
		now,
		entity.StatusApproved,
	)
	if err != nil {
		r.logger.Error("Failed to archive legacy approved applications", zap.Error(err))
		return 0, fmt.Errorf("failed to archive legacy approved applications: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return affected, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanApplication(row rowScanner) (*entity.Application, error) {
	var app entity.Application
	var travellers, expenses, provided string
	var currentReviewerID sql.NullString
	var submittedAt, decidedAt, archivedAt sql.NullTime

	err := row.Scan(
		&app.ID,
		&app.RequesterID,
		&app.RequesterName,
		&app.RequesterEmail,
		&app.DepartmentCode,
		&app.EventTitle,
		&app.EventReason,
		&app.StartDate,
		&app.EndDate,
		&app.TravellerCount,
		&app.MinisterEmail,
		&app.HODEmail,
		&travellers,
		&expenses,
		&provided,
		&app.TotalCost,
		&app.Status,
		&currentReviewerID,
		&submittedAt,
		&decidedAt,
		&archivedAt,
		&app.Version,
		&app.CreatedAt,
		&app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(travellers), &app.Travellers); err != nil {
		return nil, fmt.Errorf("failed to decode travellers: %w", err)
	}
	if err := json.Unmarshal([]byte(expenses), &app.Expenses); err != nil {
		return nil, fmt.Errorf("failed to decode expenses: %w", err)
	}
	if err := json.Unmarshal([]byte(provided), &app.AttachmentsProvided); err != nil {
		return nil, fmt.Errorf("failed to decode attachments provided: %w", err)
	}

	if currentReviewerID.Valid {
		app.CurrentReviewerID = &currentReviewerID.String
	}
	if submittedAt.Valid {
		app.SubmittedAt = &submittedAt.Time
	}
	if decidedAt.Valid {
		app.DecidedAt = &decidedAt.Time
	}
	if archivedAt.Valid {
		app.ArchivedAt = &archivedAt.Time
	}

	return &app, nil
}

func collectApplications(rows *sql.Rows) ([]*entity.Application, error) {
	var apps []*entity.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate applications: %w", err)
	}
	return apps, nil
}

func marshalApplicationJSON(app *entity.Application) (travellers, expenses, provided string, err error) {
	t, err := json.Marshal(app.Travellers)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to encode travellers: %w", err)
	}
	e, err := json.Marshal(app.Expenses)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to encode expenses: %w", err)
	}
	p, err := json.Marshal(app.AttachmentsProvided)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to encode attachments provided: %w", err)
	}
	return string(t), string(e), string(p), nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// Verify interface compliance
var _ port.ApplicationRepository = (*ApplicationRepository)(nil)
