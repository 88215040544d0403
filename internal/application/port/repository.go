package port

import (
	"context"
	"errors"
	"time"

	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/domain/entity"
)

// ErrVersionConflict is returned by version-guarded writes when the stored
// row no longer carries the expected version.
var ErrVersionConflict = errors.New("version conflict")

// ApplicationRepository defines persistence operations for Application.
// Lookups return (nil, nil) when no row matches.
type ApplicationRepository interface {
	// Create persists a new application
	Create(ctx context.Context, app *entity.Application) error

	// GetByID retrieves an application together with its approval log
	GetByID(ctx context.Context, id string) (*entity.Application, error)

	// Update persists content changes, guarded by app.Version. The stored
	// version is incremented on success.
	Update(ctx context.Context, app *entity.Application) error

	// CompareAndSwap persists a transition outcome and appends the log entry
	// in one transaction, guarded by expectedVersion. Returns
	// ErrVersionConflict if another writer got there first.
	CompareAndSwap(ctx context.Context, id string, expectedVersion int64, app *entity.Application, entry *entity.ApprovalLogEntry) error

	// ListByRequester retrieves all applications created by a requester
	ListByRequester(ctx context.Context, requesterID string) ([]*entity.Application, error)

	// ListByStatuses retrieves applications in any of the given statuses
	ListByStatuses(ctx context.Context, statuses []string) ([]*entity.Application, error)

	// ListDecidedBetween retrieves applications decided in [from, to)
	ListDecidedBetween(ctx context.Context, from, to time.Time) ([]*entity.Application, error)

	// GetLog retrieves the approval log of an application, oldest first
	GetLog(ctx context.Context, applicationID string) ([]entity.ApprovalLogEntry, error)

	// ArchiveLegacyApproved moves rows parked in the legacy APPROVED status
	// to ARCHIVED and returns the number of rows moved. No log entries are
	// written, the sweep is housekeeping, not a decision.
	ArchiveLegacyApproved(ctx context.Context, now time.Time) (int64, error)
}

// UserRepository defines persistence operations for User
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	ListByRole(ctx context.Context, role string) ([]*entity.User, error)
	CountByRole(ctx context.Context, role string) (int, error)
}

// DepartmentRepository defines persistence operations for Department
type DepartmentRepository interface {
	Create(ctx context.Context, dept *entity.Department) error
	GetByCode(ctx context.Context, code string) (*entity.Department, error)
	List(ctx context.Context) ([]*entity.Department, error)
	Count(ctx context.Context) (int, error)
}

// AttachmentRepository defines persistence operations for Attachment
type AttachmentRepository interface {
	Create(ctx context.Context, att *entity.Attachment) error
	GetByID(ctx context.Context, id string) (*entity.Attachment, error)
	ListByApplicationID(ctx context.Context, applicationID string) ([]*entity.Attachment, error)
}

// NotificationRepository defines persistence operations for the
// notification outbox
type NotificationRepository interface {
	// Create persists a new PENDING outbox row
	Create(ctx context.Context, rec *entity.NotificationRecord) error

	// GetPending retrieves PENDING rows due at the given time, oldest first
	GetPending(ctx context.Context, now time.Time, limit int) ([]*entity.NotificationRecord, error)

	// MarkSent marks a row SENT
	MarkSent(ctx context.Context, id string, sentAt time.Time) error

	// Reschedule records a failed attempt and keeps the row PENDING until
	// nextRetryAt
	Reschedule(ctx context.Context, id string, attempts int, nextRetryAt time.Time, lastError string) error

	// MarkFailed dead-letters a row after the retry budget is spent
	MarkFailed(ctx context.Context, id string, attempts int, lastError string) error

	// DeleteSentBefore removes SENT rows older than the cutoff and returns
	// the number of rows removed
	DeleteSentBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
