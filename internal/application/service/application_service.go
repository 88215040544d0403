package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/application/dispatcher"
	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/application/port"
	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/application/workflow"
	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/domain/entity"
	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/domain/event"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ApplicationInput carries the requester-editable content of an application.
// Derived fields (totals, traveller count) are recomputed server-side and
// never trusted from the client.
type ApplicationInput struct {
	EventTitle          string              `json:"event_title"`
	EventReason         string              `json:"event_reason"`
	DepartmentCode      string              `json:"department_code"`
	StartDate           time.Time           `json:"start_date"`
	EndDate             time.Time           `json:"end_date"`
	TravellerCount      int                 `json:"traveller_count"`
	MinisterEmail       string              `json:"minister_email"`
	HODEmail            string              `json:"hod_email"`
	Travellers          []entity.Traveller  `json:"travellers"`
	Expenses            []entity.ExpenseRow `json:"expenses"`
	AttachmentsProvided []string            `json:"attachments_provided"`
}

// ApplicationService manages application content and attachments. Status is
// never changed here, that is the decision service's job.
type ApplicationService interface {
	CreateDraft(ctx context.Context, actor entity.Actor, input ApplicationInput) (*entity.Application, error)
	UpdateDraft(ctx context.Context, actor entity.Actor, id string, input ApplicationInput) (*entity.Application, error)
	Get(ctx context.Context, actor entity.Actor, id string) (*entity.Application, error)
	ListOwn(ctx context.Context, actor entity.Actor) ([]*entity.Application, error)
	ListByStatus(ctx context.Context, actor entity.Actor, status string) ([]*entity.Application, error)
	GetLog(ctx context.Context, actor entity.Actor, id string) ([]entity.ApprovalLogEntry, error)
	AddAttachment(ctx context.Context, actor entity.Actor, applicationID, kind string, file *entity.AttachmentFile) (*entity.Attachment, error)
	ListAttachments(ctx context.Context, actor entity.Actor, applicationID string) ([]*entity.Attachment, error)
	ReadAttachment(ctx context.Context, actor entity.Actor, attachmentID string) (*entity.Attachment, []byte, error)
}

type applicationServiceImpl struct {
	appRepo        port.ApplicationRepository
	attachmentRepo port.AttachmentRepository
	fileStorage    port.FileStorage
	folderManager  port.FolderManager
	dispatcher     dispatcher.Dispatcher
	logger         Logger
}

// NewApplicationService creates a new ApplicationService
func NewApplicationService(
	appRepo port.ApplicationRepository,
	attachmentRepo port.AttachmentRepository,
	fileStorage port.FileStorage,
	folderManager port.FolderManager,
	disp dispatcher.Dispatcher,
	logger Logger,
) ApplicationService {
	return &applicationServiceImpl{
		appRepo:        appRepo,
		attachmentRepo: attachmentRepo,
		fileStorage:    fileStorage,
		folderManager:  folderManager,
		dispatcher:     disp,
		logger:         logger,
	}
}

// CreateDraft creates a new application in DRAFT status owned by the actor
func (s *applicationServiceImpl) CreateDraft(ctx context.Context, actor entity.Actor, input ApplicationInput) (*entity.Application, error) {
	if strings.TrimSpace(input.EventTitle) == "" {
		return nil, fmt.Errorf("%w: event title is required", workflow.ErrValidationFailed)
	}

	now := time.Now()
	app := &entity.Application{
		ID:             uuid.NewString(),
		RequesterID:    actor.ID,
		RequesterName:  actor.Name,
		RequesterEmail: actor.Email,
		Status:         entity.StatusDraft,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	applyInput(app, input)

	if err := s.appRepo.Create(ctx, app); err != nil {
		s.logger.Error("Failed to create application", "error", err, "requester_id", actor.ID)
		return nil, fmt.Errorf("create application: %w", err)
	}

	s.dispatcher.DispatchAsync(ctx, event.NewEvent(event.TypeApplicationCreated, app.ID, map[string]interface{}{
		"requester_id":    app.RequesterID,
		"department_code": app.DepartmentCode,
	}))

	s.logger.Info("Application created", "application_id", app.ID, "requester_id", actor.ID)
	return app, nil
}

// UpdateDraft replaces the content of an application the actor owns. Only
// editable statuses accept content changes.
func (s *applicationServiceImpl) UpdateDraft(ctx context.Context, actor entity.Actor, id string, input ApplicationInput) (*entity.Application, error) {
	app, err := s.loadVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if app.RequesterID != actor.ID {
		return nil, ErrForbidden
	}
	if !app.IsEditable() {
		return nil, fmt.Errorf("%w: application is %s", ErrConflict, app.Status)
	}
	if strings.TrimSpace(input.EventTitle) == "" {
		return nil, fmt.Errorf("%w: event title is required", workflow.ErrValidationFailed)
	}

	applyInput(app, input)
	app.UpdatedAt = time.Now()

	if err := s.appRepo.Update(ctx, app); err != nil {
		if errors.Is(err, port.ErrVersionConflict) {
			return nil, fmt.Errorf("%w: application was changed by someone else", ErrConflict)
		}
		s.logger.Error("Failed to update application", "error", err, "application_id", id)
		return nil, fmt.Errorf("update application: %w", err)
	}

	s.logger.Info("Application updated", "application_id", id, "requester_id", actor.ID)
	return app, nil
}

// Get retrieves an application visible to the actor
func (s *applicationServiceImpl) Get(ctx context.Context, actor entity.Actor, id string) (*entity.Application, error) {
	return s.loadVisible(ctx, actor, id)
}

// ListOwn retrieves the applications created by the actor
func (s *applicationServiceImpl) ListOwn(ctx context.Context, actor entity.Actor) ([]*entity.Application, error) {
	apps, err := s.appRepo.ListByRequester(ctx, actor.ID)
	if err != nil {
		s.logger.Error("Failed to list applications", "error", err, "requester_id", actor.ID)
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return apps, nil
}

// ListByStatus retrieves applications in one status for privileged roles
func (s *applicationServiceImpl) ListByStatus(ctx context.Context, actor entity.Actor, status string) ([]*entity.Application, error) {
	if !actor.HasAnyRole(entity.RoleReviewer, entity.RoleMinister, entity.RoleAdmin) {
		return nil, ErrForbidden
	}
	status = strings.ToUpper(strings.TrimSpace(status))
	if !knownStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", workflow.ErrValidationFailed, status)
	}

	apps, err := s.appRepo.ListByStatuses(ctx, []string{status})
	if err != nil {
		s.logger.Error("Failed to list applications by status", "error", err, "status", status)
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return apps, nil
}

// GetLog retrieves the approval log of an application visible to the actor,
// oldest entry first
func (s *applicationServiceImpl) GetLog(ctx context.Context, actor entity.Actor, id string) ([]entity.ApprovalLogEntry, error) {
	if _, err := s.loadVisible(ctx, actor, id); err != nil {
		return nil, err
	}

	log, err := s.appRepo.GetLog(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get approval log", "error", err, "application_id", id)
		return nil, fmt.Errorf("get approval log: %w", err)
	}
	return log, nil
}

// AddAttachment stores an uploaded file and its metadata row. Uploads are
// only accepted while the application is still editable.
func (s *applicationServiceImpl) AddAttachment(ctx context.Context, actor entity.Actor, applicationID, kind string, file *entity.AttachmentFile) (*entity.Attachment, error) {
	app, err := s.loadVisible(ctx, actor, applicationID)
	if err != nil {
		return nil, err
	}
	if app.RequesterID != actor.ID {
		return nil, ErrForbidden
	}
	if !app.IsEditable() {
		return nil, fmt.Errorf("%w: application is %s", ErrConflict, app.Status)
	}

	kind, err = normalizeAttachmentKind(kind)
	if err != nil {
		return nil, err
	}
	if file == nil || len(file.Content) == 0 {
		return nil, fmt.Errorf("%w: file content is empty", workflow.ErrValidationFailed)
	}

	if _, err := s.folderManager.CreateFolder(ctx, app.ID); err != nil {
		s.logger.Error("Failed to create attachment folder", "error", err, "application_id", app.ID)
		return nil, fmt.Errorf("create folder: %w", err)
	}

	attID := uuid.NewString()
	fileName := s.folderManager.SanitizeName(file.FileName)
	if fileName == "" {
		fileName = "attachment"
	}
	relPath := filepath.Join(s.folderManager.SanitizeName(app.ID), attID+"_"+fileName)

	if err := s.fileStorage.Save(ctx, relPath, file.Content); err != nil {
		s.logger.Error("Failed to store attachment", "error", err, "application_id", app.ID, "path", relPath)
		return nil, fmt.Errorf("store attachment: %w", err)
	}

	att := &entity.Attachment{
		ID:            attID,
		ApplicationID: app.ID,
		Kind:          kind,
		FileName:      file.FileName,
		FilePath:      relPath,
		MimeType:      file.MimeType,
		SizeBytes:     int64(len(file.Content)),
		UploaderID:    actor.ID,
		UploadedAt:    time.Now(),
	}

	if err := s.attachmentRepo.Create(ctx, att); err != nil {
		// Best effort cleanup, the metadata row is the source of truth
		_ = s.fileStorage.Delete(ctx, relPath)
		s.logger.Error("Failed to create attachment record", "error", err, "application_id", app.ID)
		return nil, fmt.Errorf("create attachment: %w", err)
	}

	s.logger.Info("Attachment stored",
		"attachment_id", att.ID,
		"application_id", app.ID,
		"file_name", att.FileName,
		"size_bytes", att.SizeBytes,
	)
	return att, nil
}

// ListAttachments retrieves attachment metadata for an application visible
// to the actor
func (s *applicationServiceImpl) ListAttachments(ctx context.Context, actor entity.Actor, applicationID string) ([]*entity.Attachment, error) {
	if _, err := s.loadVisible(ctx, actor, applicationID); err != nil {
		return nil, err
	}

	atts, err := s.attachmentRepo.ListByApplicationID(ctx, applicationID)
	if err != nil {
		s.logger.Error("Failed to list attachments", "error", err, "application_id", applicationID)
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	return atts, nil
}

// ReadAttachment retrieves an attachment's metadata and file content
func (s *applicationServiceImpl) ReadAttachment(ctx context.Context, actor entity.Actor, attachmentID string) (*entity.Attachment, []byte, error) {
	att, err := s.attachmentRepo.GetByID(ctx, attachmentID)
	if err != nil {
		s.logger.Error("Failed to get attachment", "error", err, "attachment_id", attachmentID)
		return nil, nil, fmt.Errorf("get attachment: %w", err)
	}
	if att == nil {
		return nil, nil, ErrNotFound
	}

	// Visibility follows the owning application
	if _, err := s.loadVisible(ctx, actor, att.ApplicationID); err != nil {
		return nil, nil, err
	}

	content, err := s.fileStorage.Read(ctx, att.FilePath)
	if err != nil {
		s.logger.Error("Failed to read attachment file", "error", err, "attachment_id", attachmentID, "path", att.FilePath)
		return nil, nil, fmt.Errorf("read attachment: %w", err)
	}
	return att, content, nil
}

// loadVisible retrieves an application and applies the read gate. Callers
// that cannot see the application learn nothing about its existence.
func (s *applicationServiceImpl) loadVisible(ctx context.Context, actor entity.Actor, id string) (*entity.Application, error) {
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

func canRead(actor entity.Actor, app *entity.Application) bool {
	if actor.ID == app.RequesterID {
		return true
	}
	return actor.HasAnyRole(entity.RoleReviewer, entity.RoleMinister, entity.RoleAdmin)
}

func applyInput(app *entity.Application, input ApplicationInput) {
	app.EventTitle = input.EventTitle
	app.EventReason = input.EventReason
	app.DepartmentCode = input.DepartmentCode
	app.StartDate = input.StartDate
	app.EndDate = input.EndDate
	app.MinisterEmail = input.MinisterEmail
	app.HODEmail = input.HODEmail
	app.Travellers = input.Travellers
	app.Expenses = input.Expenses
	app.AttachmentsProvided = input.AttachmentsProvided

	app.TravellerCount = input.TravellerCount
	if app.TravellerCount == 0 {
		app.TravellerCount = len(app.Travellers)
	}
	app.RecomputeTotals()
}

func normalizeAttachmentKind(kind string) (string, error) {
	kind = strings.ToUpper(strings.TrimSpace(kind))
	switch kind {
	case "":
		return entity.AttachmentKindOther, nil
	case entity.AttachmentKindInvitation, entity.AttachmentKindQuote, entity.AttachmentKindOther:
		return kind, nil
	}
	return "", fmt.Errorf("%w: unknown attachment kind %q", workflow.ErrValidationFailed, kind)
}

func knownStatus(status string) bool {
	switch status {
	case entity.StatusDraft, entity.StatusSubmitted, entity.StatusInReview,
		entity.StatusRejected, entity.StatusReferredToMinister,
		entity.StatusPendingMinisterApproval, entity.StatusApproved,
		entity.StatusArchived:
		return true
	}
	return false
}
