package service

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/application/dispatcher"
	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/application/port"
	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/application/workflow"
	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/domain/entity"
	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/domain/event"
)

type mockAttachmentRepo struct {
	createFunc  func(ctx context.Context, att *entity.Attachment) error
	getByIDFunc func(ctx context.Context, id string) (*entity.Attachment, error)
	listFunc    func(ctx context.Context, applicationID string) ([]*entity.Attachment, error)
}

func (m *mockAttachmentRepo) Create(ctx context.Context, att *entity.Attachment) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, att)
	}
	return nil
}

func (m *mockAttachmentRepo) GetByID(ctx context.Context, id string) (*entity.Attachment, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockAttachmentRepo) ListByApplicationID(ctx context.Context, applicationID string) ([]*entity.Attachment, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, applicationID)
	}
	return []*entity.Attachment{}, nil
}

type mockFileStorage struct {
	saveFunc   func(ctx context.Context, path string, content []byte) error
	readFunc   func(ctx context.Context, path string) ([]byte, error)
	deleteFunc func(ctx context.Context, path string) error
}

func (m *mockFileStorage) Save(ctx context.Context, path string, content []byte) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, path, content)
	}
	return nil
}

func (m *mockFileStorage) Read(ctx context.Context, path string) ([]byte, error) {
	if m.readFunc != nil {
		return m.readFunc(ctx, path)
	}
	return []byte("content"), nil
}

func (m *mockFileStorage) Exists(ctx context.Context, path string) bool { return false }

func (m *mockFileStorage) Delete(ctx context.Context, path string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, path)
	}
	return nil
}

func (m *mockFileStorage) GetFullPath(relativePath string) string {
	return filepath.Join("/tmp/attachments", relativePath)
}

type mockFolderManager struct {
	createFolderFunc func(ctx context.Context, name string) (string, error)
}

func (m *mockFolderManager) CreateFolder(ctx context.Context, name string) (string, error) {
	if m.createFolderFunc != nil {
		return m.createFolderFunc(ctx, name)
	}
	return "/tmp/attachments/" + name, nil
}

func (m *mockFolderManager) GetPath(name string) string { return "/tmp/attachments/" + name }
func (m *mockFolderManager) Exists(name string) bool    { return true }
func (m *mockFolderManager) Delete(ctx context.Context, name string) error {
	return nil
}

func (m *mockFolderManager) SanitizeName(name string) string {
	name = strings.ReplaceAll(name, "..", "")
	return strings.ReplaceAll(name, "/", "")
}

func newApplicationService(appRepo *mockApplicationRepo, attRepo *mockAttachmentRepo, fs *mockFileStorage) (ApplicationService, dispatcher.Dispatcher) {
	disp := dispatcher.NewDispatcher()
	svc := NewApplicationService(appRepo, attRepo, fs, &mockFolderManager{}, disp, &mockLogger{})
	return svc, disp
}

func draftInput() ApplicationInput {
	return ApplicationInput{
		EventTitle:     "Regional statistics workshop",
		EventReason:    "Invitation from the regional secretariat",
		DepartmentCode: "FIN",
		StartDate:      time.Date(2025, 9, 10, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2025, 9, 14, 0, 0, 0, 0, time.UTC),
		MinisterEmail:  "minister@cabinet.example.gov",
		HODEmail:       "hod@finance.example.gov",
		Travellers: []entity.Traveller{
			{Name: "Tamaki Dageago", Position: "Statistician", Unit: "Statistics"},
			{Name: "Maria Kepae", Position: "Officer", Unit: "Statistics"},
		},
		Expenses: []entity.ExpenseRow{
			{Label: "Airfare", PerPersonCost: 800, Count: 2, Total: 999999},
			{Label: "Registration", PerPersonCost: 150, Count: 2, DonorFunded: true},
		},
	}
}

func TestApplicationService_CreateDraft(t *testing.T) {
	var created *entity.Application
	appRepo := &mockApplicationRepo{
		createFunc: func(ctx context.Context, app *entity.Application) error {
			created = app
			return nil
		},
	}

	collector := &eventCollector{}
	svc, disp := newApplicationService(appRepo, &mockAttachmentRepo{}, &mockFileStorage{})
	disp.Subscribe(event.TypeApplicationCreated, collector.handler)

	got, err := svc.CreateDraft(context.Background(), testRequester, draftInput())
	if err != nil {
		t.Fatalf("CreateDraft() failed: %v", err)
	}
	disp.Close()

	if created == nil {
		t.Fatal("repository Create was not called")
	}
	if got.ID == "" {
		t.Error("application id not assigned")
	}
	if got.Status != entity.StatusDraft {
		t.Errorf("Status = %v, want %v", got.Status, entity.StatusDraft)
	}
	if got.Version != 1 {
		t.Errorf("Version = %d, want 1", got.Version)
	}
	if got.RequesterID != testRequester.ID || got.RequesterName != testRequester.Name || got.RequesterEmail != testRequester.Email {
		t.Error("requester snapshot not taken from the actor")
	}

	// Client-supplied totals are discarded, airfare 800x2 counts, donor
	// funded registration does not
	if got.TotalCost != 1600 {
		t.Errorf("TotalCost = %v, want 1600", got.TotalCost)
	}
	if got.TravellerCount != 2 {
		t.Errorf("TravellerCount = %d, want 2 (derived)", got.TravellerCount)
	}

	if n := len(collector.byType(event.TypeApplicationCreated)); n != 1 {
		t.Errorf("created events = %d, want 1", n)
	}
}

func TestApplicationService_CreateDraft_RequiresTitle(t *testing.T) {
	svc, disp := newApplicationService(&mockApplicationRepo{}, &mockAttachmentRepo{}, &mockFileStorage{})
	defer disp.Close()

	input := draftInput()
	input.EventTitle = "   "

	_, err := svc.CreateDraft(context.Background(), testRequester, input)
	if !errors.Is(err, workflow.ErrValidationFailed) {
		t.Errorf("CreateDraft() error = %v, want ErrValidationFailed", err)
	}
}

func TestApplicationService_UpdateDraft(t *testing.T) {
	app := serviceApplication(entity.StatusDraft)

	var updated *entity.Application
	appRepo := &mockApplicationRepo{
		getByIDFunc: func(ctx context.Context, id string) (*entity.Application, error) {
			return app, nil
		},
		updateFunc: func(ctx context.Context, a *entity.Application) error {
			updated = a
			return nil
		},
	}

	svc, disp := newApplicationService(appRepo, &mockAttachmentRepo{}, &mockFileStorage{})
	defer disp.Close()

	input := draftInput()
	input.EventTitle = "Amended workshop title"

	got, err := svc.UpdateDraft(context.Background(), testRequester, "app-1", input)
	if err != nil {
		t.Fatalf("UpdateDraft() failed: %v", err)
	}

	if updated == nil {
		t.Fatal("repository Update was not called")
	}
	if got.EventTitle != "Amended workshop title" {
		t.Errorf("EventTitle = %v, want the amended title", got.EventTitle)
	}
	if got.TotalCost != 1600 {
		t.Errorf("TotalCost = %v, want 1600 recomputed", got.TotalCost)
	}
}

func TestApplicationService_UpdateDraft_Gates(t *testing.T) {
	tests := []struct {
		name    string
		status  string
		actor   entity.Actor
		wantErr error
	}{
		{"reviewer cannot edit", entity.StatusDraft, testReviewer, ErrForbidden},
		{"outsider cannot see", entity.StatusDraft, testOutsider, ErrNotFound},
		{"archived is frozen", entity.StatusArchived, testRequester, ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := serviceApplication(tt.status)
			appRepo := &mockApplicationRepo{
				getByIDFunc: func(ctx context.Context, id string) (*entity.Application, error) {
					return app, nil
				},
			}

			svc, disp := newApplicationService(appRepo, &mockAttachmentRepo{}, &mockFileStorage{})
			defer disp.Close()

			_, err := svc.UpdateDraft(context.Background(), tt.actor, "app-1", draftInput())
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("UpdateDraft() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplicationService_UpdateDraft_VersionConflict(t *testing.T) {
	app := serviceApplication(entity.StatusDraft)
	appRepo := &mockApplicationRepo{
		getByIDFunc: func(ctx context.Context, id string) (*entity.Application, error) {
			return app, nil
		},
		updateFunc: func(ctx context.Context, a *entity.Application) error {
			return port.ErrVersionConflict
		},
	}

	svc, disp := newApplicationService(appRepo, &mockAttachmentRepo{}, &mockFileStorage{})
	defer disp.Close()

	_, err := svc.UpdateDraft(context.Background(), testRequester, "app-1", draftInput())
	if !errors.Is(err, ErrConflict) {
		t.Errorf("UpdateDraft() error = %v, want ErrConflict", err)
	}
}

func TestApplicationService_Get(t *testing.T) {
	app := serviceApplication(entity.StatusSubmitted)
	appRepo := &mockApplicationRepo{
		getByIDFunc: func(ctx context.Context, id string) (*entity.Application, error) {
			if id == "app-1" {
				return app, nil
			}
			return nil, nil
		},
	}

	svc, disp := newApplicationService(appRepo, &mockAttachmentRepo{}, &mockFileStorage{})
	defer disp.Close()

	for _, actor := range []entity.Actor{testRequester, testReviewer, testMinister, testAdmin} {
		if _, err := svc.Get(context.Background(), actor, "app-1"); err != nil {
			t.Errorf("Get() by %s failed: %v", actor.Name, err)
		}
	}

	if _, err := svc.Get(context.Background(), testOutsider, "app-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() by outsider error = %v, want ErrNotFound", err)
	}
	if _, err := svc.Get(context.Background(), testRequester, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() missing error = %v, want ErrNotFound", err)
	}
}

func TestApplicationService_ListByStatus(t *testing.T) {
	appRepo := &mockApplicationRepo{}
	svc, disp := newApplicationService(appRepo, &mockAttachmentRepo{}, &mockFileStorage{})
	defer disp.Close()

	if _, err := svc.ListByStatus(context.Background(), testReviewer, "submitted"); err != nil {
		t.Errorf("ListByStatus() failed: %v", err)
	}
	if _, err := svc.ListByStatus(context.Background(), testRequester, "SUBMITTED"); !errors.Is(err, ErrForbidden) {
		t.Errorf("ListByStatus() by plain user error = %v, want ErrForbidden", err)
	}
	if _, err := svc.ListByStatus(context.Background(), testReviewer, "LIMBO"); !errors.Is(err, workflow.ErrValidationFailed) {
		t.Errorf("ListByStatus() unknown status error = %v, want ErrValidationFailed", err)
	}
}

func TestApplicationService_AddAttachment(t *testing.T) {
	app := serviceApplication(entity.StatusSubmitted)

	var savedPath string
	var createdAtt *entity.Attachment

	appRepo := &mockApplicationRepo{
		getByIDFunc: func(ctx context.Context, id string) (*entity.Application, error) {
			return app, nil
		},
	}
	attRepo := &mockAttachmentRepo{
		createFunc: func(ctx context.Context, att *entity.Attachment) error {
			createdAtt = att
			return nil
		},
	}
	fs := &mockFileStorage{
		saveFunc: func(ctx context.Context, path string, content []byte) error {
			savedPath = path
			return nil
		},
	}

	svc, disp := newApplicationService(appRepo, attRepo, fs)
	defer disp.Close()

	file := &entity.AttachmentFile{
		Content:  []byte("%PDF-1.4 invitation"),
		FileName: "invitation.pdf",
		MimeType: "application/pdf",
	}

	att, err := svc.AddAttachment(context.Background(), testRequester, "app-1", "invitation", file)
	if err != nil {
		t.Fatalf("AddAttachment() failed: %v", err)
	}

	if createdAtt == nil {
		t.Fatal("attachment record was not created")
	}
	if att.Kind != entity.AttachmentKindInvitation {
		t.Errorf("Kind = %v, want %v", att.Kind, entity.AttachmentKindInvitation)
	}
	if att.FilePath != savedPath {
		t.Errorf("FilePath = %v, stored file at %v", att.FilePath, savedPath)
	}
	if att.SizeBytes != int64(len(file.Content)) {
		t.Errorf("SizeBytes = %d, want %d", att.SizeBytes, len(file.Content))
	}
	if att.UploaderID != testRequester.ID {
		t.Errorf("UploaderID = %v, want %v", att.UploaderID, testRequester.ID)
	}
}

func TestApplicationService_AddAttachment_Gates(t *testing.T) {
	file := &entity.AttachmentFile{Content: []byte("x"), FileName: "quote.pdf"}

	tests := []struct {
		name    string
		status  string
		actor   entity.Actor
		kind    string
		file    *entity.AttachmentFile
		wantErr error
	}{
		{"archived application", entity.StatusArchived, testRequester, "quote", file, ErrConflict},
		{"referred application", entity.StatusReferredToMinister, testRequester, "quote", file, ErrConflict},
		{"reviewer cannot upload", entity.StatusSubmitted, testReviewer, "quote", file, ErrForbidden},
		{"unknown kind", entity.StatusSubmitted, testRequester, "receipt", file, workflow.ErrValidationFailed},
		{"empty file", entity.StatusSubmitted, testRequester, "quote", &entity.AttachmentFile{FileName: "empty.pdf"}, workflow.ErrValidationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := serviceApplication(tt.status)
			appRepo := &mockApplicationRepo{
				getByIDFunc: func(ctx context.Context, id string) (*entity.Application, error) {
					return app, nil
				},
			}

			svc, disp := newApplicationService(appRepo, &mockAttachmentRepo{}, &mockFileStorage{})
			defer disp.Close()

			_, err := svc.AddAttachment(context.Background(), tt.actor, "app-1", tt.kind, tt.file)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("AddAttachment() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplicationService_AddAttachment_CleansUpOnRecordFailure(t *testing.T) {
	app := serviceApplication(entity.StatusDraft)

	var deletedPath string
	appRepo := &mockApplicationRepo{
		getByIDFunc: func(ctx context.Context, id string) (*entity.Application, error) {
			return app, nil
		},
	}
	attRepo := &mockAttachmentRepo{
		createFunc: func(ctx context.Context, att *entity.Attachment) error {
			return errors.New("disk full")
		},
	}
	fs := &mockFileStorage{
		deleteFunc: func(ctx context.Context, path string) error {
			deletedPath = path
			return nil
		},
	}

	svc, disp := newApplicationService(appRepo, attRepo, fs)
	defer disp.Close()

	_, err := svc.AddAttachment(context.Background(), testRequester, "app-1", "",
		&entity.AttachmentFile{Content: []byte("x"), FileName: "note.txt"})
	if err == nil {
		t.Fatal("AddAttachment() should fail when the record cannot be written")
	}
	if deletedPath == "" {
		t.Error("stored file was not cleaned up")
	}
}

func TestApplicationService_GetLog(t *testing.T) {
	app := serviceApplication(entity.StatusSubmitted)
	logEntries := []entity.ApprovalLogEntry{
		{ApplicationID: "app-1", Action: entity.LogActionSubmitted, ActorID: testRequester.ID},
	}

	appRepo := &mockApplicationRepo{
		getByIDFunc: func(ctx context.Context, id string) (*entity.Application, error) {
			return app, nil
		},
		getLogFunc: func(ctx context.Context, applicationID string) ([]entity.ApprovalLogEntry, error) {
			return logEntries, nil
		},
	}

	svc, disp := newApplicationService(appRepo, &mockAttachmentRepo{}, &mockFileStorage{})
	defer disp.Close()

	log, err := svc.GetLog(context.Background(), testReviewer, "app-1")
	if err != nil {
		t.Fatalf("GetLog() failed: %v", err)
	}
	if len(log) != 1 || log[0].Action != entity.LogActionSubmitted {
		t.Errorf("log = %+v, want one SUBMITTED entry", log)
	}

	if _, err := svc.GetLog(context.Background(), testOutsider, "app-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetLog() by outsider error = %v, want ErrNotFound", err)
	}
}

func TestApplicationService_ReadAttachment(t *testing.T) {
	app := serviceApplication(entity.StatusSubmitted)
	att := &entity.Attachment{
		ID:            "att-1",
		ApplicationID: "app-1",
		FileName:      "invitation.pdf",
		FilePath:      "app-1/att-1_invitation.pdf",
	}

	appRepo := &mockApplicationRepo{
		getByIDFunc: func(ctx context.Context, id string) (*entity.Application, error) {
			return app, nil
		},
	}
	attRepo := &mockAttachmentRepo{
		getByIDFunc: func(ctx context.Context, id string) (*entity.Attachment, error) {
			if id == "att-1" {
				return att, nil
			}
			return nil, nil
		},
	}
	fs := &mockFileStorage{
		readFunc: func(ctx context.Context, path string) ([]byte, error) {
			if path != att.FilePath {
				t.Errorf("Read path = %v, want %v", path, att.FilePath)
			}
			return []byte("%PDF-1.4"), nil
		},
	}

	svc, disp := newApplicationService(appRepo, attRepo, fs)
	defer disp.Close()

	gotAtt, content, err := svc.ReadAttachment(context.Background(), testReviewer, "att-1")
	if err != nil {
		t.Fatalf("ReadAttachment() failed: %v", err)
	}
	if gotAtt.ID != "att-1" || len(content) == 0 {
		t.Errorf("ReadAttachment() = %v, %d bytes", gotAtt.ID, len(content))
	}

	if _, _, err := svc.ReadAttachment(context.Background(), testReviewer, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ReadAttachment() missing error = %v, want ErrNotFound", err)
	}
	if _, _, err := svc.ReadAttachment(context.Background(), testOutsider, "att-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ReadAttachment() by outsider error = %v, want ErrNotFound", err)
	}
}
