package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/application/service"
	appworkflow "github.com/ProFiveCK/nr-travel-webapp-sub000/internal/application/workflow"
	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/domain/entity"
	domainwf "github.com/ProFiveCK/nr-travel-webapp-sub000/internal/domain/workflow"
)

const (
	apiVersion     = "1.0.0"
	maxUploadBytes = 20 << 20

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	dateQueryFormat = "2006-01-02"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	authService        service.AuthService
	applicationService service.ApplicationService
	decisionService    service.DecisionService
	reportService      service.ReportService
	directoryService   service.DirectoryService
	logger             Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	authService service.AuthService,
	applicationService service.ApplicationService,
	decisionService service.DecisionService,
	reportService service.ReportService,
	directoryService service.DirectoryService,
	logger Logger,
) *Handlers {
	return &Handlers{
		authService:        authService,
		applicationService: applicationService,
		decisionService:    decisionService,
		reportService:      reportService,
		directoryService:   directoryService,
		logger:             logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// applicationDetail decorates an application with its resolved department
type applicationDetail struct {
	*entity.Application
	Department *entity.Department `json:"department,omitempty"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   apiVersion,
		},
	})
}

// Login handles POST /api/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}
	if req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "username and password are required",
		})
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    result,
	})
}

// CreateApplication handles POST /api/applications
func (h *Handlers) CreateApplication(c *gin.Context) {
	var input service.ApplicationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}

	app, err := h.applicationService.CreateDraft(c.Request.Context(), actorFromContext(c), input)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    app,
	})
}

// UpdateApplication handles PUT /api/applications/:id
func (h *Handlers) UpdateApplication(c *gin.Context) {
	var input service.ApplicationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}

	app, err := h.applicationService.UpdateDraft(c.Request.Context(), actorFromContext(c), c.Param("id"), input)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    app,
	})
}

// GetApplication handles GET /api/applications/:id
func (h *Handlers) GetApplication(c *gin.Context) {
	ctx := c.Request.Context()

	app, err := h.applicationService.Get(ctx, actorFromContext(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	dept, err := h.directoryService.GetDepartment(ctx, app.DepartmentCode)
	if err != nil {
		h.logger.Error("Failed to resolve department", "error", err, "code", app.DepartmentCode)
		dept = nil
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: applicationDetail{
			Application: app,
			Department:  dept,
		},
	})
}

// ListApplications handles GET /api/applications. Without a status filter
// it lists the caller's own applications, with one it lists by status
// (privileged roles only).
func (h *Handlers) ListApplications(c *gin.Context) {
	actor := actorFromContext(c)
	ctx := c.Request.Context()

	var apps []*entity.Application
	var err error
	if status := c.Query("status"); status != "" {
		apps, err = h.applicationService.ListByStatus(ctx, actor, status)
	} else {
		apps, err = h.applicationService.ListOwn(ctx, actor)
	}
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    apps,
	})
}

// Decide handles POST /api/applications/:id/decide
func (h *Handlers) Decide(c *gin.Context) {
	var input service.DecideInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}

	app, err := h.decisionService.Decide(c.Request.Context(), actorFromContext(c), c.Param("id"), input)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    app,
	})
}

// GetApprovalLog handles GET /api/applications/:id/log
func (h *Handlers) GetApprovalLog(c *gin.Context) {
	log, err := h.applicationService.GetLog(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    log,
	})
}

// UploadAttachment handles POST /api/applications/:id/attachments
func (h *Handlers) UploadAttachment(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "file is required",
		})
		return
	}
	if header.Size > maxUploadBytes {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   fmt.Sprintf("file exceeds the %d MB limit", maxUploadBytes>>20),
		})
		return
	}

	file, err := header.Open()
	if err != nil {
		h.logger.Error("Failed to open upload", "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "failed to read uploaded file",
		})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("Failed to read upload", "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "failed to read uploaded file",
		})
		return
	}

	att, err := h.applicationService.AddAttachment(
		c.Request.Context(),
		actorFromContext(c),
		c.Param("id"),
		c.PostForm("kind"),
		&entity.AttachmentFile{
			Content:  content,
			FileName: header.Filename,
			MimeType: header.Header.Get("Content-Type"),
			Size:     header.Size,
		},
	)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    att,
	})
}

// ListAttachments handles GET /api/applications/:id/attachments
func (h *Handlers) ListAttachments(c *gin.Context) {
	attachments, err := h.applicationService.ListAttachments(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    attachments,
	})
}

// DownloadAttachment handles GET /api/attachments/:id
func (h *Handlers) DownloadAttachment(c *gin.Context) {
	att, content, err := h.applicationService.ReadAttachment(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	contentType := att.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", att.FileName))
	c.Data(http.StatusOK, contentType, content)
}

// ReviewerQueue handles GET /api/queues/reviewer
func (h *Handlers) ReviewerQueue(c *gin.Context) {
	apps, err := h.decisionService.ReviewerQueue(c.Request.Context(), actorFromContext(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    apps,
	})
}

// MinisterQueue handles GET /api/queues/minister
func (h *Handlers) MinisterQueue(c *gin.Context) {
	apps, err := h.decisionService.MinisterQueue(c.Request.Context(), actorFromContext(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    apps,
	})
}

// ExportRegister handles GET /api/reports/register?from=&to=
func (h *Handlers) ExportRegister(c *gin.Context) {
	from, err := time.Parse(dateQueryFormat, c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "from must be a date in YYYY-MM-DD form",
		})
		return
	}
	to, err := time.Parse(dateQueryFormat, c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "to must be a date in YYYY-MM-DD form",
		})
		return
	}

	content, filename, err := h.reportService.RegisterExport(c.Request.Context(), actorFromContext(c), from, to)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, content)
}

// ListDepartments handles GET /api/departments
func (h *Handlers) ListDepartments(c *gin.Context) {
	departments, err := h.directoryService.ListDepartments(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    departments,
	})
}

// respondError maps service errors to HTTP status codes. Validation and
// transition errors carry their message to the client, everything else
// stays generic.
func (h *Handlers) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "not found"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, Response{Success: false, Error: "forbidden"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, Response{Success: false, Error: "invalid credentials"})
	case errors.Is(err, appworkflow.ErrValidationFailed):
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
	case errors.Is(err, domainwf.ErrInvalidTransition):
		c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error()})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error()})
	default:
		h.logger.Error("Request failed", "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "internal error"})
	}
}
