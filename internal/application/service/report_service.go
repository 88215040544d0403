package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/application/port"
	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/application/workflow"
	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/domain/entity"
)

// RegisterRenderer turns decided applications into a workbook
type RegisterRenderer interface {
	Build(apps []*entity.Application) ([]byte, error)
}

// ReportService produces the travel register export
type ReportService interface {
	// RegisterExport renders decided applications in [from, to) and returns
	// the workbook bytes together with a download filename
	RegisterExport(ctx context.Context, actor entity.Actor, from, to time.Time) ([]byte, string, error)
}

type reportServiceImpl struct {
	appRepo  port.ApplicationRepository
	renderer RegisterRenderer
	logger   Logger
}

// NewReportService creates a new ReportService
func NewReportService(appRepo port.ApplicationRepository, renderer RegisterRenderer, logger Logger) ReportService {
	return &reportServiceImpl{
		appRepo:  appRepo,
		renderer: renderer,
		logger:   logger,
	}
}

func (s *reportServiceImpl) RegisterExport(ctx context.Context, actor entity.Actor, from, to time.Time) ([]byte, string, error) {
	if !actor.CanReview() {
		return nil, "", ErrForbidden
	}
	if from.IsZero() || to.IsZero() {
		return nil, "", fmt.Errorf("%w: report range requires both from and to dates", workflow.ErrValidationFailed)
	}
	if to.Before(from) {
		return nil, "", fmt.Errorf("%w: report range ends before it starts", workflow.ErrValidationFailed)
	}

	apps, err := s.appRepo.ListDecidedBetween(ctx, from, to)
	if err != nil {
		s.logger.Error("Failed to list decided applications", "error", err, "from", from, "to", to)
		return nil, "", fmt.Errorf("list decided applications: %w", err)
	}

	content, err := s.renderer.Build(apps)
	if err != nil {
		s.logger.Error("Failed to build register", "error", err, "application_count", len(apps))
		return nil, "", fmt.Errorf("build register: %w", err)
	}

	filename := fmt.Sprintf("travel-register-%s-%s.xlsx",
		from.Format("20060102"), to.Format("20060102"))

	s.logger.Info("Register exported",
		"from", from, "to", to,
		"application_count", len(apps),
		"actor_id", actor.ID,
	)
	return content, filename, nil
}
