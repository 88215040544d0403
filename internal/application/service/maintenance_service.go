package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/application/port"
)

// MaintenanceService runs the periodic housekeeping jobs: sweeping rows
// parked in the legacy APPROVED status into ARCHIVED, and purging outbox
// rows that were delivered long ago.
type MaintenanceService interface {
	SweepLegacyApproved(ctx context.Context) (int64, error)
	PurgeSentNotifications(ctx context.Context) (int64, error)
}

type maintenanceServiceImpl struct {
	appRepo          port.ApplicationRepository
	notificationRepo port.NotificationRepository
	outboxRetention  time.Duration
	logger           Logger
}

// NewMaintenanceService creates a new MaintenanceService. outboxRetention is
// how long SENT outbox rows are kept before they are purged.
func NewMaintenanceService(
	appRepo port.ApplicationRepository,
	notificationRepo port.NotificationRepository,
	outboxRetention time.Duration,
	logger Logger,
) MaintenanceService {
	return &maintenanceServiceImpl{
		appRepo:          appRepo,
		notificationRepo: notificationRepo,
		outboxRetention:  outboxRetention,
		logger:           logger,
	}
}

// SweepLegacyApproved moves applications parked in the legacy APPROVED
// status to ARCHIVED. The sweep writes no log entries, it is housekeeping
// rather than a decision.
func (s *maintenanceServiceImpl) SweepLegacyApproved(ctx context.Context) (int64, error) {
	moved, err := s.appRepo.ArchiveLegacyApproved(ctx, time.Now())
	if err != nil {
		s.logger.Error("Legacy approval sweep failed", "error", err)
		return 0, fmt.Errorf("archive legacy approved: %w", err)
	}

	if moved > 0 {
		s.logger.Info("Legacy approved applications archived", "count", moved)
	}
	return moved, nil
}

// PurgeSentNotifications removes SENT outbox rows older than the retention
// window
func (s *maintenanceServiceImpl) PurgeSentNotifications(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-s.outboxRetention)

	removed, err := s.notificationRepo.DeleteSentBefore(ctx, cutoff)
	if err != nil {
		s.logger.Error("Outbox purge failed", "error", err)
		return 0, fmt.Errorf("purge sent notifications: %w", err)
	}

	if removed > 0 {
		s.logger.Info("Sent notifications purged", "count", removed, "cutoff", cutoff)
	}
	return removed, nil
}
