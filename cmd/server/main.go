package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/application/dispatcher"
	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/application/service"
	appworkflow "github.com/ProFiveCK/nr-travel-webapp-sub000/internal/application/workflow"
	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/config"
	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/domain/event"
	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/infrastructure/identity"
	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/infrastructure/notify"
	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/infrastructure/persistence/repository"
	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/infrastructure/persistence/seed"
	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/infrastructure/persistence/sqlite"
	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/infrastructure/storage"
	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/infrastructure/worker"
	httpserver "github.com/ProFiveCK/nr-travel-webapp-sub000/internal/interfaces/http"
	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/report"
	"github.com/ProFiveCK/nr-travel-webapp-sub000/pkg/database"
	"github.com/ProFiveCK/nr-travel-webapp-sub000/pkg/utils"
)

func main() {
	// Secrets can live in a .env file next to the binary
	_ = gotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting travel approval service",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	if dir := filepath.Dir(cfg.Database.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Fatal("Failed to create database directory", zap.Error(err))
		}
	}

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	sqliteDB := sqlite.NewDB(db.DB, logger)

	// Repositories
	appRepo := repository.NewApplicationRepository(sqliteDB, logger)
	userRepo := repository.NewUserRepository(sqliteDB, logger)
	attachmentRepo := repository.NewAttachmentRepository(sqliteDB, logger)
	notificationRepo := repository.NewNotificationRepository(sqliteDB, logger)
	departmentRepo := repository.NewDepartmentRepository(sqliteDB, logger)

	if cfg.Seed.Enabled {
		seeder := seed.NewSeeder(userRepo, departmentRepo, logger)
		err := seeder.Run(context.Background(), seed.AdminOptions{
			Username: cfg.Seed.AdminUsername,
			Password: cfg.Seed.AdminPassword,
			Name:     cfg.Seed.AdminName,
			Email:    cfg.Seed.AdminEmail,
		})
		if err != nil {
			logger.Fatal("Failed to seed database", zap.Error(err))
		}
	}

	// Attachment storage
	fileStorage := storage.NewLocalFileStorage(cfg.Storage.BaseDir, logger)
	folderManager := storage.NewLocalFolderManager(cfg.Storage.BaseDir, logger)

	kv := utils.NewKVLogger(logger)

	disp := dispatcher.NewDispatcher(dispatcher.WithLogger(kv))

	engine := appworkflow.NewEngine(
		appworkflow.WithApplicantSubmissionNotice(cfg.Notify.ApplicantOnSubmission),
	)

	tokens := identity.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authenticator := identity.NewLocalAuthenticator(userRepo, logger)

	// Application services
	authService := service.NewAuthService(authenticator, tokens, kv)
	applicationService := service.NewApplicationService(appRepo, attachmentRepo, fileStorage, folderManager, disp, kv)
	decisionService := service.NewDecisionService(appRepo, engine, sqliteDB, disp, kv)
	reportService := service.NewReportService(appRepo, report.NewRegisterBuilder(logger), kv)
	notificationService := service.NewNotificationService(notificationRepo, kv)
	maintenanceService := service.NewMaintenanceService(appRepo, notificationRepo, cfg.Archive.OutboxRetention, kv)
	directoryService := service.NewDirectoryService(departmentRepo, kv)

	disp.SubscribeNamed(event.TypeApplicationTransitioned, "notification-outbox", notificationService.HandleTransitioned)
	disp.SubscribeNamed(event.TypeApplicationArchived, "archive-audit", func(ctx context.Context, evt *event.Event) error {
		logger.Info("Application archived",
			zap.String("application_id", evt.ApplicationID),
			zap.String("action", evt.GetPayloadString("action")),
			zap.Float64("total_cost", evt.GetPayloadFloat("total_cost")))
		return nil
	})

	// Mail delivery
	mailer, err := notify.NewSMTPMailer(notify.SMTPConfig{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize mailer", zap.Error(err))
	}
	renderer := notify.NewRenderer(cfg.Notify.BaseURL)

	outboxWorker := notify.NewOutboxWorker(notify.OutboxWorkerConfig{
		PollInterval: cfg.Notify.PollInterval,
		BatchSize:    cfg.Notify.BatchSize,
		SendTimeout:  cfg.Notify.SendTimeout,
		MaxAttempts:  cfg.Notify.MaxAttempts,
	}, notificationRepo, appRepo, userRepo, mailer, renderer, logger)

	manager := worker.NewWorkerManager(logger)
	manager.Register(outboxWorker)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("Shutdown signal received")
		cancel()
	}()

	if err := manager.StartAll(ctx); err != nil {
		logger.Fatal("Failed to start workers", zap.Error(err))
	}

	// Scheduled maintenance
	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.Archive.SweepSchedule, func() {
		if n, err := maintenanceService.SweepLegacyApproved(context.Background()); err != nil {
			logger.Error("Legacy status sweep failed", zap.Error(err))
		} else if n > 0 {
			logger.Info("Legacy status sweep completed", zap.Int64("archived", n))
		}
	})
	if err != nil {
		logger.Fatal("Invalid sweep schedule", zap.Error(err))
	}
	_, err = scheduler.AddFunc(cfg.Archive.PurgeSchedule, func() {
		if n, err := maintenanceService.PurgeSentNotifications(context.Background()); err != nil {
			logger.Error("Outbox purge failed", zap.Error(err))
		} else if n > 0 {
			logger.Info("Outbox purge completed", zap.Int64("purged", n))
		}
	})
	if err != nil {
		logger.Fatal("Invalid purge schedule", zap.Error(err))
	}
	scheduler.Start()

	server := httpserver.NewServer(httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, authService, applicationService, decisionService, reportService, directoryService, tokens, kv)

	if err := server.Start(ctx); err != nil {
		logger.Error("HTTP server stopped with error", zap.Error(err))
	}

	logger.Info("Shutting down...")

	<-scheduler.Stop().Done()

	if err := manager.StopAll(); err != nil {
		logger.Error("Worker shutdown error", zap.Error(err))
	}

	if err := disp.Close(); err != nil {
		logger.Error("Dispatcher shutdown error", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}
