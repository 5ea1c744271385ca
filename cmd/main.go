package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/senyabanana/tender-evaluation/internal/db"
	"github.com/senyabanana/tender-evaluation/internal/handlers"
	"github.com/senyabanana/tender-evaluation/internal/identity"
	"github.com/senyabanana/tender-evaluation/internal/notification"
	"github.com/senyabanana/tender-evaluation/internal/repository"
	"github.com/senyabanana/tender-evaluation/internal/repository/memory"
	"github.com/senyabanana/tender-evaluation/internal/router"
	"github.com/senyabanana/tender-evaluation/internal/router/config"
	"github.com/senyabanana/tender-evaluation/internal/services"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal("cannot load config: ", err)
	}

	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	uow, closeStorage, err := initStorage(ctx, cfg, logger)
	if err != nil {
		config.LogError(logger, "main", "initStorage", cfg.StorageDriver, nil, err)
		logger.Exit(1)
	}
	defer closeStorage()

	var sender notification.Sender = notification.NewLogSender(logger)
	if cfg.SendGridAPIKey != "" {
		sender = notification.NewSendGridSender(cfg.SendGridAPIKey, cfg.MailFromAddress, cfg.MailFromName, logger)
	}

	policy := services.ApprovalPolicy{
		Levels:                cfg.ApprovalLevels,
		ChangeReasonMinLength: cfg.ApprovalChangeReasonMin,
		CommentMaxLength:      cfg.ApprovalCommentMax,
	}
	engine := services.NewApprovalWorkflowEngine(uow, sender, policy, cfg.NotifyTimeout, logger)

	routes := router.InitRoutes(router.Handlers{
		Scoring: handlers.NewScoringHandler(
			services.NewCommercialScoringService(uow, logger),
			services.NewCombinedScoringService(uow, logger),
			services.NewSensitivityAnalysisService(uow),
			logger, cfg.RequestTimeout),
		Approval: handlers.NewApprovalHandler(engine, logger, cfg.RequestTimeout),
		Bids:     handlers.NewBidHandler(services.NewBidOpeningService(uow, logger), logger, cfg.RequestTimeout),
		Audit:    handlers.NewAuditHandler(services.NewAuditService(uow), logger, cfg.RequestTimeout),
	}, identity.NewProvider(uow, logger, cfg.RequestTimeout))

	server := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           routes,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("graceful shutdown failed")
		}
	}()

	logger.WithFields(logrus.Fields{
		"address": cfg.ServerAddress,
		"storage": cfg.StorageDriver,
	}).Info("server is listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		config.LogError(logger, "main", "ListenAndServe", cfg.ServerAddress, nil, err)
		logger.Exit(1)
	}
}

// initStorage выбирает хранилище по STORAGE_DRIVER и для postgres применяет миграции.
func initStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (repository.UnitOfWork, func(), error) {
	if cfg.StorageDriver == config.StorageDriverMemory {
		logger.Warn("using in-memory storage, data will not survive a restart")
		return memory.NewStore(), func() {}, nil
	}

	if err := db.RunMigrations(cfg.MigrationURL, cfg.PostgresConn); err != nil {
		return nil, nil, err
	}
	logger.Info("db migrated successfully")

	dbPool, err := db.InitDb(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return repository.NewPostgresUnitOfWork(dbPool), dbPool.Close, nil
}
