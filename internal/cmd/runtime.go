package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/observability"
	"github.com/spec-kit/helpdesk/internal/persistence"
	"github.com/spec-kit/helpdesk/internal/repository"
	"github.com/spec-kit/helpdesk/internal/service"
	"github.com/spec-kit/helpdesk/internal/worker"
)

// Runtime is the set of services the commands drive.
type Runtime struct {
	Auth       *service.AuthService
	Tickets    *service.TicketService
	Migrate    func(ctx context.Context) error
	ReportPath string
	Close      func()
}

// RuntimeFactory builds a Runtime for one command invocation.
type RuntimeFactory func(ctx context.Context) (*Runtime, error)

// DefaultRuntime connects to Postgres using the environment configuration.
// Redis is not needed: the CLI holds no sessions.
func DefaultRuntime(ctx context.Context) (*Runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	auditLogger, err := observability.NewAuditLogger(cfg.Audit)
	if err != nil {
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	logger := zap.NewNop()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	db, err := pg.DB()
	if err != nil {
		return nil, fmt.Errorf("POSTGRES_DSN must be set: %w", err)
	}

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, auditLogger))

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:   repository.NewUserRepository(db),
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  repository.NewTicketRepository(db),
		HistoryRepo: repository.NewTicketHistoryRepository(db),
		Dispatcher:  dispatcher,
		Logger:      logger,
	})

	return &Runtime{
		Auth:    authService,
		Tickets: ticketService,
		Migrate: func(ctx context.Context) error {
			return persistence.RunMigrations(ctx, pg.Pool, logger)
		},
		ReportPath: cfg.Report.CSVPath,
		Close: func() {
			pg.Close()
			_ = auditLogger.Sync()
		},
	}, nil
}
