package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk/internal/api/http"
	"github.com/spec-kit/helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/markup"
	"github.com/spec-kit/helpdesk/internal/observability"
	"github.com/spec-kit/helpdesk/internal/persistence"
	"github.com/spec-kit/helpdesk/internal/repository"
	"github.com/spec-kit/helpdesk/internal/service"
	"github.com/spec-kit/helpdesk/internal/worker"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := observability.NewLogger(cfg.Logger, cfg.App)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer logger.Sync() //nolint:errcheck
			return serve(cmd.Context(), cfg, logger)
		},
	}
}

func serve(parent context.Context, cfg *config.Config, logger *zap.Logger) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.Pool, logger); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	authz, err := auth.NewAuthorizer(auth.DefaultPolicies)
	if err != nil {
		return err
	}
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL())
	renderer := markup.NewRenderer()
	tx := persistence.NewTxManager(pg.Pool)

	db := pg.Pool
	ticketRepo := repository.NewTicketRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	userRepo := repository.NewUserRepository(db)
	departmentRepo := repository.NewDepartmentRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	priorityRepo := repository.NewPriorityRepository(db)
	statusRepo := repository.NewStatusRepository(db)

	dispatcher := events.NewInMemoryDispatcher(logger)
	bus := events.NewRedisBus(redis.Client, cfg.Notification.Channel, logger)
	notifications := service.NewNotificationService(dispatcher, bus, metrics, logger, cfg.Notification)
	worker.StartNotificationWorker(ctx, notifications, bus, cfg.Notification.Consume, logger)

	tickets := service.NewTicketService(service.TicketDependencies{
		TicketRepo:     ticketRepo,
		CommentRepo:    commentRepo,
		AttachmentRepo: repository.NewAttachmentRepository(db),
		FeedbackRepo:   repository.NewFeedbackRepository(db),
		UserRepo:       userRepo,
		DepartmentRepo: departmentRepo,
		TeamRepo:       teamRepo,
		CategoryRepo:   categoryRepo,
		PriorityRepo:   priorityRepo,
		StatusRepo:     statusRepo,
		Tx:             tx,
		Sanitizer:      renderer,
		Dispatcher:     dispatcher,
		Logger:         logger,
	})
	assignments := service.NewAssignmentService(service.AssignmentDependencies{
		TicketRepo:  ticketRepo,
		CommentRepo: commentRepo,
		UserRepo:    userRepo,
		Tx:          tx,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	users := service.NewUserService(service.UserDependencies{
		Users:       userRepo,
		Roles:       repository.NewRoleRepository(db),
		Departments: departmentRepo,
		Teams:       teamRepo,
		Tx:          tx,
		BcryptCost:  cfg.Auth.BcryptCost,
		Logger:      logger,
	})
	authService := service.NewAuthService(service.AuthDependencies{
		Users:      userRepo,
		Tokens:     tokens,
		BcryptCost: cfg.Auth.BcryptCost,
		Logger:     logger,
	})
	faq := service.NewFAQService(service.FAQDependencies{
		Categories: repository.NewFAQCategoryRepository(db),
		Items:      repository.NewFAQItemRepository(db),
		Users:      userRepo,
		Renderer:   renderer,
		Logger:     logger,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Auth:    handlers.NewAuthHandler(authService),
		Tickets: handlers.NewTicketsHandler(tickets, assignments, authz),
		Reference: handlers.NewReferenceHandler(handlers.ReferenceCatalogs{
			Departments: service.NewDepartmentService(departmentRepo, logger),
			Teams:       service.NewTeamService(teamRepo, departmentRepo, logger),
			Categories:  service.NewCategoryService(categoryRepo, logger),
			Priorities:  service.NewPriorityService(priorityRepo, ticketRepo, logger),
			Statuses:    service.NewStatusService(statusRepo, ticketRepo, logger),
		}, authz),
		Users:          handlers.NewUsersHandler(users),
		FAQ:            handlers.NewFAQHandler(faq, authz),
		Reports:        handlers.NewReportsHandler(service.NewReportService(tickets, logger)),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, userRepo),
		Authorizer:     authz,
		Metrics:        metrics.Handler(),
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()))
		errCh <- app.Listen(cfg.App.Addr())
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("fiber listen: %w", err)
		}
	}

	cancel()
	return app.ShutdownWithTimeout(10 * time.Second)
}
