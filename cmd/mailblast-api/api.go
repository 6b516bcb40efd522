// Package main provides the Mailblast API server implementation.
package main

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/robfig/cron/v3"

	"github.com/ana-fx/mail-blast-sub001/pkg/eventbus"
	"github.com/ana-fx/mail-blast-sub001/pkg/persistence"
	"github.com/ana-fx/mail-blast-sub001/pkg/registry"
	"github.com/ana-fx/mail-blast-sub001/pkg/services"
	"github.com/ana-fx/mail-blast-sub001/pkg/web"
)

// Executions older than this are swept hourly.
const executionRetention = 30 * 24 * time.Hour

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	registry    *registry.Registry
	eventBus    eventbus.EventBus
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	registry *registry.Registry,
	eventBus eventbus.EventBus,
) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		registry:    registry,
		eventBus:    eventBus,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() (*fiber.App, *services.ExecutionService) {
	flowService := services.NewFlowService(a.persistence, a.eventBus, a.logger)
	flowValidator := services.NewFlowValidator(a.registry)
	publishingService := services.NewPublishingService(a.persistence, flowValidator, a.eventBus, a.logger)
	templateService := services.NewTemplateService(a.persistence, a.eventBus, a.logger)
	executionService := services.NewExecutionService(a.persistence, a.eventBus, a.logger)

	handlers := web.NewAPIHandlers(
		flowService,
		publishingService,
		templateService,
		executionService,
		a.validate,
		a.registry,
	)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Mailblast API")
	})

	handlers.RegisterRoutes(app)

	return app, executionService
}

func (a *API) Start(ctx context.Context, port int) error {
	app, executionService := a.App()

	sweeper := cron.New()

	if _, err := sweeper.AddFunc("@every 1h", func() {
		if _, err := executionService.PruneExecutions(ctx, executionRetention); err != nil {
			a.logger.ErrorContext(ctx, "Execution retention sweep failed", "error", err)
		}
	}); err != nil {
		return err
	}

	sweeper.Start()
	defer sweeper.Stop()

	return app.Listen(":" + strconv.Itoa(port))
}
