package main

import (
	"log/slog"
	"strconv"

	"github.com/dukex/pathway/pkg/metrics"
	"github.com/dukex/pathway/pkg/services"
	"github.com/dukex/pathway/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

type API struct {
	logger   *slog.Logger
	options  services.Options
	validate *validator.Validate
}

func NewAPI(logger *slog.Logger, options services.Options) *API {
	if options.Metrics == nil {
		options.Metrics = metrics.New()
	}

	return &API{
		logger:   logger,
		options:  options,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(web.NewServices(a.options), a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Pathway API")
	})

	app.Get("/metrics", adaptor.HTTPHandler(a.options.Metrics.Handler()))

	handlers.Routes(app)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	a.logger.Info("Listening", "port", port)

	err := app.Listen(":" + strconv.Itoa(port))

	return err
}
