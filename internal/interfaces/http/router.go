package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/taskflow-api/internal/application/analytics"
	"github.com/jhoicas/taskflow-api/internal/application/auth"
	"github.com/jhoicas/taskflow-api/internal/application/usecase"
	"github.com/jhoicas/taskflow-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	ProjectUC   *usecase.ProjectUseCase
	TaskUC      *usecase.TaskUseCase
	UserUC      *usecase.UserUseCase
	DashboardUC *analytics.DashboardUseCase
	ReportUC    *analytics.ReportUseCase
	// Resolver por defecto es AuthUC; se sobreescribe en tests.
	Resolver ActorResolver
	Metrics  *Metrics
	Logger   *logger.Logger
}

// AppConfig parámetros del servidor Fiber.
type AppConfig struct {
	Name        string
	BodyLimitMB int
	CORSOrigins string
	MetricsPath string
}

// NewApp construye la aplicación Fiber con request logger, recover, métricas,
// /health y las rutas de la API.
func NewApp(cfg AppConfig, deps RouterDeps) *fiber.App {
	bodyLimit := cfg.BodyLimitMB
	if bodyLimit <= 0 {
		bodyLimit = 4
	}
	app := fiber.New(fiber.Config{
		AppName:      cfg.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    bodyLimit * 1024 * 1024,
		ErrorHandler: ErrorHandler,
	})
	app.Use(RequestLogger(deps.Logger))
	app.Use(recover.New())
	if cfg.CORSOrigins != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins: cfg.CORSOrigins,
			AllowHeaders: "Origin, Content-Type, Accept, Authorization",
			AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
		}))
	}
	if deps.Metrics != nil {
		app.Use(deps.Metrics.Middleware())
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, deps.Metrics.Handler())
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.Name})
	})

	Router(app, deps)
	return app
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	resolver := deps.Resolver
	if resolver == nil {
		resolver = deps.AuthUC
	}
	requireAuth := AuthMiddleware(resolver)

	// Auth: login, alta de organización y logout son públicos
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/register-tenant", authHandler.RegisterTenant)
	authGroup.Post("/logout", authHandler.Logout)
	authGroup.Get("/me", requireAuth, authHandler.Me)

	// Projects
	projects := api.Group("/projects", requireAuth)
	projectHandler := NewProjectHandler(deps.ProjectUC, deps.DashboardUC, deps.ReportUC)
	projects.Post("/", projectHandler.Create)
	projects.Get("/", projectHandler.List)
	projects.Get("/:id", projectHandler.GetByID)
	projects.Patch("/:id", projectHandler.Update)
	projects.Delete("/:id", projectHandler.Delete)
	projects.Get("/:id/stats", projectHandler.Stats)
	projects.Get("/:id/report", projectHandler.Report)

	// Tasks
	tasks := api.Group("/tasks", requireAuth)
	taskHandler := NewTaskHandler(deps.TaskUC)
	tasks.Post("/", taskHandler.Create)
	tasks.Get("/", taskHandler.List)
	tasks.Get("/:id", taskHandler.GetByID)
	tasks.Patch("/:id", taskHandler.UpdateStatus)
	tasks.Delete("/:id", taskHandler.Delete)

	// Users
	users := api.Group("/users", requireAuth)
	userHandler := NewUserHandler(deps.UserUC)
	users.Post("/", userHandler.Create)
	users.Get("/", userHandler.List)
	users.Get("/:id", userHandler.GetByID)
	users.Patch("/:id", userHandler.Update)
	users.Delete("/:id", userHandler.Delete)

	// Dashboard
	if deps.DashboardUC != nil {
		dashboardHandler := NewDashboardHandler(deps.DashboardUC)
		api.Get("/dashboard", requireAuth, dashboardHandler.GetSummary)
	}
}
