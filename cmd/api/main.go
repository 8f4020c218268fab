// @title           TaskFlow API
// @version         1.0
// @description     API multi-tenant de proyectos y tareas.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"

	_ "github.com/jhoicas/taskflow-api/docs"
	appanalytics "github.com/jhoicas/taskflow-api/internal/application/analytics"
	"github.com/jhoicas/taskflow-api/internal/application/auth"
	"github.com/jhoicas/taskflow-api/internal/application/usecase"
	infrapdf "github.com/jhoicas/taskflow-api/internal/infrastructure/pdf"
	"github.com/jhoicas/taskflow-api/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/taskflow-api/internal/interfaces/http"
	"github.com/jhoicas/taskflow-api/pkg/config"
	"github.com/jhoicas/taskflow-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}

	ctx := context.Background()
	if cfg.Storage.Driver == config.StorageMemory {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
	}
	backend, err := storage.Open(ctx, cfg, cfg.DB.AutoMigrate, log.Component("storage"))
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento")
	}
	defer backend.Close()
	repos, txRunner := backend.Repos, backend.Tx

	authUC := auth.NewAuthUseCase(repos, txRunner, backend.Sessions, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log.Component("auth"))
	projectUC := usecase.NewProjectUseCase(repos, txRunner, log.Component("projects"))
	taskUC := usecase.NewTaskUseCase(repos, txRunner, log.Component("tasks"))
	userUC := usecase.NewUserUseCase(repos, txRunner, log.Component("users"))
	dashboardUC := appanalytics.NewDashboardUseCase(repos)

	// PDF: reporte de avance por proyecto
	reportUC := appanalytics.NewReportUseCase(repos, infrapdf.NewMarotoReportGenerator(cfg.Sync.BaseURL))

	var metrics *httpRouter.Metrics
	if cfg.Metrics.Enabled {
		metrics = httpRouter.NewMetrics("taskflow")
	}

	app := httpRouter.NewApp(httpRouter.AppConfig{
		Name:        cfg.App.Name,
		BodyLimitMB: cfg.HTTP.BodyLimitMB,
		CORSOrigins: cfg.HTTP.CORSOrigins,
		MetricsPath: cfg.Metrics.Path,
	}, httpRouter.RouterDeps{
		AuthUC:      authUC,
		ProjectUC:   projectUC,
		TaskUC:      taskUC,
		UserUC:      userUC,
		DashboardUC: dashboardUC,
		ReportUC:    reportUC,
		Metrics:     metrics,
		Logger:      log.Component("http"),
	})

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "TaskFlow API",
	}))

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
