// Package cli implementa taskctl, la herramienta de administración:
// migraciones, carga de datos de ejemplo y emisión de tokens.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/taskflow-api/internal/application/auth"
	"github.com/jhoicas/taskflow-api/internal/application/usecase"
	"github.com/jhoicas/taskflow-api/internal/infrastructure/storage"
	"github.com/jhoicas/taskflow-api/pkg/config"
	"github.com/jhoicas/taskflow-api/pkg/logger"
)

// Options dependencias inyectables del CLI. Los campos nil usan los valores
// de producción (config.Load y storage.Open).
type Options struct {
	LoadConfig func() (*config.Config, error)
	Open       func(ctx context.Context, cfg *config.Config, migrate bool, log *logger.Logger) (*storage.Backend, error)
}

// RootOptions flags globales.
type RootOptions struct {
	Verbose bool
	Storage string // sobreescribe STORAGE_DRIVER

	deps Options
}

// NewRootCommand crea el comando raíz de taskctl.
func NewRootCommand(deps Options) *cobra.Command {
	if deps.LoadConfig == nil {
		deps.LoadConfig = config.Load
	}
	if deps.Open == nil {
		deps.Open = storage.Open
	}
	opts := &RootOptions{deps: deps}

	cmd := &cobra.Command{
		Use:           "taskctl",
		Short:         "Administración de TaskFlow",
		Long:          "Herramienta de administración de TaskFlow: migraciones, datos de ejemplo y tokens de acceso.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log detallado en stderr")
	cmd.PersistentFlags().StringVar(&opts.Storage, "storage", "", "driver de almacenamiento (postgres|memory); por defecto STORAGE_DRIVER")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))
	return cmd
}

// env configuración y logger resueltos para un comando.
type env struct {
	cfg *config.Config
	log *logger.Logger
}

func (o *RootOptions) env(cmd *cobra.Command) (*env, error) {
	cfg, err := o.deps.LoadConfig()
	if err != nil {
		return nil, err
	}
	if o.Storage != "" {
		if o.Storage != config.StorageMemory && o.Storage != config.StoragePostgres {
			return nil, fmt.Errorf("storage inválido %q: postgres o memory", o.Storage)
		}
		cfg.Storage.Driver = o.Storage
	}
	log := logger.Nop()
	if o.Verbose {
		log = logger.New(logger.Config{Env: "development", Level: "debug", Output: cmd.ErrOrStderr()})
	}
	return &env{cfg: cfg, log: log}, nil
}

// useCases casos de uso sobre un backend abierto.
type useCases struct {
	auth     *auth.AuthUseCase
	users    *usecase.UserUseCase
	projects *usecase.ProjectUseCase
	tasks    *usecase.TaskUseCase
}

func newUseCases(e *env, b *storage.Backend) useCases {
	return useCases{
		auth: auth.NewAuthUseCase(b.Repos, b.Tx, b.Sessions, auth.JWTConfig{
			Secret:     e.cfg.JWT.Secret,
			ExpMinutes: e.cfg.JWT.Expiration,
			Issuer:     e.cfg.JWT.Issuer,
		}, e.log),
		users:    usecase.NewUserUseCase(b.Repos, b.Tx, e.log),
		projects: usecase.NewProjectUseCase(b.Repos, b.Tx, e.log),
		tasks:    usecase.NewTaskUseCase(b.Repos, b.Tx, e.log),
	}
}
