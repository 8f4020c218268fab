package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/taskflow-api/internal/infrastructure/postgres"
	"github.com/jhoicas/taskflow-api/pkg/config"
)

// NewMigrateCommand aplica las migraciones embebidas en PostgreSQL.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Aplicar las migraciones pendientes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				return listMigrations(cmd)
			}
			return runMigrate(rootOpts, cmd)
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "solo listar las migraciones embebidas")
	return cmd
}

func listMigrations(cmd *cobra.Command) error {
	files, err := postgres.MigrationFiles()
	if err != nil {
		return err
	}
	for _, f := range files {
		fmt.Fprintln(cmd.OutOrStdout(), f)
	}
	return nil
}

func runMigrate(rootOpts *RootOptions, cmd *cobra.Command) error {
	e, err := rootOpts.env(cmd)
	if err != nil {
		return err
	}
	if e.cfg.Storage.Driver != config.StoragePostgres {
		return errors.New("migrate requiere el driver postgres")
	}

	b, err := rootOpts.deps.Open(cmd.Context(), e.cfg, false, e.log)
	if err != nil {
		return err
	}
	defer b.Close()

	applied, err := postgres.ApplyMigrations(cmd.Context(), b.Pool)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "sin migraciones pendientes")
		return nil
	}
	for _, v := range applied {
		fmt.Fprintf(cmd.OutOrStdout(), "aplicada %s\n", v)
	}
	return nil
}
