// Package storage abre el Entity Store y el store de sesiones según la
// configuración. Lo comparten la API y taskctl.
package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/taskflow-api/internal/application/ports"
	"github.com/jhoicas/taskflow-api/internal/infrastructure/memory"
	"github.com/jhoicas/taskflow-api/internal/infrastructure/postgres"
	"github.com/jhoicas/taskflow-api/internal/infrastructure/session"
	"github.com/jhoicas/taskflow-api/pkg/config"
	"github.com/jhoicas/taskflow-api/pkg/logger"
)

// Backend repositorios, transacciones y sesiones abiertos.
type Backend struct {
	Repos    ports.Repos
	Tx       ports.TxRunner
	Sessions ports.SessionStore
	// Pool es nil con el driver en memoria.
	Pool *pgxpool.Pool

	closers []func()
}

// Open abre el backend. Con migrate=true y driver postgres aplica las
// migraciones embebidas pendientes.
func Open(ctx context.Context, cfg *config.Config, migrate bool, log *logger.Logger) (*Backend, error) {
	if log == nil {
		log = logger.Nop()
	}
	b := &Backend{}

	switch cfg.Storage.Driver {
	case config.StorageMemory:
		store := memory.NewStore()
		b.Repos, b.Tx = store.Repos(), store
	case config.StoragePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		b.closers = append(b.closers, pool.Close)
		if migrate {
			applied, err := postgres.ApplyMigrations(ctx, pool)
			if err != nil {
				b.Close()
				return nil, fmt.Errorf("aplicar migraciones: %w", err)
			}
			if len(applied) > 0 {
				log.Info().Strs("migrations", applied).Msg("migraciones aplicadas")
			}
		}
		b.Pool = pool
		b.Repos, b.Tx = postgres.NewRepos(pool), postgres.NewTxRunner(pool)
	default:
		return nil, fmt.Errorf("driver de almacenamiento desconocido %q", cfg.Storage.Driver)
	}

	if cfg.Redis.Enabled() {
		redisStore, err := session.NewRedisStore(ctx, cfg.Redis.URL)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("conexión a Redis: %w", err)
		}
		b.closers = append(b.closers, func() { _ = redisStore.Close() })
		b.Sessions = redisStore
	} else {
		b.Sessions = session.NewMemoryStore()
	}
	return b, nil
}

// Close libera las conexiones en orden inverso.
func (b *Backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
	b.closers = nil
}
