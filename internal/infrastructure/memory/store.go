// Package memory implementa el Entity Store en memoria con las mismas
// garantías que el backend PostgreSQL: transacciones atómicas, bloqueo por
// entidad, unicidad y claves foráneas verificadas al confirmar.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/taskflow-api/internal/application/ports"
	"github.com/jhoicas/taskflow-api/internal/domain"
	"github.com/jhoicas/taskflow-api/internal/domain/entity"
)

type kind uint8

const (
	kindTenant kind = iota + 1
	kindUser
	kindProject
	kindTask
)

func (k kind) String() string {
	switch k {
	case kindTenant:
		return "tenant"
	case kindUser:
		return "user"
	case kindProject:
		return "project"
	default:
		return "task"
	}
}

type key struct {
	kind kind
	id   string
}

func (k key) String() string { return k.kind.String() + ":" + k.id }

// row es un registro confirmado; seq conserva el orden de inserción para
// desempatar listados con el mismo created_at.
type row struct {
	value any
	seq   uint64
}

// Store es el almacén en memoria. Es seguro para uso concurrente.
type Store struct {
	mu    sync.RWMutex
	rows  map[key]row
	seq   uint64
	locks *keyedLock
}

var _ ports.TxRunner = (*Store)(nil)

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{rows: make(map[key]row), locks: newKeyedLock()}
}

// Repos devuelve repositorios fuera de transacción: cada escritura se
// confirma de inmediato como una transacción propia.
func (s *Store) Repos() ports.Repos {
	return reposFor(s, nil)
}

// Run ejecuta fn en una transacción. Las escrituras se acumulan en un diario
// y se aplican todas juntas al confirmar; si fn o la verificación fallan no
// se aplica ninguna.
func (s *Store) Run(ctx context.Context, fn func(repos ports.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t := newTx(s)
	defer t.release()

	if err := fn(reposFor(s, t)); err != nil {
		return err
	}
	return s.commit(t)
}

func (s *Store) autocommit(fn func(t *tx) error) error {
	t := newTx(s)
	defer t.release()
	if err := fn(t); err != nil {
		return err
	}
	return s.commit(t)
}

// commit verifica todo el diario y después lo aplica, bajo el lock de escritura.
func (s *Store) commit(t *tx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, k := range t.order {
		if err := s.check(t, k, t.writes[k]); err != nil {
			return err
		}
	}
	for _, k := range t.order {
		w := t.writes[k]
		if w.deleted {
			delete(s.rows, k)
			continue
		}
		if existing, ok := s.rows[k]; ok {
			s.rows[k] = row{value: w.value, seq: existing.seq}
			continue
		}
		s.seq++
		s.rows[k] = row{value: w.value, seq: s.seq}
	}
	return nil
}

func (s *Store) check(t *tx, k key, w *write) error {
	_, exists := s.rows[k]
	if w.deleted {
		return nil
	}
	if w.created && exists {
		return fmt.Errorf("memory: %s ya existe", k)
	}
	if !w.created && !exists {
		return domain.NotFound(k.kind.String() + " no encontrado")
	}

	switch v := w.value.(type) {
	case entity.Tenant:
		for rk, other := range s.after(t, kindTenant) {
			if rk != k && other.(entity.Tenant).Subdomain == v.Subdomain {
				return domain.Validation(domain.CodeSubdomainTaken, "el subdominio ya está en uso")
			}
		}
	case entity.User:
		if !s.existsAfter(t, key{kindTenant, v.TenantID}) {
			return domain.NotFound("organización no encontrada")
		}
		for rk, other := range s.after(t, kindUser) {
			u := other.(entity.User)
			if rk != k && u.TenantID == v.TenantID && u.Email == v.Email {
				return domain.Validation(domain.CodeEmailExists, "el email ya está registrado en la organización")
			}
		}
	case entity.Project:
		if !s.existsAfter(t, key{kindTenant, v.TenantID}) {
			return domain.NotFound("organización no encontrada")
		}
	case entity.Task:
		if !s.existsAfter(t, key{kindProject, v.ProjectID}) {
			return domain.NotFound("proyecto no encontrado")
		}
	}
	return nil
}

// after devuelve el estado de un tipo tal como quedaría tras aplicar t.
// Se llama con s.mu tomado.
func (s *Store) after(t *tx, k kind) map[key]any {
	out := make(map[key]any)
	for rk, r := range s.rows {
		if rk.kind == k {
			out[rk] = r.value
		}
	}
	for wk, w := range t.writes {
		if wk.kind != k {
			continue
		}
		if w.deleted {
			delete(out, wk)
		} else {
			out[wk] = w.value
		}
	}
	return out
}

// existsAfter indica si k existirá una vez aplicado el diario de t.
func (s *Store) existsAfter(t *tx, k key) bool {
	if w, ok := t.writes[k]; ok {
		return !w.deleted
	}
	_, ok := s.rows[k]
	return ok
}

// snapshot copia los registros confirmados de un tipo.
func (s *Store) snapshot(k kind) map[key]row {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[key]row)
	for rk, r := range s.rows {
		if rk.kind == k {
			out[rk] = r
		}
	}
	return out
}

func (s *Store) get(k key) (row, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rows[k]
	return r, ok
}
