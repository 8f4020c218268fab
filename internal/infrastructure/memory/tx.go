package memory

import (
	"context"
	"math"
	"sort"
)

// write es el último estado de una clave dentro de la transacción.
type write struct {
	value   any
	created bool
	deleted bool
}

// tx acumula escrituras y los locks por entidad tomados con GetForUpdate.
// Los locks se liberan al terminar Run, después de confirmar.
type tx struct {
	s      *Store
	writes map[key]*write
	order  []key
	locked map[string]struct{}
}

func newTx(s *Store) *tx {
	return &tx{s: s, writes: make(map[key]*write), locked: make(map[string]struct{})}
}

func (t *tx) release() {
	for k := range t.locked {
		t.s.locks.Unlock(k)
	}
	t.locked = nil
}

// lock toma el lock de la entidad hasta el fin de la transacción (reentrante).
func (t *tx) lock(ctx context.Context, k key) error {
	name := k.String()
	if _, ok := t.locked[name]; ok {
		return nil
	}
	if err := t.s.locks.Lock(ctx, name); err != nil {
		return err
	}
	t.locked[name] = struct{}{}
	return nil
}

func (t *tx) get(k key) (any, bool) {
	if w, ok := t.writes[k]; ok {
		return w.value, !w.deleted
	}
	r, ok := t.s.get(k)
	return r.value, ok
}

func (t *tx) put(k key, v any, created bool) {
	if w, ok := t.writes[k]; ok {
		w.value = v
		w.deleted = false
		return
	}
	t.writes[k] = &write{value: v, created: created}
	t.order = append(t.order, k)
}

func (t *tx) del(k key) {
	if w, ok := t.writes[k]; ok {
		w.deleted = true
		return
	}
	t.writes[k] = &write{deleted: true}
	t.order = append(t.order, k)
}

// list devuelve los valores visibles de un tipo en orden de inserción:
// confirmados primero, luego los creados en esta transacción.
func (t *tx) list(k kind) []any {
	rows := t.s.snapshot(k)
	for i, wk := range t.order {
		if wk.kind != k {
			continue
		}
		w := t.writes[wk]
		if w.deleted {
			delete(rows, wk)
			continue
		}
		r, ok := rows[wk]
		if !ok {
			r.seq = math.MaxUint32 + uint64(i)
		}
		r.value = w.value
		rows[wk] = r
	}

	sorted := make([]row, 0, len(rows))
	for _, r := range rows {
		sorted = append(sorted, r)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].seq < sorted[j].seq })

	out := make([]any, len(sorted))
	for i, r := range sorted {
		out[i] = r.value
	}
	return out
}
