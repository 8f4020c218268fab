// Package optimistic implementa la actualización optimista del lado cliente:
// una mutación se muestra al instante como vista tentativa, se envía una única
// petición sin bloquear al llamador y luego se reconcilia con la respuesta
// autoritativa del servidor (el servidor gana) o se revierte al último
// snapshot autoritativo.
//
// Cada entidad tiene una máquina de estados explícita
// {Authoritative, Pending, RollingBack} y un número de secuencia por
// mutación; una respuesta con secuencia menor a la última reconciliada con
// éxito se descarta como obsoleta.
package optimistic

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/taskflow-api/internal/domain"
	"github.com/jhoicas/taskflow-api/internal/domain/authz"
	"github.com/jhoicas/taskflow-api/internal/domain/entity"
	"github.com/jhoicas/taskflow-api/pkg/logger"
)

// DefaultTimeout tiempo máximo de una petición antes de tratarla como fallo.
const DefaultTimeout = 10 * time.Second

// State estado de una entidad en el controlador.
type State int

const (
	StateAuthoritative State = iota
	StatePending
	StateRollingBack
)

func (s State) String() string {
	switch s {
	case StateAuthoritative:
		return "authoritative"
	case StatePending:
		return "pending"
	case StateRollingBack:
		return "rolling_back"
	}
	return "unknown"
}

// Op tipo de mutación.
type Op int

const (
	OpCreate Op = iota + 1
	OpUpdate
	OpDelete
)

func (o Op) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	}
	return "unknown"
}

// Check pre-chequeo de autorización opcional. No es autoritativo: solo evita
// mostrar un cambio tentativo que el servidor va a rechazar de todos modos.
type Check struct {
	Action   authz.Action
	Resource authz.Resource
}

// Mutation describe una intención del usuario sobre una entidad.
//
// EntityID es el id de la entidad; en un create es un id temporal que se
// reemplaza por el del servidor al reconciliar. Apply calcula la vista
// tentativa a partir de la actual (en create recibe el valor cero); no se usa
// en delete. Send es la única petición saliente.
type Mutation[T any] struct {
	Op       Op
	EntityID string
	Apply    func(current T) T
	Send     func(ctx context.Context) (T, error)
	Check    *Check
}

// Outcome respuesta del servidor a una mutación.
type Outcome[T any] struct {
	Value T
	Err   error
}

// Result resultado de reconciliar una mutación.
//
// Err es nil si el servidor aceptó la mutación. Stale indica que la respuesta
// llegó después de una mutación más reciente ya reconciliada y se descartó
// (Err es Conflict STALE_RESPONSE). RolledBack indica que la vista volvió al
// último snapshot autoritativo.
type Result[T any] struct {
	MutationID string
	EntityID   string
	PreviousID string // id temporal reemplazado en un create
	Value      T
	Present    bool
	State      State
	Stale      bool
	RolledBack bool
	Err        error
}

// Event notificación a las vistas adjuntas. Un rollback emite dos eventos: el
// primero con State RollingBack y la vista ya restaurada, el segundo con el
// estado final.
type Event[T any] struct {
	EntityID   string
	PreviousID string
	Value      T
	Present    bool
	State      State
	MutationID string
	Err        error
}

// Config parámetros del controlador.
type Config struct {
	Name    string // etiqueta para logs (ej. "tasks")
	Timeout time.Duration
	Logger  *logger.Logger
	// OnSessionExpired se invoca cuando una mutación falla por Unauthenticated,
	// distinto de cualquier otro fallo.
	OnSessionExpired func(err error)
}

// Pending mutación despachada a la espera de su reconciliación.
type Pending[T any] struct {
	MutationID string
	EntityID   string
	Seq        uint64

	done chan struct{}
	res  Result[T]
}

// Done se cierra cuando la mutación se reconcilió.
func (p *Pending[T]) Done() <-chan struct{} { return p.done }

// Result devuelve el resultado; solo es válido después de Done.
func (p *Pending[T]) Result() Result[T] { return p.res }

// Wait bloquea hasta la reconciliación o hasta que ctx termine. Cancelar ctx
// no cancela la reconciliación.
func (p *Pending[T]) Wait(ctx context.Context) (Result[T], error) {
	select {
	case <-p.done:
		return p.res, nil
	case <-ctx.Done():
		return Result[T]{}, ctx.Err()
	}
}

type pendingOp[T any] struct {
	id    string
	seq   uint64
	op    Op
	apply func(T) T
}

type entry[T any] struct {
	auth        T
	authPresent bool
	view        T
	viewPresent bool
	state       State
	seq         uint64 // última secuencia despachada
	applied     uint64 // última secuencia reconciliada con éxito
	pending     []pendingOp[T]
	creating    bool
}

type inflight[T any] struct {
	entityID string
	seq      uint64
	op       Op
	pending  *Pending[T]
}

type view[T any] struct {
	fn     func(Event[T])
	closed atomic.Bool
}

// Controller mantiene la vista local de un tipo de entidad.
type Controller[T any] struct {
	key func(T) string
	cfg Config
	log *logger.Logger

	mu       sync.Mutex
	entries  map[string]*entry[T]
	order    []string
	inflight map[string]*inflight[T]
	views    map[uint64]*view[T]
	nextView uint64
	actor    *entity.Actor
}

// NewController crea un controlador. key devuelve el id de una entidad.
func NewController[T any](key func(T) string, cfg Config) *Controller[T] {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	name := cfg.Name
	if name == "" {
		name = "optimistic"
	}
	return &Controller[T]{
		key:      key,
		cfg:      cfg,
		log:      log.Component(name),
		entries:  make(map[string]*entry[T]),
		inflight: make(map[string]*inflight[T]),
		views:    make(map[uint64]*view[T]),
	}
}

// SetActor fija el actor para el pre-chequeo de autorización; nil lo desactiva.
func (c *Controller[T]) SetActor(actor *entity.Actor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if actor == nil {
		c.actor = nil
		return
	}
	a := *actor
	c.actor = &a
}

// Attach registra una vista. La función devuelta la desconecta: desde ese
// momento la vista no recibe más eventos, pero las reconciliaciones en curso
// siguen actualizando el estado compartido.
func (c *Controller[T]) Attach(fn func(Event[T])) (detach func()) {
	v := &view[T]{fn: fn}
	c.mu.Lock()
	id := c.nextView
	c.nextView++
	c.views[id] = v
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			v.closed.Store(true)
			c.mu.Lock()
			delete(c.views, id)
			c.mu.Unlock()
		})
	}
}

// Load reemplaza los snapshots autoritativos (el servidor gana). Las
// mutaciones pendientes se vuelven a aplicar encima.
func (c *Controller[T]) Load(values ...T) {
	events := make([]Event[T], 0, len(values))
	c.mu.Lock()
	for _, v := range values {
		id := c.key(v)
		e := c.entries[id]
		if e == nil {
			e = &entry[T]{}
			c.add(id, e)
		}
		e.auth, e.authPresent = v, true
		e.creating = false
		c.recompute(e)
		events = append(events, c.event(id, e, "", nil))
	}
	views := c.snapshotViews()
	c.mu.Unlock()
	for _, ev := range events {
		notify(views, ev)
	}
}

// Forget elimina entidades localmente sin petición (ej. cascada tras borrar
// el proyecto). Las respuestas en vuelo para ellas se descartan como obsoletas.
func (c *Controller[T]) Forget(ids ...string) {
	c.mu.Lock()
	c.forget(ids)
}

// ForgetWhere olvida toda entidad cuyo snapshot autoritativo o vista actual
// cumple match, incluidas las que tienen un delete en vuelo y no se ven.
// match se evalúa con el lock tomado: no debe llamar al controlador.
func (c *Controller[T]) ForgetWhere(match func(T) bool) {
	c.mu.Lock()
	var ids []string
	for _, id := range c.order {
		e := c.entries[id]
		if e == nil {
			continue
		}
		if (e.authPresent && match(e.auth)) || (e.viewPresent && match(e.view)) {
			ids = append(ids, id)
		}
	}
	c.forget(ids)
}

// forget se llama con c.mu tomado y lo libera.
func (c *Controller[T]) forget(ids []string) {
	var events []Event[T]
	for _, id := range ids {
		if _, ok := c.entries[id]; !ok {
			continue
		}
		c.remove(id)
		events = append(events, Event[T]{EntityID: id, State: StateAuthoritative})
	}
	views := c.snapshotViews()
	c.mu.Unlock()
	for _, ev := range events {
		notify(views, ev)
	}
}

// Get devuelve la vista actual de la entidad (tentativa o autoritativa).
func (c *Controller[T]) Get(id string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entries[id]
	if e == nil || !e.viewPresent {
		var zero T
		return zero, false
	}
	return e.view, true
}

// Authoritative devuelve el último snapshot confirmado por el servidor.
func (c *Controller[T]) Authoritative(id string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entries[id]
	if e == nil || !e.authPresent {
		var zero T
		return zero, false
	}
	return e.auth, true
}

// StateOf devuelve el estado de la entidad; Authoritative si no existe.
func (c *Controller[T]) StateOf(id string) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e := c.entries[id]; e != nil {
		return e.state
	}
	return StateAuthoritative
}

// Values devuelve las vistas presentes en orden de llegada.
func (c *Controller[T]) Values() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		if e := c.entries[id]; e != nil && e.viewPresent {
			out = append(out, e.view)
		}
	}
	return out
}

// Apply muestra la vista tentativa, notifica a las vistas y despacha la
// petición en otra goroutine. Devuelve la vista tentativa y la mutación
// pendiente.
//
// Sobre una entidad ausente (borrada o desconocida) un update o delete es un
// no-op: devuelve present=false, Pending nil y error nil.
func (c *Controller[T]) Apply(ctx context.Context, m Mutation[T]) (T, bool, *Pending[T], error) {
	var zero T
	if m.Send == nil || m.EntityID == "" {
		return zero, false, nil, domain.Validation("INVALID_MUTATION", "mutación sin id o sin petición")
	}

	c.mu.Lock()
	if m.Check != nil && c.actor != nil {
		if err := authz.Authorize(*c.actor, m.Check.Action, m.Check.Resource).Err(); err != nil {
			c.mu.Unlock()
			return zero, false, nil, err
		}
	}

	e := c.entries[m.EntityID]
	switch m.Op {
	case OpCreate:
		if e != nil && (e.authPresent || e.viewPresent) {
			c.mu.Unlock()
			return zero, false, nil, domain.Validation("ALREADY_EXISTS", "la entidad ya existe")
		}
		if e == nil {
			e = &entry[T]{}
			c.add(m.EntityID, e)
		}
		e.creating = true
	case OpUpdate, OpDelete:
		if e == nil || !e.viewPresent {
			c.mu.Unlock()
			return zero, false, nil, nil
		}
		if e.creating {
			c.mu.Unlock()
			return zero, false, nil, domain.Validation("PENDING_CREATE", "la entidad aún no fue confirmada por el servidor")
		}
	default:
		c.mu.Unlock()
		return zero, false, nil, domain.Validation("INVALID_MUTATION", "operación desconocida")
	}

	e.seq++
	op := pendingOp[T]{id: uuid.NewString(), seq: e.seq, op: m.Op, apply: m.Apply}
	e.pending = append(e.pending, op)
	c.recompute(e)
	e.state = StatePending

	p := &Pending[T]{MutationID: op.id, EntityID: m.EntityID, Seq: op.seq, done: make(chan struct{})}
	c.inflight[op.id] = &inflight[T]{entityID: m.EntityID, seq: op.seq, op: m.Op, pending: p}

	tentative, present := e.view, e.viewPresent
	ev := c.event(m.EntityID, e, op.id, nil)
	views := c.snapshotViews()
	c.mu.Unlock()

	notify(views, ev)
	go c.dispatch(ctx, op.id, m.Send)
	return tentative, present, p, nil
}

// dispatch envía la petición con timeout acotado. El contexto del llamador
// aporta valores pero no cancelación: desmontar la vista no aborta la
// reconciliación.
func (c *Controller[T]) dispatch(ctx context.Context, mutationID string, send func(context.Context) (T, error)) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.Timeout)
	defer cancel()

	type reply struct {
		value T
		err   error
	}
	ch := make(chan reply, 1)
	go func() {
		v, err := send(ctx)
		ch <- reply{v, err}
	}()

	var out Outcome[T]
	select {
	case r := <-ch:
		out = Outcome[T]{Value: r.value, Err: r.err}
	case <-ctx.Done():
		out.Err = domain.Transient(domain.CodeTimeout, "la operación excedió el tiempo de espera", ctx.Err())
	}
	c.Reconcile(mutationID, out)
}

// Reconcile aplica la respuesta del servidor a la mutación indicada.
// Se invoca automáticamente al terminar la petición; llamarla de nuevo para
// la misma mutación devuelve NotFound.
func (c *Controller[T]) Reconcile(mutationID string, out Outcome[T]) Result[T] {
	c.mu.Lock()
	fl, ok := c.inflight[mutationID]
	if !ok {
		c.mu.Unlock()
		return Result[T]{MutationID: mutationID, Err: domain.NotFound("mutación desconocida o ya reconciliada")}
	}
	delete(c.inflight, mutationID)

	res := Result[T]{MutationID: mutationID, EntityID: fl.entityID}
	e := c.entries[fl.entityID]
	if e == nil {
		// olvidada localmente mientras estaba en vuelo
		res.Stale = true
		res.Err = domain.Conflict(domain.CodeStaleResponse, "la entidad ya no está en la vista local")
		views := c.snapshotViews()
		c.mu.Unlock()
		c.finish(fl.pending, res, views, false)
		return res
	}
	e.removePending(mutationID)

	err := out.Err
	if fl.op == OpDelete && domain.KindOf(err) == domain.KindNotFound {
		err = nil
	}

	switch {
	case fl.seq < e.applied:
		res.Stale = true
		res.Err = domain.Conflict(domain.CodeStaleResponse, "respuesta obsoleta descartada")
		c.log.Warn().Str("entity_id", fl.entityID).Uint64("seq", fl.seq).Uint64("applied", e.applied).
			Str("op", fl.op.String()).Msg("respuesta obsoleta descartada")

	case err == nil:
		if fl.op == OpDelete {
			var zero T
			e.auth, e.authPresent = zero, false
		} else {
			e.auth, e.authPresent = out.Value, true
		}
		e.applied = fl.seq
		e.dropPendingBefore(fl.seq)
		if fl.op == OpCreate {
			e.creating = false
			if id := c.key(out.Value); id != "" && id != fl.entityID {
				c.rekey(fl.entityID, id, e)
				res.PreviousID, res.EntityID = fl.entityID, id
			}
		}

	default:
		e.state = StateRollingBack
		res.RolledBack = true
		res.Err = err
		if fl.op == OpCreate {
			e.creating = false
		}
		if fl.op == OpUpdate && domain.KindOf(err) == domain.KindNotFound {
			// borrada en el servidor por otro actor
			var zero T
			e.auth, e.authPresent = zero, false
		}
		c.log.Debug().Str("entity_id", fl.entityID).Uint64("seq", fl.seq).Str("op", fl.op.String()).
			Str("kind", string(domain.KindOf(err))).Msg("rollback de mutación optimista")
	}

	c.recompute(e)
	var rollback *Event[T]
	if res.RolledBack {
		// vista ya restaurada, todavía en RollingBack
		ev := c.event(res.EntityID, e, mutationID, res.Err)
		rollback = &ev
	}
	if len(e.pending) > 0 {
		e.state = StatePending
	} else {
		e.state = StateAuthoritative
	}
	res.Value, res.Present, res.State = e.view, e.viewPresent, e.state
	if !e.viewPresent && !e.authPresent && len(e.pending) == 0 {
		c.remove(res.EntityID)
	}
	views := c.snapshotViews()
	c.mu.Unlock()

	if rollback != nil {
		notify(views, *rollback)
	}
	expired := res.Err != nil && !res.Stale && domain.KindOf(res.Err) == domain.KindUnauthenticated
	c.finish(fl.pending, res, views, expired)
	return res
}

func (c *Controller[T]) finish(p *Pending[T], res Result[T], views []*view[T], expired bool) {
	notify(views, Event[T]{
		EntityID:   res.EntityID,
		PreviousID: res.PreviousID,
		Value:      res.Value,
		Present:    res.Present,
		State:      res.State,
		MutationID: res.MutationID,
		Err:        res.Err,
	})
	if expired && c.cfg.OnSessionExpired != nil {
		c.cfg.OnSessionExpired(res.Err)
	}
	p.res = res
	close(p.done)
}

// ── internos (con c.mu tomado) ───────────────────────────────────────────────

// recompute reconstruye la vista: snapshot autoritativo + mutaciones
// pendientes en orden de secuencia.
func (c *Controller[T]) recompute(e *entry[T]) {
	v, present := e.auth, e.authPresent
	for _, p := range e.pending {
		switch p.op {
		case OpCreate:
			var zero T
			v, present = zero, true
			if p.apply != nil {
				v = p.apply(zero)
			}
		case OpUpdate:
			if present && p.apply != nil {
				v = p.apply(v)
			}
		case OpDelete:
			var zero T
			v, present = zero, false
		}
	}
	e.view, e.viewPresent = v, present
}

func (c *Controller[T]) event(id string, e *entry[T], mutationID string, err error) Event[T] {
	return Event[T]{
		EntityID:   id,
		Value:      e.view,
		Present:    e.viewPresent,
		State:      e.state,
		MutationID: mutationID,
		Err:        err,
	}
}

func (c *Controller[T]) add(id string, e *entry[T]) {
	c.entries[id] = e
	c.order = append(c.order, id)
}

func (c *Controller[T]) remove(id string) {
	delete(c.entries, id)
	for i, k := range c.order {
		if k == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

func (c *Controller[T]) rekey(oldID, newID string, e *entry[T]) {
	delete(c.entries, oldID)
	if _, exists := c.entries[newID]; exists {
		c.remove(newID)
	}
	c.entries[newID] = e
	for i, k := range c.order {
		if k == oldID {
			c.order[i] = newID
			return
		}
	}
	c.order = append(c.order, newID)
}

func (c *Controller[T]) snapshotViews() []*view[T] {
	out := make([]*view[T], 0, len(c.views))
	for _, v := range c.views {
		out = append(out, v)
	}
	return out
}

func notify[T any](views []*view[T], ev Event[T]) {
	for _, v := range views {
		if !v.closed.Load() {
			v.fn(ev)
		}
	}
}

func (e *entry[T]) removePending(id string) {
	for i, p := range e.pending {
		if p.id == id {
			e.pending = append(e.pending[:i], e.pending[i+1:]...)
			return
		}
	}
}

// dropPendingBefore descarta del replay las mutaciones más viejas que seq:
// sus respuestas llegarán como obsoletas.
func (e *entry[T]) dropPendingBefore(seq uint64) {
	kept := e.pending[:0]
	for _, p := range e.pending {
		if p.seq > seq {
			kept = append(kept, p)
		}
	}
	e.pending = kept
}
