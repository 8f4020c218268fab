package optimistic_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/taskflow-api/internal/domain"
	"github.com/jhoicas/taskflow-api/internal/domain/authz"
	"github.com/jhoicas/taskflow-api/internal/domain/entity"
	"github.com/jhoicas/taskflow-api/internal/optimistic"
)

type item struct {
	ID      string
	Status  string
	Title   string
	Version int
}

func newItems(cfg optimistic.Config) *optimistic.Controller[item] {
	return optimistic.NewController(func(i item) string { return i.ID }, cfg)
}

// reply respuesta controlada por el test para una petición bloqueada.
type reply struct {
	value item
	err   error
}

// gate petición que no responde hasta que el test la libera.
type gate struct {
	ch     chan reply
	called chan struct{}
}

func newGate() *gate {
	return &gate{ch: make(chan reply, 1), called: make(chan struct{}, 1)}
}

func (g *gate) send(ctx context.Context) (item, error) {
	g.called <- struct{}{}
	select {
	case r := <-g.ch:
		return r.value, r.err
	case <-ctx.Done():
		return item{}, ctx.Err()
	}
}

func setStatus(status string) func(item) item {
	return func(i item) item {
		i.Status = status
		return i
	}
}

func wait(t *testing.T, p *optimistic.Pending[item]) optimistic.Result[item] {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	res, err := p.Wait(ctx)
	require.NoError(t, err, "la reconciliación no terminó a tiempo")
	return res
}

var base = item{ID: "t1", Status: "todo", Title: "copy", Version: 1}

// ──────────────────────────────────────────────────────────────────────────────
// Aplicación tentativa y reconciliación
// ──────────────────────────────────────────────────────────────────────────────

func TestApply_VistaTentativaInmediataSinBloquear(t *testing.T) {
	c := newItems(optimistic.Config{})
	c.Load(base)
	g := newGate()

	tentative, present, p, err := c.Apply(context.Background(), optimistic.Mutation[item]{
		Op: optimistic.OpUpdate, EntityID: "t1", Apply: setStatus("done"), Send: g.send,
	})
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.True(t, present)
	assert.Equal(t, "done", tentative.Status)
	assert.Equal(t, optimistic.StatePending, c.StateOf("t1"))

	view, _ := c.Get("t1")
	assert.Equal(t, "done", view.Status)
	auth, _ := c.Authoritative("t1")
	assert.Equal(t, base, auth, "el snapshot autoritativo no cambia hasta la respuesta")

	<-g.called
	select {
	case <-p.Done():
		t.Fatal("no debe reconciliar antes de la respuesta")
	default:
	}

	server := item{ID: "t1", Status: "done", Title: "copy (editado por otro)", Version: 2}
	g.ch <- reply{value: server}
	res := wait(t, p)

	require.NoError(t, res.Err)
	assert.Equal(t, server, res.Value, "el servidor gana sobre la suposición tentativa")
	assert.Equal(t, optimistic.StateAuthoritative, res.State)
	view, _ = c.Get("t1")
	assert.Equal(t, server, view)
}

func TestApply_RechazoRevierteExactamente(t *testing.T) {
	failures := []error{
		domain.Forbidden("FORBIDDEN", "no"),
		domain.Validation("VALIDATION", "mal"),
		domain.Transient("NETWORK", "caído", errors.New("dial")),
		errors.New("boom"),
	}
	for _, failure := range failures {
		t.Run(failure.Error(), func(t *testing.T) {
			c := newItems(optimistic.Config{})
			c.Load(base)
			g := newGate()

			_, _, p, err := c.Apply(context.Background(), optimistic.Mutation[item]{
				Op: optimistic.OpUpdate, EntityID: "t1", Apply: setStatus("done"), Send: g.send,
			})
			require.NoError(t, err)
			g.ch <- reply{err: failure}
			res := wait(t, p)

			assert.True(t, res.RolledBack)
			assert.ErrorIs(t, res.Err, failure)
			assert.Equal(t, base, res.Value)
			view, ok := c.Get("t1")
			require.True(t, ok)
			assert.Equal(t, base, view, "la vista vuelve campo a campo al snapshot previo")
			assert.Equal(t, optimistic.StateAuthoritative, c.StateOf("t1"))
		})
	}
}

func TestApply_TimeoutEsTransientYRevierte(t *testing.T) {
	c := newItems(optimistic.Config{Timeout: 30 * time.Millisecond})
	c.Load(base)
	never := func(ctx context.Context) (item, error) {
		time.Sleep(time.Second)
		return item{}, nil
	}

	_, _, p, err := c.Apply(context.Background(), optimistic.Mutation[item]{
		Op: optimistic.OpUpdate, EntityID: "t1", Apply: setStatus("done"), Send: never,
	})
	require.NoError(t, err)
	res := wait(t, p)

	assert.Equal(t, domain.KindTransient, domain.KindOf(res.Err))
	assert.Equal(t, domain.CodeTimeout, domain.CodeOf(res.Err))
	assert.True(t, res.RolledBack)
	assert.Equal(t, base, res.Value)
}

func TestApply_CancelarElContextoNoAbortaLaReconciliacion(t *testing.T) {
	c := newItems(optimistic.Config{})
	c.Load(base)
	g := newGate()

	ctx, cancel := context.WithCancel(context.Background())
	_, _, p, err := c.Apply(ctx, optimistic.Mutation[item]{
		Op: optimistic.OpUpdate, EntityID: "t1", Apply: setStatus("done"), Send: g.send,
	})
	require.NoError(t, err)
	<-g.called
	cancel()

	g.ch <- reply{value: item{ID: "t1", Status: "done", Version: 2}}
	res := wait(t, p)
	require.NoError(t, res.Err)
	assert.Equal(t, 2, res.Value.Version)
}

// ──────────────────────────────────────────────────────────────────────────────
// Orden y respuestas obsoletas
// ──────────────────────────────────────────────────────────────────────────────

func TestReconcile_RespuestaViejaLlegaTardeSeDescarta(t *testing.T) {
	c := newItems(optimistic.Config{})
	c.Load(base)
	g1, g2 := newGate(), newGate()
	ctx := context.Background()

	_, _, p1, err := c.Apply(ctx, optimistic.Mutation[item]{Op: optimistic.OpUpdate, EntityID: "t1", Apply: setStatus("in_progress"), Send: g1.send})
	require.NoError(t, err)
	_, _, p2, err := c.Apply(ctx, optimistic.Mutation[item]{Op: optimistic.OpUpdate, EntityID: "t1", Apply: setStatus("done"), Send: g2.send})
	require.NoError(t, err)
	assert.Less(t, p1.Seq, p2.Seq)

	view, _ := c.Get("t1")
	assert.Equal(t, "done", view.Status)

	// M2 responde primero, M1 después
	m2 := item{ID: "t1", Status: "done", Version: 3}
	g2.ch <- reply{value: m2}
	r2 := wait(t, p2)
	require.NoError(t, r2.Err)

	g1.ch <- reply{value: item{ID: "t1", Status: "in_progress", Version: 2}}
	r1 := wait(t, p1)
	assert.True(t, r1.Stale)
	assert.ErrorIs(t, r1.Err, domain.ErrConflict)
	assert.Equal(t, domain.CodeStaleResponse, domain.CodeOf(r1.Err))

	view, _ = c.Get("t1")
	assert.Equal(t, m2, view, "gana la secuencia más alta")
	auth, _ := c.Authoritative("t1")
	assert.Equal(t, m2, auth)
}

func TestReconcile_FalloViejoTrasExitoNuevoNoRevierte(t *testing.T) {
	c := newItems(optimistic.Config{})
	c.Load(base)
	g1, g2 := newGate(), newGate()
	ctx := context.Background()

	_, _, p1, _ := c.Apply(ctx, optimistic.Mutation[item]{Op: optimistic.OpUpdate, EntityID: "t1", Apply: setStatus("in_progress"), Send: g1.send})
	_, _, p2, _ := c.Apply(ctx, optimistic.Mutation[item]{Op: optimistic.OpUpdate, EntityID: "t1", Apply: setStatus("done"), Send: g2.send})

	m2 := item{ID: "t1", Status: "done", Version: 3}
	g2.ch <- reply{value: m2}
	wait(t, p2)
	g1.ch <- reply{err: domain.Transient("NETWORK", "caído", nil)}
	r1 := wait(t, p1)

	assert.True(t, r1.Stale)
	assert.False(t, r1.RolledBack)
	view, _ := c.Get("t1")
	assert.Equal(t, m2, view)
}

func TestReconcile_RespuestaViejaPrimeroMantieneLaTentativaNueva(t *testing.T) {
	c := newItems(optimistic.Config{})
	c.Load(base)
	g1, g2 := newGate(), newGate()
	ctx := context.Background()

	_, _, p1, _ := c.Apply(ctx, optimistic.Mutation[item]{Op: optimistic.OpUpdate, EntityID: "t1", Apply: setStatus("in_progress"), Send: g1.send})
	_, _, p2, _ := c.Apply(ctx, optimistic.Mutation[item]{Op: optimistic.OpUpdate, EntityID: "t1", Apply: setStatus("done"), Send: g2.send})

	g1.ch <- reply{value: item{ID: "t1", Status: "in_progress", Version: 2}}
	r1 := wait(t, p1)
	require.NoError(t, r1.Err)
	assert.Equal(t, optimistic.StatePending, r1.State, "M2 sigue en vuelo")
	assert.Equal(t, "done", r1.Value.Status, "la tentativa de M2 se reaplica sobre el snapshot de M1")
	assert.Equal(t, 2, r1.Value.Version)

	g2.ch <- reply{err: domain.Validation("VALIDATION", "rechazada")}
	r2 := wait(t, p2)
	assert.True(t, r2.RolledBack)
	assert.Equal(t, item{ID: "t1", Status: "in_progress", Version: 2}, r2.Value, "revierte al último snapshot autoritativo (M1)")
}

func TestReconcile_DosVecesEsNotFound(t *testing.T) {
	c := newItems(optimistic.Config{})
	c.Load(base)
	g := newGate()
	_, _, p, _ := c.Apply(context.Background(), optimistic.Mutation[item]{Op: optimistic.OpUpdate, EntityID: "t1", Apply: setStatus("done"), Send: g.send})
	g.ch <- reply{value: base}
	wait(t, p)

	res := c.Reconcile(p.MutationID, optimistic.Outcome[item]{Value: base})
	assert.Equal(t, domain.KindNotFound, domain.KindOf(res.Err))
}

// ──────────────────────────────────────────────────────────────────────────────
// Borrado y creación
// ──────────────────────────────────────────────────────────────────────────────

func TestDelete_EntidadAusenteYOperacionesPosterioresSonNoOp(t *testing.T) {
	c := newItems(optimistic.Config{})
	c.Load(base)
	g := newGate()
	ctx := context.Background()

	_, present, p, err := c.Apply(ctx, optimistic.Mutation[item]{Op: optimistic.OpDelete, EntityID: "t1", Send: g.send})
	require.NoError(t, err)
	assert.False(t, present)
	_, ok := c.Get("t1")
	assert.False(t, ok, "la vista tentativa ya no la muestra")

	g.ch <- reply{}
	res := wait(t, p)
	require.NoError(t, res.Err)
	assert.False(t, res.Present)
	assert.Empty(t, c.Values())

	calls := 0
	_, present, p2, err := c.Apply(ctx, optimistic.Mutation[item]{
		Op: optimistic.OpUpdate, EntityID: "t1", Apply: setStatus("done"),
		Send: func(context.Context) (item, error) { calls++; return item{}, nil },
	})
	assert.NoError(t, err)
	assert.False(t, present)
	assert.Nil(t, p2)
	assert.Zero(t, calls, "no se despacha ninguna petición")
}

func TestDelete_NotFoundCuentaComoExito(t *testing.T) {
	c := newItems(optimistic.Config{})
	c.Load(base)
	_, _, p, err := c.Apply(context.Background(), optimistic.Mutation[item]{
		Op: optimistic.OpDelete, EntityID: "t1",
		Send: func(context.Context) (item, error) { return item{}, domain.NotFound("ya no está") },
	})
	require.NoError(t, err)
	res := wait(t, p)
	assert.NoError(t, res.Err)
	assert.False(t, res.RolledBack)
	_, ok := c.Get("t1")
	assert.False(t, ok)
}

func TestDelete_RechazoRestauraLaEntidad(t *testing.T) {
	c := newItems(optimistic.Config{})
	c.Load(base)
	_, _, p, _ := c.Apply(context.Background(), optimistic.Mutation[item]{
		Op: optimistic.OpDelete, EntityID: "t1",
		Send: func(context.Context) (item, error) { return item{}, domain.Forbidden("FORBIDDEN", "no") },
	})
	res := wait(t, p)
	assert.True(t, res.RolledBack)
	assert.True(t, res.Present)
	view, ok := c.Get("t1")
	require.True(t, ok)
	assert.Equal(t, base, view)
}

func TestUpdate_NotFoundDejaLaEntidadAusente(t *testing.T) {
	c := newItems(optimistic.Config{})
	c.Load(base)
	_, _, p, _ := c.Apply(context.Background(), optimistic.Mutation[item]{
		Op: optimistic.OpUpdate, EntityID: "t1", Apply: setStatus("done"),
		Send: func(context.Context) (item, error) { return item{}, domain.NotFound("borrada por otro") },
	})
	res := wait(t, p)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(res.Err))
	assert.False(t, res.Present)
	_, ok := c.Get("t1")
	assert.False(t, ok)
}

func TestCreate_IdTemporalSeReemplazaPorElDelServidor(t *testing.T) {
	c := newItems(optimistic.Config{})
	g := newGate()
	tentative := item{ID: "tmp-1", Status: "todo", Title: "nueva"}

	view, present, p, err := c.Apply(context.Background(), optimistic.Mutation[item]{
		Op: optimistic.OpCreate, EntityID: "tmp-1",
		Apply: func(item) item { return tentative },
		Send:  g.send,
	})
	require.NoError(t, err)
	assert.True(t, present)
	assert.Equal(t, tentative, view)

	_, _, _, err = c.Apply(context.Background(), optimistic.Mutation[item]{
		Op: optimistic.OpUpdate, EntityID: "tmp-1", Apply: setStatus("done"), Send: g.send,
	})
	assert.Equal(t, "PENDING_CREATE", domain.CodeOf(err))

	server := item{ID: "srv-9", Status: "todo", Title: "nueva", Version: 1}
	g.ch <- reply{value: server}
	res := wait(t, p)
	require.NoError(t, res.Err)
	assert.Equal(t, "srv-9", res.EntityID)
	assert.Equal(t, "tmp-1", res.PreviousID)

	_, ok := c.Get("tmp-1")
	assert.False(t, ok)
	got, ok := c.Get("srv-9")
	require.True(t, ok)
	assert.Equal(t, server, got)
	assert.Len(t, c.Values(), 1)
}

func TestCreate_RechazoEliminaLaTentativa(t *testing.T) {
	c := newItems(optimistic.Config{})
	_, _, p, err := c.Apply(context.Background(), optimistic.Mutation[item]{
		Op: optimistic.OpCreate, EntityID: "tmp-1",
		Apply: func(item) item { return item{ID: "tmp-1", Title: ""} },
		Send:  func(context.Context) (item, error) { return item{}, domain.Validation("VALIDATION", "título vacío") },
	})
	require.NoError(t, err)
	res := wait(t, p)
	assert.True(t, res.RolledBack)
	assert.False(t, res.Present)
	assert.Empty(t, c.Values())
}

// ──────────────────────────────────────────────────────────────────────────────
// Vistas, sesión y pre-chequeo
// ──────────────────────────────────────────────────────────────────────────────

func TestAttach_VistaDesconectadaNoRecibeResultados(t *testing.T) {
	c := newItems(optimistic.Config{})
	c.Load(base)
	g := newGate()

	var mu sync.Mutex
	var events []optimistic.Event[item]
	detach := c.Attach(func(ev optimistic.Event[item]) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	})

	_, _, p, _ := c.Apply(context.Background(), optimistic.Mutation[item]{Op: optimistic.OpUpdate, EntityID: "t1", Apply: setStatus("done"), Send: g.send})
	mu.Lock()
	require.Len(t, events, 1, "la vista recibe la tentativa")
	assert.Equal(t, optimistic.StatePending, events[0].State)
	mu.Unlock()

	detach()
	detach()
	g.ch <- reply{value: item{ID: "t1", Status: "done", Version: 2}}
	wait(t, p)

	mu.Lock()
	assert.Len(t, events, 1, "una vista desmontada no recibe el resultado")
	mu.Unlock()
	view, _ := c.Get("t1")
	assert.Equal(t, 2, view.Version, "el estado compartido sí se reconcilió")
}

func TestOnSessionExpired_SoloParaUnauthenticated(t *testing.T) {
	var mu sync.Mutex
	var expired []error
	c := newItems(optimistic.Config{OnSessionExpired: func(err error) {
		mu.Lock()
		expired = append(expired, err)
		mu.Unlock()
	}})
	c.Load(base)

	for _, failure := range []error{
		domain.Forbidden("FORBIDDEN", "no"),
		domain.Unauthenticated(domain.CodeSessionExpired, "expirada"),
	} {
		failure := failure
		_, _, p, err := c.Apply(context.Background(), optimistic.Mutation[item]{
			Op: optimistic.OpUpdate, EntityID: "t1", Apply: setStatus("done"),
			Send: func(context.Context) (item, error) { return item{}, failure },
		})
		require.NoError(t, err)
		res := wait(t, p)
		assert.True(t, res.RolledBack)
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, expired, 1)
	assert.Equal(t, domain.CodeSessionExpired, domain.CodeOf(expired[0]))
}

func TestCheck_DenegacionAntesDeMostrarNada(t *testing.T) {
	c := newItems(optimistic.Config{})
	c.Load(base)
	member := entity.Actor{UserID: "u2", TenantID: "acme", Role: entity.RoleMember}
	c.SetActor(&member)

	events := 0
	c.Attach(func(optimistic.Event[item]) { events++ })
	calls := 0

	_, _, p, err := c.Apply(context.Background(), optimistic.Mutation[item]{
		Op: optimistic.OpDelete, EntityID: "t1",
		Send: func(context.Context) (item, error) { calls++; return item{}, nil },
		Check: &optimistic.Check{Action: authz.ActionDelete, Resource: authz.Resource{
			Kind: authz.KindTask, ID: "t1", TenantID: "acme", OwnerID: "u1",
		}},
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Nil(t, p)
	assert.Zero(t, events)
	assert.Zero(t, calls)
	view, ok := c.Get("t1")
	require.True(t, ok)
	assert.Equal(t, base, view)
	assert.Equal(t, optimistic.StateAuthoritative, c.StateOf("t1"))
}

func TestForget_RespuestaEnVueloSeDescarta(t *testing.T) {
	c := newItems(optimistic.Config{})
	c.Load(base)
	g := newGate()
	_, _, p, _ := c.Apply(context.Background(), optimistic.Mutation[item]{Op: optimistic.OpUpdate, EntityID: "t1", Apply: setStatus("done"), Send: g.send})

	c.Forget("t1")
	g.ch <- reply{value: item{ID: "t1", Status: "done"}}
	res := wait(t, p)
	assert.True(t, res.Stale)
	_, ok := c.Get("t1")
	assert.False(t, ok, "no resucita")
}

func TestApply_MutacionesIndependientesNoSeBloquean(t *testing.T) {
	c := newItems(optimistic.Config{})
	c.Load(base, item{ID: "t2", Status: "todo"})
	g1, g2 := newGate(), newGate()
	ctx := context.Background()

	_, _, p1, _ := c.Apply(ctx, optimistic.Mutation[item]{Op: optimistic.OpUpdate, EntityID: "t1", Apply: setStatus("done"), Send: g1.send})
	_, _, p2, _ := c.Apply(ctx, optimistic.Mutation[item]{Op: optimistic.OpUpdate, EntityID: "t2", Apply: setStatus("done"), Send: g2.send})

	g2.ch <- reply{value: item{ID: "t2", Status: "done", Version: 2}}
	r2 := wait(t, p2)
	require.NoError(t, r2.Err)
	assert.Equal(t, optimistic.StatePending, c.StateOf("t1"))

	g1.ch <- reply{err: domain.Forbidden("FORBIDDEN", "no")}
	r1 := wait(t, p1)
	assert.True(t, r1.RolledBack)
	v2, _ := c.Get("t2")
	assert.Equal(t, 2, v2.Version, "el rollback de t1 no afecta a t2")
}

func TestRollback_EventoRollingBackAntesDelEstadoFinal(t *testing.T) {
	c := newItems(optimistic.Config{})
	c.Load(base)

	var mu sync.Mutex
	var events []optimistic.Event[item]
	c.Attach(func(ev optimistic.Event[item]) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	})

	_, _, p, err := c.Apply(context.Background(), optimistic.Mutation[item]{
		Op: optimistic.OpUpdate, EntityID: "t1", Apply: setStatus("done"),
		Send: func(context.Context) (item, error) { return item{}, domain.Forbidden("FORBIDDEN", "no") },
	})
	require.NoError(t, err)
	res := wait(t, p)
	require.True(t, res.RolledBack)
	assert.Equal(t, optimistic.StateAuthoritative, res.State)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, events, 3)
	states := []optimistic.State{events[0].State, events[1].State, events[2].State}
	assert.Equal(t, []optimistic.State{optimistic.StatePending, optimistic.StateRollingBack, optimistic.StateAuthoritative}, states)
	assert.Equal(t, base, events[1].Value, "el evento de rollback ya trae la vista restaurada")
	assert.ErrorIs(t, events[1].Err, domain.ErrForbidden)
	assert.Equal(t, p.MutationID, events[1].MutationID)
}

func TestRollback_ConOtraPendienteTerminaEnPending(t *testing.T) {
	c := newItems(optimistic.Config{})
	c.Load(base)
	g := newGate()

	var mu sync.Mutex
	var states []optimistic.State
	c.Attach(func(ev optimistic.Event[item]) {
		mu.Lock()
		states = append(states, ev.State)
		mu.Unlock()
	})

	_, _, first, _ := c.Apply(context.Background(), optimistic.Mutation[item]{Op: optimistic.OpUpdate, EntityID: "t1", Apply: setStatus("done"), Send: g.send})
	<-g.called
	_, _, second, _ := c.Apply(context.Background(), optimistic.Mutation[item]{
		Op: optimistic.OpUpdate, EntityID: "t1", Apply: func(i item) item { i.Title = "nuevo"; return i },
		Send: func(context.Context) (item, error) { return item{}, domain.Validation("VALIDATION", "mal") },
	})
	res := wait(t, second)
	assert.True(t, res.RolledBack)
	assert.Equal(t, optimistic.StatePending, res.State, "la primera sigue en vuelo")
	assert.Equal(t, "done", res.Value.Status)

	g.ch <- reply{value: item{ID: "t1", Status: "done", Title: "copy", Version: 2}}
	wait(t, first)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []optimistic.State{
		optimistic.StatePending, optimistic.StatePending,
		optimistic.StateRollingBack, optimistic.StatePending,
		optimistic.StateAuthoritative,
	}, states)
}

func TestForgetWhere_IncluyeEntidadesConDeleteEnVuelo(t *testing.T) {
	c := newItems(optimistic.Config{})
	c.Load(base, item{ID: "t2", Status: "todo", Title: "copy"}, item{ID: "t3", Status: "todo", Title: "otro"})
	g := newGate()

	_, _, p, err := c.Apply(context.Background(), optimistic.Mutation[item]{Op: optimistic.OpDelete, EntityID: "t2", Send: g.send})
	require.NoError(t, err)
	<-g.called
	_, visible := c.Get("t2")
	require.False(t, visible)

	c.ForgetWhere(func(i item) bool { return i.Title == "copy" })
	assert.Len(t, c.Values(), 1)

	g.ch <- reply{err: domain.Transient("NETWORK", "caído", errors.New("dial"))}
	res := wait(t, p)
	assert.True(t, res.Stale)
	assert.False(t, res.RolledBack)
	_, ok := c.Get("t2")
	assert.False(t, ok, "el fallo del delete no la resucita")
	_, ok = c.Get("t3")
	assert.True(t, ok)
}
