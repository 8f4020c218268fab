package memory

import (
	"context"
	"sync"
)

// keyedLock serializa por clave (una entidad): dos transacciones sobre la
// misma entidad se ordenan, sobre entidades distintas no se bloquean.
type keyedLock struct {
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

func newKeyedLock() *keyedLock {
	return &keyedLock{slots: make(map[string]*slot)}
}

// Lock adquiere la clave o devuelve ctx.Err() si el contexto termina antes.
func (k *keyedLock) Lock(ctx context.Context, key string) error {
	k.mu.Lock()
	s, ok := k.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		k.slots[key] = s
	}
	s.refs++
	k.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		k.release(key, s)
		return ctx.Err()
	}
}

// Unlock libera la clave adquirida con Lock.
func (k *keyedLock) Unlock(key string) {
	k.mu.Lock()
	s := k.slots[key]
	k.mu.Unlock()
	if s == nil {
		return
	}
	<-s.ch
	k.release(key, s)
}

func (k *keyedLock) release(key string, s *slot) {
	k.mu.Lock()
	s.refs--
	if s.refs == 0 {
		delete(k.slots, key)
	}
	k.mu.Unlock()
}
