package wizard

import (
	"sync"
	"time"
)

// draftLocks serializa las operaciones sobre un mismo borrador.
type draftLocks struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	mu      sync.Mutex
	touched time.Time
	holders int
}

func newDraftLocks() *draftLocks {
	return &draftLocks{entries: make(map[string]*lockEntry)}
}

// lock bloquea el borrador id y devuelve la función de desbloqueo.
func (l *draftLocks) lock(id string, now time.Time) func() {
	l.mu.Lock()
	e, ok := l.entries[id]
	if !ok {
		e = &lockEntry{}
		l.entries[id] = e
	}
	e.holders++
	e.touched = now
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.holders--
		l.mu.Unlock()
	}
}

// purge descarta entradas libres sin uso desde before.
func (l *draftLocks) purge(before time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for id, e := range l.entries {
		if e.holders == 0 && e.touched.Before(before) {
			delete(l.entries, id)
			n++
		}
	}
	return n
}

func (l *draftLocks) forget(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.entries[id]; ok && e.holders == 0 {
		delete(l.entries, id)
	}
}
