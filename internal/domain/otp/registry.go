package otp

import (
	"sync"
	"time"
)

// Registry gates OTP por asistente (clave = id del borrador).
type Registry struct {
	mu     sync.Mutex
	sender Sender
	cfg    Config
	gates  map[string]*registryEntry
}

type registryEntry struct {
	gate    *Gate
	touched time.Time
}

// NewRegistry construye el registro; todos los gates comparten sender y configuración.
func NewRegistry(sender Sender, cfg Config) *Registry {
	return &Registry{sender: sender, cfg: cfg.withDefaults(), gates: make(map[string]*registryEntry)}
}

// Gate devuelve el gate del asistente, creándolo en idle si no existe.
func (r *Registry) Gate(id string) *Gate {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.gates[id]
	if !ok {
		e = &registryEntry{gate: NewGate(r.sender, r.cfg)}
		r.gates[id] = e
	}
	e.touched = r.cfg.Now()
	return e.gate
}

// Lookup devuelve el gate sin crearlo.
func (r *Registry) Lookup(id string) (*Gate, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.gates[id]
	if !ok {
		return nil, false
	}
	return e.gate, true
}

// Remove cancela y elimina el gate del asistente.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	e, ok := r.gates[id]
	delete(r.gates, id)
	r.mu.Unlock()
	if ok {
		e.gate.Cancel()
	}
}

// PurgeIdle elimina los gates sin uso desde before. Devuelve cuántos eliminó.
func (r *Registry) PurgeIdle(before time.Time) int {
	r.mu.Lock()
	var stale []*Gate
	for id, e := range r.gates {
		if e.touched.Before(before) {
			stale = append(stale, e.gate)
			delete(r.gates, id)
		}
	}
	r.mu.Unlock()
	for _, g := range stale {
		g.Cancel()
	}
	return len(stale)
}

// Len número de gates vivos.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.gates)
}
