// Package signals provides a deterministic shutdown-hook registry.
//
// Handlers are registered while a transaction is open and deregistered
// when it closes, so an external termination signal still runs the
// bookkeeping. Fire can be called directly, which keeps the registry
// testable without relying on OS signal delivery.
package signals

import (
	"os"
	"os/signal"
	"sync"
)

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry
func Default() *Registry {
	return defaultRegistry
}

// NewRegistry creates an empty shutdown-hook registry
func NewRegistry() *Registry {
	return &Registry{}
}

// Registry holds shutdown hooks with explicit register/deregister pairing
type Registry struct {
	mu      sync.Mutex
	handles []*Handle
}

// Register adds a hook, the returned handle deregisters it again
func (r *Registry) Register(fn func()) *Handle {
	h := &Handle{registry: r, fn: fn}
	r.mu.Lock()
	r.handles = append(r.handles, h)
	r.mu.Unlock()
	return h
}

// Fire runs every registered hook once, newest first. Hooks stay
// registered so deregistration remains the responsibility of whoever
// registered them.
func (r *Registry) Fire() {
	r.mu.Lock()
	handles := make([]*Handle, len(r.handles))
	copy(handles, r.handles)
	r.mu.Unlock()

	for i := len(handles) - 1; i >= 0; i-- {
		handles[i].fire()
	}
}

// Len returns the number of registered hooks
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handles)
}

// Install binds the registry to OS signal delivery. The returned stop
// function unbinds it again.
func (r *Registry) Install(sigs ...os.Signal) (stop func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ch:
				r.Fire()
			case <-done:
				return
			}
		}
	}()
	return func() {
		signal.Stop(ch)
		close(done)
	}
}

func (r *Registry) remove(h *Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, other := range r.handles {
		if other == h {
			r.handles = append(r.handles[:i], r.handles[i+1:]...)
			return
		}
	}
}

// Handle identifies one registered hook
type Handle struct {
	registry *Registry
	fn       func()
	once     sync.Once
}

func (h *Handle) fire() {
	h.once.Do(h.fn)
}

// Deregister removes the hook from its registry
func (h *Handle) Deregister() {
	h.registry.remove(h)
}
