package event

import (
	"fmt"
	"sync"
)

// Registry holds handlers per event type in registration order.
type Registry struct {
	mu       sync.RWMutex
	handlers map[Type][]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[Type][]Handler)}
}

// Register appends h under h.EventType().
func (r *Registry) Register(h Handler) error {
	if h == nil {
		return fmt.Errorf("nil handler")
	}
	t := h.EventType()
	if !t.Valid() {
		return fmt.Errorf("handler %s: unknown event type %q", HandlerName(h), t)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[t] = append(r.handlers[t], h)
	return nil
}

// MustRegister is Register for boot-time wiring; it panics on error.
func (r *Registry) MustRegister(hs ...Handler) {
	for _, h := range hs {
		if err := r.Register(h); err != nil {
			panic(err)
		}
	}
}

// Handlers returns a copy of the handlers for t.
func (r *Registry) Handlers(t Type) []Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	hs := r.handlers[t]
	if len(hs) == 0 {
		return nil
	}
	out := make([]Handler, len(hs))
	copy(out, hs)
	return out
}

// Len is the total number of registered handlers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, hs := range r.handlers {
		n += len(hs)
	}
	return n
}

// HandlerName is Named.Name when available, else the dynamic type.
func HandlerName(h Handler) string {
	if n, ok := h.(Named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", h)
}
