package cmd

import (
	"strings"
	"sync"
)

// Registry maps lower-cased names and aliases to commands. The first
// registration of a token wins: a later command claiming a taken name or alias
// is rejected as a whole and the caller gets a DUPLICATE_COMMAND error.
// Registration normally happens once at boot; reads are safe from any goroutine.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command
	aliases  map[string]string
	order    []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]Command),
		aliases:  make(map[string]string),
	}
}

// Register adds c under its lower-cased name and aliases.
func (r *Registry) Register(c Command) error {
	if c == nil {
		return ErrInvalidCommand("", "nil command")
	}
	name := normalize(c.Name())
	if name == "" {
		return ErrInvalidCommand(c.Name(), "empty command name")
	}
	aliases := normalizeAliases(AliasesOf(c), name)

	r.mu.Lock()
	defer r.mu.Unlock()

	if owner, taken := r.ownerOf(name); taken {
		return ErrDuplicate(name, name, owner)
	}
	for _, a := range aliases {
		if owner, taken := r.ownerOf(a); taken {
			return ErrDuplicate(name, a, owner)
		}
	}

	r.commands[name] = c
	for _, a := range aliases {
		r.aliases[a] = name
	}
	r.order = append(r.order, name)
	return nil
}

// MustRegister is Register for boot-time wiring where a collision is a bug.
func (r *Registry) MustRegister(cmds ...Command) {
	for _, c := range cmds {
		if err := r.Register(c); err != nil {
			panic(err)
		}
	}
}

// Resolve returns the command registered under token, either as its name or as
// one of its aliases. Matching ignores case and surrounding space.
func (r *Registry) Resolve(token string) (Command, bool) {
	token = normalize(token)

	r.mu.RLock()
	defer r.mu.RUnlock()

	if c, ok := r.commands[token]; ok {
		return c, true
	}
	if name, ok := r.aliases[token]; ok {
		c, ok := r.commands[name]
		return c, ok
	}
	return nil, false
}

// Canonical returns the registered name token resolves to.
func (r *Registry) Canonical(token string) (string, bool) {
	c, ok := r.Resolve(token)
	if !ok {
		return "", false
	}
	return normalize(c.Name()), true
}

// List returns all commands in registration order.
func (r *Registry) List() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]Command, 0, len(r.order))
	for _, name := range r.order {
		list = append(list, r.commands[name])
	}
	return list
}

// Names returns the canonical names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Len returns the number of registered commands, aliases excluded.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

func (r *Registry) ownerOf(token string) (string, bool) {
	if _, ok := r.commands[token]; ok {
		return token, true
	}
	if name, ok := r.aliases[token]; ok {
		return name, true
	}
	return "", false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func normalizeAliases(in []string, name string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, a := range in {
		a = normalize(a)
		if a == "" || a == name {
			continue
		}
		if _, dup := seen[a]; dup {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}
