package command

import (
	"sort"
	"sync"
)

// Registry maps action names to actions. Each editor owns its own registry.
type Registry[T any] struct {
	mu      sync.RWMutex
	actions map[string]Action[T]
}

// NewRegistry constructs an empty registry.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{actions: map[string]Action[T]{}}
}

// Register adds an action. A later registration under the same name replaces the earlier one.
func (r *Registry[T]) Register(a Action[T]) {
	if a.Name == "" {
		panic("command action must define name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions[a.Name] = a
}

// Lookup finds an action by name.
func (r *Registry[T]) Lookup(name string) (Action[T], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.actions[name]
	return a, ok
}

// Create builds a command for a registered action. It returns nil, false for unknown names.
func (r *Registry[T]) Create(name string, args ...any) (*Command[T], bool) {
	a, ok := r.Lookup(name)
	if !ok {
		return nil, false
	}
	return fromAction(a, args), true
}

// Names lists registered action names.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.actions))
	for name := range r.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
