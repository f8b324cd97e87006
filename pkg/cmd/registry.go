package cmd

import (
	"sort"
	"strings"
	"sync"
)

// DefaultRegistry is the global registry used by adapters.
var DefaultRegistry = NewRegistry()

// Registry stores commands by lowercased name and alias. It does not perform
// dispatch; each adapter looks up commands and invokes them with its own context.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command
	aliases  map[string]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]Command),
		aliases:  make(map[string]string),
	}
}

// Register adds a command under its name and, if it implements Aliased (directly
// or under middleware), its aliases.
func (r *Registry) Register(c Command) {
	name := strings.ToLower(c.Name())

	r.mu.Lock()
	defer r.mu.Unlock()

	r.commands[name] = c
	if a, ok := Find[Aliased](c); ok {
		for _, alias := range a.Aliases() {
			r.aliases[strings.ToLower(alias)] = name
		}
	}
}

// Get returns the command registered under name or alias, or nil.
func (r *Registry) Get(name string) Command {
	name = strings.ToLower(name)

	r.mu.RLock()
	defer r.mu.RUnlock()

	if c, ok := r.commands[name]; ok {
		return c
	}
	if target, ok := r.aliases[name]; ok {
		return r.commands[target]
	}
	return nil
}

// Has reports whether name or alias is taken.
func (r *Registry) Has(name string) bool {
	return r.Get(name) != nil
}

// GetAll returns all registered commands, sorted by name.
func (r *Registry) GetAll() []Command {
	r.mu.RLock()
	list := make([]Command, 0, len(r.commands))
	for _, c := range r.commands {
		list = append(list, c)
	}
	r.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		return list[i].Name() < list[j].Name()
	})
	return list
}
