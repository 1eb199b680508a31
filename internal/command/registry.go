package command

import (
	"fmt"
	"strings"
	"sync/atomic"
	"unicode"

	"github.com/mcoot/arenactl/internal/policy"
)

// Registry maps lower-case names to commands. It is filled at startup and
// frozen once a dispatcher is built on it.
type Registry struct {
	commands map[string]Command
	order    []string
	frozen   atomic.Bool
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// Register adds a command. Names are case-folded.
func (r *Registry) Register(cmd Command) error {
	if r.frozen.Load() {
		return ErrRegistryFrozen
	}
	name := strings.ToLower(cmd.Name)
	if name == "" || strings.IndexFunc(name, unicode.IsSpace) >= 0 {
		return fmt.Errorf("%w: bad name %q", ErrInvalidCommand, cmd.Name)
	}
	if cmd.Handler == nil {
		return fmt.Errorf("%w: %s has no handler", ErrInvalidCommand, name)
	}
	if !cmd.Requirement.Declared() {
		return fmt.Errorf("%w: %s declares no requirement", ErrInvalidCommand, name)
	}
	if _, exists := r.commands[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateCommand, name)
	}
	if cmd.Category == "" {
		cmd.Category = CategoryGeneral
	}
	cmd.Name = name
	r.commands[name] = cmd
	r.order = append(r.order, name)
	return nil
}

// MustRegister registers every command and panics on the first error
func (r *Registry) MustRegister(cmds ...Command) {
	for _, cmd := range cmds {
		if err := r.Register(cmd); err != nil {
			panic(err)
		}
	}
}

// Freeze rejects further registrations
func (r *Registry) Freeze() {
	r.frozen.Store(true)
}

// Resolve looks a command up case-insensitively
func (r *Registry) Resolve(name string) (Command, bool) {
	cmd, ok := r.commands[strings.ToLower(name)]
	return cmd, ok
}

// All returns every command in registration order
func (r *Registry) All() []Command {
	result := make([]Command, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.commands[name])
	}
	return result
}

// Visible returns the commands role may run, in registration order
func (r *Registry) Visible(role policy.Role) []Command {
	var result []Command
	for _, name := range r.order {
		cmd := r.commands[name]
		if policy.Satisfies(role, cmd.Requirement) {
			result = append(result, cmd)
		}
	}
	return result
}

// Len returns the number of registered commands
func (r *Registry) Len() int {
	return len(r.order)
}
