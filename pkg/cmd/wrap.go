package cmd

import "context"

// RunFunc is the shape of Command.Run.
type RunFunc func(ctx context.Context, inv *Invocation) error

// Unwrappable is implemented by wrapped commands so adapters can reach the
// underlying command (e.g. to type-assert to Aliased).
type Unwrappable interface {
	Command
	Unwrap() Command
}

// Wrapped runs RunFunc in place of the inner command, delegating identity to it.
type Wrapped struct {
	Inner   Command
	RunFunc RunFunc
}

func (w *Wrapped) Name() string        { return w.Inner.Name() }
func (w *Wrapped) Description() string { return w.Inner.Description() }

func (w *Wrapped) Run(ctx context.Context, inv *Invocation) error {
	if w.RunFunc != nil {
		return w.RunFunc(ctx, inv)
	}
	return w.Inner.Run(ctx, inv)
}

func (w *Wrapped) Unwrap() Command { return w.Inner }

// Wrap returns a command that runs run instead of c.Run.
func Wrap(c Command, run RunFunc) Command {
	return &Wrapped{Inner: c, RunFunc: run}
}

// Root unwraps a command until the underlying command is not Unwrappable.
func Root(c Command) Command {
	for {
		u, ok := c.(Unwrappable)
		if !ok {
			return c
		}
		c = u.Unwrap()
	}
}

// Func builds a Command from a name and a run function.
func Func(name, description string, run RunFunc) Command {
	return &funcCommand{name: name, description: description, run: run}
}

type funcCommand struct {
	name        string
	description string
	run         RunFunc
}

func (f *funcCommand) Name() string        { return f.name }
func (f *funcCommand) Description() string { return f.description }

func (f *funcCommand) Run(ctx context.Context, inv *Invocation) error {
	return f.run(ctx, inv)
}

// Find returns the outermost command in c's wrap chain that implements T.
func Find[T any](c Command) (T, bool) {
	for {
		if t, ok := c.(T); ok {
			return t, true
		}
		u, ok := c.(Unwrappable)
		if !ok {
			var zero T
			return zero, false
		}
		c = u.Unwrap()
	}
}
