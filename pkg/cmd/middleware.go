package cmd

// Middleware wraps a command (logging, checks, error reporting).
// The wrapped type remains Command.
type Middleware func(Command) Command

// Apply applies middlewares so that the first in the list is the outermost:
// it runs first and sees the result of everything after it.
func Apply(c Command, mws ...Middleware) Command {
	for i := len(mws) - 1; i >= 0; i-- {
		c = mws[i](c)
	}
	return c
}
