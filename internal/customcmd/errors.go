package customcmd

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a guild has no command with the given name.
	ErrNotFound = errors.New("custom command not found")
	// ErrReservedName is returned when defining a command under a built-in name.
	ErrReservedName = errors.New("reserved command name")
	// ErrEmptyName is returned when no command name was supplied.
	ErrEmptyName = errors.New("missing command name")
)

// MalformedTemplateError: a body that does not parse as a directive, before or
// after substitution.
type MalformedTemplateError struct {
	Name string
	Err  error
}

func (e *MalformedTemplateError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("malformed template: %v", e.Err)
	}
	return fmt.Sprintf("malformed template %q: %v", e.Name, e.Err)
}

func (e *MalformedTemplateError) Unwrap() error { return e.Err }

// StoreUnavailableError: the template store failed.
type StoreUnavailableError struct {
	Operation string
	Err       error
}

func (e *StoreUnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("store unavailable operation=%s", e.Operation)
	}
	return fmt.Sprintf("store unavailable operation=%s: %v", e.Operation, e.Err)
}

func (e *StoreUnavailableError) Unwrap() error { return e.Err }

// RenderError: the renderer rejected a directive.
type RenderError struct {
	ChannelID string
	Err       error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render to channel %s failed: %v", e.ChannelID, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// IsMalformed reports whether err is (or wraps) a MalformedTemplateError.
func IsMalformed(err error) bool {
	var target *MalformedTemplateError
	return errors.As(err, &target)
}
