// Package check runs pre-command checks and reports their failures.
//
// A Check returns nil to let the command run. A failing check returns a
// *Reason that says who hears about it, or one of the dispatch errors
// (ErrOnlyForGuilds, *RateLimitedError). Hooks.Dispatch carries out the
// matching side effects; Hooks.After logs errors from commands that ran.
package check

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/keshon/lotr-bot/pkg/cmd"
)

// Check decides whether an invocation may run.
type Check struct {
	Name string
	Fn   func(ctx context.Context, inv *cmd.Invocation) error
}

// Kind says who is told about a failed check.
type Kind int

const (
	// KindUser replies to the invoker and marks the message.
	KindUser Kind = iota
	// KindUserAndLog logs a report and warns the invoker privately.
	KindUserAndLog
	// KindLog only logs.
	KindLog
)

func (k Kind) String() string {
	switch k {
	case KindUser:
		return "user"
	case KindUserAndLog:
		return "user_and_log"
	case KindLog:
		return "log"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Reason is a failed check.
type Reason struct {
	Kind Kind
	User string
	Log  string
}

func (r *Reason) Error() string {
	switch r.Kind {
	case KindUser:
		return r.User
	case KindUserAndLog:
		return r.User + ": " + r.Log
	default:
		return r.Log
	}
}

func User(msg string) *Reason { return &Reason{Kind: KindUser, User: msg} }

func UserAndLog(user, log string) *Reason {
	return &Reason{Kind: KindUserAndLog, User: user, Log: log}
}

func Log(msg string) *Reason { return &Reason{Kind: KindLog, Log: msg} }

// ErrOnlyForGuilds rejects a guild-only command used in DMs.
var ErrOnlyForGuilds = errors.New("command is only available in guilds")

// RateLimitedError rejects an invoker who is over their rate.
type RateLimitedError struct {
	// FirstTry is set on the first rejection since the invoker was last allowed.
	FirstTry bool
	Wait     time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry in %s", e.Wait.Round(time.Millisecond))
}

// CheckFailedError wraps the error of a named check.
type CheckFailedError struct {
	Check string
	Err   error
}

func (e *CheckFailedError) Error() string {
	return fmt.Sprintf("check %q failed: %v", e.Check, e.Err)
}

func (e *CheckFailedError) Unwrap() error { return e.Err }

// Run evaluates checks in order and stops at the first failure.
func Run(ctx context.Context, inv *cmd.Invocation, checks ...Check) error {
	for _, c := range checks {
		if err := c.Fn(ctx, inv); err != nil {
			return &CheckFailedError{Check: c.Name, Err: err}
		}
	}
	return nil
}

// Chain returns middleware that runs checks before the command. A failure is
// dispatched through h and the command does not run; the returned error is
// the *CheckFailedError. Errors from the command itself go to h.After.
func Chain(h *Hooks, checks ...Check) cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			if err := Run(ctx, inv, checks...); err != nil {
				h.Dispatch(ctx, inv, c.Name(), err)
				return err
			}
			err := c.Run(ctx, inv)
			h.After(ctx, inv, c.Name(), err)
			return err
		})
	}
}
