package riemann

import (
	"fmt"
	"strings"
	"time"
)

// CommandNotFoundError reports an interaction for a command the tree
// does not know.
type CommandNotFoundError struct {
	Name string
}

func (e *CommandNotFoundError) Error() string {
	return fmt.Sprintf("command %q not found", e.Name)
}

// InvokeError wraps an error returned (or a panic raised) by a command
// handler.
type InvokeError struct {
	Command string
	Err     error
	Stack   []byte // goroutine stack, set when recovering a panic
}

func (e *InvokeError) Error() string {
	return fmt.Sprintf("command %q failed: %v", e.Command, e.Err)
}

func (e *InvokeError) Unwrap() error { return e.Err }

// MissingRoleError reports a user lacking the role a command requires.
// Role is the reference the check was built with, a snowflake or a
// literal name.
type MissingRoleError struct {
	Role string
}

func (e *MissingRoleError) Error() string {
	return fmt.Sprintf("missing required role %s", e.Role)
}

// MissingAnyRoleError reports a user holding none of the accepted
// roles.
type MissingAnyRoleError struct {
	Roles []string
}

func (e *MissingAnyRoleError) Error() string {
	return fmt.Sprintf("missing all of the required roles: %s", strings.Join(e.Roles, ", "))
}

// MissingPermissionsError reports a user lacking channel permissions.
type MissingPermissionsError struct {
	Missing []string
}

func (e *MissingPermissionsError) Error() string {
	return fmt.Sprintf("missing permissions: %s", strings.Join(e.Missing, ", "))
}

// BotMissingPermissionsError reports the bot itself lacking channel
// permissions.
type BotMissingPermissionsError struct {
	Missing []string
}

func (e *BotMissingPermissionsError) Error() string {
	return fmt.Sprintf("bot is missing permissions: %s", strings.Join(e.Missing, ", "))
}

// NoPrivateMessageError reports a guild-only command used in a direct
// message.
type NoPrivateMessageError struct{}

func (e *NoPrivateMessageError) Error() string {
	return "this command cannot be used in private messages"
}

// CommandOnCooldownError reports a command invoked faster than its
// cooldown allows.
type CommandOnCooldownError struct {
	RetryAfter time.Duration
}

func (e *CommandOnCooldownError) Error() string {
	return fmt.Sprintf("command on cooldown, retry in %s", e.RetryAfter.Round(time.Millisecond))
}
