package cmd

import (
	"context"
	"errors"

	"github.com/samber/oops"
)

// Error codes carried by command errors.
const (
	CodeNotFound           = "NOT_FOUND"
	CodeMissingPermissions = "MISSING_PERMISSIONS"
	CodeInvalidArguments   = "INVALID_ARGUMENTS"
	CodeExecution          = "EXECUTION_ERROR"
	CodeUpstream           = "UPSTREAM_PROTOCOL_ERROR"
	CodeRateLimited        = "RATE_LIMITED"
	CodeTimeout            = "TIMEOUT"
	CodeDuplicate          = "DUPLICATE_COMMAND"
	CodeInvalidCommand     = "INVALID_COMMAND"
)

// Kind classifies a command failure.
type Kind string

const (
	KindNone               Kind = ""
	KindNotFound           Kind = CodeNotFound
	KindMissingPermissions Kind = CodeMissingPermissions
	KindInvalidArguments   Kind = CodeInvalidArguments
	KindExecution          Kind = CodeExecution
	KindUpstream           Kind = CodeUpstream
	KindRateLimited        Kind = CodeRateLimited
	KindTimeout            Kind = CodeTimeout
	KindDuplicate          Kind = CodeDuplicate
	KindInvalidCommand     Kind = CodeInvalidCommand
)

// ErrUnknownCommand is returned by the router for a prefixed token that names
// no command. KindOf classifies it as KindNotFound.
var ErrUnknownCommand = errors.New("command not found")

// ErrNotFound reports a token that resolves to no command.
func ErrNotFound(token string) error {
	return oops.Code(CodeNotFound).
		With("token", token).
		Errorf("command not found: %s", token)
}

// ErrMissingPermissions reports a failed owner or permission gate. required is
// the permission bit set the command asked for (0 for owner-only).
func ErrMissingPermissions(command string, required int64, reason string) error {
	return oops.Code(CodeMissingPermissions).
		With("command", command).
		With("required", required).
		With("reason", reason).
		Errorf("missing permissions for %s: %s", command, reason)
}

// ErrInvalidArguments reports arguments a command could not accept.
func ErrInvalidArguments(command, usage string) error {
	return oops.Code(CodeInvalidArguments).
		With("command", command).
		With("usage", usage).
		Errorf("invalid arguments for %s", command)
}

// ExecutionError wraps a failure internal to a command.
func ExecutionError(command string, cause error) error {
	b := oops.Code(CodeExecution).With("command", command)
	if cause == nil {
		return b.Errorf("command %s failed", command)
	}
	return b.Wrapf(cause, "command %s failed", command)
}

// UpstreamError wraps a failed outbound call to the platform.
func UpstreamError(op string, cause error) error {
	return oops.Code(CodeUpstream).
		With("op", op).
		Wrapf(cause, "%s", op)
}

// ErrRateLimited reports a command invoked again before its cooldown elapsed.
func ErrRateLimited(command string, retryAfterMs int64) error {
	return oops.Code(CodeRateLimited).
		With("command", command).
		With("retry_after_ms", retryAfterMs).
		Errorf("command %s is on cooldown", command)
}

// ErrTimeout reports a command that did not finish within its deadline.
func ErrTimeout(command string, cause error) error {
	return oops.Code(CodeTimeout).
		With("command", command).
		Wrapf(cause, "command %s timed out", command)
}

// ErrDuplicate reports a registration colliding with an existing name or alias.
func ErrDuplicate(command, token, owner string) error {
	return oops.Code(CodeDuplicate).
		With("command", command).
		With("token", token).
		With("owner", owner).
		Errorf("cannot register %s: %q already belongs to %s", command, token, owner)
}

// ErrInvalidCommand reports a command that cannot be registered at all.
func ErrInvalidCommand(command, reason string) error {
	return oops.Code(CodeInvalidCommand).
		With("command", command).
		Errorf("invalid command %q: %s", command, reason)
}

// KindOf classifies err. Uncoded errors count as execution errors, except
// context deadline errors which are timeouts.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	if errors.Is(err, ErrUnknownCommand) {
		return KindNotFound
	}
	if oe, ok := oops.AsOops(err); ok {
		switch oe.Code() {
		case CodeNotFound:
			return KindNotFound
		case CodeMissingPermissions:
			return KindMissingPermissions
		case CodeInvalidArguments:
			return KindInvalidArguments
		case CodeExecution:
			return KindExecution
		case CodeUpstream:
			return KindUpstream
		case CodeRateLimited:
			return KindRateLimited
		case CodeTimeout:
			return KindTimeout
		case CodeDuplicate:
			return KindDuplicate
		case CodeInvalidCommand:
			return KindInvalidCommand
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindExecution
}

// IsKind reports whether err classifies as k.
func IsKind(err error, k Kind) bool {
	return KindOf(err) == k
}

// UserMessage returns a short text suitable for showing the invoking user.
func UserMessage(err error) string {
	switch KindOf(err) {
	case KindNone:
		return ""
	case KindMissingPermissions:
		return "You don't have permission to use this command."
	case KindInvalidArguments:
		if oe, ok := oops.AsOops(err); ok {
			if usage, ok := oe.Context()["usage"].(string); ok && usage != "" {
				return "Usage: " + usage
			}
		}
		return "Invalid arguments."
	case KindRateLimited:
		return "Slow down, this command is on cooldown."
	case KindTimeout:
		return "That took too long, try again later."
	default:
		return "Something went wrong. Try again."
	}
}
