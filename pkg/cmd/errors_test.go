package cmd

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindNone},
		{"not found", ErrNotFound("nope"), KindNotFound},
		{"unknown command sentinel", ErrUnknownCommand, KindNotFound},
		{"wrapped unknown command", fmt.Errorf("route: %w", ErrUnknownCommand), KindNotFound},
		{"missing permissions", ErrMissingPermissions("ban", 4, "not an owner"), KindMissingPermissions},
		{"invalid args", ErrInvalidArguments("ban", "ban <user>"), KindInvalidArguments},
		{"execution", ExecutionError("ban", errors.New("boom")), KindExecution},
		{"upstream", UpstreamError("send message", errors.New("503")), KindUpstream},
		{"rate limited", ErrRateLimited("ping", 1500), KindRateLimited},
		{"timeout", ErrTimeout("ping", context.DeadlineExceeded), KindTimeout},
		{"bare deadline", fmt.Errorf("wait: %w", context.DeadlineExceeded), KindTimeout},
		{"plain error", errors.New("oops"), KindExecution},
		{"wrapped coded", fmt.Errorf("outer: %w", ErrNotFound("x")), KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestErrorContext(t *testing.T) {
	oopsErr, ok := oops.AsOops(ErrMissingPermissions("ban", 4, "lacks BAN_MEMBERS"))
	assert.True(t, ok)
	assert.Equal(t, "MISSING_PERMISSIONS", oopsErr.Code())
	assert.Equal(t, "ban", oopsErr.Context()["command"])
	assert.Equal(t, int64(4), oopsErr.Context()["required"])

	oopsErr, _ = oops.AsOops(ErrRateLimited("ping", 1500))
	assert.Equal(t, int64(1500), oopsErr.Context()["retry_after_ms"])
}

func TestUpstreamErrorKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := UpstreamError("send message", cause)
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsKind(err, KindUpstream))
}

func TestUserMessage(t *testing.T) {
	assert.Empty(t, UserMessage(nil))
	assert.Equal(t, "Usage: ban <user>", UserMessage(ErrInvalidArguments("ban", "ban <user>")))
	assert.Equal(t, "Invalid arguments.", UserMessage(ErrInvalidArguments("ban", "")))
	assert.Contains(t, UserMessage(ErrMissingPermissions("ban", 0, "owner only")), "permission")
	assert.Contains(t, UserMessage(ErrRateLimited("ping", 10)), "cooldown")
	assert.Equal(t, "Something went wrong. Try again.", UserMessage(errors.New("x")))
}
