package error

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatusCode(t *testing.T) {
	upstream := errors.New("connection refused")

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: http.StatusOK},
		{name: "validation", err: NewValidationError("bad", nil), want: http.StatusBadRequest},
		{name: "upstream", err: NewUpstreamError("ask failed", upstream), want: http.StatusBadGateway},
		{name: "unavailable", err: NewClientUnavailableError("no client", ErrMissingAPIKey), want: http.StatusServiceUnavailable},
		{name: "wrapped app error", err: fmt.Errorf("rpc: %w", NewInternalError("boom", nil)), want: http.StatusInternalServerError},
		{name: "deadline", err: context.DeadlineExceeded, want: http.StatusGatewayTimeout},
		{name: "plain", err: upstream, want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, GetHTTPStatusCode(tt.err))
		})
	}
}

func TestNewUpstreamError_KeepsCause(t *testing.T) {
	cause := errors.New("401 unauthorized")
	err := NewUpstreamError("ask failed", cause)

	require.ErrorIs(t, err, cause)
	require.True(t, IsType(err, ErrorTypeUpstream))
	require.Contains(t, err.Error(), "401 unauthorized")
}

func TestCause(t *testing.T) {
	cause := errors.New("401 unauthorized")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "upstream", err: NewUpstreamError("query failed", cause), want: "401 unauthorized"},
		{name: "wrapped upstream", err: fmt.Errorf("rpc: %w", NewUpstreamError("query failed", cause)), want: "401 unauthorized"},
		{name: "timeout", err: NewUpstreamError("query failed", context.DeadlineExceeded), want: "context deadline exceeded"},
		{name: "unavailable", err: NewClientUnavailableError("chat client unavailable", ErrMissingAPIKey), want: ErrMissingAPIKey.Error()},
		{name: "validation keeps its own message", err: NewValidationError("bad", ErrWrongArity), want: "validation_error: bad: wrong number of arguments"},
		{name: "upstream without cause", err: NewUpstreamError("query failed", nil), want: "upstream_error: query failed"},
		{name: "plain", err: cause, want: "401 unauthorized"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.EqualError(t, Cause(tt.err), tt.want)
		})
	}
}

func TestNewUpstreamError_DeadlineBecomesTimeout(t *testing.T) {
	err := NewUpstreamError("ask failed", fmt.Errorf("send: %w", context.DeadlineExceeded))
	require.True(t, IsType(err, ErrorTypeTimeout))
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse(NewClientUnavailableError("chat client unavailable", ErrMissingAPIKey))
	require.Equal(t, ErrorTypeClientUnavailable, resp.Error.Type)
	require.Equal(t, "chat client unavailable: chat API key is not configured", resp.Error.Message)

	resp = NewErrorResponse(errors.New("plain"))
	require.Equal(t, ErrorTypeInternal, resp.Error.Type)
	require.Equal(t, "plain", resp.Error.Message)
}
