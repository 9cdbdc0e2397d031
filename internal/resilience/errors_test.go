package resilience

import (
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("invalid api key"), false},
		{"explicit", NewTransientError(errors.New("rate limited"), 429), true},
		{"wrapped with fmt", fmt.Errorf("enrich: %w", NewTransientError(errors.New("busy"), 503)), true},
		{"wrapped with eris", eris.Wrap(NewTransientError(errors.New("busy"), 503), "enrich: call"), true},
		{"connection reset", fmt.Errorf("read: %w", syscall.ECONNRESET), true},
		{"connection refused", fmt.Errorf("dial: %w", syscall.ECONNREFUSED), true},
		{"network timeout", &net.DNSError{IsTimeout: true, Err: "timeout"}, true},
		{"broken pipe text", errors.New("write: broken pipe"), true},
		{"tls text", errors.New("TLS handshake timeout"), true},
		{"overloaded text", errors.New("529 Overloaded"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestIsTransientHTTPStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504, 529} {
		assert.True(t, IsTransientHTTPStatus(code), "HTTP %d", code)
	}
	for _, code := range []int{200, 400, 401, 403, 404, 422} {
		assert.False(t, IsTransientHTTPStatus(code), "HTTP %d", code)
	}
}

func TestTransientError_Unwrap(t *testing.T) {
	inner := errors.New("root cause")
	te := NewTransientError(inner, 500)

	assert.True(t, errors.Is(te, inner))
	assert.Equal(t, 500, te.StatusCode)
	assert.Equal(t, "root cause", te.Error())
}

func TestClassify(t *testing.T) {
	assert.Equal(t, "transient", Classify(NewTransientError(errors.New("x"), 503)))
	assert.Equal(t, "permanent", Classify(errors.New("bad request")))
}
