package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestIDContext(t *testing.T) {
	t.Run("round-trips through a context", func(t *testing.T) {
		ctx := WithRequestID(context.Background(), "req-123")
		assert.Equal(t, "req-123", GetRequestID(ctx))
	})

	t.Run("empty when absent", func(t *testing.T) {
		assert.Empty(t, GetRequestID(context.Background()))
	})

	t.Run("ignores foreign values under a string key", func(t *testing.T) {
		type otherKey string
		ctx := context.WithValue(context.Background(), otherKey("request_id"), "spoofed")
		assert.Empty(t, GetRequestID(ctx))
	})
}
