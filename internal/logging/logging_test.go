package logging

import (
	"context"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"", zapcore.InfoLevel},
		{"INFO", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"debug", zapcore.Level(-1)},
		{"trace", zapcore.Level(-2)},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestVerbosityGate(t *testing.T) {
	l, err := New("debug")
	require.NoError(t, err)
	assert.True(t, l.V(DEBUG).Enabled())
	assert.False(t, l.V(TRACE).Enabled())

	l, err = New("info")
	require.NoError(t, err)
	assert.False(t, l.V(DEBUG).Enabled())
}

func TestContextFallback(t *testing.T) {
	l := NewTestLogger()
	assert.Equal(t, l, FromContext(context.Background()))

	ctx := IntoContext(context.Background(), logr.Discard())
	assert.False(t, FromContext(ctx).Enabled())
}
