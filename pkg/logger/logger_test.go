package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ajitpratap0/ipws/pkg/errors"
)

func TestNewRejectsInvalidLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestInitAndGet(t *testing.T) {
	require.NoError(t, Init(Config{Level: "debug", Encoding: "console", OutputPaths: []string{"stderr"}}))
	assert.True(t, Get().Core().Enabled(zap.DebugLevel))

	require.NoError(t, Init(DefaultConfig()))
	assert.False(t, Get().Core().Enabled(zap.DebugLevel))
}

func TestErrorFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := zap.New(core)

	inner := errors.New(errors.ErrorTypeFormat, "invalid classification tag").WithDetail("record", 12)
	err := errors.Wrap(inner, errors.ErrorTypeFormat, "decode polytope info").WithDetail("path", "info.bin")
	l.Error("run failed", ErrorFields(err)...)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "format", fields["error_type"])
	assert.Equal(t, "info.bin", fields["path"])
	assert.EqualValues(t, 12, fields["record"])
}

func TestWithContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), CommandKey, "palp")
	assert.NotNil(t, WithContext(ctx))
}
