package logger_test

import (
	"context"
	"testing"

	"wardrobe/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	l, err := logger.NewLogger(logger.Development, "debug")
	require.NoError(t, err)
	assert.NotNil(t, l)

	l, err = logger.NewLogger(logger.Production, "")
	require.NoError(t, err)
	assert.NotNil(t, l)

	_, err = logger.NewLogger("verbose", "")
	assert.Error(t, err)

	_, err = logger.NewLogger(logger.Production, "loud")
	assert.Error(t, err)
}

func TestFromContext(t *testing.T) {
	t.Run("logger in context", func(t *testing.T) {
		l := logger.NewNop()
		ctx := logger.NewContext(context.Background(), l)

		got, err := logger.FromContext(ctx)
		require.NoError(t, err)
		assert.Same(t, l, got)
		assert.Same(t, l, logger.Log(ctx))
	})

	t.Run("no logger in context", func(t *testing.T) {
		got, err := logger.FromContext(context.Background())
		assert.Nil(t, got)
		assert.ErrorIs(t, err, logger.ErrLoggerNotFound)
		assert.NotNil(t, logger.Log(context.Background()))
	})
}

func TestRequestIDIsAdded(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := logger.FromZap(zap.New(core))

	ctx := logger.NewRequestIDContext(context.Background(), "req-1")
	l.Info(ctx, "hello", zap.String("k", "v"))
	l.Debug(ctx, "hidden")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "hello", entries[0].Message)
	assert.Equal(t, "req-1", entries[0].ContextMap()[logger.RequestID])
	assert.Equal(t, "v", entries[0].ContextMap()["k"])
}

func TestGeneratedRequestID(t *testing.T) {
	ctx := logger.NewRequestIDContext(context.Background(), "")
	id, ok := logger.GetRequestID(ctx)
	assert.True(t, ok)
	assert.Len(t, id, 36)
}
