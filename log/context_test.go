package log_test

import (
	"context"
	"testing"

	"github.com/notehub/gitnotes/log"
	"github.com/stretchr/testify/require"
)

// recorder captures log calls for assertions.
type recorder struct {
	msgs []string
}

func (r *recorder) Debug(msg string, kv ...any) { r.msgs = append(r.msgs, msg) }
func (r *recorder) Info(msg string, kv ...any)  { r.msgs = append(r.msgs, msg) }
func (r *recorder) Warn(msg string, kv ...any)  { r.msgs = append(r.msgs, msg) }
func (r *recorder) Error(msg string, kv ...any) { r.msgs = append(r.msgs, msg) }

func TestToContext(t *testing.T) {
	t.Run("adds logger to context", func(t *testing.T) {
		rec := &recorder{}
		ctx := context.Background()
		newCtx := log.ToContext(ctx, rec)

		logger := log.FromContext(newCtx)
		require.Equal(t, rec, logger, "context should carry the provided logger")

		// Original context stays untouched.
		require.NotEqual(t, rec, log.FromContext(ctx))
	})

	t.Run("returns noop logger if none in context", func(t *testing.T) {
		logger := log.FromContext(context.Background())
		require.IsType(t, log.Noop{}, logger)
	})
}

func TestFromContextUsable(t *testing.T) {
	rec := &recorder{}
	ctx := log.ToContext(context.Background(), rec)

	log.FromContext(ctx).Info("hello", "key", "value")
	require.Equal(t, []string{"hello"}, rec.msgs)
}
