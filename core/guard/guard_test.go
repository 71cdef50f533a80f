package guard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallReturnsValue(t *testing.T) {
	got, err := Call(context.Background(), time.Second, 0, func(ctx context.Context) (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestCallPropagatesError(t *testing.T) {
	sentinel := errors.New("boom")
	got, err := Call(context.Background(), time.Second, "fallback", func(ctx context.Context) (string, error) {
		return "", sentinel
	})
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, "", got)
}

func TestCallTimeoutReturnsDefault(t *testing.T) {
	started := make(chan struct{})
	got, err := Call(context.Background(), 20*time.Millisecond, "default", func(ctx context.Context) (string, error) {
		close(started)
		<-time.After(500 * time.Millisecond)
		return "late", nil
	})
	<-started
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "default", got)
}

func TestRunHonoursTimeout(t *testing.T) {
	err := Run(context.Background(), 20*time.Millisecond, func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
			return nil
		}
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
