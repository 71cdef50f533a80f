package sender

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnqueueRunsJob(t *testing.T) {
	d := NewDispatcher(Options{QueueSize: 8, Workers: 1})

	done := make(chan struct{})
	err := d.Enqueue(context.Background(), "send.text", func() error {
		close(done)
		return nil
	})
	require.NoError(t, err)
	<-done
	d.Close()

	assert.EqualValues(t, 0, d.ErrorCount())
}

func TestEnqueueAfterCloseReturnsClosed(t *testing.T) {
	d := NewDispatcher(Options{QueueSize: 8, Workers: 1})
	d.Close()

	err := d.Enqueue(context.Background(), "send.text", func() error { return nil })
	assert.ErrorIs(t, err, ErrQueueClosed)
}

// Enqueue concurrent with Close must refuse the job instead of sending
// on a closed channel.
func TestEnqueueDuringCloseDoesNotPanic(t *testing.T) {
	d := NewDispatcher(Options{QueueSize: 1, Workers: 1})

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			for j := 0; j < 100; j++ {
				_ = d.Enqueue(context.Background(), "send.text", func() error { return nil })
			}
		}()
	}

	close(start)
	d.Close()
	wg.Wait()

	err := d.Enqueue(context.Background(), "send.text", func() error { return nil })
	assert.ErrorIs(t, err, ErrQueueClosed)
}
