package broadcast

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recordingSender struct {
	sent    []int64
	failFor map[int64]error
}

func (s *recordingSender) Send(_ context.Context, userID int64, _ string) error {
	if err, ok := s.failFor[userID]; ok {
		return err
	}
	s.sent = append(s.sent, userID)
	return nil
}

func newTestRunner(s Sender) *Runner {
	return NewRunner(s, Options{Delay: time.Millisecond, PerSendTimeout: time.Second})
}

func TestRunEmptyAudience(t *testing.T) {
	sender := &recordingSender{}
	sum := newTestRunner(sender).Run(context.Background(), nil, "hello")

	assert.Equal(t, Summary{}, sum)
	assert.Empty(t, sender.sent)
}

func TestRunDeliversSequentially(t *testing.T) {
	sender := &recordingSender{}
	sum := newTestRunner(sender).Run(context.Background(), []int64{1, 2, 3}, "hello")

	assert.Equal(t, Summary{Total: 3, Sent: 3}, sum)
	assert.Equal(t, []int64{1, 2, 3}, sender.sent)
}

func TestRunCountsFailuresAndContinues(t *testing.T) {
	sender := &recordingSender{failFor: map[int64]error{2: errors.New("blocked")}}
	sum := newTestRunner(sender).Run(context.Background(), []int64{1, 2, 3}, "hello")

	assert.Equal(t, Summary{Total: 3, Sent: 2, Failed: 1}, sum)
	assert.Equal(t, []int64{1, 3}, sender.sent)
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sender := &recordingSender{}
	sum := newTestRunner(sender).Run(ctx, []int64{1, 2, 3}, "hello")

	assert.Equal(t, 3, sum.Total)
	assert.Zero(t, sum.Sent)
	assert.Empty(t, sender.sent)
}
