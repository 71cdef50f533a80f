// Package guard bounds blocking calls with a timeout so a stuck
// dependency never stalls update handling.
package guard

import (
	"context"
	"time"
)

type result[T any] struct {
	value T
	err   error
}

// Call runs fn with a deadline and returns def if the deadline expires
// before fn completes. A late result is discarded. fn receives a context
// carrying the deadline and should honour it where possible.
func Call[T any](ctx context.Context, timeout time.Duration, def T, fn func(context.Context) (T, error)) (T, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ch := make(chan result[T], 1)
	go func() {
		v, err := fn(callCtx)
		ch <- result[T]{value: v, err: err}
	}()

	select {
	case res := <-ch:
		return res.value, res.err
	case <-callCtx.Done():
		return def, callCtx.Err()
	}
}

// Run is Call for functions that only return an error.
func Run(ctx context.Context, timeout time.Duration, fn func(context.Context) error) error {
	_, err := Call(ctx, timeout, struct{}{}, func(c context.Context) (struct{}, error) {
		return struct{}{}, fn(c)
	})
	return err
}
