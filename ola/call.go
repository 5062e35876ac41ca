package ola

import (
	"context"
	"sync"
)

// Callback receives the outcome of a call. It is invoked at most once, on the
// goroutine that delivered the daemon's response.
type Callback[T any] func(status RequestStatus, value T)

// Call is the pending result of an operation. It resolves exactly once, either
// with a status and value or with an error when the daemon's reply could not
// be understood. The value is the zero value unless the status is SUCCESS.
type Call[T any] struct {
	once sync.Once
	done chan struct{}

	status RequestStatus
	value  T
	err    error
}

func newCall[T any]() *Call[T] {
	return &Call[T]{done: make(chan struct{})}
}

func (c *Call[T]) resolve(status RequestStatus, value T, err error) bool {
	resolved := false

	c.once.Do(func() {
		c.status = status
		c.value = value
		c.err = err
		close(c.done)
		resolved = true
	})

	return resolved
}

func (c *Call[T]) fail(err error) {
	var zero T
	c.resolve(RequestStatus{state: Failed, message: err.Error()}, zero, err)
}

// Done is closed once the call has resolved.
func (c *Call[T]) Done() <-chan struct{} {
	return c.done
}

// Result returns the call's outcome. It must only be called after Done is
// closed.
func (c *Call[T]) Result() (T, RequestStatus, error) {
	return c.value, c.status, c.err
}

// Wait blocks until the call resolves or ctx is done. Giving up on a call
// does not cancel it.
func (c *Call[T]) Wait(ctx context.Context) (T, RequestStatus, error) {
	select {
	case <-c.done:
		return c.Result()

	case <-ctx.Done():
		var zero T
		return zero, RequestStatus{state: Cancelled, message: ctx.Err().Error()}, ctx.Err()
	}
}
