package client

import "sync"

// Controller tracks the outcome of a single call. A fresh Controller is used
// for every call and is never shared between calls.
type Controller struct {
	mu       sync.Mutex
	failed   bool
	canceled bool
	reason   string
}

func NewController() *Controller {
	return &Controller{}
}

// Failed reports whether the call failed.
func (c *Controller) Failed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.failed
}

// IsCanceled reports whether the call was cancelled before it completed.
func (c *Controller) IsCanceled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.canceled
}

// ErrorText is the reason given for a failure or cancellation.
func (c *Controller) ErrorText() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.reason
}

// SetFailed marks the call as failed.
func (c *Controller) SetFailed(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.failed = true
	c.reason = reason
}

// StartCancel marks the call as cancelled.
func (c *Controller) StartCancel(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.canceled = true
	c.reason = reason
}

// Reset clears the outcome so the Controller can describe a new call.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.failed = false
	c.canceled = false
	c.reason = ""
}
