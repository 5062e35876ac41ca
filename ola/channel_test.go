package ola_test

import (
	"sync"

	. "github.com/onsi/gomega"

	"github.com/luma/ola/client"
	"github.com/luma/ola/protocol"
)

// fakeChannel records calls and lets tests decide how each one completes.
type fakeChannel struct {
	mu       sync.Mutex
	calls    []*fakeCall
	streamed []*protocol.DmxData
	closed   bool
}

type fakeCall struct {
	method protocol.Method
	ctrl   *client.Controller
	req    protocol.Marshaler
	reply  protocol.Unmarshaler
	done   func(error)
}

func (f *fakeChannel) Invoke(
	method protocol.Method,
	ctrl *client.Controller,
	req protocol.Marshaler,
	reply protocol.Unmarshaler,
	done func(error),
) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, &fakeCall{method: method, ctrl: ctrl, req: req, reply: reply, done: done})
}

func (f *fakeChannel) Stream(method protocol.Method, req protocol.Marshaler) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return client.ErrConnClosed
	}

	f.streamed = append(f.streamed, req.(*protocol.DmxData))
	return nil
}

func (f *fakeChannel) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
	return nil
}

func (f *fakeChannel) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.calls)
}

func (f *fakeChannel) last() *fakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()

	ExpectWithOffset(1, f.calls).NotTo(BeEmpty())
	return f.calls[len(f.calls)-1]
}

// succeed delivers reply the way the connection does: encoded, then decoded
// into the reply bound to the call.
func (c *fakeCall) succeed(reply protocol.Marshaler) {
	data, err := reply.Marshal()
	ExpectWithOffset(1, err).To(Succeed())

	c.done(c.reply.Unmarshal(data))
}

func (c *fakeCall) fail(text string) {
	c.ctrl.SetFailed(text)
	c.done(nil)
}

func (c *fakeCall) cancel(text string) {
	c.ctrl.StartCancel(text)
	c.done(nil)
}
