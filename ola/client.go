package ola

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/luma/ola/client"
	"github.com/luma/ola/protocol"
)

// Channel carries calls to the daemon. *client.Conn is the production
// implementation.
type Channel interface {
	Invoke(method protocol.Method, ctrl *client.Controller, req protocol.Marshaler, reply protocol.Unmarshaler, done func(error))
	Stream(method protocol.Method, req protocol.Marshaler) error
	Close() error
}

// Client is an asynchronous client for the OLA daemon. Every operation sends a
// single call and returns immediately; results arrive through the returned
// Call and the optional callback.
type Client struct {
	ch       Channel
	registry *registry
	log      *zap.Logger
}

var _ client.Service = (*Client)(nil)

// New returns a Client that sends its calls over ch. Pushed DMX updates only
// reach the client when the channel hands them to Serve.
func New(ch Channel, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}

	return &Client{
		ch:       ch,
		registry: newRegistry(),
		log:      log,
	}
}

// Dial connects to the daemon at addr. The connection is closed when ctx is
// cancelled or Close is called.
func Dial(ctx context.Context, addr string, log *zap.Logger) (*Client, error) {
	c := New(nil, log)

	conn := client.New(client.Options{
		Service: c,
		Log:     c.log.Named("conn"),
	})

	if err := conn.Connect(ctx, addr); err != nil {
		return nil, err
	}

	c.ch = conn
	return c, nil
}

func (c *Client) Close() error {
	return c.ch.Close()
}

// Serve handles calls made by the daemon. Only UpdateDmxData is served; the
// frame is passed to the handler registered for its universe, if any.
func (c *Client) Serve(method protocol.Method, payload []byte) (protocol.Marshaler, error) {
	if method != protocol.UpdateDmxData {
		return nil, fmt.Errorf("%s: %w", method, ErrNotServed)
	}

	var data protocol.DmxData
	if err := data.Unmarshal(payload); err != nil {
		return nil, fmt.Errorf("decoding pushed frame: %w", err)
	}

	frame := DmxFrame{
		Universe: int(data.Universe),
		Levels:   DecodeLevels(data.Data),
	}

	if !c.registry.deliver(frame) {
		c.log.Debug("Dropping frame for unregistered universe", zap.Int("universe", frame.Universe))
	}

	return &protocol.Ack{}, nil
}

// invoke performs one call against ep. decode turns a successful reply into
// the value handed to the caller; it is not run for failed or cancelled calls.
//
// A reply that cannot be decoded, by the wire codec or by decode, resolves the
// call with a *ProtocolMismatchError and cb is not invoked.
func invoke[Req protocol.Marshaler, R any, PR replyPtr[R], T any](
	c *Client,
	ep endpoint[Req, R, PR],
	req Req,
	decode func(*R) (T, error),
	cb Callback[T],
) *Call[T] {
	call := newCall[T]()
	ctrl := client.NewController()
	reply := PR(new(R))

	c.ch.Invoke(ep.method, ctrl, req, reply, func(err error) {
		var value T

		if err != nil {
			c.mismatch(ep.method, err, call)
			return
		}

		status := statusOf(ctrl)

		if status.Succeeded() {
			value, err = decode((*R)(reply))
			if err != nil {
				c.mismatch(ep.method, err, call)
				return
			}
		}

		c.logOutcome(ep.method, status)

		call.resolve(status, value, nil)
		if cb != nil {
			cb(status, value)
		}
	})

	return call
}

type failer interface {
	fail(err error)
}

func (c *Client) mismatch(method protocol.Method, cause error, call failer) {
	err := &ProtocolMismatchError{Method: method, Err: cause}

	c.log.DPanic("Daemon reply does not match the method", zap.Stringer("method", method), zap.Error(cause))
	call.fail(err)
}

func (c *Client) logOutcome(method protocol.Method, status RequestStatus) {
	if status.Succeeded() {
		c.log.Debug("Call succeeded", zap.Stringer("method", method))
		return
	}

	c.log.Warn("Call did not succeed",
		zap.Stringer("method", method),
		zap.Stringer("state", status.State()),
		zap.String("message", status.Message()))
}

// rejected returns a call that has already failed with err, without reaching
// the daemon.
func rejected[T any](err error) *Call[T] {
	call := newCall[T]()
	call.fail(err)

	return call
}
