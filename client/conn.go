package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/luma/ola/protocol"
)

var (
	ErrConnClosed   = errors.New("connection to the daemon is closed")
	ErrNotConnected = errors.New("not connected to the daemon")
)

const (
	reasonClosed         = "connection closed"
	reasonNotImplemented = "Method not implemented"
)

type pendingCall struct {
	method protocol.Method
	ctrl   *Controller
	reply  protocol.Unmarshaler
	done   func(error)
}

// Conn is a persistent RPC channel to the daemon. Calls are pipelined over a
// single stream and paired with their responses by request ID. The daemon can
// also call methods on the client; those are handed to the Service.
type Conn struct {
	conn   net.Conn
	reader *bufio.Reader

	writeMu sync.Mutex

	respMu  sync.Mutex
	pending map[uint32]*pendingCall
	closed  bool

	idMu      sync.Mutex
	requestID uint32

	readDone chan struct{}

	// Set while the read loop runs callbacks, which may call Close
	dispatching atomic.Bool

	service      Service
	maxFrameSize int

	log *zap.Logger
}

func New(options Options) *Conn {
	log := options.Log
	if log == nil {
		log = zap.NewNop()
	}

	return &Conn{
		pending:      make(map[uint32]*pendingCall),
		service:      options.Service,
		maxFrameSize: options.MaxFrameSize,
		log:          log,
	}
}

// Connect dials the daemon and starts reading from it. The connection is
// closed when ctx is cancelled.
func (c *Conn) Connect(ctx context.Context, addr string) error {
	var d net.Dialer

	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}

	c.Attach(ctx, conn)
	return nil
}

// Attach starts using an already established connection.
func (c *Conn) Attach(ctx context.Context, conn net.Conn) {
	c.conn = conn
	c.reader = bufio.NewReader(conn)
	c.readDone = make(chan struct{})

	go c.readLoop()

	go func() {
		select {
		case <-ctx.Done():
			c.log.Info("Context cancelled, closing connection")
			c.Close()

		case <-c.readDone:
		}
	}()
}

// Done is closed once the connection has stopped reading.
func (c *Conn) Done() <-chan struct{} {
	return c.readDone
}

// Close closes the connection. Calls still waiting for a response are
// cancelled. Close waits for the read loop to exit, unless it is called from
// a callback the read loop is running.
func (c *Conn) Close() error {
	if c.conn == nil {
		return nil
	}

	c.shutdown(reasonClosed)

	err := c.conn.Close()
	if !c.dispatching.Load() {
		<-c.readDone
	}

	if errors.Is(err, net.ErrClosed) {
		return nil
	}

	return err
}

// Invoke calls method on the daemon. done is called exactly once, after ctrl
// describes the outcome. A non-nil error passed to done means the daemon's
// reply could not be decoded into reply.
//
// done runs on the connection's read loop, or on the caller's goroutine when
// the request cannot be sent.
func (c *Conn) Invoke(
	method protocol.Method,
	ctrl *Controller,
	req protocol.Marshaler,
	reply protocol.Unmarshaler,
	done func(error),
) {
	call := &pendingCall{method: method, ctrl: ctrl, reply: reply, done: done}

	reqID, err := c.addPending(call)
	if err != nil {
		ctrl.SetFailed(err.Error())
		done(nil)
		return
	}

	msg, err := protocol.NewRequest(reqID, method, req)
	if err == nil {
		err = c.write(msg)
	}

	if err != nil {
		if call := c.takePending(reqID); call != nil {
			c.log.Warn("Failed to send request",
				zap.Stringer("method", method),
				zap.Error(err))

			call.ctrl.SetFailed(err.Error())
			call.done(nil)
		}
	}
}

// Stream sends a request that the daemon does not reply to.
func (c *Conn) Stream(method protocol.Method, req protocol.Marshaler) error {
	c.respMu.Lock()
	closed := c.closed || c.conn == nil
	c.respMu.Unlock()

	if closed {
		return ErrConnClosed
	}

	msg, err := protocol.NewStreamRequest(method, req)
	if err != nil {
		return err
	}

	return c.write(msg)
}

func (c *Conn) write(msg *protocol.RpcMessage) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	return protocol.WriteMessage(c.conn, msg)
}

func (c *Conn) readLoop() {
	log := c.log.Named("readLoop")

	defer func() {
		c.dispatching.Store(true)
		c.shutdown(reasonClosed)
		c.dispatching.Store(false)

		close(c.readDone)
		log.Info("Read loop exited")
	}()

	for {
		msg, err := protocol.ReadMessage(c.reader, c.maxFrameSize)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				log.Info("Connection closed")
			} else {
				log.Warn("Failed to read from daemon", zap.Error(err))
			}

			return
		}

		if msg.Type == protocol.TypeDisconnect {
			log.Info("Daemon disconnected")
			return
		}

		c.dispatching.Store(true)
		c.dispatch(msg)
		c.dispatching.Store(false)
	}
}

func (c *Conn) dispatch(msg *protocol.RpcMessage) {
	switch msg.Type {
	case protocol.TypeRequest, protocol.TypeStreamRequest:
		c.serve(msg)
		return

	case protocol.TypeResponse,
		protocol.TypeResponseFailed,
		protocol.TypeResponseCancel,
		protocol.TypeResponseNotImplemented:

	default:
		c.log.Warn("Ignoring unexpected message", zap.Stringer("type", msg.Type))
		return
	}

	call := c.takePending(msg.ID)
	if call == nil {
		c.log.Debug("Response for unknown request",
			zap.Uint32("requestID", msg.ID),
			zap.Stringer("type", msg.Type))
		return
	}

	switch msg.Type {
	case protocol.TypeResponse:
		var err error
		if uerr := call.reply.Unmarshal(msg.Buffer); uerr != nil {
			err = fmt.Errorf("decoding %s reply: %w", call.method, uerr)
		}

		call.done(err)

	case protocol.TypeResponseFailed:
		call.ctrl.SetFailed(string(msg.Buffer))
		call.done(nil)

	case protocol.TypeResponseCancel:
		call.ctrl.StartCancel(string(msg.Buffer))
		call.done(nil)

	case protocol.TypeResponseNotImplemented:
		call.ctrl.SetFailed(reasonNotImplemented)
		call.done(nil)
	}
}

// serve answers a request made by the daemon.
func (c *Conn) serve(msg *protocol.RpcMessage) {
	log := c.log.With(zap.String("method", msg.Name), zap.Uint32("requestID", msg.ID))

	method, ok := protocol.ParseMethod(msg.Name)
	if !ok || c.service == nil {
		log.Debug("Daemon called an unsupported method")

		if msg.Type == protocol.TypeRequest {
			c.reply(log, &protocol.RpcMessage{Type: protocol.TypeResponseNotImplemented, ID: msg.ID})
		}
		return
	}

	reply, err := c.service.Serve(method, msg.Buffer)

	if msg.Type == protocol.TypeStreamRequest {
		if err != nil {
			log.Warn("Failed to handle stream request", zap.Error(err))
		}
		return
	}

	if err != nil {
		c.reply(log, protocol.NewFailedResponse(msg.ID, err.Error()))
		return
	}

	resp, err := protocol.NewResponse(msg.ID, reply)
	if err != nil {
		c.reply(log, protocol.NewFailedResponse(msg.ID, err.Error()))
		return
	}

	c.reply(log, resp)
}

func (c *Conn) reply(log *zap.Logger, msg *protocol.RpcMessage) {
	if err := c.write(msg); err != nil {
		log.Warn("Failed to reply to daemon", zap.Error(err))
	}
}

func (c *Conn) addPending(call *pendingCall) (uint32, error) {
	c.respMu.Lock()
	defer c.respMu.Unlock()

	if c.conn == nil {
		return 0, ErrNotConnected
	}

	if c.closed {
		return 0, ErrConnClosed
	}

	reqID := c.getNextRequestID()
	c.pending[reqID] = call

	return reqID, nil
}

func (c *Conn) takePending(reqID uint32) *pendingCall {
	c.respMu.Lock()
	defer c.respMu.Unlock()

	call, ok := c.pending[reqID]
	if !ok {
		return nil
	}

	delete(c.pending, reqID)
	return call
}

// shutdown stops accepting calls and cancels every call still waiting for a
// response.
func (c *Conn) shutdown(reason string) {
	c.respMu.Lock()
	c.closed = true
	pending := c.pending
	c.pending = make(map[uint32]*pendingCall)
	c.respMu.Unlock()

	for _, call := range pending {
		call.ctrl.StartCancel(reason)
		call.done(nil)
	}
}

func (c *Conn) getNextRequestID() uint32 {
	c.idMu.Lock()
	defer c.idMu.Unlock()

	if c.requestID < math.MaxUint32 {
		c.requestID += 1
	} else {
		// Wrap around instead of overflowing
		c.requestID = 0
	}

	return c.requestID
}
