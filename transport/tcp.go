package transport

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"runtime"
	"strconv"
	"sync"
	"time"

	reuseport "github.com/kavu/go_reuseport"
	"github.com/tidwall/gjson"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/luma/ola/protocol"
	"github.com/luma/ola/storage"
)

const (
	WriteQueueSize = 127

	// RequestTimeout bounds how long a single request may spend in the store
	RequestTimeout = 3 * time.Second
)

var (
	ErrConnClosed = errors.New("connection is closed")

	errNotImplemented = errors.New("method not implemented")
)

// TCP is a simulated OLA daemon. It serves the daemon's RPC protocol over TCP
// against the state in a store.
type TCP struct {
	cancel     context.CancelFunc
	stopWaiter sync.WaitGroup

	addr      string
	reuseport bool

	numListeners int
	listeners    []*TCPListener

	store  storage.Store
	daemon *Daemon

	maxFrameSize int

	log   *zap.Logger
	trace bool
}

func NewTCP(options Options) *TCP {
	numListeners := options.NumListeners

	if numListeners < 1 {
		numListeners = runtime.NumCPU()
	}

	if !options.Reuseport {
		numListeners = 1
	}

	log := options.Log
	if log == nil {
		log = zap.NewNop()
	}

	return &TCP{
		addr:         net.JoinHostPort(options.Host, strconv.Itoa(options.Port)),
		reuseport:    options.Reuseport,
		numListeners: numListeners,
		listeners:    make([]*TCPListener, 0, numListeners),
		trace:        options.Trace,
		store:        options.Store,
		daemon:       NewDaemon(options.Store, log.Named("daemon")),
		maxFrameSize: options.MaxFrameSize,
		log:          log,
	}
}

// Start binds every listener and starts accepting connections. It fails if
// any listener cannot bind; listeners that did bind are closed again.
func (w *TCP) Start(parentCtx context.Context) error {
	ctx, cancel := context.WithCancel(parentCtx)
	w.cancel = cancel

	w.log.Info("Starting tcp listeners", zap.Int("count", w.numListeners))

	var err error

	for i := 0; i < w.numListeners; i++ {
		err = multierr.Append(err, w.startListener(ctx, i))
	}

	if err != nil {
		w.Close()
		return err
	}

	return nil
}

func (t *TCP) Store() storage.Store {
	return t.store
}

// Addr is the address the first listener is bound to.
func (t *TCP) Addr() net.Addr {
	if len(t.listeners) == 0 {
		return nil
	}

	return t.listeners[0].Addr()
}

func (w *TCP) startListener(ctx context.Context, i int) error {
	addr := w.addr
	if i > 0 {
		// Every listener shares the port the first one was given
		addr = w.listeners[0].Addr().String()
	}

	listener := NewTCPListener(ctx, w, w.log.Named("listener").With(zap.Int("listener", i)))
	if err := listener.Bind(addr); err != nil {
		return err
	}

	w.listeners = append(w.listeners, listener)

	w.stopWaiter.Add(1)
	go func() {
		defer w.stopWaiter.Done()

		if err := listener.Listen(); err != nil {
			w.log.Error("Listener stopped accepting connections", zap.Error(err))
		}
	}()

	return nil
}

// Close immediately closes all active listeners and connections.
//
// For a graceful shutdown, use Shutdown()
func (w *TCP) Close() error {
	w.log.Info("Stopping TCP server")
	w.cancel()

	var err error

	for _, listener := range w.listeners {
		err = multierr.Append(err, listener.Close())
	}

	w.stopWaiter.Wait()
	w.log.Info("Listeners stopped")

	return err
}

// Shutdown closes the server, giving up waiting for it when ctx is done.
func (w *TCP) Shutdown(ctx context.Context) error {
	done := make(chan error, 1)

	go func() {
		done <- w.Close()
	}()

	select {
	case err := <-done:
		return err

	case <-ctx.Done():
		return ctx.Err()
	}
}

type TCPListener struct {
	ctx    context.Context
	server *TCP

	listener net.Listener
	log      *zap.Logger

	mu          sync.Mutex
	activeConns map[*TCPConn]struct{}
	loopWaiter  sync.WaitGroup
}

func NewTCPListener(ctx context.Context, server *TCP, log *zap.Logger) *TCPListener {
	return &TCPListener{
		ctx:         ctx,
		server:      server,
		activeConns: make(map[*TCPConn]struct{}),
		log:         log,
	}
}

func (t *TCPListener) Bind(addr string) (err error) {
	if t.server.reuseport {
		t.listener, err = reuseport.Listen("tcp", addr)
	} else {
		var lc net.ListenConfig
		t.listener, err = lc.Listen(t.ctx, "tcp", addr)
	}

	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	return nil
}

func (t *TCPListener) Addr() net.Addr {
	return t.listener.Addr()
}

// Close stops accepting connections and closes the active ones.
func (t *TCPListener) Close() error {
	err := t.listener.Close()
	if errors.Is(err, net.ErrClosed) {
		err = nil
	}

	t.mu.Lock()
	conns := make([]*TCPConn, 0, len(t.activeConns))
	for conn := range t.activeConns {
		conns = append(conns, conn)
	}
	t.mu.Unlock()

	for _, conn := range conns {
		err = multierr.Append(err, conn.Close())
	}

	return err
}

func (t *TCPListener) Listen() error {
	defer func() {
		t.log.Info("Waiting for Read/Write loops to stop")
		t.loopWaiter.Wait()
		t.log.Info("Listener stopped")
	}()

	go func() {
		<-t.ctx.Done()

		t.log.Info("Closing listener")
		if err := t.Close(); err != nil {
			t.log.Warn("TCP Listener did not close cleanly", zap.Error(err))
		}
	}()

	// Push DMX written to the store to subscribed clients. Updates are drained
	// until the store closes so writers never block on a stopped listener.
	updates := t.server.store.ListenToUpdates()
	go func() {
		for update := range updates {
			if !t.isRunning() {
				continue
			}

			if err := t.WriteUpdate(update); err != nil {
				t.log.Warn("Failed to push update", zap.String("key", update.Key), zap.Error(err))
			}
		}
	}()

	for {
		conn, err := t.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				// The listener was closed while we were waiting for new connections
				// that's fine.
				t.log.Info("Stopped accepting new connections")
				return nil
			}

			return err
		}

		tcpConn := NewTCPConn(t.ctx, conn, t.server, t.log.Named("conn"))
		t.addConn(tcpConn)

		t.loopWaiter.Add(1)
		go func() {
			defer t.loopWaiter.Done()
			defer t.removeConn(tcpConn)

			tcpConn.Start()
		}()
	}
}

// WriteUpdate pushes a DMX frame written to the store to every connection
// registered for its universe. Other updates are ignored.
func (t *TCPListener) WriteUpdate(update *storage.Update) (err error) {
	universe, ok := storage.ParseDmxKey(update.Key)
	if !ok {
		return nil
	}

	levels := storage.ParseLevels(gjson.ParseBytes(update.Value))
	data := make([]byte, len(levels))
	for i, v := range levels {
		data[i] = byte(v)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	for conn := range t.activeConns {
		if uerr := conn.PushDmx(universe, data); uerr != nil {
			err = multierr.Append(err, uerr)
		}
	}

	return err
}

func (t *TCPListener) addConn(conn *TCPConn) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.activeConns[conn] = struct{}{}
}

func (t *TCPListener) removeConn(conn *TCPConn) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.activeConns, conn)
}

// TCPConn is a single client connection. Requests are answered in order by the
// read loop; everything written goes through the write queue.
type TCPConn struct {
	ctx        context.Context
	cancel     context.CancelFunc
	loopWaiter sync.WaitGroup
	closeOnce  sync.Once

	conn   net.Conn
	reader *bufio.Reader
	server *TCP

	writeQueue chan *protocol.RpcMessage

	subMu         sync.RWMutex
	subscriptions map[int]struct{}

	idMu      sync.Mutex
	requestID uint32

	log *zap.Logger
}

func NewTCPConn(parentCtx context.Context, conn net.Conn, server *TCP, log *zap.Logger) *TCPConn {
	ctx, cancel := context.WithCancel(parentCtx)

	return &TCPConn{
		ctx:           ctx,
		cancel:        cancel,
		conn:          conn,
		reader:        bufio.NewReader(conn),
		server:        server,
		writeQueue:    make(chan *protocol.RpcMessage, WriteQueueSize),
		subscriptions: make(map[int]struct{}),
		log:           log.With(zap.Stringer("remote", conn.RemoteAddr())),
	}
}

// Close stops the connection. The loops exit on their own once the
// connection is closed.
func (t *TCPConn) Close() (err error) {
	t.closeOnce.Do(func() {
		t.cancel()

		err = t.conn.Close()
		if errors.Is(err, net.ErrClosed) {
			err = nil
		}
	})

	return err
}

// Start runs the read and write loops until the connection ends, either
// side of it hangs up, or Close is called.
func (t *TCPConn) Start() {
	t.loopWaiter.Add(2)

	go func() {
		defer t.loopWaiter.Done()
		t.ReadLoop()
	}()

	go func() {
		defer t.loopWaiter.Done()
		t.WriteLoop()
	}()

	<-t.ctx.Done()

	// Unblocks the read loop
	if err := t.Close(); err != nil {
		t.log.Warn("Connection did not close cleanly", zap.Error(err))
	}

	t.loopWaiter.Wait()
}

func (t *TCPConn) ReadLoop() {
	log := t.log.Named("readLoop")

	defer func() {
		// The write loop stops with us
		t.cancel()
		log.Info("Listener read loop exited")
	}()

	for {
		msg, err := protocol.ReadMessage(t.reader, t.server.maxFrameSize)
		if err != nil {
			if !t.isRunning() || errors.Is(err, net.ErrClosed) || errors.Is(err, io.EOF) {
				log.Info("Client disconnected")
			} else {
				log.Warn("Failed to read client request", zap.Error(err))
			}

			return
		}

		if t.server.trace {
			log.Debug("Read frame",
				zap.Stringer("type", msg.Type),
				zap.Uint32("requestID", msg.ID),
				zap.String("method", msg.Name),
				zap.Int("size", len(msg.Buffer)))
		}

		switch msg.Type {
		case protocol.TypeRequest, protocol.TypeStreamRequest:
			t.dispatch(msg)

		case protocol.TypeDisconnect:
			log.Info("Client sent DISCONNECT, exiting...")
			return

		default:
			// Acknowledgements of pushed updates
		}
	}
}

func (t *TCPConn) WriteLoop() {
	log := t.log.Named("writeLoop")

	defer log.Info("Listener write loop exited")

	for {
		select {
		case <-t.ctx.Done():
			return

		case msg := <-t.writeQueue:
			if t.server.trace {
				log.Debug("Write frame",
					zap.Stringer("type", msg.Type),
					zap.Uint32("requestID", msg.ID),
					zap.String("method", msg.Name))
			}

			if err := protocol.WriteMessage(t.conn, msg); err != nil {
				log.Error("Failed to write from write queue", zap.Error(err))
				t.cancel()
				return
			}
		}
	}
}

// Write queues msg for the write loop.
func (t *TCPConn) Write(msg *protocol.RpcMessage) error {
	select {
	case t.writeQueue <- msg:
		return nil

	case <-t.ctx.Done():
		return ErrConnClosed
	}
}

// PushDmx calls UpdateDmxData on the client if it registered for universe.
func (t *TCPConn) PushDmx(universe int, data []byte) error {
	if !t.isSubscribed(universe) {
		return nil
	}

	msg, err := protocol.NewRequest(t.getNextRequestID(), protocol.UpdateDmxData, &protocol.DmxData{
		Universe: int32(universe),
		Data:     data,
	})
	if err != nil {
		return err
	}

	return t.Write(msg)
}

func (t *TCPConn) dispatch(msg *protocol.RpcMessage) {
	log := t.log.With(zap.String("method", msg.Name), zap.Uint32("requestID", msg.ID))

	method, ok := protocol.ParseMethod(msg.Name)
	if !ok {
		log.Debug("Unknown method")
		t.respond(log, msg, nil, errNotImplemented)
		return
	}

	ctx, cancel := context.WithTimeout(t.ctx, RequestTimeout)
	defer cancel()

	reply, err := t.server.daemon.Handle(ctx, method, msg.Buffer)
	if err == nil && method == protocol.RegisterForDmx {
		err = t.register(msg.Buffer)
	}

	if err != nil {
		log.Warn("Request failed", zap.Error(err))
	}

	t.respond(log, msg, reply, err)
}

func (t *TCPConn) respond(log *zap.Logger, msg *protocol.RpcMessage, reply protocol.Marshaler, err error) {
	if msg.Type == protocol.TypeStreamRequest {
		return
	}

	var resp *protocol.RpcMessage

	switch {
	case errors.Is(err, errNotImplemented):
		resp = &protocol.RpcMessage{Type: protocol.TypeResponseNotImplemented, ID: msg.ID}

	case err != nil:
		resp = protocol.NewFailedResponse(msg.ID, err.Error())

	default:
		resp, err = protocol.NewResponse(msg.ID, reply)
		if err != nil {
			resp = protocol.NewFailedResponse(msg.ID, err.Error())
		}
	}

	if err := t.Write(resp); err != nil {
		log.Warn("Failed to reply", zap.Error(err))
	}
}

func (t *TCPConn) register(payload []byte) error {
	var req protocol.RegisterDmxRequest
	if err := req.Unmarshal(payload); err != nil {
		return err
	}

	t.subMu.Lock()
	defer t.subMu.Unlock()

	switch req.Action {
	case protocol.Register:
		t.subscriptions[int(req.Universe)] = struct{}{}
	case protocol.Unregister:
		delete(t.subscriptions, int(req.Universe))
	default:
		return fmt.Errorf("unknown register action %d", req.Action)
	}

	return nil
}

func (t *TCPConn) isSubscribed(universe int) bool {
	t.subMu.RLock()
	defer t.subMu.RUnlock()

	_, ok := t.subscriptions[universe]
	return ok
}

func (t *TCPConn) getNextRequestID() uint32 {
	t.idMu.Lock()
	defer t.idMu.Unlock()

	// Wraps around instead of overflowing
	t.requestID++
	return t.requestID
}

// isRunning returns true until the listener is stopped
func (t *TCPListener) isRunning() bool {
	select {
	case <-t.ctx.Done():
		return false

	default:
		return true
	}
}

// isRunning returns true if Close has not been called
func (t *TCPConn) isRunning() bool {
	select {
	case <-t.ctx.Done():
		// if we can read on this channel then it's been closed
		return false

	default:
		return true
	}
}
