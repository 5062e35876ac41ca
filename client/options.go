package client

import (
	"go.uber.org/zap"

	"github.com/luma/ola/protocol"
)

const (
	// DefaultPort is the port the OLA daemon listens for RPC clients on
	DefaultPort = 9010
)

// Service handles requests the daemon makes of the client, such as pushed DMX
// updates. Serve runs on the connection's read loop and must not block.
type Service interface {
	Serve(method protocol.Method, payload []byte) (protocol.Marshaler, error)
}

type Options struct {
	// Service receives requests initiated by the daemon. Requests are answered
	// with RESPONSE_NOT_IMPLEMENTED when it is nil.
	Service Service

	// MaxFrameSize bounds frames read from the daemon, defaults to
	// protocol.DefaultMaxFrameSize
	MaxFrameSize int

	Log *zap.Logger
}
