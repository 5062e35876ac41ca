package transport

import (
	"go.uber.org/zap"

	"github.com/luma/ola/storage"
)

type Options struct {
	// Host to listen on
	Host string

	// Port to listen on, 0 picks a free port
	Port int

	// Reuseport controls setting SO_REUSEPORT, which is needed to run more
	// than one listener on the same port.
	Reuseport bool

	// Trace logs every frame at debug level. This is only useful in local debugging
	Trace bool

	NumListeners int

	// MaxFrameSize bounds frames read from clients, defaults to
	// protocol.DefaultMaxFrameSize
	MaxFrameSize int

	Store storage.Store

	Log *zap.Logger
}
