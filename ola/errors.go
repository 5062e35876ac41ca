package ola

import (
	"errors"
	"fmt"

	"github.com/luma/ola/protocol"
)

var (
	// ErrProtocolMismatch means the daemon replied with something other than
	// the reply type bound to the method. Use errors.Is to detect it.
	ErrProtocolMismatch = errors.New("reply does not match the method's reply type")

	// ErrNotServed is returned to the daemon when it calls a method the client
	// does not implement.
	ErrNotServed = errors.New("method is not served by the client")
)

type ProtocolMismatchError struct {
	Method protocol.Method
	Err    error
}

func (e *ProtocolMismatchError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Method, ErrProtocolMismatch, e.Err)
}

func (e *ProtocolMismatchError) Unwrap() error {
	return e.Err
}

func (e *ProtocolMismatchError) Is(target error) bool {
	return target == ErrProtocolMismatch
}
