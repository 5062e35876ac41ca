package ola

import (
	"fmt"

	"github.com/luma/ola/client"
)

type State int

const (
	Success State = iota
	Failed
	Cancelled
)

func (s State) String() string {
	switch s {
	case Success:
		return "SUCCESS"
	case Failed:
		return "FAILED"
	case Cancelled:
		return "CANCELLED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// RequestStatus is the outcome of a single call. It is derived once, when the
// call resolves, and never changes afterwards.
type RequestStatus struct {
	state   State
	message string
}

// statusOf reads the final outcome recorded on ctrl. A failure takes
// precedence over a cancellation.
func statusOf(ctrl *client.Controller) RequestStatus {
	switch {
	case ctrl.Failed():
		return RequestStatus{state: Failed, message: ctrl.ErrorText()}
	case ctrl.IsCanceled():
		return RequestStatus{state: Cancelled, message: ctrl.ErrorText()}
	default:
		return RequestStatus{state: Success}
	}
}

func (s RequestStatus) State() State {
	return s.state
}

// Message is the reason the call failed or was cancelled. It is empty for
// successful calls.
func (s RequestStatus) Message() string {
	return s.message
}

func (s RequestStatus) Succeeded() bool {
	return s.state == Success
}

func (s RequestStatus) String() string {
	if s.message == "" {
		return s.state.String()
	}

	return fmt.Sprintf("%s: %s", s.state, s.message)
}
