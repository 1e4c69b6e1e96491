package ip

import (
	"errors"
	"fmt"
)

var (
	ErrNotBound     = errors.New("ip: socket is not bound")
	ErrNotConnected = errors.New("ip: socket is not connected")
	ErrRunning      = errors.New("ip: multiplexer is already running")
	ErrClosed       = errors.New("ip: multiplexer is closed")
)

// TransportError reports a failed socket operation.
type TransportError struct {
	Operation string // create, bind, connect, getsockname, send, setsockopt, ...
	Err       error
	Details   string
}

func (e *TransportError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("ip: %s failed: %v (%s)", e.Operation, e.Err, e.Details)
	}
	return fmt.Sprintf("ip: %s failed: %v", e.Operation, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// LocalEndpointError reports a failure of UDPSocket.LocalEndpointFor. Step
// names the system call that failed. The socket may be left connected to the
// queried remote endpoint if the restoring step failed.
type LocalEndpointError struct {
	Step string
	Err  error
}

func (e *LocalEndpointError) Error() string {
	return fmt.Sprintf("ip: local endpoint lookup failed at %s: %v", e.Step, e.Err)
}

func (e *LocalEndpointError) Unwrap() error { return e.Err }

// LoopSetupError reports that a multiplexer could not create its wakeup pipe.
type LoopSetupError struct {
	Err error
}

func (e *LoopSetupError) Error() string {
	return fmt.Sprintf("ip: multiplexer setup failed: %v", e.Err)
}

func (e *LoopSetupError) Unwrap() error { return e.Err }
