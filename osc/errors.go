package osc

import "errors"

// Decoding errors. Errors returned by the decoder wrap one of these, test for
// them with errors.Is.
var (
	// ErrMalformedPacket is wrapped by every structural decoding error.
	ErrMalformedPacket = errors.New("malformed packet")
	// ErrMalformedMessage reports a message that violates the wire format.
	ErrMalformedMessage error = &malformedError{"malformed message"}
	// ErrMalformedBundle reports a bundle that violates the wire format.
	ErrMalformedBundle error = &malformedError{"malformed bundle"}

	ErrWrongArgumentType = errors.New("wrong argument type")
	ErrMissingArgument   = errors.New("missing argument")
	ErrExcessArgument    = errors.New("too many arguments")
)

type malformedError struct {
	msg string
}

func (e *malformedError) Error() string { return e.msg }

func (e *malformedError) Unwrap() error { return ErrMalformedPacket }
