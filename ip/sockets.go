//go:build linux || darwin

package ip

import "errors"

// SocketOption configures a socket before it is bound or connected.
type SocketOption func(*UDPSocket) error

// WithAllowReuse calls SetAllowReuse(true).
func WithAllowReuse() SocketOption {
	return func(s *UDPSocket) error { return s.SetAllowReuse(true) }
}

// WithBroadcast calls SetEnableBroadcast(true).
func WithBroadcast() SocketOption {
	return func(s *UDPSocket) error { return s.SetEnableBroadcast(true) }
}

func newConfiguredSocket(opts []SocketOption) (*UDPSocket, error) {
	s, err := NewUDPSocket()
	if err != nil {
		return nil, err
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			s.Close()
			return nil, err
		}
	}
	return s, nil
}

// NewReceiveSocket returns a socket bound to local.
func NewReceiveSocket(local Endpoint, opts ...SocketOption) (*UDPSocket, error) {
	s, err := newConfiguredSocket(opts)
	if err != nil {
		return nil, err
	}
	if err := s.Bind(local); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// NewTransmitSocket returns a socket connected to remote, ready for Send.
func NewTransmitSocket(remote Endpoint, opts ...SocketOption) (*UDPSocket, error) {
	s, err := newConfiguredSocket(opts)
	if err != nil {
		return nil, err
	}
	if err := s.Connect(remote); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// ListeningReceiveSocket is a bound socket with its own multiplexer that
// delivers every datagram to a single PacketListener.
type ListeningReceiveSocket struct {
	*UDPSocket
	mux *SocketReceiveMultiplexer
}

// NewListeningReceiveSocket binds a socket to local and attaches l to it.
// opts configure the multiplexer.
func NewListeningReceiveSocket(local Endpoint, l PacketListener, opts ...Option) (*ListeningReceiveSocket, error) {
	mux, err := NewSocketReceiveMultiplexer(opts...)
	if err != nil {
		return nil, err
	}
	s, err := NewReceiveSocket(local)
	if err != nil {
		mux.Close()
		return nil, err
	}
	mux.AttachSocketListener(s, l)
	return &ListeningReceiveSocket{UDPSocket: s, mux: mux}, nil
}

// Multiplexer returns the socket's multiplexer, for attaching timers.
func (s *ListeningReceiveSocket) Multiplexer() *SocketReceiveMultiplexer { return s.mux }

// Run receives and dispatches datagrams until a break is requested.
func (s *ListeningReceiveSocket) Run() error { return s.mux.Run() }

// Break stops Run from a listener callback.
func (s *ListeningReceiveSocket) Break() { s.mux.Break() }

// AsynchronousBreak stops Run from any goroutine.
func (s *ListeningReceiveSocket) AsynchronousBreak() { s.mux.AsynchronousBreak() }

// Close releases the multiplexer and the socket. Stop Run first.
func (s *ListeningReceiveSocket) Close() error {
	return errors.Join(s.mux.Close(), s.UDPSocket.Close())
}
