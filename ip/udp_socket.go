//go:build linux || darwin

package ip

import (
	"fmt"
	"net"
	"os"

	"golang.org/x/net/ipv4"
	"golang.org/x/sys/unix"
)

// UDPSocket is an IPv4 datagram socket. It is not safe for concurrent use,
// except that reads by a running SocketReceiveMultiplexer may overlap with
// Send and SendTo.
type UDPSocket struct {
	fd            int
	bound         bool
	connected     bool
	connectedAddr unix.SockaddrInet4
	boundAddr     unix.SockaddrInet4 // as reported by getsockname after Bind
	localPort     int

	// multicast control, created on first use
	conn net.PacketConn
	pc   *ipv4.PacketConn
}

var _ Transport = (*UDPSocket)(nil)

// NewUDPSocket creates an unbound, unconnected socket.
func NewUDPSocket() (*UDPSocket, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM, 0)
	if err != nil {
		return nil, &TransportError{Operation: "create", Err: err, Details: "unable to create udp socket"}
	}
	unix.CloseOnExec(fd)
	return &UDPSocket{fd: fd}, nil
}

// Fd returns the socket's file descriptor.
func (s *UDPSocket) Fd() int { return s.fd }

// SetEnableBroadcast toggles SO_BROADCAST.
func (s *UDPSocket) SetEnableBroadcast(enable bool) error {
	if err := unix.SetsockoptInt(s.fd, unix.SOL_SOCKET, unix.SO_BROADCAST, boolToInt(enable)); err != nil {
		return &TransportError{Operation: "setsockopt", Err: err, Details: "SO_BROADCAST"}
	}
	return nil
}

// SetAllowReuse toggles SO_REUSEADDR, and SO_REUSEPORT where the system
// needs it to share a port. Call it before Bind.
func (s *UDPSocket) SetAllowReuse(allow bool) error {
	if err := unix.SetsockoptInt(s.fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, boolToInt(allow)); err != nil {
		return &TransportError{Operation: "setsockopt", Err: err, Details: "SO_REUSEADDR"}
	}
	if err := setReusePort(s.fd, allow); err != nil {
		return &TransportError{Operation: "setsockopt", Err: err, Details: "SO_REUSEPORT"}
	}
	return nil
}

// Bind binds the socket to a local endpoint. Use AnyAddress and AnyPort for
// wildcards.
func (s *UDPSocket) Bind(local Endpoint) error {
	if err := unix.Bind(s.fd, local.sockaddr()); err != nil {
		return &TransportError{Operation: "bind", Err: err, Details: local.String()}
	}
	s.bound = true
	s.updateLocalPort()
	if sa, err := unix.Getsockname(s.fd); err == nil {
		if in, ok := sa.(*unix.SockaddrInet4); ok {
			s.boundAddr = *in
		}
	}
	return nil
}

// IsBound reports whether Bind succeeded.
func (s *UDPSocket) IsBound() bool { return s.bound }

// Connect sets the default destination for Send and records the local port
// the system assigned.
func (s *UDPSocket) Connect(remote Endpoint) error {
	sa := remote.sockaddr()
	if err := unix.Connect(s.fd, sa); err != nil {
		return &TransportError{Operation: "connect", Err: err, Details: remote.String()}
	}
	s.connectedAddr = *sa
	s.connected = true
	s.updateLocalPort()
	return nil
}

// IsConnected reports whether Connect succeeded.
func (s *UDPSocket) IsConnected() bool { return s.connected }

// LocalPort returns the local port recorded by the last Bind or Connect, or
// 0 if neither has happened.
func (s *UDPSocket) LocalPort() int { return s.localPort }

func (s *UDPSocket) updateLocalPort() {
	if sa, err := unix.Getsockname(s.fd); err == nil {
		if in, ok := sa.(*unix.SockaddrInet4); ok {
			s.localPort = in.Port
		}
	}
}

// LocalEndpoint returns the address the socket is bound to.
func (s *UDPSocket) LocalEndpoint() (Endpoint, error) {
	sa, err := unix.Getsockname(s.fd)
	if err != nil {
		return Endpoint{}, &TransportError{Operation: "getsockname", Err: err}
	}
	return endpointFromSockaddr(sa), nil
}

// LocalEndpointFor returns the local address and port the system would use
// to reach remote. It temporarily connects the socket to remote and then
// restores the previous state: reconnected to the earlier destination, or
// disconnected. The socket must be bound.
func (s *UDPSocket) LocalEndpointFor(remote Endpoint) (Endpoint, error) {
	if !s.bound {
		return Endpoint{}, &LocalEndpointError{Step: "bind", Err: ErrNotBound}
	}

	if err := unix.Connect(s.fd, remote.sockaddr()); err != nil {
		return Endpoint{}, &LocalEndpointError{Step: "connect", Err: err}
	}

	sa, nameErr := unix.Getsockname(s.fd)

	if err := s.restoreConnection(); err != nil {
		return Endpoint{}, &LocalEndpointError{Step: "restore", Err: err}
	}
	if nameErr != nil {
		return Endpoint{}, &LocalEndpointError{Step: "getsockname", Err: nameErr}
	}

	return endpointFromSockaddr(sa), nil
}

func (s *UDPSocket) restoreConnection() error {
	if s.connected {
		addr := s.connectedAddr
		return unix.Connect(s.fd, &addr)
	}
	if err := disconnect(s.fd); err != nil {
		return err
	}

	// Linux gives up a port the system assigned when the socket is
	// disconnected. Take the same one back.
	sa, err := unix.Getsockname(s.fd)
	if err != nil {
		return err
	}
	if in, ok := sa.(*unix.SockaddrInet4); ok && in.Port == 0 {
		addr := s.boundAddr
		return unix.Bind(s.fd, &addr)
	}
	return nil
}

// Send writes data to the connected destination. Delivery is not confirmed.
func (s *UDPSocket) Send(data []byte) error {
	if !s.connected {
		return ErrNotConnected
	}
	if _, err := unix.Write(s.fd, data); err != nil {
		return &TransportError{Operation: "send", Err: err, Details: fmt.Sprintf("%d bytes", len(data))}
	}
	return nil
}

// SendTo writes data to remote. Delivery is not confirmed. AnyAddress is
// sent as 255.255.255.255, which requires SetEnableBroadcast.
func (s *UDPSocket) SendTo(remote Endpoint, data []byte) error {
	if err := unix.Sendto(s.fd, data, 0, remote.rawSockaddr()); err != nil {
		return &TransportError{Operation: "send", Err: err, Details: fmt.Sprintf("%d bytes to %s", len(data), remote)}
	}
	return nil
}

// ReceiveFrom reads one waiting datagram into data and returns its size and
// sender. It never blocks: it returns 0 if the socket is not bound, nothing is
// waiting, or the read fails, so these cannot be told apart from an empty
// datagram. A datagram longer than data is truncated to len(data).
func (s *UDPSocket) ReceiveFrom(data []byte) (int, Endpoint) {
	if !s.bound {
		return 0, Endpoint{}
	}
	n, from, err := unix.Recvfrom(s.fd, data, unix.MSG_DONTWAIT)
	if err != nil || n < 0 {
		return 0, Endpoint{}
	}
	in, ok := from.(*unix.SockaddrInet4)
	if !ok {
		return n, Endpoint{Address: AnyAddress, Port: AnyPort}
	}
	return n, rawEndpoint(in)
}

// Close closes the socket. Calling it more than once is a no-op.
func (s *UDPSocket) Close() error {
	if s.fd < 0 {
		return nil
	}
	if s.conn != nil {
		s.conn.Close()
		s.conn, s.pc = nil, nil
	}
	err := unix.Close(s.fd)
	s.fd = -1
	if err != nil {
		return &TransportError{Operation: "close", Err: err}
	}
	return nil
}

// packetConn returns an ipv4.PacketConn sharing the socket, for the options
// x/net/ipv4 knows how to set.
func (s *UDPSocket) packetConn() (*ipv4.PacketConn, error) {
	if s.pc != nil {
		return s.pc, nil
	}

	dup, err := unix.Dup(s.fd)
	if err != nil {
		return nil, &TransportError{Operation: "dup", Err: err}
	}
	f := os.NewFile(uintptr(dup), "udp")
	conn, err := net.FilePacketConn(f)
	f.Close()
	if err != nil {
		return nil, &TransportError{Operation: "wrap socket", Err: err}
	}

	// The runtime switched the shared file description to non-blocking mode.
	if err := unix.SetNonblock(s.fd, false); err != nil {
		conn.Close()
		return nil, &TransportError{Operation: "setnonblock", Err: err}
	}

	s.conn = conn
	s.pc = ipv4.NewPacketConn(conn)
	return s.pc, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
