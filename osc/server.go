//go:build linux || darwin

package osc

import (
	"errors"
	"fmt"
	"sync"

	"github.com/chabad360/go-oscpack/ip"
)

// ErrServerClosed is returned by Serve and ListenAndServe after Close.
var ErrServerClosed = errors.New("osc: server closed")

// Server represents an OSC server. The server listens on Addr for incoming
// OSC packets and bundles and hands them to Dispatcher, usually a
// *Dispatcher or a *PacketListener.
type Server struct {
	Addr       string
	Dispatcher ip.PacketListener

	mu     sync.Mutex
	mux    *ip.SocketReceiveMultiplexer
	closed bool
}

// ListenAndServe binds Addr and serves until Close is called.
func (s *Server) ListenAndServe() error {
	local, err := ip.ParseEndpoint(s.Addr)
	if err != nil {
		return fmt.Errorf("ListenAndServe: %w", err)
	}

	sock, err := ip.NewReceiveSocket(local)
	if err != nil {
		return fmt.Errorf("ListenAndServe: %w", err)
	}
	defer sock.Close()

	return s.Serve(sock)
}

// Serve dispatches packets arriving on t until Close is called. Malformed
// packets and Method errors are logged and do not stop the server.
func (s *Server) Serve(t ip.Transport) error {
	if s.Dispatcher == nil {
		return fmt.Errorf("Serve: no dispatcher")
	}

	mux, err := ip.NewSocketReceiveMultiplexer(ip.WithReceiveBufferSize(MaxPacketSize))
	if err != nil {
		return fmt.Errorf("Serve: %w", err)
	}
	defer mux.Close()
	mux.AttachSocketListener(t, s.Dispatcher)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrServerClosed
	}
	s.mux = mux
	s.mu.Unlock()

	err = mux.Run()

	s.mu.Lock()
	s.mux = nil
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("Serve: %w", err)
	}
	return nil
}

// Close stops a running Serve and makes later calls fail with
// ErrServerClosed. It is safe to call from any goroutine.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	if s.mux != nil {
		s.mux.AsynchronousBreak()
	}
	return nil
}

// ListenAndServe listens on addr and dispatches every received packet to d.
func ListenAndServe(addr string, d ip.PacketListener) error {
	s := &Server{Addr: addr, Dispatcher: d}
	return s.ListenAndServe()
}
