//go:build linux || darwin

package ip

import (
	"encoding/binary"
	"unsafe"

	"golang.org/x/sys/unix"
)

// sockaddr maps AnyAddress to INADDR_ANY and AnyPort to port 0.
func (e Endpoint) sockaddr() *unix.SockaddrInet4 {
	sa := &unix.SockaddrInet4{Port: e.port()}
	if e.Address != AnyAddress {
		binary.BigEndian.PutUint32(sa.Addr[:], e.Address)
	}
	return sa
}

// rawSockaddr converts e without the AnyAddress mapping, so AnyAddress
// addresses the limited broadcast address.
func (e Endpoint) rawSockaddr() *unix.SockaddrInet4 {
	sa := &unix.SockaddrInet4{Port: e.port()}
	binary.BigEndian.PutUint32(sa.Addr[:], e.Address)
	return sa
}

// endpointFromSockaddr maps INADDR_ANY to AnyAddress and port 0 to AnyPort.
func endpointFromSockaddr(sa unix.Sockaddr) Endpoint {
	in, ok := sa.(*unix.SockaddrInet4)
	if !ok {
		return Endpoint{Address: AnyAddress, Port: AnyPort}
	}
	e := rawEndpoint(in)
	if e.Address == 0 {
		e.Address = AnyAddress
	}
	if e.Port == 0 {
		e.Port = AnyPort
	}
	return e
}

func rawEndpoint(in *unix.SockaddrInet4) Endpoint {
	return Endpoint{Address: binary.BigEndian.Uint32(in.Addr[:]), Port: in.Port}
}

// disconnect dissolves the association of a connected datagram socket by
// connecting it to an AF_UNSPEC address. Some systems report EAFNOSUPPORT
// even though the socket was disconnected.
func disconnect(fd int) error {
	var sa unix.RawSockaddrInet4
	sa.Family = unix.AF_UNSPEC
	_, _, errno := unix.Syscall(unix.SYS_CONNECT, uintptr(fd), uintptr(unsafe.Pointer(&sa)), unix.SizeofSockaddrInet4)
	if errno != 0 && errno != unix.EAFNOSUPPORT {
		return errno
	}
	return nil
}
