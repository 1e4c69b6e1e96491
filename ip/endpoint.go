package ip

import (
	"encoding/binary"
	"fmt"
	"net"
	"strconv"
)

const (
	// AnyAddress binds to every local interface.
	AnyAddress uint32 = 0xFFFFFFFF

	// AnyPort lets the system pick a port.
	AnyPort = -1
)

// Endpoint is an IPv4 address and UDP port. Address is in host byte order.
type Endpoint struct {
	Address uint32
	Port    int
}

// NewEndpoint returns the endpoint for ip and port. A nil or unspecified ip
// yields AnyAddress, a port of 0 yields AnyPort.
func NewEndpoint(ip net.IP, port int) Endpoint {
	e := Endpoint{Address: AnyAddress, Port: port}
	if ip4 := ip.To4(); ip4 != nil && !ip4.IsUnspecified() {
		e.Address = binary.BigEndian.Uint32(ip4)
	}
	if port == 0 {
		e.Port = AnyPort
	}
	return e
}

// ParseEndpoint parses "host:port". An empty host means AnyAddress. Host
// names are resolved to their first IPv4 address.
func ParseEndpoint(s string) (Endpoint, error) {
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return Endpoint{}, fmt.Errorf("ParseEndpoint: %w", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 0 || port > 0xFFFF {
		return Endpoint{}, fmt.Errorf("ParseEndpoint: invalid port %q", portStr)
	}
	if host == "" {
		return NewEndpoint(nil, port), nil
	}

	addr, err := net.ResolveIPAddr("ip4", host)
	if err != nil {
		return Endpoint{}, fmt.Errorf("ParseEndpoint: %w", err)
	}
	return NewEndpoint(addr.IP, port), nil
}

// IP returns the address as a net.IP. AnyAddress maps to 0.0.0.0.
func (e Endpoint) IP() net.IP {
	if e.Address == AnyAddress {
		return net.IPv4zero
	}
	ip := make(net.IP, net.IPv4len)
	binary.BigEndian.PutUint32(ip, e.Address)
	return ip
}

// UDPAddr converts e for use with the net package.
func (e Endpoint) UDPAddr() *net.UDPAddr {
	return &net.UDPAddr{IP: e.IP(), Port: e.port()}
}

// String returns "address:port", the form accepted by ParseEndpoint.
func (e Endpoint) String() string {
	return net.JoinHostPort(e.IP().String(), strconv.Itoa(e.port()))
}

// IsMulticastAddress reports whether the address is in 224.0.0.0/4.
func (e Endpoint) IsMulticastAddress() bool {
	return e.Address != AnyAddress && e.Address>>28 == 0xE
}

func (e Endpoint) port() int {
	if e.Port == AnyPort {
		return 0
	}
	return e.Port
}
