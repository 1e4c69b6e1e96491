//go:build linux || darwin

package ip

import (
	"fmt"
	"net"
)

// JoinGroup joins the multicast group on ifi, or on the system's default
// interface if ifi is nil. Only the group's address is used.
func (s *UDPSocket) JoinGroup(ifi *net.Interface, group Endpoint) error {
	if !group.IsMulticastAddress() {
		return &TransportError{Operation: "join group", Err: fmt.Errorf("%s is not a multicast address", group.IP())}
	}
	pc, err := s.packetConn()
	if err != nil {
		return err
	}
	if err := pc.JoinGroup(ifi, &net.UDPAddr{IP: group.IP()}); err != nil {
		return &TransportError{Operation: "join group", Err: err, Details: group.IP().String()}
	}
	return nil
}

// LeaveGroup leaves a group joined with JoinGroup.
func (s *UDPSocket) LeaveGroup(ifi *net.Interface, group Endpoint) error {
	pc, err := s.packetConn()
	if err != nil {
		return err
	}
	if err := pc.LeaveGroup(ifi, &net.UDPAddr{IP: group.IP()}); err != nil {
		return &TransportError{Operation: "leave group", Err: err, Details: group.IP().String()}
	}
	return nil
}

// SetMulticastInterface sets the interface for outgoing multicast datagrams.
func (s *UDPSocket) SetMulticastInterface(ifi *net.Interface) error {
	pc, err := s.packetConn()
	if err != nil {
		return err
	}
	if err := pc.SetMulticastInterface(ifi); err != nil {
		return &TransportError{Operation: "setsockopt", Err: err, Details: "IP_MULTICAST_IF"}
	}
	return nil
}

// SetMulticastLoopback controls whether outgoing multicast datagrams are
// delivered back to the local host.
func (s *UDPSocket) SetMulticastLoopback(on bool) error {
	pc, err := s.packetConn()
	if err != nil {
		return err
	}
	if err := pc.SetMulticastLoopback(on); err != nil {
		return &TransportError{Operation: "setsockopt", Err: err, Details: "IP_MULTICAST_LOOP"}
	}
	return nil
}

// SetMulticastTTL sets the time-to-live of outgoing multicast datagrams.
func (s *UDPSocket) SetMulticastTTL(ttl int) error {
	pc, err := s.packetConn()
	if err != nil {
		return err
	}
	if err := pc.SetMulticastTTL(ttl); err != nil {
		return &TransportError{Operation: "setsockopt", Err: err, Details: "IP_MULTICAST_TTL"}
	}
	return nil
}
