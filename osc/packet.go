package osc

import (
	"encoding"
	"fmt"
)

// MaxPacketSize is the largest payload a single UDP datagram over IPv4 can carry.
const MaxPacketSize = 65507

// Packet is the interface for Message and Bundle.
type Packet interface {
	encoding.BinaryMarshaler
}

// ParsePacket parses the given data into an owning *Message or *Bundle.
// Unlike the Received* views, the result does not reference data.
func ParsePacket(data []byte) (Packet, error) {
	p, err := parsePacket(data)
	if err != nil {
		return nil, fmt.Errorf("ParsePacket: %w", err)
	}
	return p, nil
}

func parsePacket(data []byte) (Packet, error) {
	rp := NewReceivedPacket(data)
	if rp.IsBundle() {
		b, err := rp.Bundle()
		if err != nil {
			return nil, err
		}
		return bundleFromReceived(b)
	}

	m, err := rp.Message()
	if err != nil {
		return nil, err
	}
	return messageFromReceived(m)
}
