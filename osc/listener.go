package osc

import (
	"github.com/chabad360/go-oscpack/ip"
)

// MessageHandler receives the messages found in a packet, one call per
// message. Nested bundles are flattened in order.
type MessageHandler interface {
	ProcessMessage(msg ReceivedMessage, remote ip.Endpoint) error
}

// MessageHandlerFunc implements the MessageHandler interface.
type MessageHandlerFunc func(msg ReceivedMessage, remote ip.Endpoint) error

// ProcessMessage calls f(msg, remote).
func (f MessageHandlerFunc) ProcessMessage(msg ReceivedMessage, remote ip.Endpoint) error {
	return f(msg, remote)
}

// PacketListener decodes raw datagrams and hands every contained message to
// a MessageHandler. It implements ip.PacketListener, so it can be attached to
// an ip.SocketReceiveMultiplexer directly.
type PacketListener struct {
	handler MessageHandler
}

var _ ip.PacketListener = (*PacketListener)(nil)

// NewPacketListener returns a PacketListener delivering to h.
func NewPacketListener(h MessageHandler) *PacketListener {
	return &PacketListener{handler: h}
}

// ProcessPacket implements ip.PacketListener. Walking stops at the first
// malformed element or handler error, which is returned.
func (l *PacketListener) ProcessPacket(data []byte, remote ip.Endpoint) error {
	return walkPacket(NewReceivedPacket(data), remote, l.handler)
}

func walkPacket(p ReceivedPacket, remote ip.Endpoint, h MessageHandler) error {
	if p.IsBundle() {
		b, err := p.Bundle()
		if err != nil {
			return err
		}
		return walkBundle(b, remote, h)
	}

	m, err := p.Message()
	if err != nil {
		return err
	}
	return h.ProcessMessage(m, remote)
}

func walkBundle(b ReceivedBundle, remote ip.Endpoint, h MessageHandler) error {
	it := b.Elements()
	for it.Next() {
		e := it.Element()
		if e.IsBundle() {
			nested, err := e.Bundle()
			if err != nil {
				return err
			}
			if err := walkBundle(nested, remote, h); err != nil {
				return err
			}
			continue
		}

		m, err := e.Message()
		if err != nil {
			return err
		}
		if err := h.ProcessMessage(m, remote); err != nil {
			return err
		}
	}
	return nil
}
