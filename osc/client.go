//go:build linux || darwin

package osc

import (
	"fmt"

	"github.com/chabad360/go-oscpack/ip"
)

// Client enables you to send OSC Packets to a specified server.
type Client struct {
	sock *ip.UDPSocket
}

// Dial creates a new OSC Client with a connection to the specified server.
func Dial(addr string) (*Client, error) {
	remote, err := ip.ParseEndpoint(addr)
	if err != nil {
		return nil, fmt.Errorf("Dial: %w", err)
	}

	sock, err := ip.NewTransmitSocket(remote)
	if err != nil {
		return nil, fmt.Errorf("Dial: %w", err)
	}
	return &Client{sock: sock}, nil
}

// Send sends an OSC Packet to the server.
func (c *Client) Send(packet Packet) error {
	data := getBuffer()
	defer bufPool.Put(data)

	var err error
	switch p := packet.(type) {
	case *Message:
		err = p.LightMarshalBinary(data)
	case *Bundle:
		err = p.LightMarshalBinary(data)
	default:
		var b []byte
		if b, err = p.MarshalBinary(); err == nil {
			data.Write(b)
		}
	}
	if err != nil {
		return fmt.Errorf("Send: %w", err)
	}

	return c.sock.Send(data.Bytes())
}

// LocalEndpoint returns the local address and port the client sends from.
func (c *Client) LocalEndpoint() (ip.Endpoint, error) {
	return c.sock.LocalEndpoint()
}

// Close closes the connection to the server.
func (c *Client) Close() error {
	return c.sock.Close()
}
