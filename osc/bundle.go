package osc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
	"time"
)

// Bundle represents an OSC bundle. It consists of the OSC-string "#bundle"
// followed by an OSC Time Tag, followed by zero or more OSC bundle/message
// elements. The OSC-timetag is a 64-bit fixed point time tag. See
// http://opensoundcontrol.org/spec-1_0.html for more information.
type Bundle struct {
	Timetag  Timetag
	Elements []Packet
}

// Verify that Bundle implements the Packet interface.
var _ Packet = (*Bundle)(nil)

// NewBundle returns a bundle with the "immediately" time tag holding the
// given elements.
func NewBundle(elements ...Packet) *Bundle {
	return &Bundle{Timetag: NewImmediateTimetag(), Elements: elements}
}

// NewBundleWithTime returns an empty OSC Bundle scheduled at the given time.
func NewBundleWithTime(time time.Time) *Bundle {
	return &Bundle{Timetag: NewTimetagFromTime(time)}
}

// NewBundleFromData returns a new OSC bundle created from the parsed data.
func NewBundleFromData(data []byte) (b *Bundle, err error) {
	b = &Bundle{}
	if err = b.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return b, nil
}

// Append appends an OSC bundle or OSC message to the bundle.
func (b *Bundle) Append(pck Packet) error {
	switch t := pck.(type) {
	default:
		return fmt.Errorf("unsupported OSC packet type: only Bundle and Message are supported")

	case *Bundle, *Message:
		b.Elements = append(b.Elements, t)
	}

	return nil
}

// String implements the fmt.Stringer interface.
func (b *Bundle) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "#bundle %d [", b.Timetag)
	for i, e := range b.Elements {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprint(&sb, e)
	}
	sb.WriteByte(']')
	return sb.String()
}

// MarshalBinary implements the encoding.BinaryMarshaler interface.
func (b *Bundle) MarshalBinary() ([]byte, error) {
	data := getBuffer()
	defer bufPool.Put(data)

	if err := b.LightMarshalBinary(data); err != nil {
		return nil, err
	}
	return bytes.Clone(data.Bytes()), nil
}

// LightMarshalBinary appends the encoded bundle to data.
func (b *Bundle) LightMarshalBinary(data *bytes.Buffer) error {
	start := data.Len()
	data.Write(bundleTag)

	var buf [bit64Size]byte
	binary.BigEndian.PutUint64(buf[:], uint64(b.Timetag))
	data.Write(buf[:])

	for _, e := range b.Elements {
		// Reserve the size field and fill it in once the element is written.
		sizeAt := data.Len()
		data.Write(padding[:])

		var err error
		switch e := e.(type) {
		case *Message:
			err = e.LightMarshalBinary(data)
		case *Bundle:
			err = e.LightMarshalBinary(data)
		default:
			var bb []byte
			if bb, err = e.MarshalBinary(); err == nil {
				data.Write(bb)
			}
		}
		if err != nil {
			data.Truncate(start)
			return err
		}

		binary.BigEndian.PutUint32(data.Bytes()[sizeAt:], uint32(data.Len()-sizeAt-bit32Size))
	}

	if n := data.Len() - start; n > MaxPacketSize {
		data.Truncate(start)
		return fmt.Errorf("LightMarshalBinary: bundle too large: %d", n)
	}

	return nil
}

// UnmarshalBinary implements the encoding.BinaryUnmarshaler interface. The
// bundle does not keep a reference to data.
func (b *Bundle) UnmarshalBinary(data []byte) error {
	rb, err := newReceivedBundle(data)
	if err != nil {
		return fmt.Errorf("UnmarshalBinary: %w", err)
	}

	bundle, err := bundleFromReceived(rb)
	if err != nil {
		return fmt.Errorf("UnmarshalBinary: %w", err)
	}
	*b = *bundle
	return nil
}

// bundleFromReceived copies a bundle view, including nested bundles, into an
// owning Bundle.
func bundleFromReceived(rb ReceivedBundle) (*Bundle, error) {
	b := &Bundle{
		Timetag:  rb.TimeTag(),
		Elements: make([]Packet, 0, rb.ElementCount()),
	}

	it := rb.Elements()
	for it.Next() {
		e := it.Element()
		if e.IsBundle() {
			nested, err := e.Bundle()
			if err != nil {
				return nil, err
			}
			p, err := bundleFromReceived(nested)
			if err != nil {
				return nil, err
			}
			b.Elements = append(b.Elements, p)
			continue
		}

		m, err := e.Message()
		if err != nil {
			return nil, err
		}
		p, err := messageFromReceived(m)
		if err != nil {
			return nil, err
		}
		b.Elements = append(b.Elements, p)
	}

	return b, nil
}
