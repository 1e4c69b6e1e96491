package osc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// Message represents a single OSC message. An OSC message consists of an OSC
// address pattern and zero or more arguments.
//
// Supported argument types are bool, nil, Infinitum, int32, int64, float32,
// float64, string, Symbol, []byte, Char, RGBAColor, MIDIMessage and Timetag.
type Message struct {
	Address   string
	Arguments []interface{}
}

// Verify that Messages implements the Packet interface.
var _ Packet = (*Message)(nil)

// Clear removes the address and all arguments.
func (m *Message) Clear() {
	m.Address = ""
	m.Arguments = m.Arguments[:0]
}

// NewMessage returns a new Message. The address parameter is the OSC address.
func NewMessage(addr string, args ...interface{}) *Message {
	return &Message{Address: addr, Arguments: args}
}

// Append appends the given arguments to the arguments list.
func (m *Message) Append(args ...interface{}) error {
	for _, a := range args {
		if ToTypeTag(a) == TypeInvalid {
			return fmt.Errorf("Append: unsupported type: %T", a)
		}
	}
	m.Arguments = append(m.Arguments, args...)
	return nil
}

// Match returns true, if the OSC address pattern of the OSC Message matches the given
// address. The match is case sensitive!
func (m *Message) Match(addr string) bool {
	regexp, err := getRegEx(m.Address)
	if err != nil {
		return false
	}
	return regexp.MatchString(addr)
}

// TypeTags returns the type tag string.
func (m *Message) TypeTags() (string, error) {
	if m == nil {
		return "", fmt.Errorf("TypeTags: message is nil")
	}
	return GetTypeTag(m.Arguments)
}

// String implements the fmt.Stringer interface.
func (m *Message) String() string {
	if m == nil {
		return ""
	}

	tags, _ := m.TypeTags()

	var b strings.Builder
	b.WriteString(m.Address)
	if len(tags) <= 1 {
		return b.String()
	}

	b.WriteByte(' ')
	b.WriteString(tags)

	for _, arg := range m.Arguments {
		switch arg := arg.(type) {
		case bool, int32, int64, float32, float64, string, Symbol:
			fmt.Fprintf(&b, " %v", arg)

		case nil:
			b.WriteString(" Nil")

		case Infinitum:
			b.WriteString(" Infinitum")

		case []byte:
			b.WriteString(" blob")

		case Char:
			fmt.Fprintf(&b, " %q", rune(arg))

		case RGBAColor:
			fmt.Fprintf(&b, " #%08x", uint32(arg))

		case MIDIMessage:
			fmt.Fprintf(&b, " midi:%08x", uint32(arg))

		case Timetag:
			fmt.Fprintf(&b, " %d", arg.TimeTag())
		}
	}

	return b.String()
}

// MarshalBinary implements the encoding.BinaryMarshaler interface.
func (m *Message) MarshalBinary() ([]byte, error) {
	data := getBuffer()
	defer bufPool.Put(data)

	if err := m.LightMarshalBinary(data); err != nil {
		return nil, err
	}
	return bytes.Clone(data.Bytes()), nil
}

// LightMarshalBinary appends the encoded message to data.
func (m *Message) LightMarshalBinary(data *bytes.Buffer) error {
	typetags, err := m.TypeTags()
	if err != nil {
		return fmt.Errorf("LightMarshalBinary: %w", err)
	}

	start := data.Len()
	writePaddedString(m.Address, data)
	writePaddedString(typetags, data)

	var buf [bit64Size]byte
	for _, arg := range m.Arguments {
		switch t := arg.(type) {
		case bool, nil, Infinitum:
			continue
		case int32:
			binary.BigEndian.PutUint32(buf[:], uint32(t))
			data.Write(buf[:bit32Size])
		case float32:
			binary.BigEndian.PutUint32(buf[:], math.Float32bits(t))
			data.Write(buf[:bit32Size])
		case Char:
			binary.BigEndian.PutUint32(buf[:], uint32(t))
			data.Write(buf[:bit32Size])
		case RGBAColor:
			binary.BigEndian.PutUint32(buf[:], uint32(t))
			data.Write(buf[:bit32Size])
		case MIDIMessage:
			binary.BigEndian.PutUint32(buf[:], uint32(t))
			data.Write(buf[:bit32Size])
		case int64:
			binary.BigEndian.PutUint64(buf[:], uint64(t))
			data.Write(buf[:])
		case float64:
			binary.BigEndian.PutUint64(buf[:], math.Float64bits(t))
			data.Write(buf[:])
		case Timetag:
			binary.BigEndian.PutUint64(buf[:], uint64(t))
			data.Write(buf[:])
		case string:
			writePaddedString(t, data)
		case Symbol:
			writePaddedString(string(t), data)
		case []byte:
			writeBlob(t, data)
		}
	}

	if n := data.Len() - start; n > MaxPacketSize {
		data.Truncate(start)
		return fmt.Errorf("LightMarshalBinary: packet too large: %d", n)
	}

	return nil
}

// NewMessageFromData returns a new OSC message parsed from data.
func NewMessageFromData(data []byte) (msg *Message, err error) {
	msg = &Message{}
	if err = msg.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return msg, nil
}

// UnmarshalBinary implements the encoding.BinaryUnmarshaler interface. The
// message does not keep a reference to data.
func (m *Message) UnmarshalBinary(data []byte) error {
	if isBundle(data) {
		return fmt.Errorf("UnmarshalBinary: %w: data is a bundle", ErrMalformedMessage)
	}

	rm, err := newReceivedMessage(data)
	if err != nil {
		return fmt.Errorf("UnmarshalBinary: %w", err)
	}

	msg, err := messageFromReceived(rm)
	if err != nil {
		return fmt.Errorf("UnmarshalBinary: %w", err)
	}
	*m = *msg
	return nil
}

// messageFromReceived copies a message view into an owning Message.
func messageFromReceived(rm ReceivedMessage) (*Message, error) {
	m := &Message{
		Address:   strings.Clone(rm.AddressPattern()),
		Arguments: make([]interface{}, 0, rm.ArgumentCount()),
	}

	it := rm.Arguments()
	for it.Next() {
		arg := it.Argument()
		switch arg.TypeTag() {
		case TypeTrue, TypeFalse:
			m.Arguments = append(m.Arguments, arg.AsBoolUnchecked())
		case TypeNil:
			m.Arguments = append(m.Arguments, nil)
		case TypeInfinitum:
			m.Arguments = append(m.Arguments, Infinitum{})
		case TypeInt32:
			m.Arguments = append(m.Arguments, arg.AsInt32Unchecked())
		case TypeFloat32:
			m.Arguments = append(m.Arguments, arg.AsFloatUnchecked())
		case TypeChar:
			m.Arguments = append(m.Arguments, arg.AsCharUnchecked())
		case TypeRGBAColor:
			m.Arguments = append(m.Arguments, arg.AsRGBAColorUnchecked())
		case TypeMIDIMessage:
			m.Arguments = append(m.Arguments, arg.AsMIDIMessageUnchecked())
		case TypeInt64:
			m.Arguments = append(m.Arguments, arg.AsInt64Unchecked())
		case TypeTimeTag:
			m.Arguments = append(m.Arguments, arg.AsTimeTagUnchecked())
		case TypeFloat64:
			m.Arguments = append(m.Arguments, arg.AsDoubleUnchecked())
		case TypeString:
			m.Arguments = append(m.Arguments, strings.Clone(arg.AsStringUnchecked()))
		case TypeSymbol:
			m.Arguments = append(m.Arguments, Symbol(strings.Clone(string(arg.AsSymbolUnchecked()))))
		case TypeBlob:
			blob := arg.AsBlobUnchecked()
			m.Arguments = append(m.Arguments, append(make([]byte, 0, len(blob)), blob...))
		}
	}
	if err := it.Err(); err != nil {
		return nil, err
	}

	return m, nil
}
