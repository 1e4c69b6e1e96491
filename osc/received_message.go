package osc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// ReceivedMessage is a view over a decoded OSC message. Constructing it walks
// the address pattern, the type tags and the extent of every argument once,
// so the accessors never need to look outside the message.
type ReceivedMessage struct {
	data          []byte
	typeTagsBegin int // first tag after the ','
	typeTagsEnd   int
	arguments     int
}

func newReceivedMessage(data []byte) (ReceivedMessage, error) {
	if len(data) == 0 {
		return ReceivedMessage{}, fmt.Errorf("%w: zero length messages not permitted", ErrMalformedMessage)
	}
	if len(data)%bit32Size != 0 {
		return ReceivedMessage{}, fmt.Errorf("%w: message size must be multiple of four", ErrMalformedMessage)
	}

	_, n, err := parsePaddedString(data)
	if err != nil {
		return ReceivedMessage{}, fmt.Errorf("%w: unterminated address pattern", ErrMalformedMessage)
	}

	m := ReceivedMessage{data: data, typeTagsBegin: n, typeTagsEnd: n, arguments: n}
	if n == len(data) {
		// Only an address pattern: no type tags and no arguments.
		return m, nil
	}
	if data[n] != ',' {
		return ReceivedMessage{}, fmt.Errorf("%w: type tags not present", ErrMalformedMessage)
	}

	tags, tn, err := parsePaddedString(data[n:])
	if err != nil {
		return ReceivedMessage{}, fmt.Errorf("%w: unterminated type tags", ErrMalformedMessage)
	}
	m.typeTagsBegin = n + 1
	m.typeTagsEnd = n + len(tags)
	m.arguments = n + tn

	off := m.arguments
	for i := m.typeTagsBegin; i < m.typeTagsEnd; i++ {
		size, err := argumentSize(TypeTag(data[i]), data, off)
		if err != nil {
			return ReceivedMessage{}, err
		}
		off += size
	}

	return m, nil
}

// argumentSize returns the number of bytes the argument with the given tag
// occupies at off, checking that it lies within data.
func argumentSize(tag TypeTag, data []byte, off int) (int, error) {
	switch tag {
	case TypeTrue, TypeFalse, TypeNil, TypeInfinitum:
		return 0, nil

	case TypeInt32, TypeFloat32, TypeChar, TypeRGBAColor, TypeMIDIMessage:
		if off > len(data)-bit32Size {
			return 0, fmt.Errorf("%w: arguments exceed message size", ErrMalformedMessage)
		}
		return bit32Size, nil

	case TypeInt64, TypeTimeTag, TypeFloat64:
		if off > len(data)-bit64Size {
			return 0, fmt.Errorf("%w: arguments exceed message size", ErrMalformedMessage)
		}
		return bit64Size, nil

	case TypeString, TypeSymbol:
		if off >= len(data) {
			return 0, fmt.Errorf("%w: arguments exceed message size", ErrMalformedMessage)
		}
		_, n, err := parsePaddedString(data[off:])
		if err != nil {
			return 0, fmt.Errorf("%w: unterminated string argument", ErrMalformedMessage)
		}
		return n, nil

	case TypeBlob:
		if off > len(data) {
			return 0, fmt.Errorf("%w: arguments exceed message size", ErrMalformedMessage)
		}
		_, n, err := parseBlob(data[off:])
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
		}
		return n, nil

	default:
		return 0, fmt.Errorf("%w: unknown type tag %q", ErrMalformedMessage, rune(tag))
	}
}

// AddressPattern returns the message's address pattern. The string shares
// memory with the receive buffer.
func (m ReceivedMessage) AddressPattern() string {
	return cString(m.data)
}

// AddressPatternIsUInt32 reports whether the address pattern is a
// SuperCollider style integer address, marked by a leading NUL byte.
func (m ReceivedMessage) AddressPatternIsUInt32() bool {
	return len(m.data) > 0 && m.data[0] == 0
}

// AddressPatternAsUInt32 returns the first four bytes of the message as a
// big-endian integer. Only meaningful if AddressPatternIsUInt32 is true.
func (m ReceivedMessage) AddressPatternAsUInt32() uint32 {
	v, _ := readUint32(m.data, 0)
	return v
}

// ArgumentCount returns the number of arguments.
func (m ReceivedMessage) ArgumentCount() int {
	return m.typeTagsEnd - m.typeTagsBegin
}

// TypeTags returns the type tags without the leading ','.
func (m ReceivedMessage) TypeTags() string {
	return bytesToString(m.data[m.typeTagsBegin:m.typeTagsEnd])
}

// Contents returns the raw message bytes.
func (m ReceivedMessage) Contents() []byte { return m.data }

// Arguments returns an iterator over the message's arguments.
//
//	it := m.Arguments()
//	for it.Next() {
//		arg := it.Argument()
//	}
//	if err := it.Err(); err != nil {
//		...
//	}
func (m ReceivedMessage) Arguments() *ReceivedMessageArgumentIterator {
	return &ReceivedMessageArgumentIterator{
		data:   m.data,
		tagPos: m.typeTagsBegin,
		tagEnd: m.typeTagsEnd,
		argPos: m.arguments,
	}
}

// ArgumentsEnd returns the iterator positioned past the last argument.
func (m ReceivedMessage) ArgumentsEnd() *ReceivedMessageArgumentIterator {
	return &ReceivedMessageArgumentIterator{
		data:    m.data,
		tagPos:  m.typeTagsEnd,
		tagEnd:  m.typeTagsEnd,
		argPos:  len(m.data),
		started: true,
	}
}

// ArgumentStream returns a stream for typed, in-order argument extraction.
func (m ReceivedMessage) ArgumentStream() *ReceivedMessageArgumentStream {
	return &ReceivedMessageArgumentStream{
		data:   m.data,
		tagPos: m.typeTagsBegin,
		tagEnd: m.typeTagsEnd,
		argPos: m.arguments,
	}
}

// String implements the fmt.Stringer interface.
func (m ReceivedMessage) String() string {
	var b bytes.Buffer
	b.WriteString(m.AddressPattern())
	if m.ArgumentCount() == 0 {
		return b.String()
	}
	b.WriteString(" ,")
	b.WriteString(m.TypeTags())

	it := m.Arguments()
	for it.Next() {
		b.WriteByte(' ')
		b.WriteString(it.Argument().String())
	}
	return b.String()
}

// ReceivedMessageArgument is a single typed argument of a ReceivedMessage.
// The zero value stands for a missing argument.
//
// The AsXxx methods check the type tag and fail with ErrWrongArgumentType on
// a mismatch. The AsXxxUnchecked variants skip that check; they must only be
// called after the matching IsXxx method returned true, otherwise they may
// return garbage or panic.
type ReceivedMessageArgument struct {
	tag  TypeTag
	data []byte // from the argument to the end of the message
}

// TypeTag returns the argument's type tag.
func (a ReceivedMessageArgument) TypeTag() TypeTag { return a.tag }

func (a ReceivedMessageArgument) check(want TypeTag) error {
	if a.tag == TypeInvalid {
		return ErrMissingArgument
	}
	if a.tag != want {
		return fmt.Errorf("%w: have '%c', want '%c'", ErrWrongArgumentType, rune(a.tag), rune(want))
	}
	return nil
}

func (a ReceivedMessageArgument) IsBool() bool { return a.tag == TypeTrue || a.tag == TypeFalse }

func (a ReceivedMessageArgument) AsBool() (bool, error) {
	if a.tag == TypeInvalid {
		return false, ErrMissingArgument
	}
	if !a.IsBool() {
		return false, fmt.Errorf("%w: have '%c', want bool", ErrWrongArgumentType, rune(a.tag))
	}
	return a.AsBoolUnchecked(), nil
}

func (a ReceivedMessageArgument) AsBoolUnchecked() bool { return a.tag == TypeTrue }

func (a ReceivedMessageArgument) IsNil() bool { return a.tag == TypeNil }

func (a ReceivedMessageArgument) IsInfinitum() bool { return a.tag == TypeInfinitum }

func (a ReceivedMessageArgument) IsInt32() bool { return a.tag == TypeInt32 }

func (a ReceivedMessageArgument) AsInt32() (int32, error) {
	if err := a.check(TypeInt32); err != nil {
		return 0, err
	}
	return a.AsInt32Unchecked(), nil
}

func (a ReceivedMessageArgument) AsInt32Unchecked() int32 {
	return int32(binary.BigEndian.Uint32(a.data))
}

func (a ReceivedMessageArgument) IsFloat() bool { return a.tag == TypeFloat32 }

func (a ReceivedMessageArgument) AsFloat() (float32, error) {
	if err := a.check(TypeFloat32); err != nil {
		return 0, err
	}
	return a.AsFloatUnchecked(), nil
}

func (a ReceivedMessageArgument) AsFloatUnchecked() float32 {
	return math.Float32frombits(binary.BigEndian.Uint32(a.data))
}

func (a ReceivedMessageArgument) IsChar() bool { return a.tag == TypeChar }

func (a ReceivedMessageArgument) AsChar() (Char, error) {
	if err := a.check(TypeChar); err != nil {
		return 0, err
	}
	return a.AsCharUnchecked(), nil
}

func (a ReceivedMessageArgument) AsCharUnchecked() Char {
	return Char(binary.BigEndian.Uint32(a.data))
}

func (a ReceivedMessageArgument) IsRGBAColor() bool { return a.tag == TypeRGBAColor }

func (a ReceivedMessageArgument) AsRGBAColor() (RGBAColor, error) {
	if err := a.check(TypeRGBAColor); err != nil {
		return 0, err
	}
	return a.AsRGBAColorUnchecked(), nil
}

func (a ReceivedMessageArgument) AsRGBAColorUnchecked() RGBAColor {
	return RGBAColor(binary.BigEndian.Uint32(a.data))
}

func (a ReceivedMessageArgument) IsMIDIMessage() bool { return a.tag == TypeMIDIMessage }

func (a ReceivedMessageArgument) AsMIDIMessage() (MIDIMessage, error) {
	if err := a.check(TypeMIDIMessage); err != nil {
		return 0, err
	}
	return a.AsMIDIMessageUnchecked(), nil
}

func (a ReceivedMessageArgument) AsMIDIMessageUnchecked() MIDIMessage {
	return MIDIMessage(binary.BigEndian.Uint32(a.data))
}

func (a ReceivedMessageArgument) IsInt64() bool { return a.tag == TypeInt64 }

func (a ReceivedMessageArgument) AsInt64() (int64, error) {
	if err := a.check(TypeInt64); err != nil {
		return 0, err
	}
	return a.AsInt64Unchecked(), nil
}

func (a ReceivedMessageArgument) AsInt64Unchecked() int64 {
	return int64(binary.BigEndian.Uint64(a.data))
}

func (a ReceivedMessageArgument) IsTimeTag() bool { return a.tag == TypeTimeTag }

func (a ReceivedMessageArgument) AsTimeTag() (Timetag, error) {
	if err := a.check(TypeTimeTag); err != nil {
		return 0, err
	}
	return a.AsTimeTagUnchecked(), nil
}

func (a ReceivedMessageArgument) AsTimeTagUnchecked() Timetag {
	return Timetag(binary.BigEndian.Uint64(a.data))
}

func (a ReceivedMessageArgument) IsDouble() bool { return a.tag == TypeFloat64 }

func (a ReceivedMessageArgument) AsDouble() (float64, error) {
	if err := a.check(TypeFloat64); err != nil {
		return 0, err
	}
	return a.AsDoubleUnchecked(), nil
}

func (a ReceivedMessageArgument) AsDoubleUnchecked() float64 {
	return math.Float64frombits(binary.BigEndian.Uint64(a.data))
}

func (a ReceivedMessageArgument) IsString() bool { return a.tag == TypeString }

// AsString returns the string argument. The string shares memory with the
// receive buffer; copy it if it has to outlive the buffer.
func (a ReceivedMessageArgument) AsString() (string, error) {
	if err := a.check(TypeString); err != nil {
		return "", err
	}
	return a.AsStringUnchecked(), nil
}

func (a ReceivedMessageArgument) AsStringUnchecked() string { return cString(a.data) }

func (a ReceivedMessageArgument) IsSymbol() bool { return a.tag == TypeSymbol }

// AsSymbol returns the symbol argument. Like AsString it shares memory with
// the receive buffer.
func (a ReceivedMessageArgument) AsSymbol() (Symbol, error) {
	if err := a.check(TypeSymbol); err != nil {
		return "", err
	}
	return a.AsSymbolUnchecked(), nil
}

func (a ReceivedMessageArgument) AsSymbolUnchecked() Symbol { return Symbol(cString(a.data)) }

func (a ReceivedMessageArgument) IsBlob() bool { return a.tag == TypeBlob }

// AsBlob returns the blob contents as a sub-slice of the receive buffer.
func (a ReceivedMessageArgument) AsBlob() ([]byte, error) {
	if err := a.check(TypeBlob); err != nil {
		return nil, err
	}
	return a.AsBlobUnchecked(), nil
}

func (a ReceivedMessageArgument) AsBlobUnchecked() []byte {
	size := binary.BigEndian.Uint32(a.data)
	return a.data[bit32Size : bit32Size+int(size)]
}

// String implements the fmt.Stringer interface.
func (a ReceivedMessageArgument) String() string {
	switch a.tag {
	case TypeTrue, TypeFalse:
		return fmt.Sprint(a.AsBoolUnchecked())
	case TypeNil:
		return "Nil"
	case TypeInfinitum:
		return "Infinitum"
	case TypeInt32:
		return fmt.Sprint(a.AsInt32Unchecked())
	case TypeFloat32:
		return fmt.Sprint(a.AsFloatUnchecked())
	case TypeChar:
		return fmt.Sprintf("%q", rune(a.AsCharUnchecked()))
	case TypeRGBAColor:
		return fmt.Sprintf("#%08x", uint32(a.AsRGBAColorUnchecked()))
	case TypeMIDIMessage:
		return fmt.Sprintf("midi:%08x", uint32(a.AsMIDIMessageUnchecked()))
	case TypeInt64:
		return fmt.Sprint(a.AsInt64Unchecked())
	case TypeTimeTag:
		return fmt.Sprint(a.AsTimeTagUnchecked().TimeTag())
	case TypeFloat64:
		return fmt.Sprint(a.AsDoubleUnchecked())
	case TypeString, TypeSymbol:
		return a.AsStringUnchecked()
	case TypeBlob:
		return "blob"
	}
	return ""
}

// ReceivedMessageArgumentIterator walks the arguments of a ReceivedMessage.
type ReceivedMessageArgumentIterator struct {
	data    []byte
	tagPos  int
	tagEnd  int
	argPos  int
	started bool
	err     error
}

// Next advances to the next argument and reports whether there is one.
func (it *ReceivedMessageArgumentIterator) Next() bool {
	if it.started && it.tagPos < it.tagEnd {
		size, err := argumentSize(TypeTag(it.data[it.tagPos]), it.data, it.argPos)
		if err != nil {
			it.err = err
			it.tagPos = it.tagEnd
			return false
		}
		it.argPos += size
		it.tagPos++
	}
	it.started = true
	return it.tagPos < it.tagEnd
}

// Argument returns the current argument, or the zero ReceivedMessageArgument
// if the iterator is exhausted.
func (it *ReceivedMessageArgumentIterator) Argument() ReceivedMessageArgument {
	if it.tagPos >= it.tagEnd {
		return ReceivedMessageArgument{}
	}
	return ReceivedMessageArgument{tag: TypeTag(it.data[it.tagPos]), data: it.data[it.argPos:]}
}

// Err returns the error that stopped the iteration, if any.
func (it *ReceivedMessageArgumentIterator) Err() error { return it.err }

// Equal reports whether both iterators point at the same argument.
func (it *ReceivedMessageArgumentIterator) Equal(other *ReceivedMessageArgumentIterator) bool {
	return it.tagPos == other.tagPos
}

// Offset returns the position of the current argument's data within the message.
func (it *ReceivedMessageArgumentIterator) Offset() int { return it.argPos }
