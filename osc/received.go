package osc

import (
	"bytes"
	"fmt"
)

const (
	bundleTagString = "#bundle"

	// bundleHeaderSize covers the "#bundle\0" tag and the time tag.
	bundleHeaderSize = len(bundleTagString) + 1 + bit64Size
)

var bundleTag = []byte(bundleTagString + "\x00")

// ReceivedPacket is a view over a single received datagram. It does not copy
// the buffer: the buffer must outlive the packet and every value obtained
// from it, and must not be modified while they are in use.
type ReceivedPacket struct {
	data []byte
}

// NewReceivedPacket wraps data. No parsing happens until Message or Bundle is called.
func NewReceivedPacket(data []byte) ReceivedPacket {
	return ReceivedPacket{data: data}
}

// IsBundle reports whether the packet starts with "#bundle\0".
func (p ReceivedPacket) IsBundle() bool { return isBundle(p.data) }

// IsMessage reports whether the packet is not a bundle.
func (p ReceivedPacket) IsMessage() bool { return !p.IsBundle() }

// Size returns the size of the packet in bytes.
func (p ReceivedPacket) Size() int { return len(p.data) }

// Contents returns the raw packet bytes.
func (p ReceivedPacket) Contents() []byte { return p.data }

// Message decodes the packet as a message.
func (p ReceivedPacket) Message() (ReceivedMessage, error) { return newReceivedMessage(p.data) }

// Bundle decodes the packet as a bundle.
func (p ReceivedPacket) Bundle() (ReceivedBundle, error) { return newReceivedBundle(p.data) }

func isBundle(data []byte) bool {
	return len(data) >= len(bundleTag) && bytes.Equal(data[:len(bundleTag)], bundleTag)
}

// ReceivedBundle is a view over a decoded OSC bundle. Constructing it checks
// that the element size fields exactly cover the bundle; the elements
// themselves are decoded when visited.
type ReceivedBundle struct {
	data         []byte
	elementCount int
}

func newReceivedBundle(data []byte) (ReceivedBundle, error) {
	if len(data) < bundleHeaderSize {
		return ReceivedBundle{}, fmt.Errorf("%w: packet too short for bundle", ErrMalformedBundle)
	}
	if len(data)%bit32Size != 0 {
		return ReceivedBundle{}, fmt.Errorf("%w: bundle size must be multiple of four", ErrMalformedBundle)
	}
	if !isBundle(data) {
		return ReceivedBundle{}, fmt.Errorf("%w: bad bundle address pattern", ErrMalformedBundle)
	}

	count := 0
	for p := bundleHeaderSize; p < len(data); count++ {
		size, err := readUint32(data, p)
		if err != nil {
			return ReceivedBundle{}, fmt.Errorf("%w: packet too short for element size", ErrMalformedBundle)
		}
		if size%bit32Size != 0 {
			return ReceivedBundle{}, fmt.Errorf("%w: bundle element size must be multiple of four", ErrMalformedBundle)
		}
		if uint64(size) > uint64(len(data)-p-bit32Size) {
			return ReceivedBundle{}, fmt.Errorf("%w: element size %d exceeds bundle", ErrMalformedBundle, size)
		}
		p += bit32Size + int(size)
	}

	return ReceivedBundle{data: data, elementCount: count}, nil
}

// TimeTag returns the bundle's time tag.
func (b ReceivedBundle) TimeTag() Timetag {
	t, _ := readUint64(b.data, len(bundleTag))
	return Timetag(t)
}

// ElementCount returns the number of elements in the bundle.
func (b ReceivedBundle) ElementCount() int { return b.elementCount }

// Elements returns an iterator over the bundle's elements.
//
//	it := b.Elements()
//	for it.Next() {
//		e := it.Element()
//	}
func (b ReceivedBundle) Elements() *ReceivedBundleElementIterator {
	return &ReceivedBundleElementIterator{data: b.data, pos: bundleHeaderSize}
}

// ElementsEnd returns the iterator positioned past the last element.
func (b ReceivedBundle) ElementsEnd() *ReceivedBundleElementIterator {
	return &ReceivedBundleElementIterator{data: b.data, pos: len(b.data), started: true}
}

// ReceivedBundleElement is one element of a bundle, either a message or a
// nested bundle.
type ReceivedBundleElement struct {
	data []byte // the enclosing bundle
	pos  int    // offset of the element's size field
}

// Size returns the size of the element contents in bytes.
func (e ReceivedBundleElement) Size() int {
	size, _ := readUint32(e.data, e.pos)
	return int(size)
}

// Contents returns the element's bytes, without the size field.
func (e ReceivedBundleElement) Contents() []byte {
	start := e.pos + bit32Size
	end := start + e.Size()
	if start > len(e.data) || end > len(e.data) {
		return nil
	}
	return e.data[start:end]
}

// IsBundle reports whether the element is a nested bundle.
func (e ReceivedBundleElement) IsBundle() bool { return isBundle(e.Contents()) }

// IsMessage reports whether the element is a message.
func (e ReceivedBundleElement) IsMessage() bool { return !e.IsBundle() }

// Message decodes the element as a message.
func (e ReceivedBundleElement) Message() (ReceivedMessage, error) {
	return newReceivedMessage(e.Contents())
}

// Bundle decodes the element as a nested bundle.
func (e ReceivedBundleElement) Bundle() (ReceivedBundle, error) {
	return newReceivedBundle(e.Contents())
}

// ReceivedBundleElementIterator walks the elements of a ReceivedBundle.
type ReceivedBundleElementIterator struct {
	data    []byte
	pos     int
	started bool
}

// Next advances to the next element and reports whether there is one.
func (it *ReceivedBundleElementIterator) Next() bool {
	if it.started && it.pos < len(it.data) {
		size, err := readUint32(it.data, it.pos)
		next := it.pos + bit32Size + int(size)
		if err != nil || next > len(it.data) {
			next = len(it.data)
		}
		it.pos = next
	}
	it.started = true
	return it.pos < len(it.data)
}

// Element returns the current element.
func (it *ReceivedBundleElementIterator) Element() ReceivedBundleElement {
	return ReceivedBundleElement{data: it.data, pos: it.pos}
}

// Offset returns the position of the current element's size field within the bundle.
func (it *ReceivedBundleElementIterator) Offset() int { return it.pos }

// Equal reports whether both iterators point at the same position.
func (it *ReceivedBundleElementIterator) Equal(other *ReceivedBundleElementIterator) bool {
	return it.pos == other.pos
}
