package osc

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"unsafe"
)

////
// De/Encoding functions
////

const (
	bit32Size = 4
	bit64Size = 8
)

var (
	errUnterminatedString = errors.New("unterminated string")
	errShortRead          = errors.New("read past end of buffer")
)

// readUint32 reads the big-endian uint32 at off. It fails instead of reading
// past the end of data.
func readUint32(data []byte, off int) (uint32, error) {
	if off < 0 || off > len(data)-bit32Size {
		return 0, errShortRead
	}
	return binary.BigEndian.Uint32(data[off:]), nil
}

// readUint64 reads the big-endian uint64 at off. It fails instead of reading
// past the end of data.
func readUint64(data []byte, off int) (uint64, error) {
	if off < 0 || off > len(data)-bit64Size {
		return 0, errShortRead
	}
	return binary.BigEndian.Uint64(data[off:]), nil
}

// parseBlob parses an OSC blob from the start of data. It returns the blob
// contents, which share memory with data, and the number of bytes consumed
// including the size field and the padding.
func parseBlob(data []byte) ([]byte, int, error) {
	// First, get the length
	blobLen, err := readUint32(data, 0)
	if err != nil {
		return nil, 0, fmt.Errorf("parseBlob: %w", err)
	}
	if uint64(blobLen) > uint64(len(data)-bit32Size) {
		return nil, 0, fmt.Errorf("parseBlob: invalid blob length %d", blobLen)
	}

	n := bit32Size + int(blobLen)
	n += padBytesNeeded(n)
	if n > len(data) {
		return nil, 0, fmt.Errorf("parseBlob: blob padding exceeds buffer")
	}

	return data[bit32Size : bit32Size+int(blobLen)], n, nil
}

// writeBlob writes data as an OSC blob into buf. If the length of data isn't
// 32-bit aligned, padding bytes will be added.
func writeBlob(data []byte, buf *bytes.Buffer) int {
	var size [bit32Size]byte
	binary.BigEndian.PutUint32(size[:], uint32(len(data)))
	buf.Write(size[:])
	buf.Write(data)

	n := bit32Size + len(data)
	pad := padBytesNeeded(n)
	buf.Write(padding[:pad])
	return n + pad
}

// parsePaddedString reads a padded string from the given slice and returns the
// string and the number of bytes read. The string shares memory with data.
func parsePaddedString(data []byte) (string, int, error) {
	pos := bytes.IndexByte(data, 0)
	if pos == -1 {
		return "", 0, fmt.Errorf("parsePaddedString: %w", errUnterminatedString)
	}

	n := pos + 1 + padBytesNeeded(pos+1)
	if n > len(data) {
		return "", 0, fmt.Errorf("parsePaddedString: %w", errShortRead)
	}

	return bytesToString(data[:pos]), n, nil
}

// writePaddedString writes a string with padding bytes to the buffer.
// Returns the number of written bytes.
func writePaddedString(str string, buf *bytes.Buffer) int {
	buf.WriteString(str)
	n := len(str) + 1
	pad := padBytesNeeded(n)
	buf.Write(padding[:pad+1])

	return n + pad
}

// cString returns the bytes of data up to the first NUL as a string sharing memory with data.
func cString(data []byte) string {
	if pos := bytes.IndexByte(data, 0); pos != -1 {
		data = data[:pos]
	}
	return bytesToString(data)
}

func bytesToString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(&b[0], len(b))
}

var padding = [bit32Size]byte{}

// padBytesNeeded determines how many bytes are needed to fill up to the next 4
// byte length.
func padBytesNeeded(elementLen int) int {
	return (4 - (elementLen % 4)) % 4
}
