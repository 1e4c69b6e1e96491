package osc

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// extract consumes one argument of the same type as want.
func extract(s *ReceivedMessageArgumentStream, want interface{}) (interface{}, error) {
	switch want.(type) {
	case bool:
		return s.Bool()
	case nil:
		return nil, s.Nil()
	case Infinitum:
		return Infinitum{}, s.Infinitum()
	case int32:
		return s.Int32()
	case float32:
		return s.Float()
	case Char:
		return s.Char()
	case RGBAColor:
		return s.RGBAColor()
	case MIDIMessage:
		return s.MIDIMessage()
	case int64:
		return s.Int64()
	case Timetag:
		return s.TimeTag()
	case float64:
		return s.Double()
	case string:
		return s.String()
	case Symbol:
		return s.Symbol()
	case []byte:
		return s.Blob()
	}
	return nil, fmt.Errorf("extract: unsupported type %T", want)
}

func TestReceivedMessage_Freq(t *testing.T) {
	p := NewReceivedPacket(freqRaw)
	require.True(t, p.IsMessage())
	require.False(t, p.IsBundle())
	assert.Equal(t, len(freqRaw), p.Size())

	m, err := p.Message()
	require.NoError(t, err)
	assert.Equal(t, "/freq", m.AddressPattern())
	assert.False(t, m.AddressPatternIsUInt32())
	assert.Equal(t, 1, m.ArgumentCount())
	assert.Equal(t, "f", m.TypeTags())
	assert.Equal(t, "/freq ,f 440", m.String())

	it := m.Arguments()
	require.True(t, it.Next())
	arg := it.Argument()
	assert.Equal(t, TypeFloat32, arg.TypeTag())
	assert.True(t, arg.IsFloat())
	f, err := arg.AsFloat()
	require.NoError(t, err)
	assert.Equal(t, float32(440), f)
	assert.Equal(t, float32(440), arg.AsFloatUnchecked())

	assert.False(t, it.Next())
	assert.True(t, it.Equal(m.ArgumentsEnd()))
	assert.NoError(t, it.Err())
}

func TestReceivedBundle_TwoMessages(t *testing.T) {
	p := NewReceivedPacket(bundleTestCases[1].raw)
	require.True(t, p.IsBundle())

	b, err := p.Bundle()
	require.NoError(t, err)
	assert.Equal(t, 2, b.ElementCount())
	assert.True(t, b.TimeTag().IsImmediate())

	n := 0
	it := b.Elements()
	for it.Next() {
		e := it.Element()
		assert.True(t, e.IsMessage())
		assert.Equal(t, 16, e.Size())
		assert.Equal(t, freqRaw, e.Contents())

		m, err := e.Message()
		require.NoError(t, err)
		f, err := m.ArgumentStream().Float()
		require.NoError(t, err)
		assert.Equal(t, float32(440), f)
		n++
	}
	assert.Equal(t, 2, n)
	assert.True(t, it.Equal(b.ElementsEnd()))
	assert.Equal(t, len(bundleTestCases[1].raw), it.Offset())
	assert.False(t, it.Next(), "iterating past the end stays at the end")
}

func TestReceivedBundle_Nested(t *testing.T) {
	b, err := NewReceivedPacket(bundleTestCases[2].raw).Bundle()
	require.NoError(t, err)
	assert.Equal(t, Timetag(0x0102030405060708), b.TimeTag())
	require.Equal(t, 2, b.ElementCount())

	it := b.Elements()
	require.True(t, it.Next())
	require.True(t, it.Element().IsBundle())
	inner, err := it.Element().Bundle()
	require.NoError(t, err)
	assert.Equal(t, 1, inner.ElementCount())

	require.True(t, it.Next())
	m, err := it.Element().Message()
	require.NoError(t, err)
	assert.Equal(t, "/a", m.AddressPattern())
	assert.Equal(t, 0, m.ArgumentCount())
}

// TestReceivedMessage_MatchesEncoder decodes every encoder test case with the
// checked accessors and compares against the encoded arguments.
func TestReceivedMessage_MatchesEncoder(t *testing.T) {
	for _, tt := range messageTestCases {
		t.Run(tt.name, func(t *testing.T) {
			want := tt.obj.(*Message)
			m, err := NewReceivedPacket(tt.raw).Message()
			require.NoError(t, err)
			assert.Equal(t, want.Address, m.AddressPattern())
			assert.Equal(t, len(want.Arguments), m.ArgumentCount())

			tags, _ := want.TypeTags()
			assert.Equal(t, tags[1:], m.TypeTags())

			s := m.ArgumentStream()
			got := make([]interface{}, 0, len(want.Arguments))
			for _, a := range want.Arguments {
				v, err := extract(s, a)
				require.NoError(t, err)
				got = append(got, v)
			}
			require.NoError(t, s.ExpectEnd())
			if diff := cmp.Diff(want.Arguments, got); diff != "" {
				t.Errorf("arguments mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReceivedMessageArgument_Checked(t *testing.T) {
	m, err := NewReceivedPacket(messageTestCases[len(messageTestCases)-1].raw).Message()
	require.NoError(t, err)

	it := m.Arguments()
	require.True(t, it.Next())
	arg := it.Argument()

	_, err = arg.AsFloat()
	assert.ErrorIs(t, err, ErrWrongArgumentType)
	_, err = arg.AsString()
	assert.ErrorIs(t, err, ErrWrongArgumentType)
	_, err = arg.AsBool()
	assert.ErrorIs(t, err, ErrWrongArgumentType)
	v, err := arg.AsInt32()
	require.NoError(t, err)
	assert.Equal(t, int32(7), v)

	require.True(t, it.Next())
	s, err := it.Argument().AsString()
	require.NoError(t, err)
	assert.Equal(t, "abc", s)

	require.True(t, it.Next())
	assert.True(t, it.Argument().IsBool())
	assert.True(t, it.Argument().AsBoolUnchecked())

	require.True(t, it.Next())
	require.False(t, it.Next())

	var missing ReceivedMessageArgument
	for _, err := range []error{
		func() error { _, err := it.Argument().AsInt32(); return err }(),
		func() error { _, err := missing.AsBool(); return err }(),
		func() error { _, err := missing.AsBlob(); return err }(),
	} {
		assert.ErrorIs(t, err, ErrMissingArgument)
	}
}

func TestReceivedMessageArgument_BlobAliasesBuffer(t *testing.T) {
	data := raw("/b"+nulls(2), ",b"+nulls(2), nulls(3)+"\x02", "xy"+nulls(2))
	m, err := NewReceivedPacket(data).Message()
	require.NoError(t, err)

	blob, err := m.ArgumentStream().Blob()
	require.NoError(t, err)
	require.Equal(t, []byte("xy"), blob)

	data[12] = 'z'
	assert.Equal(t, []byte("zy"), blob)
}

func TestReceivedMessage_UInt32Address(t *testing.T) {
	data := raw(nulls(3)+"\x2a", ",i"+nulls(2), nulls(3)+"\x01")
	m, err := NewReceivedPacket(data).Message()
	require.NoError(t, err)
	assert.True(t, m.AddressPatternIsUInt32())
	assert.Equal(t, uint32(42), m.AddressPatternAsUInt32())
	assert.Equal(t, 1, m.ArgumentCount())
}

func TestReceivedMessage_AddressOnly(t *testing.T) {
	m, err := NewReceivedPacket(raw("/ping" + nulls(3))).Message()
	require.NoError(t, err)
	assert.Equal(t, "/ping", m.AddressPattern())
	assert.Equal(t, 0, m.ArgumentCount())
	assert.Equal(t, "", m.TypeTags())
	assert.False(t, m.Arguments().Next())
	assert.NoError(t, m.ArgumentStream().ExpectEnd())
}

func TestReceivedMessage_Malformed(t *testing.T) {
	for _, tt := range []struct {
		name string
		data []byte
	}{
		{"empty", []byte{}},
		{"unaligned", raw("/a" + nulls(3))},
		{"unterminated_address", raw("/abc")},
		{"type_tags_not_present", raw("/a"+nulls(2), "xi"+nulls(2))},
		{"unterminated_type_tags", raw("/a"+nulls(2), ",iii")},
		{"unknown_type_tag", raw("/a"+nulls(2), ",q"+nulls(2), nulls(4))},
		{"int32_overrun", raw("/a"+nulls(2), ",ii"+nulls(1), nulls(4))},
		{"int64_overrun", raw("/a"+nulls(2), ",h"+nulls(2), nulls(4))},
		{"string_unterminated", raw("/a"+nulls(2), ",s"+nulls(2), "abcd")},
		{"blob_overrun", raw("/a"+nulls(2), ",b"+nulls(2), nulls(3)+"\x08", "abcd")},
		{"blob_negative_size", raw("/a"+nulls(2), ",b"+nulls(2), "\xff\xff\xff\xfc", "abcd")},
		{"missing_string", raw("/a"+nulls(2), ",s"+nulls(2))},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReceivedPacket(tt.data).Message()
			assert.ErrorIs(t, err, ErrMalformedMessage)
			assert.ErrorIs(t, err, ErrMalformedPacket)
		})
	}
}

func TestReceivedBundle_Malformed(t *testing.T) {
	header := "#bundle" + nulls(1) + nulls(8)
	for _, tt := range []struct {
		name string
		data []byte
	}{
		{"too_short", raw("#bundle" + nulls(1) + nulls(4))},
		{"unaligned", raw(header, nulls(3)+"\x00", "x")},
		{"element_size_unaligned", raw(header, nulls(3)+"\x03", "ab"+nulls(2))},
		{"element_overrun", raw(header, nulls(3)+"\x08", "/a"+nulls(2))},
		{"element_size_huge", raw(header, "\xff\xff\xff\xfc", "/a"+nulls(2))},
		{"bad_tag", raw("#bundlx"+nulls(1), nulls(8))},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReceivedPacket(tt.data).Bundle()
			assert.ErrorIs(t, err, ErrMalformedBundle)
			assert.ErrorIs(t, err, ErrMalformedPacket)
		})
	}
}

// walk visits every element of b, decoding every message and argument.
func walk(t *testing.T, b ReceivedBundle) int {
	t.Helper()
	n := 0
	it := b.Elements()
	for it.Next() {
		n++
		e := it.Element()
		if e.IsBundle() {
			if nested, err := e.Bundle(); err == nil {
				walk(t, nested)
			}
			continue
		}
		if m, err := e.Message(); err == nil {
			args := m.Arguments()
			for args.Next() {
				_ = args.Argument().String()
			}
		}
	}
	return n
}

func TestTruncatedPackets(t *testing.T) {
	for _, tt := range messageTestCases {
		want := tt.obj.(*Message).Arguments
		if len(want) == 0 {
			continue
		}
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < len(tt.raw); i++ {
				data := tt.raw[:i:i]
				m, err := NewReceivedPacket(data).Message()
				if err != nil {
					assert.ErrorIs(t, err, ErrMalformedPacket, "truncated at %d", i)
					continue
				}
				s := m.ArgumentStream()
				for _, a := range want {
					if _, err = extract(s, a); err != nil {
						break
					}
				}
				assert.ErrorIs(t, err, ErrMissingArgument, "truncated at %d", i)
			}
		})
	}

	for _, tt := range bundleTestCases {
		want := len(tt.obj.(*Bundle).Elements)
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < len(tt.raw); i++ {
				data := tt.raw[:i:i]
				b, err := NewReceivedPacket(data).Bundle()
				if err != nil {
					assert.True(t, errors.Is(err, ErrMalformedPacket), "truncated at %d: %v", i, err)
					continue
				}
				assert.Less(t, b.ElementCount(), want, "truncated at %d", i)
				assert.Equal(t, b.ElementCount(), walk(t, b))
			}
		})
	}
}

func FuzzReceivedPacket(f *testing.F) {
	for _, tc := range bundleTestCases {
		f.Add(tc.raw)
	}
	for _, tc := range messageTestCases {
		f.Add(tc.raw)
	}
	f.Fuzz(func(t *testing.T, data []byte) {
		data = data[:len(data):len(data)]
		p := NewReceivedPacket(data)
		if p.IsBundle() {
			b, err := p.Bundle()
			if err != nil {
				return
			}
			if n := walk(t, b); n != b.ElementCount() {
				t.Fatalf("iterated %d elements, ElementCount() = %d", n, b.ElementCount())
			}
			return
		}

		m, err := p.Message()
		if err != nil {
			return
		}
		n := 0
		args := m.Arguments()
		for args.Next() {
			_ = args.Argument().String()
			n++
		}
		if n != m.ArgumentCount() {
			t.Fatalf("iterated %d arguments, ArgumentCount() = %d", n, m.ArgumentCount())
		}
	})
}
