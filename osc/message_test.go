package osc

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var temp = &Message{Address: "/composition/layers/1/clips/1/transport/position", Arguments: []interface{}{0.123456789, "hello world"}}

func TestMessage_Append(t *testing.T) {
	oscAddress := "/address"
	message := NewMessage(oscAddress)

	message.Append("string argument")
	message.Append(int32(123456789))
	message.Append(true)

	if len(message.Arguments) != 3 {
		t.Errorf("Number of arguments should be %d and is %d", 3, len(message.Arguments))
	}

	if err := message.Append(int(1)); err == nil {
		t.Error("Append() should reject int")
	}
	if len(message.Arguments) != 3 {
		t.Errorf("rejected Append() changed the arguments: %v", message.Arguments)
	}
}

func TestOscMessageMatch(t *testing.T) {
	tc := []struct {
		desc        string
		addr        string
		addrPattern string
		want        bool
	}{
		{
			"match every part",
			"/*/*",
			"/a/b",
			true,
		},
		{
			"wildcard stays within a part",
			"/*",
			"/a/b",
			false,
		},
		{
			"don't match",
			"/a/b",
			"/a",
			false,
		},
		{
			"match alternatives",
			"/a/{foo,bar}",
			"/a/foo",
			true,
		},
		{
			"don't match if address is not part of the alternatives",
			"/a/{foo,bar}",
			"/a/bob",
			false,
		},
		{
			"character class",
			"/a/[0-9]",
			"/a/7",
			true,
		},
		{
			"negated character class",
			"/a/[!0-9]",
			"/a/7",
			false,
		},
		{
			"match is anchored",
			"/a",
			"/a/b",
			false,
		},
	}

	for _, tt := range tc {
		msg := NewMessage(tt.addr)

		got := msg.Match(tt.addrPattern)
		if got != tt.want {
			t.Errorf("%s: msg.Match('%s') = '%t', want = '%t'", tt.desc, tt.addrPattern, got, tt.want)
		}
	}
}

func TestMessage_TypeTags(t *testing.T) {
	m := NewMessage("/a", int32(1), "s", Symbol("S"), []byte{}, float32(1), float64(1), int64(1),
		Timetag(1), Char('c'), RGBAColor(0), MIDIMessage(0), true, false, nil, Infinitum{})
	tags, err := m.TypeTags()
	require.NoError(t, err)
	assert.Equal(t, ",isSbfdhtcrmTFNI", tags)

	_, err = (*Message)(nil).TypeTags()
	assert.Error(t, err)
}

func TestMessage_String(t *testing.T) {
	m := NewMessage("/a", int32(1), "two", true, nil, []byte{1})
	assert.Equal(t, "/a ,isTNb 1 two true Nil blob", m.String())
	assert.Equal(t, "/a", NewMessage("/a").String())
}

func TestMessage_MarshalBinary(t *testing.T) {
	for _, tt := range messageTestCases {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.obj.MarshalBinary()
			if err != nil {
				t.Errorf("MarshalBinary() error = %v", err)
				return
			}
			if !reflect.DeepEqual(got, tt.raw) {
				t.Errorf("MarshalBinary() got = %q, want %q", got, tt.raw)
			}
		})
	}
}

func TestMessage_MarshalBinaryErrors(t *testing.T) {
	_, err := NewMessage("/a", 1).MarshalBinary()
	assert.Error(t, err, "int is not an OSC type")

	_, err = NewMessage("/a", make([]byte, MaxPacketSize)).MarshalBinary()
	assert.Error(t, err, "packet exceeds a datagram")
}

func TestMessage_UnmarshalBinary(t *testing.T) {
	for _, tt := range messageTestCases {
		t.Run(tt.name, func(t *testing.T) {
			m := new(Message)
			if err := m.UnmarshalBinary(tt.raw); err != nil {
				t.Errorf("UnmarshalBinary() error = %v", err)
			}
			if !reflect.DeepEqual(m, tt.obj) {
				t.Errorf("UnmarshalBinary() got = %v, want %v", m, tt.obj)
			}
		})
	}
}

func TestMessage_UnmarshalBinaryCopies(t *testing.T) {
	data := raw("/s"+nulls(2), ",sb"+nulls(1), "abc"+nulls(1), nulls(3)+"\x01", "x"+nulls(3))
	m, err := NewMessageFromData(data)
	require.NoError(t, err)

	for i := range data {
		data[i] = 'z'
	}
	assert.Equal(t, "/s", m.Address)
	assert.Equal(t, []interface{}{"abc", []byte("x")}, m.Arguments)
}

func TestMessage_UnmarshalBinaryErrors(t *testing.T) {
	for _, tt := range []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"unaligned", []byte("/a\x00")},
		{"bundle", raw("#bundle"+nulls(1), nulls(8))},
		{"unknown_tag", raw("/a"+nulls(2), ",x"+nulls(2))},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMessageFromData(tt.data)
			if !errors.Is(err, ErrMalformedPacket) {
				t.Errorf("NewMessageFromData() error = %v, want ErrMalformedPacket", err)
			}
		})
	}
}

var result interface{}

func BenchmarkMessageMarshalBinary(b *testing.B) {
	var buf []byte
	b.ReportAllocs()
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		buf, _ = temp.MarshalBinary()
	}
	result = buf
}
