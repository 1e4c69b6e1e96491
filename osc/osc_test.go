package osc

import "strings"

const zero = string(byte(0))

// nulls returns a string of `i` nulls.
func nulls(i int) string {
	return strings.Repeat(zero, i)
}

// raw concatenates wire fragments.
func raw(parts ...string) []byte {
	return []byte(strings.Join(parts, ""))
}

type testCase struct {
	name string
	obj  Packet
	raw  []byte
}

var (
	freqRaw = raw("/freq"+nulls(3), ",f"+nulls(2), "\x43\xdc\x00\x00")
	freqMsg = &Message{Address: "/freq", Arguments: []interface{}{float32(440)}}
)

var messageTestCases = []testCase{
	{"no_args", &Message{Address: "/a", Arguments: []interface{}{}}, raw("/a"+nulls(2), ","+nulls(3))},
	{"int32", &Message{Address: "/osc", Arguments: []interface{}{int32(1)}}, raw("/osc"+nulls(4), ",i"+nulls(2), nulls(3)+"\x01")},
	{"negative_int32", &Message{Address: "/osc", Arguments: []interface{}{int32(-1)}}, raw("/osc"+nulls(4), ",i"+nulls(2), "\xff\xff\xff\xff")},
	{"float32", freqMsg, freqRaw},
	{"string", &Message{Address: "/s", Arguments: []interface{}{"hello"}}, raw("/s"+nulls(2), ",s"+nulls(2), "hello"+nulls(3))},
	{"string_aligned", &Message{Address: "/s", Arguments: []interface{}{"four"}}, raw("/s"+nulls(2), ",s"+nulls(2), "four"+nulls(4))},
	{"empty_string", &Message{Address: "/s", Arguments: []interface{}{""}}, raw("/s"+nulls(2), ",s"+nulls(2), nulls(4))},
	{"symbol", &Message{Address: "/s", Arguments: []interface{}{Symbol("sym")}}, raw("/s"+nulls(2), ",S"+nulls(2), "sym"+nulls(1))},
	{"blob", &Message{Address: "/b", Arguments: []interface{}{[]byte{1, 2, 3}}}, raw("/b"+nulls(2), ",b"+nulls(2), nulls(3)+"\x03", "\x01\x02\x03"+nulls(1))},
	{"empty_blob", &Message{Address: "/b", Arguments: []interface{}{[]byte{}}}, raw("/b"+nulls(2), ",b"+nulls(2), nulls(4))},
	{"int64", &Message{Address: "/h", Arguments: []interface{}{int64(-2)}}, raw("/h"+nulls(2), ",h"+nulls(2), "\xff\xff\xff\xff\xff\xff\xff\xfe")},
	{"float64", &Message{Address: "/d", Arguments: []interface{}{float64(1)}}, raw("/d"+nulls(2), ",d"+nulls(2), "\x3f\xf0"+nulls(6))},
	{"timetag", &Message{Address: "/t", Arguments: []interface{}{Timetag(1)}}, raw("/t"+nulls(2), ",t"+nulls(2), nulls(7)+"\x01")},
	{"char", &Message{Address: "/c", Arguments: []interface{}{Char('a')}}, raw("/c"+nulls(2), ",c"+nulls(2), nulls(3)+"a")},
	{"rgba", &Message{Address: "/r", Arguments: []interface{}{RGBAColor(0x11223344)}}, raw("/r"+nulls(2), ",r"+nulls(2), "\x11\x22\x33\x44")},
	{"midi", &Message{Address: "/m", Arguments: []interface{}{MIDIMessage(0x00904060)}}, raw("/m"+nulls(2), ",m"+nulls(2), "\x00\x90\x40\x60")},
	{"no_payload_tags", &Message{Address: "/x", Arguments: []interface{}{true, false, nil, Infinitum{}}}, raw("/x"+nulls(2), ",TFNI"+nulls(3))},
	{"mixed", &Message{Address: "/composition/layers", Arguments: []interface{}{int32(7), "abc", true, float32(440)}},
		raw("/composition/layers"+nulls(1), ",isTf"+nulls(3), nulls(3)+"\x07", "abc"+nulls(1), "\x43\xdc\x00\x00")},
}

var bundleTestCases = []testCase{
	{"empty_bundle", &Bundle{Timetag: 1, Elements: []Packet{}}, raw("#bundle"+nulls(1), nulls(7)+"\x01")},
	{"two_messages", &Bundle{Timetag: 1, Elements: []Packet{freqMsg, freqMsg}},
		raw("#bundle"+nulls(1), nulls(7)+"\x01", nulls(3)+"\x10", string(freqRaw), nulls(3)+"\x10", string(freqRaw))},
	{"nested_bundle", &Bundle{Timetag: 0x0102030405060708, Elements: []Packet{
		&Bundle{Timetag: 1, Elements: []Packet{freqMsg}},
		&Message{Address: "/a", Arguments: []interface{}{}},
	}},
		raw("#bundle"+nulls(1), "\x01\x02\x03\x04\x05\x06\x07\x08",
			nulls(3)+"\x24", "#bundle"+nulls(1), nulls(7)+"\x01", nulls(3)+"\x10", string(freqRaw),
			nulls(3)+"\x08", "/a"+nulls(2), ","+nulls(3))},
}
