package osc

import "fmt"

type TypeTag rune

const (
	TypeString      TypeTag = 's'
	TypeSymbol      TypeTag = 'S'
	TypeInt32       TypeTag = 'i'
	TypeInt64       TypeTag = 'h'
	TypeFloat32     TypeTag = 'f'
	TypeFloat64     TypeTag = 'd'
	TypeChar        TypeTag = 'c'
	TypeRGBAColor   TypeTag = 'r'
	TypeMIDIMessage TypeTag = 'm'
	TypeBlob        TypeTag = 'b'
	TypeTimeTag     TypeTag = 't'
	TypeNil         TypeTag = 'N'
	TypeInfinitum   TypeTag = 'I'
	TypeTrue        TypeTag = 'T'
	TypeFalse       TypeTag = 'F'
	TypeInvalid     TypeTag = 0
)

// Symbol is an OSC symbol ('S'). It is encoded exactly like a string.
type Symbol string

// Char is an OSC ASCII character ('c'), transmitted as a 32-bit value.
type Char byte

// RGBAColor is a 32-bit RGBA color ('r'), red in the most significant byte.
type RGBAColor uint32

// MIDIMessage is a 4-byte MIDI message ('m'): port id, status byte, data1, data2.
type MIDIMessage uint32

// Infinitum is the OSC infinitum ('I'). Like nil and the booleans it carries no
// argument data.
type Infinitum struct{}

// ToTypeTag returns the OSC TypeTag for the given argument.
// Returns TypeInvalid if the argument type is unsupported.
func ToTypeTag(arg interface{}) TypeTag {
	switch t := arg.(type) {
	case bool:
		if t {
			return TypeTrue
		}
		return TypeFalse
	case nil:
		return TypeNil
	case Infinitum:
		return TypeInfinitum
	case int32:
		return TypeInt32
	case float32:
		return TypeFloat32
	case string:
		return TypeString
	case Symbol:
		return TypeSymbol
	case []byte:
		return TypeBlob
	case int64:
		return TypeInt64
	case float64:
		return TypeFloat64
	case Char:
		return TypeChar
	case RGBAColor:
		return TypeRGBAColor
	case MIDIMessage:
		return TypeMIDIMessage
	case Timetag:
		return TypeTimeTag
	default:
		return TypeInvalid
	}
}

// GetTypeTag returns the OSC type tag string, including the leading ',', for the given arguments.
func GetTypeTag(args []interface{}) (string, error) {
	tt := make([]byte, 0, len(args)+1)
	tt = append(tt, ',')
	for _, arg := range args {
		s := ToTypeTag(arg)
		if s == TypeInvalid {
			return "", fmt.Errorf("GetTypeTag: unsupported type: %T", arg)
		}
		tt = append(tt, byte(s))
	}
	return string(tt), nil
}

// String returns the tag character.
func (t TypeTag) String() string {
	if t == TypeInvalid {
		return "invalid"
	}
	return string(rune(t))
}
