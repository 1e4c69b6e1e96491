package osc

import "fmt"

// ReceivedMessageArgumentStream extracts the arguments of a ReceivedMessage in
// order, each with an exact expected type. A failed extraction leaves the
// stream where it was.
//
//	var freq float32
//	args := msg.ArgumentStream()
//	if err := args.Scan(&freq); err != nil {
//		return err
//	}
//	return args.ExpectEnd()
type ReceivedMessageArgumentStream struct {
	data   []byte
	tagPos int
	tagEnd int
	argPos int
}

// Eos reports whether all arguments have been consumed.
func (s *ReceivedMessageArgumentStream) Eos() bool { return s.tagPos >= s.tagEnd }

// ExpectEnd returns ErrExcessArgument if arguments remain.
func (s *ReceivedMessageArgumentStream) ExpectEnd() error {
	if !s.Eos() {
		return fmt.Errorf("%w: %d remaining", ErrExcessArgument, s.tagEnd-s.tagPos)
	}
	return nil
}

func (s *ReceivedMessageArgumentStream) current() ReceivedMessageArgument {
	if s.Eos() {
		return ReceivedMessageArgument{}
	}
	return ReceivedMessageArgument{tag: TypeTag(s.data[s.tagPos]), data: s.data[s.argPos:]}
}

func (s *ReceivedMessageArgumentStream) advance() error {
	size, err := argumentSize(TypeTag(s.data[s.tagPos]), s.data, s.argPos)
	if err != nil {
		return err
	}
	s.argPos += size
	s.tagPos++
	return nil
}

// next applies the checked accessor as to the current argument and advances
// on success.
func next[T any](s *ReceivedMessageArgumentStream, as func(ReceivedMessageArgument) (T, error)) (T, error) {
	v, err := as(s.current())
	if err != nil {
		return v, err
	}
	if err := s.advance(); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

func (s *ReceivedMessageArgumentStream) Bool() (bool, error) {
	return next(s, ReceivedMessageArgument.AsBool)
}

func (s *ReceivedMessageArgumentStream) Int32() (int32, error) {
	return next(s, ReceivedMessageArgument.AsInt32)
}

func (s *ReceivedMessageArgumentStream) Float() (float32, error) {
	return next(s, ReceivedMessageArgument.AsFloat)
}

func (s *ReceivedMessageArgumentStream) Char() (Char, error) {
	return next(s, ReceivedMessageArgument.AsChar)
}

func (s *ReceivedMessageArgumentStream) RGBAColor() (RGBAColor, error) {
	return next(s, ReceivedMessageArgument.AsRGBAColor)
}

func (s *ReceivedMessageArgumentStream) MIDIMessage() (MIDIMessage, error) {
	return next(s, ReceivedMessageArgument.AsMIDIMessage)
}

func (s *ReceivedMessageArgumentStream) Int64() (int64, error) {
	return next(s, ReceivedMessageArgument.AsInt64)
}

func (s *ReceivedMessageArgumentStream) TimeTag() (Timetag, error) {
	return next(s, ReceivedMessageArgument.AsTimeTag)
}

func (s *ReceivedMessageArgumentStream) Double() (float64, error) {
	return next(s, ReceivedMessageArgument.AsDouble)
}

// String consumes a string argument. The result shares memory with the
// receive buffer.
func (s *ReceivedMessageArgumentStream) String() (string, error) {
	return next(s, ReceivedMessageArgument.AsString)
}

func (s *ReceivedMessageArgumentStream) Symbol() (Symbol, error) {
	return next(s, ReceivedMessageArgument.AsSymbol)
}

// Blob consumes a blob argument. The result shares memory with the receive
// buffer.
func (s *ReceivedMessageArgumentStream) Blob() ([]byte, error) {
	return next(s, ReceivedMessageArgument.AsBlob)
}

// Nil consumes a nil argument.
func (s *ReceivedMessageArgumentStream) Nil() error {
	return s.expectTag(TypeNil)
}

// Infinitum consumes an infinitum argument.
func (s *ReceivedMessageArgumentStream) Infinitum() error {
	return s.expectTag(TypeInfinitum)
}

func (s *ReceivedMessageArgumentStream) expectTag(tag TypeTag) error {
	if err := s.current().check(tag); err != nil {
		return err
	}
	return s.advance()
}

// Scan consumes one argument per destination, in order. Each destination must
// be a pointer to one of bool, int32, float32, Char, RGBAColor, MIDIMessage,
// int64, Timetag, float64, string, Symbol, []byte, Infinitum; a nil
// destination consumes a nil argument. Scan stops at the first failure.
func (s *ReceivedMessageArgumentStream) Scan(dst ...interface{}) error {
	for i, d := range dst {
		var err error
		switch p := d.(type) {
		case nil:
			err = s.Nil()
		case *bool:
			*p, err = s.Bool()
		case *int32:
			*p, err = s.Int32()
		case *float32:
			*p, err = s.Float()
		case *Char:
			*p, err = s.Char()
		case *RGBAColor:
			*p, err = s.RGBAColor()
		case *MIDIMessage:
			*p, err = s.MIDIMessage()
		case *int64:
			*p, err = s.Int64()
		case *Timetag:
			*p, err = s.TimeTag()
		case *float64:
			*p, err = s.Double()
		case *string:
			*p, err = s.String()
		case *Symbol:
			*p, err = s.Symbol()
		case *[]byte:
			*p, err = s.Blob()
		case *Infinitum:
			err = s.Infinitum()
		default:
			return fmt.Errorf("Scan: unsupported destination type %T", d)
		}
		if err != nil {
			return fmt.Errorf("Scan: argument %d: %w", i, err)
		}
	}
	return nil
}
