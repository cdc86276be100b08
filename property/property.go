// Package property encodes and decodes typed property values to and from the
// untyped payloads carried by engine property events.
package property

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/mpvkit/mpvkit/engine"
)

// Observed property names.
const (
	TimePos  = "time-pos"
	Duration = "duration"
	Pause    = "pause"
	Volume   = "volume"
)

// Observation is a property subscription together with its expected payload kind.
type Observation struct {
	Name   string
	Format engine.Format
}

// Observed lists the properties every bridge subscribes to.
var Observed = []Observation{
	{TimePos, engine.FormatDouble},
	{Duration, engine.FormatDouble},
	{Pause, engine.FormatFlag},
	{Volume, engine.FormatDouble},
}

// FormatOf returns the expected payload kind of an observed property.
func FormatOf(name string) (engine.Format, bool) {
	for _, o := range Observed {
		if o.Name == name {
			return o.Format, true
		}
	}
	return engine.FormatNone, false
}

// ErrPayload is returned when a payload does not match its declared format.
var ErrPayload = errors.New("malformed property payload")

const (
	doubleSize = 8
	flagSize   = 4
)

// Value is a decoded property value.
type Value struct {
	format engine.Format
	num    float64
	flag   bool
	text   string
}

// Double wraps a floating point value.
func Double(v float64) Value { return Value{format: engine.FormatDouble, num: v} }

// Flag wraps a boolean value.
func Flag(v bool) Value { return Value{format: engine.FormatFlag, flag: v} }

// String wraps a string value.
func String(v string) Value { return Value{format: engine.FormatString, text: v} }

// Format reports the kind of the value.
func (v Value) Format() engine.Format { return v.format }

// Double returns the value if it is a double.
func (v Value) Double() (float64, bool) { return v.num, v.format == engine.FormatDouble }

// Flag returns the value if it is a flag.
func (v Value) Flag() (bool, bool) { return v.flag, v.format == engine.FormatFlag }

// Text returns the value if it is a string.
func (v Value) Text() (string, bool) { return v.text, v.format == engine.FormatString }

// Interface returns the value as a plain Go value (float64, bool or string).
func (v Value) Interface() any {
	switch v.format {
	case engine.FormatDouble:
		return v.num
	case engine.FormatFlag:
		return v.flag
	case engine.FormatString:
		return v.text
	default:
		return nil
	}
}

func (v Value) String() string {
	return fmt.Sprintf("%s(%v)", v.format, v.Interface())
}

// EncodeDouble encodes f as 8 IEEE-754 bytes in native byte order.
func EncodeDouble(f float64) []byte {
	return binary.NativeEndian.AppendUint64(make([]byte, 0, doubleSize), math.Float64bits(f))
}

// DecodeDouble is the inverse of EncodeDouble.
func DecodeDouble(data []byte) (float64, error) {
	if len(data) != doubleSize {
		return 0, fmt.Errorf("%w: double needs %d bytes, got %d", ErrPayload, doubleSize, len(data))
	}
	return math.Float64frombits(binary.NativeEndian.Uint64(data)), nil
}

// EncodeFlag encodes b as a native 32-bit integer, 1 or 0.
func EncodeFlag(b bool) []byte {
	var n uint32
	if b {
		n = 1
	}
	return binary.NativeEndian.AppendUint32(make([]byte, 0, flagSize), n)
}

// DecodeFlag is the inverse of EncodeFlag. Any nonzero integer is true.
func DecodeFlag(data []byte) (bool, error) {
	if len(data) != flagSize {
		return false, fmt.Errorf("%w: flag needs %d bytes, got %d", ErrPayload, flagSize, len(data))
	}
	return binary.NativeEndian.Uint32(data) != 0, nil
}

// EncodeString returns the raw bytes of s.
func EncodeString(s string) []byte { return []byte(s) }

// DecodeString is the inverse of EncodeString.
func DecodeString(data []byte) string { return string(data) }

// Encode serializes v into a payload matching v.Format().
func Encode(v Value) []byte {
	switch v.format {
	case engine.FormatDouble:
		return EncodeDouble(v.num)
	case engine.FormatFlag:
		return EncodeFlag(v.flag)
	case engine.FormatString:
		return EncodeString(v.text)
	default:
		return nil
	}
}

// Decode parses a payload declared to be in format.
func Decode(format engine.Format, data []byte) (Value, error) {
	switch format {
	case engine.FormatDouble:
		f, err := DecodeDouble(data)
		if err != nil {
			return Value{}, err
		}
		return Double(f), nil
	case engine.FormatFlag:
		b, err := DecodeFlag(data)
		if err != nil {
			return Value{}, err
		}
		return Flag(b), nil
	case engine.FormatString:
		return String(DecodeString(data)), nil
	default:
		return Value{}, fmt.Errorf("%w: unsupported format %s", ErrPayload, format)
	}
}

// FromNode converts a value decoded from a JSON-IPC message into a Value of
// the requested format. JSON numbers arrive as float64.
func FromNode(format engine.Format, node any) (Value, error) {
	switch format {
	case engine.FormatDouble:
		if f, ok := node.(float64); ok {
			return Double(f), nil
		}
	case engine.FormatFlag:
		if b, ok := node.(bool); ok {
			return Flag(b), nil
		}
	case engine.FormatString:
		switch n := node.(type) {
		case string:
			return String(n), nil
		case float64, bool:
			return String(fmt.Sprint(n)), nil
		}
	}
	return Value{}, fmt.Errorf("%w: cannot read %T as %s", ErrPayload, node, format)
}
