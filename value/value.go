package value

import (
	"math"

	"github.com/wippyai/arrayio/errors"
)

// Kind identifies the element type of a Value.
type Kind uint8

const (
	KindNum Kind = iota
	KindByte
	KindChar
	KindBox
)

func (k Kind) String() string {
	switch k {
	case KindNum:
		return "number"
	case KindByte:
		return "byte"
	case KindChar:
		return "character"
	case KindBox:
		return "box"
	default:
		return "unknown"
	}
}

// Byte is a byte-sized element that is either a concrete value or unset.
// The zero Byte is unset.
type Byte struct {
	v   uint8
	set bool
}

// B returns a concrete byte.
func B(v uint8) Byte {
	return Byte{v: v, set: true}
}

// Unset is the byte fill marker.
var Unset = Byte{}

// IsSet reports whether b holds a concrete value.
func (b Byte) IsSet() bool {
	return b.set
}

// Or returns the concrete value of b, or def when b is unset.
func (b Byte) Or(def uint8) uint8 {
	if b.set {
		return b.v
	}
	return def
}

// Value is an immutable multi-dimensional array. Exactly one of the data
// slices is populated, selected by kind, and its length equals the product
// of shape.
type Value struct {
	shape []int
	nums  []float64
	bytes []Byte
	chars []rune
	boxes []Value
	kind  Kind
}

func product(shape []int) (int, bool) {
	n := 1
	for _, d := range shape {
		if d < 0 {
			return 0, false
		}
		n *= d
	}
	return n, true
}

func checkShape(shape []int, length int) ([]int, error) {
	n, ok := product(shape)
	if !ok || n != length {
		return nil, errors.ShapeMismatch(shape, length)
	}
	return append([]int(nil), shape...), nil
}

// NewNum builds a numeric array. The data slice is retained.
func NewNum(shape []int, data []float64) (Value, error) {
	s, err := checkShape(shape, len(data))
	if err != nil {
		return Value{}, err
	}
	return Value{kind: KindNum, shape: s, nums: data}, nil
}

// NewBytes builds a byte array. The data slice is retained.
func NewBytes(shape []int, data []Byte) (Value, error) {
	s, err := checkShape(shape, len(data))
	if err != nil {
		return Value{}, err
	}
	return Value{kind: KindByte, shape: s, bytes: data}, nil
}

// NewChars builds a character array. The data slice is retained.
func NewChars(shape []int, data []rune) (Value, error) {
	s, err := checkShape(shape, len(data))
	if err != nil {
		return Value{}, err
	}
	return Value{kind: KindChar, shape: s, chars: data}, nil
}

// NewBox builds an array of boxed values.
func NewBox(shape []int, data []Value) (Value, error) {
	s, err := checkShape(shape, len(data))
	if err != nil {
		return Value{}, err
	}
	return Value{kind: KindBox, shape: s, boxes: data}, nil
}

// Number returns a numeric scalar.
func Number(f float64) Value {
	return Value{kind: KindNum, shape: []int{}, nums: []float64{f}}
}

// Bool returns a byte scalar holding 0 or 1.
func Bool(b bool) Value {
	var v uint8
	if b {
		v = 1
	}
	return Value{kind: KindByte, shape: []int{}, bytes: []Byte{B(v)}}
}

// Str returns a rank 1 character array.
func Str(s string) Value {
	r := []rune(s)
	return Value{kind: KindChar, shape: []int{len(r)}, chars: r}
}

// Strings returns a rank 1 box array of strings.
func Strings(ss []string) Value {
	boxes := make([]Value, len(ss))
	for i, s := range ss {
		boxes[i] = Str(s)
	}
	return Value{kind: KindBox, shape: []int{len(ss)}, boxes: boxes}
}

// FromBytes returns a rank 1 byte array of concrete bytes.
func FromBytes(data []byte) Value {
	bs := make([]Byte, len(data))
	for i, b := range data {
		bs[i] = B(b)
	}
	return Value{kind: KindByte, shape: []int{len(bs)}, bytes: bs}
}

// Vector returns a rank 1 numeric array.
func Vector(data ...float64) Value {
	return Value{kind: KindNum, shape: []int{len(data)}, nums: data}
}

func (v Value) Kind() Kind {
	return v.kind
}

// Shape returns a copy of the shape.
func (v Value) Shape() []int {
	return append([]int(nil), v.shape...)
}

func (v Value) Rank() int {
	return len(v.shape)
}

// Len returns the number of elements in the flat buffer.
func (v Value) Len() int {
	switch v.kind {
	case KindNum:
		return len(v.nums)
	case KindByte:
		return len(v.bytes)
	case KindChar:
		return len(v.chars)
	default:
		return len(v.boxes)
	}
}

// RowLen is the number of elements in one row along the first axis.
func (v Value) RowLen() int {
	if len(v.shape) == 0 {
		return 1
	}
	n, _ := product(v.shape[1:])
	return n
}

// Nums returns the numeric buffer. It is nil for other kinds.
func (v Value) Nums() []float64 {
	return v.nums
}

// Bytes returns the byte buffer. It is nil for other kinds.
func (v Value) Bytes() []Byte {
	return v.bytes
}

// Chars returns the character buffer. It is nil for other kinds.
func (v Value) Chars() []rune {
	return v.chars
}

// Boxes returns the boxed elements. It is nil for other kinds.
func (v Value) Boxes() []Value {
	return v.boxes
}

// Reshape returns v with a new shape holding the same buffer.
func (v Value) Reshape(shape []int) (Value, error) {
	s, err := checkShape(shape, v.Len())
	if err != nil {
		return Value{}, err
	}
	v.shape = s
	return v, nil
}

// AsString interprets v as text. Character scalars and rank 1 character
// arrays qualify; a boxed scalar is unwrapped once.
func (v Value) AsString() (string, bool) {
	switch v.kind {
	case KindChar:
		if v.Rank() > 1 {
			return "", false
		}
		return string(v.chars), true
	case KindBox:
		if v.Rank() == 0 {
			return v.boxes[0].AsString()
		}
	}
	return "", false
}

// AsBytes interprets v as a flat byte sequence. Byte arrays qualify with
// unset bytes read as 0; numeric arrays qualify when every element is an
// integer in 0..255.
func (v Value) AsBytes() ([]byte, bool) {
	switch v.kind {
	case KindByte:
		out := make([]byte, len(v.bytes))
		for i, b := range v.bytes {
			out[i] = b.Or(0)
		}
		return out, true
	case KindNum:
		out := make([]byte, len(v.nums))
		for i, f := range v.nums {
			if f != math.Trunc(f) || f < 0 || f > 255 {
				return nil, false
			}
			out[i] = byte(f)
		}
		return out, true
	}
	return nil, false
}

// AsNumber interprets v as a numeric scalar.
func (v Value) AsNumber() (float64, bool) {
	if v.Rank() != 0 {
		return 0, false
	}
	switch v.kind {
	case KindNum:
		return v.nums[0], true
	case KindByte:
		return float64(v.bytes[0].Or(0)), true
	}
	return 0, false
}
