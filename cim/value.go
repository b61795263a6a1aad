package cim

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/exp/constraints"
)

// Errors
var (
	ErrValueOutOfRange = errors.New("value out of range for CIM type")
	ErrTypeMismatch    = errors.New("value type mismatch")
	ErrNotChar16       = errors.New("not a single UTF-16 code unit")
)

// Value is a typed CIM value: the CIM type tag plus the concrete payload,
// with array and null variants. A null Value keeps its type tag.
//
// Scalar payloads by type:
//
//	boolean        bool
//	string         string, or *Instance / *Class when the enclosing
//	               property carries an EmbeddedObject flag
//	char16         rune (single UTF-16 code unit)
//	uint8..uint64  uint8 / uint16 / uint32 / uint64
//	sint8..sint64  int8 / int16 / int32 / int64
//	real32/real64  float32 / float64
//	datetime       DateTime
//	reference      *InstanceName
//
// An array Value holds []Value whose elements are scalars of the same type.
type Value struct {
	typ   Type
	array bool
	null  bool
	value any
}

// Type returns the CIM type tag of the value.
func (v Value) Type() Type { return v.typ }

// IsArray reports whether the value is an array.
func (v Value) IsArray() bool { return v.array }

// IsNull reports whether the value is null. Null values keep their type tag.
func (v Value) IsNull() bool { return v.null }

// Null returns a null scalar value of the given type.
func Null(t Type) Value { return Value{typ: t, null: true} }

// NullArray returns a null array value of the given type.
func NullArray(t Type) Value { return Value{typ: t, array: true, null: true} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{typ: TypeBoolean, value: b} }

// String returns a string value.
func String(s string) Value { return Value{typ: TypeString, value: s} }

// Char16 returns a char16 value. The rune must be a single UTF-16 code
// unit (<= 0xFFFF and not a surrogate).
func Char16(r rune) (Value, error) {
	if r < 0 || r > 0xFFFF || (r >= 0xD800 && r <= 0xDFFF) {
		return Value{}, fmt.Errorf("%w: U+%04X", ErrNotChar16, r)
	}
	return Value{typ: TypeChar16, value: r}, nil
}

// Uint8 returns a uint8 value.
func Uint8(v uint8) Value { return Value{typ: TypeUint8, value: v} }

// Uint16 returns a uint16 value.
func Uint16(v uint16) Value { return Value{typ: TypeUint16, value: v} }

// Uint32 returns a uint32 value.
func Uint32(v uint32) Value { return Value{typ: TypeUint32, value: v} }

// Uint64 returns a uint64 value.
func Uint64(v uint64) Value { return Value{typ: TypeUint64, value: v} }

// Sint8 returns a sint8 value.
func Sint8(v int8) Value { return Value{typ: TypeSint8, value: v} }

// Sint16 returns a sint16 value.
func Sint16(v int16) Value { return Value{typ: TypeSint16, value: v} }

// Sint32 returns a sint32 value.
func Sint32(v int32) Value { return Value{typ: TypeSint32, value: v} }

// Sint64 returns a sint64 value.
func Sint64(v int64) Value { return Value{typ: TypeSint64, value: v} }

// Real32 returns a real32 value.
func Real32(v float32) Value { return Value{typ: TypeReal32, value: v} }

// Real64 returns a real64 value.
func Real64(v float64) Value { return Value{typ: TypeReal64, value: v} }

// DateTimeValue returns a datetime value.
func DateTimeValue(dt DateTime) Value { return Value{typ: TypeDateTime, value: dt} }

// Reference returns a reference value holding an instance path.
func Reference(path *InstanceName) Value {
	if path == nil {
		return Null(TypeReference)
	}
	return Value{typ: TypeReference, value: path}
}

// EmbeddedInstance returns a string-typed value carrying an embedded
// instance. The enclosing property must set EmbeddedObject accordingly.
func EmbeddedInstance(inst *Instance) Value {
	if inst == nil {
		return Null(TypeString)
	}
	return Value{typ: TypeString, value: inst}
}

// EmbeddedClass returns a string-typed value carrying an embedded class.
func EmbeddedClass(cls *Class) Value {
	if cls == nil {
		return Null(TypeString)
	}
	return Value{typ: TypeString, value: cls}
}

// Array returns an array value of type t from scalar elements.
// Every element must be a non-array value of type t.
func Array(t Type, elems []Value) (Value, error) {
	for i, e := range elems {
		if e.array {
			return Value{}, fmt.Errorf("%w: nested array at index %d", ErrTypeMismatch, i)
		}
		if e.typ != t {
			return Value{}, fmt.Errorf("%w: element %d is %s, array is %s", ErrTypeMismatch, i, e.typ, t)
		}
	}
	cp := make([]Value, len(elems))
	copy(cp, elems)
	return Value{typ: t, array: true, value: cp}, nil
}

func inRange[T constraints.Integer](v int64) bool {
	return int64(T(v)) == v
}

// NewSigned returns an integer value of the given signed type, enforcing
// the exact range of the type.
func NewSigned(t Type, v int64) (Value, error) {
	switch t {
	case TypeSint8:
		if !inRange[int8](v) {
			return Value{}, fmt.Errorf("%w: %d as %s", ErrValueOutOfRange, v, t)
		}
		return Sint8(int8(v)), nil
	case TypeSint16:
		if !inRange[int16](v) {
			return Value{}, fmt.Errorf("%w: %d as %s", ErrValueOutOfRange, v, t)
		}
		return Sint16(int16(v)), nil
	case TypeSint32:
		if !inRange[int32](v) {
			return Value{}, fmt.Errorf("%w: %d as %s", ErrValueOutOfRange, v, t)
		}
		return Sint32(int32(v)), nil
	case TypeSint64:
		return Sint64(v), nil
	case TypeUint8, TypeUint16, TypeUint32, TypeUint64:
		if v < 0 {
			return Value{}, fmt.Errorf("%w: %d as %s", ErrValueOutOfRange, v, t)
		}
		return NewUnsigned(t, uint64(v))
	}
	return Value{}, fmt.Errorf("%w: %s is not an integer type", ErrTypeMismatch, t)
}

// NewUnsigned returns an integer value of the given unsigned type,
// enforcing the exact range of the type.
func NewUnsigned(t Type, v uint64) (Value, error) {
	switch t {
	case TypeUint8:
		if v > 0xFF {
			return Value{}, fmt.Errorf("%w: %d as %s", ErrValueOutOfRange, v, t)
		}
		return Uint8(uint8(v)), nil
	case TypeUint16:
		if v > 0xFFFF {
			return Value{}, fmt.Errorf("%w: %d as %s", ErrValueOutOfRange, v, t)
		}
		return Uint16(uint16(v)), nil
	case TypeUint32:
		if v > 0xFFFFFFFF {
			return Value{}, fmt.Errorf("%w: %d as %s", ErrValueOutOfRange, v, t)
		}
		return Uint32(uint32(v)), nil
	case TypeUint64:
		return Uint64(v), nil
	case TypeSint8, TypeSint16, TypeSint32, TypeSint64:
		if v > 0x7FFFFFFFFFFFFFFF {
			return Value{}, fmt.Errorf("%w: %d as %s", ErrValueOutOfRange, v, t)
		}
		return NewSigned(t, int64(v))
	}
	return Value{}, fmt.Errorf("%w: %s is not an integer type", ErrTypeMismatch, t)
}

// BoolValue returns the payload as bool, or false on type mismatch or null.
func (v Value) BoolValue() bool {
	b, _ := v.value.(bool)
	return b
}

// StringValue returns the payload as string, or "" on mismatch or null.
func (v Value) StringValue() string {
	s, _ := v.value.(string)
	return s
}

// Char16Value returns the payload as rune, or 0 on mismatch or null.
func (v Value) Char16Value() rune {
	r, _ := v.value.(rune)
	return r
}

// Uint64Value returns any unsigned integer payload widened to uint64.
func (v Value) Uint64Value() uint64 {
	switch val := v.value.(type) {
	case uint8:
		return uint64(val)
	case uint16:
		return uint64(val)
	case uint32:
		return uint64(val)
	case uint64:
		return val
	}
	return 0
}

// Int64Value returns any signed integer payload widened to int64.
func (v Value) Int64Value() int64 {
	switch val := v.value.(type) {
	case int8:
		return int64(val)
	case int16:
		return int64(val)
	case int32:
		return int64(val)
	case int64:
		return val
	}
	return 0
}

// Real64Value returns any real payload widened to float64.
func (v Value) Real64Value() float64 {
	switch val := v.value.(type) {
	case float32:
		return float64(val)
	case float64:
		return val
	}
	return 0
}

// DateTime returns the datetime payload, or the zero DateTime on mismatch.
func (v Value) DateTime() DateTime {
	dt, _ := v.value.(DateTime)
	return dt
}

// ReferenceValue returns the instance path payload, or nil on mismatch.
func (v Value) ReferenceValue() *InstanceName {
	p, _ := v.value.(*InstanceName)
	return p
}

// EmbeddedInstanceValue returns the embedded instance payload, or nil.
func (v Value) EmbeddedInstanceValue() *Instance {
	i, _ := v.value.(*Instance)
	return i
}

// EmbeddedClassValue returns the embedded class payload, or nil.
func (v Value) EmbeddedClassValue() *Class {
	c, _ := v.value.(*Class)
	return c
}

// ArrayValue returns a copy of the array elements, or nil for scalars.
func (v Value) ArrayValue() []Value {
	elems, ok := v.value.([]Value)
	if !ok {
		return nil
	}
	cp := make([]Value, len(elems))
	copy(cp, elems)
	return cp
}

// Equal reports deep equality of two values: type tag, array flag, null
// flag and payload must all match. References compare via
// InstanceName.Equal, datetimes via DateTime.Equal.
func (v Value) Equal(other Value) bool {
	if v.typ != other.typ || v.array != other.array || v.null != other.null {
		return false
	}
	if v.null {
		return true
	}
	if v.array {
		a, b := v.value.([]Value), other.value.([]Value)
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if !a[i].Equal(b[i]) {
				return false
			}
		}
		return true
	}
	switch a := v.value.(type) {
	case *InstanceName:
		b, ok := other.value.(*InstanceName)
		return ok && a.Equal(b)
	case DateTime:
		b, ok := other.value.(DateTime)
		return ok && a.Equal(b)
	case *Instance:
		b, ok := other.value.(*Instance)
		return ok && a.Equal(b)
	case *Class:
		b, ok := other.value.(*Class)
		return ok && a.Equal(b)
	default:
		return v.value == other.value
	}
}

// Clone returns a deep copy of the value.
func (v Value) Clone() Value {
	if v.null {
		return v
	}
	if v.array {
		elems := v.value.([]Value)
		cp := make([]Value, len(elems))
		for i := range elems {
			cp[i] = elems[i].Clone()
		}
		return Value{typ: v.typ, array: true, value: cp}
	}
	switch val := v.value.(type) {
	case *InstanceName:
		return Value{typ: v.typ, value: val.Clone()}
	case *Instance:
		return Value{typ: v.typ, value: val.Clone()}
	case *Class:
		return Value{typ: v.typ, value: val.Clone()}
	}
	return v
}

// WireText returns the text content of a scalar value for the wire:
// TRUE/FALSE for booleans, decimal for integers, shortest round-trip form
// with '.' separator for reals, the 25-character form for datetimes.
// Array, null, reference and embedded values have no single text form and
// return false.
func (v Value) WireText() (string, bool) {
	if v.null || v.array {
		return "", false
	}
	// rune aliases int32, so char16 dispatches on the type tag
	if v.typ == TypeChar16 {
		r, _ := v.value.(rune)
		return string(r), true
	}
	switch val := v.value.(type) {
	case bool:
		if val {
			return "TRUE", true
		}
		return "FALSE", true
	case string:
		return val, true
	case uint8:
		return strconv.FormatUint(uint64(val), 10), true
	case uint16:
		return strconv.FormatUint(uint64(val), 10), true
	case uint32:
		return strconv.FormatUint(uint64(val), 10), true
	case uint64:
		return strconv.FormatUint(val, 10), true
	case int8:
		return strconv.FormatInt(int64(val), 10), true
	case int16:
		return strconv.FormatInt(int64(val), 10), true
	case int32:
		return strconv.FormatInt(int64(val), 10), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case float32:
		return formatReal(float64(val), 32), true
	case float64:
		return formatReal(val, 64), true
	case DateTime:
		return val.String(), true
	}
	return "", false
}

// formatReal renders the canonical shortest round-trip representation with
// '.' as the decimal separator.
func formatReal(f float64, bits int) string {
	s := strconv.FormatFloat(f, 'g', -1, bits)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// String renders the value as "type(payload)", arrays as
// "type[](e1,e2,...)", in the manner of diagnostics output.
func (v Value) String() string {
	var b strings.Builder
	b.WriteString(v.typ.String())
	if v.array {
		b.WriteString("[]")
	}
	b.WriteByte('(')
	switch {
	case v.null:
		b.WriteString("null")
	case v.array:
		elems := v.value.([]Value)
		for i, e := range elems {
			if i > 0 {
				b.WriteByte(',')
			}
			text, _ := e.WireText()
			b.WriteString(text)
		}
	default:
		switch val := v.value.(type) {
		case *InstanceName:
			b.WriteString(val.String())
		case *Instance:
			b.WriteString("instance of " + val.ClassName)
		case *Class:
			b.WriteString("class " + val.ClassName)
		default:
			text, _ := v.WireText()
			b.WriteString(text)
		}
	}
	b.WriteByte(')')
	return b.String()
}
