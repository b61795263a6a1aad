package cim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegerRange(t *testing.T) {
	tests := []struct {
		name      string
		typ       Type
		signed    int64
		unsigned  uint64
		useSigned bool
		wantError bool
	}{
		{name: "uint8 max", typ: TypeUint8, unsigned: 255},
		{name: "uint8 overflow", typ: TypeUint8, unsigned: 256, wantError: true},
		{name: "uint16 max", typ: TypeUint16, unsigned: 65535},
		{name: "uint16 overflow", typ: TypeUint16, unsigned: 65536, wantError: true},
		{name: "uint32 overflow", typ: TypeUint32, unsigned: 1 << 32, wantError: true},
		{name: "uint64 max", typ: TypeUint64, unsigned: ^uint64(0)},
		{name: "sint8 min", typ: TypeSint8, signed: -128, useSigned: true},
		{name: "sint8 underflow", typ: TypeSint8, signed: -129, useSigned: true, wantError: true},
		{name: "sint16 max", typ: TypeSint16, signed: 32767, useSigned: true},
		{name: "sint32 overflow", typ: TypeSint32, signed: 1 << 31, useSigned: true, wantError: true},
		{name: "negative into unsigned", typ: TypeUint32, signed: -1, useSigned: true, wantError: true},
		{name: "signed ctor for unsigned type", typ: TypeUint8, signed: 200, useSigned: true},
		{name: "unsigned ctor for signed type", typ: TypeSint32, unsigned: 100},
		{name: "not an integer type", typ: TypeString, unsigned: 1, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v Value
			var err error
			if tt.useSigned {
				v, err = NewSigned(tt.typ, tt.signed)
			} else {
				v, err = NewUnsigned(tt.typ, tt.unsigned)
			}
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.typ, v.Type())
		})
	}
}

func TestValueWireText(t *testing.T) {
	dt, err := ParseDateTime("20051015123456.123456+120")
	require.NoError(t, err)

	tests := []struct {
		name string
		v    Value
		want string
	}{
		{name: "true", v: Bool(true), want: "TRUE"},
		{name: "false", v: Bool(false), want: "FALSE"},
		{name: "string", v: String("Fritz"), want: "Fritz"},
		{name: "uint32", v: Uint32(42), want: "42"},
		{name: "sint64 negative", v: Sint64(-7), want: "-7"},
		{name: "real64 plain", v: Real64(1.5), want: "1.5"},
		{name: "real64 integral gets a point", v: Real64(4), want: "4.0"},
		{name: "real32", v: Real32(0.25), want: "0.25"},
		{name: "datetime", v: DateTimeValue(dt), want: "20051015123456.123456+120"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.v.WireText()
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("null has no text", func(t *testing.T) {
		_, ok := Null(TypeString).WireText()
		assert.False(t, ok)
	})
	t.Run("array has no single text", func(t *testing.T) {
		arr, err := Array(TypeUint8, []Value{Uint8(1)})
		require.NoError(t, err)
		_, ok := arr.WireText()
		assert.False(t, ok)
	})
}

func TestArrayTypeChecks(t *testing.T) {
	_, err := Array(TypeUint8, []Value{Uint8(1), Uint16(2)})
	assert.ErrorIs(t, err, ErrTypeMismatch)

	inner, err := Array(TypeUint8, []Value{Uint8(1)})
	require.NoError(t, err)
	_, err = Array(TypeUint8, []Value{inner})
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestChar16(t *testing.T) {
	v, err := Char16('A')
	require.NoError(t, err)
	assert.Equal(t, 'A', v.Char16Value())

	_, err = Char16(0x10000)
	assert.ErrorIs(t, err, ErrNotChar16)
	_, err = Char16(0xD800)
	assert.ErrorIs(t, err, ErrNotChar16)
}

func TestValueEqualAndHash(t *testing.T) {
	refA := NewInstanceName("CIM_Foo")
	require.NoError(t, refA.SetKeybinding("Name", String("a")))
	refB := NewInstanceName("cim_foo")
	require.NoError(t, refB.SetKeybinding("NAME", String("a")))

	arr1, err := Array(TypeUint32, []Value{Uint32(1), Uint32(2)})
	require.NoError(t, err)
	arr2, err := Array(TypeUint32, []Value{Uint32(1), Uint32(2)})
	require.NoError(t, err)
	arr3, err := Array(TypeUint32, []Value{Uint32(2), Uint32(1)})
	require.NoError(t, err)

	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{name: "same bool", a: Bool(true), b: Bool(true), want: true},
		{name: "different type same text", a: Uint8(1), b: Uint16(1), want: false},
		{name: "null keeps type", a: Null(TypeUint8), b: Null(TypeUint8), want: true},
		{name: "null different type", a: Null(TypeUint8), b: Null(TypeUint16), want: false},
		{name: "null vs value", a: Null(TypeUint8), b: Uint8(0), want: false},
		{name: "arrays equal", a: arr1, b: arr2, want: true},
		{name: "array order matters", a: arr1, b: arr3, want: false},
		{name: "references fold names", a: Reference(refA), b: Reference(refB), want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
			if tt.want {
				assert.Equal(t, tt.a.Hash(), tt.b.Hash())
			}
		})
	}
}

func TestValueString(t *testing.T) {
	arr, err := Array(TypeUint32, []Value{Uint32(1), Uint32(2)})
	require.NoError(t, err)
	assert.Equal(t, "uint32[](1,2)", arr.String())
	assert.Equal(t, "boolean(TRUE)", Bool(true).String())
	assert.Equal(t, "string(null)", Null(TypeString).String())
}
