package cim

import (
	"strconv"
	"strings"
)

// Type identifies a CIM intrinsic data type as defined in DSP0004.
// The zero value is TypeInvalid so that an unset type tag is detectable.
type Type int

// CIM intrinsic data types. The String form of each constant is the exact
// TYPE attribute value used on the wire (PROPERTY, PARAMETER, KEYVALUE).
const (
	TypeInvalid Type = iota

	TypeBoolean // boolean
	TypeString  // string
	TypeChar16  // char16, single UTF-16 code unit

	TypeUint8  // uint8
	TypeUint16 // uint16
	TypeUint32 // uint32
	TypeUint64 // uint64
	TypeSint8  // sint8
	TypeSint16 // sint16
	TypeSint32 // sint32
	TypeSint64 // sint64

	TypeReal32 // real32, IEEE 754 single precision
	TypeReal64 // real64, IEEE 754 double precision

	TypeDateTime  // datetime, 25-character timestamp or interval
	TypeReference // reference, value is an instance path
)

var typeNames = map[Type]string{
	TypeBoolean:   "boolean",
	TypeString:    "string",
	TypeChar16:    "char16",
	TypeUint8:     "uint8",
	TypeUint16:    "uint16",
	TypeUint32:    "uint32",
	TypeUint64:    "uint64",
	TypeSint8:     "sint8",
	TypeSint16:    "sint16",
	TypeSint32:    "sint32",
	TypeSint64:    "sint64",
	TypeReal32:    "real32",
	TypeReal64:    "real64",
	TypeDateTime:  "datetime",
	TypeReference: "reference",
}

// String returns the wire spelling of the type, e.g. "uint32".
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	var b strings.Builder
	b.WriteString("invalid(")
	b.WriteString(strconv.Itoa(int(t)))
	b.WriteByte(')')
	return b.String()
}

// ParseType maps a wire TYPE attribute value to a Type.
// Matching is case-insensitive; unknown names return TypeInvalid and false.
func ParseType(s string) (Type, bool) {
	lower := strings.ToLower(s)
	for t, name := range typeNames {
		if name == lower {
			return t, true
		}
	}
	return TypeInvalid, false
}

// IsInteger reports whether t is one of the eight fixed-width integer types.
func (t Type) IsInteger() bool {
	switch t {
	case TypeUint8, TypeUint16, TypeUint32, TypeUint64,
		TypeSint8, TypeSint16, TypeSint32, TypeSint64:
		return true
	}
	return false
}

// IsReal reports whether t is real32 or real64.
func (t Type) IsReal() bool {
	return t == TypeReal32 || t == TypeReal64
}
