package cim

import (
	"errors"
	"fmt"
)

// Errors
var (
	ErrReferenceClass   = errors.New("reference class requires reference type")
	ErrEmbeddedNotString = errors.New("embedded object flag requires string type")
)

// EmbeddedObjectKind is the EmbeddedObject marker on string-typed
// properties and parameters that carry a serialized CIM object.
type EmbeddedObjectKind string

const (
	EmbeddedNone       EmbeddedObjectKind = ""
	EmbeddedAsInstance EmbeddedObjectKind = "instance"
	EmbeddedAsObject   EmbeddedObjectKind = "object"
)

// Property is a property of an instance or a property declaration of a
// class. The Value carries the CIM type tag and the array/null variants.
//
// Invariants: ReferenceClass may be set only for reference-typed
// properties; EmbeddedObject may be set only for string-typed properties.
type Property struct {
	Name           string
	Value          Value
	ReferenceClass string
	EmbeddedObject EmbeddedObjectKind
	ArraySize      int // 0 means unspecified
	ClassOrigin    string
	Propagated     bool

	qualifierSet
}

// NewProperty returns a property with the given name and value.
func NewProperty(name string, value Value) *Property {
	return &Property{Name: name, Value: value}
}

// Validate checks the type/flag invariants.
func (p *Property) Validate() error {
	if p.ReferenceClass != "" && p.Value.Type() != TypeReference {
		return fmt.Errorf("property %q: %w", p.Name, ErrReferenceClass)
	}
	if p.EmbeddedObject != EmbeddedNone && p.Value.Type() != TypeString {
		return fmt.Errorf("property %q: %w", p.Name, ErrEmbeddedNotString)
	}
	return nil
}

// Equal reports equality: name case-insensitive, value, flags and
// qualifiers.
func (p *Property) Equal(other *Property) bool {
	if p == nil || other == nil {
		return p == other
	}
	return equalFold(p.Name, other.Name) &&
		p.Value.Equal(other.Value) &&
		equalFold(p.ReferenceClass, other.ReferenceClass) &&
		p.EmbeddedObject == other.EmbeddedObject &&
		p.ArraySize == other.ArraySize &&
		equalFold(p.ClassOrigin, other.ClassOrigin) &&
		p.Propagated == other.Propagated &&
		p.qualifiersEqual(&other.qualifierSet)
}

// Clone returns a deep copy.
func (p *Property) Clone() *Property {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Value = p.Value.Clone()
	cp.qualifierSet = p.cloneQualifiers()
	return &cp
}
