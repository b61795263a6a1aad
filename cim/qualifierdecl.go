package cim

import "strings"

// Scope is the set of element kinds a qualifier declaration applies to,
// as a bit set.
type Scope uint16

const (
	ScopeClass Scope = 1 << iota
	ScopeAssociation
	ScopeIndication
	ScopeProperty
	ScopeReference
	ScopeMethod
	ScopeParameter

	// ScopeAny covers every element kind.
	ScopeAny = ScopeClass | ScopeAssociation | ScopeIndication |
		ScopeProperty | ScopeReference | ScopeMethod | ScopeParameter
)

var scopeNames = []struct {
	bit  Scope
	name string
}{
	{ScopeClass, "CLASS"},
	{ScopeAssociation, "ASSOCIATION"},
	{ScopeIndication, "INDICATION"},
	{ScopeProperty, "PROPERTY"},
	{ScopeReference, "REFERENCE"},
	{ScopeMethod, "METHOD"},
	{ScopeParameter, "PARAMETER"},
}

// String renders the scope set, e.g. "CLASS,PROPERTY". The full set
// renders as "ANY".
func (s Scope) String() string {
	if s == ScopeAny {
		return "ANY"
	}
	var parts []string
	for _, sn := range scopeNames {
		if s&sn.bit != 0 {
			parts = append(parts, sn.name)
		}
	}
	return strings.Join(parts, ",")
}

// Has reports whether every bit of sub is set.
func (s Scope) Has(sub Scope) bool { return s&sub == sub }

// QualifierDeclaration declares a qualifier type: its name, CIM type,
// default value, array-ness, the scopes it may be applied in and its
// default flavors.
type QualifierDeclaration struct {
	Name      string
	Type      Type
	Value     Value
	IsArray   bool
	ArraySize int
	Scopes    Scope

	Overridable  bool
	ToSubclass   bool
	ToInstance   bool
	Translatable bool
}

// NewQualifierDeclaration returns a declaration with default flavors.
func NewQualifierDeclaration(name string, typ Type, value Value, scopes Scope) *QualifierDeclaration {
	return &QualifierDeclaration{
		Name:        name,
		Type:        typ,
		Value:       value,
		IsArray:     value.IsArray(),
		Scopes:      scopes,
		Overridable: true,
		ToSubclass:  true,
	}
}

// Equal reports equality: name case-insensitive, everything else exact.
func (d *QualifierDeclaration) Equal(other *QualifierDeclaration) bool {
	if d == nil || other == nil {
		return d == other
	}
	return equalFold(d.Name, other.Name) &&
		d.Type == other.Type &&
		d.Value.Equal(other.Value) &&
		d.IsArray == other.IsArray &&
		d.ArraySize == other.ArraySize &&
		d.Scopes == other.Scopes &&
		d.Overridable == other.Overridable &&
		d.ToSubclass == other.ToSubclass &&
		d.ToInstance == other.ToInstance &&
		d.Translatable == other.Translatable
}

// Clone returns a deep copy.
func (d *QualifierDeclaration) Clone() *QualifierDeclaration {
	if d == nil {
		return nil
	}
	cp := *d
	cp.Value = d.Value.Clone()
	return &cp
}
