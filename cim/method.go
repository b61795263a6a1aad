package cim

// Parameter is a parameter declaration of a method.
type Parameter struct {
	Name           string
	Type           Type
	IsArray        bool
	ArraySize      int
	ReferenceClass string

	qualifierSet
}

// NewParameter returns a parameter of the given type.
func NewParameter(name string, typ Type) *Parameter {
	return &Parameter{Name: name, Type: typ}
}

// Equal reports equality: name case-insensitive, everything else exact,
// qualifiers as a case-insensitive mapping.
func (p *Parameter) Equal(other *Parameter) bool {
	if p == nil || other == nil {
		return p == other
	}
	return equalFold(p.Name, other.Name) &&
		p.Type == other.Type &&
		p.IsArray == other.IsArray &&
		p.ArraySize == other.ArraySize &&
		equalFold(p.ReferenceClass, other.ReferenceClass) &&
		p.qualifiersEqual(&other.qualifierSet)
}

// Clone returns a deep copy.
func (p *Parameter) Clone() *Parameter {
	if p == nil {
		return nil
	}
	cp := *p
	cp.qualifierSet = p.cloneQualifiers()
	return &cp
}

// Method is a method declaration of a class.
type Method struct {
	Name        string
	ReturnType  Type
	ClassOrigin string
	Propagated  bool

	parameters dict[*Parameter]
	qualifierSet
}

// NewMethod returns a method with the given return type.
func NewMethod(name string, returnType Type) *Method {
	return &Method{Name: name, ReturnType: returnType}
}

// Parameters returns the parameters in declaration order.
func (m *Method) Parameters() []*Parameter { return m.parameters.values() }

// Parameter looks a parameter up by name, case-insensitively.
func (m *Method) Parameter(name string) (*Parameter, bool) { return m.parameters.get(name) }

// SetParameter inserts or replaces a parameter, preserving position on
// replacement.
func (m *Method) SetParameter(p *Parameter) { m.parameters.put(p.Name, p) }

// Equal reports equality.
func (m *Method) Equal(other *Method) bool {
	if m == nil || other == nil {
		return m == other
	}
	return equalFold(m.Name, other.Name) &&
		m.ReturnType == other.ReturnType &&
		equalFold(m.ClassOrigin, other.ClassOrigin) &&
		m.Propagated == other.Propagated &&
		m.parameters.equal(&other.parameters, (*Parameter).Equal) &&
		m.qualifiersEqual(&other.qualifierSet)
}

// Clone returns a deep copy.
func (m *Method) Clone() *Method {
	if m == nil {
		return nil
	}
	cp := *m
	cp.parameters = m.parameters.clone((*Parameter).Clone)
	cp.qualifierSet = m.cloneQualifiers()
	return &cp
}
