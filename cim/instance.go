package cim

// Instance is a CIM instance: class name, ordered properties, qualifiers
// and an optional path. The stored name of each property equals its
// collection key (case-insensitively); SetProperty maintains this.
type Instance struct {
	ClassName string
	Path      *InstanceName

	properties dict[*Property]
	qualifierSet
}

// NewInstance returns an instance with no properties.
func NewInstance(className string) *Instance {
	return &Instance{ClassName: className}
}

// Properties returns the properties in insertion order.
func (i *Instance) Properties() []*Property { return i.properties.values() }

// Property looks a property up by name, case-insensitively.
func (i *Instance) Property(name string) (*Property, bool) { return i.properties.get(name) }

// SetProperty inserts or replaces a property, preserving position on
// replacement. The property is validated against the type invariants.
func (i *Instance) SetProperty(p *Property) error {
	if err := p.Validate(); err != nil {
		return err
	}
	i.properties.put(p.Name, p)
	return nil
}

// SetPropertyValue is a shorthand that inserts or replaces a plain
// property with the given value.
func (i *Instance) SetPropertyValue(name string, value Value) error {
	if existing, ok := i.properties.get(name); ok {
		cp := existing.Clone()
		cp.Name = name
		cp.Value = value
		return i.SetProperty(cp)
	}
	return i.SetProperty(NewProperty(name, value))
}

// DeleteProperty removes a property by name. It reports whether the
// property existed.
func (i *Instance) DeleteProperty(name string) bool { return i.properties.del(name) }

// PropertyNames returns the property names in insertion order.
func (i *Instance) PropertyNames() []string { return i.properties.keys() }

// Equal reports equality: class name case-insensitive, properties and
// qualifiers as case-insensitive mappings, path per path equality.
func (i *Instance) Equal(other *Instance) bool {
	if i == nil || other == nil {
		return i == other
	}
	return equalFold(i.ClassName, other.ClassName) &&
		i.Path.Equal(other.Path) &&
		i.properties.equal(&other.properties, (*Property).Equal) &&
		i.qualifiersEqual(&other.qualifierSet)
}

// Clone returns a deep copy.
func (i *Instance) Clone() *Instance {
	if i == nil {
		return nil
	}
	cp := &Instance{
		ClassName: i.ClassName,
		Path:      i.Path.Clone(),
	}
	cp.properties = i.properties.clone((*Property).Clone)
	cp.qualifierSet = i.cloneQualifiers()
	return cp
}
