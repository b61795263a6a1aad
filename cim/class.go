package cim

// ClassName is a CIM class path: class name optionally qualified by
// namespace and host.
type ClassName struct {
	Name      string
	Namespace string
	Host      string
}

// Equal reports equality: name and host case-insensitive, namespace
// case-sensitive.
func (c *ClassName) Equal(other *ClassName) bool {
	if c == nil || other == nil {
		return c == other
	}
	return equalFold(c.Name, other.Name) &&
		c.Namespace == other.Namespace &&
		equalFold(c.Host, other.Host)
}

// Clone returns a copy.
func (c *ClassName) Clone() *ClassName {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

// String renders the WBEM URI form of the class path.
func (c *ClassName) String() string {
	var b []byte
	if c.Host != "" {
		b = append(b, "//"...)
		b = append(b, c.Host...)
		b = append(b, '/')
	}
	if c.Namespace != "" {
		b = append(b, c.Namespace...)
		b = append(b, ':')
	}
	b = append(b, c.Name...)
	return string(b)
}

// Class is a CIM class declaration: class name, optional superclass,
// property and method declarations, qualifiers and an optional path.
type Class struct {
	ClassName  string
	SuperClass string
	Path       *ClassName

	properties dict[*Property]
	methods    dict[*Method]
	qualifierSet
}

// NewClass returns a class with no members.
func NewClass(className string) *Class {
	return &Class{ClassName: className}
}

// Properties returns the property declarations in declaration order.
func (c *Class) Properties() []*Property { return c.properties.values() }

// Property looks a property declaration up by name, case-insensitively.
func (c *Class) Property(name string) (*Property, bool) { return c.properties.get(name) }

// SetProperty inserts or replaces a property declaration.
func (c *Class) SetProperty(p *Property) error {
	if err := p.Validate(); err != nil {
		return err
	}
	c.properties.put(p.Name, p)
	return nil
}

// Methods returns the method declarations in declaration order.
func (c *Class) Methods() []*Method { return c.methods.values() }

// Method looks a method declaration up by name, case-insensitively.
func (c *Class) Method(name string) (*Method, bool) { return c.methods.get(name) }

// SetMethod inserts or replaces a method declaration.
func (c *Class) SetMethod(m *Method) { c.methods.put(m.Name, m) }

// Equal reports equality.
func (c *Class) Equal(other *Class) bool {
	if c == nil || other == nil {
		return c == other
	}
	return equalFold(c.ClassName, other.ClassName) &&
		equalFold(c.SuperClass, other.SuperClass) &&
		c.Path.Equal(other.Path) &&
		c.properties.equal(&other.properties, (*Property).Equal) &&
		c.methods.equal(&other.methods, (*Method).Equal) &&
		c.qualifiersEqual(&other.qualifierSet)
}

// Clone returns a deep copy.
func (c *Class) Clone() *Class {
	if c == nil {
		return nil
	}
	cp := &Class{
		ClassName:  c.ClassName,
		SuperClass: c.SuperClass,
		Path:       c.Path.Clone(),
	}
	cp.properties = c.properties.clone((*Property).Clone)
	cp.methods = c.methods.clone((*Method).Clone)
	cp.qualifierSet = c.cloneQualifiers()
	return cp
}
