package cim

// Qualifier is a qualifier value attached to a class, property, method or
// parameter. Flavor flags default to the DTD defaults (OVERRIDABLE and
// TOSUBCLASS true, TOINSTANCE and TRANSLATABLE false); the encoder only
// emits attributes that differ from the default.
type Qualifier struct {
	Name       string
	Value      Value
	Propagated bool

	Overridable  bool
	ToSubclass   bool
	ToInstance   bool
	Translatable bool
}

// NewQualifier returns a qualifier with default flavors.
func NewQualifier(name string, value Value) *Qualifier {
	return &Qualifier{
		Name:        name,
		Value:       value,
		Overridable: true,
		ToSubclass:  true,
	}
}

// Equal reports equality: name case-insensitive, value, propagated and
// flavor flags exact.
func (q *Qualifier) Equal(other *Qualifier) bool {
	if q == nil || other == nil {
		return q == other
	}
	return equalFold(q.Name, other.Name) &&
		q.Value.Equal(other.Value) &&
		q.Propagated == other.Propagated &&
		q.Overridable == other.Overridable &&
		q.ToSubclass == other.ToSubclass &&
		q.ToInstance == other.ToInstance &&
		q.Translatable == other.Translatable
}

// Clone returns a deep copy.
func (q *Qualifier) Clone() *Qualifier {
	if q == nil {
		return nil
	}
	cp := *q
	cp.Value = q.Value.Clone()
	return &cp
}

// qualifierSet is the shared qualifier collection behavior embedded by the
// entities that carry qualifiers.
type qualifierSet struct {
	qualifiers dict[*Qualifier]
}

// Qualifiers returns the qualifiers in insertion order.
func (s *qualifierSet) Qualifiers() []*Qualifier { return s.qualifiers.values() }

// Qualifier looks a qualifier up by name, case-insensitively.
func (s *qualifierSet) Qualifier(name string) (*Qualifier, bool) { return s.qualifiers.get(name) }

// SetQualifier inserts or replaces a qualifier, preserving position on
// replacement.
func (s *qualifierSet) SetQualifier(q *Qualifier) { s.qualifiers.put(q.Name, q) }

// DeleteQualifier removes a qualifier by name. It reports whether the
// qualifier existed.
func (s *qualifierSet) DeleteQualifier(name string) bool { return s.qualifiers.del(name) }

func (s *qualifierSet) qualifiersEqual(other *qualifierSet) bool {
	return s.qualifiers.equal(&other.qualifiers, (*Qualifier).Equal)
}

func (s *qualifierSet) cloneQualifiers() qualifierSet {
	return qualifierSet{qualifiers: s.qualifiers.clone((*Qualifier).Clone)}
}
