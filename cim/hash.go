package cim

import (
	"hash/fnv"
	"strconv"
	"strings"
)

// Deterministic hashing consistent with Equal: objects that compare equal
// hash equal. Name-keyed collections fold entry hashes with XOR so that
// insertion order (which equality ignores) does not influence the hash.

func hashString(parts ...string) uint64 {
	h := fnv.New64a()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return h.Sum64()
}

// Hash returns a hash consistent with Value.Equal.
func (v Value) Hash() uint64 {
	parts := []string{v.typ.String()}
	switch {
	case v.null:
		parts = append(parts, "null")
		if v.array {
			parts = append(parts, "[]")
		}
	case v.array:
		parts = append(parts, "[]")
		for _, e := range v.value.([]Value) {
			parts = append(parts, strconv.FormatUint(e.Hash(), 16))
		}
	default:
		switch val := v.value.(type) {
		case DateTime:
			if val.IsInterval() {
				parts = append(parts, "i", strconv.FormatInt(val.usec, 10))
			} else {
				// equal instants with different offsets must hash equal
				parts = append(parts, "t", strconv.FormatInt(val.t.UnixMicro(), 10))
			}
		case *InstanceName:
			parts = append(parts, strconv.FormatUint(val.Hash(), 16))
		case *Instance:
			parts = append(parts, strconv.FormatUint(val.Hash(), 16))
		case *Class:
			parts = append(parts, strconv.FormatUint(val.Hash(), 16))
		default:
			text, _ := v.WireText()
			parts = append(parts, text)
		}
	}
	return hashString(parts...)
}

func (d *dict[T]) hash(item func(T) uint64) uint64 {
	var acc uint64
	for key, it := range d.items {
		acc ^= hashString(key, strconv.FormatUint(item(it), 16))
	}
	return acc
}

// Hash returns a hash consistent with InstanceName.Equal.
func (n *InstanceName) Hash() uint64 {
	if n == nil {
		return 0
	}
	base := hashString(strings.ToLower(n.ClassName), n.Namespace, strings.ToLower(n.Host))
	return base ^ n.keybindings.hash(Value.Hash)
}

// Hash returns a hash consistent with Qualifier.Equal.
func (q *Qualifier) Hash() uint64 {
	flags := strconv.FormatBool(q.Propagated) + strconv.FormatBool(q.Overridable) +
		strconv.FormatBool(q.ToSubclass) + strconv.FormatBool(q.ToInstance) +
		strconv.FormatBool(q.Translatable)
	return hashString(strings.ToLower(q.Name), strconv.FormatUint(q.Value.Hash(), 16), flags)
}

// Hash returns a hash consistent with Property.Equal.
func (p *Property) Hash() uint64 {
	base := hashString(
		strings.ToLower(p.Name),
		strconv.FormatUint(p.Value.Hash(), 16),
		strings.ToLower(p.ReferenceClass),
		string(p.EmbeddedObject),
		strconv.Itoa(p.ArraySize),
		strings.ToLower(p.ClassOrigin),
		strconv.FormatBool(p.Propagated),
	)
	return base ^ p.qualifiers.hash((*Qualifier).Hash)
}

// Hash returns a hash consistent with Parameter.Equal.
func (p *Parameter) Hash() uint64 {
	base := hashString(
		strings.ToLower(p.Name),
		p.Type.String(),
		strconv.FormatBool(p.IsArray),
		strconv.Itoa(p.ArraySize),
		strings.ToLower(p.ReferenceClass),
	)
	return base ^ p.qualifiers.hash((*Qualifier).Hash)
}

// Hash returns a hash consistent with Method.Equal.
func (m *Method) Hash() uint64 {
	base := hashString(
		strings.ToLower(m.Name),
		m.ReturnType.String(),
		strings.ToLower(m.ClassOrigin),
		strconv.FormatBool(m.Propagated),
	)
	return base ^ m.parameters.hash((*Parameter).Hash) ^ m.qualifiers.hash((*Qualifier).Hash)
}

// Hash returns a hash consistent with Instance.Equal.
func (i *Instance) Hash() uint64 {
	if i == nil {
		return 0
	}
	base := hashString(strings.ToLower(i.ClassName))
	base ^= i.Path.Hash()
	return base ^ i.properties.hash((*Property).Hash) ^ i.qualifiers.hash((*Qualifier).Hash)
}

// Hash returns a hash consistent with Class.Equal.
func (c *Class) Hash() uint64 {
	if c == nil {
		return 0
	}
	base := hashString(strings.ToLower(c.ClassName), strings.ToLower(c.SuperClass))
	return base ^ c.properties.hash((*Property).Hash) ^
		c.methods.hash((*Method).Hash) ^ c.qualifiers.hash((*Qualifier).Hash)
}
