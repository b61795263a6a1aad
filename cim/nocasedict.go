package cim

import (
	"strings"

	"golang.org/x/exp/slices"
)

// dict is the ordered, case-insensitively keyed collection backing every
// name-keyed child collection of the object model (properties, methods,
// parameters, qualifiers, keybindings). Insertion order is preserved;
// lookup, replacement and deletion compare names case-insensitively.
// Names keep the case they were first inserted with.
type dict[T any] struct {
	order []string     // lowercased keys in insertion order
	items map[string]T // lowercased key -> item
	names map[string]string
}

func (d *dict[T]) init() {
	if d.items == nil {
		d.items = make(map[string]T)
		d.names = make(map[string]string)
	}
}

// put inserts or replaces. Replacement keeps the original position but
// adopts the new spelling of the name.
func (d *dict[T]) put(name string, item T) {
	d.init()
	key := strings.ToLower(name)
	if _, ok := d.items[key]; !ok {
		d.order = append(d.order, key)
	}
	d.items[key] = item
	d.names[key] = name
}

func (d *dict[T]) get(name string) (T, bool) {
	var zero T
	if d.items == nil {
		return zero, false
	}
	item, ok := d.items[strings.ToLower(name)]
	if !ok {
		return zero, false
	}
	return item, true
}

func (d *dict[T]) del(name string) bool {
	if d.items == nil {
		return false
	}
	key := strings.ToLower(name)
	if _, ok := d.items[key]; !ok {
		return false
	}
	delete(d.items, key)
	delete(d.names, key)
	if i := slices.Index(d.order, key); i >= 0 {
		d.order = append(d.order[:i], d.order[i+1:]...)
	}
	return true
}

func (d *dict[T]) len() int { return len(d.order) }

// keys returns the names in insertion order, in their original case.
func (d *dict[T]) keys() []string {
	out := make([]string, 0, len(d.order))
	for _, key := range d.order {
		out = append(out, d.names[key])
	}
	return out
}

// values returns the items in insertion order.
func (d *dict[T]) values() []T {
	out := make([]T, 0, len(d.order))
	for _, key := range d.order {
		out = append(out, d.items[key])
	}
	return out
}

// sortedKeys returns the lowercased keys sorted ascending, for canonical
// renderings (WBEM URI keybinding order).
func (d *dict[T]) sortedKeys() []string {
	out := slices.Clone(d.order)
	slices.Sort(out)
	return out
}

// equal compares as a case-insensitive mapping: same key set, items equal
// under eq. Insertion order does not participate in equality.
func (d *dict[T]) equal(other *dict[T], eq func(a, b T) bool) bool {
	if d.len() != other.len() {
		return false
	}
	for key, item := range d.items {
		o, ok := other.items[key]
		if !ok || !eq(item, o) {
			return false
		}
	}
	return true
}

// clone deep-copies using cp for the items.
func (d *dict[T]) clone(cp func(T) T) dict[T] {
	out := dict[T]{}
	for _, key := range d.order {
		out.put(d.names[key], cp(d.items[key]))
	}
	return out
}

// equalFold is the name comparison used throughout the object model.
func equalFold(a, b string) bool { return strings.EqualFold(a, b) }
