package cim

import (
	"errors"
	"fmt"
)

// Errors
var (
	ErrKeybindingArray    = errors.New("keybinding value must not be an array")
	ErrKeybindingEmbedded = errors.New("keybinding value must be a CIM primitive value")
)

// InstanceName is a CIM instance path: class name plus ordered
// keybindings, optionally qualified by namespace and host. It appears
// standalone as an operation target and embedded as a reference value.
//
// Equality: class name and host case-insensitive, namespace
// case-sensitive, keybindings as a case-insensitive name-keyed mapping of
// typed values.
type InstanceName struct {
	ClassName string
	Namespace string
	Host      string

	keybindings dict[Value]
}

// NewInstanceName returns an instance path with no keybindings.
func NewInstanceName(className string) *InstanceName {
	return &InstanceName{ClassName: className}
}

// Keybinding looks a keybinding up by name, case-insensitively.
func (n *InstanceName) Keybinding(name string) (Value, bool) {
	return n.keybindings.get(name)
}

// SetKeybinding inserts or replaces a keybinding, preserving position on
// replacement. Values must be scalar primitives (including references).
func (n *InstanceName) SetKeybinding(name string, value Value) error {
	if value.IsArray() {
		return fmt.Errorf("keybinding %q: %w", name, ErrKeybindingArray)
	}
	if value.EmbeddedInstanceValue() != nil || value.EmbeddedClassValue() != nil {
		return fmt.Errorf("keybinding %q: %w", name, ErrKeybindingEmbedded)
	}
	n.keybindings.put(name, value)
	return nil
}

// KeybindingNames returns the keybinding names in insertion order.
func (n *InstanceName) KeybindingNames() []string { return n.keybindings.keys() }

// KeybindingCount returns the number of keybindings.
func (n *InstanceName) KeybindingCount() int { return n.keybindings.len() }

// Equal reports equality per the path equality rules.
func (n *InstanceName) Equal(other *InstanceName) bool {
	if n == nil || other == nil {
		return n == other
	}
	return equalFold(n.ClassName, other.ClassName) &&
		n.Namespace == other.Namespace &&
		equalFold(n.Host, other.Host) &&
		n.keybindings.equal(&other.keybindings, Value.Equal)
}

// Clone returns a deep copy.
func (n *InstanceName) Clone() *InstanceName {
	if n == nil {
		return nil
	}
	cp := &InstanceName{
		ClassName: n.ClassName,
		Namespace: n.Namespace,
		Host:      n.Host,
	}
	cp.keybindings = n.keybindings.clone(Value.Clone)
	return cp
}

// String renders the canonical WBEM URI form, keybindings sorted by name.
func (n *InstanceName) String() string {
	return formatInstanceName(n)
}
