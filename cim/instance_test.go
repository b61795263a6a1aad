package cim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaseInsensitiveLookup(t *testing.T) {
	inst := NewInstance("MY_Person")
	require.NoError(t, inst.SetPropertyValue("CreationClassName", String("MY_Person")))
	require.NoError(t, inst.SetPropertyValue("Name", String("Fritz")))

	// every case permutation of a name finds the same property
	for _, name := range []string{"Name", "name", "NAME", "nAmE"} {
		p, ok := inst.Property(name)
		require.True(t, ok, "lookup %q", name)
		assert.Equal(t, "Fritz", p.Value.StringValue())
	}

	// replacement keeps position but adopts the new spelling
	require.NoError(t, inst.SetPropertyValue("NAME", String("Alice")))
	assert.Equal(t, []string{"CreationClassName", "NAME"}, inst.PropertyNames())
	p, ok := inst.Property("name")
	require.True(t, ok)
	assert.Equal(t, "Alice", p.Value.StringValue())
}

func TestInsertionOrderPreserved(t *testing.T) {
	inst := NewInstance("CIM_Foo")
	names := []string{"Zeta", "Alpha", "Mike", "Bravo"}
	for i, n := range names {
		require.NoError(t, inst.SetPropertyValue(n, Uint32(uint32(i))))
	}
	assert.Equal(t, names, inst.PropertyNames())

	assert.True(t, inst.DeleteProperty("MIKE"))
	assert.Equal(t, []string{"Zeta", "Alpha", "Bravo"}, inst.PropertyNames())
	assert.False(t, inst.DeleteProperty("Mike"))
}

func TestInstanceEquality(t *testing.T) {
	build := func(class string, order []string) *Instance {
		inst := NewInstance(class)
		for _, n := range order {
			if err := inst.SetPropertyValue(n, String(n+"-value")); err != nil {
				t.Fatal(err)
			}
		}
		return inst
	}

	a := build("CIM_Foo", []string{"One", "Two"})
	b := build("cim_foo", []string{"Two", "One"})
	// change spelling of the value keys but not the values
	bTwo, _ := b.Property("two")
	bTwo.Value = String("Two-value")

	// property order and name case do not participate in equality
	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Hash(), b.Hash())

	c := build("CIM_Foo", []string{"One"})
	assert.False(t, a.Equal(c))

	d := build("CIM_Foo", []string{"One", "Two"})
	d.Path = NewInstanceName("CIM_Foo")
	assert.False(t, a.Equal(d))
}

func TestInstanceClone(t *testing.T) {
	inst := NewInstance("CIM_Foo")
	require.NoError(t, inst.SetPropertyValue("Name", String("x")))
	inst.Path = NewInstanceName("CIM_Foo")
	require.NoError(t, inst.Path.SetKeybinding("Name", String("x")))

	cp := inst.Clone()
	assert.True(t, inst.Equal(cp))

	// mutating the clone leaves the original untouched
	require.NoError(t, cp.SetPropertyValue("Name", String("y")))
	p, _ := inst.Property("Name")
	assert.Equal(t, "x", p.Value.StringValue())
}

func TestPropertyInvariants(t *testing.T) {
	t.Run("reference class needs reference type", func(t *testing.T) {
		p := NewProperty("Antecedent", String("oops"))
		p.ReferenceClass = "CIM_System"
		assert.ErrorIs(t, p.Validate(), ErrReferenceClass)
	})

	t.Run("embedded object needs string type", func(t *testing.T) {
		p := NewProperty("Payload", Uint32(1))
		p.EmbeddedObject = EmbeddedAsInstance
		assert.ErrorIs(t, p.Validate(), ErrEmbeddedNotString)
	})

	t.Run("SetProperty rejects invalid", func(t *testing.T) {
		inst := NewInstance("CIM_Foo")
		p := NewProperty("Payload", Uint32(1))
		p.EmbeddedObject = EmbeddedAsObject
		assert.Error(t, inst.SetProperty(p))
		assert.Empty(t, inst.PropertyNames())
	})
}

func TestKeybindingInvariants(t *testing.T) {
	n := NewInstanceName("CIM_Foo")

	arr, err := Array(TypeUint8, []Value{Uint8(1)})
	require.NoError(t, err)
	assert.ErrorIs(t, n.SetKeybinding("K", arr), ErrKeybindingArray)

	assert.ErrorIs(t, n.SetKeybinding("K", EmbeddedInstance(NewInstance("X"))), ErrKeybindingEmbedded)

	ref := NewInstanceName("CIM_Bar")
	require.NoError(t, n.SetKeybinding("K", Reference(ref)))
}

func TestClassEquality(t *testing.T) {
	build := func() *Class {
		cls := NewClass("CIM_Managed")
		cls.SuperClass = "CIM_Base"
		p := NewProperty("Caption", Null(TypeString))
		p.SetQualifier(NewQualifier("MaxLen", Uint32(64)))
		if err := cls.SetProperty(p); err != nil {
			t.Fatal(err)
		}
		m := NewMethod("Reset", TypeUint32)
		m.SetParameter(NewParameter("Force", TypeBoolean))
		cls.SetMethod(m)
		return cls
	}

	a, b := build(), build()
	b.ClassName = "cim_managed"
	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Hash(), b.Hash())

	m, _ := b.Method("reset")
	m.ReturnType = TypeSint32
	assert.False(t, a.Equal(b))
}

func TestQualifierFlavorDefaults(t *testing.T) {
	q := NewQualifier("Key", Bool(true))
	assert.True(t, q.Overridable)
	assert.True(t, q.ToSubclass)
	assert.False(t, q.ToInstance)
	assert.False(t, q.Translatable)
}
