package cim

import "strings"

// MOF rendering for diagnostics and CLI display. The output follows the
// DSP0004 textual form; it is not consumed by a parser in this module.

const mofIndent = "   "

// mofValue renders a value in MOF notation: strings quoted with backslash
// escaping, arrays in braces, null as NULL.
func mofValue(b *strings.Builder, v Value) {
	switch {
	case v.IsNull():
		b.WriteString("NULL")
	case v.IsArray():
		b.WriteByte('{')
		for i, e := range v.ArrayValue() {
			if i > 0 {
				b.WriteString(", ")
			}
			mofValue(b, e)
		}
		b.WriteByte('}')
	default:
		switch v.Type() {
		case TypeString, TypeChar16, TypeDateTime:
			text, _ := v.WireText()
			b.WriteByte('"')
			for i := 0; i < len(text); i++ {
				switch text[i] {
				case '"', '\\':
					b.WriteByte('\\')
					b.WriteByte(text[i])
				case '\n':
					b.WriteString(`\n`)
				case '\t':
					b.WriteString(`\t`)
				default:
					b.WriteByte(text[i])
				}
			}
			b.WriteByte('"')
		case TypeReference:
			b.WriteByte('"')
			b.WriteString(v.ReferenceValue().String())
			b.WriteByte('"')
		default:
			text, _ := v.WireText()
			b.WriteString(text)
		}
	}
}

func mofQualifierList(b *strings.Builder, quals []*Qualifier, indent string) {
	if len(quals) == 0 {
		return
	}
	b.WriteString(indent)
	b.WriteString("   [")
	for i, q := range quals {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(q.Name)
		if q.Value.Type() == TypeBoolean && !q.Value.IsArray() && !q.Value.IsNull() {
			// boolean true qualifiers render bare, e.g. [Key]
			if q.Value.BoolValue() {
				continue
			}
		}
		b.WriteString(" (")
		mofValue(b, q.Value)
		b.WriteString(")")
	}
	b.WriteString("]\n")
}

// MOF renders the qualifier in standalone notation.
func (q *Qualifier) MOF() string {
	var b strings.Builder
	b.WriteString(q.Name)
	b.WriteString(" (")
	mofValue(&b, q.Value)
	b.WriteString(")")
	return b.String()
}

// MOF renders the instance in "instance of" notation.
func (i *Instance) MOF() string {
	var b strings.Builder
	b.WriteString("instance of ")
	b.WriteString(i.ClassName)
	b.WriteString(" {\n")
	for _, p := range i.Properties() {
		b.WriteString(mofIndent)
		b.WriteString(p.Name)
		b.WriteString(" = ")
		mofValue(&b, p.Value)
		b.WriteString(";\n")
	}
	b.WriteString("};\n")
	return b.String()
}

// MOF renders the property declaration line.
func (p *Property) MOF() string {
	var b strings.Builder
	mofQualifierList(&b, p.Qualifiers(), "")
	b.WriteString(mofIndent)
	if p.Value.Type() == TypeReference {
		if p.ReferenceClass != "" {
			b.WriteString(p.ReferenceClass)
			b.WriteString(" ")
		}
		b.WriteString("REF ")
	} else {
		b.WriteString(p.Value.Type().String())
		b.WriteString(" ")
	}
	b.WriteString(p.Name)
	if p.Value.IsArray() {
		b.WriteString("[]")
	}
	if !p.Value.IsNull() {
		b.WriteString(" = ")
		mofValue(&b, p.Value)
	}
	b.WriteString(";\n")
	return b.String()
}

// MOF renders the parameter declaration.
func (p *Parameter) MOF() string {
	var b strings.Builder
	if p.Type == TypeReference && p.ReferenceClass != "" {
		b.WriteString(p.ReferenceClass)
		b.WriteString(" REF ")
	} else {
		b.WriteString(p.Type.String())
		b.WriteString(" ")
	}
	b.WriteString(p.Name)
	if p.IsArray {
		b.WriteString("[]")
	}
	return b.String()
}

// MOF renders the method declaration line.
func (m *Method) MOF() string {
	var b strings.Builder
	mofQualifierList(&b, m.Qualifiers(), "")
	b.WriteString(mofIndent)
	b.WriteString(m.ReturnType.String())
	b.WriteString(" ")
	b.WriteString(m.Name)
	b.WriteString("(")
	for i, p := range m.Parameters() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.MOF())
	}
	b.WriteString(");\n")
	return b.String()
}

// MOF renders the full class declaration.
func (c *Class) MOF() string {
	var b strings.Builder
	mofQualifierList(&b, c.Qualifiers(), "")
	b.WriteString("class ")
	b.WriteString(c.ClassName)
	if c.SuperClass != "" {
		b.WriteString(" : ")
		b.WriteString(c.SuperClass)
	}
	b.WriteString(" {\n")
	for _, p := range c.Properties() {
		b.WriteString(p.MOF())
	}
	for _, m := range c.Methods() {
		b.WriteString(m.MOF())
	}
	b.WriteString("};\n")
	return b.String()
}

// MOF renders the qualifier declaration.
func (d *QualifierDeclaration) MOF() string {
	var b strings.Builder
	b.WriteString("qualifier ")
	b.WriteString(d.Name)
	b.WriteString(" : ")
	b.WriteString(d.Type.String())
	if d.IsArray {
		b.WriteString("[]")
	}
	if !d.Value.IsNull() {
		b.WriteString(" = ")
		mofValue(&b, d.Value)
	}
	b.WriteString(",\n")
	b.WriteString(mofIndent)
	b.WriteString("Scope(")
	b.WriteString(strings.ToLower(d.Scopes.String()))
	b.WriteString(");\n")
	return b.String()
}
