package cimxml

import (
	"bytes"
	"encoding/xml"
)

// writer emits CIM-XML elements. Attribute values and text content go
// through encoding/xml escaping; element emission itself is explicit so
// the output matches the DTD exactly, attribute order included.
type writer struct {
	buf bytes.Buffer
}

// attr is one NAME="value" attribute.
type attr struct {
	name  string
	value string
}

func (w *writer) start(name string, attrs ...attr) {
	w.buf.WriteByte('<')
	w.buf.WriteString(name)
	for _, a := range attrs {
		w.buf.WriteByte(' ')
		w.buf.WriteString(a.name)
		w.buf.WriteString(`="`)
		xml.EscapeText(&w.buf, []byte(a.value))
		w.buf.WriteByte('"')
	}
	w.buf.WriteByte('>')
}

func (w *writer) end(name string) {
	w.buf.WriteString("</")
	w.buf.WriteString(name)
	w.buf.WriteByte('>')
}

// empty emits an element with no content, <NAME .../>.
func (w *writer) empty(name string, attrs ...attr) {
	w.buf.WriteByte('<')
	w.buf.WriteString(name)
	for _, a := range attrs {
		w.buf.WriteByte(' ')
		w.buf.WriteString(a.name)
		w.buf.WriteString(`="`)
		xml.EscapeText(&w.buf, []byte(a.value))
		w.buf.WriteByte('"')
	}
	w.buf.WriteString("/>")
}

func (w *writer) text(s string) {
	xml.EscapeText(&w.buf, []byte(s))
}

// textElement emits <NAME ...>text</NAME>.
func (w *writer) textElement(name, content string, attrs ...attr) {
	w.start(name, attrs...)
	w.text(content)
	w.end(name)
}

func (w *writer) bytes() []byte {
	return w.buf.Bytes()
}
