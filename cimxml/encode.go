package cimxml

import (
	"strconv"
	"strings"

	"github.com/slonegd/gowbem/cim"
)

// SplitNamespace normalizes a namespace string: leading and trailing
// slashes are stripped and the remainder is split at '/' into one
// component per non-empty segment. "//root/mycim//" yields
// ["root", "mycim"].
func SplitNamespace(namespace string) []string {
	var out []string
	for _, part := range strings.Split(namespace, "/") {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// JoinNamespace renders the normalized namespace, e.g. "root/mycim".
func JoinNamespace(namespace string) string {
	return strings.Join(SplitNamespace(namespace), "/")
}

// Param is one parameter of a method call, emitted as IPARAMVALUE for
// intrinsic calls and PARAMVALUE for extrinsic calls. paramType is set
// for extrinsic parameters only, which carry a PARAMTYPE attribute.
type Param struct {
	name      string
	paramType string
	write     func(w *writer)
}

// ValueParam carries a plain CIM value. Null values emit an empty
// parameter element.
func ValueParam(name string, v cim.Value) Param {
	return Param{name: name, write: func(w *writer) { writeValue(w, v) }}
}

// BoolParam carries a boolean.
func BoolParam(name string, v bool) Param {
	return ValueParam(name, cim.Bool(v))
}

// Uint32Param carries a uint32.
func Uint32Param(name string, v uint32) Param {
	return ValueParam(name, cim.Uint32(v))
}

// StringParam carries a string.
func StringParam(name string, v string) Param {
	return ValueParam(name, cim.String(v))
}

// StringArrayParam carries a string array (property lists).
func StringArrayParam(name string, values []string) Param {
	elems := make([]cim.Value, len(values))
	for i, s := range values {
		elems[i] = cim.String(s)
	}
	arr, _ := cim.Array(cim.TypeString, elems)
	return ValueParam(name, arr)
}

// ClassNameParam emits a CLASSNAME element.
func ClassNameParam(name, className string) Param {
	return Param{name: name, write: func(w *writer) {
		w.empty(elemClassName, attr{attrName, className})
	}}
}

// InstanceNameParam emits an INSTANCENAME element.
func InstanceNameParam(name string, instName *cim.InstanceName) Param {
	return Param{name: name, write: func(w *writer) {
		writeInstanceName(w, instName)
	}}
}

// ObjectNameParam emits an INSTANCENAME for instance paths and a
// CLASSNAME for class names, as the assoc/ref operations require.
func ObjectNameParam(name string, instName *cim.InstanceName, className string) Param {
	if instName != nil {
		return InstanceNameParam(name, instName)
	}
	return ClassNameParam(name, className)
}

// InstanceParam emits an INSTANCE element.
func InstanceParam(name string, inst *cim.Instance) Param {
	return Param{name: name, write: func(w *writer) {
		writeInstance(w, inst)
	}}
}

// NamedInstanceParam emits a VALUE.NAMEDINSTANCE element; the instance
// must carry a path (ModifyInstance).
func NamedInstanceParam(name string, inst *cim.Instance) Param {
	return Param{name: name, write: func(w *writer) {
		w.start(elemValueNamedInstance)
		writeInstanceName(w, inst.Path)
		writeInstance(w, inst)
		w.end(elemValueNamedInstance)
	}}
}

// ClassParam emits a CLASS element.
func ClassParam(name string, cls *cim.Class) Param {
	return Param{name: name, write: func(w *writer) {
		writeClass(w, cls)
	}}
}

// QualifierDeclParam emits a QUALIFIER.DECLARATION element.
func QualifierDeclParam(name string, decl *cim.QualifierDeclaration) Param {
	return Param{name: name, write: func(w *writer) {
		writeQualifierDeclaration(w, decl)
	}}
}

// EncodeMethodCall encodes an intrinsic operation request: the CIM
// envelope around SIMPLEREQ/IMETHODCALL with a LOCALNAMESPACEPATH target.
//
//	<CIM CIMVERSION="2.0" DTDVERSION="2.0">
//	  <MESSAGE ID="..." PROTOCOLVERSION="1.0">
//	    <SIMPLEREQ>
//	      <IMETHODCALL NAME="...">
//	        <LOCALNAMESPACEPATH><NAMESPACE NAME="..."/>...</LOCALNAMESPACEPATH>
//	        <IPARAMVALUE NAME="...">...</IPARAMVALUE>*
//	      </IMETHODCALL>
//	    </SIMPLEREQ>
//	  </MESSAGE>
//	</CIM>
func EncodeMethodCall(id uint64, methodName, namespace string, params []Param) []byte {
	w := &writer{}
	writeEnvelopeStart(w, id)
	w.start(elemSimpleReq)
	w.start(elemIMethodCall, attr{attrName, methodName})
	writeLocalNamespacePath(w, SplitNamespace(namespace))
	for _, p := range params {
		w.start(elemIParamValue, attr{attrName, p.name})
		p.write(w)
		w.end(elemIParamValue)
	}
	w.end(elemIMethodCall)
	w.end(elemSimpleReq)
	writeEnvelopeEnd(w)
	return w.bytes()
}

// MethodParam is one extrinsic method parameter with its PARAMTYPE.
func MethodParam(name string, v cim.Value) Param {
	return Param{
		name:      name,
		paramType: v.Type().String(),
		write:     func(w *writer) { writeValue(w, v) },
	}
}

// EncodeExtrinsicCall encodes an extrinsic method invocation: METHODCALL
// with a LOCALINSTANCEPATH target for instance paths or a LOCALCLASSPATH
// target for class names.
func EncodeExtrinsicCall(id uint64, methodName, namespace string, instName *cim.InstanceName, className string, params []Param) []byte {
	w := &writer{}
	writeEnvelopeStart(w, id)
	w.start(elemSimpleReq)
	w.start(elemMethodCall, attr{attrName, methodName})
	components := SplitNamespace(namespace)
	if instName != nil {
		w.start(elemLocalInstancePath)
		writeLocalNamespacePath(w, components)
		writeInstanceName(w, instName)
		w.end(elemLocalInstancePath)
	} else {
		w.start(elemLocalClassPath)
		writeLocalNamespacePath(w, components)
		w.empty(elemClassName, attr{attrName, className})
		w.end(elemLocalClassPath)
	}
	for _, p := range params {
		attrs := []attr{{attrName, p.name}}
		if p.paramType != "" {
			attrs = append(attrs, attr{attrParamType, p.paramType})
		}
		w.start(elemParamValue, attrs...)
		p.write(w)
		w.end(elemParamValue)
	}
	w.end(elemMethodCall)
	w.end(elemSimpleReq)
	writeEnvelopeEnd(w)
	return w.bytes()
}

// EncodeExportResponse encodes a SIMPLEEXPRSP envelope acknowledging an
// export request (listener boundary).
func EncodeExportResponse(id string, methodName string) []byte {
	w := &writer{}
	w.start(elemCIM, attr{attrCIMVersion, CIMVersion}, attr{attrDTDVersion, DTDVersion})
	w.start(elemMessage, attr{attrID, id}, attr{attrProtocolVersion, ProtocolVersion})
	w.start(elemSimpleExpRsp)
	w.start(elemExpMethodResponse, attr{attrName, methodName})
	w.empty(elemIReturnValue)
	w.end(elemExpMethodResponse)
	w.end(elemSimpleExpRsp)
	w.end(elemMessage)
	w.end(elemCIM)
	return w.bytes()
}

func writeEnvelopeStart(w *writer, id uint64) {
	w.start(elemCIM, attr{attrCIMVersion, CIMVersion}, attr{attrDTDVersion, DTDVersion})
	w.start(elemMessage,
		attr{attrID, strconv.FormatUint(id, 10)},
		attr{attrProtocolVersion, ProtocolVersion})
}

func writeEnvelopeEnd(w *writer) {
	w.end(elemMessage)
	w.end(elemCIM)
}

func writeLocalNamespacePath(w *writer, components []string) {
	w.start(elemLocalNamespacePath)
	for _, c := range components {
		w.empty(elemNamespace, attr{attrName, c})
	}
	w.end(elemLocalNamespacePath)
}

// writeValue emits VALUE, VALUE.ARRAY, VALUE.REFERENCE or VALUE.REFARRAY
// for a CIM value. Null values emit nothing, matching the DTD where an
// absent value element means null.
func writeValue(w *writer, v cim.Value) {
	if v.IsNull() {
		return
	}
	if v.IsArray() {
		if v.Type() == cim.TypeReference {
			w.start(elemValueRefArray)
			for _, e := range v.ArrayValue() {
				writeValueReference(w, e.ReferenceValue())
			}
			w.end(elemValueRefArray)
			return
		}
		w.start(elemValueArray)
		for _, e := range v.ArrayValue() {
			if e.IsNull() {
				w.empty(elemValueNull)
				continue
			}
			text, _ := e.WireText()
			w.textElement(elemValue, text)
		}
		w.end(elemValueArray)
		return
	}
	if v.Type() == cim.TypeReference {
		writeValueReference(w, v.ReferenceValue())
		return
	}
	if inst := v.EmbeddedInstanceValue(); inst != nil {
		w.textElement(elemValue, string(SerializeInstance(inst)))
		return
	}
	if cls := v.EmbeddedClassValue(); cls != nil {
		w.textElement(elemValue, string(SerializeClass(cls)))
		return
	}
	text, _ := v.WireText()
	w.textElement(elemValue, text)
}

// writeValueReference emits VALUE.REFERENCE with the most specific path
// form the instance name supports: INSTANCEPATH with host, otherwise
// LOCALINSTANCEPATH with namespace, otherwise a bare INSTANCENAME.
func writeValueReference(w *writer, n *cim.InstanceName) {
	w.start(elemValueReference)
	switch {
	case n.Host != "":
		w.start(elemInstancePath)
		w.start(elemNamespacePath)
		w.textElement(elemHost, n.Host)
		writeLocalNamespacePath(w, SplitNamespace(n.Namespace))
		w.end(elemNamespacePath)
		writeInstanceName(w, n)
		w.end(elemInstancePath)
	case n.Namespace != "":
		w.start(elemLocalInstancePath)
		writeLocalNamespacePath(w, SplitNamespace(n.Namespace))
		writeInstanceName(w, n)
		w.end(elemLocalInstancePath)
	default:
		writeInstanceName(w, n)
	}
	w.end(elemValueReference)
}

// keyValueType maps a CIM type to the KEYVALUE VALUETYPE attribute.
func keyValueType(t cim.Type) string {
	switch {
	case t == cim.TypeBoolean:
		return "boolean"
	case t.IsInteger() || t.IsReal():
		return "numeric"
	}
	return "string"
}

func writeInstanceName(w *writer, n *cim.InstanceName) {
	w.start(elemInstanceName, attr{attrClassName, n.ClassName})
	for _, name := range n.KeybindingNames() {
		value, _ := n.Keybinding(name)
		w.start(elemKeybinding, attr{attrName, name})
		if value.Type() == cim.TypeReference {
			writeValueReference(w, value.ReferenceValue())
		} else {
			text, _ := value.WireText()
			w.textElement(elemKeyValue, text,
				attr{attrValueType, keyValueType(value.Type())},
				attr{attrType, value.Type().String()})
		}
		w.end(elemKeybinding)
	}
	w.end(elemInstanceName)
}

func writeQualifier(w *writer, q *cim.Qualifier) {
	attrs := []attr{
		{attrName, q.Name},
		{attrType, q.Value.Type().String()},
	}
	if q.Propagated {
		attrs = append(attrs, attr{attrPropagated, "true"})
	}
	// flavor attributes are emitted only when differing from DTD defaults
	if !q.Overridable {
		attrs = append(attrs, attr{attrOverridable, "false"})
	}
	if !q.ToSubclass {
		attrs = append(attrs, attr{attrToSubclass, "false"})
	}
	if q.ToInstance {
		attrs = append(attrs, attr{attrToInstance, "true"})
	}
	if q.Translatable {
		attrs = append(attrs, attr{attrTranslatable, "true"})
	}
	w.start(elemQualifier, attrs...)
	writeValue(w, q.Value)
	w.end(elemQualifier)
}

func writeQualifiers(w *writer, quals []*cim.Qualifier) {
	for _, q := range quals {
		writeQualifier(w, q)
	}
}

func writeProperty(w *writer, p *cim.Property) {
	common := func(attrs []attr) []attr {
		if p.ClassOrigin != "" {
			attrs = append(attrs, attr{attrClassOrigin, p.ClassOrigin})
		}
		if p.Propagated {
			attrs = append(attrs, attr{attrPropagated, "true"})
		}
		return attrs
	}

	switch {
	case p.Value.Type() == cim.TypeReference && !p.Value.IsArray():
		attrs := []attr{{attrName, p.Name}}
		if p.ReferenceClass != "" {
			attrs = append(attrs, attr{attrReferenceClass, p.ReferenceClass})
		}
		w.start(elemPropertyReference, common(attrs)...)
		writeValue(w, p.Value)
		w.end(elemPropertyReference)

	case p.Value.IsArray():
		attrs := []attr{
			{attrName, p.Name},
			{attrType, p.Value.Type().String()},
		}
		if p.ArraySize > 0 {
			attrs = append(attrs, attr{attrArraySize, strconv.Itoa(p.ArraySize)})
		}
		if p.EmbeddedObject != cim.EmbeddedNone {
			attrs = append(attrs, attr{attrEmbeddedObject, string(p.EmbeddedObject)})
		}
		w.start(elemPropertyArray, common(attrs)...)
		writeValue(w, p.Value)
		w.end(elemPropertyArray)

	default:
		attrs := []attr{
			{attrName, p.Name},
			{attrType, p.Value.Type().String()},
		}
		if p.EmbeddedObject != cim.EmbeddedNone {
			attrs = append(attrs, attr{attrEmbeddedObject, string(p.EmbeddedObject)})
		}
		w.start(elemProperty, common(attrs)...)
		writeValue(w, p.Value)
		w.end(elemProperty)
	}
}

func writeInstance(w *writer, inst *cim.Instance) {
	w.start(elemInstance, attr{attrClassName, inst.ClassName})
	writeQualifiers(w, inst.Qualifiers())
	for _, p := range inst.Properties() {
		writeProperty(w, p)
	}
	w.end(elemInstance)
}

func writeParameter(w *writer, p *cim.Parameter) {
	switch {
	case p.Type == cim.TypeReference && p.IsArray:
		attrs := []attr{{attrName, p.Name}}
		if p.ReferenceClass != "" {
			attrs = append(attrs, attr{attrReferenceClass, p.ReferenceClass})
		}
		if p.ArraySize > 0 {
			attrs = append(attrs, attr{attrArraySize, strconv.Itoa(p.ArraySize)})
		}
		w.start(elemParameterRefArray, attrs...)
		writeQualifiers(w, p.Qualifiers())
		w.end(elemParameterRefArray)

	case p.Type == cim.TypeReference:
		attrs := []attr{{attrName, p.Name}}
		if p.ReferenceClass != "" {
			attrs = append(attrs, attr{attrReferenceClass, p.ReferenceClass})
		}
		w.start(elemParameterReference, attrs...)
		writeQualifiers(w, p.Qualifiers())
		w.end(elemParameterReference)

	case p.IsArray:
		attrs := []attr{{attrName, p.Name}, {attrType, p.Type.String()}}
		if p.ArraySize > 0 {
			attrs = append(attrs, attr{attrArraySize, strconv.Itoa(p.ArraySize)})
		}
		w.start(elemParameterArray, attrs...)
		writeQualifiers(w, p.Qualifiers())
		w.end(elemParameterArray)

	default:
		w.start(elemParameter, attr{attrName, p.Name}, attr{attrType, p.Type.String()})
		writeQualifiers(w, p.Qualifiers())
		w.end(elemParameter)
	}
}

func writeMethod(w *writer, m *cim.Method) {
	attrs := []attr{
		{attrName, m.Name},
		{attrType, m.ReturnType.String()},
	}
	if m.ClassOrigin != "" {
		attrs = append(attrs, attr{attrClassOrigin, m.ClassOrigin})
	}
	if m.Propagated {
		attrs = append(attrs, attr{attrPropagated, "true"})
	}
	w.start(elemMethod, attrs...)
	writeQualifiers(w, m.Qualifiers())
	for _, p := range m.Parameters() {
		writeParameter(w, p)
	}
	w.end(elemMethod)
}

func writeClass(w *writer, cls *cim.Class) {
	attrs := []attr{{attrName, cls.ClassName}}
	if cls.SuperClass != "" {
		attrs = append(attrs, attr{attrSuperClass, cls.SuperClass})
	}
	w.start(elemClass, attrs...)
	writeQualifiers(w, cls.Qualifiers())
	for _, p := range cls.Properties() {
		writeProperty(w, p)
	}
	for _, m := range cls.Methods() {
		writeMethod(w, m)
	}
	w.end(elemClass)
}

func writeQualifierDeclaration(w *writer, d *cim.QualifierDeclaration) {
	attrs := []attr{
		{attrName, d.Name},
		{attrType, d.Type.String()},
	}
	if d.IsArray {
		attrs = append(attrs, attr{attrIsArray, "true"})
		if d.ArraySize > 0 {
			attrs = append(attrs, attr{attrArraySize, strconv.Itoa(d.ArraySize)})
		}
	}
	if !d.Overridable {
		attrs = append(attrs, attr{attrOverridable, "false"})
	}
	if !d.ToSubclass {
		attrs = append(attrs, attr{attrToSubclass, "false"})
	}
	if d.ToInstance {
		attrs = append(attrs, attr{attrToInstance, "true"})
	}
	if d.Translatable {
		attrs = append(attrs, attr{attrTranslatable, "true"})
	}
	w.start(elemQualifierDeclaration, attrs...)
	writeScope(w, d.Scopes)
	writeValue(w, d.Value)
	w.end(elemQualifierDeclaration)
}

func writeScope(w *writer, s cim.Scope) {
	if s == 0 {
		return
	}
	var attrs []attr
	add := func(bit cim.Scope, name string) {
		if s.Has(bit) {
			attrs = append(attrs, attr{name, "true"})
		}
	}
	add(cim.ScopeClass, attrScopeClass)
	add(cim.ScopeAssociation, attrScopeAssociation)
	add(cim.ScopeIndication, attrScopeIndication)
	add(cim.ScopeProperty, attrScopeProperty)
	add(cim.ScopeReference, attrScopeReference)
	add(cim.ScopeMethod, attrScopeMethod)
	add(cim.ScopeParameter, attrScopeParameter)
	w.empty(elemScope, attrs...)
}

// SerializeInstance renders a standalone INSTANCE element, used for
// embedded-object property values and by tests.
func SerializeInstance(inst *cim.Instance) []byte {
	w := &writer{}
	writeInstance(w, inst)
	return w.bytes()
}

// SerializeClass renders a standalone CLASS element.
func SerializeClass(cls *cim.Class) []byte {
	w := &writer{}
	writeClass(w, cls)
	return w.bytes()
}

// SerializeInstanceName renders a standalone INSTANCENAME element.
func SerializeInstanceName(n *cim.InstanceName) []byte {
	w := &writer{}
	writeInstanceName(w, n)
	return w.bytes()
}

// SerializeQualifierDeclaration renders a standalone QUALIFIER.DECLARATION.
func SerializeQualifierDeclaration(d *cim.QualifierDeclaration) []byte {
	w := &writer{}
	writeQualifierDeclaration(w, d)
	return w.bytes()
}
