package cimxml

import (
	"bytes"
	"encoding/xml"
	"io"
	"mime"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/slonegd/gowbem/cim"
)

// node is one parsed XML element. Unknown attributes are tolerated and
// kept; unknown required elements are rejected during interpretation.
type node struct {
	name  string
	attrs map[string]string
	kids  []*node
	text  string
}

func (n *node) attr(name string) (string, bool) {
	v, ok := n.attrs[name]
	return v, ok
}

func (n *node) child(name string) *node {
	for _, k := range n.kids {
		if k.name == name {
			return k
		}
	}
	return nil
}

func (n *node) children(name string) []*node {
	var out []*node
	for _, k := range n.kids {
		if k.name == name {
			out = append(out, k)
		}
	}
	return out
}

// parseTree parses a full XML document into an element tree. Syntax
// violations surface as XMLParseError.
func parseTree(body []byte) (*node, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	var stack []*node
	var root *node

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &XMLParseError{Msg: "malformed response body", Err: err}
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{name: t.Name.Local, attrs: make(map[string]string, len(t.Attr))}
			for _, a := range t.Attr {
				n.attrs[a.Name.Local] = a.Value
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, &XMLParseError{Msg: "multiple top-level elements"}
				}
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.kids = append(parent.kids, n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text += string(t)
			}
		}
	}
	if root == nil {
		return nil, &XMLParseError{Msg: "empty response body"}
	}
	return root, nil
}

// ValidateContentType checks the HTTP Content-Type of a response: it
// must be application/xml or text/xml, optionally with a charset
// parameter.
func ValidateContentType(value string) error {
	if value == "" {
		return &HeaderParseError{Msg: "missing Content-Type header"}
	}
	mediaType, params, err := mime.ParseMediaType(value)
	if err != nil {
		return &HeaderParseError{Msg: "invalid Content-Type " + strconv.Quote(value)}
	}
	if mediaType != "application/xml" && mediaType != "text/xml" {
		return &HeaderParseError{Msg: "unsupported Content-Type " + strconv.Quote(mediaType)}
	}
	if cs, ok := params["charset"]; ok && !strings.EqualFold(cs, "utf-8") {
		return &HeaderParseError{Msg: "unsupported charset " + strconv.Quote(cs)}
	}
	return nil
}

// parseEnvelope validates the CIM/MESSAGE envelope and returns the
// MESSAGE node. The response MESSAGE ID must be present; it is not
// required to equal the request ID because HTTP already pairs request
// and response.
func parseEnvelope(body []byte) (*node, error) {
	root, err := parseTree(body)
	if err != nil {
		return nil, err
	}
	if root.name != elemCIM {
		return nil, cimxmlErrorf("top-level element is %s, expected CIM", root.name)
	}
	if v, ok := root.attr(attrCIMVersion); !ok || !strings.HasPrefix(v, "2.") {
		return nil, cimxmlErrorf("unsupported CIMVERSION %q", v)
	}
	if v, ok := root.attr(attrDTDVersion); !ok || !strings.HasPrefix(v, "2.") {
		return nil, cimxmlErrorf("unsupported DTDVERSION %q", v)
	}
	msg := root.child(elemMessage)
	if msg == nil {
		return nil, cimxmlErrorf("missing MESSAGE element")
	}
	if _, ok := msg.attr(attrID); !ok {
		return nil, cimxmlErrorf("MESSAGE element has no ID")
	}
	if _, ok := msg.attr(attrProtocolVersion); !ok {
		return nil, cimxmlErrorf("MESSAGE element has no PROTOCOLVERSION")
	}
	return msg, nil
}

func parseErrorElement(n *node) (*cim.Error, error) {
	codeText, ok := n.attr(attrCode)
	if !ok {
		return nil, cimxmlErrorf("ERROR element has no CODE")
	}
	code, err := strconv.ParseUint(codeText, 10, 32)
	if err != nil {
		return nil, cimxmlErrorf("ERROR CODE %q is not numeric", codeText)
	}
	desc, _ := n.attr(attrDescription)
	cimErr := &cim.Error{
		StatusCode:  cim.StatusCode(code),
		Description: desc,
	}
	for _, in := range n.children(elemInstance) {
		inst, err := parseInstance(in)
		if err != nil {
			return nil, err
		}
		cimErr.Instances = append(cimErr.Instances, inst)
	}
	return cimErr, nil
}

// IMethodResponse is a decoded intrinsic operation response. Exactly one
// of CIMError and the return payload is populated; a void operation has
// neither.
type IMethodResponse struct {
	MethodName string
	CIMError   *cim.Error

	ret       *node   // IRETURNVALUE, nil for void responses
	outParams []*node // PARAMVALUE siblings (pull responses)
}

// ParseIMethodResponse decodes the response to an intrinsic method call.
// The IMETHODRESPONSE NAME must match the outgoing request's method name.
func ParseIMethodResponse(body []byte, methodName string) (*IMethodResponse, error) {
	msg, err := parseEnvelope(body)
	if err != nil {
		return nil, err
	}
	rsp := msg.child(elemSimpleRsp)
	if rsp == nil {
		return nil, cimxmlErrorf("missing SIMPLERSP element")
	}
	mrsp := rsp.child(elemIMethodResponse)
	if mrsp == nil {
		return nil, cimxmlErrorf("missing IMETHODRESPONSE element")
	}
	name, _ := mrsp.attr(attrName)
	if !strings.EqualFold(name, methodName) {
		return nil, cimxmlErrorf("IMETHODRESPONSE is for %q, expected %q", name, methodName)
	}
	out := &IMethodResponse{
		MethodName: name,
		ret:        mrsp.child(elemIReturnValue),
		outParams:  mrsp.children(elemParamValue),
	}
	if errNode := mrsp.child(elemError); errNode != nil {
		out.CIMError, err = parseErrorElement(errNode)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *IMethodResponse) returnKids() []*node {
	if r.ret == nil {
		return nil
	}
	return r.ret.kids
}

// NamedInstances extracts VALUE.NAMEDINSTANCE results
// (EnumerateInstances): instances whose path carries keybindings but no
// namespace.
func (r *IMethodResponse) NamedInstances() ([]*cim.Instance, error) {
	var out []*cim.Instance
	for _, k := range r.returnKids() {
		if k.name != elemValueNamedInstance {
			return nil, cimxmlErrorf("unexpected %s in IRETURNVALUE, expected VALUE.NAMEDINSTANCE", k.name)
		}
		nameNode := k.child(elemInstanceName)
		instNode := k.child(elemInstance)
		if nameNode == nil || instNode == nil {
			return nil, cimxmlErrorf("VALUE.NAMEDINSTANCE needs INSTANCENAME and INSTANCE")
		}
		path, err := parseInstanceName(nameNode)
		if err != nil {
			return nil, err
		}
		inst, err := parseInstance(instNode)
		if err != nil {
			return nil, err
		}
		inst.Path = path
		out = append(out, inst)
	}
	return out, nil
}

// InstancesWithPath extracts VALUE.INSTANCEWITHPATH results (pull
// operations): instances with a full path including namespace and host.
func (r *IMethodResponse) InstancesWithPath() ([]*cim.Instance, error) {
	var out []*cim.Instance
	for _, k := range r.returnKids() {
		if k.name != elemValueInstanceWithPath {
			return nil, cimxmlErrorf("unexpected %s in IRETURNVALUE, expected VALUE.INSTANCEWITHPATH", k.name)
		}
		pathNode := k.child(elemInstancePath)
		instNode := k.child(elemInstance)
		if pathNode == nil || instNode == nil {
			return nil, cimxmlErrorf("VALUE.INSTANCEWITHPATH needs INSTANCEPATH and INSTANCE")
		}
		path, err := parseInstancePath(pathNode)
		if err != nil {
			return nil, err
		}
		inst, err := parseInstance(instNode)
		if err != nil {
			return nil, err
		}
		inst.Path = path
		out = append(out, inst)
	}
	return out, nil
}

// Objects extracts association results, which are instances or classes
// wrapped in VALUE.OBJECTWITHPATH or VALUE.OBJECTWITHLOCALPATH.
func (r *IMethodResponse) Objects() (instances []*cim.Instance, classes []*cim.Class, err error) {
	for _, k := range r.returnKids() {
		switch k.name {
		case elemValueObjectWithPath, elemValueObjectWithLocalPath:
			if instNode := k.child(elemInstance); instNode != nil {
				inst, err := parseInstance(instNode)
				if err != nil {
					return nil, nil, err
				}
				if pathNode := k.child(elemInstancePath); pathNode != nil {
					inst.Path, err = parseInstancePath(pathNode)
				} else if pathNode := k.child(elemLocalInstancePath); pathNode != nil {
					inst.Path, err = parseLocalInstancePath(pathNode)
				}
				if err != nil {
					return nil, nil, err
				}
				instances = append(instances, inst)
				continue
			}
			if clsNode := k.child(elemClass); clsNode != nil {
				cls, err := parseClass(clsNode)
				if err != nil {
					return nil, nil, err
				}
				classes = append(classes, cls)
				continue
			}
			return nil, nil, cimxmlErrorf("%s carries neither INSTANCE nor CLASS", k.name)
		case elemInstance:
			inst, err := parseInstance(k)
			if err != nil {
				return nil, nil, err
			}
			instances = append(instances, inst)
		case elemClass:
			cls, err := parseClass(k)
			if err != nil {
				return nil, nil, err
			}
			classes = append(classes, cls)
		default:
			return nil, nil, cimxmlErrorf("unexpected %s in association result", k.name)
		}
	}
	return instances, classes, nil
}

// InstancePaths extracts instance paths in any of the DTD forms:
// INSTANCEPATH, LOCALINSTANCEPATH or bare INSTANCENAME.
func (r *IMethodResponse) InstancePaths() ([]*cim.InstanceName, error) {
	var out []*cim.InstanceName
	for _, k := range r.returnKids() {
		var (
			name *cim.InstanceName
			err  error
		)
		switch k.name {
		case elemInstancePath:
			name, err = parseInstancePath(k)
		case elemLocalInstancePath:
			name, err = parseLocalInstancePath(k)
		case elemInstanceName:
			name, err = parseInstanceName(k)
		case elemObjectPath:
			inner := k.child(elemInstancePath)
			if inner == nil {
				return nil, cimxmlErrorf("OBJECTPATH without INSTANCEPATH")
			}
			name, err = parseInstancePath(inner)
		default:
			return nil, cimxmlErrorf("unexpected %s in path result", k.name)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, nil
}

// PlainInstances extracts bare INSTANCE results (ExecQuery). VALUE.OBJECT
// wrappers are unwrapped; paths are not populated.
func (r *IMethodResponse) PlainInstances() ([]*cim.Instance, error) {
	var out []*cim.Instance
	for _, k := range r.returnKids() {
		instNode := k
		if k.name == elemValueObject {
			instNode = k.child(elemInstance)
			if instNode == nil {
				return nil, cimxmlErrorf("VALUE.OBJECT without INSTANCE")
			}
		} else if k.name != elemInstance {
			return nil, cimxmlErrorf("unexpected %s in query result", k.name)
		}
		inst, err := parseInstance(instNode)
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, nil
}

// SingleInstance extracts exactly one INSTANCE (GetInstance).
func (r *IMethodResponse) SingleInstance() (*cim.Instance, error) {
	nodes := r.returnKids()
	if len(nodes) != 1 || nodes[0].name != elemInstance {
		return nil, cimxmlErrorf("expected exactly one INSTANCE in IRETURNVALUE")
	}
	return parseInstance(nodes[0])
}

// SingleInstanceName extracts exactly one INSTANCENAME (CreateInstance).
func (r *IMethodResponse) SingleInstanceName() (*cim.InstanceName, error) {
	nodes := r.returnKids()
	if len(nodes) != 1 || nodes[0].name != elemInstanceName {
		return nil, cimxmlErrorf("expected exactly one INSTANCENAME in IRETURNVALUE")
	}
	return parseInstanceName(nodes[0])
}

// SingleClass extracts exactly one CLASS (GetClass).
func (r *IMethodResponse) SingleClass() (*cim.Class, error) {
	nodes := r.returnKids()
	if len(nodes) != 1 || nodes[0].name != elemClass {
		return nil, cimxmlErrorf("expected exactly one CLASS in IRETURNVALUE")
	}
	return parseClass(nodes[0])
}

// Classes extracts CLASS results (EnumerateClasses).
func (r *IMethodResponse) Classes() ([]*cim.Class, error) {
	var out []*cim.Class
	for _, k := range r.returnKids() {
		if k.name != elemClass {
			return nil, cimxmlErrorf("unexpected %s in class result", k.name)
		}
		cls, err := parseClass(k)
		if err != nil {
			return nil, err
		}
		out = append(out, cls)
	}
	return out, nil
}

// ClassNames extracts CLASSNAME results (EnumerateClassNames).
func (r *IMethodResponse) ClassNames() ([]string, error) {
	var out []string
	for _, k := range r.returnKids() {
		if k.name != elemClassName {
			return nil, cimxmlErrorf("unexpected %s in class name result", k.name)
		}
		name, ok := k.attr(attrName)
		if !ok {
			return nil, cimxmlErrorf("CLASSNAME without NAME")
		}
		out = append(out, name)
	}
	return out, nil
}

// SingleQualifierDecl extracts exactly one QUALIFIER.DECLARATION.
func (r *IMethodResponse) SingleQualifierDecl() (*cim.QualifierDeclaration, error) {
	nodes := r.returnKids()
	if len(nodes) != 1 || nodes[0].name != elemQualifierDeclaration {
		return nil, cimxmlErrorf("expected exactly one QUALIFIER.DECLARATION in IRETURNVALUE")
	}
	return parseQualifierDeclaration(nodes[0])
}

// QualifierDecls extracts QUALIFIER.DECLARATION results.
func (r *IMethodResponse) QualifierDecls() ([]*cim.QualifierDeclaration, error) {
	var out []*cim.QualifierDeclaration
	for _, k := range r.returnKids() {
		if k.name != elemQualifierDeclaration {
			return nil, cimxmlErrorf("unexpected %s in qualifier result", k.name)
		}
		d, err := parseQualifierDeclaration(k)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// OutParamString returns the text of a response-level PARAMVALUE, e.g.
// the EnumerationContext of an open/pull response.
func (r *IMethodResponse) OutParamString(name string) (string, bool) {
	for _, p := range r.outParams {
		pname, _ := p.attr(attrName)
		if !strings.EqualFold(pname, name) {
			continue
		}
		if v := p.child(elemValue); v != nil {
			return v.text, true
		}
		return "", false
	}
	return "", false
}

// OutParamBool returns a boolean response-level PARAMVALUE, e.g.
// EndOfSequence.
func (r *IMethodResponse) OutParamBool(name string) (bool, bool) {
	s, ok := r.OutParamString(name)
	if !ok {
		return false, false
	}
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRUE":
		return true, true
	case "FALSE":
		return false, true
	}
	return false, false
}

// OutParam is one named extrinsic method output parameter.
type OutParam struct {
	Name  string
	Value cim.Value
}

// MethodResponse is a decoded extrinsic method response.
type MethodResponse struct {
	MethodName  string
	CIMError    *cim.Error
	ReturnValue *cim.Value
	OutParams   []OutParam
}

// ParseMethodResponse decodes the response to an extrinsic method call
// (InvokeMethod).
func ParseMethodResponse(body []byte, methodName string) (*MethodResponse, error) {
	msg, err := parseEnvelope(body)
	if err != nil {
		return nil, err
	}
	rsp := msg.child(elemSimpleRsp)
	if rsp == nil {
		return nil, cimxmlErrorf("missing SIMPLERSP element")
	}
	mrsp := rsp.child(elemMethodResponse)
	if mrsp == nil {
		return nil, cimxmlErrorf("missing METHODRESPONSE element")
	}
	name, _ := mrsp.attr(attrName)
	if !strings.EqualFold(name, methodName) {
		return nil, cimxmlErrorf("METHODRESPONSE is for %q, expected %q", name, methodName)
	}
	out := &MethodResponse{MethodName: name}
	if errNode := mrsp.child(elemError); errNode != nil {
		out.CIMError, err = parseErrorElement(errNode)
		if err != nil {
			return nil, err
		}
		return out, nil
	}
	if rv := mrsp.child(elemReturnValue); rv != nil {
		v, err := parseParamValue(rv)
		if err != nil {
			return nil, err
		}
		out.ReturnValue = &v
	}
	for _, p := range mrsp.children(elemParamValue) {
		pname, _ := p.attr(attrName)
		v, err := parseParamValue(p)
		if err != nil {
			return nil, err
		}
		out.OutParams = append(out.OutParams, OutParam{Name: pname, Value: v})
	}
	return out, nil
}

// ExportRequest is a decoded indication export request (listener
// boundary): SIMPLEEXPREQ/EXPMETHODCALL with the indication instance in
// an EXPPARAMVALUE.
type ExportRequest struct {
	ID         string
	MethodName string
	Indication *cim.Instance
}

// ParseExportRequest decodes a SIMPLEEXPREQ envelope.
func ParseExportRequest(body []byte) (*ExportRequest, error) {
	msg, err := parseEnvelope(body)
	if err != nil {
		return nil, err
	}
	req := msg.child(elemSimpleExpReq)
	if req == nil {
		return nil, cimxmlErrorf("missing SIMPLEEXPREQ element")
	}
	call := req.child(elemExpMethodCall)
	if call == nil {
		return nil, cimxmlErrorf("missing EXPMETHODCALL element")
	}
	name, ok := call.attr(attrName)
	if !ok {
		return nil, cimxmlErrorf("EXPMETHODCALL without NAME")
	}
	id, _ := msg.attr(attrID)
	out := &ExportRequest{ID: id, MethodName: name}
	for _, p := range call.children(elemExpParamValue) {
		if instNode := p.child(elemInstance); instNode != nil {
			out.Indication, err = parseInstance(instNode)
			if err != nil {
				return nil, err
			}
			break
		}
	}
	return out, nil
}

// element parsers

func parseScalar(t cim.Type, text string) (cim.Value, error) {
	switch {
	case t == cim.TypeBoolean:
		switch strings.ToUpper(strings.TrimSpace(text)) {
		case "TRUE":
			return cim.Bool(true), nil
		case "FALSE":
			return cim.Bool(false), nil
		}
		return cim.Value{}, cimxmlErrorf("invalid boolean %q", text)
	case t == cim.TypeString:
		return cim.String(text), nil
	case t == cim.TypeChar16:
		r, size := utf8.DecodeRuneInString(text)
		if size == 0 || size != len(text) {
			return cim.Value{}, cimxmlErrorf("char16 value %q is not a single character", text)
		}
		v, err := cim.Char16(r)
		if err != nil {
			return cim.Value{}, cimxmlErrorf("invalid char16 %q", text)
		}
		return v, nil
	case t == cim.TypeDateTime:
		dt, err := cim.ParseDateTime(strings.TrimSpace(text))
		if err != nil {
			return cim.Value{}, cimxmlErrorf("invalid datetime %q: %v", text, err)
		}
		return cim.DateTimeValue(dt), nil
	case t.IsInteger():
		trimmed := strings.TrimSpace(text)
		if strings.HasPrefix(trimmed, "-") {
			i, err := strconv.ParseInt(trimmed, 10, 64)
			if err != nil {
				return cim.Value{}, cimxmlErrorf("invalid integer %q", text)
			}
			v, err := cim.NewSigned(t, i)
			if err != nil {
				return cim.Value{}, cimxmlErrorf("integer %q out of range for %s", text, t)
			}
			return v, nil
		}
		u, err := strconv.ParseUint(trimmed, 10, 64)
		if err != nil {
			return cim.Value{}, cimxmlErrorf("invalid integer %q", text)
		}
		v, err := cim.NewUnsigned(t, u)
		if err != nil {
			return cim.Value{}, cimxmlErrorf("integer %q out of range for %s", text, t)
		}
		return v, nil
	case t == cim.TypeReal32:
		f, err := strconv.ParseFloat(strings.TrimSpace(text), 32)
		if err != nil {
			return cim.Value{}, cimxmlErrorf("invalid real32 %q", text)
		}
		return cim.Real32(float32(f)), nil
	case t == cim.TypeReal64:
		f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return cim.Value{}, cimxmlErrorf("invalid real64 %q", text)
		}
		return cim.Real64(f), nil
	}
	return cim.Value{}, cimxmlErrorf("cannot parse scalar of type %s", t)
}

func parseNodeType(n *node) (cim.Type, error) {
	typeText, ok := n.attr(attrType)
	if !ok {
		typeText, ok = n.attr(attrParamType)
	}
	if !ok {
		// DTD allows untyped VALUEs; string is the safe default
		return cim.TypeString, nil
	}
	t, ok := cim.ParseType(typeText)
	if !ok {
		return cim.TypeInvalid, cimxmlErrorf("unknown TYPE %q on %s", typeText, n.name)
	}
	return t, nil
}

// parseValueArray parses a VALUE.ARRAY node into an array value.
func parseValueArray(t cim.Type, n *node) (cim.Value, error) {
	var elems []cim.Value
	for _, k := range n.kids {
		switch k.name {
		case elemValue:
			e, err := parseScalar(t, k.text)
			if err != nil {
				return cim.Value{}, err
			}
			elems = append(elems, e)
		case elemValueNull:
			elems = append(elems, cim.Null(t))
		default:
			return cim.Value{}, cimxmlErrorf("unexpected %s inside VALUE.ARRAY", k.name)
		}
	}
	return cim.Array(t, elems)
}

// parseParamValue parses RETURNVALUE / PARAMVALUE nodes with their
// PARAMTYPE attribute.
func parseParamValue(n *node) (cim.Value, error) {
	t, err := parseNodeType(n)
	if err != nil {
		return cim.Value{}, err
	}
	if v := n.child(elemValue); v != nil {
		return parseScalar(t, v.text)
	}
	if va := n.child(elemValueArray); va != nil {
		return parseValueArray(t, va)
	}
	if vr := n.child(elemValueReference); vr != nil {
		ref, err := parseValueReference(vr)
		if err != nil {
			return cim.Value{}, err
		}
		return cim.Reference(ref), nil
	}
	return cim.Null(t), nil
}

func parseValueReference(n *node) (*cim.InstanceName, error) {
	if k := n.child(elemInstancePath); k != nil {
		return parseInstancePath(k)
	}
	if k := n.child(elemLocalInstancePath); k != nil {
		return parseLocalInstancePath(k)
	}
	if k := n.child(elemInstanceName); k != nil {
		return parseInstanceName(k)
	}
	return nil, cimxmlErrorf("VALUE.REFERENCE carries no instance path")
}

func parseLocalNamespacePath(n *node) (string, error) {
	var parts []string
	for _, k := range n.children(elemNamespace) {
		name, ok := k.attr(attrName)
		if !ok {
			return "", cimxmlErrorf("NAMESPACE without NAME")
		}
		parts = append(parts, name)
	}
	return strings.Join(parts, "/"), nil
}

func parseInstancePath(n *node) (*cim.InstanceName, error) {
	nsPath := n.child(elemNamespacePath)
	nameNode := n.child(elemInstanceName)
	if nsPath == nil || nameNode == nil {
		return nil, cimxmlErrorf("INSTANCEPATH needs NAMESPACEPATH and INSTANCENAME")
	}
	name, err := parseInstanceName(nameNode)
	if err != nil {
		return nil, err
	}
	if hostNode := nsPath.child(elemHost); hostNode != nil {
		name.Host = strings.TrimSpace(hostNode.text)
	}
	if lns := nsPath.child(elemLocalNamespacePath); lns != nil {
		name.Namespace, err = parseLocalNamespacePath(lns)
		if err != nil {
			return nil, err
		}
	}
	return name, nil
}

func parseLocalInstancePath(n *node) (*cim.InstanceName, error) {
	lns := n.child(elemLocalNamespacePath)
	nameNode := n.child(elemInstanceName)
	if lns == nil || nameNode == nil {
		return nil, cimxmlErrorf("LOCALINSTANCEPATH needs LOCALNAMESPACEPATH and INSTANCENAME")
	}
	name, err := parseInstanceName(nameNode)
	if err != nil {
		return nil, err
	}
	name.Namespace, err = parseLocalNamespacePath(lns)
	if err != nil {
		return nil, err
	}
	return name, nil
}

// parseKeyValue parses a KEYVALUE with its VALUETYPE/TYPE attributes.
// Untyped numeric values become uint64 (sint64 when negative, real64
// when fractional).
func parseKeyValue(n *node) (cim.Value, error) {
	if typeText, ok := n.attr(attrType); ok {
		t, ok := cim.ParseType(typeText)
		if !ok {
			return cim.Value{}, cimxmlErrorf("unknown KEYVALUE TYPE %q", typeText)
		}
		return parseScalar(t, n.text)
	}
	valueType, _ := n.attr(attrValueType)
	switch valueType {
	case "boolean":
		return parseScalar(cim.TypeBoolean, n.text)
	case "numeric":
		text := strings.TrimSpace(n.text)
		if strings.ContainsAny(text, ".eE") {
			return parseScalar(cim.TypeReal64, text)
		}
		if strings.HasPrefix(text, "-") {
			return parseScalar(cim.TypeSint64, text)
		}
		return parseScalar(cim.TypeUint64, text)
	default:
		return cim.String(n.text), nil
	}
}

func parseInstanceName(n *node) (*cim.InstanceName, error) {
	className, ok := n.attr(attrClassName)
	if !ok {
		return nil, cimxmlErrorf("INSTANCENAME without CLASSNAME")
	}
	name := cim.NewInstanceName(className)
	for _, k := range n.children(elemKeybinding) {
		kbName, ok := k.attr(attrName)
		if !ok {
			return nil, cimxmlErrorf("KEYBINDING without NAME")
		}
		var (
			value cim.Value
			err   error
		)
		if kv := k.child(elemKeyValue); kv != nil {
			value, err = parseKeyValue(kv)
		} else if vr := k.child(elemValueReference); vr != nil {
			var ref *cim.InstanceName
			ref, err = parseValueReference(vr)
			value = cim.Reference(ref)
		} else {
			err = cimxmlErrorf("KEYBINDING %q carries neither KEYVALUE nor VALUE.REFERENCE", kbName)
		}
		if err != nil {
			return nil, err
		}
		if err := name.SetKeybinding(kbName, value); err != nil {
			return nil, cimxmlErrorf("keybinding %q: %v", kbName, err)
		}
	}
	return name, nil
}

func parseFlavors(n *node, overridable, toSubclass, toInstance, translatable *bool) error {
	read := func(name string, def bool, dst *bool) error {
		*dst = def
		if text, ok := n.attr(name); ok {
			switch strings.ToLower(text) {
			case "true":
				*dst = true
			case "false":
				*dst = false
			default:
				return cimxmlErrorf("invalid %s attribute %q", name, text)
			}
		}
		return nil
	}
	if err := read(attrOverridable, true, overridable); err != nil {
		return err
	}
	if err := read(attrToSubclass, true, toSubclass); err != nil {
		return err
	}
	if err := read(attrToInstance, false, toInstance); err != nil {
		return err
	}
	return read(attrTranslatable, false, translatable)
}

func parseQualifierNode(n *node) (*cim.Qualifier, error) {
	name, ok := n.attr(attrName)
	if !ok {
		return nil, cimxmlErrorf("QUALIFIER without NAME")
	}
	t, err := parseNodeType(n)
	if err != nil {
		return nil, err
	}
	q := cim.NewQualifier(name, cim.Null(t))
	if v := n.child(elemValue); v != nil {
		q.Value, err = parseScalar(t, v.text)
	} else if va := n.child(elemValueArray); va != nil {
		q.Value, err = parseValueArray(t, va)
	}
	if err != nil {
		return nil, err
	}
	if text, ok := n.attr(attrPropagated); ok {
		q.Propagated = strings.EqualFold(text, "true")
	}
	if err := parseFlavors(n, &q.Overridable, &q.ToSubclass, &q.ToInstance, &q.Translatable); err != nil {
		return nil, err
	}
	return q, nil
}

func parseQualifiersInto(n *node, set interface{ SetQualifier(*cim.Qualifier) }) error {
	for _, k := range n.children(elemQualifier) {
		q, err := parseQualifierNode(k)
		if err != nil {
			return err
		}
		set.SetQualifier(q)
	}
	return nil
}

// parseEmbedded parses the escaped inner XML of an embedded-object
// property value.
func parseEmbedded(kind cim.EmbeddedObjectKind, text string) (cim.Value, error) {
	root, err := parseTree([]byte(text))
	if err != nil {
		return cim.Value{}, cimxmlErrorf("embedded object is not well-formed XML")
	}
	switch root.name {
	case elemInstance:
		inst, err := parseInstance(root)
		if err != nil {
			return cim.Value{}, err
		}
		return cim.EmbeddedInstance(inst), nil
	case elemClass:
		if kind == cim.EmbeddedAsInstance {
			return cim.Value{}, cimxmlErrorf("EmbeddedObject=instance carries a CLASS")
		}
		cls, err := parseClass(root)
		if err != nil {
			return cim.Value{}, err
		}
		return cim.EmbeddedClass(cls), nil
	}
	return cim.Value{}, cimxmlErrorf("embedded object is %s, expected INSTANCE or CLASS", root.name)
}

func embeddedKind(n *node) cim.EmbeddedObjectKind {
	// both spellings occur in the wild
	text, ok := n.attr(attrEmbeddedObject)
	if !ok {
		text, ok = n.attr("EMBEDDEDOBJECT")
	}
	if !ok {
		return cim.EmbeddedNone
	}
	switch strings.ToLower(text) {
	case "instance":
		return cim.EmbeddedAsInstance
	case "object":
		return cim.EmbeddedAsObject
	}
	return cim.EmbeddedNone
}

func parsePropertyCommon(n *node, p *cim.Property) {
	if co, ok := n.attr(attrClassOrigin); ok {
		p.ClassOrigin = co
	}
	if text, ok := n.attr(attrPropagated); ok {
		p.Propagated = strings.EqualFold(text, "true")
	}
}

func parsePropertyNode(n *node) (*cim.Property, error) {
	name, ok := n.attr(attrName)
	if !ok {
		return nil, cimxmlErrorf("%s without NAME", n.name)
	}

	switch n.name {
	case elemProperty:
		t, err := parseNodeType(n)
		if err != nil {
			return nil, err
		}
		p := cim.NewProperty(name, cim.Null(t))
		p.EmbeddedObject = embeddedKind(n)
		if v := n.child(elemValue); v != nil {
			if p.EmbeddedObject != cim.EmbeddedNone {
				p.Value, err = parseEmbedded(p.EmbeddedObject, v.text)
			} else {
				p.Value, err = parseScalar(t, v.text)
			}
			if err != nil {
				return nil, err
			}
		}
		parsePropertyCommon(n, p)
		if err := parseQualifiersInto(n, p); err != nil {
			return nil, err
		}
		return p, nil

	case elemPropertyArray:
		t, err := parseNodeType(n)
		if err != nil {
			return nil, err
		}
		p := cim.NewProperty(name, cim.NullArray(t))
		p.EmbeddedObject = embeddedKind(n)
		if sizeText, ok := n.attr(attrArraySize); ok {
			size, err := strconv.Atoi(sizeText)
			if err != nil {
				return nil, cimxmlErrorf("invalid ARRAYSIZE %q", sizeText)
			}
			p.ArraySize = size
		}
		if va := n.child(elemValueArray); va != nil {
			p.Value, err = parseValueArray(t, va)
			if err != nil {
				return nil, err
			}
		}
		parsePropertyCommon(n, p)
		if err := parseQualifiersInto(n, p); err != nil {
			return nil, err
		}
		return p, nil

	case elemPropertyReference:
		p := cim.NewProperty(name, cim.Null(cim.TypeReference))
		if rc, ok := n.attr(attrReferenceClass); ok {
			p.ReferenceClass = rc
		}
		if vr := n.child(elemValueReference); vr != nil {
			ref, err := parseValueReference(vr)
			if err != nil {
				return nil, err
			}
			p.Value = cim.Reference(ref)
		}
		parsePropertyCommon(n, p)
		if err := parseQualifiersInto(n, p); err != nil {
			return nil, err
		}
		return p, nil
	}
	return nil, cimxmlErrorf("unexpected property element %s", n.name)
}

func parseInstance(n *node) (*cim.Instance, error) {
	className, ok := n.attr(attrClassName)
	if !ok {
		return nil, cimxmlErrorf("INSTANCE without CLASSNAME")
	}
	inst := cim.NewInstance(className)
	if err := parseQualifiersInto(n, inst); err != nil {
		return nil, err
	}
	for _, k := range n.kids {
		switch k.name {
		case elemProperty, elemPropertyArray, elemPropertyReference:
			p, err := parsePropertyNode(k)
			if err != nil {
				return nil, err
			}
			if err := inst.SetProperty(p); err != nil {
				return nil, cimxmlErrorf("property %q: %v", p.Name, err)
			}
		case elemQualifier:
			// handled above
		default:
			return nil, cimxmlErrorf("unexpected %s inside INSTANCE", k.name)
		}
	}
	return inst, nil
}

func parseParameterNode(n *node) (*cim.Parameter, error) {
	name, ok := n.attr(attrName)
	if !ok {
		return nil, cimxmlErrorf("%s without NAME", n.name)
	}
	var p *cim.Parameter
	switch n.name {
	case elemParameter, elemParameterArray:
		t, err := parseNodeType(n)
		if err != nil {
			return nil, err
		}
		p = cim.NewParameter(name, t)
		p.IsArray = n.name == elemParameterArray
	case elemParameterReference, elemParameterRefArray:
		p = cim.NewParameter(name, cim.TypeReference)
		p.IsArray = n.name == elemParameterRefArray
		if rc, ok := n.attr(attrReferenceClass); ok {
			p.ReferenceClass = rc
		}
	default:
		return nil, cimxmlErrorf("unexpected parameter element %s", n.name)
	}
	if sizeText, ok := n.attr(attrArraySize); ok {
		size, err := strconv.Atoi(sizeText)
		if err != nil {
			return nil, cimxmlErrorf("invalid ARRAYSIZE %q", sizeText)
		}
		p.ArraySize = size
	}
	if err := parseQualifiersInto(n, p); err != nil {
		return nil, err
	}
	return p, nil
}

func parseMethodNode(n *node) (*cim.Method, error) {
	name, ok := n.attr(attrName)
	if !ok {
		return nil, cimxmlErrorf("METHOD without NAME")
	}
	t, err := parseNodeType(n)
	if err != nil {
		return nil, err
	}
	m := cim.NewMethod(name, t)
	if co, ok := n.attr(attrClassOrigin); ok {
		m.ClassOrigin = co
	}
	if text, ok := n.attr(attrPropagated); ok {
		m.Propagated = strings.EqualFold(text, "true")
	}
	if err := parseQualifiersInto(n, m); err != nil {
		return nil, err
	}
	for _, k := range n.kids {
		switch k.name {
		case elemParameter, elemParameterArray, elemParameterReference, elemParameterRefArray:
			p, err := parseParameterNode(k)
			if err != nil {
				return nil, err
			}
			m.SetParameter(p)
		case elemQualifier:
		default:
			return nil, cimxmlErrorf("unexpected %s inside METHOD", k.name)
		}
	}
	return m, nil
}

func parseClass(n *node) (*cim.Class, error) {
	className, ok := n.attr(attrName)
	if !ok {
		return nil, cimxmlErrorf("CLASS without NAME")
	}
	cls := cim.NewClass(className)
	if sc, ok := n.attr(attrSuperClass); ok {
		cls.SuperClass = sc
	}
	if err := parseQualifiersInto(n, cls); err != nil {
		return nil, err
	}
	for _, k := range n.kids {
		switch k.name {
		case elemProperty, elemPropertyArray, elemPropertyReference:
			p, err := parsePropertyNode(k)
			if err != nil {
				return nil, err
			}
			if err := cls.SetProperty(p); err != nil {
				return nil, cimxmlErrorf("property %q: %v", p.Name, err)
			}
		case elemMethod:
			m, err := parseMethodNode(k)
			if err != nil {
				return nil, err
			}
			cls.SetMethod(m)
		case elemQualifier:
		default:
			return nil, cimxmlErrorf("unexpected %s inside CLASS", k.name)
		}
	}
	return cls, nil
}

func parseQualifierDeclaration(n *node) (*cim.QualifierDeclaration, error) {
	name, ok := n.attr(attrName)
	if !ok {
		return nil, cimxmlErrorf("QUALIFIER.DECLARATION without NAME")
	}
	t, err := parseNodeType(n)
	if err != nil {
		return nil, err
	}
	d := &cim.QualifierDeclaration{Name: name, Type: t, Value: cim.Null(t)}
	if text, ok := n.attr(attrIsArray); ok {
		d.IsArray = strings.EqualFold(text, "true")
	}
	if d.IsArray {
		d.Value = cim.NullArray(t)
	}
	if sizeText, ok := n.attr(attrArraySize); ok {
		size, err := strconv.Atoi(sizeText)
		if err != nil {
			return nil, cimxmlErrorf("invalid ARRAYSIZE %q", sizeText)
		}
		d.ArraySize = size
	}
	if err := parseFlavors(n, &d.Overridable, &d.ToSubclass, &d.ToInstance, &d.Translatable); err != nil {
		return nil, err
	}
	if scopeNode := n.child(elemScope); scopeNode != nil {
		d.Scopes = parseScope(scopeNode)
	}
	if v := n.child(elemValue); v != nil {
		d.Value, err = parseScalar(t, v.text)
	} else if va := n.child(elemValueArray); va != nil {
		d.Value, err = parseValueArray(t, va)
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func parseScope(n *node) cim.Scope {
	var s cim.Scope
	add := func(name string, bit cim.Scope) {
		if text, ok := n.attr(name); ok && strings.EqualFold(text, "true") {
			s |= bit
		}
	}
	add(attrScopeClass, cim.ScopeClass)
	add(attrScopeAssociation, cim.ScopeAssociation)
	add(attrScopeIndication, cim.ScopeIndication)
	add(attrScopeProperty, cim.ScopeProperty)
	add(attrScopeReference, cim.ScopeReference)
	add(attrScopeMethod, cim.ScopeMethod)
	add(attrScopeParameter, cim.ScopeParameter)
	return s
}
