package wbem

import (
	"context"
	"errors"
	"fmt"

	"github.com/slonegd/gowbem/cim"
	"github.com/slonegd/gowbem/cimxml"
)

// Errors of the operation layer.
var (
	ErrMissingPath = errors.New("instance carries no path")
)

// ObjectName targets either an instance (path) or a class (name) for the
// association, reference and extrinsic method operations.
type ObjectName struct {
	InstanceName *cim.InstanceName
	ClassName    string
}

func (o ObjectName) param(name string) cimxml.Param {
	return cimxml.ObjectNameParam(name, o.InstanceName, o.ClassName)
}

// namespaceOf returns the namespace carried by the target, "" when none.
func (o ObjectName) namespaceOf() string {
	if o.InstanceName != nil {
		return o.InstanceName.Namespace
	}
	return ""
}

// InstanceOptions are the optional flags of the instance read
// operations. Nil pointers mean server defaults.
type InstanceOptions struct {
	LocalOnly          *bool
	DeepInheritance    *bool
	IncludeQualifiers  *bool
	IncludeClassOrigin *bool
	PropertyList       []string
}

func (o *InstanceOptions) params() []cimxml.Param {
	if o == nil {
		return nil
	}
	var params []cimxml.Param
	appendBool := func(name string, v *bool) {
		if v != nil {
			params = append(params, cimxml.BoolParam(name, *v))
		}
	}
	appendBool("LocalOnly", o.LocalOnly)
	appendBool("DeepInheritance", o.DeepInheritance)
	appendBool("IncludeQualifiers", o.IncludeQualifiers)
	appendBool("IncludeClassOrigin", o.IncludeClassOrigin)
	if o.PropertyList != nil {
		params = append(params, cimxml.StringArrayParam("PropertyList", o.PropertyList))
	}
	return params
}

// Bool is a shorthand for taking the address of a literal in option
// structs.
func Bool(v bool) *bool { return &v }

// GetInstance retrieves one instance by path. The namespace comes from
// the path when set, else the connection default. The returned
// instance's Path is populated from the request target.
func (c *Connection) GetInstance(ctx context.Context, name *cim.InstanceName, opts *InstanceOptions) (*cim.Instance, error) {
	if name == nil {
		return nil, fmt.Errorf("GetInstance: %w", ErrMissingPath)
	}
	ns := c.resolveNamespace(name.Namespace)
	params := append([]cimxml.Param{cimxml.InstanceNameParam("InstanceName", name)}, opts.params()...)

	rsp, err := c.invoke(ctx, "GetInstance", ns, params)
	if err != nil {
		return nil, err
	}
	inst, err := rsp.SingleInstance()
	if err != nil {
		return nil, fmt.Errorf("GetInstance: %w", err)
	}
	path := name.Clone()
	path.Namespace = ns
	inst.Path = path
	return inst, nil
}

// EnumerateInstances returns the instances of a class, in server order.
func (c *Connection) EnumerateInstances(ctx context.Context, className, namespace string, opts *InstanceOptions) ([]*cim.Instance, error) {
	ns := c.resolveNamespace(namespace)
	params := append([]cimxml.Param{cimxml.ClassNameParam("ClassName", className)}, opts.params()...)

	rsp, err := c.invoke(ctx, "EnumerateInstances", ns, params)
	if err != nil {
		return nil, err
	}
	instances, err := rsp.NamedInstances()
	if err != nil {
		return nil, fmt.Errorf("EnumerateInstances: %w", err)
	}
	for _, inst := range instances {
		if inst.Path != nil && inst.Path.Namespace == "" {
			inst.Path.Namespace = ns
		}
	}
	return instances, nil
}

// EnumerateInstanceNames returns the instance paths of a class.
func (c *Connection) EnumerateInstanceNames(ctx context.Context, className, namespace string) ([]*cim.InstanceName, error) {
	ns := c.resolveNamespace(namespace)
	rsp, err := c.invoke(ctx, "EnumerateInstanceNames", ns, []cimxml.Param{
		cimxml.ClassNameParam("ClassName", className),
	})
	if err != nil {
		return nil, err
	}
	paths, err := rsp.InstancePaths()
	if err != nil {
		return nil, fmt.Errorf("EnumerateInstanceNames: %w", err)
	}
	for _, p := range paths {
		if p.Namespace == "" {
			p.Namespace = ns
		}
	}
	return paths, nil
}

// CreateInstance creates an instance and returns the server-assigned
// path. Any caller-supplied path on the instance contributes only its
// namespace.
func (c *Connection) CreateInstance(ctx context.Context, inst *cim.Instance, namespace string) (*cim.InstanceName, error) {
	ns := namespace
	if ns == "" && inst.Path != nil {
		ns = inst.Path.Namespace
	}
	ns = c.resolveNamespace(ns)

	sent := inst
	if inst.Path != nil {
		sent = inst.Clone()
		sent.Path = nil
	}

	rsp, err := c.invoke(ctx, "CreateInstance", ns, []cimxml.Param{
		cimxml.InstanceParam("NewInstance", sent),
	})
	if err != nil {
		return nil, err
	}
	name, err := rsp.SingleInstanceName()
	if err != nil {
		return nil, fmt.Errorf("CreateInstance: %w", err)
	}
	name.Namespace = ns
	return name, nil
}

// ModifyInstanceOptions are the optional flags of ModifyInstance.
type ModifyInstanceOptions struct {
	IncludeQualifiers *bool
	PropertyList      []string
}

// ModifyInstance replaces the named properties of an existing instance.
// The instance must carry a path.
func (c *Connection) ModifyInstance(ctx context.Context, inst *cim.Instance, opts *ModifyInstanceOptions) error {
	if inst.Path == nil {
		return fmt.Errorf("ModifyInstance: %w", ErrMissingPath)
	}
	ns := c.resolveNamespace(inst.Path.Namespace)

	params := []cimxml.Param{cimxml.NamedInstanceParam("ModifiedInstance", inst)}
	if opts != nil {
		if opts.IncludeQualifiers != nil {
			params = append(params, cimxml.BoolParam("IncludeQualifiers", *opts.IncludeQualifiers))
		}
		if opts.PropertyList != nil {
			params = append(params, cimxml.StringArrayParam("PropertyList", opts.PropertyList))
		}
	}
	_, err := c.invoke(ctx, "ModifyInstance", ns, params)
	return err
}

// DeleteInstance removes the instance at the given path.
func (c *Connection) DeleteInstance(ctx context.Context, name *cim.InstanceName) error {
	if name == nil {
		return fmt.Errorf("DeleteInstance: %w", ErrMissingPath)
	}
	ns := c.resolveNamespace(name.Namespace)
	_, err := c.invoke(ctx, "DeleteInstance", ns, []cimxml.Param{
		cimxml.InstanceNameParam("InstanceName", name),
	})
	return err
}

// AssociationOptions are the optional filters of the association and
// reference operations. Role/ResultRole and AssocClass/ResultClass
// filter per DSP0200; the Include* flags and PropertyList apply to the
// object-returning variants only.
type AssociationOptions struct {
	AssocClass         string
	ResultClass        string
	Role               string
	ResultRole         string
	IncludeQualifiers  *bool
	IncludeClassOrigin *bool
	PropertyList       []string
}

func (o *AssociationOptions) params(withObjects bool) []cimxml.Param {
	if o == nil {
		return nil
	}
	var params []cimxml.Param
	appendString := func(name, v string) {
		if v != "" {
			params = append(params, cimxml.ClassNameParam(name, v))
		}
	}
	appendRole := func(name, v string) {
		if v != "" {
			params = append(params, cimxml.StringParam(name, v))
		}
	}
	appendString("AssocClass", o.AssocClass)
	appendString("ResultClass", o.ResultClass)
	appendRole("Role", o.Role)
	appendRole("ResultRole", o.ResultRole)
	if withObjects {
		if o.IncludeQualifiers != nil {
			params = append(params, cimxml.BoolParam("IncludeQualifiers", *o.IncludeQualifiers))
		}
		if o.IncludeClassOrigin != nil {
			params = append(params, cimxml.BoolParam("IncludeClassOrigin", *o.IncludeClassOrigin))
		}
		if o.PropertyList != nil {
			params = append(params, cimxml.StringArrayParam("PropertyList", o.PropertyList))
		}
	}
	return params
}

// Associators returns the objects associated with the target: instances
// for an instance target, classes for a class target.
func (c *Connection) Associators(ctx context.Context, object ObjectName, namespace string, opts *AssociationOptions) ([]*cim.Instance, []*cim.Class, error) {
	return c.association(ctx, "Associators", object, namespace, opts)
}

// References returns the association objects referring to the target.
func (c *Connection) References(ctx context.Context, object ObjectName, namespace string, opts *AssociationOptions) ([]*cim.Instance, []*cim.Class, error) {
	return c.association(ctx, "References", object, namespace, opts)
}

func (c *Connection) association(ctx context.Context, op string, object ObjectName, namespace string, opts *AssociationOptions) ([]*cim.Instance, []*cim.Class, error) {
	ns := namespace
	if ns == "" {
		ns = object.namespaceOf()
	}
	ns = c.resolveNamespace(ns)

	params := append([]cimxml.Param{object.param("ObjectName")}, opts.params(true)...)
	rsp, err := c.invoke(ctx, op, ns, params)
	if err != nil {
		return nil, nil, err
	}
	instances, classes, err := rsp.Objects()
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	return instances, classes, nil
}

// AssociatorNames returns the paths of the objects associated with the
// target.
func (c *Connection) AssociatorNames(ctx context.Context, object ObjectName, namespace string, opts *AssociationOptions) ([]*cim.InstanceName, error) {
	return c.associationNames(ctx, "AssociatorNames", object, namespace, opts)
}

// ReferenceNames returns the paths of the association objects referring
// to the target.
func (c *Connection) ReferenceNames(ctx context.Context, object ObjectName, namespace string, opts *AssociationOptions) ([]*cim.InstanceName, error) {
	return c.associationNames(ctx, "ReferenceNames", object, namespace, opts)
}

func (c *Connection) associationNames(ctx context.Context, op string, object ObjectName, namespace string, opts *AssociationOptions) ([]*cim.InstanceName, error) {
	ns := namespace
	if ns == "" {
		ns = object.namespaceOf()
	}
	ns = c.resolveNamespace(ns)

	params := append([]cimxml.Param{object.param("ObjectName")}, opts.params(false)...)
	rsp, err := c.invoke(ctx, op, ns, params)
	if err != nil {
		return nil, err
	}
	paths, err := rsp.InstancePaths()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return paths, nil
}

// ExecQuery runs a query and returns the matching instances. Results
// carry no paths.
func (c *Connection) ExecQuery(ctx context.Context, queryLanguage, query, namespace string) ([]*cim.Instance, error) {
	ns := c.resolveNamespace(namespace)
	rsp, err := c.invoke(ctx, "ExecQuery", ns, []cimxml.Param{
		cimxml.StringParam("QueryLanguage", queryLanguage),
		cimxml.StringParam("Query", query),
	})
	if err != nil {
		return nil, err
	}
	instances, err := rsp.PlainInstances()
	if err != nil {
		return nil, fmt.Errorf("ExecQuery: %w", err)
	}
	return instances, nil
}

// Param is one named method parameter.
type Param struct {
	Name  string
	Value cim.Value
}

// InvokeMethod calls an extrinsic method on the target object and
// returns the method's return value and output parameters.
func (c *Connection) InvokeMethod(ctx context.Context, methodName string, object ObjectName, in []Param) (cim.Value, []Param, error) {
	ns := c.resolveNamespace(object.namespaceOf())

	params := make([]cimxml.Param, len(in))
	for i, p := range in {
		params[i] = cimxml.MethodParam(p.Name, p.Value)
	}

	rsp, err := c.invokeExtrinsic(ctx, methodName, ns, object.InstanceName, object.ClassName, params)
	if err != nil {
		return cim.Value{}, nil, err
	}

	var ret cim.Value
	if rsp.ReturnValue != nil {
		ret = *rsp.ReturnValue
	}
	out := make([]Param, len(rsp.OutParams))
	for i, p := range rsp.OutParams {
		out[i] = Param{Name: p.Name, Value: p.Value}
	}
	return ret, out, nil
}
