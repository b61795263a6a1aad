package wbem

import (
	"context"
	"fmt"

	"github.com/slonegd/gowbem/cim"
	"github.com/slonegd/gowbem/cimxml"
)

// ClassOptions are the optional flags of the class read operations.
// Nil pointers mean server defaults.
type ClassOptions struct {
	LocalOnly          *bool
	IncludeQualifiers  *bool
	IncludeClassOrigin *bool
	PropertyList       []string
}

func (o *ClassOptions) params() []cimxml.Param {
	if o == nil {
		return nil
	}
	var params []cimxml.Param
	if o.LocalOnly != nil {
		params = append(params, cimxml.BoolParam("LocalOnly", *o.LocalOnly))
	}
	if o.IncludeQualifiers != nil {
		params = append(params, cimxml.BoolParam("IncludeQualifiers", *o.IncludeQualifiers))
	}
	if o.IncludeClassOrigin != nil {
		params = append(params, cimxml.BoolParam("IncludeClassOrigin", *o.IncludeClassOrigin))
	}
	if o.PropertyList != nil {
		params = append(params, cimxml.StringArrayParam("PropertyList", o.PropertyList))
	}
	return params
}

// GetClass retrieves one class definition.
func (c *Connection) GetClass(ctx context.Context, className, namespace string, opts *ClassOptions) (*cim.Class, error) {
	ns := c.resolveNamespace(namespace)
	params := append([]cimxml.Param{cimxml.ClassNameParam("ClassName", className)}, opts.params()...)

	rsp, err := c.invoke(ctx, "GetClass", ns, params)
	if err != nil {
		return nil, err
	}
	class, err := rsp.SingleClass()
	if err != nil {
		return nil, fmt.Errorf("GetClass: %w", err)
	}
	return class, nil
}

// EnumerateClasses returns class definitions below className, or the
// top-level classes when className is empty.
func (c *Connection) EnumerateClasses(ctx context.Context, className, namespace string, deepInheritance bool, opts *ClassOptions) ([]*cim.Class, error) {
	ns := c.resolveNamespace(namespace)
	var params []cimxml.Param
	if className != "" {
		params = append(params, cimxml.ClassNameParam("ClassName", className))
	}
	params = append(params, cimxml.BoolParam("DeepInheritance", deepInheritance))
	params = append(params, opts.params()...)

	rsp, err := c.invoke(ctx, "EnumerateClasses", ns, params)
	if err != nil {
		return nil, err
	}
	classes, err := rsp.Classes()
	if err != nil {
		return nil, fmt.Errorf("EnumerateClasses: %w", err)
	}
	return classes, nil
}

// EnumerateClassNames returns the class names below className, or the
// top-level names when className is empty.
func (c *Connection) EnumerateClassNames(ctx context.Context, className, namespace string, deepInheritance bool) ([]string, error) {
	ns := c.resolveNamespace(namespace)
	var params []cimxml.Param
	if className != "" {
		params = append(params, cimxml.ClassNameParam("ClassName", className))
	}
	params = append(params, cimxml.BoolParam("DeepInheritance", deepInheritance))

	rsp, err := c.invoke(ctx, "EnumerateClassNames", ns, params)
	if err != nil {
		return nil, err
	}
	names, err := rsp.ClassNames()
	if err != nil {
		return nil, fmt.Errorf("EnumerateClassNames: %w", err)
	}
	return names, nil
}

// CreateClass registers a new class definition.
func (c *Connection) CreateClass(ctx context.Context, class *cim.Class, namespace string) error {
	ns := c.resolveNamespace(namespace)
	_, err := c.invoke(ctx, "CreateClass", ns, []cimxml.Param{
		cimxml.ClassParam("NewClass", class),
	})
	return err
}

// ModifyClass replaces an existing class definition.
func (c *Connection) ModifyClass(ctx context.Context, class *cim.Class, namespace string) error {
	ns := c.resolveNamespace(namespace)
	_, err := c.invoke(ctx, "ModifyClass", ns, []cimxml.Param{
		cimxml.ClassParam("ModifiedClass", class),
	})
	return err
}

// DeleteClass removes a class definition.
func (c *Connection) DeleteClass(ctx context.Context, className, namespace string) error {
	ns := c.resolveNamespace(namespace)
	_, err := c.invoke(ctx, "DeleteClass", ns, []cimxml.Param{
		cimxml.ClassNameParam("ClassName", className),
	})
	return err
}

// GetQualifier retrieves one qualifier declaration.
func (c *Connection) GetQualifier(ctx context.Context, qualifierName, namespace string) (*cim.QualifierDeclaration, error) {
	ns := c.resolveNamespace(namespace)
	rsp, err := c.invoke(ctx, "GetQualifier", ns, []cimxml.Param{
		cimxml.StringParam("QualifierName", qualifierName),
	})
	if err != nil {
		return nil, err
	}
	decl, err := rsp.SingleQualifierDecl()
	if err != nil {
		return nil, fmt.Errorf("GetQualifier: %w", err)
	}
	return decl, nil
}

// SetQualifier creates or replaces a qualifier declaration.
func (c *Connection) SetQualifier(ctx context.Context, decl *cim.QualifierDeclaration, namespace string) error {
	ns := c.resolveNamespace(namespace)
	_, err := c.invoke(ctx, "SetQualifier", ns, []cimxml.Param{
		cimxml.QualifierDeclParam("QualifierDeclaration", decl),
	})
	return err
}

// DeleteQualifier removes a qualifier declaration.
func (c *Connection) DeleteQualifier(ctx context.Context, qualifierName, namespace string) error {
	ns := c.resolveNamespace(namespace)
	_, err := c.invoke(ctx, "DeleteQualifier", ns, []cimxml.Param{
		cimxml.StringParam("QualifierName", qualifierName),
	})
	return err
}

// EnumerateQualifiers returns all qualifier declarations of the
// namespace.
func (c *Connection) EnumerateQualifiers(ctx context.Context, namespace string) ([]*cim.QualifierDeclaration, error) {
	ns := c.resolveNamespace(namespace)
	rsp, err := c.invoke(ctx, "EnumerateQualifiers", ns, nil)
	if err != nil {
		return nil, err
	}
	decls, err := rsp.QualifierDecls()
	if err != nil {
		return nil, fmt.Errorf("EnumerateQualifiers: %w", err)
	}
	return decls, nil
}
