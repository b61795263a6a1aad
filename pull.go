package wbem

import (
	"context"
	"errors"
	"fmt"

	"github.com/slonegd/gowbem/cim"
	"github.com/slonegd/gowbem/cimxml"
)

// ErrContinueOnError is returned when an open call asks for
// ContinueOnError=true: the client does not track server capability
// advertisement, so the flag is rejected before the wire.
var ErrContinueOnError = errors.New("ContinueOnError is not supported")

// OpenOptions are the optional parameters of the Open* pull calls.
type OpenOptions struct {
	FilterQueryLanguage string
	FilterQuery         string

	// OperationTimeout is the server-side inter-request timeout in
	// seconds. Nil leaves the server default.
	OperationTimeout *uint32

	ContinueOnError *bool

	// MaxObjectCount bounds the objects returned by the open call
	// itself. Zero asks for an empty first batch.
	MaxObjectCount uint32
}

func (o *OpenOptions) params() ([]cimxml.Param, error) {
	params := []cimxml.Param{}
	if o == nil {
		return append(params, cimxml.Uint32Param("MaxObjectCount", 0)), nil
	}
	if o.ContinueOnError != nil {
		if *o.ContinueOnError {
			return nil, ErrContinueOnError
		}
		params = append(params, cimxml.BoolParam("ContinueOnError", false))
	}
	if o.FilterQuery != "" || o.FilterQueryLanguage != "" {
		params = append(params,
			cimxml.StringParam("FilterQueryLanguage", o.FilterQueryLanguage),
			cimxml.StringParam("FilterQuery", o.FilterQuery))
	}
	if o.OperationTimeout != nil {
		params = append(params, cimxml.Uint32Param("OperationTimeout", *o.OperationTimeout))
	}
	return append(params, cimxml.Uint32Param("MaxObjectCount", o.MaxObjectCount)), nil
}

// Batch is one chunk of an open enumeration. Context identifies the
// server-side session while EndOfSequence is false; after the final
// batch the context is invalid.
type Batch struct {
	Instances []*cim.Instance
	Paths     []*cim.InstanceName

	Context       string
	EndOfSequence bool
}

// batchFrom extracts the enumeration out-parameters common to all open
// and pull responses.
func batchFrom(op string, rsp *cimxml.IMethodResponse) (Batch, error) {
	var b Batch
	eos, ok := rsp.OutParamBool("EndOfSequence")
	if !ok {
		return b, fmt.Errorf("%s: missing EndOfSequence", op)
	}
	b.EndOfSequence = eos
	b.Context, ok = rsp.OutParamString("EnumerationContext")
	if !ok && !eos {
		return b, fmt.Errorf("%s: missing EnumerationContext", op)
	}
	return b, nil
}

func (c *Connection) openInstances(ctx context.Context, op string, lead []cimxml.Param, namespace string, opts *OpenOptions) (Batch, error) {
	optParams, err := opts.params()
	if err != nil {
		return Batch{}, fmt.Errorf("%s: %w", op, err)
	}
	rsp, err := c.invoke(ctx, op, namespace, append(lead, optParams...))
	if err != nil {
		return Batch{}, err
	}
	batch, err := batchFrom(op, rsp)
	if err != nil {
		return Batch{}, err
	}
	batch.Instances, err = rsp.InstancesWithPath()
	if err != nil {
		return Batch{}, fmt.Errorf("%s: %w", op, err)
	}
	fillNamespace(batch.Instances, namespace)
	return batch, nil
}

func (c *Connection) openPaths(ctx context.Context, op string, lead []cimxml.Param, namespace string, opts *OpenOptions) (Batch, error) {
	optParams, err := opts.params()
	if err != nil {
		return Batch{}, fmt.Errorf("%s: %w", op, err)
	}
	rsp, err := c.invoke(ctx, op, namespace, append(lead, optParams...))
	if err != nil {
		return Batch{}, err
	}
	batch, err := batchFrom(op, rsp)
	if err != nil {
		return Batch{}, err
	}
	batch.Paths, err = rsp.InstancePaths()
	if err != nil {
		return Batch{}, fmt.Errorf("%s: %w", op, err)
	}
	for _, p := range batch.Paths {
		if p.Namespace == "" {
			p.Namespace = namespace
		}
	}
	return batch, nil
}

func fillNamespace(instances []*cim.Instance, ns string) {
	for _, inst := range instances {
		if inst.Path != nil && inst.Path.Namespace == "" {
			inst.Path.Namespace = ns
		}
	}
}

// OpenEnumerateInstances starts a pull enumeration of the instances of
// a class.
func (c *Connection) OpenEnumerateInstances(ctx context.Context, className, namespace string, opts *OpenOptions) (Batch, error) {
	ns := c.resolveNamespace(namespace)
	return c.openInstances(ctx, "OpenEnumerateInstances", []cimxml.Param{
		cimxml.ClassNameParam("ClassName", className),
	}, ns, opts)
}

// OpenEnumerateInstancePaths starts a pull enumeration of the instance
// paths of a class.
func (c *Connection) OpenEnumerateInstancePaths(ctx context.Context, className, namespace string, opts *OpenOptions) (Batch, error) {
	ns := c.resolveNamespace(namespace)
	return c.openPaths(ctx, "OpenEnumerateInstancePaths", []cimxml.Param{
		cimxml.ClassNameParam("ClassName", className),
	}, ns, opts)
}

func associationLead(object ObjectName, assoc *AssociationOptions) []cimxml.Param {
	lead := []cimxml.Param{cimxml.InstanceNameParam("InstanceName", object.InstanceName)}
	return append(lead, assoc.params(false)...)
}

// OpenAssociatorInstances starts a pull enumeration of the instances
// associated with an instance.
func (c *Connection) OpenAssociatorInstances(ctx context.Context, object ObjectName, namespace string, assoc *AssociationOptions, opts *OpenOptions) (Batch, error) {
	ns := c.resolveNamespace(firstNonEmpty(namespace, object.namespaceOf()))
	return c.openInstances(ctx, "OpenAssociatorInstances", associationLead(object, assoc), ns, opts)
}

// OpenAssociatorInstancePaths starts a pull enumeration of the paths of
// the instances associated with an instance.
func (c *Connection) OpenAssociatorInstancePaths(ctx context.Context, object ObjectName, namespace string, assoc *AssociationOptions, opts *OpenOptions) (Batch, error) {
	ns := c.resolveNamespace(firstNonEmpty(namespace, object.namespaceOf()))
	return c.openPaths(ctx, "OpenAssociatorInstancePaths", associationLead(object, assoc), ns, opts)
}

// OpenReferenceInstances starts a pull enumeration of the association
// instances referring to an instance.
func (c *Connection) OpenReferenceInstances(ctx context.Context, object ObjectName, namespace string, assoc *AssociationOptions, opts *OpenOptions) (Batch, error) {
	ns := c.resolveNamespace(firstNonEmpty(namespace, object.namespaceOf()))
	return c.openInstances(ctx, "OpenReferenceInstances", associationLead(object, assoc), ns, opts)
}

// OpenReferenceInstancePaths starts a pull enumeration of the paths of
// the association instances referring to an instance.
func (c *Connection) OpenReferenceInstancePaths(ctx context.Context, object ObjectName, namespace string, assoc *AssociationOptions, opts *OpenOptions) (Batch, error) {
	ns := c.resolveNamespace(firstNonEmpty(namespace, object.namespaceOf()))
	return c.openPaths(ctx, "OpenReferenceInstancePaths", associationLead(object, assoc), ns, opts)
}

// OpenQueryInstances starts a pull enumeration over a query result.
// Query results carry no paths.
func (c *Connection) OpenQueryInstances(ctx context.Context, queryLanguage, query, namespace string, opts *OpenOptions) (Batch, error) {
	const op = "OpenQueryInstances"
	ns := c.resolveNamespace(namespace)

	params := []cimxml.Param{
		cimxml.StringParam("FilterQueryLanguage", queryLanguage),
		cimxml.StringParam("FilterQuery", query),
	}
	maxCount := uint32(0)
	if opts != nil {
		if opts.ContinueOnError != nil && *opts.ContinueOnError {
			return Batch{}, fmt.Errorf("%s: %w", op, ErrContinueOnError)
		}
		if opts.OperationTimeout != nil {
			params = append(params, cimxml.Uint32Param("OperationTimeout", *opts.OperationTimeout))
		}
		maxCount = opts.MaxObjectCount
	}
	params = append(params, cimxml.Uint32Param("MaxObjectCount", maxCount))

	rsp, err := c.invoke(ctx, op, ns, params)
	if err != nil {
		return Batch{}, err
	}
	batch, err := batchFrom(op, rsp)
	if err != nil {
		return Batch{}, err
	}
	batch.Instances, err = rsp.PlainInstances()
	if err != nil {
		return Batch{}, fmt.Errorf("%s: %w", op, err)
	}
	return batch, nil
}

// PullInstancesWithPath continues an enumeration opened by one of the
// instance-returning open calls.
func (c *Connection) PullInstancesWithPath(ctx context.Context, enumContext, namespace string, maxObjectCount uint32) (Batch, error) {
	const op = "PullInstancesWithPath"
	ns := c.resolveNamespace(namespace)
	rsp, err := c.invoke(ctx, op, ns, pullParams(enumContext, maxObjectCount))
	if err != nil {
		return Batch{}, err
	}
	batch, err := batchFrom(op, rsp)
	if err != nil {
		return Batch{}, err
	}
	batch.Instances, err = rsp.InstancesWithPath()
	if err != nil {
		return Batch{}, fmt.Errorf("%s: %w", op, err)
	}
	fillNamespace(batch.Instances, ns)
	return batch, nil
}

// PullInstancePaths continues an enumeration opened by one of the
// path-returning open calls.
func (c *Connection) PullInstancePaths(ctx context.Context, enumContext, namespace string, maxObjectCount uint32) (Batch, error) {
	const op = "PullInstancePaths"
	ns := c.resolveNamespace(namespace)
	rsp, err := c.invoke(ctx, op, ns, pullParams(enumContext, maxObjectCount))
	if err != nil {
		return Batch{}, err
	}
	batch, err := batchFrom(op, rsp)
	if err != nil {
		return Batch{}, err
	}
	batch.Paths, err = rsp.InstancePaths()
	if err != nil {
		return Batch{}, fmt.Errorf("%s: %w", op, err)
	}
	for _, p := range batch.Paths {
		if p.Namespace == "" {
			p.Namespace = ns
		}
	}
	return batch, nil
}

// PullInstances continues an enumeration opened by OpenQueryInstances.
func (c *Connection) PullInstances(ctx context.Context, enumContext, namespace string, maxObjectCount uint32) (Batch, error) {
	const op = "PullInstances"
	ns := c.resolveNamespace(namespace)
	rsp, err := c.invoke(ctx, op, ns, pullParams(enumContext, maxObjectCount))
	if err != nil {
		return Batch{}, err
	}
	batch, err := batchFrom(op, rsp)
	if err != nil {
		return Batch{}, err
	}
	batch.Instances, err = rsp.PlainInstances()
	if err != nil {
		return Batch{}, fmt.Errorf("%s: %w", op, err)
	}
	return batch, nil
}

// CloseEnumeration terminates an open enumeration before its end of
// sequence.
func (c *Connection) CloseEnumeration(ctx context.Context, enumContext, namespace string) error {
	ns := c.resolveNamespace(namespace)
	_, err := c.invoke(ctx, "CloseEnumeration", ns, []cimxml.Param{
		cimxml.StringParam("EnumerationContext", enumContext),
	})
	return err
}

func pullParams(enumContext string, maxObjectCount uint32) []cimxml.Param {
	return []cimxml.Param{
		cimxml.StringParam("EnumerationContext", enumContext),
		cimxml.Uint32Param("MaxObjectCount", maxObjectCount),
	}
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
