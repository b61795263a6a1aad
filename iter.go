package wbem

import (
	"context"
	"errors"

	"github.com/slonegd/gowbem/cim"
)

// DefaultMaxObjectCount is the per-batch object count of the Iter*
// calls when the options name none.
const DefaultMaxObjectCount uint32 = 1000

// ErrFilterNotSupported is returned when an Iter* call carries a filter
// query but the connection uses the traditional dialect, which has no
// server-side filtering.
var ErrFilterNotSupported = errors.New("filter queries require the pull dialect")

// IterOptions tune the Iter* calls.
type IterOptions struct {
	// FilterQueryLanguage and FilterQuery ask the server to filter.
	// Pull dialect only.
	FilterQueryLanguage string
	FilterQuery         string

	// OperationTimeout is the server-side inter-request timeout in
	// seconds.
	OperationTimeout *uint32

	ContinueOnError *bool

	// MaxObjectCount bounds each batch. Zero means
	// DefaultMaxObjectCount.
	MaxObjectCount uint32
}

func (o *IterOptions) maxCount() uint32 {
	if o == nil || o.MaxObjectCount == 0 {
		return DefaultMaxObjectCount
	}
	return o.MaxObjectCount
}

func (o *IterOptions) hasFilter() bool {
	return o != nil && (o.FilterQuery != "" || o.FilterQueryLanguage != "")
}

func (o *IterOptions) openOptions() *OpenOptions {
	open := &OpenOptions{MaxObjectCount: o.maxCount()}
	if o != nil {
		open.FilterQueryLanguage = o.FilterQueryLanguage
		open.FilterQuery = o.FilterQuery
		open.OperationTimeout = o.OperationTimeout
		open.ContinueOnError = o.ContinueOnError
	}
	return open
}

// isPullNotSupported reports whether err is the server refusing the
// pull dialect altogether.
func isPullNotSupported(err error) bool {
	var cimErr *cim.Error
	return errors.As(err, &cimErr) && cimErr.StatusCode == cim.StatusErrNotSupported
}

// InstanceIter walks instances batch by batch:
//
//	iter := conn.IterEnumerateInstances("CIM_Fan", "", nil)
//	defer iter.Close()
//	for iter.Next(ctx) {
//	    use(iter.Instance())
//	}
//	if err := iter.Err(); err != nil { ... }
//
// Not safe for concurrent use.
type InstanceIter struct {
	start   func(ctx context.Context) error
	session *enumerationSession

	buf    []*cim.Instance
	cur    *cim.Instance
	opened bool
	done   bool
	closed bool
	err    error
}

// Next advances to the next instance. It returns false at the end of
// the result or on error; check Err afterwards.
func (it *InstanceIter) Next(ctx context.Context) bool {
	if it.err != nil || it.closed {
		return false
	}
	if !it.opened {
		if err := it.start(ctx); err != nil {
			it.err = err
			return false
		}
		it.opened = true
	}
	for len(it.buf) == 0 {
		if it.done {
			return false
		}
		batch, err := it.session.nextBatch(ctx)
		if err != nil {
			it.err = err
			return false
		}
		it.buf = batch.Instances
		it.done = batch.EndOfSequence
	}
	it.cur = it.buf[0]
	it.buf = it.buf[1:]
	return true
}

// Instance returns the instance Next advanced to.
func (it *InstanceIter) Instance() *cim.Instance { return it.cur }

// Err returns the first error the iteration hit, nil on clean
// exhaustion.
func (it *InstanceIter) Err() error { return it.err }

// Close abandons the iteration. Releasing an unexhausted server-side
// enumeration is best effort. Close is idempotent.
func (it *InstanceIter) Close() {
	if it.closed {
		return
	}
	it.closed = true
	it.buf = nil
	if it.session != nil && !it.done {
		it.session.abandon(context.Background())
	}
}

// PathIter walks instance paths batch by batch. Same contract as
// InstanceIter.
type PathIter struct {
	start   func(ctx context.Context) error
	session *enumerationSession

	buf    []*cim.InstanceName
	cur    *cim.InstanceName
	opened bool
	done   bool
	closed bool
	err    error
}

// Next advances to the next path. It returns false at the end of the
// result or on error; check Err afterwards.
func (it *PathIter) Next(ctx context.Context) bool {
	if it.err != nil || it.closed {
		return false
	}
	if !it.opened {
		if err := it.start(ctx); err != nil {
			it.err = err
			return false
		}
		it.opened = true
	}
	for len(it.buf) == 0 {
		if it.done {
			return false
		}
		batch, err := it.session.nextBatch(ctx)
		if err != nil {
			it.err = err
			return false
		}
		it.buf = batch.Paths
		it.done = batch.EndOfSequence
	}
	it.cur = it.buf[0]
	it.buf = it.buf[1:]
	return true
}

// Path returns the path Next advanced to.
func (it *PathIter) Path() *cim.InstanceName { return it.cur }

// Err returns the first error the iteration hit, nil on clean
// exhaustion.
func (it *PathIter) Err() error { return it.err }

// Close abandons the iteration. Close is idempotent.
func (it *PathIter) Close() {
	if it.closed {
		return
	}
	it.closed = true
	it.buf = nil
	if it.session != nil && !it.done {
		it.session.abandon(context.Background())
	}
}

// startInstanceIter builds the lazy start of an InstanceIter: select
// the dialect (probing and caching it under PullAuto), then either open
// the pull session or fetch the whole result traditionally.
func (c *Connection) startInstanceIter(it *InstanceIter, opts *IterOptions,
	open openFunc, pull pullFunc, namespace string,
	traditional func(ctx context.Context) ([]*cim.Instance, error)) {

	it.start = func(ctx context.Context) error {
		useTraditional := func() error {
			if opts.hasFilter() {
				return ErrFilterNotSupported
			}
			instances, err := traditional(ctx)
			if err != nil {
				return err
			}
			it.buf = instances
			it.done = true
			return nil
		}

		switch c.currentDialect() {
		case dialectTraditional:
			return useTraditional()
		case dialectPull, dialectUnknown:
			session := &enumerationSession{
				conn:      c,
				namespace: namespace,
				open:      open,
				pull:      pull,
				maxCount:  opts.maxCount(),
			}
			batch, err := session.nextBatch(ctx)
			if err != nil {
				if isPullNotSupported(err) && !c.forced && c.currentDialect() == dialectUnknown {
					c.learnDialect(false)
					c.log.Debug("pull operations not supported by %s, falling back", c.URL())
					return useTraditional()
				}
				return err
			}
			c.learnDialect(true)
			it.session = session
			it.buf = batch.Instances
			it.done = batch.EndOfSequence
			return nil
		}
		return nil
	}
}

func (c *Connection) startPathIter(it *PathIter, opts *IterOptions,
	open openFunc, pull pullFunc, namespace string,
	traditional func(ctx context.Context) ([]*cim.InstanceName, error)) {

	it.start = func(ctx context.Context) error {
		useTraditional := func() error {
			if opts.hasFilter() {
				return ErrFilterNotSupported
			}
			paths, err := traditional(ctx)
			if err != nil {
				return err
			}
			it.buf = paths
			it.done = true
			return nil
		}

		switch c.currentDialect() {
		case dialectTraditional:
			return useTraditional()
		case dialectPull, dialectUnknown:
			session := &enumerationSession{
				conn:      c,
				namespace: namespace,
				open:      open,
				pull:      pull,
				maxCount:  opts.maxCount(),
			}
			batch, err := session.nextBatch(ctx)
			if err != nil {
				if isPullNotSupported(err) && !c.forced && c.currentDialect() == dialectUnknown {
					c.learnDialect(false)
					c.log.Debug("pull operations not supported by %s, falling back", c.URL())
					return useTraditional()
				}
				return err
			}
			c.learnDialect(true)
			it.session = session
			it.buf = batch.Paths
			it.done = batch.EndOfSequence
			return nil
		}
		return nil
	}
}

// IterEnumerateInstances iterates the instances of a class. It uses
// the pull operations when the server supports them and falls back to
// EnumerateInstances otherwise; the outcome is cached per connection.
func (c *Connection) IterEnumerateInstances(className, namespace string, opts *IterOptions) *InstanceIter {
	ns := c.resolveNamespace(namespace)
	it := &InstanceIter{}
	c.startInstanceIter(it, opts,
		func(ctx context.Context) (Batch, error) {
			return c.OpenEnumerateInstances(ctx, className, ns, opts.openOptions())
		},
		c.PullInstancesWithPath, ns,
		func(ctx context.Context) ([]*cim.Instance, error) {
			return c.EnumerateInstances(ctx, className, ns, nil)
		})
	return it
}

// IterEnumerateInstancePaths iterates the instance paths of a class.
func (c *Connection) IterEnumerateInstancePaths(className, namespace string, opts *IterOptions) *PathIter {
	ns := c.resolveNamespace(namespace)
	it := &PathIter{}
	c.startPathIter(it, opts,
		func(ctx context.Context) (Batch, error) {
			return c.OpenEnumerateInstancePaths(ctx, className, ns, opts.openOptions())
		},
		c.PullInstancePaths, ns,
		func(ctx context.Context) ([]*cim.InstanceName, error) {
			return c.EnumerateInstanceNames(ctx, className, ns)
		})
	return it
}

// IterAssociatorInstances iterates the instances associated with an
// instance.
func (c *Connection) IterAssociatorInstances(object ObjectName, namespace string, assoc *AssociationOptions, opts *IterOptions) *InstanceIter {
	ns := c.resolveNamespace(firstNonEmpty(namespace, object.namespaceOf()))
	it := &InstanceIter{}
	c.startInstanceIter(it, opts,
		func(ctx context.Context) (Batch, error) {
			return c.OpenAssociatorInstances(ctx, object, ns, assoc, opts.openOptions())
		},
		c.PullInstancesWithPath, ns,
		func(ctx context.Context) ([]*cim.Instance, error) {
			instances, _, err := c.Associators(ctx, object, ns, assoc)
			return instances, err
		})
	return it
}

// IterAssociatorInstancePaths iterates the paths of the instances
// associated with an instance.
func (c *Connection) IterAssociatorInstancePaths(object ObjectName, namespace string, assoc *AssociationOptions, opts *IterOptions) *PathIter {
	ns := c.resolveNamespace(firstNonEmpty(namespace, object.namespaceOf()))
	it := &PathIter{}
	c.startPathIter(it, opts,
		func(ctx context.Context) (Batch, error) {
			return c.OpenAssociatorInstancePaths(ctx, object, ns, assoc, opts.openOptions())
		},
		c.PullInstancePaths, ns,
		func(ctx context.Context) ([]*cim.InstanceName, error) {
			return c.AssociatorNames(ctx, object, ns, assoc)
		})
	return it
}

// IterReferenceInstances iterates the association instances referring
// to an instance.
func (c *Connection) IterReferenceInstances(object ObjectName, namespace string, assoc *AssociationOptions, opts *IterOptions) *InstanceIter {
	ns := c.resolveNamespace(firstNonEmpty(namespace, object.namespaceOf()))
	it := &InstanceIter{}
	c.startInstanceIter(it, opts,
		func(ctx context.Context) (Batch, error) {
			return c.OpenReferenceInstances(ctx, object, ns, assoc, opts.openOptions())
		},
		c.PullInstancesWithPath, ns,
		func(ctx context.Context) ([]*cim.Instance, error) {
			instances, _, err := c.References(ctx, object, ns, assoc)
			return instances, err
		})
	return it
}

// IterReferenceInstancePaths iterates the paths of the association
// instances referring to an instance.
func (c *Connection) IterReferenceInstancePaths(object ObjectName, namespace string, assoc *AssociationOptions, opts *IterOptions) *PathIter {
	ns := c.resolveNamespace(firstNonEmpty(namespace, object.namespaceOf()))
	it := &PathIter{}
	c.startPathIter(it, opts,
		func(ctx context.Context) (Batch, error) {
			return c.OpenReferenceInstancePaths(ctx, object, ns, assoc, opts.openOptions())
		},
		c.PullInstancePaths, ns,
		func(ctx context.Context) ([]*cim.InstanceName, error) {
			return c.ReferenceNames(ctx, object, ns, assoc)
		})
	return it
}

// IterQueryInstances iterates a query result. Pull dialect uses
// OpenQueryInstances/PullInstances, the traditional fallback ExecQuery.
// Results carry no paths either way.
func (c *Connection) IterQueryInstances(queryLanguage, query, namespace string, opts *IterOptions) *InstanceIter {
	ns := c.resolveNamespace(namespace)
	it := &InstanceIter{}
	open := &OpenOptions{MaxObjectCount: opts.maxCount()}
	if opts != nil {
		open.OperationTimeout = opts.OperationTimeout
		open.ContinueOnError = opts.ContinueOnError
	}
	c.startInstanceIter(it, opts,
		func(ctx context.Context) (Batch, error) {
			return c.OpenQueryInstances(ctx, queryLanguage, query, ns, open)
		},
		c.PullInstances, ns,
		func(ctx context.Context) ([]*cim.Instance, error) {
			return c.ExecQuery(ctx, queryLanguage, query, ns)
		})
	return it
}
