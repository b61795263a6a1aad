// Package wbem is a WBEM client: it issues CIM operations to a remote
// server over CIM-XML (DSP0200/DSP0201) and returns typed CIM objects.
//
// A Connection owns a pooled HTTP transport and is safe for concurrent
// use. Enumeration sessions and the Iter* iterators built on them hold
// mutable state and belong to a single caller each.
package wbem

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/slonegd/gowbem/cim"
	"github.com/slonegd/gowbem/cimxml"
	"github.com/slonegd/gowbem/logger"
	"github.com/slonegd/gowbem/stats"
	"github.com/slonegd/gowbem/transport"
)

// DefaultNamespace is used when the configuration names none.
const DefaultNamespace = "root/cimv2"

// PullPreference selects the enumeration dialect for the Iter* calls.
type PullPreference int

const (
	// PullAuto probes the pull dialect on the first Iter* call and
	// caches the outcome on the connection.
	PullAuto PullPreference = iota
	// PullAlways uses the pull dialect and fails where unsupported.
	PullAlways
	// PullNever uses the traditional dialect only.
	PullNever
)

// Config holds the connection settings.
//
// Retry counts of zero mean the transport defaults; negative values
// disable the class. BackoffFactor zero means the default 0.1.
type Config struct {
	// URL is scheme://host[:port]. Ports default to 5988 (http) and
	// 5989 (https).
	URL string

	// User and Password enable HTTP basic authentication.
	User     string
	Password string

	// DefaultNamespace applies to operations called with an empty
	// namespace. Defaults to "root/cimv2".
	DefaultNamespace string

	// CACerts is a CA bundle file or a directory of PEM files.
	CACerts string
	// NoVerification disables server certificate validation.
	NoVerification bool
	// CertFile and KeyFile hold the client certificate pair.
	CertFile string
	KeyFile  string

	// Timeout is the default per-operation read timeout.
	Timeout time.Duration

	UsePullOperations PullPreference

	StatsEnabled bool

	Proxies transport.ProxyConfig

	ConnectTimeout  time.Duration
	ConnectRetries  int
	ReadRetries     int
	RedirectRetries int
	TotalRetries    int
	BackoffFactor   float64
}

// Option customizes a Connection beyond the Config keys.
type Option func(*Connection)

// WithLogger sets the debug logger.
func WithLogger(log logger.Logger) Option {
	return func(c *Connection) { c.log = log }
}

// dialect cache values
const (
	dialectUnknown int32 = iota
	dialectPull
	dialectTraditional
)

// Connection is a client for one WBEM server endpoint. Safe for
// concurrent use.
type Connection struct {
	client    *transport.Client
	namespace string
	log       logger.Logger
	stats     *stats.Keeper

	msgID atomic.Uint64

	// dialect caches the enumeration-dialect classification,
	// write-once; preset when the configuration forces a dialect.
	dialect atomic.Int32
	forced  bool
}

// NewConnection builds a Connection from the configuration.
func NewConnection(cfg Config, opts ...Option) (*Connection, error) {
	retryCount := func(v, def int) int {
		switch {
		case v < 0:
			return 0
		case v == 0:
			return def
		}
		return v
	}
	backoff := cfg.BackoffFactor
	if backoff == 0 {
		backoff = transport.DefaultBackoffFactor
	}

	conn := &Connection{
		namespace: cimxml.JoinNamespace(cfg.DefaultNamespace),
		log:       logger.Nop(),
	}
	if conn.namespace == "" {
		conn.namespace = DefaultNamespace
	}
	if cfg.StatsEnabled {
		conn.stats = stats.NewKeeper()
	}
	switch cfg.UsePullOperations {
	case PullAlways:
		conn.dialect.Store(dialectPull)
		conn.forced = true
	case PullNever:
		conn.dialect.Store(dialectTraditional)
		conn.forced = true
	}
	for _, opt := range opts {
		opt(conn)
	}

	client, err := transport.New(transport.Config{
		URL:      cfg.URL,
		User:     cfg.User,
		Password: cfg.Password,
		TLS: transport.TLSOptions{
			CACerts:        cfg.CACerts,
			CertFile:       cfg.CertFile,
			KeyFile:        cfg.KeyFile,
			NoVerification: cfg.NoVerification,
		},
		Proxies:        cfg.Proxies,
		ConnectTimeout: cfg.ConnectTimeout,
		ReadTimeout:    cfg.Timeout,
		Retry: transport.RetryPolicy{
			ConnectRetries:  retryCount(cfg.ConnectRetries, transport.DefaultConnectRetries),
			ReadRetries:     retryCount(cfg.ReadRetries, transport.DefaultReadRetries),
			RedirectRetries: retryCount(cfg.RedirectRetries, transport.DefaultRedirectRetries),
			TotalRetries:    cfg.TotalRetries,
			BackoffFactor:   backoff,
		},
		Logger: conn.log,
	})
	if err != nil {
		return nil, err
	}
	conn.client = client
	return conn, nil
}

// URL returns the endpoint URL with default ports applied.
func (c *Connection) URL() string { return c.client.URL() }

// Statistics returns the statistics keeper, nil when statistics are
// disabled.
func (c *Connection) Statistics() *stats.Keeper { return c.stats }

// resolveNamespace normalizes ns, substituting the connection default
// when empty.
func (c *Connection) resolveNamespace(ns string) string {
	if normalized := cimxml.JoinNamespace(ns); normalized != "" {
		return normalized
	}
	return c.namespace
}

// currentDialect returns the cached dialect classification.
func (c *Connection) currentDialect() int32 { return c.dialect.Load() }

// learnDialect stores the first classification; later calls are no-ops
// so the cache is write-once.
func (c *Connection) learnDialect(pull bool) {
	v := dialectTraditional
	if pull {
		v = dialectPull
	}
	c.dialect.CompareAndSwap(dialectUnknown, v)
}

// invoke runs one intrinsic operation: encode, POST, validate, decode,
// surface server errors. The CIMObject header carries the target
// namespace.
func (c *Connection) invoke(ctx context.Context, op, namespace string, params []cimxml.Param) (*cimxml.IMethodResponse, error) {
	body := cimxml.EncodeMethodCall(c.msgID.Add(1), op, namespace, params)
	rsp, err := c.request(ctx, op, namespace, body)
	if err != nil {
		return nil, err
	}
	parsed, err := cimxml.ParseIMethodResponse(rsp.Body, op)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if parsed.CIMError != nil {
		return nil, fmt.Errorf("%s: %w", op, parsed.CIMError)
	}
	return parsed, nil
}

// request submits one encoded envelope and records statistics.
func (c *Connection) request(ctx context.Context, op, object string, body []byte) (*transport.Response, error) {
	started := time.Now()
	rsp, err := c.client.Do(ctx, transport.Request{
		Method: op,
		Object: object,
		Body:   body,
	})

	if c.stats != nil {
		responseBytes := 0
		serverTime := time.Duration(0)
		if rsp != nil {
			responseBytes = len(rsp.Body)
			serverTime = rsp.ServerTime
		}
		c.stats.Record(op, time.Since(started), serverTime, len(body), responseBytes, err != nil)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := cimxml.ValidateContentType(rsp.ContentType); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rsp, nil
}

// invokeExtrinsic runs one extrinsic method call. The CIMObject header
// carries the target object path.
func (c *Connection) invokeExtrinsic(ctx context.Context, methodName, namespace string, instName *cim.InstanceName, className string, params []cimxml.Param) (*cimxml.MethodResponse, error) {
	body := cimxml.EncodeExtrinsicCall(c.msgID.Add(1), methodName, namespace, instName, className, params)

	object := namespace + ":" + className
	if instName != nil {
		scoped := instName.Clone()
		scoped.Namespace = namespace
		scoped.Host = ""
		object = scoped.String()
	}

	rsp, err := c.request(ctx, methodName, object, body)
	if err != nil {
		return nil, err
	}
	parsed, err := cimxml.ParseMethodResponse(rsp.Body, methodName)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", methodName, err)
	}
	if parsed.CIMError != nil {
		return nil, fmt.Errorf("%s: %w", methodName, parsed.CIMError)
	}
	return parsed, nil
}
