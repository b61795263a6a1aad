// Package transport implements the CIM-over-HTTP transport of DSP0200:
// authenticated POSTs to the /cimom endpoint with connect/read timeouts,
// per-class retries with exponential backoff, TLS and proxy support.
package transport

import (
	"bytes"
	"context"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/slonegd/gowbem/logger"
)

// Default WBEM ports, applied when the endpoint URL has none.
const (
	DefaultHTTPPort  = "5988"
	DefaultHTTPSPort = "5989"
)

const (
	cimomPath          = "/cimom"
	hdrCIMOperation    = "CIMOperation"
	hdrCIMMethod       = "CIMMethod"
	hdrCIMObject       = "CIMObject"
	hdrCIMProtocol     = "CIMProtocolVersion"
	hdrServerTime      = "WBEMServerResponseTime" // microseconds
	contentTypeRequest = "application/xml; charset=utf-8"
)

// Config holds the transport settings of one server endpoint.
type Config struct {
	// URL is scheme://host[:port]; the path is fixed to /cimom.
	URL string
	// User and Password enable HTTP basic authentication when User is
	// non-empty.
	User     string
	Password string

	TLS     TLSOptions
	Proxies ProxyConfig

	// ConnectTimeout bounds the TCP/TLS handshake of each attempt.
	ConnectTimeout time.Duration
	// ReadTimeout is the default per-operation response budget; a
	// Request may override it.
	ReadTimeout time.Duration

	Retry  RetryPolicy
	Logger logger.Logger
}

// Request is one CIM-XML POST.
type Request struct {
	// Method goes into the CIMMethod header.
	Method string
	// Object goes into the CIMObject header: the target namespace for
	// intrinsic calls, the target object path for extrinsic calls.
	Object string
	Body   []byte
	// Timeout overrides the client's default read timeout when positive.
	Timeout time.Duration
}

// Response is a decoded-enough HTTP response: the body plus the headers
// the upper layers need.
type Response struct {
	Body        []byte
	ContentType string
	// ServerTime is the server-reported operation time, zero when the
	// server did not send the header.
	ServerTime time.Duration
}

// Client submits CIM-XML requests to one server endpoint over a pooled
// HTTP connection. Safe for concurrent use.
type Client struct {
	endpoint    *url.URL
	http        *http.Client
	user        string
	password    string
	readTimeout time.Duration
	retry       RetryPolicy
	log         logger.Logger

	sleep func(context.Context, time.Duration) error
}

// New builds a Client for the endpoint. URLs without a port get the
// standard WBEM port of their scheme (5988 http, 5989 https).
func New(cfg Config) (*Client, error) {
	endpoint, err := parseEndpoint(cfg.URL)
	if err != nil {
		return nil, err
	}

	dialer := &net.Dialer{Timeout: cfg.ConnectTimeout}
	httpTransport := &http.Transport{
		DialContext: dialer.DialContext,
	}
	if endpoint.Scheme == "https" {
		tlsCfg, err := newTLSConfig(cfg.TLS)
		if err != nil {
			return nil, err
		}
		httpTransport.TLSClientConfig = tlsCfg
	}
	if err := configureProxy(httpTransport, cfg.Proxies, endpoint.Scheme); err != nil {
		return nil, err
	}

	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	return &Client{
		endpoint: endpoint,
		http: &http.Client{
			Transport: httpTransport,
			// redirects are handled by the retry controller
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		user:        cfg.User,
		password:    cfg.Password,
		readTimeout: cfg.ReadTimeout,
		retry:       cfg.Retry,
		log:         log,
		sleep:       sleepContext,
	}, nil
}

func parseEndpoint(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("endpoint url %q: %w", raw, err)
	}
	switch u.Scheme {
	case "http", "https":
	default:
		return nil, fmt.Errorf("endpoint url %q: unsupported scheme %q", raw, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("endpoint url %q: missing host", raw)
	}
	if u.Port() == "" {
		port := DefaultHTTPPort
		if u.Scheme == "https" {
			port = DefaultHTTPSPort
		}
		u.Host = net.JoinHostPort(u.Hostname(), port)
	}
	u.Path = cimomPath
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

// URL returns the endpoint with the default port applied.
func (c *Client) URL() string { return c.endpoint.String() }

// Do submits the request, retrying per the retry policy, and returns the
// response body on HTTP 200. Errors carry the public taxonomy types.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	ctrl := newController(c.retry)
	target := *c.endpoint

	for {
		rsp, location, err := c.attempt(ctx, &target, req)
		if err == nil {
			return rsp, nil
		}
		class, retryable := classify(err)
		if !retryable {
			return nil, err
		}
		wait, ok := ctrl.next(class)
		if !ok {
			return nil, err
		}
		if location != "" {
			redirected, parseErr := target.Parse(location)
			if parseErr == nil {
				target = *redirected
			}
		}
		c.log.Debug("retrying after %s failure (backoff %s): %v", class, wait, err)
		if err := c.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
}

// attempt runs one HTTP exchange. The returned location is non-empty for
// redirect responses so Do can follow on retry.
func (c *Client) attempt(ctx context.Context, target *url.URL, req Request) (*Response, string, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.readTimeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), bytes.NewReader(req.Body))
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}
	hreq.Header.Set("Content-Type", contentTypeRequest)
	hreq.Header.Set(hdrCIMOperation, "MethodCall")
	hreq.Header.Set(hdrCIMProtocol, "1.0")
	if req.Method != "" {
		hreq.Header.Set(hdrCIMMethod, req.Method)
	}
	if req.Object != "" {
		hreq.Header.Set(hdrCIMObject, req.Object)
	}
	if c.user != "" {
		credentials := base64.StdEncoding.EncodeToString([]byte(c.user + ":" + c.password))
		hreq.Header.Set("Authorization", "Basic "+credentials)
	}

	hrsp, err := c.http.Do(hreq)
	if err != nil {
		return nil, "", c.classifyTransportError(ctx, err, timeout, false)
	}
	defer hrsp.Body.Close()

	switch {
	case hrsp.StatusCode == http.StatusUnauthorized ||
		hrsp.StatusCode == http.StatusProxyAuthRequired:
		return nil, "", &AuthError{URL: target.String(), StatusCode: hrsp.StatusCode}
	case hrsp.StatusCode >= 300 && hrsp.StatusCode < 400:
		return nil, hrsp.Header.Get("Location"), &HTTPError{
			URL:        target.String(),
			StatusCode: hrsp.StatusCode,
			Status:     hrsp.Status,
			Location:   hrsp.Header.Get("Location"),
		}
	case hrsp.StatusCode < 200 || hrsp.StatusCode >= 300:
		return nil, "", &HTTPError{
			URL:        target.String(),
			StatusCode: hrsp.StatusCode,
			Status:     hrsp.Status,
		}
	}

	body, err := io.ReadAll(hrsp.Body)
	if err != nil {
		return nil, "", c.classifyTransportError(ctx, err, timeout, true)
	}

	return &Response{
		Body:        body,
		ContentType: hrsp.Header.Get("Content-Type"),
		ServerTime:  parseServerTime(hrsp.Header.Get(hdrServerTime)),
	}, "", nil
}

// classifyTransportError maps an http.Client / body-read failure to the
// public taxonomy.
func (c *Client) classifyTransportError(ctx context.Context, err error, timeout time.Duration, midResponse bool) error {
	endpoint := c.endpoint.String()

	// read timeout exhaustion, ours or the caller's deadline
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{URL: endpoint, Timeout: timeout, Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("request to %s: %w", endpoint, context.Canceled)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		// dial timeout before a connection exists stays a connection error
		var opErr *net.OpError
		if errors.As(err, &opErr) && opErr.Op == "dial" {
			return &ConnectionError{URL: endpoint, Err: err}
		}
		return &TimeoutError{URL: endpoint, Timeout: timeout, Err: err}
	}

	// TLS certificate failures carry the x509 reason
	var certErr x509.UnknownAuthorityError
	var hostErr x509.HostnameError
	if errors.As(err, &certErr) || errors.As(err, &hostErr) {
		return &ConnectionError{URL: endpoint, Err: err}
	}

	if midResponse || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return &ConnectionError{URL: endpoint, Err: err, midResponse: true}
	}
	return &ConnectionError{URL: endpoint, Err: err}
}

func parseServerTime(value string) time.Duration {
	if value == "" {
		return 0
	}
	usec, err := strconv.ParseInt(value, 10, 64)
	if err != nil || usec < 0 {
		return 0
	}
	return time.Duration(usec) * time.Microsecond
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
