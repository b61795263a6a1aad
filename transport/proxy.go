package transport

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"golang.org/x/net/proxy"
)

// ProxyConfig maps the target scheme to a proxy URL. Supported proxy
// schemes: http, socks5 (client-side DNS), socks5h (proxy-side DNS).
// Proxy credentials go in the URL userinfo.
type ProxyConfig struct {
	HTTP  string
	HTTPS string
}

// forScheme returns the proxy URL for a target scheme, "" for direct.
func (c ProxyConfig) forScheme(scheme string) string {
	if scheme == "https" {
		return c.HTTPS
	}
	return c.HTTP
}

// configureProxy wires the proxy for the given target scheme into the
// HTTP transport: http proxies via Transport.Proxy, SOCKS proxies via a
// replaced DialContext.
func configureProxy(t *http.Transport, cfg ProxyConfig, targetScheme string) error {
	raw := cfg.forScheme(targetScheme)
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("proxy url %q: %w", raw, err)
	}
	switch u.Scheme {
	case "http", "https":
		t.Proxy = http.ProxyURL(u)
		return nil
	case "socks5", "socks5h":
		return configureSOCKS(t, u)
	}
	return fmt.Errorf("proxy url %q: unsupported scheme %q", raw, u.Scheme)
}

// configureSOCKS replaces the transport's DialContext with one that
// dials through the SOCKS5 proxy. For socks5 the target hostname is
// resolved locally first; for socks5h it is passed to the proxy.
func configureSOCKS(t *http.Transport, u *url.URL) error {
	var auth *proxy.Auth
	if u.User != nil {
		password, _ := u.User.Password()
		auth = &proxy.Auth{User: u.User.Username(), Password: password}
	}

	// keep the connect-timeout dialer under the proxy
	var forward proxy.Dialer = proxy.Direct
	if t.DialContext != nil {
		forward = contextDialerFunc(t.DialContext)
	}

	socks, err := proxy.SOCKS5("tcp", u.Host, auth, forward)
	if err != nil {
		return fmt.Errorf("socks5 proxy %q: %w", u.Host, err)
	}
	dialer, ok := socks.(proxy.ContextDialer)
	if !ok {
		return fmt.Errorf("socks5 proxy %q: dialer has no context support", u.Host)
	}

	resolveLocally := u.Scheme == "socks5"
	t.Proxy = nil
	t.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
		if resolveLocally {
			resolved, err := resolveAddr(ctx, addr)
			if err != nil {
				return nil, err
			}
			addr = resolved
		}
		return dialer.DialContext(ctx, network, addr)
	}
	return nil
}

// contextDialerFunc adapts a DialContext func to the proxy dialer
// interfaces.
type contextDialerFunc func(ctx context.Context, network, addr string) (net.Conn, error)

func (f contextDialerFunc) Dial(network, addr string) (net.Conn, error) {
	return f(context.Background(), network, addr)
}

func (f contextDialerFunc) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	return f(ctx, network, addr)
}

// resolveAddr resolves the host part of addr to an IP so the name never
// reaches the proxy.
func resolveAddr(ctx context.Context, addr string) (string, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "", err
	}
	if net.ParseIP(host) != nil {
		return addr, nil
	}
	ips, err := net.DefaultResolver.LookupIP(ctx, "ip", host)
	if err != nil || len(ips) == 0 {
		return "", fmt.Errorf("resolve %q: %w", host, err)
	}
	return net.JoinHostPort(ips[0].String(), port), nil
}
