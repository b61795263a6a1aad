package transport

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"path/filepath"

	"github.com/docker/go-connections/tlsconfig"
)

// TLSOptions selects the certificate material of an https endpoint.
type TLSOptions struct {
	// CACerts is a path to a CA bundle file or a directory of PEM files.
	// Empty means the system pool.
	CACerts string
	// CertFile and KeyFile hold the client certificate pair.
	CertFile string
	KeyFile  string
	// NoVerification disables server certificate validation.
	NoVerification bool
}

// newTLSConfig builds the client tls.Config from the options.
func newTLSConfig(o TLSOptions) (*tls.Config, error) {
	opts := tlsconfig.Options{
		CertFile:           o.CertFile,
		KeyFile:            o.KeyFile,
		InsecureSkipVerify: o.NoVerification,
	}

	caDir := ""
	if o.CACerts != "" {
		info, err := os.Stat(o.CACerts)
		if err != nil {
			return nil, fmt.Errorf("ca_certs: %w", err)
		}
		if info.IsDir() {
			caDir = o.CACerts
		} else {
			opts.CAFile = o.CACerts
		}
	}

	cfg, err := tlsconfig.Client(opts)
	if err != nil {
		return nil, fmt.Errorf("tls config: %w", err)
	}
	if caDir != "" {
		pool, err := loadCADir(caDir)
		if err != nil {
			return nil, err
		}
		cfg.RootCAs = pool
	}
	return cfg, nil
}

// loadCADir builds a certificate pool from every PEM file in a directory.
func loadCADir(dir string) (*x509.CertPool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("ca_certs: %w", err)
	}
	pool := x509.NewCertPool()
	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		pem, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("ca_certs: %w", err)
		}
		if pool.AppendCertsFromPEM(pem) {
			loaded++
		}
	}
	if loaded == 0 {
		return nil, fmt.Errorf("ca_certs: no certificates found in %s", dir)
	}
	return pool, nil
}
