// Package prober implements the outbound TLS verification probe. A single
// bounded GET with full certificate-chain verification against the system
// CA roots is authoritative for the request it answers; there are no
// retries.
package prober

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/BartekB-it/prawda-w-sieci-verifier/core"
)

const (
	// DefaultTimeout bounds the whole probe, handshake included
	DefaultTimeout = 5 * time.Second

	// MsgNotHTTPS, MsgTLSFailed and MsgNoConnect are the only diagnostic
	// strings the probe ever emits; raw transport errors stay inside.
	MsgNotHTTPS  = "not HTTPS; TLS not checked"
	MsgTLSFailed = "certificate/TLS verification failed"
	MsgNoConnect = "could not connect to server"
)

// TLSProber probes URLs over an injected HTTP client.
type TLSProber struct {
	client *http.Client
}

// New creates a prober with its own client bounded by DefaultTimeout.
func New() *TLSProber {
	return NewWithClient(&http.Client{Timeout: DefaultTimeout})
}

// NewWithClient creates a prober using the given client. The caller owns
// the client's timeout and TLS configuration; tests inject clients wired
// to httptest servers.
func NewWithClient(client *http.Client) *TLSProber {
	return &TLSProber{client: client}
}

// Probe classifies the transport security of an already-validated URL.
// Plain-http URLs short-circuit to UNKNOWN without any network call.
func (p *TLSProber) Probe(ctx context.Context, url string) core.TLSProbeResult {
	if !strings.HasPrefix(url, "https://") {
		return core.TLSProbeResult{Status: core.TLSUnknown, Message: MsgNotHTTPS}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return core.TLSProbeResult{Status: core.TLSUnknown, Message: MsgNoConnect}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		if isCertificateError(err) {
			return core.TLSProbeResult{Status: core.TLSFailed, Message: MsgTLSFailed}
		}
		return core.TLSProbeResult{Status: core.TLSUnknown, Message: MsgNoConnect}
	}
	defer resp.Body.Close()

	// drain a little so the connection can be reused
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	return core.TLSProbeResult{Status: core.TLSOK, HTTPStatus: resp.StatusCode}
}

// isCertificateError distinguishes handshake/certificate failures from
// plain connectivity failures.
func isCertificateError(err error) bool {
	var certVerify *tls.CertificateVerificationError
	if errors.As(err, &certVerify) {
		return true
	}
	var unknownAuthority x509.UnknownAuthorityError
	if errors.As(err, &unknownAuthority) {
		return true
	}
	var hostname x509.HostnameError
	if errors.As(err, &hostname) {
		return true
	}
	var invalid x509.CertificateInvalidError
	if errors.As(err, &invalid) {
		return true
	}
	var systemRoots x509.SystemRootsError
	if errors.As(err, &systemRoots) {
		return true
	}
	var record tls.RecordHeaderError
	return errors.As(err, &record)
}
