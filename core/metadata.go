package core

// TLSStatus is the tri-state outcome of an outbound TLS probe.
type TLSStatus string

const (
	// TLSOK means the handshake succeeded and the certificate chain was
	// accepted by the system trust store
	TLSOK TLSStatus = "ok"

	// TLSFailed means the handshake or certificate verification failed
	TLSFailed TLSStatus = "failed"

	// TLSUnknown means TLS was not applicable (plain http) or the server
	// could not be reached at all
	TLSUnknown TLSStatus = "unknown"
)

// TLSProbeResult is the classified outcome of a single probe. Message is
// always a sanitized, pre-defined string, never raw transport error text.
type TLSProbeResult struct {
	Status     TLSStatus
	HTTPStatus int
	Message    string
}

// OKBool maps the tri-state onto the wire representation: true for OK,
// false for FAILED, nil for UNKNOWN.
func (r TLSProbeResult) OKBool() *bool {
	switch r.Status {
	case TLSOK:
		v := true
		return &v
	case TLSFailed:
		v := false
		return &v
	default:
		return nil
	}
}

// SecurityMetadata is derived trust data for a validated URL. It is
// recomputed on demand and never stored, so it always reflects the trust
// list as of the moment it is evaluated.
type SecurityMetadata struct {
	Domain        string
	IsGovZone     bool
	UsesHTTPS     bool
	InTrustedList bool
}
