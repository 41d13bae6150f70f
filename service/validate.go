package service

import (
	"net/url"
	"strings"

	"github.com/BartekB-it/prawda-w-sieci-verifier/core"
	"github.com/BartekB-it/prawda-w-sieci-verifier/internal/netguard"
)

// MaxURLLength caps input so absurdly long strings are rejected before any
// parsing work.
const MaxURLLength = 2048

// NormalizeAndValidate normalizes a raw URL string and runs the full
// acceptance policy: length and scheme checks, hostname extraction, the
// anti-SSRF IP guard, and the domain-trust policy. Checks run in order and
// the first failure wins. An input without a scheme gets https prepended
// before parsing.
//
// The returned string is the re-serialized URL. No network access happens
// here.
func NormalizeAndValidate(raw string, policy *core.TrustPolicy) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", core.ErrEmptyURL
	}
	if len(raw) > MaxURLLength {
		return "", core.ErrURLTooLong
	}

	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", core.ErrHostMissing
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", core.ErrSchemeNotAllowed
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return "", core.ErrHostMissing
	}

	// the IP guard runs before and independent of any domain-trust check
	if forbidden, isIP := netguard.HostIsForbiddenIP(host); isIP {
		if forbidden {
			return "", core.ErrForbiddenAddress
		}
	} else if !policy.Allows(host) {
		if policy.Len() > 0 || policy.Mode() == core.PolicyWhitelistOnly {
			return "", core.ErrDomainNotTrusted
		}
		return "", core.ErrNotGovZone
	}

	return parsed.String(), nil
}

// Evaluate computes fresh security metadata for an already-validated URL.
// Pure and infallible; called again at confirmation time so the decision
// reflects the trust list as of that moment, never a cached copy.
func Evaluate(validatedURL string, policy *core.TrustPolicy) core.SecurityMetadata {
	parsed, err := url.Parse(validatedURL)
	if err != nil {
		return core.SecurityMetadata{}
	}
	host := strings.ToLower(parsed.Hostname())
	return core.SecurityMetadata{
		Domain:        host,
		IsGovZone:     core.IsGovZone(host),
		UsesHTTPS:     parsed.Scheme == "https",
		InTrustedList: policy.InTrustedList(host),
	}
}
