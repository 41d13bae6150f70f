package core

import "strings"

// GovZoneSuffix is the domain suffix of the government web zone this
// service vouches for.
const GovZoneSuffix = "gov.pl"

// PolicyMode selects how the trust policy treats an empty domain set, so
// "list failed to load" versus "list intentionally empty" is a startup
// decision rather than a silent runtime branch.
type PolicyMode string

const (
	// PolicyGovFallback accepts gov-zone domains whenever the trusted set
	// is empty. This matches the original behavior of the service.
	PolicyGovFallback PolicyMode = "gov-fallback"

	// PolicyWhitelistOnly accepts only exact members of the trusted set;
	// an empty set accepts nothing.
	PolicyWhitelistOnly PolicyMode = "whitelist-only"
)

// TrustPolicy is the immutable trust configuration fixed at startup: the
// administrator-supplied domain set plus the mode governing the empty-set
// fallback. Safe for concurrent use since it is never mutated after New.
type TrustPolicy struct {
	domains map[string]struct{}
	mode    PolicyMode
}

// NewTrustPolicy builds a policy from the given domains. Entries are
// lowercased and blank ones dropped.
func NewTrustPolicy(domains []string, mode PolicyMode) *TrustPolicy {
	set := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			set[d] = struct{}{}
		}
	}
	return &TrustPolicy{domains: set, mode: mode}
}

// Mode returns the policy's empty-set strategy.
func (p *TrustPolicy) Mode() PolicyMode { return p.mode }

// Len returns the number of domains on the trusted list.
func (p *TrustPolicy) Len() int { return len(p.domains) }

// IsGovZone reports whether host is the gov zone apex or a subdomain of it.
// The suffix must sit at a label boundary: "notgov.pl" does not match.
func IsGovZone(host string) bool {
	host = strings.ToLower(host)
	return host == GovZoneSuffix || strings.HasSuffix(host, "."+GovZoneSuffix)
}

// StripWWW returns host without a single leading "www." label.
func StripWWW(host string) string {
	return strings.TrimPrefix(host, "www.")
}

// Allows decides whether host passes the domain-trust policy. The host and
// its no-www variant are both checked against the set.
func (p *TrustPolicy) Allows(host string) bool {
	host = strings.ToLower(host)
	if len(p.domains) > 0 || p.mode == PolicyWhitelistOnly {
		return p.contains(host) || p.contains(StripWWW(host))
	}
	return IsGovZone(host)
}

// InTrustedList reports list membership for security metadata. With a
// non-empty set it is plain membership; with an empty set under the
// fallback mode it degrades to the gov-zone test.
func (p *TrustPolicy) InTrustedList(host string) bool {
	host = strings.ToLower(host)
	if len(p.domains) > 0 {
		return p.contains(host) || p.contains(StripWWW(host))
	}
	if p.mode == PolicyWhitelistOnly {
		return false
	}
	return IsGovZone(host)
}

func (p *TrustPolicy) contains(host string) bool {
	_, ok := p.domains[host]
	return ok
}
