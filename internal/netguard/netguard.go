// Package netguard classifies IP literals for the anti-SSRF policy. A URL
// whose host is a forbidden address must never be probed, or the service
// could be steered into requests against internal network targets.
package netguard

import "net/netip"

// reserved IPv4 blocks not covered by the stdlib predicates: "this network"
// and the class E experimental range.
var reservedV4 = []netip.Prefix{
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("240.0.0.0/4"),
}

// IsForbidden reports whether addr must not be contacted: private,
// loopback, link-local, reserved, multicast or unspecified ranges.
func IsForbidden(addr netip.Addr) bool {
	addr = addr.Unmap()
	if addr.IsPrivate() ||
		addr.IsLoopback() ||
		addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() ||
		addr.IsInterfaceLocalMulticast() ||
		addr.IsMulticast() ||
		addr.IsUnspecified() {
		return true
	}
	if addr.Is4() {
		for _, p := range reservedV4 {
			if p.Contains(addr) {
				return true
			}
		}
	}
	return false
}

// HostIsForbiddenIP parses host as an IP literal. The second return is
// false when host is a domain name, in which case the first is meaningless
// and the domain-trust policy applies instead.
func HostIsForbiddenIP(host string) (forbidden, isIP bool) {
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false, false
	}
	return IsForbidden(addr), true
}
