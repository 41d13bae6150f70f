package netguard

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsForbidden(t *testing.T) {
	forbidden := []string{
		"127.0.0.1",
		"10.0.0.1",
		"172.16.0.1",
		"192.168.1.1",
		"169.254.10.10",
		"224.0.0.1",
		"240.0.0.1",
		"0.0.0.0",
		"::1",
		"fe80::1",
		"fc00::1",
		"ff02::1",
		"::",
		"::ffff:127.0.0.1", // mapped v4 is unmapped before classification
	}
	for _, s := range forbidden {
		assert.True(t, IsForbidden(netip.MustParseAddr(s)), "addr %s", s)
	}

	allowed := []string{"8.8.8.8", "1.1.1.1", "185.70.40.1", "2001:4860:4860::8888"}
	for _, s := range allowed {
		assert.False(t, IsForbidden(netip.MustParseAddr(s)), "addr %s", s)
	}
}

func TestHostIsForbiddenIP(t *testing.T) {
	forbidden, isIP := HostIsForbiddenIP("127.0.0.1")
	assert.True(t, isIP)
	assert.True(t, forbidden)

	forbidden, isIP = HostIsForbiddenIP("8.8.8.8")
	assert.True(t, isIP)
	assert.False(t, forbidden)

	_, isIP = HostIsForbiddenIP("gov.pl")
	assert.False(t, isIP)
}
