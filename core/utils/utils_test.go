package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIPToInt(t *testing.T) {
	tests := []struct {
		addr string
		want uint32
	}{
		{"0.0.0.0", 0},
		{"10.0.0.5", 0x0A000005},
		{"192.168.1.1", 0xC0A80101},
		{"255.255.255.255", 0xFFFFFFFF},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			got, err := IPToInt(tt.addr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIPToInt_Invalid(t *testing.T) {
	for _, addr := range []string{"", "10.0.0", "10.0.0.256", "::1", "fe80::1", "::ffff:10.0.0.1", "host"} {
		_, err := IPToInt(addr)
		assert.ErrorIs(t, err, ErrInvalidIPv4, addr)
	}
}

func TestIPRoundTrip(t *testing.T) {
	for _, addr := range []string{"0.0.0.0", "1.2.3.4", "10.20.30.40", "172.16.254.1", "255.255.255.255"} {
		n, err := IPToInt(addr)
		require.NoError(t, err)
		assert.Equal(t, addr, IntToIP(n))
	}

	for _, n := range []uint32{0, 1, 0x7F000001, 0xDEADBEEF, 0xFFFFFFFF} {
		back, err := IPToInt(IntToIP(n))
		require.NoError(t, err)
		assert.Equal(t, n, back)
	}
}

func TestSplitCIDR(t *testing.T) {
	addr, prefix, err := SplitCIDR("10.0.0.5/24")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5", addr)
	assert.Equal(t, 24, prefix)

	addr, prefix, err = SplitCIDR("10.0.0.9")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.9", addr)
	assert.Equal(t, 32, prefix)

	_, _, err = SplitCIDR("10.0.0.5/33")
	assert.Error(t, err)
	_, _, err = SplitCIDR("10.0.0.5/x")
	assert.Error(t, err)
	_, _, err = SplitCIDR("nope/24")
	assert.Error(t, err)
}

func TestIsHostRoute(t *testing.T) {
	assert.True(t, IsHostRoute("10.0.0.1/32"))
	assert.False(t, IsHostRoute("10.0.0.1/24"))
	assert.False(t, IsHostRoute("garbage"))
}

func TestCanonicalMAC(t *testing.T) {
	assert.Equal(t, "001122AABBCC", CanonicalMAC("00:11:22:aa:bb:cc"))
	assert.Equal(t, "001122AABBCC", CanonicalMAC("00-11-22-AA-BB-CC"))
	assert.Equal(t, SentinelMAC, CanonicalMAC(""))
	assert.Equal(t, SentinelMAC, CanonicalMAC("00:00:00:00:00:00"))
}
