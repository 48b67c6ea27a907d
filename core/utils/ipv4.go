package utils

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
)

// ErrInvalidIPv4 is returned for text that is not a dotted-quad IPv4 address.
var ErrInvalidIPv4 = errors.New("invalid IPv4 address")

// IPToInt converts a dotted-quad IPv4 address to its big-endian uint32 form.
func IPToInt(addr string) (uint32, error) {
	ip := net.ParseIP(addr)
	if ip == nil || !strings.Contains(addr, ".") || strings.Contains(addr, ":") {
		return 0, fmt.Errorf("%w %q", ErrInvalidIPv4, addr)
	}
	v4 := ip.To4()
	if v4 == nil {
		return 0, fmt.Errorf("%w %q", ErrInvalidIPv4, addr)
	}
	return binary.BigEndian.Uint32(v4), nil
}

// IntToIP converts a big-endian uint32 back to dotted-quad text.
func IntToIP(n uint32) string {
	ip := make(net.IP, 4)
	binary.BigEndian.PutUint32(ip, n)
	return ip.String()
}

// SplitCIDR splits "a.b.c.d/nn" into its address and prefix length.
// A bare address is treated as a /32.
func SplitCIDR(cidr string) (string, int, error) {
	addr, bits, found := strings.Cut(cidr, "/")
	if _, err := IPToInt(addr); err != nil {
		return "", 0, err
	}
	if !found {
		return addr, 32, nil
	}
	prefix, err := strconv.Atoi(bits)
	if err != nil || prefix < 0 || prefix > 32 {
		return "", 0, fmt.Errorf("invalid prefix length in %q", cidr)
	}
	return addr, prefix, nil
}

// IsHostRoute reports whether a CIDR carries a /32 prefix.
func IsHostRoute(cidr string) bool {
	_, prefix, err := SplitCIDR(cidr)
	return err == nil && prefix == 32
}
