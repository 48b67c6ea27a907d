package utils

import "strings"

// SentinelMAC is the canonical value for "no MAC known".
const SentinelMAC = "000000000000"

// CanonicalMAC normalises a MAC address to uppercase hex without separators.
// An empty input yields SentinelMAC.
func CanonicalMAC(mac string) string {
	mac = strings.TrimSpace(mac)
	if mac == "" {
		return SentinelMAC
	}
	r := strings.NewReplacer(":", "", "-", "", ".", "")
	return strings.ToUpper(r.Replace(mac))
}
