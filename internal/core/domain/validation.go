package domain

import (
	"regexp"
	"strings"
)

// Validation Helpers

var macRegex = regexp.MustCompile(`^([0-9A-Fa-f]{2}[:-]){5}([0-9A-Fa-f]{2})$`)

// IsValidMAC checks if the string is a valid MAC address
func IsValidMAC(mac string) bool {
	return macRegex.MatchString(mac)
}

// NormalizeBSSID returns the lower-case, colon separated form snapshots use.
// The input must already pass IsValidMAC.
func NormalizeBSSID(mac string) string {
	return strings.ToLower(strings.ReplaceAll(mac, "-", ":"))
}
