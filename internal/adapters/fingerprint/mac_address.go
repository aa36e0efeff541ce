package fingerprint

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
)

var (
	ErrEmptyMAC       = errors.New("empty address")
	ErrInvalidMAC     = errors.New("invalid BSSID")
	ErrInvalidOUI     = errors.New("invalid OUI prefix")
	ErrVendorNotFound = errors.New("vendor not found")
)

// AddressError reports the input that failed to parse.
type AddressError struct {
	Input string
	Err   error
}

func (e *AddressError) Error() string {
	return fmt.Sprintf("%q: %v", e.Input, e.Err)
}

func (e *AddressError) Unwrap() error {
	return e.Err
}

// MACAddress is a validated BSSID.
type MACAddress struct {
	address net.HardwareAddr
}

// ParseMAC parses a BSSID. Accepts "XX:XX:XX:XX:XX:XX", "XX-XX-XX-XX-XX-XX"
// and the bare twelve hex digit form.
func ParseMAC(s string) (MACAddress, error) {
	hw, err := parseOctets(s, 6, ErrInvalidMAC)
	if err != nil {
		return MACAddress{}, err
	}
	return MACAddress{address: hw}, nil
}

// ParseOUI parses a three octet vendor prefix in any of the ParseMAC forms.
func ParseOUI(s string) ([3]byte, error) {
	var p [3]byte
	hw, err := parseOctets(s, 3, ErrInvalidOUI)
	if err != nil {
		return p, err
	}
	copy(p[:], hw)
	return p, nil
}

// parseOctets splits s into n hex octets. net.ParseMAC only knows the
// 6, 8 and 20 octet forms, so octets are decoded one at a time.
func parseOctets(s string, n int, invalid error) (net.HardwareAddr, error) {
	if strings.TrimSpace(s) == "" {
		return nil, ErrEmptyMAC
	}

	normalized := strings.ReplaceAll(strings.TrimSpace(s), "-", ":")
	if !strings.Contains(normalized, ":") && len(normalized) == 2*n {
		parts := make([]string, 0, n)
		for i := 0; i < len(normalized); i += 2 {
			parts = append(parts, normalized[i:i+2])
		}
		normalized = strings.Join(parts, ":")
	}

	parts := strings.Split(normalized, ":")
	if len(parts) != n {
		return nil, &AddressError{Input: s, Err: invalid}
	}
	hw := make(net.HardwareAddr, n)
	for i, part := range parts {
		if len(part) != 2 {
			return nil, &AddressError{Input: s, Err: invalid}
		}
		b, err := strconv.ParseUint(part, 16, 8)
		if err != nil {
			return nil, &AddressError{Input: s, Err: invalid}
		}
		hw[i] = byte(b)
	}
	return hw, nil
}

// Prefix returns the first three octets, the key of the IEEE OUI registry.
func (m MACAddress) Prefix() [3]byte {
	var p [3]byte
	copy(p[:], m.address)
	return p
}

// IsRandomized checks the locally administered bit (0x02 of the first octet).
func (m MACAddress) IsRandomized() bool {
	return len(m.address) > 0 && m.address[0]&0x02 != 0
}

// String returns the address as lowercase "xx:xx:xx:xx:xx:xx", the form
// used for BSSIDs throughout the view.
func (m MACAddress) String() string {
	return m.address.String()
}

// IsValid reports whether m came from ParseMAC.
func (m MACAddress) IsValid() bool {
	return len(m.address) == 6
}
