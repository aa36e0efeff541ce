package fingerprint

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/gopacket/macs"
)

const (
	VendorUnknown    = "Unknown"
	VendorRandomized = "Randomized"
	DefaultCacheSize = 256
)

// VendorRepository defines the interface for looking up device vendors by MAC address
type VendorRepository interface {
	LookupVendor(ctx context.Context, mac MACAddress) (string, error)
}

// RegistryVendorRepository answers from the IEEE OUI registry shipped with gopacket.
type RegistryVendorRepository struct {
	prefixes map[[3]byte]string
}

// NewRegistryVendorRepository creates a repository over macs.ValidMACPrefixMap.
func NewRegistryVendorRepository() *RegistryVendorRepository {
	return &RegistryVendorRepository{prefixes: macs.ValidMACPrefixMap}
}

// LookupVendor implements VendorRepository.
func (r *RegistryVendorRepository) LookupVendor(ctx context.Context, mac MACAddress) (string, error) {
	if vendor, ok := r.prefixes[mac.Prefix()]; ok && vendor != "" {
		return vendor, nil
	}
	return "", ErrVendorNotFound
}

// StaticVendorRepository answers from operator supplied overrides, checked
// ahead of the registry.
type StaticVendorRepository struct {
	vendors map[[3]byte]string
}

// NewStaticVendorRepository parses the override keys ("00:11:22",
// "00-11-22" or "001122"). An unparsable key or empty vendor is an error.
func NewStaticVendorRepository(vendors map[string]string) (*StaticVendorRepository, error) {
	parsed := make(map[[3]byte]string, len(vendors))
	for oui, vendor := range vendors {
		prefix, err := ParseOUI(oui)
		if err != nil {
			return nil, fmt.Errorf("vendor override: %w", err)
		}
		if strings.TrimSpace(vendor) == "" {
			return nil, fmt.Errorf("vendor override %q: empty vendor", oui)
		}
		parsed[prefix] = strings.TrimSpace(vendor)
	}
	return &StaticVendorRepository{vendors: parsed}, nil
}

// LookupVendor looks up a vendor in the static map
func (s *StaticVendorRepository) LookupVendor(ctx context.Context, mac MACAddress) (string, error) {
	if vendor, ok := s.vendors[mac.Prefix()]; ok {
		return vendor, nil
	}
	return "", ErrVendorNotFound
}

// CompositeVendorRepository tries each repository in order until one succeeds.
type CompositeVendorRepository struct {
	repositories []VendorRepository
}

// NewCompositeVendorRepository creates a new composite repository
func NewCompositeVendorRepository(repos ...VendorRepository) *CompositeVendorRepository {
	return &CompositeVendorRepository{repositories: repos}
}

// LookupVendor tries each repository in order until one returns a result
func (c *CompositeVendorRepository) LookupVendor(ctx context.Context, mac MACAddress) (string, error) {
	if !mac.IsValid() {
		return "", ErrInvalidMAC
	}

	var lastErr error
	for _, repo := range c.repositories {
		vendor, err := repo.LookupVendor(ctx, mac)
		if err == nil && vendor != "" {
			return vendor, nil
		}
		if err != nil && !errors.Is(err, ErrVendorNotFound) {
			lastErr = err
		}
	}

	if lastErr != nil {
		return "", lastErr
	}
	return "", ErrVendorNotFound
}

// Resolver implements ports.VendorResolver on top of a repository and a
// per prefix cache.
type Resolver struct {
	repo  VendorRepository
	cache *vendorCache
}

// NewResolver creates a resolver. A nil repo uses the gopacket registry.
func NewResolver(repo VendorRepository, cacheSize int) *Resolver {
	if repo == nil {
		repo = NewRegistryVendorRepository()
	}
	return &Resolver{repo: repo, cache: newVendorCache(cacheSize)}
}

// Vendor returns the manufacturer for a BSSID, VendorRandomized for locally
// administered addresses, or VendorUnknown.
func (r *Resolver) Vendor(ctx context.Context, bssid string) string {
	mac, err := ParseMAC(bssid)
	if err != nil {
		return VendorUnknown
	}
	if mac.IsRandomized() {
		return VendorRandomized
	}

	prefix := mac.Prefix()
	if vendor, ok := r.cache.lookup(prefix); ok {
		return vendor
	}

	vendor, err := r.repo.LookupVendor(ctx, mac)
	if err != nil || vendor == "" {
		vendor = VendorUnknown
	}
	r.cache.store(prefix, vendor)
	return vendor
}
