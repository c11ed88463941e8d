package model

import (
	"fmt"

	"wgadmin/pkg/ipam"
)

const (
	DefaultIPv4Range = "10.0.0.0/24"
	DefaultIPv6Range = "fdc9:281f:4d7:9ee9::/64"
)

// Settings is the network-wide addressing policy.
type Settings struct {
	IPv4      bool   `json:"ipv4"`      // auto-assign IPv4 addresses
	IPv6      bool   `json:"ipv6"`      // auto-assign IPv6 addresses
	IPv4Range string `json:"ipv4_range"`
	IPv6Range string `json:"ipv6_range"`
}

// DefaultSettings is used for new networks.
func DefaultSettings() Settings {
	return Settings{
		IPv4:      true,
		IPv6:      false,
		IPv4Range: DefaultIPv4Range,
		IPv6Range: DefaultIPv6Range,
	}
}

// legacySettings applies to documents written before the settings section
// existed: nothing was ever auto-assigned.
func legacySettings() Settings {
	return Settings{
		IPv4Range: DefaultIPv4Range,
		IPv6Range: DefaultIPv6Range,
	}
}

// Range returns the pool of the given family.
func (s Settings) Range(fam ipam.Family) string {
	if fam == ipam.IPv6 {
		return s.IPv6Range
	}
	return s.IPv4Range
}

// Enabled reports whether auto-assignment is on for fam.
func (s Settings) Enabled(fam ipam.Family) bool {
	if fam == ipam.IPv6 {
		return s.IPv6
	}
	return s.IPv4
}

func (s Settings) withDefaults() Settings {
	if s.IPv4Range == "" {
		s.IPv4Range = DefaultIPv4Range
	}
	if s.IPv6Range == "" {
		s.IPv6Range = DefaultIPv6Range
	}
	return s
}

// Validate checks that both ranges parse as CIDRs of their family.
func (s Settings) Validate() error {
	if _, err := ipam.ParsePrefix(s.IPv4Range, ipam.IPv4); err != nil {
		return fmt.Errorf("ipv4_range: %w", err)
	}
	if _, err := ipam.ParsePrefix(s.IPv6Range, ipam.IPv6); err != nil {
		return fmt.Errorf("ipv6_range: %w", err)
	}
	return nil
}
