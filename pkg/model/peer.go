package model

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"wgadmin/pkg/ipam"
	"wgadmin/pkg/keys"
)

const (
	DefaultInterface        = "wg0"
	DefaultPort      uint16 = 51902
)

// Peer is one WireGuard node of the network.
type Peer struct {
	Name            string
	Interface       string
	AddressIPv4     string
	AddressIPv6     string
	Port            uint16
	PrivateKey      string
	PublicKey       string
	EndpointAddress string // host:port, set only for peers reachable from outside
}

// IsEndpoint reports whether other peers can dial this one directly.
func (p Peer) IsEndpoint() bool {
	return p.EndpointAddress != ""
}

// Address returns the peer's address of the given family, or "".
func (p Peer) Address(fam ipam.Family) string {
	switch fam {
	case ipam.IPv4:
		return p.AddressIPv4
	case ipam.IPv6:
		return p.AddressIPv6
	default:
		return ""
	}
}

// PeerOptions describes a peer to create. Empty fields take defaults or are
// generated.
type PeerOptions struct {
	Name            string
	Interface       string
	IPv4            string
	IPv6            string
	Port            uint16
	PortSet         bool // Port is used as given, even 0
	EndpointAddress string
	PrivateKey      string
	PublicKey       string

	// Force replaces an existing peer of the same name.
	Force bool
}

// NewPeer builds a peer from opts. A missing private key is generated; a
// missing public key is derived from the private key in use, supplied or not.
func NewPeer(ctx context.Context, kp keys.Provider, opts PeerOptions) (Peer, error) {
	if err := ValidateName(opts.Name); err != nil {
		return Peer{}, err
	}
	p := Peer{
		Name:            opts.Name,
		Interface:       opts.Interface,
		Port:            DefaultPort,
		PrivateKey:      opts.PrivateKey,
		PublicKey:       opts.PublicKey,
		EndpointAddress: strings.TrimSpace(opts.EndpointAddress),
	}
	if p.Interface == "" {
		p.Interface = DefaultInterface
	}
	if opts.PortSet {
		p.Port = opts.Port
	}
	if opts.IPv4 != "" {
		a, err := ipam.ParseAddr(opts.IPv4, ipam.IPv4)
		if err != nil {
			return Peer{}, err
		}
		p.AddressIPv4 = a.String()
	}
	if opts.IPv6 != "" {
		a, err := ipam.ParseAddr(opts.IPv6, ipam.IPv6)
		if err != nil {
			return Peer{}, err
		}
		p.AddressIPv6 = a.String()
	}

	if p.PrivateKey == "" || p.PublicKey == "" {
		if kp == nil {
			return Peer{}, fmt.Errorf("%w: no key provider configured", ErrProviderUnavailable)
		}
	}
	if p.PrivateKey == "" {
		priv, err := kp.NewPrivateKey(ctx)
		if err != nil {
			return Peer{}, fmt.Errorf("peer %q: %w", p.Name, err)
		}
		p.PrivateKey = priv
	}
	if p.PublicKey == "" {
		pub, err := kp.PublicKey(ctx, p.PrivateKey)
		if err != nil {
			return Peer{}, fmt.Errorf("peer %q: %w", p.Name, err)
		}
		p.PublicKey = pub
	}
	return p, nil
}

// ValidateName rejects names that cannot key a peer or name a config directory.
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: empty", ErrInvalidName)
	case name != strings.TrimSpace(name), strings.ContainsAny(name, "/\\"), name == ".", name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// ParsePort parses a decimal port in [0, 65535]. Only plain digits are
// accepted: no sign, no spaces.
func ParsePort(s string) (uint16, error) {
	if s == "" || strings.TrimLeft(s, "0123456789") != "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPort, s)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPort, s)
	}
	if n < 0 || n > 65535 {
		return 0, fmt.Errorf("%w: %d out of range", ErrInvalidPort, n)
	}
	return uint16(n), nil
}
