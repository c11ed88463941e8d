package ipam

import (
	"errors"
	"fmt"
	"net/netip"
	"strings"
)

var (
	ErrPoolExhausted  = errors.New("address pool exhausted")
	ErrInvalidAddress = errors.New("invalid address")
)

// Family selects the IP version an address or pool belongs to.
type Family int

const (
	IPv4 Family = 4
	IPv6 Family = 6
)

func (f Family) String() string {
	switch f {
	case IPv4:
		return "ipv4"
	case IPv6:
		return "ipv6"
	default:
		return fmt.Sprintf("family(%d)", int(f))
	}
}

// Contains reports whether a belongs to the family. IPv4-mapped IPv6
// addresses count as neither.
func (f Family) Contains(a netip.Addr) bool {
	switch f {
	case IPv4:
		return a.Is4()
	case IPv6:
		return a.Is6() && !a.Is4In6()
	default:
		return false
	}
}

// ParsePrefix parses a CIDR range of the given family and returns it masked.
func ParsePrefix(s string, fam Family) (netip.Prefix, error) {
	p, err := netip.ParsePrefix(strings.TrimSpace(s))
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("%w: range %q: %v", ErrInvalidAddress, s, err)
	}
	if !fam.Contains(p.Addr()) {
		return netip.Prefix{}, fmt.Errorf("%w: range %q is not %s", ErrInvalidAddress, s, fam)
	}
	return p.Masked(), nil
}

// ParseAddr parses a single address of the given family. A trailing prefix
// length ("10.0.0.1/24") is accepted and ignored.
func ParseAddr(s string, fam Family) (netip.Addr, error) {
	s = strings.TrimSpace(s)
	var (
		a   netip.Addr
		err error
	)
	if strings.Contains(s, "/") {
		var p netip.Prefix
		p, err = netip.ParsePrefix(s)
		a = p.Addr()
	} else {
		a, err = netip.ParseAddr(s)
	}
	if err != nil {
		return netip.Addr{}, fmt.Errorf("%w: %q: %v", ErrInvalidAddress, s, err)
	}
	if a.Zone() != "" || !fam.Contains(a) {
		return netip.Addr{}, fmt.Errorf("%w: %q is not an %s address", ErrInvalidAddress, s, fam)
	}
	return a, nil
}

// Hosts returns the first and last assignable host addresses of p.
//
// IPv4 ranges exclude the network and broadcast addresses, IPv6 ranges
// exclude only the Subnet-Router anycast (network) address. Point-to-point
// ranges (/31, /127) and single-host ranges (/32, /128) use every address.
func Hosts(p netip.Prefix) (first, last netip.Addr) {
	p = p.Masked()
	first = p.Addr()
	last = lastAddr(p)
	switch p.Addr().BitLen() - p.Bits() {
	case 0, 1:
		return first, last
	}
	first = first.Next()
	if p.Addr().Is4() {
		last = last.Prev()
	}
	return first, last
}

// NextFree returns the numerically smallest host address of p that is not in used.
func NextFree(p netip.Prefix, used map[netip.Addr]struct{}) (netip.Addr, error) {
	if !p.IsValid() {
		return netip.Addr{}, fmt.Errorf("%w: invalid range", ErrInvalidAddress)
	}
	first, last := Hosts(p)
	for a := first; a.IsValid() && a.Compare(last) <= 0; a = a.Next() {
		if _, ok := used[a]; !ok {
			return a, nil
		}
	}
	return netip.Addr{}, fmt.Errorf("%w: %s", ErrPoolExhausted, p.Masked())
}

// Next parses rangeCIDR and the textual used addresses and returns the next
// free host. A malformed used address is an error, never skipped.
func Next(rangeCIDR string, used []string, fam Family) (netip.Addr, error) {
	p, err := ParsePrefix(rangeCIDR, fam)
	if err != nil {
		return netip.Addr{}, err
	}
	set := make(map[netip.Addr]struct{}, len(used))
	for _, s := range used {
		a, err := ParseAddr(s, fam)
		if err != nil {
			return netip.Addr{}, fmt.Errorf("used address: %w", err)
		}
		set[a] = struct{}{}
	}
	return NextFree(p, set)
}

// HostPrefix returns a single-host prefix (/32 or /128) for a.
func HostPrefix(a netip.Addr) netip.Prefix {
	return netip.PrefixFrom(a, a.BitLen())
}

func lastAddr(p netip.Prefix) netip.Addr {
	b := p.Addr().AsSlice()
	for i := p.Bits(); i < len(b)*8; i++ {
		b[i/8] |= 0x80 >> (i % 8)
	}
	a, _ := netip.AddrFromSlice(b)
	return a
}
