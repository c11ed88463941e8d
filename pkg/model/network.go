package model

import (
	"context"
	"fmt"
	"net/netip"

	"wgadmin/pkg/ipam"
	"wgadmin/pkg/keys"
)

// Network is the aggregate of all peers and their connections.
//
// Each connection is stored once under its unordered pair of peer names, so
// both ends always see the same pre-shared key. A Network is not safe for
// concurrent use.
type Network struct {
	settings Settings

	order []string
	peers map[string]Peer

	conns     []Connection
	connIndex map[pairKey]int
}

// New returns an empty network.
func New(settings Settings) *Network {
	return &Network{
		settings:  settings.withDefaults(),
		peers:     make(map[string]Peer),
		connIndex: make(map[pairKey]int),
	}
}

func (n *Network) Settings() Settings {
	return n.settings
}

// Len returns the number of peers.
func (n *Network) Len() int {
	return len(n.order)
}

func (n *Network) Peer(name string) (Peer, bool) {
	p, ok := n.peers[name]
	return p, ok
}

// Peers lists peers in insertion order.
func (n *Network) Peers() []Peer {
	out := make([]Peer, 0, len(n.order))
	for _, name := range n.order {
		out = append(out, n.peers[name])
	}
	return out
}

// Connections lists connections in insertion order, each with PeerA <= PeerB.
func (n *Network) Connections() []Connection {
	out := make([]Connection, len(n.conns))
	copy(out, n.conns)
	return out
}

// Connection looks up the connection between a and b in either order.
func (n *Network) Connection(a, b string) (Connection, bool) {
	idx, ok := n.connIndex[newPairKey(a, b)]
	if !ok {
		return Connection{}, false
	}
	return n.conns[idx].From(a), true
}

// ConnectionsOf lists the connections of name, each oriented so PeerA == name.
func (n *Network) ConnectionsOf(name string) []Connection {
	var out []Connection
	for _, c := range n.conns {
		if c.Involves(name) {
			out = append(out, c.From(name))
		}
	}
	return out
}

// AddPeer creates a peer and inserts it. Addresses are drawn from the pools
// of enabled families unless given explicitly; explicit addresses are not
// checked against other peers (see AddressOwners). Nothing is inserted
// unless every step succeeds.
func (n *Network) AddPeer(ctx context.Context, kp keys.Provider, opts PeerOptions) (Peer, error) {
	if err := ValidateName(opts.Name); err != nil {
		return Peer{}, err
	}
	_, exists := n.peers[opts.Name]
	if exists && !opts.Force {
		return Peer{}, fmt.Errorf("%w: %q", ErrPeerAlreadyExists, opts.Name)
	}
	for _, fam := range []ipam.Family{ipam.IPv4, ipam.IPv6} {
		if !n.settings.Enabled(fam) {
			continue
		}
		if (fam == ipam.IPv4 && opts.IPv4 != "") || (fam == ipam.IPv6 && opts.IPv6 != "") {
			continue
		}
		a, err := n.nextAddress(fam, opts.Name)
		if err != nil {
			return Peer{}, fmt.Errorf("peer %q: %w", opts.Name, err)
		}
		if fam == ipam.IPv4 {
			opts.IPv4 = a.String()
		} else {
			opts.IPv6 = a.String()
		}
	}
	p, err := NewPeer(ctx, kp, opts)
	if err != nil {
		return Peer{}, err
	}
	n.putPeer(p)
	return p, nil
}

// NextAddress returns the address the next auto-assigned peer would get.
func (n *Network) NextAddress(fam ipam.Family) (netip.Addr, error) {
	return n.nextAddress(fam, "")
}

// nextAddress ignores the addresses of peer skip, which is about to be replaced.
func (n *Network) nextAddress(fam ipam.Family, skip string) (netip.Addr, error) {
	used := make([]string, 0, len(n.order))
	for _, name := range n.order {
		if name == skip {
			continue
		}
		if a := n.peers[name].Address(fam); a != "" {
			used = append(used, a)
		}
	}
	return ipam.Next(n.settings.Range(fam), used, fam)
}

// AddressOwners returns the peers holding addr, in insertion order.
// Unparseable stored addresses never match.
func (n *Network) AddressOwners(addr string) []string {
	var owners []string
	for _, fam := range []ipam.Family{ipam.IPv4, ipam.IPv6} {
		want, err := ipam.ParseAddr(addr, fam)
		if err != nil {
			continue
		}
		for _, name := range n.order {
			have, err := ipam.ParseAddr(n.peers[name].Address(fam), fam)
			if err == nil && have == want {
				owners = append(owners, name)
			}
		}
	}
	return owners
}

// AddConnection connects a and b. An empty psk is generated once and shared
// by both ends. An existing connection between the pair is an error unless
// force is set, in which case its key is replaced.
func (n *Network) AddConnection(ctx context.Context, kp keys.Provider, a, b, psk string, force bool) (Connection, error) {
	for _, name := range []string{a, b} {
		if _, ok := n.peers[name]; !ok {
			return Connection{}, fmt.Errorf("%w: %q", ErrPeerNotFound, name)
		}
	}
	if a == b {
		return Connection{}, fmt.Errorf("%w: %q", ErrSelfConnection, a)
	}
	key := newPairKey(a, b)
	idx, exists := n.connIndex[key]
	if exists && !force {
		return Connection{}, fmt.Errorf("%w: %q <-> %q", ErrConnectionExists, key.a, key.b)
	}
	if psk == "" {
		if kp == nil {
			return Connection{}, fmt.Errorf("%w: no key provider configured", ErrProviderUnavailable)
		}
		var err error
		if psk, err = kp.NewPresharedKey(ctx); err != nil {
			return Connection{}, fmt.Errorf("connection %q <-> %q: %w", key.a, key.b, err)
		}
	}
	c := Connection{PeerA: key.a, PeerB: key.b, PSK: psk}
	if exists {
		n.conns[idx] = c
	} else {
		n.connIndex[key] = len(n.conns)
		n.conns = append(n.conns, c)
	}
	return c.From(a), nil
}

func (n *Network) putPeer(p Peer) {
	if _, exists := n.peers[p.Name]; !exists {
		n.order = append(n.order, p.Name)
	}
	n.peers[p.Name] = p
}
