package model

import (
	"fmt"
	"sort"
)

// RemoteView is the far end of one connection, with everything a local
// config needs to reach it.
type RemoteView struct {
	Name            string
	PublicKey       string
	AddressIPv4     string
	AddressIPv6     string
	EndpointAddress string
	Port            uint16
	PSK             string
}

func (r RemoteView) IsEndpoint() bool {
	return r.EndpointAddress != ""
}

// PeerView is a read-only snapshot of a peer and its resolved connections,
// sufficient to render the peer's config without the Network.
type PeerView struct {
	Peer
	Remotes []RemoteView
}

// View resolves name and its connections. Remotes are sorted by name.
func (n *Network) View(name string) (PeerView, error) {
	p, ok := n.peers[name]
	if !ok {
		return PeerView{}, fmt.Errorf("%w: %q", ErrPeerNotFound, name)
	}
	v := PeerView{Peer: p}
	for _, c := range n.ConnectionsOf(name) {
		r := n.peers[c.PeerB]
		v.Remotes = append(v.Remotes, RemoteView{
			Name:            r.Name,
			PublicKey:       r.PublicKey,
			AddressIPv4:     r.AddressIPv4,
			AddressIPv6:     r.AddressIPv6,
			EndpointAddress: r.EndpointAddress,
			Port:            r.Port,
			PSK:             c.PSK,
		})
	}
	sort.SliceStable(v.Remotes, func(i, j int) bool {
		return v.Remotes[i].Name < v.Remotes[j].Name
	})
	return v, nil
}
