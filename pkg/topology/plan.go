// Package topology plans which peers of a network should be connected.
package topology

import (
	"errors"
	"fmt"

	"wgadmin/pkg/model"
)

var ErrNoHubs = errors.New("hub topology needs at least one hub")

// Pair is an unordered pair of peer names.
type Pair [2]string

// FullMesh returns every pair of peers not yet connected, in peer order.
func FullMesh(n *model.Network) []Pair {
	peers := n.Peers()
	var out []Pair
	for i := range peers {
		for j := i + 1; j < len(peers); j++ {
			a, b := peers[i].Name, peers[j].Name
			if _, ok := n.Connection(a, b); !ok {
				out = append(out, Pair{a, b})
			}
		}
	}
	return out
}

// HubAndSpoke returns the missing pairs of a star around hubs: every other
// peer connects to each hub and hubs connect to each other. With no hubs
// named, the endpoint peers are the hubs.
func HubAndSpoke(n *model.Network, hubs []string) ([]Pair, error) {
	isHub := make(map[string]bool, len(hubs))
	for _, h := range hubs {
		if _, ok := n.Peer(h); !ok {
			return nil, fmt.Errorf("hub %q: %w", h, model.ErrPeerNotFound)
		}
		isHub[h] = true
	}
	if len(isHub) == 0 {
		for _, p := range n.Peers() {
			if p.IsEndpoint() {
				isHub[p.Name] = true
			}
		}
	}
	if len(isHub) == 0 {
		return nil, ErrNoHubs
	}

	// hubs in peer order
	var ordered []string
	for _, p := range n.Peers() {
		if isHub[p.Name] {
			ordered = append(ordered, p.Name)
		}
	}

	var out []Pair
	for i, hub := range ordered {
		for _, p := range n.Peers() {
			if p.Name == hub {
				continue
			}
			// each hub pair once
			if isHub[p.Name] && indexOf(ordered, p.Name) < i {
				continue
			}
			if _, ok := n.Connection(hub, p.Name); !ok {
				out = append(out, Pair{hub, p.Name})
			}
		}
	}
	return out, nil
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}
