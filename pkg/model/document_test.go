package model

import (
	"context"
	"encoding/json"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"wgadmin/pkg/keys/keystest"
)

func buildNetwork(t testing.TB) *Network {
	ctx := context.Background()
	kp := &keystest.Provider{}
	s := DefaultSettings()
	s.IPv6 = true
	n := New(s)
	for _, opts := range []PeerOptions{
		{Name: "gateway", EndpointAddress: "vpn.example.com:51902", Port: 51820, PortSet: true},
		{Name: "laptop", Interface: "wg-home"},
		{Name: "alpha"},
		{Name: "phone", IPv4: "10.0.0.50"},
	} {
		_, err := n.AddPeer(ctx, kp, opts)
		require.NoError(t, err)
	}
	for _, pair := range [][2]string{{"laptop", "gateway"}, {"gateway", "phone"}, {"alpha", "gateway"}, {"phone", "laptop"}} {
		_, err := n.AddConnection(ctx, kp, pair[0], pair[1], "", false)
		require.NoError(t, err)
	}
	return n
}

func TestSerializeShape(t *testing.T) {
	n := New(DefaultSettings())
	ctx := context.Background()
	kp := &keystest.Provider{}
	for _, name := range []string{"a", "b"} {
		_, err := n.AddPeer(ctx, kp, PeerOptions{Name: name})
		require.NoError(t, err)
	}
	_, err := n.AddConnection(ctx, kp, "a", "b", "", false)
	require.NoError(t, err)

	data, err := Marshal(n)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Equal(t, map[string]any{
		"ipv4": true, "ipv6": false,
		"ipv4_range": "10.0.0.0/24", "ipv6_range": "fdc9:281f:4d7:9ee9::/64",
	}, raw["settings"])
	require.Equal(t, []any{
		map[string]any{"peer_a": "a", "peer_b": "b", "psk": "psk-1"},
	}, raw["connections"])
	peers := raw["peers"].(map[string]any)
	require.Equal(t, map[string]any{
		"name": "a", "interface": "wg0", "ipv4": "10.0.0.1", "ipv6": "",
		"port": "51902", "private_key": "priv-1", "public_key": "pub(priv-1)",
		"endpoint_address": "",
	}, peers["a"])
}

func TestRoundTrip(t *testing.T) {
	n := buildNetwork(t)
	data, err := Marshal(n)
	require.NoError(t, err)

	n2, err := Unmarshal(data)
	require.NoError(t, err)
	require.Equal(t, n.Settings(), n2.Settings())
	require.Equal(t, n.Peers(), n2.Peers())
	require.ElementsMatch(t, n.Connections(), n2.Connections())

	data2, err := Marshal(n2)
	require.NoError(t, err)
	require.Equal(t, string(data), string(data2))
}

func TestSerializeListsEachPairOnce(t *testing.T) {
	doc := buildNetwork(t).Serialize()
	seen := map[[2]string]bool{}
	for _, c := range doc.Connections {
		pair := [2]string{c.PeerA, c.PeerB}
		sort.Strings(pair[:])
		require.False(t, seen[pair], "duplicate %v", pair)
		require.LessOrEqual(t, c.PeerA, c.PeerB)
		seen[pair] = true
	}
	require.Len(t, seen, 4)
}

func TestPeerOrderSurvivesRoundTrip(t *testing.T) {
	n := buildNetwork(t)
	data, err := Marshal(n)
	require.NoError(t, err)
	n2, err := Unmarshal(data)
	require.NoError(t, err)
	require.Equal(t, []string{"gateway", "laptop", "alpha", "phone"}, names(n2.Peers()))
}

func TestDeserializeNormalizesConnectionOrder(t *testing.T) {
	doc := `{
  "peers": {
    "b": {"interface": "wg0", "ipv4": "", "ipv6": "", "private_key": "k1", "public_key": "p1"},
    "a": {"interface": "wg0", "ipv4": "", "ipv6": "", "private_key": "k2", "public_key": "p2"}
  },
  "connections": [{"peer_a": "b", "peer_b": "a", "psk": "s"}]
}`
	n, err := Unmarshal([]byte(doc))
	require.NoError(t, err)
	require.Equal(t, []Connection{{PeerA: "a", PeerB: "b", PSK: "s"}}, n.Connections())

	// documents without a settings section never auto-assign
	require.False(t, n.Settings().IPv4)
	require.False(t, n.Settings().IPv6)
	p, _ := n.Peer("b")
	require.Equal(t, "b", p.Name)
	require.Equal(t, DefaultPort, p.Port)

	out := n.Serialize()
	require.Equal(t, []ConnectionEntry{{PeerA: "a", PeerB: "b", PSK: "s"}}, out.Connections)
}

func TestDeserializeKeepsKeysVerbatim(t *testing.T) {
	doc := `{"settings": {"ipv4": true, "ipv6": false, "ipv4_range": "10.9.0.0/24", "ipv6_range": "fd00::/64"},
"peers": {"a": {"name": "a", "interface": "wg0", "ipv4": "10.9.0.1", "ipv6": "", "port": 1234,
"private_key": "k", "public_key": "not-derived", "endpoint_address": "h:1"}}, "connections": []}`
	n, err := Unmarshal([]byte(doc))
	require.NoError(t, err)
	p, ok := n.Peer("a")
	require.True(t, ok)
	require.Equal(t, "not-derived", p.PublicKey)
	require.Equal(t, uint16(1234), p.Port)
	require.True(t, p.IsEndpoint())

	a, err := n.AddPeer(context.Background(), &keystest.Provider{}, PeerOptions{Name: "b"})
	require.NoError(t, err)
	require.Equal(t, "10.9.0.2", a.AddressIPv4)
}

func TestDeserializeMalformed(t *testing.T) {
	const peer = `"interface": "wg0", "private_key": "k", "public_key": "p"`
	cases := map[string]string{
		"not json":           `{`,
		"peers not object":   `{"peers": []}`,
		"missing interface":  `{"peers": {"a": {"private_key": "k", "public_key": "p"}}}`,
		"missing public key": `{"peers": {"a": {"interface": "wg0", "private_key": "k"}}}`,
		"port out of range":  `{"peers": {"a": {` + peer + `, "port": "70000"}}}`,
		"port not numeric":   `{"peers": {"a": {` + peer + `, "port": "ssh"}}}`,
		"port signed":        `{"peers": {"a": {` + peer + `, "port": "+80"}}}`,
		"name mismatch":      `{"peers": {"a": {` + peer + `, "name": "b"}}}`,
		"duplicate peer":     `{"peers": {"a": {` + peer + `}, "a": {` + peer + `}}}`,
		"unknown peer":       `{"peers": {"a": {` + peer + `}}, "connections": [{"peer_a": "a", "peer_b": "z", "psk": "s"}]}`,
		"missing psk":        `{"peers": {"a": {` + peer + `}, "b": {` + peer + `}}, "connections": [{"peer_a": "a", "peer_b": "b"}]}`,
		"self connection":    `{"peers": {"a": {` + peer + `}}, "connections": [{"peer_a": "a", "peer_b": "a", "psk": "s"}]}`,
		"duplicate pair":     `{"peers": {"a": {` + peer + `}, "b": {` + peer + `}}, "connections": [{"peer_a": "a", "peer_b": "b", "psk": "s"}, {"peer_a": "b", "peer_b": "a", "psk": "t"}]}`,
		"bad range":          `{"settings": {"ipv4": true, "ipv4_range": "10.0.0.0/33"}, "peers": {}}`,
		"null document":      `null`,
		"empty object":       `{}`,
		"null peers":         `{"peers": null, "connections": []}`,
		"settings only":      `{"settings": {"ipv4": true, "ipv6": false, "ipv4_range": "10.0.0.0/24", "ipv6_range": "fd00::/64"}}`,
	}
	for name, doc := range cases {
		_, err := Unmarshal([]byte(doc))
		require.ErrorIs(t, err, ErrMalformedDocument, name)
	}

	_, err := Unmarshal([]byte(`{"peers": {"a": {` + peer + `, "port": "70000"}}}`))
	require.ErrorIs(t, err, ErrInvalidPort)
	_, err = Unmarshal([]byte(cases["unknown peer"]))
	require.ErrorIs(t, err, ErrPeerNotFound)
	_, err = Deserialize(Document{})
	require.ErrorIs(t, err, ErrMalformedDocument)
}

func TestPSKStableAcrossRoundTrips(t *testing.T) {
	ctx := context.Background()
	kp := &keystest.Provider{}
	n := New(DefaultSettings())
	for _, name := range []string{"a", "b"} {
		_, err := n.AddPeer(ctx, kp, PeerOptions{Name: name})
		require.NoError(t, err)
	}
	_, err := n.AddConnection(ctx, kp, "a", "b", "", false)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		data, err := Marshal(n)
		require.NoError(t, err)
		n, err = Unmarshal(data)
		require.NoError(t, err)
	}
	require.Equal(t, []Connection{{PeerA: "a", PeerB: "b", PSK: "psk-1"}}, n.Connections())
	require.Equal(t, 1, kp.PSK)
}

func TestEmptyNetworkRoundTrip(t *testing.T) {
	data, err := Marshal(New(DefaultSettings()))
	require.NoError(t, err)
	require.Contains(t, string(data), `"connections": []`)
	require.Contains(t, string(data), `"peers": {}`)
	n, err := Unmarshal(data)
	require.NoError(t, err)
	require.Equal(t, 0, n.Len())
}
