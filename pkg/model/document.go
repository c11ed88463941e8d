package model

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Document is the persisted form of a Network.
type Document struct {
	Settings    *Settings         `json:"settings,omitempty"`
	Peers       PeerTable         `json:"peers"`
	Connections []ConnectionEntry `json:"connections"`
}

// PeerEntry is one peer of a Document. Port is text so the field keeps one
// type across format revisions.
type PeerEntry struct {
	Name            string `json:"name"`
	Interface       string `json:"interface"`
	IPv4            string `json:"ipv4"`
	IPv6            string `json:"ipv6"`
	Port            Port   `json:"port"`
	PrivateKey      string `json:"private_key"`
	PublicKey       string `json:"public_key"`
	EndpointAddress string `json:"endpoint_address"`
}

type ConnectionEntry struct {
	PeerA string `json:"peer_a"`
	PeerB string `json:"peer_b"`
	PSK   string `json:"psk"`
}

// Port is a decimal port. It is written as a JSON string and read from a
// JSON string or number.
type Port string

func (p *Port) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*p = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = Port(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("port: %w", err)
	}
	*p = Port(n.String())
	return nil
}

// PeerTable is the "peers" object of a Document, keyed by peer name. Unlike
// a Go map it keeps the order peers appear in.
type PeerTable []PeerEntry

func (t PeerTable) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range t {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(e)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the object in document order. An entry without a name
// takes its key; a name that differs from its key is an error. An empty
// object decodes to an empty, non-nil table; null leaves it nil.
func (t *PeerTable) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*t = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("peers: expected object, got %v", tok)
	}
	out := PeerTable{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("peers: expected key, got %v", tok)
		}
		var e PeerEntry
		if err := dec.Decode(&e); err != nil {
			return fmt.Errorf("peer %q: %w", key, err)
		}
		if e.Name == "" {
			e.Name = key
		}
		if e.Name != key {
			return fmt.Errorf("peer %q: name %q does not match its key", key, e.Name)
		}
		out = append(out, e)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*t = out
	return nil
}

// Serialize returns the document form of n. Connections are listed once per
// pair, with peer_a <= peer_b.
func (n *Network) Serialize() Document {
	s := n.settings
	doc := Document{
		Settings:    &s,
		Peers:       make(PeerTable, 0, len(n.order)),
		Connections: make([]ConnectionEntry, 0, len(n.conns)),
	}
	for _, name := range n.order {
		p := n.peers[name]
		doc.Peers = append(doc.Peers, PeerEntry{
			Name:            p.Name,
			Interface:       p.Interface,
			IPv4:            p.AddressIPv4,
			IPv6:            p.AddressIPv6,
			Port:            Port(strconv.Itoa(int(p.Port))),
			PrivateKey:      p.PrivateKey,
			PublicKey:       p.PublicKey,
			EndpointAddress: p.EndpointAddress,
		})
	}
	for _, c := range n.conns {
		if c.PeerA > c.PeerB {
			continue
		}
		doc.Connections = append(doc.Connections, ConnectionEntry{PeerA: c.PeerA, PeerB: c.PeerB, PSK: c.PSK})
	}
	return doc
}

// Deserialize rebuilds a Network from doc. Stored keys are used verbatim;
// connections are replayed through AddConnection. A document without a
// peers table is malformed.
func Deserialize(doc Document) (*Network, error) {
	if doc.Peers == nil {
		return nil, wrap(ErrMalformedDocument, errors.New("missing peers"))
	}
	settings := legacySettings()
	if doc.Settings != nil {
		settings = doc.Settings.withDefaults()
	}
	if err := settings.Validate(); err != nil {
		return nil, wrap(ErrMalformedDocument, fmt.Errorf("settings: %w", err))
	}
	n := New(settings)
	for _, e := range doc.Peers {
		p, err := e.peer()
		if err != nil {
			return nil, wrap(ErrMalformedDocument, fmt.Errorf("peer %q: %w", e.Name, err))
		}
		if _, dup := n.peers[p.Name]; dup {
			return nil, wrap(ErrMalformedDocument, fmt.Errorf("peer %q: %w", p.Name, ErrPeerAlreadyExists))
		}
		n.putPeer(p)
	}
	for i, e := range doc.Connections {
		if e.PeerA == "" || e.PeerB == "" || e.PSK == "" {
			return nil, wrap(ErrMalformedDocument, fmt.Errorf("connection %d: peer_a, peer_b and psk are required", i))
		}
		if _, err := n.AddConnection(context.Background(), nil, e.PeerA, e.PeerB, e.PSK, false); err != nil {
			return nil, wrap(ErrMalformedDocument, fmt.Errorf("connection %d: %w", i, err))
		}
	}
	return n, nil
}

func (e PeerEntry) peer() (Peer, error) {
	if err := ValidateName(e.Name); err != nil {
		return Peer{}, err
	}
	required := []struct{ field, value string }{
		{"interface", e.Interface},
		{"private_key", e.PrivateKey},
		{"public_key", e.PublicKey},
	}
	for _, r := range required {
		if r.value == "" {
			return Peer{}, fmt.Errorf("missing %s", r.field)
		}
	}
	port := DefaultPort
	if e.Port != "" {
		var err error
		if port, err = ParsePort(string(e.Port)); err != nil {
			return Peer{}, err
		}
	}
	return Peer{
		Name:            e.Name,
		Interface:       e.Interface,
		AddressIPv4:     e.IPv4,
		AddressIPv6:     e.IPv6,
		Port:            port,
		PrivateKey:      e.PrivateKey,
		PublicKey:       e.PublicKey,
		EndpointAddress: e.EndpointAddress,
	}, nil
}

// Marshal encodes n as an indented JSON document.
func Marshal(n *Network) ([]byte, error) {
	data, err := json.MarshalIndent(n.Serialize(), "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Unmarshal decodes a JSON document. Every failure wraps ErrMalformedDocument.
func Unmarshal(data []byte) (*Network, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, wrap(ErrMalformedDocument, err)
	}
	return Deserialize(doc)
}
