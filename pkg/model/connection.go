package model

// Connection is the tunnel between two peers, secured by a pre-shared key.
// The pair is unordered; stored connections keep PeerA <= PeerB.
type Connection struct {
	PeerA string
	PeerB string
	PSK   string
}

// Involves reports whether name is one of the two ends.
func (c Connection) Involves(name string) bool {
	return c.PeerA == name || c.PeerB == name
}

// Other returns the end that is not name.
func (c Connection) Other(name string) string {
	if c.PeerA == name {
		return c.PeerB
	}
	return c.PeerA
}

// From returns the connection as seen from name: PeerA is name.
func (c Connection) From(name string) Connection {
	if c.PeerB == name {
		c.PeerA, c.PeerB = c.PeerB, c.PeerA
	}
	return c
}

type pairKey struct {
	a, b string
}

func newPairKey(x, y string) pairKey {
	if x > y {
		x, y = y, x
	}
	return pairKey{a: x, b: y}
}
