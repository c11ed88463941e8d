package ipam

import (
	"math/rand"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNextSlash30(t *testing.T) {
	var used []string
	for _, want := range []string{"10.0.0.1", "10.0.0.2"} {
		a, err := Next("10.0.0.0/30", used, IPv4)
		require.NoError(t, err)
		require.Equal(t, want, a.String())
		used = append(used, a.String())
	}
	_, err := Next("10.0.0.0/30", used, IPv4)
	require.ErrorIs(t, err, ErrPoolExhausted)
}

func TestNextSkipsUsed(t *testing.T) {
	a, err := Next("10.0.0.0/24", []string{"10.0.0.1", "10.0.0.3", "10.0.0.2/24"}, IPv4)
	require.NoError(t, err)
	require.Equal(t, "10.0.0.4", a.String())
}

func TestNextIgnoresOutOfRange(t *testing.T) {
	a, err := Next("10.0.0.0/24", []string{"192.168.1.1"}, IPv4)
	require.NoError(t, err)
	require.Equal(t, "10.0.0.1", a.String())
}

func TestNextIPv6(t *testing.T) {
	a, err := Next("fdc9:281f:4d7:9ee9::/64", nil, IPv6)
	require.NoError(t, err)
	require.Equal(t, "fdc9:281f:4d7:9ee9::1", a.String())

	a, err = Next("fdc9:281f:4d7:9ee9::/64", []string{"fdc9:281f:4d7:9ee9::1"}, IPv6)
	require.NoError(t, err)
	require.Equal(t, "fdc9:281f:4d7:9ee9::2", a.String())
}

func TestHosts(t *testing.T) {
	cases := []struct {
		prefix      string
		first, last string
	}{
		{"10.0.0.0/24", "10.0.0.1", "10.0.0.254"},
		{"10.0.0.7/24", "10.0.0.1", "10.0.0.254"},
		{"10.0.0.0/31", "10.0.0.0", "10.0.0.1"},
		{"10.0.0.5/32", "10.0.0.5", "10.0.0.5"},
		{"fd00::/126", "fd00::1", "fd00::3"},
		{"fd00::/127", "fd00::", "fd00::1"},
		{"fd00::9/128", "fd00::9", "fd00::9"},
	}
	for _, c := range cases {
		first, last := Hosts(netip.MustParsePrefix(c.prefix))
		require.Equal(t, c.first, first.String(), c.prefix)
		require.Equal(t, c.last, last.String(), c.prefix)
	}
}

func TestNextFreeEndOfSpace(t *testing.T) {
	p := netip.MustParsePrefix("255.255.255.254/31")
	used := map[netip.Addr]struct{}{
		netip.MustParseAddr("255.255.255.254"): {},
		netip.MustParseAddr("255.255.255.255"): {},
	}
	_, err := NextFree(p, used)
	require.ErrorIs(t, err, ErrPoolExhausted)
}

func TestNextFreeIsSmallest(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	p := netip.MustParsePrefix("10.1.2.0/28")
	first, last := Hosts(p)
	for i := 0; i < 50; i++ {
		used := map[netip.Addr]struct{}{}
		for a := first; a.Compare(last) <= 0; a = a.Next() {
			if rng.Intn(2) == 0 {
				used[a] = struct{}{}
			}
		}
		got, err := NextFree(p, used)
		if len(used) == 14 {
			require.ErrorIs(t, err, ErrPoolExhausted)
			continue
		}
		require.NoError(t, err)
		require.True(t, p.Contains(got))
		require.NotContains(t, used, got)
		for a := first; a.Less(got); a = a.Next() {
			require.Contains(t, used, a)
		}
	}
}

func TestNextRejectsMalformedUsed(t *testing.T) {
	_, err := Next("10.0.0.0/24", []string{"10.0.0.1", "not-an-ip"}, IPv4)
	require.ErrorIs(t, err, ErrInvalidAddress)

	_, err = Next("10.0.0.0/24", []string{"fd00::1"}, IPv4)
	require.ErrorIs(t, err, ErrInvalidAddress)
}

func TestParsePrefixFamily(t *testing.T) {
	_, err := ParsePrefix("fd00::/64", IPv4)
	require.ErrorIs(t, err, ErrInvalidAddress)
	_, err = ParsePrefix("10.0.0.0", IPv4)
	require.ErrorIs(t, err, ErrInvalidAddress)

	p, err := ParsePrefix(" 10.0.0.9/24 ", IPv4)
	require.NoError(t, err)
	require.Equal(t, "10.0.0.0/24", p.String())
}

func TestParseAddr(t *testing.T) {
	a, err := ParseAddr("10.0.0.3/24", IPv4)
	require.NoError(t, err)
	require.Equal(t, "10.0.0.3", a.String())

	_, err = ParseAddr("::ffff:10.0.0.3", IPv6)
	require.ErrorIs(t, err, ErrInvalidAddress)
	_, err = ParseAddr("fe80::1%eth0", IPv6)
	require.ErrorIs(t, err, ErrInvalidAddress)
}

func TestHostPrefix(t *testing.T) {
	require.Equal(t, "10.0.0.1/32", HostPrefix(netip.MustParseAddr("10.0.0.1")).String())
	require.Equal(t, "fd00::1/128", HostPrefix(netip.MustParseAddr("fd00::1")).String())
}
