package wireguard

import (
	"errors"
	"fmt"
	"strings"

	"wgadmin/pkg/ipam"
	"wgadmin/pkg/model"
)

// PersistentKeepalive is sent towards endpoint peers by peers that are not
// reachable themselves, to keep NAT mappings open.
const PersistentKeepalive = 25

var (
	ErrUnknownFormat = errors.New("unknown config format")
	ErrNoAllowedIPs  = errors.New("remote peer has no tunnel address")
)

// Format is an output config flavour.
type Format string

const (
	FormatWGQuick        Format = "wg-quick"
	FormatNetworkManager Format = "nm-connection"
)

// Formats lists every supported format.
var Formats = []Format{FormatWGQuick, FormatNetworkManager}

// Extension returns the file suffix configs of this format use.
func (f Format) Extension() string {
	switch f {
	case FormatWGQuick:
		return ".conf"
	case FormatNetworkManager:
		return ".nmconnection"
	default:
		return ""
	}
}

// Render renders view in the given format.
func Render(f Format, view model.PeerView) (string, error) {
	switch f {
	case FormatWGQuick:
		return RenderWGQuick(view)
	case FormatNetworkManager:
		return RenderNetworkManager(view)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

// RenderWGQuick produces a wg-quick compatible config for one peer.
func RenderWGQuick(view model.PeerView) (string, error) {
	var b strings.Builder
	b.WriteString("[Interface]\n")
	fmt.Fprintf(&b, "# Name = %s\n", view.Name)
	fmt.Fprintf(&b, "PrivateKey = %s\n", view.PrivateKey)
	addrs, err := hostPrefixes(view.Name, view.AddressIPv4, view.AddressIPv6)
	if err != nil {
		return "", err
	}
	if len(addrs) > 0 {
		fmt.Fprintf(&b, "Address = %s\n", strings.Join(addrs, ", "))
	}
	fmt.Fprintf(&b, "ListenPort = %d\n", view.Port)

	for _, r := range view.Remotes {
		allowed, err := allowedIPs(r)
		if err != nil {
			return "", err
		}
		b.WriteString("\n[Peer]\n")
		fmt.Fprintf(&b, "# Name = %s\n", r.Name)
		fmt.Fprintf(&b, "PublicKey = %s\n", r.PublicKey)
		fmt.Fprintf(&b, "PresharedKey = %s\n", r.PSK)
		fmt.Fprintf(&b, "AllowedIPs = %s\n", strings.Join(allowed, ", "))
		if r.IsEndpoint() {
			fmt.Fprintf(&b, "Endpoint = %s\n", r.EndpointAddress)
			if !view.IsEndpoint() {
				fmt.Fprintf(&b, "PersistentKeepalive = %d\n", PersistentKeepalive)
			}
		}
	}
	return b.String(), nil
}

// RenderNetworkManager produces a NetworkManager keyfile (.nmconnection).
func RenderNetworkManager(view model.PeerView) (string, error) {
	var b strings.Builder
	b.WriteString("[connection]\n")
	fmt.Fprintf(&b, "id=%s\n", view.Interface)
	b.WriteString("type=wireguard\n")
	fmt.Fprintf(&b, "interface-name=%s\n", view.Interface)

	b.WriteString("\n[wireguard]\n")
	fmt.Fprintf(&b, "listen-port=%d\n", view.Port)
	fmt.Fprintf(&b, "private-key=%s\n", view.PrivateKey)

	for _, r := range view.Remotes {
		allowed, err := allowedIPs(r)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "\n[wireguard-peer.%s]\n", r.PublicKey)
		if r.IsEndpoint() {
			fmt.Fprintf(&b, "endpoint=%s\n", r.EndpointAddress)
			if !view.IsEndpoint() {
				fmt.Fprintf(&b, "persistent-keepalive=%d\n", PersistentKeepalive)
			}
		}
		fmt.Fprintf(&b, "preshared-key=%s\n", r.PSK)
		b.WriteString("preshared-key-flags=0\n")
		fmt.Fprintf(&b, "allowed-ips=%s;\n", strings.Join(allowed, ";"))
	}

	v4, err := hostPrefixes(view.Name, view.AddressIPv4, "")
	if err != nil {
		return "", err
	}
	v6, err := hostPrefixes(view.Name, "", view.AddressIPv6)
	if err != nil {
		return "", err
	}
	writeIPSection(&b, "ipv4", v4, "disabled")
	writeIPSection(&b, "ipv6", v6, "ignore")
	return b.String(), nil
}

func writeIPSection(b *strings.Builder, section string, prefixes []string, off string) {
	fmt.Fprintf(b, "\n[%s]\n", section)
	if len(prefixes) == 0 {
		fmt.Fprintf(b, "method=%s\n", off)
		return
	}
	fmt.Fprintf(b, "address1=%s\n", prefixes[0])
	b.WriteString("method=manual\n")
}

func allowedIPs(r model.RemoteView) ([]string, error) {
	allowed, err := hostPrefixes(r.Name, r.AddressIPv4, r.AddressIPv6)
	if err != nil {
		return nil, err
	}
	if len(allowed) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoAllowedIPs, r.Name)
	}
	return allowed, nil
}

// hostPrefixes turns the tunnel addresses of peer into single-host
// prefixes. Empty addresses are skipped; a malformed one is an error.
func hostPrefixes(peer, v4, v6 string) ([]string, error) {
	var out []string
	for _, a := range []struct {
		s   string
		fam ipam.Family
	}{{v4, ipam.IPv4}, {v6, ipam.IPv6}} {
		if a.s == "" {
			continue
		}
		addr, err := ipam.ParseAddr(a.s, a.fam)
		if err != nil {
			return nil, fmt.Errorf("peer %q: %w", peer, err)
		}
		out = append(out, ipam.HostPrefix(addr).String())
	}
	return out, nil
}
