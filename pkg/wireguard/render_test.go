package wireguard

import (
	"testing"

	"github.com/stretchr/testify/require"

	"wgadmin/pkg/model"
)

func testView() model.PeerView {
	return model.PeerView{
		Peer: model.Peer{
			Name:        "laptop",
			Interface:   "wg0",
			AddressIPv4: "10.0.0.2",
			AddressIPv6: "fd00::2",
			Port:        51902,
			PrivateKey:  "LAPTOP-PRIV",
			PublicKey:   "LAPTOP-PUB",
		},
		Remotes: []model.RemoteView{
			{
				Name:            "gateway",
				PublicKey:       "GW-PUB",
				AddressIPv4:     "10.0.0.1",
				EndpointAddress: "vpn.example.com:51902",
				Port:            51902,
				PSK:             "PSK-1",
			},
			{
				Name:        "phone",
				PublicKey:   "PHONE-PUB",
				AddressIPv4: "10.0.0.3",
				AddressIPv6: "fd00::3",
				PSK:         "PSK-2",
			},
		},
	}
}

func TestRenderWGQuick(t *testing.T) {
	out, err := RenderWGQuick(testView())
	require.NoError(t, err)
	expected := `[Interface]
# Name = laptop
PrivateKey = LAPTOP-PRIV
Address = 10.0.0.2/32, fd00::2/128
ListenPort = 51902

[Peer]
# Name = gateway
PublicKey = GW-PUB
PresharedKey = PSK-1
AllowedIPs = 10.0.0.1/32
Endpoint = vpn.example.com:51902
PersistentKeepalive = 25

[Peer]
# Name = phone
PublicKey = PHONE-PUB
PresharedKey = PSK-2
AllowedIPs = 10.0.0.3/32, fd00::3/128
`
	require.Equal(t, expected, out)
}

func TestRenderWGQuickEndpointSkipsKeepalive(t *testing.T) {
	v := testView()
	v.EndpointAddress = "laptop.example.com:51902"
	out, err := RenderWGQuick(v)
	require.NoError(t, err)
	require.NotContains(t, out, "PersistentKeepalive")
	require.Contains(t, out, "Endpoint = vpn.example.com:51902")
}

func TestRenderNetworkManager(t *testing.T) {
	v := testView()
	v.AddressIPv6 = ""
	out, err := RenderNetworkManager(v)
	require.NoError(t, err)
	expected := `[connection]
id=wg0
type=wireguard
interface-name=wg0

[wireguard]
listen-port=51902
private-key=LAPTOP-PRIV

[wireguard-peer.GW-PUB]
endpoint=vpn.example.com:51902
persistent-keepalive=25
preshared-key=PSK-1
preshared-key-flags=0
allowed-ips=10.0.0.1/32;

[wireguard-peer.PHONE-PUB]
preshared-key=PSK-2
preshared-key-flags=0
allowed-ips=10.0.0.3/32;fd00::3/128;

[ipv4]
address1=10.0.0.2/32
method=manual

[ipv6]
method=ignore
`
	require.Equal(t, expected, out)
}

func TestRenderRemoteWithoutAddress(t *testing.T) {
	v := testView()
	v.Remotes[1].AddressIPv4 = ""
	v.Remotes[1].AddressIPv6 = ""
	for _, f := range Formats {
		_, err := Render(f, v)
		require.ErrorIs(t, err, ErrNoAllowedIPs, f)
	}
}

func TestRenderMalformedAddress(t *testing.T) {
	local := testView()
	local.AddressIPv4 = "10.0.0.300"

	remote := testView()
	remote.Remotes[1].AddressIPv4 = "10.0.0.999"

	family := testView()
	family.AddressIPv6 = "10.0.0.2"

	for name, v := range map[string]model.PeerView{"local": local, "remote": remote, "family": family} {
		for _, f := range Formats {
			out, err := Render(f, v)
			require.ErrorIs(t, err, model.ErrInvalidAddress, "%s %s", name, f)
			require.Empty(t, out)
		}
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	_, err := Render("ifupdown", testView())
	require.ErrorIs(t, err, ErrUnknownFormat)
	require.Equal(t, ".conf", FormatWGQuick.Extension())
	require.Equal(t, ".nmconnection", FormatNetworkManager.Extension())
}
