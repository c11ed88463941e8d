package cli

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"wgadmin/pkg/logs"
	"wgadmin/pkg/model"
	"wgadmin/pkg/topology"
)

func newAddPeerCmd(e *env) *cobra.Command {
	var (
		opts model.PeerOptions
		port string
	)
	c := &cobra.Command{
		Use:   "add-peer NAME",
		Short: "adds a peer to a network",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Name = args[0]
			if cmd.Flags().Changed("port") {
				p, err := model.ParsePort(port)
				if err != nil {
					return err
				}
				opts.Port, opts.PortSet = p, true
			}
			kp, err := e.provider()
			if err != nil {
				return err
			}

			var added model.Peer
			err = e.update(cmd.Context(), func(n *model.Network) error {
				warnCollisions(n, opts.Name, opts.IPv4, opts.IPv6)
				p, err := n.AddPeer(cmd.Context(), kp, opts)
				if errors.Is(err, model.ErrPeerAlreadyExists) {
					return fmt.Errorf("%w, add -f flag to overwrite", err)
				}
				added = p
				return err
			})
			if err != nil {
				return err
			}
			logs.Logger.WithFields(logrus.Fields{
				"peer":     added.Name,
				"ipv4":     added.AddressIPv4,
				"ipv6":     added.AddressIPv6,
				"endpoint": added.EndpointAddress,
				"store":    e.storeDriver(),
			}).Info("peer added")
			return nil
		},
	}
	f := c.Flags()
	f.StringVar(&opts.IPv4, "ipv4", "", "IPv4 address of the peer inside the VPN")
	f.StringVar(&opts.IPv6, "ipv6", "", "IPv6 address of the peer inside the VPN")
	f.StringVar(&port, "port", "", fmt.Sprintf("port for WireGuard to listen on (default %d)", model.DefaultPort))
	f.StringVarP(&opts.EndpointAddress, "endpoint-address", "e", "", "make the peer an endpoint reachable under this address")
	f.StringVarP(&opts.Interface, "interface", "i", model.DefaultInterface, "name of the WireGuard interface")
	f.StringVar(&opts.PrivateKey, "private-key", "", "use this private key instead of generating one")
	f.BoolVarP(&opts.Force, "force", "f", false, "overwrite an existing peer")
	return c
}

// warnCollisions logs explicit addresses already held by other peers.
func warnCollisions(n *model.Network, name string, addrs ...string) {
	for _, a := range addrs {
		if a == "" {
			continue
		}
		for _, owner := range n.AddressOwners(a) {
			if owner == name {
				continue
			}
			logs.Logger.WithFields(logrus.Fields{
				"peer":    name,
				"address": a,
				"owner":   owner,
			}).Warn("address already assigned to another peer")
		}
	}
}

func newAddConnectionCmd(e *env) *cobra.Command {
	var (
		force bool
		psk   string
	)
	c := &cobra.Command{
		Use:   "add-connection PEER_A PEER_B",
		Short: "connects two peers",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kp, err := e.provider()
			if err != nil {
				return err
			}
			err = e.update(cmd.Context(), func(n *model.Network) error {
				_, err := n.AddConnection(cmd.Context(), kp, args[0], args[1], psk, force)
				if errors.Is(err, model.ErrConnectionExists) {
					return fmt.Errorf("%w, add -f flag to replace its key", err)
				}
				return err
			})
			if err != nil {
				return err
			}
			logs.Logger.WithFields(logrus.Fields{
				"peer_a": args[0],
				"peer_b": args[1],
				"store":  e.storeDriver(),
			}).Info("connection added")
			return nil
		},
	}
	c.Flags().BoolVarP(&force, "force", "f", false, "replace the key of an existing connection")
	c.Flags().StringVar(&psk, "psk", "", "use this pre-shared key instead of generating one")
	return c
}

func newConnectAllCmd(e *env) *cobra.Command {
	var (
		hubs      []string
		endpoints bool
	)
	c := &cobra.Command{
		Use:   "connect-all",
		Short: "adds every connection a full mesh or a hub-and-spoke layout is missing",
		Long: "Without flags every pair of peers is connected. With --hub (repeatable) the named peers " +
			"become hubs, with --endpoints the endpoint peers do; hubs connect to every peer.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kp, err := e.provider()
			if err != nil {
				return err
			}
			var added int
			err = e.update(cmd.Context(), func(n *model.Network) error {
				pairs := topology.FullMesh(n)
				if endpoints || len(hubs) > 0 {
					if pairs, err = topology.HubAndSpoke(n, hubs); err != nil {
						return err
					}
				}
				for _, p := range pairs {
					if _, err := n.AddConnection(cmd.Context(), kp, p[0], p[1], "", false); err != nil {
						return err
					}
				}
				added = len(pairs)
				return nil
			})
			if err != nil {
				return err
			}
			logs.Logger.WithFields(logrus.Fields{"connections": added, "store": e.storeDriver()}).Info("connections added")
			return nil
		},
	}
	c.Flags().StringSliceVar(&hubs, "hub", nil, "connect every peer to this hub")
	c.Flags().BoolVar(&endpoints, "endpoints", false, "use the endpoint peers as hubs")
	c.MarkFlagsMutuallyExclusive("hub", "endpoints")
	return c
}
