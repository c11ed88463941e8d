package cli

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"wgadmin/pkg/logs"
	"wgadmin/pkg/model"
	"wgadmin/pkg/store"
)

func newNewNetworkCmd(e *env) *cobra.Command {
	var force bool
	s := model.DefaultSettings()
	c := &cobra.Command{
		Use:   "new-network",
		Short: "creates an empty network document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.Validate(); err != nil {
				return err
			}
			ctx := cmd.Context()
			st, err := e.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			exists, err := st.Exists(ctx, e.document)
			if err != nil {
				return err
			}
			if exists && !force {
				return fmt.Errorf("network %q already exists, add -f flag to overwrite", e.document)
			}
			if err := store.SaveNetwork(ctx, st, e.document, model.New(s)); err != nil {
				return err
			}
			logs.Logger.WithFields(logrus.Fields{
				"network": e.document,
				"store":   e.storeDriver(),
				"ipv4":    s.IPv4,
				"ipv6":    s.IPv6,
			}).Info("network created")
			return nil
		},
	}
	f := c.Flags()
	f.BoolVarP(&force, "force", "f", false, "overwrite an existing network")
	f.BoolVar(&s.IPv4, "ipv4", s.IPv4, "auto-assign IPv4 addresses to new peers")
	f.BoolVar(&s.IPv6, "ipv6", s.IPv6, "auto-assign IPv6 addresses to new peers")
	f.StringVar(&s.IPv4Range, "ipv4-range", s.IPv4Range, "IPv4 range addresses are assigned from")
	f.StringVar(&s.IPv6Range, "ipv6-range", s.IPv6Range, "IPv6 range addresses are assigned from")
	return c
}

type peerSummary struct {
	Name        string   `yaml:"name"`
	Interface   string   `yaml:"interface"`
	IPv4        string   `yaml:"ipv4,omitempty"`
	IPv6        string   `yaml:"ipv6,omitempty"`
	Port        uint16   `yaml:"port"`
	PublicKey   string   `yaml:"public_key"`
	Endpoint    string   `yaml:"endpoint,omitempty"`
	Connections []string `yaml:"connections,omitempty"`
}

func newListPeersCmd(e *env) *cobra.Command {
	var verbose bool
	c := &cobra.Command{
		Use:   "list-peers",
		Short: "lists the peers in a network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := e.view(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !verbose {
				for _, p := range n.Peers() {
					fmt.Fprintln(out, p.Name)
				}
				return nil
			}
			summaries := make([]peerSummary, 0, n.Len())
			for _, p := range n.Peers() {
				s := peerSummary{
					Name:      p.Name,
					Interface: p.Interface,
					IPv4:      p.AddressIPv4,
					IPv6:      p.AddressIPv6,
					Port:      p.Port,
					PublicKey: p.PublicKey,
					Endpoint:  p.EndpointAddress,
				}
				for _, conn := range n.ConnectionsOf(p.Name) {
					s.Connections = append(s.Connections, conn.Other(p.Name))
				}
				summaries = append(summaries, s)
			}
			data, err := yaml.Marshal(summaries)
			if err != nil {
				return err
			}
			_, err = out.Write(data)
			return err
		},
	}
	c.Flags().BoolVarP(&verbose, "verbose", "v", false, "print details about each peer")
	return c
}
