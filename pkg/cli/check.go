package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"wgadmin/pkg/ipam"
	"wgadmin/pkg/keys"
	"wgadmin/pkg/model"
)

var errCheckFailed = errors.New("check failed")

func newCheckCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "validates keys and addresses of every peer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := e.view(cmd.Context())
			if err != nil {
				return err
			}
			problems := checkNetwork(n)
			out := cmd.OutOrStdout()
			for _, p := range problems {
				fmt.Fprintln(out, p)
			}
			if len(problems) > 0 {
				return fmt.Errorf("%w: %d problem(s)", errCheckFailed, len(problems))
			}
			_, err = fmt.Fprintf(out, "ok: %d peers, %d connections\n", n.Len(), len(n.Connections()))
			return err
		},
	}
}

func checkNetwork(n *model.Network) []string {
	var problems []string
	seen := map[string]bool{}
	for _, p := range n.Peers() {
		if err := keys.CheckPair(p.PrivateKey, p.PublicKey); err != nil {
			problems = append(problems, fmt.Sprintf("peer %s: %v", p.Name, err))
		}
		for _, fam := range []ipam.Family{ipam.IPv4, ipam.IPv6} {
			a := p.Address(fam)
			if a == "" {
				continue
			}
			if _, err := ipam.ParseAddr(a, fam); err != nil {
				problems = append(problems, fmt.Sprintf("peer %s: %v", p.Name, err))
				continue
			}
			owners := n.AddressOwners(a)
			if len(owners) > 1 && !seen[a] {
				seen[a] = true
				problems = append(problems, fmt.Sprintf("address %s: shared by %v", a, owners))
			}
		}
	}
	for _, c := range n.Connections() {
		if err := keys.CheckPSK(c.PSK); err != nil {
			problems = append(problems, fmt.Sprintf("connection %s <-> %s: %v", c.PeerA, c.PeerB, err))
		}
	}
	return problems
}
