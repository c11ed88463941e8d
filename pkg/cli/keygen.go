package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newKeygenCmd(e *env) *cobra.Command {
	var psk bool
	c := &cobra.Command{
		Use:   "keygen",
		Short: "generates a key pair and writes it to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			kp, err := e.provider()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if psk {
				key, err := kp.NewPresharedKey(ctx)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(out, "PresharedKey = %s\n", key)
				return err
			}
			priv, err := kp.NewPrivateKey(ctx)
			if err != nil {
				return err
			}
			pub, err := kp.PublicKey(ctx, priv)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(out, "PrivateKey = %s\nPublicKey = %s\n", priv, pub)
			return err
		},
	}
	c.Flags().BoolVar(&psk, "psk", false, "generate a pre-shared key instead")
	return c
}
