package cli

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"wgadmin/pkg/bundle"
	"wgadmin/pkg/logs"
	"wgadmin/pkg/wireguard"
)

func newGenerateConfigCmd(e *env) *cobra.Command {
	var (
		nm, wq bool
		output string
	)
	c := &cobra.Command{
		Use:   "generate-config NAME",
		Short: "generates the config file of one peer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format := wireguard.FormatWGQuick
			if nm {
				format = wireguard.FormatNetworkManager
			}
			n, err := e.view(cmd.Context())
			if err != nil {
				return err
			}
			view, err := n.View(args[0])
			if err != nil {
				return err
			}
			out, err := wireguard.Render(format, view)
			if err != nil {
				return err
			}
			if output == "" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), out)
				return err
			}
			if err := os.WriteFile(output, []byte(out), 0o600); err != nil {
				return err
			}
			logs.Logger.WithFields(logrus.Fields{"peer": args[0], "format": format, "file": output}).Info("config written")
			return nil
		},
	}
	f := c.Flags()
	f.BoolVar(&nm, "nm", false, "create a NetworkManager connection file")
	f.BoolVar(&wq, "wq", false, "create a wg-quick config")
	f.StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
	c.MarkFlagsMutuallyExclusive("nm", "wq")
	c.MarkFlagsOneRequired("nm", "wq")
	return c
}

func newGenerateAllConfigsCmd(e *env) *cobra.Command {
	var outDir, archive string
	c := &cobra.Command{
		Use:   "generate-all-configs",
		Short: "generates the config files of every peer",
		Long: "Writes <stem>/<peer>/<stem>.conf and <stem>/<peer>/<stem>.nmconnection for every peer, " +
			"where <stem> is the network document name without extension. " +
			"With --archive the files are packed into a reproducible tar.gz instead.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := e.view(cmd.Context())
			if err != nil {
				return err
			}
			files, err := bundle.RenderAll(n, e.stem())
			if err != nil {
				return err
			}

			if archive != "" {
				data, sum, err := bundle.Build(files)
				if err != nil {
					return err
				}
				if err := os.WriteFile(archive, data, 0o600); err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", sum, archive)
				return err
			}

			written, err := bundle.WriteDir(outDir, files)
			if err != nil {
				return err
			}
			for _, p := range written {
				logs.Logger.WithField("file", p).Debug("config written")
			}
			logs.Logger.WithFields(logrus.Fields{"peers": n.Len(), "files": len(written), "dir": outDir}).Info("configs written")
			return nil
		},
	}
	c.Flags().StringVar(&outDir, "out", ".", "directory to write configs below")
	c.Flags().StringVar(&archive, "archive", "", "write a tar.gz to this file instead")
	return c
}
