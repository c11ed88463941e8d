// Package cli is the wgadmin command tree.
package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"wgadmin/pkg/config"
	"wgadmin/pkg/keys"
	"wgadmin/pkg/logs"
	"wgadmin/pkg/model"
	"wgadmin/pkg/store"
	"wgadmin/pkg/version"
)

const DefaultDocument = "wg0.json"

// Options replace the collaborators commands use. Zero values select the
// configured backends.
type Options struct {
	OpenStore func(ctx context.Context, cfg store.Config) (store.DocumentStore, error)
	Keys      func(cfg *config.Config) (keys.Provider, error)
}

// env is the state shared by every command of one invocation.
type env struct {
	opts Options

	document     string
	settingsPath string
	logLevel     string

	cfg *config.Config
}

func Execute(ctx context.Context) error {
	return NewRootCmd(Options{}).ExecuteContext(ctx)
}

func NewRootCmd(opts Options) *cobra.Command {
	if opts.OpenStore == nil {
		opts.OpenStore = store.Open
	}
	if opts.Keys == nil {
		opts.Keys = func(cfg *config.Config) (keys.Provider, error) { return cfg.KeyProvider() }
	}
	e := &env{opts: opts}

	c := &cobra.Command{
		Use:           "wgadmin",
		Short:         "wgadmin: create, manage and deploy a WireGuard VPN",
		Version:       version.Build,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.setup(cmd)
		},
	}
	c.PersistentFlags().StringVarP(&e.document, "config", "c", DefaultDocument, "network document to operate on")
	c.PersistentFlags().StringVar(&e.settingsPath, "settings", "", "wgadmin settings file (yaml)")
	c.PersistentFlags().StringVar(&e.logLevel, "log-level", "", "override logs.level")

	c.AddCommand(newNewNetworkCmd(e))
	c.AddCommand(newListPeersCmd(e))
	c.AddCommand(newAddPeerCmd(e))
	c.AddCommand(newAddConnectionCmd(e))
	c.AddCommand(newConnectAllCmd(e))
	c.AddCommand(newGenerateConfigCmd(e))
	c.AddCommand(newGenerateAllConfigsCmd(e))
	c.AddCommand(newCheckCmd(e))
	c.AddCommand(newKeygenCmd(e))
	c.AddCommand(newVersionCmd())
	return c
}

func (e *env) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(e.settingsPath)
	if err != nil {
		return err
	}
	lo := cfg.LogOptions()
	if e.logLevel != "" {
		lo.Level = e.logLevel
	}
	lo.Output = cmd.ErrOrStderr()
	if err := logs.Init(lo); err != nil {
		return err
	}
	e.cfg = cfg
	return nil
}

func (e *env) provider() (keys.Provider, error) {
	return e.opts.Keys(e.cfg)
}

func (e *env) openStore(ctx context.Context) (store.DocumentStore, error) {
	s, err := e.opts.OpenStore(ctx, e.cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", e.storeDriver(), err)
	}
	return s, nil
}

func (e *env) storeDriver() string {
	if e.cfg.Store.Driver == "" {
		return store.DriverFile
	}
	return e.cfg.Store.Driver
}

// stem is the document name without directory or extension; it names
// interfaces and generated files.
func (e *env) stem() string {
	base := filepath.Base(e.document)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// view loads the network read-only.
func (e *env) view(ctx context.Context) (*model.Network, error) {
	s, err := e.openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return store.LoadNetwork(ctx, s, e.document)
}

// update loads the network, applies fn and saves the result. Nothing is
// saved when fn fails.
func (e *env) update(ctx context.Context, fn func(n *model.Network) error) error {
	s, err := e.openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	n, err := store.LoadNetwork(ctx, s, e.document)
	if err != nil {
		return err
	}
	if err := fn(n); err != nil {
		return err
	}
	return store.SaveNetwork(ctx, s, e.document, n)
}

// newVersionCmd skips config loading, so it works with broken settings.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "prints the build version",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.String())
			return err
		},
	}
}
