package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eringen/lizechat"
)

func newIndexCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Load all collections into the SQLite entry index",
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := g.loader()
			if err != nil {
				return err
			}
			cat, err := l.Load(cmd.Context())
			if err != nil {
				return err
			}
			store, err := lizechat.NewStore(g.cfg.DatabasePath, l.Registry)
			if err != nil {
				return err
			}
			defer store.Close()
			for _, name := range l.Registry.Names() {
				if err := store.ReplaceCollection(name, cat.Entries[name]); err != nil {
					return fmt.Errorf("index %s: %w", name, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d entries indexed\n", name, len(cat.Entries[name]))
			}
			return nil
		},
	}
}

func newServeCmd(g *globals) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the collections, entries and theme as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := g.registry()
			if err != nil {
				return err
			}
			theme, err := g.theme()
			if err != nil {
				return err
			}
			cfg := g.cfg
			if addr != "" {
				cfg.Addr = addr
			}
			app := lizechat.New(cfg,
				lizechat.WithRegistry(reg),
				lizechat.WithTheme(theme),
				lizechat.WithLogger(g.logger),
			)
			defer app.Close()
			return app.Start(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides LIZECHAT_ADDR)")
	return cmd
}
