package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"

	"github.com/eringen/lizechat"
)

// version is set at build time via ldflags.
var version = "dev"

type globals struct {
	cfg        lizechat.SiteConfig
	contentDir string
	strict     bool
	requires   []string
	logLevel   string
	themePath  string
	logger     *log.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:           "lizechat",
		Short:         "Content collections and theme tooling for the Lize Chat site",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := lizechat.LoadConfig()
			if err != nil {
				return err
			}
			if g.contentDir != "" {
				cfg.ContentDir = g.contentDir
			}
			if cmd.Flags().Changed("strict") {
				cfg.Strict = g.strict
			}
			if g.logLevel != "" {
				cfg.LogLevel = g.logLevel
			}
			g.cfg = cfg
			g.logger = lizechat.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel)
			return nil
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&g.contentDir, "content", "", "content root holding one folder per collection")
	pf.BoolVar(&g.strict, "strict", false, "treat invalid entries as errors")
	pf.StringSliceVar(&g.requires, "require", nil, "mark a field required, as collection.field (repeatable)")
	pf.StringVar(&g.logLevel, "log-level", "", "debug, info, warn or error")
	pf.StringVar(&g.themePath, "theme", "", "theme JSON file (default: built-in theme)")

	root.AddCommand(
		newValidateCmd(g),
		newListCmd(g),
		newFixCmd(g),
		newImportCmd(g),
		newDeleteCmd(g),
		newIndexCmd(g),
		newServeCmd(g),
		newSchemaCmd(g),
		newThemeCmd(g),
		newNewCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print the lizechat version",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "lizechat %s\n", version)
			},
		},
	)
	return root
}

// registry builds the collection registry, applying --require overrides.
func (g *globals) registry() (*lizechat.Registry, error) {
	base := lizechat.DefaultRegistry()
	var opts []lizechat.SchemaOption
	for _, r := range lizechat.FilterEmpty(g.requires) {
		name, field, ok := splitRequire(r)
		if !ok {
			return nil, fmt.Errorf("--require %q: want collection.field", r)
		}
		col, ok := base.Get(name)
		if !ok {
			return nil, fmt.Errorf("--require %q: %w: %q", r, lizechat.ErrUnknownCollection, name)
		}
		if _, ok := col.Schema.Field(field); !ok {
			return nil, fmt.Errorf("--require %q: %s has no field %q", r, name, field)
		}
		opts = append(opts, lizechat.WithRequired(name, field))
	}
	if len(opts) == 0 {
		return base, nil
	}
	return lizechat.DefaultRegistry(opts...), nil
}

func splitRequire(s string) (string, string, bool) {
	col, field, ok := strings.Cut(s, ".")
	return col, field, ok && col != "" && field != ""
}

// theme returns the theme from --theme, or the built-in one.
func (g *globals) theme() (lizechat.Theme, error) {
	if g.themePath == "" {
		return lizechat.DefaultTheme(), nil
	}
	return lizechat.LoadTheme(g.themePath)
}

func (g *globals) loader() (*lizechat.Loader, error) {
	reg, err := g.registry()
	if err != nil {
		return nil, err
	}
	return lizechat.NewLoader(g.cfg, reg, g.logger), nil
}

func (g *globals) collection(l *lizechat.Loader, name string) (lizechat.Collection, error) {
	col, ok := l.Registry.Get(name)
	if !ok {
		return lizechat.Collection{}, fmt.Errorf("%w: %q", lizechat.ErrUnknownCollection, name)
	}
	return col, nil
}
