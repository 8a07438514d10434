package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/lizechat"
)

func newValidateCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check every content file against its collection schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := g.loader()
			if err != nil {
				return err
			}
			cat, err := l.Load(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, name := range l.Registry.Names() {
				fmt.Fprintf(out, "%-10s %d valid\n", name, len(cat.Entries[name]))
			}
			if len(cat.Problems) > 0 {
				fmt.Fprintf(out, "\n%d invalid:\n", len(cat.Problems))
				for _, p := range cat.Problems {
					fmt.Fprintf(out, "  %s: %v\n", p.Path, p.Err)
				}
			}
			return nil
		},
	}
}

func newListCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "list [collection...]",
		Short: "List entries with their title and resolved date",
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := g.loader()
			if err != nil {
				return err
			}
			names := args
			if len(names) == 0 {
				names = l.Registry.Names()
			}
			out := cmd.OutOrStdout()
			for _, name := range names {
				col, err := g.collection(l, name)
				if err != nil {
					return err
				}
				entries, problems, err := l.LoadCollection(cmd.Context(), col)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s (%d)\n", name, len(entries))
				for i, e := range entries {
					date := e.PublishedString()
					if date == "" {
						date = "undated"
					} else {
						date += " (" + e.DateSource() + ")"
					}
					fmt.Fprintf(out, "  %d. %s\n     title: %s\n     date:  %s\n", i+1, e.Slug, e.Title, date)
					if len(e.Tags) > 0 {
						fmt.Fprintf(out, "     tags:  %s\n", lizechat.JoinTags(e.Tags))
					}
				}
				for _, p := range problems {
					fmt.Fprintf(out, "  ! %s: %v\n", p.Path, p.Err)
				}
			}
			return nil
		},
	}
}

func newFixCmd(g *globals) *cobra.Command {
	var dryRun bool
	var drop []string
	cmd := &cobra.Command{
		Use:   "fix [collection...]",
		Short: "Fill missing titles and dates and migrate legacy date fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := g.loader()
			if err != nil {
				return err
			}
			names := args
			if len(names) == 0 {
				names = l.Registry.Names()
			}
			now := time.Now()
			out := cmd.OutOrStdout()
			for _, name := range names {
				col, err := g.collection(l, name)
				if err != nil {
					return err
				}
				results, err := l.FixDir(col, now, dryRun, lizechat.FilterEmpty(drop)...)
				if err != nil {
					return err
				}
				for path, res := range results {
					fmt.Fprintf(out, "%s:", path)
					if res.AddedTitle {
						fmt.Fprint(out, " +title")
					}
					if res.AddedDate {
						fmt.Fprintf(out, " +%s", col.Schema.PrimaryDate())
					}
					if res.MigratedFrom != "" {
						fmt.Fprintf(out, " %s->%s", res.MigratedFrom, col.Schema.PrimaryDate())
					}
					for _, k := range res.Removed {
						fmt.Fprintf(out, " -%s", k)
					}
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "%s: %d file(s) fixed\n", name, len(results))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report changes without writing")
	cmd.Flags().StringSliceVar(&drop, "drop", nil, "front-matter keys to remove")
	return cmd
}

func newImportCmd(g *globals) *cobra.Command {
	var into string
	cmd := &cobra.Command{
		Use:   "import <dir>",
		Short: "Copy markdown files into a collection, filling missing front-matter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := g.loader()
			if err != nil {
				return err
			}
			col, err := g.collection(l, into)
			if err != nil {
				return err
			}
			copied, overwritten, err := l.ImportDir(args[0], col, time.Now())
			out := cmd.OutOrStdout()
			for _, name := range overwritten {
				fmt.Fprintf(out, "overwrote %s\n", name)
			}
			fmt.Fprintf(out, "imported %d file(s) into %s\n", len(copied), col.Name)
			return err
		},
	}
	cmd.Flags().StringVar(&into, "into", lizechat.CollectionBlog, "target collection")
	return cmd
}

func newDeleteCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <file>...",
		Short: "Delete content files by name from whichever collection holds them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := g.loader()
			if err != nil {
				return err
			}
			deleted, notFound, err := l.DeleteFiles(args)
			out := cmd.OutOrStdout()
			for _, d := range deleted {
				fmt.Fprintf(out, "deleted %s/%s\n", d.Collection, d.Name)
			}
			for _, n := range notFound {
				fmt.Fprintf(out, "not found: %s\n", n)
			}
			if err != nil {
				return err
			}
			if len(notFound) > 0 {
				return fmt.Errorf("%d file(s) not found", len(notFound))
			}
			return nil
		},
	}
}
