package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eringen/lizechat"
)

func newSchemaCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "schema [collection]",
		Short: "Print collection schemas as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := g.registry()
			if err != nil {
				return err
			}
			var v any = reg.Collections()
			if len(args) == 1 {
				col, ok := reg.Get(args[0])
				if !ok {
					return fmt.Errorf("%w: %q", lizechat.ErrUnknownCollection, args[0])
				}
				v = col
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(v)
		},
	}
}

func newThemeCmd(g *globals) *cobra.Command {
	var check string
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Print the theme configuration, or check glob coverage of a source tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			theme, err := g.theme()
			if err != nil {
				return err
			}
			if err := theme.Validate(); err != nil {
				return err
			}
			if check == "" {
				b, err := lizechat.ExportTheme(theme)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
				return err
			}
			files, err := sourceFiles(check)
			if err != nil {
				return err
			}
			missed := theme.Uncovered(files)
			for _, f := range missed {
				fmt.Fprintf(cmd.OutOrStdout(), "not scanned: %s\n", f)
			}
			if len(missed) > 0 {
				return fmt.Errorf("%d file(s) outside the content globs (extensions %s)",
					len(missed), strings.Join(extensions(missed), ", "))
			}
			g.logger.Infof("%d file(s) covered by content globs", len(files))
			return nil
		},
	}
	cmd.Flags().StringVar(&check, "check", "", "project root whose src/ files must be covered by the content globs")
	return cmd
}

// skipExts are binary assets and stylesheets. Stylesheets are compiled by the
// CSS framework directly rather than scanned for class names.
var skipExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true, ".avif": true,
	".ico": true, ".svg": true, ".woff": true, ".woff2": true, ".ttf": true, ".otf": true,
	".eot": true, ".mp3": true, ".mp4": true, ".webm": true, ".pdf": true,
	".css": true, ".scss": true, ".sass": true, ".less": true,
}

// sourceFiles lists regular files under root/src that may carry class names,
// as paths relative to root.
func sourceFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(filepath.Join(root, "src"), func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != filepath.Join(root, "src") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || strings.HasPrefix(d.Name(), ".") || skipExts[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, "./"+filepath.ToSlash(rel))
		return nil
	})
	return files, err
}

// extensions returns the sorted distinct extensions of paths.
func extensions(paths []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range paths {
		ext := strings.ToLower(filepath.Ext(p))
		if ext == "" {
			ext = "(none)"
		}
		if !seen[ext] {
			seen[ext] = true
			out = append(out, ext)
		}
	}
	sort.Strings(out)
	return out
}
