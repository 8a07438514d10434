package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/eringen/lizechat"
	"github.com/eringen/lizechat/scaffold"
)

func newNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new <project-name>",
		Short: "Create a site skeleton with blog and dialogue sample entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNew(cmd, args[0])
		},
	}
}

func runNew(cmd *cobra.Command, name string) error {
	dirName := filepath.Base(name)
	if _, err := os.Stat(dirName); err == nil {
		return fmt.Errorf("directory %q already exists", dirName)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Creating new site: %s\n\n", dirName)
	created, err := scaffold.Render(dirName, scaffold.Data{
		ProjectName: dirName,
		SiteName:    toTitle(dirName),
		Today:       time.Now().Format("2006-01-02"),
	})
	if err != nil {
		return err
	}
	for _, p := range created {
		fmt.Fprintf(out, "  created %s\n", p)
	}

	theme, err := lizechat.ExportTheme(lizechat.DefaultTheme())
	if err != nil {
		return err
	}
	themePath := filepath.Join(dirName, "theme.json")
	if err := os.WriteFile(themePath, append(theme, '\n'), 0o644); err != nil {
		return err
	}
	fmt.Fprintf(out, "  created %s\n", themePath)

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Done! Next steps:")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  cd %s\n", dirName)
	fmt.Fprintln(out, "  lizechat validate")
	return nil
}

// toTitle converts a hyphenated name to a title-case string.
// e.g. "my-blog" -> "My Blog"
func toTitle(s string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(s, "-", " "))
}
