package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"devsetup/internal/config"
	"devsetup/internal/platform"
	"devsetup/internal/system"
	"devsetup/internal/tools"
)

var cleanYes bool

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().BoolVarP(&cleanYes, "yes", "y", false, "do not ask for confirmation")
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the installed toolchains and the stale npm lock file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		paths, err := workdirPaths(cfg)
		if err != nil {
			return err
		}
		targets := cleanTargets(cfg, paths, platform.Current())
		if len(targets) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing to clean")
			return nil
		}
		if !cleanYes {
			if !isatty.IsTerminal(os.Stdin.Fd()) {
				return errors.New("refusing to clean without --yes on a non-interactive terminal")
			}
			ok := false
			err := huh.NewForm(huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Remove %d path(s)?", len(targets))).
					Description(strings.Join(targets, "\n")).
					Value(&ok),
			)).WithTheme(system.FormTheme()).Run()
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
				return nil
			}
		}
		return removeAll(cmd.OutOrStdout(), targets)
	},
}

// cleanTargets lists the existing tool directories and lock files.
func cleanTargets(cfg config.Config, paths config.Paths, p platform.Platform) []string {
	var out []string
	exists := func(path string) bool {
		_, err := os.Lstat(path)
		return err == nil
	}
	for _, t := range cfg.Tools() {
		if dir, err := tools.InstallPath(t, paths.ToolsDir, p); err == nil && exists(dir) {
			out = append(out, dir)
		}
		for _, f := range t.CleanFiles {
			if path := filepath.Join(paths.Root, f); exists(path) {
				out = append(out, path)
			}
		}
	}
	return out
}

func removeAll(w io.Writer, targets []string) error {
	for _, t := range targets {
		if err := os.RemoveAll(t); err != nil {
			return fmt.Errorf("remove %s: %w", t, err)
		}
		system.Logger.Debug("removed", "path", t)
		fmt.Fprintf(w, "  ✓ removed %s\n", t)
	}
	return nil
}
