package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"devsetup/internal/install"
	"devsetup/internal/platform"
	"devsetup/internal/tools"
)

func init() {
	rootCmd.AddCommand(installCmd)
}

var installCmd = &cobra.Command{
	Use:   "install [tool|all]...",
	Short: "Install the pinned toolchains (node, yarn) into the tools directory",
	Long:  "Installs the named tools, or all of them, skipping any whose directory already exists.",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		selected, err := tools.Select(cfg.Tools(), args)
		if err != nil {
			return err
		}
		paths, err := workdirPaths(cfg)
		if err != nil {
			return err
		}
		inst := install.New(install.Options{
			Paths:    paths,
			Platform: platform.Current(),
			Out:      os.Stdout,
			Progress: progressOnStderr,
		})
		if err := inst.EnsureDirectories(); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for i, t := range selected {
			fmt.Fprintf(out, "[%d/%d] %s %s\n", i+1, len(selected), t.DisplayName, t.Version)
			installed, err := inst.Ensure(cmd.Context(), t)
			if err != nil {
				return fmt.Errorf("install %s: %w", t.ID, err)
			}
			if installed {
				fmt.Fprintln(out, "  ✓ installed")
			} else {
				fmt.Fprintln(out, "  • already installed")
			}
		}
		return nil
	},
}
