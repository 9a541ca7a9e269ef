package cli

import (
	"errors"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"devsetup/internal/browser"
	"devsetup/internal/system"
)

func init() {
	rootCmd.AddCommand(execCmd)
}

var execCmd = &cobra.Command{
	Use:   "exec -- <command> [args...]",
	Short: "Run setup, then run a command with the browser variable exported",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		res, err := runSetup(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		system.Logger.Debug("running", "cmd", args, cfg.Browser.Env, res.BrowserPath)

		child := exec.CommandContext(cmd.Context(), args[0], args[1:]...)
		child.Env = browser.Export(os.Environ(), cfg.Browser.Env, res.BrowserPath)
		child.Stdin = os.Stdin
		child.Stdout = cmd.OutOrStdout()
		child.Stderr = cmd.ErrOrStderr()
		if err := child.Run(); err != nil {
			var ee *exec.ExitError
			if errors.As(err, &ee) && ee.ExitCode() > 0 {
				return exitCode(ee.ExitCode())
			}
			return err
		}
		return nil
	},
}
