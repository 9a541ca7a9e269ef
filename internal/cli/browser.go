package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"devsetup/internal/browser"
	"devsetup/internal/system"
)

func init() {
	rootCmd.AddCommand(browserCmd)
}

var browserCmd = &cobra.Command{
	Use:   "browser",
	Short: "Locate the Chrome binary used by browser tests",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		loc := browser.NewLocator(cfg.Browser.CIEnv, cfg.Browser.CIPath, cfg.Browser.Candidates, cfg.Browser.Discover)
		res, err := loc.Locate()
		if err != nil {
			return err
		}
		system.Logger.Debug("browser located", "match", res.Label)
		fmt.Fprintln(cmd.OutOrStdout(), res.Path)
		return nil
	},
}
