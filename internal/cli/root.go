package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kballard/go-shellquote"
	"github.com/spf13/cobra"

	"devsetup/internal/config"
	"devsetup/internal/guard"
	"devsetup/internal/setup"
	"devsetup/internal/system"
)

var (
	configPath      string
	logLevel        string
	discoverBrowser bool
	printEnv        bool
)

var rootCmd = &cobra.Command{
	Use:   "devsetup [flags]",
	Short: "devsetup – prepare the local development environment",
	Long: "devsetup checks the interpreter and working directory, installs the pinned\n" +
		"Node.js and Yarn toolchains next to the checkout, fixes node_modules\n" +
		"permissions and locates a Chrome binary for browser tests.",
	// Extra arguments and unknown flags are ignored.
	Args:               cobra.ArbitraryArgs,
	FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return system.ConfigureLogger(logLevel)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		res, err := runSetup(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		if printEnv {
			fmt.Fprintf(cmd.OutOrStdout(), "export %s=%s\n", cfg.Browser.Env, shellquote.Join(res.BrowserPath))
			return nil
		}
		system.Success(cmd.OutOrStdout(), "Environment setup completed.")
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", config.DefaultFile, "configuration file")
	pf.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (default $"+system.EnvLogLevel+" or info)")
	pf.BoolVar(&discoverBrowser, "discover-browser", false, "search PATH and well-known locations when no fixed browser path matches")
	rootCmd.Flags().BoolVar(&printEnv, "print-env", false, "print an export line for the browser variable instead of the completion message")
}

// Execute runs the CLI.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}
	var code exitCode
	if errors.As(err, &code) {
		os.Exit(int(code))
	}
	system.Failure(os.Stderr, err.Error())
	var ve *guard.VersionError
	if errors.As(err, &ve) && ve.Hint != "" {
		fmt.Fprint(os.Stderr, system.RenderMarkdown(ve.Hint))
	}
	os.Exit(1)
}

// exitCode carries a child process status through cobra unchanged.
type exitCode int

func (c exitCode) Error() string { return fmt.Sprintf("exit status %d", int(c)) }

// loadConfig reads --config. The default file may be absent; an explicit one may not.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	optional := !cmd.Flags().Changed("config")
	cfg, err := config.Load(configPath, optional)
	if err != nil {
		return cfg, err
	}
	if discoverBrowser {
		cfg.Browser.Discover = true
	}
	return cfg, nil
}

func runSetup(ctx context.Context, cfg config.Config) (setup.Result, error) {
	return setup.Run(ctx, setup.Options{
		Config:   cfg,
		Out:      os.Stdout,
		Progress: progressOnStderr,
	})
}

func progressOnStderr(label string) system.ProgressFunc {
	return system.NewProgress(os.Stderr, label)
}

func workdirPaths(cfg config.Config) (config.Paths, error) {
	wd, err := os.Getwd()
	if err != nil {
		return config.Paths{}, err
	}
	return cfg.Layout.Resolve(wd)
}
