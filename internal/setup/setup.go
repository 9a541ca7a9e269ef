// Package setup runs the environment preparation stages in order.
package setup

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"devsetup/internal/browser"
	"devsetup/internal/config"
	"devsetup/internal/guard"
	"devsetup/internal/install"
	"devsetup/internal/platform"
	"devsetup/internal/system"
	"devsetup/internal/tools"
)

// Stage names, in execution order.
const (
	StageVersion     = "version"
	StageWorkdir     = "workdir"
	StageDirectories = "directories"
	StageRuntime     = "runtime"
	StagePackager    = "packager"
	StagePermissions = "permissions"
	StageBrowser     = "browser"
)

// Options carries everything Run reads from the outside world.
// Zero values fall back to the live process.
type Options struct {
	Config   config.Config
	Workdir  string
	Platform *platform.Platform
	Runner   system.Runner
	Client   *http.Client
	Out      io.Writer
	Progress func(label string) system.ProgressFunc
	Getuid   func() int
	// Locator overrides the locator built from Config.Browser.
	Locator *browser.Locator
}

// Result is what a successful run produced.
type Result struct {
	Paths        config.Paths
	BrowserPath  string
	BrowserLabel string
	Installed    []tools.ToolID
}

type stage struct {
	name string
	run  func(ctx context.Context) error
}

// Run executes every stage. The first failure stops the run and is returned
// wrapped with the stage name.
func Run(ctx context.Context, opts Options) (Result, error) {
	var res Result
	p := platform.Current()
	if opts.Platform != nil {
		p = *opts.Platform
	}
	if opts.Runner == nil {
		opts.Runner = system.ExecRunner{}
	}
	if opts.Getuid == nil {
		opts.Getuid = os.Getuid
	}
	if opts.Workdir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return res, err
		}
		opts.Workdir = wd
	}
	cfg := opts.Config
	paths, err := cfg.Layout.Resolve(opts.Workdir)
	if err != nil {
		return res, err
	}
	res.Paths = paths

	inst := install.New(install.Options{
		Paths:    paths,
		Platform: p,
		Client:   opts.Client,
		Runner:   opts.Runner,
		Out:      opts.Out,
		Progress: opts.Progress,
	})
	all := cfg.Tools()

	ensure := func(id tools.ToolID) func(ctx context.Context) error {
		return func(ctx context.Context) error {
			for _, t := range all {
				if t.ID != id {
					continue
				}
				installed, err := inst.Ensure(ctx, t)
				if err != nil {
					return err
				}
				if installed {
					res.Installed = append(res.Installed, id)
				}
			}
			return nil
		}
	}

	stages := []stage{
		{StageVersion, func(ctx context.Context) error {
			return guard.Interpreter(ctx, opts.Runner, cfg.Interpreter.Command, cfg.Interpreter.Required(), p.OS)
		}},
		{StageWorkdir, func(context.Context) error {
			return guard.CheckWorkdir(opts.Workdir, cfg.Project.Name, cfg.Project.DeployPrefix)
		}},
		{StageDirectories, func(context.Context) error {
			return inst.EnsureDirectories()
		}},
		{StageRuntime, ensure(tools.ToolNode)},
		{StagePackager, ensure(tools.ToolYarn)},
		{StagePermissions, func(context.Context) error {
			if !p.OS.IsUnixLike() {
				system.Logger.Debug("skipping ownership and permission changes", "os", p.OS)
				return nil
			}
			mode, err := cfg.PermissionMode()
			if err != nil {
				return err
			}
			return install.FixPermissions(paths.NodeModules, opts.Getuid(), -1, mode)
		}},
		{StageBrowser, func(context.Context) error {
			loc := opts.Locator
			if loc == nil {
				loc = browser.NewLocator(cfg.Browser.CIEnv, cfg.Browser.CIPath, cfg.Browser.Candidates, cfg.Browser.Discover)
			}
			r, err := loc.Locate()
			if err != nil {
				return err
			}
			res.BrowserPath, res.BrowserLabel = r.Path, r.Label
			system.Logger.Debug("browser located", "path", r.Path, "match", r.Label)
			return nil
		}},
	}

	for _, s := range stages {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		system.Logger.Info("stage", "name", s.name)
		if err := s.run(ctx); err != nil {
			return res, fmt.Errorf("stage %s: %w", s.name, err)
		}
	}
	return res, nil
}
