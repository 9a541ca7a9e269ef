package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"devsetup/internal/browser"
	"devsetup/internal/config"
	"devsetup/internal/guard"
	"devsetup/internal/platform"
	"devsetup/internal/system"
	"devsetup/internal/tools"
)

type dirStatus struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
}

type toolStatus struct {
	ID        tools.ToolID `json:"id"`
	Name      string       `json:"name"`
	Version   string       `json:"version"`
	URL       string       `json:"url,omitempty"`
	Path      string       `json:"path,omitempty"`
	Installed bool         `json:"installed"`
	Probed    string       `json:"probed,omitempty"`
	Outdated  bool         `json:"outdated,omitempty"`
	Error     string       `json:"error,omitempty"`
}

type checkReport struct {
	Platform    string       `json:"platform"`
	Interpreter string       `json:"interpreter,omitempty"`
	Workdir     string       `json:"workdir,omitempty"`
	Dirs        []dirStatus  `json:"dirs"`
	Tools       []toolStatus `json:"tools"`
	Browser     string       `json:"browser,omitempty"`
	BrowserFrom string       `json:"browserMatch,omitempty"`
	Problems    int          `json:"problems"`
}

var checkJSON bool

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "output JSON report")
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report the state of the environment without changing anything",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		rep, err := buildReport(cmd.Context(), cfg, wd, platform.Current(), system.ExecRunner{})
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if checkJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(rep); err != nil {
				return err
			}
		} else {
			printReport(out, rep)
		}
		if rep.Problems > 0 {
			return fmt.Errorf("check failed: %d problem(s)", rep.Problems)
		}
		return nil
	},
}

func buildReport(ctx context.Context, cfg config.Config, wd string, p platform.Platform, runner system.Runner) (checkReport, error) {
	paths, err := cfg.Layout.Resolve(wd)
	if err != nil {
		return checkReport{}, err
	}
	rep := checkReport{Platform: p.String()}
	problem := func(err error) string {
		if err == nil {
			return ""
		}
		rep.Problems++
		return err.Error()
	}

	rep.Interpreter = problem(guard.Interpreter(ctx, runner, cfg.Interpreter.Command, cfg.Interpreter.Required(), p.OS))
	rep.Workdir = problem(guard.CheckWorkdir(wd, cfg.Project.Name, cfg.Project.DeployPrefix))

	for _, d := range []dirStatus{
		{Name: "tools", Path: paths.ToolsDir},
		{Name: "third_party", Path: paths.ThirdParty},
		{Name: "node_modules", Path: paths.NodeModules},
	} {
		if st, err := os.Stat(d.Path); err == nil && st.IsDir() {
			d.Exists = true
		} else {
			rep.Problems++
		}
		rep.Dirs = append(rep.Dirs, d)
	}

	for _, t := range cfg.Tools() {
		ts := toolStatus{ID: t.ID, Name: t.DisplayName, Version: t.Version}
		if r, err := tools.Resolve(t, p); err == nil {
			ts.URL = r.URL
		}
		res := tools.CheckTool(ctx, runner, t, paths.ToolsDir, p)
		ts.Installed, ts.Path, ts.Probed, ts.Error = res.Installed, res.Path, res.Version, res.Err
		ts.Outdated = res.Outdated
		if !ts.Installed || ts.Outdated {
			rep.Problems++
		}
		rep.Tools = append(rep.Tools, ts)
	}

	loc := browser.NewLocator(cfg.Browser.CIEnv, cfg.Browser.CIPath, cfg.Browser.Candidates, cfg.Browser.Discover)
	if r, err := loc.Locate(); err == nil {
		rep.Browser, rep.BrowserFrom = r.Path, r.Label
	} else {
		rep.Problems++
	}
	return rep, nil
}

var (
	labelStyle = lipgloss.NewStyle().Width(14).Bold(true)
	pathWidth  = 56
)

func printReport(w io.Writer, rep checkReport) {
	status := func(ok bool) string {
		if ok {
			return system.Good("OK  ")
		}
		return system.Bad("MISS")
	}
	line := func(ok bool, label, detail string) {
		fmt.Fprintf(w, "%s %s %s\n", status(ok), labelStyle.Render(label), detail)
	}

	fmt.Fprintln(w, system.Muted("platform "+rep.Platform))
	line(rep.Interpreter == "", "interpreter", rep.Interpreter)
	line(rep.Workdir == "", "workdir", rep.Workdir)
	for _, d := range rep.Dirs {
		line(d.Exists, d.Name, runewidth.Truncate(d.Path, pathWidth, "…"))
	}
	for _, t := range rep.Tools {
		detail := t.Version
		if t.Installed {
			detail += " " + runewidth.Truncate(t.Path, pathWidth, "…")
			if t.Outdated {
				detail += system.Bad(" (outdated: " + t.Probed + ")")
			} else if t.Probed != "" {
				detail += system.Muted(" (" + t.Probed + ")")
			}
		} else if t.URL != "" {
			detail += system.Muted(" from " + runewidth.Truncate(t.URL, pathWidth, "…"))
		}
		line(t.Installed && !t.Outdated, t.Name, detail)
	}
	if rep.Browser != "" {
		line(true, "browser", runewidth.Truncate(rep.Browser, pathWidth, "…")+system.Muted(" ("+rep.BrowserFrom+")"))
	} else {
		line(false, "browser", browser.ErrBrowserNotFound.Error())
	}
	fmt.Fprintf(w, "\nSummary: %d problem(s)\n", rep.Problems)
}
