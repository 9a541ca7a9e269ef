package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/kballard/go-shellquote"
	"github.com/spf13/pflag"

	"devsetup/internal/config"
	"devsetup/internal/platform"
	tu "devsetup/internal/testutil"
	"devsetup/internal/tools"
)

var linux64 = platform.Platform{OS: platform.Linux, Arch: platform.X64}

func checkout(t *testing.T) (string, config.Config) {
	t.Helper()
	base := t.TempDir()
	wd := filepath.Join(base, "oppia")
	if err := os.MkdirAll(wd, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	chrome := filepath.Join(base, "chrome")
	if err := os.WriteFile(chrome, nil, 0o755); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg := config.Default()
	cfg.Browser.CIEnv = "DEVSETUP_TEST_CI_MARKER"
	cfg.Browser.Candidates = []string{chrome}
	return wd, cfg
}

func TestBuildReportListsBothTools(t *testing.T) {
	wd, cfg := checkout(t)
	runner := &tu.FakeRunner{Output: "Python 2.7.18\n"}

	rep, err := buildReport(context.Background(), cfg, wd, linux64, runner)
	if err != nil {
		t.Fatalf("buildReport: %v", err)
	}
	// nothing installed yet: three dirs and two tools missing
	if rep.Problems != 5 {
		t.Fatalf("problems = %d, want 5: %+v", rep.Problems, rep)
	}
	b, err := json.Marshal(rep)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded struct {
		Tools []struct {
			ID  string `json:"id"`
			URL string `json:"url"`
		} `json:"tools"`
	}
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(decoded.Tools) != 2 || decoded.Tools[0].ID != "node" || decoded.Tools[1].ID != "yarn" {
		t.Fatalf("unexpected tools %+v", decoded.Tools)
	}
	if decoded.Tools[0].URL != "https://nodejs.org/dist/v10.15.3/node-v10.15.3-linux-x64.tar.gz" {
		t.Fatalf("node url = %q", decoded.Tools[0].URL)
	}
}

func TestBuildReportHealthyEnvironment(t *testing.T) {
	wd, cfg := checkout(t)
	toolsDir := filepath.Join(filepath.Dir(wd), "oppia_tools")
	for _, d := range []string{
		filepath.Join(toolsDir, "node-10.15.3", "bin"),
		filepath.Join(toolsDir, "yarn-v1.17.3"),
		filepath.Join(toolsDir, "node_modules"),
		filepath.Join(wd, "third_party"),
	} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(toolsDir, "node-10.15.3", "bin", "node"), nil, 0o755); err != nil {
		t.Fatalf("write: %v", err)
	}
	runner := &tu.FakeRunner{Outputs: map[string]string{
		"python": "Python 2.7.18\n",
		"node":   "v10.15.3\n",
	}}

	rep, err := buildReport(context.Background(), cfg, wd, linux64, runner)
	if err != nil {
		t.Fatalf("buildReport: %v", err)
	}
	if rep.Problems != 0 {
		t.Fatalf("problems = %d: %+v", rep.Problems, rep)
	}
	if rep.BrowserFrom != "custom" {
		t.Fatalf("browser match = %q", rep.BrowserFrom)
	}
	var out bytes.Buffer
	printReport(&out, rep)
	if !strings.Contains(out.String(), "Summary: 0 problem(s)") {
		t.Fatalf("unexpected report:\n%s", out.String())
	}

	runner.Outputs["node"] = "v8.9.4\n"
	rep, err = buildReport(context.Background(), cfg, wd, linux64, runner)
	if err != nil {
		t.Fatalf("buildReport: %v", err)
	}
	if rep.Problems != 1 || !rep.Tools[0].Outdated {
		t.Fatalf("older node should be reported as outdated: %+v", rep)
	}
}

func TestCleanRemovesCanonicalDirectories(t *testing.T) {
	wd, cfg := checkout(t)
	paths, err := cfg.Layout.Resolve(wd)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	node := filepath.Join(paths.ToolsDir, "node-10.15.3")
	lock := filepath.Join(wd, "package-lock.json")
	if err := os.MkdirAll(node, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(lock, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	targets := cleanTargets(cfg, paths, linux64)
	if len(targets) != 2 {
		t.Fatalf("targets = %v", targets)
	}
	var out bytes.Buffer
	if err := removeAll(&out, targets); err != nil {
		t.Fatalf("removeAll: %v", err)
	}
	for _, p := range []string{node, lock} {
		if _, err := os.Stat(p); !errors.Is(err, os.ErrNotExist) {
			t.Fatalf("%s still present", p)
		}
	}
	if _, err := os.Stat(paths.ToolsDir); err != nil {
		t.Fatalf("tools dir itself must survive: %v", err)
	}
	if got := cleanTargets(cfg, paths, linux64); len(got) != 0 {
		t.Fatalf("second clean found %v", got)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{}, args...))
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		reset := func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
		rootCmd.PersistentFlags().VisitAll(reset)
		rootCmd.Flags().VisitAll(reset)
	})
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if strings.TrimSpace(out) == "" {
		t.Fatalf("empty version output")
	}
}

func TestConfigSchemaCommand(t *testing.T) {
	out, err := execute(t, "config", "schema")
	if err != nil {
		t.Fatalf("config schema: %v", err)
	}
	for _, key := range []string{`"node"`, `"yarn"`, `"permissions"`} {
		if !strings.Contains(out, key) {
			t.Fatalf("schema misses %s:\n%s", key, out)
		}
	}
}

func TestConfigCommandPrintsDefaults(t *testing.T) {
	out, err := execute(t, "config")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if !strings.Contains(out, "10.15.3") || !strings.Contains(out, "CHROME_BIN") {
		t.Fatalf("defaults missing:\n%s", out)
	}
}

func TestInstallUnknownToolSuggests(t *testing.T) {
	_, err := execute(t, "install", "nod")
	if !errors.Is(err, tools.ErrUnknownTool) {
		t.Fatalf("expected ErrUnknownTool, got %v", err)
	}
	if !strings.Contains(err.Error(), `"node"`) {
		t.Fatalf("missing suggestion: %v", err)
	}
}

func TestMissingExplicitConfigFails(t *testing.T) {
	_, err := execute(t, "config", "--config", filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatalf("expected error for explicit missing config")
	}
}

// preparedCheckout writes a devsetup.yaml into a fresh "oppia" checkout whose
// tools are already installed, and makes it the working directory.
func preparedCheckout(t *testing.T) (chrome string) {
	t.Helper()
	base := t.TempDir()
	wd := filepath.Join(base, "oppia")
	toolsDir := filepath.Join(base, "tools")
	for _, d := range []string{wd, filepath.Join(toolsDir, "node-1.0.0"), filepath.Join(toolsDir, "yarn-v1.0.0")} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}
	chrome = filepath.Join(base, "Google Chrome")
	if err := os.WriteFile(chrome, nil, 0o755); err != nil {
		t.Fatalf("write: %v", err)
	}
	body := fmt.Sprintf(`interpreter:
  required_version: "off"
layout:
  tools_dir: %q
  node_modules_dir: %q
  download_dir: %q
node:
  version: 1.0.0
yarn:
  version: v1.0.0
browser:
  ci_env: DEVSETUP_TEST_CI_MARKER
  candidates: [%q]
`, toolsDir, filepath.Join(toolsDir, "node_modules"), filepath.Join(base, "downloads"), chrome)
	if err := os.WriteFile(filepath.Join(wd, config.DefaultFile), []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Chdir(wd)
	return chrome
}

func TestRootIgnoresUnknownArguments(t *testing.T) {
	preparedCheckout(t)
	cases := map[string][]string{
		"no args":            {},
		"unknown flag, arg":  {"--bogus", "extra"},
		"stray arg":          {"stray-arg"},
		"unknown flag value": {"--bogus=1"},
		"mixed":              {"-x", "one", "two", "--log-level", "error"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			out, err := execute(t, args...)
			if err != nil {
				t.Fatalf("devsetup %v: %v", args, err)
			}
			if !strings.Contains(out, "Environment setup completed.") {
				t.Fatalf("missing completion message: %q", out)
			}
		})
	}
}

func TestRootPrintEnv(t *testing.T) {
	chrome := preparedCheckout(t)
	defer tu.WithEnv(t, "CHROME_BIN", "")()

	out, err := execute(t, "--print-env")
	if err != nil {
		t.Fatalf("--print-env: %v", err)
	}
	line := strings.TrimSpace(out)
	value, ok := strings.CutPrefix(line, "export CHROME_BIN=")
	if !ok {
		t.Fatalf("unexpected export line %q", line)
	}
	words, err := shellquote.Split(value)
	if err != nil || len(words) != 1 || words[0] != chrome {
		t.Fatalf("export value %q does not round-trip to %q: %v %v", value, chrome, words, err)
	}
	if os.Getenv("CHROME_BIN") != "" {
		t.Fatalf("CHROME_BIN leaked into the devsetup process")
	}
}

func TestExecExportsBrowserToChildOnly(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	chrome := preparedCheckout(t)
	defer tu.WithEnv(t, "CHROME_BIN", "")()

	out, err := execute(t, "exec", "--", "sh", "-c", `echo "child=$CHROME_BIN"; exit 3`)
	var code exitCode
	if !errors.As(err, &code) || code != 3 {
		t.Fatalf("expected child exit status 3, got %v", err)
	}
	if !strings.Contains(out, "child="+chrome) {
		t.Fatalf("child did not see the browser path: %q", out)
	}
	if os.Getenv("CHROME_BIN") != "" {
		t.Fatalf("CHROME_BIN leaked into the devsetup process")
	}

	if _, err := execute(t, "exec", "--", "sh", "-c", "exit 0"); err != nil {
		t.Fatalf("successful child: %v", err)
	}
}
