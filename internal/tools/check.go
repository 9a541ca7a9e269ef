package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"devsetup/internal/platform"
	"devsetup/internal/system"
)

// InstallPath returns the canonical install directory of t under toolsDir.
func InstallPath(t ToolInfo, toolsDir string, p platform.Platform) (string, error) {
	r, err := Resolve(t, p)
	if err != nil {
		return "", err
	}
	return filepath.Join(toolsDir, r.Dir), nil
}

// CheckTool reports whether t is installed under toolsDir and, when a
// binary is present, which version it prints.
func CheckTool(ctx context.Context, runner system.Runner, t ToolInfo, toolsDir string, p platform.Platform) CheckResult {
	path, err := InstallPath(t, toolsDir, p)
	if err != nil {
		return CheckResult{Err: err.Error()}
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return CheckResult{Path: path, Err: "not installed"}
		}
		return CheckResult{Path: path, Err: err.Error()}
	}
	res := CheckResult{Installed: true, Path: path}

	for _, rel := range t.Binaries {
		bin := filepath.Join(path, filepath.FromSlash(rel))
		if _, err := os.Stat(bin); err != nil {
			continue
		}
		res.Source = fmt.Sprintf("%s %s", rel, strings.Join(t.VersionArgs, " "))
		cctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		out, err := runner.Run(cctx, bin, t.VersionArgs...)
		cancel()
		if err != nil {
			// Found binary but no version output; still consider installed
			system.Logger.Debug("version probe failed", "tool", t.ID, "bin", bin, "err", err)
			break
		}
		res.Version = ParseVersion(out)
		res.Outdated = VersionLess(res.Version, t.Version)
		break
	}
	return res
}
