// Package install provisions directories and toolchains under the tools dir.
package install

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"devsetup/internal/archive"
	"devsetup/internal/config"
	"devsetup/internal/platform"
	"devsetup/internal/system"
	"devsetup/internal/tools"
)

// Options configures an Installer.
type Options struct {
	Paths    config.Paths
	Platform platform.Platform
	Client   *http.Client
	Runner   system.Runner
	// Out receives user-facing notices. Defaults to io.Discard.
	Out io.Writer
	// Progress, when set, returns a callback for one download.
	Progress func(label string) system.ProgressFunc
}

// Installer downloads release archives and unpacks them into the tools dir.
type Installer struct {
	paths    config.Paths
	platform platform.Platform
	client   *http.Client
	runner   system.Runner
	out      io.Writer
	progress func(label string) system.ProgressFunc
}

func New(opts Options) *Installer {
	i := &Installer{
		paths:    opts.Paths,
		platform: opts.Platform,
		client:   opts.Client,
		runner:   opts.Runner,
		out:      opts.Out,
		progress: opts.Progress,
	}
	if i.client == nil {
		i.client = http.DefaultClient
	}
	if i.runner == nil {
		i.runner = system.ExecRunner{}
	}
	if i.out == nil {
		i.out = io.Discard
	}
	return i
}

// EnsureDirectory creates path and its parents unless it already exists.
func EnsureDirectory(path string) error {
	info, err := os.Stat(path)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("%s exists and is not a directory", path)
		}
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", path, err)
	}
	return nil
}

// EnsureDirectories creates the tools, third-party and node-modules directories.
func (i *Installer) EnsureDirectories() error {
	for _, dir := range []string{i.paths.ToolsDir, i.paths.ThirdParty, i.paths.NodeModules} {
		if err := EnsureDirectory(dir); err != nil {
			return err
		}
	}
	return nil
}

// Ensure installs t unless its canonical directory already exists.
// It reports whether an install happened.
func (i *Installer) Ensure(ctx context.Context, t tools.ToolInfo) (bool, error) {
	system.Logger.Info(fmt.Sprintf("Checking if %s is installed in %s", t.DisplayName, i.paths.ToolsDir))
	path, err := tools.InstallPath(t, i.paths.ToolsDir, i.platform)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(path); err == nil {
		system.Logger.Debug("already installed", "tool", t.ID, "path", path)
		return false, nil
	}
	if t.ID == tools.ToolNode {
		err = i.InstallRuntime(ctx, t)
	} else {
		err = i.InstallPackageManager(ctx, t)
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// InstallRuntime downloads the runtime archive for the current platform,
// unpacks it and renames the versioned folder to the canonical one.
func (i *Installer) InstallRuntime(ctx context.Context, t tools.ToolInfo) error {
	system.Logger.Info("Installing " + t.DisplayName)
	r, err := tools.Resolve(t, i.platform)
	if err != nil {
		return err
	}
	if err := i.installResolved(ctx, r, string(t.ID)+"-download"); err != nil {
		return err
	}
	return i.rename(r)
}

// InstallPackageManager removes stale lock files, prints the usage notice
// and installs the package manager archive.
func (i *Installer) InstallPackageManager(ctx context.Context, t tools.ToolInfo) error {
	for _, name := range t.CleanFiles {
		system.Logger.Info("Removing " + name)
		if err := deleteFile(filepath.Join(i.paths.Root, name)); err != nil {
			return err
		}
	}
	system.Notice(i.out, t.Notice)
	r, err := tools.Resolve(t, i.platform)
	if err != nil {
		return err
	}
	if err := i.installResolved(ctx, r, r.Archive); err != nil {
		return err
	}
	return i.rename(r)
}

func (i *Installer) installResolved(ctx context.Context, r tools.Resolved, tempName string) error {
	if r.Kind == archive.Zip {
		return i.DownloadAndInstallRuntimeWindows(ctx, r.URL, tempName)
	}
	return i.DownloadAndInstallArchive(ctx, r.URL, tempName)
}

// DownloadAndInstallArchive fetches a tarball to a temporary file, extracts
// every member into the tools dir and removes the temporary file.
func (i *Installer) DownloadAndInstallArchive(ctx context.Context, url, tempName string) error {
	kind, err := kindOf(url)
	if err != nil {
		return err
	}
	f, err := i.download(ctx, url, tempName, kind)
	if err != nil {
		return err
	}
	defer removeTemp(f)

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if err := archive.ExtractTar(f, kind, i.paths.ToolsDir); err != nil {
		return fmt.Errorf("install %s: %w", url, err)
	}
	return nil
}

// DownloadAndInstallRuntimeWindows fetches a zip to a temporary file and
// expands it into the tools dir with PowerShell.
func (i *Installer) DownloadAndInstallRuntimeWindows(ctx context.Context, url, tempName string) error {
	f, err := i.download(ctx, url, tempName, archive.Zip)
	if err != nil {
		return err
	}
	defer removeTemp(f)
	if err := f.Close(); err != nil {
		return err
	}
	return archive.ExpandZip(ctx, i.runner, f.Name(), i.paths.ToolsDir)
}

func (i *Installer) download(ctx context.Context, url, tempName string, kind archive.Kind) (*os.File, error) {
	if err := EnsureDirectory(i.paths.DownloadDir); err != nil {
		return nil, err
	}
	f, err := os.CreateTemp(i.paths.DownloadDir, tempName+"-*"+kind.Ext())
	if err != nil {
		return nil, err
	}
	var progress system.ProgressFunc
	if i.progress != nil {
		progress = i.progress(tempName)
	}
	system.Logger.Info("downloading", "url", url)
	n, err := archive.Download(ctx, i.client, url, f, progress)
	if err != nil {
		removeTemp(f)
		return nil, err
	}
	system.Logger.Debug("downloaded", "url", url, "size", humanize.Bytes(uint64(n)), "file", f.Name())
	return f, nil
}

func (i *Installer) rename(r tools.Resolved) error {
	if !r.NeedsRename() {
		return nil
	}
	from := filepath.Join(i.paths.ToolsDir, r.Extracted)
	to := filepath.Join(i.paths.ToolsDir, r.Dir)
	if err := os.Rename(from, to); err != nil {
		return fmt.Errorf("rename %s to %s: %w", from, to, err)
	}
	return nil
}

func kindOf(url string) (archive.Kind, error) {
	name := strings.ToLower(url)
	switch {
	case strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"):
		return archive.TarGz, nil
	case strings.HasSuffix(name, ".tar.xz"):
		return archive.TarXz, nil
	}
	return "", fmt.Errorf("%s: not a tar archive", url)
}

func deleteFile(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func removeTemp(f *os.File) {
	_ = f.Close()
	if err := os.Remove(f.Name()); err != nil && !errors.Is(err, os.ErrNotExist) {
		system.Logger.Warn("could not remove temporary file", "file", f.Name(), "err", err)
	}
}
