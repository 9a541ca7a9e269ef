package config

import (
	"os"
	"path/filepath"
)

// Paths is Layout resolved against a project root.
type Paths struct {
	Root        string
	ToolsDir    string
	ThirdParty  string
	NodeModules string
	DownloadDir string
}

// Resolve turns the layout into absolute paths under root.
func (l Layout) Resolve(root string) (Paths, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return Paths{}, err
	}
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(root, filepath.FromSlash(p))
	}
	p := Paths{
		Root:        root,
		ToolsDir:    abs(l.ToolsDir),
		ThirdParty:  abs(l.ThirdPartyDir),
		NodeModules: abs(l.NodeModulesDir),
		DownloadDir: abs(l.DownloadDir),
	}
	if p.DownloadDir == "" {
		p.DownloadDir = os.TempDir()
	}
	return p, nil
}
