package tools

import (
	"errors"

	"devsetup/internal/archive"
	"devsetup/internal/platform"
)

// Tool identifiers and metadata
type ToolID string

const (
	ToolNode ToolID = "node"
	ToolYarn ToolID = "yarn"
)

var (
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	ErrUnknownTool         = errors.New("unknown tool")
)

// Target is the per-OS part of a download: the OS tag used in file names
// and the archive format published for it.
type Target struct {
	OS   string
	Kind archive.Kind
}

// ToolInfo describes a toolchain installed from a release archive.
//
// Templates may reference ${VERSION}, ${OS}, ${ARCH} and ${EXT}; URL may
// also reference ${ARCHIVE}, the expanded archive file name.
type ToolInfo struct {
	ID          ToolID
	DisplayName string
	Version     string
	Aliases     []string

	Dir       string // canonical directory under the tools dir
	Extracted string // top-level directory inside the archive; empty means Dir
	Archive   string
	URL       string

	Targets       map[platform.OS]Target
	DefaultTarget *Target // used for every OS missing from Targets

	Binaries    []string // candidate binaries relative to Dir, first existing wins
	VersionArgs []string

	CleanFiles []string // project files removed before installing
	Notice     []string // printed before installing
}

// Resolved is a ToolInfo expanded for one platform.
type Resolved struct {
	URL       string
	Archive   string
	Dir       string
	Extracted string
	Kind      archive.Kind
}

// NeedsRename reports whether the extracted folder differs from the canonical one.
func (r Resolved) NeedsRename() bool {
	return r.Extracted != r.Dir
}

// Check results
type CheckResult struct {
	Installed bool
	Path      string
	Version   string
	Source    string // binary that produced the version
	Outdated  bool   // probed version is older than the pinned one
	Err       string
}
