package tools

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"devsetup/internal/archive"
	"devsetup/internal/platform"
)

const (
	DefaultNodeVersion = "10.15.3"
	DefaultNodeDistURL = "https://nodejs.org/dist"
	DefaultYarnVersion = "v1.17.3"
	DefaultYarnURL     = "https://github.com/yarnpkg/yarn/releases/download"
)

// Node describes the Node.js runtime. unixKind selects the tarball flavour
// for mac and linux; windows always uses the zip build.
func Node(version, distURL string, unixKind archive.Kind) ToolInfo {
	if unixKind == "" || !unixKind.IsTar() {
		unixKind = archive.TarGz
	}
	return ToolInfo{
		ID:          ToolNode,
		DisplayName: "Node.js",
		Version:     version,
		Aliases:     []string{"nodejs", "node.js", "runtime"},
		Dir:         "node-${VERSION}",
		Extracted:   "node-v${VERSION}-${OS}-${ARCH}",
		Archive:     "node-v${VERSION}-${OS}-${ARCH}${EXT}",
		URL:         strings.TrimRight(distURL, "/") + "/v${VERSION}/${ARCHIVE}",
		Targets: map[platform.OS]Target{
			platform.Windows: {OS: "win", Kind: archive.Zip},
			platform.Mac:     {OS: "darwin", Kind: unixKind},
			platform.Linux:   {OS: "linux", Kind: unixKind},
		},
		Binaries:    []string{"bin/node", "node.exe"},
		VersionArgs: []string{"--version"},
	}
}

// Yarn describes the Yarn package manager. The release tarball is platform
// independent and already unpacks into yarn-<version>.
func Yarn(version, releaseURL string) ToolInfo {
	return ToolInfo{
		ID:            ToolYarn,
		DisplayName:   "Yarn",
		Version:       version,
		Aliases:       []string{"yarnpkg", "pm", "package-manager"},
		Dir:           "yarn-${VERSION}",
		Archive:       "yarn-${VERSION}${EXT}",
		URL:           strings.TrimRight(releaseURL, "/") + "/${VERSION}/${ARCHIVE}",
		DefaultTarget: &Target{Kind: archive.TarGz},
		Binaries:      []string{"bin/yarn", "bin/yarn.cmd"},
		VersionArgs:   []string{"--version"},
		CleanFiles:    []string{"package-lock.json"},
		Notice: []string{
			"Installing yarn",
			"WARNING: Please note that Oppia uses Yarn to manage node packages",
			"do *NOT* use npm. For more information on how to use yarn,",
			"visit https://yarnpkg.com/en/docs/usage.",
		},
	}
}

// Resolve expands t's templates for p.
func Resolve(t ToolInfo, p platform.Platform) (Resolved, error) {
	target, ok := t.Targets[p.OS]
	if !ok {
		if t.DefaultTarget == nil {
			return Resolved{}, fmt.Errorf("%w: %s on %s", ErrUnsupportedPlatform, t.DisplayName, p)
		}
		target = *t.DefaultTarget
	}
	vars := map[string]string{
		"VERSION": t.Version,
		"OS":      target.OS,
		"ARCH":    string(p.Arch),
		"EXT":     target.Kind.Ext(),
	}
	expand := func(s string) string {
		return os.Expand(s, func(k string) string { return vars[k] })
	}
	r := Resolved{
		Archive: expand(t.Archive),
		Dir:     expand(t.Dir),
		Kind:    target.Kind,
	}
	vars["ARCHIVE"] = r.Archive
	r.URL = expand(t.URL)
	r.Extracted = r.Dir
	if t.Extracted != "" {
		r.Extracted = expand(t.Extracted)
	}
	return r, nil
}

// Select parses names into tools. No names, or "all", selects every tool.
// Unknown names fail with ErrUnknownTool and a fuzzy suggestion when one exists.
func Select(all []ToolInfo, names []string) ([]ToolInfo, error) {
	want := map[string]bool{}
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n != "" {
			want[n] = true
		}
	}
	if len(want) == 0 || want["all"] {
		return all, nil
	}

	index := map[string]int{}
	for i, t := range all {
		index[string(t.ID)] = i
		index[strings.ToLower(t.DisplayName)] = i
		for _, a := range t.Aliases {
			index[strings.ToLower(a)] = i
		}
	}

	picked := map[int]bool{}
	var unknown []string
	for n := range want {
		i, ok := index[n]
		if !ok {
			unknown = append(unknown, n)
			continue
		}
		picked[i] = true
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, unknownToolError(unknown, index)
	}

	sel := make([]ToolInfo, 0, len(picked))
	for i, t := range all {
		if picked[i] {
			sel = append(sel, t)
		}
	}
	return sel, nil
}

// Suggest returns known names that fuzzy-match name, best first.
func Suggest(name string, all []ToolInfo) []string {
	index := map[string]int{}
	for i, t := range all {
		index[string(t.ID)] = i
		for _, a := range t.Aliases {
			index[a] = i
		}
	}
	return suggest(name, index)
}

func suggest(name string, index map[string]int) []string {
	keys := make([]string, 0, len(index))
	for k := range index {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var out []string
	for _, m := range fuzzy.Find(name, keys) {
		out = append(out, m.Str)
	}
	return out
}

func unknownToolError(unknown []string, index map[string]int) error {
	err := fmt.Errorf("%w: %s", ErrUnknownTool, strings.Join(unknown, ", "))
	if s := suggest(unknown[0], index); len(s) > 0 {
		return fmt.Errorf("%w (did you mean %q?)", err, s[0])
	}
	return err
}
