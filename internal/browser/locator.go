package browser

import (
	"errors"
	"os"
	"strings"

	"github.com/go-rod/rod/lib/launcher"
)

var ErrBrowserNotFound = errors.New("chrome is not found, stopping")

// Candidate is one entry of the lookup table.
type Candidate struct {
	Label string
	Path  string
	// Env, when set, makes the candidate match on the variable being
	// non-empty instead of on Path existing.
	Env string
}

// Result is the chosen browser binary.
type Result struct {
	Path  string
	Label string
}

// DefaultCandidates covers Unix, Windows (Git Bash and native), WSL and macOS.
var DefaultCandidates = []Candidate{
	{Label: "unix", Path: "/usr/bin/google-chrome"},
	{Label: "unix", Path: "/usr/bin/chromium-browser"},
	{Label: "windows", Path: "/c/Program Files (x86)/Google/Chrome/Application/chrome.exe"},
	{Label: "windows", Path: `c:\Program Files (x86)\Google\Chrome\Application\Chrome.exe`},
	{Label: "wsl", Path: "/mnt/c/Program Files (x86)/Google/Chrome/Application/chrome.exe"},
	{Label: "mac", Path: "/Applications/Google Chrome.app/Contents/MacOS/Google Chrome"},
}

// Locator evaluates Candidates in order; the first match wins.
type Locator struct {
	Candidates []Candidate
	Getenv     func(string) string
	IsFile     func(string) bool
	// Discover, when set, runs after every candidate failed.
	Discover func() (string, bool)
}

// NewLocator builds the standard table: the CI marker first, then paths
// (DefaultCandidates when paths is empty).
func NewLocator(ciEnv, ciPath string, paths []string, discover bool) *Locator {
	cands := make([]Candidate, 0, len(DefaultCandidates)+1)
	if ciEnv != "" && ciPath != "" {
		cands = append(cands, Candidate{Label: "ci", Path: ciPath, Env: ciEnv})
	}
	if len(paths) == 0 {
		cands = append(cands, DefaultCandidates...)
	} else {
		for _, p := range paths {
			cands = append(cands, Candidate{Label: "custom", Path: p})
		}
	}
	l := &Locator{Candidates: cands, Getenv: os.Getenv, IsFile: isFile}
	if discover {
		l.Discover = launcher.LookPath
	}
	return l
}

// Locate returns the first matching candidate. Candidates keyed on an
// environment variable are trusted without checking the path.
func (l *Locator) Locate() (Result, error) {
	getenv := l.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	exists := l.IsFile
	if exists == nil {
		exists = isFile
	}
	for _, c := range l.Candidates {
		if c.Env != "" {
			if getenv(c.Env) != "" {
				return Result{Path: c.Path, Label: c.Label}, nil
			}
			continue
		}
		if exists(c.Path) {
			return Result{Path: c.Path, Label: c.Label}, nil
		}
	}
	if l.Discover != nil {
		if p, ok := l.Discover(); ok {
			return Result{Path: p, Label: "discovered"}, nil
		}
	}
	return Result{}, ErrBrowserNotFound
}

// Export returns env with name set to path, replacing any previous value.
func Export(env []string, name, path string) []string {
	prefix := name + "="
	out := make([]string, 0, len(env)+1)
	for _, kv := range env {
		if strings.HasPrefix(kv, prefix) {
			continue
		}
		out = append(out, kv)
	}
	return append(out, prefix+path)
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}
