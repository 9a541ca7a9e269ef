package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"devsetup/internal/tools"
)

func TestLoadMissingOptional(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), DefaultFile), true)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Project.Name != "oppia" || cfg.Node.Version != tools.DefaultNodeVersion || cfg.Browser.Env != "CHROME_BIN" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), false); err == nil {
		t.Fatalf("expected error for missing required file")
	}
}

func TestLoadOverrides(t *testing.T) {
	p := filepath.Join(t.TempDir(), DefaultFile)
	body := `
project:
  name: webapp
interpreter:
  required_version: "off"
node:
  version: 20.12.2
  archive: tar.xz
permissions:
  mode: "0755"
`
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(p, false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Project.Name != "webapp" || cfg.Project.DeployPrefix != "deploy-" {
		t.Fatalf("unexpected project %+v", cfg.Project)
	}
	if cfg.Interpreter.Required() != "" {
		t.Fatalf("required version should be off, got %q", cfg.Interpreter.Required())
	}
	mode, err := cfg.PermissionMode()
	if err != nil || mode != 0o755 {
		t.Fatalf("mode = %o, %v", mode, err)
	}
	ts := cfg.Tools()
	if len(ts) != 2 || ts[0].ID != tools.ToolNode || ts[0].Version != "20.12.2" || ts[1].ID != tools.ToolYarn {
		t.Fatalf("unexpected tools %+v", ts)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := []string{
		"node:\n  archive: zip\n",
		"node:\n  archive: rar\n",
		"permissions:\n  mode: rwx\n",
		"project: [",
	}
	for _, body := range cases {
		p := filepath.Join(t.TempDir(), DefaultFile)
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		if _, err := Load(p, false); err == nil {
			t.Fatalf("expected error for %q", body)
		}
	}
}

func TestLayoutResolve(t *testing.T) {
	root := t.TempDir()
	paths, err := Default().Layout.Resolve(filepath.Join(root, "oppia"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if paths.ToolsDir != filepath.Join(root, "oppia_tools") {
		t.Fatalf("tools dir = %q", paths.ToolsDir)
	}
	if paths.ThirdParty != filepath.Join(root, "oppia", "third_party") {
		t.Fatalf("third party = %q", paths.ThirdParty)
	}
	if paths.NodeModules != filepath.Join(root, "oppia_tools", "node_modules") {
		t.Fatalf("node modules = %q", paths.NodeModules)
	}
	if paths.DownloadDir != os.TempDir() {
		t.Fatalf("download dir = %q", paths.DownloadDir)
	}
}

func TestSchema(t *testing.T) {
	b, err := MarshalSchema(Schema())
	if err != nil {
		t.Fatalf("MarshalSchema: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(b, &doc); err != nil {
		t.Fatalf("schema is not JSON: %v", err)
	}
	for _, key := range []string{"node_modules_dir", "required_version", "ci_env"} {
		if !strings.Contains(string(b), key) {
			t.Fatalf("schema misses %q", key)
		}
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	b, err := Default().Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(b), "tools_dir: ../oppia_tools") {
		t.Fatalf("unexpected yaml:\n%s", b)
	}
}
