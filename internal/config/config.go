package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"devsetup/internal/archive"
	"devsetup/internal/tools"
)

// DefaultFile is looked up in the working directory when --config is not given.
const DefaultFile = "devsetup.yaml"

// Config is the devsetup.yaml file. Every field is optional.
type Config struct {
	Project     Project     `yaml:"project" jsonschema:"description=Checkout naming rules"`
	Interpreter Interpreter `yaml:"interpreter"`
	Layout      Layout      `yaml:"layout"`
	Node        Node        `yaml:"node"`
	Yarn        Yarn        `yaml:"yarn"`
	Browser     Browser     `yaml:"browser"`
	Permissions Permissions `yaml:"permissions"`
}

type Project struct {
	Name         string `yaml:"name" jsonschema:"description=Working directory name must end with this,default=oppia"`
	DeployPrefix string `yaml:"deploy_prefix" jsonschema:"description=Deployment folders start with this,default=deploy-"`
}

type Interpreter struct {
	Command         string `yaml:"command" jsonschema:"default=python"`
	RequiredVersion string `yaml:"required_version" jsonschema:"description=major.minor or off,default=2.7"`
}

// Required returns the version to enforce, or "" when the check is off.
func (i Interpreter) Required() string {
	switch strings.ToLower(strings.TrimSpace(i.RequiredVersion)) {
	case "off", "none", "skip":
		return ""
	}
	return strings.TrimSpace(i.RequiredVersion)
}

// Layout paths are relative to the project root unless absolute.
type Layout struct {
	ToolsDir       string `yaml:"tools_dir" jsonschema:"default=../oppia_tools"`
	ThirdPartyDir  string `yaml:"third_party_dir" jsonschema:"default=third_party"`
	NodeModulesDir string `yaml:"node_modules_dir" jsonschema:"default=../oppia_tools/node_modules"`
	DownloadDir    string `yaml:"download_dir" jsonschema:"description=Temporary archive location; empty uses the OS temp dir"`
}

type Node struct {
	Version string `yaml:"version" jsonschema:"default=10.15.3"`
	DistURL string `yaml:"dist_url" jsonschema:"default=https://nodejs.org/dist"`
	Archive string `yaml:"archive" jsonschema:"enum=tar.gz,enum=tar.xz,default=tar.gz"`
}

type Yarn struct {
	Version    string `yaml:"version" jsonschema:"default=v1.17.3"`
	ReleaseURL string `yaml:"release_url" jsonschema:"default=https://github.com/yarnpkg/yarn/releases/download"`
}

type Browser struct {
	Env        string   `yaml:"env" jsonschema:"description=Variable handed to child processes,default=CHROME_BIN"`
	CIEnv      string   `yaml:"ci_env" jsonschema:"default=TRAVIS"`
	CIPath     string   `yaml:"ci_path" jsonschema:"default=/usr/bin/chromium-browser"`
	Discover   bool     `yaml:"discover" jsonschema:"description=Search PATH and well-known locations after the fixed candidates"`
	Candidates []string `yaml:"candidates" jsonschema:"description=Replaces the built-in candidate paths"`
}

type Permissions struct {
	Mode string `yaml:"mode" jsonschema:"description=Octal mode applied under node_modules_dir,default=0744"`
}

// Default returns the built-in configuration.
func Default() Config {
	var c Config
	c.applyDefaults()
	return c
}

// Load reads path. A missing file yields the defaults when optional is set.
func Load(path string, optional bool) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	setDefault(&c.Project.Name, "oppia")
	setDefault(&c.Project.DeployPrefix, "deploy-")
	setDefault(&c.Interpreter.Command, "python")
	setDefault(&c.Interpreter.RequiredVersion, "2.7")
	setDefault(&c.Layout.ToolsDir, "../oppia_tools")
	setDefault(&c.Layout.ThirdPartyDir, "third_party")
	setDefault(&c.Layout.NodeModulesDir, "../oppia_tools/node_modules")
	setDefault(&c.Node.Version, tools.DefaultNodeVersion)
	setDefault(&c.Node.DistURL, tools.DefaultNodeDistURL)
	setDefault(&c.Node.Archive, string(archive.TarGz))
	setDefault(&c.Yarn.Version, tools.DefaultYarnVersion)
	setDefault(&c.Yarn.ReleaseURL, tools.DefaultYarnURL)
	setDefault(&c.Browser.Env, "CHROME_BIN")
	setDefault(&c.Browser.CIEnv, "TRAVIS")
	setDefault(&c.Browser.CIPath, "/usr/bin/chromium-browser")
	setDefault(&c.Permissions.Mode, "0744")
}

// Validate rejects values that cannot be used.
func (c Config) Validate() error {
	kind, err := archive.ParseKind(c.Node.Archive)
	if err != nil {
		return fmt.Errorf("node.archive: %w", err)
	}
	if !kind.IsTar() {
		return fmt.Errorf("node.archive: %s is only published for windows", kind)
	}
	if _, err := c.PermissionMode(); err != nil {
		return err
	}
	return nil
}

// PermissionMode parses permissions.mode as octal.
func (c Config) PermissionMode() (os.FileMode, error) {
	m, err := strconv.ParseUint(strings.TrimSpace(c.Permissions.Mode), 8, 32)
	if err != nil || m > 0o777 {
		return 0, fmt.Errorf("permissions.mode: invalid octal mode %q", c.Permissions.Mode)
	}
	return os.FileMode(m), nil
}

// Tools returns the runtime and package manager descriptors in install order.
func (c Config) Tools() []tools.ToolInfo {
	kind, err := archive.ParseKind(c.Node.Archive)
	if err != nil {
		kind = archive.TarGz
	}
	return []tools.ToolInfo{
		tools.Node(c.Node.Version, c.Node.DistURL, kind),
		tools.Yarn(c.Yarn.Version, c.Yarn.ReleaseURL),
	}
}

// Marshal renders c as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

func setDefault(field *string, val string) {
	if strings.TrimSpace(*field) == "" {
		*field = val
	}
}
