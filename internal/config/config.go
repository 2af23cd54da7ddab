package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	aerrors "git.home.luguber.info/inful/assetbuild/internal/errors"
)

// DefaultConfigFile is the configuration path used when --config is not given.
const DefaultConfigFile = "assetbuild.yaml"

// Config is resolved once at start-up and passed down; nothing below the
// command layer reads the environment directly.
type Config struct {
	// Root is the packaging tree; project and output directories are relative to it.
	Root    string        `yaml:"root,omitempty" env:"ASSETBUILD_ROOT"`
	Project ProjectConfig `yaml:"project"`
	Output  OutputConfig  `yaml:"output"`
	Build   BuildConfig   `yaml:"build"`
	Tools   ToolsConfig   `yaml:"tools"`
	Package PackageConfig `yaml:"package"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// ProjectConfig locates the front-end (ember-cli) project.
type ProjectConfig struct {
	Directory string `yaml:"directory" env:"ASSETBUILD_PROJECT_DIR"`
}

// OutputConfig locates the asset output directory that packaging ships.
type OutputConfig struct {
	Directory string `yaml:"directory" env:"ASSETBUILD_OUTPUT_DIR"`
}

// BuildConfig controls gating and the ember build itself.
type BuildConfig struct {
	Environment string `yaml:"environment" env:"SNFUI_AUTO_BUILD_ENV"`
	// AutoBuild is the opt-out switch; see AutoBuildDisabled.
	AutoBuild          string     `yaml:"auto_build,omitempty" env:"SNFUI_AUTO_BUILD"`
	TriggerVerbs       []string   `yaml:"trigger_verbs" env:"ASSETBUILD_TRIGGER_VERBS" envSeparator:","`
	CacheArgs          []string   `yaml:"cache_args" env:"ASSETBUILD_NPM_CACHE_ARGS" envSeparator:" "`
	EmberInstallPolicy StepPolicy `yaml:"ember_install_policy" env:"ASSETBUILD_EMBER_INSTALL_POLICY"`
	// ReportPath, when set, receives the JSON build report.
	ReportPath string `yaml:"report_path,omitempty" env:"ASSETBUILD_REPORT"`
}

// disablingValues are the exact opt-out values honoured for SNFUI_AUTO_BUILD.
var disablingValues = map[string]struct{}{"False": {}, "false": {}, "0": {}}

// AutoBuildDisabled reports whether the opt-out switch holds a disabling value.
// Matching is exact: "FALSE" or " 0" do not disable.
func (b BuildConfig) AutoBuildDisabled() bool {
	_, ok := disablingValues[b.AutoBuild]
	return ok
}

// ToolsConfig names the executables and the paths (relative to the project)
// whose presence drives the build steps.
type ToolsConfig struct {
	NPM             string `yaml:"npm" env:"ASSETBUILD_NPM"`
	Bower           string `yaml:"bower" env:"ASSETBUILD_BOWER"`
	EmberBin        string `yaml:"ember_bin"`
	BowerLocalBin   string `yaml:"bower_local_bin"`
	NodeModules     string `yaml:"node_modules"`
	BowerComponents string `yaml:"bower_components"`
}

// PackageConfig is the metadata surface exposed to packaging.
type PackageConfig struct {
	Name            string                       `yaml:"name"`
	VersionFile     string                       `yaml:"version_file"`
	Description     string                       `yaml:"description,omitempty"`
	License         string                       `yaml:"license,omitempty"`
	URL             string                       `yaml:"url,omitempty"`
	Author          string                       `yaml:"author,omitempty"`
	AuthorEmail     string                       `yaml:"author_email,omitempty"`
	Maintainer      string                       `yaml:"maintainer,omitempty"`
	MaintainerEmail string                       `yaml:"maintainer_email,omitempty"`
	Requires        []string                     `yaml:"requires,omitempty"`
	DependencyLinks []string                     `yaml:"dependency_links,omitempty"`
	EntryPoints     map[string]map[string]string `yaml:"entry_points,omitempty"`
}

// LoggingConfig selects slog level and handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level" env:"ASSETBUILD_LOG_LEVEL"`
	Format LogFormat `yaml:"format" env:"ASSETBUILD_LOG_FORMAT"`
}

// MetricsConfig controls Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty" env:"ASSETBUILD_METRICS_TEXTFILE"`
}

// ProjectPath is the absolute front-end project directory.
func (c *Config) ProjectPath() string { return c.resolve(c.Project.Directory) }

// OutputPath is the absolute asset output directory.
func (c *Config) OutputPath() string { return c.resolve(c.Output.Directory) }

// VersionFilePath is the absolute path of the version module.
func (c *Config) VersionFilePath() string { return c.resolve(c.Package.VersionFile) }

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(c.Root, p)
}

// Load resolves the configuration: defaults, then the YAML file at configPath
// (a missing file is not an error), then .env files and the process environment.
func Load(configPath string) (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, aerrors.ConfigInvalid(".env", err)
	}

	cfg := Default()
	if configPath != "" {
		if err := cfg.mergeFile(configPath); err != nil {
			return nil, aerrors.ConfigInvalid(configPath, err)
		}
	}
	if err := applyEnv(cfg); err != nil {
		return nil, aerrors.ConfigInvalid("environment", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, aerrors.ConfigInvalid(configPath, err)
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(configPath string) error {
	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), c); err != nil {
		return fmt.Errorf("failed to unmarshal config %s: %w", configPath, err)
	}
	// A relative (or absent) root in a file is relative to that file.
	switch {
	case c.Root == "":
		c.Root = filepath.Dir(configPath)
	case !filepath.IsAbs(c.Root):
		c.Root = filepath.Join(filepath.Dir(configPath), c.Root)
	}
	return nil
}

func (c *Config) normalize() error {
	if c.Root == "" {
		c.Root = "."
	}
	abs, err := filepath.Abs(c.Root)
	if err != nil {
		return fmt.Errorf("resolve root %s: %w", c.Root, err)
	}
	c.Root = abs

	c.Logging.Level = NormalizeLogLevel(string(c.Logging.Level))
	c.Logging.Format = NormalizeLogFormat(string(c.Logging.Format))
	if c.Build.EmberInstallPolicy == "" {
		c.Build.EmberInstallPolicy = PolicyWarn
	}
	return nil
}

// Init writes the default configuration to configPath.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	cfg := Default()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	data = append([]byte(initHeader), data...)

	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	// #nosec G306 -- configuration file is not secret
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

const initHeader = `# assetbuild configuration
#
# Paths are relative to the directory containing this file unless absolute.
# SNFUI_AUTO_BUILD=false (or False, 0) disables the automatic build;
# SNFUI_AUTO_BUILD_ENV overrides build.environment.
`
