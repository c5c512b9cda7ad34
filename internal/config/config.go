package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	ierrors "github.com/Aman-CERP/interlog/internal/errors"
	"github.com/Aman-CERP/interlog/internal/registry"
)

// FileName is the project configuration file looked up in a package or
// project directory.
const FileName = ".interlog.yaml"

// altFileName is accepted when FileName is absent.
const altFileName = ".interlog.yml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "INTERLOG_"

// Config represents the complete interlog tool configuration.
type Config struct {
	Version  int            `yaml:"version" json:"version"`
	Generate GenerateConfig `yaml:"generate" json:"generate"`
	Log      LogConfig      `yaml:"log" json:"log"`
	Rules    RulesConfig    `yaml:"rules" json:"rules"`
}

// GenerateConfig configures interceptor generation.
type GenerateConfig struct {
	// Suffix is appended to generated file names.
	Suffix string `yaml:"suffix" json:"suffix"`

	// TypeSuffix is appended to the owner name to form the wrapper type.
	TypeSuffix string `yaml:"type_suffix" json:"type_suffix"`

	// Workers bounds how many packages are generated at once.
	Workers int `yaml:"workers" json:"workers"`

	// IncludeTests scans _test.go files for markers.
	// Pointer so an explicit false in a project file overrides a user true.
	IncludeTests *bool `yaml:"include_tests,omitempty" json:"include_tests,omitempty"`
}

// LogConfig configures the tool's own logging.
type LogConfig struct {
	Level string `yaml:"level" json:"level"`
}

// RulesConfig configures where the rules commands look for log rules.
type RulesConfig struct {
	// Files are rule files, later files win.
	Files []string `yaml:"files" json:"files"`

	// EnvPrefix selects environment variables layered over the files.
	// Empty disables the environment layer.
	EnvPrefix string `yaml:"env_prefix" json:"env_prefix"`
}

// NewConfig returns a configuration with default values.
func NewConfig() *Config {
	includeTests := false
	return &Config{
		Version: 1,
		Generate: GenerateConfig{
			Suffix:       registry.DefaultGeneratedSuffix,
			TypeSuffix:   "Interceptor",
			Workers:      4,
			IncludeTests: &includeTests,
		},
		Log: LogConfig{
			Level: "info",
		},
		Rules: RulesConfig{
			Files:     []string{"appsettings.yaml"},
			EnvPrefix: EnvPrefix,
		},
	}
}

// IncludeTestFiles reports the effective include_tests value.
func (g GenerateConfig) IncludeTestFiles() bool {
	return g.IncludeTests != nil && *g.IncludeTests
}

// GetUserConfigPath returns the path to the user configuration file.
// It follows the XDG Base Directory specification:
//   - $XDG_CONFIG_HOME/interlog/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/interlog/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "interlog", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "interlog", "config.yaml")
	}
	return filepath.Join(home, ".config", "interlog", "config.yaml")
}

// ProjectConfigPath returns the project config file used for dir, or the
// default location when none exists yet.
func ProjectConfigPath(dir string) string {
	yamlPath := filepath.Join(dir, FileName)
	if fileExists(yamlPath) {
		return yamlPath
	}
	if ymlPath := filepath.Join(dir, altFileName); fileExists(ymlPath) {
		return ymlPath
	}
	return yamlPath
}

// FindProjectRoot walks up from startDir to the first directory holding a
// project config file, a go.mod or a .git directory. It returns startDir
// itself when none is found.
func FindProjectRoot(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	for dir := absDir; ; {
		if fileExists(filepath.Join(dir, FileName)) ||
			fileExists(filepath.Join(dir, altFileName)) ||
			fileExists(filepath.Join(dir, "go.mod")) ||
			dirExists(filepath.Join(dir, ".git")) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return absDir, nil
		}
		dir = parent
	}
}

// Load loads configuration for the given directory.
// It applies configuration in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User config (~/.config/interlog/config.yaml)
//  3. Project config (.interlog.yaml in the project root of dir)
//  4. Environment variables (INTERLOG_*)
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	userPath := GetUserConfigPath()
	if fileExists(userPath) {
		if err := cfg.loadYAML(userPath); err != nil {
			return nil, err
		}
	}

	root, err := FindProjectRoot(dir)
	if err != nil {
		return nil, err
	}
	if projectPath := ProjectConfigPath(root); fileExists(projectPath) {
		if err := cfg.loadYAML(projectPath); err != nil {
			return nil, err
		}
	}

	cfg.applyEnvOverrides(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile parses a single config file without defaults or merging, so
// only the fields the file sets are non-zero.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ierrors.New(ierrors.ErrCodeConfigNotFound, "failed to read config file", err).
			WithDetail("path", path)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, ierrors.New(ierrors.ErrCodeConfigInvalid, "failed to parse config file", err).
			WithDetail("path", path).
			WithSuggestion("Check the YAML syntax of " + filepath.Base(path))
	}
	return &parsed, nil
}

// loadYAML loads and merges configuration from a YAML file.
func (c *Config) loadYAML(path string) error {
	parsed, err := LoadFile(path)
	if err != nil {
		return err
	}
	c.mergeWith(parsed)
	return nil
}

// mergeWith merges non-zero values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	if other.Generate.Suffix != "" {
		c.Generate.Suffix = other.Generate.Suffix
	}
	if other.Generate.TypeSuffix != "" {
		c.Generate.TypeSuffix = other.Generate.TypeSuffix
	}
	if other.Generate.Workers != 0 {
		c.Generate.Workers = other.Generate.Workers
	}
	if other.Generate.IncludeTests != nil {
		v := *other.Generate.IncludeTests
		c.Generate.IncludeTests = &v
	}

	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}

	if len(other.Rules.Files) > 0 {
		c.Rules.Files = other.Rules.Files
	}
	if other.Rules.EnvPrefix != "" {
		c.Rules.EnvPrefix = other.Rules.EnvPrefix
	}
}

// applyEnvOverrides applies INTERLOG_* environment variable overrides.
// Unparsable values are ignored.
func (c *Config) applyEnvOverrides(getenv func(string) string) {
	if v := getenv(EnvPrefix + "SUFFIX"); v != "" {
		c.Generate.Suffix = v
	}
	if v := getenv(EnvPrefix + "TYPE_SUFFIX"); v != "" {
		c.Generate.TypeSuffix = v
	}
	if v := getenv(EnvPrefix + "WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Generate.Workers = n
		}
	}
	if v := getenv(EnvPrefix + "INCLUDE_TESTS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Generate.IncludeTests = &b
		}
	}
	if v := getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := getenv(EnvPrefix + "RULES_FILES"); v != "" {
		var files []string
		for _, f := range strings.Split(v, string(os.PathListSeparator)) {
			if f = strings.TrimSpace(f); f != "" {
				files = append(files, f)
			}
		}
		if len(files) > 0 {
			c.Rules.Files = files
		}
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	invalid := func(field, msg string) error {
		return ierrors.ConfigError(msg, nil).
			WithDetail("field", field)
	}

	if !strings.HasSuffix(c.Generate.Suffix, ".go") || c.Generate.Suffix == ".go" {
		return invalid("generate.suffix",
			fmt.Sprintf("generate.suffix must end in .go and not be empty before it, got %q", c.Generate.Suffix))
	}
	if strings.HasSuffix(c.Generate.Suffix, "_test.go") {
		return invalid("generate.suffix", "generate.suffix must not produce test files")
	}
	if !isIdentifier(c.Generate.TypeSuffix) {
		return invalid("generate.type_suffix",
			fmt.Sprintf("generate.type_suffix must be a Go identifier, got %q", c.Generate.TypeSuffix))
	}
	if c.Generate.Workers < 1 {
		return invalid("generate.workers",
			fmt.Sprintf("generate.workers must be positive, got %d", c.Generate.Workers))
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		return invalid("log.level",
			fmt.Sprintf("log.level must be 'debug', 'info', 'warn', or 'error', got %s", c.Log.Level))
	}

	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return ierrors.New(ierrors.ErrCodeWriteFailed, "failed to write config file", err).
			WithDetail("path", path)
	}
	return nil
}

// RuleFiles resolves the configured rule files against dir.
func (c *Config) RuleFiles(dir string) []string {
	files := make([]string, 0, len(c.Rules.Files))
	for _, f := range c.Rules.Files {
		if !filepath.IsAbs(f) {
			f = filepath.Join(dir, f)
		}
		files = append(files, f)
	}
	return files
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
