// Package config loads the booster CLI settings from $BOOSTER_HOME/config.yaml.
// A commented template is written on first run; values missing from the file
// fall back to built-in defaults and command-line flags override both.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	booster "github.com/goliatone/go-booster"
	"github.com/goliatone/go-booster/layering"
)

const (
	// HomeEnv overrides the configuration directory.
	HomeEnv = "BOOSTER_HOME"
	// HomeDir is the directory created under the user home when HomeEnv is unset.
	HomeDir = ".booster"
	// FileName is the config file inside the configuration directory.
	FileName = "config.yaml"
)

// Storage backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendSqlite = "sqlite"
)

const defaultConfigYAML = `# booster configuration

storage:
  # memory | file | badger | sqlite
  backend: file
  # Directory holding snapshot data. Relative paths resolve against this folder.
  path: data
  # key: ultima_pre_booster_state_v1

persistence:
  # Delay between the last edit and the write.
  debounce: 500ms

logging:
  # debug | info | warn | error
  level: info

insights:
  # expr | cel | js
  engine: expr
  # Extra rules evaluated after the built-in hints.
  # rules:
  #   - code: big_team
  #     level: info
  #     when: "economy.payrollRatio > 60"
  #     message: "Payroll takes {{printf \"%.0f\" .economy.payrollRatio}}% of revenue."
`

var validate = validator.New()

// Config is the merged CLI configuration.
type Config struct {
	Storage     StorageConfig     `yaml:"storage"`
	Persistence PersistenceConfig `yaml:"persistence"`
	Logging     LoggingConfig     `yaml:"logging"`
	Insights    InsightsConfig    `yaml:"insights"`
}

// StorageConfig selects the snapshot backend.
type StorageConfig struct {
	Backend string `yaml:"backend" validate:"required,oneof=memory file badger sqlite"`
	Path    string `yaml:"path"`
	Key     string `yaml:"key" validate:"required"`
}

// PersistenceConfig tunes write scheduling.
type PersistenceConfig struct {
	Debounce time.Duration `yaml:"debounce" validate:"gte=0"`
}

// LoggingConfig sets the log level.
type LoggingConfig struct {
	Level string `yaml:"level" validate:"required,oneof=debug info warn error"`
}

// InsightsConfig selects the rule engine and extra rules.
type InsightsConfig struct {
	Engine string                `yaml:"engine" validate:"required,oneof=expr cel js"`
	Rules  []booster.InsightRule `yaml:"rules" validate:"dive"`
}

// Defaults returns the built-in configuration rooted at home.
func Defaults(home string) Config {
	return Config{
		Storage: StorageConfig{
			Backend: BackendFile,
			Path:    filepath.Join(home, "data"),
			Key:     booster.StorageKey,
		},
		Persistence: PersistenceConfig{Debounce: booster.DefaultDebounce},
		Logging:     LoggingConfig{Level: "info"},
		Insights:    InsightsConfig{Engine: "expr"},
	}
}

// Home resolves the configuration directory.
func Home() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(HomeEnv)); dir != "" {
		return dir, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve home: %w", err)
	}
	return filepath.Join(userHome, HomeDir), nil
}

// Path returns the config file location inside home.
func Path(home string) string {
	return filepath.Join(home, FileName)
}

// Load reads home/config.yaml, writing the default template first when the
// file does not exist, and merges it over Defaults.
func Load(home string) (Config, error) {
	if err := os.MkdirAll(home, 0o755); err != nil {
		return Config{}, fmt.Errorf("config: create %s: %w", home, err)
	}
	path := Path(home)
	if err := ensureFile(path); err != nil {
		return Config{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var fromFile Config
	if err := yaml.Unmarshal(data, &fromFile); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg := layering.MergeLayers(fromFile, Defaults(home))
	cfg.normalize(home)
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Override lays the non-zero fields of overrides on top of c.
func (c Config) Override(overrides Config) (Config, error) {
	merged := layering.MergeLayers(overrides, c)
	if err := merged.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return merged, nil
}

// Validate checks enumerations and rule shapes.
func (c Config) Validate() error {
	return validate.Struct(c)
}

// DebounceOrDefault returns the configured debounce, or the store default
// when unset.
func (c Config) DebounceOrDefault() time.Duration {
	if c.Persistence.Debounce <= 0 {
		return booster.DefaultDebounce
	}
	return c.Persistence.Debounce
}

func (c *Config) normalize(home string) {
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Insights.Engine = strings.ToLower(strings.TrimSpace(c.Insights.Engine))
	if c.Storage.Path != "" && !filepath.IsAbs(c.Storage.Path) {
		c.Storage.Path = filepath.Join(home, c.Storage.Path)
	}
}

func ensureFile(path string) error {
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config: stat %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigYAML), 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
