package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// FileName is the optional config file read from the working directory.
const FileName = "stmtmerge.yaml"

// envPrefix prefixes every environment override, e.g. STMTMERGE_INPUT_DIR.
const envPrefix = "STMTMERGE_"

// Config represents stmtmerge.yaml.
type Config struct {
	InputDir     string `yaml:"input_dir"`
	OutputDir    string `yaml:"output_dir"`
	Replacements string `yaml:"replacements"`
	OutputName   string `yaml:"output_name"`
	Timestamp    bool   `yaml:"timestamp"`     // suffix outputs with _YYYY-MM-DD
	Aggregate    bool   `yaml:"aggregate"`     // derive calendar fields and write pivot sheets
	PauseOnExit  bool   `yaml:"pause_on_exit"` // wait for Enter before exiting
	LogLevel     string `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		InputDir:     "input",
		OutputDir:    "output",
		Replacements: "replacements.xlsx",
		OutputName:   "data_merged",
		Timestamp:    true,
		Aggregate:    true,
		PauseOnExit:  false,
		LogLevel:     "info",
	}
}

// Load reads a config file on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Resolve builds the effective configuration for a run in dir: defaults, then
// dir/stmtmerge.yaml if present, then dir/.env and STMTMERGE_* variables.
func Resolve(dir string) (*Config, error) {
	cfg := Default()

	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err == nil {
		cfg, err = Load(path)
		if err != nil {
			return nil, err
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("stat config: %w", err)
	}

	envFile := filepath.Join(dir, ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("loading .env: %w", err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []string
	if strings.TrimSpace(c.InputDir) == "" {
		errs = append(errs, "input_dir cannot be empty")
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		errs = append(errs, "output_dir cannot be empty")
	}
	if strings.TrimSpace(c.Replacements) == "" {
		errs = append(errs, "replacements cannot be empty")
	}
	if strings.TrimSpace(c.OutputName) == "" {
		errs = append(errs, "output_name cannot be empty")
	} else if strings.ContainsAny(c.OutputName, `/\`) {
		errs = append(errs, fmt.Sprintf("output_name %q must not contain path separators", c.OutputName))
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Sprintf("invalid log_level %q", c.LogLevel))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"INPUT_DIR":    &c.InputDir,
		"OUTPUT_DIR":   &c.OutputDir,
		"REPLACEMENTS": &c.Replacements,
		"OUTPUT_NAME":  &c.OutputName,
		"LOG_LEVEL":    &c.LogLevel,
	}
	for k, p := range strs {
		if v, ok := lookup(envPrefix + k); ok {
			*p = v
		}
	}

	bools := map[string]*bool{
		"TIMESTAMP":     &c.Timestamp,
		"AGGREGATE":     &c.Aggregate,
		"PAUSE_ON_EXIT": &c.PauseOnExit,
	}
	for k, p := range bools {
		v, ok := lookup(envPrefix + k)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s%s %q: %w", envPrefix, k, v, err)
		}
		*p = b
	}
	return nil
}

// Path resolves p against dir unless it is absolute.
func Path(dir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}
