package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and database locations.
type Paths struct {
	LogDir string `toml:"log_dir"`
	RunsDB string `toml:"runs_db"`
}

// Dataset contains the corpus pipeline parameters.
type Dataset struct {
	SampleRate int     `toml:"sample_rate"`
	Subsample  int     `toml:"subsample"`
	BlockSize  int     `toml:"block_size"`
	Downsample int     `toml:"downsample"`
	Seed       int64   `toml:"seed"`
	TestRatio  float64 `toml:"test_ratio"`
	Workers    int     `toml:"workers"`
	// DecodeErrors is "skip" (warn and drop the file) or "abort".
	DecodeErrors string `toml:"decode_errors"`
	Extension    string `toml:"extension"`
}

// Cache contains configuration for the per-folder split cache.
type Cache struct {
	Enabled  bool   `toml:"enabled"`
	Filename string `toml:"filename"`
	// Validation is "content" (fingerprint recordings and rebuild on change)
	// or "path" (trust any entry stored for the folder).
	Validation string `toml:"validation"`
}

// Combiner contains the frame-to-event tolerance settings.
type Combiner struct {
	LeftEpsilon   float64 `toml:"left_epsilon"`
	RightEpsilon  float64 `toml:"right_epsilon"`
	OnlyPositive  bool    `toml:"only_positive"`
	NegativeLabel int     `toml:"negative_label"`
}

// Evaluation contains scoring configuration.
type Evaluation struct {
	Metrics    []string `toml:"metrics"`
	RecordRuns bool     `toml:"record_runs"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for notepipe.
//
// Configuration sections by subsystem:
//   - Paths: log directory and run history database
//   - Dataset: decoding, alignment, windowing, and split parameters
//   - Cache: split cache location and invalidation policy
//   - Combiner: tolerance windows for frame-to-event combination
//   - Evaluation: metrics reported and run recording
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Dataset    Dataset    `toml:"dataset"`
	Cache      Cache      `toml:"cache"`
	Combiner   Combiner   `toml:"combiner"`
	Evaluation Evaluation `toml:"evaluation"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/notepipe/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		info, err := os.Stat(expanded)
		if err != nil {
			if os.IsNotExist(err) {
				return "", false, fmt.Errorf("config file %s does not exist", expanded)
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		if info.IsDir() {
			return "", false, fmt.Errorf("config path %s is a directory", expanded)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("notepipe.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the log directory and the parent of the runs database.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.LogDir}
	if strings.TrimSpace(c.Paths.RunsDB) != "" {
		dirs = append(dirs, filepath.Dir(c.Paths.RunsDB))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// WindowLength returns the number of values in one window.
func (c *Config) WindowLength() int {
	if c.Dataset.Downsample <= 0 {
		return 0
	}
	return c.Dataset.BlockSize / c.Dataset.Downsample
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
