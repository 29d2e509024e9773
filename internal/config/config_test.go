package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"notepipe/internal/config"
)

func TestLoadDefaultConfigWhenMissing(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("NOTEPIPE_LOG_LEVEL", "")
	t.Chdir(t.TempDir())

	cfg, path, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatalf("expected exists=false when no config file present")
	}
	expectedPath := filepath.Join(tempHome, ".config", "notepipe", "config.toml")
	if path != expectedPath {
		t.Fatalf("unexpected config path: got %q want %q", path, expectedPath)
	}
	if cfg.Dataset.SampleRate != 44100 {
		t.Fatalf("unexpected sample rate: %d", cfg.Dataset.SampleRate)
	}
	if cfg.Dataset.Subsample != 8 || cfg.Dataset.BlockSize != 512 || cfg.Dataset.Downsample != 4 {
		t.Fatalf("unexpected window defaults: %+v", cfg.Dataset)
	}
	if cfg.Dataset.Seed != 2 || cfg.Dataset.TestRatio != 0.1 {
		t.Fatalf("unexpected split defaults: seed=%d ratio=%v", cfg.Dataset.Seed, cfg.Dataset.TestRatio)
	}
	if cfg.WindowLength() != 128 {
		t.Fatalf("expected window length 128, got %d", cfg.WindowLength())
	}
	if !cfg.Cache.Enabled || cfg.Cache.Validation != config.ValidationContent {
		t.Fatalf("unexpected cache defaults: %+v", cfg.Cache)
	}
	expectedLogDir := filepath.Join(tempHome, ".local", "share", "notepipe", "logs")
	if cfg.Paths.LogDir != expectedLogDir {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, expectedLogDir)
	}
}

func TestLoadCustomConfig(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("NOTEPIPE_LOG_LEVEL", "")

	configPath := filepath.Join(t.TempDir(), "custom.toml")
	content := `
[paths]
log_dir = "~/logs"

[dataset]
subsample = 4
block_size = 256
downsample = 2
seed = 7
test_ratio = 0.25
workers = 3
decode_errors = "ABORT"
extension = "WAV"

[cache]
validation = "Path"

[combiner]
left_epsilon = 0.1
right_epsilon = 0.2
only_positive = true
negative_label = 5

[evaluation]
metrics = ["Exact_Match", "exact_match", " edit_similarity "]

[logging]
format = "JSON"
level = "Debug"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolvedPath, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists=true for custom config")
	}
	if resolvedPath != configPath {
		t.Fatalf("unexpected resolved path: %q", resolvedPath)
	}
	if cfg.Paths.LogDir != filepath.Join(tempHome, "logs") {
		t.Fatalf("unexpected log dir: %q", cfg.Paths.LogDir)
	}
	if cfg.Dataset.DecodeErrors != config.DecodeErrorsAbort {
		t.Fatalf("expected decode_errors to normalize to abort, got %q", cfg.Dataset.DecodeErrors)
	}
	if cfg.Dataset.Extension != ".wav" {
		t.Fatalf("expected extension .wav, got %q", cfg.Dataset.Extension)
	}
	if cfg.Dataset.Workers != 3 || cfg.WindowLength() != 128 {
		t.Fatalf("unexpected dataset settings: %+v", cfg.Dataset)
	}
	if cfg.Cache.Validation != config.ValidationPath {
		t.Fatalf("expected path validation, got %q", cfg.Cache.Validation)
	}
	if !cfg.Combiner.OnlyPositive || cfg.Combiner.NegativeLabel != 5 || cfg.Combiner.RightEpsilon != 0.2 {
		t.Fatalf("unexpected combiner settings: %+v", cfg.Combiner)
	}
	if strings.Join(cfg.Evaluation.Metrics, ",") != "exact_match,edit_similarity" {
		t.Fatalf("unexpected metrics: %v", cfg.Evaluation.Metrics)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging: %+v", cfg.Logging)
	}
}

func TestLoadProjectConfigFromWorkingDirectory(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("NOTEPIPE_LOG_LEVEL", "")
	dir := t.TempDir()
	t.Chdir(dir)

	if err := os.WriteFile("notepipe.toml", []byte("[dataset]\nseed = 11\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, path, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || filepath.Base(path) != "notepipe.toml" {
		t.Fatalf("expected project config to be used, got %q exists=%v", path, exists)
	}
	if cfg.Dataset.Seed != 11 {
		t.Fatalf("expected seed 11, got %d", cfg.Dataset.Seed)
	}
}

func TestEnvOverridesLogLevel(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("NOTEPIPE_LOG_LEVEL", "WARN")
	t.Chdir(t.TempDir())

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Logging.Level != "warn" {
		t.Fatalf("expected env level warn, got %q", cfg.Logging.Level)
	}
}

func TestLoadMissingExplicitPath(t *testing.T) {
	_, _, _, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Fatalf("expected missing file error, got %v", err)
	}
}

func TestValidateRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"zero subsample", func(c *config.Config) { c.Dataset.Subsample = 0 }, "dataset.subsample"},
		{"negative block", func(c *config.Config) { c.Dataset.BlockSize = -1 }, "dataset.block_size"},
		{"block not multiple", func(c *config.Config) { c.Dataset.BlockSize = 510 }, "multiple"},
		{"ratio one", func(c *config.Config) { c.Dataset.TestRatio = 1 }, "test_ratio"},
		{"ratio zero", func(c *config.Config) { c.Dataset.TestRatio = 0 }, "test_ratio"},
		{"decode policy", func(c *config.Config) { c.Dataset.DecodeErrors = "ignore" }, "decode_errors"},
		{"cache validation", func(c *config.Config) { c.Cache.Validation = "mtime" }, "cache.validation"},
		{"extension", func(c *config.Config) { c.Dataset.Extension = ".flac" }, "dataset.extension"},
		{"cache filename", func(c *config.Config) { c.Cache.Filename = "a/b" }, "cache.filename"},
		{"left epsilon", func(c *config.Config) { c.Combiner.LeftEpsilon = -0.1 }, "left_epsilon"},
		{"right epsilon", func(c *config.Config) { c.Combiner.RightEpsilon = -0.1 }, "right_epsilon"},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestCreateSampleLoads(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("NOTEPIPE_LOG_LEVEL", "")
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config failed to load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	defaults := config.Default()
	if cfg.Dataset.BlockSize != defaults.Dataset.BlockSize || cfg.Combiner.LeftEpsilon != defaults.Combiner.LeftEpsilon {
		t.Fatalf("sample config diverges from defaults: %+v", cfg)
	}
}
