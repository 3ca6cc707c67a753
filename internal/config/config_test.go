package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if !cfg.Import.DecodeImages {
		t.Error("expected image decoding to be enabled by default")
	}
	if cfg.Import.Workers != 2 {
		t.Errorf("expected 2 workers, got %d", cfg.Import.Workers)
	}
	if len(cfg.Import.ContentDirs) != 0 {
		t.Errorf("expected no content dirs, got %v", cfg.Import.ContentDirs)
	}
	if cfg.Watch.Debounce.Duration != 100*time.Millisecond {
		t.Errorf("expected debounce 100ms, got %v", cfg.Watch.Debounce)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "sceneimport.yaml")

	yamlContent := `
import:
  content_dirs: ["/srv/content", "assets"]
  decode_images: false
  workers: 4

watch:
  debounce: 1s
  drain_interval: 50ms

export:
  buffer_name: "scene.bin"

logging:
  level: "debug"
  log_file: "import.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if len(cfg.Import.ContentDirs) != 2 || cfg.Import.ContentDirs[0] != "/srv/content" {
		t.Errorf("unexpected content dirs %v", cfg.Import.ContentDirs)
	}
	if cfg.Import.DecodeImages {
		t.Error("expected decode_images to be false")
	}
	if cfg.Import.Workers != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.Import.Workers)
	}
	if cfg.Watch.Debounce.Duration != time.Second {
		t.Errorf("expected debounce 1s, got %v", cfg.Watch.Debounce)
	}
	if cfg.Watch.DrainInterval.Duration != 50*time.Millisecond {
		t.Errorf("expected drain interval 50ms, got %v", cfg.Watch.DrainInterval)
	}
	if cfg.Export.BufferName != "scene.bin" {
		t.Errorf("expected buffer name scene.bin, got %s", cfg.Export.BufferName)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "import.log" {
		t.Errorf("expected log file 'import.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromTOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "sceneimport.toml")

	tomlContent := `
[import]
content_dirs = ["/opt/content"]
workers = 8

[watch]
debounce = "1s"

[logging]
level = "warn"
`

	if err := os.WriteFile(configPath, []byte(tomlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if len(cfg.Import.ContentDirs) != 1 || cfg.Import.ContentDirs[0] != "/opt/content" {
		t.Errorf("unexpected content dirs %v", cfg.Import.ContentDirs)
	}
	if cfg.Import.Workers != 8 {
		t.Errorf("expected 8 workers, got %d", cfg.Import.Workers)
	}
	// Keys absent from the file keep their defaults.
	if !cfg.Import.DecodeImages {
		t.Error("expected decode_images to keep its default")
	}
	if cfg.Watch.Debounce.Duration != time.Second {
		t.Errorf("expected debounce 1s, got %v", cfg.Watch.Debounce)
	}
	if cfg.Watch.DrainInterval.Duration != 250*time.Millisecond {
		t.Errorf("expected drain interval to keep its default, got %v", cfg.Watch.DrainInterval)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected log level 'warn', got %s", cfg.Logging.Level)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"invalid.yaml", "import:\n  workers: not a number\n  invalid syntax here\n"},
		{"invalid.toml", "[import\nworkers = = 3\n"},
		{"bad_duration.toml", "[watch]\ndebounce = \"soon\"\n"},
		{"bad_duration.yaml", "watch:\n  debounce: soon\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(tmpDir, tt.name)
			if err := os.WriteFile(configPath, []byte(tt.content), 0644); err != nil {
				t.Fatalf("failed to write test config: %v", err)
			}

			cfg := Default()
			if err := loadFromFile(cfg, configPath); err == nil {
				t.Error("expected error loading invalid config, got nil")
			}
		})
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/sceneimport.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "sceneimport.toml")
	if err := os.WriteFile(configPath, []byte("[import]\nworkers = 1\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find sceneimport.toml in current directory")
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()

	for _, name := range []string{"out/sceneimport.yaml", "out/sceneimport.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(tmpDir, name)

			cfg := Default()
			cfg.Import.ContentDirs = []string{"/data"}
			cfg.Logging.Level = "error"
			cfg.Watch.Debounce = Duration{1500 * time.Millisecond}
			if err := cfg.SaveTo(path); err != nil {
				t.Fatalf("SaveTo: %v", err)
			}

			loaded := Default()
			if err := loadFromFile(loaded, path); err != nil {
				t.Fatalf("reload: %v", err)
			}
			if loaded.Logging.Level != "error" {
				t.Errorf("expected level 'error', got %s", loaded.Logging.Level)
			}
			if len(loaded.Import.ContentDirs) != 1 || loaded.Import.ContentDirs[0] != "/data" {
				t.Errorf("unexpected content dirs %v", loaded.Import.ContentDirs)
			}
			if loaded.Watch.Debounce.Duration != 1500*time.Millisecond {
				t.Errorf("expected debounce 1.5s, got %v", loaded.Watch.Debounce)
			}
			if loaded.Watch.DrainInterval != cfg.Watch.DrainInterval {
				t.Errorf("expected drain interval %v, got %v", cfg.Watch.DrainInterval, loaded.Watch.DrainInterval)
			}
		})
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config)
		teardown func()
	}{
		{
			name: "debug flag",
			setup: func() {
				*flagDebug = true
			},
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() {
				*flagDebug = false
			},
		},
		{
			name: "content dir flag",
			setup: func() {
				*flagContentDir = "/a, /b,,"
			},
			verify: func(cfg *Config) {
				if len(cfg.Import.ContentDirs) != 2 || cfg.Import.ContentDirs[1] != "/b" {
					t.Errorf("expected [/a /b], got %v", cfg.Import.ContentDirs)
				}
			},
			teardown: func() {
				*flagContentDir = ""
			},
		},
		{
			name: "no images flag",
			setup: func() {
				*flagNoImages = true
			},
			verify: func(cfg *Config) {
				if cfg.Import.DecodeImages {
					t.Error("expected image decoding to be disabled")
				}
			},
			teardown: func() {
				*flagNoImages = false
			},
		},
		{
			name: "workers and log file flags",
			setup: func() {
				*flagWorkers = 6
				*flagLogFile = "x.log"
			},
			verify: func(cfg *Config) {
				if cfg.Import.Workers != 6 {
					t.Errorf("expected 6 workers, got %d", cfg.Import.Workers)
				}
				if cfg.Logging.LogFile != "x.log" {
					t.Errorf("expected log file x.log, got %s", cfg.Logging.LogFile)
				}
			},
			teardown: func() {
				*flagWorkers = 0
				*flagLogFile = ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)

			tt.verify(cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "sceneimport.yaml")

	yamlContent := `
import:
  workers: 3
logging:
  level: warn
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWorkers = 9
	defer func() {
		*flagConfig = ""
		*flagWorkers = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Import.Workers != 9 {
		t.Errorf("expected 9 workers from flag, got %d", cfg.Import.Workers)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected level warn from file, got %s", cfg.Logging.Level)
	}
}
