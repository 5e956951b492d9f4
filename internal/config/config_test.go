package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Window defaults
	if cfg.Window.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Window.Width)
	}
	if cfg.Window.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Window.Height)
	}
	if cfg.Window.Fullscreen {
		t.Error("expected fullscreen to be false by default")
	}
	if !cfg.Window.VSync {
		t.Error("expected vsync to be true by default")
	}

	// Audio defaults
	if cfg.Audio.MasterVolume != 0.8 {
		t.Errorf("expected master volume 0.8, got %f", cfg.Audio.MasterVolume)
	}
	if cfg.Audio.SampleRate != 44100 {
		t.Errorf("expected sample rate 44100, got %d", cfg.Audio.SampleRate)
	}

	// World defaults
	if cfg.World.Gravity != 9.8 {
		t.Errorf("expected gravity 9.8, got %f", cfg.World.Gravity)
	}
	if cfg.World.FramesPerSecond != 60 {
		t.Errorf("expected 60 fps, got %d", cfg.World.FramesPerSecond)
	}

	// Player defaults
	if cfg.Player.EyeHeight != 1.7 {
		t.Errorf("expected eye height 1.7, got %f", cfg.Player.EyeHeight)
	}
	if cfg.Player.Fly {
		t.Error("expected fly to be false by default")
	}
	if !cfg.Player.InfiniteInventory {
		t.Error("expected infinite inventory by default")
	}

	// Logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
window:
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false

audio:
  master_volume: 0.5
  muted: true

world:
  gravity: 4.9
  level: "levels/yard.yaml"

player:
  eye_height: 1.5
  fly: true

mesh:
  attributes:
    - {name: a_position, components: 3}
    - {name: a_normal, components: 3}
    - {name: a_texcoord, components: 2}
  declared_stride: 8
  strict_schema: true

logging:
  level: "debug"
  log_file: "glops.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Window.Width != 1920 {
		t.Errorf("expected width 1920, got %d", cfg.Window.Width)
	}
	if !cfg.Window.Fullscreen {
		t.Error("expected fullscreen to be true")
	}
	if cfg.Window.VSync {
		t.Error("expected vsync to be false")
	}
	if cfg.Audio.MasterVolume != 0.5 {
		t.Errorf("expected master volume 0.5, got %f", cfg.Audio.MasterVolume)
	}
	if !cfg.Audio.Muted {
		t.Error("expected muted to be true")
	}
	if cfg.World.Gravity != 4.9 {
		t.Errorf("expected gravity 4.9, got %f", cfg.World.Gravity)
	}
	if cfg.World.Level != "levels/yard.yaml" {
		t.Errorf("expected level levels/yard.yaml, got %s", cfg.World.Level)
	}
	// Unset keys keep their defaults.
	if cfg.World.FramesPerSecond != 60 {
		t.Errorf("expected 60 fps to survive, got %d", cfg.World.FramesPerSecond)
	}
	if !cfg.Player.Fly {
		t.Error("expected fly to be true")
	}
	if cfg.Logging.LogFile != "glops.log" {
		t.Errorf("expected log file 'glops.log', got %s", cfg.Logging.LogFile)
	}

	s, err := cfg.Mesh.Schema()
	if err != nil {
		t.Fatalf("Schema() error = %v", err)
	}
	if s.Stride() != cfg.Mesh.DeclaredStride {
		t.Errorf("expected stride %d, got %d", cfg.Mesh.DeclaredStride, s.Stride())
	}
	if !cfg.Mesh.StrictSchema {
		t.Error("expected strict schema")
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
window:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestLoadFileRejectsBadMesh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "mesh:\n  attributes:\n    - {name: v_tc0, components: 2}\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("expected unknown attribute name to fail validation")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero fps", func(c *Config) { c.World.FramesPerSecond = 0 }, true},
		{"negative hit radius", func(c *Config) { c.Player.HitRadius = -1 }, true},
		{"negative reach", func(c *Config) { c.Player.ReachRadius = -0.5 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultSchema(t *testing.T) {
	s, err := Default().Mesh.Schema()
	if err != nil {
		t.Fatal(err)
	}
	if s.Stride() != 19 {
		t.Errorf("expected built-in stride 19, got %d", s.Stride())
	}
}

func TestLoggerOptions(t *testing.T) {
	cfg := Default()
	cfg.Logging.LogFile = "/tmp/glops.log"
	cfg.Logging.MaxBackups = 7
	opts := cfg.Logging.LoggerOptions()
	if opts.Level != "info" || !opts.Console {
		t.Errorf("unexpected options %+v", opts)
	}
	if opts.File.Path != "/tmp/glops.log" || opts.File.MaxBackups != 7 {
		t.Errorf("unexpected file options %+v", opts.File)
	}
}

func TestSceneOptions(t *testing.T) {
	cfg := Default()
	cfg.World.Gravity = 3
	cfg.Player.ReachRadius = 4
	cfg.Player.Fly = true
	opts := cfg.SceneOptions()
	if opts.Gravity != 3 {
		t.Errorf("expected gravity 3, got %f", opts.Gravity)
	}
	if opts.ReachRadius != 4 {
		t.Errorf("expected reach 4, got %f", opts.ReachRadius)
	}
	if !opts.Fly {
		t.Error("expected fly to carry over")
	}
	if opts.EyeHeight != cfg.Player.EyeHeight {
		t.Errorf("expected eye height %f, got %f", cfg.Player.EyeHeight, opts.EyeHeight)
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

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("window:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "level flag",
			setup: func() { *flagLevel = "levels/cave.yaml" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.World.Level != "levels/cave.yaml" {
					t.Errorf("expected level levels/cave.yaml, got %s", cfg.World.Level)
				}
			},
			teardown: func() { *flagLevel = "" },
		},
		{
			name:  "fly and mute flags",
			setup: func() { *flagFly, *flagMute = true, true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Player.Fly {
					t.Error("expected fly with fly flag")
				}
				if !cfg.Audio.Muted {
					t.Error("expected muted with mute flag")
				}
			},
			teardown: func() { *flagFly, *flagMute = false, false },
		},
		{
			name:  "strict schema flag",
			setup: func() { *flagStrict = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Mesh.StrictSchema {
					t.Error("expected strict schema with strict-schema flag")
				}
			},
			teardown: func() { *flagStrict = false },
		},
		{
			name:  "fullscreen flag",
			setup: func() { *flagFullscreen = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Window.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() { *flagFullscreen = false },
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Window.Width != 2560 {
					t.Errorf("expected width 2560, got %d", cfg.Window.Width)
				}
				if cfg.Window.Height != 1440 {
					t.Errorf("expected height 1440, got %d", cfg.Window.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
window:
  width: 1600
  height: 900
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Window.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Window.Width)
	}
	if cfg.Window.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Window.Height)
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.World.Level = "levels/yard.yaml"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}
	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if got.World.Level != "levels/yard.yaml" {
		t.Errorf("expected level to round-trip, got %s", got.World.Level)
	}
}

func TestSaveToRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := Default()
	cfg.World.FramesPerSecond = 0
	if err := cfg.SaveTo(path); err == nil {
		t.Fatal("expected error for an invalid config")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("invalid config was written: %v", err)
	}
}
