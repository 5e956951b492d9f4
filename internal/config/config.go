// Package config handles glops configuration loading and management.
package config

import (
	"github.com/Faultbox/glops/internal/logger"
	"github.com/Faultbox/glops/internal/mesh"
	"github.com/Faultbox/glops/internal/scene"
)

// Config holds all runtime settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Audio   AudioConfig   `yaml:"audio"`
	World   WorldConfig   `yaml:"world"`
	Player  PlayerConfig  `yaml:"player"`
	Mesh    MeshConfig    `yaml:"mesh"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds display and rendering settings.
type WindowConfig struct {
	Title      string  `yaml:"title"`
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	Fullscreen bool    `yaml:"fullscreen"`
	VSync      bool    `yaml:"vsync"`
	FOV        float64 `yaml:"fov"` // vertical, degrees
}

// AudioConfig holds audio settings.
type AudioConfig struct {
	MasterVolume float32 `yaml:"master_volume"`
	MusicVolume  float32 `yaml:"music_volume"`
	SFXVolume    float32 `yaml:"sfx_volume"`
	SampleRate   int     `yaml:"sample_rate"`
	Muted        bool    `yaml:"muted"`
}

// WorldConfig holds simulation settings.
type WorldConfig struct {
	Gravity         float64 `yaml:"gravity"`
	FramesPerSecond int     `yaml:"frames_per_second"`
	ThrowSpeed      float64 `yaml:"throw_speed"`
	Level           string  `yaml:"level"` // level file to load at startup
}

// PlayerConfig holds camera/player settings.
type PlayerConfig struct {
	EyeHeight          float64 `yaml:"eye_height"`
	HitRadius          float64 `yaml:"hit_radius"`
	ReachRadius        float64 `yaml:"reach_radius"`
	WalkUnitsPerSecond float64 `yaml:"walk_units_per_second"`
	MouseSensitivity   float64 `yaml:"mouse_sensitivity"`
	Fly                bool    `yaml:"fly"`
	InfiniteInventory  bool    `yaml:"infinite_inventory"`
}

// MeshConfig declares the vertex format used for imported geometry.
type MeshConfig struct {
	// Attributes lists the vertex attributes in buffer order. Empty means
	// the built-in format.
	Attributes     []mesh.NamedAttribute `yaml:"attributes"`
	DeclaredStride int                   `yaml:"declared_stride"`
	// StrictSchema makes a stride mismatch fatal instead of a warning.
	StrictSchema bool `yaml:"strict_schema"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	LogFile    string `yaml:"log_file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
	Console    bool   `yaml:"console"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	file := logger.DefaultFileConfig("")
	return &Config{
		Window: WindowConfig{
			Title:      "glops",
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			FOV:        60,
		},
		Audio: AudioConfig{
			MasterVolume: 0.8,
			MusicVolume:  0.7,
			SFXVolume:    0.8,
			SampleRate:   44100,
			Muted:        false,
		},
		World: WorldConfig{
			Gravity:         9.8,
			FramesPerSecond: 60,
			ThrowSpeed:      1.0,
		},
		Player: PlayerConfig{
			EyeHeight:          1.7,
			HitRadius:          0.2,
			ReachRadius:        2.5,
			WalkUnitsPerSecond: 3.0,
			MouseSensitivity:   1.0,
			InfiniteInventory:  true,
		},
		Logging: LoggingConfig{
			Level:      "info",
			LogFile:    "",
			MaxSizeMB:  file.MaxSizeMB,
			MaxBackups: file.MaxBackups,
			MaxAgeDays: file.MaxAgeDays,
			Compress:   file.Compress,
			Console:    true,
		},
	}
}

// Schema returns the vertex schema described by the mesh section.
func (m MeshConfig) Schema() (*mesh.Schema, error) {
	if len(m.Attributes) == 0 {
		return mesh.DefaultSchema(), nil
	}
	return mesh.SchemaFromNames(m.Attributes)
}

// LoggerOptions converts the logging section for logger.Init.
func (l LoggingConfig) LoggerOptions() logger.Options {
	return logger.Options{
		Level: l.Level,
		File: logger.FileConfig{
			Path:       l.LogFile,
			MaxSizeMB:  l.MaxSizeMB,
			MaxBackups: l.MaxBackups,
			MaxAgeDays: l.MaxAgeDays,
			Compress:   l.Compress,
		},
		Console: l.Console,
	}
}

// SceneOptions builds the scene options from the world and player
// sections.
func (c *Config) SceneOptions() scene.Options {
	return scene.Options{
		Gravity:            c.World.Gravity,
		ThrowSpeed:         c.World.ThrowSpeed,
		EyeHeight:          c.Player.EyeHeight,
		HitRadius:          c.Player.HitRadius,
		ReachRadius:        c.Player.ReachRadius,
		WalkUnitsPerSecond: c.Player.WalkUnitsPerSecond,
		Fly:                c.Player.Fly,
		InfiniteInventory:  c.Player.InfiniteInventory,
	}
}
