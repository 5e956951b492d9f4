// Package world loads level files and applies them to a scene.
package world

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/glops/pkg/math"
)

// Level describes the contents of a scene: which geometry to import and
// what role each imported entity plays.
type Level struct {
	Name string `yaml:"name"`
	// Geometry files, relative to the level file unless absolute.
	Geometry       []string `yaml:"geometry"`
	Walkmeshes     []string `yaml:"walkmeshes"`
	HideWalkmeshes bool     `yaml:"hide_walkmeshes"`
	// WorldMinY is the fallback floor for entities outside every walkmesh.
	WorldMinY *float64 `yaml:"world_min_y"`
	Spawn     *Spawn   `yaml:"spawn"`

	Items         []ItemRule   `yaml:"items"`
	Actors        []ActorRule  `yaml:"actors"`
	BumpSounds    []SoundRule  `yaml:"bump_sounds"`
	PlayerWeapons []WeaponRule `yaml:"player_weapons"`

	// Music is the background track. It loops unless MusicOnce is set.
	Music     string `yaml:"music"`
	MusicOnce bool   `yaml:"music_once"`

	dir string
}

// Spawn places the camera. Angles are in degrees.
type Spawn struct {
	Position [3]float64 `yaml:"position"`
	Yaw      float64    `yaml:"yaw"`
	Pitch    float64    `yaml:"pitch"`
}

// Vec3 returns the spawn position.
func (s Spawn) Vec3() math.Vec3 {
	return math.Vec3{X: s.Position[0], Y: s.Position[1], Z: s.Position[2]}
}

// ItemRule turns every entity whose name contains Match into an item.
type ItemRule struct {
	Match string `yaml:"match"`
	// Name overrides the entity name shown in inventories.
	Name string `yaml:"name"`
	// Bump is a ';'-separated command list. Empty means "hide; obtain".
	Bump       string          `yaml:"bump"`
	Use        string          `yaml:"use"`
	UseSound   string          `yaml:"use_sound"`
	Cooldown   time.Duration   `yaml:"cooldown"`
	Projectile *ProjectileRule `yaml:"projectile"`
}

// ProjectileRule is the thrown form of an item.
type ProjectileRule struct {
	Name      string  `yaml:"name"`
	HitDamage float64 `yaml:"hit_damage"`
}

// ActorRule turns every entity whose name contains Match into an actor.
type ActorRule struct {
	Match  string  `yaml:"match"`
	Speed  float64 `yaml:"speed"`
	AI     bool    `yaml:"ai"`
	Follow string  `yaml:"follow"` // entity name, or "camera"
	// Weapon is given to each matched actor.
	Weapon *WeaponRule `yaml:"weapon"`
}

// WeaponRule describes a weapon by the names of its template entities.
type WeaponRule struct {
	Name      string   `yaml:"name"`
	FireType  string   `yaml:"fire_type"`
	Speed     float64  `yaml:"speed"`
	HitDamage float64  `yaml:"hit_damage"`
	Templates []string `yaml:"templates"`
}

// SoundRule attaches landing sounds to entities whose name contains Match.
type SoundRule struct {
	Match string   `yaml:"match"`
	Paths []string `yaml:"paths"`
}

// Load reads a level file.
func Load(path string) (*Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading level: %w", err)
	}
	l, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("level %s: %w", path, err)
	}
	l.dir = filepath.Dir(path)
	if l.Name == "" {
		l.Name = filepath.Base(path)
	}
	return l, nil
}

// Parse decodes level YAML. Relative paths resolve against the working
// directory.
func Parse(data []byte) (*Level, error) {
	var l Level
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, err
	}
	if len(l.Geometry) == 0 {
		return nil, fmt.Errorf("no geometry files")
	}
	for i, r := range l.Items {
		if r.Match == "" {
			return nil, fmt.Errorf("items[%d]: empty match", i)
		}
	}
	for i, r := range l.Actors {
		if r.Match == "" {
			return nil, fmt.Errorf("actors[%d]: empty match", i)
		}
	}
	return &l, nil
}

// Resolve returns p relative to the level file's directory.
func (l *Level) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || l.dir == "" {
		return p
	}
	return filepath.Join(l.dir, p)
}
