package world

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Faultbox/glops/internal/importer"
	"github.com/Faultbox/glops/internal/scene"
	"github.com/Faultbox/glops/pkg/math"
)

const yardGeometry = `
objects:
  - name: ground
    positions: [[-10, 0, -10], [10, 0, -10], [10, 0, 10], [-10, 0, 10]]
    faces: [[0, 1, 2, 3]]
  - name: apple_1
    positions: [[2, 0, 2], [3, 0, 2], [2.5, 1, 2]]
    faces: [[0, 1, 2]]
  - name: apple_2
    positions: [[4, 0, 2], [5, 0, 2], [4.5, 1, 2]]
    faces: [[0, 1, 2]]
  - name: guard
    positions: [[0, 0, 5], [1, 0, 5], [1, 2, 5], [0, 2, 5]]
    faces: [[0, 1, 2, 3]]
  - name: bolt
    positions: [[0, 0, 0], [0.1, 0, 0], [0, 0.1, 0]]
    faces: [[0, 1, 2]]
`

const yardLevel = `
name: yard
geometry: [geometry/yard.yaml]
walkmeshes: [ground, cellar]
hide_walkmeshes: true
world_min_y: -50
spawn:
  position: [0, 3, 0]
  yaw: 90
items:
  - match: apple
    use: throw_arc
    cooldown: 500ms
    projectile: {name: Apple, hit_damage: 2}
  - match: pear
actors:
  - match: guard
    speed: 2
    ai: true
    follow: camera
    weapon: {name: Blaster, speed: 4, hit_damage: 1, templates: [bolt]}
bump_sounds:
  - match: apple
    paths: [sounds/thud.wav]
player_weapons:
  - name: Sling
    templates: [bolt, missing_bolt]
`

func writeLevel(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "geometry"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "geometry", "yard.yaml"), []byte(yardGeometry), 0644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "yard.yaml")
	if err := os.WriteFile(path, []byte(yardLevel), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeLevel(t)
	l, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if l.Name != "yard" {
		t.Errorf("Name = %q, want yard", l.Name)
	}
	want := filepath.Join(filepath.Dir(path), "geometry", "yard.yaml")
	if got := l.Resolve(l.Geometry[0]); got != want {
		t.Errorf("Resolve() = %q, want %q", got, want)
	}
	if l.Items[0].Cooldown != 500*time.Millisecond {
		t.Errorf("Cooldown = %v, want 500ms", l.Items[0].Cooldown)
	}
	if l.WorldMinY == nil || *l.WorldMinY != -50 {
		t.Errorf("WorldMinY = %v, want -50", l.WorldMinY)
	}
	if abs := "/abs/file.yaml"; l.Resolve(abs) != abs {
		t.Errorf("absolute paths should not be rewritten")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"no geometry", "name: empty"},
		{"item without match", "geometry: [a.yaml]\nitems: [{use: throw_arc}]"},
		{"actor without match", "geometry: [a.yaml]\nactors: [{speed: 1}]"},
		{"not yaml", "geometry: [unclosed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.doc)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing level")
	}
}

func newScene(t *testing.T) (*scene.State, *importer.Importer) {
	t.Helper()
	im, err := importer.New(importer.Options{}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	return scene.New(scene.DefaultOptions(), scene.Deps{}), im
}

func TestApply(t *testing.T) {
	path := writeLevel(t)
	s, im := newScene(t)

	m := NewManager()
	rep, err := m.LoadLevel(path, s, im, importer.YAMLLoader{})
	if err != nil {
		t.Fatalf("LoadLevel() error = %v", err)
	}
	if m.Current() == nil || m.IsLoading() {
		t.Fatal("manager should hold the loaded level")
	}

	if rep.Total() != 5 {
		t.Errorf("Total() = %d, want 5", rep.Total())
	}
	if rep.Walkmeshes != 1 || len(s.Walkmesh().Meshes()) != 1 {
		t.Errorf("walkmeshes = %d, want 1", rep.Walkmeshes)
	}
	if g, _ := s.Get(s.IndexOf("ground")); g.Visible {
		t.Error("walkmesh should be hidden")
	}
	if minY, ok := s.WorldBoundary(); !ok || minY != -50 {
		t.Errorf("WorldBoundary() = %v, %v", minY, ok)
	}

	if rep.Items["apple"] != 2 {
		t.Errorf("apple items = %d, want 2", rep.Items["apple"])
	}
	apple, _ := s.Get(s.IndexOf("apple_1"))
	if apple.Item == nil {
		t.Fatal("apple_1 should be an item")
	}
	if got := strings.Join(apple.Item.BumpCommands, ";"); got != "hide;obtain" {
		t.Errorf("BumpCommands = %q, want hide;obtain", got)
	}
	if apple.Item.AsProjectile == nil || apple.Item.AsProjectile.HitDamage != 2 {
		t.Errorf("AsProjectile = %+v", apple.Item.AsProjectile)
	}
	if len(apple.BumpSounds) != 1 {
		t.Errorf("apple bump sounds = %v", apple.BumpSounds)
	}

	guard, _ := s.Get(s.IndexOf("guard"))
	if guard.Actor == nil || !guard.Actor.AIEnabled || guard.Actor.WalkUnitsPerSecond != 2 {
		t.Fatalf("guard actor = %+v", guard.Actor)
	}
	if guard.Actor.Target == nil || guard.Actor.Target.Index != scene.CameraIndex {
		t.Errorf("guard should follow the camera, got %+v", guard.Actor.Target)
	}
	if !guard.Inventory.Has("Blaster") {
		t.Error("guard should carry the Blaster")
	}
	if !s.Camera().Inventory.Has("Sling") {
		t.Error("camera should carry the Sling")
	}
	if rep.Weapons != 2 {
		t.Errorf("Weapons = %d, want 2", rep.Weapons)
	}

	cam := s.Camera()
	if cam.Transform.Translate != (math.Vec3{X: 0, Y: 3, Z: 0}) {
		t.Errorf("camera at %v, want (0, 3, 0)", cam.Transform.Translate)
	}
	if d := cam.Transform.Rotate.Y - math.Radians(90); d > 1e-12 || d < -1e-12 {
		t.Errorf("camera yaw = %v", cam.Transform.Rotate.Y)
	}

	for _, want := range []string{"walkmesh cellar", "item pear", "weapon template missing_bolt"} {
		found := false
		for _, m := range rep.Missing {
			if m == want {
				found = true
			}
		}
		if !found {
			t.Errorf("Missing = %v, want %q", rep.Missing, want)
		}
	}
}

func TestApplyImportFailure(t *testing.T) {
	l, err := Parse([]byte("geometry: [does/not/exist.yaml]"))
	if err != nil {
		t.Fatal(err)
	}
	s, im := newScene(t)
	if _, err := l.Apply(s, im, importer.YAMLLoader{}); err == nil {
		t.Error("expected import error")
	}
}

func TestReportLinesSorted(t *testing.T) {
	rep := newReport()
	rep.Entities["b.yaml"] = 1
	rep.Entities["a.yaml"] = 2
	rep.Items["zeta"] = 1
	rep.Items["alpha"] = 3
	lines := rep.Lines()
	if lines[0] != "geometry a.yaml: 2 entities" || lines[1] != "geometry b.yaml: 1 entities" {
		t.Errorf("geometry lines not sorted: %v", lines[:2])
	}
	if lines[3] != `items "alpha": 3` {
		t.Errorf("item lines not sorted: %v", lines)
	}
}

type musicAudio struct {
	track string
	loop  bool
	fail  bool
}

func (a *musicAudio) Play(string) error    { return nil }
func (a *musicAudio) Preload(string) error { return nil }

func (a *musicAudio) PlayMusic(path string, loop bool) error {
	if a.fail {
		return errors.New("no device")
	}
	a.track, a.loop = path, loop
	return nil
}

func TestApplyStartsMusic(t *testing.T) {
	tests := []struct {
		name     string
		extra    string
		fail     bool
		wantLoop bool
		wantRep  bool
	}{
		{"loops by default", "music: music/theme.ogg\n", false, true, true},
		{"plays once", "music: music/theme.ogg\nmusic_once: true\n", false, false, true},
		{"device failure", "music: music/theme.ogg\n", true, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeLevel(t)
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(path, append(data, tt.extra...), 0644); err != nil {
				t.Fatal(err)
			}
			l, err := Load(path)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}

			a := &musicAudio{fail: tt.fail}
			im, err := importer.New(importer.Options{}, nil, nil)
			if err != nil {
				t.Fatal(err)
			}
			s := scene.New(scene.DefaultOptions(), scene.Deps{Audio: a})
			rep, err := l.Apply(s, im, importer.YAMLLoader{})
			if err != nil {
				t.Fatalf("Apply() error = %v", err)
			}

			want := filepath.Join(filepath.Dir(path), "music", "theme.ogg")
			if !tt.wantRep {
				if rep.Music != "" {
					t.Errorf("Report.Music = %q, want empty", rep.Music)
				}
				return
			}
			if a.track != want || a.loop != tt.wantLoop {
				t.Errorf("PlayMusic(%q, %v), want (%q, %v)", a.track, a.loop, want, tt.wantLoop)
			}
			if rep.Music != want {
				t.Errorf("Report.Music = %q, want %q", rep.Music, want)
			}
		})
	}
}

func TestApplyWithoutMusic(t *testing.T) {
	l, err := Load(writeLevel(t))
	if err != nil {
		t.Fatal(err)
	}
	a := &musicAudio{}
	im, err := importer.New(importer.Options{}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	s := scene.New(scene.DefaultOptions(), scene.Deps{Audio: a})
	if _, err := l.Apply(s, im, importer.YAMLLoader{}); err != nil {
		t.Fatal(err)
	}
	if a.track != "" {
		t.Errorf("music started without a track: %q", a.track)
	}
}
