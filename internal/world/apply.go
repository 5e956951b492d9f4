package world

import (
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/exp/slices"

	"github.com/Faultbox/glops/internal/entity"
	"github.com/Faultbox/glops/internal/importer"
	"github.com/Faultbox/glops/internal/logger"
	"github.com/Faultbox/glops/internal/scene"
	"github.com/Faultbox/glops/pkg/math"
)

// Report summarizes what Apply did.
type Report struct {
	// Entities counts imported entities per geometry file.
	Entities   map[string]int
	Walkmeshes int
	// Items and Actors count tagged entities per rule match.
	Items   map[string]int
	Actors  map[string]int
	Sounds  int
	Weapons int
	// Music is the track that was started, if any.
	Music string
	// Missing lists names the level refers to that matched nothing.
	Missing []string
}

func newReport() Report {
	return Report{
		Entities: make(map[string]int),
		Items:    make(map[string]int),
		Actors:   make(map[string]int),
	}
}

// Total returns the number of imported entities.
func (r Report) Total() int {
	n := 0
	for _, c := range r.Entities {
		n += c
	}
	return n
}

// Lines renders the report in a stable order.
func (r Report) Lines() []string {
	var out []string
	for _, k := range sortedKeys(r.Entities) {
		out = append(out, fmt.Sprintf("geometry %s: %d entities", k, r.Entities[k]))
	}
	out = append(out, fmt.Sprintf("walkmeshes: %d", r.Walkmeshes))
	for _, k := range sortedKeys(r.Items) {
		out = append(out, fmt.Sprintf("items %q: %d", k, r.Items[k]))
	}
	for _, k := range sortedKeys(r.Actors) {
		out = append(out, fmt.Sprintf("actors %q: %d", k, r.Actors[k]))
	}
	out = append(out, fmt.Sprintf("bump sounds: %d", r.Sounds))
	out = append(out, fmt.Sprintf("weapons: %d", r.Weapons))
	if r.Music != "" {
		out = append(out, "music "+r.Music)
	}
	for _, m := range r.Missing {
		out = append(out, "missing "+m)
	}
	return out
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Apply imports the level geometry into s and assigns roles. Import
// failures abort; names that match nothing are only reported.
func (l *Level) Apply(s *scene.State, im *importer.Importer, loader importer.Loader) (Report, error) {
	log := logger.Named("world")
	rep := newReport()

	for _, g := range l.Geometry {
		path := l.Resolve(g)
		imps, err := im.Import(loader, path)
		if err != nil {
			return rep, err
		}
		for _, imp := range imps {
			s.AddImported(imp)
		}
		rep.Entities[path] += len(imps)
	}

	walk := make(map[string]bool, len(l.Walkmeshes))
	for _, name := range l.Walkmeshes {
		if !s.UseWalkmesh(name, l.HideWalkmeshes) {
			rep.Missing = append(rep.Missing, "walkmesh "+name)
			continue
		}
		walk[name] = true
		rep.Walkmeshes++
	}
	if l.WorldMinY != nil {
		s.SetWorldBoundary(*l.WorldMinY)
	}

	for _, r := range l.Items {
		tmpl := r.template()
		n := 0
		for _, i := range l.matches(s, r.Match, walk) {
			if err := s.SetAsItem(i, tmpl); err != nil {
				return rep, fmt.Errorf("item rule %q: %w", r.Match, err)
			}
			n++
		}
		rep.Items[r.Match] = n
		if n == 0 {
			rep.Missing = append(rep.Missing, "item "+r.Match)
		}
	}

	for _, r := range l.Actors {
		n := 0
		for _, i := range l.matches(s, r.Match, walk) {
			a := entity.Actor{WalkUnitsPerSecond: r.Speed, AIEnabled: r.AI}
			if r.Follow != "" {
				if t := followIndex(s, r.Follow); t >= 0 {
					ref := s.Ref(t)
					a.Target = &ref
				} else {
					rep.Missing = append(rep.Missing, "follow target "+r.Follow)
				}
			}
			if err := s.SetAsActor(i, a); err != nil {
				return rep, fmt.Errorf("actor rule %q: %w", r.Match, err)
			}
			if r.Weapon != nil {
				if l.giveWeapon(s, i, *r.Weapon, &rep) {
					rep.Weapons++
				}
			}
			n++
		}
		rep.Actors[r.Match] = n
		if n == 0 {
			rep.Missing = append(rep.Missing, "actor "+r.Match)
		}
	}

	for _, w := range l.PlayerWeapons {
		if l.giveWeapon(s, scene.CameraIndex, w, &rep) {
			rep.Weapons++
		}
	}

	for _, r := range l.BumpSounds {
		for _, i := range s.IndicesOfSimilarNames(r.Match, true) {
			for _, p := range r.Paths {
				if err := s.AddBumpSound(i, l.Resolve(p)); err != nil {
					log.Warn("bump sound unavailable", zap.String("path", p), zap.Error(err))
					continue
				}
				rep.Sounds++
			}
		}
	}

	if l.Music != "" {
		path := l.Resolve(l.Music)
		if err := s.PlayMusic(path, !l.MusicOnce); err != nil {
			log.Warn("music unavailable", zap.String("path", path), zap.Error(err))
		} else {
			rep.Music = path
		}
	}

	if l.Spawn != nil {
		_ = s.SetTranslation(scene.CameraIndex, l.Spawn.Vec3())
		_ = s.SetRotation(scene.CameraIndex, math.Vec3{
			X: math.Radians(l.Spawn.Pitch),
			Y: math.Radians(l.Spawn.Yaw),
		})
	}

	log.Info("level applied",
		zap.String("level", l.Name),
		zap.Int("entities", rep.Total()),
		zap.Int("walkmeshes", rep.Walkmeshes),
		zap.Int("missing", len(rep.Missing)))
	return rep, nil
}

// matches returns the entities a rule applies to. The camera and the
// walkmeshes never match.
func (l *Level) matches(s *scene.State, match string, walk map[string]bool) []int {
	var out []int
	for _, i := range s.IndicesOfSimilarNames(match, false) {
		if i == scene.CameraIndex {
			continue
		}
		o, _ := s.Get(i)
		if walk[o.Name] {
			continue
		}
		out = append(out, i)
	}
	return out
}

func (l *Level) giveWeapon(s *scene.State, actor int, r WeaponRule, rep *Report) bool {
	var templates []int
	for _, name := range r.Templates {
		i := s.IndexOf(name)
		if i < 0 {
			rep.Missing = append(rep.Missing, "weapon template "+name)
			continue
		}
		templates = append(templates, i)
	}
	w := entity.Weapon{
		Name:      r.Name,
		FireType:  r.FireType,
		Speed:     r.Speed,
		HitDamage: r.HitDamage,
	}
	if err := s.AddActorWeapon(actor, w, templates); err != nil {
		logger.Named("world").Warn("weapon not given", zap.String("weapon", r.Name), zap.Error(err))
		return false
	}
	return true
}

func followIndex(s *scene.State, name string) int {
	if name == scene.CameraName {
		return scene.CameraIndex
	}
	return s.IndexOf(name)
}

func (r ItemRule) template() entity.Item {
	it := entity.Item{
		Name:       r.Name,
		UseCommand: r.Use,
		UseSound:   r.UseSound,
		Cooldown:   r.Cooldown,
	}
	it.BumpCommands = entity.ParseBumpCommands(r.Bump)
	if r.Bump == "" {
		it.BumpCommands = []string{entity.CommandHide, entity.CommandObtain}
	}
	if r.Projectile != nil {
		it.AsProjectile = &entity.Projectile{
			Name:      r.Projectile.Name,
			HitDamage: r.Projectile.HitDamage,
		}
	}
	return it
}

// Manager owns the current level.
type Manager struct {
	current *Level
	loading bool
}

// NewManager creates a new world manager.
func NewManager() *Manager {
	return &Manager{}
}

// Current returns the current level.
func (m *Manager) Current() *Level {
	return m.current
}

// LoadLevel loads the level at path into s.
func (m *Manager) LoadLevel(path string, s *scene.State, im *importer.Importer, loader importer.Loader) (Report, error) {
	m.loading = true
	defer func() { m.loading = false }()

	l, err := Load(path)
	if err != nil {
		return Report{}, err
	}
	rep, err := l.Apply(s, im, loader)
	if err != nil {
		return rep, fmt.Errorf("loading level %s: %w", path, err)
	}
	m.current = l
	return rep, nil
}

// IsLoading returns whether a level is currently loading.
func (m *Manager) IsLoading() bool {
	return m.loading
}
