package scene

import (
	"fmt"
	gomath "math"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/exp/slices"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/Faultbox/glops/internal/entity"
	"github.com/Faultbox/glops/internal/inventory"
	"github.com/Faultbox/glops/pkg/math"
	"github.com/Faultbox/glops/pkg/spatial"
)

// itemFallbackRadius is the hit radius of an item whose mesh has no
// vertices to measure.
const itemFallbackRadius = 0.1

// defaultActorSpeed is used when an actor template leaves its speed unset.
const defaultActorSpeed = 1.0

// SetAsItem makes entity i an obtainable item built from a copy of
// template. Its hit radius becomes the distance from its origin down to
// its lowest vertex, so it rests on the floor after landing. A mesh with
// nothing below its origin gets the fallback radius instead of zero.
func (s *State) SetAsItem(i int, template entity.Item) error {
	o, err := s.Get(i)
	if err != nil {
		return err
	}
	it := template.Clone()
	if it.Name == "" {
		it.Name = o.Name
	}
	ref := s.Ref(i)
	it.Glop = &ref
	o.Item = &it
	o.BumpEnabled = true

	o.HitRadius = itemFallbackRadius
	if o.Mesh != nil {
		if minY, ok := o.Mesh.MinY(); ok {
			if r := gomath.Abs(minY); r > spatial.Epsilon {
				o.HitRadius = r
			} else {
				s.diag.WarnOnce("item-flat-base:"+o.Name, "item has no depth below its origin",
					zap.String("entity", o.Name), zap.Float64("hit_radius", itemFallbackRadius))
			}
		} else {
			s.diag.WarnOnce("item-no-vertices:"+o.Name, "item mesh has no vertices", zap.String("entity", o.Name))
		}
	}

	s.rearm(o)
	if !slices.Contains(s.bumpables, i) {
		s.bumpables = append(s.bumpables, i)
	}
	return nil
}

// SetAsItemByName applies SetAsItem to the first entity called name.
func (s *State) SetAsItemByName(name string, template entity.Item) (int, error) {
	i := s.IndexOf(name)
	if i < 0 {
		return -1, fmt.Errorf("set as item: no entity named %q", name)
	}
	return i, s.SetAsItem(i, template)
}

// SetAsActor makes entity i an autonomous bumper driven by a copy of
// template.
func (s *State) SetAsActor(i int, template entity.Actor) error {
	o, err := s.Get(i)
	if err != nil {
		return err
	}
	a := template
	if template.TargetPos != nil {
		p := *template.TargetPos
		a.TargetPos = &p
	}
	if template.Target != nil {
		r := *template.Target
		a.Target = &r
	}
	if template.MoveTo != nil {
		r := *template.MoveTo
		a.MoveTo = &r
	}
	if a.WalkUnitsPerSecond <= 0 {
		a.WalkUnitsPerSecond = defaultActorSpeed
	}
	o.Actor = &a
	if o.Mesh != nil {
		o.Mesh.RecalculateHitRange()
		o.HitRadius = o.Mesh.HitRadius
	}
	if o.Inventory == nil {
		o.Inventory = inventory.New(s.opts.InfiniteInventory)
	}
	o.BumpEnabled = true
	if !slices.Contains(s.bumpers, i) {
		s.bumpers = append(s.bumpers, i)
	}
	s.log.Debug("entity set as actor", zap.Int("index", i), zap.String("name", o.Name),
		zap.Stringer("hitbox", o.Hitbox()))
	return nil
}

// UseWalkmesh registers the entity called name as walkable ground. Its
// translation is baked into its vertices first, so the walkmesh is queried
// in world space. It reports false when no entity has that name.
func (s *State) UseWalkmesh(name string, hide bool) bool {
	i := s.IndexOf(name)
	if i < 0 {
		return false
	}
	o := s.objects[i]
	if o.Mesh == nil {
		return false
	}
	for _, m := range s.walk.Meshes() {
		if m == o.Mesh {
			return true
		}
	}

	t := o.Transform.Translate
	o.Mesh.ApplyTranslate(t.Scale(-1))
	o.Transform.Translate = math.Vec3{}
	s.render.AddToScene(i)
	s.walk.Add(o.Mesh)
	s.log.Info("walkmesh registered", zap.String("name", name), zap.Int("triangles", o.Mesh.TriangleCount()))
	if hide {
		s.Hide(i)
	}
	return true
}

// AddActorWeapon gives actor a weapon that fires copies of the template
// entities. The templates are hidden and turned to face the camera.
func (s *State) AddActorWeapon(actor int, w entity.Weapon, templates []int) error {
	o, err := s.Get(actor)
	if err != nil {
		return err
	}
	if len(templates) == 0 {
		return fmt.Errorf("weapon %q has no projectile templates", w.Name)
	}
	if w.Name == "" {
		w.Name = "Primary Weapon"
	}
	w.Templates = w.Templates[:0:0]
	camRef := s.Ref(CameraIndex)
	for _, ti := range templates {
		t, err := s.Get(ti)
		if err != nil {
			return fmt.Errorf("weapon %q template: %w", w.Name, err)
		}
		look := camRef
		t.LookTarget = &look
		s.Hide(ti)
		w.Templates = append(w.Templates, s.Ref(ti))
	}

	if o.Inventory == nil {
		o.Inventory = inventory.New(s.opts.InfiniteInventory)
	}
	weapon := w
	ev, slot := o.Inventory.Push(entity.Item{Name: w.Name, Weapon: &weapon})
	if slot < 0 {
		return fmt.Errorf("weapon %q: inventory of %s is full", w.Name, o.Name)
	}
	s.hooks.SelectionChanged(s, actor, ev)
	return nil
}

// IndexOf returns the index of the first live entity called name, or -1.
func (s *State) IndexOf(name string) int {
	for i, o := range s.objects {
		if !o.removed && o.Name == name {
			return i
		}
	}
	return -1
}

// IndicesBySourcePath returns the live entities imported from path.
func (s *State) IndicesBySourcePath(path string) []int {
	var out []int
	if path == "" {
		return out
	}
	for i, o := range s.objects {
		if !o.removed && o.SourcePath() == path {
			out = append(out, i)
		}
	}
	return out
}

// foldName normalizes a name for matching: NFC composed, then case folded.
func foldName(name string) string {
	return cases.Fold().String(norm.NFC.String(name))
}

// IndicesOfSimilarNames returns the live entities whose name contains
// partial, ignoring case. Items already owned by someone are left out
// unless allowOwned is set.
func (s *State) IndicesOfSimilarNames(partial string, allowOwned bool) []int {
	var out []int
	if partial == "" {
		return out
	}
	partial = foldName(partial)
	for i, o := range s.objects {
		if o.removed {
			continue
		}
		if !allowOwned && o.Item != nil && o.Item.Owner != nil {
			continue
		}
		if strings.Contains(foldName(o.Name), partial) {
			out = append(out, i)
		}
	}
	return out
}

// IndexListsBySimilarNames sorts entities into one list per partial name
// plus a final list of the rest. Each entity lands in the first list whose
// partial name it contains.
func (s *State) IndexListsBySimilarNames(partials []string, allowOwned bool) [][]int {
	out := make([][]int, len(partials)+1)
	lower := make([]string, len(partials))
	for i, p := range partials {
		lower[i] = foldName(p)
	}
	for i, o := range s.objects {
		if o.removed || i == CameraIndex {
			continue
		}
		if !allowOwned && o.Item != nil && o.Item.Owner != nil {
			continue
		}
		name := foldName(o.Name)
		slot := len(partials)
		for j, p := range lower {
			if p != "" && strings.Contains(name, p) {
				slot = j
				break
			}
		}
		out[slot] = append(out[slot], i)
	}
	return out
}

// rearm forgets every contact involving o, so it can bump again at once.
func (s *State) rearm(o *Object) {
	for k := range s.contact {
		if k.bumpable == o.ID {
			delete(s.contact, k)
		}
	}
}

// release forgets the contacts of o with bumpers it no longer reaches.
// Separation is only tracked while o can bump.
func (s *State) release(o *Object) {
	for _, bi := range s.bumpers {
		b := s.objects[bi]
		key := pairKey{bumpable: o.ID, bumper: b.ID}
		if !s.contact[key] {
			continue
		}
		if o.Transform.Translate.Distance(b.Transform.Translate) > o.HitRadius+b.ReachRadius {
			delete(s.contact, key)
		}
	}
}

// disarm marks o as touching every bumper, so it only bumps after moving
// out of range first.
func (s *State) disarm(o *Object) {
	for _, bi := range s.bumpers {
		s.contact[pairKey{bumpable: o.ID, bumper: s.objects[bi].ID}] = true
	}
}
