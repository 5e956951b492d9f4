package scene

import (
	gomath "math"

	"go.uber.org/zap"

	"github.com/Faultbox/glops/internal/entity"
	"github.com/Faultbox/glops/internal/inventory"
)

// bump checks every bumpable against every bumper. A pair fires once when
// it comes into range and not again until it has separated.
func (s *State) bump() {
	bumpers := s.Bumpers()
	for _, ai := range s.Bumpables() {
		a := s.objects[ai]
		if a.removed || !a.BumpEnabled {
			continue
		}
		p := a.Transform.Translate
		if !finite(a.HitRadius, p.X, p.Y, p.Z) || a.HitRadius < 0 {
			s.diag.WarnOnce("bump-geometry:"+a.ID.String(), "bumpable has no usable position or hit radius",
				zap.Int("index", ai), zap.String("name", a.Name), zap.Float64("hit_radius", a.HitRadius))
			continue
		}
		for _, bi := range bumpers {
			if bi == ai || !a.BumpEnabled || a.removed {
				continue
			}
			b := s.objects[bi]
			if b.removed || !b.BumpEnabled {
				continue
			}

			reach := b.ReachRadius
			if a.Projectile != nil {
				reach = b.HitRadius
			}
			key := pairKey{bumpable: a.ID, bumper: b.ID}
			if a.Transform.Translate.Distance(b.Transform.Translate) > a.HitRadius+reach {
				delete(s.contact, key)
				continue
			}
			if s.contact[key] || !s.canBump(a, b) {
				continue
			}
			s.contact[key] = true
			s.resolveBump(ai, bi)
		}
	}
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if gomath.IsNaN(v) || gomath.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// canBump applies the contact rules once a pair is in range. The bumpable
// must lie inside the bumper's hitbox when it has one, and a projectile
// never hits its own shooter.
func (s *State) canBump(a, b *Object) bool {
	if a.Projectile != nil && a.Projectile.Owner.ID == b.ID {
		return false
	}
	hb := b.Hitbox()
	if hb == nil {
		return true
	}
	local := a.Transform.Translate.Sub(b.Transform.Translate)
	if !hb.Contains(local) {
		s.diag.DebugOnce("outside-hitbox:"+b.ID.String(), "bumpable in range but outside bumper hitbox",
			zap.String("bumper", b.Name), zap.Stringer("hitbox", hb))
		return false
	}
	return true
}

func (s *State) resolveBump(ai, bi int) {
	a, b := s.objects[ai], s.objects[bi]
	s.log.Debug("bump", zap.String("bumpable", a.Name), zap.String("bumper", b.Name))
	s.hooks.Bumped(s, ai, bi)

	switch {
	case a.Projectile != nil:
		p := a.Projectile
		s.hooks.Attacked(s, bi, p.Owner.Index, p.Name, p.HitDamage)
		a.BumpEnabled = false
	case a.Item != nil:
		for _, cmd := range a.Item.BumpCommands {
			s.runCommand(cmd, ai, bi)
		}
	default:
		s.diag.WarnOnce("bump-not-item:"+a.ID.String(), "bumped entity is not an item", zap.String("name", a.Name))
	}
}

func (s *State) runCommand(cmd string, ai, bi int) {
	switch cmd {
	case entity.CommandHide:
		s.Hide(ai)
		s.objects[ai].BumpEnabled = false
	case entity.CommandObtain:
		s.obtain(ai, bi)
	default:
		s.diag.WarnOnce("unknown-command:"+cmd, "unknown bump command",
			zap.String("command", cmd), zap.String("entity", s.objects[ai].Name))
	}
}

// obtain moves item entity ai into the inventory of bi.
func (s *State) obtain(ai, bi int) {
	a, b := s.objects[ai], s.objects[bi]
	if a.Item == nil {
		s.diag.Warn("obtain on an entity that is not an item", zap.String("name", a.Name))
		return
	}
	s.hooks.Obtained(s, ai, bi)
	if b.Inventory == nil {
		b.Inventory = inventory.New(s.opts.InfiniteInventory)
	}

	owner := s.Ref(bi)
	a.Item.Owner = &owner
	a.Item.OwnerName = b.Name
	ev, slot := b.Inventory.Push(a.Item.Clone())
	if slot < 0 {
		a.Item.Owner = nil
		a.Item.OwnerName = ""
		s.diag.Warn("inventory full", zap.String("owner", b.Name), zap.String("item", a.Name))
	}
	s.hooks.SelectionChanged(s, bi, ev)
}
