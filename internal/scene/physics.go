package scene

import (
	"go.uber.org/zap"

	"github.com/Faultbox/glops/pkg/spatial"
)

// integrate moves physics-enabled bumpables by their velocity and applies
// gravity. An entity that reaches its floor lands in the same step.
func (s *State) integrate(dt float64) {
	for _, i := range s.Bumpables() {
		o := s.objects[i]
		if o.removed {
			continue
		}
		if !o.hasFloor && s.hasMinY {
			o.SetFloor(s.worldMinY)
		}
		if !o.Physics {
			continue
		}
		if !o.hasFloor {
			o.Transform.Translate = o.Transform.Translate.Add(o.Velocity.Scale(dt))
			continue
		}
		if o.aboveFloor() {
			o.Transform.Translate = o.Transform.Translate.Add(o.Velocity.Scale(dt))
			o.Velocity.Y -= s.opts.Gravity * dt
			if o.aboveFloor() {
				continue
			}
		}
		s.land(i)
	}
}

// land settles o on its floor. A projectile that lands becomes inert: its
// record is kept as the item's thrown form when the entity is an item, and
// the item can be bumped again even if its flight ended in a hit.
func (s *State) land(i int) {
	o := s.objects[i]
	if o.Velocity.Y < -spatial.Epsilon && len(o.BumpSounds) > 0 {
		path := o.BumpSounds[s.rng.Intn(len(o.BumpSounds))]
		if err := s.audio.Play(path); err != nil {
			s.diag.WarnOnce("sound:"+path, "could not play bump sound", zap.String("path", path), zap.Error(err))
		}
	}
	if o.Projectile != nil {
		if o.Item != nil && o.Item.AsProjectile == nil {
			p := *o.Projectile
			o.Item.AsProjectile = &p
		}
		o.Projectile = nil
		o.BumpEnabled = o.Item != nil
	}
	o.Transform.Translate.Y = o.floorY + o.HitRadius
	o.Velocity.X, o.Velocity.Y, o.Velocity.Z = 0, 0, 0
	if o.Item != nil {
		s.release(o)
	}
}
