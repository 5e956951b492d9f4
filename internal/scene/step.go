package scene

import (
	gomath "math"

	"go.uber.org/zap"

	"github.com/Faultbox/glops/pkg/math"
)

// Step advances the scene by dt seconds. The phases run in a fixed order:
// look-at, the Update hook, input movement, camera grounding, AI actors,
// bumping and finally physics.
func (s *State) Step(dt float64) {
	if dt < 0 {
		dt = 0
	}
	s.lookAt()
	s.hooks.Update(s, dt)
	s.handleInput(dt)
	s.groundCamera()
	s.runActors(dt)
	s.bump()
	s.integrate(dt)
}

// lookAt turns every entity with a look target toward it.
func (s *State) lookAt() {
	for i, o := range s.objects {
		if o.removed || o.LookTarget == nil {
			continue
		}
		t, err := s.Resolve(*o.LookTarget)
		if err != nil {
			s.diag.WarnOnce("look-target-stale", "look target is gone", zap.Int("index", i), zap.Error(err))
			o.LookTarget = nil
			continue
		}
		p, q := o.Transform.Translate, t.Transform.Translate
		o.Transform.Rotate.X = math.AngleBetweenPoints(p.Y, p.Z, q.Y, q.Z)
		o.Transform.Rotate.Y = math.AngleBetweenXZ(p, q)
	}
}

// pressed reports a key that went down since the previous frame.
func (s *State) pressed(k Key) bool {
	down := s.input.IsPressed(k)
	was := s.held[k]
	s.held[k] = down
	return down && !was
}

func (s *State) handleInput(dt float64) {
	cam := s.Camera()
	var mx, my, mz float64
	if s.input.IsPressed(KeyMoveLeft) {
		mx = 1
	}
	if s.input.IsPressed(KeyMoveRight) {
		mx = -1
	}
	if s.input.IsPressed(KeyMoveForward) {
		if s.opts.Fly {
			mz, my = math.RectFromPolar(1, cam.Transform.Rotate.X)
		} else {
			mz = 1
		}
	}
	if s.input.IsPressed(KeyMoveBackward) {
		if s.opts.Fly {
			mz, my = math.RectFromPolar(1, cam.Transform.Rotate.X)
			mz, my = -mz, -my
		} else {
			mz = -1
		}
	}

	if mx != 0 || my != 0 || mz != 0 {
		step := s.opts.WalkUnitsPerSecond * dt
		theta := math.ThetaFromRect(mx, mz)
		r := math.Clamp(gomath.Hypot(mx, mz), 0, 1)
		heading := cam.Transform.Rotate.Y + theta - gomath.Pi/2
		dx, dz := math.RectFromPolar(step*r, heading)
		cam.Transform.Translate = cam.Transform.Translate.Add(math.Vec3{X: dx, Y: step * my, Z: dz})
	}

	if s.pressed(KeyUse) {
		if err := s.UseSelected(CameraIndex); err != nil {
			s.log.Warn("use failed", zap.Error(err))
		}
	}
	if s.pressed(KeyNextItem) {
		s.selectNext(CameraIndex, true)
	}
	if s.pressed(KeyPrevItem) {
		s.selectNext(CameraIndex, false)
	}
}

func (s *State) selectNext(owner int, forward bool) {
	o := s.objects[owner]
	if o.Inventory == nil {
		return
	}
	ev, err := o.Inventory.SelectNext(forward)
	if err != nil {
		return
	}
	s.hooks.SelectionChanged(s, owner, ev)
}

// groundCamera keeps the camera on the walkmesh at eye height.
func (s *State) groundCamera() {
	cam := s.Camera()
	if y, ok := s.ground(cam, cam.EyeHeight); ok {
		if !s.hasMinY || y < s.worldMinY {
			s.worldMinY = y
			s.hasMinY = true
		}
	}
}

// ground snaps o onto the walkmesh at height above the floor, or pushes it
// back inside when it left the walkmesh. It returns the floor height when
// o was inside.
func (s *State) ground(o *Object, height float64) (float64, bool) {
	if s.walk.Len() == 0 {
		return 0, false
	}
	g := s.walk.Ground(o.Transform.Translate, o.HitRadius)
	if !g.OK {
		return 0, false
	}
	if !g.Inside {
		o.Transform.Translate.X = g.Position.X
		o.Transform.Translate.Z = g.Position.Z
		return 0, false
	}
	o.Transform.Translate.Y = g.FloorY + height
	return g.FloorY, true
}

func (s *State) runActors(dt float64) {
	for _, i := range s.Bumpers() {
		o := s.objects[i]
		if o.removed || o.Actor == nil || !o.Actor.AIEnabled {
			continue
		}
		s.hooks.ProcessAI(s, i)
		if o.removed {
			continue
		}
		a := o.Actor
		switch {
		case a.Target != nil:
			t, err := s.Resolve(*a.Target)
			if err != nil {
				a.Target = nil
				break
			}
			p := t.Transform.Translate
			a.TargetPos = &p
		case a.MoveTo != nil:
			t, err := s.Resolve(*a.MoveTo)
			if err != nil || !t.Visible {
				a.MoveTo = nil
				break
			}
			p := t.Transform.Translate
			a.TargetPos = &p
		}
		if a.TargetPos == nil {
			continue
		}

		src, dst := o.Transform.Translate, *a.TargetPos
		if src.DistanceXZ(dst) <= o.ReachRadius {
			continue
		}
		theta := math.AngleBetweenXZ(src, dst)
		o.Transform.Rotate.Y = theta
		o.Transform.Translate = math.PushedXZ(src, a.WalkUnitsPerSecond*dt, theta)
		s.ground(o, o.HitRadius)
	}
}
