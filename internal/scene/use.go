package scene

import (
	"errors"
	"fmt"
	gomath "math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/glops/internal/entity"
	"github.com/Faultbox/glops/pkg/math"
)

// ErrNotItem is returned when an inventory slot points at an entity that
// is not an item.
var ErrNotItem = errors.New("entity is not an item")

// throwLift is added to the user's pitch when throwing.
var throwLift = math.Radians(30)

// UseSelected uses the item under the inventory cursor of user. An item on
// cooldown, or an empty slot, is not an error.
func (s *State) UseSelected(user int) error {
	u, err := s.Get(user)
	if err != nil {
		return err
	}
	if u.Inventory == nil {
		return nil
	}
	slot := u.Inventory.SelectedItem()
	if slot == nil || slot.IsEmpty() {
		return nil
	}

	if slot.Weapon != nil {
		if !slot.TryUse(s.now()) {
			return nil
		}
		s.playUseSound(slot)
		return s.fire(user, slot.Weapon)
	}

	if slot.Glop == nil {
		return fmt.Errorf("use %q: %w", slot.Name, ErrNotItem)
	}
	itemObj, err := s.Resolve(*slot.Glop)
	if err != nil {
		return fmt.Errorf("use %q: %w", slot.Name, err)
	}
	it := itemObj.Item
	if it == nil {
		return fmt.Errorf("use %q: %w", itemObj.Name, ErrNotItem)
	}
	if it.UseCommand == "" {
		s.log.Debug("item has no use", zap.String("item", itemObj.Name))
		return nil
	}
	if !it.TryUse(s.now()) {
		return nil
	}
	s.playUseSound(it)
	s.log.Debug("use", zap.String("command", it.UseCommand), zap.String("item", itemObj.Name))

	if it.IsThrowable() {
		s.throw(user, slot.Glop.Index)
		return nil
	}
	s.diag.WarnOnce("use-command:"+it.UseCommand, "unknown use command",
		zap.String("command", it.UseCommand), zap.String("item", itemObj.Name))
	return nil
}

func (s *State) playUseSound(it *entity.Item) {
	if it.UseSound == "" {
		return
	}
	if err := s.audio.Play(it.UseSound); err != nil {
		s.diag.WarnOnce("sound:"+it.UseSound, "could not play use sound", zap.String("path", it.UseSound), zap.Error(err))
	}
}

// throw launches item entity ii from user along the user's heading, a bit
// above the user's pitch.
func (s *State) throw(user, ii int) {
	u, o := s.objects[user], s.objects[ii]
	it := o.Item
	if it.AsProjectile != nil {
		p := *it.AsProjectile
		p.Owner = s.Ref(user)
		p.OwnerName = u.Name
		o.Projectile = &p
	}
	it.Owner = nil
	it.OwnerName = ""

	pitch := gomath.Min(u.Transform.Rotate.X+throwLift, gomath.Pi/2)
	vy := s.opts.ThrowSpeed * gomath.Sin(pitch)
	vx, vz := math.RectFromPolar(s.opts.ThrowSpeed*gomath.Cos(pitch), u.Transform.Rotate.Y)
	o.Velocity = math.Vec3{X: vx, Y: vy, Z: vz}
	o.Physics = true
	o.BumpEnabled = true
	s.disarm(o)

	if _, ev, ok := u.Inventory.Pop(u.Inventory.Selected()); ok {
		s.hooks.SelectionChanged(s, user, ev)
	}
	o.Transform.Translate = u.Transform.Translate
	s.Show(ii)
}

// fire spawns one projectile per weapon template. Spawned entities share
// the template's mesh and are appended to the scene.
func (s *State) fire(user int, w *entity.Weapon) error {
	u := s.objects[user]
	if w.FireType != "" && w.FireType != "throw_linear" {
		s.diag.WarnOnce("fire-type:"+w.FireType, "fire type not implemented, using throw_linear",
			zap.String("fire_type", w.FireType))
	}
	speed := w.Speed
	if speed <= 0 {
		speed = 1
	}

	fired := 0
	for _, ref := range w.Templates {
		t, err := s.Resolve(ref)
		if err != nil {
			s.diag.WarnOnce("weapon-template:"+ref.String(), "weapon template is gone",
				zap.String("weapon", w.Name), zap.Error(err))
			continue
		}

		vx, vz := math.RectFromPolar(speed, u.Transform.Rotate.Y)
		_, vy := math.RectFromPolar(speed, u.Transform.Rotate.X)
		vel := math.Vec3{X: vx, Y: vy, Z: vz}

		shot := &Object{
			ID:          uuid.New(),
			Name:        fmt.Sprintf("%s.%d", t.Name, w.Fired),
			Mesh:        t.Mesh,
			Transform:   t.Transform,
			Visible:     true,
			BumpEnabled: true,
			HitRadius:   t.HitRadius,
			ReachRadius: t.ReachRadius,
			Physics:     true,
			Velocity:    vel,
			Projectile: &entity.Projectile{
				Name:      w.Name,
				Owner:     s.Ref(user),
				OwnerName: u.Name,
				HitDamage: w.HitDamage,
			},
		}
		if t.LookTarget != nil {
			look := *t.LookTarget
			shot.LookTarget = &look
		}
		// Start outside the shooter's own hit sphere, at chest height.
		muzzle := vel.Normalize().Scale(u.HitRadius + t.HitRadius)
		shot.Transform.Translate = u.Transform.Translate.Add(muzzle)
		shot.Transform.Translate.Y -= u.EyeHeight / 2

		i := s.add(shot)
		s.bumpables = append(s.bumpables, i)
		w.Fired++
		fired++
	}
	if fired == 0 {
		return fmt.Errorf("weapon %q has no usable templates", w.Name)
	}
	return nil
}

// GiveItem hands item entity ii to receiver as if it had been bumped.
// preCommands run first and default to hiding the item; an explicit
// obtain among them is skipped since obtain always runs last.
func (s *State) GiveItem(receiver, ii int, preCommands []string) error {
	if _, err := s.Get(receiver); err != nil {
		return err
	}
	o, err := s.Get(ii)
	if err != nil {
		return err
	}
	if o.Item == nil {
		return fmt.Errorf("give %q: %w", o.Name, ErrNotItem)
	}
	if preCommands == nil {
		preCommands = []string{entity.CommandHide}
	}
	for _, cmd := range preCommands {
		if cmd == entity.CommandObtain {
			s.log.Debug("skipping redundant obtain in give commands", zap.String("item", o.Name))
			continue
		}
		s.runCommand(cmd, ii, receiver)
	}
	s.obtain(ii, receiver)
	return nil
}

// GiveItemByKeyword gives receiver the first item whose name contains
// keyword. It reports whether an item was found.
func (s *State) GiveItemByKeyword(receiver int, keyword string, allowOwned bool) (bool, error) {
	for _, i := range s.IndicesOfSimilarNames(keyword, allowOwned) {
		if s.objects[i].Item == nil {
			continue
		}
		return true, s.GiveItem(receiver, i, nil)
	}
	return false, nil
}

// Kill notifies the Killed hook, then hides and removes entity i.
func (s *State) Kill(i int, weapon string) error {
	o, err := s.Get(i)
	if err != nil {
		return err
	}
	s.hooks.Killed(s, i, weapon)
	s.Hide(i)
	o.BumpEnabled = false
	return s.Remove(i)
}
