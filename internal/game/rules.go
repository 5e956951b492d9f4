package game

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/glops/internal/inventory"
	"github.com/Faultbox/glops/internal/scene"
)

// Rule defaults.
const (
	DefaultHealth      = 3.0
	DefaultAttackRange = 12.0
	DefaultFireEvery   = 1500 * time.Millisecond
)

// Rules is the host's gameplay on top of the scene: health, kills, AI
// firing and the selected-item readout.
type Rules struct {
	scene.BaseHooks

	log *zap.Logger
	now func() time.Time

	MaxHealth   float64
	AttackRange float64
	FireEvery   time.Duration
	// OnSelect is told the name of the camera's selected item.
	OnSelect func(name string)

	health   map[uuid.UUID]float64
	lastShot map[uuid.UUID]time.Time
	kills    int
}

// NewRules creates rules using now as the clock. Nil means time.Now.
func NewRules(log *zap.Logger, now func() time.Time) *Rules {
	if log == nil {
		log = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &Rules{
		log:         log,
		now:         now,
		MaxHealth:   DefaultHealth,
		AttackRange: DefaultAttackRange,
		FireEvery:   DefaultFireEvery,
		health:      make(map[uuid.UUID]float64),
		lastShot:    make(map[uuid.UUID]time.Time),
	}
}

// Health returns the health left on entity i.
func (r *Rules) Health(s *scene.State, i int) float64 {
	o, err := s.Get(i)
	if err != nil {
		return 0
	}
	if hp, ok := r.health[o.ID]; ok {
		return hp
	}
	return r.MaxHealth
}

// Kills returns how many entities were killed.
func (r *Rules) Kills() int {
	return r.kills
}

// Attacked subtracts damage and kills the target at zero health. The
// camera only loses health.
func (r *Rules) Attacked(s *scene.State, target, attacker int, weapon string, damage float64) {
	o, err := s.Get(target)
	if err != nil {
		return
	}
	hp := r.Health(s, target) - damage
	r.health[o.ID] = hp
	r.log.Info("attacked",
		zap.String("target", o.Name),
		zap.Int("attacker", attacker),
		zap.String("weapon", weapon),
		zap.Float64("damage", damage),
		zap.Float64("health", hp))
	if hp > 0 || target == scene.CameraIndex {
		return
	}
	if err := s.Kill(target, weapon); err != nil {
		r.log.Warn("kill failed", zap.String("target", o.Name), zap.Error(err))
	}
}

// Killed counts the kill.
func (r *Rules) Killed(s *scene.State, i int, weapon string) {
	r.kills++
	if o, err := s.Get(i); err == nil {
		delete(r.health, o.ID)
		delete(r.lastShot, o.ID)
		r.log.Info("killed", zap.String("entity", o.Name), zap.String("weapon", weapon))
	}
}

// Obtained logs the pickup.
func (r *Rules) Obtained(s *scene.State, item, receiver int) {
	it, err1 := s.Get(item)
	rc, err2 := s.Get(receiver)
	if err1 != nil || err2 != nil {
		return
	}
	r.log.Info("obtained", zap.String("item", it.Name), zap.String("receiver", rc.Name))
}

// SelectionChanged reports the camera's selection through OnSelect.
func (r *Rules) SelectionChanged(s *scene.State, owner int, ev inventory.SelectionEvent) {
	if owner != scene.CameraIndex || r.OnSelect == nil {
		return
	}
	if !ev.Possible {
		r.OnSelect("")
		return
	}
	r.OnSelect(ev.Name)
}

// ProcessAI fires the actor's selected weapon when the camera is in range.
func (r *Rules) ProcessAI(s *scene.State, actor int) {
	o, err := s.Get(actor)
	if err != nil || o.Inventory == nil {
		return
	}
	slot := o.Inventory.SelectedItem()
	if slot == nil || slot.Weapon == nil {
		return
	}
	cam := s.Camera()
	if o.Transform.Translate.Distance(cam.Transform.Translate) > r.AttackRange {
		return
	}
	now := r.now()
	if last, ok := r.lastShot[o.ID]; ok && now.Sub(last) < r.FireEvery {
		return
	}
	r.lastShot[o.ID] = now
	if err := s.UseSelected(actor); err != nil {
		r.log.Warn("actor fire failed", zap.String("actor", o.Name), zap.Error(err))
	}
}
