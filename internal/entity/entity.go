// Package entity defines the gameplay records attached to scene entities:
// items, projectiles, weapons and actors, plus the Ref type used to point
// at an entity safely.
package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Faultbox/glops/pkg/math"
)

// Ref points at a scene entity by slot index. ID is the identity the slot
// had when the reference was taken; a reference whose ID no longer matches
// the slot is stale.
type Ref struct {
	Index int
	ID    uuid.UUID
}

// IsZero reports whether r was never set.
func (r Ref) IsZero() bool {
	return r.ID == uuid.Nil
}

func (r Ref) String() string {
	return fmt.Sprintf("#%d(%s)", r.Index, r.ID.String()[:8])
}

// EmptyName is the name of the empty inventory slot sentinel.
const EmptyName = "Empty"

// Bump commands understood by the scene.
const (
	CommandHide   = "hide"
	CommandObtain = "obtain"
)

// Item is the record carried by an obtainable entity and stored in
// inventory slots.
type Item struct {
	Name string
	// Glop is the entity that represents the item in the world.
	Glop *Ref
	// Owner is set while the item sits in a bumper's inventory.
	Owner     *Ref
	OwnerName string

	BumpCommands []string
	UseCommand   string
	UseSound     string
	Cooldown     time.Duration
	LastUsedAt   time.Time

	// AsProjectile becomes the entity's live projectile when thrown.
	AsProjectile *Projectile
	Weapon       *Weapon
}

// EmptyItem returns the sentinel stored in vacated inventory slots.
func EmptyItem() Item {
	return Item{Name: EmptyName}
}

// IsEmpty reports whether it is the empty sentinel.
func (it *Item) IsEmpty() bool {
	return it.Name == EmptyName && it.Glop == nil
}

// HasCommand reports whether cmd is one of the bump commands.
func (it *Item) HasCommand(cmd string) bool {
	for _, c := range it.BumpCommands {
		if c == cmd {
			return true
		}
	}
	return false
}

// IsThrowable reports whether using the item throws it.
func (it *Item) IsThrowable() bool {
	return strings.HasPrefix(it.UseCommand, "throw_")
}

// TryUse applies the cooldown at time now and reports whether the item may
// be used. The first attempt after obtaining only starts the cooldown.
func (it *Item) TryUse(now time.Time) bool {
	if it.Cooldown <= 0 {
		it.LastUsedAt = now
		return true
	}
	if it.LastUsedAt.IsZero() {
		it.LastUsedAt = now
		return false
	}
	if now.Sub(it.LastUsedAt) < it.Cooldown {
		return false
	}
	it.LastUsedAt = now
	return true
}

// Clone returns a deep copy suitable for attaching a template to another
// entity.
func (it Item) Clone() Item {
	c := it
	c.BumpCommands = append([]string(nil), it.BumpCommands...)
	if it.Glop != nil {
		g := *it.Glop
		c.Glop = &g
	}
	if it.Owner != nil {
		o := *it.Owner
		c.Owner = &o
	}
	if it.AsProjectile != nil {
		p := *it.AsProjectile
		c.AsProjectile = &p
	}
	if it.Weapon != nil {
		w := *it.Weapon
		w.Templates = append([]Ref(nil), it.Weapon.Templates...)
		c.Weapon = &w
	}
	return c
}

// ParseBumpCommands splits a ';'-separated command list.
func ParseBumpCommands(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Projectile is the live record of a thrown or fired entity.
type Projectile struct {
	Name      string
	Owner     Ref
	OwnerName string
	HitDamage float64
}

// Weapon fires copies of its template entities.
type Weapon struct {
	Name      string
	FireType  string
	Speed     float64
	HitDamage float64
	// Templates are hidden entities copied for each shot.
	Templates []Ref
	// Fired counts shots, used to name spawned copies.
	Fired int
}

// Actor drives an autonomous bumper.
type Actor struct {
	// Target is followed every frame. It takes precedence over MoveTo.
	Target *Ref
	// MoveTo is a one-off destination entity, dropped once it is hidden.
	MoveTo    *Ref
	TargetPos *math.Vec3

	WalkUnitsPerSecond float64
	AIEnabled          bool
}
