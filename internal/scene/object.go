package scene

import (
	"github.com/google/uuid"

	"github.com/Faultbox/glops/internal/entity"
	"github.com/Faultbox/glops/internal/inventory"
	"github.com/Faultbox/glops/internal/mesh"
	"github.com/Faultbox/glops/pkg/math"
	"github.com/Faultbox/glops/pkg/spatial"
)

// Transform places an entity in the world. Rotate holds radians around
// X (pitch), Y (yaw) and Z.
type Transform struct {
	Translate math.Vec3
	Rotate    math.Vec3
	Scale     math.Vec3
}

// Matrix returns the model matrix for t.
func (t Transform) Matrix() math.Mat4 {
	return math.Model(t.Translate, t.Rotate.X, t.Rotate.Y, t.Rotate.Z, t.Scale)
}

// MotionState classifies an entity for the physics step.
type MotionState int

const (
	// Grounded entities do not take part in physics.
	Grounded MotionState = iota
	// Falling entities are above their floor, or have no floor yet.
	Falling
	// Resting entities are at or below their floor.
	Resting
)

func (m MotionState) String() string {
	switch m {
	case Grounded:
		return "grounded"
	case Falling:
		return "falling"
	case Resting:
		return "resting"
	}
	return "unknown"
}

// Object is one scene entity: a mesh plus its placement and gameplay state.
type Object struct {
	ID   uuid.UUID
	Name string
	// Mesh may be shared between objects spawned from the same template.
	Mesh      *mesh.Entity
	Transform Transform
	Visible   bool

	BumpEnabled bool
	HitRadius   float64
	ReachRadius float64
	EyeHeight   float64

	Physics  bool
	Velocity math.Vec3 // units per second
	floorY   float64
	hasFloor bool

	BumpSounds []string
	LookTarget *entity.Ref

	Item       *entity.Item
	Projectile *entity.Projectile
	Actor      *entity.Actor
	Inventory  *inventory.Inventory

	removed bool
}

// Hitbox returns the mesh hitbox, or nil when there is none.
func (o *Object) Hitbox() *mesh.Hitbox {
	if o.Mesh == nil {
		return nil
	}
	return o.Mesh.Hitbox
}

// SourcePath returns the path the mesh was imported from.
func (o *Object) SourcePath() string {
	if o.Mesh == nil {
		return ""
	}
	return o.Mesh.SourcePath
}

// Floor returns the cached floor height used by physics.
func (o *Object) Floor() (float64, bool) {
	return o.floorY, o.hasFloor
}

// SetFloor overrides the cached floor height.
func (o *Object) SetFloor(y float64) {
	o.floorY = y
	o.hasFloor = true
}

// Removed reports whether the object was removed from the scene.
func (o *Object) Removed() bool {
	return o.removed
}

// Motion returns the physics state of o.
func (o *Object) Motion() MotionState {
	switch {
	case !o.Physics:
		return Grounded
	case !o.hasFloor || o.aboveFloor():
		return Falling
	default:
		return Resting
	}
}

func (o *Object) aboveFloor() bool {
	return o.Transform.Translate.Y-o.HitRadius-spatial.Epsilon > o.floorY
}
