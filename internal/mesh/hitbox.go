package mesh

import (
	"fmt"

	"github.com/Faultbox/glops/pkg/math"
)

// HitboxPadding is the half-extent given to an axis along which every
// vertex has the same coordinate, so a flat or single-point mesh still
// has volume.
const HitboxPadding = 0.25

// Hitbox is an axis-aligned box in local space.
type Hitbox struct {
	Min, Max math.Vec3
}

// Contains reports whether p is inside the box, boundary included.
func (h *Hitbox) Contains(p math.Vec3) bool {
	return p.X >= h.Min.X && p.X <= h.Max.X &&
		p.Y >= h.Min.Y && p.Y <= h.Max.Y &&
		p.Z >= h.Min.Z && p.Z <= h.Max.Z
}

// Size returns the extent of the box on each axis.
func (h *Hitbox) Size() math.Vec3 {
	return h.Max.Sub(h.Min)
}

// Center returns the midpoint of the box.
func (h *Hitbox) Center() math.Vec3 {
	return h.Min.Add(h.Max).Scale(0.5)
}

func (h *Hitbox) String() string {
	return fmt.Sprintf("%g to %g, %g to %g, %g to %g",
		h.Min.X, h.Max.X, h.Min.Y, h.Max.Y, h.Min.Z, h.Max.Z)
}

// pad widens any zero-extent axis by HitboxPadding on both sides.
func (h *Hitbox) pad() {
	if h.Max.X <= h.Min.X {
		h.Min.X -= HitboxPadding
		h.Max.X += HitboxPadding
	}
	if h.Max.Y <= h.Min.Y {
		h.Min.Y -= HitboxPadding
		h.Max.Y += HitboxPadding
	}
	if h.Max.Z <= h.Min.Z {
		h.Min.Z -= HitboxPadding
		h.Max.Z += HitboxPadding
	}
}
