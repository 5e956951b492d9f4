// Package spatial implements geometric queries projected onto the XZ plane.
//
// The vertical axis is Y. Every query ignores the Y component of its inputs
// except where noted, which lets walkmesh code treat ground geometry as a 2D
// floor plan with heights attached.
package spatial

import (
	"errors"

	"github.com/Faultbox/glops/pkg/math"
)

// Epsilon is the tolerance used by every query in this package.
const Epsilon = 1e-14

// ErrDegenerateTriangle is returned when a triangle has no XZ area.
var ErrDegenerateTriangle = errors.New("spatial: degenerate triangle in XZ plane")

// PointInTriangleXZ reports whether p lies strictly inside triangle abc
// when projected onto the XZ plane. Either winding is accepted. A triangle
// with no projected area contains nothing.
func PointInTriangleXZ(p, a, b, c math.Vec3) bool {
	area := 0.5 * (-b.Z*c.X + a.Z*(-b.X+c.X) + a.X*(b.Z-c.Z) + b.X*c.Z)
	if area <= Epsilon && area >= -Epsilon {
		return false
	}
	inv := 1 / (2 * area)
	s := inv * (a.Z*c.X - a.X*c.Z + (c.Z-a.Z)*p.X + (a.X-c.X)*p.Z)
	t := inv * (a.X*b.Z - a.Z*b.X + (a.Z-b.Z)*p.X + (b.X-a.X)*p.Z)
	return s > Epsilon && t > Epsilon && 1-s-t > Epsilon
}

// NearestPointOnSegmentXZ projects p onto segment bc in the XZ plane and
// returns the closest point with the squared XZ distance to it. The Y of
// the result is always p.Y.
func NearestPointOnSegmentXZ(p, b, c math.Vec3) (math.Vec3, float64) {
	dx := c.X - b.X
	dz := c.Z - b.Z
	px := p.X - b.X
	pz := p.Z - b.Z
	segLenSq := dx*dx + dz*dz
	if segLenSq <= Epsilon && segLenSq >= -Epsilon {
		return math.Vec3{X: b.X, Y: p.Y, Z: b.Z}, px*px + pz*pz
	}

	t := (px*dx + pz*dz) / segLenSq
	var q math.Vec3
	switch {
	case t < Epsilon:
		q = math.Vec3{X: b.X, Y: p.Y, Z: b.Z}
	case t > 1-Epsilon:
		q = math.Vec3{X: c.X, Y: p.Y, Z: c.Z}
	default:
		q = math.Vec3{X: b.X + t*dx, Y: p.Y, Z: b.Z + t*dz}
	}
	ex := p.X - q.X
	ez := p.Z - q.Z
	return q, ex*ex + ez*ez
}

// HeightFromBarycentricXZ returns the Y of the plane through p1, p2, p3 at
// (x, z). It returns ErrDegenerateTriangle when the projected triangle has
// a zero determinant.
func HeightFromBarycentricXZ(p1, p2, p3 math.Vec3, x, z float64) (float64, error) {
	det := (p2.Z-p3.Z)*(p1.X-p3.X) + (p3.X-p2.X)*(p1.Z-p3.Z)
	if det == 0 {
		return 0, ErrDegenerateTriangle
	}
	l1 := ((p2.Z-p3.Z)*(x-p3.X) + (p3.X-p2.X)*(z-p3.Z)) / det
	l2 := ((p3.Z-p1.Z)*(x-p3.X) + (p1.X-p3.X)*(z-p3.Z)) / det
	l3 := 1.0 - l1 - l2
	return l1*p1.Y + l2*p2.Y + l3*p3.Y, nil
}
