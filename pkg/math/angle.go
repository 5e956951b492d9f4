package math

import "math"

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

// AngleTrunc wraps an angle into [0, 2π).
func AngleTrunc(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// ThetaFromRect returns the polar angle of (x, y), wrapped into [0, 2π).
func ThetaFromRect(x, y float64) float64 {
	return AngleTrunc(math.Atan2(y, x))
}

// RectFromPolar converts a radius and angle to rectangular coordinates.
func RectFromPolar(r, theta float64) (x, y float64) {
	return r * math.Cos(theta), r * math.Sin(theta)
}

// AngleBetweenPoints returns the angle of the vector from (x0, y0) to (x1, y1).
func AngleBetweenPoints(x0, y0, x1, y1 float64) float64 {
	return ThetaFromRect(x1-x0, y1-y0)
}

// AngleBetweenXZ returns the XZ-plane angle of the vector from a to b.
func AngleBetweenXZ(a, b Vec3) float64 {
	return AngleBetweenPoints(a.X, a.Z, b.X, b.Z)
}

// PushedXZ moves p by r along theta in the XZ plane, keeping Y.
func PushedXZ(p Vec3, r, theta float64) Vec3 {
	dx, dz := RectFromPolar(r, theta)
	return Vec3{p.X + dx, p.Y, p.Z + dz}
}
