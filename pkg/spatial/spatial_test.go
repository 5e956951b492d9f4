package spatial

import (
	"errors"
	gomath "math"
	"testing"

	"github.com/Faultbox/glops/pkg/math"
)

func TestPointInTriangleXZ(t *testing.T) {
	triangles := []struct {
		name    string
		a, b, c math.Vec3
	}{
		{"ccw", math.Vec3{X: 0, Z: 0}, math.Vec3{X: 2, Z: 0}, math.Vec3{X: 0, Z: 2}},
		{"cw", math.Vec3{X: 0, Z: 0}, math.Vec3{X: 0, Z: 2}, math.Vec3{X: 2, Z: 0}},
		{"sloped", math.Vec3{X: -1, Y: 3, Z: -1}, math.Vec3{X: 4, Y: -2, Z: 0}, math.Vec3{X: 1, Y: 8, Z: 5}},
		{"thin", math.Vec3{X: 0, Z: 0}, math.Vec3{X: 100, Z: 0.5}, math.Vec3{X: 100, Z: 1}},
	}

	for _, tri := range triangles {
		t.Run(tri.name, func(t *testing.T) {
			centroid := tri.a.Add(tri.b).Add(tri.c).Scale(1.0 / 3.0)
			// Y must not matter.
			centroid.Y = 1e6
			if !PointInTriangleXZ(centroid, tri.a, tri.b, tri.c) {
				t.Errorf("centroid %v should be inside", centroid)
			}
			far := math.Vec3{X: 1e4, Z: -1e4}
			if PointInTriangleXZ(far, tri.a, tri.b, tri.c) {
				t.Errorf("far point %v should be outside", far)
			}
		})
	}
}

func TestPointInTriangleXZDegenerate(t *testing.T) {
	// Collinear in XZ even though Y differs.
	a := math.Vec3{X: 0, Y: 0, Z: 0}
	b := math.Vec3{X: 1, Y: 5, Z: 1}
	c := math.Vec3{X: 2, Y: 9, Z: 2}
	if PointInTriangleXZ(math.Vec3{X: 1, Z: 1}, a, b, c) {
		t.Error("zero-area triangle should contain nothing")
	}
}

func TestPointInTriangleXZEdge(t *testing.T) {
	a := math.Vec3{X: 0, Z: 0}
	b := math.Vec3{X: 2, Z: 0}
	c := math.Vec3{X: 0, Z: 2}
	// Vertices and edge points are not strictly inside.
	for _, p := range []math.Vec3{a, b, c, {X: 1, Z: 0}} {
		if PointInTriangleXZ(p, a, b, c) {
			t.Errorf("boundary point %v should not be inside", p)
		}
	}
}

func TestNearestPointOnSegmentXZ(t *testing.T) {
	b := math.Vec3{X: 0, Y: 4, Z: 0}
	c := math.Vec3{X: 10, Y: -4, Z: 0}

	tests := []struct {
		name   string
		p      math.Vec3
		want   math.Vec3
		distSq float64
	}{
		{"before start", math.Vec3{X: -3, Y: 1, Z: 4}, math.Vec3{X: 0, Y: 1, Z: 0}, 25},
		{"past end", math.Vec3{X: 13, Y: 2, Z: -4}, math.Vec3{X: 10, Y: 2, Z: 0}, 25},
		{"interior", math.Vec3{X: 5, Y: 7, Z: 3}, math.Vec3{X: 5, Y: 7, Z: 0}, 9},
		{"on start", math.Vec3{X: 0, Y: 0, Z: 0}, math.Vec3{X: 0, Y: 0, Z: 0}, 0},
		{"on end", math.Vec3{X: 10, Y: 0, Z: 0}, math.Vec3{X: 10, Y: 0, Z: 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, d := NearestPointOnSegmentXZ(tt.p, b, c)
			if got != tt.want {
				t.Errorf("point = %v, want %v", got, tt.want)
			}
			if gomath.Abs(d-tt.distSq) > 1e-9 {
				t.Errorf("distSq = %v, want %v", d, tt.distSq)
			}
		})
	}
}

func TestNearestPointOnSegmentXZOnSegment(t *testing.T) {
	b := math.Vec3{X: -2, Z: 1}
	c := math.Vec3{X: 6, Z: 5}
	for _, p := range []math.Vec3{{X: 0, Z: 9}, {X: 3, Z: -3}, {X: 1, Z: 3}} {
		q, _ := NearestPointOnSegmentXZ(p, b, c)
		// Collinear with bc and between the endpoints.
		cross := (q.X-b.X)*(c.Z-b.Z) - (q.Z-b.Z)*(c.X-b.X)
		if gomath.Abs(cross) > 1e-9 {
			t.Errorf("NearestPointOnSegmentXZ(%v) = %v is off the segment", p, q)
		}
		if q.X < b.X || q.X > c.X {
			t.Errorf("NearestPointOnSegmentXZ(%v) = %v is outside the endpoints", p, q)
		}
	}
}

func TestNearestPointOnSegmentXZDegenerate(t *testing.T) {
	b := math.Vec3{X: 1, Y: 100, Z: 1}
	p := math.Vec3{X: 4, Y: -1, Z: 5}
	got, d := NearestPointOnSegmentXZ(p, b, b)
	want := math.Vec3{X: 1, Y: -1, Z: 1}
	if got != want {
		t.Errorf("point = %v, want %v", got, want)
	}
	if d != 25 {
		t.Errorf("distSq = %v, want 25", d)
	}
}

func TestHeightFromBarycentricXZ(t *testing.T) {
	tests := []struct {
		name       string
		p1, p2, p3 math.Vec3
		x, z       float64
		want       float64
	}{
		{
			name: "flat",
			p1:   math.Vec3{X: 0, Y: 0, Z: 0},
			p2:   math.Vec3{X: 2, Y: 0, Z: 0},
			p3:   math.Vec3{X: 0, Y: 0, Z: 2},
			x:    1, z: 0.5,
			want: 0,
		},
		{
			name: "raised",
			p1:   math.Vec3{X: 0, Y: 3, Z: 0},
			p2:   math.Vec3{X: 2, Y: 3, Z: 0},
			p3:   math.Vec3{X: 0, Y: 3, Z: 2},
			x:    0.5, z: 0.5,
			want: 3,
		},
		{
			name: "ramp along x",
			p1:   math.Vec3{X: 0, Y: 0, Z: 0},
			p2:   math.Vec3{X: 4, Y: 2, Z: 0},
			p3:   math.Vec3{X: 0, Y: 0, Z: 4},
			x:    2, z: 1,
			want: 1,
		},
		{
			name: "vertex",
			p1:   math.Vec3{X: 0, Y: 1, Z: 0},
			p2:   math.Vec3{X: 4, Y: 2, Z: 0},
			p3:   math.Vec3{X: 0, Y: 5, Z: 4},
			x:    0, z: 4,
			want: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := HeightFromBarycentricXZ(tt.p1, tt.p2, tt.p3, tt.x, tt.z)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if gomath.Abs(got-tt.want) > 1e-12 {
				t.Errorf("height = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHeightFromBarycentricXZDegenerate(t *testing.T) {
	p := math.Vec3{X: 1, Y: 2, Z: 3}
	_, err := HeightFromBarycentricXZ(p, p, math.Vec3{X: 5, Z: 5}, 1, 1)
	if !errors.Is(err, ErrDegenerateTriangle) {
		t.Errorf("error = %v, want ErrDegenerateTriangle", err)
	}
}
