package walkmesh

import (
	gomath "math"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/glops/internal/logger"
	"github.com/Faultbox/glops/internal/mesh"
	"github.com/Faultbox/glops/pkg/math"
)

func newMesh(t *testing.T, name string, positions []math.Vec3, indices ...uint32) *mesh.Entity {
	t.Helper()
	s, err := mesh.NewSchema(mesh.Attribute{Semantic: mesh.Position, Components: 3})
	if err != nil {
		t.Fatal(err)
	}
	e := mesh.NewEntity(name, s)
	for _, p := range positions {
		e.Vertices = append(e.Vertices, p.X, p.Y, p.Z)
	}
	e.Indices = indices
	e.RecalculateHitRange()
	return e
}

// square returns a unit square at height y split along its diagonal.
func square(t *testing.T, name string, y float64) *mesh.Entity {
	return newMesh(t, name, []math.Vec3{
		{X: 0, Y: y, Z: 0},
		{X: 1, Y: y, Z: 0},
		{X: 1, Y: y, Z: 1},
		{X: 0, Y: y, Z: 1},
	}, 0, 1, 2, 0, 2, 3)
}

func near(a, b float64) bool {
	return gomath.Abs(a-b) < 1e-9
}

func TestLocate(t *testing.T) {
	w := New(nil, nil)
	w.Add(square(t, "floor", 0))

	tri, ok := w.Locate(math.Vec3{X: 0.8, Y: 12, Z: 0.1})
	if !ok {
		t.Fatal("Locate() should find a triangle")
	}
	if tri.Mesh != 0 || tri.Index != 0 {
		t.Errorf("Locate() = mesh %d triangle %d, want 0/0", tri.Mesh, tri.Index)
	}
	tri, ok = w.Locate(math.Vec3{X: 0.1, Z: 0.8})
	if !ok || tri.Index != 1 {
		t.Errorf("Locate() = %v %v, want triangle 1", tri.Index, ok)
	}
	if _, ok := w.Locate(math.Vec3{X: 3, Z: 3}); ok {
		t.Error("Locate() outside should fail")
	}
}

func TestLocateFirstRegisteredWins(t *testing.T) {
	w := New(nil, nil)
	w.Add(square(t, "lower", 0))
	w.Add(square(t, "upper", 5))

	tri, ok := w.Locate(math.Vec3{X: 0.8, Z: 0.1})
	if !ok || tri.Mesh != 0 {
		t.Errorf("Locate() = mesh %d, want 0", tri.Mesh)
	}
}

func TestNearestBoundaryPoint(t *testing.T) {
	w := New(nil, nil)
	w.Add(square(t, "floor", 0))

	tests := []struct {
		name string
		p    math.Vec3
		want math.Vec3
	}{
		{"east", math.Vec3{X: 5, Y: 2, Z: 0.5}, math.Vec3{X: 1, Y: 2, Z: 0.5}},
		{"south-west corner", math.Vec3{X: -1, Y: 0, Z: -3}, math.Vec3{X: 0, Y: 0, Z: 0}},
		{"north", math.Vec3{X: 0.25, Y: -1, Z: 4}, math.Vec3{X: 0.25, Y: -1, Z: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := w.NearestBoundaryPoint(tt.p)
			if !ok {
				t.Fatal("NearestBoundaryPoint() found nothing")
			}
			if !near(got.X, tt.want.X) || got.Y != tt.want.Y || !near(got.Z, tt.want.Z) {
				t.Errorf("NearestBoundaryPoint() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNearestBoundaryPointAcrossMeshes(t *testing.T) {
	w := New(nil, nil)
	w.Add(square(t, "near origin", 0))
	far := newMesh(t, "far", []math.Vec3{
		{X: 10, Z: 0}, {X: 11, Z: 0}, {X: 11, Z: 1},
	}, 0, 1, 2)
	w.Add(far)

	got, _ := w.NearestBoundaryPoint(math.Vec3{X: 9, Z: 0.5})
	if !near(got.X, 10) {
		t.Errorf("NearestBoundaryPoint() = %v, want a point on the far mesh", got)
	}
}

func TestGroundInside(t *testing.T) {
	w := New(nil, nil)
	// Ramp rising along X: y = x / 2.
	w.Add(newMesh(t, "ramp", []math.Vec3{
		{X: 0, Y: 0, Z: 0}, {X: 4, Y: 2, Z: 0}, {X: 0, Y: 0, Z: 4},
	}, 0, 1, 2))

	p := math.Vec3{X: 2, Y: 50, Z: 1}
	g := w.Ground(p, 0.2)
	if !g.OK || !g.Inside {
		t.Fatalf("Ground() = %+v, want inside", g)
	}
	if !near(g.FloorY, 1) {
		t.Errorf("FloorY = %v, want 1", g.FloorY)
	}
	if g.Position != p {
		t.Errorf("Position = %v, want unchanged %v", g.Position, p)
	}
}

func TestGroundOutsidePushesIn(t *testing.T) {
	w := New(nil, nil)
	w.Add(square(t, "floor", 0))

	g := w.Ground(math.Vec3{X: 5, Y: 1.7, Z: 0.5}, 0.25)
	if !g.OK || g.Inside {
		t.Fatalf("Ground() = %+v, want corrected outside result", g)
	}
	want := math.Vec3{X: 0.75, Y: 1.7, Z: 0.5}
	if !near(g.Position.X, want.X) || g.Position.Y != want.Y || !near(g.Position.Z, want.Z) {
		t.Errorf("Position = %v, want %v", g.Position, want)
	}
}

func TestGroundOnSharedEdge(t *testing.T) {
	w := New(nil, nil)
	w.Add(square(t, "floor", 3))

	// On the diagonal both triangles reject the point as not strictly inside.
	p := math.Vec3{X: 0.5, Y: 9, Z: 0.5}
	g := w.Ground(p, 0.25)
	if !g.Inside || !near(g.FloorY, 3) {
		t.Errorf("Ground() = %+v, want inside at height 3", g)
	}
	if g.Position != p {
		t.Errorf("Position = %v, want %v", g.Position, p)
	}
}

func TestGroundEmpty(t *testing.T) {
	w := New(nil, nil)
	p := math.Vec3{X: 1, Y: 2, Z: 3}
	if g := w.Ground(p, 1); g.OK || g.Position != p {
		t.Errorf("Ground() on empty index = %+v", g)
	}
}

func TestBadTriangleSkipped(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core)
	w := New(log, logger.NewDiagnostics(log))

	m := square(t, "broken", 0)
	m.Indices = append([]uint32{0, 1, 99}, m.Indices...)
	w.Add(m)

	tri, ok := w.Locate(math.Vec3{X: 0.8, Z: 0.1})
	if !ok || tri.Index != 1 {
		t.Errorf("Locate() = %d %v, want triangle 1", tri.Index, ok)
	}
	w.Locate(math.Vec3{X: 0.8, Z: 0.1})
	if n := logs.FilterMessage("walkmesh triangle skipped: bad vertex index").Len(); n != 1 {
		t.Errorf("bad triangle reported %d times, want 1", n)
	}
}
