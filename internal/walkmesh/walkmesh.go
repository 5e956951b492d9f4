// Package walkmesh answers ground-height and boundary queries over a set
// of walkable meshes.
//
// All queries are linear scans. Meshes are searched in the order they were
// added and triangles in index-buffer order; when walkmeshes overlap, the
// first containing triangle wins.
package walkmesh

import (
	"fmt"
	gomath "math"

	"go.uber.org/zap"

	"github.com/Faultbox/glops/internal/logger"
	"github.com/Faultbox/glops/internal/mesh"
	"github.com/Faultbox/glops/pkg/math"
	"github.com/Faultbox/glops/pkg/spatial"
)

// Triangle identifies one walkmesh triangle and carries its corners.
type Triangle struct {
	Mesh  int
	Index int // triangle number within the mesh
	A     math.Vec3
	B     math.Vec3
	C     math.Vec3
}

// Grounding is the outcome of Ground.
type Grounding struct {
	// Position is the input position when Inside, otherwise the corrected
	// in-bounds position. Y is never changed by Ground.
	Position math.Vec3
	// FloorY is the walkmesh height under Position when Inside.
	FloorY float64
	Inside bool
	// OK is false when the index is empty or holds no usable triangle.
	OK bool
}

// Index is an ordered collection of walkmesh entities.
type Index struct {
	meshes []*mesh.Entity
	log    *zap.Logger
	diag   *logger.Diagnostics
}

// New creates an empty index.
func New(log *zap.Logger, diag *logger.Diagnostics) *Index {
	if log == nil {
		log = zap.NewNop()
	}
	if diag == nil {
		diag = logger.NewDiagnostics(log)
	}
	return &Index{log: log, diag: diag}
}

// Add registers a mesh whose positions are already in world space.
func (w *Index) Add(m *mesh.Entity) {
	w.meshes = append(w.meshes, m)
	w.log.Debug("walkmesh added",
		zap.String("name", m.Name),
		zap.Int("triangles", m.TriangleCount()))
}

// Len returns the number of registered meshes.
func (w *Index) Len() int {
	return len(w.meshes)
}

// Meshes returns the registered meshes in search order.
func (w *Index) Meshes() []*mesh.Entity {
	return w.meshes
}

// triangle fetches a triangle, reporting bad index data once per mesh.
func (w *Index) triangle(mi, ti int) (Triangle, bool) {
	m := w.meshes[mi]
	a, b, c, ok := m.Triangle(ti)
	if !ok {
		w.diag.WarnOnce(fmt.Sprintf("walkmesh-index:%d:%s", mi, m.Name), "walkmesh triangle skipped: bad vertex index",
			zap.String("mesh", m.Name), zap.Int("triangle", ti))
		return Triangle{}, false
	}
	return Triangle{Mesh: mi, Index: ti, A: a, B: b, C: c}, true
}

// Locate returns the first triangle containing p in the XZ plane.
func (w *Index) Locate(p math.Vec3) (Triangle, bool) {
	for mi, m := range w.meshes {
		for ti := 0; ti < m.TriangleCount(); ti++ {
			tri, ok := w.triangle(mi, ti)
			if !ok {
				continue
			}
			if spatial.PointInTriangleXZ(p, tri.A, tri.B, tri.C) {
				return tri, true
			}
		}
	}
	return Triangle{}, false
}

// NearestBoundaryPoint returns the point on any triangle edge closest to p
// in the XZ plane. Y is copied from p.
func (w *Index) NearestBoundaryPoint(p math.Vec3) (math.Vec3, bool) {
	q, _, _, ok := w.nearest(p)
	return q, ok
}

func (w *Index) nearest(p math.Vec3) (math.Vec3, Triangle, float64, bool) {
	var (
		best     math.Vec3
		bestTri  Triangle
		bestDist = gomath.Inf(1)
		found    bool
	)
	for mi, m := range w.meshes {
		for ti := 0; ti < m.TriangleCount(); ti++ {
			tri, ok := w.triangle(mi, ti)
			if !ok {
				continue
			}
			for _, edge := range [3][2]math.Vec3{{tri.A, tri.B}, {tri.B, tri.C}, {tri.C, tri.A}} {
				q, d := spatial.NearestPointOnSegmentXZ(p, edge[0], edge[1])
				if d < bestDist {
					best, bestTri, bestDist, found = q, tri, d, true
				}
			}
		}
	}
	return best, bestTri, bestDist, found
}

// Height returns the height of tri at (x, z).
func (w *Index) Height(tri Triangle, x, z float64) (float64, error) {
	return spatial.HeightFromBarycentricXZ(tri.A, tri.B, tri.C, x, z)
}

// Ground resolves p against the walkmesh. Inside a triangle, FloorY is the
// surface height there. Outside, Position is the nearest edge point moved
// a further pushRadius along the direction from p to that point.
//
// A point lying exactly on an edge counts as inside the triangle owning
// that edge, since there is no direction to push it in.
func (w *Index) Ground(p math.Vec3, pushRadius float64) Grounding {
	if tri, ok := w.Locate(p); ok {
		if g, ok := w.inside(p, tri); ok {
			return g
		}
	}

	q, tri, dist, ok := w.nearest(p)
	if !ok {
		return Grounding{Position: p}
	}
	if dist <= spatial.Epsilon {
		if g, ok := w.inside(p, tri); ok {
			return g
		}
	}
	theta := math.AngleBetweenXZ(p, q)
	return Grounding{Position: math.PushedXZ(q, pushRadius, theta), OK: true}
}

func (w *Index) inside(p math.Vec3, tri Triangle) (Grounding, bool) {
	y, err := w.Height(tri, p.X, p.Z)
	if err != nil {
		w.diag.WarnOnce(fmt.Sprintf("walkmesh-degenerate:%d:%d", tri.Mesh, tri.Index), "walkmesh triangle has no XZ area",
			zap.String("mesh", w.meshes[tri.Mesh].Name), zap.Int("triangle", tri.Index), zap.Error(err))
		return Grounding{}, false
	}
	return Grounding{Position: p, FloorY: y, Inside: true, OK: true}, true
}
