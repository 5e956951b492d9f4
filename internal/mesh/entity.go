package mesh

import (
	"fmt"
	gomath "math"

	"github.com/Faultbox/glops/pkg/math"
)

// DefaultHitRadius is the hit radius of an entity without vertices.
const DefaultHitRadius = 0.1524

// Entity is a mesh held in a flat interleaved vertex buffer plus a flat
// triangle index list. Vertex positions are in local space.
type Entity struct {
	Name       string
	SourcePath string

	Vertices []float64
	Indices  []uint32
	Schema   *Schema
	Material Material

	// Pivot is the local-space point treated as the entity's origin.
	Pivot     math.Vec3
	HitRadius float64
	// Hitbox is nil when the entity has no vertices.
	Hitbox *Hitbox
}

// NewEntity creates an empty entity using schema.
func NewEntity(name string, schema *Schema) *Entity {
	return &Entity{
		Name:      name,
		Schema:    schema,
		Material:  DefaultMaterial(),
		HitRadius: DefaultHitRadius,
	}
}

// VertexCount returns the number of whole vertices in the buffer.
func (e *Entity) VertexCount() int {
	if e.Schema == nil || e.Schema.Stride() == 0 {
		return 0
	}
	return len(e.Vertices) / e.Schema.Stride()
}

// TriangleCount returns the number of whole triangles in the index list.
func (e *Entity) TriangleCount() int {
	return len(e.Indices) / 3
}

// Validate checks buffer lengths against the schema.
func (e *Entity) Validate() error {
	if e.Schema == nil {
		return fmt.Errorf("mesh %q: no vertex schema", e.Name)
	}
	if _, ok := e.Schema.Offset(Position); !ok {
		return &SchemaError{Semantic: Position, Reason: "required attribute missing"}
	}
	if stride := e.Schema.Stride(); len(e.Vertices)%stride != 0 {
		return fmt.Errorf("mesh %q: vertex buffer length %d is not a multiple of stride %d", e.Name, len(e.Vertices), stride)
	}
	if len(e.Indices)%3 != 0 {
		return fmt.Errorf("mesh %q: index count %d is not a multiple of 3", e.Name, len(e.Indices))
	}
	n := uint32(e.VertexCount())
	for i, idx := range e.Indices {
		if idx >= n {
			return fmt.Errorf("mesh %q: index %d at %d is out of range (%d vertices)", e.Name, idx, i, n)
		}
	}
	return nil
}

func (e *Entity) positionOffset() int {
	off, _ := e.Schema.Offset(Position)
	return off
}

// Position returns the XYZ position of vertex i.
func (e *Entity) Position(i int) math.Vec3 {
	base := i*e.Schema.Stride() + e.positionOffset()
	return math.Vec3{X: e.Vertices[base], Y: e.Vertices[base+1], Z: e.Vertices[base+2]}
}

// SetPosition overwrites the XYZ position of vertex i.
func (e *Entity) SetPosition(i int, p math.Vec3) {
	base := i*e.Schema.Stride() + e.positionOffset()
	e.Vertices[base] = p.X
	e.Vertices[base+1] = p.Y
	e.Vertices[base+2] = p.Z
}

// MinY returns the lowest local-space vertex Y. It reports false when the
// entity has no vertices.
func (e *Entity) MinY() (float64, bool) {
	n := e.VertexCount()
	if n == 0 {
		return 0, false
	}
	minY := e.Position(0).Y
	for i := 1; i < n; i++ {
		if y := e.Position(i).Y; y < minY {
			minY = y
		}
	}
	return minY, true
}

// Triangle returns the positions of triangle t. It reports false when the
// triangle references a vertex outside the buffer.
func (e *Entity) Triangle(t int) (a, b, c math.Vec3, ok bool) {
	if t < 0 || t*3+2 >= len(e.Indices) {
		return a, b, c, false
	}
	n := uint32(e.VertexCount())
	i0, i1, i2 := e.Indices[t*3], e.Indices[t*3+1], e.Indices[t*3+2]
	if i0 >= n || i1 >= n || i2 >= n {
		return a, b, c, false
	}
	return e.Position(int(i0)), e.Position(int(i1)), e.Position(int(i2)), true
}

// ComputeBounds returns the local-space bounds of all vertices, or nil
// when there are none.
func (e *Entity) ComputeBounds() *Hitbox {
	n := e.VertexCount()
	if n == 0 {
		return nil
	}
	h := &Hitbox{
		Min: math.Vec3{X: gomath.Inf(1), Y: gomath.Inf(1), Z: gomath.Inf(1)},
		Max: math.Vec3{X: gomath.Inf(-1), Y: gomath.Inf(-1), Z: gomath.Inf(-1)},
	}
	for i := 0; i < n; i++ {
		h.extend(e.Position(i))
	}
	h.pad()
	return h
}

// ComputeHitRadius returns the largest distance from pivot to a vertex.
func (e *Entity) ComputeHitRadius(pivot math.Vec3) float64 {
	n := e.VertexCount()
	if n == 0 {
		return DefaultHitRadius
	}
	r := 0.0
	for i := 0; i < n; i++ {
		if d := e.Position(i).Distance(pivot); d > r {
			r = d
		}
	}
	return r
}

// RecalculateHitRange sets Hitbox and HitRadius (about the pivot) from the
// current vertices in a single pass.
func (e *Entity) RecalculateHitRange() {
	e.rescan(math.Vec3{})
}

// ApplyPivot moves every vertex so the pivot becomes the local origin, then
// rebuilds the hitbox and hit radius and zeroes the pivot.
func (e *Entity) ApplyPivot() {
	e.rescan(e.Pivot)
	e.Pivot = math.Vec3{}
}

// ApplyTranslate bakes a translation into the geometry: positions and the
// pivot both have t subtracted. The caller owns the translation and must
// zero it afterwards.
func (e *Entity) ApplyTranslate(t math.Vec3) {
	n := e.VertexCount()
	for i := 0; i < n; i++ {
		e.SetPosition(i, e.Position(i).Sub(t))
	}
	e.Pivot = e.Pivot.Sub(t)
	e.RecalculateHitRange()
}

// TransformPivotToGeometry sets the pivot to the mean of every vertex
// position. Duplicate vertices are counted every time they appear.
func (e *Entity) TransformPivotToGeometry() {
	n := e.VertexCount()
	if n == 0 {
		return
	}
	var sum math.Vec3
	for i := 0; i < n; i++ {
		sum = sum.Add(e.Position(i))
	}
	e.Pivot = sum.Scale(1 / float64(n))
}

// rescan subtracts shift from every position (when non-zero) while
// rebuilding the hitbox and the hit radius about the new origin. The
// hit radius is measured from e.Pivot-shift, which is the origin when
// shift is the pivot.
func (e *Entity) rescan(shift math.Vec3) {
	n := e.VertexCount()
	if n == 0 {
		e.Hitbox = nil
		e.HitRadius = DefaultHitRadius
		return
	}
	center := e.Pivot.Sub(shift)
	h := &Hitbox{
		Min: math.Vec3{X: gomath.Inf(1), Y: gomath.Inf(1), Z: gomath.Inf(1)},
		Max: math.Vec3{X: gomath.Inf(-1), Y: gomath.Inf(-1), Z: gomath.Inf(-1)},
	}
	r := 0.0
	moved := shift != (math.Vec3{})
	for i := 0; i < n; i++ {
		p := e.Position(i)
		if moved {
			p = p.Sub(shift)
			e.SetPosition(i, p)
		}
		h.extend(p)
		if d := p.Distance(center); d > r {
			r = d
		}
	}
	h.pad()
	e.Hitbox = h
	e.HitRadius = r
}

func (h *Hitbox) extend(p math.Vec3) {
	h.Min.X = gomath.Min(h.Min.X, p.X)
	h.Min.Y = gomath.Min(h.Min.Y, p.Y)
	h.Min.Z = gomath.Min(h.Min.Z, p.Z)
	h.Max.X = gomath.Max(h.Max.X, p.X)
	h.Max.Y = gomath.Max(h.Max.Y, p.Y)
	h.Max.Z = gomath.Max(h.Max.Z, p.Z)
}
