// Package importer converts polygon object groups into mesh entities.
//
// Text formats are parsed by a Loader. The importer owns everything after
// that: fan triangulation, attribute defaults, material conversion and
// pivot placement.
package importer

import (
	"errors"
	"fmt"

	"github.com/Faultbox/glops/internal/mesh"
	"github.com/Faultbox/glops/pkg/math"
)

// NoIndex marks an absent texcoord or normal reference in a FaceVertex.
const NoIndex = -1

// FaceVertex references one corner of a face. Indices are 0-based and
// relative to the owning ObjectGroup.
type FaceVertex struct {
	Position int
	TexCoord int
	Normal   int
}

// Corner returns a FaceVertex with only a position reference.
func Corner(position int) FaceVertex {
	return FaceVertex{Position: position, TexCoord: NoIndex, Normal: NoIndex}
}

// Face builds a face from position indices alone.
func Face(positions ...int) []FaceVertex {
	f := make([]FaceVertex, len(positions))
	for i, p := range positions {
		f[i] = Corner(p)
	}
	return f
}

// RawMaterial is material data as read from a source file. Nil or short
// color slices fall back to mesh.DefaultMaterial values.
type RawMaterial struct {
	Name             string
	Ambient          []float64
	Diffuse          []float64
	Specular         []float64
	Emissive         []float64
	SpecularExponent *float64
	Opacity          *float64
	DiffuseMap       string
}

// ObjectGroup is one named object from a geometry source.
type ObjectGroup struct {
	Name      string
	Positions []math.Vec3
	// Colors is optional. When present it runs parallel to Positions.
	Colors    []math.Vec4
	Normals   []math.Vec3
	TexCoords []math.Vec2
	Faces     [][]FaceVertex
	Material  *RawMaterial
}

// Loader reads object groups from a path.
type Loader interface {
	LoadGroups(path string) ([]ObjectGroup, error)
}

// Imported is one converted group. Placement is the centroid that was
// moved to the local origin, i.e. where the group sat in the source file.
type Imported struct {
	Mesh      *mesh.Entity
	Placement math.Vec3
}

// ErrNoFaces is returned by Build for a group that yields no triangles.
var ErrNoFaces = errors.New("object group has no faces")

// ImportError reports a load that produced nothing usable.
type ImportError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ImportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("import %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("import %s: %s", e.Path, e.Reason)
}

func (e *ImportError) Unwrap() error {
	return e.Err
}
