package render

import (
	"fmt"

	"github.com/Faultbox/glops/internal/mesh"
)

// floatSize is the byte size of one uploaded vertex component.
const floatSize = 4

// attrib is one vertex attribute pointer. Stride and offset are in bytes.
type attrib struct {
	location uint32
	size     int32
	stride   int32
	offset   int
}

// attribLocation is the shader input bound to each semantic. It must match
// the layout qualifiers in vertexShader.
func attribLocation(sem mesh.Semantic) uint32 {
	switch sem {
	case mesh.Position:
		return 0
	case mesh.TexCoord0:
		return 1
	case mesh.TexCoord1:
		return 2
	case mesh.Color:
		return 3
	case mesh.Normal:
		return 4
	}
	panic(fmt.Sprintf("render: no shader input for %s", sem))
}

// layoutFor derives attribute pointers from a vertex schema.
func layoutFor(s *mesh.Schema) ([]attrib, error) {
	stride := int32(s.Stride() * floatSize)
	out := make([]attrib, 0, len(s.Attributes()))
	for _, a := range s.Attributes() {
		if a.Components < 1 || a.Components > 4 {
			return nil, fmt.Errorf("attribute %s: %d components cannot be uploaded", a.Semantic, a.Components)
		}
		off, _ := s.Offset(a.Semantic)
		out = append(out, attrib{
			location: attribLocation(a.Semantic),
			size:     int32(a.Components),
			stride:   stride,
			offset:   off * floatSize,
		})
	}
	return out, nil
}

// toFloat32 narrows a vertex buffer for upload.
func toFloat32(src []float64) []float32 {
	out := make([]float32, len(src))
	for i, v := range src {
		out[i] = float32(v)
	}
	return out
}
