package mesh

import "github.com/Faultbox/glops/pkg/math"

// Material holds fixed-function surface colors and an optional diffuse texture.
type Material struct {
	Name             string
	Ambient          math.Vec4
	Diffuse          math.Vec4
	Specular         math.Vec4
	Emissive         math.Vec4
	SpecularExponent float64
	// DiffuseTexture is a file path, resolved relative to the mesh source when
	// not absolute.
	DiffuseTexture string
}

// DefaultMaterial returns an untextured opaque white material.
func DefaultMaterial() Material {
	return Material{
		Ambient:          math.Vec4{X: 0, Y: 0, Z: 0, W: 1},
		Diffuse:          math.Vec4{X: 1, Y: 1, Z: 1, W: 1},
		Specular:         math.Vec4{X: 1, Y: 1, Z: 1, W: 1},
		Emissive:         math.Vec4{X: 0, Y: 0, Z: 0, W: 1},
		SpecularExponent: 1,
	}
}
