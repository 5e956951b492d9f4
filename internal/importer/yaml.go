package importer

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/glops/pkg/math"
)

// YAMLLoader reads object groups from a YAML geometry file:
//
//	objects:
//	  - name: floor
//	    positions: [[0, 0, 0], [1, 0, 0], [1, 0, 1], [0, 0, 1]]
//	    faces:
//	      - [0, 1, 2, 3]
//	      - [{v: 0, vt: 0, vn: 0}, {v: 2}, {v: 3}]
//	    material: {diffuse: [0.5, 0.8, 0.5], diffuse_map: grass.png}
//
// A position entry with six or seven numbers carries an RGB(A) vertex
// color after XYZ.
type YAMLLoader struct{}

type yamlFile struct {
	Objects []yamlObject `yaml:"objects"`
}

type yamlObject struct {
	Name      string         `yaml:"name"`
	Positions [][]float64    `yaml:"positions"`
	Colors    [][]float64    `yaml:"colors"`
	Normals   [][]float64    `yaml:"normals"`
	TexCoords [][]float64    `yaml:"texcoords"`
	Faces     [][]yamlCorner `yaml:"faces"`
	Material  *yamlMaterial  `yaml:"material"`
}

type yamlMaterial struct {
	Name             string    `yaml:"name"`
	Ambient          []float64 `yaml:"ambient"`
	Diffuse          []float64 `yaml:"diffuse"`
	Specular         []float64 `yaml:"specular"`
	Emissive         []float64 `yaml:"emissive"`
	SpecularExponent *float64  `yaml:"specular_exponent"`
	Opacity          *float64  `yaml:"opacity"`
	DiffuseMap       string    `yaml:"diffuse_map"`
}

// yamlCorner accepts either a bare position index or a {v, vt, vn} mapping.
type yamlCorner struct {
	FaceVertex
}

func (c *yamlCorner) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var v int
		if err := node.Decode(&v); err != nil {
			return fmt.Errorf("line %d: face vertex: %w", node.Line, err)
		}
		c.FaceVertex = Corner(v)
		return nil
	case yaml.MappingNode:
		var m struct {
			V  *int `yaml:"v"`
			VT *int `yaml:"vt"`
			VN *int `yaml:"vn"`
		}
		if err := node.Decode(&m); err != nil {
			return fmt.Errorf("line %d: face vertex: %w", node.Line, err)
		}
		if m.V == nil {
			return fmt.Errorf("line %d: face vertex without v", node.Line)
		}
		c.FaceVertex = Corner(*m.V)
		if m.VT != nil {
			c.TexCoord = *m.VT
		}
		if m.VN != nil {
			c.Normal = *m.VN
		}
		return nil
	default:
		return fmt.Errorf("line %d: face vertex must be an index or a mapping", node.Line)
	}
}

// LoadGroups implements Loader.
func (YAMLLoader) LoadGroups(path string) ([]ObjectGroup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseYAML(data)
}

// ParseYAML decodes object groups from YAML bytes.
func ParseYAML(data []byte) ([]ObjectGroup, error) {
	var f yamlFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse geometry: %w", err)
	}

	groups := make([]ObjectGroup, 0, len(f.Objects))
	for i, o := range f.Objects {
		g := ObjectGroup{Name: o.Name}
		if g.Name == "" {
			g.Name = fmt.Sprintf("object%d", i)
		}

		for j, p := range o.Positions {
			if len(p) < 3 {
				return nil, fmt.Errorf("object %q: position %d has %d components", g.Name, j, len(p))
			}
			g.Positions = append(g.Positions, math.Vec3{X: p[0], Y: p[1], Z: p[2]})
		}
		g.Colors = readColors(o)

		for j, n := range o.Normals {
			if len(n) < 3 {
				return nil, fmt.Errorf("object %q: normal %d has %d components", g.Name, j, len(n))
			}
			g.Normals = append(g.Normals, math.Vec3{X: n[0], Y: n[1], Z: n[2]})
		}
		for j, tc := range o.TexCoords {
			if len(tc) < 2 {
				return nil, fmt.Errorf("object %q: texcoord %d has %d components", g.Name, j, len(tc))
			}
			g.TexCoords = append(g.TexCoords, math.Vec2{X: tc[0], Y: tc[1]})
		}

		for _, face := range o.Faces {
			fv := make([]FaceVertex, len(face))
			for k, c := range face {
				fv[k] = c.FaceVertex
			}
			g.Faces = append(g.Faces, fv)
		}

		if m := o.Material; m != nil {
			g.Material = &RawMaterial{
				Name:             m.Name,
				Ambient:          m.Ambient,
				Diffuse:          m.Diffuse,
				Specular:         m.Specular,
				Emissive:         m.Emissive,
				SpecularExponent: m.SpecularExponent,
				Opacity:          m.Opacity,
				DiffuseMap:       m.DiffuseMap,
			}
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// readColors prefers an explicit colors list and falls back to extra
// position components.
func readColors(o yamlObject) []math.Vec4 {
	src := o.Colors
	offset := 0
	if len(src) == 0 {
		for _, p := range o.Positions {
			if len(p) >= 6 {
				src = o.Positions
				offset = 3
				break
			}
		}
	}
	if len(src) == 0 {
		return nil
	}

	colors := make([]math.Vec4, len(src))
	for i, c := range src {
		c = c[min(offset, len(c)):]
		col := math.Vec4{X: 1, Y: 1, Z: 1, W: 1}
		if len(c) >= 3 {
			col.X, col.Y, col.Z = c[0], c[1], c[2]
		}
		if len(c) >= 4 {
			col.W = c[3]
		}
		colors[i] = col
	}
	return colors
}
