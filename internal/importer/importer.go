package importer

import (
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/glops/internal/logger"
	"github.com/Faultbox/glops/internal/mesh"
	"github.com/Faultbox/glops/pkg/math"
)

// Options configures an Importer.
type Options struct {
	Schema *mesh.Schema
	// DeclaredStride, when non-zero, is compared with the schema stride.
	DeclaredStride int
	// StrictStride turns a stride mismatch into an error instead of a warning.
	StrictStride bool
}

// Importer builds mesh entities from object groups.
type Importer struct {
	schema *mesh.Schema
	log    *zap.Logger
	diag   *logger.Diagnostics

	posOff, normOff, tcOff, colorOff int
	posN, normN, tcN, colorN         int
}

// New validates the schema and returns an Importer for it.
func New(opts Options, log *zap.Logger, diag *logger.Diagnostics) (*Importer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if diag == nil {
		diag = logger.NewDiagnostics(log)
	}
	s := opts.Schema
	if s == nil {
		s = mesh.DefaultSchema()
	}
	if err := s.RequireImportable(); err != nil {
		return nil, err
	}
	if opts.DeclaredStride != 0 {
		if err := s.CheckStride(opts.DeclaredStride); err != nil {
			if opts.StrictStride {
				return nil, err
			}
			diag.Warn("vertex schema stride mismatch", zap.Error(err), zap.Stringer("schema", s))
		}
	}

	im := &Importer{schema: s, log: log, diag: diag}
	im.posOff, _ = s.Offset(mesh.Position)
	im.normOff, _ = s.Offset(mesh.Normal)
	im.tcOff, _ = s.Offset(mesh.TexCoord0)
	im.colorOff, _ = s.Offset(mesh.Color)
	im.posN = s.Components(mesh.Position)
	im.normN = s.Components(mesh.Normal)
	im.tcN = s.Components(mesh.TexCoord0)
	im.colorN = s.Components(mesh.Color)
	return im, nil
}

// Schema returns the vertex schema entities are built with.
func (im *Importer) Schema() *mesh.Schema {
	return im.schema
}

// Import loads path and converts every group. Groups without faces are
// reported and skipped.
func (im *Importer) Import(l Loader, path string) ([]Imported, error) {
	groups, err := l.LoadGroups(path)
	if err != nil {
		return nil, &ImportError{Path: path, Reason: "unreadable source", Err: err}
	}
	if len(groups) == 0 {
		return nil, &ImportError{Path: path, Reason: "no object groups"}
	}

	out := make([]Imported, 0, len(groups))
	for _, g := range groups {
		imp, err := im.Build(g, path)
		if errors.Is(err, ErrNoFaces) {
			continue
		}
		if err != nil {
			return nil, &ImportError{Path: path, Reason: fmt.Sprintf("group %q", g.Name), Err: err}
		}
		out = append(out, imp)
	}
	im.log.Debug("imported geometry",
		zap.String("path", path),
		zap.Int("groups", len(groups)),
		zap.Int("meshes", len(out)))
	return out, nil
}

// Build converts one group. Faces are fan-triangulated from their first
// corner and every face corner becomes its own vertex.
func (im *Importer) Build(g ObjectGroup, sourcePath string) (Imported, error) {
	if len(g.Faces) == 0 {
		im.diag.Warn("object group has no faces", zap.String("group", g.Name), zap.String("path", sourcePath))
		return Imported{}, ErrNoFaces
	}

	e := mesh.NewEntity(g.Name, im.schema)
	e.SourcePath = sourcePath
	if g.Material != nil {
		e.Material = convertMaterial(*g.Material, sourcePath)
	}

	stride := im.schema.Stride()
	for fi, face := range g.Faces {
		if len(face) < 3 {
			im.diag.Warn("face skipped: fewer than 3 vertices",
				zap.String("group", g.Name), zap.Int("face", fi), zap.Int("vertices", len(face)))
			continue
		}
		if !im.positionsValid(g, face) {
			im.diag.Warn("face skipped: position index out of range",
				zap.String("group", g.Name), zap.Int("face", fi), zap.Int("positions", len(g.Positions)))
			continue
		}

		base := uint32(len(e.Vertices) / stride)
		for _, fv := range face {
			e.Vertices = im.appendVertex(e.Vertices, g, fi, fv)
		}
		for k := 2; k < len(face); k++ {
			e.Indices = append(e.Indices, base, base+uint32(k-1), base+uint32(k))
		}
	}

	if len(e.Indices) == 0 {
		im.diag.Warn("object group has no usable faces", zap.String("group", g.Name), zap.String("path", sourcePath))
		return Imported{}, ErrNoFaces
	}

	e.TransformPivotToGeometry()
	placement := e.Pivot
	e.ApplyPivot()
	return Imported{Mesh: e, Placement: placement}, nil
}

func (im *Importer) positionsValid(g ObjectGroup, face []FaceVertex) bool {
	for _, fv := range face {
		if fv.Position < 0 || fv.Position >= len(g.Positions) {
			return false
		}
	}
	return true
}

func (im *Importer) appendVertex(dst []float64, g ObjectGroup, face int, fv FaceVertex) []float64 {
	start := len(dst)
	dst = append(dst, make([]float64, im.schema.Stride())...)
	v := dst[start:]

	p := g.Positions[fv.Position]
	v[im.posOff] = p.X
	v[im.posOff+1] = p.Y
	v[im.posOff+2] = p.Z
	if im.posN > 3 {
		v[im.posOff+3] = 1.0
	}

	n := math.Vec3{X: 0, Y: 0, Z: 1}
	if fv.Normal != NoIndex {
		if fv.Normal >= 0 && fv.Normal < len(g.Normals) {
			n = g.Normals[fv.Normal]
		} else {
			im.diag.WarnOnce(fmt.Sprintf("normal-index:%s", g.Name), "normal index out of range, using default",
				zap.String("group", g.Name), zap.Int("face", face), zap.Int("index", fv.Normal))
		}
	}
	writeComponents(v[im.normOff:im.normOff+im.normN], n.X, n.Y, n.Z)

	var tc math.Vec2
	if fv.TexCoord != NoIndex {
		if fv.TexCoord >= 0 && fv.TexCoord < len(g.TexCoords) {
			tc = g.TexCoords[fv.TexCoord]
		} else {
			im.diag.WarnOnce(fmt.Sprintf("texcoord-index:%s", g.Name), "texcoord index out of range, using default",
				zap.String("group", g.Name), zap.Int("face", face), zap.Int("index", fv.TexCoord))
		}
	}
	// Images have a top-left origin.
	writeComponents(v[im.tcOff:im.tcOff+im.tcN], tc.X, 1-tc.Y)

	c := math.Vec4{X: 1, Y: 1, Z: 1, W: 1}
	if fv.Position < len(g.Colors) {
		c = g.Colors[fv.Position]
	}
	writeComponents(v[im.colorOff:im.colorOff+im.colorN], c.X, c.Y, c.Z, c.W)

	return dst
}

// writeComponents copies as many values as dst holds.
func writeComponents(dst []float64, values ...float64) {
	for i := range dst {
		if i < len(values) {
			dst[i] = values[i]
		}
	}
}

func convertMaterial(raw RawMaterial, sourcePath string) mesh.Material {
	m := mesh.DefaultMaterial()
	m.Name = raw.Name
	m.Ambient = colorOr(raw.Ambient, m.Ambient)
	m.Diffuse = colorOr(raw.Diffuse, m.Diffuse)
	m.Specular = colorOr(raw.Specular, m.Specular)
	m.Emissive = colorOr(raw.Emissive, m.Emissive)
	if raw.SpecularExponent != nil {
		m.SpecularExponent = *raw.SpecularExponent
	}
	if raw.Opacity != nil {
		m.Diffuse.W = *raw.Opacity
	}
	if raw.DiffuseMap != "" {
		m.DiffuseTexture = raw.DiffuseMap
		if !filepath.IsAbs(raw.DiffuseMap) && sourcePath != "" {
			m.DiffuseTexture = filepath.Join(filepath.Dir(sourcePath), raw.DiffuseMap)
		}
	}
	return m
}

// colorOr reads an RGB or RGBA slice. RGB gets an opaque alpha.
func colorOr(c []float64, def math.Vec4) math.Vec4 {
	switch {
	case len(c) >= 4:
		return math.Vec4{X: c[0], Y: c[1], Z: c[2], W: c[3]}
	case len(c) == 3:
		return math.Vec4{X: c[0], Y: c[1], Z: c[2], W: 1}
	default:
		return def
	}
}
