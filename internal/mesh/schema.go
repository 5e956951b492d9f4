// Package mesh provides flat-buffer mesh entities described by a vertex schema.
package mesh

import (
	"fmt"
	"strings"
)

// Semantic identifies what a vertex attribute holds.
type Semantic int

const (
	Position Semantic = iota
	Normal
	TexCoord0
	TexCoord1
	Color
)

var semanticNames = [...]string{
	Position:  "position",
	Normal:    "normal",
	TexCoord0: "texcoord0",
	TexCoord1: "texcoord1",
	Color:     "color",
}

func (s Semantic) String() string {
	if s < 0 || int(s) >= len(semanticNames) {
		return fmt.Sprintf("Semantic(%d)", int(s))
	}
	return semanticNames[s]
}

// Attribute is one entry of a vertex schema.
type Attribute struct {
	Semantic   Semantic
	Components int
}

// SchemaError reports an inconsistent vertex layout.
type SchemaError struct {
	Semantic Semantic
	Reason   string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("vertex schema: %s: %s", e.Semantic, e.Reason)
}

// Schema is an ordered list of vertex attributes with derived offsets.
// Offsets and stride are counted in float components, not bytes.
type Schema struct {
	attrs   []Attribute
	offsets map[Semantic]int
	comps   map[Semantic]int
	stride  int
}

// NewSchema builds a schema from attributes in buffer order.
func NewSchema(attrs ...Attribute) (*Schema, error) {
	s := &Schema{
		attrs:   make([]Attribute, 0, len(attrs)),
		offsets: make(map[Semantic]int, len(attrs)),
		comps:   make(map[Semantic]int, len(attrs)),
	}
	for _, a := range attrs {
		if a.Components < 1 {
			return nil, &SchemaError{Semantic: a.Semantic, Reason: fmt.Sprintf("invalid component count %d", a.Components)}
		}
		if _, dup := s.offsets[a.Semantic]; dup {
			return nil, &SchemaError{Semantic: a.Semantic, Reason: "declared more than once"}
		}
		s.offsets[a.Semantic] = s.stride
		s.comps[a.Semantic] = a.Components
		s.stride += a.Components
		s.attrs = append(s.attrs, a)
	}
	return s, nil
}

// DefaultSchema returns the bundled vertex format:
// position(4) texcoord0(4) texcoord1(4) color(4) normal(3).
func DefaultSchema() *Schema {
	s, _ := NewSchema(
		Attribute{Position, 4},
		Attribute{TexCoord0, 4},
		Attribute{TexCoord1, 4},
		Attribute{Color, 4},
		Attribute{Normal, 3},
	)
	return s
}

// Stride returns the number of floats per vertex.
func (s *Schema) Stride() int {
	return s.stride
}

// Offset returns the float offset of a semantic within a vertex.
func (s *Schema) Offset(sem Semantic) (int, bool) {
	off, ok := s.offsets[sem]
	return off, ok
}

// Components returns the component count of a semantic, or 0 if absent.
func (s *Schema) Components(sem Semantic) int {
	return s.comps[sem]
}

// Attributes returns a copy of the attributes in buffer order.
func (s *Schema) Attributes() []Attribute {
	out := make([]Attribute, len(s.attrs))
	copy(out, s.attrs)
	return out
}

// CheckStride compares the computed stride with a declared one.
// The caller decides whether a mismatch is fatal.
func (s *Schema) CheckStride(declared int) error {
	if declared != s.stride {
		return &SchemaError{
			Semantic: Position,
			Reason:   fmt.Sprintf("computed stride %d does not match declared stride %d", s.stride, declared),
		}
	}
	return nil
}

// RequireImportable reports the first required semantic the schema lacks.
// TexCoord1 is optional.
func (s *Schema) RequireImportable() error {
	for _, sem := range []Semantic{Position, Normal, TexCoord0, Color} {
		if _, ok := s.offsets[sem]; !ok {
			return &SchemaError{Semantic: sem, Reason: "required attribute missing"}
		}
	}
	if s.Components(Position) < 3 {
		return &SchemaError{Semantic: Position, Reason: "needs at least 3 components"}
	}
	return nil
}

func (s *Schema) String() string {
	parts := make([]string, len(s.attrs))
	for i, a := range s.attrs {
		parts[i] = fmt.Sprintf("%s:%d", a.Semantic, a.Components)
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// NamedAttribute is a schema entry declared by name, as found in
// configuration files and shader attribute lists.
type NamedAttribute struct {
	Name       string `yaml:"name"`
	Components int    `yaml:"components"`
}

// SchemaFromNames resolves declared names to semantics. Names must match
// exactly. A generic texcoord name is assigned TexCoord0 on first use and
// TexCoord1 on second use.
func SchemaFromNames(decls []NamedAttribute) (*Schema, error) {
	attrs := make([]Attribute, 0, len(decls))
	texcoords := 0
	for _, d := range decls {
		name := strings.ToLower(strings.TrimSpace(d.Name))
		var sem Semantic
		switch name {
		case "position", "a_position":
			sem = Position
		case "normal", "a_normal":
			sem = Normal
		case "color", "a_color":
			sem = Color
		case "texcoord0", "a_texcoord0":
			sem = TexCoord0
		case "texcoord1", "a_texcoord1":
			sem = TexCoord1
		case "texcoord", "a_texcoord":
			if texcoords > 1 {
				return nil, &SchemaError{Semantic: TexCoord1, Reason: "more than two texcoord channels"}
			}
			sem = TexCoord0 + Semantic(texcoords)
		default:
			return nil, fmt.Errorf("vertex schema: unknown attribute name %q", d.Name)
		}
		if sem == TexCoord0 || sem == TexCoord1 {
			texcoords++
		}
		attrs = append(attrs, Attribute{Semantic: sem, Components: d.Components})
	}
	return NewSchema(attrs...)
}
