// Package render draws scene entities with OpenGL 4.1. Renderer implements
// scene.RenderBinding: the scene tells it which entities exist and which are
// visible, and Draw reads their transforms each frame.
package render

import (
	"fmt"
	"path/filepath"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/glops/internal/mesh"
	"github.com/Faultbox/glops/internal/scene"
	"github.com/Faultbox/glops/pkg/math"
)

// Source gives the renderer access to scene entities.
type Source interface {
	Get(i int) (*scene.Object, error)
}

// gpuMesh holds the buffers of one mesh. Entities sharing a mesh, such as
// fired projectiles, share its buffers.
type gpuMesh struct {
	vao, vbo, ebo uint32
	count         int32
	refs          int
	texture       uint32
}

type entry struct {
	mesh    *mesh.Entity
	visible bool
}

// Renderer handles all OpenGL rendering.
type Renderer struct {
	log *zap.Logger
	src Source

	program  uint32
	uModel   int32
	uView    int32
	uProj    int32
	uAmbient int32
	uDiffuse int32
	uLight   int32
	uTexd    int32
	uTex     int32

	meshes   map[*mesh.Entity]*gpuMesh
	entries  map[int]*entry
	textures map[string]uint32
	badTex   map[string]bool
}

// New initializes OpenGL and compiles the mesh program. It must be called
// after the GL context is created.
func New(log *zap.Logger) (*Renderer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.ClearColor(0.1, 0.1, 0.15, 1.0)

	program, err := compileProgram(vertexShader, fragmentShader)
	if err != nil {
		return nil, fmt.Errorf("failed to create shader program: %w", err)
	}
	r := &Renderer{
		log:      log,
		program:  program,
		uModel:   uniform(program, "uModel"),
		uView:    uniform(program, "uView"),
		uProj:    uniform(program, "uProj"),
		uAmbient: uniform(program, "uAmbient"),
		uDiffuse: uniform(program, "uDiffuse"),
		uLight:   uniform(program, "uLightDir"),
		uTexd:    uniform(program, "uTextured"),
		uTex:     uniform(program, "uTexture"),
		meshes:   make(map[*mesh.Entity]*gpuMesh),
		entries:  make(map[int]*entry),
		textures: make(map[string]uint32),
		badTex:   make(map[string]bool),
	}
	return r, nil
}

// Bind sets the entity source. The scene is created with the renderer as
// its binding, so this happens right after.
func (r *Renderer) Bind(src Source) {
	r.src = src
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	r.log.Info("closing renderer")
	for m, g := range r.meshes {
		r.deleteMesh(g)
		delete(r.meshes, m)
	}
	for path, tex := range r.textures {
		gl.DeleteTextures(1, &tex)
		delete(r.textures, path)
	}
	if r.program != 0 {
		gl.DeleteProgram(r.program)
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized", zap.Int("width", width), zap.Int("height", height))
}

// AddToScene uploads the mesh of entity i, or re-uploads it when i is
// already known.
func (r *Renderer) AddToScene(i int) {
	if r.src == nil {
		return
	}
	o, err := r.src.Get(i)
	if err != nil || o.Mesh == nil {
		return
	}
	if e, ok := r.entries[i]; ok {
		if e.mesh == o.Mesh {
			r.upload(r.meshes[o.Mesh], o.Mesh)
			e.visible = o.Visible
			return
		}
		r.Remove(i)
	}

	g, ok := r.meshes[o.Mesh]
	if !ok {
		g, err = r.createMesh(o.Mesh)
		if err != nil {
			r.log.Warn("mesh not uploaded", zap.String("entity", o.Name), zap.Error(err))
			return
		}
		r.meshes[o.Mesh] = g
	}
	g.refs++
	r.entries[i] = &entry{mesh: o.Mesh, visible: o.Visible}
}

// Remove releases entity i.
func (r *Renderer) Remove(i int) {
	e, ok := r.entries[i]
	if !ok {
		return
	}
	delete(r.entries, i)
	g := r.meshes[e.mesh]
	if g == nil {
		return
	}
	g.refs--
	if g.refs <= 0 {
		r.deleteMesh(g)
		delete(r.meshes, e.mesh)
	}
}

// SetVisible toggles drawing of entity i, uploading it first if needed.
func (r *Renderer) SetVisible(i int, visible bool) {
	e, ok := r.entries[i]
	if !ok {
		if visible {
			r.AddToScene(i)
		}
		return
	}
	e.visible = visible
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Draw renders every visible entity with its world matrix.
func (r *Renderer) Draw(view, proj math.Mat4) {
	if r.src == nil {
		return
	}
	gl.UseProgram(r.program)
	gl.UniformMatrix4fv(r.uView, 1, false, &view[0])
	gl.UniformMatrix4fv(r.uProj, 1, false, &proj[0])
	gl.Uniform3f(r.uLight, -0.3, -1, -0.2)
	gl.Uniform1i(r.uTex, 0)

	for i, e := range r.entries {
		o, err := r.src.Get(i)
		if err != nil {
			r.Remove(i)
			continue
		}
		if !e.visible {
			continue
		}
		g := r.meshes[e.mesh]
		model := o.Transform.Matrix()
		gl.UniformMatrix4fv(r.uModel, 1, false, &model[0])

		m := e.mesh.Material
		gl.Uniform4f(r.uAmbient, float32(m.Ambient.X), float32(m.Ambient.Y), float32(m.Ambient.Z), float32(m.Ambient.W))
		gl.Uniform4f(r.uDiffuse, float32(m.Diffuse.X), float32(m.Diffuse.Y), float32(m.Diffuse.Z), float32(m.Diffuse.W))
		if g.texture != 0 {
			gl.Uniform1i(r.uTexd, 1)
			gl.ActiveTexture(gl.TEXTURE0)
			gl.BindTexture(gl.TEXTURE_2D, g.texture)
		} else {
			gl.Uniform1i(r.uTexd, 0)
		}

		gl.BindVertexArray(g.vao)
		gl.DrawElements(gl.TRIANGLES, g.count, gl.UNSIGNED_INT, nil)
	}
	gl.BindVertexArray(0)
}

// CameraView builds the view matrix from the camera entity.
func CameraView(s *scene.State) math.Mat4 {
	eye := s.Camera().Transform.Translate
	return math.LookAt(eye, eye.Add(s.CameraForward()), math.Vec3{Y: 1})
}

func (r *Renderer) createMesh(m *mesh.Entity) (*gpuMesh, error) {
	if m.Schema == nil {
		return nil, fmt.Errorf("mesh %s has no schema", m.Name)
	}
	layout, err := layoutFor(m.Schema)
	if err != nil {
		return nil, err
	}

	g := &gpuMesh{}
	gl.GenVertexArrays(1, &g.vao)
	gl.GenBuffers(1, &g.vbo)
	gl.GenBuffers(1, &g.ebo)

	gl.BindVertexArray(g.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, g.vbo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, g.ebo)
	r.upload(g, m)

	// Attributes the schema lacks read a constant instead.
	gl.VertexAttrib4f(attribLocation(mesh.Color), 1, 1, 1, 1)
	gl.VertexAttrib3f(attribLocation(mesh.Normal), 0, 0, 0)
	for _, a := range layout {
		gl.EnableVertexAttribArray(a.location)
		gl.VertexAttribPointerWithOffset(a.location, a.size, gl.FLOAT, false, a.stride, uintptr(a.offset))
	}
	gl.BindVertexArray(0)

	if tex := m.Material.DiffuseTexture; tex != "" {
		g.texture = r.texture(resolveTexture(tex, m.SourcePath))
	}
	return g, nil
}

// upload copies vertex and index data into the bound buffers of g.
func (r *Renderer) upload(g *gpuMesh, m *mesh.Entity) {
	if g == nil {
		return
	}
	verts := toFloat32(m.Vertices)
	gl.BindVertexArray(g.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, g.vbo)
	if len(verts) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, len(verts)*floatSize, gl.Ptr(verts), gl.STATIC_DRAW)
	}
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, g.ebo)
	if len(m.Indices) > 0 {
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*int(unsafe.Sizeof(uint32(0))), gl.Ptr(m.Indices), gl.STATIC_DRAW)
	}
	g.count = int32(len(m.Indices))
	gl.BindVertexArray(0)
}

func (r *Renderer) deleteMesh(g *gpuMesh) {
	gl.DeleteVertexArrays(1, &g.vao)
	gl.DeleteBuffers(1, &g.vbo)
	gl.DeleteBuffers(1, &g.ebo)
}

// texture returns the GL texture for path, loading it on first use. A file
// that fails to load is logged once and drawn untextured.
func (r *Renderer) texture(path string) uint32 {
	if tex, ok := r.textures[path]; ok {
		return tex
	}
	if r.badTex[path] {
		return 0
	}
	img, err := LoadImage(path)
	if err != nil {
		r.badTex[path] = true
		r.log.Warn("texture not loaded", zap.String("path", path), zap.Error(err))
		return 0
	}

	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	b := img.Bounds()
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(b.Dx()), int32(b.Dy()), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	r.textures[path] = tex
	r.log.Debug("texture loaded", zap.String("path", path), zap.Int("width", b.Dx()), zap.Int("height", b.Dy()))
	return tex
}

// resolveTexture makes a material texture path relative to the mesh source.
func resolveTexture(tex, sourcePath string) string {
	if filepath.IsAbs(tex) || sourcePath == "" {
		return tex
	}
	return filepath.Join(filepath.Dir(sourcePath), tex)
}
