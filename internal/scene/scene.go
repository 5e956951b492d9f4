// Package scene holds the entities of a running world and advances them
// one frame at a time: look-at, movement, walkmesh grounding, AI actors,
// bump interactions and gravity.
//
// Entities are addressed by index. Indices are stable for the life of the
// State and never reused; a removed entity keeps its slot so that older
// indices stay valid. Code that needs to hold on to an entity across frames
// should keep an entity.Ref and go through Resolve.
package scene

import (
	"errors"
	"fmt"
	gomath "math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/exp/rand"
	"golang.org/x/exp/slices"

	"github.com/Faultbox/glops/internal/entity"
	"github.com/Faultbox/glops/internal/importer"
	"github.com/Faultbox/glops/internal/inventory"
	"github.com/Faultbox/glops/internal/logger"
	"github.com/Faultbox/glops/internal/mesh"
	"github.com/Faultbox/glops/internal/walkmesh"
	"github.com/Faultbox/glops/pkg/math"
)

// CameraIndex is the index of the player camera entity.
const CameraIndex = 0

// CameraName is the name of the player camera entity.
const CameraName = "camera"

// DefaultReachRadius is the reach of entities that are not the camera.
const DefaultReachRadius = 0.381

// ErrStaleRef is returned when a reference points at a removed or replaced
// entity.
var ErrStaleRef = errors.New("stale entity reference")

// IndexError reports an entity index outside the scene.
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("entity index %d out of range [0, %d)", e.Index, e.Len)
}

// Options configures a State.
type Options struct {
	// Gravity is the downward acceleration in units per second squared.
	Gravity    float64
	ThrowSpeed float64

	EyeHeight          float64
	HitRadius          float64
	ReachRadius        float64
	WalkUnitsPerSecond float64

	Fly bool
	// InfiniteInventory lets inventories grow past their initial slots.
	InfiniteInventory bool
}

// DefaultOptions returns the options of a walking player in earth gravity.
func DefaultOptions() Options {
	return Options{
		Gravity:            9.8,
		ThrowSpeed:         1.0,
		EyeHeight:          1.7,
		HitRadius:          0.2,
		ReachRadius:        2.5,
		WalkUnitsPerSecond: 3.0,
		InfiniteInventory:  true,
	}
}

type pairKey struct {
	bumpable uuid.UUID
	bumper   uuid.UUID
}

// State is a scene of entities. It is not safe for concurrent use.
type State struct {
	opts Options

	objects   []*Object
	bumpers   []int
	bumpables []int
	// contact holds the pairs that bumped and have not separated since.
	contact map[pairKey]bool

	walk      *walkmesh.Index
	worldMinY float64
	hasMinY   bool

	render RenderBinding
	audio  Audio
	input  Input
	hooks  Hooks
	log    *zap.Logger
	diag   *logger.Diagnostics
	now    func() time.Time
	rng    *rand.Rand

	held map[Key]bool
}

// New creates a scene holding only the camera entity.
func New(opts Options, deps Deps) *State {
	deps = deps.withDefaults()
	s := &State{
		opts:    opts,
		contact: make(map[pairKey]bool),
		walk:    walkmesh.New(deps.Log.Named("walkmesh"), deps.Diag),
		render:  deps.Render,
		audio:   deps.Audio,
		input:   deps.Input,
		hooks:   deps.Hooks,
		log:     deps.Log,
		diag:    deps.Diag,
		now:     deps.Now,
		rng:     deps.Rand,
		held:    make(map[Key]bool),
	}

	cam := &Object{
		ID:          uuid.New(),
		Name:        CameraName,
		Transform:   Transform{Scale: math.Vec3{X: 1, Y: 1, Z: 1}},
		BumpEnabled: true,
		HitRadius:   opts.HitRadius,
		ReachRadius: opts.ReachRadius,
		EyeHeight:   opts.EyeHeight,
		Inventory:   inventory.New(opts.InfiniteInventory),
	}
	s.objects = append(s.objects, cam)
	s.bumpers = append(s.bumpers, CameraIndex)
	return s
}

// Len returns the number of entity slots, removed ones included.
func (s *State) Len() int {
	return len(s.objects)
}

// Camera returns the player camera entity.
func (s *State) Camera() *Object {
	return s.objects[CameraIndex]
}

// Walkmesh returns the walkmesh index used for grounding.
func (s *State) Walkmesh() *walkmesh.Index {
	return s.walk
}

// Options returns the options the scene was created with, as changed by
// SetFly.
func (s *State) Options() Options {
	return s.opts
}

// Add appends m as a new visible entity and returns its index.
func (s *State) Add(m *mesh.Entity) int {
	o := &Object{
		ID:          uuid.New(),
		Name:        m.Name,
		Mesh:        m,
		Transform:   Transform{Scale: math.Vec3{X: 1, Y: 1, Z: 1}},
		Visible:     true,
		HitRadius:   m.HitRadius,
		ReachRadius: DefaultReachRadius,
	}
	return s.add(o)
}

// AddImported adds an imported mesh, placed where the importer found it.
func (s *State) AddImported(im importer.Imported) int {
	i := s.Add(im.Mesh)
	s.objects[i].Transform.Translate = im.Placement
	return i
}

func (s *State) add(o *Object) int {
	s.objects = append(s.objects, o)
	i := len(s.objects) - 1
	if o.Visible {
		s.render.AddToScene(i)
	}
	return i
}

// Get returns the live entity at i.
func (s *State) Get(i int) (*Object, error) {
	if i < 0 || i >= len(s.objects) {
		return nil, &IndexError{Index: i, Len: len(s.objects)}
	}
	if s.objects[i].removed {
		return nil, fmt.Errorf("entity %d: %w", i, ErrStaleRef)
	}
	return s.objects[i], nil
}

// Ref returns a reference to entity i as it is now.
func (s *State) Ref(i int) entity.Ref {
	if i < 0 || i >= len(s.objects) {
		return entity.Ref{Index: i}
	}
	return entity.Ref{Index: i, ID: s.objects[i].ID}
}

// Resolve returns the entity r points at, or ErrStaleRef when that entity
// is gone.
func (s *State) Resolve(r entity.Ref) (*Object, error) {
	o, err := s.Get(r.Index)
	if err != nil {
		return nil, err
	}
	if o.ID != r.ID {
		return nil, fmt.Errorf("entity %s: %w", r, ErrStaleRef)
	}
	return o, nil
}

// Remove takes entity i out of the scene. Its slot stays reserved and every
// reference to it becomes stale.
func (s *State) Remove(i int) error {
	if i == CameraIndex {
		return fmt.Errorf("entity %d: the camera cannot be removed", i)
	}
	o, err := s.Get(i)
	if err != nil {
		return err
	}
	s.bumpers = without(s.bumpers, i)
	s.bumpables = without(s.bumpables, i)
	for k := range s.contact {
		if k.bumpable == o.ID || k.bumper == o.ID {
			delete(s.contact, k)
		}
	}
	o.removed = true
	o.Visible = false
	o.BumpEnabled = false
	s.render.Remove(i)
	return nil
}

func without(list []int, i int) []int {
	return slices.DeleteFunc(list, func(v int) bool { return v == i })
}

// Bumpers returns the indices of entities that can bump into others.
func (s *State) Bumpers() []int {
	return append([]int(nil), s.bumpers...)
}

// Bumpables returns the indices of entities that can be bumped.
func (s *State) Bumpables() []int {
	return append([]int(nil), s.bumpables...)
}

// SetTranslation moves entity i.
func (s *State) SetTranslation(i int, p math.Vec3) error {
	o, err := s.Get(i)
	if err != nil {
		return err
	}
	o.Transform.Translate = p
	return nil
}

// SetRotation sets the pitch, yaw and roll of entity i in radians.
func (s *State) SetRotation(i int, r math.Vec3) error {
	o, err := s.Get(i)
	if err != nil {
		return err
	}
	o.Transform.Rotate = r
	return nil
}

// SetScale sets the scale of entity i.
func (s *State) SetScale(i int, sc math.Vec3) error {
	o, err := s.Get(i)
	if err != nil {
		return err
	}
	o.Transform.Scale = sc
	return nil
}

// Show makes entity i visible.
func (s *State) Show(i int) {
	if o, err := s.Get(i); err == nil {
		o.Visible = true
		s.render.SetVisible(i, true)
	}
}

// Hide makes entity i invisible. Hidden entities still take part in
// bumping unless their bumping is disabled too.
func (s *State) Hide(i int) {
	if o, err := s.Get(i); err == nil {
		o.Visible = false
		s.render.SetVisible(i, false)
	}
}

// SetFly switches the camera between walking and flying movement.
func (s *State) SetFly(fly bool) {
	s.opts.Fly = fly
}

// SetWorldBoundary sets the floor used by physics for entities that have
// not cached one yet.
func (s *State) SetWorldBoundary(minY float64) {
	s.worldMinY = minY
	s.hasMinY = true
}

// WorldBoundary returns the lowest floor seen so far.
func (s *State) WorldBoundary() (float64, bool) {
	return s.worldMinY, s.hasMinY
}

// AddBumpSound adds a landing sound to entity i and preloads it.
func (s *State) AddBumpSound(i int, path string) error {
	o, err := s.Get(i)
	if err != nil {
		return err
	}
	for _, p := range o.BumpSounds {
		if p == path {
			return nil
		}
	}
	if err := s.audio.Preload(path); err != nil {
		return fmt.Errorf("preloading bump sound %s: %w", path, err)
	}
	o.BumpSounds = append(o.BumpSounds, path)
	return nil
}

// PlayMusic starts the background track for the scene.
func (s *State) PlayMusic(path string, loop bool) error {
	if err := s.audio.PlayMusic(path, loop); err != nil {
		return fmt.Errorf("play music %s: %w", path, err)
	}
	s.log.Debug("music started", zap.String("path", path), zap.Bool("loop", loop))
	return nil
}

// ViewAnglesFromPointer maps a pointer position in a w×h window to camera
// yaw and pitch. The full width spans one turn and the full height spans
// straight down to straight up, with y growing downward.
func ViewAnglesFromPointer(x, y float64, w, h int) (yaw, pitch float64) {
	if w < 2 || h < 2 {
		return 0, 0
	}
	yaw = -gomath.Pi + x/float64(w-1)*2*gomath.Pi
	pitch = gomath.Pi/2 - y/float64(h-1)*gomath.Pi
	return yaw, pitch
}

// CameraForward returns the unit direction the camera faces.
func (s *State) CameraForward() math.Vec3 {
	r := s.Camera().Transform.Rotate
	h, y := math.RectFromPolar(1, r.X)
	x, z := math.RectFromPolar(h, r.Y)
	return math.Vec3{X: x, Y: y, Z: z}
}
