package scene

import (
	"time"

	"go.uber.org/zap"
	"golang.org/x/exp/rand"

	"github.com/Faultbox/glops/internal/inventory"
	"github.com/Faultbox/glops/internal/logger"
)

// Key is a logical control polled from Input each frame.
type Key int

const (
	KeyMoveLeft Key = iota
	KeyMoveRight
	KeyMoveForward
	KeyMoveBackward
	KeyUse
	KeyNextItem
	KeyPrevItem
)

var keyNames = [...]string{"move_left", "move_right", "move_forward", "move_backward", "use", "next_item", "prev_item"}

func (k Key) String() string {
	if k < 0 || int(k) >= len(keyNames) {
		return "unknown"
	}
	return keyNames[k]
}

// RenderBinding mirrors entity visibility into whatever draws the scene.
// AddToScene is called again for an entity whose vertices were rewritten.
type RenderBinding interface {
	AddToScene(i int)
	Remove(i int)
	SetVisible(i int, visible bool)
}

// Audio plays sound files by path. PlayMusic replaces the current music
// track.
type Audio interface {
	Play(path string) error
	Preload(path string) error
	PlayMusic(path string, loop bool) error
}

// Input reports which logical keys are held.
type Input interface {
	IsPressed(k Key) bool
}

// Hooks receives game events. Embed BaseHooks to implement only some of
// them.
type Hooks interface {
	// Update runs once per frame before movement.
	Update(s *State, dt float64)
	// ProcessAI runs for each AI-enabled actor before it moves.
	ProcessAI(s *State, actor int)
	Bumped(s *State, bumpable, bumper int)
	Obtained(s *State, item, receiver int)
	Attacked(s *State, target, attacker int, weapon string, damage float64)
	SelectionChanged(s *State, owner int, ev inventory.SelectionEvent)
	Killed(s *State, i int, weapon string)
}

// BaseHooks implements Hooks with no-ops.
type BaseHooks struct{}

func (BaseHooks) Update(*State, float64)                                 {}
func (BaseHooks) ProcessAI(*State, int)                                  {}
func (BaseHooks) Bumped(*State, int, int)                                {}
func (BaseHooks) Obtained(*State, int, int)                              {}
func (BaseHooks) Attacked(*State, int, int, string, float64)             {}
func (BaseHooks) SelectionChanged(*State, int, inventory.SelectionEvent) {}
func (BaseHooks) Killed(*State, int, string)                             {}

type nopRender struct{}

func (nopRender) AddToScene(int)       {}
func (nopRender) Remove(int)           {}
func (nopRender) SetVisible(int, bool) {}

type nopAudio struct{}

func (nopAudio) Play(string) error    { return nil }
func (nopAudio) Preload(string) error { return nil }

func (nopAudio) PlayMusic(string, bool) error { return nil }

type nopInput struct{}

func (nopInput) IsPressed(Key) bool { return false }

// Deps are the collaborators of a State. Nil fields get no-op defaults.
type Deps struct {
	Render RenderBinding
	Audio  Audio
	Input  Input
	Hooks  Hooks
	Log    *zap.Logger
	Diag   *logger.Diagnostics
	// Now is the clock used for item cooldowns.
	Now func() time.Time
	// Rand picks landing sounds.
	Rand *rand.Rand
}

func (d Deps) withDefaults() Deps {
	if d.Render == nil {
		d.Render = nopRender{}
	}
	if d.Audio == nil {
		d.Audio = nopAudio{}
	}
	if d.Input == nil {
		d.Input = nopInput{}
	}
	if d.Hooks == nil {
		d.Hooks = BaseHooks{}
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Diag == nil {
		d.Diag = logger.NewDiagnostics(d.Log)
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Rand == nil {
		d.Rand = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	}
	return d
}
