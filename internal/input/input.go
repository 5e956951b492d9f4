// Package input turns SDL2 events into the key state read by the scene.
package input

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/glops/internal/scene"
)

// DefaultBindings maps each logical key to the scancodes that trigger it.
var DefaultBindings = map[scene.Key][]sdl.Scancode{
	scene.KeyMoveForward:  {sdl.SCANCODE_W, sdl.SCANCODE_UP},
	scene.KeyMoveBackward: {sdl.SCANCODE_S, sdl.SCANCODE_DOWN},
	scene.KeyMoveLeft:     {sdl.SCANCODE_A, sdl.SCANCODE_LEFT},
	scene.KeyMoveRight:    {sdl.SCANCODE_D, sdl.SCANCODE_RIGHT},
	scene.KeyUse:          {sdl.SCANCODE_E, sdl.SCANCODE_SPACE},
	scene.KeyNextItem:     {sdl.SCANCODE_TAB, sdl.SCANCODE_RIGHTBRACKET},
	scene.KeyPrevItem:     {sdl.SCANCODE_Q, sdl.SCANCODE_LEFTBRACKET},
}

// Keyboard tracks held keys, the pointer and window events. It implements
// scene.Input.
type Keyboard struct {
	bindings map[scene.Key][]sdl.Scancode
	held     map[sdl.Scancode]bool

	quit    bool
	resized bool
	width   int
	height  int

	mouseX, mouseY int
	// Relative motion accumulated since the last Update.
	dx, dy int
	clicked bool
}

// New creates a keyboard using bindings. Nil means DefaultBindings.
func New(bindings map[scene.Key][]sdl.Scancode) *Keyboard {
	if bindings == nil {
		bindings = DefaultBindings
	}
	return &Keyboard{
		bindings: bindings,
		held:     make(map[sdl.Scancode]bool),
	}
}

// Update polls SDL events. Returns true if the host should quit.
func (k *Keyboard) Update() bool {
	k.dx, k.dy = 0, 0
	k.resized = false
	k.clicked = false
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		k.Handle(event)
	}
	return k.quit
}

// Handle applies one event.
func (k *Keyboard) Handle(event sdl.Event) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		k.quit = true

	case *sdl.WindowEvent:
		if e.Event == sdl.WINDOWEVENT_RESIZED {
			k.resized = true
			k.width, k.height = int(e.Data1), int(e.Data2)
		}

	case *sdl.KeyboardEvent:
		if e.Type == sdl.KEYDOWN {
			k.held[e.Keysym.Scancode] = true
			if e.Keysym.Scancode == sdl.SCANCODE_ESCAPE {
				k.quit = true
			}
		} else if e.Type == sdl.KEYUP {
			delete(k.held, e.Keysym.Scancode)
		}

	case *sdl.MouseMotionEvent:
		k.mouseX, k.mouseY = int(e.X), int(e.Y)
		k.dx += int(e.XRel)
		k.dy += int(e.YRel)

	case *sdl.MouseButtonEvent:
		if e.Type == sdl.MOUSEBUTTONDOWN && e.Button == sdl.BUTTON_LEFT {
			k.clicked = true
		}
	}
}

// IsPressed reports whether any scancode bound to key is held.
func (k *Keyboard) IsPressed(key scene.Key) bool {
	for _, sc := range k.bindings[key] {
		if k.held[sc] {
			return true
		}
	}
	return false
}

// Quit reports whether a quit was requested.
func (k *Keyboard) Quit() bool {
	return k.quit
}

// Pointer returns the last absolute pointer position.
func (k *Keyboard) Pointer() (x, y int) {
	return k.mouseX, k.mouseY
}

// Motion returns the relative pointer motion of the last Update.
func (k *Keyboard) Motion() (dx, dy int) {
	return k.dx, k.dy
}

// Clicked reports whether the left button went down during the last Update.
func (k *Keyboard) Clicked() bool {
	return k.clicked
}

// Resized returns the new window size when the window changed size during
// the last Update.
func (k *Keyboard) Resized() (w, h int, ok bool) {
	return k.width, k.height, k.resized
}
