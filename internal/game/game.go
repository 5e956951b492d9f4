// Package game runs the interactive host: window, renderer, input and
// audio wrapped around a scene loaded from a level file.
package game

import (
	"fmt"
	gomath "math"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/glops/internal/audio"
	"github.com/Faultbox/glops/internal/config"
	"github.com/Faultbox/glops/internal/importer"
	"github.com/Faultbox/glops/internal/input"
	"github.com/Faultbox/glops/internal/logger"
	"github.com/Faultbox/glops/internal/render"
	"github.com/Faultbox/glops/internal/scene"
	"github.com/Faultbox/glops/internal/window"
	"github.com/Faultbox/glops/internal/world"
	"github.com/Faultbox/glops/pkg/math"
)

// maxSteps bounds the fixed steps run for one slow frame.
const maxSteps = 5

// Game is the main host instance.
type Game struct {
	cfg     *config.Config
	log     *zap.Logger
	running bool

	window   *window.Window
	renderer *render.Renderer
	input    *input.Keyboard
	audio    *audio.Manager
	rules    *Rules
	scene    *scene.State
	worlds   *world.Manager
}

// New creates the window, renderer, audio and scene, then loads the
// configured level.
func New(cfg *config.Config) (*Game, error) {
	g := &Game{cfg: cfg, log: logger.Named("game")}
	g.log.Info("initializing game",
		zap.String("title", cfg.Window.Title),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
	)

	var err error
	g.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	}, logger.Named("window"))
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// The renderer needs the GL context the window just made.
	g.renderer, err = render.New(logger.Named("render"))
	if err != nil {
		g.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	g.renderer.Resize(g.window.Size())

	g.audio = audio.New(logger.Named("audio"))
	g.audio.SetMasterVolume(float64(cfg.Audio.MasterVolume))
	g.audio.SetMusicVolume(float64(cfg.Audio.MusicVolume))
	g.audio.SetSFXVolume(float64(cfg.Audio.SFXVolume))
	g.audio.SetMuted(cfg.Audio.Muted)
	if err := g.audio.Init(cfg.Audio.SampleRate); err != nil {
		// Sound is optional; plays fail and are logged once each.
		g.log.Warn("audio unavailable", zap.Error(err))
	}

	g.input = input.New(nil)
	g.rules = NewRules(logger.Named("rules"), nil)
	g.rules.OnSelect = func(name string) {
		if name == "" {
			g.window.SetTitle(cfg.Window.Title)
			return
		}
		g.window.SetTitle(fmt.Sprintf("%s [%s]", cfg.Window.Title, name))
	}

	sceneLog := logger.Named("scene")
	g.scene = scene.New(cfg.SceneOptions(), scene.Deps{
		Render: g.renderer,
		Audio:  g.audio,
		Input:  g.input,
		Hooks:  g.rules,
		Log:    sceneLog,
		Diag:   logger.NewDiagnostics(sceneLog),
	})
	g.renderer.Bind(g.scene)
	g.worlds = world.NewManager()

	if cfg.World.Level != "" {
		if err := g.LoadLevel(cfg.World.Level); err != nil {
			g.Close()
			return nil, err
		}
	}

	g.log.Info("game initialized successfully")
	return g, nil
}

// LoadLevel imports a level into the scene.
func (g *Game) LoadLevel(path string) error {
	schema, err := g.cfg.Mesh.Schema()
	if err != nil {
		return err
	}
	ilog := logger.Named("importer")
	im, err := importer.New(importer.Options{
		Schema:         schema,
		DeclaredStride: g.cfg.Mesh.DeclaredStride,
		StrictStride:   g.cfg.Mesh.StrictSchema,
	}, ilog, logger.NewDiagnostics(ilog))
	if err != nil {
		return err
	}
	rep, err := g.worlds.LoadLevel(path, g.scene, im, importer.YAMLLoader{})
	if err != nil {
		return err
	}
	for _, line := range rep.Lines() {
		g.log.Debug(line)
	}
	return nil
}

// Run starts the main loop. The scene advances in fixed steps of one
// frame at the configured rate.
func (g *Game) Run() error {
	g.running = true
	step := 1.0 / float64(g.cfg.World.FramesPerSecond)
	var acc float64

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	g.log.Info("starting game loop")

	for g.running {
		now := time.Now()
		acc += now.Sub(lastTime).Seconds()
		lastTime = now

		if g.input.Update() {
			g.running = false
			break
		}
		if w, h, ok := g.input.Resized(); ok {
			g.renderer.Resize(w, h)
		}
		g.look()
		if g.input.Clicked() {
			if err := g.scene.UseSelected(scene.CameraIndex); err != nil {
				g.log.Warn("use failed", zap.Error(err))
			}
		}

		for n := 0; acc >= step && n < maxSteps; n++ {
			g.scene.Step(step)
			acc -= step
		}
		if acc > step {
			acc = 0
		}

		g.render()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			g.log.Debug("fps", zap.Int("fps", frameCount), zap.Int("entities", g.scene.Len()))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	g.log.Info("game loop ended")
	return nil
}

// look points the camera where the pointer is.
func (g *Game) look() {
	x, y := g.input.Pointer()
	w, h := g.window.Size()
	yaw, pitch := scene.ViewAnglesFromPointer(float64(x), float64(y), w, h)
	sens := g.cfg.Player.MouseSensitivity
	pitch = math.Clamp(pitch*sens, -gomath.Pi/2, gomath.Pi/2)
	_ = g.scene.SetRotation(scene.CameraIndex, math.Vec3{X: pitch, Y: yaw * sens})
}

func (g *Game) render() {
	g.renderer.Begin()
	proj := math.Perspective(math.Radians(g.cfg.Window.FOV), g.window.Aspect(), 0.05, 500)
	g.renderer.Draw(render.CameraView(g.scene), proj)
	g.window.SwapBuffers()
}

// Close releases everything New created.
func (g *Game) Close() {
	g.log.Info("closing game")
	if g.audio != nil {
		g.audio.Close()
	}
	if g.renderer != nil {
		g.renderer.Close()
	}
	if g.window != nil {
		g.window.Close()
	}
}
