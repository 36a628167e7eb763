// Package app implements the viewer's main loop.
package app

import (
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/inkreveal/internal/config"
	"github.com/Faultbox/inkreveal/internal/demo"
	"github.com/Faultbox/inkreveal/internal/engine/camera"
	"github.com/Faultbox/inkreveal/internal/engine/capture"
	"github.com/Faultbox/inkreveal/internal/engine/input"
	"github.com/Faultbox/inkreveal/internal/engine/outline"
	"github.com/Faultbox/inkreveal/internal/engine/renderer"
	"github.com/Faultbox/inkreveal/internal/engine/texture"
	"github.com/Faultbox/inkreveal/internal/engine/theme"
	"github.com/Faultbox/inkreveal/internal/engine/window"
	"github.com/Faultbox/inkreveal/internal/logger"
)

// Title is the window title.
const Title = "Ink Reveal"

// maxTextureSize caps the size of a configured surface texture.
const maxTextureSize = 1024

// thresholdStep is how far one sharper/softer key press moves the crease
// threshold, in degrees.
const thresholdStep = 5.0

// App is the viewer instance.
type App struct {
	cfg     *config.Config
	running bool

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input

	camera   *camera.OrbitCamera
	capture  *capture.Capture
	bus      *theme.Bus
	scene    *demo.Scene
	entities []*outline.Entity

	unsubscribe func()
	shotPending bool
}

// New creates the window, renderer and demo scene.
func New(cfg *config.Config) (*App, error) {
	logger.Info("initializing viewer",
		zap.Int("width", cfg.Graphics.Width),
		zap.Int("height", cfg.Graphics.Height),
		zap.String("theme", cfg.Theme.Mode),
	)

	a := &App{cfg: cfg}

	// Create window (this also creates OpenGL context)
	var err error
	a.window, err = window.New(window.Config{
		Title:      Title,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
		MSAA:       cfg.Graphics.MSAA,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Create renderer (AFTER window, since OpenGL context must exist)
	width, height := a.window.GetSize()
	a.bus = theme.New(cfg.ThemeMode(), cfg.Palettes())
	a.renderer, err = renderer.New(renderer.Config{
		Width:      width,
		Height:     height,
		Background: a.bus.Palette().Background,
	})
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	a.unsubscribe = a.bus.Subscribe(func(m theme.Mode) {
		a.renderer.SetBackground(a.bus.Palette().Background)
		logger.Info("theme changed", zap.Stringer("mode", m))
	})

	a.input = input.New()
	a.capture = capture.New(cfg.Graphics.ScreenshotDir, "inkreveal")

	a.camera = camera.NewOrbitCamera(cfg.Graphics.FOVDegrees, 1)
	a.camera.SetAspect(width, height)

	if err := a.buildScene(); err != nil {
		a.Close()
		return nil, err
	}

	logger.Info("viewer initialized successfully", zap.Int("entities", len(a.entities)))
	return a, nil
}

func (a *App) buildScene() error {
	var tex *texture.Texture
	if path := a.cfg.Toon.Texture; path != "" {
		var err error
		tex, err = texture.Load(path, maxTextureSize)
		if err != nil {
			return fmt.Errorf("load texture: %w", err)
		}
		logger.Info("texture loaded", zap.String("path", path),
			zap.Int("width", tex.Width()), zap.Int("height", tex.Height()))
	}

	opts := a.cfg.OutlineOptions()
	s, err := demo.Build(a.bus, opts.Toon, tex)
	if err != nil {
		return fmt.Errorf("build demo scene: %w", err)
	}
	a.scene = s
	a.camera.FitToBounds(s.Bounds())

	env := outline.Env{Bus: a.bus, Viewer: a.camera}
	for _, root := range s.Roots {
		e, err := outline.Mount(s.Graph, root, env, opts)
		if err != nil {
			return fmt.Errorf("mount entity: %w", err)
		}
		a.entities = append(a.entities, e)
	}
	return nil
}

// Run starts the main loop.
func (a *App) Run() error {
	a.running = true

	frameCount := 0
	fpsTimer := time.Now()
	a.window.Tick()

	logger.Info("starting viewer loop")

	for a.running {
		dt := a.window.Tick()

		// 1. Process input
		if a.input.Update() {
			a.running = false
			break
		}
		a.handleInput()

		// 2. Update scene state
		a.update(dt)

		// 3. Render
		if err := a.render(); err != nil {
			return fmt.Errorf("render error: %w", err)
		}

		if a.shotPending {
			a.shotPending = false
			a.screenshot()
		}

		// 4. Present (swap buffers)
		a.window.SwapBuffers()

		// FPS counter
		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			stats := a.renderer.Stats()
			logger.Debug("fps",
				zap.Int("count", frameCount),
				zap.Float32("dtMs", dt*1000),
				zap.Int("opaque", stats.Opaque),
				zap.Int("transparent", stats.Transparent),
				zap.Int("segments", stats.Segments))
			a.window.SetTitle(fmt.Sprintf("%s - %d fps", Title, frameCount))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (a *App) handleInput() {
	for _, event := range a.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			a.renderer.Resize(event.Width, event.Height)
			a.camera.SetAspect(event.Width, event.Height)
		case input.EventMouseMove:
			if a.input.Dragging() {
				a.camera.HandleDrag(event.DeltaX, event.DeltaY)
			}
		case input.EventMouseWheel:
			a.camera.HandleZoom(event.DeltaY)
		}
	}

	for _, action := range a.input.Actions() {
		switch action {
		case input.ActionQuit:
			a.running = false
		case input.ActionToggleTheme:
			a.bus.Toggle()
		case input.ActionReplay:
			logger.Info("replaying reveals")
			for _, e := range a.entities {
				e.Replay()
			}
		case input.ActionSharper:
			a.setThreshold(a.cfg.Outline.ThresholdAngle - thresholdStep)
		case input.ActionSofter:
			a.setThreshold(a.cfg.Outline.ThresholdAngle + thresholdStep)
		case input.ActionScreenshot:
			a.shotPending = true
		}
	}
}

// setThreshold rebuilds every outline with a new crease threshold.
func (a *App) setThreshold(deg float64) {
	deg = min(180, max(0, deg))
	if deg == a.cfg.Outline.ThresholdAngle {
		return
	}
	a.cfg.Outline.ThresholdAngle = deg
	for _, e := range a.entities {
		if err := e.Rebuild(a.cfg.EdgeOptions()); err != nil {
			logger.Error("outline rebuild failed", zap.Error(err))
		}
	}
}

// screenshot saves the back buffer; call it after rendering and before the
// swap.
func (a *App) screenshot() {
	pixels, w, h := a.renderer.ReadPixels()
	path, err := a.capture.SavePixels(pixels, w, h)
	if err != nil {
		logger.Error("screenshot failed", zap.Error(err))
		return
	}
	logger.Info("screenshot saved", zap.String("path", path))
}

func (a *App) update(dt float32) {
	a.scene.Animate(dt)
	for _, e := range a.entities {
		e.Update(dt)
	}
}

func (a *App) render() error {
	a.renderer.Begin()
	err := a.renderer.Draw(a.scene.Graph, a.camera.ViewProjection(), a.camera.Position())
	a.renderer.End()
	return err
}

// Close unmounts every entity and releases the scene, renderer and window.
func (a *App) Close() {
	logger.Info("closing viewer")

	var err error
	for _, e := range a.entities {
		err = multierr.Append(err, e.Unmount())
	}
	if a.scene != nil {
		for _, root := range a.scene.Roots {
			err = multierr.Append(err, a.scene.Graph.Remove(root))
		}
	}
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	if a.renderer != nil {
		err = multierr.Append(err, a.renderer.Close())
	}
	if err != nil {
		logger.Warn("teardown reported errors", zap.Errors("errors", multierr.Errors(err)))
	}
	if a.window != nil {
		a.window.Close()
	}
}
