// Package viewer implements the interactive model viewer loop.
package viewer

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/sqweek/dialog"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/objviewer/internal/config"
	"github.com/Faultbox/objviewer/internal/engine/camera"
	"github.com/Faultbox/objviewer/internal/engine/debug"
	"github.com/Faultbox/objviewer/internal/engine/gpu"
	"github.com/Faultbox/objviewer/internal/engine/input"
	"github.com/Faultbox/objviewer/internal/engine/lighting"
	"github.com/Faultbox/objviewer/internal/engine/model"
	"github.com/Faultbox/objviewer/internal/engine/renderer"
	"github.com/Faultbox/objviewer/internal/engine/texture"
	"github.com/Faultbox/objviewer/internal/engine/window"
	"github.com/Faultbox/objviewer/internal/importer"
	"github.com/Faultbox/objviewer/internal/logger"
)

const title = "OBJ Viewer"

var boundsColor = mgl32.Vec4{1, 0.8, 0.2, 1}

// Viewer is the main viewer instance.
type Viewer struct {
	cfg     *config.Config
	running bool

	window   *window.Window
	device   *gpu.GLDevice
	renderer *renderer.Renderer
	meshes   *renderer.MeshRenderer
	lines    *renderer.LineRenderer
	textures *texture.Cache
	input    *input.Input
	camera   *camera.OrbitCamera

	mesh       *model.Mesh
	watcher    *Watcher
	wireframe  bool
	showBounds bool
	screenshot *debug.Screenshot
	capture    bool // Save the next frame before presenting it
}

// New creates the window, GL state and texture cache.
func New(cfg *config.Config) (*Viewer, error) {
	logger.Info("initializing viewer",
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
	)

	// Validate import settings before touching the display
	if _, err := importer.Options(cfg.Import, nil); err != nil {
		return nil, err
	}

	v := &Viewer{
		cfg:        cfg,
		input:      input.New(),
		camera:     camera.NewOrbitCamera(),
		screenshot: debug.NewScreenshot(cfg.Viewer.ScreenshotDir, "objview"),
	}

	// Window first, since the GL context must exist for everything else
	var err error
	v.window, err = window.New(window.Config{
		Title:      title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
		Samples:    4,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	v.device, err = gpu.NewGLDevice()
	if err != nil {
		v.window.Close()
		return nil, err
	}

	width, height := v.window.DrawableSize()
	v.renderer = renderer.New(renderer.Config{
		Width:      width,
		Height:     height,
		ClearColor: mgl32.Vec4(cfg.Viewer.ClearColor),
	})

	v.textures = texture.NewCache(v.device, cfg.Import.MaxTextureSize)

	v.meshes, err = renderer.NewMeshRenderer(v.textures.White())
	if err != nil {
		v.textures.Purge()
		v.window.Close()
		return nil, fmt.Errorf("failed to create mesh renderer: %w", err)
	}
	v.meshes.LightDir = lighting.SunDirection(cfg.Viewer.LightAzimuth, cfg.Viewer.LightElevation)

	v.lines, err = renderer.NewLineRenderer()
	if err != nil {
		v.meshes.Close()
		v.textures.Purge()
		v.window.Close()
		return nil, fmt.Errorf("failed to create line renderer: %w", err)
	}

	logger.Info("viewer initialized")
	return v, nil
}

// Open imports path and replaces the current mesh on success, framing it
// and watching its directory. On failure the current mesh stays on screen.
func (v *Viewer) Open(path string) error {
	return v.load(path, false)
}

// Reload reimports the current mesh, keeping the camera where it is.
func (v *Viewer) Reload() error {
	if v.mesh == nil {
		return nil
	}
	return v.load(v.mesh.Path(), true)
}

func (v *Viewer) load(path string, reload bool) error {
	opts, err := importer.Options(v.cfg.Import, v.textures)
	if err != nil {
		return err
	}

	start := time.Now()
	m, err := model.Import(v.device, path, opts)
	if err != nil {
		return err
	}
	logger.Info("model loaded",
		zap.String("path", path),
		zap.Bool("reload", reload),
		zap.Duration("elapsed", time.Since(start)),
	)

	v.install(m, reload)
	v.window.SetTitle(fmt.Sprintf("%s - %s", title, filepath.Base(path)))
	return nil
}

// install makes m the displayed mesh. A fresh open reframes the camera and
// moves the watcher; a reload leaves both alone.
func (v *Viewer) install(m *model.Mesh, reload bool) {
	v.replaceMesh(m)
	if reload {
		return
	}
	v.frame()
	v.watch(m.Path())
}

func (v *Viewer) replaceMesh(m *model.Mesh) {
	if v.mesh != nil {
		if err := v.mesh.Destroy(); err != nil {
			logger.Warn("failed to release previous model", zap.Error(err))
		}
	}
	v.mesh = m
}

// frame points the camera at the whole mesh.
func (v *Viewer) frame() {
	if v.mesh == nil {
		return
	}
	b := v.mesh.Bounds()
	v.camera.FitSphere(b.Center(), b.Radius())
}

func (v *Viewer) watch(path string) {
	if !v.cfg.Viewer.HotReload {
		return
	}
	if v.watcher != nil {
		v.watcher.Close()
		v.watcher = nil
	}
	w, err := NewWatcher(path, DefaultReloadDelay)
	if err != nil {
		logger.Warn("hot reload disabled", zap.String("path", path), zap.Error(err))
		return
	}
	v.watcher = w
}

// OpenDialog asks the user for a model file.
func (v *Viewer) OpenDialog() {
	path, err := dialog.File().
		Title("Open Model").
		Filter("Wavefront OBJ", "obj").
		Load()
	if err != nil {
		if !errors.Is(err, dialog.ErrCancelled) {
			logger.Error("file dialog failed", zap.Error(err))
		}
		return
	}
	v.openLogged(path)
}

func (v *Viewer) openLogged(path string) {
	if err := v.Open(path); err != nil {
		logger.Error("failed to load model", zap.String("path", path), zap.Error(err))
	}
}

func (v *Viewer) reloadLogged() {
	if err := v.Reload(); err != nil {
		logger.Error("failed to reload model", zap.String("path", v.mesh.Path()), zap.Error(err))
	}
}

// Run starts the main loop.
func (v *Viewer) Run() error {
	v.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	logger.Info("starting viewer loop")

	for v.running {
		now := time.Now()
		dt := now.Sub(lastTime)
		lastTime = now

		if v.input.Update() {
			v.running = false
			break
		}
		for _, event := range v.input.Events() {
			v.handleEvent(event)
		}

		v.pollReload()
		v.render()
		if v.capture {
			v.capture = false
			v.saveScreenshot()
		}
		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			logger.Debug("fps", zap.Int("count", frameCount), zap.Duration("dt", dt))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (v *Viewer) handleEvent(event input.Event) {
	switch event.Type {
	case input.EventWindowResize:
		v.renderer.Resize(v.window.DrawableSize())

	case input.EventKeyDown:
		switch event.Key {
		case sdl.SCANCODE_ESCAPE:
			v.running = false
		case sdl.SCANCODE_F:
			v.frame()
		case sdl.SCANCODE_O:
			v.OpenDialog()
		case sdl.SCANCODE_W:
			v.wireframe = !v.wireframe
			v.renderer.SetWireframe(v.wireframe)
		case sdl.SCANCODE_B:
			v.showBounds = !v.showBounds
		case sdl.SCANCODE_P:
			v.capture = true
		case sdl.SCANCODE_R:
			v.reloadLogged()
		}

	case input.EventMouseMove:
		dx, dy := float32(event.DeltaX), float32(event.DeltaY)
		switch {
		case v.input.IsButtonDown(sdl.BUTTON_LEFT):
			v.camera.HandleDrag(dx, dy)
		case v.input.IsButtonDown(sdl.BUTTON_RIGHT), v.input.IsButtonDown(sdl.BUTTON_MIDDLE):
			v.camera.HandlePan(dx, dy)
		}

	case input.EventMouseWheel:
		v.camera.HandleZoom(event.Wheel)

	case input.EventFileDrop:
		v.openLogged(event.Path)
	}
}

// pollReload reimports the model if the watcher saw it change.
func (v *Viewer) pollReload() {
	if v.watcher == nil {
		return
	}
	select {
	case <-v.watcher.Changed():
		logger.Info("model changed on disk, reloading", zap.String("path", v.mesh.Path()))
		v.reloadLogged()
	default:
	}
}

func (v *Viewer) render() {
	v.renderer.Begin()
	if v.mesh != nil {
		view := renderer.View{
			View:       v.camera.ViewMatrix(),
			Projection: v.camera.ProjectionMatrix(v.renderer.Aspect()),
			Eye:        v.camera.Position(),
		}
		v.meshes.Draw(v.mesh, mgl32.Ident4(), view)
		if v.showBounds {
			v.lines.Draw(debug.BoxLines(v.mesh.Bounds(), 0), boundsColor, view)
		}
	}
	v.renderer.End()
}

func (v *Viewer) saveScreenshot() {
	pixels, w, h := v.renderer.ReadPixels()
	path, err := v.screenshot.Save(pixels, w, h)
	if err != nil {
		logger.Error("failed to save screenshot", zap.Error(err))
		return
	}
	logger.Info("screenshot saved", zap.String("path", path))
}

// Close releases the mesh, textures and window.
func (v *Viewer) Close() {
	logger.Info("closing viewer")

	if v.watcher != nil {
		v.watcher.Close()
	}
	v.replaceMesh(nil)
	if v.lines != nil {
		v.lines.Close()
	}
	if v.meshes != nil {
		v.meshes.Close()
	}
	if v.textures != nil {
		if err := v.textures.Purge(); err != nil {
			logger.Warn("failed to release textures", zap.Error(err))
		}
	}
	if v.window != nil {
		v.window.Close()
	}
}
