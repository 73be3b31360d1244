// Package viewer implements the interactive mesh viewer loop.
package viewer

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/meshkit/internal/config"
	"github.com/Faultbox/meshkit/internal/engine/camera"
	"github.com/Faultbox/meshkit/internal/engine/debug"
	"github.com/Faultbox/meshkit/internal/engine/glmesh"
	"github.com/Faultbox/meshkit/internal/engine/input"
	"github.com/Faultbox/meshkit/internal/engine/lighting"
	"github.com/Faultbox/meshkit/internal/engine/picking"
	"github.com/Faultbox/meshkit/internal/engine/renderer"
	"github.com/Faultbox/meshkit/internal/engine/window"
	"github.com/Faultbox/meshkit/internal/logger"
	"github.com/Faultbox/meshkit/internal/watch"
	"github.com/Faultbox/meshkit/pkg/formats"
	"github.com/Faultbox/meshkit/pkg/mesh"
)

// model is one uploaded mesh.
type model struct {
	name       string
	gpu        *glmesh.Mesh
	hasNormals bool
	pick       func(picking.Ray) (picking.Hit, bool, error)
}

// Viewer owns the window, GL state and the uploaded meshes.
type Viewer struct {
	running  bool
	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	camera   *camera.OrbitCamera

	models    []model
	bounds    mesh.Bounds
	hasBounds bool

	// Debug overlays, rebuilt when the bounds change.
	boundsMesh *glmesh.Mesh
	gridMesh   *glmesh.Mesh
	showBounds bool
	showGrid   bool
	screenshot *debug.ScreenshotCapture
	capture    bool // save the next rendered frame

	watcher *watch.Watcher
	reload  func(path string)

	// OnDrop is called for files dropped on the window.
	OnDrop func(path string)
}

// New creates the window and renderer.
func New(cfg config.ViewerConfig, title string) (*Viewer, error) {
	v := &Viewer{
		camera:     camera.NewOrbitCamera(),
		showGrid:   true,
		screenshot: debug.NewScreenshotCapture("", "meshkit"),
	}
	v.camera.FOV = cfg.FOV

	var err error
	v.window, err = window.New(window.Config{
		Title:      title,
		Width:      cfg.Width,
		Height:     cfg.Height,
		Fullscreen: cfg.Fullscreen,
		VSync:      cfg.VSync,
		Samples:    4,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// The renderer needs the GL context the window created.
	width, height := v.window.Size()
	v.renderer, err = renderer.New(renderer.Config{
		Width:      width,
		Height:     height,
		ClearColor: cfg.ClearColor,
		Wireframe:  cfg.Wireframe,
		LightDir:   lighting.LightDirection(cfg.SunLongitude, cfg.SunLatitude),
	})
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	v.input = input.New()
	return v, nil
}

// Add binds m to the viewer's shader inputs and uploads it.
func Add[I mesh.Index](v *Viewer, name string, m *mesh.IndexedMesh[I]) error {
	layout, bound := v.renderer.Bind(m.Vertices.Layout)
	if bound == 0 {
		logger.Warn("no attribute matches a shader input, using default locations",
			zap.String("mesh", name), zap.Stringer("layout", m.Vertices.Layout))
		layout = m.Vertices.Layout
		layout.AssignDefaultLocations()
		bound = layout.Len()
	}

	bounds, err := mesh.ComputeBounds(m.Vertices, formats.AttrPosition)
	if err != nil {
		return fmt.Errorf("mesh %q: %w", name, err)
	}

	// Shallow copy; only the layout locations differ.
	withLocations := *m
	withLocations.Vertices.Layout = layout
	gpu, err := glmesh.Upload(&withLocations)
	if err != nil {
		return fmt.Errorf("mesh %q: %w", name, err)
	}

	normal, ok := layout.Find(formats.AttrNormal)
	v.models = append(v.models, model{
		name:       name,
		gpu:        gpu,
		hasNormals: ok && normal.HasLocation(),
		pick: func(r picking.Ray) (picking.Hit, bool, error) {
			return picking.PickTriangle(r, m, formats.AttrPosition)
		},
	})

	if v.hasBounds {
		v.bounds = v.bounds.Union(bounds)
	} else {
		v.bounds, v.hasBounds = bounds, true
	}
	v.camera.FitToBounds(v.bounds)
	if err := v.rebuildOverlays(); err != nil {
		return err
	}

	logger.Info("mesh added to viewer",
		zap.String("name", name),
		zap.Int("vertices", m.VertexCount()),
		zap.Int("indices", len(m.Indices)),
		zap.Int("bound_attributes", bound))
	return nil
}

// Clear deletes all uploaded meshes.
func (v *Viewer) Clear() {
	for _, m := range v.models {
		m.gpu.Delete()
	}
	v.models = nil
	v.hasBounds = false
	v.deleteOverlays()
}

func (v *Viewer) rebuildOverlays() error {
	v.deleteOverlays()

	box, err := debug.BoundsMesh(v.bounds, 0)
	if err != nil {
		return err
	}
	grid, err := debug.GridMesh(v.bounds, 10)
	if err != nil {
		return err
	}

	if v.boundsMesh, err = uploadOverlay(v, box); err != nil {
		return err
	}
	v.gridMesh, err = uploadOverlay(v, grid)
	return err
}

func (v *Viewer) deleteOverlays() {
	if v.boundsMesh != nil {
		v.boundsMesh.Delete()
		v.boundsMesh = nil
	}
	if v.gridMesh != nil {
		v.gridMesh.Delete()
		v.gridMesh = nil
	}
}

func (v *Viewer) takeScreenshot() {
	pixels, w, h := v.renderer.ReadPixels()
	path, err := v.screenshot.CaptureFromPixels(pixels, w, h)
	if err != nil {
		logger.Warn("screenshot failed", zap.Error(err))
		return
	}
	logger.Info("screenshot saved", zap.String("path", path))
}

// Watch calls reload on the render thread whenever path changes on disk.
// A previous watch is replaced.
func (v *Viewer) Watch(path string, reload func(path string)) error {
	w, err := watch.New(path, watch.DefaultDelay)
	if err != nil {
		return err
	}
	v.stopWatch()
	v.watcher, v.reload = w, reload
	return nil
}

func (v *Viewer) stopWatch() {
	if v.watcher == nil {
		return
	}
	if err := v.watcher.Close(); err != nil {
		logger.Warn("closing file watcher", zap.Error(err))
	}
	v.watcher = nil
}

// pollWatch runs a pending reload without blocking the frame.
func (v *Viewer) pollWatch() {
	if v.watcher == nil {
		return
	}
	select {
	case path, ok := <-v.watcher.Changes():
		if ok {
			logger.Info("file changed, reloading", zap.String("path", path))
			v.reload(path)
		}
	default:
	}
}

// Run starts the render loop and returns when the window closes.
func (v *Viewer) Run() error {
	v.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	logger.Debug("starting viewer loop", zap.Int("meshes", len(v.models)))

	for v.running {
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		if v.input.Update() {
			v.running = false
			break
		}
		v.handleEvents()
		v.pollWatch()

		v.render()
		if v.capture {
			v.takeScreenshot()
			v.capture = false
		}
		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			logger.Debug("fps", zap.Int("count", frameCount), zap.Float64("dt_ms", dt*1000))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (v *Viewer) handleEvents() {
	for _, event := range v.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			v.renderer.Resize(v.window.Size())
		case input.EventMouseMove:
			if v.input.IsButtonDown(sdl.BUTTON_LEFT) {
				v.camera.HandleDrag(float32(event.DeltaX), float32(event.DeltaY))
			}
		case input.EventMouseDown:
			if event.Button == sdl.BUTTON_RIGHT {
				v.pick(event.MouseX, event.MouseY)
			}
		case input.EventMouseWheel:
			v.camera.HandleZoom(float32(event.DeltaY))
		case input.EventFileDrop:
			if v.OnDrop != nil {
				v.OnDrop(event.Path)
			}
		case input.EventKeyDown:
			switch event.Key {
			case sdl.SCANCODE_ESCAPE, sdl.SCANCODE_Q:
				v.running = false
			case sdl.SCANCODE_F:
				if v.hasBounds {
					v.camera.FitToBounds(v.bounds)
				}
			case sdl.SCANCODE_W:
				v.renderer.ToggleWireframe()
			case sdl.SCANCODE_B:
				v.showBounds = !v.showBounds
			case sdl.SCANCODE_G:
				v.showGrid = !v.showGrid
			case sdl.SCANCODE_F12:
				v.capture = true
			}
		}
	}
}

// pick logs the nearest triangle under the cursor.
func (v *Viewer) pick(x, y int) {
	if !v.hasBounds {
		return
	}
	w, h := v.window.PointSize()
	viewProj := v.camera.ProjectionMatrix(v.renderer.Aspect()).Mul4(v.camera.ViewMatrix())
	ray := picking.ScreenToRay(float32(x), float32(y), float32(w), float32(h), viewProj.Inv())
	if _, ok := ray.IntersectBounds(v.bounds); !ok {
		return
	}

	var (
		best  picking.Hit
		owner string
		found bool
	)
	for _, m := range v.models {
		hit, ok, err := m.pick(ray)
		if err != nil {
			logger.Debug("mesh not pickable", zap.String("mesh", m.name), zap.Error(err))
			continue
		}
		if ok && (!found || hit.Distance < best.Distance) {
			best, owner, found = hit, m.name, true
		}
	}
	if !found {
		return
	}

	logger.Info("picked triangle",
		zap.String("mesh", owner),
		zap.Int("triangle", best.Triangle),
		zap.Ints("vertices", best.Vertices[:]),
		zap.Float32s("point", best.Point[:]))
}

func (v *Viewer) render() {
	v.renderer.Begin()

	frame := renderer.Frame{
		View:       v.camera.ViewMatrix(),
		Projection: v.camera.ProjectionMatrix(v.renderer.Aspect()),
		Eye:        v.camera.Position(),
	}
	for _, m := range v.models {
		frame.HasNormals = m.hasNormals
		v.renderer.Draw(m.gpu, mgl32.Ident4(), frame)
	}
	if v.showGrid && v.gridMesh != nil {
		v.renderer.DrawUnlit(v.gridMesh, mgl32.Vec3{0.35, 0.35, 0.4}, frame)
	}
	if v.showBounds && v.boundsMesh != nil {
		v.renderer.DrawUnlit(v.boundsMesh, mgl32.Vec3{1, 0.8, 0.2}, frame)
	}
}

// Close releases GPU resources and the window.
func (v *Viewer) Close() {
	logger.Debug("closing viewer")

	v.stopWatch()
	v.Clear()
	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}

// uploadOverlay binds an overlay line mesh to the shader and uploads it.
func uploadOverlay[I mesh.Index](v *Viewer, m *mesh.IndexedMesh[I]) (*glmesh.Mesh, error) {
	layout, _ := v.renderer.Bind(m.Vertices.Layout)
	withLocations := *m
	withLocations.Vertices.Layout = layout
	return glmesh.Upload(&withLocations)
}
