// Package viewer implements the model viewer application loop.
package viewer

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/yggdrasil/internal/config"
	"github.com/Faultbox/yggdrasil/internal/engine/camera"
	"github.com/Faultbox/yggdrasil/internal/engine/input"
	"github.com/Faultbox/yggdrasil/internal/engine/model"
	"github.com/Faultbox/yggdrasil/internal/engine/renderer"
	"github.com/Faultbox/yggdrasil/internal/engine/scene"
	"github.com/Faultbox/yggdrasil/internal/engine/window"
)

// Viewer owns the window, the loaded model and the frame loop. Everything
// runs on the main thread: input, animation stepping and rendering happen
// once per frame in that order.
type Viewer struct {
	cfg     *config.Config
	running bool

	window   *window.Window
	glctx    *renderer.Context
	renderer *scene.ModelRenderer
	input    *input.Input
	camera   *camera.OrbitCamera
	model    *model.Model

	width  int
	height int

	paused   bool
	speed    float32
	dragging bool
	panning  bool
}

// New creates the window and GL context, loads the configured asset and
// uploads it to the GPU.
func New(cfg *config.Config) (*Viewer, error) {
	if cfg.Viewer.ModelPath == "" {
		return nil, fmt.Errorf("no model path given (flag -model, positional argument, or viewer.model_path in config)")
	}

	slog.Info("initializing viewer",
		"model", cfg.Viewer.ModelPath,
		"width", cfg.Graphics.Width,
		"height", cfg.Graphics.Height,
	)

	v := &Viewer{
		cfg:    cfg,
		width:  cfg.Graphics.Width,
		height: cfg.Graphics.Height,
		paused: cfg.Viewer.Paused,
		speed:  float32(cfg.Viewer.PlaybackSpeed),
	}
	if v.speed <= 0 {
		v.speed = 1
	}

	var err error
	v.window, err = window.New(window.Config{
		Title:      "Yggdrasil",
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	pw, ph := v.window.DrawableSize()
	v.glctx, err = renderer.New(renderer.Config{Width: pw, Height: ph})
	if err != nil {
		v.window.Close()
		return nil, err
	}

	v.renderer, err = scene.NewModelRenderer()
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	v.renderer.SetWireframe(cfg.Viewer.Wireframe)

	if err := v.loadModel(cfg.Viewer.ModelPath); err != nil {
		v.renderer.Destroy()
		v.window.Close()
		return nil, err
	}

	v.input = input.New()

	slog.Info("viewer initialized",
		"nodes", len(v.model.MeshNodes),
		"vertices", v.model.Geometry.VertexCount(),
		"animations", v.model.AnimationNames(),
	)
	return v, nil
}

func (v *Viewer) loadModel(path string) error {
	doc, err := gltf.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}

	name := filepath.Base(path)
	m, err := model.LoadDocument(doc, name)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	v.model = m

	if err := v.renderer.Upload(m, filepath.Dir(path)); err != nil {
		return err
	}

	v.camera = camera.NewOrbitCamera()
	min, max, ok := worldBounds(m)
	if ok {
		v.camera.FitToBounds(min, max)
	}

	m.SetActiveAnimation(v.cfg.Viewer.Animation)
	v.updateTitle()
	return nil
}

// worldBounds computes the model's axis-aligned bounds in world space at
// rest pose, walking every indexed vertex of every renderable node.
func worldBounds(m *model.Model) (min, max mgl32.Vec3, ok bool) {
	min = mgl32.Vec3{1e30, 1e30, 1e30}
	max = mgl32.Vec3{-1e30, -1e30, -1e30}

	for _, node := range m.MeshNodes {
		world := node.WorldMatrix()
		for _, p := range node.Primitives {
			for _, idx := range m.Geometry.Indices[p.FirstIndex : p.FirstIndex+p.IndexCount] {
				pos := mgl32.TransformCoordinate(m.Geometry.Vertices[idx].Position, world)
				for c := 0; c < 3; c++ {
					if pos[c] < min[c] {
						min[c] = pos[c]
					}
					if pos[c] > max[c] {
						max[c] = pos[c]
					}
				}
				ok = true
			}
		}
	}
	return min, max, ok
}

// Run starts the main loop.
func (v *Viewer) Run() error {
	v.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	var frameBudget time.Duration
	if v.cfg.Graphics.FPSLimit > 0 {
		frameBudget = time.Second / time.Duration(v.cfg.Graphics.FPSLimit)
	}

	slog.Info("starting viewer loop")

	for v.running {
		frameStart := time.Now()
		dt := frameStart.Sub(lastTime).Seconds()
		lastTime = frameStart

		if v.input.Update() {
			break
		}
		v.handleEvents()

		if !v.paused && v.model.AnimationCount() > 0 {
			v.model.Advance(float32(dt) * v.speed)
		}

		v.render()
		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			if v.cfg.Viewer.ShowFPS {
				slog.Info("fps", "count", frameCount, "dt", fmt.Sprintf("%.2fms", dt*1000))
			}
			frameCount = 0
			fpsTimer = time.Now()
		}

		if frameBudget > 0 {
			if remaining := frameBudget - time.Since(frameStart); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	}

	return nil
}

func (v *Viewer) handleEvents() {
	for _, event := range v.input.Events() {
		switch event.Type {
		case input.EventQuit:
			v.running = false

		case input.EventWindowResize:
			v.width = event.Width
			v.height = event.Height

		case input.EventKeyDown:
			v.handleKey(event.Key)

		case input.EventMouseDown:
			if event.Button == sdl.BUTTON_LEFT {
				v.dragging = true
			} else if event.Button == sdl.BUTTON_RIGHT || event.Button == sdl.BUTTON_MIDDLE {
				v.panning = true
			}

		case input.EventMouseUp:
			if event.Button == sdl.BUTTON_LEFT {
				v.dragging = false
			} else if event.Button == sdl.BUTTON_RIGHT || event.Button == sdl.BUTTON_MIDDLE {
				v.panning = false
			}

		case input.EventMouseMove:
			if v.dragging {
				v.camera.HandleDrag(float32(event.RelX), float32(event.RelY))
			} else if v.panning {
				v.camera.HandlePan(float32(event.RelX), float32(event.RelY))
			}

		case input.EventMouseWheel:
			v.camera.HandleZoom(float32(event.WheelY))
		}
	}
}

func (v *Viewer) handleKey(key sdl.Scancode) {
	switch key {
	case sdl.SCANCODE_ESCAPE, sdl.SCANCODE_Q:
		v.running = false

	case sdl.SCANCODE_SPACE:
		v.paused = !v.paused
		slog.Info("playback", "paused", v.paused)

	case sdl.SCANCODE_W:
		v.renderer.SetWireframe(!v.renderer.Wireframe())

	case sdl.SCANCODE_LEFT:
		v.selectAnimation(v.model.Active - 1)

	case sdl.SCANCODE_RIGHT:
		v.selectAnimation(v.model.Active + 1)

	default:
		// Number keys select a clip directly; 0 maps to clip 9.
		if key >= sdl.SCANCODE_1 && key <= sdl.SCANCODE_0 {
			v.selectAnimation(int(key - sdl.SCANCODE_1))
		}
	}
}

func (v *Viewer) selectAnimation(index int) {
	if index < 0 || index >= v.model.AnimationCount() {
		return
	}
	v.model.SetActiveAnimation(index)
	slog.Info("animation selected", "index", index, "name", v.model.Animations[index].Name)
	v.updateTitle()
}

func (v *Viewer) updateTitle() {
	title := "Yggdrasil - " + v.model.Name
	if v.model.Active >= 0 && v.model.Active < v.model.AnimationCount() {
		title += " [" + v.model.Animations[v.model.Active].Name + "]"
	}
	v.window.SetTitle(title)
}

func (v *Viewer) render() {
	if pw, ph := v.window.DrawableSize(); !sizeEquals(v.glctx, pw, ph) {
		v.glctx.Resize(pw, ph)
	}
	v.glctx.BeginFrame()

	aspect := float32(v.width) / float32(v.height)
	proj := mgl32.Perspective(mgl32.DegToRad(45), aspect, 0.01, 1000)
	view := v.camera.ViewMatrix()

	v.renderer.Render(view, proj)
}

func sizeEquals(c *renderer.Context, w, h int) bool {
	cw, ch := c.Size()
	return cw == w && ch == h
}

// Close releases all resources.
func (v *Viewer) Close() {
	slog.Info("closing viewer")

	if v.renderer != nil {
		v.renderer.Destroy()
	}
	if v.window != nil {
		v.window.Close()
	}
}
