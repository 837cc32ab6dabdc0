// Package renderer owns global OpenGL state: context initialization,
// default render state and per-frame viewport/clear handling.
package renderer

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/yggdrasil/internal/logger"
	"github.com/go-gl/gl/v4.1-core/gl"
)

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
}

// Context tracks the GL drawable size and frame state.
type Context struct {
	config Config
}

// New loads the OpenGL function pointers and sets up default state.
// IMPORTANT: Must be called AFTER the OpenGL context is created!
func New(cfg Config) (*Context, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	version := gl.GoStr(gl.GetString(gl.VERSION))
	rendererName := gl.GoStr(gl.GetString(gl.RENDERER))
	logger.Info("OpenGL initialized",
		zap.String("version", version),
		zap.String("renderer", rendererName),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.ClearColor(0.12, 0.12, 0.14, 1.0)

	return &Context{config: cfg}, nil
}

// Resize handles a drawable size change.
func (c *Context) Resize(width, height int) {
	c.config.Width = width
	c.config.Height = height
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// BeginFrame sets the viewport and clears the buffers.
func (c *Context) BeginFrame() {
	gl.Viewport(0, 0, int32(c.config.Width), int32(c.config.Height))
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Size returns the current drawable size.
func (c *Context) Size() (int, int) {
	return c.config.Width, c.config.Height
}
