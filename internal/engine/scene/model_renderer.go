// Package scene renders loaded models with OpenGL.
package scene

import (
	"fmt"
	"image"
	"log/slog"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/yggdrasil/internal/engine/model"
	"github.com/Faultbox/yggdrasil/internal/engine/scene/shaders"
	"github.com/Faultbox/yggdrasil/internal/engine/shader"
	"github.com/Faultbox/yggdrasil/internal/engine/texture"
)

// ModelRenderer draws one loaded model. The model's flattened geometry is
// uploaded once into a single VBO/EBO pair; every frame re-reads the node
// transforms so animation shows up without touching the buffers.
type ModelRenderer struct {
	program uint32

	locProj            int32
	locView            int32
	locModel           int32
	locBaseColorFactor int32
	locLightDir        int32
	locTexture         int32

	vao uint32
	vbo uint32
	ebo uint32

	// GPU texture per model texture slot, fallbackTex where loading failed.
	textures    []uint32
	fallbackTex uint32

	model     *model.Model
	wireframe bool
}

// NewModelRenderer compiles the model shader and creates the fallback
// texture. Requires a current GL context.
func NewModelRenderer() (*ModelRenderer, error) {
	mr := &ModelRenderer{}

	program, err := shader.CompileProgram(shaders.ModelVertexShader, shaders.ModelFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("model shader: %w", err)
	}
	mr.program = program

	mr.locProj = shader.GetUniform(program, "uProj")
	mr.locView = shader.GetUniform(program, "uView")
	mr.locModel = shader.GetUniform(program, "uModel")
	mr.locBaseColorFactor = shader.GetUniform(program, "uBaseColorFactor")
	mr.locLightDir = shader.GetUniform(program, "uLightDir")
	mr.locTexture = shader.GetUniform(program, "uTexture")

	mr.fallbackTex = mr.uploadWhiteTexture()

	return mr, nil
}

// Upload pushes the model's geometry and textures to the GPU. baseDir
// resolves external image URIs and is normally the asset's directory.
func (mr *ModelRenderer) Upload(m *model.Model, baseDir string) error {
	if len(m.Geometry.Vertices) == 0 || len(m.Geometry.Indices) == 0 {
		return fmt.Errorf("model %q has no renderable geometry", m.Name)
	}
	mr.releaseModel()
	mr.model = m

	gl.GenVertexArrays(1, &mr.vao)
	gl.BindVertexArray(mr.vao)

	gl.GenBuffers(1, &mr.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, mr.vbo)
	vertexSize := int(unsafe.Sizeof(model.Vertex{}))
	gl.BufferData(gl.ARRAY_BUFFER, len(m.Geometry.Vertices)*vertexSize, unsafe.Pointer(&m.Geometry.Vertices[0]), gl.STATIC_DRAW)

	// Position
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, int32(vertexSize), 0)
	gl.EnableVertexAttribArray(0)
	// Normal
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, int32(vertexSize), 3*4)
	gl.EnableVertexAttribArray(1)
	// TexCoord
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, int32(vertexSize), 6*4)
	gl.EnableVertexAttribArray(2)
	// Color
	gl.VertexAttribPointerWithOffset(3, 3, gl.FLOAT, false, int32(vertexSize), 8*4)
	gl.EnableVertexAttribArray(3)

	gl.GenBuffers(1, &mr.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, mr.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Geometry.Indices)*4, unsafe.Pointer(&m.Geometry.Indices[0]), gl.STATIC_DRAW)

	gl.BindVertexArray(0)

	mr.uploadTextures(m, baseDir)
	return nil
}

func (mr *ModelRenderer) uploadTextures(m *model.Model, baseDir string) {
	mr.textures = make([]uint32, len(m.Textures))
	for i, tex := range m.Textures {
		mr.textures[i] = mr.fallbackTex
		if tex.ImageIndex < 0 || tex.ImageIndex >= len(m.Images) {
			continue
		}
		rgba, err := texture.Load(m.Images[tex.ImageIndex], baseDir)
		if err != nil {
			slog.Warn("texture load failed, using fallback", "model", m.Name, "texture", i, "error", err)
			continue
		}
		mr.textures[i] = mr.uploadTexture(rgba)
	}
}

func (mr *ModelRenderer) uploadTexture(img *image.RGBA) uint32 {
	var texID uint32
	gl.GenTextures(1, &texID)
	gl.BindTexture(gl.TEXTURE_2D, texID)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(img.Bounds().Dx()), int32(img.Bounds().Dy()), 0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pix[0]))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	return texID
}

func (mr *ModelRenderer) uploadWhiteTexture() uint32 {
	var texID uint32
	pixel := []uint8{255, 255, 255, 255}
	gl.GenTextures(1, &texID)
	gl.BindTexture(gl.TEXTURE_2D, texID)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, 1, 1, 0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pixel[0]))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	return texID
}

// SetWireframe switches between filled and line rendering.
func (mr *ModelRenderer) SetWireframe(on bool) { mr.wireframe = on }

// Wireframe reports the current fill mode.
func (mr *ModelRenderer) Wireframe() bool { return mr.wireframe }

// Render draws every renderable node of the uploaded model. Node world
// matrices are recomputed here, after the frame's animation step, so each
// node's uniform reflects the latest transforms.
func (mr *ModelRenderer) Render(view, proj mgl32.Mat4) {
	if mr.model == nil || mr.vao == 0 {
		return
	}

	gl.UseProgram(mr.program)
	gl.UniformMatrix4fv(mr.locProj, 1, false, &proj[0])
	gl.UniformMatrix4fv(mr.locView, 1, false, &view[0])
	gl.Uniform3f(mr.locLightDir, -0.5, -1, -0.3)

	gl.ActiveTexture(gl.TEXTURE0)
	gl.Uniform1i(mr.locTexture, 0)

	if mr.wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	}

	gl.BindVertexArray(mr.vao)
	for _, node := range mr.model.MeshNodes {
		world := node.WorldMatrix()
		gl.UniformMatrix4fv(mr.locModel, 1, false, &world[0])

		for _, p := range node.Primitives {
			factor := mgl32.Vec4{1, 1, 1, 1}
			tex := mr.fallbackTex
			if p.MaterialIndex >= 0 && p.MaterialIndex < len(mr.model.Materials) {
				mat := mr.model.Materials[p.MaterialIndex]
				factor = mat.BaseColorFactor
				if mat.BaseColorTexture >= 0 && mat.BaseColorTexture < len(mr.textures) {
					tex = mr.textures[mat.BaseColorTexture]
				}
			}
			gl.BindTexture(gl.TEXTURE_2D, tex)
			gl.Uniform4f(mr.locBaseColorFactor, factor[0], factor[1], factor[2], factor[3])
			gl.DrawElementsWithOffset(gl.TRIANGLES, int32(p.IndexCount), gl.UNSIGNED_INT, uintptr(p.FirstIndex*4))
		}
	}
	gl.BindVertexArray(0)

	if mr.wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}
}

func (mr *ModelRenderer) releaseModel() {
	if mr.vao != 0 {
		gl.DeleteVertexArrays(1, &mr.vao)
		mr.vao = 0
	}
	if mr.vbo != 0 {
		gl.DeleteBuffers(1, &mr.vbo)
		mr.vbo = 0
	}
	if mr.ebo != 0 {
		gl.DeleteBuffers(1, &mr.ebo)
		mr.ebo = 0
	}
	for _, tex := range mr.textures {
		if tex != 0 && tex != mr.fallbackTex {
			gl.DeleteTextures(1, &tex)
		}
	}
	mr.textures = nil
	mr.model = nil
}

// Destroy releases all GPU resources.
func (mr *ModelRenderer) Destroy() {
	mr.releaseModel()
	if mr.fallbackTex != 0 {
		gl.DeleteTextures(1, &mr.fallbackTex)
		mr.fallbackTex = 0
	}
	if mr.program != 0 {
		gl.DeleteProgram(mr.program)
		mr.program = 0
	}
}
