// Package model builds render-ready scene data from decoded glTF documents:
// a node hierarchy with animated local transforms, flattened vertex/index
// buffers partitioned into draw-call primitives, and keyframe animations.
package model

import "github.com/go-gl/mathgl/mgl32"

// Vertex is one entry in the model's global vertex buffer.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	TexCoord mgl32.Vec2
	Color    mgl32.Vec3
}

// Primitive describes one draw call: a contiguous slice of the model's
// global index buffer plus a material reference.
type Primitive struct {
	FirstIndex    uint32
	IndexCount    uint32
	MaterialIndex int // -1 when the primitive has no material assigned
}

// Material holds the subset of glTF material data the renderer consumes.
// Texture fields are indices into the model's texture list, -1 when absent.
type Material struct {
	BaseColorFactor          mgl32.Vec4
	BaseColorTexture         int
	MetallicRoughnessTexture int
	NormalTexture            int
}

// Texture references an image by index into the model's image list.
type Texture struct {
	ImageIndex int // -1 when the texture has no source image
}

// Image carries one image payload. Embedded images (buffer view or data URI)
// have Data set; external images keep their URI for the renderer to resolve
// relative to the asset file.
type Image struct {
	Name     string
	MimeType string
	URI      string
	Data     []byte
}
