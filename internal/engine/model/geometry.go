package model

import (
	"encoding/binary"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
)

// GeometryBuffer accumulates every primitive of a model into one global
// vertex sequence and one global index sequence. Both grow only during
// load and are uploaded to the GPU as single units afterwards.
type GeometryBuffer struct {
	Vertices []Vertex
	Indices  []uint32
}

// PrimitiveData is one mesh primitive's decoded attribute arrays plus its
// raw index payload. Normals and TexCoords are optional and default to
// zero vectors. IndexBytes may be nil for non-indexed primitives, in which
// case sequential indices are synthesized.
type PrimitiveData struct {
	Positions [][3]float32
	Normals   [][3]float32
	TexCoords [][2]float32

	IndexBytes []byte
	IndexType  gltf.ComponentType
	IndexCount int

	MaterialIndex int
}

// AppendPrimitive appends one primitive's vertices and indices to the
// global buffers. Indices are widened to uint32 and offset by the current
// vertex base so they stay valid after concatenation. An index width other
// than 8/16/32-bit unsigned is a hard error; the caller aborts the load.
func (g *GeometryBuffer) AppendPrimitive(data PrimitiveData) (Primitive, error) {
	vertexStart := uint32(len(g.Vertices))
	firstIndex := uint32(len(g.Indices))

	for i, pos := range data.Positions {
		v := Vertex{
			Position: mgl32.Vec3{pos[0], pos[1], pos[2]},
			Color:    mgl32.Vec3{1, 1, 1},
		}
		if i < len(data.Normals) {
			n := mgl32.Vec3{data.Normals[i][0], data.Normals[i][1], data.Normals[i][2]}
			// Normalizing a zero vector yields NaN; missing normals stay zero.
			if n.Len() > 0 {
				n = n.Normalize()
			}
			v.Normal = n
		}
		if i < len(data.TexCoords) {
			v.TexCoord = mgl32.Vec2{data.TexCoords[i][0], data.TexCoords[i][1]}
		}
		g.Vertices = append(g.Vertices, v)
	}

	count := data.IndexCount
	if data.IndexBytes == nil {
		// Non-indexed primitive: vertices are consumed in order.
		count = len(data.Positions)
		for i := 0; i < count; i++ {
			g.Indices = append(g.Indices, uint32(i)+vertexStart)
		}
		return Primitive{FirstIndex: firstIndex, IndexCount: uint32(count), MaterialIndex: data.MaterialIndex}, nil
	}

	switch data.IndexType {
	case gltf.ComponentUint:
		if len(data.IndexBytes) < count*4 {
			return Primitive{}, fmt.Errorf("index data truncated: %d bytes for %d uint32 indices", len(data.IndexBytes), count)
		}
		for i := 0; i < count; i++ {
			g.Indices = append(g.Indices, binary.LittleEndian.Uint32(data.IndexBytes[i*4:])+vertexStart)
		}
	case gltf.ComponentUshort:
		if len(data.IndexBytes) < count*2 {
			return Primitive{}, fmt.Errorf("index data truncated: %d bytes for %d uint16 indices", len(data.IndexBytes), count)
		}
		for i := 0; i < count; i++ {
			g.Indices = append(g.Indices, uint32(binary.LittleEndian.Uint16(data.IndexBytes[i*2:]))+vertexStart)
		}
	case gltf.ComponentUbyte:
		if len(data.IndexBytes) < count {
			return Primitive{}, fmt.Errorf("index data truncated: %d bytes for %d uint8 indices", len(data.IndexBytes), count)
		}
		for i := 0; i < count; i++ {
			g.Indices = append(g.Indices, uint32(data.IndexBytes[i])+vertexStart)
		}
	default:
		return Primitive{}, fmt.Errorf("unsupported index component type %d", data.IndexType)
	}

	return Primitive{FirstIndex: firstIndex, IndexCount: uint32(count), MaterialIndex: data.MaterialIndex}, nil
}

// VertexCount returns the number of vertices accumulated so far.
func (g *GeometryBuffer) VertexCount() int { return len(g.Vertices) }

// IndexCount returns the number of indices accumulated so far.
func (g *GeometryBuffer) IndexCount() int { return len(g.Indices) }
