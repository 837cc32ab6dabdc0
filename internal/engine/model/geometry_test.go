package model

import (
	"encoding/binary"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
)

func triPositions() [][3]float32 {
	return [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
}

func TestAppendPrimitiveOffsetsIndices(t *testing.T) {
	cases := []struct {
		name      string
		indexType gltf.ComponentType
		encode    func(idx []uint32) []byte
	}{
		{"uint8", gltf.ComponentUbyte, func(idx []uint32) []byte {
			out := make([]byte, len(idx))
			for i, v := range idx {
				out[i] = byte(v)
			}
			return out
		}},
		{"uint16", gltf.ComponentUshort, func(idx []uint32) []byte {
			out := make([]byte, len(idx)*2)
			for i, v := range idx {
				binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
			}
			return out
		}},
		{"uint32", gltf.ComponentUint, func(idx []uint32) []byte {
			out := make([]byte, len(idx)*4)
			for i, v := range idx {
				binary.LittleEndian.PutUint32(out[i*4:], v)
			}
			return out
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var g GeometryBuffer
			// First primitive occupies vertices 0..2 so the second starts at base 3.
			if _, err := g.AppendPrimitive(PrimitiveData{Positions: triPositions(), MaterialIndex: -1}); err != nil {
				t.Fatalf("first primitive: %v", err)
			}

			src := []uint32{0, 1, 2}
			p, err := g.AppendPrimitive(PrimitiveData{
				Positions:     triPositions(),
				IndexBytes:    tc.encode(src),
				IndexType:     tc.indexType,
				IndexCount:    len(src),
				MaterialIndex: -1,
			})
			if err != nil {
				t.Fatalf("second primitive: %v", err)
			}

			if p.FirstIndex != 3 || p.IndexCount != 3 {
				t.Fatalf("primitive = {first %d, count %d}, want {3, 3}", p.FirstIndex, p.IndexCount)
			}
			for i, want := range []uint32{3, 4, 5} {
				if got := g.Indices[p.FirstIndex+uint32(i)]; got != want {
					t.Errorf("index %d = %d, want %d", i, got, want)
				}
			}
		})
	}
}

func TestAppendPrimitiveUnsupportedIndexType(t *testing.T) {
	var g GeometryBuffer
	_, err := g.AppendPrimitive(PrimitiveData{
		Positions:  triPositions(),
		IndexBytes: []byte{0, 0, 0, 0},
		IndexType:  gltf.ComponentFloat,
		IndexCount: 1,
	})
	if err == nil {
		t.Fatal("expected error for float index component type")
	}
}

func TestAppendPrimitiveTruncatedIndices(t *testing.T) {
	var g GeometryBuffer
	_, err := g.AppendPrimitive(PrimitiveData{
		Positions:  triPositions(),
		IndexBytes: []byte{0, 0, 1},
		IndexType:  gltf.ComponentUshort,
		IndexCount: 3,
	})
	if err == nil {
		t.Fatal("expected error for truncated index data")
	}
}

func TestAppendPrimitiveSynthesizesIndices(t *testing.T) {
	var g GeometryBuffer
	if _, err := g.AppendPrimitive(PrimitiveData{Positions: triPositions()}); err != nil {
		t.Fatal(err)
	}
	p, err := g.AppendPrimitive(PrimitiveData{Positions: triPositions()})
	if err != nil {
		t.Fatal(err)
	}
	if p.IndexCount != 3 {
		t.Fatalf("IndexCount = %d, want 3", p.IndexCount)
	}
	for i, want := range []uint32{3, 4, 5} {
		if got := g.Indices[p.FirstIndex+uint32(i)]; got != want {
			t.Errorf("synthesized index %d = %d, want %d", i, got, want)
		}
	}
}

func TestAppendPrimitiveVertexDefaults(t *testing.T) {
	var g GeometryBuffer
	if _, err := g.AppendPrimitive(PrimitiveData{Positions: triPositions()}); err != nil {
		t.Fatal(err)
	}

	v := g.Vertices[0]
	// A zero source normal must stay zero, never NaN from normalizing.
	if v.Normal != (mgl32.Vec3{}) {
		t.Errorf("normal = %v, want zero vector", v.Normal)
	}
	if v.Normal.X() != v.Normal.X() {
		t.Error("normal contains NaN")
	}
	if !vec3Equals(v.Color, mgl32.Vec3{1, 1, 1}) {
		t.Errorf("color = %v, want opaque white", v.Color)
	}
	if v.TexCoord.X() != 0 || v.TexCoord.Y() != 0 {
		t.Errorf("texcoord = %v, want zero", v.TexCoord)
	}
}

func TestAppendPrimitiveNormalizesNormals(t *testing.T) {
	var g GeometryBuffer
	if _, err := g.AppendPrimitive(PrimitiveData{
		Positions: triPositions(),
		Normals:   [][3]float32{{0, 3, 0}, {0, 0, 0}, {2, 0, 0}},
	}); err != nil {
		t.Fatal(err)
	}

	if !vec3Equals(g.Vertices[0].Normal, mgl32.Vec3{0, 1, 0}) {
		t.Errorf("normal 0 = %v, want unit Y", g.Vertices[0].Normal)
	}
	if !vec3Equals(g.Vertices[1].Normal, mgl32.Vec3{}) {
		t.Errorf("normal 1 = %v, want zero", g.Vertices[1].Normal)
	}
	if !vec3Equals(g.Vertices[2].Normal, mgl32.Vec3{1, 0, 0}) {
		t.Errorf("normal 2 = %v, want unit X", g.Vertices[2].Normal)
	}
}
