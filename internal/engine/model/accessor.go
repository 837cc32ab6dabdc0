package model

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
)

// errUnsupportedOutputType marks animation sampler outputs that are neither
// vec3 nor vec4 floats. The loader logs and skips these instead of failing.
var errUnsupportedOutputType = errors.New("unsupported sampler output type")

// accessorBytes returns the packed byte region an accessor covers. Only
// tightly packed accessors are supported; interleaved (strided) buffer views
// and sparse accessors without a buffer view are rejected.
func accessorBytes(doc *gltf.Document, acc *gltf.Accessor) ([]byte, error) {
	if acc.BufferView == nil {
		return nil, fmt.Errorf("accessor has no buffer view")
	}
	bvIndex := int(*acc.BufferView)
	if bvIndex >= len(doc.BufferViews) {
		return nil, fmt.Errorf("buffer view %d out of range", bvIndex)
	}
	bv := doc.BufferViews[bvIndex]

	elemSize := componentSize(acc.ComponentType) * elemComponents(acc.Type)
	if bv.ByteStride != 0 && int(bv.ByteStride) != elemSize {
		return nil, fmt.Errorf("interleaved buffer view %d not supported", bvIndex)
	}

	bufIndex := int(bv.Buffer)
	if bufIndex >= len(doc.Buffers) {
		return nil, fmt.Errorf("buffer %d out of range", bufIndex)
	}
	data := doc.Buffers[bufIndex].Data

	start := int(bv.ByteOffset) + int(acc.ByteOffset)
	length := int(acc.Count) * elemSize
	if start+length > len(data) {
		return nil, fmt.Errorf("accessor range [%d:%d) exceeds buffer of %d bytes", start, start+length, len(data))
	}
	return data[start : start+length], nil
}

func componentSize(t gltf.ComponentType) int {
	switch t {
	case gltf.ComponentUbyte, gltf.ComponentByte:
		return 1
	case gltf.ComponentUshort, gltf.ComponentShort:
		return 2
	default: // ComponentUint, ComponentFloat
		return 4
	}
}

func elemComponents(t gltf.AccessorType) int {
	switch t {
	case gltf.AccessorScalar:
		return 1
	case gltf.AccessorVec2:
		return 2
	case gltf.AccessorVec3:
		return 3
	case gltf.AccessorVec4:
		return 4
	case gltf.AccessorMat2:
		return 4
	case gltf.AccessorMat3:
		return 9
	default: // AccessorMat4
		return 16
	}
}

// readScalarFloats decodes a float scalar accessor, used for animation
// keyframe times.
func readScalarFloats(doc *gltf.Document, acc *gltf.Accessor) ([]float32, error) {
	if acc.ComponentType != gltf.ComponentFloat || acc.Type != gltf.AccessorScalar {
		return nil, fmt.Errorf("expected float scalar accessor, got component %d type %d", acc.ComponentType, acc.Type)
	}
	raw, err := accessorBytes(doc, acc)
	if err != nil {
		return nil, err
	}
	out := make([]float32, int(acc.Count))
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return out, nil
}

// readVec4Accessor decodes a float vec3 or vec4 accessor into Vec4 values.
// Vec3 data is padded with a zero fourth component so translation, scale and
// rotation outputs share one storage shape.
func readVec4Accessor(doc *gltf.Document, acc *gltf.Accessor) ([]mgl32.Vec4, error) {
	if acc.ComponentType != gltf.ComponentFloat {
		return nil, errUnsupportedOutputType
	}
	var comps int
	switch acc.Type {
	case gltf.AccessorVec3:
		comps = 3
	case gltf.AccessorVec4:
		comps = 4
	default:
		return nil, errUnsupportedOutputType
	}
	raw, err := accessorBytes(doc, acc)
	if err != nil {
		return nil, err
	}
	out := make([]mgl32.Vec4, int(acc.Count))
	for i := range out {
		base := i * comps * 4
		var v mgl32.Vec4
		for c := 0; c < comps; c++ {
			v[c] = math.Float32frombits(binary.LittleEndian.Uint32(raw[base+c*4:]))
		}
		out[i] = v
	}
	return out, nil
}

// decodeDataURI extracts the base64 payload of a data: URI. Percent-encoded
// data URIs are valid but never produced by glTF exporters, so they are
// rejected rather than misread as base64.
func decodeDataURI(uri string) ([]byte, error) {
	comma := strings.IndexByte(uri, ',')
	if comma < 0 {
		return nil, fmt.Errorf("malformed data URI")
	}
	if !strings.HasSuffix(uri[:comma], ";base64") {
		return nil, fmt.Errorf("data URI is not base64 encoded")
	}
	return base64.StdEncoding.DecodeString(uri[comma+1:])
}
