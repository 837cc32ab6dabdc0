package model

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// Model is a fully loaded asset: node hierarchy, flattened geometry,
// materials and animation clips. It is built once by LoadDocument and then
// mutated only by Advance and SetActiveAnimation; all access is
// single-threaded from the frame loop.
type Model struct {
	Name string

	Geometry  GeometryBuffer
	Roots     []*Node
	MeshNodes []*Node
	nodes     map[int]*Node

	Materials []Material
	Textures  []Texture
	Images    []Image

	Animations []Animation
	Active     int

	activeWarned bool
}

// LoadDocument builds a Model from a decoded glTF document. Structural
// problems (missing positions, unknown index width, dangling animation
// targets) abort the load; optional data that is merely absent or
// unsupported degrades with a log entry instead.
func LoadDocument(doc *gltf.Document, name string) (*Model, error) {
	m := &Model{
		Name:  name,
		nodes: make(map[int]*Node),
	}

	m.loadImages(doc)
	m.loadTextures(doc)
	m.loadMaterials(doc)

	scene := 0
	if doc.Scene != nil {
		scene = int(*doc.Scene)
	}
	if scene >= len(doc.Scenes) {
		return nil, fmt.Errorf("scene %d out of range (%d scenes)", scene, len(doc.Scenes))
	}
	for _, root := range doc.Scenes[scene].Nodes {
		if err := m.loadNode(doc, int(root), nil); err != nil {
			return nil, err
		}
	}

	if err := m.loadAnimations(doc); err != nil {
		return nil, err
	}
	return m, nil
}

// loadNode converts one document node and, recursively, its subtree.
// Children are built before the node's own mesh so geometry lands in the
// buffers in depth-first order.
func (m *Model) loadNode(doc *gltf.Document, index int, parent *Node) error {
	if index >= len(doc.Nodes) {
		return fmt.Errorf("node %d out of range (%d nodes)", index, len(doc.Nodes))
	}
	src := doc.Nodes[index]

	node := NewNode(index, parent)
	node.Name = src.Name
	if mat := src.MatrixOrDefault(); mat != identityMatrix {
		node.Kind = TransformMatrix
		for i := 0; i < 16; i++ {
			node.Matrix[i] = float32(mat[i])
		}
	} else {
		t := src.TranslationOrDefault()
		r := src.RotationOrDefault()
		s := src.ScaleOrDefault()
		node.Translation = mgl32.Vec3{float32(t[0]), float32(t[1]), float32(t[2])}
		node.Rotation = mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}}
		node.Scale = mgl32.Vec3{float32(s[0]), float32(s[1]), float32(s[2])}
	}
	m.nodes[index] = node

	for _, child := range src.Children {
		if err := m.loadNode(doc, int(child), node); err != nil {
			return err
		}
	}

	if src.Mesh != nil {
		if err := m.loadMesh(doc, int(*src.Mesh), node); err != nil {
			return fmt.Errorf("node %d (%q): %w", index, src.Name, err)
		}
	}

	if parent != nil {
		parent.Children = append(parent.Children, node)
	} else {
		m.Roots = append(m.Roots, node)
	}
	if len(node.Primitives) > 0 {
		m.MeshNodes = append(m.MeshNodes, node)
	}
	return nil
}

func (m *Model) loadMesh(doc *gltf.Document, index int, node *Node) error {
	if index >= len(doc.Meshes) {
		return fmt.Errorf("mesh %d out of range (%d meshes)", index, len(doc.Meshes))
	}
	mesh := doc.Meshes[index]

	for pi, prim := range mesh.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			slog.Warn("non-triangle primitive skipped", "model", m.Name, "mesh", index, "primitive", pi, "mode", prim.Mode)
			continue
		}

		var data PrimitiveData
		data.MaterialIndex = -1
		if prim.Material != nil {
			data.MaterialIndex = int(*prim.Material)
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			return fmt.Errorf("mesh %d primitive %d has no POSITION attribute", index, pi)
		}
		positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
		if err != nil {
			return fmt.Errorf("mesh %d primitive %d positions: %w", index, pi, err)
		}
		data.Positions = positions

		if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
			normals, err := modeler.ReadNormal(doc, doc.Accessors[normIdx], nil)
			if err != nil {
				slog.Warn("normal attribute unreadable, using zero normals",
					"model", m.Name, "mesh", index, "primitive", pi, "error", err)
			} else {
				data.Normals = normals
			}
		}
		if uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			uvs, err := modeler.ReadTextureCoord(doc, doc.Accessors[uvIdx], nil)
			if err != nil {
				slog.Warn("texcoord attribute unreadable, using zero UVs",
					"model", m.Name, "mesh", index, "primitive", pi, "error", err)
			} else {
				data.TexCoords = uvs
			}
		}

		if prim.Indices != nil {
			acc := doc.Accessors[int(*prim.Indices)]
			raw, err := accessorBytes(doc, acc)
			if err != nil {
				return fmt.Errorf("mesh %d primitive %d indices: %w", index, pi, err)
			}
			data.IndexBytes = raw
			data.IndexType = acc.ComponentType
			data.IndexCount = int(acc.Count)
		}

		p, err := m.Geometry.AppendPrimitive(data)
		if err != nil {
			return fmt.Errorf("mesh %d primitive %d: %w", index, pi, err)
		}
		node.Primitives = append(node.Primitives, p)
	}
	return nil
}

func (m *Model) loadImages(doc *gltf.Document) {
	m.Images = make([]Image, 0, len(doc.Images))
	for i, src := range doc.Images {
		img := Image{Name: src.Name, MimeType: src.MimeType}
		switch {
		case src.BufferView != nil:
			bv := doc.BufferViews[int(*src.BufferView)]
			buf := doc.Buffers[int(bv.Buffer)].Data
			start := int(bv.ByteOffset)
			end := start + int(bv.ByteLength)
			if end <= len(buf) {
				img.Data = buf[start:end]
			} else {
				slog.Warn("image buffer view exceeds buffer, image dropped", "model", m.Name, "image", i)
			}
		case strings.HasPrefix(src.URI, "data:"):
			data, err := decodeDataURI(src.URI)
			if err != nil {
				slog.Warn("image data URI undecodable, image dropped", "model", m.Name, "image", i, "error", err)
			} else {
				img.Data = data
			}
		default:
			img.URI = src.URI
		}
		m.Images = append(m.Images, img)
	}
}

func (m *Model) loadTextures(doc *gltf.Document) {
	m.Textures = make([]Texture, 0, len(doc.Textures))
	for _, src := range doc.Textures {
		t := Texture{ImageIndex: -1}
		if src.Source != nil {
			t.ImageIndex = int(*src.Source)
		}
		m.Textures = append(m.Textures, t)
	}
}

func (m *Model) loadMaterials(doc *gltf.Document) {
	m.Materials = make([]Material, 0, len(doc.Materials))
	for _, src := range doc.Materials {
		mat := Material{
			BaseColorFactor:          mgl32.Vec4{1, 1, 1, 1},
			BaseColorTexture:         -1,
			MetallicRoughnessTexture: -1,
			NormalTexture:            -1,
		}
		if pbr := src.PBRMetallicRoughness; pbr != nil {
			if pbr.BaseColorFactor != nil {
				for i := 0; i < 4; i++ {
					mat.BaseColorFactor[i] = float32(pbr.BaseColorFactor[i])
				}
			}
			if pbr.BaseColorTexture != nil {
				mat.BaseColorTexture = int(pbr.BaseColorTexture.Index)
			}
			if pbr.MetallicRoughnessTexture != nil {
				mat.MetallicRoughnessTexture = int(pbr.MetallicRoughnessTexture.Index)
			}
		}
		if src.NormalTexture != nil && src.NormalTexture.Index != nil {
			mat.NormalTexture = int(*src.NormalTexture.Index)
		}
		m.Materials = append(m.Materials, mat)
	}
}

func (m *Model) loadAnimations(doc *gltf.Document) error {
	m.Animations = make([]Animation, 0, len(doc.Animations))
	for ai, src := range doc.Animations {
		anim := Animation{
			Name: src.Name,
			// Sentinels collapse to the true range as keyframes arrive.
			Start: float32(math.Inf(1)),
			End:   float32(math.Inf(-1)),
		}
		if anim.Name == "" {
			anim.Name = fmt.Sprintf("animation_%d", ai)
		}

		for si, sampler := range src.Samplers {
			s := AnimationSampler{Interpolation: sampler.Interpolation}

			inputs, err := readScalarFloats(doc, doc.Accessors[int(sampler.Input)])
			if err != nil {
				return fmt.Errorf("animation %d sampler %d input: %w", ai, si, err)
			}
			s.Inputs = inputs
			for _, t := range inputs {
				if t < anim.Start {
					anim.Start = t
				}
				if t > anim.End {
					anim.End = t
				}
			}

			outputs, err := readVec4Accessor(doc, doc.Accessors[int(sampler.Output)])
			if err != nil {
				if err == errUnsupportedOutputType {
					slog.Warn("sampler output type unsupported, sampler left empty",
						"model", m.Name, "animation", anim.Name, "sampler", si)
				} else {
					return fmt.Errorf("animation %d sampler %d output: %w", ai, si, err)
				}
			}
			s.Outputs = outputs
			anim.Samplers = append(anim.Samplers, s)
		}

		for ci, channel := range src.Channels {
			switch channel.Target.Path {
			case gltf.TRSTranslation, gltf.TRSRotation, gltf.TRSScale:
			default:
				slog.Warn("unsupported channel target path, channel dropped",
					"model", m.Name, "animation", anim.Name, "channel", ci, "path", int(channel.Target.Path))
				continue
			}
			if channel.Target.Node == nil {
				slog.Warn("animation channel has no target node, skipped",
					"model", m.Name, "animation", anim.Name, "channel", ci)
				continue
			}
			target := m.nodes[int(*channel.Target.Node)]
			if target == nil {
				return fmt.Errorf("animation %d channel %d targets unknown node %d", ai, ci, int(*channel.Target.Node))
			}
			sampler := int(channel.Sampler)
			if sampler >= len(anim.Samplers) {
				return fmt.Errorf("animation %d channel %d references sampler %d of %d", ai, ci, sampler, len(anim.Samplers))
			}
			anim.Channels = append(anim.Channels, AnimationChannel{
				Path:    channel.Target.Path,
				Node:    target,
				Sampler: sampler,
			})
		}

		m.Animations = append(m.Animations, anim)
	}
	return nil
}

// NodeByIndex resolves a document node index to its loaded node, nil when
// the index was never part of the loaded scene.
func (m *Model) NodeByIndex(index int) *Node { return m.nodes[index] }

// AnimationCount returns the number of loaded clips.
func (m *Model) AnimationCount() int { return len(m.Animations) }

// AnimationNames lists clip names in document order.
func (m *Model) AnimationNames() []string {
	names := make([]string, len(m.Animations))
	for i := range m.Animations {
		names[i] = m.Animations[i].Name
	}
	return names
}

// SetActiveAnimation switches the clip Advance plays. The index is not
// validated here; Advance reports an out-of-range selection once.
func (m *Model) SetActiveAnimation(index int) {
	m.Active = index
	m.activeWarned = false
}

var identityMatrix = [16]float64{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}
