package model

import "github.com/go-gl/mathgl/mgl32"

// TransformKind records which representation a node's local transform was
// loaded from. glTF nodes declare either decomposed TRS fields or a raw
// matrix, never meaningfully both.
type TransformKind int

const (
	// TransformTRS means the node was defined by translation/rotation/scale.
	TransformTRS TransformKind = iota
	// TransformMatrix means the node was defined by an explicit 4x4 matrix.
	TransformMatrix
)

// Node is one entry in the scene hierarchy. Index is the node's position in
// the source document's node array and stays stable for the life of the
// model; animation channels resolve their targets through it.
//
// Translation, Rotation and Scale are the only fields that mutate after
// load (the animation evaluator writes them every tick). Everything else is
// fixed once the tree is built.
type Node struct {
	Index    int
	Name     string
	Parent   *Node
	Children []*Node

	Kind        TransformKind
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
	Scale       mgl32.Vec3
	Matrix      mgl32.Mat4

	Primitives []Primitive
}

// NewNode creates a node with identity transform state.
func NewNode(index int, parent *Node) *Node {
	return &Node{
		Index:    index,
		Parent:   parent,
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
		Matrix:   mgl32.Ident4(),
	}
}

// LocalMatrix composes the node's local transform in the fixed order
// translate * rotate * scale * matrix. The representation that was not
// loaded stays identity, so the composition is valid for both kinds.
// Recomputed on every call: the TRS fields mutate under animation.
func (n *Node) LocalMatrix() mgl32.Mat4 {
	t := mgl32.Translate3D(n.Translation.X(), n.Translation.Y(), n.Translation.Z())
	s := mgl32.Scale3D(n.Scale.X(), n.Scale.Y(), n.Scale.Z())
	return t.Mul4(n.Rotation.Mat4()).Mul4(s).Mul4(n.Matrix)
}

// WorldMatrix composes the node's local matrix with every ancestor's local
// matrix, ancestors applied on the left (root-most outermost). The tree is
// shallow, so walking the parent chain each frame beats caching matrices
// that would be stale after every animation tick.
func (n *Node) WorldMatrix() mgl32.Mat4 {
	m := n.LocalMatrix()
	for p := n.Parent; p != nil; p = p.Parent {
		m = p.LocalMatrix().Mul4(m)
	}
	return m
}

// Find searches the subtree rooted at n for a node with the given index.
func (n *Node) Find(index int) *Node {
	if n.Index == index {
		return n
	}
	for _, child := range n.Children {
		if found := child.Find(index); found != nil {
			return found
		}
	}
	return nil
}
