package model

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

const epsilon = 1e-5

func floatEquals(a, b float32) bool {
	return math.Abs(float64(a-b)) < epsilon
}

func mat4Equals(a, b mgl32.Mat4) bool {
	for i := 0; i < 16; i++ {
		if !floatEquals(a[i], b[i]) {
			return false
		}
	}
	return true
}

func vec3Equals(a, b mgl32.Vec3) bool {
	return floatEquals(a.X(), b.X()) && floatEquals(a.Y(), b.Y()) && floatEquals(a.Z(), b.Z())
}

func TestNewNodeDefaults(t *testing.T) {
	n := NewNode(3, nil)

	if n.Index != 3 {
		t.Errorf("Index = %d, want 3", n.Index)
	}
	if n.Kind != TransformTRS {
		t.Errorf("Kind = %v, want TransformTRS", n.Kind)
	}
	if !mat4Equals(n.LocalMatrix(), mgl32.Ident4()) {
		t.Errorf("default local matrix is not identity: %v", n.LocalMatrix())
	}
}

func TestLocalMatrixComposesTRS(t *testing.T) {
	n := NewNode(0, nil)
	n.Translation = mgl32.Vec3{1, 2, 3}
	n.Rotation = mgl32.QuatRotate(float32(math.Pi/2), mgl32.Vec3{0, 0, 1})
	n.Scale = mgl32.Vec3{2, 2, 2}

	want := mgl32.Translate3D(1, 2, 3).
		Mul4(n.Rotation.Mat4()).
		Mul4(mgl32.Scale3D(2, 2, 2))
	if !mat4Equals(n.LocalMatrix(), want) {
		t.Errorf("local matrix = %v, want T*R*S = %v", n.LocalMatrix(), want)
	}
}

func TestLocalMatrixRawForm(t *testing.T) {
	n := NewNode(0, nil)
	n.Kind = TransformMatrix
	n.Matrix = mgl32.Translate3D(5, 0, 0)

	if !mat4Equals(n.LocalMatrix(), n.Matrix) {
		t.Errorf("raw-matrix node local = %v, want %v", n.LocalMatrix(), n.Matrix)
	}
}

func TestWorldMatrixAncestorChain(t *testing.T) {
	root := NewNode(0, nil)
	root.Translation = mgl32.Vec3{1, 0, 0}
	mid := NewNode(1, root)
	mid.Translation = mgl32.Vec3{0, 1, 0}
	leaf := NewNode(2, mid)
	leaf.Translation = mgl32.Vec3{0, 0, 1}

	world := leaf.WorldMatrix()
	origin := mgl32.TransformCoordinate(mgl32.Vec3{0, 0, 0}, world)
	if !vec3Equals(origin, mgl32.Vec3{1, 1, 1}) {
		t.Errorf("leaf origin in world space = %v, want (1,1,1)", origin)
	}
}

func TestWorldMatrixAncestorOrder(t *testing.T) {
	// Parent scales, child translates: the translation must be scaled too.
	root := NewNode(0, nil)
	root.Scale = mgl32.Vec3{2, 2, 2}
	child := NewNode(1, root)
	child.Translation = mgl32.Vec3{1, 0, 0}

	origin := mgl32.TransformCoordinate(mgl32.Vec3{0, 0, 0}, child.WorldMatrix())
	if !vec3Equals(origin, mgl32.Vec3{2, 0, 0}) {
		t.Errorf("child origin = %v, want (2,0,0)", origin)
	}
}

func TestFind(t *testing.T) {
	root := NewNode(0, nil)
	a := NewNode(1, root)
	b := NewNode(2, root)
	c := NewNode(5, b)
	root.Children = []*Node{a, b}
	b.Children = []*Node{c}

	if got := root.Find(5); got != c {
		t.Errorf("Find(5) = %v, want node 5", got)
	}
	if got := root.Find(9); got != nil {
		t.Errorf("Find(9) = %v, want nil", got)
	}
}
