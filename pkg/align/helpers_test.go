package align

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/linkage-design/objectaligner/pkg/scene"
)

const eps = 1e-9

func assertVec(t *testing.T, what string, got, want mgl64.Vec3) {
	t.Helper()
	if got.Sub(want).Len() > eps {
		t.Errorf("%s = %v, want %v", what, got, want)
	}
}

// cubeObject returns a mesh object whose local bounds are a cube of the
// given edge length centered on its origin.
func cubeObject(name string, edge float64, loc mgl64.Vec3) *scene.Object {
	h := edge / 2
	o := scene.NewObject(name, scene.KindMesh)
	o.Location = loc
	o.Mesh = scene.NewBoundsMesh(scene.Bounds{
		Min: mgl64.Vec3{-h, -h, -h},
		Max: mgl64.Vec3{h, h, h},
	})
	return o
}

// unitCubeScene is a scene holding one active unit cube at (5,5,5).
func unitCubeScene(t *testing.T) (*scene.Scene, *scene.Object) {
	t.Helper()
	s := scene.New()
	cube := cubeObject("cube", 1, mgl64.Vec3{5, 5, 5})
	s.AddObject(cube)
	if err := s.SetActive("cube"); err != nil {
		t.Fatal(err)
	}
	return s, cube
}

// withChild adds a two-unit cube at local offset (3,0,0) under parent.
func withChild(s *scene.Scene, parent *scene.Object) *scene.Object {
	child := cubeObject("child", 2, mgl64.Vec3{3, 0, 0})
	child.Parent = parent.ID
	s.AddObject(child)
	return child
}
