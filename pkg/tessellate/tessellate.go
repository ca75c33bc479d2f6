// Package tessellate turns the mesh objects of a scene into world-space
// triangle meshes for previews. One mesh is produced per mesh object.
package tessellate

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/linkage-design/objectaligner/pkg/kernel"
	"github.com/linkage-design/objectaligner/pkg/scene"
)

// transformChain lists the local transforms from an object up to its root,
// innermost first.
type transformChain []*scene.Object

func newTransformChain(s *scene.Scene, o *scene.Object) (transformChain, error) {
	var chain transformChain
	seen := make(map[scene.ObjectID]bool)
	for cur := o; cur != nil; {
		if seen[cur.ID] {
			return nil, fmt.Errorf("object %q: %w", o.Name, scene.ErrCycle)
		}
		seen[cur.ID] = true
		chain = append(chain, cur)
		if cur.Parent.IsZero() {
			break
		}
		next := s.Get(cur.Parent)
		if next == nil {
			return nil, fmt.Errorf("object %q: parent %s: %w", cur.Name, cur.Parent.Short(), scene.ErrNotFound)
		}
		cur = next
	}
	return chain, nil
}

// apply pushes a solid through every link of the chain: scale, then
// rotation, then translation, starting at the object and ending at the root.
func (c transformChain) apply(k kernel.Kernel, solid kernel.Solid) kernel.Solid {
	for _, o := range c {
		solid = k.Scale(solid, o.Scale[0], o.Scale[1], o.Scale[2])
		if r := o.Rotation; r[0] != 0 || r[1] != 0 || r[2] != 0 {
			solid = k.Rotate(solid, r[0], r[1], r[2])
		}
		if t := o.Location; t[0] != 0 || t[1] != 0 || t[2] != 0 {
			solid = k.Translate(solid, t[0], t[1], t[2])
		}
	}
	return solid
}

// Tessellate produces one world-space mesh per mesh object in the scene,
// parents before children. The scene is never mutated. Solid-backed meshes
// are rendered by k; a nil kernel falls back to their bounding boxes.
func Tessellate(s *scene.Scene, k kernel.Kernel) ([]*kernel.Mesh, error) {
	if s == nil {
		return nil, nil
	}

	var meshes []*kernel.Mesh
	for _, o := range s.Ordered() {
		if !o.IsMesh() {
			continue
		}
		m, err := objectMesh(s, k, o)
		if err != nil {
			return nil, fmt.Errorf("tessellate: %w", err)
		}
		m.ObjectName = o.Name
		meshes = append(meshes, m)
	}
	return meshes, nil
}

func objectMesh(s *scene.Scene, k kernel.Kernel, o *scene.Object) (*kernel.Mesh, error) {
	if o.Mesh.Solid != nil && k != nil {
		chain, err := newTransformChain(s, o)
		if err != nil {
			return nil, err
		}
		m, err := k.ToMesh(chain.apply(k, o.Mesh.Solid))
		if err != nil {
			return nil, fmt.Errorf("object %q: ToMesh failed: %w", o.Name, err)
		}
		return m, nil
	}

	world, err := s.MatrixWorld(o.ID)
	if err != nil {
		return nil, err
	}
	var local *kernel.Mesh
	if len(o.Mesh.Vertices) > 0 && len(o.Mesh.Indices) >= 3 {
		local, err = vertexMesh(o.Mesh)
		if err != nil {
			return nil, fmt.Errorf("object %q: %w", o.Name, err)
		}
	} else {
		local = boxMesh(o.Mesh.Bounds)
	}
	return transformMesh(local, world), nil
}

// vertexMesh converts explicit geometry into a render mesh with smooth
// per-vertex normals averaged from the adjacent faces.
func vertexMesh(m *scene.Mesh) (*kernel.Mesh, error) {
	n := len(m.Vertices)
	for _, idx := range m.Indices {
		if int(idx) >= n {
			return nil, fmt.Errorf("index %d out of range for %d vertices", idx, n)
		}
	}

	acc := make([]mgl64.Vec3, n)
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, b, c := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		face := m.Vertices[b].Sub(m.Vertices[a]).Cross(m.Vertices[c].Sub(m.Vertices[a]))
		acc[a] = acc[a].Add(face)
		acc[b] = acc[b].Add(face)
		acc[c] = acc[c].Add(face)
	}

	out := &kernel.Mesh{
		Vertices: make([]float32, 0, n*3),
		Normals:  make([]float32, 0, n*3),
		Indices:  append([]uint32(nil), m.Indices[:len(m.Indices)/3*3]...),
	}
	for i, v := range m.Vertices {
		out.Vertices = append(out.Vertices, float32(v[0]), float32(v[1]), float32(v[2]))
		nv := acc[i]
		if nv.Len() > 0 {
			nv = nv.Normalize()
		}
		out.Normals = append(out.Normals, float32(nv[0]), float32(nv[1]), float32(nv[2]))
	}
	return out, nil
}

// boxFaces lists each face of Bounds.Corners counter-clockwise seen from
// outside, with its outward normal.
var boxFaces = [6]struct {
	corners [4]int
	normal  mgl64.Vec3
}{
	{[4]int{0, 1, 2, 3}, mgl64.Vec3{-1, 0, 0}},
	{[4]int{4, 7, 6, 5}, mgl64.Vec3{1, 0, 0}},
	{[4]int{0, 4, 5, 1}, mgl64.Vec3{0, -1, 0}},
	{[4]int{3, 2, 6, 7}, mgl64.Vec3{0, 1, 0}},
	{[4]int{0, 3, 7, 4}, mgl64.Vec3{0, 0, -1}},
	{[4]int{1, 5, 6, 2}, mgl64.Vec3{0, 0, 1}},
}

// boxMesh renders bounds as a flat-shaded box: four vertices and two
// triangles per face.
func boxMesh(b scene.Bounds) *kernel.Mesh {
	corners := b.Corners()
	m := &kernel.Mesh{
		Vertices: make([]float32, 0, 24*3),
		Normals:  make([]float32, 0, 24*3),
		Indices:  make([]uint32, 0, 36),
	}
	for _, f := range boxFaces {
		base := uint32(len(m.Vertices) / 3)
		for _, ci := range f.corners {
			c := corners[ci]
			m.Vertices = append(m.Vertices, float32(c[0]), float32(c[1]), float32(c[2]))
			m.Normals = append(m.Normals, float32(f.normal[0]), float32(f.normal[1]), float32(f.normal[2]))
		}
		m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return m
}

// transformMesh maps a local mesh into world space. Normals use the
// inverse transpose of the linear part; a singular matrix zeroes them.
func transformMesh(m *kernel.Mesh, world mgl64.Mat4) *kernel.Mesh {
	linear := world.Mat3()
	singular := math.Abs(linear.Det()) < scene.MinDeterminant
	var normalMat mgl64.Mat3
	if !singular {
		normalMat = linear.Inv().Transpose()
	}

	out := &kernel.Mesh{
		Vertices: make([]float32, len(m.Vertices)),
		Normals:  make([]float32, len(m.Normals)),
		Indices:  m.Indices,
	}
	for i := 0; i+2 < len(m.Vertices); i += 3 {
		v := mgl64.Vec3{float64(m.Vertices[i]), float64(m.Vertices[i+1]), float64(m.Vertices[i+2])}
		w := mgl64.TransformCoordinate(v, world)
		out.Vertices[i], out.Vertices[i+1], out.Vertices[i+2] = float32(w[0]), float32(w[1]), float32(w[2])
	}
	if singular {
		return out
	}
	for i := 0; i+2 < len(m.Normals); i += 3 {
		n := mgl64.Vec3{float64(m.Normals[i]), float64(m.Normals[i+1]), float64(m.Normals[i+2])}
		n = normalMat.Mul3x1(n)
		if n.Len() > 0 {
			n = n.Normalize()
		}
		out.Normals[i], out.Normals[i+1], out.Normals[i+2] = float32(n[0]), float32(n[1]), float32(n[2])
	}
	return out
}
