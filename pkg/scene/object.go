package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/linkage-design/objectaligner/pkg/kernel"
)

// Object is a single node in the scene graph.
type Object struct {
	ID       ObjectID   `json:"id"`
	Name     string     `json:"name"`
	Kind     Kind       `json:"kind"`
	Parent   ObjectID   `json:"parent,omitempty"`
	Children []ObjectID `json:"children,omitempty"`
	Location mgl64.Vec3 `json:"location"` // relative to the parent
	Rotation mgl64.Vec3 `json:"rotation"` // XYZ Euler angles in degrees
	Scale    mgl64.Vec3 `json:"scale"`
	Mesh     *Mesh      `json:"mesh,omitempty"`
}

// NewObject returns an unparented object with identity rotation and unit
// scale. Its ID is derived from the kind and name.
func NewObject(name string, kind Kind) *Object {
	return &Object{
		ID:    NewObjectID(kind.String() + "/" + name),
		Name:  name,
		Kind:  kind,
		Scale: mgl64.Vec3{1, 1, 1},
	}
}

// IsMesh reports whether the object is mesh-typed and carries geometry.
func (o *Object) IsMesh() bool {
	return o != nil && o.Kind == KindMesh && o.Mesh != nil
}

// ---------------------------------------------------------------------------
// Bounds
// ---------------------------------------------------------------------------

// Bounds is an axis-aligned box given by its min and max corners.
type Bounds struct {
	Min mgl64.Vec3 `json:"min"`
	Max mgl64.Vec3 `json:"max"`
}

// EmptyBounds returns inverted bounds that any Extend call will replace.
func EmptyBounds() Bounds {
	return Bounds{
		Min: mgl64.Vec3{math.MaxFloat64, math.MaxFloat64, math.MaxFloat64},
		Max: mgl64.Vec3{-math.MaxFloat64, -math.MaxFloat64, -math.MaxFloat64},
	}
}

// IsEmpty reports whether no point has been added.
func (b Bounds) IsEmpty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

// Extend grows the bounds to include p.
func (b *Bounds) Extend(p mgl64.Vec3) {
	for i := 0; i < 3; i++ {
		b.Min[i] = math.Min(b.Min[i], p[i])
		b.Max[i] = math.Max(b.Max[i], p[i])
	}
}

// Center returns the midpoint of the bounds.
func (b Bounds) Center() mgl64.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the extent along each axis.
func (b Bounds) Size() mgl64.Vec3 {
	return b.Max.Sub(b.Min)
}

// Corners returns the eight corners, ordered by X then Y then Z the way a
// modelling tool's bound_box lists them.
func (b Bounds) Corners() [8]mgl64.Vec3 {
	lo, hi := b.Min, b.Max
	return [8]mgl64.Vec3{
		{lo[0], lo[1], lo[2]},
		{lo[0], lo[1], hi[2]},
		{lo[0], hi[1], hi[2]},
		{lo[0], hi[1], lo[2]},
		{hi[0], lo[1], lo[2]},
		{hi[0], lo[1], hi[2]},
		{hi[0], hi[1], hi[2]},
		{hi[0], hi[1], lo[2]},
	}
}

// ---------------------------------------------------------------------------
// Mesh
// ---------------------------------------------------------------------------

// PrimitiveKind records how a mesh's geometry was produced.
type PrimitiveKind int

const (
	PrimNone     PrimitiveKind = iota // explicit vertices or bounds
	PrimBox                           // Size holds x, y, z dimensions
	PrimCylinder                      // Size holds diameter, diameter, height
	PrimSphere                        // Size holds the diameter on every axis
	PrimCSG                           // boolean combination of primitives
)

func (k PrimitiveKind) String() string {
	switch k {
	case PrimNone:
		return "none"
	case PrimBox:
		return "box"
	case PrimCylinder:
		return "cylinder"
	case PrimSphere:
		return "sphere"
	case PrimCSG:
		return "csg"
	default:
		return "unknown"
	}
}

// Mesh is the local-space geometry of a mesh object. Bounds is always set;
// it is what bound-corner queries read.
type Mesh struct {
	Primitive PrimitiveKind `json:"primitive"`
	Size      mgl64.Vec3    `json:"size,omitempty"`
	Vertices  []mgl64.Vec3  `json:"vertices,omitempty"`
	Indices   []uint32      `json:"indices,omitempty"`
	Bounds    Bounds        `json:"bounds"`

	// Solid is the kernel solid behind primitive and CSG meshes. Solids
	// are immutable and shared between clones.
	Solid kernel.Solid `json:"-" copier:"-"`
}

// NewVertexMesh builds a mesh from explicit local-space vertices. Indices
// may be nil when only the point cloud matters.
func NewVertexMesh(vertices []mgl64.Vec3, indices []uint32) *Mesh {
	b := EmptyBounds()
	for _, v := range vertices {
		b.Extend(v)
	}
	if len(vertices) == 0 {
		b = Bounds{}
	}
	return &Mesh{
		Primitive: PrimNone,
		Vertices:  vertices,
		Indices:   indices,
		Bounds:    b,
	}
}

// NewBoundsMesh builds a mesh known only by its local bounds.
func NewBoundsMesh(b Bounds) *Mesh {
	return &Mesh{Primitive: PrimNone, Bounds: b}
}

// NewSolidMesh wraps a kernel solid. The local bounds are the solid's own
// bounding box.
func NewSolidMesh(kind PrimitiveKind, size mgl64.Vec3, s kernel.Solid) *Mesh {
	min, max := s.BoundingBox()
	return &Mesh{
		Primitive: kind,
		Size:      size,
		Bounds: Bounds{
			Min: mgl64.Vec3{min[0], min[1], min[2]},
			Max: mgl64.Vec3{max[0], max[1], max[2]},
		},
		Solid: s,
	}
}

// BoundCorners returns the eight local-space bounding corners.
func (m *Mesh) BoundCorners() [8]mgl64.Vec3 {
	return m.Bounds.Corners()
}
