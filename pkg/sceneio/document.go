// Package sceneio reads and writes scene files. YAML and JSON documents
// describe objects directly; .lignin and .lisp files are scene scripts run
// through the engine.
package sceneio

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/linkage-design/objectaligner/pkg/scene"
)

// Document is the on-disk form of a scene.
type Document struct {
	Active  string      `yaml:"active,omitempty" json:"active,omitempty"`
	Objects []ObjectDoc `yaml:"objects" json:"objects"`
}

// ObjectDoc describes one object. Parent refers to another object by name.
// Scale defaults to 1 on every axis when omitted.
type ObjectDoc struct {
	Name     string      `yaml:"name" json:"name"`
	Kind     scene.Kind  `yaml:"kind" json:"kind"`
	Parent   string      `yaml:"parent,omitempty" json:"parent,omitempty"`
	Location mgl64.Vec3  `yaml:"location,flow" json:"location"`
	Rotation mgl64.Vec3  `yaml:"rotation,flow,omitempty" json:"rotation,omitempty"`
	Scale    *mgl64.Vec3 `yaml:"scale,flow,omitempty" json:"scale,omitempty"`
	Mesh     *MeshDoc    `yaml:"mesh,omitempty" json:"mesh,omitempty"`
}

// Mesh primitive names used in documents.
const (
	PrimitiveBox      = "box"
	PrimitiveCylinder = "cylinder"
	PrimitiveSphere   = "sphere"
	PrimitiveVertices = "vertices"
	PrimitiveBounds   = "bounds"
	PrimitiveCSG      = "csg"
)

// MeshDoc describes mesh geometry. Which fields apply depends on Primitive:
// box uses Size, cylinder uses Radius and Height, sphere uses Radius,
// vertices uses Vertices and Indices, bounds and csg use Bounds.
type MeshDoc struct {
	Primitive string       `yaml:"primitive" json:"primitive"`
	Size      *mgl64.Vec3  `yaml:"size,flow,omitempty" json:"size,omitempty"`
	Radius    float64      `yaml:"radius,omitempty" json:"radius,omitempty"`
	Height    float64      `yaml:"height,omitempty" json:"height,omitempty"`
	Vertices  []mgl64.Vec3 `yaml:"vertices,omitempty" json:"vertices,omitempty"`
	Indices   []uint32     `yaml:"indices,flow,omitempty" json:"indices,omitempty"`
	Bounds    *BoundsDoc   `yaml:"bounds,omitempty" json:"bounds,omitempty"`
}

// BoundsDoc is an axis-aligned box in the object's local space.
type BoundsDoc struct {
	Min mgl64.Vec3 `yaml:"min,flow" json:"min"`
	Max mgl64.Vec3 `yaml:"max,flow" json:"max"`
}
