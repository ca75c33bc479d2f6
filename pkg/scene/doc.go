// Package scene defines the object scene graph that alignment runs against.
// A scene is a forest of objects linked by parent/child relationships; each
// object carries a local transform and, for mesh objects, local geometry
// from which its eight bounding corners are derived.
package scene
