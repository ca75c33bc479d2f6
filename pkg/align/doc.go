// Package align moves a mesh object so that its world-space bounding box
// lines up with the world origin on chosen axes.
//
// Collect gathers the bounding box of an object and, optionally, all of its
// mesh descendants. Align turns that box and three per-axis modes into a new
// world location. Operator wraps both in an invoke/execute pair: Invoke
// validates the active object and collects once, Execute re-applies modes
// against the cached box so parameters can be adjusted after the fact.
package align
