package align

import "github.com/go-gl/mathgl/mgl64"

// Align returns the location that puts the chosen reference point of bbox
// on the world origin along every axis whose mode is not ModeNone. current
// and the result are world-space positions of the object's origin.
func Align(current mgl64.Vec3, bbox BoundingBox, modes AxisModes) mgl64.Vec3 {
	target := current
	for axis, mode := range modes {
		switch mode {
		case ModeMin:
			target[axis] = current[axis] - bbox.Min[axis]
		case ModeMax:
			target[axis] = current[axis] - bbox.Max[axis]
		case ModeCenter:
			target[axis] = current[axis] - bbox.Center[axis]
		case ModeOrigin:
			target[axis] = 0
		}
	}
	return target
}
