package scene

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrSingularParent is returned when a world position cannot be expressed in
// the parent's space because the parent's world matrix has no inverse.
var ErrSingularParent = errors.New("scene: parent transform is not invertible")

// MinDeterminant is the smallest absolute determinant a transform may have
// and still be inverted.
const MinDeterminant = 1e-12

// Singular reports whether m cannot be inverted reliably.
func Singular(m mgl64.Mat4) bool {
	return math.Abs(m.Det()) < MinDeterminant
}

// MatrixLocal returns the object's local-to-parent matrix:
// translation * rotZ * rotY * rotX * scale.
func MatrixLocal(o *Object) mgl64.Mat4 {
	t := mgl64.Translate3D(o.Location[0], o.Location[1], o.Location[2])
	rx := mgl64.HomogRotate3DX(mgl64.DegToRad(o.Rotation[0]))
	ry := mgl64.HomogRotate3DY(mgl64.DegToRad(o.Rotation[1]))
	rz := mgl64.HomogRotate3DZ(mgl64.DegToRad(o.Rotation[2]))
	sc := mgl64.Scale3D(o.Scale[0], o.Scale[1], o.Scale[2])
	return t.Mul4(rz).Mul4(ry).Mul4(rx).Mul4(sc)
}

// MatrixWorld returns the object's local-to-world matrix by composing the
// local matrices up the parent chain.
func (s *Scene) MatrixWorld(id ObjectID) (mgl64.Mat4, error) {
	m := mgl64.Ident4()
	seen := make(map[ObjectID]bool)
	for cur := id; !cur.IsZero(); {
		if seen[cur] {
			return mgl64.Ident4(), fmt.Errorf("world matrix of %s: %w", id.Short(), ErrCycle)
		}
		seen[cur] = true
		o := s.Objects[cur]
		if o == nil {
			return mgl64.Ident4(), fmt.Errorf("world matrix of %s: ancestor %s: %w", id.Short(), cur.Short(), ErrNotFound)
		}
		m = MatrixLocal(o).Mul4(m)
		cur = o.Parent
	}
	return m, nil
}

// WorldLocation returns the world-space position of the object's origin.
func (s *Scene) WorldLocation(id ObjectID) (mgl64.Vec3, error) {
	m, err := s.MatrixWorld(id)
	if err != nil {
		return mgl64.Vec3{}, err
	}
	return m.Col(3).Vec3(), nil
}

// SetWorldLocation moves the object so its origin sits at p in world space.
// Rotation and scale are untouched; only Location changes.
func (s *Scene) SetWorldLocation(id ObjectID, p mgl64.Vec3) error {
	o := s.Objects[id]
	if o == nil {
		return fmt.Errorf("set world location of %s: %w", id.Short(), ErrNotFound)
	}
	if o.Parent.IsZero() {
		o.Location = p
		s.Version++
		return nil
	}
	pm, err := s.MatrixWorld(o.Parent)
	if err != nil {
		return fmt.Errorf("set world location of %q: %w", o.Name, err)
	}
	if Singular(pm) {
		return fmt.Errorf("set world location of %q: %w", o.Name, ErrSingularParent)
	}
	o.Location = mgl64.TransformCoordinate(p, pm.Inv())
	s.Version++
	return nil
}
