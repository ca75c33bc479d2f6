package align

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/linkage-design/objectaligner/pkg/scene"
	"github.com/samber/lo"
)

// ErrEmptyContributingSet is returned when neither the root nor any of its
// included descendants carries mesh geometry.
var ErrEmptyContributingSet = errors.New("align: no mesh geometry to bound")

// BoundingBox is a world-space axis-aligned box. Min[i] <= Max[i] and
// Center is their midpoint.
type BoundingBox struct {
	Min    mgl64.Vec3 `json:"min"`
	Max    mgl64.Vec3 `json:"max"`
	Center mgl64.Vec3 `json:"center"`
}

// Size returns the extent along each axis.
func (b BoundingBox) Size() mgl64.Vec3 {
	return b.Max.Sub(b.Min)
}

// Contributors returns the objects whose geometry makes up the bounding
// box of root: root itself plus, when includeChildren is set, every
// descendant, filtered to mesh objects with geometry.
func Contributors(s *scene.Scene, root *scene.Object, includeChildren bool) []*scene.Object {
	all := []*scene.Object{root}
	if includeChildren {
		all = append(all, s.Descendants(root)...)
	}
	return lo.Filter(all, func(o *scene.Object, _ int) bool {
		return o.IsMesh()
	})
}

// Collect computes the world-space bounding box of root and, when
// includeChildren is set, all of its mesh descendants. Each contributing
// mesh adds its eight local bound corners transformed by its world matrix.
func Collect(s *scene.Scene, root scene.ObjectID, includeChildren bool) (BoundingBox, error) {
	r := s.Get(root)
	if r == nil {
		return BoundingBox{}, fmt.Errorf("collect %s: %w", root.Short(), scene.ErrNotFound)
	}

	contributors := Contributors(s, r, includeChildren)
	if len(contributors) == 0 {
		return BoundingBox{}, fmt.Errorf("collect %q: %w", r.Name, ErrEmptyContributingSet)
	}

	corners := make([]mgl64.Vec3, 0, 8*len(contributors))
	for _, o := range contributors {
		world, err := s.MatrixWorld(o.ID)
		if err != nil {
			return BoundingBox{}, fmt.Errorf("collect %q: %w", r.Name, err)
		}
		for _, c := range o.Mesh.BoundCorners() {
			corners = append(corners, mgl64.TransformCoordinate(c, world))
		}
	}

	return reduce(corners), nil
}

// reduce folds a non-empty corner list into its component-wise min and max.
func reduce(corners []mgl64.Vec3) BoundingBox {
	b := scene.EmptyBounds()
	for _, c := range corners {
		b.Extend(c)
	}
	return BoundingBox{Min: b.Min, Max: b.Max, Center: b.Center()}
}
