package scene

import (
	"errors"
	"fmt"
	"sort"

	"github.com/jinzhu/copier"
)

var (
	// ErrNotFound is returned when an object ID or name does not resolve.
	ErrNotFound = errors.New("scene: object not found")
	// ErrCycle is returned when a parent link would make the hierarchy cyclic.
	ErrCycle = errors.New("scene: parent link would create a cycle")
)

// Scene is the object graph an operator reads from and writes to.
type Scene struct {
	Objects   map[ObjectID]*Object `json:"objects"`
	Roots     []ObjectID           `json:"roots"`
	NameIndex map[string]ObjectID  `json:"name_index"`
	Active    ObjectID             `json:"active,omitempty"`
	Version   uint64               `json:"version"`
}

// New creates an empty Scene.
func New() *Scene {
	return &Scene{
		Objects:   make(map[ObjectID]*Object),
		NameIndex: make(map[string]ObjectID),
	}
}

// AddObject adds an object to the scene. It does not check for duplicates.
// An object whose Parent is set is appended to that parent's children when
// the parent is already present; otherwise it becomes a root.
func (s *Scene) AddObject(o *Object) {
	s.Objects[o.ID] = o
	if o.Name != "" {
		s.NameIndex[o.Name] = o.ID
	}
	if p := s.Objects[o.Parent]; !o.Parent.IsZero() && p != nil {
		p.Children = append(p.Children, o.ID)
	} else {
		s.Roots = append(s.Roots, o.ID)
	}
	s.Version++
}

// SetParent links child under parent. Passing ZeroID as parent detaches the
// child and makes it a root. The child's local transform is kept as is, so
// its world placement follows the new parent.
func (s *Scene) SetParent(child, parent ObjectID) error {
	c := s.Objects[child]
	if c == nil {
		return fmt.Errorf("set parent of %s: %w", child.Short(), ErrNotFound)
	}
	var p *Object
	if !parent.IsZero() {
		p = s.Objects[parent]
		if p == nil {
			return fmt.Errorf("set parent of %q to %s: %w", c.Name, parent.Short(), ErrNotFound)
		}
		if parent == child || s.isDescendant(parent, child) {
			return fmt.Errorf("set parent of %q to %q: %w", c.Name, p.Name, ErrCycle)
		}
	}

	// Detach from the current position.
	if old := s.Objects[c.Parent]; !c.Parent.IsZero() && old != nil {
		old.Children = removeID(old.Children, child)
	} else {
		s.Roots = removeID(s.Roots, child)
	}

	c.Parent = parent
	if p != nil {
		p.Children = append(p.Children, child)
	} else {
		s.Roots = append(s.Roots, child)
	}
	s.Version++
	return nil
}

// isDescendant reports whether id is reachable from ancestor's children.
func (s *Scene) isDescendant(id, ancestor ObjectID) bool {
	a := s.Objects[ancestor]
	if a == nil {
		return false
	}
	for _, d := range s.Descendants(a) {
		if d.ID == id {
			return true
		}
	}
	return false
}

func removeID(ids []ObjectID, id ObjectID) []ObjectID {
	out := ids[:0]
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}

// Get returns the object with the given ID, or nil.
func (s *Scene) Get(id ObjectID) *Object {
	return s.Objects[id]
}

// Lookup returns the object with the given name, or nil.
func (s *Scene) Lookup(name string) *Object {
	id, ok := s.NameIndex[name]
	if !ok {
		return nil
	}
	return s.Objects[id]
}

// MustLookup returns the object with the given name, or panics.
func (s *Scene) MustLookup(name string) *Object {
	o := s.Lookup(name)
	if o == nil {
		panic(fmt.Sprintf("scene: no object named %q", name))
	}
	return o
}

// Children returns the direct children of o.
func (s *Scene) Children(o *Object) []*Object {
	children := make([]*Object, 0, len(o.Children))
	for _, cid := range o.Children {
		if c := s.Objects[cid]; c != nil {
			children = append(children, c)
		}
	}
	return children
}

// Descendants returns every object reachable from o through child links,
// depth first in child order, excluding o itself. Objects reachable twice
// are listed once.
func (s *Scene) Descendants(o *Object) []*Object {
	var out []*Object
	seen := map[ObjectID]bool{o.ID: true}
	var walk func(n *Object)
	walk = func(n *Object) {
		for _, c := range s.Children(n) {
			if seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			out = append(out, c)
			walk(c)
		}
	}
	walk(o)
	return out
}

// Ordered returns all objects reachable from the roots, parents before
// children, in insertion order.
func (s *Scene) Ordered() []*Object {
	var out []*Object
	for _, rid := range s.Roots {
		r := s.Objects[rid]
		if r == nil {
			continue
		}
		out = append(out, r)
		out = append(out, s.Descendants(r)...)
	}
	return out
}

// Meshes returns all mesh objects that carry geometry, sorted by name.
func (s *Scene) Meshes() []*Object {
	var meshes []*Object
	for _, o := range s.Objects {
		if o.IsMesh() {
			meshes = append(meshes, o)
		}
	}
	sort.Slice(meshes, func(i, j int) bool { return meshes[i].Name < meshes[j].Name })
	return meshes
}

// SetActive makes the named object the active selection.
func (s *Scene) SetActive(name string) error {
	o := s.Lookup(name)
	if o == nil {
		return fmt.Errorf("select %q: %w", name, ErrNotFound)
	}
	s.Active = o.ID
	return nil
}

// ActiveObject returns the active object, or nil when nothing is selected.
func (s *Scene) ActiveObject() *Object {
	if s.Active.IsZero() {
		return nil
	}
	return s.Objects[s.Active]
}

// ObjectCount returns the total number of objects.
func (s *Scene) ObjectCount() int {
	return len(s.Objects)
}

// Clone returns a deep copy of the scene. Kernel solids are shared.
func (s *Scene) Clone() (*Scene, error) {
	out := New()
	if err := copier.CopyWithOption(out, s, copier.Option{DeepCopy: true}); err != nil {
		return nil, fmt.Errorf("clone scene: %w", err)
	}
	for id, o := range s.Objects {
		if o.Mesh == nil || o.Mesh.Solid == nil {
			continue
		}
		if c := out.Objects[id]; c != nil && c.Mesh != nil {
			c.Mesh.Solid = o.Mesh.Solid
		}
	}
	return out, nil
}
