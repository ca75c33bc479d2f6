package scene

import (
	"fmt"
	"math"
)

// ValidationSeverity indicates whether a validation finding blocks an
// operation or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks alignment
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	ObjectID ObjectID           // which object has the problem (zero if scene-level)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.ObjectID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] object %s: %s", e.Severity, e.ObjectID.Short(), e.Message)
}

// ValidationResult bundles blocking errors and advisory warnings.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// OK reports whether there are no blocking errors.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// Validate runs the structural and geometric checks on the scene. It is
// read-only and never mutates the scene.
func Validate(s *Scene) ValidationResult {
	var all []ValidationError
	all = append(all, validateHierarchy(s)...)
	all = append(all, validateReferences(s)...)
	all = append(all, validateLinks(s)...)
	all = append(all, validateNames(s)...)
	all = append(all, validateGeometry(s)...)
	all = append(all, validateTransforms(s)...)

	var result ValidationResult
	for _, e := range all {
		if e.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, e)
		} else {
			result.Errors = append(result.Errors, e)
		}
	}
	return result
}

// validateHierarchy checks for cycles using DFS with 3-color marking.
// White (0) = unvisited, gray (1) = in current DFS path, black (2) = fully explored.
func validateHierarchy(s *Scene) []ValidationError {
	const (
		white = iota
		gray
		black
	)

	color := make(map[ObjectID]int)
	var errs []ValidationError

	var visit func(id ObjectID) bool
	visit = func(id ObjectID) bool {
		switch color[id] {
		case black:
			return false
		case gray:
			errs = append(errs, ValidationError{
				ObjectID: id,
				Message:  fmt.Sprintf("cycle detected: object %s is its own ancestor", id.Short()),
				Severity: SeverityError,
			})
			return true
		}

		color[id] = gray
		o, ok := s.Objects[id]
		if !ok {
			// Dangling reference; handled by validateReferences.
			color[id] = black
			return false
		}
		for _, childID := range o.Children {
			if visit(childID) {
				return true
			}
		}
		color[id] = black
		return false
	}

	for id := range s.Objects {
		if color[id] == white && visit(id) {
			break
		}
	}
	return errs
}

// validateReferences checks that every referenced ObjectID exists.
func validateReferences(s *Scene) []ValidationError {
	var errs []ValidationError
	for id, o := range s.Objects {
		if o.ID != id {
			errs = append(errs, ValidationError{
				ObjectID: id,
				Message:  fmt.Sprintf("object is stored under %s but has ID %s", id.Short(), o.ID.Short()),
				Severity: SeverityError,
			})
		}
		if !o.Parent.IsZero() {
			if _, ok := s.Objects[o.Parent]; !ok {
				errs = append(errs, ValidationError{
					ObjectID: id,
					Message:  fmt.Sprintf("parent %s does not exist", o.Parent.Short()),
					Severity: SeverityError,
				})
			}
		}
		for _, cid := range o.Children {
			if _, ok := s.Objects[cid]; !ok {
				errs = append(errs, ValidationError{
					ObjectID: id,
					Message:  fmt.Sprintf("child %s does not exist", cid.Short()),
					Severity: SeverityError,
				})
			}
		}
	}
	for _, rid := range s.Roots {
		if _, ok := s.Objects[rid]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("root %s does not exist", rid.Short()),
				Severity: SeverityError,
			})
		}
	}
	if !s.Active.IsZero() {
		if _, ok := s.Objects[s.Active]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("active object %s does not exist", s.Active.Short()),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateLinks checks that parent and child links agree in both directions.
func validateLinks(s *Scene) []ValidationError {
	var errs []ValidationError
	for id, o := range s.Objects {
		for _, cid := range o.Children {
			c := s.Objects[cid]
			if c != nil && c.Parent != id {
				errs = append(errs, ValidationError{
					ObjectID: cid,
					Message:  fmt.Sprintf("listed as a child of %q but its parent is %s", o.Name, c.Parent.Short()),
					Severity: SeverityError,
				})
			}
		}
		if p := s.Objects[o.Parent]; !o.Parent.IsZero() && p != nil && !containsID(p.Children, id) {
			errs = append(errs, ValidationError{
				ObjectID: id,
				Message:  fmt.Sprintf("parent %q does not list this object as a child", p.Name),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

func containsID(ids []ObjectID, id ObjectID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

// validateNames checks that every object has a unique, non-empty name.
func validateNames(s *Scene) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]ObjectID)
	for id, o := range s.Objects {
		if o.Name == "" {
			errs = append(errs, ValidationError{
				ObjectID: id,
				Message:  "object has no name",
				Severity: SeverityError,
			})
			continue
		}
		if first, dup := seen[o.Name]; dup {
			errs = append(errs, ValidationError{
				ObjectID: id,
				Message:  fmt.Sprintf("duplicate name %q (also used by %s)", o.Name, first.Short()),
				Severity: SeverityError,
			})
			continue
		}
		seen[o.Name] = id
	}
	return errs
}

// validateGeometry checks that mesh objects carry geometry and that their
// local bounds are well formed.
func validateGeometry(s *Scene) []ValidationError {
	var errs []ValidationError
	for id, o := range s.Objects {
		switch {
		case o.Kind == KindMesh && o.Mesh == nil:
			errs = append(errs, ValidationError{
				ObjectID: id,
				Message:  fmt.Sprintf("mesh object %q has no geometry", o.Name),
				Severity: SeverityError,
			})
		case o.Kind != KindMesh && o.Mesh != nil:
			errs = append(errs, ValidationError{
				ObjectID: id,
				Message:  fmt.Sprintf("%s object %q carries mesh geometry that alignment ignores", o.Kind, o.Name),
				Severity: SeverityWarning,
			})
		}
		if o.Mesh != nil && o.Mesh.Bounds.IsEmpty() {
			errs = append(errs, ValidationError{
				ObjectID: id,
				Message:  fmt.Sprintf("mesh of %q has inverted bounds", o.Name),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateTransforms flags non-finite components and zero scale.
func validateTransforms(s *Scene) []ValidationError {
	var errs []ValidationError
	for id, o := range s.Objects {
		for _, v := range [...]float64{
			o.Location[0], o.Location[1], o.Location[2],
			o.Rotation[0], o.Rotation[1], o.Rotation[2],
			o.Scale[0], o.Scale[1], o.Scale[2],
		} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				errs = append(errs, ValidationError{
					ObjectID: id,
					Message:  fmt.Sprintf("object %q has a non-finite transform component", o.Name),
					Severity: SeverityError,
				})
				break
			}
		}
		if o.Scale[0] == 0 || o.Scale[1] == 0 || o.Scale[2] == 0 {
			errs = append(errs, ValidationError{
				ObjectID: id,
				Message:  fmt.Sprintf("object %q has zero scale; its children cannot be placed in world space", o.Name),
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}
