package engine

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/linkage-design/objectaligner/pkg/kernel"
	"github.com/linkage-design/objectaligner/pkg/scene"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms scene Lisp source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: set-parent -> set_parent
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec3 wraps an mgl64.Vec3.
type sexpVec3 struct {
	vec mgl64.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec[0], v.vec[1], v.vec[2])
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpSolid wraps a kernel solid produced by a primitive or boolean builtin
// so it can be consumed by `mesh`.
type sexpSolid struct {
	kind  scene.PrimitiveKind
	size  mgl64.Vec3
	solid kernel.Solid
}

func (s *sexpSolid) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s %gx%gx%g)", s.kind, s.size[0], s.size[1], s.size[2])
}
func (s *sexpSolid) Type() *zygo.RegisteredType { return nil }

// sexpGeometry wraps explicit vertex geometry built by `vertices`.
type sexpGeometry struct {
	mesh *scene.Mesh
}

func (g *sexpGeometry) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vertices %d)", len(g.mesh.Vertices))
}
func (g *sexpGeometry) Type() *zygo.RegisteredType { return nil }

// sexpObjectRef wraps a scene.ObjectID so objects can be used as parents.
type sexpObjectRef struct {
	id   scene.ObjectID
	name string
}

func (o *sexpObjectRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(object %q)", o.name)
}
func (o *sexpObjectRef) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toUint32 extracts a non-negative integer index.
func toUint32(s zygo.Sexp) (uint32, error) {
	v, ok := s.(*zygo.SexpInt)
	if !ok {
		return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
	}
	if v.Val < 0 || v.Val > int64(^uint32(0)) {
		return 0, fmt.Errorf("index %d out of range", v.Val)
	}
	return uint32(v.Val), nil
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a Vec3 from a sexpVec3.
func toVec3(s zygo.Sexp) (mgl64.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return mgl64.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toScale accepts either a vec3 or a single number for uniform scale.
func toScale(s zygo.Sexp) (mgl64.Vec3, error) {
	if f, err := toFloat64(s); err == nil {
		return mgl64.Vec3{f, f, f}, nil
	}
	v, err := toVec3(s)
	if err != nil {
		return mgl64.Vec3{}, fmt.Errorf("expected number or vec3, got %T (%s)", s, s.SexpString(nil))
	}
	return v, nil
}

// toSolid extracts a kernel solid from a sexpSolid.
func toSolid(s zygo.Sexp) (*sexpSolid, error) {
	if v, ok := s.(*sexpSolid); ok {
		return v, nil
	}
	return nil, fmt.Errorf("expected solid, got %T (%s)", s, s.SexpString(nil))
}

// toObjectRef resolves an object reference or an object name.
func toObjectRef(s *scene.Scene, x zygo.Sexp) (*scene.Object, error) {
	switch v := x.(type) {
	case *sexpObjectRef:
		if o := s.Get(v.id); o != nil {
			return o, nil
		}
		return nil, fmt.Errorf("object %q is not in the scene", v.name)
	case *zygo.SexpStr:
		if o := s.Lookup(v.S); o != nil {
			return o, nil
		}
		return nil, fmt.Errorf("no object named %q", v.S)
	}
	return nil, fmt.Errorf("expected object reference or name, got %T (%s)", x, x.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the scene DSL builtins into a zygomys
// environment. The builtins populate s during evaluation and build solids
// with k.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, s *scene.Scene, k kernel.Kernel) {

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var v mgl64.Vec3
		for i, axis := range scene.Axes {
			f, err := toFloat64(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %s: %w", axis, err)
			}
			v[i] = f
		}
		return &sexpVec3{vec: v}, nil
	})

	// -----------------------------------------------------------------------
	// (box :size (vec3 2 1 1))   or   (box :size 2)
	// -----------------------------------------------------------------------
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		size := mgl64.Vec3{1, 1, 1}
		if v, ok := pa.kw["size"]; ok {
			sz, err := toScale(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("box: size: %w", err)
			}
			size = sz
		}
		if size[0] <= 0 || size[1] <= 0 || size[2] <= 0 {
			return zygo.SexpNull, fmt.Errorf("box: size must be positive, got %v", size)
		}
		return &sexpSolid{
			kind:  scene.PrimBox,
			size:  size,
			solid: k.Box(size[0], size[1], size[2]),
		}, nil
	})

	// -----------------------------------------------------------------------
	// (cylinder :radius 1 :height 2)
	// -----------------------------------------------------------------------
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		radius, height := 1.0, 2.0
		if v, ok := pa.kw["radius"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("cylinder: radius: %w", err)
			}
			radius = f
		}
		if v, ok := pa.kw["height"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("cylinder: height: %w", err)
			}
			height = f
		}
		if radius <= 0 || height <= 0 {
			return zygo.SexpNull, fmt.Errorf("cylinder: radius and height must be positive")
		}
		return &sexpSolid{
			kind:  scene.PrimCylinder,
			size:  mgl64.Vec3{2 * radius, 2 * radius, height},
			solid: k.Cylinder(height, radius, 32),
		}, nil
	})

	// -----------------------------------------------------------------------
	// (sphere :radius 1)
	// -----------------------------------------------------------------------
	env.AddFunction("sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		radius := 1.0
		if v, ok := pa.kw["radius"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("sphere: radius: %w", err)
			}
			radius = f
		}
		if radius <= 0 {
			return zygo.SexpNull, fmt.Errorf("sphere: radius must be positive")
		}
		d := 2 * radius
		return &sexpSolid{
			kind:  scene.PrimSphere,
			size:  mgl64.Vec3{d, d, d},
			solid: k.Sphere(radius),
		}, nil
	})

	// -----------------------------------------------------------------------
	// (union a b ...) (difference a b ...) (intersection a b ...)
	// -----------------------------------------------------------------------
	booleans := map[string]func(a, b kernel.Solid) kernel.Solid{
		"union":        k.Union,
		"difference":   k.Difference,
		"intersection": k.Intersection,
	}
	for opName, op := range booleans {
		env.AddFunction(opName, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) < 2 {
				return zygo.SexpNull, fmt.Errorf("%s requires at least 2 solids, got %d", name, len(args))
			}
			first, err := toSolid(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: operand 1: %w", name, err)
			}
			acc := first.solid
			for i, arg := range args[1:] {
				next, err := toSolid(arg)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: operand %d: %w", name, i+2, err)
				}
				acc = op(acc, next.solid)
			}
			return csg(acc), nil
		})
	}

	// -----------------------------------------------------------------------
	// (translate solid (vec3 1 0 0)) (rotate solid (vec3 0 0 45))
	// (scale solid 2)
	// -----------------------------------------------------------------------
	env.AddFunction("translate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		sol, v, err := solidAndVec(name, args, toVec3)
		if err != nil {
			return zygo.SexpNull, err
		}
		return csg(k.Translate(sol.solid, v[0], v[1], v[2])), nil
	})
	env.AddFunction("rotate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		sol, v, err := solidAndVec(name, args, toVec3)
		if err != nil {
			return zygo.SexpNull, err
		}
		return csg(k.Rotate(sol.solid, v[0], v[1], v[2])), nil
	})
	env.AddFunction("scale", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		sol, v, err := solidAndVec(name, args, toScale)
		if err != nil {
			return zygo.SexpNull, err
		}
		if v[0] == 0 || v[1] == 0 || v[2] == 0 {
			return zygo.SexpNull, fmt.Errorf("scale: factors must be non-zero, got %v", v)
		}
		return csg(k.Scale(sol.solid, v[0], v[1], v[2])), nil
	})

	// -----------------------------------------------------------------------
	// (vertices (vec3 0 0 0) (vec3 1 0 0) (vec3 0 1 0) :indices (list 0 1 2))
	// -----------------------------------------------------------------------
	env.AddFunction("vertices", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		verts := make([]mgl64.Vec3, 0, len(pa.positional))
		for i, arg := range pa.positional {
			v, err := toVec3(arg)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vertices: vertex %d: %w", i, err)
			}
			verts = append(verts, v)
		}
		var indices []uint32
		if v, ok := pa.kw["indices"]; ok {
			items, err := sexpListToSlice(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vertices: indices: %w", err)
			}
			for _, item := range items {
				idx, err := toUint32(item)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("vertices: indices: %w", err)
				}
				if int(idx) >= len(verts) {
					return zygo.SexpNull, fmt.Errorf("vertices: index %d out of range for %d vertices", idx, len(verts))
				}
				indices = append(indices, idx)
			}
		}
		return &sexpGeometry{mesh: scene.NewVertexMesh(verts, indices)}, nil
	})

	// -----------------------------------------------------------------------
	// (mesh "name" (box ...) :at (vec3 ...) :rotate (vec3 ...) :scale 2
	//       :parent "other")
	// (empty "name" ...) (light "name" ...) (camera "name" ...)
	// (curve "name" ...)
	// -----------------------------------------------------------------------
	for _, kind := range []scene.Kind{scene.KindMesh, scene.KindEmpty, scene.KindLight, scene.KindCamera, scene.KindCurve} {
		env.AddFunction(kind.String(), func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			return addObject(s, kind, name, args)
		})
	}

	// -----------------------------------------------------------------------
	// (activate "name")
	// -----------------------------------------------------------------------
	env.AddFunction("activate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("activate requires exactly 1 argument, got %d", len(args))
		}
		o, err := toObjectRef(s, args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("activate: %w", err)
		}
		s.Active = o.ID
		return &sexpObjectRef{id: o.ID, name: o.Name}, nil
	})

	// -----------------------------------------------------------------------
	// (set-parent "child" "parent")   (set-parent "child" nil)
	// -----------------------------------------------------------------------
	env.AddFunction("set_parent", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("set-parent requires a child and a parent, got %d arguments", len(args))
		}
		child, err := toObjectRef(s, args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("set-parent: child: %w", err)
		}
		parentID := scene.ZeroID
		if args[1] != zygo.SexpNull {
			p, err := toObjectRef(s, args[1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("set-parent: parent: %w", err)
			}
			parentID = p.ID
		}
		if err := s.SetParent(child.ID, parentID); err != nil {
			return zygo.SexpNull, fmt.Errorf("set-parent: %w", err)
		}
		return &sexpObjectRef{id: child.ID, name: child.Name}, nil
	})
}

func csg(s kernel.Solid) *sexpSolid {
	min, max := s.BoundingBox()
	return &sexpSolid{
		kind:  scene.PrimCSG,
		size:  mgl64.Vec3{max[0] - min[0], max[1] - min[1], max[2] - min[2]},
		solid: s,
	}
}

// solidAndVec parses the (op solid value) argument shape shared by the
// solid transform builtins.
func solidAndVec(name string, args []zygo.Sexp, conv func(zygo.Sexp) (mgl64.Vec3, error)) (*sexpSolid, mgl64.Vec3, error) {
	if len(args) != 2 {
		return nil, mgl64.Vec3{}, fmt.Errorf("%s requires a solid and a value, got %d arguments", name, len(args))
	}
	sol, err := toSolid(args[0])
	if err != nil {
		return nil, mgl64.Vec3{}, fmt.Errorf("%s: %w", name, err)
	}
	v, err := conv(args[1])
	if err != nil {
		return nil, mgl64.Vec3{}, fmt.Errorf("%s: %w", name, err)
	}
	return sol, v, nil
}

// addObject implements the object builtins. Only mesh objects take a
// geometry body; the parent must already be declared.
func addObject(s *scene.Scene, kind scene.Kind, fn string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	if len(pa.positional) < 1 {
		return zygo.SexpNull, fmt.Errorf("%s requires a name argument", fn)
	}
	objName, err := toString(pa.positional[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("%s: name: %w", fn, err)
	}
	if objName == "" {
		return zygo.SexpNull, fmt.Errorf("%s: name must not be empty", fn)
	}
	if s.Lookup(objName) != nil {
		return zygo.SexpNull, fmt.Errorf("%s: duplicate object name %q", fn, objName)
	}

	o := scene.NewObject(objName, kind)
	if len(pa.positional) > 2 {
		return zygo.SexpNull, fmt.Errorf("%s %q: expected at most one body expression", fn, objName)
	}
	if len(pa.positional) == 2 {
		if kind != scene.KindMesh {
			return zygo.SexpNull, fmt.Errorf("%s %q: only mesh objects take geometry", fn, objName)
		}
		switch body := pa.positional[1].(type) {
		case *sexpSolid:
			o.Mesh = scene.NewSolidMesh(body.kind, body.size, body.solid)
		case *sexpGeometry:
			o.Mesh = body.mesh
		default:
			return zygo.SexpNull, fmt.Errorf("%s %q: expected solid or vertices, got %T", fn, objName, body)
		}
	}

	if v, ok := pa.kw["at"]; ok {
		if o.Location, err = toVec3(v); err != nil {
			return zygo.SexpNull, fmt.Errorf("%s %q: at: %w", fn, objName, err)
		}
	}
	if v, ok := pa.kw["rotate"]; ok {
		if o.Rotation, err = toVec3(v); err != nil {
			return zygo.SexpNull, fmt.Errorf("%s %q: rotate: %w", fn, objName, err)
		}
	}
	if v, ok := pa.kw["scale"]; ok {
		if o.Scale, err = toScale(v); err != nil {
			return zygo.SexpNull, fmt.Errorf("%s %q: scale: %w", fn, objName, err)
		}
	}
	if v, ok := pa.kw["parent"]; ok {
		p, err := toObjectRef(s, v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s %q: parent: %w", fn, objName, err)
		}
		o.Parent = p.ID
	}

	s.AddObject(o)
	return &sexpObjectRef{id: o.ID, name: o.Name}, nil
}
