package sceneio

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/linkage-design/objectaligner/pkg/engine"
	"github.com/linkage-design/objectaligner/pkg/kernel"
	"github.com/linkage-design/objectaligner/pkg/scene"
	"gopkg.in/yaml.v3"
)

// Format identifies a scene file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatDSL  Format = "lisp"
)

// ErrUnsupportedFormat is returned for unknown formats, and when writing a
// scene script.
var ErrUnsupportedFormat = errors.New("sceneio: unsupported format")

// ParseFormat converts a format name into a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	case "lisp", "lignin", "dsl":
		return FormatDSL, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("%w: %s has no extension", ErrUnsupportedFormat, path)
	}
	return ParseFormat(ext)
}

// Load reads the scene file at path. Primitive meshes are built with k;
// a nil kernel keeps them as bounds only. opts configure the engine that
// runs scene scripts.
func Load(path string, k kernel.Kernel, opts ...engine.Option) (*scene.Scene, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sceneio: %w", err)
	}
	defer f.Close()

	s, err := Decode(f, format, k, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Decode reads a scene in the given format from r.
func Decode(r io.Reader, format Format, k kernel.Kernel, opts ...engine.Option) (*scene.Scene, error) {
	if format == FormatDSL {
		return evaluate(r, k, opts)
	}

	var doc Document
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("sceneio: decode yaml: %w", err)
		}
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("sceneio: decode json: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return Build(&doc, k)
}

func evaluate(r io.Reader, k kernel.Kernel, opts []engine.Option) (*scene.Scene, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("sceneio: %w", err)
	}
	if k != nil {
		opts = append(opts, engine.WithKernel(k))
	}
	s, evalErrs, err := engine.NewEngine(opts...).Evaluate(string(src))
	if err != nil {
		return nil, fmt.Errorf("sceneio: %w", err)
	}
	if len(evalErrs) > 0 {
		errs := make([]error, len(evalErrs))
		for i, e := range evalErrs {
			errs[i] = e
		}
		return nil, fmt.Errorf("sceneio: script: %w", errors.Join(errs...))
	}
	return s, nil
}

// Save writes s to path in the format its extension names.
func Save(path string, s *scene.Scene) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("sceneio: %w", err)
	}
	if err := Encode(f, format, s); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Encode writes s to w. Scene scripts cannot be written.
func Encode(w io.Writer, format Format, s *scene.Scene) error {
	doc, err := NewDocument(s)
	if err != nil {
		return err
	}
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("sceneio: encode yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("sceneio: encode json: %w", err)
		}
		return nil
	}
	return fmt.Errorf("%w: cannot write %q", ErrUnsupportedFormat, format)
}

// Build turns a document into a scene. Objects may name parents declared
// later in the document; children keep document order.
func Build(doc *Document, k kernel.Kernel) (*scene.Scene, error) {
	s := scene.New()
	objects := make([]*scene.Object, len(doc.Objects))
	for i, od := range doc.Objects {
		if od.Name == "" {
			return nil, fmt.Errorf("sceneio: object %d has no name", i)
		}
		if s.Lookup(od.Name) != nil {
			return nil, fmt.Errorf("sceneio: duplicate object name %q", od.Name)
		}
		o := scene.NewObject(od.Name, od.Kind)
		o.Location = od.Location
		o.Rotation = od.Rotation
		if od.Scale != nil {
			o.Scale = *od.Scale
		}
		if od.Mesh != nil {
			if od.Kind != scene.KindMesh {
				return nil, fmt.Errorf("sceneio: object %q: only mesh objects take geometry", od.Name)
			}
			m, err := buildMesh(od.Mesh, k)
			if err != nil {
				return nil, fmt.Errorf("sceneio: object %q: %w", od.Name, err)
			}
			o.Mesh = m
		}
		s.AddObject(o)
		objects[i] = o
	}

	for i, od := range doc.Objects {
		if od.Parent == "" {
			continue
		}
		p := s.Lookup(od.Parent)
		if p == nil {
			return nil, fmt.Errorf("sceneio: object %q: parent %q: %w", od.Name, od.Parent, scene.ErrNotFound)
		}
		if err := s.SetParent(objects[i].ID, p.ID); err != nil {
			return nil, fmt.Errorf("sceneio: %w", err)
		}
	}

	if doc.Active != "" {
		if err := s.SetActive(doc.Active); err != nil {
			return nil, fmt.Errorf("sceneio: active: %w", err)
		}
	}
	return s, nil
}

func buildMesh(md *MeshDoc, k kernel.Kernel) (*scene.Mesh, error) {
	switch strings.ToLower(md.Primitive) {
	case PrimitiveBox:
		size := mgl64.Vec3{1, 1, 1}
		if md.Size != nil {
			size = *md.Size
		}
		if size[0] <= 0 || size[1] <= 0 || size[2] <= 0 {
			return nil, fmt.Errorf("box size must be positive, got %v", size)
		}
		if k == nil {
			return primitiveBounds(scene.PrimBox, size), nil
		}
		return scene.NewSolidMesh(scene.PrimBox, size, k.Box(size[0], size[1], size[2])), nil

	case PrimitiveCylinder:
		if md.Radius <= 0 || md.Height <= 0 {
			return nil, fmt.Errorf("cylinder radius and height must be positive")
		}
		size := mgl64.Vec3{2 * md.Radius, 2 * md.Radius, md.Height}
		if k == nil {
			return primitiveBounds(scene.PrimCylinder, size), nil
		}
		return scene.NewSolidMesh(scene.PrimCylinder, size, k.Cylinder(md.Height, md.Radius, 32)), nil

	case PrimitiveSphere:
		if md.Radius <= 0 {
			return nil, fmt.Errorf("sphere radius must be positive")
		}
		d := 2 * md.Radius
		size := mgl64.Vec3{d, d, d}
		if k == nil {
			return primitiveBounds(scene.PrimSphere, size), nil
		}
		return scene.NewSolidMesh(scene.PrimSphere, size, k.Sphere(md.Radius)), nil

	case PrimitiveVertices:
		for _, idx := range md.Indices {
			if int(idx) >= len(md.Vertices) {
				return nil, fmt.Errorf("index %d out of range for %d vertices", idx, len(md.Vertices))
			}
		}
		return scene.NewVertexMesh(md.Vertices, md.Indices), nil

	case PrimitiveBounds, PrimitiveCSG:
		if md.Bounds == nil {
			return nil, fmt.Errorf("%s mesh needs bounds", md.Primitive)
		}
		m := scene.NewBoundsMesh(scene.Bounds{Min: md.Bounds.Min, Max: md.Bounds.Max})
		if md.Primitive == PrimitiveCSG {
			m.Primitive = scene.PrimCSG
			m.Size = m.Bounds.Size()
		}
		return m, nil
	}
	return nil, fmt.Errorf("unknown mesh primitive %q", md.Primitive)
}

// primitiveBounds stands in for a primitive when no kernel is available.
func primitiveBounds(kind scene.PrimitiveKind, size mgl64.Vec3) *scene.Mesh {
	half := size.Mul(0.5)
	m := scene.NewBoundsMesh(scene.Bounds{Min: half.Mul(-1), Max: half})
	m.Primitive = kind
	m.Size = size
	return m
}

// NewDocument converts a scene into its document form, parents before
// children. Boolean solids are written as their local bounds.
func NewDocument(s *scene.Scene) (*Document, error) {
	doc := &Document{}
	if a := s.ActiveObject(); a != nil {
		doc.Active = a.Name
	}
	for _, o := range s.Ordered() {
		od := ObjectDoc{
			Name:     o.Name,
			Kind:     o.Kind,
			Location: o.Location,
			Rotation: o.Rotation,
		}
		if o.Scale != (mgl64.Vec3{1, 1, 1}) {
			sc := o.Scale
			od.Scale = &sc
		}
		if p := s.Get(o.Parent); p != nil {
			od.Parent = p.Name
		}
		if o.Mesh != nil {
			md, err := meshDoc(o.Mesh)
			if err != nil {
				return nil, fmt.Errorf("sceneio: object %q: %w", o.Name, err)
			}
			od.Mesh = md
		}
		doc.Objects = append(doc.Objects, od)
	}
	return doc, nil
}

func meshDoc(m *scene.Mesh) (*MeshDoc, error) {
	switch m.Primitive {
	case scene.PrimBox:
		size := m.Size
		return &MeshDoc{Primitive: PrimitiveBox, Size: &size}, nil
	case scene.PrimCylinder:
		return &MeshDoc{Primitive: PrimitiveCylinder, Radius: m.Size[0] / 2, Height: m.Size[2]}, nil
	case scene.PrimSphere:
		return &MeshDoc{Primitive: PrimitiveSphere, Radius: m.Size[0] / 2}, nil
	case scene.PrimCSG:
		return &MeshDoc{Primitive: PrimitiveCSG, Bounds: &BoundsDoc{Min: m.Bounds.Min, Max: m.Bounds.Max}}, nil
	case scene.PrimNone:
		if len(m.Vertices) > 0 {
			return &MeshDoc{Primitive: PrimitiveVertices, Vertices: m.Vertices, Indices: m.Indices}, nil
		}
		return &MeshDoc{Primitive: PrimitiveBounds, Bounds: &BoundsDoc{Min: m.Bounds.Min, Max: m.Bounds.Max}}, nil
	}
	return nil, fmt.Errorf("cannot write %s mesh", m.Primitive)
}
