package align

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/linkage-design/objectaligner/pkg/scene"
	log "github.com/sirupsen/logrus"
)

var (
	// ErrNoSelection is returned when the scene has no active object.
	ErrNoSelection = errors.New("align: no active object")
	// ErrWrongType is returned when the active object is not a mesh.
	ErrWrongType = errors.New("align: active object is not a mesh")
	// ErrNotInvoked is returned by Execute before any successful Invoke.
	ErrNotInvoked = errors.New("align: operator has not been invoked")
)

// SelectMeshMessage is the user-facing report for a missing or non-mesh
// selection.
const SelectMeshMessage = "Please select a mesh object."

// ReportMessage maps an operator error to the message shown to the user.
func ReportMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoSelection), errors.Is(err, ErrWrongType):
		return SelectMeshMessage
	default:
		return err.Error()
	}
}

// Result describes one applied alignment. Locations are world space.
type Result struct {
	Object   scene.ObjectID `json:"object"`
	Name     string         `json:"name"`
	Original mgl64.Vec3     `json:"original"`
	Location mgl64.Vec3     `json:"location"`
	BBox     BoundingBox    `json:"bbox"`
	Request  Request        `json:"request"`
}

// invocation is what Invoke caches for later Execute calls.
type invocation struct {
	object          scene.ObjectID
	original        mgl64.Vec3
	bbox            BoundingBox
	includeChildren bool
}

// Operator is the invoke/execute pair behind the align command. It keeps the
// last request and the bounding box from the last invocation. An Operator
// is not safe for concurrent use.
type Operator struct {
	log   log.FieldLogger
	last  Request
	state *invocation
}

// NewOperator returns an Operator whose last request is DefaultRequest.
// A nil logger discards output.
func NewOperator(logger log.FieldLogger) *Operator {
	if logger == nil {
		l := log.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Operator{log: logger, last: DefaultRequest()}
}

// Last returns the parameters of the last successful run.
func (op *Operator) Last() Request {
	return op.last
}

// SetLast replaces the remembered request, for example with configured
// defaults before the first run.
func (op *Operator) SetLast(req Request) {
	op.last = req
}

// Invoke validates the active object, collects its bounding box once, and
// executes the alignment. Nothing is mutated when it fails.
func (op *Operator) Invoke(s *scene.Scene, req Request) (Result, error) {
	obj := s.ActiveObject()
	if obj == nil {
		op.log.Warn("align: nothing selected")
		return Result{}, ErrNoSelection
	}
	if obj.Kind != scene.KindMesh {
		op.log.WithField("object", obj.Name).Warnf("align: %s object selected", obj.Kind)
		return Result{}, fmt.Errorf("%q is a %s: %w", obj.Name, obj.Kind, ErrWrongType)
	}

	original, err := s.WorldLocation(obj.ID)
	if err != nil {
		return Result{}, fmt.Errorf("invoke: %w", err)
	}
	bbox, err := Collect(s, obj.ID, req.IncludeChildren)
	if err != nil {
		return Result{}, fmt.Errorf("invoke: %w", err)
	}

	op.state = &invocation{
		object:          obj.ID,
		original:        original,
		bbox:            bbox,
		includeChildren: req.IncludeChildren,
	}
	op.log.WithFields(log.Fields{
		"object":   obj.Name,
		"children": req.IncludeChildren,
		"min":      bbox.Min,
		"max":      bbox.Max,
	}).Debug("align: collected bounding box")

	return op.Execute(s, req)
}

// Execute aligns the invoked object against the cached bounding box,
// starting from the location it had at invoke time. Calling it again with
// different modes adjusts the last alignment instead of stacking on it.
// Changing IncludeChildren re-collects the box as seen from that original
// location.
func (op *Operator) Execute(s *scene.Scene, req Request) (Result, error) {
	if op.state == nil {
		return Result{}, ErrNotInvoked
	}
	obj := s.Get(op.state.object)
	if obj == nil {
		return Result{}, fmt.Errorf("execute %s: %w", op.state.object.Short(), scene.ErrNotFound)
	}

	if req.IncludeChildren != op.state.includeChildren {
		bbox, err := op.collectAtOriginal(s, obj.ID, req.IncludeChildren)
		if err != nil {
			return Result{}, fmt.Errorf("execute: %w", err)
		}
		op.state.bbox = bbox
		op.state.includeChildren = req.IncludeChildren
	}

	target := Align(op.state.original, op.state.bbox, req.Modes())
	if err := s.SetWorldLocation(obj.ID, target); err != nil {
		return Result{}, fmt.Errorf("execute: %w", err)
	}
	op.last = req

	res := Result{
		Object:   obj.ID,
		Name:     obj.Name,
		Original: op.state.original,
		Location: target,
		BBox:     op.state.bbox,
		Request:  req,
	}
	op.log.WithFields(log.Fields{
		"object": obj.Name,
		"modes":  fmt.Sprintf("%s/%s/%s", req.ModeX, req.ModeY, req.ModeZ),
		"from":   res.Original,
		"to":     res.Location,
	}).Info("align: object moved")
	return res, nil
}

// Reset forgets the cached invocation, for example after the scene was
// replaced. The last request is kept.
func (op *Operator) Reset() {
	op.state = nil
}

// Repeat invokes again on the current active object with the last request.
func (op *Operator) Repeat(s *scene.Scene) (Result, error) {
	return op.Invoke(s, op.last)
}

// collectAtOriginal collects the box of id as if its origin were still at
// the cached original location. Moving the root translates its whole
// subtree by the same world delta, so the box shifts by that delta too.
func (op *Operator) collectAtOriginal(s *scene.Scene, id scene.ObjectID, includeChildren bool) (BoundingBox, error) {
	current, err := s.WorldLocation(id)
	if err != nil {
		return BoundingBox{}, err
	}
	bbox, err := Collect(s, id, includeChildren)
	if err != nil {
		return BoundingBox{}, err
	}
	delta := op.state.original.Sub(current)
	return BoundingBox{
		Min:    bbox.Min.Add(delta),
		Max:    bbox.Max.Add(delta),
		Center: bbox.Center.Add(delta),
	}, nil
}
