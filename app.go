package main

import (
	"context"
	"sync"

	"github.com/linkage-design/objectaligner/pkg/align"
	"github.com/linkage-design/objectaligner/pkg/config"
	"github.com/linkage-design/objectaligner/pkg/engine"
	"github.com/linkage-design/objectaligner/pkg/kernel"
	"github.com/linkage-design/objectaligner/pkg/kernel/sdfx"
	"github.com/linkage-design/objectaligner/pkg/logging"
	"github.com/linkage-design/objectaligner/pkg/scene"
	"github.com/linkage-design/objectaligner/pkg/sceneio"
	"github.com/linkage-design/objectaligner/pkg/tessellate"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

// colorPalette is a default palette used to assign distinct colors to objects.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// activeColor marks the active object in the viewport.
const activeColor = "#F1C40F"

// App is the Wails backend. It exposes methods to the frontend via bindings.
// Bindings may be called from several goroutines, so the scene and the
// operator are guarded by mu.
type App struct {
	ctx    context.Context
	log    log.FieldLogger
	engine *engine.Engine
	kernel kernel.Kernel

	mu    sync.Mutex
	scene *scene.Scene
	op    *align.Operator
}

// MeshData is the JSON-serializable mesh format sent to the frontend.
type MeshData struct {
	Vertices   []float32 `json:"vertices"`
	Normals    []float32 `json:"normals"`
	Indices    []uint32  `json:"indices"`
	ObjectName string    `json:"objectName"`
	Color      string    `json:"color"`
	Active     bool      `json:"active"`
}

// ObjectData describes one scene object for the outliner.
type ObjectData struct {
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	Parent string `json:"parent,omitempty"`
	Active bool   `json:"active"`
}

// EvalErrorData is a JSON-serializable eval error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result returned to the frontend after a scene was
// evaluated or loaded.
type EvalResult struct {
	Meshes   []MeshData      `json:"meshes"`
	Objects  []ObjectData    `json:"objects"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

// AlignResult is returned by the alignment bindings. Message holds the
// report shown to the user when the operator refused to run.
type AlignResult struct {
	Result  *align.Result `json:"result,omitempty"`
	Message string        `json:"message,omitempty"`
	Meshes  []MeshData    `json:"meshes"`
}

// NewApp creates an App with default settings and a silent logger.
func NewApp() *App {
	return NewAppWithConfig(config.Default(), logging.Discard())
}

// NewAppWithConfig creates an App from loaded settings. The operator panel
// starts out with the configured default request.
func NewAppWithConfig(cfg config.Config, logger log.FieldLogger) *App {
	k := sdfx.New(sdfx.WithMeshCells(cfg.Kernel.MeshCells))
	op := align.NewOperator(logger)
	op.SetLast(cfg.Align)
	return &App{
		log:    logger,
		kernel: k,
		engine: engine.NewEngine(engine.WithKernel(k), engine.WithTimeout(cfg.Kernel.EvalTimeout)),
		scene:  scene.New(),
		op:     op,
	}
}

// startup is called by Wails on app startup. The context is saved
// so we can call Wails runtime methods later if needed.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

// Evaluate takes scene script source and returns mesh data + errors.
// This is the primary binding called by the frontend editor. On failure the
// previous scene stays loaded.
func (a *App) Evaluate(source string) EvalResult {
	result := newEvalResult()

	s, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		a.log.WithError(err).Warn("evaluate failed")
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}
	return a.replaceScene(s, result)
}

// LoadFile reads a scene document or script from disk.
func (a *App) LoadFile(path string) EvalResult {
	result := newEvalResult()

	s, err := sceneio.Load(path, a.kernel)
	if err != nil {
		a.log.WithError(err).WithField("file", path).Warn("load failed")
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	return a.replaceScene(s, result)
}

// SetActive selects the named object.
func (a *App) SetActive(name string) EvalResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	result := newEvalResult()
	if err := a.scene.SetActive(name); err != nil {
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	return a.fill(result)
}

// Align runs the operator on the active object with req.
func (a *App) Align(req align.Request) AlignResult {
	return a.run(func(s *scene.Scene) (align.Result, error) {
		return a.op.Invoke(s, req)
	})
}

// Adjust re-runs the last alignment with changed parameters, starting from
// the location the object had before it.
func (a *App) Adjust(req align.Request) AlignResult {
	return a.run(func(s *scene.Scene) (align.Result, error) {
		return a.op.Execute(s, req)
	})
}

// Repeat aligns the current active object with the last request.
func (a *App) Repeat() AlignResult {
	return a.run(a.op.Repeat)
}

// LastRequest returns the parameters the panel should show.
func (a *App) LastRequest() align.Request {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.op.Last()
}

// Modes lists the per-axis alignment modes in panel order.
func (a *App) Modes() []align.ModeInfo {
	return align.AllModes
}

func (a *App) run(fn func(*scene.Scene) (align.Result, error)) AlignResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	res, err := fn(a.scene)
	if err != nil {
		return AlignResult{Message: align.ReportMessage(err), Meshes: []MeshData{}}
	}
	meshes, err := a.meshes()
	if err != nil {
		return AlignResult{Result: &res, Message: "tessellation failed: " + err.Error(), Meshes: []MeshData{}}
	}
	return AlignResult{Result: &res, Meshes: meshes}
}

func (a *App) replaceScene(s *scene.Scene, result EvalResult) EvalResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	prev := a.scene
	a.scene = s
	result = a.fill(result)
	if len(result.Errors) > 0 {
		a.scene = prev
		return result
	}
	a.op.Reset()
	a.log.WithField("objects", s.ObjectCount()).Info("scene loaded")
	return result
}

// fill tessellates the current scene into result. Callers hold mu.
func (a *App) fill(result EvalResult) EvalResult {
	meshes, err := a.meshes()
	if err != nil {
		a.log.WithError(err).Warn("tessellate failed")
		result.Errors = append(result.Errors, EvalErrorData{Message: "tessellation failed: " + err.Error()})
		return result
	}
	result.Meshes = meshes
	result.Objects = objectData(a.scene)
	result.Warnings = lo.Map(engine.Warnings(a.scene), func(w engine.EvalWarning, _ int) EvalErrorData {
		return EvalErrorData{Message: w.Message}
	})
	return result
}

func (a *App) meshes() ([]MeshData, error) {
	meshes, err := tessellate.Tessellate(a.scene, a.kernel)
	if err != nil {
		return nil, err
	}
	var active string
	if o := a.scene.ActiveObject(); o != nil {
		active = o.Name
	}
	out := make([]MeshData, 0, len(meshes))
	for i, m := range meshes {
		color := colorPalette[i%len(colorPalette)]
		if m.ObjectName == active {
			color = activeColor
		}
		out = append(out, MeshData{
			Vertices:   m.Vertices,
			Normals:    m.Normals,
			Indices:    m.Indices,
			ObjectName: m.ObjectName,
			Color:      color,
			Active:     m.ObjectName == active,
		})
	}
	return out, nil
}

func objectData(s *scene.Scene) []ObjectData {
	return lo.Map(s.Ordered(), func(o *scene.Object, _ int) ObjectData {
		d := ObjectData{
			Name:   o.Name,
			Kind:   o.Kind.String(),
			Active: o.ID == s.Active,
		}
		if p := s.Get(o.Parent); p != nil {
			d.Parent = p.Name
		}
		return d
	})
}

func newEvalResult() EvalResult {
	return EvalResult{
		Meshes:   []MeshData{},
		Objects:  []ObjectData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}
}
