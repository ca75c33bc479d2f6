package main

import (
	"math"
	"os"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/linkage-design/objectaligner/pkg/align"
	"github.com/linkage-design/objectaligner/pkg/config"
	"github.com/linkage-design/objectaligner/pkg/logging"
)

// newTestApp returns an App with a coarse mesh so tessellation stays fast.
func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg := config.Default()
	cfg.Kernel.MeshCells = 40
	return NewAppWithConfig(cfg, logging.Discard())
}

func loadTable(t *testing.T, app *App) EvalResult {
	t.Helper()
	source, err := os.ReadFile("examples/table.lignin")
	if err != nil {
		t.Fatalf("failed to read table.lignin: %v", err)
	}
	result := app.Evaluate(string(source))
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error (line %d): %s", e.Line, e.Message)
		}
		t.FailNow()
	}
	return result
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func vecNear(a, b mgl64.Vec3) bool {
	return a.Sub(b).Len() < 1e-9
}

// TestE2ETableExample exercises the full pipeline: script -> engine -> scene
// -> tessellate -> meshes. This is the same path that the Wails Evaluate
// binding takes, but without the Wails runtime.
func TestE2ETableExample(t *testing.T) {
	app := newTestApp(t)
	result := loadTable(t, app)

	// Top and four legs; the lamp and camera have no geometry.
	if len(result.Meshes) != 5 {
		t.Fatalf("expected 5 meshes, got %d", len(result.Meshes))
	}
	if len(result.Objects) != 7 {
		t.Errorf("expected 7 objects, got %d", len(result.Objects))
	}

	expected := map[string]bool{
		"top":    false,
		"leg-fl": false,
		"leg-fr": false,
		"leg-bl": false,
		"leg-br": false,
	}
	for _, m := range result.Meshes {
		if _, ok := expected[m.ObjectName]; !ok {
			t.Errorf("unexpected object name: %q", m.ObjectName)
			continue
		}
		expected[m.ObjectName] = true

		if len(m.Vertices) == 0 {
			t.Errorf("object %q: no vertices", m.ObjectName)
		}
		if len(m.Normals) == 0 {
			t.Errorf("object %q: no normals", m.ObjectName)
		}
		if len(m.Indices) == 0 {
			t.Errorf("object %q: no indices", m.ObjectName)
		}
		if m.Color == "" {
			t.Errorf("object %q: no color assigned", m.ObjectName)
		}
		if m.Active != (m.ObjectName == "top") {
			t.Errorf("object %q: active = %v", m.ObjectName, m.Active)
		}
	}
	for name, found := range expected {
		if !found {
			t.Errorf("missing mesh for object %q", name)
		}
	}
}

func TestE2EOutliner(t *testing.T) {
	app := newTestApp(t)
	result := loadTable(t, app)

	byName := make(map[string]ObjectData)
	for _, o := range result.Objects {
		byName[o.Name] = o
	}
	if !byName["top"].Active {
		t.Error("top should be active")
	}
	if got := byName["leg-fl"].Parent; got != "top" {
		t.Errorf("leg-fl parent = %q, want top", got)
	}
	if got := byName["lamp"].Kind; got != "light" {
		t.Errorf("lamp kind = %q, want light", got)
	}
	if got := byName["cam"].Parent; got != "" {
		t.Errorf("cam parent = %q, want none", got)
	}
}

// TestE2EEmptySource ensures the pipeline handles empty input gracefully.
func TestE2EEmptySource(t *testing.T) {
	app := newTestApp(t)
	result := app.Evaluate("")

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors for empty source: %v", result.Errors)
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes for empty source, got %d", len(result.Meshes))
	}
}

// TestE2ESyntaxError ensures eval errors are reported, not fatal errors.
func TestE2ESyntaxError(t *testing.T) {
	app := newTestApp(t)
	result := app.Evaluate(`(mesh "test"`)

	if len(result.Errors) == 0 {
		t.Fatal("expected eval errors for syntax error")
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes on error, got %d", len(result.Meshes))
	}
}

func TestE2EAlignTable(t *testing.T) {
	app := newTestApp(t)
	loadTable(t, app)

	res := app.Align(align.DefaultRequest())
	if res.Message != "" {
		t.Fatalf("align failed: %s", res.Message)
	}
	if res.Result == nil || res.Result.Name != "top" {
		t.Fatalf("unexpected result: %+v", res.Result)
	}
	if len(res.Meshes) != 5 {
		t.Errorf("expected 5 meshes after align, got %d", len(res.Meshes))
	}

	// The whole table now sits on the floor with its minimum X at 0 and its
	// footprint centred on Y.
	bbox, err := align.Collect(app.scene, res.Result.Object, true)
	if err != nil {
		t.Fatal(err)
	}
	if !near(bbox.Min.X(), 0) || !near(bbox.Center.Y(), 0) || !near(bbox.Min.Z(), 0) {
		t.Errorf("bbox after align: min %v center %v", bbox.Min, bbox.Center)
	}
	// Legs reach below the top, so the top ends up above the floor.
	if res.Result.Location.Z() <= 0 {
		t.Errorf("top z = %v, want above 0", res.Result.Location.Z())
	}
}

func TestE2EAdjustUsesOriginalLocation(t *testing.T) {
	app := newTestApp(t)
	loadTable(t, app)

	first := app.Align(align.DefaultRequest())
	if first.Message != "" {
		t.Fatal(first.Message)
	}

	req := align.Request{IncludeChildren: true, ModeX: align.ModeNone, ModeY: align.ModeNone, ModeZ: align.ModeOrigin}
	res := app.Adjust(req)
	if res.Message != "" {
		t.Fatal(res.Message)
	}
	want := mgl64.Vec3{10, 5, 0}
	if !vecNear(res.Result.Location, want) {
		t.Errorf("location after adjust = %v, want %v", res.Result.Location, want)
	}
	if app.LastRequest() != req {
		t.Errorf("LastRequest() = %+v, want %+v", app.LastRequest(), req)
	}
}

func TestE2ERepeatOnAnotherObject(t *testing.T) {
	app := newTestApp(t)
	loadTable(t, app)

	req := align.Request{ModeX: align.ModeOrigin, ModeY: align.ModeOrigin, ModeZ: align.ModeOrigin}
	if res := app.Align(req); res.Message != "" {
		t.Fatal(res.Message)
	}
	if r := app.SetActive("leg-fl"); len(r.Errors) > 0 {
		t.Fatal(r.Errors)
	}
	res := app.Repeat()
	if res.Message != "" {
		t.Fatal(res.Message)
	}
	if res.Result.Name != "leg-fl" {
		t.Errorf("repeated on %q, want leg-fl", res.Result.Name)
	}
	if !vecNear(res.Result.Location, mgl64.Vec3{}) {
		t.Errorf("leg-fl world location = %v, want origin", res.Result.Location)
	}
}

func TestE2ELoadFile(t *testing.T) {
	app := newTestApp(t)
	result := app.LoadFile("examples/table.yaml")
	if len(result.Errors) > 0 {
		t.Fatalf("load errors: %v", result.Errors)
	}
	if len(result.Meshes) != 5 {
		t.Errorf("expected 5 meshes, got %d", len(result.Meshes))
	}
}

func TestE2EModesAndDefaults(t *testing.T) {
	app := newTestApp(t)
	if got := app.LastRequest(); got != align.DefaultRequest() {
		t.Errorf("LastRequest() = %+v, want defaults", got)
	}
	if got := len(app.Modes()); got != 5 {
		t.Errorf("expected 5 modes, got %d", got)
	}

	cfg := config.Default()
	cfg.Kernel.MeshCells = 40
	cfg.Align.ModeZ = align.ModeMax
	app = NewAppWithConfig(cfg, logging.Discard())
	if got := app.LastRequest().ModeZ; got != align.ModeMax {
		t.Errorf("configured ModeZ = %s, want max", got)
	}
}
