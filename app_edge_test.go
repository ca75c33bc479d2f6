package main

import (
	"strings"
	"sync"
	"testing"

	"github.com/linkage-design/objectaligner/pkg/align"
)

// ---------------------------------------------------------------------------
// 1. Empty editor: empty string -> 0 meshes, 0 errors, non-nil slices.
// ---------------------------------------------------------------------------

func TestE2EEmptySourceExtended(t *testing.T) {
	app := newTestApp(t)
	result := app.Evaluate("")

	if len(result.Errors) != 0 {
		t.Errorf("expected 0 errors for empty source, got %d", len(result.Errors))
	}
	if len(result.Warnings) != 0 {
		t.Errorf("expected 0 warnings for empty source, got %d", len(result.Warnings))
	}
	// Ensure slices are non-nil (JSON should serialize as [] not null).
	if result.Meshes == nil {
		t.Error("Meshes should be non-nil empty slice, got nil")
	}
	if result.Objects == nil {
		t.Error("Objects should be non-nil empty slice, got nil")
	}
	if result.Errors == nil {
		t.Error("Errors should be non-nil empty slice, got nil")
	}
	if result.Warnings == nil {
		t.Error("Warnings should be non-nil empty slice, got nil")
	}
}

// ---------------------------------------------------------------------------
// 2. Syntax error on a later line.
// ---------------------------------------------------------------------------

func TestE2ESyntaxErrorWithLineInfo(t *testing.T) {
	app := newTestApp(t)

	source := "(+ 1 2)\n(mesh \"test\""
	result := app.Evaluate(source)

	if len(result.Errors) == 0 {
		t.Fatal("expected at least one eval error for unmatched parens")
	}
	e := result.Errors[0]
	if e.Message == "" {
		t.Error("syntax error should have a non-empty message")
	}
	t.Logf("syntax error: line=%d, col=%d, message=%q", e.Line, e.Col, e.Message)
}

// ---------------------------------------------------------------------------
// 3. Bad scene content: reported as errors, nothing rendered.
// ---------------------------------------------------------------------------

func TestE2ESceneErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"duplicate name", `(mesh "a" (box)) (mesh "a" (box))`, "duplicate"},
		{"unknown parent", `(mesh "a" (box) :parent "ghost")`, "ghost"},
		{"unknown active", `(activate "ghost")`, "ghost"},
		{"zero box", `(mesh "a" (box :size 0))`, "positive"},
		{"undefined function", `(undefined-func 1 2 3)`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t)
			result := app.Evaluate(tt.source)
			if len(result.Errors) == 0 {
				t.Fatal("expected eval errors")
			}
			if len(result.Meshes) != 0 {
				t.Errorf("expected 0 meshes on error, got %d", len(result.Meshes))
			}
			if tt.want == "" {
				return
			}
			found := false
			for _, e := range result.Errors {
				if strings.Contains(e.Message, tt.want) {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("expected error mentioning %q, got: %v", tt.want, result.Errors)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// 4. A failed evaluation keeps the previous scene.
// ---------------------------------------------------------------------------

func TestE2EFailedEvaluationKeepsScene(t *testing.T) {
	app := newTestApp(t)
	loadTable(t, app)

	if result := app.Evaluate(`(mesh "broken"`); len(result.Errors) == 0 {
		t.Fatal("expected eval errors")
	}
	res := app.Align(align.DefaultRequest())
	if res.Message != "" {
		t.Fatalf("align after failed evaluation: %s", res.Message)
	}
	if res.Result.Name != "top" {
		t.Errorf("aligned %q, want top", res.Result.Name)
	}
}

func TestE2ELoadMissingFile(t *testing.T) {
	app := newTestApp(t)
	result := app.LoadFile("examples/missing.yaml")
	if len(result.Errors) == 0 {
		t.Fatal("expected an error for a missing file")
	}
}

// ---------------------------------------------------------------------------
// 5. Operator refusals are reported, not fatal.
// ---------------------------------------------------------------------------

func TestE2EAlignRefusals(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"empty scene", ``, align.SelectMeshMessage},
		{"nothing active", `(mesh "a" (box))`, align.SelectMeshMessage},
		{"light active", `(light "sun") (activate "sun")`, align.SelectMeshMessage},
		{"empty active", `(empty "rig") (activate "rig")`, align.SelectMeshMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t)
			if result := app.Evaluate(tt.source); len(result.Errors) > 0 {
				t.Fatalf("eval errors: %v", result.Errors)
			}
			res := app.Align(align.DefaultRequest())
			if res.Message != tt.want {
				t.Errorf("message = %q, want %q", res.Message, tt.want)
			}
			if res.Result != nil {
				t.Errorf("unexpected result: %+v", res.Result)
			}
			if res.Meshes == nil {
				t.Error("Meshes should be non-nil")
			}
		})
	}
}

func TestE2EAdjustBeforeAlign(t *testing.T) {
	app := newTestApp(t)
	loadTable(t, app)

	res := app.Adjust(align.DefaultRequest())
	if res.Message != align.ErrNotInvoked.Error() {
		t.Errorf("message = %q, want %q", res.Message, align.ErrNotInvoked.Error())
	}
}

func TestE2ENewSceneForgetsInvocation(t *testing.T) {
	app := newTestApp(t)
	loadTable(t, app)
	if res := app.Align(align.DefaultRequest()); res.Message != "" {
		t.Fatal(res.Message)
	}

	loadTable(t, app)
	if res := app.Adjust(align.DefaultRequest()); res.Message == "" {
		t.Error("adjust after loading a new scene should fail")
	}
}

func TestE2ESetActiveUnknown(t *testing.T) {
	app := newTestApp(t)
	loadTable(t, app)

	result := app.SetActive("ghost")
	if len(result.Errors) == 0 {
		t.Fatal("expected an error for an unknown object")
	}
}

// ---------------------------------------------------------------------------
// 6. Rapid evaluation: sequential calls on one App must not panic.
// ---------------------------------------------------------------------------

func TestE2ERapidEvaluationAlternating(t *testing.T) {
	// Alternates between valid and invalid sources rapidly.
	// Ensures the engine recovers cleanly between error and success states.
	//
	// Note: we call Evaluate sequentially because zygomys has internal
	// global state that is not safe for concurrent sandbox creation.
	app := newTestApp(t)

	sources := []string{
		`(mesh "ok" (box))`,
		`(mesh "broken"`,
		``,
		`(activate "missing")`,
		`(mesh "also-ok" (sphere :radius 0.5))`,
		`(+ 1 2)`,
		`;; just a comment`,
		`(mesh "fine" (cylinder :radius 0.5 :height 1))`,
		`(undefined-func 1 2 3)`,
		`(mesh "last" (box :size 2)) (activate "last")`,
	}

	for i, source := range sources {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("iteration %d panicked on source %q: %v", i, source, r)
				}
			}()
			_ = app.Evaluate(source)
		}()
	}

	res := app.Align(align.DefaultRequest())
	if res.Message != "" || res.Result.Name != "last" {
		t.Errorf("align after rapid evaluation: %+v", res)
	}
}

// ---------------------------------------------------------------------------
// 7. Concurrent bindings: the scene and operator are shared.
// ---------------------------------------------------------------------------

func TestE2EConcurrentAlign(t *testing.T) {
	app := newTestApp(t)
	if result := app.Evaluate(`(mesh "cube" (box) :at (vec3 5 5 5)) (activate "cube")`); len(result.Errors) > 0 {
		t.Fatal(result.Errors)
	}

	modes := []align.Mode{align.ModeMin, align.ModeMax, align.ModeCenter, align.ModeOrigin}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(m align.Mode) {
			defer wg.Done()
			res := app.Align(align.Request{ModeX: m, ModeY: m, ModeZ: m})
			if res.Message != "" {
				t.Errorf("align %s: %s", m, res.Message)
			}
			_ = app.LastRequest()
		}(modes[i%len(modes)])
	}
	wg.Wait()
}
