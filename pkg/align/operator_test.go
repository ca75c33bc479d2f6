package align

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/linkage-design/objectaligner/pkg/scene"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestInvokeUnitCubeExample(t *testing.T) {
	s, cube := unitCubeScene(t)
	op := NewOperator(nil)

	res, err := op.Invoke(s, Request{ModeX: ModeMin, ModeY: ModeCenter, ModeZ: ModeMax})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	want := mgl64.Vec3{0.5, 0, -0.5}
	assertVec(t, "result location", res.Location, want)
	assertVec(t, "object location", cube.Location, want)
	assertVec(t, "original", res.Original, mgl64.Vec3{5, 5, 5})
	if res.Name != "cube" || res.Object != cube.ID {
		t.Errorf("result object = %q/%s, want cube/%s", res.Name, res.Object.Short(), cube.ID.Short())
	}
}

func TestInvokeDefaults(t *testing.T) {
	s, cube := unitCubeScene(t)
	op := NewOperator(nil)

	if _, err := op.Invoke(s, DefaultRequest()); err != nil {
		t.Fatal(err)
	}
	assertVec(t, "location", cube.Location, mgl64.Vec3{0.5, 0, 0.5})
}

func TestInvokeMinThenRecollect(t *testing.T) {
	s, cube := unitCubeScene(t)
	withChild(s, cube)
	op := NewOperator(nil)
	req := Request{IncludeChildren: true, ModeX: ModeMin, ModeY: ModeMin, ModeZ: ModeMin}

	if _, err := op.Invoke(s, req); err != nil {
		t.Fatal(err)
	}
	bbox, err := Collect(s, cube.ID, true)
	if err != nil {
		t.Fatal(err)
	}
	assertVec(t, "min after align", bbox.Min, mgl64.Vec3{})

	before := cube.Location
	if _, err := op.Invoke(s, req); err != nil {
		t.Fatal(err)
	}
	assertVec(t, "second align", cube.Location, before)
}

func TestInvokeAllNoneLeavesLocation(t *testing.T) {
	s, cube := unitCubeScene(t)
	op := NewOperator(nil)

	res, err := op.Invoke(s, Request{})
	if err != nil {
		t.Fatal(err)
	}
	assertVec(t, "location", cube.Location, mgl64.Vec3{5, 5, 5})
	assertVec(t, "result", res.Location, res.Original)
}

func TestInvokeSelectionErrors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(s *scene.Scene) *scene.Object
		wantErr error
	}{
		{
			name:    "nothing selected",
			setup:   func(s *scene.Scene) *scene.Object { return nil },
			wantErr: ErrNoSelection,
		},
		{
			name: "light selected",
			setup: func(s *scene.Scene) *scene.Object {
				lamp := scene.NewObject("lamp", scene.KindLight)
				lamp.Location = mgl64.Vec3{1, 2, 3}
				s.AddObject(lamp)
				s.Active = lamp.ID
				return lamp
			},
			wantErr: ErrWrongType,
		},
		{
			name: "empty selected",
			setup: func(s *scene.Scene) *scene.Object {
				e := scene.NewObject("pivot", scene.KindEmpty)
				e.Location = mgl64.Vec3{-4, 0, 2}
				e.Mesh = scene.NewBoundsMesh(scene.Bounds{Max: mgl64.Vec3{1, 1, 1}})
				s.AddObject(e)
				s.Active = e.ID
				return e
			},
			wantErr: ErrWrongType,
		},
		{
			name: "mesh without geometry",
			setup: func(s *scene.Scene) *scene.Object {
				m := scene.NewObject("hollow", scene.KindMesh)
				m.Location = mgl64.Vec3{7, 7, 7}
				s.AddObject(m)
				s.Active = m.ID
				return m
			},
			wantErr: ErrEmptyContributingSet,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := scene.New()
			obj := tt.setup(s)
			var before mgl64.Vec3
			if obj != nil {
				before = obj.Location
			}
			op := NewOperator(nil)

			_, err := op.Invoke(s, Request{ModeX: ModeOrigin, ModeY: ModeOrigin, ModeZ: ModeOrigin})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if obj != nil {
				assertVec(t, "location", obj.Location, before)
			}
			if op.Last() != DefaultRequest() {
				t.Errorf("Last() = %+v after failure, want defaults", op.Last())
			}
			if _, err := op.Execute(s, DefaultRequest()); !errors.Is(err, ErrNotInvoked) {
				t.Errorf("Execute after failed Invoke: %v, want ErrNotInvoked", err)
			}
		})
	}
}

func TestReportMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{ErrNoSelection, SelectMeshMessage},
		{errors.New("wrapped: " + ErrWrongType.Error()), "wrapped: " + ErrWrongType.Error()},
		{errWrap(ErrWrongType), SelectMeshMessage},
		{ErrNotInvoked, ErrNotInvoked.Error()},
	}
	for _, tt := range tests {
		if got := ReportMessage(tt.err); got != tt.want {
			t.Errorf("ReportMessage(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func errWrap(err error) error {
	return errors.Join(errors.New(`"lamp" is a light`), err)
}

func TestExecuteWithoutInvoke(t *testing.T) {
	s, _ := unitCubeScene(t)
	if _, err := NewOperator(nil).Execute(s, DefaultRequest()); !errors.Is(err, ErrNotInvoked) {
		t.Fatalf("error = %v, want ErrNotInvoked", err)
	}
}

func TestExecuteAdjustsLastAlignment(t *testing.T) {
	s, cube := unitCubeScene(t)
	op := NewOperator(nil)

	if _, err := op.Invoke(s, Request{ModeX: ModeMin}); err != nil {
		t.Fatal(err)
	}
	assertVec(t, "after invoke", cube.Location, mgl64.Vec3{0.5, 5, 5})

	// The box is the one collected at (5,5,5), not the moved one.
	res, err := op.Execute(s, Request{ModeX: ModeMax, ModeZ: ModeCenter})
	if err != nil {
		t.Fatal(err)
	}
	assertVec(t, "after execute", cube.Location, mgl64.Vec3{-0.5, 5, 0})
	assertVec(t, "cached min", res.BBox.Min, mgl64.Vec3{4.5, 4.5, 4.5})

	if got := op.Last(); got.ModeX != ModeMax || got.ModeZ != ModeCenter {
		t.Errorf("Last() = %+v, want the adjusted request", got)
	}
}

func TestExecuteTogglesIncludeChildren(t *testing.T) {
	s, cube := unitCubeScene(t)
	child := withChild(s, cube)
	op := NewOperator(nil)

	if _, err := op.Invoke(s, Request{IncludeChildren: false, ModeX: ModeMin}); err != nil {
		t.Fatal(err)
	}
	assertVec(t, "cube only", cube.Location, mgl64.Vec3{0.5, 5, 5})

	res, err := op.Execute(s, Request{IncludeChildren: true, ModeX: ModeMax})
	if err != nil {
		t.Fatal(err)
	}
	assertVec(t, "bbox max", res.BBox.Max, mgl64.Vec3{9, 6, 6})
	assertVec(t, "with child", cube.Location, mgl64.Vec3{-4, 5, 5})
	assertVec(t, "child local", child.Location, mgl64.Vec3{3, 0, 0})
}

func TestInvokeParentedRoot(t *testing.T) {
	s := scene.New()
	rig := scene.NewObject("rig", scene.KindEmpty)
	rig.Location = mgl64.Vec3{10, 0, 0}
	rig.Rotation = mgl64.Vec3{0, 0, 90}
	s.AddObject(rig)
	cube := cubeObject("cube", 1, mgl64.Vec3{1, 2, 3})
	cube.Parent = rig.ID
	s.AddObject(cube)
	if err := s.SetActive("cube"); err != nil {
		t.Fatal(err)
	}

	op := NewOperator(nil)
	res, err := op.Invoke(s, Request{ModeX: ModeCenter, ModeY: ModeCenter, ModeZ: ModeCenter})
	if err != nil {
		t.Fatal(err)
	}
	assertVec(t, "original", res.Original, mgl64.Vec3{8, 1, 3})

	world, err := s.WorldLocation(cube.ID)
	if err != nil {
		t.Fatal(err)
	}
	assertVec(t, "world location", world, mgl64.Vec3{})
	assertVec(t, "local location", cube.Location, mgl64.Vec3{0, 10, 0})

	bbox, err := Collect(s, cube.ID, false)
	if err != nil {
		t.Fatal(err)
	}
	assertVec(t, "center", bbox.Center, mgl64.Vec3{})
}

func TestRepeatUsesLastRequest(t *testing.T) {
	s, first := unitCubeScene(t)
	second := cubeObject("second", 2, mgl64.Vec3{-3, 4, 1})
	s.AddObject(second)
	op := NewOperator(nil)

	req := Request{ModeX: ModeMax, ModeY: ModeOrigin, ModeZ: ModeMin}
	if _, err := op.Invoke(s, req); err != nil {
		t.Fatal(err)
	}
	assertVec(t, "first", first.Location, mgl64.Vec3{-0.5, 0, 0.5})

	if err := s.SetActive("second"); err != nil {
		t.Fatal(err)
	}
	res, err := op.Repeat(s)
	if err != nil {
		t.Fatal(err)
	}
	if res.Request != req {
		t.Errorf("repeat request = %+v, want %+v", res.Request, req)
	}
	assertVec(t, "second", second.Location, mgl64.Vec3{-1, 0, 1})
}

func TestOperatorLogsAlignment(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(log.DebugLevel)
	s, _ := unitCubeScene(t)

	if _, err := NewOperator(logger).Invoke(s, DefaultRequest()); err != nil {
		t.Fatal(err)
	}
	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("no log entry")
	}
	if entry.Level != log.InfoLevel || entry.Message != "align: object moved" {
		t.Errorf("last entry = %s %q", entry.Level, entry.Message)
	}
	if entry.Data["object"] != "cube" {
		t.Errorf("object field = %v, want cube", entry.Data["object"])
	}
	if len(hook.AllEntries()) != 2 {
		t.Errorf("got %d entries, want debug + info", len(hook.AllEntries()))
	}
}

func TestResetKeepsLastRequest(t *testing.T) {
	s, _ := unitCubeScene(t)
	op := NewOperator(nil)
	req := Request{ModeZ: ModeMax}
	if _, err := op.Invoke(s, req); err != nil {
		t.Fatal(err)
	}

	op.Reset()
	if _, err := op.Execute(s, req); !errors.Is(err, ErrNotInvoked) {
		t.Fatalf("Execute after Reset: %v, want ErrNotInvoked", err)
	}
	if op.Last() != req {
		t.Errorf("Last() = %+v, want %+v", op.Last(), req)
	}
}

func TestSetLastSeedsRepeat(t *testing.T) {
	s, _ := unitCubeScene(t)
	op := NewOperator(nil)
	op.SetLast(Request{ModeX: ModeOrigin, ModeY: ModeOrigin, ModeZ: ModeOrigin})

	res, err := op.Repeat(s)
	if err != nil {
		t.Fatal(err)
	}
	if res.Location != (mgl64.Vec3{}) {
		t.Errorf("location = %v, want origin", res.Location)
	}
}
