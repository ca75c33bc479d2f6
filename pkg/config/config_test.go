package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/linkage-design/objectaligner/pkg/align"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "objalign.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, align.DefaultRequest(), cfg.Align)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 200, cfg.Kernel.MeshCells)
	assert.Equal(t, 5*time.Second, cfg.Kernel.EvalTimeout)
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, `
align:
  include_children: false
  mode_x: max
  mode_y: none
  mode_z: Origin
log:
  level: debug
  format: json
kernel:
  mesh_cells: 64
  eval_timeout: 2s
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, align.Request{
		IncludeChildren: false,
		ModeX:           align.ModeMax,
		ModeY:           align.ModeNone,
		ModeZ:           align.ModeOrigin,
	}, cfg.Align)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 64, cfg.Kernel.MeshCells)
	assert.Equal(t, 2*time.Second, cfg.Kernel.EvalTimeout)
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	path := writeFile(t, "align:\n  mode_y: min\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	want := align.DefaultRequest()
	want.ModeY = align.ModeMin
	assert.Equal(t, want, cfg.Align)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "align:\n  mode_x: max\nlog:\n  level: debug\n")
	t.Setenv("OBJALIGN_MODE_X", "center")
	t.Setenv("OBJALIGN_INCLUDE_CHILDREN", "false")
	t.Setenv("OBJALIGN_LOG_LEVEL", "warn")
	t.Setenv("OBJALIGN_MESH_CELLS", "32")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, align.ModeCenter, cfg.Align.ModeX)
	assert.False(t, cfg.Align.IncludeChildren)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 32, cfg.Kernel.MeshCells)
}

func TestErrors(t *testing.T) {
	t.Run("missing explicit file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "read config")
	})
	t.Run("bad mode in file", func(t *testing.T) {
		_, err := Load(writeFile(t, "align:\n  mode_x: sideways\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown mode")
	})
	t.Run("bad env value", func(t *testing.T) {
		t.Setenv("OBJALIGN_MODE_Z", "up")
		_, err := Load(writeFile(t, ""))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse env:")
	})
}
