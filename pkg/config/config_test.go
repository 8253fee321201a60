package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regviz/regviz-go/pkg/dot"
)

func writeConfig(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultConfigMatchesDefaultStyle(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, Validate(cfg))

	if diff := cmp.Diff(dot.DefaultStyle(), cfg.Style()); diff != "" {
		t.Errorf("style mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, dot.DefaultCapacity, cfg.Dedup.Capacity)
	assert.Equal(t, 2, cfg.Owner.MaxClimb)
}

func TestParsePartialFile(t *testing.T) {
	cfg, err := Parse([]byte(`
dedup:
  capacity: 64
colors:
  device: "#ff8800"
shapes:
  rules:
    - compatible: vendor,ldo
      shape: circle
`))
	require.NoError(t, err)

	assert.Equal(t, 64, cfg.Dedup.Capacity)
	assert.Equal(t, "#ff8800", cfg.Colors.Device)
	assert.Equal(t, "lightblue", cfg.Colors.Regulator, "untouched fields keep defaults")
	assert.Equal(t, "regulators", cfg.Graph.Name)

	style := cfg.Style()
	assert.Equal(t, "circle", style.Shape("vendor,ldo"))
	assert.Equal(t, "hexagon", style.Shape("regulator-fixed"), "rules replace the default list")
}

func TestParseEmptyDocument(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "unknown key", yaml: "colours:\n  device: red\n"},
		{name: "unknown shape", yaml: "shapes:\n  default: blob\n"},
		{name: "bad color", yaml: "colors:\n  cluster: Light Grey\n"},
		{name: "bad edge style", yaml: "edges:\n  supply: wavy\n"},
		{name: "negative capacity", yaml: "dedup:\n  capacity: -1\n"},
		{name: "graph name with space", yaml: "graph:\n  name: my graph\n"},
		{name: "empty compatible", yaml: "shapes:\n  rules:\n    - compatible: \"\"\n      shape: box\n"},
		{name: "bad splines", yaml: "layout:\n  splines: wiggly\n"},
		{name: "climb too high", yaml: "owner:\n  maxClimb: 99\n"},
		{name: "not yaml", yaml: "graph: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestLoadExplicitFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "custom.yaml", "graph:\n  name: board\n  hint: true\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "board", cfg.Graph.Name)
	assert.True(t, cfg.Graph.Hint)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadSearchPath(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg, "no file gives defaults")

	writeConfig(t, dir, ".regviz.yaml", "dedup:\n  capacity: 10\n")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Dedup.Capacity)

	writeConfig(t, dir, "regviz.yaml", "dedup:\n  capacity: 20\n")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Dedup.Capacity, "regviz.yaml wins over .regviz.yaml")
}

func TestLoadUserConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "regviz")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	writeConfig(t, dir, "config.yaml", "edges:\n  supply: dotted\n")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "dotted", cfg.Edges.Supply)
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Colors.Legend = "yellow"
	cfg.Layout.RankSep = 2

	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, cfg.Save(path))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
