package regviz_test

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/regviz/regviz-go/pkg/config"
	"github.com/regviz/regviz-go/pkg/dot"
	"github.com/regviz/regviz-go/pkg/fdt"
	"github.com/regviz/regviz-go/pkg/fdt/fdttest"
	"github.com/regviz/regviz-go/pkg/regulator"
	"github.com/regviz/regviz-go/pkg/trace"
)

// evkBoard is a small board with a fixed rail feeding a PMIC whose inline
// regulators supply an MMC controller and a CPU.
func evkBoard() *fdttest.Node {
	return fdttest.N("",
		fdttest.Str("model", "Acme EVK"),
		fdttest.N("vcc_5v",
			fdttest.Str("regulator-name", "vcc_5v"),
			fdttest.Str("compatible", "regulator-fixed"),
			fdttest.Phandle(1),
		),
		fdttest.N("soc",
			fdttest.N("i2c@1000",
				fdttest.N("pmic@48",
					fdttest.Cells("reg", 0x48),
					fdttest.Cells("vin-supply", 1),
					fdttest.N("regulators",
						fdttest.N("buck1",
							fdttest.Str("regulator-name", "vdd_core"),
							fdttest.Phandle(2),
						),
						fdttest.N("ldo1",
							fdttest.Str("regulator-name", "vdd_io"),
							fdttest.Phandle(3),
						),
					),
				),
			),
			fdttest.N("mmc@2000",
				fdttest.Cells("vmmc-supply", 3),
				fdttest.Cells("vqmmc-supply", 3),
			),
			fdttest.N("cpu@0",
				fdttest.Cells("cpu-supply", 2),
			),
		),
	)
}

const evkGraph = `digraph regulators {
ranksep=1.5;
nodesep=0.1;
splines=true;
labelloc="t";
label="Acme EVK";
"vcc_5v" [shape=ellipse, fillcolor=lightblue, style=filled];
subgraph cluster_pmic_48 {
style=filled;
color=lightgrey;
label = "pmic@48";
"pmic@48:Input" [shape=diamond, fillcolor=lightgreen, style=filled];
"vdd_core" [shape=box, fillcolor=lightgreen, style=filled];
}
"vcc_5v" -> "pmic@48:Input" [style=bold, label="supply"];
subgraph cluster_pmic_48 {
style=filled;
color=lightgrey;
label = "pmic@48";
"pmic@48:Input" [shape=diamond, fillcolor=lightgreen, style=filled];
"vdd_io" [shape=box, fillcolor=lightgreen, style=filled];
}
subgraph cluster_mmc_2000 {
style=filled;
color=lightgrey;
label = "mmc@2000";
"mmc@2000" [shape=box, fillcolor=orange, style=filled];
}
"vdd_io" -> "mmc@2000" [style=bold, label="supply"];
subgraph cluster_cpu_0 {
style=filled;
color=lightgrey;
label = "cpu@0";
"cpu@0" [shape=box, fillcolor=orange, style=filled];
}
"vdd_core" -> "cpu@0" [style=bold, label="supply"];
}
`

type pipeline struct {
	graph   string
	summary regulator.Summary
}

func render(t *testing.T, tree *fdt.Tree, cfg *config.Config, logger trace.Logger) pipeline {
	t.Helper()
	var buf bytes.Buffer
	emitter := dot.NewEmitter(&buf, cfg.Style(), dot.NewCache(cfg.Dedup.Capacity))

	walker := regulator.NewWalker(tree, emitter)
	walker.MaxClimb = cfg.Owner.MaxClimb
	walker.RunID = "e2e"
	if logger != nil {
		walker.Trace = logger
	}

	model, ok := tree.Root().StringProperty("model")
	emitter.Begin(dot.Title(model, ok), cfg.Graph.Hint)
	summary := walker.Walk()
	emitter.End()

	if err := emitter.Err(); err != nil {
		t.Fatalf("emitter: %v", err)
	}
	return pipeline{graph: buf.String(), summary: summary}
}

// TestE2E_Graph renders a complete board and compares the exact output.
func TestE2E_Graph(t *testing.T) {
	tree := fdttest.Tree(t, evkBoard())

	got := render(t, tree, config.DefaultConfig(), nil)

	if diff := cmp.Diff(strings.Split(evkGraph, "\n"), strings.Split(got.graph, "\n")); diff != "" {
		t.Errorf("graph mismatch (-want +got):\n%s", diff)
	}

	want := regulator.Summary{
		Nodes:      10,
		Regulators: 3,
		Consumers:  3,
		None:       4,
		Statements: dot.Stats{Written: 8, Duplicates: 2},
	}
	if diff := cmp.Diff(want, got.summary); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
}

// TestE2E_Trace records a run to a file and reads the decisions back.
func TestE2E_Trace(t *testing.T) {
	tree := fdttest.Tree(t, evkBoard())
	path := filepath.Join(t.TempDir(), "evk.rtrace")

	fl, err := trace.NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}
	render(t, tree, config.DefaultConfig(), fl)
	if err := fl.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, err := trace.NewReader(path)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer r.Close()

	counts := make(map[trace.Kind]int)
	var skipped []string
	for {
		ev, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if ev.RunID != "e2e" {
			t.Errorf("RunID = %q", ev.RunID)
		}
		counts[ev.Kind]++
		if ev.Kind == trace.KindDeviceSkipped {
			skipped = append(skipped, ev.Path)
		}
	}

	want := map[trace.Kind]int{
		trace.KindClassified:     6,
		trace.KindOwner:          2,
		trace.KindSupplyResolved: 5,
		trace.KindDuplicate:      2,
		trace.KindDeviceSkipped:  1,
	}
	if diff := cmp.Diff(want, counts); diff != "" {
		t.Errorf("event counts mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"/soc/i2c@1000/pmic@48"}, skipped); diff != "" {
		t.Errorf("skipped devices mismatch (-want +got):\n%s", diff)
	}
}

// TestE2E_Config applies a configuration file to the whole pipeline.
func TestE2E_Config(t *testing.T) {
	tree := fdttest.Tree(t, evkBoard())

	cfg, err := config.Parse([]byte(`
graph:
  name: evk
  hint: true
colors:
  device: salmon
owner:
  maxClimb: 1
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	got := render(t, tree, cfg, nil)

	if !strings.HasPrefix(got.graph, "digraph evk {\nsubgraph cluster_hint {\n") {
		t.Errorf("unexpected header:\n%s", got.graph)
	}
	if !strings.Contains(got.graph, `"cpu@0" [shape=box, fillcolor=salmon, style=filled];`) {
		t.Errorf("device color not applied:\n%s", got.graph)
	}
	// One level of climbing stops at "regulators", which matches no rule.
	if !strings.Contains(got.graph, `label = "regulators";`) {
		t.Errorf("owner climb not limited:\n%s", got.graph)
	}
	if got.summary.OwnerFallbacks != 2 {
		t.Errorf("OwnerFallbacks = %d, want 2", got.summary.OwnerFallbacks)
	}
}
