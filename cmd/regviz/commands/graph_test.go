package commands

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/regviz/regviz-go/pkg/fdt/fdttest"
	"github.com/regviz/regviz-go/pkg/trace"
)

// isolate runs the test in an empty directory with an empty home, so no
// user configuration is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())
	return dir
}

func writeBoard(t *testing.T, dir string) string {
	t.Helper()
	root := fdttest.N("",
		fdttest.Str("model", "Acme Board v2"),
		fdttest.N("vcc",
			fdttest.Str("regulator-name", "vcc1"),
			fdttest.Str("compatible", "regulator-fixed"),
			fdttest.Phandle(1),
		),
		fdttest.N("mmc@100",
			fdttest.Cells("vmmc-supply", 1),
		),
	)
	path := filepath.Join(dir, "board.dtb")
	if err := os.WriteFile(path, fdttest.Blob(root), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunGraph(t *testing.T) {
	dir := isolate(t)
	path := writeBoard(t, dir)

	var stdout, stderr bytes.Buffer
	if code := RunGraph([]string{path}, &stdout, &stderr); code != exitSuccess {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr.String())
	}

	out := stdout.String()
	for _, want := range []string{
		"digraph regulators {\n",
		"ranksep=1.5;\nnodesep=0.1;\nsplines=true;\n",
		"labelloc=\"t\";\nlabel=\"Acme Board v2\";\n",
		`"vcc1" [shape=ellipse, fillcolor=lightblue, style=filled];`,
		"subgraph cluster_mmc_100 {",
		`"vcc1" -> "mmc@100" [style=bold, label="supply"];`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if !strings.HasSuffix(out, "}\n") {
		t.Errorf("output not closed:\n%s", out)
	}
	if strings.Contains(out, "cluster_hint") {
		t.Error("legend written without -hint")
	}
}

func TestRunGraphHint(t *testing.T) {
	dir := isolate(t)
	path := writeBoard(t, dir)

	tests := []struct {
		name string
		args []string
	}{
		{name: "after path", args: []string{path, "-hint"}},
		{name: "before path", args: []string{"-hint", path}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if code := RunGraph(tt.args, &stdout, &stderr); code != exitSuccess {
				t.Fatalf("exit code = %d, stderr: %s", code, stderr.String())
			}
			if !strings.Contains(stdout.String(), "subgraph cluster_hint {") {
				t.Errorf("legend missing:\n%s", stdout.String())
			}
		})
	}
}

func TestRunGraphHelp(t *testing.T) {
	isolate(t)

	for _, arg := range []string{"-h", "-help", "--help"} {
		t.Run(arg, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if code := RunGraph([]string{arg}, &stdout, &stderr); code != exitSuccess {
				t.Fatalf("exit code = %d", code)
			}
			out := stdout.String()
			if !strings.HasPrefix(out, "digraph G {\nsubgraph cluster_hint {\n") {
				t.Errorf("unexpected help output:\n%s", out)
			}
			if !strings.HasSuffix(out, "}\n}\n") {
				t.Errorf("help graph not closed:\n%s", out)
			}
		})
	}
}

func TestRunGraphErrors(t *testing.T) {
	dir := isolate(t)
	board := writeBoard(t, dir)

	garbage := filepath.Join(dir, "garbage.dtb")
	if err := os.WriteFile(garbage, []byte("this is not a device tree blob, it is text"), 0o600); err != nil {
		t.Fatal(err)
	}
	badConfig := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(badConfig, []byte("dedup:\n  capacity: -5\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
	}{
		{name: "no arguments", args: nil},
		{name: "two paths", args: []string{board, board}},
		{name: "missing file", args: []string{filepath.Join(dir, "missing.dtb")}},
		{name: "bad magic", args: []string{garbage}},
		{name: "unknown flag", args: []string{"-bogus", board}},
		{name: "bad log level", args: []string{"-log-level", "loud", board}},
		{name: "bad config", args: []string{"-config", badConfig, board}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if code := RunGraph(tt.args, &stdout, &stderr); code != exitCommandError {
				t.Errorf("exit code = %d, want %d", code, exitCommandError)
			}
			if stdout.Len() != 0 {
				t.Errorf("stdout not empty:\n%s", stdout.String())
			}
			if !strings.Contains(stderr.String(), "Error:") {
				t.Errorf("stderr lacks error: %s", stderr.String())
			}
		})
	}
}

func TestRunGraphVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := RunGraph([]string{"-version"}, &stdout, &stderr); code != exitSuccess {
		t.Fatalf("exit code = %d", code)
	}
	if got := stdout.String(); got != "regviz version "+Version+"\n" {
		t.Errorf("version output = %q", got)
	}
}

func TestRunGraphConfig(t *testing.T) {
	dir := isolate(t)
	path := writeBoard(t, dir)

	cfg := "graph:\n  name: power\n  hint: true\ncolors:\n  regulator: yellow\n"
	if err := os.WriteFile(filepath.Join(dir, "regviz.yaml"), []byte(cfg), 0o600); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	if code := RunGraph([]string{path}, &stdout, &stderr); code != exitSuccess {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr.String())
	}
	out := stdout.String()
	if !strings.HasPrefix(out, "digraph power {\n") {
		t.Errorf("graph name not applied:\n%s", out)
	}
	if !strings.Contains(out, "cluster_hint") {
		t.Error("graph.hint not applied")
	}
	if !strings.Contains(out, `"vcc1" [shape=ellipse, fillcolor=yellow, style=filled];`) {
		t.Errorf("regulator color not applied:\n%s", out)
	}
}

func TestRunGraphTrace(t *testing.T) {
	dir := isolate(t)
	path := writeBoard(t, dir)
	tracePath := filepath.Join(dir, "board.rtrace")

	var stdout, stderr bytes.Buffer
	if code := RunGraph([]string{"-trace", tracePath, path}, &stdout, &stderr); code != exitSuccess {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr.String())
	}

	r, err := trace.NewReader(tracePath)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer r.Close()

	var events []trace.Event
	for {
		ev, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		events = append(events, ev)
	}

	if len(events) == 0 {
		t.Fatal("no trace events")
	}
	runID := events[0].RunID
	if runID == "" {
		t.Error("events carry no run ID")
	}
	var resolved bool
	for _, ev := range events {
		if ev.RunID != runID {
			t.Errorf("mixed run IDs %q and %q", runID, ev.RunID)
		}
		if ev.Kind == trace.KindSupplyResolved && ev.Path == "/mmc@100" && ev.Label == "vcc1" {
			resolved = true
		}
	}
	if !resolved {
		t.Errorf("no SUPPLY_RESOLVED event for /mmc@100: %+v", events)
	}
}

func TestRunGraphDebugLogging(t *testing.T) {
	dir := isolate(t)
	path := writeBoard(t, dir)

	var stdout, stderr bytes.Buffer
	if code := RunGraph([]string{"-log-level", "debug", path}, &stdout, &stderr); code != exitSuccess {
		t.Fatalf("exit code = %d", code)
	}
	logs := stderr.String()
	for _, want := range []string{"msg=decision", "kind=CLASSIFIED", "msg=\"graph written\""} {
		if !strings.Contains(logs, want) {
			t.Errorf("logs missing %q:\n%s", want, logs)
		}
	}
}
