package regulator

import (
	"errors"
	"testing"

	"github.com/regviz/regviz-go/pkg/fdt"
	"github.com/regviz/regviz-go/pkg/fdt/fdttest"
)

func TestIsSupplyProperty(t *testing.T) {
	tests := map[string]bool{
		"vdd-supply":   true,
		"-supply":      true,
		"supply":       false,
		"vdd-supplies": false,
		"vdd-Supply":   false,
		"vdd_supply":   false,
		"":             false,
	}
	for name, want := range tests {
		if got := IsSupplyProperty(name); got != want {
			t.Errorf("IsSupplyProperty(%q) = %v, want %v", name, got, want)
		}
	}
}

func supplyTree(t *testing.T) *fdt.Tree {
	t.Helper()
	return fdttest.Tree(t, fdttest.N("",
		fdttest.N("a", fdttest.Str("regulator-name", "reg_a"), fdttest.Phandle(1)),
		fdttest.N("b", fdttest.Str("regulator-name", "reg_b"), fdttest.Phandle(2)),
		fdttest.N("clk", fdttest.Phandle(3)),
		fdttest.N("dev",
			fdttest.Str("compatible", "vendor,dev"),
			fdttest.Cells("vdd-supply", 1),
			fdttest.Cells("clocks", 3),
			fdttest.Cells("vddio-supply", 2),
			fdttest.Cells("vbad-supply", 99),
			fdttest.Cells("vclk-supply", 3),
		),
	))
}

func newSupplies(tree *fdt.Tree) *Supplies {
	return NewSupplies(NewResolver(tree), NewClassifier())
}

func TestNextSupplyProperty(t *testing.T) {
	dev := supplyTree(t).Lookup("/dev")

	var got []string
	for c := NextSupplyProperty(dev, NoCursor); c != NoCursor; c = NextSupplyProperty(dev, c) {
		got = append(got, dev.Properties[c].Name)
	}

	want := []string{"vdd-supply", "vddio-supply", "vbad-supply", "vclk-supply"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("step %d = %q, want %q", i, got[i], want[i])
		}
	}

	if c := NextSupplyProperty(dev, len(dev.Properties)-1); c != NoCursor {
		t.Errorf("cursor past the end = %d, want NoCursor", c)
	}
}

func TestUpstreamSourceSeq(t *testing.T) {
	tree := supplyTree(t)
	dev := tree.Lookup("/dev")
	s := newSupplies(tree)

	tests := []struct {
		i      int
		want   string
		wantOK bool
	}{
		{i: 0, want: "reg_a", wantOK: true},
		{i: 1, want: "reg_b", wantOK: true},
		{i: 2},
		{i: 3},
		{i: 4},
		{i: 40},
	}
	for _, tt := range tests {
		got, ok := s.UpstreamSourceSeq(dev, tt.i)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("UpstreamSourceSeq(%d) = %q, %v; want %q, %v", tt.i, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestSupplyReasons(t *testing.T) {
	tree := supplyTree(t)
	dev := tree.Lookup("/dev")
	s := newSupplies(tree)

	tests := []struct {
		i       int
		prop    string
		wantErr error
	}{
		{i: 2, prop: "vbad-supply", wantErr: ErrDanglingPhandle},
		{i: 3, prop: "vclk-supply", wantErr: ErrNotRegulator},
		{i: 4, wantErr: ErrNoSupply},
	}
	for _, tt := range tests {
		ref, err := s.Supply(dev, tt.i)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("Supply(%d) err = %v, want %v", tt.i, err, tt.wantErr)
		}
		if ref.Property != tt.prop {
			t.Errorf("Supply(%d) property = %q, want %q", tt.i, ref.Property, tt.prop)
		}
	}
}

func TestUpstreamSource(t *testing.T) {
	tests := []struct {
		name   string
		props  []any
		want   string
		wantOK bool
	}{
		{
			name:   "single supply",
			props:  []any{fdttest.Cells("vdd-supply", 1)},
			want:   "reg_a",
			wantOK: true,
		},
		{
			name:   "all agree",
			props:  []any{fdttest.Cells("vdd-supply", 1), fdttest.Cells("vddio-supply", 1)},
			want:   "reg_a",
			wantOK: true,
		},
		{
			name:  "conflict",
			props: []any{fdttest.Cells("vdd-supply", 1), fdttest.Cells("vddio-supply", 2)},
		},
		{
			name: "short and null ignored",
			props: []any{
				fdttest.Raw("vx-supply", []byte{1}),
				fdttest.Cells("vnull-supply", 0),
				fdttest.Cells("vdd-supply", 2),
			},
			want:   "reg_b",
			wantOK: true,
		},
		{
			name:  "no supplies",
			props: []any{fdttest.Cells("clocks", 1)},
		},
		{
			name:  "dangling",
			props: []any{fdttest.Cells("vdd-supply", 77)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := fdttest.Tree(t, fdttest.N("",
				fdttest.N("a", fdttest.Str("regulator-name", "reg_a"), fdttest.Phandle(1)),
				fdttest.N("b", fdttest.Str("regulator-name", "reg_b"), fdttest.Phandle(2)),
				fdttest.N("dev", tt.props...),
			))
			got, ok := newSupplies(tree).UpstreamSource(tree.Lookup("/dev"))
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("UpstreamSource = %q, %v; want %q, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestSupplyCount(t *testing.T) {
	if got := SupplyCount(supplyTree(t).Lookup("/dev")); got != 4 {
		t.Errorf("SupplyCount = %d, want 4", got)
	}
}
