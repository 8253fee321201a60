package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/regviz/regviz-go/pkg/dot"
	"github.com/regviz/regviz-go/pkg/regulator"
)

// ErrInvalid is wrapped by every load or validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is the top-level regviz configuration.
type Config struct {
	Graph  GraphConfig  `yaml:"graph" json:"graph"`
	Dedup  DedupConfig  `yaml:"dedup" json:"dedup"`
	Shapes ShapeConfig  `yaml:"shapes" json:"shapes"`
	Colors ColorConfig  `yaml:"colors" json:"colors"`
	Edges  EdgeConfig   `yaml:"edges" json:"edges"`
	Layout LayoutConfig `yaml:"layout" json:"layout"`
	Owner  OwnerConfig  `yaml:"owner" json:"owner"`
}

// GraphConfig controls the graph wrapper.
type GraphConfig struct {
	// Name is the identifier after "digraph".
	Name string `yaml:"name,omitempty" json:"name"`

	// Hint always includes the legend, as if -hint were given.
	Hint bool `yaml:"hint,omitempty" json:"hint"`
}

// DedupConfig sizes the statement cache.
type DedupConfig struct {
	// Capacity is the number of fingerprints recorded before dedup stops.
	Capacity int `yaml:"capacity,omitempty" json:"capacity"`
}

// ShapeRule maps a compatible string to a Graphviz shape.
type ShapeRule struct {
	Compatible string `yaml:"compatible" json:"compatible"`
	Shape      string `yaml:"shape" json:"shape"`
}

// ShapeConfig selects regulator node shapes.
type ShapeConfig struct {
	Default string      `yaml:"default,omitempty" json:"default"`
	Rules   []ShapeRule `yaml:"rules,omitempty" json:"rules"`
}

// ColorConfig holds fill and cluster colors.
type ColorConfig struct {
	Regulator string `yaml:"regulator,omitempty" json:"regulator"`
	Inline    string `yaml:"inline,omitempty" json:"inline"`
	Input     string `yaml:"input,omitempty" json:"input"`
	Device    string `yaml:"device,omitempty" json:"device"`
	Cluster   string `yaml:"cluster,omitempty" json:"cluster"`
	Legend    string `yaml:"legend,omitempty" json:"legend"`
}

// EdgeConfig holds edge styles.
type EdgeConfig struct {
	Supply  string `yaml:"supply,omitempty" json:"supply"`
	Coupled string `yaml:"coupled,omitempty" json:"coupled"`
}

// LayoutConfig holds global layout hints.
type LayoutConfig struct {
	RankSep float64 `yaml:"ranksep,omitempty" json:"ranksep"`
	NodeSep float64 `yaml:"nodesep,omitempty" json:"nodesep"`
	Splines string  `yaml:"splines,omitempty" json:"splines"`
}

// OwnerConfig tunes the owner search for inline regulators.
type OwnerConfig struct {
	// MaxClimb is the number of ancestor levels searched. 0 means the default.
	MaxClimb int `yaml:"maxClimb,omitempty" json:"maxClimb"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	s := dot.DefaultStyle()
	rules := make([]ShapeRule, len(s.Shapes))
	for i, r := range s.Shapes {
		rules[i] = ShapeRule{Compatible: r.Compatible, Shape: r.Shape}
	}
	return &Config{
		Graph: GraphConfig{Name: s.GraphName},
		Dedup: DedupConfig{Capacity: dot.DefaultCapacity},
		Shapes: ShapeConfig{
			Default: s.DefaultShape,
			Rules:   rules,
		},
		Colors: ColorConfig{
			Regulator: s.RegulatorFill,
			Inline:    s.InlineFill,
			Input:     s.InputFill,
			Device:    s.DeviceFill,
			Cluster:   s.ClusterColor,
			Legend:    s.LegendColor,
		},
		Edges: EdgeConfig{
			Supply:  s.SupplyEdgeStyle,
			Coupled: s.CoupledEdgeStyle,
		},
		Layout: LayoutConfig{
			RankSep: s.RankSep,
			NodeSep: s.NodeSep,
			Splines: s.Splines,
		},
		Owner: OwnerConfig{MaxClimb: regulator.MaxOwnerClimb},
	}
}

// SearchPaths returns the files Load looks at, in order:
//  1. ./regviz.yaml
//  2. ./.regviz.yaml
//  3. ~/.config/regviz/config.yaml
func SearchPaths() []string {
	cwd, _ := os.Getwd()
	paths := []string{
		filepath.Join(cwd, "regviz.yaml"),
		filepath.Join(cwd, ".regviz.yaml"),
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "regviz", "config.yaml"))
	}
	return paths
}

// Load loads explicit when set. Otherwise it loads the first file found in
// SearchPaths, or returns DefaultConfig when there is none.
func Load(explicit string) (*Config, error) {
	if explicit != "" {
		return LoadFile(explicit)
	}
	for _, path := range SearchPaths() {
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return DefaultConfig(), nil
}

// LoadFile reads, completes and validates the configuration at path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML, fills defaults and validates the result.
// Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: parsing: %v", ErrInvalid, err)
	}
	cfg.applyDefaults()
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills zero fields from DefaultConfig.
func (c *Config) applyDefaults() {
	d := DefaultConfig()

	setString := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	setString(&c.Graph.Name, d.Graph.Name)
	setString(&c.Shapes.Default, d.Shapes.Default)
	setString(&c.Colors.Regulator, d.Colors.Regulator)
	setString(&c.Colors.Inline, d.Colors.Inline)
	setString(&c.Colors.Input, d.Colors.Input)
	setString(&c.Colors.Device, d.Colors.Device)
	setString(&c.Colors.Cluster, d.Colors.Cluster)
	setString(&c.Colors.Legend, d.Colors.Legend)
	setString(&c.Edges.Supply, d.Edges.Supply)
	setString(&c.Edges.Coupled, d.Edges.Coupled)
	setString(&c.Layout.Splines, d.Layout.Splines)

	if c.Dedup.Capacity == 0 {
		c.Dedup.Capacity = d.Dedup.Capacity
	}
	if c.Shapes.Rules == nil {
		c.Shapes.Rules = d.Shapes.Rules
	}
	if c.Layout.RankSep == 0 {
		c.Layout.RankSep = d.Layout.RankSep
	}
	if c.Layout.NodeSep == 0 {
		c.Layout.NodeSep = d.Layout.NodeSep
	}
	if c.Owner.MaxClimb == 0 {
		c.Owner.MaxClimb = d.Owner.MaxClimb
	}
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Style returns the emitter style described by the configuration.
func (c *Config) Style() dot.Style {
	shapes := make([]dot.ShapeRule, len(c.Shapes.Rules))
	for i, r := range c.Shapes.Rules {
		shapes[i] = dot.ShapeRule{Compatible: r.Compatible, Shape: r.Shape}
	}
	return dot.Style{
		GraphName:        c.Graph.Name,
		Shapes:           shapes,
		DefaultShape:     c.Shapes.Default,
		RegulatorFill:    c.Colors.Regulator,
		InlineFill:       c.Colors.Inline,
		InputFill:        c.Colors.Input,
		DeviceFill:       c.Colors.Device,
		ClusterColor:     c.Colors.Cluster,
		LegendColor:      c.Colors.Legend,
		SupplyEdgeStyle:  c.Edges.Supply,
		CoupledEdgeStyle: c.Edges.Coupled,
		RankSep:          c.Layout.RankSep,
		NodeSep:          c.Layout.NodeSep,
		Splines:          c.Layout.Splines,
	}
}
