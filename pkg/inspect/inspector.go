package inspect

import (
	"errors"
	"fmt"
	"sort"

	"github.com/regviz/regviz-go/pkg/fdt"
	"github.com/regviz/regviz-go/pkg/regulator"
)

// Inspector errors.
var (
	ErrNodeNotFound  = errors.New("node not found")
	ErrUnknownLabel  = errors.New("unknown label")
	ErrNotRegulator  = errors.New("node is not a regulator")
	ErrNoOwnerNeeded = errors.New("regulator has a compatible string or sits near the root")
)

// Well-known nodes.
const (
	AliasesPath = "/aliases"
	SymbolsPath = "/__symbols__"
)

// Inspector answers questions about one tree.
type Inspector struct {
	tree       *fdt.Tree
	classifier *regulator.Classifier
	supplies   *regulator.Supplies
	rules      []regulator.OwnerRule
	maxClimb   int
}

// NewInspector creates an Inspector with the default owner rules.
func NewInspector(tree *fdt.Tree) *Inspector {
	classifier := regulator.NewClassifier()
	return &Inspector{
		tree:       tree,
		classifier: classifier,
		supplies:   regulator.NewSupplies(regulator.NewResolver(tree), classifier),
		rules:      regulator.DefaultOwnerRules(),
		maxClimb:   regulator.MaxOwnerClimb,
	}
}

// Tree returns the underlying tree.
func (i *Inspector) Tree() *fdt.Tree {
	return i.tree
}

// Resolve finds the node named by input relative to the node at cwd.
func (i *Inspector) Resolve(cwd, input string) (*fdt.Node, error) {
	p, err := ParsePath(input)
	if err != nil {
		return nil, err
	}

	if p.Label != "" {
		target, ok := i.pathProperty(SymbolsPath, p.Label)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownLabel, p.Label)
		}
		return i.lookup(target)
	}

	if p.Alias != "" {
		if target, ok := i.pathProperty(AliasesPath, p.Alias); ok {
			if n, err := i.lookup(Join(target, &Path{Node: "./" + p.Rest})); err == nil {
				return n, nil
			}
		}
	}

	return i.lookup(Join(cwd, p))
}

func (i *Inspector) pathProperty(nodePath, name string) (string, bool) {
	n := i.tree.Lookup(nodePath)
	if n == nil {
		return "", false
	}
	return n.StringProperty(name)
}

func (i *Inspector) lookup(p string) (*fdt.Node, error) {
	n := i.tree.Lookup(p)
	if n == nil {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, p)
	}
	return n, nil
}

// NodeInfo describes one node for display.
type NodeInfo struct {
	Path       string
	Name       string
	Depth      int
	Phandle    uint32
	HasPhandle bool
	Role       regulator.Role
	Label      string
	Rule       string
	Compatible string
	Properties []PropertyInfo
	Children   []string
}

// PropertyInfo is one property with its raw payload.
type PropertyInfo struct {
	Name  string
	Value []byte
}

// InspectNode reports n.
func (i *Inspector) InspectNode(n *fdt.Node) *NodeInfo {
	c := i.classifier.Classify(n)
	info := &NodeInfo{
		Path:  n.Path(),
		Name:  n.Name,
		Depth: n.Depth,
		Role:  c.Role,
		Label: c.Label,
		Rule:  c.Rule,
	}
	info.Phandle, info.HasPhandle = n.Phandle()
	info.Compatible, _ = n.StringProperty(regulator.CompatibleProperty)
	for _, p := range n.Properties {
		info.Properties = append(info.Properties, PropertyInfo{Name: p.Name, Value: p.Value})
	}
	for _, child := range n.Children {
		info.Children = append(info.Children, child.Name)
	}
	return info
}

// SupplyInfo is one supply property and what it resolves to.
type SupplyInfo struct {
	// Consumer is the path of the node declaring the property.
	Consumer string
	Property string

	// Target is the path of the resolved node. Empty when unresolved.
	Target string

	// Label is the target's regulator label.
	Label string

	// Err is the reason the supply gives no result.
	Err error
}

// Supplies lists the supply properties of n in declaration order.
func (i *Inspector) Supplies(n *fdt.Node) []SupplyInfo {
	var out []SupplyInfo
	for c := regulator.NextSupplyProperty(n, regulator.NoCursor); c != regulator.NoCursor; c = regulator.NextSupplyProperty(n, c) {
		out = append(out, i.supplyInfo(n, &n.Properties[c]))
	}
	return out
}

func (i *Inspector) supplyInfo(n *fdt.Node, p *fdt.Property) SupplyInfo {
	ref, err := i.supplies.Resolve(p)
	info := SupplyInfo{Consumer: n.Path(), Property: p.Name, Label: ref.Label, Err: err}
	if ref.Target != nil {
		info.Target = ref.Target.Path()
	}
	return info
}

// Consumers lists every supply property in the tree resolving to regulator n,
// sorted by consumer path.
func (i *Inspector) Consumers(n *fdt.Node) ([]SupplyInfo, error) {
	if _, ok := i.classifier.RegulatorLabel(n); !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotRegulator, n.Path())
	}
	var out []SupplyInfo
	i.tree.Walk(func(c *fdt.Node) {
		for k := range c.Properties {
			p := &c.Properties[k]
			if !regulator.IsSupplyProperty(p.Name) {
				continue
			}
			if info := i.supplyInfo(c, p); info.Err == nil && info.Target == n.Path() {
				out = append(out, info)
			}
		}
	})
	sort.SliceStable(out, func(a, b int) bool { return out[a].Consumer < out[b].Consumer })
	return out, nil
}

// OwnerInfo describes the device an inline regulator is grouped under.
type OwnerInfo struct {
	Path     string
	Name     string
	Rule     string
	RuleName string
	Level    int
	Fallback bool
}

// Owner reports the owning device of inline regulator n.
func (i *Inspector) Owner(n *fdt.Node) (*OwnerInfo, error) {
	if _, ok := i.classifier.RegulatorLabel(n); !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotRegulator, n.Path())
	}
	if n.HasProperty(regulator.CompatibleProperty) || n.Depth <= 1 {
		return nil, ErrNoOwnerNeeded
	}

	m := regulator.FindOwner(n, i.rules, i.maxClimb)
	info := &OwnerInfo{
		Path:     m.Node.Path(),
		Name:     m.Node.Name,
		Rule:     m.Rule,
		Level:    m.Level,
		Fallback: m.Fallback,
	}
	for _, r := range i.rules {
		if r.ID() == m.Rule {
			info.RuleName = r.Name()
		}
	}
	return info, nil
}

// Source returns the single regulator feeding every supply of n.
func (i *Inspector) Source(n *fdt.Node) (string, bool) {
	return i.supplies.UpstreamSource(n)
}
