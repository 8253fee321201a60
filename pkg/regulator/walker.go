package regulator

import (
	"errors"
	"time"

	"github.com/regviz/regviz-go/pkg/dot"
	"github.com/regviz/regviz-go/pkg/fdt"
	"github.com/regviz/regviz-go/pkg/trace"
)

// State is the traversal state of a node.
type State uint8

const (
	StateUnvisited State = iota
	StateChildrenProcessed
	StateClassifiedRegulator
	StateClassifiedSupplyConsumer
	StateClassifiedNone
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUnvisited:
		return "unvisited"
	case StateChildrenProcessed:
		return "children-processed"
	case StateClassifiedRegulator:
		return "regulator"
	case StateClassifiedSupplyConsumer:
		return "supply-consumer"
	case StateClassifiedNone:
		return "none"
	default:
		return "unknown"
	}
}

// Summary describes a finished walk.
type Summary struct {
	Nodes      int
	Regulators int
	Consumers  int
	None       int

	// Suppressed counts nodes skipped inside a regulator branch.
	Suppressed int

	// OwnerFallbacks counts inline regulators grouped under their parent
	// because no owner rule matched.
	OwnerFallbacks int

	Statements dot.Stats
}

// Walker visits every node of a tree in post-order and emits its part of the
// supply graph.
type Walker struct {
	// OwnerRules and MaxClimb drive FindOwner.
	OwnerRules []OwnerRule
	MaxClimb   int

	// Trace receives one event per decision.
	Trace trace.Logger

	// RunID is copied into every trace event.
	RunID string

	tree       *fdt.Tree
	emitter    *dot.Emitter
	classifier *Classifier
	supplies   *Supplies
	states     map[*fdt.Node]State
	summary    Summary
	fullSeen   bool
}

// NewWalker creates a Walker emitting to emitter, with the default owner rules
// and no tracing.
func NewWalker(tree *fdt.Tree, emitter *dot.Emitter) *Walker {
	classifier := NewClassifier()
	return &Walker{
		OwnerRules: DefaultOwnerRules(),
		MaxClimb:   MaxOwnerClimb,
		Trace:      trace.NoopLogger{},
		tree:       tree,
		emitter:    emitter,
		classifier: classifier,
		supplies:   NewSupplies(NewResolver(tree), classifier),
		states:     make(map[*fdt.Node]State, tree.Len()),
	}
}

// State returns the traversal state of n.
func (w *Walker) State(n *fdt.Node) State {
	return w.states[n]
}

type frame struct {
	node     *fdt.Node
	inBranch bool
	expanded bool
}

// Walk traverses the tree once. Every child subtree is complete before its
// parent is classified.
func (w *Walker) Walk() Summary {
	stack := []frame{{node: w.tree.Root()}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if !top.expanded {
			top.expanded = true
			node, inBranch := top.node, top.inBranch
			children := node.Children
			for i := len(children) - 1; i >= 0; i-- {
				stack = append(stack, frame{node: children[i], inBranch: inBranch})
			}
			continue
		}
		stack = stack[:len(stack)-1]
		w.states[top.node] = StateChildrenProcessed
		w.visit(top.node, top.inBranch)
	}

	w.summary.Statements = w.emitter.Stats()
	return w.summary
}

// visit classifies n. inBranch is copied from the parent frame at push time.
// A regulator is classified after its descendants were pushed and visited, so
// they never observe it as their branch.
func (w *Walker) visit(n *fdt.Node, inBranch bool) {
	w.summary.Nodes++
	if inBranch {
		w.finish(n, StateClassifiedNone)
		w.summary.Suppressed++
		w.log(trace.Event{Kind: trace.KindSuppressed, Path: n.Path()})
		return
	}

	c := w.classifier.Classify(n)
	if c.Role != RoleUnclassified {
		w.log(trace.Event{Kind: trace.KindClassified, Path: n.Path(), Role: c.Role.String(), Label: c.Label, Rule: c.Rule})
	}

	switch c.Role {
	case RoleRegulator:
		w.regulator(n, c.Label)
		w.finish(n, StateClassifiedRegulator)
	case RoleSupplyConsumer:
		w.consumer(n)
		w.finish(n, StateClassifiedSupplyConsumer)
	default:
		w.finish(n, StateClassifiedNone)
	}
}

func (w *Walker) finish(n *fdt.Node, s State) {
	w.states[n] = s
	switch s {
	case StateClassifiedRegulator:
		w.summary.Regulators++
	case StateClassifiedSupplyConsumer:
		w.summary.Consumers++
	case StateClassifiedNone:
		w.summary.None++
	}
}

func (w *Walker) regulator(n *fdt.Node, label string) {
	if compatible, ok := n.StringProperty(CompatibleProperty); ok {
		w.outcome(n, w.emitter.RegulatorNode(label, compatible), "node "+label)
	} else if n.Depth > 1 {
		w.inlineRegulator(n, label)
	}

	for cursor := NextSupplyProperty(n, NoCursor); cursor != NoCursor; cursor = NextSupplyProperty(n, cursor) {
		ref, err := w.supplies.Resolve(&n.Properties[cursor])
		if err != nil {
			w.unresolved(n, ref.Property, err)
			continue
		}
		w.resolved(n, ref)
		w.outcome(n, w.emitter.SupplyEdge(ref.Label, label), "edge "+ref.Label+" -> "+label)
	}

	w.coupled(n, label)
}

func (w *Walker) inlineRegulator(n *fdt.Node, label string) {
	owner := FindOwner(n, w.OwnerRules, w.MaxClimb)
	ev := trace.Event{Kind: trace.KindOwner, Path: n.Path(), Label: owner.Node.Name, Rule: owner.Rule, Target: owner.Node.Path()}
	if owner.Fallback {
		w.summary.OwnerFallbacks++
		ev.Detail = "fallback to parent"
	}
	w.log(ev)

	name := owner.Node.Name
	w.outcome(n, w.emitter.InlineRegulatorCluster(name, label), "cluster "+name)
	w.emitter.MarkDevice(name)

	input := dot.InputMarker(name)
	w.sequence(owner.Node, func(source string) {
		w.outcome(n, w.emitter.SupplyEdge(source, input), "edge "+source+" -> "+input)
	})
}

func (w *Walker) consumer(n *fdt.Node) {
	if !w.emitter.FirstDevice(n.Name) {
		w.log(trace.Event{Kind: trace.KindDeviceSkipped, Path: n.Path(), Label: n.Name})
		return
	}
	w.outcome(n, w.emitter.DeviceCluster(n.Name), "cluster "+n.Name)
	w.sequence(n, func(source string) {
		w.outcome(n, w.emitter.SupplyEdge(source, n.Name), "edge "+source+" -> "+n.Name)
	})
}

// sequence calls edge for the source of each supply of n in order and stops
// at the first supply without a result.
func (w *Walker) sequence(n *fdt.Node, edge func(source string)) {
	for i := 0; ; i++ {
		ref, err := w.supplies.Supply(n, i)
		if err != nil {
			if !errors.Is(err, ErrNoSupply) {
				w.unresolved(n, ref.Property, err)
			}
			return
		}
		w.resolved(n, ref)
		edge(ref.Label)
	}
}

func (w *Walker) coupled(n *fdt.Node, label string) {
	p := n.Property(CoupledProperty)
	if p == nil {
		return
	}
	cells := fdt.NewCellReader(p.Value)
	for {
		ph, err := cells.Next()
		if err != nil {
			return
		}
		peer, ok := w.classifier.RegulatorLabel(w.tree.NodeByPhandle(ph))
		if !ok {
			continue
		}
		w.outcome(n, w.emitter.CoupledEdge(peer, label), "coupled "+peer+" -> "+label)
	}
}

func (w *Walker) resolved(n *fdt.Node, ref Reference) {
	w.log(trace.Event{Kind: trace.KindSupplyResolved, Path: n.Path(), Property: ref.Property, Label: ref.Label, Target: ref.Target.Path()})
}

func (w *Walker) unresolved(n *fdt.Node, property string, err error) {
	w.log(trace.Event{Kind: trace.KindSupplyUnresolved, Path: n.Path(), Property: property, Detail: err.Error()})
}

func (w *Walker) outcome(n *fdt.Node, o dot.Outcome, what string) {
	switch o {
	case dot.Duplicate:
		w.log(trace.Event{Kind: trace.KindDuplicate, Path: n.Path(), Detail: what})
	case dot.Unrecorded:
		if !w.fullSeen {
			w.fullSeen = true
			w.log(trace.Event{Kind: trace.KindCacheFull, Path: n.Path(), Detail: what})
		}
	}
}

func (w *Walker) log(ev trace.Event) {
	ev.Timestamp = time.Now()
	ev.RunID = w.RunID
	w.Trace.Log(ev)
}
