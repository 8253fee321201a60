package regulator

import (
	"strings"

	"github.com/regviz/regviz-go/pkg/fdt"
)

// MaxOwnerClimb is the number of ancestor levels FindOwner evaluates.
const MaxOwnerClimb = 2

// OwnerRule decides whether an ancestor is the device owning an inline
// regulator.
type OwnerRule interface {
	// ID returns the rule identifier (e.g. "OWN-001").
	ID() string
	// Name returns a human-readable name.
	Name() string
	// Match reports whether n is an owning device.
	Match(n *fdt.Node) bool
}

type baseRule struct {
	id   string
	name string
}

func (r *baseRule) ID() string   { return r.id }
func (r *baseRule) Name() string { return r.name }

type predicateRule struct {
	baseRule
	match func(*fdt.Node) bool
}

func (r *predicateRule) Match(n *fdt.Node) bool { return r.match(n) }

// NewOwnerRule creates an OwnerRule from a predicate.
func NewOwnerRule(id, name string, match func(*fdt.Node) bool) OwnerRule {
	return &predicateRule{baseRule: baseRule{id: id, name: name}, match: match}
}

// DefaultOwnerRules returns the owner rules in evaluation order.
func DefaultOwnerRules() []OwnerRule {
	return []OwnerRule{
		NewOwnerRule("OWN-001", "system power controller", func(n *fdt.Node) bool {
			return n.HasProperty("system-power-controller")
		}),
		NewOwnerRule("OWN-002", "pmic unit name", func(n *fdt.Node) bool {
			return strings.HasPrefix(n.Name, "pmic@")
		}),
		NewOwnerRule("OWN-003", "supply consumer", func(n *fdt.Node) bool {
			return SupplyCount(n) > 0
		}),
		NewOwnerRule("OWN-004", "addressable device", func(n *fdt.Node) bool {
			return n.HasProperty("reg")
		}),
	}
}

// OwnerMatch is the result of FindOwner.
type OwnerMatch struct {
	// Node is the owning device. Nil only when the regulator is the root.
	Node *fdt.Node

	// Rule is the ID of the matching rule. Empty on fallback.
	Rule string

	// Level is 0 for the immediate parent.
	Level int

	// Fallback is set when no rule matched and Node is the immediate parent.
	Fallback bool
}

// FindOwner climbs at most maxClimb ancestors of n, starting at its parent,
// and returns the first one matched by any rule, rules evaluated in order at
// each level. Without a match it falls back to the immediate parent.
func FindOwner(n *fdt.Node, rules []OwnerRule, maxClimb int) OwnerMatch {
	parent := n.Parent
	if parent == nil {
		return OwnerMatch{}
	}

	cur := parent
	for level := 0; level < maxClimb && cur != nil; level++ {
		for _, r := range rules {
			if r.Match(cur) {
				return OwnerMatch{Node: cur, Rule: r.ID(), Level: level}
			}
		}
		cur = cur.Parent
	}
	return OwnerMatch{Node: parent, Fallback: true}
}
