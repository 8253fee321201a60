package regulator

import (
	"strings"

	"github.com/regviz/regviz-go/pkg/fdt"
)

// Property names the classifier looks at.
const (
	NameProperty       = "regulator-name"
	RegulatorPrefix    = "regulator-m"
	CompatibleProperty = "compatible"
	CoupledProperty    = "regulator-coupled-with"
)

// Classification rule identifiers.
const (
	RuleRegulatorName   = "CLS-001"
	RuleRegulatorPrefix = "CLS-002"
	RuleSupplyConsumer  = "CLS-003"
)

// Role is the part a node plays in the supply graph.
type Role uint8

const (
	// RoleUnclassified nodes take no part in the graph.
	RoleUnclassified Role = iota
	// RoleRegulator nodes provide power.
	RoleRegulator
	// RoleSupplyConsumer nodes reference at least one supply.
	RoleSupplyConsumer
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleUnclassified:
		return "unclassified"
	case RoleRegulator:
		return "regulator"
	case RoleSupplyConsumer:
		return "supply-consumer"
	default:
		return "unknown"
	}
}

// Classification is the result of classifying one node.
type Classification struct {
	Role Role

	// Label is the regulator label. Empty for other roles.
	Label string

	// Rule is the identifier of the matching rule. Empty when unclassified.
	Rule string
}

// Classifier assigns roles to nodes. Results are memoized, so a node is
// classified once per Classifier.
type Classifier struct {
	memo map[*fdt.Node]Classification
}

// NewClassifier creates a Classifier with an empty memo.
func NewClassifier() *Classifier {
	return &Classifier{memo: make(map[*fdt.Node]Classification)}
}

// Classify returns the role of n. First match wins:
// "regulator-name", then any "regulator-m" prefixed property, then any supply
// property.
func (c *Classifier) Classify(n *fdt.Node) Classification {
	if got, ok := c.memo[n]; ok {
		return got
	}
	got := classify(n)
	c.memo[n] = got
	return got
}

func classify(n *fdt.Node) Classification {
	if name, ok := n.StringProperty(NameProperty); ok {
		return Classification{Role: RoleRegulator, Label: name, Rule: RuleRegulatorName}
	}
	for _, p := range n.Properties {
		if strings.HasPrefix(p.Name, RegulatorPrefix) {
			return Classification{Role: RoleRegulator, Label: n.Name, Rule: RuleRegulatorPrefix}
		}
	}
	if SupplyCount(n) > 0 {
		return Classification{Role: RoleSupplyConsumer, Rule: RuleSupplyConsumer}
	}
	return Classification{Role: RoleUnclassified}
}

// RegulatorLabel returns the label of n if it is a regulator.
func (c *Classifier) RegulatorLabel(n *fdt.Node) (string, bool) {
	if n == nil {
		return "", false
	}
	got := c.Classify(n)
	if got.Role != RoleRegulator {
		return "", false
	}
	return got.Label, true
}
