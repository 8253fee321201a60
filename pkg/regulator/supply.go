package regulator

import (
	"fmt"
	"strings"

	"github.com/regviz/regviz-go/pkg/fdt"
)

// SupplySuffix marks a property holding a supply phandle.
const SupplySuffix = "-supply"

// NoCursor starts a NextSupplyProperty iteration and marks its end.
const NoCursor = -1

// IsSupplyProperty reports whether name ends in SupplySuffix. Case-sensitive.
func IsSupplyProperty(name string) bool {
	return strings.HasSuffix(name, SupplySuffix)
}

// NextSupplyProperty returns the index of the first supply property of n
// declared after cursor, or NoCursor when there is none.
func NextSupplyProperty(n *fdt.Node, cursor int) int {
	for i := cursor + 1; i < len(n.Properties); i++ {
		if i >= 0 && IsSupplyProperty(n.Properties[i].Name) {
			return i
		}
	}
	return NoCursor
}

// SupplyCount returns the number of supply properties of n.
func SupplyCount(n *fdt.Node) int {
	count := 0
	for _, p := range n.Properties {
		if IsSupplyProperty(p.Name) {
			count++
		}
	}
	return count
}

// Reference is a resolved supply property.
type Reference struct {
	// Property is the supply property name.
	Property string

	// Target is the referenced node. Nil when the phandle did not resolve.
	Target *fdt.Node

	// Label is the target's regulator label.
	Label string
}

// Supplies resolves supply properties to regulator labels.
type Supplies struct {
	resolver   *Resolver
	classifier *Classifier
}

// NewSupplies creates a Supplies.
func NewSupplies(resolver *Resolver, classifier *Classifier) *Supplies {
	return &Supplies{resolver: resolver, classifier: classifier}
}

// Resolve resolves supply property p to its regulator.
func (s *Supplies) Resolve(p *fdt.Property) (Reference, error) {
	ref := Reference{Property: p.Name}
	target, err := s.resolver.ResolveProperty(p)
	if err != nil {
		return ref, err
	}
	ref.Target = target
	label, ok := s.classifier.RegulatorLabel(target)
	if !ok {
		return ref, fmt.Errorf("%w: %s", ErrNotRegulator, target.Path())
	}
	ref.Label = label
	return ref, nil
}

// Supply resolves the i-th (0-based) supply property of n in declaration
// order. It wraps ErrNoSupply when n has no i-th supply property.
func (s *Supplies) Supply(n *fdt.Node, i int) (Reference, error) {
	seen := 0
	for k := range n.Properties {
		p := &n.Properties[k]
		if !IsSupplyProperty(p.Name) {
			continue
		}
		if seen == i {
			return s.Resolve(p)
		}
		seen++
	}
	return Reference{}, fmt.Errorf("%w: index %d of %d", ErrNoSupply, i, seen)
}

// UpstreamSourceSeq returns the regulator label behind the i-th supply
// property of n. Loops over increasing i stop at the first false, which
// covers both the end of the list and an unresolved entry.
func (s *Supplies) UpstreamSourceSeq(n *fdt.Node, i int) (string, bool) {
	ref, err := s.Supply(n, i)
	if err != nil {
		return "", false
	}
	return ref.Label, true
}

// UpstreamSource returns the single regulator feeding every supply of n.
// Supplies with a short or null phandle are ignored. Two different phandles,
// no usable phandle at all or a non-regulator target give no result.
func (s *Supplies) UpstreamSource(n *fdt.Node) (string, bool) {
	var phandle uint32
	found := false
	for _, p := range n.Properties {
		if !IsSupplyProperty(p.Name) {
			continue
		}
		v, err := fdt.FirstCell(p.Value)
		if err != nil || v == 0 {
			continue
		}
		if found && v != phandle {
			return "", false
		}
		phandle, found = v, true
	}
	if !found {
		return "", false
	}
	return s.classifier.RegulatorLabel(s.resolver.NodeByPhandle(phandle))
}
