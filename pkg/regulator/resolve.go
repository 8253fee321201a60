package regulator

import (
	"errors"
	"fmt"

	"github.com/regviz/regviz-go/pkg/fdt"
)

// Resolution failures. They are reasons for "no result", never fatal.
var (
	ErrNoProperty      = errors.New("property not found")
	ErrNullPhandle     = errors.New("null phandle")
	ErrDanglingPhandle = errors.New("no node declares phandle")
	ErrNoSupply        = errors.New("no such supply property")
	ErrNotRegulator    = errors.New("supply target is not a regulator")
)

// Resolver follows phandle references one hop.
type Resolver struct {
	tree *fdt.Tree
}

// NewResolver creates a Resolver over tree.
func NewResolver(tree *fdt.Tree) *Resolver {
	return &Resolver{tree: tree}
}

// Resolve returns the node referenced by the named property of n.
func (r *Resolver) Resolve(n *fdt.Node, name string) (*fdt.Node, bool) {
	target, err := r.Lookup(n, name)
	return target, err == nil
}

// Lookup is Resolve with the failure reason.
func (r *Resolver) Lookup(n *fdt.Node, name string) (*fdt.Node, error) {
	p := n.Property(name)
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoProperty, name)
	}
	return r.ResolveProperty(p)
}

// ResolveProperty decodes the first cell of p as a phandle and returns the
// node declaring it.
func (r *Resolver) ResolveProperty(p *fdt.Property) (*fdt.Node, error) {
	if p == nil {
		return nil, ErrNoProperty
	}
	ph, err := fdt.FirstCell(p.Value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.Name, err)
	}
	if ph == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNullPhandle, p.Name)
	}
	target := r.tree.NodeByPhandle(ph)
	if target == nil {
		return nil, fmt.Errorf("%w: %s = %#x", ErrDanglingPhandle, p.Name, ph)
	}
	return target, nil
}

// NodeByPhandle returns the node declaring ph, or nil.
func (r *Resolver) NodeByPhandle(ph uint32) *fdt.Node {
	return r.tree.NodeByPhandle(ph)
}
