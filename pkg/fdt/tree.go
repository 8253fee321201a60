package fdt

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/u-root/u-root/pkg/dt"
)

// Phandle property names, in lookup order.
const (
	PhandleProperty       = "phandle"
	LegacyPhandleProperty = "linux,phandle"
)

// Property is a named raw payload of a node.
type Property struct {
	// Name is the property name from the strings block.
	Name string

	// Value is the raw payload.
	Value []byte

	// Index is the declaration position within the owning node.
	Index int
}

// String returns the payload up to the first NUL byte.
func (p *Property) String() string {
	if i := bytes.IndexByte(p.Value, 0); i >= 0 {
		return string(p.Value[:i])
	}
	return string(p.Value)
}

// Node is a read-only view of one device tree node.
type Node struct {
	// Name is the node name including the unit address (e.g. "pmic@48").
	// The root node has an empty name.
	Name string

	// Parent is nil for the root node.
	Parent *Node

	// Children in declaration order.
	Children []*Node

	// Properties in declaration order.
	Properties []Property

	// Depth is 0 for the root node.
	Depth int

	// Offset is the pre-order position of the node in the tree.
	Offset int
}

// Property returns the named property, or nil when absent.
func (n *Node) Property(name string) *Property {
	for i := range n.Properties {
		if n.Properties[i].Name == name {
			return &n.Properties[i]
		}
	}
	return nil
}

// HasProperty reports whether the named property is present.
func (n *Node) HasProperty(name string) bool {
	return n.Property(name) != nil
}

// StringProperty returns the string value of the named property.
func (n *Node) StringProperty(name string) (string, bool) {
	p := n.Property(name)
	if p == nil {
		return "", false
	}
	return p.String(), true
}

// Path returns the absolute path of the node.
func (n *Node) Path() string {
	if n.Parent == nil {
		return "/"
	}
	var parts []string
	for cur := n; cur.Parent != nil; cur = cur.Parent {
		parts = append(parts, cur.Name)
	}
	var b strings.Builder
	for i := len(parts) - 1; i >= 0; i-- {
		b.WriteByte('/')
		b.WriteString(parts[i])
	}
	return b.String()
}

// Phandle returns the phandle declared by the node. A payload that is not
// exactly one cell is ignored.
func (n *Node) Phandle() (uint32, bool) {
	for _, name := range []string{PhandleProperty, LegacyPhandleProperty} {
		if p := n.Property(name); p != nil && len(p.Value) == CellSize {
			if v, err := FirstCell(p.Value); err == nil {
				return v, true
			}
		}
	}
	return 0, false
}

// Tree is an immutable, indexed device tree.
type Tree struct {
	root      *Node
	nodes     []*Node
	byPhandle map[uint32]*Node
}

// Load decodes a blob into a Tree.
func Load(blob []byte) (*Tree, error) {
	if err := CheckHeader(blob); err != nil {
		return nil, err
	}

	// The decoder reads the strings block even when it is empty, which fails
	// with EOF when the block ends the buffer. Trailing zeros are ignored.
	padded := make([]byte, len(blob), len(blob)+CellSize)
	copy(padded, blob)
	padded = append(padded, make([]byte, CellSize)...)

	raw, err := dt.ReadFDT(bytes.NewReader(padded))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptTree, err)
	}
	if raw.RootNode == nil {
		return nil, fmt.Errorf("%w: no root node", ErrCorruptTree)
	}

	return newTree(raw.RootNode), nil
}

// LoadFile reads and decodes the blob at path.
func LoadFile(path string) (*Tree, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Load(blob)
}

type pending struct {
	raw    *dt.Node
	parent *Node
}

// newTree copies the decoded hierarchy into indexed nodes in pre-order.
func newTree(rawRoot *dt.Node) *Tree {
	t := &Tree{byPhandle: make(map[uint32]*Node)}

	stack := []pending{{raw: rawRoot}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := &Node{
			Name:       top.raw.Name,
			Parent:     top.parent,
			Offset:     len(t.nodes),
			Properties: make([]Property, len(top.raw.Properties)),
		}
		if top.parent == nil {
			n.Name = ""
			t.root = n
		} else {
			n.Depth = top.parent.Depth + 1
			top.parent.Children = append(top.parent.Children, n)
		}
		for i, p := range top.raw.Properties {
			n.Properties[i] = Property{Name: p.Name, Value: p.Value, Index: i}
		}
		t.nodes = append(t.nodes, n)

		if ph, ok := n.Phandle(); ok && ph != 0 && ph != 0xffffffff {
			if _, dup := t.byPhandle[ph]; !dup {
				t.byPhandle[ph] = n
			}
		}

		for i := len(top.raw.Children) - 1; i >= 0; i-- {
			stack = append(stack, pending{raw: top.raw.Children[i], parent: n})
		}
	}

	return t
}

// Root returns the root node.
func (t *Tree) Root() *Node {
	return t.root
}

// Len returns the number of nodes.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// NodeByPhandle returns the node declaring phandle, or nil.
func (t *Tree) NodeByPhandle(phandle uint32) *Node {
	return t.byPhandle[phandle]
}

// Walk calls fn for every node in pre-order.
func (t *Tree) Walk(fn func(*Node)) {
	for _, n := range t.nodes {
		fn(n)
	}
}

// Lookup returns the node at an absolute path, or nil.
// A path component without a unit address matches a child "name@addr" when
// exactly one child has that base name.
func (t *Tree) Lookup(path string) *Node {
	if !strings.HasPrefix(path, "/") {
		return nil
	}
	cur := t.root
	for _, part := range strings.Split(strings.Trim(path, "/"), "/") {
		if part == "" {
			continue
		}
		cur = child(cur, part)
		if cur == nil {
			return nil
		}
	}
	return cur
}

func child(n *Node, name string) *Node {
	var base *Node
	matches := 0
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
		if !strings.Contains(name, "@") {
			if b, _, _ := strings.Cut(c.Name, "@"); b == name {
				base = c
				matches++
			}
		}
	}
	if matches == 1 {
		return base
	}
	return nil
}
