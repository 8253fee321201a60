// Package fdttest builds flattened device tree blobs for tests.
//
//	root := fdttest.N("",
//		fdttest.Str("model", "Test Board"),
//		fdttest.N("vcc",
//			fdttest.Str("regulator-name", "vcc1"),
//			fdttest.Str("compatible", "regulator-fixed"),
//			fdttest.Phandle(1),
//		),
//	)
//	tree := fdttest.Tree(t, root)
package fdttest

import (
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/regviz/regviz-go/pkg/fdt"
)

// Structure block tokens.
const (
	tokenBeginNode = 0x1
	tokenEndNode   = 0x2
	tokenProp      = 0x3
	tokenEnd       = 0x9
)

// Blob layout constants for a version 17 blob.
const (
	version         = 17
	lastCompVersion = 16
	rsvmapSize      = 16
)

// Prop is a property to be written.
type Prop struct {
	Name  string
	Value []byte
}

// Node is a node to be written.
type Node struct {
	Name     string
	Props    []Prop
	Children []*Node
}

// N creates a node. Items are Prop or *Node values, in declaration order.
func N(name string, items ...any) *Node {
	n := &Node{Name: name}
	for _, item := range items {
		switch v := item.(type) {
		case Prop:
			n.Props = append(n.Props, v)
		case *Node:
			n.Children = append(n.Children, v)
		default:
			panic(fmt.Sprintf("fdttest: unsupported item %T", item))
		}
	}
	return n
}

// Str creates a NUL-terminated string property.
func Str(name, value string) Prop {
	return Prop{Name: name, Value: append([]byte(value), 0)}
}

// Cells creates a property of big-endian cells.
func Cells(name string, cells ...uint32) Prop {
	v := make([]byte, 4*len(cells))
	for i, c := range cells {
		binary.BigEndian.PutUint32(v[4*i:], c)
	}
	return Prop{Name: name, Value: v}
}

// Flag creates an empty property.
func Flag(name string) Prop {
	return Prop{Name: name}
}

// Raw creates a property with an arbitrary payload.
func Raw(name string, value []byte) Prop {
	return Prop{Name: name, Value: value}
}

// Phandle creates a phandle property.
func Phandle(v uint32) Prop {
	return Cells(fdt.PhandleProperty, v)
}

// Blob serializes root into a version 17 blob.
func Blob(root *Node) []byte {
	var strs []byte
	offsets := make(map[string]uint32)
	nameOff := func(name string) uint32 {
		if off, ok := offsets[name]; ok {
			return off
		}
		off := uint32(len(strs))
		offsets[name] = off
		strs = append(strs, name...)
		strs = append(strs, 0)
		return off
	}

	var st []byte
	cell := func(v uint32) {
		st = binary.BigEndian.AppendUint32(st, v)
	}
	pad := func() {
		for len(st)%4 != 0 {
			st = append(st, 0)
		}
	}

	var write func(n *Node)
	write = func(n *Node) {
		cell(tokenBeginNode)
		st = append(st, n.Name...)
		st = append(st, 0)
		pad()
		for _, p := range n.Props {
			cell(tokenProp)
			cell(uint32(len(p.Value)))
			cell(nameOff(p.Name))
			st = append(st, p.Value...)
			pad()
		}
		for _, c := range n.Children {
			write(c)
		}
		cell(tokenEndNode)
	}
	write(root)
	cell(tokenEnd)

	offRsvmap := uint32(fdt.HeaderSize)
	offStruct := offRsvmap + rsvmapSize
	offStrings := offStruct + uint32(len(st))
	total := offStrings + uint32(len(strs))

	out := make([]byte, 0, total)
	for _, v := range []uint32{
		fdt.Magic, total, offStruct, offStrings, offRsvmap,
		version, lastCompVersion, 0, uint32(len(strs)), uint32(len(st)),
	} {
		out = binary.BigEndian.AppendUint32(out, v)
	}
	out = append(out, make([]byte, rsvmapSize)...)
	out = append(out, st...)
	out = append(out, strs...)
	return out
}

// Tree serializes root and loads it back, failing the test on error.
func Tree(tb testing.TB, root *Node) *fdt.Tree {
	tb.Helper()
	tree, err := fdt.Load(Blob(root))
	if err != nil {
		tb.Fatalf("fdttest: load: %v", err)
	}
	return tree
}
