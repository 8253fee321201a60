package inspect

import (
	"fmt"
	"strings"

	"github.com/regviz/regviz-go/pkg/fdt"
)

// Formatter formats inspection output.
type Formatter struct {
	// ShowValues includes property payloads in node reports.
	ShowValues bool

	// IndentWidth is the number of spaces per indent level.
	IndentWidth int
}

// NewFormatter creates a Formatter with default settings.
func NewFormatter() *Formatter {
	return &Formatter{
		ShowValues:  true,
		IndentWidth: 2,
	}
}

// Indent returns content indented by depth levels.
func (f *Formatter) Indent(depth int, content string) string {
	width := f.IndentWidth
	if width == 0 {
		width = 2
	}
	return strings.Repeat(" ", depth*width) + content
}

// FormatValue renders a payload the way dtc would: a string list, a cell
// list or a byte string.
func FormatValue(v []byte) string {
	if len(v) == 0 {
		return "<empty>"
	}
	if strs, ok := stringList(v); ok {
		quoted := make([]string, len(strs))
		for i, s := range strs {
			quoted[i] = fmt.Sprintf("%q", s)
		}
		return strings.Join(quoted, ", ")
	}
	if len(v)%fdt.CellSize == 0 {
		r := fdt.NewCellReader(v)
		var cells []string
		for r.Remaining() > 0 {
			c, _ := r.Next()
			cells = append(cells, fmt.Sprintf("%#x", c))
		}
		return "<" + strings.Join(cells, " ") + ">"
	}
	parts := make([]string, len(v))
	for i, b := range v {
		parts[i] = fmt.Sprintf("%02x", b)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// stringList splits a payload of NUL-terminated printable strings.
func stringList(v []byte) ([]string, bool) {
	if v[len(v)-1] != 0 {
		return nil, false
	}
	strs := strings.Split(string(v[:len(v)-1]), "\x00")
	for _, s := range strs {
		if s == "" {
			return nil, false
		}
		for i := 0; i < len(s); i++ {
			if s[i] < 32 || s[i] > 126 {
				return nil, false
			}
		}
	}
	return strs, true
}

// FormatNode renders a node report.
func (f *Formatter) FormatNode(info *NodeInfo) string {
	var sb strings.Builder
	sb.WriteString(info.Path + "\n")

	role := info.Role.String()
	if info.Rule != "" {
		role += " (" + info.Rule + ")"
	}
	sb.WriteString(f.Indent(1, "role: "+role+"\n"))
	if info.Label != "" {
		sb.WriteString(f.Indent(1, "label: "+info.Label+"\n"))
	}
	if info.HasPhandle {
		sb.WriteString(f.Indent(1, fmt.Sprintf("phandle: %#x\n", info.Phandle)))
	}
	if info.Compatible != "" {
		sb.WriteString(f.Indent(1, "compatible: "+info.Compatible+"\n"))
	}

	if len(info.Properties) > 0 {
		sb.WriteString(f.Indent(1, "properties:\n"))
		for _, p := range info.Properties {
			if f.ShowValues {
				sb.WriteString(f.Indent(2, p.Name+" = "+FormatValue(p.Value)+"\n"))
			} else {
				sb.WriteString(f.Indent(2, p.Name+"\n"))
			}
		}
	}
	if len(info.Children) > 0 {
		sb.WriteString(f.Indent(1, "children:\n"))
		for _, c := range info.Children {
			sb.WriteString(f.Indent(2, c+"\n"))
		}
	}
	return sb.String()
}

// FormatSupplies renders a supply list, one line per property.
// withConsumer prefixes each line with the consumer path.
func (f *Formatter) FormatSupplies(supplies []SupplyInfo, withConsumer bool) string {
	if len(supplies) == 0 {
		return f.Indent(1, "(no supplies)\n")
	}
	var sb strings.Builder
	for _, s := range supplies {
		line := s.Property
		if withConsumer {
			line = s.Consumer + " " + line
		}
		if s.Err != nil {
			line += " -> (unresolved: " + s.Err.Error() + ")"
		} else {
			line += " -> " + s.Label + " (" + s.Target + ")"
		}
		sb.WriteString(f.Indent(1, line+"\n"))
	}
	return sb.String()
}

// FormatOwner renders an owner report.
func (f *Formatter) FormatOwner(info *OwnerInfo) string {
	if info.Fallback {
		return f.Indent(1, fmt.Sprintf("%s (fallback to parent)\n", info.Path))
	}
	return f.Indent(1, fmt.Sprintf("%s (%s %s, level %d)\n", info.Path, info.Rule, info.RuleName, info.Level))
}
