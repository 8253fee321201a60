// Package interactive provides the regviz-explore command shell.
package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/regviz/regviz-go/pkg/fdt"
	"github.com/regviz/regviz-go/pkg/inspect"
	"github.com/regviz/regviz-go/pkg/regulator"
)

// Shell is an interactive session on one tree. The current node starts at
// the root and changes with cd.
type Shell struct {
	inspector *inspect.Inspector
	formatter *inspect.Formatter
	cwd       string
}

// New creates a Shell positioned at the root node.
func New(inspector *inspect.Inspector) *Shell {
	return &Shell{
		inspector: inspector,
		formatter: inspect.NewFormatter(),
		cwd:       "/",
	}
}

// Cwd returns the path of the current node.
func (s *Shell) Cwd() string {
	return s.cwd
}

func (s *Shell) prompt() string {
	return "regviz:" + s.cwd + "> "
}

// Run reads commands until quit, EOF or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          s.prompt(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    s.completer(),
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	// Unblock Readline when ctx ends.
	go func() {
		<-ctx.Done()
		rl.Close()
	}()

	s.printHelp(rl.Stdout())

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := rl.Readline()
		if err != nil {
			// EOF or interrupt
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			fmt.Fprintln(rl.Stdout(), "Exiting...")
			return nil
		}

		if quit := s.Exec(line, rl.Stdout()); quit {
			return nil
		}
		rl.SetPrompt(s.prompt())
	}
}

func (s *Shell) completer() *readline.PrefixCompleter {
	path := func(name string) *readline.PrefixCompleter {
		return readline.PcItem(name, readline.PcItemDynamic(s.childNames))
	}
	return readline.NewPrefixCompleter(
		readline.PcItem("help"),
		path("ls"),
		path("cd"),
		readline.PcItem("pwd"),
		path("show"),
		path("supplies"),
		path("consumers"),
		path("owner"),
		path("source"),
		readline.PcItem("quit"),
	)
}

// childNames lists the children of the current node for completion.
func (s *Shell) childNames(string) []string {
	n, err := s.inspector.Resolve(s.cwd, ".")
	if err != nil {
		return nil
	}
	names := make([]string, len(n.Children))
	for i, c := range n.Children {
		names[i] = c.Name
	}
	return names
}

// Exec runs one command line, writing its output to w. It reports whether
// the shell should exit.
func (s *Shell) Exec(line string, w io.Writer) (quit bool) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		s.printHelp(w)
	case "ls":
		s.cmdLs(w, args)
	case "cd":
		s.cmdCd(w, args)
	case "pwd":
		fmt.Fprintln(w, s.cwd)
	case "show":
		s.cmdShow(w, args)
	case "supplies":
		s.cmdSupplies(w, args)
	case "consumers":
		s.cmdConsumers(w, args)
	case "owner":
		s.cmdOwner(w, args)
	case "source":
		s.cmdSource(w, args)
	case "quit", "exit", "q":
		fmt.Fprintln(w, "Exiting...")
		return true
	default:
		fmt.Fprintf(w, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return false
}

func (s *Shell) printHelp(w io.Writer) {
	fmt.Fprintln(w, `
regviz-explore Commands:
  Navigation:
    ls [path]          - List children with their role
    cd <path>          - Change the current node
    pwd                - Print the current node

  Inspection:
    show [path]        - Show classification and properties
    supplies [path]    - Resolve every supply property
    consumers [path]   - List supply properties pointing at a regulator
    owner [path]       - Show the device an inline regulator is grouped under
    source [path]      - Show the single regulator feeding every supply

  Paths are absolute (/soc/i2c@1000), relative (.., pmic@48), aliases
  (i2c0/pmic@48) or labels (&vdd_core).

  quit                 - Exit`)
}

// node resolves the optional path argument, defaulting to the current node.
func (s *Shell) node(w io.Writer, args []string) (*fdt.Node, bool) {
	target := "."
	if len(args) > 0 {
		target = args[0]
	}
	n, err := s.inspector.Resolve(s.cwd, target)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return nil, false
	}
	return n, true
}

func (s *Shell) cmdLs(w io.Writer, args []string) {
	n, ok := s.node(w, args)
	if !ok {
		return
	}
	if len(n.Children) == 0 {
		fmt.Fprintln(w, "  (no children)")
		return
	}
	for _, c := range n.Children {
		info := s.inspector.InspectNode(c)
		line := c.Name
		if len(c.Children) > 0 {
			line += "/"
		}
		if info.Role != regulator.RoleUnclassified {
			line = fmt.Sprintf("%-32s [%s", line, info.Role)
			if info.Label != "" {
				line += " " + info.Label
			}
			line += "]"
		}
		fmt.Fprintln(w, s.formatter.Indent(1, line))
	}
}

func (s *Shell) cmdCd(w io.Writer, args []string) {
	if len(args) == 0 {
		s.cwd = "/"
		return
	}
	if n, ok := s.node(w, args); ok {
		s.cwd = n.Path()
	}
}

func (s *Shell) cmdShow(w io.Writer, args []string) {
	if n, ok := s.node(w, args); ok {
		fmt.Fprint(w, s.formatter.FormatNode(s.inspector.InspectNode(n)))
	}
}

func (s *Shell) cmdSupplies(w io.Writer, args []string) {
	if n, ok := s.node(w, args); ok {
		fmt.Fprint(w, s.formatter.FormatSupplies(s.inspector.Supplies(n), false))
	}
}

func (s *Shell) cmdConsumers(w io.Writer, args []string) {
	n, ok := s.node(w, args)
	if !ok {
		return
	}
	consumers, err := s.inspector.Consumers(n)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	if len(consumers) == 0 {
		fmt.Fprintln(w, "  (no consumers)")
		return
	}
	fmt.Fprint(w, s.formatter.FormatSupplies(consumers, true))
}

func (s *Shell) cmdOwner(w io.Writer, args []string) {
	n, ok := s.node(w, args)
	if !ok {
		return
	}
	owner, err := s.inspector.Owner(n)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	fmt.Fprint(w, s.formatter.FormatOwner(owner))
}

func (s *Shell) cmdSource(w io.Writer, args []string) {
	n, ok := s.node(w, args)
	if !ok {
		return
	}
	if label, ok := s.inspector.Source(n); ok {
		fmt.Fprintln(w, s.formatter.Indent(1, label))
		return
	}
	fmt.Fprintln(w, "  (no single source)")
}
