package utils

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fyerfyer/dnacompiler/pkg/circuit"
	"github.com/pkg/errors"
)

// CSVWriter is an evaluation that can dump itself as CSV
type CSVWriter interface {
	WriteCSV(w io.Writer) error
}

// Table is one CSV dump written as <name>_<Suffix>.csv
type Table struct {
	Suffix string
	Data   CSVWriter
}

// WriteResults writes every table and the mapped output netlist into dir.
// Everything is rendered before the first file is created, so a rendering
// error leaves dir untouched.
func WriteResults(dir string, n *circuit.Netlist, b Bindings, tables ...Table) ([]string, error) {
	files := make(map[string]*bytes.Buffer, len(tables)+1)
	order := make([]string, 0, len(tables)+1)

	for _, t := range tables {
		if t.Data == nil {
			continue
		}
		var buf bytes.Buffer
		if err := t.Data.WriteCSV(&buf); err != nil {
			return nil, errors.Wrapf(err, "rendering %s", t.Suffix)
		}
		name := fmt.Sprintf("%s_%s.csv", n.Name, t.Suffix)
		files[name] = &buf
		order = append(order, name)
	}

	var buf bytes.Buffer
	if err := EncodeNetlist(&buf, n, b); err != nil {
		return nil, errors.Wrap(err, "rendering output netlist")
	}
	name := n.Name + "_outputNetlist.json"
	files[name] = &buf
	order = append(order, name)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating %s", dir)
	}
	written := make([]string, 0, len(order))
	for _, name := range order {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, files[name].Bytes(), 0o644); err != nil {
			return written, errors.Wrapf(err, "writing %s", path)
		}
		written = append(written, path)
	}
	return written, nil
}

// WriteDOT writes the netlist as a Graphviz digraph, one rank per level.
// Nodes are labelled with their bound device when b is non-nil.
func WriteDOT(w io.Writer, n *circuit.Netlist, b Bindings) error {
	topo := circuit.NewTopology(n)
	if err := topo.ComputeLevels(); err != nil {
		return err
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("digraph %q {\n", n.Name))
	sb.WriteString("  rankdir=LR;\n")
	for _, node := range n.Nodes {
		label := node.Name + "\n" + node.Type.String()
		if b != nil {
			if d := b.DeviceName(node); d != "" {
				label += "\n" + d
			}
		}
		sb.WriteString(fmt.Sprintf("  %q [shape=%s, label=%q];\n", node.Name, dotShape(node), label))
	}
	for level := 0; level <= topo.MaxLevel; level++ {
		nodes := topo.NodesAtLevel(level)
		names := make([]string, len(nodes))
		for i, node := range nodes {
			names[i] = fmt.Sprintf("%q", node.Name)
		}
		sb.WriteString(fmt.Sprintf("  { rank=same; %s; }\n", strings.Join(names, "; ")))
	}
	for _, e := range n.Edges {
		attrs := ""
		if b != nil {
			if in := b.EdgeInput(e); in != "" {
				attrs = fmt.Sprintf(" [label=%q]", in)
			}
		}
		sb.WriteString(fmt.Sprintf("  %q -> %q%s;\n", e.Src.Name, e.Dst.Name, attrs))
	}
	sb.WriteString("}\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

func dotShape(node *circuit.Node) string {
	switch {
	case node.IsPrimaryInput():
		return "invtriangle"
	case node.IsPrimaryOutput():
		return "triangle"
	case node.IsInputOutput():
		return "point"
	default:
		return "box"
	}
}
