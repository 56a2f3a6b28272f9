package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/fyerfyer/dnacompiler/pkg/circuit"
	"github.com/pkg/errors"
)

// Regular expressions for parsing BENCH format
var (
	inputRegex  = regexp.MustCompile(`^INPUT\((\w+)\)$`)
	outputRegex = regexp.MustCompile(`^OUTPUT\((\w+)\)$`)
	gateRegex   = regexp.MustCompile(`^(\w+)\s*=\s*(\w+)\((.+)\)$`)
)

// OutputSuffix is appended to a net name to name the PRIMARY_OUTPUT node it drives
const OutputSuffix = "_out"

type benchGate struct {
	name     string
	gateType circuit.NodeType
	inputs   []string
	line     int
}

// ParseBenchFile reads a netlist in BENCH format
func ParseBenchFile(filename string) (*circuit.Netlist, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open file")
	}
	defer file.Close()

	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	n, err := ParseBench(file, name)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", filename)
	}
	n.InputFile = filename
	return n, nil
}

// ParseBench reads a BENCH netlist. Every OUTPUT(f) becomes a separate
// PRIMARY_OUTPUT node named f+OutputSuffix, fed by the net f. BUF and BUFF
// gates are folded away: consumers of a buffered net read its input directly.
func ParseBench(r io.Reader, name string) (*circuit.Netlist, error) {
	var inputs, outputs []string
	var gates []benchGate
	buffers := make(map[string]string) // buffered net -> driving net

	// First pass: collect declarations, nets may be used before they are defined
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		// Skip comments and empty lines
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if matches := inputRegex.FindStringSubmatch(line); matches != nil {
			inputs = append(inputs, matches[1])
			continue
		}
		if matches := outputRegex.FindStringSubmatch(line); matches != nil {
			outputs = append(outputs, matches[1])
			continue
		}
		if matches := gateRegex.FindStringSubmatch(line); matches != nil {
			if isBuffer(matches[2]) {
				src := strings.TrimSpace(matches[3])
				if strings.Contains(src, ",") {
					return nil, errors.Errorf("line %d: buffer %s takes one input", lineNo, matches[1])
				}
				if _, ok := buffers[matches[1]]; ok {
					return nil, errors.Errorf("line %d: net %s is driven twice", lineNo, matches[1])
				}
				buffers[matches[1]] = src
				continue
			}
			gateType, err := circuit.ParseNodeType(matches[2])
			if err != nil || !isBenchGate(gateType) {
				return nil, errors.Wrapf(circuit.ErrUnknownNodeType, "line %d: gate type %s", lineNo, matches[2])
			}
			g := benchGate{name: matches[1], gateType: gateType, line: lineNo}
			for _, in := range strings.Split(matches[3], ",") {
				g.inputs = append(g.inputs, strings.TrimSpace(in))
			}
			gates = append(gates, g)
			continue
		}
		return nil, errors.Errorf("line %d: cannot parse %q", lineNo, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "error reading netlist")
	}

	// Buffers carry no logic, their fan-out is driven by the buffered net
	resolve := func(net string) (string, error) {
		for i := 0; i <= len(buffers); i++ {
			src, ok := buffers[net]
			if !ok {
				return net, nil
			}
			net = src
		}
		return "", errors.Errorf("buffer loop through net %s", net)
	}

	// Second pass: create nodes, then connect them
	n := circuit.NewNetlist(name)
	for _, in := range inputs {
		if _, ok := buffers[in]; ok {
			return nil, errors.Errorf("input %s is driven by a buffer", in)
		}
		if n.NodeByName(in) != nil {
			return nil, errors.Errorf("input %s declared twice", in)
		}
		n.AddNode(in, circuit.PrimaryInput)
	}
	for _, g := range gates {
		if _, ok := buffers[g.name]; ok || n.NodeByName(g.name) != nil {
			return nil, errors.Errorf("line %d: net %s is driven twice", g.line, g.name)
		}
		n.AddNode(g.name, g.gateType)
	}
	edge := 0
	connect := func(src, dst string) error {
		if _, err := n.Connect(edgeName(edge), src, dst); err != nil {
			return err
		}
		edge++
		return nil
	}
	for _, g := range gates {
		for _, in := range g.inputs {
			in, err := resolve(in)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d", g.line)
			}
			if err := connect(in, g.name); err != nil {
				return nil, errors.Wrapf(err, "line %d", g.line)
			}
		}
	}
	for _, out := range outputs {
		po := out + OutputSuffix
		if n.NodeByName(po) != nil {
			return nil, errors.Errorf("output %s declared twice", out)
		}
		n.AddNode(po, circuit.PrimaryOutput)
		src, err := resolve(out)
		if err != nil {
			return nil, errors.Wrapf(err, "output %s", out)
		}
		if err := connect(src, po); err != nil {
			return nil, errors.Wrapf(err, "output %s", out)
		}
	}

	if err := n.Validate(); err != nil {
		return nil, err
	}
	return n, nil
}

// isBuffer reports whether a BENCH gate name is a buffer
func isBuffer(name string) bool {
	return strings.EqualFold(name, "BUF") || strings.EqualFold(name, "BUFF")
}

// isBenchGate rejects the structural types, which have no BENCH spelling
func isBenchGate(t circuit.NodeType) bool {
	return t >= circuit.NOT
}

func edgeName(i int) string {
	return fmt.Sprintf("e%d", i)
}
