package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fyerfyer/dnacompiler/pkg/circuit"
	"github.com/pkg/errors"
)

// TestParseBenchFile tests parsing a BENCH format netlist
func TestParseBenchFile(t *testing.T) {
	tempDir := t.TempDir()
	benchFile := filepath.Join(tempDir, "test_circuit.bench")

	benchContent := `# Simple test circuit
INPUT(a)
INPUT(b)
OUTPUT(f)
d = AND(a, b)
f = OR(d, e)
e = INV(b)
`
	if err := os.WriteFile(benchFile, []byte(benchContent), 0644); err != nil {
		t.Fatalf("Failed to create test BENCH file: %v", err)
	}

	n, err := ParseBenchFile(benchFile)
	if err != nil {
		t.Fatalf("Failed to parse BENCH file: %v", err)
	}

	if n.Name != "test_circuit" {
		t.Errorf("Expected netlist name 'test_circuit', got '%s'", n.Name)
	}
	if n.InputFile != benchFile {
		t.Errorf("Expected input file %s, got %s", benchFile, n.InputFile)
	}
	if n.NumVertex() != 6 {
		t.Errorf("Expected 6 nodes, got %d", n.NumVertex())
	}
	if len(n.Edges) != 6 {
		t.Errorf("Expected 6 edges, got %d", len(n.Edges))
	}
	if len(n.PrimaryInputs()) != 2 || len(n.PrimaryOutputs()) != 1 {
		t.Errorf("Expected 2 inputs and 1 output, got %d and %d", len(n.PrimaryInputs()), len(n.PrimaryOutputs()))
	}

	expected := map[string]circuit.NodeType{
		"a":     circuit.PrimaryInput,
		"b":     circuit.PrimaryInput,
		"d":     circuit.AND,
		"e":     circuit.NOT,
		"f":     circuit.OR,
		"f_out": circuit.PrimaryOutput,
	}
	for name, nodeType := range expected {
		node := n.NodeByName(name)
		if node == nil {
			t.Errorf("Expected node %s", name)
			continue
		}
		if node.Type != nodeType {
			t.Errorf("Expected %s to be %s, got %s", name, nodeType, node.Type)
		}
	}

	// Inputs keep their declared order, e is used before it is defined
	f := n.NodeByName("f")
	if preds := f.Predecessors(); preds[0].Name != "d" || preds[1].Name != "e" {
		t.Errorf("Expected f inputs [d e], got [%s %s]", preds[0].Name, preds[1].Name)
	}
	if out := n.NodeByName("f_out"); out.Predecessors()[0] != f {
		t.Errorf("Expected f_out to be driven by f")
	}
}

func TestParseBenchBuffers(t *testing.T) {
	content := `INPUT(a)
INPUT(b)
OUTPUT(y)
OUTPUT(z)
ab = BUFF(a)
x = NAND(ab, b)
y = BUF(x)
z = buf(ab)
`
	n, err := ParseBench(strings.NewReader(content), "buffers")
	if err != nil {
		t.Fatalf("Failed to parse BENCH with buffers: %v", err)
	}

	for _, name := range []string{"ab", "y", "z"} {
		if n.NodeByName(name) != nil {
			t.Errorf("Expected buffer %s to be folded away", name)
		}
	}
	if n.NumVertex() != 5 {
		t.Errorf("Expected 5 nodes, got %d", n.NumVertex())
	}

	x := n.NodeByName("x")
	if preds := x.Predecessors(); preds[0].Name != "a" || preds[1].Name != "b" {
		t.Errorf("Expected x inputs [a b], got [%s %s]", preds[0].Name, preds[1].Name)
	}
	if src := n.NodeByName("y_out").Predecessors()[0]; src != x {
		t.Errorf("Expected y_out to be driven by x, got %s", src.Name)
	}
	if src := n.NodeByName("z_out").Predecessors()[0]; src.Name != "a" {
		t.Errorf("Expected z_out to be driven by a, got %s", src.Name)
	}
}

func TestParseBenchErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		message string
	}{
		{"unknown gate", "INPUT(a)\nOUTPUT(b)\nb = DFF(a)\n", "unknown node type"},
		{"buffer loop", "INPUT(a)\nOUTPUT(c)\nb = BUF(c)\nc = BUFF(b)\n", "buffer loop"},
		{"buffer fan-in", "INPUT(a)\nINPUT(b)\nOUTPUT(c)\nc = BUF(a, b)\n", "one input"},
		{"buffered input", "INPUT(a)\nINPUT(b)\nOUTPUT(a)\na = BUF(b)\n", "driven by a buffer"},
		{"undefined net", "INPUT(a)\nOUTPUT(b)\nb = AND(a, c)\n", "source node c not found"},
		{"driven twice", "INPUT(a)\nb = NOT(a)\nb = NOT(a)\n", "driven twice"},
		{"garbage", "INPUT(a)\nthis is not bench\n", "cannot parse"},
		{"cycle", "INPUT(a)\nOUTPUT(c)\nb = AND(a, c)\nc = NOT(b)\n", "cycle"},
	}
	for _, tt := range tests {
		_, err := ParseBench(strings.NewReader(tt.content), tt.name)
		if err == nil || !strings.Contains(err.Error(), tt.message) {
			t.Errorf("%s: expected error containing %q, got %v", tt.name, tt.message, err)
		}
	}

	_, err := ParseBench(strings.NewReader("INPUT(a)\nb = XOR(a, a)\nc = FOO(b)\n"), "foo")
	if !errors.Is(err, circuit.ErrUnknownNodeType) {
		t.Errorf("Expected ErrUnknownNodeType, got %v", err)
	}
}

func TestParseBenchFileMissing(t *testing.T) {
	if _, err := ParseBenchFile(filepath.Join(t.TempDir(), "missing.bench")); err == nil {
		t.Errorf("Expected error for a missing file")
	}
}
