package logic

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fyerfyer/dnacompiler/pkg/circuit"
	"github.com/pkg/errors"
)

// gateNetlist builds inputs a, b, c feeding a single gate y -> out
func gateNetlist(t *testing.T, gateType circuit.NodeType, numInputs int) *circuit.Netlist {
	t.Helper()
	n := circuit.NewNetlist("gate")
	names := []string{"a", "b", "c"}
	for _, name := range names[:numInputs] {
		n.AddNode(name, circuit.PrimaryInput)
	}
	n.AddNode("y", gateType)
	n.AddNode("out", circuit.PrimaryOutput)
	for _, name := range names[:numInputs] {
		if _, err := n.Connect(name+"_y", name, "y"); err != nil {
			t.Fatalf("Failed to connect: %v", err)
		}
	}
	if _, err := n.Connect("y_out", "y", "out"); err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	return n
}

func truthValues(t *testing.T, e *Evaluation, name string) []bool {
	t.Helper()
	node := e.Netlist.NodeByName(name)
	return e.TruthTable(node).Values(node)
}

func TestTwoInputGates(t *testing.T) {
	// States are ordered 00, 01, 10, 11 over (a, b)
	tests := []struct {
		gateType circuit.NodeType
		want     []bool
	}{
		{circuit.AND, []bool{false, false, false, true}},
		{circuit.NAND, []bool{true, true, true, false}},
		{circuit.OR, []bool{false, true, true, true}},
		{circuit.NOR, []bool{true, false, false, false}},
		{circuit.XOR, []bool{false, true, true, false}},
		{circuit.XNOR, []bool{true, false, false, true}},
	}

	for _, tt := range tests {
		t.Run(tt.gateType.String(), func(t *testing.T) {
			e, err := Evaluate(gateNetlist(t, tt.gateType, 2))
			if err != nil {
				t.Fatalf("Failed to evaluate: %v", err)
			}
			got := truthValues(t, e, "out")
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("State %d: expected %v, got %v", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestPrimaryInputValues(t *testing.T) {
	e, err := Evaluate(gateNetlist(t, circuit.AND, 2))
	if err != nil {
		t.Fatalf("Failed to evaluate: %v", err)
	}
	a := truthValues(t, e, "a")
	b := truthValues(t, e, "b")
	wantA := []bool{false, false, true, true}
	wantB := []bool{false, true, false, true}
	for i := range wantA {
		if a[i] != wantA[i] || b[i] != wantB[i] {
			t.Errorf("State %d: expected a=%v b=%v, got a=%v b=%v", i, wantA[i], wantB[i], a[i], b[i])
		}
	}
}

func TestThreeInputReduction(t *testing.T) {
	tests := []struct {
		gateType circuit.NodeType
		fold     func(x, y bool) bool
		negate   bool
	}{
		{circuit.AND, func(x, y bool) bool { return x && y }, false},
		{circuit.NAND, func(x, y bool) bool { return x && y }, true},
		{circuit.OR, func(x, y bool) bool { return x || y }, false},
		{circuit.NOR, func(x, y bool) bool { return x || y }, true},
		{circuit.XOR, func(x, y bool) bool { return x != y }, false},
		{circuit.XNOR, func(x, y bool) bool { return x != y }, true},
	}

	for _, tt := range tests {
		t.Run(tt.gateType.String(), func(t *testing.T) {
			e, err := Evaluate(gateNetlist(t, tt.gateType, 3))
			if err != nil {
				t.Fatalf("Failed to evaluate: %v", err)
			}
			a, b, c := truthValues(t, e, "a"), truthValues(t, e, "b"), truthValues(t, e, "c")
			got := truthValues(t, e, "y")
			if len(got) != 8 {
				t.Fatalf("Expected 8 states, got %d", len(got))
			}
			for i := range got {
				want := tt.fold(tt.fold(a[i], b[i]), c[i])
				if tt.negate {
					want = !want
				}
				if got[i] != want {
					t.Errorf("State %d: expected %v, got %v", i, want, got[i])
				}
			}
		})
	}
}

func TestNotAndPrimaryOutputOR(t *testing.T) {
	n := circuit.NewNetlist("mixed")
	n.AddNode("a", circuit.PrimaryInput)
	n.AddNode("b", circuit.PrimaryInput)
	n.AddNode("na", circuit.NOT)
	n.AddNode("out", circuit.PrimaryOutput)
	n.Connect("e0", "a", "na")
	n.Connect("e1", "na", "out")
	n.Connect("e2", "b", "out")

	e, err := Evaluate(n)
	if err != nil {
		t.Fatalf("Failed to evaluate: %v", err)
	}
	got := truthValues(t, e, "out")
	want := []bool{true, true, false, true}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("State %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestInvalidArity(t *testing.T) {
	tests := []struct {
		gateType  circuit.NodeType
		numInputs int
	}{
		{circuit.AND, 1},
		{circuit.XOR, 1},
		{circuit.NOT, 2},
	}
	for _, tt := range tests {
		_, err := Evaluate(gateNetlist(t, tt.gateType, tt.numInputs))
		if err == nil {
			t.Errorf("%s with %d inputs: expected error", tt.gateType, tt.numInputs)
			continue
		}
		if !strings.Contains(err.Error(), "invalid number of inputs for node y") {
			t.Errorf("Unexpected error: %v", err)
		}
	}
}

func TestPrimaryInputWithPredecessor(t *testing.T) {
	n := circuit.NewNetlist("bad")
	n.AddNode("a", circuit.PrimaryInput)
	n.AddNode("b", circuit.PrimaryInput)
	n.Connect("e0", "a", "b")
	if _, err := Evaluate(n); err == nil {
		t.Errorf("Expected error for primary input with a predecessor")
	}
}

func TestCycleRejected(t *testing.T) {
	n := circuit.NewNetlist("cycle")
	n.AddNode("a", circuit.PrimaryInput)
	n.AddNode("x", circuit.OR)
	n.AddNode("y", circuit.NOT)
	n.Connect("e0", "a", "x")
	n.Connect("e1", "y", "x")
	n.Connect("e2", "x", "y")
	_, err := Evaluate(n)
	if !errors.Is(err, circuit.ErrInvalidNetlist) {
		t.Errorf("Expected ErrInvalidNetlist, got %v", err)
	}
}

func TestDeterministic(t *testing.T) {
	n := gateNetlist(t, circuit.XOR, 3)
	first, err := Evaluate(n)
	if err != nil {
		t.Fatalf("Failed to evaluate: %v", err)
	}
	second, _ := Evaluate(n)
	if first.String() != second.String() {
		t.Errorf("Expected identical evaluations")
	}
}

func TestOutputFormats(t *testing.T) {
	e, err := Evaluate(gateNetlist(t, circuit.AND, 2))
	if err != nil {
		t.Fatalf("Failed to evaluate: %v", err)
	}

	s := e.String()
	if !strings.Contains(s, "LogicEvaluation") || !strings.Contains(s, header) {
		t.Errorf("Expected banner in textual dump:\n%s", s)
	}
	if !strings.Contains(s, "out            \tfalse\tfalse\tfalse\ttrue\t") {
		t.Errorf("Unexpected row for out:\n%s", s)
	}

	var buf bytes.Buffer
	if err := e.WriteCSV(&buf); err != nil {
		t.Fatalf("Failed to write CSV: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("Expected 4 CSV rows, got %d", len(lines))
	}
	if lines[3] != "out,false,false,false,true" {
		t.Errorf("Unexpected CSV row %q", lines[3])
	}
}
