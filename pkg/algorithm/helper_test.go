package algorithm

import (
	"io"
	"testing"

	"github.com/fyerfyer/dnacompiler/pkg/circuit"
	"github.com/fyerfyer/dnacompiler/pkg/target"
	"github.com/fyerfyer/dnacompiler/pkg/utils"
)

type gateDef struct {
	name     string
	response string
	toxicity string
}

func structure(name string, numInputs int) *target.Structure {
	s := target.NewStructure(name + "_structure")
	names := []string{"in1", "in2", "in3"}
	for _, in := range names[:numInputs] {
		s.Inputs = append(s.Inputs, &target.Input{Name: in, PartType: "promoter"})
	}
	s.Outputs = append(s.Outputs, "p"+name)
	return s
}

func model(t *testing.T, name, response, toxicity string) *target.Model {
	t.Helper()
	m := target.NewModel(name+"_model", nil)
	if err := m.AddEquation(target.ResponseFunction, response); err != nil {
		t.Fatalf("Failed to compile %s: %v", response, err)
	}
	if toxicity != "" {
		if err := m.AddEquation(target.ToxicityFunction, toxicity); err != nil {
			t.Fatalf("Failed to compile %s: %v", toxicity, err)
		}
	}
	return m
}

// testLibrary creates three sensors, two reporters and the given gates
func testLibrary(t *testing.T, gates ...gateDef) *target.Library {
	t.Helper()
	lib := target.NewLibrary()
	for _, name := range []string{"LacI_sensor", "TetR_sensor", "AraC_sensor"} {
		d := target.NewInputSensor(name, structure(name, 0), model(t, name, "state * 2.5 + 0.002", ""))
		if err := lib.Add(d); err != nil {
			t.Fatalf("Failed to add %s: %v", name, err)
		}
	}
	for _, name := range []string{"YFP_reporter", "RFP_reporter"} {
		d := target.NewOutputDevice(name, structure(name, 2), model(t, name, "input", ""))
		if err := lib.Add(d); err != nil {
			t.Fatalf("Failed to add %s: %v", name, err)
		}
	}
	for _, g := range gates {
		d := target.NewGate(g.name, g.name, structure(g.name, 2), model(t, g.name, g.response, g.toxicity))
		if err := lib.Add(d); err != nil {
			t.Fatalf("Failed to add %s: %v", g.name, err)
		}
	}
	return lib
}

// andNetlist builds out = NOT(NAND(a, b))
func andNetlist() *circuit.Netlist {
	n := circuit.NewNetlist("and")
	a := n.AddNode("a", circuit.PrimaryInput)
	b := n.AddNode("b", circuit.PrimaryInput)
	g1 := n.AddNode("g1", circuit.NAND)
	g2 := n.AddNode("g2", circuit.NOT)
	out := n.AddNode("out", circuit.PrimaryOutput)
	n.AddEdge("e0", a, g1)
	n.AddEdge("e1", b, g1)
	n.AddEdge("e2", g1, g2)
	n.AddEdge("e3", g2, out)
	return n
}

// notNetlist builds out = NOT(a)
func notNetlist() *circuit.Netlist {
	n := circuit.NewNetlist("not")
	a := n.AddNode("a", circuit.PrimaryInput)
	g := n.AddNode("g", circuit.NOT)
	out := n.AddNode("out", circuit.PrimaryOutput)
	n.AddEdge("e0", a, g)
	n.AddEdge("e1", g, out)
	return n
}

func quietLogger() *utils.Logger {
	l := utils.NewLogger(utils.ErrorLevel)
	l.SetOutput(io.Discard)
	return l
}
