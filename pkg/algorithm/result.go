package algorithm

import (
	"fmt"
	"strings"

	"github.com/fyerfyer/dnacompiler/pkg/activity"
	"github.com/fyerfyer/dnacompiler/pkg/circuit"
	"github.com/fyerfyer/dnacompiler/pkg/logic"
	"github.com/fyerfyer/dnacompiler/pkg/target"
	"github.com/fyerfyer/dnacompiler/pkg/toxicity"
	"github.com/pkg/errors"
)

// Phase is the stage the mapper has reached
type Phase int

const (
	Init Phase = iota
	InputAssigned
	OutputAssigned
	LogicAssigned
	Annealing
	Done
)

// String returns a string representation of the phase
func (p Phase) String() string {
	switch p {
	case Init:
		return "INIT"
	case InputAssigned:
		return "INPUT_ASSIGNED"
	case OutputAssigned:
		return "OUTPUT_ASSIGNED"
	case LogicAssigned:
		return "LOGIC_ASSIGNED"
	case Annealing:
		return "ANNEALING"
	case Done:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}

// NodeBinding is the device chosen for one node
type NodeBinding struct {
	Node   *circuit.Node
	Device *target.Device
}

// EdgeBinding is the structural input slot an edge drives
type EdgeBinding struct {
	Edge  *circuit.Edge
	Input *target.Input
}

// Result is the final mapping of a netlist onto the library
type Result struct {
	Netlist    *circuit.Netlist
	Assignment *Assignment
	Nodes      []NodeBinding // Bound nodes in vertex order
	Edges      []EdgeBinding // Bound edges in edge order
	Score      float64
	Logic      *logic.Evaluation
	Activity   *activity.Evaluation
	Toxicity   *toxicity.Evaluation
	Stats      Stats
}

// NewResult resolves the final device of every node and the input slot of
// every edge. A device must expose at least one input slot per in-edge.
func NewResult(n *circuit.Netlist, a *Assignment) (*Result, error) {
	r := &Result{
		Netlist:    n,
		Assignment: a,
		Nodes:      make([]NodeBinding, 0, n.NumVertex()),
		Edges:      make([]EdgeBinding, 0, len(n.Edges)),
	}

	for _, node := range n.Nodes {
		device := a.Get(node)
		if device == nil {
			continue
		}
		r.Nodes = append(r.Nodes, NodeBinding{Node: node, Device: device})

		var inputs []*target.Input
		if device.Structure != nil {
			inputs = device.Structure.Inputs
		}
		if len(node.InEdges) > len(inputs) {
			return nil, errors.Errorf("device structure does not have enough inputs: node %s has %d in-edges, device %s has %d inputs",
				node.Name, len(node.InEdges), device.Name, len(inputs))
		}
		for j, e := range node.InEdges {
			r.Edges = append(r.Edges, EdgeBinding{Edge: e, Input: inputs[j]})
		}
	}
	return r, nil
}

// DeviceName returns the name of the device bound to node, or ""
func (r *Result) DeviceName(node *circuit.Node) string {
	if d := r.Assignment.Get(node); d != nil {
		return d.Name
	}
	return ""
}

// EdgeInput returns the name of the input slot driven by edge, or ""
func (r *Result) EdgeInput(edge *circuit.Edge) string {
	for _, b := range r.Edges {
		if b.Edge == edge {
			return b.Input.Name
		}
	}
	return ""
}

// Rows returns node, type and device for every bound node
func (r *Result) Rows() [][]string {
	rtn := make([][]string, 0, len(r.Nodes))
	for _, b := range r.Nodes {
		rtn = append(rtn, []string{b.Node.Name, b.Node.Type.String(), b.Device.Name})
	}
	return rtn
}

// String returns the per node summary followed by the score
func (r *Result) String() string {
	var sb strings.Builder
	for _, b := range r.Nodes {
		sb.WriteString(fmt.Sprintf("Node: %-5s\tType: %-10s\tGate: %-10s\n", b.Node.Name, b.Node.Type, b.Device.Name))
	}
	sb.WriteString(fmt.Sprintf("Score: %.2f\n", r.Score))
	return sb.String()
}
