// Package toxicity estimates host-cell growth under a mapped circuit from the
// toxicity model of every gate.
package toxicity

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/fyerfyer/dnacompiler/pkg/activity"
	"github.com/fyerfyer/dnacompiler/pkg/circuit"
	"github.com/fyerfyer/dnacompiler/pkg/state"
	"github.com/fyerfyer/dnacompiler/pkg/target"
	"github.com/pkg/errors"
)

// Growth bounds. A single node's value is clamped to [MinGrowth, MaxGrowth]
// and so is the product across nodes.
const (
	MaxGrowth = 1.00
	MinGrowth = 0.01
)

// ToxicityTable is a per-node table of relative growth values
type ToxicityTable = state.Table[float64]

// Evaluation holds the toxicity table of every gate node
type Evaluation struct {
	Netlist  *circuit.Netlist
	Activity *activity.Evaluation
	nodes    []*circuit.Node // Evaluated nodes in vertex order
	tables   map[*circuit.Node]*ToxicityTable
}

// Evaluate computes the toxicity of every node other than primary inputs,
// primary outputs and structural markers, in every state
func Evaluate(n *circuit.Netlist, ae *activity.Evaluation, binder target.Binder) (*Evaluation, error) {
	e := &Evaluation{
		Netlist:  n,
		Activity: ae,
		nodes:    make([]*circuit.Node, 0),
		tables:   make(map[*circuit.Node]*ToxicityTable),
	}
	for _, node := range n.Nodes {
		if skip(node) {
			continue
		}
		e.nodes = append(e.nodes, node)
		e.tables[node] = state.NewTable[float64](ae.States(), node)
	}

	dfs := circuit.NewSinkDFS(n)
	for node := dfs.Next(); node != nil; node = dfs.Next() {
		if skip(node) {
			continue
		}
		if err := e.evaluateNode(node, binder); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func skip(node *circuit.Node) bool {
	return node.IsPrimary() || node.IsInputOutput()
}

func (e *Evaluation) evaluateNode(node *circuit.Node, binder target.Binder) error {
	device := binder.DeviceOf(node)
	if device == nil {
		return errors.Wrapf(target.ErrModel, "node %s has no device", node.Name)
	}
	model := device.GetModel()
	if model.Function(target.ToxicityFunction) == nil {
		return errors.Wrapf(target.ErrModel, "device %s of node %s has no %s",
			device.DeviceName(), node.Name, target.ToxicityFunction)
	}

	table := e.tables[node]
	for i := 0; i < table.NumStates(); i++ {
		inputs, err := e.Activity.InputActivity(node, i)
		if err != nil {
			return err
		}
		ctx := &target.EvaluationContext{Node: node, State: i, Inputs: inputs}
		ctx.Activity, _ = e.Activity.Value(node, i)
		ctx.Logic, _ = e.Activity.Logic.Value(node, i)

		result, err := model.Evaluate(target.ToxicityFunction, ctx)
		if err != nil {
			return errors.Wrapf(err, "node %s state %d", node.Name, i)
		}
		table.Output(i).Set(node, clamp(result))
	}
	return nil
}

func clamp(v float64) float64 {
	return math.Max(MinGrowth, math.Min(MaxGrowth, v))
}

// ToxicityTable returns the toxicity table of node, or nil for skipped nodes
func (e *Evaluation) ToxicityTable(node *circuit.Node) *ToxicityTable {
	return e.tables[node]
}

// Nodes returns the evaluated nodes in vertex order
func (e *Evaluation) Nodes() []*circuit.Node {
	return e.nodes
}

// Value returns the toxicity of node in the given state
func (e *Evaluation) Value(node *circuit.Node, stateIdx int) (float64, bool) {
	table := e.tables[node]
	if table == nil {
		return 0, false
	}
	row := table.Output(stateIdx)
	if row == nil {
		return 0, false
	}
	return row.Get(node)
}

// Growth returns the product of every node's toxicity in the state, floored
// at MinGrowth
func (e *Evaluation) Growth(stateIdx int) float64 {
	rtn := MaxGrowth
	for _, node := range e.nodes {
		v, _ := e.Value(node, stateIdx)
		rtn *= v
	}
	if rtn < MinGrowth {
		rtn = MinGrowth
	}
	return rtn
}

// MinimumGrowth returns the lowest growth over all states
func (e *Evaluation) MinimumGrowth() float64 {
	rtn := MaxGrowth
	for i := 0; i < e.Activity.States().Len(); i++ {
		rtn = math.Min(rtn, e.Growth(i))
	}
	return rtn
}

const header = "--------------------------------------------"

// String renders every node's toxicity followed by the growth of each state
func (e *Evaluation) String() string {
	numStates := e.Activity.States().Len()
	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(header + "\n")
	sb.WriteString("ToxicityEvaluation\n")
	sb.WriteString(header + "\n")
	for _, node := range e.nodes {
		sb.WriteString(fmt.Sprintf("%-15s\t", node.Name))
		for i := 0; i < numStates; i++ {
			v, _ := e.Value(node, i)
			sb.WriteString(fmt.Sprintf("%.2f\t", v))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(header + "\n")
	sb.WriteString(fmt.Sprintf("%-15s\t", ""))
	for i := 0; i < numStates; i++ {
		sb.WriteString(fmt.Sprintf("%.2f\t", e.Growth(i)))
	}
	sb.WriteString("\n")
	sb.WriteString(header + "\n")
	return sb.String()
}

// WriteCSV writes one row per evaluated node
func (e *Evaluation) WriteCSV(w io.Writer) error {
	numStates := e.Activity.States().Len()
	cw := csv.NewWriter(w)
	for _, node := range e.nodes {
		record := make([]string, 0, numStates+1)
		record = append(record, node.Name)
		for i := 0; i < numStates; i++ {
			v, _ := e.Value(node, i)
			record = append(record, fmt.Sprintf("%.2f", v))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
