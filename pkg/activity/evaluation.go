// Package activity propagates analog activity levels through a mapped
// netlist using each device's response function.
package activity

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/fyerfyer/dnacompiler/pkg/circuit"
	"github.com/fyerfyer/dnacompiler/pkg/logic"
	"github.com/fyerfyer/dnacompiler/pkg/state"
	"github.com/fyerfyer/dnacompiler/pkg/target"
	"github.com/pkg/errors"
)

// Activity sentinels for the high and low input levels
const (
	High = 1.0
	Low  = 0.0
)

// ActivityTable is a per-node table of activity values
type ActivityTable = state.Table[float64]

// Evaluation holds the activity table of every node in the netlist
type Evaluation struct {
	Netlist *circuit.Netlist
	Logic   *logic.Evaluation
	states  *state.States[float64]
	tables  map[*circuit.Node]*ActivityTable
}

// Evaluate computes every node's activity in every state. Nodes bound to a
// device evaluate its response function; INPUT/OUTPUT markers pass their
// summed input through.
func Evaluate(n *circuit.Netlist, le *logic.Evaluation, binder target.Binder) (*Evaluation, error) {
	e := &Evaluation{
		Netlist: n,
		Logic:   le,
		states:  state.Remap(le.States(), High, Low),
		tables:  make(map[*circuit.Node]*ActivityTable, n.NumVertex()),
	}
	for _, node := range n.Nodes {
		e.tables[node] = state.NewTable[float64](e.states, node)
	}

	bfs := circuit.NewBFS(n)
	for node := bfs.Next(); node != nil; node = bfs.Next() {
		if err := e.evaluateNode(node, binder); err != nil {
			return nil, err
		}
	}
	if err := bfs.Err(); err != nil {
		return nil, err
	}
	return e, nil
}

// States returns the activity enumeration
func (e *Evaluation) States() *state.States[float64] {
	return e.states
}

// ActivityTable returns the activity table of node, or nil
func (e *Evaluation) ActivityTable(node *circuit.Node) *ActivityTable {
	return e.tables[node]
}

// Value returns the activity of node in the given state
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

// InputActivity returns the activities of node's predecessors in in-edge order
func (e *Evaluation) InputActivity(node *circuit.Node, stateIdx int) ([]float64, error) {
	rtn := make([]float64, 0, len(node.InEdges))
	for _, src := range node.Predecessors() {
		row := e.tables[src].Output(stateIdx)
		if row.Positions() != 1 {
			return nil, errors.Wrapf(logic.ErrInconsistent, "invalid number of output(s) for node %s", src.Name)
		}
		v, ok := row.Get(src)
		if !ok {
			return nil, errors.Wrapf(logic.ErrInconsistent, "node %s has no activity", src.Name)
		}
		rtn = append(rtn, v)
	}
	return rtn, nil
}

func (e *Evaluation) evaluateNode(node *circuit.Node, binder target.Binder) error {
	var model *target.Model
	if !node.IsInputOutput() {
		device := binder.DeviceOf(node)
		if device == nil {
			return errors.Wrapf(target.ErrModel, "node %s has no device", node.Name)
		}
		model = device.GetModel()
		if model.Function(target.ResponseFunction) == nil {
			return errors.Wrapf(target.ErrModel, "device %s of node %s has no %s",
				device.DeviceName(), node.Name, target.ResponseFunction)
		}
	}

	table := e.tables[node]
	for i := 0; i < table.NumStates(); i++ {
		row := table.Output(i)
		if row.Positions() != 1 {
			return errors.Wrapf(logic.ErrInconsistent, "invalid number of output(s) for node %s", node.Name)
		}
		inputs, err := e.InputActivity(node, i)
		if err != nil {
			return err
		}
		ctx := &target.EvaluationContext{Node: node, State: i, Inputs: inputs}
		ctx.Logic, _ = e.Logic.Value(node, i)
		// Seed with the boolean level until the model overwrites it
		if ctx.Logic {
			row.Set(node, High)
		} else {
			row.Set(node, Low)
		}
		if node.IsPrimaryInput() {
			ctx.Level, _ = e.states.At(i).Value(node)
		}

		var result float64
		if model == nil {
			result = ctx.Input()
		} else {
			result, err = model.Evaluate(target.ResponseFunction, ctx)
			if err != nil {
				return errors.Wrapf(err, "node %s state %d", node.Name, i)
			}
		}
		if !row.Set(node, result) {
			return errors.Wrapf(logic.ErrInconsistent, "node %s does not exist in its activity table", node.Name)
		}
	}
	return nil
}

const header = "--------------------------------------------"

// String renders every node's activity, one node per line in vertex order
func (e *Evaluation) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(header + "\n")
	sb.WriteString("ActivityEvaluation\n")
	sb.WriteString(header + "\n")
	for _, node := range e.Netlist.Nodes {
		sb.WriteString(fmt.Sprintf("%-15s\t", node.Name))
		for i := 0; i < e.states.Len(); i++ {
			v, _ := e.Value(node, i)
			sb.WriteString(fmt.Sprintf("%.4f\t", v))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(header + "\n")
	return sb.String()
}

// WriteCSV writes one row per node: the node name then its activity in every state
func (e *Evaluation) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	for _, node := range e.Netlist.Nodes {
		record := make([]string, 0, e.states.Len()+1)
		record = append(record, node.Name)
		for i := 0; i < e.states.Len(); i++ {
			v, _ := e.Value(node, i)
			record = append(record, fmt.Sprintf("%1.5e", v))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
