// Package logic computes the boolean truth table of every netlist node over
// all primary input combinations.
package logic

import (
	"github.com/fyerfyer/dnacompiler/pkg/circuit"
	"github.com/fyerfyer/dnacompiler/pkg/state"
	"github.com/pkg/errors"
)

// ErrInconsistent is returned when a table does not have the shape the
// evaluation needs
var ErrInconsistent = errors.New("inconsistent evaluation")

// TruthTable is a per-node table of boolean values
type TruthTable = state.Table[bool]

// Evaluation holds the truth table of every node in the netlist
type Evaluation struct {
	Netlist *circuit.Netlist
	states  *state.States[bool]
	tables  map[*circuit.Node]*TruthTable
}

// Evaluate builds the states over the primary inputs and fills a truth table
// for every node, visiting nodes only after all their predecessors
func Evaluate(n *circuit.Netlist) (*Evaluation, error) {
	if err := n.Validate(); err != nil {
		return nil, err
	}

	states, err := state.NewStates(n.PrimaryInputs(), true, false)
	if err != nil {
		return nil, err
	}

	e := &Evaluation{
		Netlist: n,
		states:  states,
		tables:  make(map[*circuit.Node]*TruthTable, n.NumVertex()),
	}
	for _, node := range n.Nodes {
		e.tables[node] = state.NewTable[bool](states, node)
	}

	bfs := circuit.NewBFS(n)
	for node := bfs.Next(); node != nil; node = bfs.Next() {
		if err := e.evaluateNode(node); err != nil {
			return nil, err
		}
	}
	if err := bfs.Err(); err != nil {
		return nil, err
	}
	return e, nil
}

// States returns the input enumeration
func (e *Evaluation) States() *state.States[bool] {
	return e.states
}

// TruthTable returns the truth table of node, or nil
func (e *Evaluation) TruthTable(node *circuit.Node) *TruthTable {
	return e.tables[node]
}

// Value returns the truth value of node in the given state
func (e *Evaluation) Value(node *circuit.Node, stateIdx int) (bool, bool) {
	table := e.tables[node]
	if table == nil {
		return false, false
	}
	row := table.Output(stateIdx)
	if row == nil {
		return false, false
	}
	return row.Get(node)
}

func (e *Evaluation) evaluateNode(node *circuit.Node) error {
	if node.IsInputOutput() {
		return nil
	}
	if !node.Type.Valid() {
		return errors.Wrapf(circuit.ErrUnknownNodeType, "node %s", node.Name)
	}

	table := e.tables[node]
	for i := 0; i < table.NumStates(); i++ {
		row := table.Output(i)
		if row.Positions() != 1 {
			return errors.Wrapf(ErrInconsistent, "invalid number of output(s) for node %s", node.Name)
		}

		inputs, err := e.inputLogic(node, i)
		if err != nil {
			return err
		}

		var result bool
		var ok bool
		switch node.Type {
		case circuit.PrimaryInput:
			if len(inputs) == 0 {
				result, ok = e.states.At(i).Value(node)
			}
		case circuit.PrimaryOutput:
			result, ok = evaluatePrimaryOutput(inputs)
		case circuit.NOT:
			result, ok = evaluateNOT(inputs)
		case circuit.AND:
			result, ok = evaluateAND(inputs)
		case circuit.NAND:
			result, ok = evaluateAND(inputs)
			result = !result
		case circuit.OR:
			result, ok = evaluateOR(inputs)
		case circuit.NOR:
			result, ok = evaluateOR(inputs)
			result = !result
		case circuit.XOR:
			result, ok = evaluateXOR(inputs)
		case circuit.XNOR:
			result, ok = evaluateXOR(inputs)
			result = !result
		}
		if !ok {
			return errors.Errorf("invalid number of inputs for node %s", node.Name)
		}
		if !row.Set(node, result) {
			return errors.Wrapf(ErrInconsistent, "node %s does not exist in its truth table", node.Name)
		}
	}
	return nil
}

// inputLogic gathers the values of node's predecessors in in-edge order
func (e *Evaluation) inputLogic(node *circuit.Node, stateIdx int) ([]bool, error) {
	rtn := make([]bool, 0, len(node.InEdges))
	for _, src := range node.Predecessors() {
		row := e.tables[src].Output(stateIdx)
		if row.Positions() != 1 {
			return nil, errors.Wrapf(ErrInconsistent, "invalid number of output(s) for node %s", src.Name)
		}
		v, ok := row.Get(src)
		if !ok {
			return nil, errors.Wrapf(ErrInconsistent, "node %s has no logic value", src.Name)
		}
		rtn = append(rtn, v)
	}
	return rtn, nil
}

func evaluatePrimaryOutput(inputs []bool) (bool, bool) {
	switch {
	case len(inputs) == 1:
		return inputs[0], true
	case len(inputs) > 1:
		return evaluateOR(inputs)
	default:
		return false, false
	}
}

func evaluateNOT(inputs []bool) (bool, bool) {
	if len(inputs) != 1 {
		return false, false
	}
	return !inputs[0], true
}

func evaluateAND(inputs []bool) (bool, bool) {
	if len(inputs) < 2 {
		return false, false
	}
	result := true
	for _, v := range inputs {
		result = result && v
	}
	return result, true
}

func evaluateOR(inputs []bool) (bool, bool) {
	if len(inputs) < 2 {
		return false, false
	}
	result := false
	for _, v := range inputs {
		result = result || v
	}
	return result, true
}

func evaluateXOR(inputs []bool) (bool, bool) {
	if len(inputs) < 2 {
		return false, false
	}
	result := false
	for _, v := range inputs {
		result = result != v
	}
	return result, true
}
