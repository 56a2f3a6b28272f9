package cytometry

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fyerfyer/dnacompiler/pkg/activity"
	"github.com/fyerfyer/dnacompiler/pkg/circuit"
	"github.com/fyerfyer/dnacompiler/pkg/state"
	"github.com/fyerfyer/dnacompiler/pkg/target"
	"github.com/pkg/errors"
)

// CytometryTable is a per-node table of histograms
type CytometryTable = state.Table[*Histogram]

// Evaluation holds a predicted histogram per state for every node whose
// device carries cytometry data
type Evaluation struct {
	Netlist  *circuit.Netlist
	Activity *activity.Evaluation
	nodes    []*circuit.Node
	tables   map[*circuit.Node]*CytometryTable
}

// Evaluate predicts histograms for every non-primary node with cytometry
// data. Other nodes are skipped.
func Evaluate(n *circuit.Netlist, ae *activity.Evaluation, binder target.Binder) (*Evaluation, error) {
	e := &Evaluation{
		Netlist:  n,
		Activity: ae,
		nodes:    make([]*circuit.Node, 0),
		tables:   make(map[*circuit.Node]*CytometryTable),
	}

	for _, node := range n.Nodes {
		if node.IsPrimary() || node.IsInputOutput() {
			continue
		}
		device := binder.DeviceOf(node)
		if device == nil || device.GetModel() == nil || len(device.GetModel().Cytometry) == 0 {
			continue
		}
		data := device.GetModel().Cytometry

		table := state.NewTable[*Histogram](ae.States(), node)
		for i := 0; i < table.NumStates(); i++ {
			inputs, err := ae.InputActivity(node, i)
			if err != nil {
				return nil, err
			}
			x := 0.0
			for _, v := range inputs {
				x += v
			}
			h, err := Interpolate(data, x)
			if err != nil {
				return nil, errors.Wrapf(err, "node %s state %d", node.Name, i)
			}
			table.Output(i).Set(node, h)
		}
		e.nodes = append(e.nodes, node)
		e.tables[node] = table
	}
	return e, nil
}

// Nodes returns the evaluated nodes in vertex order
func (e *Evaluation) Nodes() []*circuit.Node {
	return e.nodes
}

// Histogram returns the predicted histogram of node in the given state
func (e *Evaluation) Histogram(node *circuit.Node, stateIdx int) (*Histogram, bool) {
	table := e.tables[node]
	if table == nil {
		return nil, false
	}
	row := table.Output(stateIdx)
	if row == nil {
		return nil, false
	}
	return row.Get(node)
}

// String renders the mean of every predicted histogram
func (e *Evaluation) String() string {
	numStates := e.Activity.States().Len()
	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString("--------------------------------------------\n")
	sb.WriteString("CytometryEvaluation\n")
	sb.WriteString("--------------------------------------------\n")
	for _, node := range e.nodes {
		sb.WriteString(fmt.Sprintf("%-15s\t", node.Name))
		for i := 0; i < numStates; i++ {
			h, _ := e.Histogram(node, i)
			sb.WriteString(fmt.Sprintf("%.4f\t", h.Mean()))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("--------------------------------------------\n")
	return sb.String()
}

// WriteCSV writes one row per node and state with the histogram mean, bins
// and counts
func (e *Evaluation) WriteCSV(w io.Writer) error {
	numStates := e.Activity.States().Len()
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"node", "state", "mean", "bins", "counts"}); err != nil {
		return err
	}
	for _, node := range e.nodes {
		for i := 0; i < numStates; i++ {
			h, _ := e.Histogram(node, i)
			record := []string{
				node.Name,
				strconv.Itoa(i),
				fmt.Sprintf("%1.5e", h.Mean()),
				h.BinsString(),
				h.CountsString(),
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
