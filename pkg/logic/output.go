package logic

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const header = "--------------------------------------------"

// String renders every node's truth table, one node per line in vertex order
func (e *Evaluation) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(header + "\n")
	sb.WriteString("LogicEvaluation\n")
	sb.WriteString(header + "\n")
	for _, node := range e.Netlist.Nodes {
		sb.WriteString(fmt.Sprintf("%-15s\t", node.Name))
		for i := 0; i < e.states.Len(); i++ {
			v, ok := e.Value(node, i)
			if ok {
				sb.WriteString(strconv.FormatBool(v))
			} else {
				sb.WriteString("-")
			}
			sb.WriteString("\t")
		}
		sb.WriteString("\n")
	}
	sb.WriteString(header + "\n")
	return sb.String()
}

// WriteCSV writes one row per node: the node name then its value in every state
func (e *Evaluation) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	for _, node := range e.Netlist.Nodes {
		record := make([]string, 0, e.states.Len()+1)
		record = append(record, node.Name)
		for i := 0; i < e.states.Len(); i++ {
			v, _ := e.Value(node, i)
			record = append(record, strconv.FormatBool(v))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
