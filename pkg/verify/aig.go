// Package verify cross-checks logic evaluation results against an
// independent and-inverter graph built from the same netlist.
package verify

import (
	"github.com/fyerfyer/dnacompiler/pkg/circuit"
	"github.com/fyerfyer/dnacompiler/pkg/logic"
	aig "github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
	"github.com/pkg/errors"
)

// ErrMismatch is returned when a truth table disagrees with the AIG
var ErrMismatch = errors.New("truth table mismatch")

// Circuit is an and-inverter graph with one literal per netlist node
type Circuit struct {
	c    *aig.C
	ins  map[*circuit.Node]z.Lit
	lits map[*circuit.Node]z.Lit
}

// Build converts the netlist into an AIG. Structural markers get no literal.
func Build(n *circuit.Netlist) (*Circuit, error) {
	rtn := &Circuit{
		c:    aig.NewC(),
		ins:  make(map[*circuit.Node]z.Lit),
		lits: make(map[*circuit.Node]z.Lit),
	}

	order, err := circuit.NewBFS(n).Order()
	if err != nil {
		return nil, err
	}
	for _, node := range order {
		if node.IsInputOutput() {
			continue
		}
		ms := make([]z.Lit, 0, len(node.InEdges))
		for _, p := range node.Predecessors() {
			m, ok := rtn.lits[p]
			if !ok {
				return nil, errors.Errorf("node %s has no literal", p.Name)
			}
			ms = append(ms, m)
		}

		m, err := rtn.gate(node, ms)
		if err != nil {
			return nil, err
		}
		rtn.lits[node] = m
	}
	return rtn, nil
}

func (a *Circuit) gate(node *circuit.Node, ms []z.Lit) (z.Lit, error) {
	c := a.c
	switch node.Type {
	case circuit.PrimaryInput:
		if len(ms) == 0 {
			m := c.Lit()
			a.ins[node] = m
			return m, nil
		}
	case circuit.PrimaryOutput:
		if len(ms) == 1 {
			return ms[0], nil
		}
		if len(ms) > 1 {
			return c.Ors(ms...), nil
		}
	case circuit.NOT:
		if len(ms) == 1 {
			return ms[0].Not(), nil
		}
	case circuit.AND, circuit.NAND:
		if len(ms) > 1 {
			m := c.Ands(ms...)
			if node.Type == circuit.NAND {
				m = m.Not()
			}
			return m, nil
		}
	case circuit.OR, circuit.NOR:
		if len(ms) > 1 {
			m := c.Ors(ms...)
			if node.Type == circuit.NOR {
				m = m.Not()
			}
			return m, nil
		}
	case circuit.XOR, circuit.XNOR:
		if len(ms) > 1 {
			m := ms[0]
			for _, o := range ms[1:] {
				m = c.Xor(m, o)
			}
			if node.Type == circuit.XNOR {
				m = m.Not()
			}
			return m, nil
		}
	default:
		return z.LitNull, errors.Wrapf(circuit.ErrUnknownNodeType, "node %s", node.Name)
	}
	return z.LitNull, errors.Errorf("invalid number of inputs for node %s", node.Name)
}

// Len returns the number of AIG nodes
func (a *Circuit) Len() int {
	return a.c.Len()
}

// Eval evaluates every node literal for the given primary input levels
func (a *Circuit) Eval(levels map[*circuit.Node]bool) map[*circuit.Node]bool {
	vs := make([]bool, a.c.Len())
	vs[a.c.T.Var()] = true
	for node, m := range a.ins {
		vs[m.Var()] = levels[node]
	}
	a.c.Eval(vs)

	rtn := make(map[*circuit.Node]bool, len(a.lits))
	for node, m := range a.lits {
		v := vs[m.Var()]
		if !m.IsPos() {
			v = !v
		}
		rtn[node] = v
	}
	return rtn
}

// CheckTruthTables verifies every truth table of the evaluation against the
// AIG in every state
func CheckTruthTables(le *logic.Evaluation) error {
	a, err := Build(le.Netlist)
	if err != nil {
		return err
	}

	states := le.States()
	for i := 0; i < states.Len(); i++ {
		st := states.At(i)
		levels := make(map[*circuit.Node]bool, len(states.Nodes()))
		for _, in := range states.Nodes() {
			levels[in], _ = st.Level(in)
		}

		values := a.Eval(levels)
		for _, node := range le.Netlist.Nodes {
			want, ok := values[node]
			if !ok {
				continue
			}
			got, ok := le.Value(node, i)
			if !ok || got != want {
				return errors.Wrapf(ErrMismatch, "node %s state %s: expected %v, got %v", node.Name, st, want, got)
			}
		}
	}
	return nil
}
