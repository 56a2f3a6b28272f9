package state

import (
	"github.com/fyerfyer/dnacompiler/pkg/circuit"
)

// Enumeration is anything with a fixed number of indexed states
type Enumeration interface {
	Len() int
}

// Output holds one value per node of a table's output set, for one state
type Output[V any] struct {
	nodes  []*circuit.Node
	values []V
	set    []bool
}

func newOutput[V any](nodes []*circuit.Node) *Output[V] {
	return &Output[V]{
		nodes:  nodes,
		values: make([]V, len(nodes)),
		set:    make([]bool, len(nodes)),
	}
}

// Positions returns the number of output positions
func (o *Output[V]) Positions() int {
	return len(o.nodes)
}

// Set stores the value for node and reports whether node is an output position
func (o *Output[V]) Set(node *circuit.Node, v V) bool {
	for i, n := range o.nodes {
		if n == node {
			o.values[i] = v
			o.set[i] = true
			return true
		}
	}
	return false
}

// Get returns the value for node, and false if node is not an output
// position or has not been set
func (o *Output[V]) Get(node *circuit.Node) (V, bool) {
	var zero V
	for i, n := range o.nodes {
		if n == node {
			return o.values[i], o.set[i]
		}
	}
	return zero, false
}

// Single returns the only value of a single-position output
func (o *Output[V]) Single() (V, bool) {
	var zero V
	if len(o.nodes) != 1 || !o.set[0] {
		return zero, false
	}
	return o.values[0], true
}

// Table binds a state enumeration to a fixed output node set, holding one
// Output per state
type Table[V any] struct {
	enum    Enumeration
	outputs []*circuit.Node
	rows    []*Output[V]
}

// NewTable creates a table with one empty output per state of the enumeration
func NewTable[V any](e Enumeration, outputs ...*circuit.Node) *Table[V] {
	nodes := append([]*circuit.Node(nil), outputs...)
	t := &Table[V]{
		enum:    e,
		outputs: nodes,
		rows:    make([]*Output[V], e.Len()),
	}
	for i := range t.rows {
		t.rows[i] = newOutput[V](nodes)
	}
	return t
}

// NumStates returns the number of states (rows) in the table
func (t *Table[V]) NumStates() int {
	return len(t.rows)
}

// Output returns the output holder for state i, or nil
func (t *Table[V]) Output(i int) *Output[V] {
	if i < 0 || i >= len(t.rows) {
		return nil
	}
	return t.rows[i]
}

// Outputs returns the output node set
func (t *Table[V]) Outputs() []*circuit.Node {
	return t.outputs
}

// Values returns the value of node for every state, in state order
func (t *Table[V]) Values(node *circuit.Node) []V {
	rtn := make([]V, len(t.rows))
	for i, row := range t.rows {
		rtn[i], _ = row.Get(node)
	}
	return rtn
}
