// Package state enumerates the boolean input combinations of a netlist and
// provides the per-node output tables the evaluators fill in.
//
// Every evaluator built on top of these types costs O(2^K * V) for K primary
// inputs and V nodes.
package state

import (
	"fmt"
	"strings"

	"github.com/bits-and-blooms/bitset"
	"github.com/fyerfyer/dnacompiler/pkg/circuit"
	"github.com/pkg/errors"
)

// maxInputs is the largest K for which 2^K still fits a state index
const maxInputs = 62

// State is one combination of levels across the input nodes
type State[V any] struct {
	Index  int
	levels *bitset.BitSet // bit j set means input j is high
	states *States[V]
}

// Value returns the sentinel assigned to node in this state
func (s *State[V]) Value(node *circuit.Node) (V, bool) {
	var zero V
	j, ok := s.states.index[node]
	if !ok {
		return zero, false
	}
	if s.levels.Test(uint(j)) {
		return s.states.high, true
	}
	return s.states.low, true
}

// Level returns whether node is high in this state
func (s *State[V]) Level(node *circuit.Node) (bool, bool) {
	j, ok := s.states.index[node]
	if !ok {
		return false, false
	}
	return s.levels.Test(uint(j)), true
}

// NumStatePosition returns the number of input positions in the state
func (s *State[V]) NumStatePosition() int {
	return len(s.states.nodes)
}

// String returns the levels as a binary string, first input first
func (s *State[V]) String() string {
	var sb strings.Builder
	for j := range s.states.nodes {
		if s.levels.Test(uint(j)) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// States is the full enumeration of 2^K states over an ordered list of K
// input nodes, each level mapped to one of two sentinels
type States[V any] struct {
	nodes  []*circuit.Node
	index  map[*circuit.Node]int
	high   V
	low    V
	states []*State[V]
}

// NewStates enumerates every assignment of {high, low} to the given nodes in
// binary counting order: in state i, input j is high iff bit K-1-j of i is
// set, so the first input is the most significant digit.
func NewStates[V any](nodes []*circuit.Node, high, low V) (*States[V], error) {
	k := len(nodes)
	if k > maxInputs {
		return nil, errors.Errorf("cannot enumerate states for %d inputs", k)
	}

	s := &States[V]{
		nodes: append([]*circuit.Node(nil), nodes...),
		index: make(map[*circuit.Node]int, k),
		high:  high,
		low:   low,
	}
	for j, node := range nodes {
		if _, dup := s.index[node]; dup {
			return nil, errors.Errorf("node %s listed twice", node.Name)
		}
		s.index[node] = j
	}

	total := 1 << uint(k)
	s.states = make([]*State[V], total)
	for i := 0; i < total; i++ {
		levels := bitset.New(uint(k))
		for j := 0; j < k; j++ {
			if (i>>uint(k-1-j))&1 == 1 {
				levels.Set(uint(j))
			}
		}
		s.states[i] = &State[V]{Index: i, levels: levels, states: s}
	}
	return s, nil
}

// Remap returns an enumeration over the same inputs and levels with new sentinels
func Remap[V, W any](s *States[V], high, low W) *States[W] {
	rtn := &States[W]{
		nodes:  s.nodes,
		index:  s.index,
		high:   high,
		low:    low,
		states: make([]*State[W], len(s.states)),
	}
	for i, st := range s.states {
		rtn.states[i] = &State[W]{Index: i, levels: st.levels, states: rtn}
	}
	return rtn
}

// Len returns the number of states
func (s *States[V]) Len() int {
	return len(s.states)
}

// At returns the state at the given index, or nil
func (s *States[V]) At(i int) *State[V] {
	if i < 0 || i >= len(s.states) {
		return nil
	}
	return s.states[i]
}

// Nodes returns the ordered input nodes
func (s *States[V]) Nodes() []*circuit.Node {
	return s.nodes
}

// High returns the high sentinel
func (s *States[V]) High() V {
	return s.high
}

// Low returns the low sentinel
func (s *States[V]) Low() V {
	return s.low
}

// String lists every state with its binary levels
func (s *States[V]) String() string {
	var sb strings.Builder
	names := make([]string, len(s.nodes))
	for j, node := range s.nodes {
		names[j] = node.Name
	}
	sb.WriteString(fmt.Sprintf("States over [%s]\n", strings.Join(names, ", ")))
	for _, st := range s.states {
		sb.WriteString(fmt.Sprintf("  %d: %s\n", st.Index, st))
	}
	return sb.String()
}
