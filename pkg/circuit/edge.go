package circuit

import (
	"fmt"
)

// Edge represents a directed wire between two netlist nodes
type Edge struct {
	ID   int    // Edge index within the netlist
	Name string // Name of the edge
	Src  *Node  // Driving node
	Dst  *Node  // Driven node
}

// NewEdge creates a new edge and connects it to both endpoints
func NewEdge(id int, name string, src, dst *Node) *Edge {
	e := &Edge{
		ID:   id,
		Name: name,
		Src:  src,
		Dst:  dst,
	}
	src.OutEdges = append(src.OutEdges, e)
	dst.InEdges = append(dst.InEdges, e)
	return e
}

// String returns a string representation of the edge
func (e *Edge) String() string {
	return fmt.Sprintf("%s: %s -> %s", e.Name, e.Src.Name, e.Dst.Name)
}

// InputIndex returns the position of this edge among the destination's in-edges
func (e *Edge) InputIndex() int {
	for i, in := range e.Dst.InEdges {
		if in == e {
			return i
		}
	}
	return -1
}
