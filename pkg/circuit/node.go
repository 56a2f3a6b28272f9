package circuit

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrUnknownNodeType is returned when a node carries a type outside the known set
var ErrUnknownNodeType = errors.New("unknown node type")

// NodeType represents the logic function of a netlist node
type NodeType int

const (
	PrimaryInput NodeType = iota
	PrimaryOutput
	Input  // Structural input marker, not logic-bearing
	Output // Structural output marker, not logic-bearing
	NOT
	AND
	NAND
	OR
	NOR
	XOR
	XNOR
)

// String returns a string representation of the node type
func (nt NodeType) String() string {
	switch nt {
	case PrimaryInput:
		return "PRIMARY_INPUT"
	case PrimaryOutput:
		return "PRIMARY_OUTPUT"
	case Input:
		return "INPUT"
	case Output:
		return "OUTPUT"
	case NOT:
		return "NOT"
	case AND:
		return "AND"
	case NAND:
		return "NAND"
	case OR:
		return "OR"
	case NOR:
		return "NOR"
	case XOR:
		return "XOR"
	case XNOR:
		return "XNOR"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether the type is one of the known node types
func (nt NodeType) Valid() bool {
	return nt >= PrimaryInput && nt <= XNOR
}

// ParseNodeType converts a node type name (case-insensitive) to a NodeType
func ParseNodeType(s string) (NodeType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PRIMARY_INPUT":
		return PrimaryInput, nil
	case "PRIMARY_OUTPUT":
		return PrimaryOutput, nil
	case "INPUT":
		return Input, nil
	case "OUTPUT":
		return Output, nil
	case "NOT", "INV":
		return NOT, nil
	case "AND":
		return AND, nil
	case "NAND":
		return NAND, nil
	case "OR":
		return OR, nil
	case "NOR":
		return NOR, nil
	case "XOR":
		return XOR, nil
	case "XNOR":
		return XNOR, nil
	default:
		return 0, errors.Wrapf(ErrUnknownNodeType, "%q", s)
	}
}

// Node represents a vertex of the netlist
type Node struct {
	ID       int      // Vertex index within the netlist
	Name     string   // Stable name
	Type     NodeType // Logic function
	InEdges  []*Edge  // Ordered incoming edges
	OutEdges []*Edge  // Outgoing edges
}

// NewNode creates a new node with the given parameters
func NewNode(id int, name string, nodeType NodeType) *Node {
	return &Node{
		ID:       id,
		Name:     name,
		Type:     nodeType,
		InEdges:  make([]*Edge, 0),
		OutEdges: make([]*Edge, 0),
	}
}

// String returns a string representation of the node
func (n *Node) String() string {
	return fmt.Sprintf("%s(%s)", n.Name, n.Type.String())
}

// NumInEdge returns the number of incoming edges
func (n *Node) NumInEdge() int {
	return len(n.InEdges)
}

// NumOutEdge returns the number of outgoing edges
func (n *Node) NumOutEdge() int {
	return len(n.OutEdges)
}

// Predecessors returns the source nodes of the incoming edges, in edge order
func (n *Node) Predecessors() []*Node {
	rtn := make([]*Node, len(n.InEdges))
	for i, e := range n.InEdges {
		rtn[i] = e.Src
	}
	return rtn
}

// IsPrimaryInput returns true for PRIMARY_INPUT nodes
func (n *Node) IsPrimaryInput() bool {
	return n.Type == PrimaryInput
}

// IsPrimaryOutput returns true for PRIMARY_OUTPUT nodes
func (n *Node) IsPrimaryOutput() bool {
	return n.Type == PrimaryOutput
}

// IsPrimary returns true for primary inputs and primary outputs
func (n *Node) IsPrimary() bool {
	return n.IsPrimaryInput() || n.IsPrimaryOutput()
}

// IsInputOutput returns true for the structural INPUT and OUTPUT markers
func (n *Node) IsInputOutput() bool {
	return n.Type == Input || n.Type == Output
}

// IsLogic returns true for nodes that receive a logic gate during mapping
func (n *Node) IsLogic() bool {
	return !n.IsPrimary() && !n.IsInputOutput()
}
