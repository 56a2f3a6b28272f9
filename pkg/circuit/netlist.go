package circuit

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrInvalidNetlist is returned by Validate for malformed netlists
var ErrInvalidNetlist = errors.New("netlist is not valid")

// Netlist represents a directed acyclic graph of logic nodes.
// Topology is fixed once built; device assignment lives elsewhere.
type Netlist struct {
	Name      string
	InputFile string // Path the netlist was read from, if any
	Nodes     []*Node
	Edges     []*Edge
	byName    map[string]*Node
}

// NewNetlist creates a new empty netlist with the given name
func NewNetlist(name string) *Netlist {
	return &Netlist{
		Name:   name,
		Nodes:  make([]*Node, 0),
		Edges:  make([]*Edge, 0),
		byName: make(map[string]*Node),
	}
}

// AddNode creates a node with the next vertex index and adds it to the netlist
func (n *Netlist) AddNode(name string, nodeType NodeType) *Node {
	node := NewNode(len(n.Nodes), name, nodeType)
	n.Nodes = append(n.Nodes, node)
	if _, exists := n.byName[name]; !exists {
		n.byName[name] = node
	}
	return node
}

// AddEdge creates an edge from src to dst. The order of AddEdge calls
// defines the order of the destination's inputs.
func (n *Netlist) AddEdge(name string, src, dst *Node) *Edge {
	e := NewEdge(len(n.Edges), name, src, dst)
	n.Edges = append(n.Edges, e)
	return e
}

// Connect adds an edge between two nodes looked up by name
func (n *Netlist) Connect(name, src, dst string) (*Edge, error) {
	s := n.NodeByName(src)
	if s == nil {
		return nil, errors.Errorf("edge %s: source node %s not found", name, src)
	}
	d := n.NodeByName(dst)
	if d == nil {
		return nil, errors.Errorf("edge %s: destination node %s not found", name, dst)
	}
	return n.AddEdge(name, s, d), nil
}

// NumVertex returns the number of nodes
func (n *Netlist) NumVertex() int {
	return len(n.Nodes)
}

// VertexAt returns the node at the given index, or nil
func (n *Netlist) VertexAt(i int) *Node {
	if i < 0 || i >= len(n.Nodes) {
		return nil
	}
	return n.Nodes[i]
}

// NodeByName returns a node by name
func (n *Netlist) NodeByName(name string) *Node {
	return n.byName[name]
}

// PrimaryInputs returns the PRIMARY_INPUT nodes in vertex order
func (n *Netlist) PrimaryInputs() []*Node {
	return n.nodesOfType(PrimaryInput)
}

// PrimaryOutputs returns the PRIMARY_OUTPUT nodes in vertex order
func (n *Netlist) PrimaryOutputs() []*Node {
	return n.nodesOfType(PrimaryOutput)
}

// LogicNodes returns the nodes that are neither primary nor structural markers
func (n *Netlist) LogicNodes() []*Node {
	rtn := make([]*Node, 0)
	for _, node := range n.Nodes {
		if node.IsLogic() {
			rtn = append(rtn, node)
		}
	}
	return rtn
}

func (n *Netlist) nodesOfType(t NodeType) []*Node {
	rtn := make([]*Node, 0)
	for _, node := range n.Nodes {
		if node.Type == t {
			rtn = append(rtn, node)
		}
	}
	return rtn
}

// Validate checks names are unique, edges reference member nodes, every
// node type is known and the graph is acyclic
func (n *Netlist) Validate() error {
	seen := make(map[string]bool, len(n.Nodes))
	for i, node := range n.Nodes {
		if node.ID != i {
			return errors.Wrapf(ErrInvalidNetlist, "node %s has index %d, expected %d", node.Name, node.ID, i)
		}
		if seen[node.Name] {
			return errors.Wrapf(ErrInvalidNetlist, "duplicate node name %s", node.Name)
		}
		seen[node.Name] = true
		if !node.Type.Valid() {
			return errors.Wrapf(ErrUnknownNodeType, "node %s", node.Name)
		}
	}

	for _, e := range n.Edges {
		if e.Src == nil || e.Dst == nil {
			return errors.Wrapf(ErrInvalidNetlist, "edge %s is dangling", e.Name)
		}
		if n.VertexAt(e.Src.ID) != e.Src || n.VertexAt(e.Dst.ID) != e.Dst {
			return errors.Wrapf(ErrInvalidNetlist, "edge %s references a node outside the netlist", e.Name)
		}
	}

	topo := NewTopology(n)
	if err := topo.ComputeLevels(); err != nil {
		return errors.Wrap(ErrInvalidNetlist, err.Error())
	}
	return nil
}

// String returns a short multi-line description of the netlist
func (n *Netlist) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Netlist %s: %d nodes, %d edges\n", n.Name, len(n.Nodes), len(n.Edges)))
	for _, node := range n.Nodes {
		names := make([]string, 0, len(node.InEdges))
		for _, p := range node.Predecessors() {
			names = append(names, p.Name)
		}
		sb.WriteString(fmt.Sprintf("  %s <- [%s]\n", node, strings.Join(names, ", ")))
	}
	return sb.String()
}
