package circuit

import (
	"github.com/gammazero/deque"
	"github.com/pkg/errors"
)

// ErrCycle is returned when a traversal finds the netlist is not acyclic
var ErrCycle = errors.New("netlist contains a cycle")

// BFS visits nodes breadth-first from the sources. A node is only returned
// once every one of its predecessors has been returned.
type BFS struct {
	netlist *Netlist
	queue   deque.Deque[*Node]
	pending map[*Node]int // Number of in-edges whose source has not been visited
	visited int
}

// NewBFS creates a breadth-first traversal over the netlist
func NewBFS(n *Netlist) *BFS {
	b := &BFS{
		netlist: n,
		pending: make(map[*Node]int, len(n.Nodes)),
	}
	for _, node := range n.Nodes {
		b.pending[node] = len(node.InEdges)
		if len(node.InEdges) == 0 {
			b.queue.PushBack(node)
		}
	}
	return b
}

// Next returns the next node, or nil when the traversal is exhausted
func (b *BFS) Next() *Node {
	if b.queue.Len() == 0 {
		return nil
	}
	node := b.queue.PopFront()
	b.visited++

	for _, e := range node.OutEdges {
		b.pending[e.Dst]--
		if b.pending[e.Dst] == 0 {
			b.queue.PushBack(e.Dst)
		}
	}
	return node
}

// Err reports a cycle once the traversal is exhausted without visiting every node
func (b *BFS) Err() error {
	if b.queue.Len() == 0 && b.visited != len(b.netlist.Nodes) {
		return errors.Wrapf(ErrCycle, "visited %d of %d nodes", b.visited, len(b.netlist.Nodes))
	}
	return nil
}

// Order drains the traversal and returns the visit order
func (b *BFS) Order() ([]*Node, error) {
	order := make([]*Node, 0, len(b.netlist.Nodes))
	for node := b.Next(); node != nil; node = b.Next() {
		order = append(order, node)
	}
	return order, b.Err()
}

// SinkDFS visits nodes depth-first, starting at every sink (node without
// out-edges) and walking backwards along in-edges
type SinkDFS struct {
	stack   deque.Deque[*Node]
	visited map[*Node]bool
}

// NewSinkDFS creates a sink-first depth-first traversal over the netlist
func NewSinkDFS(n *Netlist) *SinkDFS {
	d := &SinkDFS{
		visited: make(map[*Node]bool, len(n.Nodes)),
	}
	// Push sinks in reverse so the first sink is explored first
	for i := len(n.Nodes) - 1; i >= 0; i-- {
		if len(n.Nodes[i].OutEdges) == 0 {
			d.stack.PushBack(n.Nodes[i])
		}
	}
	return d
}

// Next returns the next node, or nil when the traversal is exhausted
func (d *SinkDFS) Next() *Node {
	for d.stack.Len() > 0 {
		node := d.stack.PopBack()
		if d.visited[node] {
			continue
		}
		d.visited[node] = true

		for i := len(node.InEdges) - 1; i >= 0; i-- {
			src := node.InEdges[i].Src
			if !d.visited[src] {
				d.stack.PushBack(src)
			}
		}
		return node
	}
	return nil
}

// Topology contains level information about the netlist structure
type Topology struct {
	Netlist  *Netlist
	Order    []*Node       // Breadth-first evaluation order
	LevelMap map[*Node]int // Map of nodes to their level in the netlist
	MaxLevel int           // Maximum level in the netlist
}

// NewTopology creates a new topology analyzer for the given netlist
func NewTopology(n *Netlist) *Topology {
	return &Topology{
		Netlist:  n,
		LevelMap: make(map[*Node]int),
	}
}

// ComputeLevels assigns a level to each node in the netlist.
// Sources are level 0, and levels increase toward the sinks.
func (t *Topology) ComputeLevels() error {
	order, err := NewBFS(t.Netlist).Order()
	if err != nil {
		return err
	}
	t.Order = order
	t.MaxLevel = 0

	for _, node := range order {
		level := 0
		for _, p := range node.Predecessors() {
			if t.LevelMap[p]+1 > level {
				level = t.LevelMap[p] + 1
			}
		}
		t.LevelMap[node] = level
		if level > t.MaxLevel {
			t.MaxLevel = level
		}
	}
	return nil
}

// NodesAtLevel returns the nodes at the given level, in evaluation order
func (t *Topology) NodesAtLevel(level int) []*Node {
	rtn := make([]*Node, 0)
	for _, node := range t.Order {
		if t.LevelMap[node] == level {
			rtn = append(rtn, node)
		}
	}
	return rtn
}
