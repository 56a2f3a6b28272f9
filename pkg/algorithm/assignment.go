package algorithm

import (
	"github.com/fyerfyer/dnacompiler/pkg/circuit"
	"github.com/fyerfyer/dnacompiler/pkg/target"
	"github.com/pkg/errors"
)

// ErrInsufficientLibrary is returned when the library cannot cover the netlist
var ErrInsufficientLibrary = errors.New("insufficient library")

// Assignment maps node IDs to devices. The netlist itself is never mutated.
type Assignment struct {
	devices map[int]*target.Device
}

// NewAssignment creates an empty assignment
func NewAssignment() *Assignment {
	return &Assignment{devices: make(map[int]*target.Device)}
}

// Get returns the device bound to node, or nil
func (a *Assignment) Get(node *circuit.Node) *target.Device {
	return a.devices[node.ID]
}

// Set binds a device to node
func (a *Assignment) Set(node *circuit.Node, d *target.Device) {
	a.devices[node.ID] = d
}

// Unset removes the binding of node
func (a *Assignment) Unset(node *circuit.Node) {
	delete(a.devices, node.ID)
}

// DeviceOf returns the device bound to node as an Assignable, or nil
func (a *Assignment) DeviceOf(node *circuit.Node) target.Assignable {
	d := a.devices[node.ID]
	if d == nil {
		return nil
	}
	return d
}

// Len returns the number of bound nodes
func (a *Assignment) Len() int {
	return len(a.devices)
}

// Clone returns an independent copy
func (a *Assignment) Clone() *Assignment {
	rtn := NewAssignment()
	for id, d := range a.devices {
		rtn.devices[id] = d
	}
	return rtn
}

// Names returns the device name bound to every node of the netlist, in
// vertex order, with "" for unbound nodes
func (a *Assignment) Names(n *circuit.Netlist) []string {
	rtn := make([]string, n.NumVertex())
	for i, node := range n.Nodes {
		if d := a.Get(node); d != nil {
			rtn[i] = d.Name
		}
	}
	return rtn
}
