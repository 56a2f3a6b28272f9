package algorithm

import (
	"github.com/fyerfyer/dnacompiler/pkg/circuit"
	"github.com/fyerfyer/dnacompiler/pkg/target"
)

// Move is a candidate change to the assignment. With From nil, FromGate is
// pulled out of the unassigned pool into To, and ToGate is released.
// Otherwise the gates of From and To are exchanged.
type Move struct {
	From     *circuit.Node
	FromGate *target.Device
	To       *circuit.Node
	ToGate   *target.Device
}

// IsPoolMove reports whether the move draws from the unassigned pool
func (m Move) IsPoolMove() bool {
	return m.From == nil
}

// Apply performs the move on the assignment and the gate pools
func (m Move) Apply(a *Assignment, gm *GateManager) error {
	if m.IsPoolMove() {
		if err := gm.Unassign(m.ToGate); err != nil {
			return err
		}
		a.Set(m.To, m.FromGate)
		return gm.Assign(m.FromGate)
	}
	a.Set(m.From, m.ToGate)
	a.Set(m.To, m.FromGate)
	return nil
}

// Revert undoes a previously applied move
func (m Move) Revert(a *Assignment, gm *GateManager) error {
	if m.IsPoolMove() {
		if err := gm.Unassign(m.FromGate); err != nil {
			return err
		}
		a.Set(m.To, m.ToGate)
		return gm.Assign(m.ToGate)
	}
	a.Set(m.From, m.FromGate)
	a.Set(m.To, m.ToGate)
	return nil
}
