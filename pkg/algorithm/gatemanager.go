package algorithm

import (
	"math/rand"

	"github.com/fyerfyer/dnacompiler/pkg/target"
	"github.com/pkg/errors"
)

// GateManager tracks which library gates are in use. The two pools are
// disjoint and keep library order so draws are reproducible.
type GateManager struct {
	unassigned []*target.Device
	assigned   []*target.Device
}

// NewGateManager puts every gate in the unassigned pool
func NewGateManager(gates []*target.Device) *GateManager {
	return &GateManager{
		unassigned: append([]*target.Device(nil), gates...),
		assigned:   make([]*target.Device, 0, len(gates)),
	}
}

// RandomUnassigned draws a gate uniformly from the unassigned pool without
// moving it, or returns nil when the pool is empty
func (g *GateManager) RandomUnassigned(rng *rand.Rand) *target.Device {
	if len(g.unassigned) == 0 {
		return nil
	}
	return g.unassigned[rng.Intn(len(g.unassigned))]
}

// Assign moves a gate from the unassigned to the assigned pool
func (g *GateManager) Assign(gate *target.Device) error {
	i := indexOf(g.unassigned, gate)
	if i < 0 {
		if indexOf(g.assigned, gate) >= 0 {
			return errors.Errorf("gate %s is already assigned", gate.Name)
		}
		return errors.Errorf("gate %s is not managed", gate.Name)
	}
	g.unassigned = append(g.unassigned[:i], g.unassigned[i+1:]...)
	g.assigned = append(g.assigned, gate)
	return nil
}

// Unassign moves a gate from the assigned to the unassigned pool
func (g *GateManager) Unassign(gate *target.Device) error {
	i := indexOf(g.assigned, gate)
	if i < 0 {
		if indexOf(g.unassigned, gate) >= 0 {
			return errors.Errorf("gate %s is already unassigned", gate.Name)
		}
		return errors.Errorf("gate %s is not managed", gate.Name)
	}
	g.assigned = append(g.assigned[:i], g.assigned[i+1:]...)
	g.unassigned = append(g.unassigned, gate)
	return nil
}

// IsAssigned reports whether the gate is in the assigned pool
func (g *GateManager) IsAssigned(gate *target.Device) bool {
	return indexOf(g.assigned, gate) >= 0
}

// NumUnassigned returns the size of the unassigned pool
func (g *GateManager) NumUnassigned() int {
	return len(g.unassigned)
}

// NumAssigned returns the size of the assigned pool
func (g *GateManager) NumAssigned() int {
	return len(g.assigned)
}

func indexOf(pool []*target.Device, gate *target.Device) int {
	for i, d := range pool {
		if d == gate {
			return i
		}
	}
	return -1
}
