package algorithm

import (
	"github.com/fyerfyer/dnacompiler/pkg/circuit"
	"github.com/fyerfyer/dnacompiler/pkg/target"
	"github.com/pkg/errors"
)

// assignPrimary binds one device of pool to every node. A constrained node
// gets the named device; the rest take the next device in library order that
// is not reserved by a constraint.
func (s *SimulatedAnnealing) assignPrimary(nodes []*circuit.Node, pool []*target.Device,
	constraints map[string]string, lookup func(string) *target.Device, what string) error {

	reserved := make(map[string]bool, len(constraints))
	for _, name := range constraints {
		reserved[name] = true
	}

	next := 0
	for _, node := range nodes {
		if name, ok := constraints[node.Name]; ok {
			d := lookup(name)
			if d == nil {
				return errors.Errorf("%s %s for node %s not found in library", what, name, node.Name)
			}
			s.Assignment.Set(node, d)
			s.Logger.Assign("%s -> %s (constrained)", node.Name, d.Name)
			continue
		}

		var d *target.Device
		for d == nil {
			if next >= len(pool) {
				return errors.Wrapf(ErrInsufficientLibrary, "not enough %ss in the library to cover %d nodes", what, len(nodes))
			}
			if !reserved[pool[next].Name] {
				d = pool[next]
			}
			next++
		}
		s.Assignment.Set(node, d)
		s.Logger.Assign("%s -> %s", node.Name, d.Name)
	}
	return nil
}

// assignInputNodes binds an input sensor to every primary input
func (s *SimulatedAnnealing) assignInputNodes() error {
	return s.assignPrimary(s.Netlist.PrimaryInputs(), s.Library.InputSensors,
		s.Config.InputConstraints, s.Library.InputSensorByName, "input sensor")
}

// assignOutputNodes binds an output reporter to every primary output
func (s *SimulatedAnnealing) assignOutputNodes() error {
	return s.assignPrimary(s.Netlist.PrimaryOutputs(), s.Library.OutputDevices,
		s.Config.OutputConstraints, s.Library.OutputDeviceByName, "output device")
}

// assignLogicNodes binds a random unassigned gate to every logic node
func (s *SimulatedAnnealing) assignLogicNodes() error {
	for _, node := range s.Netlist.LogicNodes() {
		gate := s.Gates.RandomUnassigned(s.rng)
		if gate == nil {
			return errors.Wrapf(ErrInsufficientLibrary, "gate assignment error: no gate left for node %s", node.Name)
		}
		s.Assignment.Set(node, gate)
		if err := s.Gates.Assign(gate); err != nil {
			return err
		}
		s.Logger.Assign("%s -> %s", node.Name, gate.Name)
	}
	return nil
}
