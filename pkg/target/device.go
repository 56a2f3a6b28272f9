// Package target holds the characterised device library a netlist is mapped
// onto: gates, input sensors and output reporters with their DNA structure
// and response models.
package target

import (
	"fmt"
)

// Kind identifies which role a device can play in a circuit
type Kind int

const (
	GateKind Kind = iota
	InputSensorKind
	OutputDeviceKind
)

// String returns a string representation of the device kind
func (k Kind) String() string {
	switch k {
	case GateKind:
		return "gate"
	case InputSensorKind:
		return "input_sensor"
	case OutputDeviceKind:
		return "output_device"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Assignable is anything that can be bound to a netlist node
type Assignable interface {
	DeviceName() string
	DeviceKind() Kind
	GetStructure() *Structure
	GetModel() *Model
}

// Device is a library entry. Kind tags which of the three roles it plays;
// Group is only meaningful for gates (gates sharing a repressor).
type Device struct {
	Kind      Kind
	Name      string
	Group     string
	Structure *Structure
	Model     *Model
}

// NewGate creates a logic gate device
func NewGate(name, group string, structure *Structure, model *Model) *Device {
	return &Device{Kind: GateKind, Name: name, Group: group, Structure: structure, Model: model}
}

// NewInputSensor creates an input sensor device
func NewInputSensor(name string, structure *Structure, model *Model) *Device {
	return &Device{Kind: InputSensorKind, Name: name, Structure: structure, Model: model}
}

// NewOutputDevice creates an output reporter device
func NewOutputDevice(name string, structure *Structure, model *Model) *Device {
	return &Device{Kind: OutputDeviceKind, Name: name, Structure: structure, Model: model}
}

// DeviceName returns the device name
func (d *Device) DeviceName() string {
	return d.Name
}

// DeviceKind returns the device kind
func (d *Device) DeviceKind() Kind {
	return d.Kind
}

// GetStructure returns the device structure, possibly nil
func (d *Device) GetStructure() *Structure {
	return d.Structure
}

// GetModel returns the device model, possibly nil
func (d *Device) GetModel() *Model {
	return d.Model
}

// String returns a string representation of the device
func (d *Device) String() string {
	if d.Kind == GateKind && d.Group != "" {
		return fmt.Sprintf("%s (%s, %s)", d.Name, d.Kind, d.Group)
	}
	return fmt.Sprintf("%s (%s)", d.Name, d.Kind)
}
