package target

import (
	"github.com/pkg/errors"
)

// Library is the ordered collection of devices available for mapping.
// Order is preserved so assignment is reproducible.
type Library struct {
	Gates         []*Device
	InputSensors  []*Device
	OutputDevices []*Device
	byName        map[string]*Device
}

// NewLibrary creates an empty library
func NewLibrary() *Library {
	return &Library{
		Gates:         make([]*Device, 0),
		InputSensors:  make([]*Device, 0),
		OutputDevices: make([]*Device, 0),
		byName:        make(map[string]*Device),
	}
}

// Add appends a device to the collection matching its kind
func (l *Library) Add(d *Device) error {
	if _, exists := l.byName[d.Name]; exists {
		return errors.Errorf("duplicate device %s", d.Name)
	}
	switch d.Kind {
	case GateKind:
		l.Gates = append(l.Gates, d)
	case InputSensorKind:
		l.InputSensors = append(l.InputSensors, d)
	case OutputDeviceKind:
		l.OutputDevices = append(l.OutputDevices, d)
	default:
		return errors.Errorf("device %s has unknown kind %s", d.Name, d.Kind)
	}
	l.byName[d.Name] = d
	return nil
}

// AssignableByName returns any device with the given name, or nil
func (l *Library) AssignableByName(name string) Assignable {
	d, ok := l.byName[name]
	if !ok {
		return nil
	}
	return d
}

// DeviceByName returns the device with the given name, or nil
func (l *Library) DeviceByName(name string) *Device {
	return l.byName[name]
}

// InputSensorByName returns the input sensor with the given name, or nil
func (l *Library) InputSensorByName(name string) *Device {
	return l.byKind(name, InputSensorKind)
}

// OutputDeviceByName returns the output device with the given name, or nil
func (l *Library) OutputDeviceByName(name string) *Device {
	return l.byKind(name, OutputDeviceKind)
}

// GateByName returns the gate with the given name, or nil
func (l *Library) GateByName(name string) *Device {
	return l.byKind(name, GateKind)
}

func (l *Library) byKind(name string, kind Kind) *Device {
	d := l.byName[name]
	if d == nil || d.Kind != kind {
		return nil
	}
	return d
}
