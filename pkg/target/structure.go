package target

import (
	"strings"

	"github.com/pkg/errors"
)

// TemplatePrefix marks a device component that stands for one of the
// structure's input slots
const TemplatePrefix = "#"

// Input is a named input slot of a structure
type Input struct {
	Name     string
	PartType string
}

// ComponentKind tags what a structure component refers to
type ComponentKind int

const (
	PartComponent     ComponentKind = iota // A DNA part by name
	TemplateComponent                      // An input slot, resolved during Link
	DeviceComponent                        // A nested structure device
)

// Component is one entry of a structure device's component list
type Component struct {
	Kind   ComponentKind
	Name   string
	Input  *Input           // Set for templates once linked
	Device *StructureDevice // Set for nested devices
}

// NewComponent classifies a raw component name. Names starting with "#" are
// templates; whether a plain name is a part or a device is decided by Link.
func NewComponent(raw string) *Component {
	if strings.HasPrefix(raw, TemplatePrefix) {
		return &Component{Kind: TemplateComponent, Name: strings.TrimPrefix(raw, TemplatePrefix)}
	}
	return &Component{Kind: PartComponent, Name: raw}
}

// StructureDevice is a named, ordered list of components
type StructureDevice struct {
	Name       string
	Components []*Component
}

// NewStructureDevice creates a structure device from raw component names
func NewStructureDevice(name string, components ...string) *StructureDevice {
	d := &StructureDevice{Name: name, Components: make([]*Component, 0, len(components))}
	for _, c := range components {
		d.Components = append(d.Components, NewComponent(c))
	}
	return d
}

// Structure is the physical layout of a device: the input slots it exposes,
// the parts it drives and the devices that make it up
type Structure struct {
	Name    string
	Inputs  []*Input
	Outputs []string
	Devices []*StructureDevice
}

// NewStructure creates an unlinked structure
func NewStructure(name string) *Structure {
	return &Structure{
		Name:    name,
		Inputs:  make([]*Input, 0),
		Outputs: make([]string, 0),
		Devices: make([]*StructureDevice, 0),
	}
}

// InputByName returns the input slot with the given name, or nil
func (s *Structure) InputByName(name string) *Input {
	for _, in := range s.Inputs {
		if in.Name == name {
			return in
		}
	}
	return nil
}

// Link resolves every template component to its input slot, then nests
// top-level devices that are referenced by another device into it
func (s *Structure) Link() error {
	for _, d := range s.Devices {
		for _, c := range d.Components {
			if c.Kind != TemplateComponent {
				continue
			}
			in := s.InputByName(c.Name)
			if in == nil {
				return errors.Errorf("Input %s not found in device %s", c.Name, d.Name)
			}
			c.Input = in
		}
	}

	nested := make(map[*StructureDevice]bool)
	for _, d := range s.Devices {
		for _, c := range d.Components {
			if c.Kind == TemplateComponent {
				continue
			}
			for _, e := range s.Devices {
				if e == d || e.Name != c.Name {
					continue
				}
				c.Kind = DeviceComponent
				c.Device = e
				nested[e] = true
				break
			}
		}
	}

	top := make([]*StructureDevice, 0, len(s.Devices))
	for _, d := range s.Devices {
		if !nested[d] {
			top = append(top, d)
		}
	}
	s.Devices = top
	return nil
}

// DeviceByName searches the nested devices for one with the given name
func (s *Structure) DeviceByName(name string) *StructureDevice {
	for _, d := range s.Devices {
		if d.Name == name {
			return d
		}
		if rtn := d.find(name); rtn != nil {
			return rtn
		}
	}
	return nil
}

func (d *StructureDevice) find(name string) *StructureDevice {
	for _, c := range d.Components {
		if c.Kind != DeviceComponent {
			continue
		}
		if c.Device.Name == name {
			return c.Device
		}
		if rtn := c.Device.find(name); rtn != nil {
			return rtn
		}
	}
	return nil
}
