package utils

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fyerfyer/dnacompiler/pkg/circuit"
	"github.com/fyerfyer/dnacompiler/pkg/target"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// NetlistJSON is the on-disk form of a netlist. DeviceName and Input are
// only set in mapped output netlists.
type NetlistJSON struct {
	Name          string     `json:"name"`
	InputFilename string     `json:"inputFilename,omitempty"`
	Nodes         []NodeJSON `json:"nodes"`
	Edges         []EdgeJSON `json:"edges"`
}

type NodeJSON struct {
	Name       string `json:"name"`
	NodeType   string `json:"nodeType"`
	DeviceName string `json:"deviceName,omitempty"`
}

type EdgeJSON struct {
	Name  string `json:"name"`
	Src   string `json:"src"`
	Dst   string `json:"dst"`
	Input string `json:"input,omitempty"`
}

// ReadNetlist reads a netlist, choosing the format from the file extension
func ReadNetlist(filename string) (*circuit.Netlist, error) {
	if strings.EqualFold(filepath.Ext(filename), ".bench") {
		return ParseBenchFile(filename)
	}
	return ReadNetlistJSON(filename)
}

// ReadNetlistJSON reads a JSON netlist file
func ReadNetlistJSON(filename string) (*circuit.Netlist, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open file")
	}
	defer file.Close()

	n, err := DecodeNetlist(file)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", filename)
	}
	n.InputFile = filename
	return n, nil
}

// DecodeNetlist decodes and validates a JSON netlist
func DecodeNetlist(r io.Reader) (*circuit.Netlist, error) {
	var data NetlistJSON
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errors.Wrap(err, "decoding netlist")
	}

	n := circuit.NewNetlist(data.Name)
	for _, node := range data.Nodes {
		t, err := circuit.ParseNodeType(node.NodeType)
		if err != nil {
			return nil, errors.Wrapf(err, "node %s", node.Name)
		}
		if n.NodeByName(node.Name) != nil {
			return nil, errors.Wrapf(circuit.ErrInvalidNetlist, "duplicate node name %s", node.Name)
		}
		n.AddNode(node.Name, t)
	}
	for _, e := range data.Edges {
		if _, err := n.Connect(e.Name, e.Src, e.Dst); err != nil {
			return nil, errors.Wrap(circuit.ErrInvalidNetlist, err.Error())
		}
	}
	if err := n.Validate(); err != nil {
		return nil, err
	}
	return n, nil
}

// Bindings resolves the device and input slot chosen for the netlist
type Bindings interface {
	DeviceName(node *circuit.Node) string
	EdgeInput(edge *circuit.Edge) string
}

// EncodeNetlist writes the netlist as JSON, with the device of every node and
// the input slot of every edge when b is non-nil
func EncodeNetlist(w io.Writer, n *circuit.Netlist, b Bindings) error {
	data := NetlistJSON{
		Name:          n.Name,
		InputFilename: n.InputFile,
		Nodes:         make([]NodeJSON, 0, len(n.Nodes)),
		Edges:         make([]EdgeJSON, 0, len(n.Edges)),
	}
	for _, node := range n.Nodes {
		nj := NodeJSON{Name: node.Name, NodeType: node.Type.String()}
		if b != nil {
			nj.DeviceName = b.DeviceName(node)
		}
		data.Nodes = append(data.Nodes, nj)
	}
	for _, e := range n.Edges {
		ej := EdgeJSON{Name: e.Name, Src: e.Src.Name, Dst: e.Dst.Name}
		if b != nil {
			ej.Input = b.EdgeInput(e)
		}
		data.Edges = append(data.Edges, ej)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// Constraints pins primary nodes to named devices
type Constraints struct {
	Inputs  map[string]string // Primary input -> sensor
	Outputs map[string]string // Primary output -> reporter
}

type constraintsJSON struct {
	InputConstraints []struct {
		SensorMap map[string]string `json:"sensor_map"`
	} `json:"input_constraints"`
	OutputConstraints []struct {
		ReporterMap map[string]string `json:"reporter_map"`
	} `json:"output_constraints"`
}

// ReadConstraints reads a netlist constraint file. Later maps override
// earlier ones for the same node.
func ReadConstraints(filename string) (*Constraints, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open file")
	}
	defer file.Close()

	c, err := DecodeConstraints(file)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", filename)
	}
	return c, nil
}

// DecodeConstraints decodes a netlist constraint document
func DecodeConstraints(r io.Reader) (*Constraints, error) {
	var data constraintsJSON
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errors.Wrap(err, "decoding constraints")
	}
	c := &Constraints{
		Inputs:  make(map[string]string),
		Outputs: make(map[string]string),
	}
	for _, ic := range data.InputConstraints {
		for node, sensor := range ic.SensorMap {
			c.Inputs[node] = sensor
		}
	}
	for _, oc := range data.OutputConstraints {
		for node, reporter := range oc.ReporterMap {
			c.Outputs[node] = reporter
		}
	}
	return c, nil
}

type libraryJSON struct {
	Gates         []deviceJSON `json:"gates"`
	InputSensors  []deviceJSON `json:"input_sensors"`
	OutputDevices []deviceJSON `json:"output_devices"`
}

type deviceJSON struct {
	Name      string        `json:"name"`
	Group     string        `json:"group"`
	Structure structureJSON `json:"structure"`
	Model     modelJSON     `json:"model"`
}

type structureJSON struct {
	Name   string `json:"name"`
	Inputs []struct {
		Name     string `json:"name"`
		PartType string `json:"part_type"`
	} `json:"inputs"`
	Outputs []string `json:"outputs"`
	Devices []struct {
		Name       string   `json:"name"`
		Components []string `json:"components"`
	} `json:"devices"`
}

type modelJSON struct {
	Name       string                  `json:"name"`
	Parameters map[string]float64      `json:"parameters"`
	Functions  map[string]functionJSON `json:"functions"`
	Cytometry  []struct {
		Input  float64   `json:"input"`
		Bins   []float64 `json:"bins"`
		Counts []float64 `json:"counts"`
	} `json:"cytometry"`
}

// functionJSON is either an equation or a lookup table
type functionJSON struct {
	Equation string `json:"equation"`
	Variable string `json:"variable"`
	Table    []struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	} `json:"table"`
}

// ReadLibrary reads a device library file
func ReadLibrary(filename string) (*target.Library, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open file")
	}
	defer file.Close()

	lib, err := DecodeLibrary(file)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", filename)
	}
	return lib, nil
}

// DecodeLibrary decodes a device library, compiling every model function and
// linking every structure
func DecodeLibrary(r io.Reader) (*target.Library, error) {
	var data libraryJSON
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errors.Wrap(err, "decoding library")
	}

	lib := target.NewLibrary()
	groups := []struct {
		kind    target.Kind
		devices []deviceJSON
	}{
		{target.InputSensorKind, data.InputSensors},
		{target.OutputDeviceKind, data.OutputDevices},
		{target.GateKind, data.Gates},
	}
	for _, g := range groups {
		for _, dj := range g.devices {
			d, err := buildDevice(g.kind, dj)
			if err != nil {
				return nil, errors.Wrapf(err, "%s %s", g.kind, dj.Name)
			}
			if err := lib.Add(d); err != nil {
				return nil, err
			}
		}
	}
	return lib, nil
}

func buildDevice(kind target.Kind, dj deviceJSON) (*target.Device, error) {
	s := target.NewStructure(dj.Structure.Name)
	for _, in := range dj.Structure.Inputs {
		s.Inputs = append(s.Inputs, &target.Input{Name: in.Name, PartType: in.PartType})
	}
	s.Outputs = append(s.Outputs, dj.Structure.Outputs...)
	for _, sd := range dj.Structure.Devices {
		s.Devices = append(s.Devices, target.NewStructureDevice(sd.Name, sd.Components...))
	}
	if err := s.Link(); err != nil {
		return nil, err
	}

	m, err := buildModel(dj.Model)
	if err != nil {
		return nil, err
	}

	switch kind {
	case target.InputSensorKind:
		return target.NewInputSensor(dj.Name, s, m), nil
	case target.OutputDeviceKind:
		return target.NewOutputDevice(dj.Name, s, m), nil
	default:
		return target.NewGate(dj.Name, dj.Group, s, m), nil
	}
}

func buildModel(mj modelJSON) (*target.Model, error) {
	m := target.NewModel(mj.Name, mj.Parameters)
	for name, fj := range mj.Functions {
		var err error
		switch {
		case fj.Equation != "":
			err = m.AddEquation(name, fj.Equation)
		case len(fj.Table) > 0:
			points := make([]target.Point, 0, len(fj.Table))
			for _, p := range fj.Table {
				points = append(points, target.Point{X: p.X, Y: p.Y})
			}
			err = m.AddLookupTable(name, fj.Variable, points)
		default:
			err = errors.Wrapf(target.ErrModel, "function %s has neither an equation nor a table", name)
		}
		if err != nil {
			return nil, err
		}
	}
	for _, cj := range mj.Cytometry {
		data := &target.CytometryData{Input: cj.Input, Bins: cj.Bins, Counts: cj.Counts}
		if err := m.AddCytometry(data); err != nil {
			return nil, err
		}
	}
	return m, nil
}
