package target

import (
	"sort"

	"github.com/pkg/errors"
)

// ErrModel is returned when a model function is missing or cannot be evaluated
var ErrModel = errors.New("model error")

// Well known function names
const (
	ResponseFunction = "response_function"
	ToxicityFunction = "toxicity"
)

// CytometryData is one characterised histogram at a given input activity
type CytometryData struct {
	Input  float64
	Bins   []float64
	Counts []float64
}

// Model is the characterised behaviour of a device
type Model struct {
	Name       string
	Parameters map[string]float64
	Functions  map[string]Function
	Cytometry  []*CytometryData // Sorted by input
}

// NewModel creates a model with the given parameters and no functions
func NewModel(name string, params map[string]float64) *Model {
	if params == nil {
		params = make(map[string]float64)
	}
	return &Model{
		Name:       name,
		Parameters: params,
		Functions:  make(map[string]Function),
	}
}

// AddEquation compiles an analytic function against the model parameters
func (m *Model) AddEquation(name, equation string) error {
	f, err := NewAnalytic(name, equation, m.Parameters)
	if err != nil {
		return errors.Wrapf(err, "model %s", m.Name)
	}
	m.Functions[name] = f
	return nil
}

// AddLookupTable adds a piecewise linear function
func (m *Model) AddLookupTable(name, variable string, points []Point) error {
	f, err := NewLookupTable(name, variable, points)
	if err != nil {
		return errors.Wrapf(err, "model %s", m.Name)
	}
	m.Functions[name] = f
	return nil
}

// AddCytometry adds a histogram and keeps the data sorted by input
func (m *Model) AddCytometry(data *CytometryData) error {
	if len(data.Bins) != len(data.Counts) {
		return errors.Wrapf(ErrModel, "model %s: cytometry at %g has %d bins and %d counts",
			m.Name, data.Input, len(data.Bins), len(data.Counts))
	}
	m.Cytometry = append(m.Cytometry, data)
	sort.SliceStable(m.Cytometry, func(i, j int) bool {
		return m.Cytometry[i].Input < m.Cytometry[j].Input
	})
	return nil
}

// Function returns the named function, or nil
func (m *Model) Function(name string) Function {
	if m == nil {
		return nil
	}
	return m.Functions[name]
}

// Evaluate evaluates the named function
func (m *Model) Evaluate(name string, ctx *EvaluationContext) (float64, error) {
	f := m.Function(name)
	if f == nil {
		modelName := ""
		if m != nil {
			modelName = m.Name
		}
		return 0, errors.Wrapf(ErrModel, "model %s has no function %s", modelName, name)
	}
	return f.Evaluate(m.Parameters, ctx)
}
