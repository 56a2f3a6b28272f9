package target

import (
	"fmt"
	"sort"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/pkg/errors"
)

// Function is a named model function evaluated against a context
type Function interface {
	FunctionName() string
	Evaluate(params map[string]float64, ctx *EvaluationContext) (float64, error)
}

// Analytic is a closed-form function over the model parameters and the
// context variables x, input, inputs, state, logic, activity and output
type Analytic struct {
	Name     string
	Equation string
	program  *vm.Program
}

// NewAnalytic compiles an equation against the given parameter names
func NewAnalytic(name, equation string, params map[string]float64) (*Analytic, error) {
	program, err := expr.Compile(equation,
		expr.Env((&EvaluationContext{}).env(params)),
		expr.AsFloat64())
	if err != nil {
		return nil, errors.Wrapf(ErrModel, "function %s: %v", name, err)
	}
	return &Analytic{Name: name, Equation: equation, program: program}, nil
}

// FunctionName returns the function name
func (a *Analytic) FunctionName() string {
	return a.Name
}

// Evaluate runs the compiled equation
func (a *Analytic) Evaluate(params map[string]float64, ctx *EvaluationContext) (float64, error) {
	out, err := expr.Run(a.program, ctx.env(params))
	if err != nil {
		return 0, errors.Wrapf(ErrModel, "function %s: %v", a.Name, err)
	}
	v, ok := out.(float64)
	if !ok {
		return 0, errors.Wrapf(ErrModel, "function %s returned %T", a.Name, out)
	}
	return v, nil
}

// Point is one (x, y) sample of a lookup table
type Point struct {
	X float64
	Y float64
}

// LookupTable is a piecewise linear function over sampled points, clamped to
// the first and last sample outside their range
type LookupTable struct {
	Name     string
	Variable string // Context variable used as x, "x" when empty
	Points   []Point
}

// NewLookupTable creates a lookup table, sorting the points by x
func NewLookupTable(name, variable string, points []Point) (*LookupTable, error) {
	if len(points) == 0 {
		return nil, errors.Wrapf(ErrModel, "lookup table %s has no points", name)
	}
	if variable == "" {
		variable = "x"
	}
	sorted := append([]Point(nil), points...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })
	return &LookupTable{Name: name, Variable: variable, Points: sorted}, nil
}

// FunctionName returns the function name
func (t *LookupTable) FunctionName() string {
	return t.Name
}

// Evaluate interpolates the table at the value of its variable
func (t *LookupTable) Evaluate(params map[string]float64, ctx *EvaluationContext) (float64, error) {
	raw, ok := ctx.env(params)[t.Variable]
	if !ok {
		return 0, errors.Wrapf(ErrModel, "lookup table %s: unknown variable %s", t.Name, t.Variable)
	}
	x, ok := raw.(float64)
	if !ok {
		return 0, errors.Wrapf(ErrModel, "lookup table %s: variable %s is not a number", t.Name, t.Variable)
	}
	return t.At(x), nil
}

// At interpolates the table at x
func (t *LookupTable) At(x float64) float64 {
	pts := t.Points
	if x <= pts[0].X {
		return pts[0].Y
	}
	last := pts[len(pts)-1]
	if x >= last.X {
		return last.Y
	}
	i := sort.Search(len(pts), func(i int) bool { return pts[i].X >= x })
	a, b := pts[i-1], pts[i]
	if b.X == a.X {
		return b.Y
	}
	r := (x - a.X) / (b.X - a.X)
	return a.Y + r*(b.Y-a.Y)
}

// String returns a string representation of the table
func (t *LookupTable) String() string {
	return fmt.Sprintf("%s(%s): %d points", t.Name, t.Variable, len(t.Points))
}
