package target

import (
	"github.com/fyerfyer/dnacompiler/pkg/circuit"
)

// EvaluationContext carries what a model function may depend on while it is
// evaluated for one node in one state
type EvaluationContext struct {
	Node     *circuit.Node
	State    int       // State index
	Inputs   []float64 // Activities of the node's predecessors, in in-edge order
	Level    float64   // High/low activity sentinel of a primary input in this state
	Logic    bool      // Truth value of the node in this state
	Activity float64   // Activity of the node itself, set for toxicity
}

// Input returns the summed activity of the node's predecessors
func (c *EvaluationContext) Input() float64 {
	sum := 0.0
	for _, v := range c.Inputs {
		sum += v
	}
	return sum
}

// env builds the variable environment for an expression. Parameters are
// shadowed by the context variables of the same name.
func (c *EvaluationContext) env(params map[string]float64) map[string]any {
	env := make(map[string]any, len(params)+8)
	for k, v := range params {
		env[k] = v
	}
	if c == nil {
		c = &EvaluationContext{}
	}
	logic := 0.0
	if c.Logic {
		logic = 1.0
	}
	input := c.Input()
	inputs := c.Inputs
	if inputs == nil {
		inputs = []float64{}
	}
	env["x"] = input
	env["input"] = input
	env["inputs"] = inputs
	env["state"] = c.Level
	env["logic"] = logic
	env["activity"] = c.Activity
	env["output"] = c.Activity
	return env
}

// Binder resolves the device bound to a node, returning nil when the node is
// unbound
type Binder interface {
	DeviceOf(node *circuit.Node) Assignable
}
