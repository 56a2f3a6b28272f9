package algorithm

import (
	"math"

	"github.com/fyerfyer/dnacompiler/pkg/activity"
	"github.com/fyerfyer/dnacompiler/pkg/circuit"
	"github.com/fyerfyer/dnacompiler/pkg/logic"
)

// minActivity keeps the on/off ratio finite
const minActivity = 1e-12

// Score rates how well the primary outputs separate their ON and OFF states:
// for each output, log10 of the lowest ON activity over the highest OFF
// activity. The circuit scores as its worst output. Outputs that are constant
// are ignored, and a circuit with no such output scores 0.
func Score(n *circuit.Netlist, le *logic.Evaluation, ae *activity.Evaluation) float64 {
	rtn := 0.0
	found := false
	for _, node := range n.PrimaryOutputs() {
		s, ok := OutputScore(node, le, ae)
		if !ok {
			continue
		}
		if !found || s < rtn {
			rtn = s
			found = true
		}
	}
	return rtn
}

// OutputScore returns the ON/OFF score of one primary output, and false when
// the output never or always evaluates true
func OutputScore(node *circuit.Node, le *logic.Evaluation, ae *activity.Evaluation) (float64, bool) {
	onLow := math.Inf(1)
	offHigh := math.Inf(-1)
	for i := 0; i < le.States().Len(); i++ {
		v, ok := le.Value(node, i)
		if !ok {
			continue
		}
		a, _ := ae.Value(node, i)
		if v {
			onLow = math.Min(onLow, a)
		} else {
			offHigh = math.Max(offHigh, a)
		}
	}
	if math.IsInf(onLow, 1) || math.IsInf(offHigh, -1) {
		return 0, false
	}
	return math.Log10(math.Max(onLow, minActivity) / math.Max(offHigh, minActivity)), true
}
