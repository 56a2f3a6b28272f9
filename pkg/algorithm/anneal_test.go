package algorithm

import (
	"context"
	"math"
	"testing"

	"github.com/fyerfyer/dnacompiler/pkg/logic"
	"github.com/pkg/errors"
)

var endToEndGates = []gateDef{
	{"G1", "max(0.1, input)", "1.0"},
	{"G2", "input * 0.9", "1.0"},
}

func TestEndToEndAND(t *testing.T) {
	n := andNetlist()
	sa := NewSimulatedAnnealing(n, testLibrary(t, endToEndGates...), DefaultConfig(), quietLogger())

	result, err := sa.Run(context.Background())
	if err != nil {
		t.Fatalf("Failed to run annealing: %v", err)
	}

	if sa.Phase != Done {
		t.Errorf("Expected phase %s, got %s", Done, sa.Phase)
	}
	if result.Stats.Iterations != DefaultSteps+DefaultT0Steps {
		t.Errorf("Expected %d iterations, got %d", DefaultSteps+DefaultT0Steps, result.Stats.Iterations)
	}

	g1 := result.DeviceName(n.NodeByName("g1"))
	g2 := result.DeviceName(n.NodeByName("g2"))
	if g1 == "" || g2 == "" || g1 == g2 {
		t.Errorf("Expected both logic nodes bound to distinct gates, got %q and %q", g1, g2)
	}
	if result.Score < result.Stats.InitialScore {
		t.Errorf("Expected final score %f >= initial score %f", result.Score, result.Stats.InitialScore)
	}
	if result.Score != result.Stats.Trajectory[len(result.Stats.Trajectory)-1] {
		t.Errorf("Expected final score to match the last trajectory entry")
	}

	// Every edge received a structural input slot
	if len(result.Edges) != len(n.Edges) {
		t.Errorf("Expected %d edge bindings, got %d", len(n.Edges), len(result.Edges))
	}
	if got := result.EdgeInput(n.Edges[1]); got != "in2" {
		t.Errorf("Expected e1 to drive in2, got %q", got)
	}
}

func TestDeterministic(t *testing.T) {
	run := func() *Result {
		sa := NewSimulatedAnnealing(andNetlist(), testLibrary(t,
			gateDef{"G1", "max(0.1, input)", "1.0"},
			gateDef{"G2", "input * 0.9", "1.0"},
			gateDef{"G3", "0.05 + 3.0 / (1.0 + input ^ 2)", "1.0"},
			gateDef{"G4", "0.2 + 2.0 / (1.0 + (input / 0.5) ^ 3)", "1.0"},
		), DefaultConfig(), quietLogger())
		result, err := sa.Run(context.Background())
		if err != nil {
			t.Fatalf("Failed to run annealing: %v", err)
		}
		return result
	}

	first, second := run(), run()
	a := first.Assignment.Names(first.Netlist)
	b := second.Assignment.Names(second.Netlist)
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("Node %d: expected %s, got %s", i, a[i], b[i])
		}
	}
	if len(first.Stats.Trajectory) != len(second.Stats.Trajectory) {
		t.Fatalf("Expected equal trajectory lengths")
	}
	for i := range first.Stats.Trajectory {
		if first.Stats.Trajectory[i] != second.Stats.Trajectory[i] {
			t.Fatalf("Trajectories differ at iteration %d", i)
		}
	}
}

func TestToxicityGate(t *testing.T) {
	n := notNetlist()
	lib := testLibrary(t,
		gateDef{"Healthy", "0.1 + 2.0 / (1.0 + input ^ 2)", "1.0"},
		gateDef{"Toxic", "0.01 + 3.0 / (1.0 + input ^ 2)", "0.5"},
	)
	cfg := DefaultConfig()
	sa := NewSimulatedAnnealing(n, lib, cfg, quietLogger())

	healthy := false
	sa.Progress = func(iteration, total int) {
		growth := sa.Toxicity.MinimumGrowth()
		if healthy && growth < cfg.GrowthThreshold {
			t.Errorf("Iteration %d: growth dropped to %f after satisfying the threshold", iteration, growth)
		}
		if growth >= cfg.GrowthThreshold {
			healthy = true
		}
	}

	result, err := sa.Run(context.Background())
	if err != nil {
		t.Fatalf("Failed to run annealing: %v", err)
	}
	if got := result.DeviceName(n.NodeByName("g")); got != "Healthy" {
		t.Errorf("Expected the toxic gate to be rejected, got %s", got)
	}
	if result.Toxicity.MinimumGrowth() < cfg.GrowthThreshold {
		t.Errorf("Expected final growth above threshold, got %f", result.Toxicity.MinimumGrowth())
	}
	if result.Stats.ToxicityRejected == 0 {
		t.Errorf("Expected some moves to be rejected by the growth threshold")
	}
}

func TestRecoveringGrowthIsAccepted(t *testing.T) {
	n := notNetlist()
	lib := testLibrary(t,
		gateDef{"Healthy", "0.1 + 2.0 / (1.0 + input ^ 2)", "1.0"},
		gateDef{"Toxic", "0.01 + 3.0 / (1.0 + input ^ 2)", "0.5"},
	)
	sa := NewSimulatedAnnealing(n, lib, DefaultConfig(), quietLogger())

	le, err := logic.Evaluate(n)
	if err != nil {
		t.Fatalf("Failed to evaluate logic: %v", err)
	}
	sa.Logic = le
	if err := sa.assignInputNodes(); err != nil {
		t.Fatalf("Failed to assign inputs: %v", err)
	}
	if err := sa.assignOutputNodes(); err != nil {
		t.Fatalf("Failed to assign outputs: %v", err)
	}

	// Start from the gate that scores better but fails the growth threshold
	g := n.NodeByName("g")
	toxic := lib.GateByName("Toxic")
	sa.Assignment.Set(g, toxic)
	if err := sa.Gates.Assign(toxic); err != nil {
		t.Fatalf("Failed to assign gate: %v", err)
	}
	if err := sa.evaluate(); err != nil {
		t.Fatalf("Failed to evaluate assignment: %v", err)
	}
	sa.eligible = len(n.LogicNodes())

	before := sa.score
	if growth := sa.Toxicity.MinimumGrowth(); growth >= sa.Config.GrowthThreshold {
		t.Fatalf("Expected initial growth below threshold, got %f", growth)
	}

	if err := sa.step(0); err != nil {
		t.Fatalf("Failed to step: %v", err)
	}

	if got := sa.Assignment.Get(g).Name; got != "Healthy" {
		t.Errorf("Expected the healthier gate to be accepted, got %s", got)
	}
	if sa.score >= before {
		t.Errorf("Expected the accepted move to score lower, got %f from %f", sa.score, before)
	}
	if sa.Stats.ToxicityAccepted != 1 {
		t.Errorf("Expected 1 move accepted by growth, got %d", sa.Stats.ToxicityAccepted)
	}
	if sa.Stats.Accepted != 0 || sa.Stats.Rejected != 0 {
		t.Errorf("Expected no score decisions, got %d accepted and %d rejected", sa.Stats.Accepted, sa.Stats.Rejected)
	}
	if growth := sa.Toxicity.MinimumGrowth(); growth < sa.Config.GrowthThreshold {
		t.Errorf("Expected growth above threshold, got %f", growth)
	}
}

func TestZeroTemperatureTies(t *testing.T) {
	if !Accept(1.0, 1.0, 0, 0.999) {
		t.Errorf("Expected a tie to be accepted at T=0")
	}
	if !Accept(1.0, 1.5, 0, 0.999) {
		t.Errorf("Expected an improvement to be accepted at T=0")
	}
	if Accept(1.0, 0.9, 0, 0) {
		t.Errorf("Expected a worse score to be rejected at T=0")
	}
	if !Accept(1.0, 0.9, 100, 0.5) {
		t.Errorf("Expected a slightly worse score to be accepted at high temperature")
	}

	// Identical gates always tie, so every move in the tail is accepted
	cfg := DefaultConfig()
	cfg.Steps = 1
	cfg.T0Steps = 20
	sa := NewSimulatedAnnealing(andNetlist(), testLibrary(t,
		gateDef{"A", "input * 0.5 + 0.01", "1.0"},
		gateDef{"B", "input * 0.5 + 0.01", "1.0"},
	), cfg, quietLogger())
	result, err := sa.Run(context.Background())
	if err != nil {
		t.Fatalf("Failed to run annealing: %v", err)
	}
	if result.Stats.Accepted != 21 || result.Stats.Rejected != 0 {
		t.Errorf("Expected 21 accepted and 0 rejected moves, got %d and %d", result.Stats.Accepted, result.Stats.Rejected)
	}
}

func TestTemperatureSchedule(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.Temperature(0); math.Abs(got-100) > 1e-9 {
		t.Errorf("Expected T(0)=100, got %f", got)
	}
	if got := cfg.Temperature(250); math.Abs(got-math.Pow(10, -0.5)) > 1e-9 {
		t.Errorf("Expected T(250)=10^-0.5, got %f", got)
	}
	if got := cfg.Temperature(DefaultSteps); got != 0 {
		t.Errorf("Expected T=0 after the annealed steps, got %f", got)
	}
	for j := 1; j < DefaultSteps; j++ {
		if cfg.Temperature(j) >= cfg.Temperature(j-1) {
			t.Fatalf("Expected temperature to decrease at step %d", j)
		}
	}
}

func TestInsufficientGates(t *testing.T) {
	sa := NewSimulatedAnnealing(andNetlist(), testLibrary(t, endToEndGates[0]), DefaultConfig(), quietLogger())
	_, err := sa.Run(context.Background())
	if !errors.Is(err, ErrInsufficientLibrary) {
		t.Errorf("Expected ErrInsufficientLibrary, got %v", err)
	}
	if sa.Phase != OutputAssigned {
		t.Errorf("Expected to stop at %s, got %s", OutputAssigned, sa.Phase)
	}
}

func TestInsufficientSensors(t *testing.T) {
	cfg := DefaultConfig()
	// Reserving two sensors leaves one for the unconstrained input
	cfg.InputConstraints = map[string]string{"a": "TetR_sensor", "c": "AraC_sensor"}
	sa := NewSimulatedAnnealing(andNetlist(), testLibrary(t, endToEndGates...), cfg, quietLogger())
	if _, err := sa.Run(context.Background()); err != nil {
		t.Fatalf("Expected one free sensor to be enough, got %v", err)
	}

	cfg.InputConstraints = map[string]string{"x": "LacI_sensor", "y": "TetR_sensor", "z": "AraC_sensor"}
	sa = NewSimulatedAnnealing(andNetlist(), testLibrary(t, endToEndGates...), cfg, quietLogger())
	_, err := sa.Run(context.Background())
	if !errors.Is(err, ErrInsufficientLibrary) {
		t.Errorf("Expected ErrInsufficientLibrary, got %v", err)
	}
}

func TestInputConstraints(t *testing.T) {
	n := andNetlist()
	cfg := DefaultConfig()
	cfg.InputConstraints = map[string]string{"b": "LacI_sensor"}
	cfg.OutputConstraints = map[string]string{"out": "RFP_reporter"}
	sa := NewSimulatedAnnealing(n, testLibrary(t, endToEndGates...), cfg, quietLogger())
	result, err := sa.Run(context.Background())
	if err != nil {
		t.Fatalf("Failed to run annealing: %v", err)
	}
	if got := result.DeviceName(n.NodeByName("b")); got != "LacI_sensor" {
		t.Errorf("Expected b bound to LacI_sensor, got %s", got)
	}
	// LacI is reserved, so a takes the next sensor in library order
	if got := result.DeviceName(n.NodeByName("a")); got != "TetR_sensor" {
		t.Errorf("Expected a bound to TetR_sensor, got %s", got)
	}
	if got := result.DeviceName(n.NodeByName("out")); got != "RFP_reporter" {
		t.Errorf("Expected out bound to RFP_reporter, got %s", got)
	}

	cfg.InputConstraints = map[string]string{"a": "missing_sensor"}
	sa = NewSimulatedAnnealing(andNetlist(), testLibrary(t, endToEndGates...), cfg, quietLogger())
	if _, err := sa.Run(context.Background()); err == nil {
		t.Errorf("Expected error for unknown constrained sensor")
	}
}

func TestSpareGatesArePulledFromPool(t *testing.T) {
	n := notNetlist()
	lib := testLibrary(t,
		gateDef{"Weak", "0.5", "1.0"},
		gateDef{"Strong", "0.01 + 3.0 / (1.0 + (input / 0.1) ^ 2)", "1.0"},
		gateDef{"Flat", "1.0", "1.0"},
	)
	sa := NewSimulatedAnnealing(n, lib, DefaultConfig(), quietLogger())
	result, err := sa.Run(context.Background())
	if err != nil {
		t.Fatalf("Failed to run annealing: %v", err)
	}
	if got := result.DeviceName(n.NodeByName("g")); got != "Strong" {
		t.Errorf("Expected the only responsive gate to win, got %s", got)
	}
	if sa.Gates.NumAssigned() != 1 || sa.Gates.NumUnassigned() != 2 {
		t.Errorf("Expected 1 assigned and 2 unassigned gates, got %d and %d",
			sa.Gates.NumAssigned(), sa.Gates.NumUnassigned())
	}
}

func TestCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sa := NewSimulatedAnnealing(andNetlist(), testLibrary(t, endToEndGates...), DefaultConfig(), quietLogger())
	_, err := sa.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if sa.Stats.Iterations != 0 {
		t.Errorf("Expected no iterations after cancellation, got %d", sa.Stats.Iterations)
	}
}

func TestInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinTemp = 0
	sa := NewSimulatedAnnealing(andNetlist(), testLibrary(t, endToEndGates...), cfg, quietLogger())
	if _, err := sa.Run(context.Background()); err == nil {
		t.Errorf("Expected error for invalid temperatures")
	}
}
