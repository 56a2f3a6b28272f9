package algorithm

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/fyerfyer/dnacompiler/pkg/activity"
	"github.com/fyerfyer/dnacompiler/pkg/circuit"
	"github.com/fyerfyer/dnacompiler/pkg/logic"
	"github.com/fyerfyer/dnacompiler/pkg/target"
	"github.com/fyerfyer/dnacompiler/pkg/toxicity"
	"github.com/fyerfyer/dnacompiler/pkg/utils"
	"github.com/pkg/errors"
)

// Stats contains statistics about the annealing run
type Stats struct {
	Iterations       int           // Iterations performed
	Accepted         int           // Moves accepted by score
	Rejected         int           // Moves rejected by score
	ToxicityAccepted int           // Moves accepted because they raised growth above a failing prior
	ToxicityRejected int           // Moves reverted by the growth threshold
	InitialScore     float64       // Score of the initial random assignment
	BestScore        float64       // Highest score held by the assignment
	FinalScore       float64       // Score of the final assignment
	Trajectory       []float64     // Score held after every iteration
	TotalTime        time.Duration // Total execution time
}

// SimulatedAnnealing maps a netlist onto a device library. All random draws
// come from a single stream seeded from Config.Seed, so a run is fully
// determined by the netlist, the library and the config.
type SimulatedAnnealing struct {
	Netlist    *circuit.Netlist
	Library    *target.Library
	Config     Config
	Logger     *utils.Logger
	Phase      Phase
	Assignment *Assignment
	Gates      *GateManager
	Logic      *logic.Evaluation
	Activity   *activity.Evaluation
	Toxicity   *toxicity.Evaluation
	Stats      Stats
	Progress   func(iteration, total int) // Called after every iteration, if set
	rng        *rand.Rand
	score      float64 // Score of the current assignment
	eligible   int     // Number of logic nodes
}

// NewSimulatedAnnealing creates a mapper for the netlist
func NewSimulatedAnnealing(n *circuit.Netlist, lib *target.Library, cfg Config, logger *utils.Logger) *SimulatedAnnealing {
	return &SimulatedAnnealing{
		Netlist:    n,
		Library:    lib,
		Config:     cfg,
		Logger:     logger,
		Phase:      Init,
		Assignment: NewAssignment(),
		Gates:      NewGateManager(lib.Gates),
		rng:        rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Run assigns sensors, reporters and gates, anneals the gate assignment and
// resolves the final bindings. Cancelling ctx stops the search between
// iterations; the assignment up to that point matches an uncancelled run.
func (s *SimulatedAnnealing) Run(ctx context.Context) (*Result, error) {
	startTime := time.Now()
	s.Stats = Stats{}

	if err := s.Config.Validate(); err != nil {
		return nil, err
	}

	s.Logger.Info("Mapping netlist %s onto %d gates", s.Netlist.Name, len(s.Library.Gates))
	s.Logger.Indent()
	defer s.Logger.Outdent()

	le, err := logic.Evaluate(s.Netlist)
	if err != nil {
		return nil, errors.Wrap(err, "logic evaluation")
	}
	s.Logic = le
	s.Logger.Debug("%s", le)

	if err := s.assignInputNodes(); err != nil {
		return nil, err
	}
	s.Phase = InputAssigned
	if err := s.assignOutputNodes(); err != nil {
		return nil, err
	}
	s.Phase = OutputAssigned
	if err := s.assignLogicNodes(); err != nil {
		return nil, err
	}
	s.Phase = LogicAssigned

	if err := s.evaluate(); err != nil {
		return nil, err
	}
	s.Stats.InitialScore = s.score
	s.Stats.BestScore = s.score
	s.Logger.Info("Initial score: %.4f, minimum growth %.2f", s.score, s.Toxicity.MinimumGrowth())

	s.Phase = Annealing
	if err := s.anneal(ctx); err != nil {
		return nil, err
	}

	result, err := NewResult(s.Netlist, s.Assignment)
	if err != nil {
		return nil, err
	}
	s.Phase = Done

	s.Stats.FinalScore = s.score
	s.Stats.TotalTime = time.Since(startTime)
	result.Score = s.score
	result.Logic = s.Logic
	result.Activity = s.Activity
	result.Toxicity = s.Toxicity
	result.Stats = s.Stats
	s.logStats()
	return result, nil
}

// evaluate replaces the current activity and toxicity with a full evaluation
// of the assignment
func (s *SimulatedAnnealing) evaluate() error {
	ae, te, err := s.evaluateAssignment()
	if err != nil {
		return err
	}
	s.Activity, s.Toxicity = ae, te
	s.score = Score(s.Netlist, s.Logic, ae)
	return nil
}

func (s *SimulatedAnnealing) evaluateAssignment() (*activity.Evaluation, *toxicity.Evaluation, error) {
	ae, err := activity.Evaluate(s.Netlist, s.Logic, s.Assignment)
	if err != nil {
		return nil, nil, errors.Wrap(err, "activity evaluation")
	}
	te, err := toxicity.Evaluate(s.Netlist, ae, s.Assignment)
	if err != nil {
		return nil, nil, errors.Wrap(err, "toxicity evaluation")
	}
	return ae, te, nil
}

// Temperature returns the temperature of iteration j: a log10 geometric decay
// from MaxTemp to MinTemp over Steps, then 0
func (c Config) Temperature(j int) float64 {
	if j >= c.Steps {
		return 0
	}
	logMax := math.Log10(c.MaxTemp)
	logMin := math.Log10(c.MinTemp)
	logInc := (logMax - logMin) / float64(c.Steps)
	return math.Pow(10, logMax-float64(j)*logInc)
}

// Accept decides a scored move. At temperature 0 the move is accepted iff it
// does not lower the score; otherwise iff u < exp((after-before)/temp).
func Accept(before, after, temp, u float64) bool {
	if temp == 0 {
		return after >= before
	}
	return u < math.Exp((after-before)/temp)
}

func (s *SimulatedAnnealing) anneal(ctx context.Context) error {
	total := s.Config.Steps + s.Config.T0Steps
	s.eligible = len(s.Netlist.LogicNodes())
	if s.eligible == 0 || (s.eligible < 2 && s.Gates.NumUnassigned() == 0) {
		s.Logger.Warning("No gate moves possible with %d logic nodes and %d spare gates, skipping annealing",
			s.eligible, s.Gates.NumUnassigned())
		return nil
	}

	for j := 0; j < total; j++ {
		if err := ctx.Err(); err != nil {
			s.Logger.Warning("Annealing cancelled after %d iterations", j)
			return err
		}

		temp := s.Config.Temperature(j)
		if j%100 == 0 {
			s.Logger.Anneal("iteration %d/%d T=%.4g score %.4f", j, total, temp, s.score)
		}
		if err := s.step(temp); err != nil {
			return err
		}

		s.Stats.Iterations++
		s.Stats.Trajectory = append(s.Stats.Trajectory, s.score)
		if s.score > s.Stats.BestScore {
			s.Stats.BestScore = s.score
		}
		if s.Progress != nil {
			s.Progress(j+1, total)
		}
	}
	return nil
}

// step runs one iteration at the given temperature
func (s *SimulatedAnnealing) step(temp float64) error {
	before := s.score
	m := s.pickMove()
	if m.IsPoolMove() {
		s.Logger.Trace("pull %s into %s, releasing %s", m.FromGate.Name, m.To.Name, m.ToGate.Name)
	} else {
		s.Logger.Trace("swap %s (%s) with %s (%s)", m.From.Name, m.FromGate.Name, m.To.Name, m.ToGate.Name)
	}
	if err := m.Apply(s.Assignment, s.Gates); err != nil {
		return err
	}

	ae, te, err := s.evaluateAssignment()
	if err != nil {
		return err
	}
	after := Score(s.Netlist, s.Logic, ae)

	priorGrowth := s.Toxicity.MinimumGrowth()
	growth := te.MinimumGrowth()
	threshold := s.Config.GrowthThreshold
	if priorGrowth < threshold {
		if growth > priorGrowth {
			s.Logger.Evaluation("T=%.4g growth %.2f -> %.2f, accepted", temp, priorGrowth, growth)
			s.Stats.ToxicityAccepted++
			s.commit(ae, te, after)
			return nil
		}
		s.Stats.ToxicityRejected++
		return m.Revert(s.Assignment, s.Gates)
	} else if growth < threshold {
		s.Logger.Evaluation("T=%.4g growth %.2f below threshold, reverted", temp, growth)
		s.Stats.ToxicityRejected++
		return m.Revert(s.Assignment, s.Gates)
	}

	u := s.rng.Float64()
	if Accept(before, after, temp, u) {
		s.Logger.Evaluation("T=%.4g score %.4f -> %.4f, accepted", temp, before, after)
		s.Stats.Accepted++
		s.commit(ae, te, after)
		return nil
	}
	s.Logger.Evaluation("T=%.4g score %.4f -> %.4f, rejected", temp, before, after)
	s.Stats.Rejected++
	return m.Revert(s.Assignment, s.Gates)
}

func (s *SimulatedAnnealing) commit(ae *activity.Evaluation, te *toxicity.Evaluation, score float64) {
	s.Activity = ae
	s.Toxicity = te
	s.score = score
}

// pickMove proposes a move. When spare gates exist one is pulled into a
// random logic node, otherwise two distinct logic nodes swap gates.
func (s *SimulatedAnnealing) pickMove() Move {
	var m Move
	// A single logic node has no swap partner
	if s.Gates.NumUnassigned() > 0 && (s.eligible < 2 || s.drawFromPool()) {
		m.FromGate = s.Gates.RandomUnassigned(s.rng)
	} else {
		m.From = s.randomLogicNode()
		m.FromGate = s.Assignment.Get(m.From)
	}
	for m.To == nil || m.To == m.From {
		m.To = s.randomLogicNode()
	}
	m.ToGate = s.Assignment.Get(m.To)
	return m
}

// drawFromPool decides whether a pool move is attempted. A probability of 1
// consumes no draw.
func (s *SimulatedAnnealing) drawFromPool() bool {
	p := s.Config.UnassignedDrawProbability
	if p >= 1 {
		return true
	}
	return s.rng.Float64() < p
}

// randomLogicNode samples vertices uniformly until it hits a logic node
func (s *SimulatedAnnealing) randomLogicNode() *circuit.Node {
	for {
		node := s.Netlist.VertexAt(s.rng.Intn(s.Netlist.NumVertex()))
		if node.IsLogic() {
			return node
		}
	}
}

// logStats logs the current statistics
func (s *SimulatedAnnealing) logStats() {
	s.Logger.Info("Annealing statistics:")
	s.Logger.Info("- Iterations: %d", s.Stats.Iterations)
	s.Logger.Info("- Accepted / rejected: %d / %d", s.Stats.Accepted, s.Stats.Rejected)
	s.Logger.Info("- Growth accepted / rejected: %d / %d", s.Stats.ToxicityAccepted, s.Stats.ToxicityRejected)
	s.Logger.Info("- Initial / best / final score: %.4f / %.4f / %.4f",
		s.Stats.InitialScore, s.Stats.BestScore, s.Stats.FinalScore)
	s.Logger.Info("- Total time: %v", s.Stats.TotalTime)
}
