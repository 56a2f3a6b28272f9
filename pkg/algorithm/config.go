package algorithm

import (
	"github.com/pkg/errors"
)

// Defaults for the annealing schedule
const (
	DefaultSeed            = 21
	DefaultSteps           = 500
	DefaultT0Steps         = 100
	DefaultMaxTemp         = 100.0
	DefaultMinTemp         = 0.001
	DefaultGrowthThreshold = 0.75
)

// Config controls the initial assignment and the annealing search
type Config struct {
	Seed                      int64             // Seed of the single random stream
	Steps                     int               // Annealed iterations
	T0Steps                   int               // Greedy iterations at temperature 0
	MaxTemp                   float64           // Starting temperature
	MinTemp                   float64           // Temperature after Steps iterations
	GrowthThreshold           float64           // Minimum acceptable growth
	UnassignedDrawProbability float64           // Chance of pulling a gate from the unassigned pool when it is non-empty
	InputConstraints          map[string]string // Primary input name -> sensor name
	OutputConstraints         map[string]string // Primary output name -> reporter name
}

// DefaultConfig returns the standard schedule
func DefaultConfig() Config {
	return Config{
		Seed:                      DefaultSeed,
		Steps:                     DefaultSteps,
		T0Steps:                   DefaultT0Steps,
		MaxTemp:                   DefaultMaxTemp,
		MinTemp:                   DefaultMinTemp,
		GrowthThreshold:           DefaultGrowthThreshold,
		UnassignedDrawProbability: 1.0,
		InputConstraints:          make(map[string]string),
		OutputConstraints:         make(map[string]string),
	}
}

// Validate checks the schedule is usable
func (c Config) Validate() error {
	if c.Steps <= 0 {
		return errors.Errorf("steps must be positive, got %d", c.Steps)
	}
	if c.T0Steps < 0 {
		return errors.Errorf("t0 steps must not be negative, got %d", c.T0Steps)
	}
	if c.MinTemp <= 0 || c.MaxTemp <= c.MinTemp {
		return errors.Errorf("temperatures must satisfy 0 < min < max, got %g and %g", c.MinTemp, c.MaxTemp)
	}
	if c.UnassignedDrawProbability < 0 || c.UnassignedDrawProbability > 1 {
		return errors.Errorf("unassigned draw probability must be in [0, 1], got %g", c.UnassignedDrawProbability)
	}
	return nil
}
