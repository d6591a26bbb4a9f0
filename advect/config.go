package advect

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/braid-sim/advdiff/advect/exact"
	"github.com/braid-sim/advdiff/advect/operators"
	"github.com/braid-sim/advdiff/advect/stepper"
	"github.com/braid-sim/advdiff/advect/trace"
	"github.com/braid-sim/advdiff/advect/transfer"
)

// GridConfig groups the spatial discretization.
type GridConfig struct {
	Order  int     `yaml:"order"`  // 4 or 6
	Points int     `yaml:"points"` // points on the finest grid, including both ends
	Length float64 `yaml:"length"` // domain length L
}

// PhysicsConfig groups the equation coefficients.
type PhysicsConfig struct {
	WaveSpeed float64 `yaml:"wave_speed"`
	Viscosity float64 `yaml:"viscosity"`
}

// BoundaryConfig selects the boundary closure on each side and the Dirichlet
// data treatment inside a Runge-Kutta step.
type BoundaryConfig struct {
	Left  string `yaml:"left"`  // periodic, dirichlet or extrapolation
	Right string `yaml:"right"` // must be periodic iff Left is
	Data  string `yaml:"data"`  // every-stage or full-step
}

// ProblemConfig selects the analytic solution.
type ProblemConfig struct {
	Number int     `yaml:"number"` // 1: travelling damped wave, 2: twilight
	Amp    float64 `yaml:"amp"`
	Phase  float64 `yaml:"phase"`
	Omega  float64 `yaml:"omega"`
}

// TimeConfig describes the finest temporal grid.
type TimeConfig struct {
	Start float64 `yaml:"start"`
	Stop  float64 `yaml:"stop"`
	Steps int     `yaml:"steps"`
	CFL   float64 `yaml:"cfl"`
}

// LevelsConfig controls spatial coarsening across temporal levels.
type LevelsConfig struct {
	Coarsening string  `yaml:"coarsening"`  // none, algebraic or spectral
	RestrCoeff float64 `yaml:"restr_coeff"` // undivided 2nd difference weight in restriction
	ADCoeff    float64 `yaml:"ad_coeff"`    // artificial damping on coarse levels
}

// OutputConfig controls diagnostic writes.
type OutputConfig struct {
	Write     bool   `yaml:"write"`      // checkpoint solutions at CopyLevel
	CopyLevel int    `yaml:"copy_level"` // level whose writes are checkpointed
	Trace     string `yaml:"trace"`      // none, writes or calls
}

// Config is the complete run configuration.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type Config struct {
	Grid     GridConfig     `yaml:"grid"`
	Physics  PhysicsConfig  `yaml:"physics"`
	Boundary BoundaryConfig `yaml:"boundary"`
	Problem  ProblemConfig  `yaml:"problem"`
	Time     TimeConfig     `yaml:"time"`
	Levels   LevelsConfig   `yaml:"levels"`
	Output   OutputConfig   `yaml:"output"`
}

// DefaultConfig returns a periodic travelling-wave run on the unit interval.
func DefaultConfig() *Config {
	return &Config{
		Grid:     GridConfig{Order: 4, Points: 65, Length: 1},
		Physics:  PhysicsConfig{WaveSpeed: 1, Viscosity: 0},
		Boundary: BoundaryConfig{Left: "periodic", Right: "periodic", Data: "every-stage"},
		Problem:  ProblemConfig{Number: exact.TravellingWave, Amp: 1, Omega: 2 * math.Pi},
		Time:     TimeConfig{Start: 0, Stop: 1, Steps: 64, CFL: stepper.DefaultCFL},
		Levels:   LevelsConfig{Coarsening: "none"},
		Output:   OutputConfig{Trace: string(trace.LevelNone)},
	}
}

// LoadConfig reads a YAML file over DefaultConfig. Unknown keys are errors.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := DefaultConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// OperatorParams converts the configuration to operator parameters.
func (c *Config) OperatorParams() (operators.Params, error) {
	left, err := operators.ParseBoundaryType(c.Boundary.Left)
	if err != nil {
		return operators.Params{}, err
	}
	right, err := operators.ParseBoundaryType(c.Boundary.Right)
	if err != nil {
		return operators.Params{}, err
	}
	return operators.Params{
		Order:      c.Grid.Order,
		Left:       left,
		Right:      right,
		Length:     c.Grid.Length,
		WaveSpeed:  c.Physics.WaveSpeed,
		Viscosity:  c.Physics.Viscosity,
		RestrCoeff: c.Levels.RestrCoeff,
		ADCoeff:    c.Levels.ADCoeff,
	}, nil
}

// ExactParams converts the configuration to analytic solution parameters.
func (c *Config) ExactParams() exact.Params {
	return exact.Params{
		Amp:       c.Problem.Amp,
		Phase:     c.Problem.Phase,
		Omega:     c.Problem.Omega,
		WaveSpeed: c.Physics.WaveSpeed,
		Viscosity: c.Physics.Viscosity,
	}
}

// DtFinest is the time step of the finest temporal grid.
func (c *Config) DtFinest() float64 {
	return (c.Time.Stop - c.Time.Start) / float64(c.Time.Steps)
}

// Validate checks every field that the component constructors do not.
func (c *Config) Validate() error {
	p, err := c.OperatorParams()
	if err != nil {
		return err
	}
	if _, err := stepper.ParseBoundaryMode(c.Boundary.Data); err != nil {
		return err
	}
	if _, err := transfer.ParseMode(c.Levels.Coarsening); err != nil {
		return err
	}
	if c.Problem.Number != exact.TravellingWave && c.Problem.Number != exact.Twilight {
		return fmt.Errorf("%w: problem number %d; valid: 1, 2", ErrConfig, c.Problem.Number)
	}
	if p.Left == operators.Periodic {
		periods := c.Problem.Omega * c.Grid.Length / (2 * math.Pi)
		if math.Abs(periods-math.Round(periods)) > 1e-9 {
			return fmt.Errorf("%w: omega*length must be a multiple of 2*pi on a periodic domain, got %g periods", ErrConfig, periods)
		}
	}
	if c.Grid.Points < 2 {
		return fmt.Errorf("%w: grid points must be at least 2, got %d", ErrConfig, c.Grid.Points)
	}
	if !(c.Time.Stop > c.Time.Start) || c.Time.Steps <= 0 {
		return fmt.Errorf("%w: time window [%g, %g] with %d steps", ErrConfig, c.Time.Start, c.Time.Stop, c.Time.Steps)
	}
	if !(c.Time.CFL > 0) {
		return fmt.Errorf("%w: cfl must be positive, got %g", ErrConfig, c.Time.CFL)
	}
	if c.Output.CopyLevel < 0 {
		return fmt.Errorf("%w: copy_level must be non-negative, got %d", ErrConfig, c.Output.CopyLevel)
	}
	if !trace.IsValidLevel(c.Output.Trace) {
		return fmt.Errorf("%w: unknown trace level %q; valid: none, writes, calls", ErrConfig, c.Output.Trace)
	}
	return nil
}
