// Package config loads, validates and watches the local planner's configuration file.
package config

import (
	"fmt"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"go.viam.com/localplanner/logging"
	"go.viam.com/localplanner/motionplan/ackermann"
)

const (
	defaultControllerFrequency = 20.
	defaultSimPeriod           = 0.05
)

// Config is the file form of the planner configuration. The planner parameters sit at the top
// level next to the settings of the host control loop.
type Config struct {
	ackermann.Config

	// ControllerFrequency is the control loop rate in Hz. The planner's sim_period is derived
	// from it and any sim_period given in the file is ignored.
	ControllerFrequency float64 `json:"controller_frequency"`
	// XYGoalTolerance is how close, in meters, the vehicle must get to the end of the plan.
	XYGoalTolerance float64 `json:"xy_goal_tolerance"`
	// Footprint is the vehicle outline in its body frame as [x, y] pairs.
	Footprint [][2]float64 `json:"footprint,omitempty"`
	// RestoreDefaults replaces the incoming configuration with the first one loaded.
	RestoreDefaults bool   `json:"restore_defaults,omitempty"`
	LogLevel        string `json:"log_level,omitempty"`
}

// Default returns the configuration used for anything a file leaves out.
func Default() Config {
	return Config{
		Config:              ackermann.DefaultConfig(),
		ControllerFrequency: defaultControllerFrequency,
		XYGoalTolerance:     0.1,
		Footprint:           [][2]float64{{-0.15, -0.1}, {0.15, -0.1}, {0.15, 0.1}, {-0.15, 0.1}},
		LogLevel:            logging.INFO.String(),
	}
}

// Validate returns every problem with the configuration at once. Sample counts below one are
// not errors since the planner corrects them.
func (cfg *Config) Validate(path string) error {
	var err error
	plannerCfg := cfg.Config
	plannerCfg.SimPeriod = defaultSimPeriod
	err = multierr.Append(err, plannerCfg.Validate())
	if cfg.XYGoalTolerance < 0 {
		err = multierr.Append(err, fmt.Errorf("xy_goal_tolerance must not be negative, got %f", cfg.XYGoalTolerance))
	}
	if len(cfg.Footprint) == 1 || len(cfg.Footprint) == 2 {
		err = multierr.Append(err, fmt.Errorf("footprint needs at least 3 points or none, got %d", len(cfg.Footprint)))
	}
	if _, levelErr := logging.LevelFromString(cfg.LogLevel); levelErr != nil {
		err = multierr.Append(err, levelErr)
	}
	if err != nil {
		return errors.Wrapf(err, "error validating %q", path)
	}
	return nil
}

// FootprintPoints returns the footprint as points in the vehicle's body frame.
func (cfg *Config) FootprintPoints() []r2.Point {
	return lo.Map(cfg.Footprint, func(pt [2]float64, _ int) r2.Point {
		return r2.Point{X: pt[0], Y: pt[1]}
	})
}

// Level returns the configured log level. Validate has already rejected unknown levels.
func (cfg *Config) Level() logging.Level {
	level, err := logging.LevelFromString(cfg.LogLevel)
	if err != nil {
		return logging.INFO
	}
	return level
}

// PlannerConfig returns the parameters the planner runs with, with sim_period derived from the
// controller frequency.
func (cfg *Config) PlannerConfig(logger logging.Logger) ackermann.Config {
	plannerCfg := cfg.Config
	plannerCfg.SimPeriod = SimPeriod(cfg.ControllerFrequency, logger)
	return plannerCfg
}

// SimPeriod converts a controller frequency to the period the planner's dynamic window is sized
// with. Non-positive frequencies fall back to 20Hz.
func SimPeriod(controllerFrequency float64, logger logging.Logger) float64 {
	if controllerFrequency <= 0 {
		logger.Warnf("a controller_frequency of %.2f is not positive, assuming a rate of %.0fHz",
			controllerFrequency, defaultControllerFrequency)
		return defaultSimPeriod
	}
	return 1 / controllerFrequency
}
