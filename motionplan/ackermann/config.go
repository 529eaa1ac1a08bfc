package ackermann

import (
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

const defaultSimPeriod = 0.05

// Config is the set of tunables read once at the start of every planning cycle.
type Config struct {
	// Velocity limits in m/s. Nonzero commands are never smaller in magnitude than MinVelX.
	MaxVelX float64 `json:"max_vel_x" mapstructure:"max_vel_x"`
	MinVelX float64 `json:"min_vel_x" mapstructure:"min_vel_x"`
	// MinTurnRadius bounds the yaw rate to |vx| / MinTurnRadius.
	MinTurnRadius float64 `json:"min_turn_radius" mapstructure:"min_turn_radius"`

	SimTime        float64 `json:"sim_time" mapstructure:"sim_time"`
	SimGranularity float64 `json:"sim_granularity" mapstructure:"sim_granularity"`

	PathDistBias float64 `json:"path_distance_bias" mapstructure:"path_distance_bias"`
	GoalDistBias float64 `json:"goal_distance_bias" mapstructure:"goal_distance_bias"`
	OccDistBias  float64 `json:"occdist_scale" mapstructure:"occdist_scale"`

	AccLimX              float64 `json:"acc_lim_x" mapstructure:"acc_lim_x"`
	ForwardPointDistance float64 `json:"forward_point_distance" mapstructure:"forward_point_distance"`

	ScalingSpeed     float64 `json:"scaling_speed" mapstructure:"scaling_speed"`
	MaxScalingFactor float64 `json:"max_scaling_factor" mapstructure:"max_scaling_factor"`

	VxSamples     int `json:"vx_samples" mapstructure:"vx_samples"`
	RadiusSamples int `json:"radius_samples" mapstructure:"radius_samples"`

	OscillationResetDist float64 `json:"oscillation_reset_dist" mapstructure:"oscillation_reset_dist"`
	// OscillationRotation also guards against yaw rate sign flips. Off by default since steering
	// left and right in quick succession is normal for a car-like vehicle.
	OscillationRotation bool `json:"oscillation_rotation" mapstructure:"oscillation_rotation"`
	PenalizeNegativeX   bool `json:"penalize_negative_x" mapstructure:"penalize_negative_x"`

	// SimPeriod is the control loop period in seconds, used to size the dynamic window.
	SimPeriod float64 `json:"sim_period" mapstructure:"sim_period"`
}

// DefaultConfig returns the configuration the planner starts with when nothing is supplied.
func DefaultConfig() Config {
	return Config{
		MaxVelX:              0.5,
		MinVelX:              0.1,
		MinTurnRadius:        1.0,
		SimTime:              1.7,
		SimGranularity:       0.025,
		PathDistBias:         0.6,
		GoalDistBias:         0.8,
		OccDistBias:          0.01,
		AccLimX:              2.5,
		ForwardPointDistance: 0.325,
		ScalingSpeed:         0.25,
		MaxScalingFactor:     0.2,
		VxSamples:            3,
		RadiusSamples:        10,
		OscillationResetDist: 0.05,
		PenalizeNegativeX:    true,
		SimPeriod:            defaultSimPeriod,
	}
}

// Coerce corrects values the planner can still run with and returns a description of every
// correction made. Sample counts below one become one.
func (cfg *Config) Coerce() []error {
	var corrections []error
	if cfg.VxSamples <= 0 {
		corrections = append(corrections, errors.Wrapf(ErrConfigInvalid,
			"vx_samples was %d, at least one linear velocity must be sampled so using 1", cfg.VxSamples))
		cfg.VxSamples = 1
	}
	if cfg.RadiusSamples <= 0 {
		corrections = append(corrections, errors.Wrapf(ErrConfigInvalid,
			"radius_samples was %d, at least one turning rate must be sampled so using 1", cfg.RadiusSamples))
		cfg.RadiusSamples = 1
	}
	if cfg.SimPeriod <= 0 {
		corrections = append(corrections, errors.Wrapf(ErrConfigInvalid,
			"sim_period was %f, assuming a rate of 20Hz", cfg.SimPeriod))
		cfg.SimPeriod = defaultSimPeriod
	}
	return corrections
}

// Validate returns an error for values the planner cannot run with. Values that Coerce can fix are
// not reported here.
func (cfg Config) Validate() error {
	var err error
	positive := func(name string, v float64) {
		if v <= 0 {
			err = multierr.Append(err, fmt.Errorf("%s must be positive, got %f", name, v))
		}
	}
	nonNegative := func(name string, v float64) {
		if v < 0 {
			err = multierr.Append(err, fmt.Errorf("%s must not be negative, got %f", name, v))
		}
	}
	positive("sim_time", cfg.SimTime)
	positive("sim_granularity", cfg.SimGranularity)
	positive("min_turn_radius", cfg.MinTurnRadius)
	nonNegative("max_vel_x", cfg.MaxVelX)
	nonNegative("min_vel_x", cfg.MinVelX)
	nonNegative("acc_lim_x", cfg.AccLimX)
	nonNegative("forward_point_distance", cfg.ForwardPointDistance)
	nonNegative("oscillation_reset_dist", cfg.OscillationResetDist)
	if cfg.MinVelX > cfg.MaxVelX {
		err = multierr.Append(err, fmt.Errorf("min_vel_x (%f) must not exceed max_vel_x (%f)", cfg.MinVelX, cfg.MaxVelX))
	}
	if err != nil {
		return errors.Wrap(err, "invalid planner config")
	}
	return nil
}
