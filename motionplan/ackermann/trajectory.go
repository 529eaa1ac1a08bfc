package ackermann

import (
	"go.viam.com/localplanner/spatialmath"
)

// Sentinel trajectory costs. Any non-negative cost is feasible and lower is better.
const (
	CostInfeasible  = -1.0
	CostUnreachable = -2.0
)

// Trajectory is the result of simulating one velocity command forward from a pose.
type Trajectory struct {
	Poses    []spatialmath.Pose
	Velocity spatialmath.Velocity
	Cost     float64
}

func infeasible(vel spatialmath.Velocity) Trajectory {
	return Trajectory{Velocity: vel, Cost: CostInfeasible}
}

// Valid reports whether the trajectory can be driven.
func (t Trajectory) Valid() bool {
	return t.Cost >= 0
}

// Forward reports whether the trajectory does not drive backwards. A stationary trajectory counts
// as forward.
func (t Trajectory) Forward() bool {
	return t.Velocity.X >= 0
}

// Err describes why the trajectory was rejected, or returns nil for a valid trajectory.
func (t Trajectory) Err() error {
	switch {
	case t.Cost == CostUnreachable:
		return ErrUnreachable
	case t.Cost < 0:
		return ErrInfeasible
	}
	return nil
}

// EndPose returns the last simulated pose, or false if nothing was simulated.
func (t Trajectory) EndPose() (spatialmath.Pose, bool) {
	if len(t.Poses) == 0 {
		return spatialmath.Pose{}, false
	}
	return t.Poses[len(t.Poses)-1], true
}
