package ackermann

import (
	"go.viam.com/localplanner/spatialmath"
)

// oscillationGuard keeps the vehicle from flipping between driving forward and backward. After a
// reversal only the new direction is allowed until the vehicle has moved far enough from where the
// reversal happened.
type oscillationGuard struct {
	rotationEnabled bool

	forwardPos, forwardNeg         bool
	forwardPosOnly, forwardNegOnly bool

	rotatingPos, rotatingNeg bool
	rotPosOnly, rotNegOnly   bool

	setPose spatialmath.Pose
}

// excludes reports whether vel would violate an active constraint.
func (og *oscillationGuard) excludes(vel spatialmath.Velocity) bool {
	switch {
	case og.forwardPosOnly && vel.X < 0:
		return true
	case og.forwardNegOnly && vel.X > 0:
		return true
	case og.rotPosOnly && vel.Theta < 0:
		return true
	case og.rotNegOnly && vel.Theta > 0:
		return true
	}
	return false
}

// observe updates the last seen direction from the winning trajectory and records pose if a new
// constraint was set. It returns whether a constraint was set.
func (og *oscillationGuard) observe(traj Trajectory, pose spatialmath.Pose) bool {
	flagSet := false
	switch {
	case traj.Velocity.X < 0:
		if og.forwardPos {
			og.forwardNegOnly = true
			flagSet = true
		}
		og.forwardPos, og.forwardNeg = false, true
	case traj.Velocity.X > 0:
		if og.forwardNeg {
			og.forwardPosOnly = true
			flagSet = true
		}
		og.forwardNeg, og.forwardPos = false, true
	}

	if og.rotationEnabled {
		switch {
		case traj.Velocity.Theta < 0:
			if og.rotatingPos {
				og.rotNegOnly = true
				flagSet = true
			}
			og.rotatingPos, og.rotatingNeg = false, true
		case traj.Velocity.Theta > 0:
			if og.rotatingNeg {
				og.rotPosOnly = true
				flagSet = true
			}
			og.rotatingNeg, og.rotatingPos = false, true
		}
	}

	if flagSet {
		og.setPose = pose
	}
	return flagSet
}

func (og *oscillationGuard) constrained() bool {
	return og.forwardPosOnly || og.forwardNegOnly || og.rotPosOnly || og.rotNegOnly
}

// releaseIfPossible clears every flag once pose is more than resetDist from where the active
// constraint was set.
func (og *oscillationGuard) releaseIfPossible(pose spatialmath.Pose, resetDist float64) bool {
	if !og.constrained() {
		return false
	}
	if pose.SquaredDistance(og.setPose) > resetDist*resetDist {
		og.reset()
		return true
	}
	return false
}

func (og *oscillationGuard) reset() {
	rotationEnabled := og.rotationEnabled
	*og = oscillationGuard{rotationEnabled: rotationEnabled}
}
