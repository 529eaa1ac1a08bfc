package ackermann

import (
	"math"

	"github.com/golang/geo/r2"

	"go.viam.com/localplanner/spatialmath"
)

// OccupancyGrid is the read-only view of the costmap the generator needs.
type OccupancyGrid interface {
	WorldToMap(wx, wy float64) (uint, uint, bool)
	Cost(mx, my uint) uint8
	Resolution() float64
	InscribedRadius() float64
	CircumscribedRadius() float64
}

// DistanceField gives per-cell distances, in cells, to the global plan and to the local goal.
// Cells with no route hold a value at or above Unreachable.
type DistanceField interface {
	PathDist(mx, my uint) float64
	GoalDist(mx, my uint) float64
	Unreachable() float64
}

// WorldModel scores an oriented footprint. Negative results mean collision.
type WorldModel interface {
	FootprintCost(position r2.Point, footprint []r2.Point, inscribed, circumscribed float64) float64
}

// generator rolls out velocity commands against one cycle's snapshot of the world.
type generator struct {
	cfg        Config
	grid       OccupancyGrid
	model      WorldModel
	footprint  []r2.Point
	pathField  DistanceField
	frontField DistanceField
}

// generate simulates vel from pose for SimTime seconds and scores the result.
func (g *generator) generate(pose spatialmath.Pose, vel spatialmath.Velocity, twoPointScoring bool) Trajectory {
	linearSteps := math.Abs(vel.X) * g.cfg.SimTime / g.cfg.SimGranularity
	angularSteps := math.Abs(vel.Theta) * g.cfg.SimTime / g.cfg.SimGranularity
	numSteps := int(math.Ceil(math.Max(linearSteps, angularSteps)))
	if numSteps == 0 {
		return infeasible(vel)
	}
	return g.rollout(pose, vel, numSteps, g.cfg.SimTime/float64(numSteps), twoPointScoring)
}

// generateStationary scores holding position at pose. It is the seed every cycle compares the
// sampled commands against.
func (g *generator) generateStationary(pose spatialmath.Pose, twoPointScoring bool) Trajectory {
	return g.rollout(pose, spatialmath.Velocity{}, 1, 0, twoPointScoring)
}

func (g *generator) rollout(
	pose spatialmath.Pose,
	vel spatialmath.Velocity,
	numSteps int,
	dt float64,
	twoPointScoring bool,
) Trajectory {
	traj := Trajectory{
		Poses:    make([]spatialmath.Pose, 0, numSteps),
		Velocity: vel,
		Cost:     CostInfeasible,
	}
	impossibleCost := g.pathField.Unreachable()
	scale := g.footprintScale(math.Abs(vel.X))

	var pathDist, goalDist, occCost float64
	var frontPathDist, frontGoalDist float64

	for i := 0; i < numSteps; i++ {
		cellX, cellY, ok := g.grid.WorldToMap(pose.X, pose.Y)
		if !ok {
			return infeasible(vel)
		}
		front := pose.Forward(g.cfg.ForwardPointDistance)
		frontX, frontY, ok := g.grid.WorldToMap(front.X, front.Y)
		if !ok {
			return infeasible(vel)
		}

		footprintCost := g.footprintCost(pose, scale)
		if footprintCost < 0 {
			return infeasible(vel)
		}

		occCost = math.Max(math.Max(occCost, footprintCost), float64(g.grid.Cost(cellX, cellY)))
		pathDist = g.pathField.PathDist(cellX, cellY)
		goalDist = g.pathField.GoalDist(cellX, cellY)
		frontPathDist = g.frontField.PathDist(frontX, frontY)
		frontGoalDist = g.frontField.GoalDist(frontX, frontY)

		if impossibleCost <= goalDist || impossibleCost <= pathDist {
			traj.Cost = CostUnreachable
			return traj
		}

		traj.Poses = append(traj.Poses, pose)
		pose = pose.Step(vel, dt)
	}

	resolution := g.grid.Resolution()
	if twoPointScoring {
		pathDist = (frontPathDist + pathDist) / 2
		goalDist = (frontGoalDist + goalDist) / 2
	}
	traj.Cost = g.cfg.PathDistBias*resolution*pathDist +
		g.cfg.GoalDistBias*resolution*goalDist +
		g.cfg.OccDistBias*occCost
	return traj
}

// footprintScale grows the footprint linearly from 1 at ScalingSpeed up to 1+MaxScalingFactor at
// MaxVelX so the vehicle keeps more clearance when moving fast.
func (g *generator) footprintScale(speed float64) float64 {
	if speed <= g.cfg.ScalingSpeed {
		return 1
	}
	ratio := 1.
	if span := g.cfg.MaxVelX - g.cfg.ScalingSpeed; span > 0 {
		ratio = math.Min(1, (speed-g.cfg.ScalingSpeed)/span)
	}
	return g.cfg.MaxScalingFactor*ratio + 1
}

func (g *generator) footprintCost(pose spatialmath.Pose, scale float64) float64 {
	oriented := make([]r2.Point, len(g.footprint))
	for i, pt := range g.footprint {
		oriented[i] = pose.Transform(pt, scale)
	}
	return g.model.FootprintCost(pose.Point(), oriented, g.grid.InscribedRadius(), g.grid.CircumscribedRadius())
}
