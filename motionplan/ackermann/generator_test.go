package ackermann

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"go.viam.com/test"

	"go.viam.com/localplanner/spatialmath"
)

// fakeGrid is a 10x10 grid of 1m cells anchored at the origin.
type fakeGrid struct {
	cost uint8
}

func (g *fakeGrid) WorldToMap(wx, wy float64) (uint, uint, bool) {
	if wx < 0 || wy < 0 || wx >= 10 || wy >= 10 {
		return 0, 0, false
	}
	return uint(wx), uint(wy), true
}

func (g *fakeGrid) Cost(mx, my uint) uint8       { return g.cost }
func (g *fakeGrid) Resolution() float64          { return 1 }
func (g *fakeGrid) InscribedRadius() float64     { return 0.1 }
func (g *fakeGrid) CircumscribedRadius() float64 { return 0.2 }

type fakeField struct {
	pathDist, goalDist func(mx, my uint) float64
}

func (f *fakeField) PathDist(mx, my uint) float64 { return f.pathDist(mx, my) }
func (f *fakeField) GoalDist(mx, my uint) float64 { return f.goalDist(mx, my) }
func (f *fakeField) Unreachable() float64         { return 100 }

func constField(path, goal float64) *fakeField {
	return &fakeField{
		pathDist: func(uint, uint) float64 { return path },
		goalDist: func(uint, uint) float64 { return goal },
	}
}

type fakeModel struct {
	cost      func(position r2.Point) float64
	lastScale []r2.Point
}

func (m *fakeModel) FootprintCost(position r2.Point, footprint []r2.Point, inscribed, circumscribed float64) float64 {
	m.lastScale = footprint
	if m.cost == nil {
		return 0
	}
	return m.cost(position)
}

func testGenerator() *generator {
	cfg := DefaultConfig()
	cfg.SimTime = 1
	cfg.SimGranularity = 0.1
	cfg.PathDistBias = 1
	cfg.GoalDistBias = 1
	cfg.OccDistBias = 1
	cfg.ForwardPointDistance = 0.5
	cfg.MaxVelX = 1
	cfg.ScalingSpeed = 0.5
	cfg.MaxScalingFactor = 1
	return &generator{
		cfg:        cfg,
		grid:       &fakeGrid{},
		model:      &fakeModel{},
		footprint:  []r2.Point{{X: 0.1, Y: 0.1}, {X: 0.1, Y: -0.1}, {X: -0.1, Y: -0.1}},
		pathField:  constField(0, 0),
		frontField: constField(0, 0),
	}
}

func TestGenerateZeroVelocityIsInfeasible(t *testing.T) {
	gen := testGenerator()
	traj := gen.generate(spatialmath.NewPose(5, 5, 0), spatialmath.Velocity{}, true)
	test.That(t, traj.Cost, test.ShouldEqual, CostInfeasible)
	test.That(t, traj.Err(), test.ShouldEqual, ErrInfeasible)
	test.That(t, traj.Poses, test.ShouldBeEmpty)
}

func TestGenerateSimulatesSteps(t *testing.T) {
	gen := testGenerator()
	traj := gen.generate(spatialmath.NewPose(1, 5, 0), spatialmath.NewVelocity(1, 0), false)
	test.That(t, traj.Valid(), test.ShouldBeTrue)
	test.That(t, traj.Err(), test.ShouldBeNil)
	test.That(t, len(traj.Poses), test.ShouldEqual, 10)
	test.That(t, traj.Poses[0].X, test.ShouldEqual, 1)
	end, ok := traj.EndPose()
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, end.X, test.ShouldAlmostEqual, 1.9)
	test.That(t, end.Y, test.ShouldAlmostEqual, 5)

	// the step count also accounts for the turning rate
	traj = gen.generate(spatialmath.NewPose(1, 5, 0), spatialmath.NewVelocity(0, 0.5), false)
	test.That(t, traj.Valid(), test.ShouldBeTrue)
	test.That(t, len(traj.Poses), test.ShouldEqual, 5)
	end, _ = traj.EndPose()
	test.That(t, end.X, test.ShouldAlmostEqual, 1)
	test.That(t, end.Theta, test.ShouldAlmostEqual, 0.8)

	traj = gen.generate(spatialmath.NewPose(5, 5, 0), spatialmath.NewVelocity(-0.5, 0), false)
	test.That(t, len(traj.Poses), test.ShouldEqual, 5)
	end, _ = traj.EndPose()
	test.That(t, end.X, test.ShouldAlmostEqual, 4.6)
	test.That(t, traj.Forward(), test.ShouldBeFalse)
}

func TestGenerateLeavingGridIsInfeasible(t *testing.T) {
	gen := testGenerator()
	traj := gen.generate(spatialmath.NewPose(9.5, 5, 0), spatialmath.NewVelocity(1, 0), false)
	test.That(t, traj.Cost, test.ShouldEqual, CostInfeasible)


	traj = gen.generate(spatialmath.NewPose(0.5, 5, math.Pi), spatialmath.NewVelocity(0.2, 0), false)
	test.That(t, traj.Cost, test.ShouldEqual, CostInfeasible)
}

func TestGenerateLookaheadOffGridIsInfeasible(t *testing.T) {
	gen := testGenerator()
	// the vehicle stays on the grid but the point ahead of it does not
	traj := gen.generate(spatialmath.NewPose(9.6, 5, 0), spatialmath.NewVelocity(0, 0.1), false)
	test.That(t, traj.Cost, test.ShouldEqual, CostInfeasible)
}

func TestGenerateUnreachable(t *testing.T) {
	gen := testGenerator()
	gen.pathField = &fakeField{
		pathDist: func(uint, uint) float64 { return 0 },
		goalDist: func(mx, _ uint) float64 {
			if mx >= 3 {
				return 100
			}
			return 1
		},
	}
	traj := gen.generate(spatialmath.NewPose(2.45, 5, 0), spatialmath.NewVelocity(1, 0), false)
	test.That(t, traj.Cost, test.ShouldEqual, CostUnreachable)
	test.That(t, traj.Err(), test.ShouldEqual, ErrUnreachable)
	test.That(t, len(traj.Poses), test.ShouldEqual, 6)

	gen.pathField = constField(100, 0)
	traj = gen.generate(spatialmath.NewPose(2.5, 5, 0), spatialmath.NewVelocity(1, 0), false)
	test.That(t, traj.Cost, test.ShouldEqual, CostUnreachable)
}

func TestGenerateCollision(t *testing.T) {
	gen := testGenerator()
	gen.model = &fakeModel{cost: func(position r2.Point) float64 {
		if position.X > 3 {
			return -1
		}
		return 0
	}}
	traj := gen.generate(spatialmath.NewPose(2.5, 5, 0), spatialmath.NewVelocity(1, 0), false)
	test.That(t, traj.Cost, test.ShouldEqual, CostInfeasible)
}

func TestGenerateScoring(t *testing.T) {
	gen := testGenerator()
	gen.grid = &fakeGrid{cost: 10}
	gen.pathField = constField(2, 4)
	gen.frontField = constField(6, 8)

	pose := spatialmath.NewPose(2, 5, 0)
	vel := spatialmath.NewVelocity(0.4, 0)
	test.That(t, gen.generate(pose, vel, false).Cost, test.ShouldAlmostEqual, 2+4+10)
	test.That(t, gen.generate(pose, vel, true).Cost, test.ShouldAlmostEqual, 4+6+10)

	// occupancy is the worst cost seen along the rollout, not the sum
	gen.model = &fakeModel{cost: func(position r2.Point) float64 { return 30 }}
	test.That(t, gen.generate(pose, vel, false).Cost, test.ShouldAlmostEqual, 2+4+30)
}

func TestGenerateStationary(t *testing.T) {
	gen := testGenerator()
	gen.pathField = constField(1, 3)
	traj := gen.generateStationary(spatialmath.NewPose(5, 5, 0), false)
	test.That(t, traj.Valid(), test.ShouldBeTrue)
	test.That(t, traj.Cost, test.ShouldAlmostEqual, 4)
	test.That(t, traj.Velocity.IsZero(), test.ShouldBeTrue)
	test.That(t, traj.Poses, test.ShouldResemble, []spatialmath.Pose{spatialmath.NewPose(5, 5, 0)})
}

func TestFootprintScale(t *testing.T) {
	gen := testGenerator()
	test.That(t, gen.footprintScale(0.2), test.ShouldEqual, 1)
	test.That(t, gen.footprintScale(0.5), test.ShouldEqual, 1)
	test.That(t, gen.footprintScale(0.75), test.ShouldAlmostEqual, 1.5)
	test.That(t, gen.footprintScale(1.0), test.ShouldAlmostEqual, 2)

	model := &fakeModel{}
	gen.model = model
	gen.generate(spatialmath.NewPose(2, 5, 0), spatialmath.NewVelocity(1, 0), false)
	test.That(t, model.lastScale[0].X, test.ShouldAlmostEqual, 2.9+0.2)
	test.That(t, model.lastScale[0].Y, test.ShouldAlmostEqual, 5.2)
}
