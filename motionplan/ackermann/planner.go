// Package ackermann implements a sampling based local planner for car-like vehicles. Every control
// cycle it simulates a grid of (linear, angular) velocity commands that respect the vehicle's
// acceleration limit and minimum turning radius, scores each rollout against distance fields built
// from the global plan, and returns the cheapest feasible command.
package ackermann

import (
	"math"
	"sync"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/localplanner/costmap"
	"go.viam.com/localplanner/logging"
	"go.viam.com/localplanner/spatialmath"
)

// Planner picks a drive command each control cycle. It is safe to reconfigure from another
// goroutine while a cycle is running; the cycle finishes with the configuration it started with.
type Planner struct {
	mu     sync.Mutex
	logger logging.Logger

	cfg       Config
	costmap   *costmap.Costmap
	model     WorldModel
	footprint []r2.Point
	plan      []spatialmath.Pose
	// robotPose is where the last planning cycle started.
	robotPose *spatialmath.Pose

	pathMap  *costmap.MapGrid
	frontMap *costmap.MapGrid

	guard oscillationGuard
}

// NewPlanner creates a planner over cm for a vehicle with the given footprint, expressed in the
// vehicle's body frame.
func NewPlanner(cm *costmap.Costmap, footprint []r2.Point, cfg Config, logger logging.Logger) (*Planner, error) {
	if cm == nil {
		return nil, errors.New("planner requires a costmap")
	}
	p := &Planner{
		logger:    logger,
		costmap:   cm,
		model:     costmap.NewFootprintModel(cm),
		footprint: append([]r2.Point(nil), footprint...),
		pathMap:   costmap.NewMapGridForCostmap(cm),
		frontMap:  costmap.NewMapGridForCostmap(cm),
	}
	if err := p.Reconfigure(cfg); err != nil {
		return nil, err
	}
	p.logger.Infof("sim period is set to %.2f", p.cfg.SimPeriod)
	return p, nil
}

// Reconfigure replaces the planner's configuration. Sample counts below one are raised to one and
// reported; any other invalid value rejects the whole configuration and keeps the current one.
func (p *Planner) Reconfigure(cfg Config) error {
	for _, correction := range cfg.Coerce() {
		p.logger.Warn(correction)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.cfg = cfg
	p.guard.rotationEnabled = cfg.OscillationRotation
	return nil
}

// Config returns the configuration currently in use.
func (p *Planner) Config() Config {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfg
}

// UpdateCostmap swaps in a fresh occupancy grid. The distance fields are resized if the grid
// dimensions changed.
func (p *Planner) UpdateCostmap(cm *costmap.Costmap) error {
	if cm == nil {
		return errors.New("planner requires a costmap")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if cm.SizeX() != p.costmap.SizeX() || cm.SizeY() != p.costmap.SizeY() {
		p.pathMap = costmap.NewMapGridForCostmap(cm)
		p.frontMap = costmap.NewMapGridForCostmap(cm)
	}
	p.costmap = cm
	p.model = costmap.NewFootprintModel(cm)
	return nil
}

// UpdatePlan replaces the global plan the planner follows.
func (p *Planner) UpdatePlan(plan []spatialmath.Pose) error {
	if len(plan) == 0 {
		return ErrNoPlan
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.plan = append(p.plan[:0], plan...)
	return nil
}

// FindBestPath runs one planning cycle from pose at velocity vel. It returns the winning
// trajectory and the command to send: the trajectory's velocity if it is valid and the zero
// command otherwise.
func (p *Planner) FindBestPath(pose spatialmath.Pose, vel spatialmath.Velocity) (Trajectory, spatialmath.Velocity) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.plan) == 0 {
		p.logger.Warnw("cannot plan", "error", ErrNoPlan)
		return infeasible(spatialmath.Velocity{}), spatialmath.Velocity{}
	}

	p.robotPose = &pose
	p.updateDistanceFields()
	best := p.computeTrajectories(pose, vel)
	if !best.Valid() {
		p.logger.Debugw("commanding zero velocity", "error", ErrNoPathFound, "pose", pose.String())
		return best, spatialmath.Velocity{}
	}
	return best, best.Velocity
}

// CheckTrajectory reports whether driving vel from pose for one simulation horizon is feasible.
// It clears the oscillation state since it is not part of the regular control loop.
func (p *Planner) CheckTrajectory(pose spatialmath.Pose, vel spatialmath.Velocity) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.guard.reset()
	if len(p.plan) > 0 {
		p.updateDistanceFields()
	}
	return p.newGenerator().generate(pose, vel, false).Valid()
}

// CellCost is the scoring breakdown of a single costmap cell.
type CellCost struct {
	PathCost  float64
	GoalCost  float64
	OccCost   float64
	TotalCost float64
}

// CellCosts returns the cost a trajectory ending in cell (cx, cy) would be scored with as of the
// last planning cycle. It returns false for cells that cannot be scored, including cells under the
// vehicle's footprint at the start of that cycle.
func (p *Planner) CellCosts(cx, cy uint) (CellCost, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if cx >= p.costmap.SizeX() || cy >= p.costmap.SizeY() {
		return CellCost{}, false
	}
	if p.robotPose != nil {
		wx, wy := p.costmap.MapToWorld(cx, cy)
		outline := lo.Map(p.footprint, func(pt r2.Point, _ int) r2.Point { return p.robotPose.Transform(pt, 1) })
		if costmap.FootprintContains(outline, r2.Point{X: wx, Y: wy}) {
			return CellCost{}, false
		}
	}
	cell := p.pathMap.Cell(cx, cy)
	occ := p.costmap.Cost(cx, cy)
	unreachable := p.pathMap.Unreachable()
	if cell.PathDist >= unreachable || cell.GoalDist >= unreachable || occ >= costmap.InscribedInflatedObstacle {
		return CellCost{}, false
	}
	resolution := p.costmap.Resolution()
	cc := CellCost{PathCost: cell.PathDist, GoalCost: cell.GoalDist, OccCost: float64(occ)}
	cc.TotalCost = p.cfg.PathDistBias*resolution*cc.PathCost +
		p.cfg.GoalDistBias*resolution*cc.GoalCost +
		p.cfg.OccDistBias*cc.OccCost
	return cc, true
}

// updateDistanceFields recomputes both distance fields from the plan. The lookahead field uses the
// plan with its last point pushed ForwardPointDistance along its heading.
func (p *Planner) updateDistanceFields() {
	p.pathMap.SetPathCells(p.costmap, p.plan)

	frontPlan := append([]spatialmath.Pose(nil), p.plan...)
	last := len(frontPlan) - 1
	frontPlan[last] = frontPlan[last].Forward(p.cfg.ForwardPointDistance)
	p.frontMap.SetPathCells(p.costmap, frontPlan)
}

func (p *Planner) newGenerator() *generator {
	return &generator{
		cfg:        p.cfg,
		grid:       p.costmap,
		model:      p.model,
		footprint:  p.footprint,
		pathField:  p.pathMap,
		frontField: p.frontMap,
	}
}

// computeTrajectories samples the dynamic window and returns the best trajectory found.
func (p *Planner) computeTrajectories(pose spatialmath.Pose, vel spatialmath.Velocity) Trajectory {
	cfg := p.cfg
	gen := p.newGenerator()

	goal := p.plan[len(p.plan)-1]
	twoPointScoring := pose.SquaredDistance(goal) >= cfg.ForwardPointDistance*cfg.ForwardPointDistance

	minVel, maxVel := dynamicWindow(cfg, vel.X)

	best := gen.generateStationary(pose, twoPointScoring)

	for xIt := NewVelocityIterator(minVel, maxVel, cfg.VxSamples); !xIt.Done(); xIt.Next() {
		vx := snapToMinVelocity(xIt.Value(), cfg.MinVelX)
		maxTheta := math.Abs(vx / cfg.MinTurnRadius)
		for thIt := NewVelocityIterator(-maxTheta, maxTheta, cfg.RadiusSamples); !thIt.Done(); thIt.Next() {
			sample := spatialmath.NewVelocity(vx, thIt.Value())
			if p.guard.excludes(sample) {
				continue
			}
			best = selectBest(best, gen.generate(pose, sample, twoPointScoring), cfg.PenalizeNegativeX)
		}
	}

	p.logger.Debugw("oscillation flags",
		"forward_pos_only", p.guard.forwardPosOnly,
		"forward_neg_only", p.guard.forwardNegOnly,
		"rot_pos_only", p.guard.rotPosOnly,
		"rot_neg_only", p.guard.rotNegOnly,
	)

	if best.Valid() {
		if p.guard.observe(best, pose) {
			p.logger.Debugf("oscillation constraint set at %s", pose)
		}
		if p.guard.releaseIfPossible(pose, cfg.OscillationResetDist) {
			p.logger.Debug("oscillation constraints released")
		}
	}
	return best
}

// dynamicWindow returns the range of linear velocities reachable within one control period,
// clamped to the velocity limits and pushed out of the (-MinVelX, MinVelX) dead zone.
func dynamicWindow(cfg Config, vx float64) (float64, float64) {
	maxVel := math.Min(cfg.MaxVelX, vx+cfg.AccLimX*cfg.SimPeriod)
	minVel := math.Max(-cfg.MaxVelX, vx-cfg.AccLimX*cfg.SimPeriod)
	return snapToMinVelocity(minVel, cfg.MinVelX), snapToMinVelocity(maxVel, cfg.MinVelX)
}

// snapToMinVelocity moves nonzero speeds smaller in magnitude than minVel out to +/-minVel.
func snapToMinVelocity(v, minVel float64) float64 {
	switch {
	case v > 0 && v < minVel:
		return minVel
	case v < 0 && v > -minVel:
		return -minVel
	}
	return v
}

// Plan runs a single planning cycle with a fresh planner. It is the functional form of
// FindBestPath for callers that do not run a control loop; oscillation state does not carry over
// between calls.
func Plan(
	cm *costmap.Costmap,
	footprint []r2.Point,
	pose spatialmath.Pose,
	vel spatialmath.Velocity,
	plan []spatialmath.Pose,
	cfg Config,
	logger logging.Logger,
) (spatialmath.Velocity, Trajectory, error) {
	p, err := NewPlanner(cm, footprint, cfg, logger)
	if err != nil {
		return spatialmath.Velocity{}, Trajectory{}, err
	}
	if err := p.UpdatePlan(plan); err != nil {
		return spatialmath.Velocity{}, Trajectory{}, err
	}
	traj, cmd := p.FindBestPath(pose, vel)
	return cmd, traj, nil
}
