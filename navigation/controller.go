package navigation

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"

	"go.viam.com/localplanner/config"
	"go.viam.com/localplanner/logging"
	"go.viam.com/localplanner/motionplan/ackermann"
	"go.viam.com/localplanner/spatialmath"
)

// ErrGoalReached is returned by Cycle once the vehicle is within tolerance of the goal.
var ErrGoalReached = errors.New("goal reached")

// CycleResult describes one control cycle.
type CycleResult struct {
	Pose       spatialmath.Pose
	Velocity   spatialmath.Velocity
	Command    spatialmath.Velocity
	Trajectory ackermann.Trajectory
}

// Stats counts what the controller has done since it was created.
type Stats struct {
	Cycles     int64
	Infeasible int64
	Stops      int64
}

// Options configure a Controller.
type Options struct {
	ControllerFrequency float64
	XYGoalTolerance     float64
	// Clock defaults to the wall clock.
	Clock clock.Clock
	// OnCycle is called after every control cycle from the controller's goroutine.
	OnCycle func(CycleResult)
	// MapSource, if set, refreshes the planner's costmap before every cycle.
	MapSource MapSource
}

// OptionsFromConfig returns the controller options a configuration file describes.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{ControllerFrequency: cfg.ControllerFrequency, XYGoalTolerance: cfg.XYGoalTolerance}
}

// A Controller runs the local planner at a fixed rate. Every cycle it reads the vehicle state
// from a Localizer, plans, and sends the winning command to a Base. It stops the base once the
// vehicle is within tolerance of the end of the plan.
type Controller struct {
	logger    logging.Logger
	clk       clock.Clock
	planner   *ackermann.Planner
	base      Base
	localizer Localizer
	mapSource MapSource
	onCycle   func(CycleResult)

	mu            sync.Mutex
	period        time.Duration
	goalTolerance float64
	goal          *spatialmath.Pose
	goalReached   bool

	cycles     atomic.Int64
	infeasible atomic.Int64
	stops      atomic.Int64

	workers *goutils.StoppableWorkers
}

// NewController returns a controller that is not yet running.
func NewController(
	planner *ackermann.Planner,
	base Base,
	localizer Localizer,
	opts Options,
	logger logging.Logger,
) *Controller {
	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}
	c := &Controller{
		logger:    logger,
		clk:       clk,
		planner:   planner,
		base:      base,
		localizer: localizer,
		mapSource: opts.MapSource,
		onCycle:   opts.OnCycle,
	}
	c.setOptions(opts)
	return c
}

func (c *Controller) setOptions(opts Options) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.period = time.Duration(config.SimPeriod(opts.ControllerFrequency, c.logger) * float64(time.Second))
	c.goalTolerance = opts.XYGoalTolerance
}

// Reconfigure applies a new configuration to the planner and the control loop. A changed
// controller frequency takes effect on the next tick.
func (c *Controller) Reconfigure(cfg *config.Config) error {
	if err := c.planner.Reconfigure(cfg.PlannerConfig(c.logger)); err != nil {
		return err
	}
	c.logger.SetLevel(cfg.Level())
	c.setOptions(OptionsFromConfig(cfg))
	return nil
}

// SetPlan gives the controller a new global plan to follow.
func (c *Controller) SetPlan(plan []spatialmath.Pose) error {
	if err := c.planner.UpdatePlan(plan); err != nil {
		return err
	}
	goal := plan[len(plan)-1]
	c.mu.Lock()
	defer c.mu.Unlock()
	c.goal = &goal
	c.goalReached = false
	return nil
}

// GoalReached reports whether the vehicle has reached the end of the current plan.
func (c *Controller) GoalReached() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.goalReached
}

// Period returns the time between control cycles.
func (c *Controller) Period() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.period
}

// Stats returns the controller's counters.
func (c *Controller) Stats() Stats {
	return Stats{Cycles: c.cycles.Load(), Infeasible: c.infeasible.Load(), Stops: c.stops.Load()}
}

// Start runs the control loop in the background until Close is called.
func (c *Controller) Start() {
	runID := uuid.NewString()
	c.logger.Infow("starting controller", "run_id", runID)
	c.workers = goutils.NewBackgroundStoppableWorkers(c.run)
}

func (c *Controller) run(ctx context.Context) {
	c.mu.Lock()
	period := c.period
	c.mu.Unlock()

	ticker := c.clk.Ticker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		_, err := c.Cycle(ctx)
		switch {
		case err == nil, errors.Is(err, ErrGoalReached):
		case errors.Is(err, context.Canceled):
			return
		default:
			c.logger.Errorw("control cycle failed", "error", err)
		}

		c.mu.Lock()
		if c.period != period {
			period = c.period
			ticker.Reset(period)
		}
		c.mu.Unlock()
	}
}

// Cycle runs a single control cycle. It returns ErrGoalReached without planning once the goal
// is reached, and ackermann.ErrNoPlan before a plan was set.
func (c *Controller) Cycle(ctx context.Context) (CycleResult, error) {
	c.mu.Lock()
	goal, reached, tolerance := c.goal, c.goalReached, c.goalTolerance
	c.mu.Unlock()
	if goal == nil {
		return CycleResult{}, ackermann.ErrNoPlan
	}
	if reached {
		return CycleResult{}, ErrGoalReached
	}

	pose, err := c.localizer.CurrentPosition(ctx)
	if err != nil {
		return CycleResult{}, err
	}
	vel, err := c.localizer.CurrentVelocity(ctx)
	if err != nil {
		return CycleResult{}, err
	}
	result := CycleResult{Pose: pose, Velocity: vel}

	if pose.Distance(*goal) <= tolerance {
		c.logger.Infow("goal reached", "pose", pose.String())
		c.mu.Lock()
		c.goalReached = true
		c.mu.Unlock()
		return result, multierr.Combine(c.stop(ctx), ErrGoalReached)
	}

	if c.mapSource != nil {
		if err := c.refreshCostmap(ctx); err != nil {
			return result, multierr.Combine(err, c.stop(ctx))
		}
	}

	result.Trajectory, result.Command = c.planner.FindBestPath(pose, vel)
	c.cycles.Inc()
	if !result.Trajectory.Valid() {
		c.infeasible.Inc()
		c.logger.Warnw("no valid trajectory, stopping", "pose", pose.String(), "error", result.Trajectory.Err())
	}

	if result.Command.IsZero() {
		err = c.stop(ctx)
	} else {
		linear, angular := result.Command.Vectors()
		c.logger.Debugw("setting velocity", "linear", linear, "angular", angular)
		err = c.base.SetVelocity(ctx, linear, angular, nil)
		if err != nil {
			err = multierr.Combine(err, c.stop(ctx))
		}
	}
	if c.onCycle != nil {
		c.onCycle(result)
	}
	return result, err
}

func (c *Controller) refreshCostmap(ctx context.Context) error {
	cm, err := c.mapSource.Costmap(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get costmap")
	}
	return c.planner.UpdateCostmap(cm)
}

func (c *Controller) stop(ctx context.Context) error {
	c.stops.Inc()
	return c.base.Stop(ctx, nil)
}

// Close stops the control loop and the base.
func (c *Controller) Close(ctx context.Context) error {
	if c.workers != nil {
		c.workers.Stop()
	}
	return c.base.Stop(ctx, nil)
}
