package cli

import (
	"github.com/urfave/cli/v2"

	"go.viam.com/localplanner/motionplan/ackermann"
	"go.viam.com/localplanner/spatialmath"
)

// CheckAction reports whether a velocity command is feasible from a scenario's start pose and
// which command a single planning cycle would choose.
func CheckAction(c *cli.Context) error {
	sc, err := ReadScenario(c.String(flagScenario))
	if err != nil {
		return err
	}
	cfg, err := sc.Config(c.String(flagConfig))
	if err != nil {
		return err
	}
	logger := newLogger(c)
	cm, err := sc.Costmap()
	if err != nil {
		return err
	}
	planner, err := ackermann.NewPlanner(cm, cfg.FootprintPoints(), cfg.PlannerConfig(logger), logger.Sublogger("planner"))
	if err != nil {
		return err
	}
	if err := planner.UpdatePlan(sc.Plan); err != nil {
		return err
	}

	vel := spatialmath.NewVelocity(c.Float64(flagLinear), c.Float64(flagAngular))
	if planner.CheckTrajectory(sc.Start, vel) {
		successf(c.App.Writer, "%s is feasible from %s", vel, sc.Start)
	} else {
		failuref(c.App.Writer, "%s is not feasible from %s", vel, sc.Start)
	}

	best, cmd := planner.FindBestPath(sc.Start, sc.Velocity)
	if err := best.Err(); err != nil {
		failuref(c.App.Writer, "planner would stop: %v", err)
		return nil
	}
	printf(c.App.Writer, "planner would command %s with cost %.3f", cmd, best.Cost)
	return nil
}
