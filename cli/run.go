package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"go.viam.com/localplanner/config"
	"go.viam.com/localplanner/logging"
	"go.viam.com/localplanner/motionplan/ackermann"
	"go.viam.com/localplanner/navigation"
	"go.viam.com/localplanner/spatialmath"
)

// runResult is everything recorded while driving one scenario.
type runResult struct {
	name        string
	plan        []spatialmath.Pose
	scenario    *Scenario
	cycles      []navigation.CycleResult
	stats       navigation.Stats
	goalReached bool
	final       spatialmath.Pose
}

// RunAction drives every scenario given as an argument to its goal and prints a summary of each.
func RunAction(c *cli.Context) error {
	paths := c.Args().Slice()
	if len(paths) == 0 {
		return errors.New("at least one scenario file is required")
	}
	realtime := c.Bool(flagRealtime)
	plotPath := c.String(flagPlot)
	if len(paths) > 1 && (realtime || plotPath != "") {
		return errors.Errorf("--%s and --%s take a single scenario", flagRealtime, flagPlot)
	}
	logger := newLogger(c)

	results := make([]*runResult, len(paths))
	g, ctx := errgroup.WithContext(c.Context)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			scenarioLogger := logger.Sublogger(filepath.Base(path))
			sc, err := ReadScenario(path)
			if err != nil {
				return err
			}
			cfg, err := sc.Config(c.String(flagConfig))
			if err != nil {
				return err
			}
			if !c.Bool(flagDebug) {
				scenarioLogger.SetLevel(cfg.Level())
			}
			if realtime {
				results[i], err = driveRealtime(ctx, sc, cfg, c.String(flagConfig), c.Bool(flagWatch), scenarioLogger)
			} else {
				results[i], err = drive(ctx, sc, cfg, scenarioLogger)
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, res := range results {
		if c.Bool(flagTable) {
			printf(c.App.Writer, "%s", cycleTable(res))
		}
		summarize(c.App.Writer, res)
	}
	if plotPath != "" {
		if err := savePlot(results[0], plotPath); err != nil {
			return err
		}
		printf(c.App.Writer, "plot saved to %s", plotPath)
	}
	return nil
}

type driveSetup struct {
	controller *navigation.Controller
	base       *navigation.FakeBase
	result     *runResult
	mu         sync.Mutex
}

func newDriveSetup(ctx context.Context, sc *Scenario, cfg *config.Config, clk clock.Clock, logger logging.Logger) (*driveSetup, error) {
	cm, err := sc.Costmap()
	if err != nil {
		return nil, err
	}
	planner, err := ackermann.NewPlanner(cm, cfg.FootprintPoints(), cfg.PlannerConfig(logger), logger.Sublogger("planner"))
	if err != nil {
		return nil, err
	}
	ds := &driveSetup{
		base:   navigation.NewFakeBase(sc.Start, clk),
		result: &runResult{name: sc.Name(), plan: sc.Plan, scenario: sc},
	}
	if !sc.Velocity.IsZero() {
		linear, angular := sc.Velocity.Vectors()
		if err := ds.base.SetVelocity(ctx, linear, angular, nil); err != nil {
			return nil, err
		}
	}
	opts := navigation.OptionsFromConfig(cfg)
	opts.Clock = clk
	if len(sc.Map.LateObstacles) > 0 {
		opts.MapSource = &scenarioMap{sc: sc}
	}
	opts.OnCycle = func(r navigation.CycleResult) {
		ds.mu.Lock()
		defer ds.mu.Unlock()
		ds.result.cycles = append(ds.result.cycles, r)
	}
	ds.controller = navigation.NewController(planner, ds.base, ds.base, opts, logger.Sublogger("controller"))
	if err := ds.controller.SetPlan(sc.Plan); err != nil {
		return nil, err
	}
	return ds, nil
}

func (ds *driveSetup) finish(ctx context.Context) (*runResult, error) {
	err := ds.controller.Close(ctx)
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.result.stats = ds.controller.Stats()
	ds.result.goalReached = ds.controller.GoalReached()
	final, posErr := ds.base.CurrentPosition(ctx)
	ds.result.final = final
	return ds.result, multierr.Combine(err, posErr)
}

// drive simulates the scenario on a mock clock, one control cycle at a time.
func drive(ctx context.Context, sc *Scenario, cfg *config.Config, logger logging.Logger) (*runResult, error) {
	clk := clock.NewMock()
	ds, err := newDriveSetup(ctx, sc, cfg, clk, logger)
	if err != nil {
		return nil, err
	}
	for i := 0; i < sc.MaxCycles; i++ {
		if err := ctx.Err(); err != nil {
			return nil, multierr.Combine(err, ds.controller.Close(ctx))
		}
		clk.Add(ds.controller.Period())
		if _, err := ds.controller.Cycle(ctx); err != nil {
			if errors.Is(err, navigation.ErrGoalReached) {
				break
			}
			return nil, multierr.Combine(err, ds.controller.Close(ctx))
		}
	}
	return ds.finish(ctx)
}

// driveRealtime runs the controller's own loop on the wall clock. With watch set, edits to the
// configuration file are applied while driving.
func driveRealtime(
	ctx context.Context,
	sc *Scenario,
	cfg *config.Config,
	configPath string,
	watch bool,
	logger logging.Logger,
) (*runResult, error) {
	ds, err := newDriveSetup(ctx, sc, cfg, clock.New(), logger)
	if err != nil {
		return nil, err
	}
	if watch {
		if configPath == "" {
			return nil, errors.Errorf("--%s requires --%s", flagWatch, flagConfig)
		}
		watcher, err := config.NewWatcher(configPath, func(cfg *config.Config) {
			if err := ds.controller.Reconfigure(cfg); err != nil {
				logger.Errorw("failed to apply config", "error", err)
			}
		}, logger.Sublogger("config"))
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := watcher.Close(); err != nil {
				logger.Errorw("failed to close config watcher", "error", err)
			}
		}()
	}

	ds.controller.Start()
	deadline := time.Now().Add(time.Duration(sc.MaxCycles) * ds.controller.Period())
	for !ds.controller.GoalReached() && time.Now().Before(deadline) {
		if !goutils.SelectContextOrWait(ctx, ds.controller.Period()) {
			break
		}
	}
	return ds.finish(ctx)
}

func summarize(w io.Writer, res *runResult) {
	status := failuref
	outcome := "did not reach the goal"
	if res.goalReached {
		status = successf
		outcome = "reached the goal"
	}
	status(w, "%s: %s after %d cycles", res.name, outcome, res.stats.Cycles)
	printf(w, "  final pose %s", res.final)
	printf(w, "  infeasible cycles %d, stops %d", res.stats.Infeasible, res.stats.Stops)

	speeds := lo.Map(res.cycles, func(r navigation.CycleResult, _ int) float64 { return r.Command.X })
	if len(speeds) > 1 {
		mean, std := stat.MeanStdDev(speeds, nil)
		printf(w, "  commanded speed mean %.3f m/s, stddev %.3f, max %.3f", mean, std, floats.Max(speeds))
	}
	costs := lo.FilterMap(res.cycles, func(r navigation.CycleResult, _ int) (float64, bool) {
		return r.Trajectory.Cost, r.Trajectory.Valid()
	})
	if len(costs) > 0 {
		printf(w, "  trajectory cost min %.3f, max %.3f, median %.3f",
			floats.Min(costs), floats.Max(costs), median(costs))
	}
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	floats.Argsort(sorted, make([]int, len(sorted)))
	return stat.Quantile(0.5, stat.Empirical, sorted, nil)
}

func cycleTable(res *runResult) string {
	t := table.NewWriter()
	t.SetTitle(res.name)
	t.AppendHeader(table.Row{"#", "Pose", "Velocity", "Command", "Cost"})
	for i, r := range res.cycles {
		t.AppendRow(table.Row{
			i + 1,
			r.Pose.String(),
			r.Velocity.String(),
			r.Command.String(),
			fmt.Sprintf("%.3f", r.Trajectory.Cost),
		})
	}
	return t.Render()
}
