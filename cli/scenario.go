package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"os"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/localplanner/config"
	"go.viam.com/localplanner/costmap"
	"go.viam.com/localplanner/spatialmath"
)

// MapConfig describes the occupancy grid of a scenario.
type MapConfig struct {
	Width               uint         `json:"width"`
	Height              uint         `json:"height"`
	Resolution          float64      `json:"resolution"`
	Origin              [2]float64   `json:"origin"`
	InscribedRadius     float64      `json:"inscribed_radius"`
	CircumscribedRadius float64      `json:"circumscribed_radius"`
	Obstacles           [][2]float64 `json:"obstacles,omitempty"`
	// LateObstacles appear while driving and are picked up through the controller's map source.
	LateObstacles []LateObstacle `json:"late_obstacles,omitempty"`
}

// LateObstacle is an obstacle that appears once the given number of control cycles have run.
type LateObstacle struct {
	AfterCycles int        `json:"after_cycles"`
	Position    [2]float64 `json:"position"`
}

// Scenario is a self-contained planning problem: a map, a plan and the vehicle's initial state.
type Scenario struct {
	Map       MapConfig              `json:"map"`
	Start     spatialmath.Pose       `json:"start"`
	Velocity  spatialmath.Velocity   `json:"velocity"`
	Plan      []spatialmath.Pose     `json:"plan"`
	Planner   map[string]interface{} `json:"planner,omitempty"`
	MaxCycles int                    `json:"max_cycles,omitempty"`

	path string
}

const defaultMaxCycles = 1000

// ReadScenario reads a scenario from a JSON file.
func ReadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&sc); err != nil {
		return nil, errors.Wrapf(err, "failed to decode scenario %q", path)
	}
	if len(sc.Plan) == 0 {
		return nil, errors.Errorf("scenario %q has no plan", path)
	}
	if sc.MaxCycles <= 0 {
		sc.MaxCycles = defaultMaxCycles
	}
	sc.path = path
	return &sc, nil
}

// Name identifies the scenario in output.
func (sc *Scenario) Name() string {
	return sc.path
}

// Costmap builds the scenario's occupancy grid as it is before the first cycle.
func (sc *Scenario) Costmap() (*costmap.Costmap, error) {
	return sc.CostmapAt(0)
}

// CostmapAt builds the occupancy grid after cycle control cycles, with every obstacle present by
// then inflated.
func (sc *Scenario) CostmapAt(cycle int) (*costmap.Costmap, error) {
	cm, err := costmap.New(sc.Map.Width, sc.Map.Height, sc.Map.Resolution, sc.Map.Origin[0], sc.Map.Origin[1])
	if err != nil {
		return nil, err
	}
	cm.SetRadii(sc.Map.InscribedRadius, sc.Map.CircumscribedRadius)
	for _, obstacle := range sc.Map.Obstacles {
		if err := cm.AddObstacle(obstacle[0], obstacle[1]); err != nil {
			return nil, err
		}
	}
	for _, obstacle := range sc.lateObstaclesAt(cycle) {
		if err := cm.AddObstacle(obstacle[0], obstacle[1]); err != nil {
			return nil, err
		}
	}
	return cm, nil
}

func (sc *Scenario) lateObstaclesAt(cycle int) [][2]float64 {
	return lo.FilterMap(sc.Map.LateObstacles, func(o LateObstacle, _ int) ([2]float64, bool) {
		return o.Position, o.AfterCycles <= cycle
	})
}

// Obstacles returns the positions of every obstacle, including those that appear late.
func (sc *Scenario) Obstacles() []r2.Point {
	all := append(append([][2]float64(nil), sc.Map.Obstacles...), sc.lateObstaclesAt(math.MaxInt)...)
	return lo.Map(all, func(o [2]float64, _ int) r2.Point {
		return r2.Point{X: o[0], Y: o[1]}
	})
}

// scenarioMap is a navigation.MapSource that adds late obstacles as cycles go by. It rebuilds the
// grid only when a new obstacle appears.
type scenarioMap struct {
	sc      *Scenario
	cycle   int
	visible int
	cm      *costmap.Costmap
}

func (sm *scenarioMap) Costmap(ctx context.Context) (*costmap.Costmap, error) {
	visible := len(sm.sc.lateObstaclesAt(sm.cycle))
	if sm.cm == nil || visible != sm.visible {
		cm, err := sm.sc.CostmapAt(sm.cycle)
		if err != nil {
			return nil, err
		}
		sm.cm, sm.visible = cm, visible
	}
	sm.cycle++
	return sm.cm, nil
}

// Config returns the planner configuration. A configuration file given on the command line wins
// over one embedded in the scenario.
func (sc *Scenario) Config(configPath string) (*config.Config, error) {
	switch {
	case configPath != "":
		return config.Read(configPath)
	case sc.Planner != nil:
		return config.FromAttributes(sc.Planner)
	}
	cfg := config.Default()
	return &cfg, nil
}
