package config

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zapcore"
	"go.viam.com/test"

	"go.viam.com/localplanner/logging"
	"go.viam.com/localplanner/motionplan/ackermann"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	test.That(t, cfg.Validate("default"), test.ShouldBeNil)
	test.That(t, cfg.Level(), test.ShouldEqual, logging.INFO)
	test.That(t, cfg.FootprintPoints(), test.ShouldHaveLength, 4)
}

func TestFromReader(t *testing.T) {
	cfg, err := FromReader("test.json", strings.NewReader(`{
		"max_vel_x": 1.2,
		"vx_samples": 5,
		"controller_frequency": 10,
		"footprint": [[-0.2, -0.1], [0.3, 0], [-0.2, 0.1]],
		"log_level": "debug"
	}`))
	test.That(t, err, test.ShouldBeNil)

	expected := Default()
	expected.MaxVelX = 1.2
	expected.VxSamples = 5
	expected.ControllerFrequency = 10
	expected.Footprint = [][2]float64{{-0.2, -0.1}, {0.3, 0}, {-0.2, 0.1}}
	expected.LogLevel = "debug"
	test.That(t, cmp.Diff(expected, *cfg), test.ShouldBeEmpty)

	test.That(t, cfg.Level(), test.ShouldEqual, logging.DEBUG)
	test.That(t, cfg.FootprintPoints()[1], test.ShouldResemble, r2.Point{X: 0.3, Y: 0})
}

func TestFromReaderErrors(t *testing.T) {
	_, err := FromReader("broken.json", strings.NewReader(`{"max_vel_x": `))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "failed to decode")

	_, err = FromReader("invalid.json", strings.NewReader(`{
		"sim_time": 0,
		"xy_goal_tolerance": -1,
		"footprint": [[0, 0], [1, 1]],
		"log_level": "loud"
	}`))
	test.That(t, err, test.ShouldNotBeNil)
	for _, msg := range []string{"invalid.json", "sim_time", "xy_goal_tolerance", "footprint", "unknown log level"} {
		test.That(t, err.Error(), test.ShouldContainSubstring, msg)
	}

	// sample counts are corrected by the planner rather than rejected
	cfg, err := FromReader("samples.json", strings.NewReader(`{"vx_samples": 0, "radius_samples": -1}`))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.VxSamples, test.ShouldEqual, 0)
}

func TestFromAttributes(t *testing.T) {
	cfg, err := FromAttributes(map[string]interface{}{
		"max_vel_x":           0.8,
		"radius_samples":      6.0,
		"penalize_negative_x": false,
		"footprint":           []interface{}{[]interface{}{0.0, 0.0}, []interface{}{1.0, 0.0}, []interface{}{0.0, 1.0}},
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.MaxVelX, test.ShouldEqual, 0.8)
	test.That(t, cfg.RadiusSamples, test.ShouldEqual, 6)
	test.That(t, cfg.PenalizeNegativeX, test.ShouldBeFalse)
	test.That(t, cfg.Footprint, test.ShouldResemble, [][2]float64{{0, 0}, {1, 0}, {0, 1}})
	test.That(t, cfg.SimTime, test.ShouldEqual, ackermann.DefaultConfig().SimTime)

	_, err = FromAttributes(map[string]interface{}{"max_velocity": 1})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "max_velocity")
}

func TestSimPeriod(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)
	test.That(t, SimPeriod(10, logger), test.ShouldAlmostEqual, 0.1)
	test.That(t, logs.Len(), test.ShouldEqual, 0)

	test.That(t, SimPeriod(0, logger), test.ShouldEqual, 0.05)
	test.That(t, SimPeriod(-5, logger), test.ShouldEqual, 0.05)
	test.That(t, logs.FilterLevelExact(zapcore.WarnLevel).Len(), test.ShouldEqual, 2)

	cfg := Default()
	cfg.ControllerFrequency = 4
	cfg.SimPeriod = 3
	test.That(t, cfg.PlannerConfig(logger).SimPeriod, test.ShouldEqual, 0.25)
}

func TestSchema(t *testing.T) {
	schema := Schema()
	test.That(t, schema.Title, test.ShouldEqual, "localplanner")
	out, err := json.Marshal(schema)
	test.That(t, err, test.ShouldBeNil)
	for _, field := range []string{"max_vel_x", "min_turn_radius", "controller_frequency", "restore_defaults", "footprint"} {
		test.That(t, string(out), test.ShouldContainSubstring, field)
	}
}
