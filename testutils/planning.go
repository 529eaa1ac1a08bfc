package testutils

import (
	"testing"

	"github.com/golang/geo/r2"
	"go.viam.com/test"

	"go.viam.com/localplanner/costmap"
	"go.viam.com/localplanner/spatialmath"
)

// NewCostmap returns a free square costmap of cells x cells whose centre cell is centred on the
// world origin.
func NewCostmap(tb testing.TB, cells uint, resolution float64) *costmap.Costmap {
	tb.Helper()
	half := float64(cells) * resolution / 2
	cm, err := costmap.New(cells, cells, resolution, -half, -half)
	test.That(tb, err, test.ShouldBeNil)
	return cm
}

// SetLethal marks the cells covering the given world points as lethal without inflating them.
func SetLethal(tb testing.TB, cm *costmap.Costmap, points ...r2.Point) {
	tb.Helper()
	for _, pt := range points {
		mx, my, ok := cm.WorldToMap(pt.X, pt.Y)
		test.That(tb, ok, test.ShouldBeTrue)
		cm.SetCost(mx, my, costmap.LethalObstacle)
	}
}

// LethalWall marks a line of lethal cells at x from y0 to y1.
func LethalWall(tb testing.TB, cm *costmap.Costmap, x, y0, y1 float64) {
	tb.Helper()
	for y := y0; y <= y1; y += cm.Resolution() / 2 {
		SetLethal(tb, cm, r2.Point{X: x, Y: y})
	}
}

// StraightPlan returns a two point plan from (fromX, y) to (toX, y) heading along +x.
func StraightPlan(fromX, toX, y float64) []spatialmath.Pose {
	return []spatialmath.Pose{spatialmath.NewPose(fromX, y, 0), spatialmath.NewPose(toX, y, 0)}
}

// RectangleFootprint returns a length x width footprint centred on the vehicle origin.
func RectangleFootprint(length, width float64) []r2.Point {
	l, w := length/2, width/2
	return []r2.Point{{X: -l, Y: -w}, {X: l, Y: -w}, {X: l, Y: w}, {X: -l, Y: w}}
}
