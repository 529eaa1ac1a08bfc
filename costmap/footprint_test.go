package costmap

import (
	"testing"

	"github.com/golang/geo/r2"
	"go.viam.com/test"
)

func square(center r2.Point, half float64) []r2.Point {
	return []r2.Point{
		{X: center.X - half, Y: center.Y - half},
		{X: center.X + half, Y: center.Y - half},
		{X: center.X + half, Y: center.Y + half},
		{X: center.X - half, Y: center.Y + half},
	}
}

func TestFootprintCost(t *testing.T) {
	cm, err := New(50, 50, 0.1, 0, 0)
	test.That(t, err, test.ShouldBeNil)
	fm := NewFootprintModel(cm)

	center := r2.Point{X: 2.5, Y: 2.5}
	test.That(t, fm.FootprintCost(center, square(center, 0.3), 0.3, 0.42), test.ShouldEqual, 0)

	cm.SetCost(27, 25, 100)
	test.That(t, fm.FootprintCost(center, square(center, 0.25), 0.25, 0.35), test.ShouldEqual, 100)

	cm.SetCost(25, 27, LethalObstacle)
	test.That(t, fm.FootprintCost(center, square(center, 0.25), 0.25, 0.35), test.ShouldEqual, -1)

	// inscribed cost on the outline is allowed
	cm.SetCost(27, 25, InscribedInflatedObstacle)
	other := r2.Point{X: 1.0, Y: 2.5}
	cm.SetCost(12, 25, InscribedInflatedObstacle)
	test.That(t, fm.FootprintCost(other, square(other, 0.25), 0.25, 0.35), test.ShouldEqual, float64(InscribedInflatedObstacle))
}

func TestFootprintCostOffMap(t *testing.T) {
	cm, err := New(10, 10, 0.1, 0, 0)
	test.That(t, err, test.ShouldBeNil)
	fm := NewFootprintModel(cm)

	test.That(t, fm.FootprintCost(r2.Point{X: -1, Y: 0.5}, nil, 0, 0), test.ShouldEqual, -1)
	edge := r2.Point{X: 0.05, Y: 0.5}
	test.That(t, fm.FootprintCost(edge, square(edge, 0.2), 0.2, 0.3), test.ShouldEqual, -1)
}

func TestPointFootprint(t *testing.T) {
	cm, err := New(10, 10, 0.1, 0, 0)
	test.That(t, err, test.ShouldBeNil)
	fm := NewFootprintModel(cm)

	pt := r2.Point{X: 0.55, Y: 0.55}
	test.That(t, fm.FootprintCost(pt, nil, 0, 0), test.ShouldEqual, 0)
	cm.SetCost(5, 5, 42)
	test.That(t, fm.FootprintCost(pt, nil, 0, 0), test.ShouldEqual, 42)
	cm.SetCost(5, 5, InscribedInflatedObstacle)
	test.That(t, fm.FootprintCost(pt, nil, 0, 0), test.ShouldEqual, -1)
}

func TestBresenham(t *testing.T) {
	cells := bresenham(0, 0, 3, 1)
	test.That(t, cells[0], test.ShouldResemble, [2]int{0, 0})
	test.That(t, cells[len(cells)-1], test.ShouldResemble, [2]int{3, 1})
	test.That(t, len(cells), test.ShouldEqual, 4)
	test.That(t, bresenham(2, 2, 2, 2), test.ShouldResemble, [][2]int{{2, 2}})
}

func TestFootprintContains(t *testing.T) {
	fp := square(r2.Point{X: 1, Y: 1}, 0.5)
	test.That(t, FootprintContains(fp, r2.Point{X: 1, Y: 1}), test.ShouldBeTrue)
	test.That(t, FootprintContains(fp, r2.Point{X: 1.4, Y: 0.6}), test.ShouldBeTrue)
	test.That(t, FootprintContains(fp, r2.Point{X: 1.6, Y: 1}), test.ShouldBeFalse)
	test.That(t, FootprintContains(fp, r2.Point{X: 1, Y: 0.4}), test.ShouldBeFalse)

	triangle := []r2.Point{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 0, Y: 2}}
	test.That(t, FootprintContains(triangle, r2.Point{X: 0.5, Y: 0.5}), test.ShouldBeTrue)
	test.That(t, FootprintContains(triangle, r2.Point{X: 1.5, Y: 1.5}), test.ShouldBeFalse)

	test.That(t, FootprintContains(fp[:2], r2.Point{X: 1, Y: 1}), test.ShouldBeFalse)
}
