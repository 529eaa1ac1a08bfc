package costmap

import (
	"github.com/golang/geo/r2"
)

// FootprintModel checks oriented footprints against a costmap.
type FootprintModel struct {
	cm *Costmap
}

// NewFootprintModel returns a collision model backed by cm.
func NewFootprintModel(cm *Costmap) *FootprintModel {
	return &FootprintModel{cm: cm}
}

// FootprintCost returns the highest cell cost touched by the outline of footprint, or -1 if the
// outline touches a lethal or unknown cell or leaves the map. Footprints with fewer than three
// vertices are treated as a point at position, which also rejects inscribed cost.
func (fm *FootprintModel) FootprintCost(position r2.Point, footprint []r2.Point, inscribed, circumscribed float64) float64 {
	mx, my, ok := fm.cm.WorldToMap(position.X, position.Y)
	if !ok {
		return -1
	}

	if len(footprint) < 3 {
		cost := fm.cm.Cost(mx, my)
		if cost == LethalObstacle || cost == InscribedInflatedObstacle || cost == NoInformation {
			return -1
		}
		return float64(cost)
	}

	footprintCost := 0.
	for i := range footprint {
		next := footprint[(i+1)%len(footprint)]
		lineCost := fm.lineCost(footprint[i], next)
		if lineCost < 0 {
			return -1
		}
		if lineCost > footprintCost {
			footprintCost = lineCost
		}
	}
	return footprintCost
}

func (fm *FootprintModel) lineCost(from, to r2.Point) float64 {
	x0, y0, ok := fm.cm.WorldToMap(from.X, from.Y)
	if !ok {
		return -1
	}
	x1, y1, ok := fm.cm.WorldToMap(to.X, to.Y)
	if !ok {
		return -1
	}

	lineCost := 0.
	for _, c := range bresenham(int(x0), int(y0), int(x1), int(y1)) {
		pointCost := fm.pointCost(uint(c[0]), uint(c[1]))
		if pointCost < 0 {
			return -1
		}
		if pointCost > lineCost {
			lineCost = pointCost
		}
	}
	return lineCost
}

func (fm *FootprintModel) pointCost(mx, my uint) float64 {
	cost := fm.cm.Cost(mx, my)
	if cost == LethalObstacle || cost == NoInformation {
		return -1
	}
	return float64(cost)
}

// bresenham returns the cells on the raster line between two cells, inclusive.
func bresenham(x0, y0, x1, y1 int) [][2]int {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	errTerm := dx + dy

	cells := make([][2]int, 0, dx-dy+1)
	for {
		cells = append(cells, [2]int{x0, y0})
		if x0 == x1 && y0 == y1 {
			return cells
		}
		e2 := 2 * errTerm
		if e2 >= dy {
			errTerm += dy
			x0 += sx
		}
		if e2 <= dx {
			errTerm += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// FootprintContains reports whether pt lies inside the polygon footprint. Footprints with fewer
// than three vertices contain nothing.
func FootprintContains(footprint []r2.Point, pt r2.Point) bool {
	if len(footprint) < 3 {
		return false
	}
	inside := false
	for i, j := 0, len(footprint)-1; i < len(footprint); j, i = i, i+1 {
		a, b := footprint[i], footprint[j]
		if (a.Y > pt.Y) != (b.Y > pt.Y) && pt.X < (b.X-a.X)*(pt.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}
