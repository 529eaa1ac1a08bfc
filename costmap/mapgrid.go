package costmap

import (
	"math"

	"go.viam.com/localplanner/spatialmath"
)

// MapCell holds the distance field values for a single cell, in cell units.
type MapCell struct {
	PathDist float64
	GoalDist float64

	pathMark bool
	goalMark bool
}

// MapGrid is a distance field over a costmap: for every cell, the number of cells to the nearest
// point of the global plan and to the local goal. Cells that cannot be reached without crossing
// an obstacle keep the unreachable value, which equals the total number of cells.
type MapGrid struct {
	sizeX, sizeY uint
	cells        []MapCell
}

// NewMapGrid creates a distance field of the given dimensions with every cell unreachable.
func NewMapGrid(sizeX, sizeY uint) *MapGrid {
	mg := &MapGrid{sizeX: sizeX, sizeY: sizeY, cells: make([]MapCell, sizeX*sizeY)}
	mg.ResetPathDist()
	return mg
}

// NewMapGridForCostmap creates a distance field matching the dimensions of cm.
func NewMapGridForCostmap(cm *Costmap) *MapGrid {
	return NewMapGrid(cm.SizeX(), cm.SizeY())
}

// Unreachable returns the sentinel distance stored in cells with no route to the path or goal.
func (mg *MapGrid) Unreachable() float64 {
	return float64(len(mg.cells))
}

// ResetPathDist marks every cell unreachable and clears the propagation marks.
func (mg *MapGrid) ResetPathDist() {
	unreachable := mg.Unreachable()
	for i := range mg.cells {
		mg.cells[i] = MapCell{PathDist: unreachable, GoalDist: unreachable}
	}
}

// Cell returns the distance field values of a cell.
func (mg *MapGrid) Cell(mx, my uint) MapCell {
	return mg.cells[my*mg.sizeX+mx]
}

// PathDist returns the distance in cells from (mx, my) to the nearest plan cell.
func (mg *MapGrid) PathDist(mx, my uint) float64 {
	return mg.cells[my*mg.sizeX+mx].PathDist
}

// GoalDist returns the distance in cells from (mx, my) to the local goal.
func (mg *MapGrid) GoalDist(mx, my uint) float64 {
	return mg.cells[my*mg.sizeX+mx].GoalDist
}

type cellIndex struct {
	x, y uint
}

// SetPathCells computes path and goal distances for the plan over cm. The plan is resampled to the
// costmap resolution first. Only the leading portion of the plan that lies inside the costmap is
// used, and the local goal is the last plan point of that portion.
func (mg *MapGrid) SetPathCells(cm *Costmap, plan []spatialmath.Pose) {
	mg.ResetPathDist()
	adjusted := AdjustPlanResolution(plan, cm.Resolution())

	var pathQueue []cellIndex
	var goal *cellIndex
	started := false
	for _, pose := range adjusted {
		mx, my, ok := cm.WorldToMap(pose.X, pose.Y)
		if !ok {
			if started {
				break
			}
			continue
		}
		started = true
		idx := my*mg.sizeX + mx
		if !mg.cells[idx].pathMark {
			mg.cells[idx].pathMark = true
			mg.cells[idx].PathDist = 0
			pathQueue = append(pathQueue, cellIndex{mx, my})
		}
		goal = &cellIndex{mx, my}
	}
	mg.propagate(cm, pathQueue, pathDistance)

	if goal == nil {
		return
	}
	idx := goal.y*mg.sizeX + goal.x
	mg.cells[idx].goalMark = true
	mg.cells[idx].GoalDist = 0
	mg.propagate(cm, []cellIndex{*goal}, goalDistance)
}

type distanceKind int

const (
	pathDistance distanceKind = iota
	goalDistance
)

func (mg *MapGrid) value(idx uint, kind distanceKind) *float64 {
	if kind == pathDistance {
		return &mg.cells[idx].PathDist
	}
	return &mg.cells[idx].GoalDist
}

func (mg *MapGrid) mark(idx uint, kind distanceKind) *bool {
	if kind == pathDistance {
		return &mg.cells[idx].pathMark
	}
	return &mg.cells[idx].goalMark
}

// propagate runs a 4-connected wavefront from the seed cells. Cells at or above the inscribed cost
// are marked but stay unreachable and never expand.
func (mg *MapGrid) propagate(cm *Costmap, queue []cellIndex, kind distanceKind) {
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		curDist := *mg.value(cur.y*mg.sizeX+cur.x, kind)

		neighbors := [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
		for _, n := range neighbors {
			nx, ny := int(cur.x)+n[0], int(cur.y)+n[1]
			if nx < 0 || ny < 0 || uint(nx) >= mg.sizeX || uint(ny) >= mg.sizeY {
				continue
			}
			idx := uint(ny)*mg.sizeX + uint(nx)
			marked := mg.mark(idx, kind)
			if *marked {
				continue
			}
			*marked = true
			if cm.Cost(uint(nx), uint(ny)) >= InscribedInflatedObstacle {
				continue
			}
			*mg.value(idx, kind) = curDist + 1
			queue = append(queue, cellIndex{uint(nx), uint(ny)})
		}
	}
}

// AdjustPlanResolution inserts intermediate poses so that consecutive plan points are no further
// apart than resolution.
func AdjustPlanResolution(plan []spatialmath.Pose, resolution float64) []spatialmath.Pose {
	if len(plan) == 0 || resolution <= 0 {
		return plan
	}
	out := make([]spatialmath.Pose, 0, len(plan))
	out = append(out, plan[0])
	for i := 1; i < len(plan); i++ {
		prev, next := plan[i-1], plan[i]
		dist := prev.Distance(next)
		steps := int(math.Ceil(dist/resolution)) - 1
		for s := 1; s <= steps; s++ {
			frac := float64(s) / float64(steps+1)
			out = append(out, spatialmath.NewPose(
				prev.X+frac*(next.X-prev.X),
				prev.Y+frac*(next.Y-prev.Y),
				next.Theta,
			))
		}
		out = append(out, next)
	}
	return out
}
