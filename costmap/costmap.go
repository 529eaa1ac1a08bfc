// Package costmap provides the occupancy grid, the path/goal distance field built from a global
// plan, and the footprint collision model the local planner scores trajectories against.
package costmap

import (
	"math"

	"github.com/pkg/errors"
)

// Cell cost values. Anything strictly below InscribedInflatedObstacle is traversable.
const (
	FreeSpace                 uint8 = 0
	InscribedInflatedObstacle uint8 = 253
	LethalObstacle            uint8 = 254
	NoInformation             uint8 = 255
)

// inflationDecay controls how quickly inflated cost falls off past the inscribed radius.
const inflationDecay = 10.

// Costmap is a 2D occupancy grid anchored at a world-frame origin. Cell (0, 0) covers
// [originX, originX+resolution) x [originY, originY+resolution).
type Costmap struct {
	sizeX, sizeY        uint
	resolution          float64
	originX, originY    float64
	inscribedRadius     float64
	circumscribedRadius float64
	costs               []uint8
}

// New creates an empty costmap where every cell is free space.
func New(sizeX, sizeY uint, resolution, originX, originY float64) (*Costmap, error) {
	if sizeX == 0 || sizeY == 0 {
		return nil, errors.Errorf("costmap must have at least one cell, got %dx%d", sizeX, sizeY)
	}
	if resolution <= 0 {
		return nil, errors.Errorf("costmap resolution must be positive, got %f", resolution)
	}
	return &Costmap{
		sizeX:      sizeX,
		sizeY:      sizeY,
		resolution: resolution,
		originX:    originX,
		originY:    originY,
		costs:      make([]uint8, sizeX*sizeY),
	}, nil
}

// SetRadii sets the inscribed and circumscribed radii of the robot footprint used for inflation
// and by the footprint collision model.
func (cm *Costmap) SetRadii(inscribed, circumscribed float64) {
	cm.inscribedRadius = inscribed
	cm.circumscribedRadius = math.Max(inscribed, circumscribed)
}

// SizeX returns the width of the grid in cells.
func (cm *Costmap) SizeX() uint { return cm.sizeX }

// SizeY returns the height of the grid in cells.
func (cm *Costmap) SizeY() uint { return cm.sizeY }

// Resolution returns the side length of a cell in meters.
func (cm *Costmap) Resolution() float64 { return cm.resolution }

// InscribedRadius returns the radius of the largest circle inside the footprint.
func (cm *Costmap) InscribedRadius() float64 { return cm.inscribedRadius }

// CircumscribedRadius returns the radius of the smallest circle containing the footprint.
func (cm *Costmap) CircumscribedRadius() float64 { return cm.circumscribedRadius }

// WorldToMap converts a world position to cell coordinates. It returns false if the position is
// outside the grid.
func (cm *Costmap) WorldToMap(wx, wy float64) (uint, uint, bool) {
	if wx < cm.originX || wy < cm.originY {
		return 0, 0, false
	}
	mx := uint((wx - cm.originX) / cm.resolution)
	my := uint((wy - cm.originY) / cm.resolution)
	if mx >= cm.sizeX || my >= cm.sizeY {
		return 0, 0, false
	}
	return mx, my, true
}

// MapToWorld returns the world position of the centre of a cell.
func (cm *Costmap) MapToWorld(mx, my uint) (float64, float64) {
	return cm.originX + (float64(mx)+0.5)*cm.resolution, cm.originY + (float64(my)+0.5)*cm.resolution
}

// Cost returns the cost of a cell. The cell must be within the grid.
func (cm *Costmap) Cost(mx, my uint) uint8 {
	return cm.costs[cm.index(mx, my)]
}

// SetCost sets the cost of a cell. Out of range cells are ignored.
func (cm *Costmap) SetCost(mx, my uint, cost uint8) {
	if mx >= cm.sizeX || my >= cm.sizeY {
		return
	}
	cm.costs[cm.index(mx, my)] = cost
}

func (cm *Costmap) index(mx, my uint) uint {
	return my*cm.sizeX + mx
}

// AddObstacle marks the cell containing the world position as lethal and inflates cost around it:
// cells within the inscribed radius become InscribedInflatedObstacle and cost decays
// exponentially out to the circumscribed radius.
func (cm *Costmap) AddObstacle(wx, wy float64) error {
	ox, oy, ok := cm.WorldToMap(wx, wy)
	if !ok {
		return errors.Errorf("obstacle at (%.3f, %.3f) is outside the costmap", wx, wy)
	}
	cm.SetCost(ox, oy, LethalObstacle)

	reach := int(math.Ceil(cm.circumscribedRadius / cm.resolution))
	for dy := -reach; dy <= reach; dy++ {
		for dx := -reach; dx <= reach; dx++ {
			cx, cy := int(ox)+dx, int(oy)+dy
			if cx < 0 || cy < 0 || uint(cx) >= cm.sizeX || uint(cy) >= cm.sizeY {
				continue
			}
			dist := math.Hypot(float64(dx), float64(dy)) * cm.resolution
			inflated := cm.inflatedCost(dist)
			if inflated > cm.Cost(uint(cx), uint(cy)) {
				cm.SetCost(uint(cx), uint(cy), inflated)
			}
		}
	}
	return nil
}

func (cm *Costmap) inflatedCost(dist float64) uint8 {
	switch {
	case dist == 0:
		return LethalObstacle
	case dist <= cm.inscribedRadius:
		return InscribedInflatedObstacle
	case dist > cm.circumscribedRadius:
		return FreeSpace
	}
	factor := math.Exp(-inflationDecay * (dist - cm.inscribedRadius))
	return uint8(float64(InscribedInflatedObstacle-1) * factor)
}

// Copy returns a deep copy of the costmap.
func (cm *Costmap) Copy() *Costmap {
	dup := *cm
	dup.costs = make([]uint8, len(cm.costs))
	copy(dup.costs, cm.costs)
	return &dup
}
