// Package spatialmath defines the planar poses and velocity commands used by the planner.
package spatialmath

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
)

// Pose is a position and heading in the fixed planning frame. Theta is in radians.
type Pose struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Theta float64 `json:"theta"`
}

// NewPose creates a pose from its components.
func NewPose(x, y, theta float64) Pose {
	return Pose{X: x, Y: y, Theta: theta}
}

// Point returns the position of the pose.
func (p Pose) Point() r2.Point {
	return r2.Point{X: p.X, Y: p.Y}
}

// SquaredDistance returns the squared planar distance between two poses.
func (p Pose) SquaredDistance(o Pose) float64 {
	d := p.Point().Sub(o.Point())
	return d.Dot(d)
}

// Distance returns the planar distance between two poses, ignoring heading.
func (p Pose) Distance(o Pose) float64 {
	return p.Point().Sub(o.Point()).Norm()
}

// Forward returns the pose d meters ahead along the current heading.
func (p Pose) Forward(d float64) Pose {
	return Pose{
		X:     p.X + d*math.Cos(p.Theta),
		Y:     p.Y + d*math.Sin(p.Theta),
		Theta: p.Theta,
	}
}

// Transform maps a point expressed in this pose's body frame into the planning frame,
// scaling it first by scale.
func (p Pose) Transform(pt r2.Point, scale float64) r2.Point {
	cosTh, sinTh := math.Cos(p.Theta), math.Sin(p.Theta)
	sx, sy := scale*pt.X, scale*pt.Y
	return r2.Point{
		X: p.X + sx*cosTh - sy*sinTh,
		Y: p.Y + sx*sinTh + sy*cosTh,
	}
}

// Step integrates vel over dt. The vehicle moves along its heading only.
func (p Pose) Step(vel Velocity, dt float64) Pose {
	return Pose{
		X:     p.X + vel.X*math.Cos(p.Theta)*dt,
		Y:     p.Y + vel.X*math.Sin(p.Theta)*dt,
		Theta: p.Theta + vel.Theta*dt,
	}
}

func (p Pose) String() string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", p.X, p.Y, p.Theta)
}

// NormalizeAngle wraps theta into [-pi, pi).
func NormalizeAngle(theta float64) float64 {
	return theta - 2*math.Pi*math.Floor((theta+math.Pi)/(2*math.Pi))
}
