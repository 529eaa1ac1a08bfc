package spatialmath

import (
	"fmt"

	"github.com/golang/geo/r3"
)

// Velocity is a drive command for a forward/reverse vehicle: linear speed along the heading in m/s
// and yaw rate in rad/s. There is no lateral component.
type Velocity struct {
	X     float64 `json:"linear_x"`
	Theta float64 `json:"angular_z"`
}

// NewVelocity creates a velocity command.
func NewVelocity(x, theta float64) Velocity {
	return Velocity{X: x, Theta: theta}
}

// IsZero reports whether the command is the stop command.
func (v Velocity) IsZero() bool {
	return v.X == 0 && v.Theta == 0
}

// Vectors returns the command as the linear and angular vectors a base accepts.
func (v Velocity) Vectors() (linear, angular r3.Vector) {
	return r3.Vector{X: v.X}, r3.Vector{Z: v.Theta}
}

// VelocityFromVectors is the inverse of Vectors. Lateral and out of plane components are dropped.
func VelocityFromVectors(linear, angular r3.Vector) Velocity {
	return Velocity{X: linear.X, Theta: angular.Z}
}

func (v Velocity) String() string {
	return fmt.Sprintf("[vx %.3f, vth %.3f]", v.X, v.Theta)
}
