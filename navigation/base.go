// Package navigation drives a vehicle along a global plan by running the local planner at a
// fixed rate and sending its commands to a base.
package navigation

import (
	"context"

	"github.com/golang/geo/r3"

	"go.viam.com/localplanner/costmap"
	"go.viam.com/localplanner/spatialmath"
)

// Base is the drive interface the controller commands. Linear velocity is along X in m/s and
// angular velocity is around Z in rad/s.
type Base interface {
	SetVelocity(ctx context.Context, linear, angular r3.Vector, extra map[string]interface{}) error
	Stop(ctx context.Context, extra map[string]interface{}) error
}

// Localizer reports where the vehicle is and how fast it is moving.
type Localizer interface {
	CurrentPosition(ctx context.Context) (spatialmath.Pose, error)
	CurrentVelocity(ctx context.Context) (spatialmath.Velocity, error)
}

// MapSource supplies the latest occupancy grid. The controller asks for it once per cycle.
type MapSource interface {
	Costmap(ctx context.Context) (*costmap.Costmap, error)
}
