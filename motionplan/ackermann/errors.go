package ackermann

import "github.com/pkg/errors"

var (
	// ErrInfeasible is reported for a trajectory that collides, leaves the map or does not move.
	ErrInfeasible = errors.New("trajectory is infeasible")
	// ErrUnreachable is reported for a trajectory that crosses a cell with no route to the goal.
	ErrUnreachable = errors.New("trajectory passes through a cell with no path to the goal")
	// ErrNoPathFound is reported when no sampled trajectory was valid in a planning cycle.
	ErrNoPathFound = errors.New("no valid trajectory found")
	// ErrConfigInvalid wraps every correction made to a supplied configuration.
	ErrConfigInvalid = errors.New("invalid planner config value")
	// ErrNoPlan is returned when planning is requested before a global plan was supplied.
	ErrNoPlan = errors.New("no global plan")
)
