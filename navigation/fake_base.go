package navigation

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r3"
	"go.uber.org/atomic"

	"go.viam.com/localplanner/spatialmath"
)

// integrationStep bounds the time step used when advancing the fake base's pose.
const integrationStep = 10 * time.Millisecond

// FakeBase is a Base and Localizer that moves exactly as commanded. Its pose is integrated from
// the commanded velocity whenever it is read or the command changes.
type FakeBase struct {
	clk clock.Clock

	mu         sync.Mutex
	pose       spatialmath.Pose
	vel        spatialmath.Velocity
	lastUpdate time.Time

	SetVelocityCount atomic.Int64
	StopCount        atomic.Int64
}

// NewFakeBase returns a stationary fake base at start.
func NewFakeBase(start spatialmath.Pose, clk clock.Clock) *FakeBase {
	return &FakeBase{clk: clk, pose: start, lastUpdate: clk.Now()}
}

// SetVelocity starts moving at the given velocity.
func (b *FakeBase) SetVelocity(ctx context.Context, linear, angular r3.Vector, extra map[string]interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.integrate()
	b.vel = spatialmath.VelocityFromVectors(linear, angular)
	b.SetVelocityCount.Inc()
	return nil
}

// Stop stops the base immediately.
func (b *FakeBase) Stop(ctx context.Context, extra map[string]interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.integrate()
	b.vel = spatialmath.Velocity{}
	b.StopCount.Inc()
	return nil
}

// CurrentPosition returns the integrated pose.
func (b *FakeBase) CurrentPosition(ctx context.Context) (spatialmath.Pose, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.integrate()
	return b.pose, nil
}

// CurrentVelocity returns the last commanded velocity.
func (b *FakeBase) CurrentVelocity(ctx context.Context) (spatialmath.Velocity, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.vel, nil
}

func (b *FakeBase) integrate() {
	now := b.clk.Now()
	elapsed := now.Sub(b.lastUpdate)
	b.lastUpdate = now
	for elapsed > 0 {
		step := elapsed
		if step > integrationStep {
			step = integrationStep
		}
		b.pose = b.pose.Step(b.vel, step.Seconds())
		elapsed -= step
	}
}
