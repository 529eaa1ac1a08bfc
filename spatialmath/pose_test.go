package spatialmath

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestPoseDistances(t *testing.T) {
	a := NewPose(0, 0, 0)
	b := NewPose(3, 4, math.Pi)
	test.That(t, a.Distance(b), test.ShouldAlmostEqual, 5)
	test.That(t, a.SquaredDistance(b), test.ShouldAlmostEqual, 25)
	test.That(t, b.Distance(a), test.ShouldAlmostEqual, 5)
}

func TestPoseForward(t *testing.T) {
	p := NewPose(1, 1, math.Pi/2).Forward(2)
	test.That(t, p.X, test.ShouldAlmostEqual, 1)
	test.That(t, p.Y, test.ShouldAlmostEqual, 3)
	test.That(t, p.Theta, test.ShouldAlmostEqual, math.Pi/2)
}

func TestPoseTransform(t *testing.T) {
	p := NewPose(1, 2, math.Pi/2)
	pt := p.Transform(r2.Point{X: 1, Y: 0}, 2)
	test.That(t, pt.X, test.ShouldAlmostEqual, 1)
	test.That(t, pt.Y, test.ShouldAlmostEqual, 4)
}

func TestPoseStep(t *testing.T) {
	p := NewPose(0, 0, 0)
	for i := 0; i < 10; i++ {
		p = p.Step(NewVelocity(1, 0), 0.1)
	}
	test.That(t, p.X, test.ShouldAlmostEqual, 1)
	test.That(t, p.Y, test.ShouldAlmostEqual, 0)

	p = NewPose(0, 0, 0).Step(NewVelocity(0, 1), 0.5)
	test.That(t, p.X, test.ShouldAlmostEqual, 0)
	test.That(t, p.Theta, test.ShouldAlmostEqual, 0.5)
}

func TestNormalizeAngle(t *testing.T) {
	test.That(t, NormalizeAngle(3*math.Pi/2), test.ShouldAlmostEqual, -math.Pi/2)
	test.That(t, NormalizeAngle(-3*math.Pi/2), test.ShouldAlmostEqual, math.Pi/2)
	test.That(t, NormalizeAngle(0.25), test.ShouldAlmostEqual, 0.25)
}

func TestVelocityVectors(t *testing.T) {
	v := NewVelocity(0.5, -0.2)
	lin, ang := v.Vectors()
	test.That(t, lin, test.ShouldResemble, r3.Vector{X: 0.5})
	test.That(t, ang, test.ShouldResemble, r3.Vector{Z: -0.2})
	test.That(t, VelocityFromVectors(lin, ang), test.ShouldResemble, v)
	test.That(t, v.IsZero(), test.ShouldBeFalse)
	test.That(t, Velocity{}.IsZero(), test.ShouldBeTrue)
}
