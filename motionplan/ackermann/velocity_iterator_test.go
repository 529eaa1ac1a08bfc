package ackermann

import (
	"testing"

	"go.viam.com/test"
)

func collect(it *VelocityIterator) []float64 {
	var out []float64
	for ; !it.Done(); it.Next() {
		out = append(out, it.Value())
	}
	return out
}

func TestVelocityIteratorSingleSample(t *testing.T) {
	for _, tc := range []struct {
		lower, upper float64
	}{
		{-1, 1},
		{0.3, 0.3},
		{2, -2},
	} {
		vals := collect(NewVelocityIterator(tc.lower, tc.upper, 1))
		test.That(t, vals, test.ShouldResemble, []float64{tc.lower})
	}
	test.That(t, collect(NewVelocityIterator(-1, 1, 0)), test.ShouldResemble, []float64{-1})
}

func TestVelocityIteratorSpan(t *testing.T) {
	for _, count := range []int{2, 3, 7, 20} {
		it := NewVelocityIterator(-0.35, 1.1, count)
		vals := collect(it)
		test.That(t, len(vals), test.ShouldEqual, count)
		test.That(t, vals[0], test.ShouldEqual, -0.35)
		test.That(t, vals[len(vals)-1], test.ShouldAlmostEqual, 1.1)
		for i := 1; i < len(vals); i++ {
			test.That(t, vals[i], test.ShouldBeGreaterThan, vals[i-1])
		}
		test.That(t, it.Values(), test.ShouldHaveLength, count)
		for i, v := range it.Values() {
			test.That(t, v, test.ShouldAlmostEqual, vals[i])
		}
	}
}

func TestVelocityIteratorReset(t *testing.T) {
	it := NewVelocityIterator(0, 1, 3)
	first := collect(it)
	test.That(t, it.Done(), test.ShouldBeTrue)
	it.Reset()
	test.That(t, it.Done(), test.ShouldBeFalse)
	test.That(t, collect(it), test.ShouldResemble, first)
	test.That(t, first, test.ShouldResemble, []float64{0, 0.5, 1})
	test.That(t, it.Len(), test.ShouldEqual, 3)
}

func TestVelocityIteratorEmptyRange(t *testing.T) {
	vals := collect(NewVelocityIterator(0.2, 0.2, 4))
	test.That(t, vals, test.ShouldResemble, []float64{0.2, 0.2, 0.2, 0.2})
}
