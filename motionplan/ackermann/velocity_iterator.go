package ackermann

import "gonum.org/v1/gonum/floats"

// VelocityIterator yields count evenly spaced velocities covering [lower, upper]. With a single sample
// it yields lower. It can be restarted with Reset.
type VelocityIterator struct {
	lower, upper float64
	count        int
	index        int
}

// NewVelocityIterator creates an iterator over [lower, upper]. Counts below one are treated as one.
func NewVelocityIterator(lower, upper float64, count int) *VelocityIterator {
	if count < 1 {
		count = 1
	}
	return &VelocityIterator{lower: lower, upper: upper, count: count}
}

// Done reports whether every sample has been yielded.
func (it *VelocityIterator) Done() bool {
	return it.index >= it.count
}

// Value returns the current sample.
func (it *VelocityIterator) Value() float64 {
	if it.count == 1 {
		return it.lower
	}
	if it.index == it.count-1 {
		return it.upper
	}
	step := (it.upper - it.lower) / float64(it.count-1)
	return it.lower + float64(it.index)*step
}

// Next advances to the next sample.
func (it *VelocityIterator) Next() {
	it.index++
}

// Reset restarts the iteration from lower.
func (it *VelocityIterator) Reset() {
	it.index = 0
}

// Len returns the number of samples the iterator yields.
func (it *VelocityIterator) Len() int {
	return it.count
}

// Values returns every sample at once.
func (it *VelocityIterator) Values() []float64 {
	if it.count == 1 {
		return []float64{it.lower}
	}
	return floats.Span(make([]float64, it.count), it.lower, it.upper)
}
