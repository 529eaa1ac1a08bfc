package ackermann

// selectBest returns whichever of best and candidate should be kept. An invalid candidate never
// wins. With penalizeNegativeX, driving forward beats reversing regardless of cost. Holding still
// is not driving forward, so a cheaper reverse may still replace a stationary best.
func selectBest(best, candidate Trajectory, penalizeNegativeX bool) Trajectory {
	if !candidate.Valid() {
		return best
	}
	if penalizeNegativeX && best.Valid() && best.Velocity.X > 0 && !candidate.Forward() {
		return best
	}
	if !best.Valid() || candidate.Cost < best.Cost ||
		(penalizeNegativeX && candidate.Forward() && !best.Forward()) {
		return candidate
	}
	return best
}
