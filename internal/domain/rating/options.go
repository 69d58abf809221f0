package rating

// Option applies a configuration option to the Model.
type Option func(*Model)

// WithParams replaces all constants. Non-positive divisor, base or
// reference pool values keep their defaults.
func WithParams(p Params) Option {
	return func(m *Model) {
		def := m.p
		m.p = p
		if p.Divisor <= 0 {
			m.p.Divisor = def.Divisor
		}
		if p.Base <= 1 {
			m.p.Base = def.Base
		}
		if p.ReferencePool <= 0 {
			m.p.ReferencePool = def.ReferencePool
		}
		if p.MinPoolFactor <= 0 || p.MaxPoolFactor < p.MinPoolFactor {
			m.p.MinPoolFactor = def.MinPoolFactor
			m.p.MaxPoolFactor = def.MaxPoolFactor
		}
	}
}

// WithInitialRating sets the rating new position tracks start at.
func WithInitialRating(r float64) Option {
	return func(m *Model) {
		m.p.InitialRating = r
	}
}

// WithClamp enables or disables bounding updated ratings.
func WithClamp(enabled bool) Option {
	return func(m *Model) {
		m.p.ClampRatings = enabled
	}
}

// WithKFactors sets the base, novice, expert and master learning rates.
func WithKFactors(base, novice, expert, master float64) Option {
	return func(m *Model) {
		if base > 0 && novice > 0 && expert > 0 && master > 0 {
			m.p.BaseK, m.p.NoviceK, m.p.ExpertK, m.p.MasterK = base, novice, expert, master
		}
	}
}

// WithPoolAdjustment sets the reference pool size and clamp bounds.
func WithPoolAdjustment(reference int, minFactor, maxFactor float64) Option {
	return func(m *Model) {
		if reference > 0 && minFactor > 0 && maxFactor >= minFactor {
			m.p.ReferencePool = reference
			m.p.MinPoolFactor = minFactor
			m.p.MaxPoolFactor = maxFactor
		}
	}
}

// WithTeamBalancedThreshold sets the spread under which teams count as balanced.
func WithTeamBalancedThreshold(threshold float64) Option {
	return func(m *Model) {
		if threshold > 0 {
			m.p.TeamBalancedThreshold = threshold
		}
	}
}
