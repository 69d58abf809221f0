package teams

import "time"

// Option applies a configuration option to the Optimizer.
type Option func(*Optimizer)

// WithMaxIterations caps the number of local-search passes.
func WithMaxIterations(n int) Option {
	return func(o *Optimizer) {
		if n >= 0 {
			o.maxIterations = n
		}
	}
}

// WithTimeBudget stops local search once d has elapsed. Zero disables it.
func WithTimeBudget(d time.Duration) Option {
	return func(o *Optimizer) {
		if d >= 0 {
			o.timeBudget = d
		}
	}
}

// WithBalanceDecay sets the spread at which the balance quality reaches zero.
func WithBalanceDecay(decay float64) Option {
	return func(o *Optimizer) {
		if decay > 0 {
			o.balanceDecay = decay
		}
	}
}

// WithClock overrides the time source used for the time budget.
func WithClock(now func() time.Time) Option {
	return func(o *Optimizer) {
		if now != nil {
			o.now = now
		}
	}
}
