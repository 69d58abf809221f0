// Package rating implements the ELO-style update rules used to turn
// head-to-head judgments into per-position skill estimates.
//
// Every method on Model is pure: it reads the configured constants and its
// arguments and returns new values.
package rating

import (
	"math"
)

// Default rating model constants.
const (
	defaultInitialRating = 1500
	defaultMinRating     = 0
	defaultMaxRating     = 3000
	defaultDivisor       = 400
	defaultBase          = 10

	defaultBaseK   = 32
	defaultNoviceK = 40
	defaultExpertK = 24
	defaultMasterK = 16

	defaultNoviceComparisons = 10
	defaultExpertRating      = 2000
	defaultExpertComparisons = 20
	defaultMasterRating      = 2400
	defaultMasterComparisons = 30

	defaultReferencePool = 10
	defaultMinPoolFactor = 0.5
	defaultMaxPoolFactor = 1.5

	defaultTeamBalancedThreshold = 350
)

// Params holds every numeric constant the model depends on.
type Params struct {
	InitialRating float64 `koanf:"initial_rating"`
	MinRating     float64 `koanf:"min_rating"`
	MaxRating     float64 `koanf:"max_rating"`
	// ClampRatings bounds updated ratings to [MinRating, MaxRating].
	ClampRatings bool    `koanf:"clamp_ratings"`
	Divisor      float64 `koanf:"divisor"`
	Base         float64 `koanf:"base"`

	BaseK   float64 `koanf:"base_k"`
	NoviceK float64 `koanf:"novice_k"`
	ExpertK float64 `koanf:"expert_k"`
	MasterK float64 `koanf:"master_k"`

	NoviceComparisons int     `koanf:"novice_comparisons"`
	ExpertRating      float64 `koanf:"expert_rating"`
	ExpertComparisons int     `koanf:"expert_comparisons"`
	MasterRating      float64 `koanf:"master_rating"`
	MasterComparisons int     `koanf:"master_comparisons"`

	ReferencePool int     `koanf:"reference_pool"`
	MinPoolFactor float64 `koanf:"min_pool_factor"`
	MaxPoolFactor float64 `koanf:"max_pool_factor"`

	TeamBalancedThreshold float64 `koanf:"team_balanced_threshold"`
}

// DefaultParams returns the stock constants.
func DefaultParams() Params {
	return Params{
		InitialRating:         defaultInitialRating,
		MinRating:             defaultMinRating,
		MaxRating:             defaultMaxRating,
		Divisor:               defaultDivisor,
		Base:                  defaultBase,
		BaseK:                 defaultBaseK,
		NoviceK:               defaultNoviceK,
		ExpertK:               defaultExpertK,
		MasterK:               defaultMasterK,
		NoviceComparisons:     defaultNoviceComparisons,
		ExpertRating:          defaultExpertRating,
		ExpertComparisons:     defaultExpertComparisons,
		MasterRating:          defaultMasterRating,
		MasterComparisons:     defaultMasterComparisons,
		ReferencePool:         defaultReferencePool,
		MinPoolFactor:         defaultMinPoolFactor,
		MaxPoolFactor:         defaultMaxPoolFactor,
		TeamBalancedThreshold: defaultTeamBalancedThreshold,
	}
}

// Side is one participant's standing before a comparison.
type Side struct {
	Rating      float64
	Comparisons int
}

// SideResult is one participant's computed update.
type SideResult struct {
	OldRating float64 `json:"old_rating"`
	NewRating float64 `json:"new_rating"`
	Change    float64 `json:"change"`
	KFactor   float64 `json:"k_factor"`
	Expected  float64 `json:"expected"`
}

// Change is the pair of updates produced by one comparison. For a decisive
// outcome First is the winner and Second the loser.
type Change struct {
	First  SideResult `json:"first"`
	Second SideResult `json:"second"`
}

// Model computes rating updates from a fixed set of Params.
type Model struct {
	p Params
}

// New creates a rating model with default constants adjusted by opts.
func New(opts ...Option) *Model {
	m := &Model{p: DefaultParams()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Params returns the constants the model was built with.
func (m *Model) Params() Params { return m.p }

// ExpectedScore returns the probability that a player rated a beats a
// player rated b.
func (m *Model) ExpectedScore(a, b float64) float64 {
	return 1 / (1 + math.Pow(m.p.Base, (b-a)/m.p.Divisor))
}

// KFactor returns the learning rate for a player with the given experience
// and current rating.
func (m *Model) KFactor(comparisons int, rating float64) float64 {
	switch {
	case comparisons < m.p.NoviceComparisons:
		return m.p.NoviceK
	case rating >= m.p.MasterRating && comparisons >= m.p.MasterComparisons:
		return m.p.MasterK
	case rating >= m.p.ExpertRating && comparisons >= m.p.ExpertComparisons:
		return m.p.ExpertK
	default:
		return m.p.BaseK
	}
}

// PoolAdjustedKFactor dampens baseK for crowded positions and boosts it for
// small ones. A pool of one or fewer leaves baseK untouched.
func (m *Model) PoolAdjustedKFactor(baseK float64, poolSize int) float64 {
	if poolSize <= 1 {
		return baseK
	}
	factor := math.Sqrt(float64(m.p.ReferencePool) / float64(poolSize))
	factor = math.Max(m.p.MinPoolFactor, math.Min(m.p.MaxPoolFactor, factor))
	return roundHalfUp(baseK * factor)
}

// Outcome computes the updates for a decisive comparison. poolSize <= 0
// disables pool adjustment.
func (m *Model) Outcome(winner, loser Side, poolSize int) Change {
	return Change{
		First:  m.side(winner, loser, 1, poolSize),
		Second: m.side(loser, winner, 0, poolSize),
	}
}

// Draw computes the updates when neither side won.
func (m *Model) Draw(a, b Side, poolSize int) Change {
	return Change{
		First:  m.side(a, b, 0.5, poolSize),
		Second: m.side(b, a, 0.5, poolSize),
	}
}

func (m *Model) side(self, opponent Side, actual float64, poolSize int) SideResult {
	expected := m.ExpectedScore(self.Rating, opponent.Rating)
	k := m.KFactor(self.Comparisons, self.Rating)
	if poolSize > 0 {
		k = m.PoolAdjustedKFactor(k, poolSize)
	}
	next := self.Rating + k*(actual-expected)
	if m.p.ClampRatings {
		next = m.Clamp(next)
	}
	return SideResult{
		OldRating: self.Rating,
		NewRating: next,
		Change:    next - self.Rating,
		KFactor:   k,
		Expected:  expected,
	}
}

// Clamp bounds r to the configured rating range.
func (m *Model) Clamp(r float64) float64 {
	return math.Max(m.p.MinRating, math.Min(m.p.MaxRating, r))
}

// roundHalfUp rounds to the nearest integer value, ties toward +Inf.
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}
