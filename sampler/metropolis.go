package sampler

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/pkg/errors"

	"github.com/CraigKelly/amwg/model"
	"github.com/CraigKelly/amwg/nested"
)

// Metropolis is the batch adaptive random walk Metropolis sampler for a
// single scalar coordinate. After every BatchSize adapting iterations the
// log proposal scale moves up when the batch acceptance rate beat the
// target and down otherwise, by Adjustment(batchCount, MinAdaptation).
type Metropolis struct {
	gen    Source
	coord  model.Coordinate
	bounds Bounds
	post   LogDensity
	prop   Proposal
	name   string
	log    *slog.Logger

	propLogScale     float64
	batchSize        int
	minAdaptation    float64
	targetAcceptRate float64
	isAdapting       bool

	// acceptanceCount <= iterationsSinceAdaptation < batchSize between calls
	acceptanceCount           int
	batchCount                int
	iterationsSinceAdaptation int

	iterations int64
	accepted   int64
}

var _ Sampler = (*Metropolis)(nil)

// NewMetropolis creates a sampler that updates coord in place.
func NewMetropolis(gen Source, coord model.Coordinate, b Bounds, post LogDensity, prop Proposal, opts Options) (*Metropolis, error) {
	if gen == nil {
		return nil, errors.New("No random source supplied")
	}
	if coord == nil {
		return nil, errors.New("No coordinate supplied")
	}
	if post == nil {
		return nil, errors.New("No posterior supplied")
	}
	if prop == nil {
		return nil, errors.New("No proposal supplied")
	}
	if err := b.Check(); err != nil {
		return nil, errors.Wrap(err, "Invalid sampler bounds")
	}
	if err := opts.Check(); err != nil {
		return nil, errors.Wrap(err, "Invalid sampler options")
	}

	m := &Metropolis{
		gen:    gen,
		coord:  coord,
		bounds: b,
		post:   post,
		prop:   prop,
		log:    slog.New(slog.DiscardHandler),

		propLogScale:     opts.PropLogScale,
		batchSize:        opts.BatchSize,
		minAdaptation:    opts.MinAdaptation,
		targetAcceptRate: opts.TargetAcceptRate,
		isAdapting:       opts.IsAdapting,
	}
	if s, ok := coord.(fmt.Stringer); ok {
		m.name = s.String()
	}

	return m, nil
}

// NewRealMetropolis is NewMetropolis with normally distributed steps
func NewRealMetropolis(gen Source, coord model.Coordinate, b Bounds, post LogDensity, opts Options) (*Metropolis, error) {
	return NewMetropolis(gen, coord, b, post, NormalProposal(gen), opts)
}

// NewIntMetropolis is NewMetropolis with rounded normal steps
func NewIntMetropolis(gen Source, coord model.Coordinate, b Bounds, post LogDensity, opts Options) (*Metropolis, error) {
	return NewMetropolis(gen, coord, b, post, DiscreteNormalProposal(gen), opts)
}

// SetLogger sets where completed batches are reported (at debug level)
func (m *Metropolis) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	m.log = l
}

// Adjustment is the size of the change to the log proposal scale after
// batch number batchCount: 1/sqrt(batchCount), but never more than
// minAdaptation.
func Adjustment(batchCount int, minAdaptation float64) float64 {
	return math.Min(minAdaptation, 1/math.Sqrt(float64(batchCount)))
}

// Step performs one Metropolis update and returns the coordinate's value.
//
// A proposal outside the bounds is rejected without evaluating the
// posterior. Otherwise the posterior is evaluated at the current and the
// proposed value, and the proposal is kept with probability
// min(1, exp(difference)). A rejected proposal restores the exact previous
// value. Either way the call counts toward the adaptation batch.
func (m *Metropolis) Step() float64 {
	current := m.coord.Get()
	proposed := m.prop(current, m.propLogScale)

	if m.bounds.Contains(proposed) {
		currLogDens := m.post()
		m.coord.Set(proposed)
		propLogDens := m.post()

		// NaN (from NaN densities or -Inf - -Inf) never compares greater
		acceptProb := math.Exp(propLogDens - currLogDens)
		if acceptProb > m.gen.Float64() {
			m.accepted++
			if m.isAdapting {
				m.acceptanceCount++
			}
		} else {
			m.coord.Set(current)
		}
	}

	m.iterations++
	if m.isAdapting {
		m.iterationsSinceAdaptation++
		if m.iterationsSinceAdaptation >= m.batchSize {
			m.adapt()
		}
	}

	return m.coord.Get()
}

// adapt closes the current batch
func (m *Metropolis) adapt() {
	m.batchCount++
	adjustment := Adjustment(m.batchCount, m.minAdaptation)

	rate := float64(m.acceptanceCount) / float64(m.batchSize)
	if rate > m.targetAcceptRate {
		m.propLogScale += adjustment
	} else {
		m.propLogScale -= adjustment
	}

	if m.log.Enabled(context.Background(), slog.LevelDebug) {
		m.log.Debug("proposal scale adapted",
			"coordinate", m.name,
			"batch", m.batchCount,
			"accept_rate", rate,
			"prop_log_scale", m.propLogScale,
		)
	}

	m.acceptanceCount = 0
	m.iterationsSinceAdaptation = 0
}

// Next implements Sampler: Step wrapped in a leaf
func (m *Metropolis) Next() (nested.Array[float64], error) {
	return nested.Scalar(m.Step()), nil
}

// StartAdaptation implements Sampler
func (m *Metropolis) StartAdaptation() {
	m.isAdapting = true
}

// StopAdaptation implements Sampler. Batch counters keep their values, so
// a later StartAdaptation continues the interrupted batch.
func (m *Metropolis) StopAdaptation() {
	m.isAdapting = false
}

// Snapshot returns the current tuning state
func (m *Metropolis) Snapshot() Info {
	return Info{
		PropLogScale:              m.propLogScale,
		IsAdapting:                m.isAdapting,
		AcceptanceCount:           m.acceptanceCount,
		IterationsSinceAdaptation: m.iterationsSinceAdaptation,
		BatchCount:                m.batchCount,
		Iterations:                m.iterations,
		Accepted:                  m.accepted,
	}
}

// Info implements Sampler: Snapshot wrapped in a leaf
func (m *Metropolis) Info() nested.Array[Info] {
	return nested.Scalar(m.Snapshot())
}
