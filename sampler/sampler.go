// Package sampler implements Adaptive Metropolis-within-Gibbs (Roberts and
// Rosenthal, "Examples of Adaptive MCMC", 2008).
//
// Each scalar coordinate gets its own random walk Metropolis sampler whose
// proposal scale is tuned in batches toward a target acceptance rate, with
// adjustments that shrink as batches accumulate. Blocks of any shape are
// sampled by a tree of such samplers that mirrors the block's dimensions.
//
// Samplers do not run chains. A driver owns a model.State and a posterior
// closure over it, builds one Sampler per parameter and calls Next on each
// in turn. Nothing here is safe for concurrent use.
package sampler

import (
	"math"

	"github.com/pkg/errors"

	"github.com/CraigKelly/amwg/model"
	"github.com/CraigKelly/amwg/nested"
)

// ErrNotImplemented is returned by sampler kinds that do not provide an
// operation. It is always a programming error.
var ErrNotImplemented = errors.New("sampler capability not implemented")

// A Sampler produces the next value(s) for one parameter or block, changing
// the shared state as it goes.
type Sampler interface {
	// Next performs one update and returns the new value(s), shaped like
	// the parameter.
	Next() (nested.Array[float64], error)
	// StartAdaptation resumes tuning on subsequent calls to Next.
	StartAdaptation()
	// StopAdaptation freezes tuning.
	StopAdaptation()
	// Info returns a snapshot of tuning state, shaped like the parameter.
	Info() nested.Array[Info]
}

// Unimplemented is embedded by new sampler kinds. Next fails with
// ErrNotImplemented until it is overridden; adaptation is a no-op and Info
// is empty.
type Unimplemented struct{}

// Next always fails
func (Unimplemented) Next() (nested.Array[float64], error) {
	return nested.Array[float64]{}, errors.Wrap(ErrNotImplemented, "every sampler needs to implement Next")
}

// StartAdaptation does nothing
func (Unimplemented) StartAdaptation() {}

// StopAdaptation does nothing
func (Unimplemented) StopAdaptation() {}

// Info returns an empty array
func (Unimplemented) Info() nested.Array[Info] {
	return nested.Of[Info]()
}

// LogDensity returns the unnormalized log posterior for the current state.
// It may return -Inf; NaN is treated as a rejection.
type LogDensity func() float64

// Source is the random stream a sampler draws from. *rand.Generator is the
// usual implementation.
type Source interface {
	Float64() float64
	NormFloat64() float64
}

// Block is access to every scalar of a multi-dimensional parameter.
// *model.BlockSlot is the usual implementation.
type Block interface {
	Dim() []int
	Coordinate(path ...int) (model.Coordinate, error)
}

// Bounds is the support of a coordinate. Either end may be infinite.
type Bounds struct {
	Lower float64
	Upper float64
}

// Unbounded is the whole real line
func Unbounded() Bounds {
	return Bounds{Lower: math.Inf(-1), Upper: math.Inf(1)}
}

// Contains is false for values outside [Lower, Upper] and for NaN
func (b Bounds) Contains(v float64) bool {
	return v >= b.Lower && v <= b.Upper
}

// Check returns an error for NaN or inverted bounds
func (b Bounds) Check() error {
	if math.IsNaN(b.Lower) || math.IsNaN(b.Upper) || b.Lower > b.Upper {
		return errors.Wrapf(model.ErrInvalidBounds, "[%v, %v]", b.Lower, b.Upper)
	}
	return nil
}

// Info is a snapshot of one coordinate's tuning and bookkeeping
type Info struct {
	PropLogScale              float64 `yaml:"prop_log_scale"`
	IsAdapting                bool    `yaml:"is_adapting"`
	AcceptanceCount           int     `yaml:"acceptance_count"`
	IterationsSinceAdaptation int     `yaml:"iterations_since_adaptation"`
	BatchCount                int     `yaml:"batch_count"`

	Iterations int64 `yaml:"iterations"` // All calls, adapting or not
	Accepted   int64 `yaml:"accepted"`   // All acceptances, adapting or not
}

// AcceptRate is the lifetime acceptance rate (0 before the first call)
func (i Info) AcceptRate() float64 {
	if i.Iterations < 1 {
		return 0
	}
	return float64(i.Accepted) / float64(i.Iterations)
}
