package sampler

import (
	"math"

	"github.com/pkg/errors"

	"github.com/CraigKelly/amwg/model"
)

// Proposal generates a proposed value from the current value and the log of
// the proposal scale.
type Proposal func(current float64, logScale float64) float64

// NormalProposal takes normally distributed steps with standard deviation
// exp(logScale).
func NormalProposal(src Source) Proposal {
	return func(current float64, logScale float64) float64 {
		return current + src.NormFloat64()*math.Exp(logScale)
	}
}

// DiscreteNormalProposal is NormalProposal rounded to the nearest integer
// (halves away from zero).
func DiscreteNormalProposal(src Source) Proposal {
	normal := NormalProposal(src)
	return func(current float64, logScale float64) float64 {
		return math.Round(normal(current, logScale))
	}
}

// ProposalFor picks the proposal matching a parameter type: continuous steps
// for real parameters, integer steps for int and binary ones.
func ProposalFor(typ model.ParamType, src Source) (Proposal, error) {
	switch typ {
	case model.Real:
		return NormalProposal(src), nil
	case model.Int, model.Binary:
		return DiscreteNormalProposal(src), nil
	}
	return nil, errors.Wrapf(model.ErrUnsupportedType, "No proposal for parameter type %q", typ)
}
