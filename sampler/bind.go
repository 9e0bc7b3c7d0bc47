package sampler

import (
	"github.com/pkg/errors"

	"github.com/CraigKelly/amwg/model"
)

// ForParam creates the sampler for one completed parameter whose value is
// held in st. Scalar parameters get a single Metropolis sampler unless cfg
// has per coordinate arrays; everything else gets a Multivariate sampler
// over the whole block. The proposal follows the parameter type.
func ForParam(gen Source, p *model.Param, st *model.State, post LogDensity, cfg Config) (Sampler, error) {
	if err := p.Check(); err != nil {
		return nil, errors.Wrap(err, "Can not sample an incomplete parameter")
	}

	prop, err := ProposalFor(p.Type, gen)
	if err != nil {
		return nil, err
	}

	lower, upper := p.Bounds()
	b := Bounds{Lower: lower, Upper: upper}

	if p.IsScalar() && !cfg.HasArrays() {
		coord, err := st.Coordinate(p.Name, 0)
		if err != nil {
			return nil, err
		}
		opts, err := cfg.Options()
		if err != nil {
			return nil, errors.Wrapf(err, "Parameter %s", p.Name)
		}
		m, err := NewMetropolis(gen, coord, b, post, prop, opts)
		if err != nil {
			return nil, errors.Wrapf(err, "Parameter %s", p.Name)
		}
		return m, nil
	}

	block, err := st.Block(p.Name)
	if err != nil {
		return nil, err
	}
	mv, err := NewMultivariate(gen, block, b, p.Dim, post, prop, cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "Parameter %s", p.Name)
	}
	return mv, nil
}

// ForModel creates one sampler per model parameter, in declaration order,
// using the options section of the model.
func ForModel(gen Source, m *model.Model, st *model.State, post LogDensity) ([]Sampler, error) {
	mc, err := ConfigFromModel(m)
	if err != nil {
		return nil, err
	}

	samplers := make([]Sampler, len(m.Params))
	for i, p := range m.Params {
		samplers[i], err = ForParam(gen, p, st, post, mc.For(p.Name))
		if err != nil {
			return nil, err
		}
	}
	return samplers, nil
}
