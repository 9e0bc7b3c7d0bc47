package sampler

import (
	"log/slog"
	"slices"

	"github.com/pkg/errors"

	"github.com/CraigKelly/amwg/nested"
)

// Multivariate samples a block of any shape with one Metropolis sampler per
// coordinate. The samplers form a tree with exactly the block's
// dimensions; every operation visits the leaves in index order and returns
// results in that same shape. All leaves share one posterior, so each
// update sees the latest value of every other coordinate.
type Multivariate struct {
	dim  []int
	subs nested.Array[*Metropolis]
}

var _ Sampler = (*Multivariate)(nil)

// NewMultivariate creates a sampler for a block with dimensions dim. The
// block's current value must have those dimensions, as must any array
// valued field of cfg.
func NewMultivariate(gen Source, block Block, b Bounds, dim []int, post LogDensity, prop Proposal, cfg Config) (*Multivariate, error) {
	if block == nil {
		return nil, errors.New("No block supplied")
	}
	if !slices.Equal(block.Dim(), dim) {
		return nil, errors.Wrapf(nested.ErrShape, "block is of dimension %v but should be %v", block.Dim(), dim)
	}

	opts, err := cfg.Leaves(dim)
	if err != nil {
		return nil, errors.Wrap(err, "Invalid sampler options")
	}

	newLeaf := func(path []int, o Options) (*Metropolis, error) {
		coord, err := block.Coordinate(path...)
		if err != nil {
			return nil, err
		}
		m, err := NewMetropolis(gen, coord, b, post, prop, o)
		if err != nil {
			return nil, errors.Wrapf(err, "coordinate %v", path)
		}
		return m, nil
	}

	subs, err := createSubsamplers(dim, nil, opts, newLeaf)
	if err != nil {
		return nil, err
	}

	return &Multivariate{
		dim:  slices.Clone(dim),
		subs: subs,
	}, nil
}

// NewRealMultivariate is NewMultivariate with normally distributed steps
func NewRealMultivariate(gen Source, block Block, b Bounds, dim []int, post LogDensity, cfg Config) (*Multivariate, error) {
	return NewMultivariate(gen, block, b, dim, post, NormalProposal(gen), cfg)
}

// NewIntMultivariate is NewMultivariate with rounded normal steps
func NewIntMultivariate(gen Source, block Block, b Bounds, dim []int, post LogDensity, cfg Config) (*Multivariate, error) {
	return NewMultivariate(gen, block, b, dim, post, DiscreteNormalProposal(gen), cfg)
}

// createSubsamplers builds one level of the tree: a sampler per index for
// the last dimension, otherwise a subtree per index of the first.
func createSubsamplers(
	dim []int,
	path []int,
	opts nested.Array[Options],
	newLeaf func([]int, Options) (*Metropolis, error),
) (nested.Array[*Metropolis], error) {
	subs := make([]nested.Array[*Metropolis], dim[0])
	for i := 0; i < dim[0]; i++ {
		here := append(slices.Clone(path), i)
		if len(dim) == 1 {
			m, err := newLeaf(here, opts.At(i).Value())
			if err != nil {
				return nested.Array[*Metropolis]{}, err
			}
			subs[i] = nested.Scalar(m)
		} else {
			sub, err := createSubsamplers(dim[1:], here, opts.At(i), newLeaf)
			if err != nil {
				return nested.Array[*Metropolis]{}, err
			}
			subs[i] = sub
		}
	}
	return nested.Of(subs...), nil
}

// Dim returns the block dimensions
func (mv *Multivariate) Dim() []int {
	return slices.Clone(mv.dim)
}

// Leaf returns the sampler for a single coordinate
func (mv *Multivariate) Leaf(path ...int) (*Metropolis, error) {
	return mv.subs.Get(path...)
}

// SetLogger sets the logger of every coordinate
func (mv *Multivariate) SetLogger(l *slog.Logger) {
	mv.subs.Walk(func(_ []int, m *Metropolis) {
		m.SetLogger(l)
	})
}

// Next implements Sampler: one sweep over every coordinate
func (mv *Multivariate) Next() (nested.Array[float64], error) {
	return nested.Map(mv.subs, (*Metropolis).Step), nil
}

// StartAdaptation implements Sampler
func (mv *Multivariate) StartAdaptation() {
	mv.subs.Walk(func(_ []int, m *Metropolis) {
		m.StartAdaptation()
	})
}

// StopAdaptation implements Sampler
func (mv *Multivariate) StopAdaptation() {
	mv.subs.Walk(func(_ []int, m *Metropolis) {
		m.StopAdaptation()
	})
}

// Info implements Sampler
func (mv *Multivariate) Info() nested.Array[Info] {
	return nested.Map(mv.subs, (*Metropolis).Snapshot)
}
