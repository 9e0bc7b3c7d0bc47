package sampler

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	"github.com/CraigKelly/amwg/model"
	"github.com/CraigKelly/amwg/rand"
)

func TestProposalScaling(t *testing.T) {
	assert := assert.New(t)

	src := &scriptSource{uniforms: []float64{0}, normal: 1.5}

	prop := NormalProposal(src)
	assert.InDelta(3.0, prop(0, math.Log(2)), 1e-12)
	assert.InDelta(11.5, prop(10, 0), 1e-12)

	disc := DiscreteNormalProposal(src)
	assert.Equal(2.0, disc(1, math.Log(1.0/1.5)+math.Log(1.4))) // 1 + 1.4 rounds down
	assert.Equal(3.0, disc(1, math.Log(1.0/1.5)+math.Log(1.6))) // 1 + 1.6 rounds up

	src.normal = -0.5
	assert.Equal(-1.0, disc(0, 0)) // halves away from zero
	src.normal = 0.5
	assert.Equal(1.0, disc(0, 0))
}

func TestProposalDistribution(t *testing.T) {
	assert := assert.New(t)

	gen, err := rand.NewGenerator(21)
	require.NoError(t, err)
	prop := NormalProposal(gen)

	const n = 20000
	steps := make([]float64, n)
	for i := range steps {
		steps[i] = prop(5, math.Log(3)) - 5
	}
	assert.InDelta(0.0, stat.Mean(steps, nil), 0.1)
	assert.InDelta(3.0, stat.StdDev(steps, nil), 0.1)
}

func TestProposalFor(t *testing.T) {
	assert := assert.New(t)

	src := &scriptSource{uniforms: []float64{0}, normal: 0.3}

	cont, err := ProposalFor(model.Real, src)
	assert.NoError(err)
	assert.InDelta(1.3, cont(1, 0), 1e-12)

	for _, typ := range []model.ParamType{model.Int, model.Binary} {
		p, err := ProposalFor(typ, src)
		assert.NoError(err)
		assert.Equal(1.0, p(1, 0))
	}

	_, err = ProposalFor(model.ParamType("complex"), src)
	assert.Error(err)
	assert.True(errors.Is(err, model.ErrUnsupportedType))
}
