package model

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"

	"github.com/CraigKelly/amwg/nested"
)

func fptr(f float64) *float64 {
	return &f
}

func TestInitValue(t *testing.T) {
	assert := assert.New(t)
	inf := math.Inf(1)

	cases := []struct {
		typ   ParamType
		lower float64
		upper float64
		exp   float64
	}{
		{Real, -inf, inf, 0.5},
		{Real, -inf, 3, 2.5},
		{Real, 3, inf, 3.5},
		{Real, 1, 2, 1.5},
		{Real, 2, 2, 2},
		{Int, -inf, inf, 1},
		{Int, -inf, 3, 2},
		{Int, 3, inf, 4},
		{Int, 1, 4, 3}, // 2.5 rounds away from zero
		{Binary, -inf, inf, 1},
	}

	for _, c := range cases {
		v, err := InitValue(c.typ, c.lower, c.upper)
		assert.NoError(err, "%s[%v, %v]", c.typ, c.lower, c.upper)
		assert.Equal(c.exp, v, "%s[%v, %v]", c.typ, c.lower, c.upper)
	}

	_, err := InitValue("complex", 0, 1)
	assert.True(errors.Is(err, ErrUnsupportedType))

	_, err = InitValue(Real, 2, 1)
	assert.True(errors.Is(err, ErrInvalidBounds))

	_, err = InitValue(Int, 2, 1)
	assert.True(errors.Is(err, ErrInvalidBounds))
}

func TestCompleteDefaults(t *testing.T) {
	assert := assert.New(t)

	p := &Param{Name: "mu"}
	assert.NoError(p.Complete())
	assert.Equal(Real, p.Type)
	assert.Equal(Dims{1}, p.Dim)
	assert.True(p.IsScalar())

	lower, upper := p.Bounds()
	assert.True(math.IsInf(lower, -1))
	assert.True(math.IsInf(upper, 1))
	assert.Equal([]int{1}, p.Init.Dim())
	assert.Equal([]float64{0.5}, p.Init.Leaves())

	b := &Param{Name: "flag", Type: Binary, Dim: Dims{2}}
	assert.NoError(b.Complete())
	lower, upper = b.Bounds()
	assert.Equal(0.0, lower)
	assert.Equal(1.0, upper)
	assert.Equal([]float64{1, 1}, b.Init.Leaves())
}

func TestCompleteInit(t *testing.T) {
	assert := assert.New(t)

	scalar := nested.Scalar(3.0)
	p := &Param{Name: "theta", Dim: Dims{3, 2}, Init: &scalar}
	assert.NoError(p.Complete())
	assert.Equal([]int{3, 2}, p.Init.Dim())
	assert.Equal([]float64{3, 3, 3, 3, 3, 3}, p.Init.Leaves())

	p = &Param{Name: "theta", Type: Int, Dim: Dims{2}, Lower: fptr(0), Upper: fptr(10)}
	assert.NoError(p.Complete())
	assert.Equal([]float64{5, 5}, p.Init.Leaves())

	wrong := nested.Vector(1.0, 2.0, 3.0)
	p = &Param{Name: "theta", Dim: Dims{2}, Init: &wrong}
	err := p.Complete()
	assert.Error(err)
	assert.True(errors.Is(err, nested.ErrShape))
}

func TestCompleteErrors(t *testing.T) {
	assert := assert.New(t)

	err := (&Param{Name: "x", Type: "complex"}).Complete()
	assert.True(errors.Is(err, ErrUnsupportedType))

	err = (&Param{Name: "x", Lower: fptr(1), Upper: fptr(0)}).Complete()
	assert.True(errors.Is(err, ErrInvalidBounds))

	err = (&Param{Name: "x", Lower: fptr(math.NaN())}).Complete()
	assert.True(errors.Is(err, ErrInvalidBounds))

	err = (&Param{Name: "x", Dim: Dims{2, 0}}).Complete()
	assert.True(errors.Is(err, nested.ErrShape))

	assert.Error((&Param{}).Complete())
}

func TestCompleteParamsDoesNotChangeOriginals(t *testing.T) {
	assert := assert.New(t)

	orig := []*Param{{Name: "a"}, {Name: "b", Dim: Dims{2}}}
	done, err := CompleteParams(orig)
	assert.NoError(err)
	assert.Len(done, 2)

	assert.Empty(orig[0].Type)
	assert.Nil(orig[1].Init)
	assert.Equal(Real, done[0].Type)
	assert.Equal([]float64{0.5, 0.5}, done[1].Init.Leaves())

	_, err = CompleteParams([]*Param{{Name: "a", Type: "nope"}})
	assert.Error(err)
}

func TestDimsYAML(t *testing.T) {
	assert := assert.New(t)

	var p Param
	assert.NoError(yaml.Unmarshal([]byte("{name: a, dim: 3}"), &p))
	assert.Equal(Dims{3}, p.Dim)

	assert.NoError(yaml.Unmarshal([]byte("{name: a, dim: [3, 2], lower: -.inf, upper: 4}"), &p))
	assert.Equal(Dims{3, 2}, p.Dim)
	assert.True(math.IsInf(*p.Lower, -1))
	assert.Equal(4.0, *p.Upper)

	assert.Error(yaml.Unmarshal([]byte("{name: a, dim: x}"), &p))
}
