package nested

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"
)

func TestYAMLScalarOrList(t *testing.T) {
	assert := assert.New(t)

	type opts struct {
		Scale *Array[float64] `yaml:"scale"`
		Batch *Array[int]     `yaml:"batch"`
		Adapt *Array[bool]    `yaml:"adapt"`
		Upper *Array[float64] `yaml:"upper"`
	}

	src := `
scale: [[0.1, 0.2], [0.3, 0.4], [0.5, 0.6]]
batch: 25
upper: .inf
`
	var o opts
	assert.NoError(yaml.Unmarshal([]byte(src), &o))

	assert.NotNil(o.Scale)
	assert.Equal([]int{3, 2}, o.Scale.Dim())
	assert.Equal(0.4, must(o.Scale.Get(1, 1)))

	assert.NotNil(o.Batch)
	assert.True(o.Batch.IsLeaf())
	assert.Equal(25, o.Batch.Value())

	assert.Nil(o.Adapt)
	assert.True(math.IsInf(o.Upper.Value(), 1))
}

func TestYAMLBadValue(t *testing.T) {
	var a Array[int]
	err := yaml.Unmarshal([]byte("[1, two, 3]"), &a)
	assert.Error(t, err)

	err = yaml.Unmarshal([]byte("{a: 1}"), &a)
	assert.Error(t, err)
}

func TestYAMLMarshal(t *testing.T) {
	assert := assert.New(t)

	a := Of(Vector(1, 2), Vector(3, 4))
	out, err := yaml.Marshal(a)
	assert.NoError(err)

	var back Array[int]
	assert.NoError(yaml.Unmarshal(out, &back))
	assert.True(Equal(a, back))
}
