package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CraigKelly/amwg/nested"
)

func testState(t *testing.T) *State {
	s := NewState()
	require.NoError(t, s.Put("mu", nested.Scalar(10.0)))
	require.NoError(t, s.Put("theta", nested.Of(nested.Vector(1.0, 2.0), nested.Vector(3.0, 4.0))))
	require.NoError(t, s.Put("sigma", nested.Vector(2.0)))
	return s
}

func TestStatePut(t *testing.T) {
	assert := assert.New(t)

	s := testState(t)
	assert.Equal([]string{"mu", "theta", "sigma"}, s.Names())
	assert.Error(s.Put("mu", nested.Scalar(1.0)))
	assert.Error(s.Put("ragged", nested.Of(nested.Vector(1.0), nested.Vector(1.0, 2.0))))

	// Put copies
	src := nested.Vector(1.0, 2.0)
	assert.NoError(s.Put("copy", src))
	assert.NoError(src.Set(5.0, 0))
	assert.Equal(1.0, s.Float("copy", 0))
}

func TestStateFloat(t *testing.T) {
	assert := assert.New(t)

	s := testState(t)
	assert.Equal(10.0, s.Float("mu"))
	assert.Equal(2.0, s.Float("sigma"))
	assert.Equal(3.0, s.Float("theta", 1, 0))

	assert.True(math.IsNaN(s.Float("theta")))
	assert.True(math.IsNaN(s.Float("missing")))
	assert.True(math.IsNaN(s.Float("theta", 5, 0)))
}

func TestStateCoordinates(t *testing.T) {
	assert := assert.New(t)

	s := testState(t)

	mu, err := s.Coordinate("mu")
	assert.NoError(err)
	assert.Equal(10.0, mu.Get())
	mu.Set(-1)
	assert.Equal(-1.0, s.Float("mu"))
	assert.Equal("mu", mu.String())

	th, err := s.Coordinate("theta", 0, 1)
	assert.NoError(err)
	th.Set(20)
	assert.Equal(20.0, s.Float("theta", 0, 1))
	assert.Equal("theta[0 1]", th.String())

	// Only the bound coordinate changes
	assert.Equal([]float64{1, 20, 3, 4}, s.Snapshot()["theta"].Leaves())

	_, err = s.Coordinate("theta", 0)
	assert.Error(err)
	_, err = s.Coordinate("nope")
	assert.Error(err)

	blk, err := s.Block("theta")
	assert.NoError(err)
	assert.Equal("theta", blk.Name())
	assert.Equal([]int{2, 2}, blk.Dim())
	c, err := blk.Coordinate(1, 1)
	assert.NoError(err)
	c.Set(40)
	assert.Equal(40.0, s.Float("theta", 1, 1))

	_, err = blk.Coordinate(2, 0)
	assert.Error(err)
	_, err = s.Block("nope")
	assert.Error(err)
}

func TestStateSnapshotIsolated(t *testing.T) {
	assert := assert.New(t)

	s := testState(t)
	snap := s.Snapshot()
	theta := snap["theta"]
	assert.NoError(theta.Set(99, 0, 0))
	assert.Equal(1.0, s.Float("theta", 0, 0))
}

func TestStateFromParams(t *testing.T) {
	assert := assert.New(t)

	params, err := CompleteParams([]*Param{{Name: "a"}, {Name: "b", Dim: Dims{3}}})
	assert.NoError(err)

	s, err := NewStateFromParams(params)
	assert.NoError(err)
	assert.Equal(0.5, s.Float("a"))
	arr, ok := s.Array("b")
	assert.True(ok)
	assert.Equal([]int{3}, arr.Dim())

	// State owns a copy of Init
	c, err := s.Coordinate("a", 0)
	assert.NoError(err)
	c.Set(7)
	assert.Equal([]float64{0.5}, params[0].Init.Leaves())

	_, err = NewStateFromParams([]*Param{{Name: "incomplete"}})
	assert.Error(err)
}
