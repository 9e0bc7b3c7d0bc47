package nested

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFill(t *testing.T) {
	assert := assert.New(t)

	a, err := Fill([]int{3, 2}, 1.5)
	assert.NoError(err)
	assert.Equal([]int{3, 2}, a.Dim())
	assert.Equal(3, a.Len())
	assert.Equal([]float64{1.5, 1.5, 1.5, 1.5, 1.5, 1.5}, a.Leaves())

	_, err = Fill([]int{}, 1)
	assert.Error(err)
	assert.True(errors.Is(err, ErrShape))

	_, err = Fill([]int{2, 0}, 1)
	assert.Error(err)

	count := 0
	b, err := FillFunc([]int{2, 2}, func() int { count++; return count })
	assert.NoError(err)
	assert.Equal([]int{1, 2, 3, 4}, b.Leaves())
}

func TestDimAndShape(t *testing.T) {
	assert := assert.New(t)

	assert.Equal([]int{}, Scalar(4).Dim())
	assert.Equal([]int{0}, Of[int]().Dim())
	assert.Equal([]int{4, 2, 1}, must(Fill([]int{4, 2, 1}, 0)).Dim())

	ragged := Of(Vector(1, 2), Vector(3))
	assert.Equal([]int{2, 2}, ragged.Dim())
	_, err := ragged.Shape()
	assert.Error(err)

	mixed := Of(Vector(1, 2), Scalar(3))
	_, err = mixed.Shape()
	assert.Error(err)

	shape, err := Of(Vector(1, 2), Vector(3, 4)).Shape()
	assert.NoError(err)
	assert.Equal([]int{2, 2}, shape)
}

func TestGetSet(t *testing.T) {
	assert := assert.New(t)

	a := Of(Vector(1, 2), Of(Scalar(5), Vector(6, 7)))

	v, err := a.Get(1, 1, 0)
	assert.NoError(err)
	assert.Equal(6, v)

	_, err = a.Get(1)
	assert.Error(err, "path ends at a sequence")
	_, err = a.Get(0, 0, 0)
	assert.Error(err, "path too deep")
	_, err = a.Get(2)
	assert.Error(err, "out of range")

	// A copy shares storage
	cp := a
	assert.NoError(cp.Set(42, 0, 1))
	v, err = a.Get(0, 1)
	assert.NoError(err)
	assert.Equal(42, v)

	p, err := a.Ptr(1, 0)
	assert.NoError(err)
	*p = 50
	assert.Equal(50, must(a.Get(1, 0)))

	s := Scalar(3.0)
	assert.NoError(s.Set(4.0))
	assert.Equal(4.0, s.Value())
}

func TestCloneIsDeep(t *testing.T) {
	assert := assert.New(t)

	a := Of(Vector(1, 2), Vector(3, 4))
	b := a.Clone()
	assert.True(Equal(a, b))

	assert.NoError(b.Set(9, 1, 1))
	assert.False(Equal(a, b))
	assert.Equal(4, must(a.Get(1, 1)))
}

func TestMap(t *testing.T) {
	assert := assert.New(t)

	a := Of(Vector(1, 2, 3), Vector(4, 5, 6))

	var order []int
	b := Map(a, func(v int) float64 {
		order = append(order, v)
		return float64(v) / 2
	})
	assert.Equal([]int{1, 2, 3, 4, 5, 6}, order)
	assert.Equal([]int{2, 3}, b.Dim())
	assert.Equal(2.5, must(b.Get(1, 1)))

	calls := 0
	_, err := MapErr(a, func(v int) (int, error) {
		calls++
		if v == 3 {
			return 0, errors.New("boom")
		}
		return v, nil
	})
	assert.Error(err)
	assert.Equal(3, calls)
}

func TestWalk(t *testing.T) {
	assert := assert.New(t)

	a := Of(Vector("a", "b"), Vector("c", "d"))
	var paths [][]int
	a.Walk(func(path []int, _ string) {
		paths = append(paths, path)
	})
	assert.Equal([][]int{{0, 0}, {0, 1}, {1, 0}, {1, 1}}, paths)
	assert.Equal("[[a b] [c d]]", a.String())
}

func TestBroadcast(t *testing.T) {
	assert := assert.New(t)
	dim := []int{3, 2}

	a, err := Broadcast[int]("batch_size", nil, dim, 50)
	assert.NoError(err)
	assert.Equal([]int{50, 50, 50, 50, 50, 50}, a.Leaves())

	s := Scalar(7)
	a, err = Broadcast("batch_size", &s, dim, 50)
	assert.NoError(err)
	assert.Equal([]int{3, 2}, a.Dim())
	assert.Equal([]int{7, 7, 7, 7, 7, 7}, a.Leaves())

	full := Of(Vector(1, 2), Vector(3, 4), Vector(5, 6))
	a, err = Broadcast("batch_size", &full, dim, 50)
	assert.NoError(err)
	assert.True(Equal(full, a))

	wrong := Vector(1, 2)
	_, err = Broadcast("batch_size", &wrong, dim, 50)
	require.Error(t, err)
	assert.True(errors.Is(err, ErrShape))
	assert.Contains(err.Error(), "option batch_size is of dimension [2] but should be [3 2]")
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
