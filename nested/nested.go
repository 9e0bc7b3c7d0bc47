// Package nested provides typed arrays of arbitrary depth. An Array is
// either a single value (a leaf) or an ordered sequence of Arrays. Parameter
// blocks, their per-coordinate tuning options and the samplers built over
// them all share this one representation, so their shapes can be compared
// directly.
package nested

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pkg/errors"
)

// ErrShape is the cause of every dimension related failure in this package.
var ErrShape = errors.New("shape mismatch")

// Array is a leaf value or an ordered sequence of Arrays. The zero value is
// an empty sequence. Copies of an Array share element storage, so setting a
// leaf through one copy is visible through the others; use Clone for an
// independent copy.
type Array[T any] struct {
	val   T
	elems []Array[T]
	leaf  bool
}

// Scalar returns a leaf holding v.
func Scalar[T any](v T) Array[T] {
	return Array[T]{val: v, leaf: true}
}

// Of returns a sequence of the given arrays.
func Of[T any](elems ...Array[T]) Array[T] {
	return Array[T]{elems: append([]Array[T]{}, elems...)}
}

// Vector returns a one dimensional sequence of leaves.
func Vector[T any](vals ...T) Array[T] {
	a := Array[T]{elems: make([]Array[T], len(vals))}
	for i, v := range vals {
		a.elems[i] = Scalar(v)
	}
	return a
}

// Fill creates an array of the given dimensions with every leaf set to v.
func Fill[T any](dim []int, v T) (Array[T], error) {
	return FillFunc(dim, func() T { return v })
}

// FillFunc creates an array of the given dimensions, calling f once per leaf
// in index order.
func FillFunc[T any](dim []int, f func() T) (Array[T], error) {
	if len(dim) < 1 {
		return Array[T]{}, errors.Wrap(ErrShape, "can not create a dimensionless array")
	}
	for _, d := range dim {
		if d < 1 {
			return Array[T]{}, errors.Wrapf(ErrShape, "invalid dimension %v", dim)
		}
	}
	return fill(dim, f), nil
}

func fill[T any](dim []int, f func() T) Array[T] {
	a := Array[T]{elems: make([]Array[T], dim[0])}
	for i := range a.elems {
		if len(dim) == 1 {
			a.elems[i] = Scalar(f())
		} else {
			a.elems[i] = fill(dim[1:], f)
		}
	}
	return a
}

// IsLeaf is true for a single value.
func (a Array[T]) IsLeaf() bool {
	return a.leaf
}

// Value returns the leaf value (the zero value for a sequence).
func (a Array[T]) Value() T {
	return a.val
}

// Len is the number of elements along the first dimension (0 for a leaf).
func (a Array[T]) Len() int {
	return len(a.elems)
}

// At returns element i of a sequence. It panics when i is out of range, like
// a slice index.
func (a Array[T]) At(i int) Array[T] {
	return a.elems[i]
}

// Dim returns the dimensions of the array, following the first element at
// every level. A leaf has no dimensions. Use Shape when the array may be
// ragged.
func (a Array[T]) Dim() []int {
	dim := []int{}
	for cur := a; !cur.leaf; cur = cur.elems[0] {
		dim = append(dim, len(cur.elems))
		if len(cur.elems) == 0 {
			break
		}
	}
	return dim
}

// Shape is Dim, but it checks that every element at each level has the same
// shape.
func (a Array[T]) Shape() ([]int, error) {
	if a.leaf {
		return []int{}, nil
	}
	if len(a.elems) == 0 {
		return []int{0}, nil
	}

	first, err := a.elems[0].Shape()
	if err != nil {
		return nil, err
	}
	for i, e := range a.elems[1:] {
		s, err := e.Shape()
		if err != nil {
			return nil, err
		}
		if !slices.Equal(first, s) {
			return nil, errors.Wrapf(ErrShape, "element %d has dimension %v but element 0 has %v", i+1, s, first)
		}
	}

	return append([]int{len(a.elems)}, first...), nil
}

// Sub returns the sub-array at path. The result shares storage with a.
func (a Array[T]) Sub(path ...int) (Array[T], error) {
	cur := a
	for depth, i := range path {
		if cur.leaf {
			return Array[T]{}, errors.Wrapf(ErrShape, "path %v is too deep (leaf at depth %d)", path, depth)
		}
		if i < 0 || i >= len(cur.elems) {
			return Array[T]{}, errors.Wrapf(ErrShape, "index %d out of range [0,%d) in path %v", i, len(cur.elems), path)
		}
		cur = cur.elems[i]
	}
	return cur, nil
}

// Get returns the leaf value at path.
func (a Array[T]) Get(path ...int) (T, error) {
	sub, err := a.Sub(path...)
	if err != nil {
		var zero T
		return zero, err
	}
	if !sub.leaf {
		var zero T
		return zero, errors.Wrapf(ErrShape, "path %v does not end at a leaf", path)
	}
	return sub.val, nil
}

// Ptr returns a pointer to the leaf value at path. The pointer stays valid
// for as long as the array's storage is not replaced.
func (a *Array[T]) Ptr(path ...int) (*T, error) {
	cur := a
	for depth, i := range path {
		if cur.leaf {
			return nil, errors.Wrapf(ErrShape, "path %v is too deep (leaf at depth %d)", path, depth)
		}
		if i < 0 || i >= len(cur.elems) {
			return nil, errors.Wrapf(ErrShape, "index %d out of range [0,%d) in path %v", i, len(cur.elems), path)
		}
		cur = &cur.elems[i]
	}
	if !cur.leaf {
		return nil, errors.Wrapf(ErrShape, "path %v does not end at a leaf", path)
	}
	return &cur.val, nil
}

// Set stores v in the leaf at path.
func (a *Array[T]) Set(v T, path ...int) error {
	p, err := a.Ptr(path...)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Clone returns a deep copy. Leaf values are copied by assignment.
func (a Array[T]) Clone() Array[T] {
	return Map(a, func(v T) T { return v })
}

// Leaves returns every leaf value in index order.
func (a Array[T]) Leaves() []T {
	var out []T
	a.Walk(func(_ []int, v T) {
		out = append(out, v)
	})
	return out
}

// Walk calls f for every leaf in index order with the leaf's path. The path
// slice is owned by f.
func (a Array[T]) Walk(f func(path []int, v T)) {
	a.walk(nil, f)
}

func (a Array[T]) walk(path []int, f func([]int, T)) {
	if a.leaf {
		f(slices.Clone(path), a.val)
		return
	}
	for i, e := range a.elems {
		e.walk(append(path, i), f)
	}
}

// String formats sequences in brackets, like fmt does for slices.
func (a Array[T]) String() string {
	if a.leaf {
		return fmt.Sprint(a.val)
	}
	parts := make([]string, len(a.elems))
	for i, e := range a.elems {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Map applies f to every leaf in index order and returns the results in an
// array of the same shape.
func Map[T, U any](a Array[T], f func(T) U) Array[U] {
	if a.leaf {
		return Scalar(f(a.val))
	}
	out := Array[U]{elems: make([]Array[U], len(a.elems))}
	for i, e := range a.elems {
		out.elems[i] = Map(e, f)
	}
	return out
}

// MapErr is Map for functions that can fail. It stops at the first error.
func MapErr[T, U any](a Array[T], f func(T) (U, error)) (Array[U], error) {
	if a.leaf {
		v, err := f(a.val)
		if err != nil {
			return Array[U]{}, err
		}
		return Scalar(v), nil
	}
	out := Array[U]{elems: make([]Array[U], len(a.elems))}
	for i, e := range a.elems {
		sub, err := MapErr(e, f)
		if err != nil {
			return Array[U]{}, err
		}
		out.elems[i] = sub
	}
	return out, nil
}

// Equal reports whether a and b have the same structure and leaf values.
func Equal[T comparable](a, b Array[T]) bool {
	if a.leaf != b.leaf {
		return false
	}
	if a.leaf {
		return a.val == b.val
	}
	if len(a.elems) != len(b.elems) {
		return false
	}
	for i := range a.elems {
		if !Equal(a.elems[i], b.elems[i]) {
			return false
		}
	}
	return true
}

// Broadcast resolves an optional setting against the dimensions of a
// block: nil yields def everywhere, a leaf is copied to every position, and
// a sequence must already have exactly the dimensions dim.
func Broadcast[T any](name string, opt *Array[T], dim []int, def T) (Array[T], error) {
	if opt == nil {
		return Fill(dim, def)
	}
	if opt.leaf {
		return Fill(dim, opt.val)
	}

	shape, err := opt.Shape()
	if err != nil {
		return Array[T]{}, errors.Wrapf(err, "option %s", name)
	}
	if !slices.Equal(shape, dim) {
		return Array[T]{}, errors.Wrapf(ErrShape, "option %s is of dimension %v but should be %v", name, shape, dim)
	}
	return opt.Clone(), nil
}
