package model

import (
	"fmt"
	"math"
	"slices"

	"github.com/pkg/errors"

	"github.com/CraigKelly/amwg/nested"
)

// Coordinate is read/write access to one scalar slot of a State. Samplers
// are handed a Coordinate instead of the State itself, so they can only
// change the value they are bound to.
type Coordinate interface {
	Get() float64
	Set(float64)
}

// State holds the current value of every parameter, keyed by name. It is
// owned by whoever drives the chain; samplers only get Coordinates into it.
// State is not safe for concurrent use.
type State struct {
	values map[string]*nested.Array[float64]
	names  []string
}

// NewState returns an empty state
func NewState() *State {
	return &State{
		values: make(map[string]*nested.Array[float64]),
	}
}

// NewStateFromParams seeds a state with every (completed) parameter's Init.
func NewStateFromParams(params []*Param) (*State, error) {
	s := NewState()
	for _, p := range params {
		if err := p.Check(); err != nil {
			return nil, errors.Wrap(err, "Can not create state from incomplete parameter")
		}
		if err := s.Put(p.Name, *p.Init); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Put adds a new parameter value. The state stores its own copy. Names may
// only be added once: Coordinates handed out earlier would otherwise point
// at storage the state no longer uses.
func (s *State) Put(name string, v nested.Array[float64]) error {
	if _, ok := s.values[name]; ok {
		return errors.Errorf("Duplicate state entry %s", name)
	}
	if _, err := v.Shape(); err != nil {
		return errors.Wrapf(err, "State entry %s", name)
	}

	cp := v.Clone()
	s.values[name] = &cp
	s.names = append(s.names, name)
	return nil
}

// Names returns parameter names in the order they were added
func (s *State) Names() []string {
	return slices.Clone(s.names)
}

// Array returns the current value of a parameter. The result shares storage
// with the state and must be treated as read only.
func (s *State) Array(name string) (nested.Array[float64], bool) {
	v, ok := s.values[name]
	if !ok {
		return nested.Array[float64]{}, false
	}
	return *v, true
}

// Float returns one scalar of a parameter. With no path it returns the
// parameter's only value (a scalar, or a block with a single element). It
// returns NaN when there is no such value, which any posterior will turn
// into a rejection.
func (s *State) Float(name string, path ...int) float64 {
	v, ok := s.values[name]
	if !ok {
		return math.NaN()
	}

	if len(path) == 0 {
		cur := *v
		for !cur.IsLeaf() && cur.Len() == 1 {
			cur = cur.At(0)
		}
		if !cur.IsLeaf() {
			return math.NaN()
		}
		return cur.Value()
	}

	f, err := v.Get(path...)
	if err != nil {
		return math.NaN()
	}
	return f
}

// Coordinate returns an accessor for a single scalar of a parameter
func (s *State) Coordinate(name string, path ...int) (*Slot, error) {
	v, ok := s.values[name]
	if !ok {
		return nil, errors.Errorf("Unknown parameter %s", name)
	}

	p, err := v.Ptr(path...)
	if err != nil {
		return nil, errors.Wrapf(err, "Invalid coordinate for %s", name)
	}

	return &Slot{name: name, path: slices.Clone(path), val: p}, nil
}

// Block returns an accessor for every scalar of a parameter
func (s *State) Block(name string) (*BlockSlot, error) {
	v, ok := s.values[name]
	if !ok {
		return nil, errors.Errorf("Unknown parameter %s", name)
	}
	return &BlockSlot{name: name, arr: v}, nil
}

// Snapshot returns a deep copy of every parameter value
func (s *State) Snapshot() map[string]nested.Array[float64] {
	snap := make(map[string]nested.Array[float64], len(s.values))
	for name, v := range s.values {
		snap[name] = v.Clone()
	}
	return snap
}

// Slot is a Coordinate bound to one scalar of a State
type Slot struct {
	name string
	path []int
	val  *float64
}

// Get returns the current value
func (s *Slot) Get() float64 {
	return *s.val
}

// Set replaces the current value
func (s *Slot) Set(v float64) {
	*s.val = v
}

// String names the slot, e.g. theta[2 1]
func (s *Slot) String() string {
	if len(s.path) == 0 {
		return s.name
	}
	return fmt.Sprintf("%s%v", s.name, s.path)
}

// BlockSlot grants access to every scalar of one parameter
type BlockSlot struct {
	name string
	arr  *nested.Array[float64]
}

// Name of the parameter
func (b *BlockSlot) Name() string {
	return b.name
}

// Dim returns the dimensions of the parameter value
func (b *BlockSlot) Dim() []int {
	return b.arr.Dim()
}

// Coordinate returns the accessor for the scalar at path
func (b *BlockSlot) Coordinate(path ...int) (Coordinate, error) {
	p, err := b.arr.Ptr(path...)
	if err != nil {
		return nil, errors.Wrapf(err, "Invalid coordinate for %s", b.name)
	}
	return &Slot{name: b.name, path: slices.Clone(path), val: p}, nil
}
