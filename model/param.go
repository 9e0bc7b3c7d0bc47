package model

import (
	"math"
	"slices"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/CraigKelly/amwg/nested"
)

// ParamType is the kind of values a parameter takes
type ParamType string

// Supported parameter types
const (
	Real   ParamType = "real"
	Int    ParamType = "int"
	Binary ParamType = "binary"
)

// Errors returned when a parameter can not be completed
var (
	ErrUnsupportedType = errors.New("unsupported parameter type")
	ErrInvalidBounds   = errors.New("invalid parameter bounds")
)

// Dims is a dimension vector. In a model file it may be written as a single
// number (dim: 3) or a list (dim: [3, 2]).
type Dims []int

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Dims) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var n int
		if err := node.Decode(&n); err != nil {
			return errors.Wrapf(err, "line %d: invalid dim", node.Line)
		}
		*d = Dims{n}
		return nil
	}

	var dims []int
	if err := node.Decode(&dims); err != nil {
		return errors.Wrapf(err, "line %d: invalid dim", node.Line)
	}
	*d = dims
	return nil
}

// Param describes one model parameter: a scalar or a block of scalars that
// share a type and bounds. Only Name is required; Complete fills in the
// rest.
type Param struct {
	Name  string                 `yaml:"name"`
	Type  ParamType              `yaml:"type,omitempty"`
	Dim   Dims                   `yaml:"dim,omitempty,flow"`
	Lower *float64               `yaml:"lower,omitempty"`
	Upper *float64               `yaml:"upper,omitempty"`
	Init  *nested.Array[float64] `yaml:"init,omitempty"`
}

// Clone returns a deep copy of the parameter
func (p *Param) Clone() *Param {
	cp := &Param{
		Name: p.Name,
		Type: p.Type,
		Dim:  slices.Clone(p.Dim),
	}
	if p.Lower != nil {
		lower := *p.Lower
		cp.Lower = &lower
	}
	if p.Upper != nil {
		upper := *p.Upper
		cp.Upper = &upper
	}
	if p.Init != nil {
		init := p.Init.Clone()
		cp.Init = &init
	}
	return cp
}

// Bounds returns the lower and upper bounds. Only valid after Complete.
func (p *Param) Bounds() (lower float64, upper float64) {
	lower, upper = math.Inf(-1), math.Inf(1)
	if p.Lower != nil {
		lower = *p.Lower
	}
	if p.Upper != nil {
		upper = *p.Upper
	}
	return
}

// IsScalar is true for a parameter with dimension [1]
func (p *Param) IsScalar() bool {
	return slices.Equal(p.Dim, Dims{1})
}

// Complete fills in every missing field with its default and then checks
// the result. A parameter with only a name becomes a real scalar on
// (-Inf, Inf) starting at 0.5.
func (p *Param) Complete() error {
	if p.Type == "" {
		p.Type = Real
	}
	if len(p.Dim) == 0 {
		p.Dim = Dims{1}
	}

	if p.Lower == nil {
		lower := math.Inf(-1)
		if p.Type == Binary {
			lower = 0
		}
		p.Lower = &lower
	}
	if p.Upper == nil {
		upper := math.Inf(1)
		if p.Type == Binary {
			upper = 1
		}
		p.Upper = &upper
	}

	if p.Init == nil || p.Init.IsLeaf() {
		var v float64
		var err error
		if p.Init == nil {
			v, err = InitValue(p.Type, *p.Lower, *p.Upper)
			if err != nil {
				return errors.Wrapf(err, "Could not initialize parameter %s", p.Name)
			}
		} else {
			v = p.Init.Value()
		}

		init, err := nested.Fill(p.Dim, v)
		if err != nil {
			return errors.Wrapf(err, "Parameter %s has invalid dim", p.Name)
		}
		p.Init = &init
	}

	return p.Check()
}

// Check returns an error if the parameter is not complete and consistent
func (p *Param) Check() error {
	if len(p.Name) < 1 {
		return errors.New("Parameter has no name")
	}

	switch p.Type {
	case Real, Int, Binary:
	default:
		return errors.Wrapf(ErrUnsupportedType, "Parameter %s has type %q", p.Name, p.Type)
	}

	if len(p.Dim) < 1 {
		return errors.Wrapf(nested.ErrShape, "Parameter %s has no dim", p.Name)
	}
	for _, d := range p.Dim {
		if d < 1 {
			return errors.Wrapf(nested.ErrShape, "Parameter %s has invalid dim %v", p.Name, p.Dim)
		}
	}

	if p.Lower == nil || p.Upper == nil {
		return errors.Wrapf(ErrInvalidBounds, "Parameter %s is missing a bound", p.Name)
	}
	lower, upper := *p.Lower, *p.Upper
	if math.IsNaN(lower) || math.IsNaN(upper) || lower > upper {
		return errors.Wrapf(ErrInvalidBounds, "Parameter %s has bounds [%v, %v]", p.Name, lower, upper)
	}

	if p.Init == nil {
		return errors.Errorf("Parameter %s has no init value", p.Name)
	}
	shape, err := p.Init.Shape()
	if err != nil {
		return errors.Wrapf(err, "Parameter %s has an invalid init value", p.Name)
	}
	if !slices.Equal(shape, []int(p.Dim)) {
		return errors.Wrapf(nested.ErrShape, "Parameter %s init is of dimension %v but should be %v", p.Name, shape, p.Dim)
	}

	return nil
}

// InitValue returns a starting value for a parameter of the given type and
// bounds: a point half a unit (one unit for int) inside a single finite
// bound, the midpoint of two finite bounds, and 1 for binary.
func InitValue(typ ParamType, lower float64, upper float64) (float64, error) {
	lowInf, upInf := math.IsInf(lower, -1), math.IsInf(upper, 1)

	switch typ {
	case Real:
		switch {
		case lowInf && upInf:
			return 0.5, nil
		case lowInf:
			return upper - 0.5, nil
		case upInf:
			return lower + 0.5, nil
		case lower <= upper:
			return (lower + upper) / 2, nil
		}

	case Int:
		switch {
		case lowInf && upInf:
			return 1, nil
		case lowInf:
			return upper - 1, nil
		case upInf:
			return lower + 1, nil
		case lower <= upper:
			return math.Round((lower + upper) / 2), nil
		}

	case Binary:
		return 1, nil

	default:
		return 0, errors.Wrapf(ErrUnsupportedType, "Could not initialize parameter of type %q", typ)
	}

	return 0, errors.Wrapf(ErrInvalidBounds, "Could not initialize parameter of type %s[%v, %v]", typ, lower, upper)
}

// CompleteParams returns completed copies of the given parameters. The
// originals are not changed.
func CompleteParams(params []*Param) ([]*Param, error) {
	out := make([]*Param, len(params))
	for i, p := range params {
		cp := p.Clone()
		if err := cp.Complete(); err != nil {
			return nil, err
		}
		out[i] = cp
	}
	return out, nil
}
