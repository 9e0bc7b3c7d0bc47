package sampler

import (
	"math"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/CraigKelly/amwg/model"
	"github.com/CraigKelly/amwg/nested"
)

// Option names, as used in model files and error messages
const (
	OptPropLogScale     = "prop_log_scale"
	OptBatchSize        = "batch_size"
	OptMinAdaptation    = "min_adaptation"
	OptTargetAcceptRate = "target_accept_rate"
	OptIsAdapting       = "is_adapting"
)

// Options is the tuning of one coordinate
type Options struct {
	PropLogScale     float64 // log of the proposal standard deviation
	BatchSize        int     // iterations between adaptations
	MinAdaptation    float64 // upper bound on a single adjustment of PropLogScale
	TargetAcceptRate float64
	IsAdapting       bool
}

// DefaultOptions are the usual AMWG settings: batches of 50, adjustments of
// at most 0.01 and a target acceptance rate of 0.44.
func DefaultOptions() Options {
	return Options{
		PropLogScale:     0,
		BatchSize:        50,
		MinAdaptation:    0.01,
		TargetAcceptRate: 0.44,
		IsAdapting:       true,
	}
}

// Check returns an error for settings that can not drive adaptation
func (o Options) Check() error {
	if math.IsNaN(o.PropLogScale) || math.IsInf(o.PropLogScale, 0) {
		return errors.Errorf("%s must be finite, found %v", OptPropLogScale, o.PropLogScale)
	}
	if o.BatchSize < 1 {
		return errors.Errorf("%s must be positive, found %d", OptBatchSize, o.BatchSize)
	}
	if !(o.MinAdaptation > 0) || math.IsInf(o.MinAdaptation, 1) {
		return errors.Errorf("%s must be positive, found %v", OptMinAdaptation, o.MinAdaptation)
	}
	if !(o.TargetAcceptRate > 0 && o.TargetAcceptRate < 1) {
		return errors.Errorf("%s must be in (0, 1), found %v", OptTargetAcceptRate, o.TargetAcceptRate)
	}
	return nil
}

// Config is sparse tuning as read from a model file. Every field is
// optional. For a block, each field is either a single value used for every
// coordinate or an array with exactly the block's dimensions.
type Config struct {
	PropLogScale     *nested.Array[float64] `yaml:"prop_log_scale,omitempty"`
	BatchSize        *nested.Array[int]     `yaml:"batch_size,omitempty"`
	MinAdaptation    *nested.Array[float64] `yaml:"min_adaptation,omitempty"`
	TargetAcceptRate *nested.Array[float64] `yaml:"target_accept_rate,omitempty"`
	IsAdapting       *nested.Array[bool]    `yaml:"is_adapting,omitempty"`
}

// Every is a Config value used for every coordinate
func Every[T any](v T) *nested.Array[T] {
	a := nested.Scalar(v)
	return &a
}

// PerLeaf is a Config value with one entry per coordinate
func PerLeaf[T any](a nested.Array[T]) *nested.Array[T] {
	cp := a.Clone()
	return &cp
}

// HasArrays is true when any field is given per coordinate
func (c Config) HasArrays() bool {
	return isArray(c.PropLogScale) ||
		isArray(c.BatchSize) ||
		isArray(c.MinAdaptation) ||
		isArray(c.TargetAcceptRate) ||
		isArray(c.IsAdapting)
}

func isArray[T any](a *nested.Array[T]) bool {
	return a != nil && !a.IsLeaf()
}

// Options resolves the config for a single coordinate. Every field must be
// absent or a single value.
func (c Config) Options() (Options, error) {
	def := DefaultOptions()
	o := Options{}

	var err error
	if o.PropLogScale, err = single(OptPropLogScale, c.PropLogScale, def.PropLogScale); err != nil {
		return Options{}, err
	}
	if o.BatchSize, err = single(OptBatchSize, c.BatchSize, def.BatchSize); err != nil {
		return Options{}, err
	}
	if o.MinAdaptation, err = single(OptMinAdaptation, c.MinAdaptation, def.MinAdaptation); err != nil {
		return Options{}, err
	}
	if o.TargetAcceptRate, err = single(OptTargetAcceptRate, c.TargetAcceptRate, def.TargetAcceptRate); err != nil {
		return Options{}, err
	}
	if o.IsAdapting, err = single(OptIsAdapting, c.IsAdapting, def.IsAdapting); err != nil {
		return Options{}, err
	}

	return o, o.Check()
}

func single[T any](name string, a *nested.Array[T], def T) (T, error) {
	if a == nil {
		return def, nil
	}
	if !a.IsLeaf() {
		var zero T
		return zero, errors.Wrapf(nested.ErrShape, "option %s must be a single value, found dimension %v", name, a.Dim())
	}
	return a.Value(), nil
}

// Leaves resolves the config for every coordinate of a block with the given
// dimensions. Array valued fields must match dim exactly.
func (c Config) Leaves(dim []int) (nested.Array[Options], error) {
	def := DefaultOptions()

	scale, err := nested.Broadcast(OptPropLogScale, c.PropLogScale, dim, def.PropLogScale)
	if err != nil {
		return nested.Array[Options]{}, err
	}
	batch, err := nested.Broadcast(OptBatchSize, c.BatchSize, dim, def.BatchSize)
	if err != nil {
		return nested.Array[Options]{}, err
	}
	minAdapt, err := nested.Broadcast(OptMinAdaptation, c.MinAdaptation, dim, def.MinAdaptation)
	if err != nil {
		return nested.Array[Options]{}, err
	}
	target, err := nested.Broadcast(OptTargetAcceptRate, c.TargetAcceptRate, dim, def.TargetAcceptRate)
	if err != nil {
		return nested.Array[Options]{}, err
	}
	adapting, err := nested.Broadcast(OptIsAdapting, c.IsAdapting, dim, def.IsAdapting)
	if err != nil {
		return nested.Array[Options]{}, err
	}

	// Same dimensions, so the leaves line up in index order
	scales, batches, mins, targets, adapts := scale.Leaves(), batch.Leaves(), minAdapt.Leaves(), target.Leaves(), adapting.Leaves()
	i := 0
	opts, err := nested.FillFunc(dim, func() Options {
		o := Options{
			PropLogScale:     scales[i],
			BatchSize:        batches[i],
			MinAdaptation:    mins[i],
			TargetAcceptRate: targets[i],
			IsAdapting:       adapts[i],
		}
		i++
		return o
	})
	if err != nil {
		return nested.Array[Options]{}, err
	}

	opts.Walk(func(path []int, o Options) {
		if err == nil {
			if e := o.Check(); e != nil {
				err = errors.Wrapf(e, "coordinate %v", path)
			}
		}
	})
	if err != nil {
		return nested.Array[Options]{}, err
	}

	return opts, nil
}

// merge returns c with every field that over sets replaced
func (c Config) merge(over Config) Config {
	if over.PropLogScale != nil {
		c.PropLogScale = over.PropLogScale
	}
	if over.BatchSize != nil {
		c.BatchSize = over.BatchSize
	}
	if over.MinAdaptation != nil {
		c.MinAdaptation = over.MinAdaptation
	}
	if over.TargetAcceptRate != nil {
		c.TargetAcceptRate = over.TargetAcceptRate
	}
	if over.IsAdapting != nil {
		c.IsAdapting = over.IsAdapting
	}
	return c
}

// ModelConfig is the options section of a model file: defaults for every
// parameter, plus per parameter overrides.
//
//	options:
//	  batch_size: 100
//	  params:
//	    theta:
//	      prop_log_scale: [[0, 0], [-1, -1], [0, 0]]
type ModelConfig struct {
	Config `yaml:",inline"`
	Params map[string]Config `yaml:"params,omitempty"`
}

// For returns the config of one parameter
func (mc ModelConfig) For(name string) Config {
	over, ok := mc.Params[name]
	if !ok {
		return mc.Config
	}
	return mc.Config.merge(over)
}

var configKeys = map[string]bool{
	OptPropLogScale:     true,
	OptBatchSize:        true,
	OptMinAdaptation:    true,
	OptTargetAcceptRate: true,
	OptIsAdapting:       true,
}

// ConfigFromModel decodes the options section of a model
func ConfigFromModel(m *model.Model) (ModelConfig, error) {
	mc := ModelConfig{}
	node := &m.Options
	if node.Kind == 0 {
		return mc, nil // No options section
	}

	if node.Kind != yaml.MappingNode {
		return mc, errors.Errorf("Model %s: options must be a mapping", m.Name)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		if key == "params" {
			if err := checkParamKeys(m, node.Content[i+1]); err != nil {
				return mc, err
			}
			continue
		}
		if !configKeys[key] {
			return mc, errors.Errorf("Model %s: unknown option %s (line %d)", m.Name, key, node.Content[i].Line)
		}
	}

	if err := node.Decode(&mc); err != nil {
		return mc, errors.Wrapf(err, "Model %s: invalid options", m.Name)
	}
	return mc, nil
}

func checkParamKeys(m *model.Model, node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return errors.Errorf("Model %s: options.params must be a mapping", m.Name)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		if m.Param(name) == nil {
			return errors.Errorf("Model %s: options given for unknown parameter %s", m.Name, name)
		}
		sub := node.Content[i+1]
		if sub.Kind != yaml.MappingNode {
			return errors.Errorf("Model %s: options for %s must be a mapping", m.Name, name)
		}
		for j := 0; j+1 < len(sub.Content); j += 2 {
			if key := sub.Content[j].Value; !configKeys[key] {
				return errors.Errorf("Model %s: unknown option %s for %s (line %d)", m.Name, key, name, sub.Content[j].Line)
			}
		}
	}
	return nil
}
