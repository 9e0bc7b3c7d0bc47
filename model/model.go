package model

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Reader implementors instantiate a model from a byte stream
type Reader interface {
	ReadModel(data []byte) (*Model, error)
}

// Model describes what is to be sampled: its parameters, the (immutable)
// data the posterior depends on, and sampler options. The posterior itself
// is code and is supplied separately.
type Model struct {
	Name    string                 `yaml:"name,omitempty"`
	Params  []*Param               `yaml:"params"`
	Data    map[string]interface{} `yaml:"data,omitempty"`
	Options yaml.Node              `yaml:"options,omitempty"` // Decoded by the sampler package
}

// NewModelFromFile initializes and creates a model from the specified source.
func NewModelFromFile(r Reader, filename string) (*Model, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "Could not READ model from %s", filename)
	}

	model, err := NewModelFromBuffer(r, data)
	if err != nil {
		return nil, err
	}

	// Name the model from the file if the file didn't
	if len(model.Name) < 1 {
		base := filepath.Base(filename)
		model.Name = base[0 : len(base)-len(filepath.Ext(base))]
	}

	return model, nil
}

// NewModelFromBuffer creates a model from the given pre-read data. Every
// parameter is completed with defaults before the model is checked.
func NewModelFromBuffer(r Reader, data []byte) (*Model, error) {
	m, err := r.ReadModel(data)
	if err != nil {
		return nil, errors.Wrapf(err, "Could not PARSE model")
	}

	err = m.Complete()
	if err != nil {
		return nil, errors.Wrapf(err, "Could not complete model parameters")
	}

	err = m.Check()
	if err != nil {
		return nil, errors.Wrapf(err, "Parsed model is not valid")
	}

	return m, nil
}

// Complete fills in defaults for every parameter in place
func (m *Model) Complete() error {
	for _, p := range m.Params {
		if err := p.Complete(); err != nil {
			return err
		}
	}
	return nil
}

// Check returns an error if there is a problem with the model
func (m *Model) Check() error {
	if len(m.Params) < 1 {
		return errors.Errorf("Model %s has no parameters", m.Name)
	}

	names := make(map[string]bool)
	for _, p := range m.Params {
		if p == nil {
			return errors.Errorf("Model %s has a nil parameter", m.Name)
		}

		e := p.Check()
		if e != nil {
			return errors.Wrapf(e, "Model %s has an invalid Parameter %s", m.Name, p.Name)
		}

		if names[p.Name] {
			return errors.Errorf("Duplicate name %s for Parameter", p.Name)
		}
		names[p.Name] = true
	}

	return nil
}

// Param returns the parameter with the given name, or nil
func (m *Model) Param(name string) *Param {
	for _, p := range m.Params {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// NewState returns a state seeded with every parameter's init value
func (m *Model) NewState() (*State, error) {
	return NewStateFromParams(m.Params)
}

// DataFloats returns a numeric list from the model data
func (m *Model) DataFloats(key string) ([]float64, error) {
	raw, ok := m.Data[key]
	if !ok {
		return nil, errors.Errorf("Model %s has no data %s", m.Name, key)
	}

	list, ok := raw.([]interface{})
	if !ok {
		return nil, errors.Errorf("Model %s data %s is not a list", m.Name, key)
	}

	out := make([]float64, len(list))
	for i, v := range list {
		switch n := v.(type) {
		case int:
			out[i] = float64(n)
		case float64:
			out[i] = n
		default:
			return nil, errors.Errorf("Model %s data %s[%d] is not a number: %v", m.Name, key, i, v)
		}
	}
	return out, nil
}
