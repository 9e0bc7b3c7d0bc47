package model

import (
	"bytes"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// YAMLReader reads model files written in YAML:
//
//	name: normal-mean
//	params:
//	  - name: mu
//	  - name: theta
//	    type: int
//	    dim: [3, 2]
//	    lower: 0
//	data:
//	  y: [1.2, 0.7]
//	options:
//	  batch_size: 25
//
// Unknown fields are an error so that typos don't silently fall back to
// defaults.
type YAMLReader struct {
}

// ReadModel implements the model.Reader interface
func (r YAMLReader) ReadModel(data []byte) (*Model, error) {
	if len(bytes.TrimSpace(data)) < 1 {
		return nil, errors.New("Empty model file")
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	m := &Model{}
	if err := dec.Decode(m); err != nil {
		return nil, errors.Wrap(err, "Error reading YAML model")
	}

	return m, nil
}
