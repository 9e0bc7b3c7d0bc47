package nested

import (
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// UnmarshalYAML accepts a scalar (a leaf) or an arbitrarily nested sequence
// of scalars.
func (a *Array[T]) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.AliasNode:
		return a.UnmarshalYAML(node.Alias)

	case yaml.ScalarNode:
		var v T
		if err := node.Decode(&v); err != nil {
			return errors.Wrapf(err, "line %d: invalid value %q", node.Line, node.Value)
		}
		*a = Scalar(v)
		return nil

	case yaml.SequenceNode:
		elems := make([]Array[T], len(node.Content))
		for i, child := range node.Content {
			if err := elems[i].UnmarshalYAML(child); err != nil {
				return err
			}
		}
		*a = Array[T]{elems: elems}
		return nil
	}

	return errors.Errorf("line %d: expected a value or a list, found %s", node.Line, node.Tag)
}

// MarshalYAML writes leaves as plain values and sequences as lists.
func (a Array[T]) MarshalYAML() (interface{}, error) {
	if a.leaf {
		return a.val, nil
	}
	out := make([]interface{}, len(a.elems))
	for i, e := range a.elems {
		v, err := e.MarshalYAML()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
