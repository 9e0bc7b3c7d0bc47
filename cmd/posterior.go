package cmd

import (
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/CraigKelly/amwg/model"
	"github.com/CraigKelly/amwg/sampler"
)

// posteriorFactory binds a named log density to a model and its state
type posteriorFactory func(m *model.Model, st *model.State) (sampler.LogDensity, error)

var posteriors = map[string]posteriorFactory{
	"std-normal":  iidPosterior(distuv.UnitNormal.LogProb),
	"laplace":     iidPosterior(distuv.Laplace{Mu: 0, Scale: 1}.LogProb),
	"normal-mean": normalMeanPosterior,
}

// posteriorNames lists the built in posteriors, sorted
func posteriorNames() []string {
	names := make([]string, 0, len(posteriors))
	for name := range posteriors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newPosterior(name string, m *model.Model, st *model.State) (sampler.LogDensity, error) {
	f, ok := posteriors[name]
	if !ok {
		return nil, errors.Errorf("Unknown posterior %q (choose from %v)", name, posteriorNames())
	}
	return f(m, st)
}

// iidPosterior applies the same density to every scalar of every parameter
func iidPosterior(logProb func(float64) float64) posteriorFactory {
	return func(m *model.Model, st *model.State) (sampler.LogDensity, error) {
		names := st.Names()
		return func() float64 {
			total := 0.0
			for _, name := range names {
				arr, _ := st.Array(name)
				for _, v := range arr.Leaves() {
					total += logProb(v)
				}
			}
			return total
		}, nil
	}
}

// normalMeanPosterior is the N(y | mu, 1) likelihood of the data y with a
// flat prior on the scalar parameter mu.
func normalMeanPosterior(m *model.Model, st *model.State) (sampler.LogDensity, error) {
	mu := m.Param("mu")
	if mu == nil || !mu.IsScalar() {
		return nil, errors.Errorf("Model %s needs a scalar parameter mu for normal-mean", m.Name)
	}

	y, err := m.DataFloats("y")
	if err != nil {
		return nil, errors.Wrap(err, "normal-mean needs data y")
	}
	if len(y) < 1 {
		return nil, errors.Errorf("Model %s has no observations in y", m.Name)
	}

	return func() float64 {
		like := distuv.Normal{Mu: st.Float("mu"), Sigma: 1}
		total := 0.0
		for _, obs := range y {
			total += like.LogProb(obs)
		}
		return total
	}, nil
}
