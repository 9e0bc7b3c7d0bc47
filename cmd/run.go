package cmd

import (
	"fmt"
	"math"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"github.com/CraigKelly/amwg/buffer"
	"github.com/CraigKelly/amwg/model"
	"github.com/CraigKelly/amwg/nested"
	"github.com/CraigKelly/amwg/rand"
	"github.com/CraigKelly/amwg/sampler"
)

var posteriorName string
var iterations int
var burnIn int
var window int
var useMonitor bool
var monitorAddr string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Sample a model with a built in posterior",
	Long: `run loads a model, binds one adaptive sampler per parameter and sweeps
them in order. Burn in sweeps adapt the proposal scales; adaptation is then
stopped and the sampling sweeps are summarized per coordinate over the last
window of draws.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sp := newStartupParams(cmd.OutOrStdout(), cmd.ErrOrStderr())
		sp.posterior = posteriorName
		sp.iterations = iterations
		sp.burnIn = burnIn
		sp.window = window
		sp.monitor = useMonitor
		sp.monitorAddr = monitorAddr

		summary, err := runChain(sp)
		if err != nil {
			return err
		}
		report(sp, summary)
		return nil
	},
}

func init() {
	runCmd.Flags().StringVarP(&posteriorName, "posterior", "p", "std-normal", fmt.Sprintf("Built in posterior %v", posteriorNames()))
	runCmd.Flags().IntVarP(&iterations, "iterations", "n", 5000, "Sampling sweeps after burn in")
	runCmd.Flags().IntVarP(&burnIn, "burnin", "b", 5000, "Adapting sweeps before sampling")
	runCmd.Flags().IntVarP(&window, "window", "w", 2000, "Number of most recent draws summarized per coordinate")
	runCmd.Flags().BoolVar(&useMonitor, "monitor", false, "Serve progress over HTTP (expvar)")
	runCmd.Flags().StringVar(&monitorAddr, "monitor-addr", ":8000", "Listen address for --monitor")
	rootCmd.AddCommand(runCmd)
}

// coordSummary describes the retained draws of one coordinate
type coordSummary struct {
	Name         string
	Mean         float64
	StdDev       float64
	FirstMean    float64 // older half of the window, NaN until full
	SecondMean   float64 // newer half of the window, NaN until full
	AcceptRate   float64
	PropLogScale float64
}

type chainSummary struct {
	BurnIn  int
	Samples int
	RunTime time.Duration
	Coords  []coordSummary
}

func runChain(sp *startupParams) (*chainSummary, error) {
	if sp.iterations < 1 {
		return nil, errors.Errorf("Need at least one sampling sweep, found %d", sp.iterations)
	}
	if sp.burnIn < 0 {
		return nil, errors.Errorf("Burn in can not be negative, found %d", sp.burnIn)
	}
	if sp.window < 2 {
		return nil, errors.Errorf("Window must hold at least 2 draws, found %d", sp.window)
	}

	sp.log.Info("Reading model", "file", sp.modelFile)
	mod, err := model.NewModelFromFile(model.YAMLReader{}, sp.modelFile)
	if err != nil {
		return nil, err
	}
	sp.log.Info("Model loaded", "name", mod.Name, "params", len(mod.Params))

	st, err := mod.NewState()
	if err != nil {
		return nil, err
	}
	post, err := newPosterior(sp.posterior, mod, st)
	if err != nil {
		return nil, err
	}
	gen, err := rand.NewGenerator(sp.randomSeed)
	if err != nil {
		return nil, err
	}
	samplers, err := sampler.ForModel(gen, mod, st, post)
	if err != nil {
		return nil, errors.Wrapf(err, "Could not create samplers for %s", mod.Name)
	}
	for _, s := range samplers {
		switch typed := s.(type) {
		case *sampler.Metropolis:
			typed.SetLogger(sp.log)
		case *sampler.Multivariate:
			typed.SetLogger(sp.log)
		}
	}

	// One window per scalar, in the same order as each sampler's values
	windows := make([]nested.Array[*buffer.CircularFloat], len(mod.Params))
	flat := make([][]*buffer.CircularFloat, len(mod.Params))
	for i, p := range mod.Params {
		windows[i] = nested.Map(*p.Init, func(float64) *buffer.CircularFloat {
			return buffer.NewCircularFloat(sp.window)
		})
		flat[i] = windows[i].Leaves()
	}

	var mon *monitor
	if sp.monitor {
		mon = &monitor{addr: sp.monitorAddr, log: sp.log}
		if err := mon.Start(); err != nil {
			return nil, err
		}
		defer mon.Stop()
		mon.BurnIn.Set(int64(sp.burnIn))
		mon.Samples.Set(int64(sp.iterations))
		mon.Window.Set(int64(sp.window))
		mon.Adapting.Set(1)
	}

	startTime := time.Now()
	progress := func(iter int) {
		if mon == nil || iter%100 != 0 {
			return
		}
		mon.Iterations.Set(int64(iter))
		mon.RunTime.Set(time.Since(startTime).Seconds())
		mon.AcceptRate.Set(meanAcceptRate(samplers))
	}

	sp.log.Info("Starting burn in", "sweeps", sp.burnIn)
	for i := 1; i <= sp.burnIn; i++ {
		if _, err := sweep(samplers); err != nil {
			return nil, err
		}
		progress(i)
	}

	for _, s := range samplers {
		s.StopAdaptation()
	}
	if mon != nil {
		mon.Adapting.Set(0)
	}
	sp.log.Info("Burn in complete", "accept_rate", meanAcceptRate(samplers), "elapsed", time.Since(startTime))

	for i := 1; i <= sp.iterations; i++ {
		vals, err := sweep(samplers)
		if err != nil {
			return nil, err
		}
		for j, v := range vals {
			for k, x := range v.Leaves() {
				flat[j][k].Add(x)
			}
		}
		progress(sp.burnIn + i)
	}

	summary := &chainSummary{
		BurnIn:  sp.burnIn,
		Samples: sp.iterations,
		RunTime: time.Since(startTime),
	}
	for j, p := range mod.Params {
		infos := samplers[j].Info().Leaves()
		k := 0
		windows[j].Walk(func(path []int, w *buffer.CircularFloat) {
			summary.Coords = append(summary.Coords, summarize(coordName(p, path), w, infos[k]))
			k++
		})
	}

	sp.log.Info("Sampling complete", "elapsed", summary.RunTime)
	return summary, nil
}

// sweep calls Next once on every sampler, in order
func sweep(samplers []sampler.Sampler) ([]nested.Array[float64], error) {
	vals := make([]nested.Array[float64], len(samplers))
	for i, s := range samplers {
		v, err := s.Next()
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

func meanAcceptRate(samplers []sampler.Sampler) float64 {
	var rates []float64
	for _, s := range samplers {
		for _, in := range s.Info().Leaves() {
			rates = append(rates, in.AcceptRate())
		}
	}
	if len(rates) < 1 {
		return math.NaN()
	}
	return stat.Mean(rates, nil)
}

func coordName(p *model.Param, path []int) string {
	if p.IsScalar() {
		return p.Name
	}
	return fmt.Sprintf("%s%v", p.Name, path)
}

func summarize(name string, w *buffer.CircularFloat, in sampler.Info) coordSummary {
	vals := w.Values()
	cs := coordSummary{
		Name:         name,
		Mean:         stat.Mean(vals, nil),
		StdDev:       stat.StdDev(vals, nil),
		FirstMean:    math.NaN(),
		SecondMean:   math.NaN(),
		AcceptRate:   in.AcceptRate(),
		PropLogScale: in.PropLogScale,
	}
	if w.Full() {
		cs.FirstMean = stat.Mean(w.FirstHalf().Collect(), nil)
		cs.SecondMean = stat.Mean(w.SecondHalf().Collect(), nil)
	}
	return cs
}

func report(sp *startupParams, summary *chainSummary) {
	sp.out.Printf("Burn in %d, sampled %d sweeps in %v\n", summary.BurnIn, summary.Samples, summary.RunTime.Round(time.Millisecond))
	sp.out.Printf("%-16s %10s %10s %10s %10s %8s %10s\n", "coordinate", "mean", "sd", "mean(1st)", "mean(2nd)", "accept", "log_scale")
	for _, c := range summary.Coords {
		sp.out.Printf("%-16s %10.4f %10.4f %10.4f %10.4f %8.3f %10.4f\n",
			c.Name, c.Mean, c.StdDev, c.FirstMean, c.SecondMean, c.AcceptRate, c.PropLogScale)
	}
}
