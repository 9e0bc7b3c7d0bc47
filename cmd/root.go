package cmd

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// startupParams is everything a command needs, gathered from the flags
type startupParams struct {
	out *log.Logger  // results, always shown
	log *slog.Logger // progress and diagnostics

	verbose    bool
	modelFile  string
	randomSeed int64

	posterior   string
	iterations  int
	burnIn      int
	window      int
	monitor     bool
	monitorAddr string
}

var verbose bool
var modelFile string
var randomSeed int64

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "amwg",
	Short: "Adaptive Metropolis-within-Gibbs sampling",
	Long: `amwg samples from an unnormalized posterior one coordinate at a time,
tuning each coordinate's random walk proposal in batches.

Models are YAML files listing parameters (type, dimensions, bounds, init)
plus optional data and sampler options. Posteriors are built in and chosen
by name.
`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging (default is much more parsimonious)")
	rootCmd.PersistentFlags().StringVarP(&modelFile, "model", "m", "", "YAML model file to read")
	rootCmd.PersistentFlags().Int64VarP(&randomSeed, "seed", "r", 1, "Random seed to use")
	_ = rootCmd.MarkPersistentFlagRequired("model")
}

// newStartupParams builds the shared params from the persistent flags
func newStartupParams(stdout io.Writer, stderr io.Writer) *startupParams {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	return &startupParams{
		out:        log.New(stdout, "", 0),
		log:        slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})),
		verbose:    verbose,
		modelFile:  modelFile,
		randomSeed: randomSeed,
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
