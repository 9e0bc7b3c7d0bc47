package cmd

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/CraigKelly/amwg/model"
)

var paramsCmd = &cobra.Command{
	Use:   "params",
	Short: "Print a model's parameters with every default filled in",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printParams(newStartupParams(cmd.OutOrStdout(), cmd.ErrOrStderr()))
	},
}

func init() {
	rootCmd.AddCommand(paramsCmd)
}

func printParams(sp *startupParams) error {
	mod, err := model.NewModelFromFile(model.YAMLReader{}, sp.modelFile)
	if err != nil {
		return err
	}

	out, err := yaml.Marshal(struct {
		Name   string         `yaml:"name"`
		Params []*model.Param `yaml:"params"`
	}{mod.Name, mod.Params})
	if err != nil {
		return errors.Wrapf(err, "Could not write parameters for %s", mod.Name)
	}

	sp.out.Print(string(out))
	return nil
}
