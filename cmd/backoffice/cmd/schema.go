package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"golang-backoffice-converter/internal/features"
	"golang-backoffice-converter/internal/schema"
	"golang-backoffice-converter/pkg/errors"
)

var schemaCmd = &cobra.Command{
	Use:   "schema [name]",
	Short: "Print the declared output schemas as YAML",
	Long: `Schema prints how every output column is produced: copied from which
source columns with which cleaning rule, a constant, or a computed value.
Without a name all schemas are printed.

Examples:
  backoffice schema
  backoffice schema petty-cash`,
	Args: cobra.MaximumNArgs(1),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return features.SchemaNames(), cobra.ShellCompDirectiveNoFileComp
	},
	RunE: runSchema,
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}

func runSchema(cmd *cobra.Command, args []string) error {
	var descriptions []schema.Description
	if len(args) == 1 {
		s, err := features.LookupSchema(args[0])
		if err != nil {
			return err
		}
		descriptions = append(descriptions, s.Describe())
	} else {
		all := features.Schemas()
		for _, name := range features.SchemaNames() {
			descriptions = append(descriptions, all[name].Describe())
		}
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	for _, d := range descriptions {
		if err := enc.Encode(d); err != nil {
			return errors.InternalError("encode schema "+d.Name, err)
		}
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to flush schema output: %w", err)
	}
	return nil
}
