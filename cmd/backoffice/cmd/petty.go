package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"golang-backoffice-converter/internal/features"
	"golang-backoffice-converter/internal/reporter"
	"golang-backoffice-converter/pkg/logger"
)

var (
	pettyInput  string
	pettyOutput string
)

var pettyCmd = &cobra.Command{
	Use:     "petty",
	Aliases: []string{"ewallet"},
	Short:   "Convert a petty cash or eWallet sheet into the accounting import",
	Long: `Petty reads a petty cash or eWallet template (header on row 4, two
instruction rows below it), drops rows without a valid date and writes the
30-column accounting import.

Examples:
  backoffice petty --input petty.xlsx
  backoffice petty --input ewallet.csv --format xlsx
  backoffice petty --input petty.xlsx --output /imports/petty_march.csv`,

	PreRunE: validatePettyFlags,
	RunE:    runPetty,
}

func init() {
	rootCmd.AddCommand(pettyCmd)

	pettyCmd.Flags().StringVarP(&pettyInput, "input", "i", "", "petty cash or eWallet sheet, xlsx or csv (required)")
	pettyCmd.Flags().StringVarP(&pettyOutput, "output", "o", "", "output file (default: petty_import.<format> next to the input)")
	pettyCmd.Flags().String("format", "csv", "output format when --output is not given: csv, xlsx")

	viper.BindPFlag("petty.input", pettyCmd.Flags().Lookup("input"))
	viper.BindPFlag("petty.output", pettyCmd.Flags().Lookup("output"))
	viper.BindPFlag("output.format", pettyCmd.Flags().Lookup("format"))
}

func validatePettyFlags(cmd *cobra.Command, args []string) error {
	pettyInput = viper.GetString("petty.input")
	pettyOutput = viper.GetString("petty.output")
	return validateFileExists(pettyInput, "input")
}

func runPetty(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	s, err := currentSettings()
	if err != nil {
		return err
	}
	aliases, err := s.PettyAliases()
	if err != nil {
		return err
	}

	format := s.OutputFormat()
	output := pettyOutput
	if output == "" {
		output = defaultOutput(pettyInput, features.PettyOutputName+"."+string(format))
	} else {
		format = reporter.FormatForPath(output)
	}

	return logger.Run("petty", nil, func(a *logger.Action) error {
		source, err := loadInput(ctx, a, pettyInput, features.PettyCashLoadConfig())
		if err != nil {
			return err
		}

		out, err := features.PettyCash(source, aliases)
		if err != nil {
			return err
		}
		if dropped := source.Len() - out.Len(); dropped > 0 {
			a.Warn("Dropped rows without a valid date", logger.Fields{"rows": dropped})
		}

		if err := writeOutput(ctx, a, cmd.OutOrStdout(), out, output, features.ExportConfig(format, true)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Total amount: %s\n", features.PettyTotal(out).StringFixed(2))
		return nil
	})
}
