package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"golang-backoffice-converter/internal/features"
	"golang-backoffice-converter/internal/reporter"
	"golang-backoffice-converter/pkg/errors"
	"golang-backoffice-converter/pkg/logger"
)

const everlyticOutputName = "everlytic_import.csv"

var (
	everlyticInput     string
	everlyticReference string
	everlyticOutput    string
)

var everlyticCmd = &cobra.Command{
	Use:   "everlytic",
	Short: "Convert an Everlytic SMS report into journal lines",
	Long: `Everlytic reads the SMS billing report, drops branch banners and
reprinted headers, charges every credit used at the SMS rate and posts each
charge against the SMS account and the contra account.

Examples:
  backoffice everlytic --input everlytic.csv --reference SMS0325`,

	PreRunE: validateEverlyticFlags,
	RunE:    runEverlytic,
}

func init() {
	rootCmd.AddCommand(everlyticCmd)

	everlyticCmd.Flags().StringVarP(&everlyticInput, "input", "i", "", "Everlytic report, xlsx or csv (required)")
	everlyticCmd.Flags().StringVarP(&everlyticReference, "reference", "r", "", "reference written on every line (required)")
	everlyticCmd.Flags().StringVarP(&everlyticOutput, "output", "o", "", "output CSV (default: "+everlyticOutputName+" next to the input)")

	viper.BindPFlag("everlytic.input", everlyticCmd.Flags().Lookup("input"))
	viper.BindPFlag("everlytic.reference", everlyticCmd.Flags().Lookup("reference"))
	viper.BindPFlag("everlytic.output", everlyticCmd.Flags().Lookup("output"))
}

func validateEverlyticFlags(cmd *cobra.Command, args []string) error {
	everlyticInput = viper.GetString("everlytic.input")
	everlyticReference = strings.TrimSpace(viper.GetString("everlytic.reference"))
	everlyticOutput = viper.GetString("everlytic.output")

	if everlyticReference == "" {
		return errors.ConfigurationError(errors.CodeMissingConfig, "reference", nil, nil).
			WithSuggestion("pass --reference, for example SMS0325")
	}
	return validateFileExists(everlyticInput, "input")
}

func runEverlytic(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	output := everlyticOutput
	if output == "" {
		output = defaultOutput(everlyticInput, everlyticOutputName)
	}

	return logger.Run("everlytic", nil, func(a *logger.Action) error {
		source, err := loadInput(ctx, a, everlyticInput, features.EverlyticLoadConfig())
		if err != nil {
			return err
		}

		result, err := features.Everlytic(source, everlyticReference)
		if err != nil {
			return err
		}
		if result.Banners > 0 || result.RepeatedHeaders > 0 {
			a.Warn("Dropped banner rows", logger.Fields{
				"banners":          result.Banners,
				"repeated_headers": result.RepeatedHeaders,
			})
			fmt.Fprintf(cmd.OutOrStdout(), "Dropped %d banner rows and %d repeated headers\n", result.Banners, result.RepeatedHeaders)
		}

		return writeOutput(ctx, a, cmd.OutOrStdout(), result.Table, output, features.ExportConfig(reporter.FileCSV, false))
	})
}
