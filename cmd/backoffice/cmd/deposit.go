package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"golang-backoffice-converter/internal/features"
	"golang-backoffice-converter/internal/reporter"
	"golang-backoffice-converter/pkg/logger"
)

var (
	depositInput  string
	depositSheet  string
	depositOutput string
)

var depositCmd = &cobra.Command{
	Use:     "deposit",
	Aliases: []string{"import9500"},
	Short:   "Convert a bank deposit export into the accounting import",
	Long: `Deposit reads a bank deposit export with Date, Description, Credit, Code
and Reference columns, strips the bank's boilerplate from descriptions and
posts every credit against the bank account.

Examples:
  backoffice deposit --input deposits.xlsx --sheet "March"
  backoffice deposit --input deposits.csv --output IMPORT.csv`,

	PreRunE: validateDepositFlags,
	RunE:    runDeposit,
}

func init() {
	rootCmd.AddCommand(depositCmd)

	depositCmd.Flags().StringVarP(&depositInput, "input", "i", "", "bank deposit export, xlsx or csv (required)")
	depositCmd.Flags().StringVar(&depositSheet, "sheet", "", "workbook sheet (default: first sheet)")
	depositCmd.Flags().StringVarP(&depositOutput, "output", "o", "", "output CSV (default: IMPORT_<today>.csv next to the input)")

	viper.BindPFlag("deposit.input", depositCmd.Flags().Lookup("input"))
	viper.BindPFlag("deposit.sheet", depositCmd.Flags().Lookup("sheet"))
	viper.BindPFlag("deposit.output", depositCmd.Flags().Lookup("output"))
}

func validateDepositFlags(cmd *cobra.Command, args []string) error {
	depositInput = viper.GetString("deposit.input")
	depositSheet = viper.GetString("deposit.sheet")
	depositOutput = viper.GetString("deposit.output")
	return validateFileExists(depositInput, "input")
}

func runDeposit(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	output := depositOutput
	if output == "" {
		output = defaultOutput(depositInput, features.DepositOutputName(time.Now()))
	}

	return logger.Run("deposit", nil, func(a *logger.Action) error {
		source, err := loadInput(ctx, a, depositInput, features.DepositLoadConfig(depositSheet))
		if err != nil {
			return err
		}

		out, err := features.DepositImport(source)
		if err != nil {
			return err
		}

		return writeOutput(ctx, a, cmd.OutOrStdout(), out, output, features.ExportConfig(reporter.FileCSV, false))
	})
}
