package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"golang-backoffice-converter/cmd/backoffice/config"
	"golang-backoffice-converter/internal/features"
	"golang-backoffice-converter/internal/reporter"
	"golang-backoffice-converter/pkg/logger"
)

var (
	glInput     string
	glOutputDir string
)

var glextractCmd = &cobra.Command{
	Use:     "glextract",
	Aliases: []string{"gl"},
	Short:   "Build recovery invoices from an Account Transactions report",
	Long: `GLExtract walks an Account Transactions report, collects the
transactions posted to the /007 recovery ledgers and writes a customer
invoice import plus a supplier invoice import for the credits.

Examples:
  backoffice glextract --input transactions.xlsx
  backoffice glextract --input transactions.xlsx --date 31/03/2025 --output-dir /imports`,

	PreRunE: validateGLExtractFlags,
	RunE:    runGLExtract,
}

func init() {
	rootCmd.AddCommand(glextractCmd)

	glextractCmd.Flags().StringVarP(&glInput, "input", "i", "", "Account Transactions report, xlsx or csv (required)")
	glextractCmd.Flags().String("date", "", "invoice date, dd/mm/yyyy (default: today)")
	glextractCmd.Flags().StringVar(&glOutputDir, "output-dir", "", "directory of the two invoice files (default: the input's directory)")

	viper.BindPFlag("glextract.input", glextractCmd.Flags().Lookup("input"))
	viper.BindPFlag("glextract.date", glextractCmd.Flags().Lookup("date"))
	viper.BindPFlag("glextract.output_dir", glextractCmd.Flags().Lookup("output-dir"))
}

func validateGLExtractFlags(cmd *cobra.Command, args []string) error {
	glInput = viper.GetString("glextract.input")
	glOutputDir = viper.GetString("glextract.output_dir")
	return validateFileExists(glInput, "input")
}

func runGLExtract(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	day, err := config.ParseDay(viper.GetString("glextract.date"), time.Now())
	if err != nil {
		return err
	}

	dir := glOutputDir
	if dir == "" {
		dir = filepath.Dir(glInput)
	}

	return logger.Run("glextract", nil, func(a *logger.Action) error {
		report, err := loadInput(ctx, a, glInput, features.GLExtractLoadConfig())
		if err != nil {
			return err
		}

		result, err := features.GLExtract(report, day)
		if err != nil {
			return err
		}
		a.Step("extract", logger.Fields{
			"transactions": result.Transactions,
			"recoveries":   result.Customer.Len(),
			"credits":      result.Supplier.Len(),
		})
		if result.Customer.Len() == 0 {
			a.Warn("No transactions on recovery ledgers", logger.Fields{"transactions": result.Transactions})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Found %d transactions, %d on recovery ledgers\n", result.Transactions, result.Customer.Len())

		cfg := features.ExportConfig(reporter.FileCSV, false)
		return writeOutputs(ctx, a, cmd.OutOrStdout(),
			reporter.Output{Table: result.Customer, Path: filepath.Join(dir, features.CustomerOutputName), Config: cfg},
			reporter.Output{Table: result.Supplier, Path: filepath.Join(dir, features.SupplierOutputName), Config: cfg},
		)
	})
}
