package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"golang-backoffice-converter/internal/features"
	"golang-backoffice-converter/internal/reconciler"
	"golang-backoffice-converter/internal/reporter"
	"golang-backoffice-converter/internal/table"
	"golang-backoffice-converter/internal/workspace"
	"golang-backoffice-converter/pkg/logger"
)

const (
	slotEvolution = "evolution"
	slotRecon     = "recon"
)

// Flags for the compare command
var (
	evolutionFile string
	reconFile     string
	reconSheet    string
	exportA       string
	exportB       string
)

// compareCmd represents the compare command
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare the Evolution export with the reconciliation",
	Long: `Compare loads the Evolution ledger export and the reconciliation export,
keeps the first N columns of both, cleans amounts, references, dates and
descriptions, and lists the rows that are not on the recon and the rows the
recon holds too often.

Examples:
  backoffice compare --evolution evolution.xlsx --recon recon.xlsx
  backoffice compare --evolution a.xlsx --recon b.xlsx --recon-sheet "9500" --columns 7
  backoffice compare --evolution a.xlsx --recon b.xlsx --export-a missing.xlsx --export-b twice.xlsx
  backoffice compare --evolution a.xlsx --recon b.xlsx --output-format json`,

	PreRunE: validateCompareFlags,
	RunE:    runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)

	compareCmd.Flags().StringVarP(&evolutionFile, "evolution", "a", "", "Evolution export, xlsx or csv (required)")
	compareCmd.Flags().StringVarP(&reconFile, "recon", "b", "", "reconciliation export, xlsx or csv (required)")
	compareCmd.Flags().StringVar(&reconSheet, "recon-sheet", "", "sheet of the reconciliation workbook (default: first sheet)")
	compareCmd.Flags().Int("columns", features.DefaultCompareColumns, "number of leading columns to compare (1-50)")
	compareCmd.Flags().StringP("output-format", "f", "console", "report format: console, json")
	compareCmd.Flags().Int("preview", 10, "unmatched rows shown per side on the console")
	compareCmd.Flags().StringVar(&exportA, "export-a", "", "write the rows not on the recon to this xlsx or csv file")
	compareCmd.Flags().StringVar(&exportB, "export-b", "", "write the rows twice on the recon to this xlsx or csv file")

	viper.BindPFlag("compare.evolution", compareCmd.Flags().Lookup("evolution"))
	viper.BindPFlag("compare.recon", compareCmd.Flags().Lookup("recon"))
	viper.BindPFlag("compare.recon_sheet", compareCmd.Flags().Lookup("recon-sheet"))
	viper.BindPFlag("compare.columns", compareCmd.Flags().Lookup("columns"))
	viper.BindPFlag("compare.format", compareCmd.Flags().Lookup("output-format"))
	viper.BindPFlag("compare.preview_rows", compareCmd.Flags().Lookup("preview"))
	viper.BindPFlag("compare.export_a", compareCmd.Flags().Lookup("export-a"))
	viper.BindPFlag("compare.export_b", compareCmd.Flags().Lookup("export-b"))
}

func validateCompareFlags(cmd *cobra.Command, args []string) error {
	evolutionFile = viper.GetString("compare.evolution")
	reconFile = viper.GetString("compare.recon")
	reconSheet = viper.GetString("compare.recon_sheet")
	exportA = viper.GetString("compare.export_a")
	exportB = viper.GetString("compare.export_b")

	if err := validateFileExists(evolutionFile, "evolution"); err != nil {
		return err
	}
	if err := validateFileExists(reconFile, "recon"); err != nil {
		return err
	}
	return features.ValidateCompareColumns(viper.GetInt("compare.columns"))
}

func runCompare(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	s, err := currentSettings()
	if err != nil {
		return err
	}
	columns := s.Compare.Columns

	return logger.Run("compare", nil, func(a *logger.Action) error {
		reconCfg := features.CompareLoadConfig(columns)
		reconCfg.Sheet = reconSheet

		ws := workspace.New(nil, a.Logger())
		if err := ws.LoadAll(ctx,
			workspace.Source{Slot: slotEvolution, Path: evolutionFile, Config: features.CompareLoadConfig(columns)},
			workspace.Source{Slot: slotRecon, Path: reconFile, Config: reconCfg},
		); err != nil {
			return err
		}

		evolution, err := ws.Require(slotEvolution)
		if err != nil {
			return err
		}
		recon, err := ws.Require(slotRecon)
		if err != nil {
			return err
		}

		svc, err := reconciler.NewService(nil, a.Logger())
		if err != nil {
			return err
		}
		result, err := features.Compare(ctx, svc, evolution, recon, columns)
		if err != nil {
			return err
		}

		generator, err := reporter.NewReportGenerator(s.ReportConfig())
		if err != nil {
			return err
		}
		if err := generator.GenerateReport(result, cmd.OutOrStdout()); err != nil {
			return err
		}

		var exports []reporter.Output
		for _, e := range []struct {
			path string
			rows *table.Table
		}{
			{exportA, result.OnlyInA},
			{exportB, result.OnlyInB},
		} {
			if e.path != "" {
				exports = append(exports, reporter.Output{
					Table:  e.rows,
					Path:   e.path,
					Config: features.ExportConfig(reporter.FormatForPath(e.path), false),
				})
			}
		}
		if len(exports) > 0 {
			if err := writeOutputs(ctx, a, cmd.ErrOrStderr(), exports...); err != nil {
				return err
			}
		}

		summary := result.Summary()
		a.Step("reconcile", logger.Fields{
			"only_in_a": summary.OnlyInA,
			"only_in_b": summary.OnlyInB,
			"matched":   summary.Matched,
		})
		return nil
	})
}
