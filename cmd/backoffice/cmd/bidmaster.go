package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"golang-backoffice-converter/internal/features"
	"golang-backoffice-converter/internal/reporter"
	"golang-backoffice-converter/internal/workspace"
	"golang-backoffice-converter/pkg/logger"
)

const (
	slotDPR       = "dpr"
	slotCashRecon = "cashrecon"
)

var (
	dprFile       string
	cashReconFile string
	bidOutput     string
)

var bidmasterCmd = &cobra.Command{
	Use:   "bidmaster",
	Short: "Build the auction sales journal invoice import",
	Long: `Bidmaster reads the DPR and the cash recon of one auction and writes the
invoice import: one line per lot, a commission line per lot at the given
rate, and a documentation fee per lot. Buyer names come from the cash recon.

Location, department and commission fall back to the bidmaster section of
the config file.

Examples:
  backoffice bidmaster --dpr dpr.csv --cash-recon recon.csv --location bloemfontein \
    --auction-code 245 --department "Bfn Mining" --commission 12,5 --date 14/03/2025`,

	PreRunE: validateBidmasterFlags,
	RunE:    runBidmaster,
}

func init() {
	rootCmd.AddCommand(bidmasterCmd)

	bidmasterCmd.Flags().StringVar(&dprFile, "dpr", "", "DPR export, csv (required)")
	bidmasterCmd.Flags().StringVar(&cashReconFile, "cash-recon", "", "cash recon export, csv (required)")
	bidmasterCmd.Flags().String("location", "", "auction location: bloemfontein, witbank")
	bidmasterCmd.Flags().String("auction-code", "", "numeric auction code (required)")
	bidmasterCmd.Flags().String("department", "", "department, for example \"Bfn Mining\"")
	bidmasterCmd.Flags().String("commission", "", "commission percentage, for example 12,5")
	bidmasterCmd.Flags().String("date", "", "auction date, dd/mm/yyyy (required)")
	bidmasterCmd.Flags().StringVarP(&bidOutput, "output", "o", "", "output CSV (default: "+features.BidmasterOutputName+" next to the DPR)")

	viper.BindPFlag("bidmaster.dpr", bidmasterCmd.Flags().Lookup("dpr"))
	viper.BindPFlag("bidmaster.cash_recon", bidmasterCmd.Flags().Lookup("cash-recon"))
	viper.BindPFlag("bidmaster.location", bidmasterCmd.Flags().Lookup("location"))
	viper.BindPFlag("bidmaster.auction_code", bidmasterCmd.Flags().Lookup("auction-code"))
	viper.BindPFlag("bidmaster.department", bidmasterCmd.Flags().Lookup("department"))
	viper.BindPFlag("bidmaster.commission", bidmasterCmd.Flags().Lookup("commission"))
	viper.BindPFlag("bidmaster.date", bidmasterCmd.Flags().Lookup("date"))
	viper.BindPFlag("bidmaster.output", bidmasterCmd.Flags().Lookup("output"))
}

func validateBidmasterFlags(cmd *cobra.Command, args []string) error {
	dprFile = viper.GetString("bidmaster.dpr")
	cashReconFile = viper.GetString("bidmaster.cash_recon")
	bidOutput = viper.GetString("bidmaster.output")

	if err := validateFileExists(dprFile, "dpr"); err != nil {
		return err
	}
	return validateFileExists(cashReconFile, "cash-recon")
}

func runBidmaster(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	s, err := currentSettings()
	if err != nil {
		return err
	}
	opts, err := s.BidmasterOptions(
		viper.GetString("bidmaster.location"),
		viper.GetString("bidmaster.auction_code"),
		viper.GetString("bidmaster.department"),
		viper.GetString("bidmaster.commission"),
		viper.GetString("bidmaster.date"),
	)
	if err != nil {
		return err
	}

	output := bidOutput
	if output == "" {
		output = defaultOutput(dprFile, features.BidmasterOutputName)
	}

	return logger.Run("bidmaster", nil, func(a *logger.Action) error {
		a.Step("options", logger.Fields{
			"location":     opts.Location.Name,
			"auction_code": opts.AuctionCode,
			"department":   opts.Department,
			"commission":   opts.Commission.String(),
		})

		ws := workspace.New(nil, a.Logger())
		if err := ws.LoadAll(ctx,
			workspace.Source{Slot: slotDPR, Path: dprFile, Config: features.DPRLoadConfig()},
			workspace.Source{Slot: slotCashRecon, Path: cashReconFile, Config: features.CashReconLoadConfig()},
		); err != nil {
			return err
		}

		dpr, err := ws.Require(slotDPR)
		if err != nil {
			return err
		}
		cashRecon, err := ws.Require(slotCashRecon)
		if err != nil {
			return err
		}

		out, err := features.Bidmaster(dpr, cashRecon, opts)
		if err != nil {
			return err
		}

		return writeOutput(ctx, a, cmd.OutOrStdout(), out, output, features.ExportConfig(reporter.FileCSV, true))
	})
}
