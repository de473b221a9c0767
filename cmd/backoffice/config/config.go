// Package config turns viper values (defaults, config file, BACKOFFICE_*
// environment variables and bound flags) into the settings the converters
// and reporters take.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"golang-backoffice-converter/internal/features"
	"golang-backoffice-converter/internal/reporter"
	"golang-backoffice-converter/internal/schema"
	apperrors "golang-backoffice-converter/pkg/errors"
	"golang-backoffice-converter/pkg/logger"
)

// EnvPrefix prefixes every environment variable read by the CLI
const EnvPrefix = "BACKOFFICE"

// Settings is the merged configuration of one run
type Settings struct {
	Log       logger.Config     `mapstructure:"log"`
	Output    OutputSettings    `mapstructure:"output"`
	Compare   CompareSettings   `mapstructure:"compare"`
	Petty     PettySettings     `mapstructure:"petty"`
	Bidmaster BidmasterSettings `mapstructure:"bidmaster"`
}

// OutputSettings apply to converters that can write either file format
type OutputSettings struct {
	Format string `mapstructure:"format"`
}

// CompareSettings configure the ledger comparison
type CompareSettings struct {
	Columns     int    `mapstructure:"columns"`
	Format      string `mapstructure:"format"`
	PreviewRows int    `mapstructure:"preview_rows"`
}

// PettySettings configure the petty cash converter
type PettySettings struct {
	// Aliases lists extra source headers per output column, for templates
	// whose headers drifted.
	Aliases map[string][]string `mapstructure:"aliases"`
}

// BidmasterSettings hold the auction defaults an operator may keep in the
// config file instead of passing them on every run.
type BidmasterSettings struct {
	Location   string `mapstructure:"location"`
	Department string `mapstructure:"department"`
	Commission string `mapstructure:"commission"`
}

// SetDefaults registers the built-in defaults on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.level", string(logger.InfoLevel))
	v.SetDefault("log.format", string(logger.TextFormat))
	v.SetDefault("log.output", string(logger.StderrOutput))
	v.SetDefault("output.format", string(reporter.FileCSV))
	v.SetDefault("compare.columns", features.DefaultCompareColumns)
	v.SetDefault("compare.format", string(reporter.FormatConsole))
	v.SetDefault("compare.preview_rows", 10)
}

// Load reads and validates the settings held by v
func Load(v *viper.Viper) (*Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, apperrors.ConfigurationError(apperrors.CodeInvalidConfig, "config", v.ConfigFileUsed(), err).
			WithSuggestion("check the syntax of the config file")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks every section of the settings
func (s *Settings) Validate() error {
	if err := s.Log.Validate(); err != nil {
		return apperrors.ConfigurationError(apperrors.CodeInvalidConfig, "log", s.Log.Level, err).
			WithSuggestion("use --log-level debug|info|warn|error and --log-format text|json")
	}
	if _, err := reporter.ParseFileFormat(s.Output.Format); err != nil {
		return apperrors.ConfigurationError(apperrors.CodeInvalidConfig, "output.format", s.Output.Format, err)
	}
	if err := features.ValidateCompareColumns(s.Compare.Columns); err != nil {
		return err
	}
	if !reporter.OutputFormat(s.Compare.Format).IsValid() {
		return apperrors.ConfigurationError(apperrors.CodeInvalidConfig, "compare.format", s.Compare.Format,
			fmt.Errorf("use console or json"))
	}
	if s.Compare.PreviewRows < 0 {
		return apperrors.ConfigurationError(apperrors.CodeInvalidConfig, "compare.preview_rows", s.Compare.PreviewRows,
			fmt.Errorf("cannot be negative"))
	}
	return nil
}

// OutputFormat returns the validated output file format
func (s *Settings) OutputFormat() reporter.FileFormat {
	f, err := reporter.ParseFileFormat(s.Output.Format)
	if err != nil {
		return reporter.FileCSV
	}
	return f
}

// ReportConfig returns the console or JSON report settings of a comparison
func (s *Settings) ReportConfig() *reporter.ReportConfig {
	cfg := reporter.DefaultReportConfig()
	cfg.Format = reporter.OutputFormat(s.Compare.Format)
	cfg.PreviewRows = s.Compare.PreviewRows
	cfg.LabelA = features.LabelNotOnRecon
	cfg.LabelB = features.LabelTwiceOnRecon
	cfg.DateLayout = features.ImportDateLayout
	return cfg
}

// PettyAliases returns the configured aliases keyed by the exact output
// column name. Viper lower-cases map keys, so they are matched back onto the
// petty cash columns here. Constant columns read no source and take no
// aliases.
func (s *Settings) PettyAliases() (schema.Aliases, error) {
	if len(s.Petty.Aliases) == 0 {
		return nil, nil
	}

	columns := features.PettyCashSchema().Columns
	aliases := make(schema.Aliases, len(s.Petty.Aliases))
	for key, names := range s.Petty.Aliases {
		var spec *schema.ColumnSpec
		for i := range columns {
			if strings.EqualFold(columns[i].Name, key) {
				spec = &columns[i]
				break
			}
		}
		if spec == nil {
			return nil, apperrors.ConfigurationError(apperrors.CodeInvalidConfig, "petty.aliases", key,
				fmt.Errorf("not an accounting import column"))
		}
		if spec.Kind == schema.KindConst {
			return nil, apperrors.ConfigurationError(apperrors.CodeInvalidConfig, "petty.aliases", key,
				fmt.Errorf("column is a constant and reads no source")).
				WithSuggestion("aliases apply to TxDate, Description, Reference, Account, Amount, UseTax, IsDebit and Module")
		}
		aliases[spec.Name] = names
	}
	return aliases, nil
}

// BidmasterOptions merges the flags of one run with the configured auction
// defaults and validates the result.
func (s *Settings) BidmasterOptions(location, auctionCode, department, commission, date string) (*features.BidmasterOptions, error) {
	if location == "" {
		location = s.Bidmaster.Location
	}
	if department == "" {
		department = s.Bidmaster.Department
	}
	if commission == "" {
		commission = s.Bidmaster.Commission
	}

	required := []struct{ name, value string }{
		{"location", location},
		{"auction-code", auctionCode},
		{"department", department},
		{"commission", commission},
		{"date", date},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return nil, apperrors.ConfigurationError(apperrors.CodeMissingConfig, r.name, nil, nil).
				WithSuggestion("pass --" + r.name + " or set it under bidmaster in the config file")
		}
	}

	return features.ParseBidmasterOptions(location, auctionCode, department, commission, date)
}

// ParseDay reads a dd/mm/yyyy date. An empty value is today.
func ParseDay(s string, now time.Time) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	day, err := time.Parse(features.ImportDateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, apperrors.ConfigurationError(apperrors.CodeInvalidConfig, "date", s, err).
			WithSuggestion("enter the date as dd/mm/yyyy")
	}
	return day, nil
}
