package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"golang-backoffice-converter/cmd/backoffice/config"
	"golang-backoffice-converter/pkg/errors"
	"golang-backoffice-converter/pkg/logger"
)

var (
	cfgFile string
	verbose bool
	version = "dev"
	commit  = "unknown"
	date    = "unknown"

	// settings of the running command, loaded before it runs
	settings *config.Settings
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "backoffice",
	Short: "Back-office spreadsheet converter",
	Long: `Backoffice turns bank, ledger and auction exports into the import files
of the accounting system, and compares ledger exports against the
reconciliation.

Examples:
  backoffice compare --evolution evolution.xlsx --recon recon.xlsx
  backoffice petty --input petty.xlsx --format xlsx
  backoffice bidmaster --dpr dpr.csv --cash-recon recon.csv --location bloemfontein \
    --auction-code 245 --department "Bfn Mining" --commission 12,5 --date 14/03/2025
  backoffice schema petty-cash`,
	Version:           getVersionString(),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadSettings,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (optional)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "text", "log format: text, json")

	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// initConfig registers defaults and environment variables
func initConfig() {
	config.SetDefaults(viper.GetViper())

	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
}

// loadSettings reads the config file, validates the merged settings and
// installs the global logger.
func loadSettings(cmd *cobra.Command, args []string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return errors.ConfigurationError(errors.CodeInvalidConfig, "config", cfgFile, err).
				WithSuggestion("check that the config file exists and is valid YAML")
		}
	}
	if verbose {
		viper.Set("log.level", string(logger.DebugLevel))
	}

	s, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	log, err := logger.NewLogger(&s.Log)
	if err != nil {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "log", s.Log.Output, err)
	}
	logger.SetGlobalLogger(log)

	if used := viper.ConfigFileUsed(); used != "" {
		log.WithField("config_file", used).Debug("Using config file")
	}

	settings = s
	return nil
}

// currentSettings returns the settings loaded for this run, reading them
// from viper when the command was invoked without the root command.
func currentSettings() (*config.Settings, error) {
	if settings != nil {
		return settings, nil
	}
	return config.Load(viper.GetViper())
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = getVersionString()
}

func getVersionString() string {
	if version == "dev" {
		return fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)
	}
	return version
}
