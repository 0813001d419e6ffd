// Package cli implements the hooksmith command-line interface.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
	quiet   bool
	jsonOut bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hooksmith",
	Short: "Generate, validate, and install Claude Code hooks",
	Long: `hooksmith generates event-triggered automation hooks from templates,
validates them against a safety policy, and installs them into the
shared settings file the host runtime reads on startup.

Quick start:
  hooksmith templates                         List builtin templates
  hooksmith build --template formatter --language go --output ./hooks
  hooksmith validate ./hooks/formatter-go/hook.json
  hooksmith install ./hooks/formatter-go/hook.json project
  hooksmith list project
  hooksmith status`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// Errors the commands have not already reported (usage errors, unknown
// flags and subcommands) are printed here, so every failure reaches
// stderr exactly once.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !wasReported(err) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .hooksmith.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output as JSON")

	// Add subcommands
	rootCmd.AddCommand(newBuildCmd())
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newInstallCmd())
	rootCmd.AddCommand(newUninstallCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newTemplatesCmd())
	rootCmd.AddCommand(newRollbackCmd())
	rootCmd.AddCommand(newVersionCmd())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.hooksmith")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".hooksmith")
	}

	viper.SetDefault("output.dir", "hooks")
	viper.SetDefault("backup.retain", 5)

	viper.SetEnvPrefix("HOOKSMITH")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if verbose {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	if quiet {
		level = slog.LevelError
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
