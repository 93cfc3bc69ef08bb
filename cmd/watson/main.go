package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/watson-go/cmd/watson/commands"
	"github.com/fivetwenty-io/watson-go/internal/constants"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "watson",
	Short: "Watson cloud AI services CLI",
	Long: `A command-line interface for the Watson cloud AI services.

This CLI covers document discovery, language translation, natural language
understanding, speech recognition and concept insights.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config file (default is $HOME/.watson/config.yml)")
	rootCmd.PersistentFlags().StringP("output", "o", "table", "output format (table, json, yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("endpoint", "", "service URL, overriding the configured one")
	rootCmd.PersistentFlags().String("version-date", "", "API version date, overriding the configured one")
	rootCmd.PersistentFlags().Int("retries", 0, "retry failed requests up to this many times")
	rootCmd.PersistentFlags().Bool("no-auth", false, "send requests without credentials")

	// Bind flags to viper
	for _, name := range []string{"config", "output", "verbose", "endpoint", "version-date", "retries", "no-auth"} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}

	// Add commands
	rootCmd.AddCommand(commands.NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(commands.NewConfigCommand())
	rootCmd.AddCommand(commands.NewDiscoveryCommand())
	rootCmd.AddCommand(commands.NewTranslateCommand())
	rootCmd.AddCommand(commands.NewNLUCommand())
	rootCmd.AddCommand(commands.NewSTTCommand())
	rootCmd.AddCommand(commands.NewConceptsCommand())
}

func initConfig() {
	cfgFile := viper.GetString("config")

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".watson")

		err = os.MkdirAll(configDir, constants.ConfigDirPerm)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating config directory: %v\n", err)
		}

		// Search config in ~/.watson/config.yml
		viper.AddConfigPath(configDir)
		viper.SetConfigType("yml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match
	viper.SetEnvPrefix("WATSON")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
