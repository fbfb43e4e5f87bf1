package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/pocketbase-client/cmd/pb/commands"
	"github.com/fivetwenty-io/pocketbase-client/internal/constants"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "pb",
	Short: "PocketBase API CLI",
	Long: `A command-line interface for interacting with a PocketBase server.

This CLI covers admin and record login, collections and records.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.pocketbase/config.yml)")
	rootCmd.PersistentFlags().StringP("url", "u", "", "PocketBase server URL")
	rootCmd.PersistentFlags().StringP("token", "t", "", "authentication token, bypasses the stored login")
	rootCmd.PersistentFlags().String("locale", "", "Accept-Language sent with every request")
	rootCmd.PersistentFlags().StringP("output", "o", constants.FormatTable, "output format (table, json, yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log requests to stderr")
	rootCmd.PersistentFlags().String("log-format", "zap", "logger used with --verbose (zap, hclog)")
	rootCmd.PersistentFlags().String("credentials", "", "credential file (default is $HOME/.pocketbase/auth.yml)")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")

	// Bind flags to viper
	for _, key := range []string{
		commands.KeyConfig,
		commands.KeyURL,
		commands.KeyToken,
		commands.KeyLocale,
		commands.KeyOutput,
		commands.KeyVerbose,
		commands.KeyLogFormat,
		commands.KeyCredentials,
		commands.KeyNoColor,
	} {
		_ = viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(key))
	}

	// Add commands
	rootCmd.AddCommand(commands.NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(commands.NewConfigCommand())
	rootCmd.AddCommand(commands.NewLoginCommand())
	rootCmd.AddCommand(commands.NewLogoutCommand())
	rootCmd.AddCommand(commands.NewWhoamiCommand())
	rootCmd.AddCommand(commands.NewHealthCommand())
	rootCmd.AddCommand(commands.NewCollectionsCommand())
	rootCmd.AddCommand(commands.NewRecordsCommand())
}

func initConfig() {
	cfgFile := viper.GetString(commands.KeyConfig)

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		// Default to ~/.pocketbase/config.yml
		viper.SetConfigFile(filepath.Join(home, constants.CredentialDirName, constants.ConfigFileName))
	}

	// Read in environment variables that match, e.g. POCKETBASE_URL
	viper.SetEnvPrefix(constants.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if viper.GetBool(commands.KeyNoColor) {
		color.NoColor = true
	}

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool(commands.KeyVerbose) {
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
