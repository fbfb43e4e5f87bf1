package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/pocketbase-client/internal/constants"
)

// configKeys are the settings the config file may hold.
var configKeys = []string{KeyURL, KeyLocale, KeyOutput, KeyCredentials}

// ConfigEntry is one row of "pb config show".
type ConfigEntry struct {
	Key       string `json:"key"       yaml:"key"`
	Saved     string `json:"saved"     yaml:"saved"`
	Effective string `json:"effective" yaml:"effective"`
}

// configFile reads and writes the flat YAML settings file.
type configFile struct {
	fs   afero.Fs
	path string
}

func openConfigFile() (*configFile, error) {
	path := viper.GetString(KeyConfig)
	if path == "" {
		path = viper.ConfigFileUsed()
	}

	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}

		path = filepath.Join(home, constants.CredentialDirName, constants.ConfigFileName)
	}

	return &configFile{fs: afero.NewOsFs(), path: path}, nil
}

func (c *configFile) load() (map[string]string, error) {
	values := map[string]string{}

	data, err := afero.ReadFile(c.fs, c.path)
	if errors.Is(err, os.ErrNotExist) {
		return values, nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", c.path, err)
	}

	err = yaml.Unmarshal(data, &values)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", c.path, err)
	}

	return values, nil
}

func (c *configFile) save(values map[string]string) error {
	err := c.fs.MkdirAll(filepath.Dir(c.path), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	err = afero.WriteFile(c.fs, c.path, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("writing %s: %w", c.path, err)
	}

	return nil
}

func validateConfigKey(key string) error {
	if !slices.Contains(configKeys, key) {
		return fmt.Errorf("%w: %q (valid keys: %v)", constants.ErrUnknownConfigKey, key, configKeys)
	}

	return nil
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Show and edit the settings stored in the CLI configuration file",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the saved and effective value of every setting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := openConfigFile()
			if err != nil {
				return err
			}

			saved, err := file.load()
			if err != nil {
				return err
			}

			entries := make([]ConfigEntry, 0, len(configKeys))
			for _, key := range configKeys {
				entries = append(entries, ConfigEntry{Key: key, Saved: saved[key], Effective: viper.GetString(key)})
			}

			renderer := &OutputRenderer[[]ConfigEntry]{
				RenderTable: func(table *tablewriter.Table, entries []ConfigEntry) error {
					table.Header("Key", "Saved", "Effective")

					for _, entry := range entries {
						_ = table.Append(entry.Key, entry.Saved, entry.Effective)
					}

					return nil
				},
			}

			format := outputFormat()
			if isTableFormat(format) {
				fmt.Fprintf(cmd.OutOrStdout(), "Config file: %s\n", file.path)
			}

			return renderer.Render(cmd.OutOrStdout(), entries, format)
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Save a setting to the configuration file. Valid keys: url, locale, output, credentials.",
		Args:  cobra.ExactArgs(2), //nolint:mnd
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			err := validateConfigKey(key)
			if err != nil {
				return err
			}

			if key == KeyOutput && !slices.Contains([]string{constants.FormatTable, constants.FormatJSON, constants.FormatYAML}, value) {
				return fmt.Errorf("%w: %q", constants.ErrUnknownFormat, value)
			}

			file, err := openConfigFile()
			if err != nil {
				return err
			}

			values, err := file.load()
			if err != nil {
				return err
			}

			values[key] = value

			err = file.save(values)
			if err != nil {
				return err
			}

			printSuccess(cmd.OutOrStdout(), "Set %s to %s", key, value)

			return nil
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Remove a setting from the configuration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			err := validateConfigKey(key)
			if err != nil {
				return err
			}

			file, err := openConfigFile()
			if err != nil {
				return err
			}

			values, err := file.load()
			if err != nil {
				return err
			}

			if _, ok := values[key]; !ok {
				printWarning(cmd.OutOrStdout(), "%s is not set", key)

				return nil
			}

			delete(values, key)

			err = file.save(values)
			if err != nil {
				return err
			}

			printSuccess(cmd.OutOrStdout(), "Unset %s", key)

			return nil
		},
	}
}
