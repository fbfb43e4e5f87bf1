package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/pocketbase-client/internal/auth"
	"github.com/fivetwenty-io/pocketbase-client/internal/constants"
	"github.com/fivetwenty-io/pocketbase-client/internal/logging"
	"github.com/fivetwenty-io/pocketbase-client/pkg/pbclient"
	"github.com/fivetwenty-io/pocketbase-client/pkg/pocketbase"
)

// Viper keys shared by the root command and its subcommands.
const (
	KeyConfig      = "config"
	KeyURL         = "url"
	KeyToken       = "token"
	KeyLocale      = "locale"
	KeyOutput      = "output"
	KeyVerbose     = "verbose"
	KeyLogFormat   = "log-format"
	KeyCredentials = "credentials"
	KeyNoColor     = "no-color"
)

// credentialStorage returns the file storage holding the CLI login.
func credentialStorage() (*auth.FileStorage, error) {
	if path := viper.GetString(KeyCredentials); path != "" {
		return auth.NewFileStorage(afero.NewOsFs(), path), nil
	}

	storage, err := auth.NewOSFileStorage()
	if err != nil {
		return nil, fmt.Errorf("locating credential file: %w", err)
	}

	return storage, nil
}

// buildClientConfig assembles a client configuration from flags, the config
// file and the environment. An explicit token is used as is and never
// written to the credential file.
func buildClientConfig() (*pocketbase.Config, error) {
	endpoint := strings.TrimSpace(viper.GetString(KeyURL))
	if endpoint == "" {
		return nil, constants.ErrNoEndpoint
	}

	config := &pocketbase.Config{
		BaseURL:     endpoint,
		Locale:      viper.GetString(KeyLocale),
		HTTPTimeout: constants.DefaultHTTPTimeout,
	}

	if viper.GetBool(KeyVerbose) {
		logger, err := logging.NewLogger(logging.Config{
			Level:       "debug",
			Development: true,
			Format:      viper.GetString(KeyLogFormat),
		})
		if err != nil {
			return nil, fmt.Errorf("creating logger: %w", err)
		}

		config.Logger = logger
		config.Debug = true
	}

	if token := viper.GetString(KeyToken); token != "" {
		config.Token = token

		return config, nil
	}

	storage, err := credentialStorage()
	if err != nil {
		return nil, err
	}

	config.Storage = storage

	return config, nil
}

// newClient creates a client for the configured server.
func newClient(ctx context.Context) (pocketbase.Client, error) {
	config, err := buildClientConfig()
	if err != nil {
		return nil, err
	}

	client, err := pbclient.New(ctx, config)
	if err != nil {
		return nil, err
	}

	return client, nil
}

// newAuthenticatedClient creates a client and fails early when no credential
// is available.
func newAuthenticatedClient(ctx context.Context) (pocketbase.Client, error) {
	client, err := newClient(ctx)
	if err != nil {
		return nil, err
	}

	if !client.Context().IsAuthenticated() {
		return nil, constants.ErrNotAuthenticated
	}

	return client, nil
}

// parseSort turns "-created,title" into sort fields.
func parseSort(value string) []pocketbase.SortField {
	var fields []pocketbase.SortField

	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)

		switch {
		case part == "", part == "-", part == "+":
			continue
		case strings.HasPrefix(part, "-"):
			fields = append(fields, pocketbase.Desc(part[1:]))
		default:
			fields = append(fields, pocketbase.Asc(strings.TrimPrefix(part, "+")))
		}
	}

	return fields
}

// splitList splits a comma separated flag value, dropping empty entries.
func splitList(value string) []string {
	var items []string

	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}

	return items
}
