package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/fivetwenty-io/pocketbase-client/internal/constants"
	"github.com/fivetwenty-io/pocketbase-client/pkg/pbclient"
	"github.com/fivetwenty-io/pocketbase-client/pkg/pocketbase"
)

// EnvPassword is read when --password is not given.
const EnvPassword = "POCKETBASE_PASSWORD"

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	var (
		identity   string
		password   string
		collection string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login to a PocketBase server",
		Long: `Authenticate as an admin, or as a record of an auth collection with --collection.
The token is stored in ~/.pocketbase/auth.yml and used by later commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error

			if identity == "" {
				identity, err = promptLine(cmd, "Email or username: ")
				if err != nil {
					return err
				}
			}

			if password == "" {
				password = os.Getenv(EnvPassword)
			}

			if password == "" {
				fmt.Fprint(cmd.OutOrStdout(), "Password: ")

				bytePassword, err := term.ReadPassword(int(syscall.Stdin))
				if err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}

				password = string(bytePassword)

				fmt.Fprintln(cmd.OutOrStdout())
			}

			if password == "" {
				return constants.ErrPasswordRequired
			}

			return runLogin(cmd, identity, password, collection)
		},
	}

	cmd.Flags().StringVarP(&identity, "email", "e", "", "admin email or record identity")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (read from "+EnvPassword+" or prompted when empty)")
	cmd.Flags().StringVar(&collection, "collection", "", "auth collection to login to instead of the admins")

	return cmd
}

func promptLine(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), prompt)

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read input: %w", err)
	}

	return strings.TrimSpace(line), nil
}

func runLogin(cmd *cobra.Command, identity, password, collection string) error {
	config, err := buildClientConfig()
	if err != nil {
		return err
	}

	storage, err := credentialStorage()
	if err != nil {
		return err
	}

	// Login always persists, even when --token was given.
	config.Token = ""
	config.Storage = storage

	client, err := pbclient.New(cmd.Context(), config)
	if err != nil {
		return err
	}

	var message string

	if collection == "" {
		resp, err := client.Admin().AuthWithPassword(cmd.Context(), identity, password, nil)
		if err != nil {
			return fmt.Errorf("admin login failed: %w", err)
		}

		message = "Logged in as admin " + resp.Model.Email
	} else {
		resp, err := client.Record(collection).AuthWithPassword(cmd.Context(), identity, password, nil)
		if err != nil {
			return fmt.Errorf("login to %s failed: %w", collection, err)
		}

		message = fmt.Sprintf("Logged in as %s record %s", collection, resp.Model.ID)
	}

	stored, err := storage.Load()
	if err != nil || stored == nil {
		return constants.ErrNotSaved
	}

	printSuccess(cmd.OutOrStdout(), "%s", message)

	return nil
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Logout from the PocketBase server",
		Long:  "Remove the stored credential. The server keeps no session, so this is local only.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			storage, err := credentialStorage()
			if err != nil {
				return err
			}

			cred, err := storage.Load()
			if err != nil {
				return fmt.Errorf("reading stored credential: %w", err)
			}

			if cred == nil {
				printWarning(cmd.OutOrStdout(), "Not logged in")

				return nil
			}

			err = storage.Clear()
			if err != nil {
				return fmt.Errorf("removing stored credential: %w", err)
			}

			printSuccess(cmd.OutOrStdout(), "Logged out (%s credential removed)", cred.Kind)

			return nil
		},
	}
}

// CredentialSummary describes the stored identity.
type CredentialSummary struct {
	Kind      string `json:"kind"       yaml:"kind"`
	ID        string `json:"id"         yaml:"id"`
	Identity  string `json:"identity"   yaml:"identity"`
	ExpiresAt string `json:"expires_at" yaml:"expires_at"`
	Valid     bool   `json:"valid"      yaml:"valid"`
}

// NewWhoamiCommand creates the whoami command.
func NewWhoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored identity",
		Long:  "Display the identity and token expiry of the stored credential without contacting the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			storage, err := credentialStorage()
			if err != nil {
				return err
			}

			cred, err := storage.Load()
			if err != nil {
				return fmt.Errorf("reading stored credential: %w", err)
			}

			if cred == nil {
				return constants.ErrNotAuthenticated
			}

			renderer := &OutputRenderer[CredentialSummary]{
				RenderTable: func(table *tablewriter.Table, summary CredentialSummary) error {
					table.Header("Property", "Value")
					_ = table.Append("Kind", summary.Kind)
					_ = table.Append("ID", summary.ID)
					_ = table.Append("Identity", summary.Identity)
					_ = table.Append("Expires", summary.ExpiresAt)
					_ = table.Append("Valid", fmt.Sprint(summary.Valid))

					return nil
				},
			}

			return renderer.Render(cmd.OutOrStdout(), summarize(*cred), outputFormat())
		},
	}
}

func summarize(cred pocketbase.Credential) CredentialSummary {
	summary := CredentialSummary{
		Kind:      cred.Kind.String(),
		ExpiresAt: constants.NotAvailable,
		Valid:     cred.IsValid(),
	}

	if expiresAt, err := cred.ExpiresAt(); err == nil {
		summary.ExpiresAt = expiresAt.UTC().Format("2006-01-02 15:04:05Z")
	}

	switch cred.Kind {
	case pocketbase.CredentialAdmin:
		if admin, err := cred.Admin(); err == nil {
			summary.ID = admin.ID
			summary.Identity = admin.Email
		}
	case pocketbase.CredentialRecord:
		if record, err := cred.Record(); err == nil {
			summary.ID = record.ID
			summary.Identity = record.GetString("email")

			if summary.Identity == "" {
				summary.Identity = record.GetString("username")
			}
		}
	}

	return summary
}
