package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fivetwenty-io/pocketbase-client/internal/constants"
	"github.com/fivetwenty-io/pocketbase-client/pkg/pocketbase"
)

const defaultS3Filesystem = "storage"

// SettingsClient implements pocketbase.SettingsClient. Every call requires
// an admin credential.
type SettingsClient struct {
	sender pocketbase.Sender
}

// NewSettingsClient creates a new settings client.
func NewSettingsClient(sender pocketbase.Sender) *SettingsClient {
	return &SettingsClient{sender: sender}
}

func (c *SettingsClient) send(ctx context.Context, method, path string, body interface{}, out interface{}, what string) error {
	req, err := newJSONRequest(method, path, body)
	if err != nil {
		return err
	}

	req.RequiresAuth = true

	return sendAndDecode(ctx, c.sender, req, out, what)
}

// GetAll implements pocketbase.SettingsClient.GetAll.
func (c *SettingsClient) GetAll(ctx context.Context) (map[string]interface{}, error) {
	var settings map[string]interface{}

	err := c.send(ctx, http.MethodGet, constants.PathSettings, nil, &settings, "settings")
	if err != nil {
		return nil, fmt.Errorf("getting settings: %w", err)
	}

	return settings, nil
}

// Update implements pocketbase.SettingsClient.Update.
func (c *SettingsClient) Update(ctx context.Context, body map[string]interface{}) (map[string]interface{}, error) {
	if body == nil {
		body = map[string]interface{}{}
	}

	var settings map[string]interface{}

	err := c.send(ctx, http.MethodPatch, constants.PathSettings, body, &settings, "settings")
	if err != nil {
		return nil, fmt.Errorf("updating settings: %w", err)
	}

	return settings, nil
}

// TestS3 implements pocketbase.SettingsClient.TestS3. filesystem is
// "storage" (the default) or "backups".
func (c *SettingsClient) TestS3(ctx context.Context, filesystem string) error {
	if filesystem == "" {
		filesystem = defaultS3Filesystem
	}

	err := c.send(ctx, http.MethodPost, constants.PathSettingsTestS3, map[string]interface{}{
		"filesystem": filesystem,
	}, nil, "")
	if err != nil {
		return fmt.Errorf("testing S3 settings: %w", err)
	}

	return nil
}

// TestEmail implements pocketbase.SettingsClient.TestEmail.
func (c *SettingsClient) TestEmail(ctx context.Context, email, template string) error {
	if email == "" {
		return fmt.Errorf("%w: %w", pocketbase.ErrInvalidConfig, constants.ErrEmptyEmail)
	}

	err := c.send(ctx, http.MethodPost, constants.PathSettingsTestMail, map[string]interface{}{
		"email":    email,
		"template": template,
	}, nil, "")
	if err != nil {
		return fmt.Errorf("sending test email: %w", err)
	}

	return nil
}

// GenerateAppleClientSecret implements pocketbase.SettingsClient.GenerateAppleClientSecret.
func (c *SettingsClient) GenerateAppleClientSecret(ctx context.Context, request *pocketbase.AppleClientSecretRequest) (*pocketbase.AppleClientSecret, error) {
	if request == nil {
		request = &pocketbase.AppleClientSecretRequest{}
	}

	var secret pocketbase.AppleClientSecret

	err := c.send(ctx, http.MethodPost, constants.PathAppleSecret, request, &secret, "apple client secret")
	if err != nil {
		return nil, fmt.Errorf("generating apple client secret: %w", err)
	}

	return &secret, nil
}
