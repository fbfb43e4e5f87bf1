package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/fivetwenty-io/pocketbase-client/internal/constants"
	"github.com/fivetwenty-io/pocketbase-client/pkg/pocketbase"
)

// RecordsClient implements pocketbase.RecordsClient for one collection.
type RecordsClient struct {
	*CRUDService[pocketbase.Record]
	*AuthService[pocketbase.Record]

	sender     pocketbase.Sender
	collection string
	authPath   string
}

// CollectionPath returns /api/collections/{name} with the name escaped.
func CollectionPath(name string) string {
	return constants.PathCollections + "/" + url.PathEscape(name)
}

// RecordsPath returns /api/collections/{name}/records with the name escaped.
func RecordsPath(name string) string {
	return CollectionPath(name) + "/records"
}

// NewRecordsClient creates a records client bound to collection. Access
// rules are enforced by the server, so requests do not require a credential.
func NewRecordsClient(sender pocketbase.Sender, cctx *pocketbase.ClientContext, collection string) *RecordsClient {
	authPath := CollectionPath(collection)

	return &RecordsClient{
		CRUDService: NewCRUDService[pocketbase.Record](sender, cctx, RecordsPath(collection), false),
		AuthService: NewAuthService[pocketbase.Record](sender, cctx, authPath,
			constants.RecordModelKey, pocketbase.CredentialRecord),
		sender:     sender,
		collection: collection,
		authPath:   authPath,
	}
}

// Collection returns the collection name.
func (c *RecordsClient) Collection() string {
	return c.collection
}

// RequestVerification implements pocketbase.RecordsClient.RequestVerification.
func (c *RecordsClient) RequestVerification(ctx context.Context, email string, config *pocketbase.AuthConfig) error {
	if email == "" {
		return fmt.Errorf("%w: %w", pocketbase.ErrInvalidConfig, constants.ErrEmptyEmail)
	}

	return c.AuthService.post(ctx, constants.RequestVerificationSuffix, map[string]interface{}{
		"email": email,
	}, config)
}

// ConfirmVerification implements pocketbase.RecordsClient.ConfirmVerification.
func (c *RecordsClient) ConfirmVerification(ctx context.Context, token string, config *pocketbase.AuthConfig) error {
	if token == "" {
		return fmt.Errorf("%w: %w", pocketbase.ErrInvalidConfig, constants.ErrEmptyToken)
	}

	return c.AuthService.post(ctx, constants.ConfirmVerificationSuffix, map[string]interface{}{
		"token": token,
	}, config)
}

// ListAuthMethods implements pocketbase.RecordsClient.ListAuthMethods.
func (c *RecordsClient) ListAuthMethods(ctx context.Context) (*pocketbase.AuthMethodsList, error) {
	req := pocketbase.NewRequest(http.MethodGet, c.authPath+constants.AuthMethodsSuffix)

	var methods pocketbase.AuthMethodsList

	err := sendAndDecode(ctx, c.sender, req, &methods, "auth methods")
	if err != nil {
		return nil, fmt.Errorf("listing auth methods of %s: %w", c.collection, err)
	}

	return &methods, nil
}
