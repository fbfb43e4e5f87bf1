package client

import (
	"github.com/fivetwenty-io/pocketbase-client/internal/constants"
	"github.com/fivetwenty-io/pocketbase-client/pkg/pocketbase"
)

// AdminsClient implements pocketbase.AdminsClient.
type AdminsClient struct {
	*CRUDService[pocketbase.Admin]
	*AuthService[pocketbase.Admin]
}

// NewAdminsClient creates a new admins client. Admin CRUD always requires a
// credential; admin auth does not.
func NewAdminsClient(sender pocketbase.Sender, cctx *pocketbase.ClientContext) *AdminsClient {
	return &AdminsClient{
		CRUDService: NewCRUDService[pocketbase.Admin](sender, cctx, constants.PathAdmins, true),
		AuthService: NewAuthService[pocketbase.Admin](sender, cctx, constants.PathAdmins,
			constants.AdminModelKey, pocketbase.CredentialAdmin),
	}
}
