package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/fivetwenty-io/pocketbase-client/internal/constants"
	"github.com/fivetwenty-io/pocketbase-client/pkg/pocketbase"
)

// Static errors for err113 compliance.
var (
	ErrMissingToken = errors.New("auth response has no token")
	ErrMissingModel = errors.New("auth response has no identity model")
)

// AuthService implements pocketbase.Auth for an identity payload M. It is
// bound to an auth base path (/api/admins or /api/collections/{name}) and
// the key the server uses for the identity in auth responses.
type AuthService[M any] struct {
	sender   pocketbase.Sender
	cctx     *pocketbase.ClientContext
	basePath string
	modelKey string
	kind     pocketbase.CredentialKind
}

// NewAuthService creates an auth service.
func NewAuthService[M any](sender pocketbase.Sender, cctx *pocketbase.ClientContext, basePath, modelKey string, kind pocketbase.CredentialKind) *AuthService[M] {
	return &AuthService[M]{
		sender:   sender,
		cctx:     cctx,
		basePath: basePath,
		modelKey: modelKey,
		kind:     kind,
	}
}

// AuthWithPassword implements pocketbase.Auth.AuthWithPassword. On success
// the token becomes the active credential unless config.WithoutSaving is
// set. On failure the current credential is left untouched.
func (s *AuthService[M]) AuthWithPassword(ctx context.Context, identity, password string, config *pocketbase.AuthConfig) (*pocketbase.AuthResponse[M], error) {
	if identity == "" || password == "" {
		return nil, fmt.Errorf("%w: %w", pocketbase.ErrInvalidConfig, constants.ErrEmptyIdentity)
	}

	if config == nil {
		config = &pocketbase.AuthConfig{}
	}

	body := mergeBody(map[string]interface{}{
		"identity": identity,
		"password": password,
	}, config.Body)

	return s.authenticate(ctx, constants.AuthWithPasswordSuffix, body, false, config)
}

// AuthRefresh implements pocketbase.Auth.AuthRefresh. It fails with
// ErrUnauthenticated, without a request, when no credential is set.
func (s *AuthService[M]) AuthRefresh(ctx context.Context, config *pocketbase.AuthConfig) (*pocketbase.AuthResponse[M], error) {
	if config == nil {
		config = &pocketbase.AuthConfig{}
	}

	return s.authenticate(ctx, constants.AuthRefreshSuffix, mergeBody(nil, config.Body), true, config)
}

func (s *AuthService[M]) authenticate(ctx context.Context, suffix string, body map[string]interface{}, requiresAuth bool, config *pocketbase.AuthConfig) (*pocketbase.AuthResponse[M], error) {
	req, err := newJSONRequest(http.MethodPost, s.basePath+suffix, body)
	if err != nil {
		return nil, err
	}

	req.Query = config.Query()
	req.RequiresAuth = requiresAuth

	resp, err := s.sender.Send(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("authenticating against %s: %w", s.basePath, err)
	}

	authResp, model, err := parseAuthResponse[M](resp.Body, s.modelKey)
	if err != nil {
		return nil, err
	}

	if !config.WithoutSaving {
		s.cctx.SetCredential(pocketbase.Credential{
			Token: authResp.Token,
			Model: model,
			Kind:  s.kind,
		})
	}

	return authResp, nil
}

func parseAuthResponse[M any](body []byte, modelKey string) (*pocketbase.AuthResponse[M], json.RawMessage, error) {
	var raw map[string]json.RawMessage

	err := json.Unmarshal(body, &raw)
	if err != nil {
		return nil, nil, &pocketbase.SerializationError{Op: "decode auth response", Body: body, Err: err}
	}

	authResp := &pocketbase.AuthResponse[M]{
		Meta: make(map[string]json.RawMessage),
	}

	tokenRaw, ok := raw["token"]
	if ok {
		err = json.Unmarshal(tokenRaw, &authResp.Token)
		if err != nil {
			return nil, nil, &pocketbase.SerializationError{Op: "decode auth token", Body: body, Err: err}
		}
	}

	if authResp.Token == "" {
		return nil, nil, &pocketbase.SerializationError{Op: "decode auth response", Body: body, Err: ErrMissingToken}
	}

	model, ok := raw[modelKey]
	if !ok {
		return nil, nil, &pocketbase.SerializationError{
			Op:   "decode auth response",
			Body: body,
			Err:  fmt.Errorf("%w: %q", ErrMissingModel, modelKey),
		}
	}

	err = json.Unmarshal(model, &authResp.Model)
	if err != nil {
		return nil, nil, &pocketbase.SerializationError{Op: "decode auth " + modelKey, Body: body, Err: err}
	}

	for key, value := range raw {
		if key != "token" && key != modelKey {
			authResp.Meta[key] = value
		}
	}

	return authResp, model, nil
}

// Logout implements pocketbase.Auth.Logout. It only resets local state.
func (s *AuthService[M]) Logout() {
	s.cctx.ClearCredential()
}

// RequestPasswordReset implements pocketbase.Auth.RequestPasswordReset.
func (s *AuthService[M]) RequestPasswordReset(ctx context.Context, email string, config *pocketbase.AuthConfig) error {
	if email == "" {
		return fmt.Errorf("%w: %w", pocketbase.ErrInvalidConfig, constants.ErrEmptyEmail)
	}

	return s.post(ctx, constants.RequestPasswordResetSuffix, map[string]interface{}{
		"email": email,
	}, config)
}

// ConfirmPasswordReset implements pocketbase.Auth.ConfirmPasswordReset.
func (s *AuthService[M]) ConfirmPasswordReset(ctx context.Context, token, password, passwordConfirm string, config *pocketbase.AuthConfig) error {
	if token == "" {
		return fmt.Errorf("%w: %w", pocketbase.ErrInvalidConfig, constants.ErrEmptyToken)
	}

	return s.post(ctx, constants.ConfirmPasswordResetSuffix, map[string]interface{}{
		"token":           token,
		"password":        password,
		"passwordConfirm": passwordConfirm,
	}, config)
}

// post sends a body to an auth endpoint that answers with no content.
func (s *AuthService[M]) post(ctx context.Context, suffix string, base map[string]interface{}, config *pocketbase.AuthConfig) error {
	if config == nil {
		config = &pocketbase.AuthConfig{}
	}

	req, err := newJSONRequest(http.MethodPost, s.basePath+suffix, mergeBody(base, config.Body))
	if err != nil {
		return err
	}

	req.Query = config.Query()

	err = sendAndDecode(ctx, s.sender, req, nil, "")
	if err != nil {
		return fmt.Errorf("calling %s%s: %w", s.basePath, suffix, err)
	}

	return nil
}
