package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/pocketbase-client/internal/constants"
	"github.com/fivetwenty-io/pocketbase-client/internal/http"
	"github.com/fivetwenty-io/pocketbase-client/pkg/pocketbase"
)

// Client implements the pocketbase.Client interface.
type Client struct {
	cctx       *pocketbase.ClientContext
	httpClient *http.Client
	handler    pocketbase.Handler
	chain      *pocketbase.Chain
	logger     pocketbase.Logger

	admins      *AdminsClient
	collections *CollectionsClient
	health      *HealthClient
	settings    *SettingsClient
	logs        *LogsClient
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *pocketbase.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.HTTPClient != nil {
		httpOpts = append(httpOpts, http.WithHTTPClient(config.HTTPClient))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	if config.RetryMax > 0 {
		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, config.RetryWaitMin, config.RetryWaitMax))
	}

	return httpOpts
}

// createContextOptions builds client context options from config.
func createContextOptions(config *pocketbase.Config) []pocketbase.ContextOption {
	opts := []pocketbase.ContextOption{
		pocketbase.WithContextLogger(config.Logger),
	}

	switch {
	case config.DisablePerPageLimit:
		opts = append(opts, pocketbase.WithContextMaxPerPage(0))
	case config.MaxPerPage > 0:
		opts = append(opts, pocketbase.WithContextMaxPerPage(config.MaxPerPage))
	}

	if config.Storage != nil {
		opts = append(opts, pocketbase.WithContextStorage(config.Storage))
	}

	return opts
}

// createChain assembles the middleware chain in its fixed order: base URL,
// locale, auth, then optional and user middlewares.
func createChain(cctx *pocketbase.ClientContext, config *pocketbase.Config, logger pocketbase.Logger) *pocketbase.Chain {
	middlewares := []pocketbase.Middleware{
		pocketbase.BaseURLResolver(cctx),
		pocketbase.LocaleInjector(cctx),
		pocketbase.AuthInjector(cctx),
	}

	if len(config.Headers) > 0 {
		middlewares = append(middlewares, pocketbase.HeaderMiddleware(config.Headers))
	}

	if config.RateLimit > 0 {
		middlewares = append(middlewares, pocketbase.NewRateLimitMiddleware(config.RateLimit, config.RateBurst))
	}

	if config.Debug && config.Logger != nil {
		middlewares = append(middlewares, pocketbase.LoggingMiddleware(logger))
	}

	middlewares = append(middlewares, config.Middleware...)

	return pocketbase.NewChain(middlewares...)
}

// New creates a new PocketBase client. No network activity happens here.
func New(ctx context.Context, config *pocketbase.Config) (*Client, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: %w", pocketbase.ErrInvalidConfig, constants.ErrConfigRequired)
	}

	err := config.Validate()
	if err != nil {
		return nil, err
	}

	logger := config.Logger
	if logger == nil {
		logger = pocketbase.NoopLogger{}
	}

	cctx, err := pocketbase.NewClientContext(config.BaseURL, config.Locale, createContextOptions(config)...)
	if err != nil {
		return nil, err
	}

	if config.Token != "" {
		kind := config.TokenKind
		if kind == 0 {
			kind = pocketbase.CredentialAdmin
		}

		cctx.SetCredential(pocketbase.Credential{Token: config.Token, Kind: kind})
	}

	client := &Client{
		cctx:       cctx,
		httpClient: http.NewClient(createHTTPClientOptions(config)...),
		chain:      createChain(cctx, config, logger),
		logger:     logger,
	}

	client.handler = client.chain.Then(client.invoke)
	client.initializeServices()

	logger.Debug("PocketBase client created", map[string]interface{}{
		"base_url": cctx.BaseURL().String(),
		"locale":   cctx.Locale(),
	})

	return client, nil
}

func (c *Client) initializeServices() {
	c.admins = NewAdminsClient(c, c.cctx)
	c.collections = NewCollectionsClient(c, c.cctx)
	c.health = NewHealthClient(c)
	c.settings = NewSettingsClient(c)
	c.logs = NewLogsClient(c, c.cctx)
}

// invoke is the terminal handler: it performs the network exchange.
func (c *Client) invoke(ctx context.Context, req *pocketbase.Request) (*pocketbase.Response, error) {
	headers := req.Headers.Clone()
	if headers.Get(constants.HeaderAccept) == "" {
		headers.Set(constants.HeaderAccept, constants.ContentTypeJSON)
	}

	if req.ContentType != "" {
		headers.Set(constants.HeaderContentType, req.ContentType)
	}

	resp, err := c.httpClient.Do(ctx, &http.Request{
		Method:  req.Method,
		URL:     req.FullURL(),
		Headers: headers,
		Body:    req.Body,
	})
	if err != nil {
		return nil, &pocketbase.TransportError{Op: req.Method, URL: req.URL, Err: err}
	}

	return &pocketbase.Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Body:       resp.Body,
	}, nil
}

// Send implements pocketbase.Sender. Non-2xx responses become *APIError.
func (c *Client) Send(ctx context.Context, req *pocketbase.Request) (*pocketbase.Response, error) {
	resp, err := c.handler(ctx, req.Clone())
	if err != nil {
		return nil, err
	}

	if !resp.IsSuccess() {
		return nil, pocketbase.ParseAPIError(resp.StatusCode, resp.Body)
	}

	return resp, nil
}

// Context implements pocketbase.Client.Context.
func (c *Client) Context() *pocketbase.ClientContext {
	return c.cctx
}

// Logout implements pocketbase.Client.Logout.
func (c *Client) Logout() {
	c.cctx.ClearCredential()
}

// Service accessors

// Admin implements pocketbase.Client.Admin.
func (c *Client) Admin() pocketbase.AdminsClient {
	return c.admins
}

// Collection implements pocketbase.Client.Collection.
func (c *Client) Collection() pocketbase.CollectionsClient {
	return c.collections
}

// Record implements pocketbase.Client.Record.
func (c *Client) Record(name string) pocketbase.RecordsClient {
	return NewRecordsClient(c, c.cctx, name)
}

// Health implements pocketbase.Client.Health.
func (c *Client) Health() pocketbase.HealthClient {
	return c.health
}

// Settings implements pocketbase.Client.Settings.
func (c *Client) Settings() pocketbase.SettingsClient {
	return c.settings
}

// Logs implements pocketbase.Client.Logs.
func (c *Client) Logs() pocketbase.LogsClient {
	return c.logs
}

// Request helpers

func newJSONRequest(method, path string, body interface{}) (*pocketbase.Request, error) {
	req := pocketbase.NewRequest(method, path)

	if body == nil {
		return req, nil
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, &pocketbase.SerializationError{Op: "encode request body", Err: err}
	}

	req.Body = data
	req.ContentType = constants.ContentTypeJSON

	return req, nil
}

// sendAndDecode sends req and decodes the body into out when out is non-nil.
func sendAndDecode(ctx context.Context, sender pocketbase.Sender, req *pocketbase.Request, out interface{}, what string) error {
	resp, err := sender.Send(ctx, req)
	if err != nil {
		return err
	}

	if out == nil {
		return nil
	}

	err = json.Unmarshal(resp.Body, out)
	if err != nil {
		return &pocketbase.SerializationError{Op: "decode " + what, Body: resp.Body, Err: err}
	}

	return nil
}

func resourcePath(basePath, id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("%w: %w", pocketbase.ErrInvalidConfig, constants.ErrEmptyID)
	}

	return basePath + "/" + url.PathEscape(id), nil
}

func mergeBody(base map[string]interface{}, extra map[string]interface{}) map[string]interface{} {
	body := make(map[string]interface{}, len(base)+len(extra))
	for key, value := range extra {
		body[key] = value
	}

	for key, value := range base {
		body[key] = value
	}

	return body
}
