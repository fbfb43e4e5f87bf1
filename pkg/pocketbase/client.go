package pocketbase

import (
	"context"
	"fmt"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// CRUD is the generic operation set of a resource bound to a base path.
type CRUD[T any] interface {
	GetList(ctx context.Context, config *ListConfig) (*ListResult[T], error)
	GetFullList(ctx context.Context, batch int, config *ListConfig) ([]T, error)
	GetFirstListItem(ctx context.Context, filter string, config *ListConfig) (*T, error)
	GetOne(ctx context.Context, id string, config *ViewConfig) (*T, error)
	Create(ctx context.Context, config *MutateConfig) (*T, error)
	Update(ctx context.Context, id string, config *MutateConfig) (*T, error)
	Delete(ctx context.Context, id string, config *DeleteConfig) error
}

// Auth is the credential exchange surface of admins and auth collections.
type Auth[M any] interface {
	AuthWithPassword(ctx context.Context, identity, password string, config *AuthConfig) (*AuthResponse[M], error)
	AuthRefresh(ctx context.Context, config *AuthConfig) (*AuthResponse[M], error)
	Logout()
	RequestPasswordReset(ctx context.Context, email string, config *AuthConfig) error
	ConfirmPasswordReset(ctx context.Context, token, password, passwordConfirm string, config *AuthConfig) error
}

// AdminsClient manages and authenticates administrators.
type AdminsClient interface {
	CRUD[Admin]
	Auth[Admin]
}

// CollectionsClient manages collection schemas.
type CollectionsClient interface {
	CRUD[Collection]
	Import(ctx context.Context, collections []Collection, deleteMissing bool) error
}

// RecordsClient manages the records of one collection and, for auth
// collections, authenticates them.
type RecordsClient interface {
	CRUD[Record]
	Auth[Record]
	RequestVerification(ctx context.Context, email string, config *AuthConfig) error
	ConfirmVerification(ctx context.Context, token string, config *AuthConfig) error
	ListAuthMethods(ctx context.Context) (*AuthMethodsList, error)
}

// HealthClient checks server health.
type HealthClient interface {
	Check(ctx context.Context) (*HealthResponse, error)
}

// SettingsClient reads and updates application settings.
type SettingsClient interface {
	GetAll(ctx context.Context) (map[string]interface{}, error)
	Update(ctx context.Context, body map[string]interface{}) (map[string]interface{}, error)
	TestS3(ctx context.Context, filesystem string) error
	TestEmail(ctx context.Context, email, template string) error
	GenerateAppleClientSecret(ctx context.Context, req *AppleClientSecretRequest) (*AppleClientSecret, error)
}

// LogsClient reads request logs.
type LogsClient interface {
	CRUD[LogRequest]
	GetStats(ctx context.Context, filter string) ([]LogRequestStat, error)
}

// Sender runs a request descriptor through the middleware chain. Non-2xx
// responses are returned as *APIError.
type Sender interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}

// Client is the entry point to every service. Accessors perform no I/O.
type Client interface {
	Sender

	Context() *ClientContext
	Admin() AdminsClient
	Collection() CollectionsClient
	Record(name string) RecordsClient
	Health() HealthClient
	Settings() SettingsClient
	Logs() LogsClient
	Logout()
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// NoopLogger discards everything.
type NoopLogger struct{}

func (NoopLogger) Debug(string, map[string]interface{}) {}
func (NoopLogger) Info(string, map[string]interface{})  {}
func (NoopLogger) Warn(string, map[string]interface{})  {}
func (NoopLogger) Error(string, map[string]interface{}) {}

// Config represents client configuration for building a pocketbase.Client.
type Config struct {
	// BaseURL is the server root, e.g. "https://example.pocketbase.io".
	// pbclient.New trims a trailing slash and adds "https://" when no scheme
	// is present.
	BaseURL string
	// Locale is sent as Accept-Language on every request when set.
	Locale string

	// Token, when set, is installed as the initial credential.
	Token string
	// TokenKind is the kind of Token. Defaults to CredentialAdmin.
	TokenKind CredentialKind

	// HTTPClient overrides the underlying *http.Client.
	HTTPClient *http.Client
	// HTTPTimeout is the per-request timeout of the default HTTP client.
	HTTPTimeout time.Duration
	// UserAgent overrides the default User-Agent header.
	UserAgent string
	// Headers are added to every request.
	Headers map[string]string

	// RetryMax enables transport retries for connection errors and 5xx
	// responses. Zero, the default, disables them.
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration

	// MaxPerPage is the perPage ceiling; zero selects the default of 500.
	MaxPerPage int
	// DisablePerPageLimit passes perPage through unchecked.
	DisablePerPageLimit bool

	// RateLimit caps outgoing requests per second. Zero disables limiting.
	RateLimit float64
	RateBurst int

	// Debug enables request logging when a Logger is provided.
	Debug  bool
	Logger Logger

	// Middleware runs after the auth injector and before the transport.
	Middleware []Middleware
	// Storage persists the credential across client instances.
	Storage Storage
}

// Validate checks the configuration before any client is built.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required),
		validation.Field(&c.HTTPTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.RetryMax, validation.Min(0)),
		validation.Field(&c.RetryWaitMin, validation.Min(time.Duration(0))),
		validation.Field(&c.RetryWaitMax, validation.Min(c.RetryWaitMin)),
		validation.Field(&c.MaxPerPage, validation.Min(0)),
		validation.Field(&c.RateLimit, validation.Min(0.0)),
		validation.Field(&c.RateBurst, validation.Min(0)),
		validation.Field(&c.TokenKind, validation.In(CredentialKind(0), CredentialAdmin, CredentialRecord)),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return nil
}
