package constants

import "errors"

// Configuration errors.
var (
	ErrConfigRequired      = errors.New("config is required")
	ErrBaseURLRequired     = errors.New("base URL is required")
	ErrUnsupportedScheme   = errors.New("base URL scheme must be http or https")
	ErrMissingHost         = errors.New("base URL has no host")
	ErrBaseURLHasQuery     = errors.New("base URL must not carry a query or fragment")
	ErrAbsolutePath        = errors.New("request path must be relative to the base URL")
	ErrPathHasQuery        = errors.New("request path must not carry a query or fragment")
	ErrNegativePage        = errors.New("page must not be negative")
	ErrPerPageOutOfRange   = errors.New("perPage is out of range")
	ErrEmptyID             = errors.New("record id is required")
	ErrEmptyCollectionName = errors.New("collection name is required")
	ErrEmptyIdentity       = errors.New("identity and password are required")
	ErrEmptyToken          = errors.New("token is required")
	ErrEmptyEmail          = errors.New("email is required")
)

// Credential errors.
var (
	ErrInvalidJWTFormat  = errors.New("invalid JWT format")
	ErrNoExpirationClaim = errors.New("no expiration claim found")
	ErrUnknownKind       = errors.New("unknown credential kind")
	ErrInvalidModel      = errors.New("stored identity model is not valid JSON")
)

// CLI errors.
var (
	ErrNotAuthenticated = errors.New("not authenticated, use 'pb login' first")
	ErrNoEndpoint       = errors.New("no PocketBase URL configured, use --url or POCKETBASE_URL")
	ErrPasswordRequired = errors.New("password is required")
	ErrUnknownFormat    = errors.New("unknown output format")
	ErrNotSaved         = errors.New("credential could not be saved, run with --verbose for details")
	ErrUnknownConfigKey = errors.New("unknown configuration key")
)
