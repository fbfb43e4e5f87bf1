package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration and credential files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations such as health checks.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry limits. Retries are disabled unless a caller opts in.
const (
	// DefaultRetryMax is the number of retries performed by the transport.
	DefaultRetryMax = 0

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// Pagination defaults.
const (
	// DefaultPage is the page requested when a list config leaves it unset.
	DefaultPage = 1

	// DefaultPerPage is the page size requested when a list config leaves it unset.
	DefaultPerPage = 30

	// DefaultMaxPerPage is the client-side ceiling for perPage. PocketBase
	// itself caps pages at 500 items.
	DefaultMaxPerPage = 500

	// DefaultBatchSize is the page size used when fetching full lists.
	DefaultBatchSize = 200
)

// Token handling.
const (
	// TokenExpirationBuffer is the buffer time before token expiration.
	TokenExpirationBuffer = 30 * time.Second
)

// API paths.
const (
	PathAdmins           = "/api/admins"
	PathCollections      = "/api/collections"
	PathCollectionImport = "/api/collections/import"
	PathHealth           = "/api/health"
	PathSettings         = "/api/settings"
	PathSettingsTestS3   = "/api/settings/test/s3"
	PathSettingsTestMail = "/api/settings/test/email"
	PathAppleSecret      = "/api/settings/apple/generate-client-secret"
	PathLogRequests      = "/api/logs/requests"
	PathLogRequestStats  = "/api/logs/requests/stats"
)

// Auth endpoint suffixes, appended to an admin or collection base path.
const (
	AuthWithPasswordSuffix     = "/auth-with-password"
	AuthRefreshSuffix          = "/auth-refresh"
	AuthMethodsSuffix          = "/auth-methods"
	RequestPasswordResetSuffix = "/request-password-reset"
	ConfirmPasswordResetSuffix = "/confirm-password-reset"
	RequestVerificationSuffix  = "/request-verification"
	ConfirmVerificationSuffix  = "/confirm-verification"
)

// Auth response model keys.
const (
	AdminModelKey  = "admin"
	RecordModelKey = "record"
)

// Query parameter names.
const (
	QueryPage      = "page"
	QueryPerPage   = "perPage"
	QuerySort      = "sort"
	QueryFilter    = "filter"
	QueryExpand    = "expand"
	QueryFields    = "fields"
	QuerySkipTotal = "skipTotal"
)

// Header names and content types.
const (
	HeaderAuthorization  = "Authorization"
	HeaderAcceptLanguage = "Accept-Language"
	HeaderAccept         = "Accept"
	HeaderContentType    = "Content-Type"
	HeaderUserAgent      = "User-Agent"

	ContentTypeJSON = "application/json"

	BearerPrefix = "Bearer "

	DefaultUserAgent = "pocketbase-go-client/1.0"
)

// Credential storage.
const (
	// CredentialDirName is the directory under the user's home holding client state.
	CredentialDirName = ".pocketbase"

	// CredentialFileName is the file FileStorage writes by default.
	CredentialFileName = "auth.yml"

	// ConfigFileName is the CLI configuration file next to the credential file.
	ConfigFileName = "config.yml"

	// EnvPrefix is the prefix for environment based configuration.
	EnvPrefix = "POCKETBASE"
)

// Format constants.
const (
	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// FormatTable for table output format.
	FormatTable = "table"
)

// UI and display constants.
const (
	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// StringTruncationLimit is used when truncating long values in tables.
	StringTruncationLimit = 48
)
