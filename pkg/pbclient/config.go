package pbclient

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/fivetwenty-io/pocketbase-client/internal/constants"
	"github.com/fivetwenty-io/pocketbase-client/pkg/pocketbase"
)

// Configuration keys understood by LoadConfig. Each is also read from the
// environment as POCKETBASE_<KEY>, for example POCKETBASE_BASE_URL.
const (
	KeyBaseURL             = "base_url"
	KeyLocale              = "locale"
	KeyToken               = "token"
	KeyTokenKind           = "token_kind"
	KeyTimeout             = "timeout"
	KeyUserAgent           = "user_agent"
	KeyRetryMax            = "retry_max"
	KeyRetryWaitMin        = "retry_wait_min"
	KeyRetryWaitMax        = "retry_wait_max"
	KeyMaxPerPage          = "max_per_page"
	KeyDisablePerPageLimit = "disable_per_page_limit"
	KeyRateLimit           = "rate_limit"
	KeyRateBurst           = "rate_burst"
	KeyDebug               = "debug"
	KeyHeaders             = "headers"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyBaseURL, "")
	v.SetDefault(KeyLocale, "")
	v.SetDefault(KeyToken, "")
	v.SetDefault(KeyTokenKind, "")
	v.SetDefault(KeyTimeout, constants.DefaultHTTPTimeout)
	v.SetDefault(KeyUserAgent, "")
	v.SetDefault(KeyRetryMax, constants.DefaultRetryMax)
	v.SetDefault(KeyRetryWaitMin, constants.DefaultRetryWaitMin)
	v.SetDefault(KeyRetryWaitMax, constants.DefaultRetryWaitMax)
	v.SetDefault(KeyMaxPerPage, constants.DefaultMaxPerPage)
	v.SetDefault(KeyDisablePerPageLimit, false)
	v.SetDefault(KeyRateLimit, 0.0)
	v.SetDefault(KeyRateBurst, 0)
	v.SetDefault(KeyDebug, false)
}

// LoadConfig reads a client configuration from a YAML file and the
// POCKETBASE_* environment. Environment values override the file. An empty
// path reads the environment only.
func LoadConfig(path string) (*pocketbase.Config, error) {
	v := viper.New()

	setDefaults(v)
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)

		err := v.ReadInConfig()
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	return configFromViper(v)
}

func configFromViper(v *viper.Viper) (*pocketbase.Config, error) {
	config := &pocketbase.Config{
		BaseURL:             v.GetString(KeyBaseURL),
		Locale:              v.GetString(KeyLocale),
		Token:               v.GetString(KeyToken),
		HTTPTimeout:         v.GetDuration(KeyTimeout),
		UserAgent:           v.GetString(KeyUserAgent),
		RetryMax:            v.GetInt(KeyRetryMax),
		RetryWaitMin:        v.GetDuration(KeyRetryWaitMin),
		RetryWaitMax:        v.GetDuration(KeyRetryWaitMax),
		MaxPerPage:          v.GetInt(KeyMaxPerPage),
		DisablePerPageLimit: v.GetBool(KeyDisablePerPageLimit),
		RateLimit:           v.GetFloat64(KeyRateLimit),
		RateBurst:           v.GetInt(KeyRateBurst),
		Debug:               v.GetBool(KeyDebug),
	}

	if kind := v.GetString(KeyTokenKind); kind != "" {
		err := config.TokenKind.UnmarshalText([]byte(kind))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", pocketbase.ErrInvalidConfig, err)
		}
	}

	if headers := v.GetStringMapString(KeyHeaders); len(headers) > 0 {
		config.Headers = headers
	}

	return config, nil
}
