// Package config defines the configuration shared by the genius commands.
package config

import (
	"time"

	"github.com/adamwoolhether/genius/client"
	"github.com/adamwoolhether/genius/internal/validate"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn error"`

	// LogFormat is one of text, json or logfmt.
	LogFormat string `koanf:"log_format" validate:"oneof=text json logfmt"`

	// AccessToken authenticates API calls.
	AccessToken string `koanf:"access_token" validate:"required"`

	// BaseURL is the API origin.
	BaseURL string `koanf:"base_url" validate:"required,url"`

	// Timeout bounds a whole API call. Zero disables it.
	Timeout time.Duration `koanf:"timeout" validate:"gte=0"`

	UserAgent string `koanf:"user_agent"`

	OAuth OAuth `koanf:"oauth" validate:"-"`
}

// OAuth configures the access token helper.
type OAuth struct {
	ClientID     string `koanf:"client_id" validate:"required"`
	ClientSecret string `koanf:"client_secret" validate:"required"`
	RedirectURL  string `koanf:"redirect_url" validate:"required,url"`
	// Scopes is the space separated scope list requested from the user.
	Scopes       string `koanf:"scopes" validate:"required"`
	Addr         string `koanf:"addr" validate:"required"`
	AuthorizeURL string `koanf:"authorize_url" validate:"required,url"`
	TokenURL     string `koanf:"token_url" validate:"required,url"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",
		BaseURL:   client.DefaultBaseURL,
		Timeout:   30 * time.Second,
		UserAgent: "genius-go",
		OAuth: OAuth{
			RedirectURL:  "http://localhost:3000/callback",
			Scopes:       "me create_annotation manage_annotation vote",
			Addr:         "localhost:3000",
			AuthorizeURL: client.DefaultBaseURL + "/oauth/authorize",
			TokenURL:     client.DefaultBaseURL + "/oauth/token",
		},
	}
}

// Validate checks the settings needed to call the API.
func (c *Config) Validate() error {
	return validate.Struct(c)
}

// Validate checks the settings needed to obtain a token.
func (o OAuth) Validate() error {
	return validate.Struct(o)
}
