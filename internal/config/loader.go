package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// envPrefix prefixes every environment variable read by Load.
const envPrefix = "GENIUS_"

// oauthKeys may be given without the OAUTH_ segment, e.g. GENIUS_CLIENT_SECRET.
var oauthKeys = map[string]bool{
	"client_id":     true,
	"client_secret": true,
	"redirect_url":  true,
	"scopes":        true,
}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. .env file (GENIUS_ENV_FILE, default ".env") exported into the environment
//  3. file (YAML) if GENIUS_CONFIG is set
//  4. env (prefix GENIUS_)
//
// Load does not validate; callers validate the section they need.
func Load(_ context.Context) (*Config, error) {
	envFile := os.Getenv(envPrefix + "ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", envFile, err)
	}

	base := New()

	k := koanf.New(".")

	if path := os.Getenv(envPrefix + "CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	// GENIUS_ACCESS_TOKEN -> access_token, GENIUS_OAUTH_ADDR -> oauth.addr,
	// GENIUS_CLIENT_SECRET -> oauth.client_secret.
	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env: %w", err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return &cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))

	if rest, ok := strings.CutPrefix(s, "oauth_"); ok {
		return "oauth." + rest
	}
	if oauthKeys[s] {
		return "oauth." + s
	}

	return s
}
