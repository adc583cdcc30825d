// Package oauth obtains a Genius access token through the authorization code
// flow: it sends the user to the authorize page, receives the code on a local
// callback and exchanges it for a token.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/adamwoolhether/genius/internal/config"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

var (
	// ErrStateInvalid is returned when the state parameter is unknown or expired.
	ErrStateInvalid = errors.New("oauth state invalid or expired")
	// ErrExchange is wrapped by [ExchangeError].
	ErrExchange = errors.New("token exchange failed")
)

// ExchangeError is returned when the token endpoint answers with a status above 399.
type ExchangeError struct {
	StatusCode int
	Body       []byte
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("%v: %d, body: %s", ErrExchange, e.StatusCode, e.Body)
}

func (e *ExchangeError) Unwrap() error {
	return ErrExchange
}

// Token is the token endpoint's success payload.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Helper drives one or more authorization code flows.
type Helper struct {
	cfg      config.OAuth
	http     *resty.Client
	logger   *slog.Logger
	stateTTL time.Duration

	mu     sync.Mutex
	states map[string]time.Time

	tokens chan Token
}

// Option customises a Helper.
type Option func(*Helper)

// WithLogger sets the logger. Default is slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(h *Helper) {
		if log != nil {
			h.logger = log
		}
	}
}

// WithStateTTL adjusts how long state parameters remain valid.
func WithStateTTL(ttl time.Duration) Option {
	return func(h *Helper) {
		if ttl > 0 {
			h.stateTTL = ttl
		}
	}
}

// WithTimeout bounds the token exchange request.
func WithTimeout(d time.Duration) Option {
	return func(h *Helper) {
		h.http.SetTimeout(d)
	}
}

// New validates cfg and returns a Helper for it.
func New(cfg config.OAuth, opts ...Option) (*Helper, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("oauth config: %w", err)
	}

	h := &Helper{
		cfg:      cfg,
		http:     resty.New().SetTimeout(10 * time.Second),
		logger:   slog.Default(),
		stateTTL: 10 * time.Minute,
		states:   make(map[string]time.Time),
		tokens:   make(chan Token, 1),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}

	return h, nil
}

// Tokens delivers each token obtained through the callback.
func (h *Helper) Tokens() <-chan Token {
	return h.tokens
}

// Begin records a fresh state value and returns the authorize URL for it.
func (h *Helper) Begin() (string, error) {
	state := uuid.NewString()

	h.mu.Lock()
	now := time.Now()
	for s, exp := range h.states {
		if now.After(exp) {
			delete(h.states, s)
		}
	}
	h.states[state] = now.Add(h.stateTTL)
	h.mu.Unlock()

	return h.AuthorizeURL(state)
}

// AuthorizeURL builds the page the user is sent to in order to grant access.
func (h *Helper) AuthorizeURL(state string) (string, error) {
	u, err := url.Parse(h.cfg.AuthorizeURL)
	if err != nil {
		return "", fmt.Errorf("parse authorize url: %w", err)
	}

	q := u.Query()
	q.Set("client_id", h.cfg.ClientID)
	q.Set("redirect_uri", h.cfg.RedirectURL)
	q.Set("scope", h.cfg.Scopes)
	q.Set("state", state)
	q.Set("response_type", "code")
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// take consumes state, reporting whether it was issued and is still valid.
func (h *Helper) take(state string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	exp, ok := h.states[state]
	if !ok {
		return false
	}
	delete(h.states, state)

	return time.Now().Before(exp)
}

// Exchange trades an authorization code for an access token.
func (h *Helper) Exchange(ctx context.Context, code string) (Token, error) {
	resp, err := h.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetFormData(map[string]string{
			"code":          code,
			"client_secret": h.cfg.ClientSecret,
			"grant_type":    "authorization_code",
			"client_id":     h.cfg.ClientID,
			"redirect_uri":  h.cfg.RedirectURL,
			"response_type": "code",
		}).
		Post(h.cfg.TokenURL)
	if err != nil {
		return Token{}, fmt.Errorf("token request: %w", err)
	}

	h.logger.Info("token endpoint responded", "status", resp.StatusCode())

	if resp.StatusCode() > 399 {
		return Token{}, &ExchangeError{StatusCode: resp.StatusCode(), Body: resp.Body()}
	}

	var tok Token
	if err := json.Unmarshal(resp.Body(), &tok); err != nil {
		return Token{}, fmt.Errorf("decode token response: %w", err)
	}
	if tok.AccessToken == "" {
		return Token{}, fmt.Errorf("%w: response has no access_token", ErrExchange)
	}

	return tok, nil
}
