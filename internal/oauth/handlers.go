package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/adamwoolhether/genius/internal/validate"
	"github.com/adamwoolhether/genius/internal/web"
)

// callback holds the query parameters the authorize page redirects with.
type callback struct {
	Code  string `form:"code" validate:"required"`
	State string `form:"state" validate:"required,uuid4"`
}

// Routes registers the start page and the callback on app.
// The callback path is taken from the configured redirect URL.
func (h *Helper) Routes(app *web.App, callbackPath string) {
	app.Get("/{$}", h.start)
	app.Get(callbackPath, h.callback)
}

func (h *Helper) start(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	authURL, err := h.Begin()
	if err != nil {
		return web.NewInternal(err)
	}

	return web.Redirect(w, r, authURL, http.StatusFound)
}

func (h *Helper) callback(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()

	if e := q.Get("error"); e != "" {
		return web.NewError(http.StatusBadRequest, fmt.Errorf("authorization denied: %s %s", e, q.Get("error_description")))
	}

	cb := callback{
		Code:  q.Get("code"),
		State: q.Get("state"),
	}
	if err := validate.Struct(cb); err != nil {
		return err
	}

	if !h.take(cb.State) {
		return web.NewError(http.StatusBadRequest, ErrStateInvalid)
	}

	tok, err := h.Exchange(ctx, cb.Code)
	if err != nil {
		if exErr, ok := errors.AsType[*ExchangeError](err); ok {
			h.logger.Error("token exchange rejected, a 401 usually means the client secret is invalid", "status", exErr.StatusCode)
			return web.NewError(http.StatusBadGateway, fmt.Errorf("%w with status %d", ErrExchange, exErr.StatusCode))
		}
		return web.NewInternal(err)
	}

	select {
	case h.tokens <- tok:
	default:
		h.logger.Warn("previous token not yet consumed, dropping new one")
	}

	return web.RespondText(ctx, w, http.StatusOK, "Access token obtained. It has been printed to the console; you can close this window.")
}
